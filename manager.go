package formdraft

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-formdraft/pkg/activity"
	"github.com/goliatone/go-formdraft/pkg/rules"
)

// Manager owns one form draft. Every mutation replaces the draft with a new
// value, so forms returned by State are never changed afterwards.
type Manager struct {
	cfg     config
	checker *rules.Checker

	mu      sync.Mutex
	initial Form
	state   Form
	status  Status

	subMu       sync.RWMutex
	subscribers map[int]activity.ActivityHook
	nextSub     int
}

// New builds a Manager holding initial. Call Initialize to adopt a persisted
// draft.
func New(initial Form, opts ...ManagerOption) *Manager {
	cfg := applyOptions(opts)
	m := &Manager{
		cfg:         cfg,
		initial:     initial.Clone(),
		state:       initial.Clone(),
		status:      StatusDirty,
		subscribers: map[int]activity.ActivityHook{},
	}
	m.checker = rules.NewChecker(cfg.evaluator)
	m.checker.Now = cfg.now
	m.checker.Logger = rules.LoggerFunc(func(event rules.LogEvent) {
		cfg.logger.LogOperation(OperationEvent{
			Op:       "rules.evaluate",
			Duration: event.Duration,
			Err:      event.Err,
			Fields: map[string]any{
				"engine": event.Engine,
				"rule":   event.Rule,
				"passed": event.Passed,
			},
		})
	})
	return m
}

// State returns a deep copy of the current draft.
func (m *Manager) State() Form {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// SetState replaces the draft wholesale. Nothing is re-derived: question
// orders and ids are taken as given.
func (m *Manager) SetState(form Form) {
	start := m.cfg.now()
	next := form.Clone()
	m.mu.Lock()
	m.state = next
	m.status = StatusDirty
	m.mu.Unlock()

	m.logOperation("set_state", start, nil, nil)
	m.emit(context.Background(), activity.VerbDraftReplaced, activity.DraftEventInput{
		FormName: next.FormName,
	})
}

// Status reports whether the draft matches what was last persisted.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Subscribe registers hook for draft events and returns a function removing
// it again.
func (m *Manager) Subscribe(hook activity.ActivityHook) (unsubscribe func()) {
	if hook == nil {
		return func() {}
	}
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = hook
	m.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subscribers, id)
			m.subMu.Unlock()
		})
	}
}

// change is the event a successful mutation reports.
type change struct {
	verb   string
	input  activity.DraftEventInput
	fields map[string]any
}

// apply runs fn against the current draft under the lock. The returned draft
// replaces the current one only when fn succeeds; the event is emitted after
// the lock is released.
func (m *Manager) apply(op string, fn func(current Form) (Form, change, error)) error {
	start := m.cfg.now()

	m.mu.Lock()
	next, ch, err := fn(m.state)
	if err == nil {
		m.state = next
		m.status = StatusDirty
	}
	m.mu.Unlock()

	m.logOperation(op, start, err, ch.fields)
	if err != nil {
		return err
	}
	ch.input.FormName = next.FormName
	m.emit(context.Background(), ch.verb, ch.input)
	return nil
}

func (m *Manager) emit(ctx context.Context, verb string, input activity.DraftEventInput) {
	hooks := m.hooks()
	if len(hooks) == 0 {
		return
	}
	if input.StoreKey == "" {
		input.StoreKey = m.cfg.storeKey
	}
	if input.OccurredAt.IsZero() {
		input.OccurredAt = m.cfg.now()
	}
	emitter := activity.NewEmitter(hooks, m.cfg.activityCfg)
	if err := emitter.Emit(ctx, activity.BuildDraftEvent(verb, input)); err != nil {
		m.cfg.logger.LogOperation(OperationEvent{
			Op:     "activity.emit",
			Err:    err,
			Fields: map[string]any{"verb": verb},
		})
	}
}

func (m *Manager) hooks() activity.Hooks {
	m.subMu.RLock()
	defer m.subMu.RUnlock()
	if len(m.cfg.activityHooks) == 0 && len(m.subscribers) == 0 {
		return nil
	}
	hooks := make(activity.Hooks, 0, len(m.cfg.activityHooks)+len(m.subscribers))
	hooks = append(hooks, m.cfg.activityHooks...)
	for id := 0; id < m.nextSub; id++ {
		if hook, ok := m.subscribers[id]; ok {
			hooks = append(hooks, hook)
		}
	}
	return hooks
}

func (m *Manager) logOperation(op string, start time.Time, err error, fields map[string]any) {
	m.cfg.logger.LogOperation(OperationEvent{
		Op:       op,
		Duration: m.cfg.now().Sub(start),
		Err:      err,
		Fields:   fields,
	})
}
