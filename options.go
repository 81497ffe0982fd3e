package formdraft

import (
	"strings"
	"time"

	"github.com/goliatone/go-formdraft/pkg/activity"
	"github.com/goliatone/go-formdraft/pkg/payload"
	"github.com/goliatone/go-formdraft/pkg/rules"
	"github.com/goliatone/go-formdraft/pkg/store"
	"github.com/goliatone/go-formdraft/pkg/submit"
)

// ManagerOption configures a Manager.
type ManagerOption func(*config)

type config struct {
	store         store.Store
	storeKey      string
	codec         store.Codec
	submitter     submit.Submitter
	activityHooks activity.Hooks
	activityCfg   activity.Config
	logger        Logger
	newID         IDGenerator
	rules         []rules.Rule
	evaluator     rules.Evaluator
	sanitizer     payload.Sanitizer
	now           func() time.Time
}

func applyOptions(opts []ManagerOption) config {
	cfg := config{
		storeKey:    store.DefaultKey,
		codec:       store.JSONCodec{},
		activityCfg: activity.DefaultConfig(),
		logger:      noopLogger{},
		newID:       defaultIDGenerator,
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.submitter == nil {
		cfg.submitter = submit.New(submit.DefaultEndpoint)
	}
	return cfg
}

// WithStore sets where drafts are persisted. Without a store PersistDraft
// returns ErrNoStore and ClearSavedDraftAndReset only resets memory.
func WithStore(s store.Store) ManagerOption {
	return func(cfg *config) {
		cfg.store = s
	}
}

// WithStoreKey overrides store.DefaultKey.
func WithStoreKey(key string) ManagerOption {
	return func(cfg *config) {
		if key = strings.TrimSpace(key); key != "" {
			cfg.storeKey = key
		}
	}
}

// WithCodec selects the encoding of persisted drafts. JSON is the default.
func WithCodec(codec store.Codec) ManagerOption {
	return func(cfg *config) {
		if codec != nil {
			cfg.codec = codec
		}
	}
}

// WithSubmitter sets the submission transport.
func WithSubmitter(s submit.Submitter) ManagerOption {
	return func(cfg *config) {
		cfg.submitter = s
	}
}

// WithActivityHooks attaches hooks notified after every successful operation.
// Nil entries are dropped.
func WithActivityHooks(hooks ...activity.ActivityHook) ManagerOption {
	return func(cfg *config) {
		for _, hook := range hooks {
			if hook != nil {
				cfg.activityHooks = append(cfg.activityHooks, hook)
			}
		}
	}
}

// WithActivityConfig enables or disables draft events and sets their channel and actor.
func WithActivityConfig(c activity.Config) ManagerOption {
	return func(cfg *config) {
		cfg.activityCfg = c
	}
}

// WithLogger receives one OperationEvent per operation. Nil restores the noop logger.
func WithLogger(logger Logger) ManagerOption {
	return func(cfg *config) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithIDGenerator replaces uuid.NewString for question, option and snapshot ids.
func WithIDGenerator(gen IDGenerator) ManagerOption {
	return func(cfg *config) {
		if gen != nil {
			cfg.newID = gen
		}
	}
}

// WithRules adds readiness rules checked by SubmitDraft after the required
// field checks.
func WithRules(extra ...rules.Rule) ManagerOption {
	return func(cfg *config) {
		cfg.rules = append(cfg.rules, extra...)
	}
}

// WithEvaluator selects the rule engine. The expr engine is used otherwise.
func WithEvaluator(e rules.Evaluator) ManagerOption {
	return func(cfg *config) {
		cfg.evaluator = e
	}
}

// WithSanitizer cleans free text in submitted payloads.
func WithSanitizer(s payload.Sanitizer) ManagerOption {
	return func(cfg *config) {
		cfg.sanitizer = s
	}
}

// WithClock overrides time.Now for timestamps and durations.
func WithClock(now func() time.Time) ManagerOption {
	return func(cfg *config) {
		if now != nil {
			cfg.now = now
		}
	}
}
