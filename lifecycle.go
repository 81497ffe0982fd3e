package formdraft

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-formdraft/pkg/activity"
	"github.com/goliatone/go-formdraft/pkg/store"
)

// ErrNoStore is returned by PersistDraft when no store is configured.
var ErrNoStore = errors.New("formdraft: store is not configured")

// Initialize adopts the persisted draft when the store holds one and initial
// otherwise. initial also becomes the value ClearSavedDraftAndReset returns
// to. When the stored draft cannot be loaded the error is returned and
// initial is adopted.
func (m *Manager) Initialize(ctx context.Context, initial Form) error {
	start := m.cfg.now()
	form, snapshotID, found, loadErr := m.loadDraft(ctx)

	next := initial.Clone()
	status := StatusDirty
	if loadErr == nil && found {
		next = form
		status = StatusPersisted
	}

	m.mu.Lock()
	m.initial = initial.Clone()
	m.state = next
	m.status = status
	m.mu.Unlock()

	source := "initial"
	if status == StatusPersisted {
		source = "store"
	}
	m.logOperation("initialize", start, loadErr, map[string]any{"source": source, "key": m.cfg.storeKey})
	m.emit(ctx, activity.VerbDraftInitialized, activity.DraftEventInput{
		FormName:   next.FormName,
		SnapshotID: snapshotID,
		Metadata:   map[string]any{"source": source},
	})
	return loadErr
}

func (m *Manager) loadDraft(ctx context.Context) (Form, string, bool, error) {
	if m.cfg.store == nil {
		return Form{}, "", false, nil
	}
	record, ok, err := m.cfg.store.Load(ctx, m.cfg.storeKey)
	if err != nil {
		return Form{}, "", false, fmt.Errorf("formdraft: load draft %q: %w", m.cfg.storeKey, err)
	}
	if !ok {
		return Form{}, "", false, nil
	}
	form, err := decodeDraft(m.cfg.storeKey, m.cfg.codec, record.Payload)
	if err != nil {
		return Form{}, "", false, err
	}
	return form, record.Meta.SnapshotID, true, nil
}

// PersistDraft writes the whole draft to the store under the configured key,
// replacing any previous copy.
func (m *Manager) PersistDraft(ctx context.Context) error {
	start := m.cfg.now()
	if m.cfg.store == nil {
		m.logOperation("persist", start, ErrNoStore, nil)
		return ErrNoStore
	}

	m.mu.Lock()
	snapshot := m.state.Clone()
	data, err := m.cfg.codec.Marshal(snapshot)
	var meta store.Meta
	if err != nil {
		err = fmt.Errorf("formdraft: encode draft: %w", err)
	} else {
		meta, err = m.cfg.store.Save(ctx, m.cfg.storeKey, store.Record{
			Payload: data,
			Meta: store.Meta{
				SnapshotID: m.cfg.newID(),
				UpdatedAt:  m.cfg.now(),
				Extra:      map[string]string{"format": m.cfg.codec.Name()},
			},
		})
		if err != nil {
			err = fmt.Errorf("formdraft: save draft %q: %w", m.cfg.storeKey, err)
		} else {
			m.status = StatusPersisted
		}
	}
	m.mu.Unlock()

	m.logOperation("persist", start, err, map[string]any{"key": m.cfg.storeKey, "bytes": len(data)})
	if err != nil {
		return err
	}
	m.emit(ctx, activity.VerbDraftSaved, activity.DraftEventInput{
		FormName:   snapshot.FormName,
		SnapshotID: meta.SnapshotID,
	})
	return nil
}

// ClearSavedDraftAndReset removes the persisted draft and resets the draft to
// the initial value. On a store failure the draft is left as it was.
func (m *Manager) ClearSavedDraftAndReset(ctx context.Context) error {
	start := m.cfg.now()
	if m.cfg.store != nil {
		if err := m.cfg.store.Remove(ctx, m.cfg.storeKey); err != nil {
			err = fmt.Errorf("formdraft: remove draft %q: %w", m.cfg.storeKey, err)
			m.logOperation("clear", start, err, map[string]any{"key": m.cfg.storeKey})
			return err
		}
	}

	m.mu.Lock()
	m.state = m.initial.Clone()
	m.status = StatusDirty
	formName := m.state.FormName
	m.mu.Unlock()

	m.logOperation("clear", start, nil, map[string]any{"key": m.cfg.storeKey})
	m.emit(ctx, activity.VerbDraftCleared, activity.DraftEventInput{FormName: formName})
	return nil
}
