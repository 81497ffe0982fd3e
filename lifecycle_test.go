package formdraft_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"

	formdraft "github.com/goliatone/go-formdraft"
	"github.com/goliatone/go-formdraft/pkg/activity"
	"github.com/goliatone/go-formdraft/pkg/store"
)

func TestPersistDraftIsIdempotent(t *testing.T) {
	f := newFixture(t, filledDraft())
	ctx := context.Background()

	var payloads [][]byte
	for i := 0; i < 2; i++ {
		if err := f.manager.PersistDraft(ctx); err != nil {
			t.Fatalf("persist %d: %v", i, err)
		}
		record, ok, err := f.store.Load(ctx, store.DefaultKey)
		if err != nil || !ok {
			t.Fatalf("load %d: ok=%v err=%v", i, ok, err)
		}
		payloads = append(payloads, record.Payload)

		var persisted formdraft.Form
		if err := (store.JSONCodec{}).Unmarshal(record.Payload, &persisted); err != nil {
			t.Fatalf("decode %d: %v", i, err)
		}
		if diff := cmp.Diff(f.manager.State(), persisted); diff != "" {
			t.Fatalf("persisted draft %d differs (-memory +stored):\n%s", i, diff)
		}
	}
	if string(payloads[0]) != string(payloads[1]) {
		t.Fatalf("persisted payload changed between saves:\n%s\n%s", payloads[0], payloads[1])
	}
	if f.store.Len() != 1 {
		t.Fatalf("store holds %d records, want 1", f.store.Len())
	}
}

func TestPersistThenInitializeRoundTrips(t *testing.T) {
	cases := []struct {
		name  string
		codec store.Codec
	}{
		{"json", store.JSONCodec{}},
		{"yaml", store.YAMLCodec{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			fileStore, err := store.NewFileStore(t.TempDir(), tc.codec.Extension())
			if err != nil {
				t.Fatalf("file store: %v", err)
			}

			first := formdraft.New(formdraft.Form{}, formdraft.WithStore(fileStore), formdraft.WithCodec(tc.codec))
			first.SetState(filledDraft())
			if _, err := first.DuplicateQuestion(0); err != nil {
				t.Fatalf("duplicate: %v", err)
			}
			if err := first.UpdateOption(1, 0, "jump", "true"); err != nil {
				t.Fatalf("jump: %v", err)
			}
			if err := first.UpdateOption(1, 0, "jumpTo", "2"); err != nil {
				t.Fatalf("jumpTo: %v", err)
			}
			if err := first.UpdateQuestion(1, "parentId", "q-1"); err != nil {
				t.Fatalf("parentId: %v", err)
			}
			if err := first.PersistDraft(ctx); err != nil {
				t.Fatalf("persist: %v", err)
			}

			second := formdraft.New(formdraft.Form{}, formdraft.WithStore(fileStore), formdraft.WithCodec(tc.codec))
			if err := second.Initialize(ctx, formdraft.Form{FormName: "ignored"}); err != nil {
				t.Fatalf("initialize: %v", err)
			}
			if diff := cmp.Diff(first.State(), second.State(), cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("round trip mismatch (-persisted +loaded):\n%s", diff)
			}
			if second.Status() != formdraft.StatusPersisted {
				t.Fatalf("status = %s, want persisted", second.Status())
			}
		})
	}
}

func TestPersistThenInitializeIsDeepEqual(t *testing.T) {
	drafts := []struct {
		name  string
		draft formdraft.Form
	}{
		{"no questions", formdraft.Form{FormName: "x"}},
		{"empty questions", formdraft.Form{FormName: "x", Questions: []formdraft.Question{}}},
		{"nil options", formdraft.Form{Questions: []formdraft.Question{{QuestionID: "q-1", Order: 1}}}},
		{"orders kept as set", formdraft.Form{
			FormName: "x",
			Questions: []formdraft.Question{
				{QuestionID: "q-1", Order: 5, Options: []formdraft.Option{}},
				{QuestionID: "q-2", Order: 9, Options: []formdraft.Option{{OptionID: "o-1", Value: "v"}}},
			},
		}},
	}
	codecs := []store.Codec{store.JSONCodec{}, store.YAMLCodec{}}

	for _, codec := range codecs {
		for _, tc := range drafts {
			t.Run(codec.Name()+"/"+tc.name, func(t *testing.T) {
				ctx := context.Background()
				mem := store.NewMemoryStore()

				first := formdraft.New(formdraft.Form{}, formdraft.WithStore(mem), formdraft.WithCodec(codec))
				first.SetState(tc.draft)
				if err := first.PersistDraft(ctx); err != nil {
					t.Fatalf("persist: %v", err)
				}

				second := formdraft.New(formdraft.Form{}, formdraft.WithStore(mem), formdraft.WithCodec(codec))
				if err := second.Initialize(ctx, formdraft.Form{}); err != nil {
					t.Fatalf("initialize: %v", err)
				}
				if diff := cmp.Diff(tc.draft, second.State()); diff != "" {
					t.Fatalf("round trip mismatch (-persisted +loaded):\n%s", diff)
				}
			})
		}
	}
}

func TestInitializeAdoptsInitialWhenStoreEmpty(t *testing.T) {
	f := newFixture(t, formdraft.Form{})
	initial := formdraft.Form{FormName: "fresh", Questions: []formdraft.Question{{QuestionID: "q", Order: 1}}}

	if err := f.manager.Initialize(context.Background(), initial); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if diff := cmp.Diff(initial, f.manager.State()); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
	if f.manager.Status() != formdraft.StatusDirty {
		t.Fatalf("status = %s, want dirty", f.manager.Status())
	}
	last, _ := f.events.Last()
	if last.Verb != activity.VerbDraftInitialized || last.Metadata["source"] != "initial" {
		t.Fatalf("unexpected event: %+v", last)
	}
}

func TestInitializeStoredDraftReplacesInitialWholesale(t *testing.T) {
	f := newFixture(t, formdraft.Form{})
	ctx := context.Background()
	if _, err := f.store.Save(ctx, store.DefaultKey, store.Record{
		Payload: []byte(`{"formName":"stored","questions":[]}`),
		Meta:    store.Meta{SnapshotID: "snap-1"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	initial := filledDraft()
	if err := f.manager.Initialize(ctx, initial); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	got := f.manager.State()
	if got.FormName != "stored" || got.Title != "" || len(got.Questions) != 0 {
		t.Fatalf("stored draft should replace initial without merge, got %+v", got)
	}
	last, _ := f.events.Last()
	if last.SnapshotID != "snap-1" || last.Metadata["source"] != "store" {
		t.Fatalf("unexpected event: %+v", last)
	}

	// The new initial value is what clear resets to.
	if err := f.manager.ClearSavedDraftAndReset(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if diff := cmp.Diff(initial, f.manager.State()); diff != "" {
		t.Fatalf("reset mismatch (-want +got):\n%s", diff)
	}
}

func TestInitializeNormalizesLegacyDraft(t *testing.T) {
	f := newFixture(t, formdraft.Form{})
	ctx := context.Background()
	legacy := `{
		"formName": "legacy",
		"formOrder": 4,
		"title": "t",
		"description": "d",
		"tier": "gold",
		"mandatory": "yes",
		"questions": [
			{"questionId": "q-a", "order": "5", "questionText": "A", "type": "radio", "isOptional": "false",
			 "options": [{"optionId": "o-a", "value": "1", "text": "One", "jump": "true", "jumpTo": "2"}]},
			{"questionId": "q-b", "order": 2, "questionText": "B", "type": "text", "isOptional": true, "options": [], "parentId": "q-a"}
		]
	}`
	if _, err := f.store.Save(ctx, store.DefaultKey, store.Record{Payload: []byte(legacy)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := f.manager.Initialize(ctx, formdraft.Form{}); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	want := formdraft.Form{
		FormName:    "legacy",
		FormOrder:   "4",
		Title:       "t",
		Description: "d",
		Tier:        "gold",
		Mandatory:   formdraft.Bool(true),
		Questions: []formdraft.Question{
			{
				QuestionID: "q-a", Order: 1, QuestionText: "A", Type: "radio",
				Options: []formdraft.Option{{OptionID: "o-a", Value: "1", Text: "One", Jump: true, JumpTo: "2"}},
			},
			{QuestionID: "q-b", Order: 2, QuestionText: "B", Type: "text", IsOptional: true, Options: []formdraft.Option{}, ParentID: "q-a"},
		},
	}
	if diff := cmp.Diff(want, f.manager.State()); diff != "" {
		t.Fatalf("legacy draft mismatch (-want +got):\n%s", diff)
	}
}

func TestInitializeCorruptDraftFallsBackToInitial(t *testing.T) {
	f := newFixture(t, formdraft.Form{})
	ctx := context.Background()
	if _, err := f.store.Save(ctx, store.DefaultKey, store.Record{Payload: []byte(`{not json`)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	initial := formdraft.Form{FormName: "fallback"}
	if err := f.manager.Initialize(ctx, initial); err == nil {
		t.Fatal("expected decode error")
	}
	if got := f.manager.State(); got.FormName != "fallback" {
		t.Fatalf("expected initial value, got %+v", got)
	}
}

func TestClearRemovesStoredDraftAndResets(t *testing.T) {
	initial := formdraft.Form{FormName: "start"}
	f := newFixture(t, initial)
	ctx := context.Background()

	addQuestions(t, f.manager, "q")
	if err := f.manager.PersistDraft(ctx); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if err := f.manager.ClearSavedDraftAndReset(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	if _, ok, _ := f.store.Load(ctx, store.DefaultKey); ok {
		t.Fatal("stored draft should be removed")
	}
	if diff := cmp.Diff(initial, f.manager.State()); diff != "" {
		t.Fatalf("reset mismatch (-want +got):\n%s", diff)
	}
	if f.manager.Status() != formdraft.StatusDirty {
		t.Fatalf("status = %s, want dirty", f.manager.Status())
	}
	if last, _ := f.events.Last(); last.Verb != activity.VerbDraftCleared {
		t.Fatalf("last verb = %s", last.Verb)
	}
}

type failingStore struct {
	store.Store
	err error
}

func (s failingStore) Remove(context.Context, string) error { return s.err }

func (s failingStore) Save(context.Context, string, store.Record) (store.Meta, error) {
	return store.Meta{}, s.err
}

func TestStoreFailuresLeaveDraftAlone(t *testing.T) {
	boom := errors.New("disk full")
	f := newFixture(t, formdraft.Form{}, formdraft.WithStore(failingStore{Store: store.NewMemoryStore(), err: boom}))
	ctx := context.Background()
	addQuestions(t, f.manager, "keep")

	if err := f.manager.PersistDraft(ctx); !errors.Is(err, boom) {
		t.Fatalf("persist: expected %v, got %v", boom, err)
	}
	if f.manager.Status() != formdraft.StatusDirty {
		t.Fatalf("failed save must not mark persisted")
	}
	if err := f.manager.ClearSavedDraftAndReset(ctx); !errors.Is(err, boom) {
		t.Fatalf("clear: expected %v, got %v", boom, err)
	}
	if got := questionTexts(f.manager.State()); len(got) != 1 || got[0] != "keep" {
		t.Fatalf("draft changed after failed clear: %v", got)
	}
}

func TestPersistWithoutStore(t *testing.T) {
	m := formdraft.New(formdraft.Form{})
	if err := m.PersistDraft(context.Background()); !errors.Is(err, formdraft.ErrNoStore) {
		t.Fatalf("expected ErrNoStore, got %v", err)
	}
	if err := m.ClearSavedDraftAndReset(context.Background()); err != nil {
		t.Fatalf("clear without store: %v", err)
	}
}

func TestCustomStoreKey(t *testing.T) {
	f := newFixture(t, formdraft.Form{FormName: "keyed"}, formdraft.WithStoreKey("draft-42"))
	ctx := context.Background()
	if err := f.manager.PersistDraft(ctx); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if _, ok, _ := f.store.Load(ctx, store.DefaultKey); ok {
		t.Fatal("default key should stay empty")
	}
	record, ok, err := f.store.Load(ctx, "draft-42")
	if err != nil || !ok {
		t.Fatalf("load custom key: ok=%v err=%v", ok, err)
	}
	if record.Meta.SnapshotID == "" || !record.Meta.UpdatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected meta: %+v", record.Meta)
	}
}

func TestDefaultIDsAreUUIDs(t *testing.T) {
	m := formdraft.New(formdraft.Form{})
	question, err := m.AddQuestion()
	if err != nil {
		t.Fatalf("add question: %v", err)
	}
	option, err := m.AddOption(0)
	if err != nil {
		t.Fatalf("add option: %v", err)
	}
	for _, id := range []string{question.QuestionID, option.OptionID} {
		if _, err := uuid.Parse(id); err != nil {
			t.Fatalf("id %q is not a uuid: %v", id, err)
		}
	}
}
