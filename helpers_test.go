package formdraft_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	formdraft "github.com/goliatone/go-formdraft"
	"github.com/goliatone/go-formdraft/pkg/activity"
	"github.com/goliatone/go-formdraft/pkg/payload"
	"github.com/goliatone/go-formdraft/pkg/store"
	"github.com/goliatone/go-formdraft/pkg/submit"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func sequentialIDs(prefix string) formdraft.IDGenerator {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// recordingSubmitter captures every payload it is handed.
type recordingSubmitter struct {
	mu       sync.Mutex
	payloads []payload.Form
	err      error
}

func (r *recordingSubmitter) Submit(_ context.Context, form payload.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, form)
	return r.err
}

func (r *recordingSubmitter) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads)
}

type fixture struct {
	manager   *formdraft.Manager
	store     *store.MemoryStore
	submitter *recordingSubmitter
	events    *activity.CaptureHook
}

func newFixture(t *testing.T, initial formdraft.Form, opts ...formdraft.ManagerOption) fixture {
	t.Helper()
	f := fixture{
		store:     store.NewMemoryStore(),
		submitter: &recordingSubmitter{},
		events:    &activity.CaptureHook{},
	}
	base := []formdraft.ManagerOption{
		formdraft.WithStore(f.store),
		formdraft.WithSubmitter(f.submitter),
		formdraft.WithActivityHooks(f.events),
		formdraft.WithIDGenerator(sequentialIDs("id")),
		formdraft.WithClock(func() time.Time { return fixedNow }),
	}
	f.manager = formdraft.New(initial, append(base, opts...)...)
	return f
}

// filledDraft has every required field set and one question with one
// option.
func filledDraft() formdraft.Form {
	return formdraft.Form{
		FormName:    "intake",
		FormOrder:   "1",
		Title:       "Patient intake",
		Description: "First visit questionnaire",
		Tier:        "basic",
		Mandatory:   formdraft.Bool(false),
		Questions: []formdraft.Question{
			{
				QuestionID:   "q-1",
				Order:        1,
				QuestionText: "Do you smoke?",
				Type:         "radio",
				Options: []formdraft.Option{
					{OptionID: "o-1", Value: "yes", Text: "Yes", Jump: false},
				},
			},
		},
	}
}

func addQuestions(t *testing.T, m *formdraft.Manager, texts ...string) {
	t.Helper()
	for _, text := range texts {
		question, err := m.AddQuestion()
		if err != nil {
			t.Fatalf("add question: %v", err)
		}
		if err := m.UpdateQuestion(question.Order-1, "questionText", text); err != nil {
			t.Fatalf("update question text: %v", err)
		}
	}
}

func assertOrders(t *testing.T, form formdraft.Form) {
	t.Helper()
	for i, question := range form.Questions {
		if question.Order != i+1 {
			t.Fatalf("question %d (%s) has order %d", i, question.QuestionID, question.Order)
		}
	}
}

func questionTexts(form formdraft.Form) []string {
	out := make([]string, 0, len(form.Questions))
	for _, question := range form.Questions {
		out = append(out, question.QuestionText)
	}
	return out
}

var _ submit.Submitter = (*recordingSubmitter)(nil)
