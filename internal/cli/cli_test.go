package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	formdraft "github.com/goliatone/go-formdraft"
	"github.com/goliatone/go-formdraft/internal/prompt"
	"github.com/goliatone/go-formdraft/pkg/activity"
)

type harness struct {
	t      *testing.T
	out    bytes.Buffer
	errOut bytes.Buffer
	events *activity.CaptureHook
}

func newHarness(t *testing.T, endpoint string) *harness {
	t.Helper()
	t.Setenv("FORMDRAFT_STORE_PATH", t.TempDir())
	t.Setenv("FORMDRAFT_ENDPOINT", endpoint)
	return &harness{t: t, events: &activity.CaptureHook{}}
}

func (h *harness) run(driver prompt.Driver, args ...string) error {
	h.t.Helper()
	h.out.Reset()
	app := &App{Out: &h.out, Err: &h.errOut, Driver: driver, Hooks: []activity.ActivityHook{h.events}}
	return Execute(context.Background(), app, append([]string{"--env-file", ""}, args...))
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	if err := h.run(nil, args...); err != nil {
		h.t.Fatalf("formdraft %s: %v", strings.Join(args, " "), err)
	}
	return h.out.String()
}

func (h *harness) draft() formdraft.Form {
	h.t.Helper()
	raw := h.mustRun("show", "--format", "json")
	var form formdraft.Form
	if err := json.Unmarshal([]byte(raw), &form); err != nil {
		h.t.Fatalf("decode show output: %v\n%s", err, raw)
	}
	return form
}

func fillDetails(h *harness) {
	h.t.Helper()
	for _, kv := range [][2]string{
		{"formName", "intake"},
		{"formOrder", "2"},
		{"title", "Intake"},
		{"description", "First visit"},
		{"tier", "basic"},
		{"mandatory", "yes"},
	} {
		h.mustRun("set", kv[0], kv[1])
	}
}

func TestOneShotCommandsPersistEachChange(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1/forms")

	h.mustRun("add-question", "--text", "Do you smoke?", "--type", "radio")
	h.mustRun("add-option", "1", "--value", "yes", "--text", "Yes", "--jump-to", "2")
	h.mustRun("add-question", "--text", "How many a day?", "--type", "number", "--optional")
	h.mustRun("set", "--question", "2", "parentId", "linked")
	h.mustRun("duplicate-question", "1")

	form := h.draft()
	if len(form.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(form.Questions))
	}
	texts := []string{form.Questions[0].QuestionText, form.Questions[1].QuestionText, form.Questions[2].QuestionText}
	if diff := cmp.Diff([]string{"Do you smoke?", "Do you smoke?", "How many a day?"}, texts); diff != "" {
		t.Fatalf("questions (-want +got):\n%s", diff)
	}
	if form.Questions[1].Options[0].OptionID != form.Questions[0].Options[0].OptionID {
		t.Fatal("duplicated options should keep their ids")
	}
	option := form.Questions[0].Options[0]
	if !option.Jump || option.JumpTo != "2" {
		t.Fatalf("unexpected option: %+v", option)
	}
	if !form.Questions[2].IsOptional || form.Questions[2].ParentID != "linked" {
		t.Fatalf("unexpected third question: %+v", form.Questions[2])
	}

	h.mustRun("delete-question", "2")
	h.mustRun("move-question", "2", "1")
	form = h.draft()
	for i, question := range form.Questions {
		if question.Order != i+1 {
			t.Fatalf("question %d has order %d", i, question.Order)
		}
	}
	if form.Questions[0].QuestionText != "How many a day?" {
		t.Fatalf("move did not apply: %+v", form.Questions)
	}
}

func TestCommandReportsOutOfBounds(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1/forms")
	err := h.run(nil, "delete-question", "4")
	if err == nil || !strings.Contains(err.Error(), "question 4 does not exist") {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.run(nil, "set", "colour", "red"); err == nil || !strings.Contains(err.Error(), `"colour"`) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSubmitCommand(t *testing.T) {
	var received []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		received = append(received, body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	h := newHarness(t, server.URL)
	h.mustRun("add-question", "--text", "Age?", "--type", "number")

	err := h.run(nil, "submit")
	if err == nil || !strings.Contains(err.Error(), "formName") {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if len(received) != 0 {
		t.Fatal("invalid draft must not be sent")
	}

	fillDetails(h)
	out := h.mustRun("submit")
	if !strings.Contains(out, "Form submitted to "+server.URL) {
		t.Fatalf("unexpected output: %q", out)
	}
	if len(received) != 1 {
		t.Fatalf("expected one request, got %d", len(received))
	}
	body := received[0]
	if body["order"] != float64(2) || body["mandatory"] != true {
		t.Fatalf("unexpected body: %v", body)
	}

	if got := h.draft(); got.FormName != "intake" {
		t.Fatalf("submit should keep the saved draft, got %+v", got)
	}
}

func TestPayloadAndClearCommands(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1/forms")
	fillDetails(h)
	h.mustRun("add-question", "--text", "Age?", "--type", "number")

	out := h.mustRun("payload")
	if !strings.Contains(out, `"formName": "intake"`) || !strings.Contains(out, `"order": 2`) {
		t.Fatalf("unexpected payload output:\n%s", out)
	}

	h.mustRun("clear")
	if form := h.draft(); form.FormName != "" || len(form.Questions) != 0 {
		t.Fatalf("expected empty draft after clear, got %+v", form)
	}
}

func TestEditSessionBuildsAndSavesDraft(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1/forms")
	script := &prompt.ScriptDriver{Answers: []prompt.Answer{
		{Index: 1},        // Add question
		{Text: "Smoker?"}, // text
		{Text: "radio"},   // type
		{Yes: false},      // optional
		{Text: ""},        // parent
		{Yes: true},       // add option
		{Text: "y"},       // value
		{Text: "Yes"},     // text
		{Yes: true},       // jump
		{Text: "2"},       // jump to
		{Yes: false},      // add another option
		{Index: 0},        // Edit form details
		{Text: "intake"},  // formName
		{Text: "3"},       // formOrder
		{Text: "Intake"},  // title
		{Text: "First visit"},
		{Text: "basic"},
		{Index: 2},  // mandatory: no
		{Index: 10}, // Quit
		{Yes: true}, // save before quitting
	}}

	if err := h.run(script, "edit"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if len(script.Answers) != 0 {
		t.Fatalf("unused answers: %+v", script.Answers)
	}

	form := h.draft()
	want := formdraft.Form{
		FormName:    "intake",
		FormOrder:   "3",
		Title:       "Intake",
		Description: "First visit",
		Tier:        "basic",
		Mandatory:   formdraft.Bool(false),
	}
	got := form
	got.Questions = nil
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("details mismatch (-want +got):\n%s", diff)
	}
	if len(form.Questions) != 1 || form.Questions[0].QuestionText != "Smoker?" {
		t.Fatalf("unexpected questions: %+v", form.Questions)
	}
	option := form.Questions[0].Options[0]
	if option.Value != "y" || option.Text != "Yes" || !option.Jump || option.JumpTo != "2" {
		t.Fatalf("unexpected option: %+v", option)
	}
}

func TestEditSessionShowsOperationErrors(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1/forms")
	script := &prompt.ScriptDriver{Answers: []prompt.Answer{
		{Index: 8},  // Submit an empty draft
		{Index: 3},  // Delete question with none present
		{Index: 10}, // Quit
		{Yes: false},
	}}

	if err := h.run(script, "edit"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	transcript := script.Transcript()
	if !strings.Contains(transcript, "Error: draft is not ready") {
		t.Fatalf("missing validation message:\n%s", transcript)
	}
	if !strings.Contains(transcript, "no questions yet") {
		t.Fatalf("missing empty draft message:\n%s", transcript)
	}
}

// fixedSelectDriver answers one select prompt with a fixed index, whatever
// options it offers.
type fixedSelectDriver struct {
	*prompt.ScriptDriver
	message string
	index   int
}

func (d fixedSelectDriver) Select(ctx context.Context, cfg prompt.SelectConfig) (int, error) {
	if cfg.Message == d.message {
		return d.index, nil
	}
	return d.ScriptDriver.Select(ctx, cfg)
}

func TestEditSessionReportsMissingQuestionToEdit(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1/forms")
	h.mustRun("add-question", "--text", "Age?")
	script := &prompt.ScriptDriver{Answers: []prompt.Answer{
		{Index: 2},  // Edit question
		{Index: 10}, // Quit
		{Yes: false},
	}}
	driver := fixedSelectDriver{ScriptDriver: script, message: "Edit which question?", index: 5}

	if err := h.run(driver, "edit"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if transcript := script.Transcript(); !strings.Contains(transcript, "Error: question 6 does not exist (there are 1)") {
		t.Fatalf("missing bounds message:\n%s", transcript)
	}
}

func TestEditSessionAbortIsNotAnError(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1/forms")
	if err := h.run(&prompt.ScriptDriver{}, "edit"); err != nil {
		t.Fatalf("abort should end quietly, got %v", err)
	}
}

func TestVerboseLogsOperations(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1/forms")
	h.mustRun("--verbose", "add-question", "--text", "Age?")
	logs := h.errOut.String()
	if !strings.Contains(logs, "op=add_question") || !strings.Contains(logs, "event=draft.question.added") {
		t.Fatalf("unexpected logs:\n%s", logs)
	}
	if !strings.Contains(strings.Join(h.events.Verbs(), ","), activity.VerbDraftSaved) {
		t.Fatalf("expected a save event, got %v", h.events.Verbs())
	}
}
