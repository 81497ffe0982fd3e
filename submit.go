package formdraft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-formdraft/pkg/activity"
	"github.com/goliatone/go-formdraft/pkg/payload"
	"github.com/goliatone/go-formdraft/pkg/rules"
	"github.com/goliatone/go-formdraft/pkg/submit"
)

// RequiredFields must be non-empty before a draft is submitted. mandatory
// counts as present when set to either yes or no.
var RequiredFields = []string{"formName", "formOrder", "title", "description", "tier", "mandatory"}

// Result describes a delivered submission.
type Result struct {
	Endpoint    string
	Payload     payload.Form
	SubmittedAt time.Time
}

// Validate runs the required-field checks and any configured rules against
// the current draft.
func (m *Manager) Validate() error {
	m.mu.Lock()
	snapshot := m.state.Clone()
	m.mu.Unlock()
	return m.validate(snapshot)
}

func (m *Manager) validate(form Form) error {
	checks := append(rules.Required(RequiredFields...), m.cfg.rules...)
	violations, err := m.checker.Check(ruleSnapshot(form), checks...)
	if err != nil {
		return fmt.Errorf("formdraft: readiness rules: %w", err)
	}
	if len(violations) == 0 {
		return nil
	}
	var (
		fields   []string
		messages []error
	)
	seen := map[string]bool{}
	for _, violation := range violations {
		for _, field := range violation.Fields {
			if !seen[field] {
				seen[field] = true
				fields = append(fields, field)
			}
		}
		message := violation.Message
		if message == "" {
			message = violation.Rule + " failed"
		}
		messages = append(messages, errors.New(message))
	}
	return &ValidationError{Fields: fields, Err: errors.Join(messages...)}
}

// Payload builds the submission body from the current draft without
// checking required fields.
func (m *Manager) Payload() (payload.Form, error) {
	m.mu.Lock()
	snapshot := m.state.Clone()
	m.mu.Unlock()
	return m.buildPayload(snapshot)
}

func (m *Manager) buildPayload(form Form) (payload.Form, error) {
	out, err := BuildPayload(form)
	if err != nil {
		return payload.Form{}, err
	}
	if m.cfg.sanitizer != nil {
		out = payload.Sanitize(out, m.cfg.sanitizer)
	}
	return out, nil
}

// SubmitDraft validates the draft and sends it in one request. Validation
// failures return *ValidationError without any network call; delivery
// failures return *TransportError. The draft is never modified and nothing
// is retried. ctx bounds the request.
func (m *Manager) SubmitDraft(ctx context.Context) (Result, error) {
	start := m.cfg.now()

	m.mu.Lock()
	snapshot := m.state.Clone()
	m.mu.Unlock()

	body, err := m.preparePayload(snapshot)
	if err != nil {
		m.finishSubmit(ctx, start, snapshot, "", err)
		return Result{}, err
	}

	endpoint := submitterEndpoint(m.cfg.submitter)
	if m.cfg.submitter == nil {
		err = &TransportError{Endpoint: endpoint, Err: submit.ErrEndpointRequired}
	} else if sendErr := m.cfg.submitter.Submit(ctx, body); sendErr != nil {
		err = transportError(endpoint, sendErr)
	}
	m.finishSubmit(ctx, start, snapshot, endpoint, err)
	if err != nil {
		return Result{}, err
	}
	return Result{Endpoint: endpoint, Payload: body, SubmittedAt: m.cfg.now()}, nil
}

func (m *Manager) preparePayload(form Form) (payload.Form, error) {
	if err := m.validate(form); err != nil {
		return payload.Form{}, err
	}
	body, err := m.buildPayload(form)
	if err != nil {
		return payload.Form{}, err
	}
	if err := payload.Validate(body); err != nil {
		return payload.Form{}, &ValidationError{Err: err}
	}
	return body, nil
}

func (m *Manager) finishSubmit(ctx context.Context, start time.Time, form Form, endpoint string, err error) {
	fields := map[string]any{"endpoint": endpoint, "questions": len(form.Questions)}
	m.logOperation("submit", start, err, fields)

	if err == nil {
		m.emit(ctx, activity.VerbDraftSubmitted, activity.DraftEventInput{
			FormName: form.FormName,
			Metadata: map[string]any{"endpoint": endpoint},
		})
		return
	}
	reason := "error"
	var validationErr *ValidationError
	var transportErr *TransportError
	switch {
	case errors.As(err, &validationErr):
		reason = "validation"
	case errors.As(err, &transportErr):
		reason = "transport"
	}
	m.emit(ctx, activity.VerbDraftSubmitFailed, activity.DraftEventInput{
		FormName: form.FormName,
		Metadata: map[string]any{"reason": reason, "error": err.Error()},
	})
}

func transportError(endpoint string, err error) *TransportError {
	out := &TransportError{Endpoint: endpoint, Err: err}
	var statusErr *submit.StatusError
	if errors.As(err, &statusErr) {
		out.StatusCode = statusErr.StatusCode
		if statusErr.Endpoint != "" {
			out.Endpoint = statusErr.Endpoint
		}
	}
	return out
}

func submitterEndpoint(s submit.Submitter) string {
	if e, ok := s.(interface{ Endpoint() string }); ok {
		return e.Endpoint()
	}
	return ""
}
