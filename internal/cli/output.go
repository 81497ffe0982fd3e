package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	formdraft "github.com/goliatone/go-formdraft"
	"github.com/goliatone/go-formdraft/internal/prompt"
	"github.com/goliatone/go-formdraft/pkg/payload"
)

// userError keeps the typed cause while printing a message meant for people.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }

func describe(err error) error {
	if err == nil {
		return nil
	}
	return &userError{msg: describeError(err), err: err}
}

func describeError(err error) string {
	var (
		validationErr *formdraft.ValidationError
		transportErr  *formdraft.TransportError
		boundsErr     *formdraft.OutOfBoundsError
		fieldErr      *formdraft.FieldError
	)
	switch {
	case errors.As(err, &validationErr):
		if len(validationErr.Fields) > 0 {
			return "draft is not ready: missing or invalid " + strings.Join(validationErr.Fields, ", ")
		}
		return "draft is not ready: " + validationErr.Err.Error()
	case errors.As(err, &transportErr):
		if transportErr.StatusCode != 0 {
			return fmt.Sprintf("submission failed: %s answered %d", transportErr.Endpoint, transportErr.StatusCode)
		}
		return fmt.Sprintf("submission failed: %v", transportErr.Err)
	case errors.As(err, &boundsErr):
		return fmt.Sprintf("%s %d does not exist (there are %d)", boundsErr.Kind, boundsErr.Index+1, boundsErr.Len)
	case errors.As(err, &fieldErr):
		return fmt.Sprintf("%s has no settable field %q", fieldErr.Target, fieldErr.Name)
	default:
		return err.Error()
	}
}

func writeDraft(w io.Writer, form formdraft.Form, status formdraft.Status, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(form)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(form); err != nil {
			return err
		}
		return enc.Close()
	case "", "text":
		_, err := io.WriteString(w, summarize(form, status))
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func summarize(form formdraft.Form, status formdraft.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (order %s, tier %s, mandatory %s) [%s]\n",
		orDash(form.FormName), orDash(form.FormOrder), orDash(form.Tier), orDash(formdraft.FormatChoice(form.Mandatory)), status)
	if form.Title != "" {
		fmt.Fprintf(&b, "  %s\n", form.Title)
	}
	if form.Description != "" {
		fmt.Fprintf(&b, "  %s\n", form.Description)
	}
	for _, question := range form.Questions {
		flags := []string{orDash(question.Type)}
		if question.IsOptional {
			flags = append(flags, "optional")
		}
		if question.ParentID != "" {
			flags = append(flags, "after "+question.ParentID)
		}
		fmt.Fprintf(&b, "%d. %s [%s]\n", question.Order, orDash(question.QuestionText), strings.Join(flags, ", "))
		for j, option := range question.Options {
			line := fmt.Sprintf("   %c) %s = %s", 'a'+rune(j%26), orDash(option.Text), orDash(option.Value))
			if option.Jump {
				line += " -> " + orDash(option.JumpTo)
			}
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func writePayload(w io.Writer, body payload.Form) error {
	raw, err := payload.Marshal(body)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return err
}

// isPromptFailure reports errors that come from the prompt layer rather than
// from a draft operation.
func isPromptFailure(err error) bool {
	return errors.Is(err, prompt.ErrAborted) || errors.Is(err, context.Canceled)
}
