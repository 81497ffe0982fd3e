package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	formdraft "github.com/goliatone/go-formdraft"
	"github.com/goliatone/go-formdraft/internal/prompt"
)

// Menu entries of the edit session, in display order.
const (
	actionDetails   = "Edit form details"
	actionAdd       = "Add question"
	actionEdit      = "Edit question"
	actionDelete    = "Delete question"
	actionDuplicate = "Duplicate question"
	actionMove      = "Move question"
	actionShow      = "Show draft"
	actionSave      = "Save draft"
	actionSubmit    = "Submit"
	actionClear     = "Clear saved draft"
	actionQuit      = "Quit"
)

var menu = []string{
	actionDetails, actionAdd, actionEdit, actionDelete, actionDuplicate, actionMove,
	actionShow, actionSave, actionSubmit, actionClear, actionQuit,
}

var mandatoryChoices = []string{"unset", "yes", "no"}

// Session drives a Manager from prompts. Operation errors are shown to the
// user and the session continues; only prompt failures end it.
type Session struct {
	Manager *formdraft.Manager
	Driver  prompt.Driver
}

// Run shows the menu until the user quits. Unsaved changes are offered for
// saving first.
func (s *Session) Run(ctx context.Context) error {
	for {
		choice, err := s.Driver.Select(ctx, prompt.SelectConfig{
			Message:  "What next?",
			Options:  menu,
			PageSize: len(menu),
		})
		if err != nil {
			return err
		}
		if choice < 0 || choice >= len(menu) {
			continue
		}

		var opErr error
		switch menu[choice] {
		case actionDetails:
			opErr = s.editDetails(ctx)
		case actionAdd:
			opErr = s.addQuestion(ctx)
		case actionEdit:
			opErr = s.withQuestion(ctx, "Edit which question?", s.editQuestion)
		case actionDelete:
			opErr = s.withQuestion(ctx, "Delete which question?", func(_ context.Context, i int) error {
				return s.Manager.DeleteQuestion(i)
			})
		case actionDuplicate:
			opErr = s.withQuestion(ctx, "Duplicate which question?", func(_ context.Context, i int) error {
				_, err := s.Manager.DuplicateQuestion(i)
				return err
			})
		case actionMove:
			opErr = s.withQuestion(ctx, "Move which question?", s.moveQuestion)
		case actionShow:
			opErr = s.Driver.Info(ctx, strings.TrimRight(summarize(s.Manager.State(), s.Manager.Status()), "\n"))
		case actionSave:
			if opErr = s.Manager.PersistDraft(ctx); opErr == nil {
				opErr = s.Driver.Info(ctx, "Draft saved")
			}
		case actionSubmit:
			opErr = s.submit(ctx)
		case actionClear:
			if opErr = s.Manager.ClearSavedDraftAndReset(ctx); opErr == nil {
				opErr = s.Driver.Info(ctx, "Saved draft cleared")
			}
		case actionQuit:
			return s.quit(ctx)
		}
		if opErr != nil {
			if isPromptFailure(opErr) {
				return opErr
			}
			if err := s.Driver.Info(ctx, "Error: "+describeError(opErr)); err != nil {
				return err
			}
		}
	}
}

func (s *Session) editDetails(ctx context.Context) error {
	state := s.Manager.State()
	fields := []struct {
		name, label, current string
	}{
		{"formName", "Form name", state.FormName},
		{"formOrder", "Form order", state.FormOrder},
		{"title", "Title", state.Title},
		{"description", "Description", state.Description},
		{"tier", "Tier", state.Tier},
	}
	for _, field := range fields {
		cfg := prompt.InputConfig{Message: field.label, Default: field.current}
		if field.name == "formOrder" {
			cfg.Validator = validateNumber
		}
		value, err := s.Driver.Input(ctx, cfg)
		if err != nil {
			return err
		}
		if value == field.current {
			continue
		}
		if err := s.Manager.UpdateField(field.name, value); err != nil {
			return err
		}
	}

	current := formdraft.FormatChoice(state.Mandatory)
	defaultIndex := 0
	if current != "" {
		defaultIndex = prompt.IndexOf(mandatoryChoices, current)
	}
	choice, err := s.Driver.Select(ctx, prompt.SelectConfig{
		Message:      "Mandatory",
		Options:      mandatoryChoices,
		DefaultIndex: defaultIndex,
	})
	if err != nil {
		return err
	}
	value := ""
	if choice > 0 {
		value = mandatoryChoices[choice]
	}
	if value == current {
		return nil
	}
	return s.Manager.UpdateField("mandatory", value)
}

func (s *Session) addQuestion(ctx context.Context) error {
	question, err := s.Manager.AddQuestion()
	if err != nil {
		return err
	}
	return s.editQuestion(ctx, question.Order-1)
}

func (s *Session) editQuestion(ctx context.Context, index int) error {
	questions := s.Manager.State().Questions
	if index < 0 || index >= len(questions) {
		return &formdraft.OutOfBoundsError{Op: "update_question", Kind: "question", Index: index, Len: len(questions)}
	}
	question := questions[index]

	text, err := s.Driver.Input(ctx, prompt.InputConfig{Message: "Question text", Default: question.QuestionText})
	if err != nil {
		return err
	}
	kind, err := s.Driver.Input(ctx, prompt.InputConfig{Message: "Question type", Default: question.Type, Help: "e.g. radio, checkbox, text"})
	if err != nil {
		return err
	}
	optional, err := s.Driver.Confirm(ctx, prompt.ConfirmConfig{Message: "Optional?", Default: question.IsOptional})
	if err != nil {
		return err
	}
	parent, err := s.Driver.Input(ctx, prompt.InputConfig{Message: "Depends on question id (blank for none)", Default: question.ParentID})
	if err != nil {
		return err
	}
	updates := [][2]string{
		{"questionText", text},
		{"type", kind},
		{"isOptional", strconv.FormatBool(optional)},
		{"parentId", parent},
	}
	for _, u := range updates {
		if err := s.Manager.UpdateQuestion(index, u[0], u[1]); err != nil {
			return err
		}
	}

	for {
		more, err := s.Driver.Confirm(ctx, prompt.ConfirmConfig{Message: "Add an option?"})
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		if err := s.addOption(ctx, index); err != nil {
			return err
		}
	}
}

func (s *Session) addOption(ctx context.Context, questionIndex int) error {
	if _, err := s.Manager.AddOption(questionIndex); err != nil {
		return err
	}
	optionIndex := len(s.Manager.State().Questions[questionIndex].Options) - 1

	value, err := s.Driver.Input(ctx, prompt.InputConfig{Message: "Option value"})
	if err != nil {
		return err
	}
	text, err := s.Driver.Input(ctx, prompt.InputConfig{Message: "Option text"})
	if err != nil {
		return err
	}
	jump, err := s.Driver.Confirm(ctx, prompt.ConfirmConfig{Message: "Jump to another question when chosen?"})
	if err != nil {
		return err
	}
	updates := [][2]string{{"value", value}, {"text", text}, {"jump", strconv.FormatBool(jump)}}
	if jump {
		target, err := s.Driver.Input(ctx, prompt.InputConfig{Message: "Jump to question number", Validator: validateNumber})
		if err != nil {
			return err
		}
		updates = append(updates, [2]string{"jumpTo", target})
	}
	for _, u := range updates {
		if err := s.Manager.UpdateOption(questionIndex, optionIndex, u[0], u[1]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) moveQuestion(ctx context.Context, from int) error {
	target, err := s.Driver.Input(ctx, prompt.InputConfig{Message: "New position", Validator: validateNumber})
	if err != nil {
		return err
	}
	to, err := strconv.Atoi(strings.TrimSpace(target))
	if err != nil {
		return err
	}
	return s.Manager.MoveQuestion(from, to-1)
}

func (s *Session) submit(ctx context.Context) error {
	result, err := s.Manager.SubmitDraft(ctx)
	if err != nil {
		return err
	}
	return s.Driver.Info(ctx, "Form submitted to "+result.Endpoint)
}

func (s *Session) quit(ctx context.Context) error {
	if s.Manager.Status() == formdraft.StatusPersisted {
		return nil
	}
	save, err := s.Driver.Confirm(ctx, prompt.ConfirmConfig{Message: "Save draft before quitting?", Default: true})
	if err != nil {
		return err
	}
	if !save {
		return nil
	}
	return s.Manager.PersistDraft(ctx)
}

// withQuestion asks which question to act on and runs fn with its index.
func (s *Session) withQuestion(ctx context.Context, message string, fn func(context.Context, int) error) error {
	state := s.Manager.State()
	if len(state.Questions) == 0 {
		return s.Driver.Info(ctx, "The draft has no questions yet")
	}
	labels := make([]string, len(state.Questions))
	for i, question := range state.Questions {
		labels[i] = fmt.Sprintf("%d. %s", question.Order, orDash(question.QuestionText))
	}
	index, err := s.Driver.Select(ctx, prompt.SelectConfig{Message: message, Options: labels})
	if err != nil {
		return err
	}
	return fn(ctx, index)
}

func validateNumber(value string) error {
	if _, err := strconv.Atoi(strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("enter a whole number")
	}
	return nil
}
