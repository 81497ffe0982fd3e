package formdraft

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formdraft/pkg/activity"
)

// UpdateField sets a top-level field. Accepted names are formName, formOrder,
// title, description, tier and mandatory ("yes", "no" or "" to unset).
func (m *Manager) UpdateField(name, value string) error {
	return m.apply("update_field", func(current Form) (Form, change, error) {
		next := current
		var old any
		switch name {
		case "formName":
			old, next.FormName = current.FormName, value
		case "formOrder":
			old, next.FormOrder = current.FormOrder, value
		case "title":
			old, next.Title = current.Title, value
		case "description":
			old, next.Description = current.Description, value
		case "tier":
			old, next.Tier = current.Tier, value
		case "mandatory":
			choice, err := parseChoice(value)
			if err != nil {
				return current, change{}, &ValidationError{Fields: []string{name}, Err: err}
			}
			old, next.Mandatory = FormatChoice(current.Mandatory), choice
		default:
			return current, change{}, &FieldError{Target: "form", Name: name}
		}
		return next, change{
			verb:   activity.VerbFieldUpdated,
			input:  activity.DraftEventInput{Field: name, OldValue: old, NewValue: value},
			fields: map[string]any{"field": name},
		}, nil
	})
}

// AddQuestion appends an empty question and returns it.
func (m *Manager) AddQuestion() (Question, error) {
	var added Question
	err := m.apply("add_question", func(current Form) (Form, change, error) {
		added = Question{
			QuestionID: m.cfg.newID(),
			Order:      len(current.Questions) + 1,
			Options:    []Option{},
		}
		next := current
		next.Questions = appendQuestion(current.Questions, added)
		return next, change{
			verb:   activity.VerbQuestionAdded,
			input:  activity.DraftEventInput{QuestionID: added.QuestionID},
			fields: map[string]any{"question_id": added.QuestionID},
		}, nil
	})
	if err != nil {
		return Question{}, err
	}
	return added.Clone(), nil
}

// UpdateQuestion sets one field of the question at index. Accepted names are
// questionText, type, isOptional ("true"/"false") and parentId.
func (m *Manager) UpdateQuestion(index int, name, value string) error {
	return m.apply("update_question", func(current Form) (Form, change, error) {
		if err := checkIndex("update_question", "question", index, len(current.Questions)); err != nil {
			return current, change{}, err
		}
		question := current.Questions[index]
		var old any
		switch name {
		case "questionText":
			old, question.QuestionText = question.QuestionText, value
		case "type":
			old, question.Type = question.Type, value
		case "parentId":
			old, question.ParentID = question.ParentID, value
		case "isOptional":
			flag, err := parseFlag(value)
			if err != nil {
				return current, change{}, &ValidationError{Fields: []string{name}, Err: err}
			}
			old, question.IsOptional = strconv.FormatBool(question.IsOptional), flag
		default:
			return current, change{}, &FieldError{Target: "question", Name: name}
		}
		next := current
		next.Questions = replaceQuestion(current.Questions, index, question)
		return next, change{
			verb:   activity.VerbQuestionUpdated,
			input:  activity.DraftEventInput{QuestionID: question.QuestionID, Field: name, OldValue: old, NewValue: value},
			fields: map[string]any{"index": index, "field": name},
		}, nil
	})
}

// UpdateOption sets one field of an option. Accepted names are value, text,
// jump ("true"/"false") and jumpTo.
func (m *Manager) UpdateOption(questionIndex, optionIndex int, name, value string) error {
	return m.apply("update_option", func(current Form) (Form, change, error) {
		if err := checkIndex("update_option", "question", questionIndex, len(current.Questions)); err != nil {
			return current, change{}, err
		}
		question := current.Questions[questionIndex]
		if err := checkIndex("update_option", "option", optionIndex, len(question.Options)); err != nil {
			return current, change{}, err
		}
		option := question.Options[optionIndex]
		var old any
		switch name {
		case "value":
			old, option.Value = option.Value, value
		case "text":
			old, option.Text = option.Text, value
		case "jumpTo":
			old, option.JumpTo = option.JumpTo, value
		case "jump":
			flag, err := parseFlag(value)
			if err != nil {
				return current, change{}, &ValidationError{Fields: []string{name}, Err: err}
			}
			old, option.Jump = strconv.FormatBool(option.Jump), flag
		default:
			return current, change{}, &FieldError{Target: "option", Name: name}
		}
		question.Options = replaceOption(question.Options, optionIndex, option)
		next := current
		next.Questions = replaceQuestion(current.Questions, questionIndex, question)
		return next, change{
			verb: activity.VerbOptionUpdated,
			input: activity.DraftEventInput{
				QuestionID: question.QuestionID,
				OptionID:   option.OptionID,
				Field:      name,
				OldValue:   old,
				NewValue:   value,
			},
			fields: map[string]any{"question_index": questionIndex, "option_index": optionIndex, "field": name},
		}, nil
	})
}

// AddOption appends an empty option to the question at questionIndex.
func (m *Manager) AddOption(questionIndex int) (Option, error) {
	var added Option
	err := m.apply("add_option", func(current Form) (Form, change, error) {
		if err := checkIndex("add_option", "question", questionIndex, len(current.Questions)); err != nil {
			return current, change{}, err
		}
		added = Option{OptionID: m.cfg.newID()}
		question := current.Questions[questionIndex]
		options := make([]Option, len(question.Options), len(question.Options)+1)
		copy(options, question.Options)
		question.Options = append(options, added)

		next := current
		next.Questions = replaceQuestion(current.Questions, questionIndex, question)
		return next, change{
			verb:   activity.VerbOptionAdded,
			input:  activity.DraftEventInput{QuestionID: question.QuestionID, OptionID: added.OptionID},
			fields: map[string]any{"question_index": questionIndex},
		}, nil
	})
	if err != nil {
		return Option{}, err
	}
	return added, nil
}

// DeleteQuestion removes the question at questionIndex and renumbers the
// rest.
func (m *Manager) DeleteQuestion(questionIndex int) error {
	return m.apply("delete_question", func(current Form) (Form, change, error) {
		if err := checkIndex("delete_question", "question", questionIndex, len(current.Questions)); err != nil {
			return current, change{}, err
		}
		removed := current.Questions[questionIndex]
		questions := make([]Question, 0, len(current.Questions)-1)
		questions = append(questions, current.Questions[:questionIndex]...)
		questions = append(questions, current.Questions[questionIndex+1:]...)
		renumber(questions)

		next := current
		next.Questions = questions
		return next, change{
			verb:   activity.VerbQuestionDeleted,
			input:  activity.DraftEventInput{QuestionID: removed.QuestionID},
			fields: map[string]any{"index": questionIndex},
		}, nil
	})
}

// DeleteOption removes one option. Options carry no order, so nothing is
// renumbered.
func (m *Manager) DeleteOption(questionIndex, optionIndex int) error {
	return m.apply("delete_option", func(current Form) (Form, change, error) {
		if err := checkIndex("delete_option", "question", questionIndex, len(current.Questions)); err != nil {
			return current, change{}, err
		}
		question := current.Questions[questionIndex]
		if err := checkIndex("delete_option", "option", optionIndex, len(question.Options)); err != nil {
			return current, change{}, err
		}
		removed := question.Options[optionIndex]
		options := make([]Option, 0, len(question.Options)-1)
		options = append(options, question.Options[:optionIndex]...)
		options = append(options, question.Options[optionIndex+1:]...)
		question.Options = options

		next := current
		next.Questions = replaceQuestion(current.Questions, questionIndex, question)
		return next, change{
			verb:   activity.VerbOptionDeleted,
			input:  activity.DraftEventInput{QuestionID: question.QuestionID, OptionID: removed.OptionID},
			fields: map[string]any{"question_index": questionIndex, "option_index": optionIndex},
		}, nil
	})
}

// DuplicateQuestion inserts a copy of the question at index right after it.
// The copy gets a new question id; its options keep their ids.
func (m *Manager) DuplicateQuestion(index int) (Question, error) {
	var duplicate Question
	err := m.apply("duplicate_question", func(current Form) (Form, change, error) {
		if err := checkIndex("duplicate_question", "question", index, len(current.Questions)); err != nil {
			return current, change{}, err
		}
		source := current.Questions[index]
		duplicate = source.Clone()
		duplicate.QuestionID = m.cfg.newID()

		questions := make([]Question, 0, len(current.Questions)+1)
		questions = append(questions, current.Questions[:index+1]...)
		questions = append(questions, duplicate)
		questions = append(questions, current.Questions[index+1:]...)
		renumber(questions)
		duplicate = questions[index+1]

		next := current
		next.Questions = questions
		return next, change{
			verb: activity.VerbQuestionDuplicated,
			input: activity.DraftEventInput{
				QuestionID: duplicate.QuestionID,
				Metadata:   map[string]any{"source_question_id": source.QuestionID},
			},
			fields: map[string]any{"index": index},
		}, nil
	})
	if err != nil {
		return Question{}, err
	}
	return duplicate.Clone(), nil
}

// MoveQuestion moves the question at from to position to and renumbers.
func (m *Manager) MoveQuestion(from, to int) error {
	return m.apply("move_question", func(current Form) (Form, change, error) {
		if err := checkIndex("move_question", "question", from, len(current.Questions)); err != nil {
			return current, change{}, err
		}
		if err := checkIndex("move_question", "question", to, len(current.Questions)); err != nil {
			return current, change{}, err
		}
		moved := current.Questions[from]
		rest := make([]Question, 0, len(current.Questions))
		rest = append(rest, current.Questions[:from]...)
		rest = append(rest, current.Questions[from+1:]...)

		questions := make([]Question, 0, len(current.Questions))
		questions = append(questions, rest[:to]...)
		questions = append(questions, moved)
		questions = append(questions, rest[to:]...)
		renumber(questions)

		next := current
		next.Questions = questions
		return next, change{
			verb: activity.VerbQuestionMoved,
			input: activity.DraftEventInput{
				QuestionID: moved.QuestionID,
				OldValue:   from + 1,
				NewValue:   to + 1,
			},
			fields: map[string]any{"from": from, "to": to},
		}, nil
	})
}

func appendQuestion(questions []Question, question Question) []Question {
	out := make([]Question, len(questions), len(questions)+1)
	copy(out, questions)
	return append(out, question)
}

func replaceQuestion(questions []Question, index int, question Question) []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	out[index] = question
	return out
}

func replaceOption(options []Option, index int, option Option) []Option {
	out := make([]Option, len(options))
	copy(out, options)
	out[index] = option
	return out
}

// renumber sets Order to the 1-based position. questions must not be shared
// with a previous draft.
func renumber(questions []Question) {
	for i := range questions {
		questions[i].Order = i + 1
	}
}

// parseChoice binds the mandatory select: "yes"/"no", or "" for unset.
func parseChoice(value string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return nil, nil
	case "yes", "true":
		return Bool(true), nil
	case "no", "false":
		return Bool(false), nil
	default:
		return nil, fmt.Errorf("expected yes, no or empty, got %q", value)
	}
}

// FormatChoice renders a mandatory value the way the select shows it.
func FormatChoice(v *bool) string {
	switch {
	case v == nil:
		return ""
	case *v:
		return "yes"
	default:
		return "no"
	}
}

// parseFlag binds checkbox-style values. An empty value is false.
func parseFlag(value string) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return false, nil
	}
	flag, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("expected true or false, got %q", value)
	}
	return flag, nil
}
