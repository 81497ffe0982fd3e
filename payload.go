package formdraft

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formdraft/pkg/payload"
)

// BuildPayload converts a draft into the submission body. formOrder and the
// jumpTo of options with Jump set must be integers.
func BuildPayload(form Form) (payload.Form, error) {
	var (
		fields []string
		errs   []error
	)
	order, err := parseInt(form.FormOrder)
	if err != nil {
		fields = append(fields, "formOrder")
		errs = append(errs, fmt.Errorf("formOrder: %w", err))
	}

	out := payload.Form{
		FormName:    form.FormName,
		Order:       order,
		Title:       form.Title,
		Description: form.Description,
		Tier:        form.Tier,
		Mandatory:   form.Mandatory != nil && *form.Mandatory,
		Questions:   make([]payload.Question, 0, len(form.Questions)),
	}
	for i, question := range form.Questions {
		q := payload.Question{
			QuestionText: question.QuestionText,
			Order:        question.Order,
			IsOptional:   question.IsOptional,
			Type:         question.Type,
			Options:      make([]payload.Option, 0, len(question.Options)),
			ParentID:     question.ParentID,
		}
		for j, option := range question.Options {
			o := payload.Option{Value: option.Value, Text: option.Text, Jump: option.Jump}
			if option.Jump {
				target, err := parseInt(option.JumpTo)
				if err != nil {
					field := fmt.Sprintf("questions[%d].options[%d].jumpTo", i, j)
					fields = append(fields, field)
					errs = append(errs, fmt.Errorf("%s: %w", field, err))
				} else {
					o.JumpTo = &target
				}
			}
			q.Options = append(q.Options, o)
		}
		out.Questions = append(out.Questions, q)
	}

	if len(errs) > 0 {
		return payload.Form{}, &ValidationError{Fields: fields, Err: errors.Join(errs...)}
	}
	return out, nil
}

func parseInt(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("expected an integer, got %q", value)
	}
	return n, nil
}
