package formdraft

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-formdraft/internal/hydrate"
	"github.com/goliatone/go-formdraft/pkg/store"
)

var draftDecoder = hydrate.NewDecoder(
	hydrate.WithPreHook[Form](normalizeLegacyDraft),
)

func decodeDraft(key string, codec store.Codec, data []byte) (Form, error) {
	if codec == nil {
		codec = store.JSONCodec{}
	}
	form, err := draftDecoder.DecodeBytes(hydrate.Context{Key: key, Format: codec.Name()}, data, codec.Unmarshal)
	if err != nil {
		return Form{}, fmt.Errorf("formdraft: %w", err)
	}
	return form, nil
}

// normalizeLegacyDraft accepts drafts saved by the browser builder, where
// mandatory was "yes"/"no", jump and isOptional were "true"/"false" and
// formOrder could be numeric. Question orders are renumbered to their
// positions only when one of them was stored as text or is missing; numeric
// orders are kept as saved.
func normalizeLegacyDraft(_ hydrate.Context, doc map[string]any) (map[string]any, error) {
	if v, ok := doc["formOrder"]; ok {
		doc["formOrder"] = textValue(v)
	}
	if v, ok := doc["mandatory"]; ok {
		choice, err := legacyChoice(v)
		if err != nil {
			return nil, err
		}
		doc["mandatory"] = choice
	}

	questions, _ := doc["questions"].([]any)
	legacyOrders := false
	for i, raw := range questions {
		question, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if v, ok := question["isOptional"]; ok {
			flag, err := legacyFlag(v)
			if err != nil {
				return nil, fmt.Errorf("questions[%d].isOptional: %w", i, err)
			}
			question["isOptional"] = flag
		}
		switch question["order"].(type) {
		case float64, int:
		default:
			legacyOrders = true
		}
		options, _ := question["options"].([]any)
		for j, rawOption := range options {
			option, ok := rawOption.(map[string]any)
			if !ok {
				continue
			}
			if v, ok := option["jump"]; ok {
				flag, err := legacyFlag(v)
				if err != nil {
					return nil, fmt.Errorf("questions[%d].options[%d].jump: %w", i, j, err)
				}
				option["jump"] = flag
			}
			if v, ok := option["jumpTo"]; ok {
				option["jumpTo"] = textValue(v)
			}
		}
	}
	if legacyOrders {
		for i, raw := range questions {
			if question, ok := raw.(map[string]any); ok {
				question["order"] = i + 1
			}
		}
	}
	return doc, nil
}

func legacyChoice(v any) (any, error) {
	switch value := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return value, nil
	case string:
		choice, err := parseChoice(value)
		if err != nil {
			return nil, fmt.Errorf("mandatory: %w", err)
		}
		if choice == nil {
			return nil, nil
		}
		return *choice, nil
	default:
		return nil, fmt.Errorf("mandatory: unexpected %T", v)
	}
}

func legacyFlag(v any) (bool, error) {
	switch value := v.(type) {
	case nil:
		return false, nil
	case bool:
		return value, nil
	case string:
		return parseFlag(value)
	default:
		return false, fmt.Errorf("unexpected %T", v)
	}
}

func textValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprint(value)
	}
}
