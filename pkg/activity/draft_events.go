package activity

import (
	"strings"
	"time"
)

// Verbs emitted by the draft manager.
const (
	VerbDraftInitialized   = "draft.initialized"
	VerbDraftReplaced      = "draft.replaced"
	VerbFieldUpdated       = "draft.field.updated"
	VerbQuestionAdded      = "draft.question.added"
	VerbQuestionUpdated    = "draft.question.updated"
	VerbQuestionDeleted    = "draft.question.deleted"
	VerbQuestionDuplicated = "draft.question.duplicated"
	VerbQuestionMoved      = "draft.question.moved"
	VerbOptionAdded        = "draft.option.added"
	VerbOptionUpdated      = "draft.option.updated"
	VerbOptionDeleted      = "draft.option.deleted"
	VerbDraftSaved         = "draft.saved"
	VerbDraftCleared       = "draft.cleared"
	VerbDraftSubmitted     = "draft.submitted"
	VerbDraftSubmitFailed  = "draft.submit_failed"
)

// Object types carried by draft events.
const (
	ObjectDraft    = "form.draft"
	ObjectQuestion = "form.question"
	ObjectOption   = "form.option"
)

// DraftEventInput describes the common fields for draft lifecycle events.
type DraftEventInput struct {
	ActorID    string
	FormName   string
	StoreKey   string
	SnapshotID string
	QuestionID string
	OptionID   string
	Field      string
	OldValue   any
	NewValue   any
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildDraftEvent constructs an event for verb. The object type follows the
// verb family and the object id falls back from option to question to store
// key.
func BuildDraftEvent(verb string, input DraftEventInput) Event {
	objectType := objectTypeFor(verb)

	metadata := cloneMap(input.Metadata)
	if input.Field != "" {
		metadata = ensureMetadata(metadata)
		metadata["field"] = input.Field
	}
	if input.OldValue != nil {
		metadata = ensureMetadata(metadata)
		metadata["old_value"] = input.OldValue
	}
	if input.NewValue != nil {
		metadata = ensureMetadata(metadata)
		metadata["new_value"] = input.NewValue
	}
	if input.QuestionID != "" && objectType == ObjectOption {
		metadata = ensureMetadata(metadata)
		metadata["question_id"] = input.QuestionID
	}
	if input.StoreKey != "" {
		metadata = ensureMetadata(metadata)
		metadata["store_key"] = input.StoreKey
	}

	var objectID string
	switch objectType {
	case ObjectOption:
		objectID = strings.TrimSpace(input.OptionID)
	case ObjectQuestion:
		objectID = strings.TrimSpace(input.QuestionID)
	}
	if objectID == "" {
		objectID = strings.TrimSpace(input.StoreKey)
	}
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		ObjectType: objectType,
		ObjectID:   objectID,
		FormName:   input.FormName,
		SnapshotID: strings.TrimSpace(input.SnapshotID),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func objectTypeFor(verb string) string {
	switch {
	case strings.HasPrefix(verb, "draft.question."):
		return ObjectQuestion
	case strings.HasPrefix(verb, "draft.option."):
		return ObjectOption
	default:
		return ObjectDraft
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
