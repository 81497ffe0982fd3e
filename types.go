package formdraft

// Form is the draft being edited. FormOrder keeps the text the user typed and
// is parsed to an integer only when a payload is built.
type Form struct {
	FormName    string     `json:"formName" yaml:"formName"`
	FormOrder   string     `json:"formOrder" yaml:"formOrder"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Tier        string     `json:"tier" yaml:"tier"`
	Mandatory   *bool      `json:"mandatory" yaml:"mandatory"`
	Questions   []Question `json:"questions" yaml:"questions"`
}

// Question is one entry of the form. Structural edits keep Order equal to its
// 1-based position.
type Question struct {
	QuestionID   string   `json:"questionId" yaml:"questionId"`
	Order        int      `json:"order" yaml:"order"`
	QuestionText string   `json:"questionText" yaml:"questionText"`
	Type         string   `json:"type" yaml:"type"`
	IsOptional   bool     `json:"isOptional" yaml:"isOptional"`
	Options      []Option `json:"options" yaml:"options"`
	ParentID     string   `json:"parentId,omitempty" yaml:"parentId,omitempty"`
}

// Option is one answer of a question. JumpTo references a question order and
// only matters when Jump is set.
type Option struct {
	OptionID string `json:"optionId" yaml:"optionId"`
	Value    string `json:"value" yaml:"value"`
	Text     string `json:"text" yaml:"text"`
	Jump     bool   `json:"jump" yaml:"jump"`
	JumpTo   string `json:"jumpTo" yaml:"jumpTo"`
}

// Bool returns a pointer to v, for populating Form.Mandatory.
func Bool(v bool) *bool {
	return &v
}

// Clone returns a deep copy of f.
func (f Form) Clone() Form {
	out := f
	if f.Mandatory != nil {
		out.Mandatory = Bool(*f.Mandatory)
	}
	if f.Questions != nil {
		out.Questions = make([]Question, len(f.Questions))
		for i, question := range f.Questions {
			out.Questions[i] = question.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of q.
func (q Question) Clone() Question {
	out := q
	if q.Options != nil {
		out.Options = make([]Option, len(q.Options))
		copy(out.Options, q.Options)
	}
	return out
}

// Status is the persistence state of the draft.
type Status int

const (
	// StatusDirty means the draft has changes the store has not seen.
	StatusDirty Status = iota
	// StatusPersisted means the draft equals the stored copy.
	StatusPersisted
)

func (s Status) String() string {
	switch s {
	case StatusPersisted:
		return "persisted"
	default:
		return "dirty"
	}
}

// yamlForm mirrors Form with pointer slices so a nil list is written as null
// rather than [].
type yamlForm struct {
	FormName    string      `yaml:"formName"`
	FormOrder   string      `yaml:"formOrder"`
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Tier        string      `yaml:"tier"`
	Mandatory   *bool       `yaml:"mandatory"`
	Questions   *[]Question `yaml:"questions"`
}

type yamlQuestion struct {
	QuestionID   string    `yaml:"questionId"`
	Order        int       `yaml:"order"`
	QuestionText string    `yaml:"questionText"`
	Type         string    `yaml:"type"`
	IsOptional   bool      `yaml:"isOptional"`
	Options      *[]Option `yaml:"options"`
	ParentID     string    `yaml:"parentId,omitempty"`
}

// MarshalYAML keeps nil and empty question lists distinct.
func (f Form) MarshalYAML() (any, error) {
	out := yamlForm{
		FormName:    f.FormName,
		FormOrder:   f.FormOrder,
		Title:       f.Title,
		Description: f.Description,
		Tier:        f.Tier,
		Mandatory:   f.Mandatory,
	}
	if f.Questions != nil {
		out.Questions = &f.Questions
	}
	return out, nil
}

// MarshalYAML keeps nil and empty option lists distinct.
func (q Question) MarshalYAML() (any, error) {
	out := yamlQuestion{
		QuestionID:   q.QuestionID,
		Order:        q.Order,
		QuestionText: q.QuestionText,
		Type:         q.Type,
		IsOptional:   q.IsOptional,
		ParentID:     q.ParentID,
	}
	if q.Options != nil {
		out.Options = &q.Options
	}
	return out, nil
}
