// Package payload holds the wire representation of a submitted form and the
// checks applied to it before it leaves the process.
package payload

import "encoding/json"

// Form is the JSON body POSTed to the submission endpoint.
type Form struct {
	FormName    string     `json:"formName"`
	Order       int        `json:"order"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Tier        string     `json:"tier"`
	Mandatory   bool       `json:"mandatory"`
	Questions   []Question `json:"questions"`
}

// Question is one submitted question. ParentID is omitted when empty.
type Question struct {
	QuestionText string   `json:"questionText"`
	Order        int      `json:"order"`
	IsOptional   bool     `json:"isOptional"`
	Type         string   `json:"type"`
	Options      []Option `json:"options"`
	ParentID     string   `json:"parentId,omitempty"`
}

// Option is one submitted option. JumpTo is only set when Jump is true.
type Option struct {
	Value  string `json:"value"`
	Text   string `json:"text"`
	Jump   bool   `json:"jump"`
	JumpTo *int   `json:"jumpTo,omitempty"`
}

// Marshal encodes form with empty question and option lists rendered as []
// rather than null.
func Marshal(form Form) ([]byte, error) {
	return json.Marshal(normalize(form))
}

func normalize(form Form) Form {
	out := form
	out.Questions = make([]Question, len(form.Questions))
	for i, question := range form.Questions {
		q := question
		q.Options = make([]Option, len(question.Options))
		copy(q.Options, question.Options)
		out.Questions[i] = q
	}
	return out
}
