package payload

import "github.com/microcosm-cc/bluemonday"

// Sanitizer cleans free text before submission. *bluemonday.Policy satisfies it.
type Sanitizer interface {
	Sanitize(s string) string
}

// StrictSanitizer strips all markup.
func StrictSanitizer() Sanitizer {
	return bluemonday.StrictPolicy()
}

// UGCSanitizer keeps the inline formatting bluemonday allows for user content.
func UGCSanitizer() Sanitizer {
	return bluemonday.UGCPolicy()
}

// Sanitize returns a copy of form with user-authored text passed through s.
// Identifiers, types and option values are left alone.
func Sanitize(form Form, s Sanitizer) Form {
	out := normalize(form)
	if s == nil {
		return out
	}
	out.Title = s.Sanitize(out.Title)
	out.Description = s.Sanitize(out.Description)
	for i := range out.Questions {
		out.Questions[i].QuestionText = s.Sanitize(out.Questions[i].QuestionText)
		for j := range out.Questions[i].Options {
			out.Questions[i].Options[j].Text = s.Sanitize(out.Questions[i].Options[j].Text)
		}
	}
	return out
}
