package formdraft

// ruleSnapshot is the view of a draft that readiness rules evaluate against.
// mandatory is rendered as the select shows it, so "" means unset.
func ruleSnapshot(form Form) map[string]any {
	questions := make([]any, 0, len(form.Questions))
	for _, question := range form.Questions {
		options := make([]any, 0, len(question.Options))
		for _, option := range question.Options {
			options = append(options, map[string]any{
				"optionId": option.OptionID,
				"value":    option.Value,
				"text":     option.Text,
				"jump":     option.Jump,
				"jumpTo":   option.JumpTo,
			})
		}
		questions = append(questions, map[string]any{
			"questionId":   question.QuestionID,
			"order":        question.Order,
			"questionText": question.QuestionText,
			"type":         question.Type,
			"isOptional":   question.IsOptional,
			"parentId":     question.ParentID,
			"options":      options,
		})
	}
	return map[string]any{
		"formName":      form.FormName,
		"formOrder":     form.FormOrder,
		"title":         form.Title,
		"description":   form.Description,
		"tier":          form.Tier,
		"mandatory":     FormatChoice(form.Mandatory),
		"questionCount": len(form.Questions),
		"questions":     questions,
	}
}
