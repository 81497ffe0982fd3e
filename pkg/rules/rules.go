package rules

import (
	"fmt"
	"time"
)

// Rule is a named boolean expression. It passes when Expr evaluates to true.
type Rule struct {
	Name    string   `json:"name" yaml:"name"`
	Expr    string   `json:"expr" yaml:"expr"`
	Message string   `json:"message,omitempty" yaml:"message,omitempty"`
	Fields  []string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Violation reports a rule that evaluated to false.
type Violation struct {
	Rule    string
	Message string
	Fields  []string
}

// Required builds one presence rule per field: the field must not be the
// empty string. The literal "no" counts as present.
func Required(fields ...string) []Rule {
	out := make([]Rule, 0, len(fields))
	for _, field := range fields {
		out = append(out, Rule{
			Name:    "required." + field,
			Expr:    fmt.Sprintf("%s != %q", field, ""),
			Message: field + " is required",
			Fields:  []string{field},
		})
	}
	return out
}

// Checker runs rules with one evaluator.
type Checker struct {
	Evaluator Evaluator
	Logger    Logger
	Now       func() time.Time
}

// NewChecker builds a Checker, defaulting to the expr engine with the draft
// helper functions and a program cache.
func NewChecker(evaluator Evaluator) *Checker {
	if evaluator == nil {
		evaluator = NewExprEvaluator(WithProgramCache(NewMemoryCache()), WithFunctionRegistry(DefaultFunctions()))
	}
	return &Checker{Evaluator: evaluator}
}

// Check evaluates every rule against snapshot. Violations are collected in
// rule order; an evaluation failure aborts the check.
func (c *Checker) Check(snapshot map[string]any, rules ...Rule) ([]Violation, error) {
	if c == nil || c.Evaluator == nil {
		return nil, fmt.Errorf("rules: evaluator is required")
	}
	logger := c.logger()
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}
	ctx := Context{Snapshot: snapshot, Now: &now}

	var violations []Violation
	for _, rule := range rules {
		start := time.Now()
		passed, err := c.evaluate(ctx, rule)
		logger.LogEvaluation(LogEvent{
			Engine:   c.Evaluator.Engine(),
			Rule:     rule.Name,
			Expr:     rule.Expr,
			Passed:   passed,
			Duration: time.Since(start),
			Err:      err,
		})
		if err != nil {
			return nil, err
		}
		if !passed {
			violations = append(violations, Violation{
				Rule:    rule.Name,
				Message: rule.Message,
				Fields:  append([]string(nil), rule.Fields...),
			})
		}
	}
	return violations, nil
}

func (c *Checker) evaluate(ctx Context, rule Rule) (bool, error) {
	value, err := c.Evaluator.Evaluate(ctx, rule.Expr)
	if err != nil {
		return false, wrapEvaluationError(c.Evaluator.Engine(), rule.Name, rule.Expr, err)
	}
	passed, ok := value.(bool)
	if !ok {
		return false, wrapEvaluationError(c.Evaluator.Engine(), rule.Name, rule.Expr,
			fmt.Errorf("%w: got %T", ErrNotBoolean, value))
	}
	return passed, nil
}

func (c *Checker) logger() Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return noopLogger{}
}
