package rules

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapEvaluationErrorCreatesMetadata(t *testing.T) {
	base := errors.New("boom")
	err := wrapEvaluationError(EngineExpr, "required.tier", `tier != ""`, base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != EngineExpr || evalErr.Rule != "required.tier" || evalErr.Expr != `tier != ""` {
		t.Fatalf("unexpected metadata: %+v", evalErr)
	}
	if !errors.Is(err, base) {
		t.Fatalf("wrapped error should unwrap to base error")
	}
	if !strings.Contains(err.Error(), "rule=required.tier") {
		t.Fatalf("expected rule in message, got %q", err.Error())
	}
}

func TestWrapEvaluationErrorAugmentsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{Engine: EngineCEL, Err: base}

	err := wrapEvaluationError(EngineExpr, "custom", "x > 1", existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != EngineCEL {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Rule != "custom" || existing.Expr != "x > 1" {
		t.Fatalf("missing metadata should be filled, got %+v", existing)
	}
}

func TestWrapEvaluatorErrorKeepsPrefixedErrors(t *testing.T) {
	prefixed := errors.New("rules: already described")
	if got := wrapEvaluatorError(EngineExpr, prefixed); got != prefixed {
		t.Fatalf("expected prefixed error returned unchanged, got %v", got)
	}
	wrapped := wrapEvaluatorError(EngineCEL, errors.New("env"))
	if !strings.HasPrefix(wrapped.Error(), "rules: cel evaluator:") {
		t.Fatalf("unexpected message %q", wrapped.Error())
	}
	if wrapEvaluatorError(EngineExpr, nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
}
