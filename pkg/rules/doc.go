// Package rules evaluates submission readiness rules against a flat snapshot
// of a form draft. Each Rule is a boolean expression; a false result becomes a
// Violation naming the fields it covers.
//
// Three engines share the Evaluator contract:
//
//	expr (default)  github.com/expr-lang/expr
//	cel             github.com/google/cel-go
//	js              github.com/dop251/goja, compiled only with -tags js_eval
//
// Snapshot keys are exposed as top-level variables. The helpers "now", "args"
// and any registered functions are available in every engine; CEL reaches
// registered functions through call("name", ...).
package rules
