// Package visibility evaluates rule strings that decide whether a field is
// shown or required, given the current answer set.
package visibility

import "github.com/goliatone/go-formflow/pkg/answers"

// Evaluator determines whether a rule holds for a field given the answers
// collected so far and optional extras such as the deployment environment.
type Evaluator interface {
	Eval(fieldName, rule string, ctx Context) (bool, error)
}

// Context provides inputs to an Evaluator. Values is the answer set; Extras
// carries caller supplied facts reachable through the `extras.` prefix.
type Context struct {
	Values answers.Set
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldName, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(fieldName, rule string, ctx Context) (bool, error) {
	return fn(fieldName, rule, ctx)
}

// Predicate binds an evaluator and a rule into a function of the answer set.
// Evaluation errors count as onError.
func Predicate(eval Evaluator, fieldName, rule string, onError bool) func(answers.Set) bool {
	return func(data answers.Set) bool {
		if eval == nil {
			return onError
		}
		ok, err := eval.Eval(fieldName, rule, Context{Values: data})
		if err != nil {
			return onError
		}
		return ok
	}
}
