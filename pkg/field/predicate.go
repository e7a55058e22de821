package field

import (
	"fmt"
	"slices"
	"strings"

	"github.com/goliatone/go-formflow/pkg/answers"
)

// Predicate decides something about a field from the current answer set.
// Implementations must be pure and must accept nil or partial answers.
type Predicate interface {
	Holds(data answers.Set) bool
}

// PredicateFunc adapts a function into a Predicate.
type PredicateFunc func(data answers.Set) bool

// Holds delegates to the underlying function.
func (fn PredicateFunc) Holds(data answers.Set) bool {
	if fn == nil {
		return false
	}
	return fn(data)
}

var (
	// Always holds for every answer set.
	Always Predicate = PredicateFunc(func(answers.Set) bool { return true })
	// Never holds for no answer set.
	Never Predicate = PredicateFunc(func(answers.Set) bool { return false })
)

// rule is a Predicate built by the constructors below. Source describes the
// condition so form linting can compare predicates.
type rule struct {
	source string
	fn     func(data answers.Set) bool
}

func (r rule) Holds(data answers.Set) bool { return r.fn(data) }

// Source returns the condition text, or "" when an operand was opaque.
func (r rule) Source() string { return r.source }

// SourceOf returns the condition text of p, or "" when p does not carry one.
func SourceOf(p Predicate) string {
	if s, ok := p.(interface{ Source() string }); ok {
		return s.Source()
	}
	return ""
}

// Not negates p.
func Not(p Predicate) Predicate {
	src := SourceOf(p)
	if src != "" {
		src = "!(" + src + ")"
	}
	return rule{source: src, fn: func(data answers.Set) bool { return !holds(p, data, false) }}
}

// All holds when every predicate holds.
func All(preds ...Predicate) Predicate {
	parts := make([]string, 0, len(preds))
	for _, p := range preds {
		src := SourceOf(p)
		if src == "" {
			parts = nil
			break
		}
		parts = append(parts, "("+src+")")
	}
	return rule{source: strings.Join(parts, " && "), fn: func(data answers.Set) bool {
		for _, p := range preds {
			if !holds(p, data, true) {
				return false
			}
		}
		return true
	}}
}

// Equals holds when the answer under name equals value.
func Equals(name, value string) Predicate {
	return rule{source: fmt.Sprintf("%s == %q", name, value), fn: func(data answers.Set) bool {
		return data.String(name) == value
	}}
}

// AnyOf holds when the answer under name is one of values. An unanswered
// field is in no set, so AnyOf is false for it.
func AnyOf(name string, values ...string) Predicate {
	set := append([]string(nil), values...)
	return rule{source: fmt.Sprintf("%s in %q", name, set), fn: func(data answers.Set) bool {
		current := data.String(name)
		return current != "" && slices.Contains(set, current)
	}}
}

// NoneOf holds when the answer under name is not one of values. It holds for
// an unanswered field: dependants stay visible until the controlling answer
// explicitly excludes them.
func NoneOf(name string, values ...string) Predicate {
	set := append([]string(nil), values...)
	return rule{source: fmt.Sprintf("%s not in %q", name, set), fn: func(data answers.Set) bool {
		return !slices.Contains(set, data.String(name))
	}}
}

// Answered holds when name has a non-blank answer.
func Answered(name string) Predicate {
	return rule{source: "answered(" + name + ")", fn: func(data answers.Set) bool { return data.Has(name) }}
}

func holds(p Predicate, data answers.Set, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return p.Holds(data)
}
