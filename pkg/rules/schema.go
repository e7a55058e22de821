package rules

import (
	"github.com/goliatone/go-formflow/pkg/answers"
)

// Kind names the coerced shape a Schema produces.
type Kind string

const (
	KindAny    Kind = "any"
	KindString Kind = "string"
	KindNumber Kind = "number"
	KindObject Kind = "object"
	KindArray  Kind = "array"
)

type presence int

const (
	presenceOptional presence = iota
	presenceRequired
	presenceStrip
)

type coerceFunc func(value any) (any, *Failure)

type child struct {
	name   string
	schema Schema
}

// Schema validates a single value. Schemas are immutable: every builder method
// returns a modified copy.
type Schema struct {
	kind     Kind
	presence presence
	coerce   coerceFunc
	checks   []Check
	children []child
	items    *Schema
	desc     Description
}

// Any accepts any non-blank value unchanged.
func Any() Schema {
	return Schema{kind: KindAny, desc: Description{Kind: KindAny}}
}

// IsZero reports whether s is the zero Schema (no kind, coercion or checks).
func (s Schema) IsZero() bool {
	return s.kind == "" && s.coerce == nil && len(s.checks) == 0 && len(s.children) == 0 && s.items == nil
}

// Kind reports the schema kind.
func (s Schema) Kind() Kind {
	if s.kind == "" {
		return KindAny
	}
	return s.kind
}

// Required marks blank values as failures.
func (s Schema) Required() Schema {
	s.presence = presenceRequired
	return s
}

// Optional lets blank values through (they are dropped from the output).
func (s Schema) Optional() Schema {
	s.presence = presenceOptional
	return s
}

// Strip discards the value entirely: it never fails and never reaches the
// sanitised output.
func (s Schema) Strip() Schema {
	s.presence = presenceStrip
	return s
}

// IsRequired reports whether blank values fail.
func (s Schema) IsRequired() bool { return s.presence == presenceRequired }

// IsStripped reports whether values are discarded.
func (s Schema) IsStripped() bool { return s.presence == presenceStrip }

// Check appends a custom rule. Checks run in declaration order after coercion.
func (s Schema) Check(check Check) Schema {
	if check == nil {
		return s
	}
	s.checks = append(append([]Check(nil), s.checks...), check)
	return s
}

func (s Schema) withCoerce(fn coerceFunc) Schema {
	s.coerce = fn
	return s
}

// Validate runs the schema against value. out is the coerced value, keep
// reports whether it belongs in the sanitised output, and failures lists every
// violation found (collection mode, never first-only). Invalid values are kept
// so partially completed answers survive persistence.
func (s Schema) Validate(value any, siblings answers.Set) (out any, keep bool, failures []Failure) {
	if s.presence == presenceStrip {
		return nil, false, nil
	}

	if value == nil {
		if s.presence == presenceRequired {
			return nil, false, []Failure{{Type: TypeRequired}}
		}
		return nil, false, nil
	}

	if blank, isString := value.(string); isString && answers.IsBlank(blank) {
		if s.presence == presenceRequired {
			return nil, false, []Failure{{Type: TypeEmpty}}
		}
		return nil, false, nil
	}

	if answers.IsBlank(value) && s.kind != KindObject {
		if s.presence == presenceRequired {
			return nil, false, []Failure{{Type: TypeRequired}}
		}
		return nil, false, nil
	}

	if answers.IsBlank(value) && s.kind == KindObject && s.presence != presenceRequired {
		return nil, false, nil
	}

	coerced := value
	if s.coerce != nil {
		var failure *Failure
		coerced, failure = s.coerce(value)
		if failure != nil {
			return value, true, []Failure{*failure}
		}
	}

	switch s.kind {
	case KindObject:
		coerced, failures = s.validateChildren(coerced, siblings)
	case KindArray:
		coerced, failures = s.validateItems(coerced, siblings)
	}

	// Compound values only run their own checks once every part is valid.
	if len(failures) > 0 && (s.kind == KindObject || s.kind == KindArray) {
		return coerced, true, failures
	}

	for _, check := range s.checks {
		if failure := check(coerced, siblings); failure != nil {
			failures = append(failures, *failure)
		}
	}
	return coerced, true, failures
}

func (s Schema) validateChildren(value any, siblings answers.Set) (any, []Failure) {
	input, _ := value.(map[string]any)
	out := make(map[string]any, len(s.children))
	var failures []Failure
	for _, c := range s.children {
		childOut, keep, childFailures := c.schema.Validate(input[c.name], siblings)
		for _, f := range childFailures {
			failures = append(failures, f.At(c.name))
		}
		if keep {
			out[c.name] = childOut
		}
	}
	return out, failures
}

func (s Schema) validateItems(value any, siblings answers.Set) (any, []Failure) {
	input, _ := value.([]any)
	if s.items == nil {
		return input, nil
	}
	out := make([]any, 0, len(input))
	var failures []Failure
	for idx, item := range input {
		itemOut, keep, itemFailures := s.items.Validate(item, siblings)
		for _, f := range itemFailures {
			failures = append(failures, f.At(itoa(idx)))
		}
		if keep {
			out = append(out, itemOut)
		}
	}
	return out, failures
}

// When picks between two schemas using a predicate over the answer set. The
// result is intended for conditional field schemas.
func When(cond func(answers.Set) bool, then, otherwise Schema) func(answers.Set) Schema {
	return func(data answers.Set) Schema {
		if cond != nil && cond(data) {
			return then
		}
		return otherwise
	}
}
