// Package validation runs a composite schema against an answer set and turns
// the raw failures into deterministic, localised per-field messages.
package validation

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/field"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/rules"
)

// FallbackKey is the translation key used when a failure matches nothing in
// the field's message catalog.
const FallbackKey = "validation.fallback"

// FallbackText is the inline copy behind FallbackKey.
var FallbackText = i18n.Bilingual(
	"There is a problem with this answer",
	"Mae problem gyda'r ateb hwn",
)

// Message is a user-facing error attached to a field.
type Message struct {
	Param string
	Type  string
	Key   string
	Msg   string
}

// Result is the outcome of validating an answer set.
type Result struct {
	// Value is the sanitised answer set: unknown and stripped keys removed,
	// values coerced, invalid values kept so they can be corrected.
	Value            answers.Set
	Error            error
	IsValid          bool
	Messages         []Message
	FeaturedMessages []Message
}

// Error carries the raw failures of an invalid answer set. It is returned as
// data in Result.Error, never raised.
type Error struct {
	Failures []rules.FieldFailure
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Path(), f.Type))
	}
	return fmt.Sprintf("validation: %d failure(s): %s", len(e.Failures), strings.Join(parts, ", "))
}

// Catalog resolves a field's message catalog and featured status.
type Catalog interface {
	Messages(fieldName string) []field.Message
	Featured(fieldName string) bool
}

// CatalogFunc builds a Catalog from a lookup and an optional featured list.
func CatalogFunc(lookup func(string) []field.Message, featured ...string) Catalog {
	set := make(map[string]struct{}, len(featured))
	for _, name := range featured {
		set[name] = struct{}{}
	}
	return funcCatalog{lookup: lookup, featured: set}
}

type funcCatalog struct {
	lookup   func(string) []field.Message
	featured map[string]struct{}
}

func (c funcCatalog) Messages(name string) []field.Message {
	if c.lookup == nil {
		return nil
	}
	return c.lookup(name)
}

func (c funcCatalog) Featured(name string) bool {
	_, ok := c.featured[name]
	return ok
}

// Validate runs composite against data in collection mode and normalises the
// failures against catalog.
func Validate(composite rules.Composite, data answers.Set, catalog Catalog, loc i18n.Localizer) Result {
	value, failures := composite.Validate(data)
	return FromFailures(value, failures, catalog, loc)
}

// FromFailures assembles a Result from already collected failures, e.g. after
// adding external check failures to a schema result.
func FromFailures(value answers.Set, failures []rules.FieldFailure, catalog Catalog, loc i18n.Localizer) Result {
	result := Result{Value: value, IsValid: len(failures) == 0}
	if result.Value == nil {
		result.Value = answers.Set{}
	}
	if len(failures) == 0 {
		return result
	}
	result.Error = &Error{Failures: append([]rules.FieldFailure(nil), failures...)}
	result.Messages = Normalize(failures, catalog, loc)
	result.FeaturedMessages = Featured(result.Messages, catalog)
	return result
}

// Normalize maps failures to messages. Only the first failure of each field is
// considered. Its messages come from the highest tier that matches:
//  1. key equal to the failure's sub-path and the same type
//  2. no key and the same type
//  3. no key and type "base"
//
// Every message of the winning tier is emitted. A failure matching no tier
// yields the localised fallback so an invalid answer is never silent.
func Normalize(failures []rules.FieldFailure, catalog Catalog, loc i18n.Localizer) []Message {
	var out []Message
	seen := make(map[string]struct{}, len(failures))
	for _, failure := range failures {
		if _, done := seen[failure.Field]; done {
			continue
		}
		seen[failure.Field] = struct{}{}

		var entries []field.Message
		if catalog != nil {
			entries = catalog.Messages(failure.Field)
		}
		matched := match(entries, failure.Failure)
		if len(matched) == 0 {
			out = append(out, Message{
				Param: failure.Field,
				Type:  failure.Type,
				Key:   failure.Key(),
				Msg:   interpolate(loc.Text(i18n.Text{Key: FallbackKey, Values: FallbackText.Values}), failure.Params),
			})
			continue
		}
		for _, entry := range matched {
			out = append(out, Message{
				Param: failure.Field,
				Type:  entry.Type,
				Key:   entry.Key,
				Msg:   interpolate(loc.Text(entry.Text), failure.Params),
			})
		}
	}
	return out
}

func match(entries []field.Message, failure rules.Failure) []field.Message {
	key := failure.Key()
	tiers := []func(field.Message) bool{
		func(m field.Message) bool { return key != "" && m.Key == key && m.Type == failure.Type },
		func(m field.Message) bool { return m.Key == "" && m.Type == failure.Type },
		func(m field.Message) bool { return m.Key == "" && m.Type == rules.TypeBase },
	}
	for _, tier := range tiers {
		var matched []field.Message
		for _, entry := range entries {
			if tier(entry) {
				matched = append(matched, entry)
			}
		}
		if len(matched) > 0 {
			return matched
		}
	}
	return nil
}

// Featured promotes messages of allow-listed fields whose type is not base.
func Featured(messages []Message, catalog Catalog) []Message {
	if catalog == nil {
		return nil
	}
	var out []Message
	for _, msg := range messages {
		if msg.Type != rules.TypeBase && catalog.Featured(msg.Param) {
			out = append(out, msg)
		}
	}
	return out
}

// ForFields keeps the messages whose field is in names, in message order.
func ForFields(messages []Message, names []string) []Message {
	if len(messages) == 0 || len(names) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	var out []Message
	for _, msg := range messages {
		if _, ok := set[msg.Param]; ok {
			out = append(out, msg)
		}
	}
	return out
}

// ByField groups messages by field name.
func ByField(messages []Message) map[string][]string {
	if len(messages) == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, msg := range messages {
		out[msg.Param] = append(out[msg.Param], msg.Msg)
	}
	return out
}

// interpolate fills {name} placeholders from failure params.
func interpolate(msg string, params map[string]any) string {
	if len(params) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(params)*2)
	for name, value := range params {
		pairs = append(pairs, "{"+name+"}", formatParam(value))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

func formatParam(value any) string {
	switch typed := value.(type) {
	case float64:
		if typed == float64(int64(typed)) {
			return fmt.Sprintf("%d", int64(typed))
		}
		return fmt.Sprintf("%g", typed)
	case []string:
		return strings.Join(typed, ", ")
	default:
		return fmt.Sprint(typed)
	}
}
