package rules

import (
	"github.com/goliatone/go-formflow/pkg/answers"
)

// Composite is the object schema for a whole answer set: one Schema per field
// name, validated in declaration order. Keys with no schema are stripped.
type Composite struct {
	keys   []string
	fields map[string]Schema
}

// Compose builds a Composite. A later entry with a repeated name replaces the
// earlier schema but keeps its position.
func Compose(entries ...Entry) Composite {
	c := Composite{fields: make(map[string]Schema, len(entries))}
	for _, entry := range entries {
		if _, exists := c.fields[entry.Name]; !exists {
			c.keys = append(c.keys, entry.Name)
		}
		c.fields[entry.Name] = entry.Schema
	}
	return c
}

// Keys lists field names in declaration order.
func (c Composite) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Lookup returns the schema registered for name.
func (c Composite) Lookup(name string) (Schema, bool) {
	schema, ok := c.fields[name]
	return schema, ok
}

// Len reports the number of fields.
func (c Composite) Len() int {
	return len(c.keys)
}

// Describe lists each field's description in declaration order.
func (c Composite) Describe() []Property {
	out := make([]Property, 0, len(c.keys))
	for _, key := range c.keys {
		out = append(out, Property{Name: key, Description: c.fields[key].Describe()})
	}
	return out
}

// Validate checks data against every field schema. The returned set holds the
// coerced values of kept fields (invalid values included); failures are listed
// in field declaration order. Checks see the raw data as siblings.
func (c Composite) Validate(data answers.Set) (answers.Set, []FieldFailure) {
	out := make(answers.Set, len(c.keys))
	var failures []FieldFailure
	for _, key := range c.keys {
		raw, _ := data.Get(key)
		value, keep, fieldFailures := c.fields[key].Validate(raw, data)
		if keep {
			out[key] = value
		}
		for _, failure := range fieldFailures {
			failures = append(failures, FieldFailure{Field: key, Failure: failure})
		}
	}
	return out, failures
}
