// Package answers defines the answer set shared by every stage of the form
// engine: a flat mapping of field name to submitted value. Values follow the
// shapes produced by form decoding (strings, numbers, bools, []any and
// map[string]any for compound fields). Helpers never mutate the receiver and
// treat a nil Set as empty, so predicates can read partial data safely.
package answers

import (
	"fmt"
	"sort"
	"strings"
)

// Set maps field names to submitted values for one in-progress application.
type Set map[string]any

// Get returns the raw value stored under name.
func (s Set) Get(name string) (any, bool) {
	if s == nil {
		return nil, false
	}
	value, ok := s[name]
	return value, ok
}

// String returns the value under name as a trimmed string. Non-string scalars
// are formatted; compound values and missing keys yield "".
func (s Set) String(name string) string {
	value, ok := s.Get(name)
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case []byte:
		return strings.TrimSpace(string(typed))
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(typed)
	}
}

// Map returns the compound value stored under name, or nil.
func (s Set) Map(name string) map[string]any {
	value, ok := s.Get(name)
	if !ok {
		return nil
	}
	typed, _ := value.(map[string]any)
	return typed
}

// Has reports whether name holds a non-blank value.
func (s Set) Has(name string) bool {
	value, ok := s.Get(name)
	if !ok {
		return false
	}
	return !IsBlank(value)
}

// Len reports the number of non-blank entries.
func (s Set) Len() int {
	count := 0
	for _, value := range s {
		if !IsBlank(value) {
			count++
		}
	}
	return count
}

// Empty reports whether the set holds no non-blank values.
func (s Set) Empty() bool {
	return s.Len() == 0
}

// Keys returns the set keys sorted alphabetically.
func (s Set) Keys() []string {
	if len(s) == 0 {
		return nil
	}
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Clone deep copies nested maps and slices.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for key, value := range s {
		out[key] = DeepCopy(value)
	}
	return out
}

// Pick returns a copy holding only the named keys that are present.
func (s Set) Pick(names ...string) Set {
	out := make(Set, len(names))
	for _, name := range names {
		if value, ok := s.Get(name); ok {
			out[name] = DeepCopy(value)
		}
	}
	return out
}

// Without returns a copy with the named keys removed.
func (s Set) Without(names ...string) Set {
	out := s.Clone()
	for _, name := range names {
		delete(out, name)
	}
	return out
}

// Merge returns a new set with other applied over the receiver.
func (s Set) Merge(other Set) Set {
	out := s.Clone()
	for key, value := range other {
		out[key] = DeepCopy(value)
	}
	return out
}

// IsBlank reports whether a value counts as "not supplied": nil, whitespace
// strings, and maps or slices holding only blank values.
func IsBlank(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case []any:
		for _, item := range typed {
			if !IsBlank(item) {
				return false
			}
		}
		return true
	case []string:
		for _, item := range typed {
			if strings.TrimSpace(item) != "" {
				return false
			}
		}
		return true
	case map[string]any:
		for _, nested := range typed {
			if !IsBlank(nested) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// DeepCopy clones map[string]any and []any trees; other values are returned
// as-is.
func DeepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = DeepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = DeepCopy(v)
		}
		return clone
	case []string:
		return append([]string(nil), typed...)
	default:
		return typed
	}
}
