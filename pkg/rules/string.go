package rules

import (
	"fmt"
	"html"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formflow/pkg/answers"
)

var (
	sanitizer = bluemonday.StrictPolicy()

	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern    = regexp.MustCompile(`^\+?[0-9 ()-]{10,20}$`)
	postcodePattern = regexp.MustCompile(`(?i)^[A-Z]{1,2}[0-9][A-Z0-9]?\s*[0-9][A-Z]{2}$`)
)

// SanitizeText strips markup from free text and trims surrounding space.
func SanitizeText(value string) string {
	return strings.TrimSpace(html.UnescapeString(sanitizer.Sanitize(value)))
}

// String accepts text (numbers are formatted) and strips any markup.
func String() Schema {
	return Schema{kind: KindString, desc: Description{Kind: KindString}}.withCoerce(coerceString)
}

func coerceString(value any) (any, *Failure) {
	switch typed := value.(type) {
	case string:
		return SanitizeText(typed), nil
	case []byte:
		return SanitizeText(string(typed)), nil
	case int, int32, int64, float32, float64:
		return fmt.Sprint(typed), nil
	default:
		return nil, &Failure{Type: TypeStringBase}
	}
}

// Max limits the number of characters.
func (s Schema) Max(limit int) Schema {
	return s.describe(func(d *Description) { d.MaxLength = intPtr(limit) }).Check(func(value any, _ answers.Set) *Failure {
		if text, ok := value.(string); ok && utf8.RuneCountInString(text) > limit {
			return Fail(TypeStringMax, map[string]any{"limit": limit})
		}
		return nil
	})
}

// Min requires a minimum number of characters.
func (s Schema) Min(limit int) Schema {
	return s.describe(func(d *Description) { d.MinLength = intPtr(limit) }).Check(func(value any, _ answers.Set) *Failure {
		if text, ok := value.(string); ok && utf8.RuneCountInString(text) < limit {
			return Fail(TypeStringMin, map[string]any{"limit": limit})
		}
		return nil
	})
}

// Pattern requires the text to match re.
func (s Schema) Pattern(re *regexp.Regexp) Schema {
	return s.describe(func(d *Description) { d.Pattern = re.String() }).Check(func(value any, _ answers.Set) *Failure {
		if text, ok := value.(string); ok && !re.MatchString(text) {
			return Fail(TypeStringRegex, map[string]any{"pattern": re.String()})
		}
		return nil
	})
}

// WordCount bounds the number of whitespace separated words. A zero bound is
// not enforced.
func (s Schema) WordCount(minWords, maxWords int) Schema {
	return s.Check(func(value any, _ answers.Set) *Failure {
		text, ok := value.(string)
		if !ok {
			return nil
		}
		count := len(strings.Fields(text))
		if minWords > 0 && count < minWords {
			return Fail(TypeMinWords, map[string]any{"limit": minWords, "count": count})
		}
		if maxWords > 0 && count > maxWords {
			return Fail(TypeMaxWords, map[string]any{"limit": maxWords, "count": count})
		}
		return nil
	})
}

// Valid restricts the value to one of values.
func (s Schema) Valid(values ...string) Schema {
	allowed := append([]string(nil), values...)
	return s.describe(func(d *Description) { d.Enum = allowed }).Check(func(value any, _ answers.Set) *Failure {
		text, ok := value.(string)
		if !ok || !slices.Contains(allowed, text) {
			return Fail(TypeAllowOnly, map[string]any{"valids": allowed})
		}
		return nil
	})
}

// DifferentFrom rejects values equal (case-insensitively) to the sibling
// field other, e.g. two contacts sharing an email address.
func (s Schema) DifferentFrom(other string) Schema {
	return s.Check(func(value any, siblings answers.Set) *Failure {
		text, ok := value.(string)
		if !ok {
			return nil
		}
		if sibling := siblings.String(other); sibling != "" && strings.EqualFold(sibling, text) {
			return Fail(TypeInvalid, map[string]any{"field": other})
		}
		return nil
	})
}

// OneOf is a required-by-caller string restricted to values.
func OneOf(values ...string) Schema {
	return String().Valid(values...)
}

// Email accepts a single email address.
func Email() Schema {
	return String().
		describe(func(d *Description) { d.Format = "email" }).
		Check(func(value any, _ answers.Set) *Failure {
			if text, ok := value.(string); ok && !emailPattern.MatchString(text) {
				return Fail(TypeStringEmail, nil)
			}
			return nil
		}).
		Max(80)
}

// Phone accepts a UK style phone number.
func Phone() Schema {
	return String().
		describe(func(d *Description) {
			d.Format = "tel"
			d.Pattern = phonePattern.String()
		}).
		Check(func(value any, _ answers.Set) *Failure {
			if text, ok := value.(string); ok && !phonePattern.MatchString(text) {
				return Fail(TypeStringPhone, nil)
			}
			return nil
		})
}

// Postcode accepts a UK postcode.
func Postcode() Schema {
	return String().Pattern(postcodePattern).Max(10)
}
