package rules

import (
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/pkg/answers"
)

// Number accepts numbers and numeric strings. Currency symbols and thousands
// separators are removed before parsing ("£1,250" → 1250).
func Number() Schema {
	return Schema{kind: KindNumber, desc: Description{Kind: KindNumber}}.withCoerce(coerceNumber)
}

// Currency is a non-negative whole number of pounds.
func Currency() Schema {
	return Number().Integer().MinValue(0).describe(func(d *Description) { d.Format = "currency" })
}

func coerceNumber(value any) (any, *Failure) {
	switch typed := value.(type) {
	case float64:
		return typed, nil
	case float32:
		return float64(typed), nil
	case int:
		return float64(typed), nil
	case int64:
		return float64(typed), nil
	case int32:
		return float64(typed), nil
	case string:
		cleaned := strings.NewReplacer(",", "", "£", "", " ", "").Replace(strings.TrimSpace(typed))
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return nil, &Failure{Type: TypeNumberBase}
		}
		return parsed, nil
	default:
		return nil, &Failure{Type: TypeNumberBase}
	}
}

// ToFloat converts a coerced numeric value; ok is false for anything else.
func ToFloat(value any) (float64, bool) {
	out, failure := coerceNumber(value)
	if failure != nil {
		return 0, false
	}
	return out.(float64), true
}

// MinValue requires value >= limit.
func (s Schema) MinValue(limit float64) Schema {
	return s.describe(func(d *Description) { d.Min = floatPtr(limit) }).Check(func(value any, _ answers.Set) *Failure {
		if number, ok := value.(float64); ok && number < limit {
			return Fail(TypeNumberMin, map[string]any{"limit": limit})
		}
		return nil
	})
}

// MaxValue requires value <= limit.
func (s Schema) MaxValue(limit float64) Schema {
	return s.describe(func(d *Description) { d.Max = floatPtr(limit) }).Check(func(value any, _ answers.Set) *Failure {
		if number, ok := value.(float64); ok && number > limit {
			return Fail(TypeNumberMax, map[string]any{"limit": limit})
		}
		return nil
	})
}

// Integer rejects fractional numbers.
func (s Schema) Integer() Schema {
	return s.describe(func(d *Description) { d.Format = "integer" }).Check(func(value any, _ answers.Set) *Failure {
		if number, ok := value.(float64); ok && number != math.Trunc(number) {
			return Fail(TypeNumberInteger, nil)
		}
		return nil
	})
}
