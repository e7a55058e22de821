package rules

import (
	"slices"
	"strings"

	"github.com/goliatone/go-formflow/pkg/answers"
)

// Entry pairs a key with its schema inside an Object.
type Entry struct {
	Name   string
	Schema Schema
}

// Key builds an Entry.
func Key(name string, schema Schema) Entry {
	return Entry{Name: name, Schema: schema}
}

// Object accepts a map whose known keys are validated by their schemas.
// Unknown keys are dropped.
func Object(entries ...Entry) Schema {
	s := Schema{kind: KindObject, desc: Description{Kind: KindObject}}.withCoerce(coerceObject)
	s.children = make([]child, 0, len(entries))
	for _, entry := range entries {
		s.children = append(s.children, child{name: entry.Name, schema: entry.Schema})
	}
	return s
}

func coerceObject(value any) (any, *Failure) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, nil
	case answers.Set:
		return map[string]any(typed), nil
	case map[string]string:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = v
		}
		return out, nil
	default:
		return nil, &Failure{Type: TypeObjectBase}
	}
}

// Array accepts a list whose items are validated by item. A single scalar is
// treated as a one element list, which is how a lone checked box arrives.
func Array(item Schema) Schema {
	items := item
	desc := items.Describe()
	return Schema{
		kind:  KindArray,
		items: &items,
		desc:  Description{Kind: KindArray, Items: &desc},
	}.withCoerce(coerceArray)
}

func coerceArray(value any) (any, *Failure) {
	switch typed := value.(type) {
	case []any:
		return typed, nil
	case []string:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = v
		}
		return out, nil
	case []map[string]any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = v
		}
		return out, nil
	case string, float64, int:
		return []any{typed}, nil
	default:
		return nil, &Failure{Type: TypeArrayBase}
	}
}

// MinItems requires at least limit items.
func (s Schema) MinItems(limit int) Schema {
	return s.describe(func(d *Description) { d.MinItems = intPtr(limit) }).Check(func(value any, _ answers.Set) *Failure {
		if list, ok := value.([]any); ok && len(list) < limit {
			return Fail(TypeArrayMin, map[string]any{"limit": limit})
		}
		return nil
	})
}

// MaxItems allows at most limit items.
func (s Schema) MaxItems(limit int) Schema {
	return s.describe(func(d *Description) { d.MaxItems = intPtr(limit) }).Check(func(value any, _ answers.Set) *Failure {
		if list, ok := value.([]any); ok && len(list) > limit {
			return Fail(TypeArrayMax, map[string]any{"limit": limit})
		}
		return nil
	})
}

// Checkbox accepts one or more of options.
func Checkbox(options ...string) Schema {
	allowed := append([]string(nil), options...)
	item := String().describe(func(d *Description) { d.Enum = allowed })
	return Array(item).Check(func(value any, _ answers.Set) *Failure {
		list, _ := value.([]any)
		for _, entry := range list {
			text, _ := entry.(string)
			if !slices.Contains(allowed, text) {
				return Fail(TypeAllowOnly, map[string]any{"valids": allowed})
			}
		}
		return nil
	})
}

// Address accepts a UK postal address.
func Address() Schema {
	return Object(
		Key("line1", String().Max(255).Required()),
		Key("line2", String().Max(255)),
		Key("townCity", String().Max(40).Required()),
		Key("county", String().Max(80)),
		Key("postcode", Postcode().Required()),
	)
}

// FullName accepts first and last names.
func FullName() Schema {
	return Object(
		Key("firstName", String().Max(40).Required()),
		Key("lastName", String().Max(80).Required()),
	)
}

// AddressHistory records whether someone has lived at their current address
// long enough, plus a previous address when they have not.
func AddressHistory() Schema {
	return Object(
		Key("currentAddressMeetsMinimum", OneOf("yes", "no").Required()),
		Key("previousAddress", Address()),
	).Check(func(value any, _ answers.Set) *Failure {
		history, _ := value.(map[string]any)
		if history["currentAddressMeetsMinimum"] == "no" && answers.IsBlank(history["previousAddress"]) {
			return &Failure{Type: TypeRequired, Path: []string{"previousAddress"}}
		}
		return nil
	})
}

// File accepts upload metadata ({filename, size, type}) bounded by maxBytes
// and restricted to mimeTypes when any are given.
func File(maxBytes int64, mimeTypes ...string) Schema {
	allowed := append([]string(nil), mimeTypes...)
	return Object(
		Key("filename", String().Required()),
		Key("size", Number().Integer().MinValue(0).Required()),
		Key("type", String().Required()),
	).describe(func(d *Description) { d.Format = "file" }).Check(func(value any, _ answers.Set) *Failure {
		meta, _ := value.(map[string]any)
		size, _ := meta["size"].(float64)
		if maxBytes > 0 && size > float64(maxBytes) {
			return Fail(TypeFileSize, map[string]any{"limit": maxBytes})
		}
		mime, _ := meta["type"].(string)
		if len(allowed) > 0 && !slices.Contains(allowed, strings.ToLower(mime)) {
			return Fail(TypeFileType, map[string]any{"valids": allowed})
		}
		return nil
	})
}

// Budget accepts a list of {item, cost} rows whose costs total at most
// maxTotal. Rows with both parts blank are ignored.
func Budget(maxItems int, maxTotal float64) Schema {
	row := Object(
		Key("item", String().Max(255).Required()),
		Key("cost", Number().Integer().MinValue(1).Required()),
	)
	return Array(row).
		withCoerce(coerceBudget).
		MinItems(1).
		MaxItems(maxItems).
		describe(func(d *Description) { d.Max = floatPtr(maxTotal) }).
		Check(func(value any, _ answers.Set) *Failure {
			if total := BudgetTotal(value); total > maxTotal {
				return Fail(TypeBudgetOver, map[string]any{"limit": maxTotal, "total": total})
			}
			return nil
		})
}

func coerceBudget(value any) (any, *Failure) {
	list, failure := coerceArray(value)
	if failure != nil {
		return nil, failure
	}
	rows := list.([]any)
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		if answers.IsBlank(row) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// BudgetTotal sums the cost column of budget rows; unparsable costs count as
// zero.
func BudgetTotal(value any) float64 {
	list, _ := value.([]any)
	total := 0.0
	for _, row := range list {
		entry, _ := row.(map[string]any)
		if cost, ok := ToFloat(entry["cost"]); ok {
			total += cost
		}
	}
	return total
}

// AtLeastBudget requires a currency amount to cover the total of the budget
// held in the sibling field budgetField.
func (s Schema) AtLeastBudget(budgetField string) Schema {
	return s.Check(func(value any, siblings answers.Set) *Failure {
		amount, ok := value.(float64)
		if !ok {
			return nil
		}
		raw, _ := siblings.Get(budgetField)
		list, failure := coerceBudget(raw)
		if failure != nil {
			return nil
		}
		if total := BudgetTotal(list); amount < total {
			return Fail(TypeBudgetTotal, map[string]any{"budget": total})
		}
		return nil
	})
}
