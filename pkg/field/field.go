// Package field declares the field catalog: every question a form can ask,
// with its validation schema, message catalog and the predicates that decide
// whether it is shown and whether it is required. Everything that depends on
// sibling answers is a pure function of the answer set.
package field

import (
	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/rules"
)

// Type is the input type of a field.
type Type string

const (
	TypeText           Type = "text"
	TypeTextarea       Type = "textarea"
	TypeRadio          Type = "radio"
	TypeCheckbox       Type = "checkbox"
	TypeSelect         Type = "select"
	TypeDate           Type = "date"
	TypeDateRange      Type = "date-range"
	TypeDayMonth       Type = "day-month"
	TypeMonthYear      Type = "month-year"
	TypeCurrency       Type = "currency"
	TypeBudget         Type = "budget"
	TypeAddress        Type = "address"
	TypeAddressHistory Type = "address-history"
	TypeFullName       Type = "full-name"
	TypeFile           Type = "file"
	TypeEmail          Type = "email"
	TypeTel            Type = "tel"
	TypeNumber         Type = "number"
)

var knownTypes = map[Type]struct{}{
	TypeText: {}, TypeTextarea: {}, TypeRadio: {}, TypeCheckbox: {}, TypeSelect: {},
	TypeDate: {}, TypeDateRange: {}, TypeDayMonth: {}, TypeMonthYear: {},
	TypeCurrency: {}, TypeBudget: {}, TypeAddress: {}, TypeAddressHistory: {},
	TypeFullName: {}, TypeFile: {}, TypeEmail: {}, TypeTel: {}, TypeNumber: {},
}

// Types lists every supported type.
func Types() []Type {
	return []Type{
		TypeText, TypeTextarea, TypeRadio, TypeCheckbox, TypeSelect,
		TypeDate, TypeDateRange, TypeDayMonth, TypeMonthYear,
		TypeCurrency, TypeBudget, TypeAddress, TypeAddressHistory,
		TypeFullName, TypeFile, TypeEmail, TypeTel, TypeNumber,
	}
}

// Valid reports whether t is a supported type.
func (t Type) Valid() bool {
	_, ok := knownTypes[t]
	return ok
}

// ArrayValued reports whether values of this type are lists, which a
// multipart upload body cannot carry as flat strings.
func (t Type) ArrayValued() bool {
	return t == TypeCheckbox || t == TypeBudget
}

// Message is one entry of a field's message catalog. Key narrows the message
// to a sub-path of a compound value ("postcode" inside an address).
type Message struct {
	Type string
	Key  string
	Text i18n.Text
}

// Option is a choice offered by radio, checkbox and select fields.
type Option struct {
	Value       string
	Label       i18n.Text
	Explanation i18n.Text
}

// Definition describes one field of the catalog.
type Definition struct {
	Name        string
	Type        Type
	Label       i18n.Text
	Explanation i18n.Text
	// LabelFunc overrides Label when the wording depends on other answers.
	LabelFunc func(answers.Set) i18n.Text

	// Schema validates the value. When zero, a schema is derived from Type
	// and Required.
	Schema rules.Schema
	// SchemaFunc wins over Schema; use it for conditional typing.
	SchemaFunc func(answers.Set) rules.Schema

	Messages []Message

	Options     []Option
	OptionsFunc func(answers.Set) []Option

	// Required marks the field as required in the current shape; nil means
	// optional. ShouldShow controls display; nil means always shown. The two
	// are evaluated independently.
	Required   Predicate
	ShouldShow Predicate

	// Submission reshapes the value for the downstream payload. The returned
	// keys replace the field's own key.
	Submission func(value any) map[string]any

	Attributes map[string]string
}

// LabelFor returns the label to show for data.
func (d Definition) LabelFor(data answers.Set) i18n.Text {
	if d.LabelFunc != nil {
		return d.LabelFunc(data)
	}
	return d.Label
}

// OptionsFor returns the options on offer for data.
func (d Definition) OptionsFor(data answers.Set) []Option {
	if d.OptionsFunc != nil {
		return d.OptionsFunc(data)
	}
	return d.Options
}

// RequiredFor evaluates the Required predicate.
func (d Definition) RequiredFor(data answers.Set) bool {
	return holds(d.Required, data, false)
}

// ShownFor evaluates the ShouldShow predicate.
func (d Definition) ShownFor(data answers.Set) bool {
	return holds(d.ShouldShow, data, true)
}

// SchemaFor resolves the validation schema against data.
func (d Definition) SchemaFor(data answers.Set) rules.Schema {
	if d.SchemaFunc != nil {
		return d.SchemaFunc(data)
	}
	if !d.Schema.IsZero() {
		return d.Schema
	}
	schema := BaseSchema(d.Type, d.OptionsFor(data))
	if d.RequiredFor(data) {
		return schema.Required()
	}
	return schema
}

// BaseSchema is the default schema for a field type.
func BaseSchema(t Type, options []Option) rules.Schema {
	switch t {
	case TypeText:
		return rules.String().Max(255)
	case TypeTextarea:
		return rules.String().Max(5000)
	case TypeRadio, TypeSelect:
		return rules.OneOf(OptionValues(options)...)
	case TypeCheckbox:
		return rules.Checkbox(OptionValues(options)...)
	case TypeDate:
		return rules.DateParts()
	case TypeDateRange:
		return rules.DateRange(0, 0)
	case TypeDayMonth:
		return rules.DayMonth()
	case TypeMonthYear:
		return rules.MonthYear()
	case TypeCurrency:
		return rules.Currency()
	case TypeBudget:
		return rules.Budget(10, 10000)
	case TypeAddress:
		return rules.Address()
	case TypeAddressHistory:
		return rules.AddressHistory()
	case TypeFullName:
		return rules.FullName()
	case TypeFile:
		return rules.File(0)
	case TypeEmail:
		return rules.Email()
	case TypeTel:
		return rules.Phone()
	case TypeNumber:
		return rules.Number()
	default:
		return rules.Any()
	}
}

// OptionValues lists the option values in order.
func OptionValues(options []Option) []string {
	values := make([]string, 0, len(options))
	for _, option := range options {
		values = append(values, option.Value)
	}
	return values
}

// Catalog is an ordered set of definitions addressable by name.
type Catalog []Definition

// Lookup finds the definition named name.
func (c Catalog) Lookup(name string) (Definition, bool) {
	for _, def := range c {
		if def.Name == name {
			return def, true
		}
	}
	return Definition{}, false
}

// Names lists the definition names in order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for _, def := range c {
		names = append(names, def.Name)
	}
	return names
}
