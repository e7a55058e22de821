// Package rules is a small validation combinator library. A Schema describes
// the accepted shape of one field value (presence, coercion, ordered checks,
// nested keys); a Composite aggregates field schemas into the single schema the
// validator runs against an answer set. Every custom rule is a pure Check of
// the coerced value and the sibling answers, so conditional typing never
// depends on hidden state.
package rules

import (
	"strings"

	"github.com/goliatone/go-formflow/pkg/answers"
)

// Failure types. Message catalogs match on these identifiers.
const (
	TypeBase      = "base"
	TypeRequired  = "any.required"
	TypeEmpty     = "any.empty"
	TypeAllowOnly = "any.allowOnly"
	TypeInvalid   = "any.invalid"

	TypeStringBase  = "string.base"
	TypeStringMin   = "string.min"
	TypeStringMax   = "string.max"
	TypeStringRegex = "string.regex"
	TypeStringEmail = "string.email"
	TypeStringPhone = "string.phonenumber"
	TypeMinWords    = "string.minWords"
	TypeMaxWords    = "string.maxWords"

	TypeNumberBase    = "number.base"
	TypeNumberMin     = "number.min"
	TypeNumberMax     = "number.max"
	TypeNumberInteger = "number.integer"

	TypeObjectBase = "object.base"
	TypeArrayBase  = "array.base"
	TypeArrayMin   = "array.min"
	TypeArrayMax   = "array.max"

	TypeDateInvalid = "dateParts.invalid"
	TypeDatePast    = "dateParts.pastDate"
	TypeDateFuture  = "dateParts.futureDate"
	TypeDateMinAge  = "dateParts.dob"

	TypeDateRangeInvalid = "dateRange.both.invalid"
	TypeDateRangeOrder   = "dateRange.endDate.beforeStartDate"
	TypeDateRangeMinDate = "dateRange.minDate.invalid"
	TypeDateRangeSpan    = "dateRange.endDate.outsideLimit"

	TypeDayMonthInvalid  = "dayMonth.invalid"
	TypeMonthYearInvalid = "monthYear.invalid"
	TypeMonthYearPast    = "monthYear.pastDate"

	TypeBudgetOver  = "budgetItems.overBudget"
	TypeBudgetTotal = "budgetTotalCosts.underBudget"

	TypeFileSize   = "file.size"
	TypeFileType   = "file.mimeType"
	TypeFileUpload = "file.upload"
)

// Failure describes one rule violation. Path is the sub-path inside the field
// value (empty for the field itself, ["postcode"] for an address part).
type Failure struct {
	Type   string
	Path   []string
	Params map[string]any
}

// Key joins the sub-path with dots; "" for field-level failures.
func (f Failure) Key() string {
	return strings.Join(f.Path, ".")
}

// Fail builds a field-level failure of errType.
func Fail(errType string, params map[string]any) *Failure {
	return &Failure{Type: errType, Params: params}
}

// At prefixes the failure path with segments.
func (f Failure) At(segments ...string) Failure {
	path := make([]string, 0, len(segments)+len(f.Path))
	path = append(path, segments...)
	path = append(path, f.Path...)
	f.Path = path
	return f
}

// Check is a custom rule evaluated against a coerced value and the full answer
// set it belongs to. It returns nil when the value is acceptable.
type Check func(value any, siblings answers.Set) *Failure

// FieldFailure is a failure attributed to a named field of a composite.
type FieldFailure struct {
	Field string
	Failure
}

// Path returns the dotted field path including any sub-path.
func (f FieldFailure) Path() string {
	if key := f.Key(); key != "" {
		return f.Field + "." + key
	}
	return f.Field
}
