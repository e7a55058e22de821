package rules_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/rules"
)

func failureTypes(failures []rules.Failure) []string {
	out := make([]string, 0, len(failures))
	for _, f := range failures {
		out = append(out, f.Key()+":"+f.Type)
	}
	return out
}

func TestPresence(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		schema rules.Schema
		value  any
		keep   bool
		want   []string
	}{
		{name: "required nil", schema: rules.String().Required(), value: nil, want: []string{":any.required"}},
		{name: "required blank string", schema: rules.String().Required(), value: "   ", want: []string{":any.empty"}},
		{name: "required empty list", schema: rules.Checkbox("a").Required(), value: []any{}, want: []string{":any.required"}},
		{name: "optional blank dropped", schema: rules.String(), value: "", want: []string{}},
		{name: "strip ignores value", schema: rules.String().Required().Strip(), value: "kept?", want: []string{}},
		{name: "valid kept", schema: rules.String().Required(), value: "hello", keep: true, want: []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, keep, failures := tc.schema.Validate(tc.value, nil)
			if keep != tc.keep {
				t.Fatalf("keep = %v, want %v", keep, tc.keep)
			}
			if diff := cmp.Diff(tc.want, failureTypes(failures)); diff != "" {
				t.Fatalf("failures mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStringCollectsEveryFailure(t *testing.T) {
	t.Parallel()

	schema := rules.Postcode().Required()
	out, keep, failures := schema.Validate("NOT A POSTCODE AT ALL", nil)
	if !keep || out != "NOT A POSTCODE AT ALL" {
		t.Fatalf("invalid value should be kept, got %v (keep=%v)", out, keep)
	}
	want := []string{":string.regex", ":string.max"}
	if diff := cmp.Diff(want, failureTypes(failures)); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}
}

func TestStringSanitisesMarkup(t *testing.T) {
	t.Parallel()

	out, _, failures := rules.String().Validate("  <b>Tom &amp; Jerry</b><script>x</script> ", nil)
	if len(failures) != 0 {
		t.Fatalf("unexpected failures %v", failures)
	}
	if out != "Tom & Jerry" {
		t.Fatalf("expected markup stripped, got %q", out)
	}
}

func TestAddressReportsPartPath(t *testing.T) {
	t.Parallel()

	value := map[string]any{
		"line1":    "1 High Street",
		"townCity": "Birmingham",
		"postcode": "nope",
		"ignored":  "dropped",
	}
	out, keep, failures := rules.Address().Required().Validate(value, nil)
	if !keep {
		t.Fatalf("address should be kept")
	}
	if diff := cmp.Diff([]string{"postcode:string.regex"}, failureTypes(failures)); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}
	if _, ok := out.(map[string]any)["ignored"]; ok {
		t.Fatalf("unknown keys should be dropped: %v", out)
	}
}

func TestNumberCoercion(t *testing.T) {
	t.Parallel()

	out, _, failures := rules.Currency().Required().Validate("£1,250", nil)
	if len(failures) != 0 || out != 1250.0 {
		t.Fatalf("expected 1250, got %v %v", out, failures)
	}
	_, keep, failures := rules.Currency().Validate("lots", nil)
	if !keep {
		t.Fatalf("unparsable value should be kept for the user to correct")
	}
	if diff := cmp.Diff([]string{":number.base"}, failureTypes(failures)); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}
}

func TestWordCount(t *testing.T) {
	t.Parallel()

	schema := rules.String().WordCount(3, 5)
	_, _, failures := schema.Validate("too short", nil)
	if diff := cmp.Diff([]string{":string.minWords"}, failureTypes(failures)); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}
	_, _, failures = schema.Validate("one two three four five six", nil)
	if diff := cmp.Diff([]string{":string.maxWords"}, failureTypes(failures)); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckboxRejectsUnknownOption(t *testing.T) {
	t.Parallel()

	schema := rules.Checkbox("a", "b").Required()
	out, _, failures := schema.Validate("a", nil)
	if len(failures) != 0 {
		t.Fatalf("single value should be accepted, got %v", failures)
	}
	if diff := cmp.Diff([]any{"a"}, out); diff != "" {
		t.Fatalf("single value should become a list (-want +got):\n%s", diff)
	}
	_, _, failures = schema.Validate([]any{"a", "z"}, nil)
	if diff := cmp.Diff([]string{":any.allowOnly"}, failureTypes(failures)); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}
}

func TestDifferentFrom(t *testing.T) {
	t.Parallel()

	schema := rules.Email().Required().DifferentFrom("seniorEmail")
	siblings := answers.Set{"seniorEmail": "Boss@example.com"}
	_, _, failures := schema.Validate("boss@example.com", siblings)
	if diff := cmp.Diff([]string{":any.invalid"}, failureTypes(failures)); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}
	_, _, failures = schema.Validate("main@example.com", siblings)
	if len(failures) != 0 {
		t.Fatalf("distinct emails should pass, got %v", failures)
	}
}

func TestDateParts(t *testing.T) {
	t.Parallel()

	_, _, failures := rules.DateParts().Required().Validate(map[string]any{"day": "31", "month": "4", "year": "2020"}, nil)
	if diff := cmp.Diff([]string{":dateParts.invalid"}, failureTypes(failures)); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}

	_, _, failures = rules.DateParts().Required().Validate(map[string]any{"day": "1", "month": "", "year": "2020"}, nil)
	if diff := cmp.Diff([]string{"month:any.empty"}, failureTypes(failures)); diff != "" {
		t.Fatalf("part failures should skip the date check (-want +got):\n%s", diff)
	}

	if got := rules.FormatISO(map[string]any{"day": 3.0, "month": "2", "year": 2001}); got != "2001-02-03" {
		t.Fatalf("FormatISO = %q", got)
	}
}

func TestMinAgeAgainstFixedClock(t *testing.T) {
	rules.Now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { rules.Now = time.Now })

	schema := rules.DateParts().MinAge(18)
	_, _, failures := schema.Validate(map[string]any{"day": "2", "month": "6", "year": "2008"}, nil)
	if diff := cmp.Diff([]string{":dateParts.dob"}, failureTypes(failures)); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}
	_, _, failures = schema.Validate(map[string]any{"day": "1", "month": "6", "year": "2008"}, nil)
	if len(failures) != 0 {
		t.Fatalf("eighteenth birthday should pass, got %v", failures)
	}
}

func TestDateRange(t *testing.T) {
	rules.Now = func() time.Time { return time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { rules.Now = time.Now })

	schema := rules.DateRange(0, 12).Required()
	span := func(start, end string) map[string]any {
		return map[string]any{
			"startDate": map[string]any{"day": "1", "month": start, "year": "2026"},
			"endDate":   map[string]any{"day": "1", "month": end, "year": "2026"},
		}
	}

	_, _, failures := schema.Validate(span("6", "3"), nil)
	if diff := cmp.Diff([]string{":dateRange.endDate.beforeStartDate"}, failureTypes(failures)); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}
	_, _, failures = schema.Validate(span("3", "6"), nil)
	if len(failures) != 0 {
		t.Fatalf("ordered range should pass, got %v", failures)
	}
}

func TestBudgetAndTotals(t *testing.T) {
	t.Parallel()

	budget := []any{
		map[string]any{"item": "Chairs", "cost": "600"},
		map[string]any{"item": "Tables", "cost": "500"},
		map[string]any{"item": "", "cost": ""},
	}
	out, _, failures := rules.Budget(10, 1000).Required().Validate(budget, nil)
	if diff := cmp.Diff([]string{":budgetItems.overBudget"}, failureTypes(failures)); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}
	if got := len(out.([]any)); got != 2 {
		t.Fatalf("blank rows should be dropped, got %d rows", got)
	}

	siblings := answers.Set{"projectBudget": budget}
	_, _, failures = rules.Currency().AtLeastBudget("projectBudget").Validate("1000", siblings)
	if diff := cmp.Diff([]string{":budgetTotalCosts.underBudget"}, failureTypes(failures)); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}
}

func TestCompositeValidate(t *testing.T) {
	t.Parallel()

	composite := rules.Compose(
		rules.Key("name", rules.String().Required()),
		rules.Key("email", rules.Email().Required()),
		rules.Key("notes", rules.String().Strip()),
	)

	data := answers.Set{
		"name":    " Ada ",
		"email":   "not-an-email",
		"notes":   "secret",
		"unknown": "x",
	}
	out, failures := composite.Validate(data)

	if diff := cmp.Diff(answers.Set{"name": "Ada", "email": "not-an-email"}, out); diff != "" {
		t.Fatalf("sanitised output mismatch (-want +got):\n%s", diff)
	}
	got := make([]string, 0, len(failures))
	for _, f := range failures {
		got = append(got, f.Path()+":"+f.Type)
	}
	if diff := cmp.Diff([]string{"email:string.email"}, got); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"name", "email", "notes"}, composite.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestAddressHistoryRequiresPreviousAddress(t *testing.T) {
	t.Parallel()

	_, _, failures := rules.AddressHistory().Required().Validate(map[string]any{"currentAddressMeetsMinimum": "no"}, nil)
	if diff := cmp.Diff([]string{"previousAddress:any.required"}, failureTypes(failures)); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}
}
