package field_test

import (
	"testing"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/field"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/rules"
)

func TestPredicatesTreatMissingAnswersAsUndefined(t *testing.T) {
	t.Parallel()

	excluded := field.NoneOf("organisationType", "school", "statutory-body")
	included := field.AnyOf("organisationType", "school", "statutory-body")

	for _, data := range []answers.Set{nil, {}, {"organisationType": ""}} {
		if !excluded.Holds(data) {
			t.Fatalf("NoneOf should hold for undefined answer (%v)", data)
		}
		if included.Holds(data) {
			t.Fatalf("AnyOf should not hold for undefined answer (%v)", data)
		}
	}

	school := answers.Set{"organisationType": "school"}
	if excluded.Holds(school) || !included.Holds(school) {
		t.Fatalf("explicit answer not honoured")
	}
	if !field.Not(included).Holds(nil) {
		t.Fatalf("Not should invert")
	}
}

func TestDefinitionDefaults(t *testing.T) {
	t.Parallel()

	def := field.Definition{Name: "projectName", Type: field.TypeText}
	if def.RequiredFor(nil) {
		t.Fatalf("nil Required should mean optional")
	}
	if !def.ShownFor(nil) {
		t.Fatalf("nil ShouldShow should mean shown")
	}

	def.Required = field.Always
	schema := def.SchemaFor(nil)
	if !schema.IsRequired() {
		t.Fatalf("derived schema should follow Required")
	}
	if _, _, failures := schema.Validate("", nil); len(failures) != 1 || failures[0].Type != rules.TypeEmpty {
		t.Fatalf("expected any.empty, got %v", failures)
	}
}

func TestSchemaFuncWins(t *testing.T) {
	t.Parallel()

	def := field.Definition{
		Name:   "dob",
		Type:   field.TypeDate,
		Schema: rules.DateParts().Required(),
		SchemaFunc: rules.When(
			field.AnyOf("organisationType", "school").Holds,
			rules.Any().Strip(),
			rules.DateParts().Required(),
		),
	}
	if !def.SchemaFor(answers.Set{"organisationType": "school"}).IsStripped() {
		t.Fatalf("expected stripped schema for schools")
	}
	if !def.SchemaFor(nil).IsRequired() {
		t.Fatalf("expected required schema by default")
	}
}

func TestOptionsAndLabelFunctions(t *testing.T) {
	t.Parallel()

	def := field.Definition{
		Name:  "role",
		Type:  field.TypeRadio,
		Label: i18n.Copy("Role"),
		LabelFunc: func(data answers.Set) i18n.Text {
			if data.String("organisationType") == "school" {
				return i18n.Copy("Role in the school")
			}
			return i18n.Copy("Role")
		},
		OptionsFunc: func(data answers.Set) []field.Option {
			if data.String("organisationType") == "school" {
				return []field.Option{{Value: "head-teacher"}}
			}
			return []field.Option{{Value: "chair"}, {Value: "trustee"}}
		},
	}

	school := answers.Set{"organisationType": "school"}
	if got := def.LabelFor(school).In(i18n.LocaleEnglish); got != "Role in the school" {
		t.Fatalf("LabelFor = %q", got)
	}
	if got := field.OptionValues(def.OptionsFor(nil)); len(got) != 2 {
		t.Fatalf("expected default options, got %v", got)
	}
	_, _, failures := def.SchemaFor(school).Validate("chair", school)
	if len(failures) != 1 || failures[0].Type != rules.TypeAllowOnly {
		t.Fatalf("options should drive the derived schema, got %v", failures)
	}
}

func TestArrayValuedTypes(t *testing.T) {
	t.Parallel()

	for _, typ := range field.Types() {
		want := typ == field.TypeCheckbox || typ == field.TypeBudget
		if typ.ArrayValued() != want {
			t.Fatalf("%s ArrayValued = %v", typ, !want)
		}
		if !typ.Valid() {
			t.Fatalf("%s should be valid", typ)
		}
	}
	if field.Type("signature").Valid() {
		t.Fatalf("unknown type reported valid")
	}
}

func TestPredicateSources(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		pred field.Predicate
		want string
	}{
		{name: "equals", pred: field.Equals("beneficiariesGroupsCheck", "yes"), want: `beneficiariesGroupsCheck == "yes"`},
		{name: "any of", pred: field.AnyOf("organisationType", "school", "college"), want: `organisationType in ["school" "college"]`},
		{name: "none of", pred: field.NoneOf("organisationType", "school"), want: `organisationType not in ["school"]`},
		{name: "not", pred: field.Not(field.Answered("companyNumber")), want: `!(answered(companyNumber))`},
		{name: "all", pred: field.All(field.Answered("a"), field.Equals("b", "x")), want: `(answered(a)) && (b == "x")`},
		{name: "opaque operand", pred: field.All(field.Answered("a"), field.Always), want: ""},
		{name: "func", pred: field.PredicateFunc(func(answers.Set) bool { return true }), want: ""},
		{name: "nil", pred: nil, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := field.SourceOf(tc.pred); got != tc.want {
				t.Fatalf("SourceOf = %q, want %q", got, tc.want)
			}
		})
	}
}
