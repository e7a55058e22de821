package form_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/field"
	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/preflight"
	"github.com/goliatone/go-formflow/pkg/rules"
)

func sampleDefinition() form.Definition {
	notSchool := field.NoneOf("organisationType", "school")
	return form.Definition{
		ID:    "sample",
		Title: i18n.Copy("Sample"),
		Fields: field.Catalog{
			{Name: "organisationType", Type: field.TypeRadio, Required: field.Always, Options: []field.Option{{Value: "charity"}, {Value: "school"}}},
			{Name: "contactName", Type: field.TypeText, Required: field.Always},
			{
				Name:       "contactDob",
				Type:       field.TypeDate,
				ShouldShow: notSchool,
				Required:   notSchool,
				SchemaFunc: rules.When(notSchool.Holds, rules.DateParts().Required(), rules.Any().Strip()),
			},
			{Name: "contactAddress", Type: field.TypeAddress, ShouldShow: notSchool, Required: notSchool},
		},
		Sections: []form.Section{
			{
				Slug:  "organisation",
				Title: i18n.Copy("Organisation"),
				Steps: []form.Step{{Title: i18n.Copy("Type"), Fieldsets: []form.Fieldset{{Fields: []string{"organisationType"}}}}},
			},
			{
				Slug:         "contact",
				Title:        i18n.Copy("Contact"),
				Introduction: i18n.Copy("Tell us who to talk to"),
				Steps: []form.Step{
					{Title: i18n.Copy("Name"), Fieldsets: []form.Fieldset{{Fields: []string{"contactName"}}}},
					{Title: i18n.Copy("Personal"), Fieldsets: []form.Fieldset{
						{Legend: i18n.Copy("Date of birth"), Fields: []string{"contactDob"}},
						{Legend: i18n.Copy("Address"), Fields: []string{"contactAddress"}},
					}},
				},
			},
		},
		FeaturedFields: []string{"contactName"},
	}
}

func TestResolveHidesFieldsAndFlagsEmptySteps(t *testing.T) {
	t.Parallel()

	f := form.MustNew(sampleDefinition())

	charity := f.Resolve(answers.Set{"organisationType": "charity"})
	if diff := cmp.Diff([]string{"organisationType", "contactName", "contactDob", "contactAddress"}, charity.Fields()); diff != "" {
		t.Fatalf("charity fields mismatch (-want +got):\n%s", diff)
	}

	school := f.Resolve(answers.Set{"organisationType": "school"})
	if diff := cmp.Diff([]string{"organisationType", "contactName"}, school.Fields()); diff != "" {
		t.Fatalf("school fields mismatch (-want +got):\n%s", diff)
	}
	step, ok := school.Step(1, 1)
	if !ok {
		t.Fatalf("hidden steps must keep their position")
	}
	if step.IsRequired || len(step.Fieldsets) != 0 {
		t.Fatalf("step with no active fields should not be required: %+v", step)
	}
	if step.Slug != "contact/2" {
		t.Fatalf("unexpected slug %q", step.Slug)
	}
	if !school.Sections[1].HasIntroduction() || school.Sections[0].HasIntroduction() {
		t.Fatalf("introduction flags wrong")
	}
}

func TestResolveIsPureAndToleratesMissingAnswers(t *testing.T) {
	t.Parallel()

	f := form.MustNew(sampleDefinition())
	data := answers.Set{"contactName": "Ada"}

	first := f.Resolve(data)
	second := f.Resolve(data)
	if diff := cmp.Diff(first.Fields(), second.Fields()); diff != "" {
		t.Fatalf("resolve not deterministic (-first +second):\n%s", diff)
	}
	if got := len(f.Resolve(nil).Fields()); got != 4 {
		t.Fatalf("undefined organisation type should show dependants, got %d fields", got)
	}
	if diff := cmp.Diff(answers.Set{"contactName": "Ada"}, data); diff != "" {
		t.Fatalf("answers mutated (-want +got):\n%s", diff)
	}
}

func TestSchemaCoversWholeCatalog(t *testing.T) {
	t.Parallel()

	f := form.MustNew(sampleDefinition())
	school := answers.Set{"organisationType": "school", "contactDob": map[string]any{"day": "1", "month": "1", "year": "1980"}}

	composite := f.Schema(school)
	if diff := cmp.Diff([]string{"organisationType", "contactName", "contactDob", "contactAddress"}, composite.Keys()); diff != "" {
		t.Fatalf("composite keys mismatch (-want +got):\n%s", diff)
	}
	value, failures := composite.Validate(school)
	if _, ok := value["contactDob"]; ok {
		t.Fatalf("stripped field leaked into value: %v", value)
	}
	for _, failure := range failures {
		if failure.Field == "contactDob" || failure.Field == "contactAddress" {
			t.Fatalf("hidden field should not block: %+v", failure)
		}
	}
}

func TestValidateDefinitionReportsEveryProblem(t *testing.T) {
	t.Parallel()

	def := sampleDefinition()
	def.Fields = append(def.Fields,
		field.Definition{Name: "contactName", Type: field.TypeText},
		field.Definition{Name: "groups", Type: field.TypeCheckbox},
		field.Definition{Name: "mystery", Type: "signature"},
	)
	def.Sections = append(def.Sections,
		form.Section{Slug: "contact", Steps: []form.Step{{Fieldsets: []form.Fieldset{{Fields: []string{"nope"}}}}}},
		form.Section{Slug: "uploads", Steps: []form.Step{{
			Multipart: true,
			Fieldsets: []form.Fieldset{{Fields: []string{"groups"}}},
			PreFlight: &preflight.Check{Name: "bank", Fields: []string{"accountNumber"}},
		}}},
	)
	def.FeaturedFields = append(def.FeaturedFields, "ghost")

	_, err := form.New(def)
	if !errors.Is(err, form.ErrInvalidDefinition) {
		t.Fatalf("expected ErrInvalidDefinition, got %v", err)
	}
	var defErr *form.DefinitionError
	if !errors.As(err, &defErr) {
		t.Fatalf("expected *DefinitionError, got %T", err)
	}

	var messages []string
	for _, p := range defErr.Problems {
		messages = append(messages, p.Message)
	}
	want := []string{
		`duplicate field name "contactName"`,
		`field "mystery" has unknown type "signature"`,
		`duplicate section slug "contact"`,
		`unknown field "nope"`,
		`multipart step cannot contain checkbox field "groups"`,
		`preflight check "bank" has no checker`,
		`preflight check "bank" targets field "accountNumber" outside the step`,
		`unknown featured field "ghost"`,
	}
	if diff := cmp.Diff(want, messages); diff != "" {
		t.Fatalf("problems mismatch (-want +got):\n%s", diff)
	}
}

func TestLintFlagsSharedVisibilityAndRequiredRule(t *testing.T) {
	t.Parallel()

	doc := `
id: lint
title: Lint
fields:
  - name: charityNumber
    type: text
    showWhen: organisationType == "charity"
    required: organisationType == "charity"
  - name: organisationType
    type: radio
    options: [{value: charity}, {value: school}]
sections:
  - slug: about
    title: About
    steps:
      - title: Organisation
        fieldsets:
          - fields: [organisationType, charityNumber]
`
	f, err := form.Load([]byte(doc), "lint.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	var def form.Definition
	def.Fields = f.Fields()
	def.Sections = f.Sections()
	warnings := form.Lint(def)
	if len(warnings) != 1 || warnings[0].Field != "charityNumber" {
		t.Fatalf("expected one smell on charityNumber, got %+v", warnings)
	}
}

func TestLintFlagsSharedPredicateInGoCatalog(t *testing.T) {
	t.Parallel()

	needsNumber := field.AnyOf("organisationType", "charity")
	def := form.Definition{
		ID: "lint-go",
		Fields: field.Catalog{
			{Name: "organisationType", Type: field.TypeRadio, Required: field.Always},
			{Name: "charityNumber", Type: field.TypeText, ShouldShow: needsNumber, Required: needsNumber},
			{Name: "companyNumber", Type: field.TypeText, ShouldShow: needsNumber, Required: field.Answered("organisationType")},
		},
		Sections: []form.Section{{
			Slug:  "about",
			Steps: []form.Step{{Fieldsets: []form.Fieldset{{Fields: []string{"organisationType", "charityNumber", "companyNumber"}}}}},
		}},
	}

	warnings := form.Lint(def)
	if len(warnings) != 1 || warnings[0].Field != "charityNumber" {
		t.Fatalf("expected one smell on charityNumber, got %+v", warnings)
	}
}

const definitionYAML = `
id: small-grants
title:
  en: Small grants
  cy: Grantiau bach
featuredFields: [email]
fields:
  - name: projectName
    type: text
    label: Project name
    required: true
    validation:
      maxLength: 20
    messages:
      - type: base
        text: Enter a project name
      - type: string.max
        text: Project name must be 20 characters or fewer
  - name: country
    type: radio
    required: true
    options:
      - value: england
      - value: wales
  - name: welshLanguage
    type: radio
    showWhen: country in [wales]
    required: country == wales
    discardWhen: country not in [wales]
    options:
      - value: english
      - value: welsh
  - name: email
    type: email
    required: true
  - name: bankStatement
    type: file
    validation:
      maxSize: 1000
      mimeTypes: [application/pdf]
sections:
  - slug: your-project
    title: Your project
    introduction: About your project
    steps:
      - title: Project
        fieldsets:
          - fields: [projectName, country]
      - title: Language
        fieldsets:
          - fields: [welshLanguage]
  - slug: bank-details
    title: Bank details
    steps:
      - title: Contact
        fieldsets:
          - fields: [email]
        preflight:
          name: bank
          fields: [email]
      - title: Statement
        multipart: true
        fieldsets:
          - fields: [bankStatement]
`

func TestLoadFSCompilesDefinitions(t *testing.T) {
	t.Parallel()

	checker := preflight.CheckerFunc(func(context.Context, answers.Set) (preflight.Result, error) {
		return preflight.Result{Status: preflight.StatusValid}, nil
	})
	fsys := fstest.MapFS{
		"forms/small-grants.yaml": {Data: []byte(definitionYAML)},
		"forms/README.md":         {Data: []byte("ignored")},
	}

	reg, err := form.LoadFS(fsys, form.WithChecker("bank", checker))
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	if diff := cmp.Diff([]string{"small-grants"}, reg.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	f, _ := reg.Get("small-grants")
	if got := f.Title().In(i18n.LocaleWelsh); got != "Grantiau bach" {
		t.Fatalf("welsh title = %q", got)
	}

	england := answers.Set{"country": "england", "welshLanguage": "welsh", "projectName": strings.Repeat("x", 25)}
	if got := f.Resolve(england).Fields(); len(got) != 4 {
		t.Fatalf("welsh question should be hidden for england: %v", got)
	}
	value, failures := f.Schema(england).Validate(england)
	if _, ok := value["welshLanguage"]; ok {
		t.Fatalf("discarded field kept: %v", value)
	}
	var got []string
	for _, failure := range failures {
		got = append(got, failure.Field+":"+failure.Type)
	}
	want := []string{"projectName:string.max", "email:any.required"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}

	wales := answers.Set{"country": "wales"}
	step, _ := f.Resolve(wales).Step(0, 1)
	if !step.IsRequired || !step.Fieldsets[0].Fields[0].Required {
		t.Fatalf("welsh language step should be required for wales: %+v", step)
	}
}

func TestLoadRejectsDocumentsOutsideMetaSchema(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"unknown key": strings.Replace(definitionYAML, "featuredFields: [email]", "featured: [email]", 1),
		"bad type":    strings.Replace(definitionYAML, "type: email", "type: signature", 1),
		"bad slug":    strings.Replace(definitionYAML, "slug: bank-details", "slug: Bank Details", 1),
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := form.Load([]byte(doc), name+".yaml", form.WithChecker("bank", preflight.CheckerFunc(nil)))
			if !errors.Is(err, form.ErrInvalidDefinition) {
				t.Fatalf("expected meta-schema failure, got %v", err)
			}
		})
	}
}

func TestLoadRejectsUnknownChecker(t *testing.T) {
	t.Parallel()

	_, err := form.Load([]byte(definitionYAML), "small-grants.yaml")
	if err == nil || !strings.Contains(err.Error(), `unknown preflight checker "bank"`) {
		t.Fatalf("expected unknown checker error, got %v", err)
	}
}
