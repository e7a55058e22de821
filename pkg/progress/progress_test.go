package progress_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/field"
	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/progress"
	"github.com/goliatone/go-formflow/pkg/validation"
)

func testForm(t *testing.T) *form.Form {
	t.Helper()
	f, err := form.New(form.Definition{
		ID: "progress",
		Fields: field.Catalog{
			{Name: "projectName", Type: field.TypeText, Required: field.Always},
			{Name: "projectCountry", Type: field.TypeRadio, Required: field.Always, Options: []field.Option{{Value: "england"}, {Value: "wales"}}},
			{Name: "welshLanguage", Type: field.TypeText, ShouldShow: field.AnyOf("projectCountry", "wales")},
		},
		Sections: []form.Section{
			{Slug: "project", Title: i18n.Copy("Your project"), ShortTitle: i18n.Copy("Project"), Steps: []form.Step{
				{Fieldsets: []form.Fieldset{{Fields: []string{"projectName", "projectCountry"}}}},
			}},
			{Slug: "language", Title: i18n.Copy("Language"), Steps: []form.Step{
				{Fieldsets: []form.Fieldset{{Fields: []string{"welshLanguage"}}}},
			}},
		},
	})
	if err != nil {
		t.Fatalf("form.New: %v", err)
	}
	return f
}

func compute(f *form.Form, data answers.Set) progress.Progress {
	loc := i18n.New("en")
	result := validation.Validate(f.Schema(data), data, f, loc)
	return progress.Compute(f.Resolve(data), result, loc)
}

func TestProgressBoundaries(t *testing.T) {
	t.Parallel()

	f := testForm(t)

	cases := []struct {
		name string
		data answers.Set
		all  progress.Status
	}{
		{name: "empty answers", data: answers.Set{}, all: progress.StatusEmpty},
		{name: "blank values only", data: answers.Set{"projectName": "  "}, all: progress.StatusEmpty},
		{name: "one valid field", data: answers.Set{"projectName": "Community garden"}, all: progress.StatusIncomplete},
		{name: "all required", data: answers.Set{"projectName": "Community garden", "projectCountry": "england"}, all: progress.StatusComplete},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := compute(f, tc.data).All; got != tc.all {
				t.Fatalf("All = %s, want %s", got, tc.all)
			}
		})
	}
}

func TestHiddenSectionIsEmptyNotComplete(t *testing.T) {
	t.Parallel()

	f := testForm(t)
	got := compute(f, answers.Set{"projectName": "Community garden", "projectCountry": "england"})

	want := []progress.SectionProgress{
		{Slug: "project", Label: "Project", Status: progress.StatusComplete},
		{Slug: "language", Label: "Language", Status: progress.StatusEmpty},
	}
	if diff := cmp.Diff(want, got.Sections); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}
	if !got.Complete() {
		t.Fatalf("form should be complete")
	}
}

func TestSectionScopedToActiveFields(t *testing.T) {
	t.Parallel()

	f := testForm(t)
	got := compute(f, answers.Set{"projectCountry": "wales", "welshLanguage": "Yes"})

	project, _ := got.Section("project")
	language, _ := got.Section("language")
	if project.Status != progress.StatusIncomplete {
		t.Fatalf("project should be incomplete, got %s", project.Status)
	}
	if language.Status != progress.StatusComplete {
		t.Fatalf("language should be complete, got %s", language.Status)
	}
	if got.All != progress.StatusIncomplete {
		t.Fatalf("form should be incomplete, got %s", got.All)
	}
}
