package formflow_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/forms/grant"
	"github.com/goliatone/go-formflow/pkg/preflight"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

const fixtures = "examples/fixtures"

func TestLoadFormsIncludesBuiltinsAndDefinitions(t *testing.T) {
	t.Parallel()

	reg, err := formflow.LoadForms(formflow.WithDefinitions(os.DirFS(fixtures + "/forms")))
	if err != nil {
		t.Fatalf("load forms: %v", err)
	}
	if diff := cmp.Diff([]string{grant.ID, "community-fund"}, reg.IDs()); diff != "" {
		t.Fatalf("form ids mismatch (-want +got):\n%s", diff)
	}

	builtinsOnly, err := formflow.LoadForms(formflow.WithDefinitions(os.DirFS(fixtures+"/forms")), formflow.WithoutBuiltins())
	if err != nil {
		t.Fatalf("load forms: %v", err)
	}
	if _, ok := builtinsOnly.Get(grant.ID); ok {
		t.Fatalf("expected %s to be skipped", grant.ID)
	}
}

func TestLoadFormsRejectsDuplicateIDs(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"clash.yaml": {Data: []byte(`
id: awards-for-all
title: Clash
fields:
  - name: projectName
    type: text
sections:
  - slug: project
    title: Project
    steps:
      - title: Name
        fieldsets:
          - fields: [projectName]
`)},
	}
	if _, err := formflow.LoadForms(formflow.WithDefinitions(fsys)); err == nil {
		t.Fatal("expected a duplicate id error")
	}
}

func TestLoadFormsAttachesBankChecker(t *testing.T) {
	t.Parallel()

	checker := preflight.CheckerFunc(func(context.Context, answers.Set) (preflight.Result, error) {
		return preflight.Result{}, errors.New("unreachable")
	})
	reg, err := formflow.LoadForms(formflow.WithChecker(grant.BankCheckName, checker))
	if err != nil {
		t.Fatalf("load forms: %v", err)
	}
	f, _ := reg.Get(grant.ID)
	step, ok := f.Resolve(nil).Step(5, 0)
	if !ok {
		t.Fatal("bank details step missing")
	}
	if step.PreFlight == nil || step.PreFlight.Name != grant.BankCheckName {
		t.Fatalf("expected the bank check on the bank details step, got %+v", step.PreFlight)
	}
}

func TestSchoolAnswersDropHiddenDateOfBirth(t *testing.T) {
	t.Parallel()

	f := testsupport.MustLoadForm(t, fixtures+"/forms/community-fund.yaml")
	data := testsupport.MustLoadAnswers(t, fixtures+"/answers/school.json")

	model := formflow.Build(f, "en", data, formflow.Context{ApplicationID: uuid.New()})
	for _, name := range model.Shape().Fields() {
		if name == "mainContactDateOfBirth" {
			t.Fatal("date of birth should be hidden for schools")
		}
	}

	payload := model.ForSubmission()
	if testsupport.WriteGolden(t, fixtures+"/golden/school-submission.json", payload) {
		return
	}
	if diff := testsupport.CompareGolden(t, fixtures+"/golden/school-submission.json", payload); diff != "" {
		t.Fatalf("submission payload mismatch (-want +got):\n%s", diff)
	}
}

func TestExportOpenAPIDescribesForm(t *testing.T) {
	t.Parallel()

	f := testsupport.MustLoadForm(t, fixtures+"/forms/community-fund.yaml")
	doc, err := formflow.ExportOpenAPI(testsupport.Context(), f, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		t.Fatal("expected component schemas")
	}
}
