package openapi_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/field"
	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/openapi"
	"github.com/goliatone/go-formflow/pkg/rules"
)

func exportForm(t *testing.T) *form.Form {
	t.Helper()
	school := field.AnyOf("organisationType", "school")
	return form.MustNew(form.Definition{
		ID:    "small-grants",
		Title: i18n.Copy("Small grants"),
		Fields: field.Catalog{
			{Name: "organisationType", Type: field.TypeRadio, Required: field.Always, Options: []field.Option{{Value: "school"}, {Value: "charity"}}},
			{Name: "projectName", Type: field.TypeText, Label: i18n.Copy("Project name"), Required: field.Always},
			{Name: "projectCost", Type: field.TypeCurrency, Required: field.Always},
			{
				Name: "contactDob", Type: field.TypeDate, ShouldShow: field.Not(school),
				SchemaFunc: rules.When(school.Holds, rules.DateParts().Strip(), rules.DateParts().Required()),
			},
		},
		Sections: []form.Section{{Slug: "project", Steps: []form.Step{{Fieldsets: []form.Fieldset{{
			Fields: []string{"organisationType", "projectName", "projectCost", "contactDob"},
		}}}}}},
	})
}

func TestExportDescribesAnswers(t *testing.T) {
	t.Parallel()

	doc, err := openapi.Export(context.Background(), exportForm(t), answers.Set{"organisationType": "charity"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	ref, ok := doc.Components.Schemas["SmallGrantsAnswers"]
	if !ok {
		t.Fatalf("component schema missing: %v", doc.Components.Schemas)
	}
	schema := ref.Value
	if diff := cmp.Diff([]string{"organisationType", "projectName", "projectCost", "contactDob"}, schema.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}

	name := schema.Properties["projectName"].Value
	if name.Title != "Project name" || name.MaxLength == nil || *name.MaxLength != 255 {
		t.Fatalf("unexpected projectName schema: %+v", name)
	}
	if got := schema.Properties["organisationType"].Value.Enum; !cmp.Equal(got, []any{"school", "charity"}) {
		t.Fatalf("enum = %v", got)
	}
	if got := schema.Properties["contactDob"].Value.Format; got != "date" {
		t.Fatalf("contactDob format = %q", got)
	}
	if doc.Paths.Value("/applications/small-grants").Post.OperationID != "submitSmallGrantsAnswers" {
		t.Fatalf("submission operation missing")
	}
}

func TestExportMarksStrippedFields(t *testing.T) {
	t.Parallel()

	doc, err := openapi.Export(context.Background(), exportForm(t), answers.Set{"organisationType": "school"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	schema := doc.Components.Schemas["SmallGrantsAnswers"].Value
	for _, name := range schema.Required {
		if name == "contactDob" {
			t.Fatalf("stripped field must not be required")
		}
	}
	if stripped, _ := schema.Properties["contactDob"].Value.Extensions["x-formflow-stripped"].(bool); !stripped {
		t.Fatalf("contactDob should be marked as stripped")
	}
}

func TestExportRoundTripsThroughLoader(t *testing.T) {
	t.Parallel()

	doc, err := openapi.Export(context.Background(), exportForm(t), nil, openapi.WithAPIVersion("2.1.0"), openapi.WithPath("/submit"))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	loaded, err := openapi3.NewLoader().LoadFromData(raw)
	if err != nil {
		t.Fatalf("load exported document: %v", err)
	}
	if err := loaded.Validate(context.Background()); err != nil {
		t.Fatalf("exported document is invalid: %v", err)
	}
	if loaded.Info.Version != "2.1.0" || loaded.Paths.Value("/submit") == nil {
		t.Fatalf("options were not applied: %+v", loaded.Info)
	}
}
