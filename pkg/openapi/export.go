package openapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/rules"
)

const (
	// Version is the OpenAPI version written into exported documents.
	Version = "3.0.3"

	extensionStripped = "x-formflow-stripped"
	extensionOrder    = "x-formflow-order"
)

// Option configures an export.
type Option func(*exporter)

type exporter struct {
	version string
	path    string
	loc     i18n.Localizer
}

// WithAPIVersion sets info.version (default "1.0.0").
func WithAPIVersion(v string) Option {
	return func(e *exporter) {
		if strings.TrimSpace(v) != "" {
			e.version = v
		}
	}
}

// WithPath sets the submission path (default "/applications/{formId}").
func WithPath(p string) Option {
	return func(e *exporter) {
		if strings.TrimSpace(p) != "" {
			e.path = p
		}
	}
}

// WithLocalizer localises titles and labels.
func WithLocalizer(loc i18n.Localizer) Option {
	return func(e *exporter) { e.loc = loc }
}

// Export builds and validates an OpenAPI document describing the answers the
// form accepts for data. Conditional schemas are resolved against data, so
// the export reflects one answer set; pass nil for the defaults.
func Export(ctx context.Context, f *form.Form, data answers.Set, options ...Option) (*openapi3.T, error) {
	if f == nil {
		return nil, fmt.Errorf("openapi: form is nil")
	}
	e := exporter{version: "1.0.0", path: "/applications/" + f.ID()}
	for _, opt := range options {
		if opt != nil {
			opt(&e)
		}
	}

	name := componentName(f.ID())
	answersSchema := ObjectSchema(f.Schema(data))
	for _, fd := range f.Fields() {
		if prop, ok := answersSchema.Properties[fd.Name]; ok && prop.Value != nil {
			prop.Value.Title = e.loc.Text(fd.LabelFor(data))
		}
	}

	title := e.loc.Text(f.Title())
	if title == "" {
		title = f.ID()
	}

	op := openapi3.NewOperation()
	op.OperationID = "submit" + name
	op.Summary = title
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithJSONSchemaRef(openapi3.NewSchemaRef("#/components/schemas/"+name, answersSchema)),
	}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(202, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Application accepted")}),
		openapi3.WithStatus(422, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Answers failed validation")}),
	)

	paths := openapi3.NewPaths()
	paths.Set(e.path, &openapi3.PathItem{Post: op})

	doc := &openapi3.T{
		OpenAPI: Version,
		Info:    &openapi3.Info{Title: title, Version: e.version},
		Paths:   paths,
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{name: openapi3.NewSchemaRef("", answersSchema)},
		},
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: export %s: %w", f.ID(), err)
	}
	return doc, nil
}

// ObjectSchema converts a composite schema into an object schema. Stripped
// fields are kept but marked with x-formflow-stripped; the field order is
// recorded in x-formflow-order.
func ObjectSchema(composite rules.Composite) *openapi3.Schema {
	return objectSchema(composite.Describe())
}

func objectSchema(props []rules.Property) *openapi3.Schema {
	out := openapi3.NewObjectSchema()
	order := make([]any, 0, len(props))
	for _, prop := range props {
		out.WithProperty(prop.Name, Schema(prop.Description))
		order = append(order, prop.Name)
		if prop.Description.Required && !prop.Description.Stripped {
			out.Required = append(out.Required, prop.Name)
		}
	}
	out.Extensions = map[string]any{extensionOrder: order}
	return out
}

// Schema converts one field description.
func Schema(desc rules.Description) *openapi3.Schema {
	var out *openapi3.Schema
	switch desc.Kind {
	case rules.KindString:
		out = openapi3.NewStringSchema()
		if desc.MinLength != nil {
			out.MinLength = uint64(*desc.MinLength)
		}
		if desc.MaxLength != nil {
			limit := uint64(*desc.MaxLength)
			out.MaxLength = &limit
		}
		out.Pattern = desc.Pattern
	case rules.KindNumber:
		out = openapi3.NewFloat64Schema()
		out.Min = desc.Min
		out.Max = desc.Max
	case rules.KindObject:
		out = objectSchema(desc.Properties)
	case rules.KindArray:
		out = openapi3.NewArraySchema()
		if desc.Items != nil {
			out.Items = openapi3.NewSchemaRef("", Schema(*desc.Items))
		}
		if desc.MinItems != nil {
			out.MinItems = uint64(*desc.MinItems)
		}
		if desc.MaxItems != nil {
			limit := uint64(*desc.MaxItems)
			out.MaxItems = &limit
		}
	default:
		out = openapi3.NewSchema()
	}

	if desc.Format != "" {
		out.Format = desc.Format
	}
	for _, value := range desc.Enum {
		out.Enum = append(out.Enum, value)
	}
	if desc.Stripped {
		if out.Extensions == nil {
			out.Extensions = map[string]any{}
		}
		out.Extensions[extensionStripped] = true
	}
	return out
}

// componentName turns a form id such as "small-grants" into "SmallGrantsAnswers".
func componentName(id string) string {
	var b strings.Builder
	for _, part := range strings.FieldsFunc(id, func(r rune) bool { return r == '-' || r == '_' || r == ' ' }) {
		b.WriteString(strings.ToUpper(part[:1]) + part[1:])
	}
	b.WriteString("Answers")
	return b.String()
}
