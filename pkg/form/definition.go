// Package form holds the static skeleton of a multi-step form (sections,
// steps, fieldsets referencing catalog fields), its startup validation, and
// the pure functions that derive the active shape and composite schema from
// an answer set.
package form

import (
	"fmt"
	"slices"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/field"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/preflight"
)

// Fieldset groups catalog fields under a legend. Fields are catalog names.
type Fieldset struct {
	Legend       i18n.Text
	Introduction i18n.Text
	Footer       i18n.Text
	Fields       []string
}

// Step is one page of the wizard.
type Step struct {
	Title     i18n.Text
	Fieldsets []Fieldset
	// Multipart steps are posted as multipart bodies so they can carry files.
	Multipart bool
	PreFlight *preflight.Check
	Message   i18n.Text
}

// Section is an ordered run of steps. A non-empty Introduction gives the
// section a landing screen before its first step.
type Section struct {
	Slug         string
	Title        i18n.Text
	ShortTitle   i18n.Text
	Introduction i18n.Text
	Steps        []Step
}

// Definition is the static description of a form.
type Definition struct {
	ID    string
	Title i18n.Text
	// Sections is the page skeleton.
	Sections []Section
	// Fields is the full catalog the composite schema is built from.
	Fields field.Catalog
	// TermsFields are validated only on the confirmation screen.
	TermsFields field.Catalog
	// FeaturedFields lists fields whose specific errors are promoted.
	FeaturedFields []string
	// ForSubmission reshapes the flattened submission payload.
	ForSubmission func(data answers.Set) map[string]any
}

// Form is a validated, indexed Definition. It is immutable and safe for
// concurrent use.
type Form struct {
	def      Definition
	fields   map[string]field.Definition
	terms    map[string]field.Definition
	featured map[string]struct{}
	sections map[string]int
}

// New validates def and indexes it. The returned error is a *DefinitionError.
func New(def Definition) (*Form, error) {
	if err := ValidateDefinition(def); err != nil {
		return nil, err
	}
	f := &Form{
		def:      def,
		fields:   make(map[string]field.Definition, len(def.Fields)),
		terms:    make(map[string]field.Definition, len(def.TermsFields)),
		featured: make(map[string]struct{}, len(def.FeaturedFields)),
		sections: make(map[string]int, len(def.Sections)),
	}
	for _, fd := range def.Fields {
		f.fields[fd.Name] = fd
	}
	for _, fd := range def.TermsFields {
		f.terms[fd.Name] = fd
	}
	for _, name := range def.FeaturedFields {
		f.featured[name] = struct{}{}
	}
	for idx, section := range def.Sections {
		f.sections[section.Slug] = idx
	}
	return f, nil
}

// MustNew is New for definitions compiled into the binary; it panics on error.
func MustNew(def Definition) *Form {
	f, err := New(def)
	if err != nil {
		panic(err)
	}
	return f
}

// ID returns the form id.
func (f *Form) ID() string { return f.def.ID }

// Title returns the form title.
func (f *Form) Title() i18n.Text { return f.def.Title }

// Sections returns the static sections.
func (f *Form) Sections() []Section { return slices.Clone(f.def.Sections) }

// Fields returns the field catalog.
func (f *Form) Fields() field.Catalog { return slices.Clone(f.def.Fields) }

// TermsFields returns the confirmation fields.
func (f *Form) TermsFields() field.Catalog { return slices.Clone(f.def.TermsFields) }

// Field looks up a catalog field.
func (f *Form) Field(name string) (field.Definition, bool) {
	fd, ok := f.fields[name]
	return fd, ok
}

// TermsField looks up a confirmation field.
func (f *Form) TermsField(name string) (field.Definition, bool) {
	fd, ok := f.terms[name]
	return fd, ok
}

// Messages returns the message catalog of a catalog or confirmation field.
func (f *Form) Messages(name string) []field.Message {
	if fd, ok := f.fields[name]; ok {
		return fd.Messages
	}
	if fd, ok := f.terms[name]; ok {
		return fd.Messages
	}
	return nil
}

// Featured reports whether name is on the featured allow-list.
func (f *Form) Featured(name string) bool {
	_, ok := f.featured[name]
	return ok
}

// SectionIndex finds a section by slug.
func (f *Form) SectionIndex(slug string) (int, bool) {
	idx, ok := f.sections[slug]
	return idx, ok
}

// SubmissionHook returns the form-level submission reshaper, if any.
func (f *Form) SubmissionHook() func(answers.Set) map[string]any {
	return f.def.ForSubmission
}

// StepSlug is the address of a step: section slug plus its 1-based number.
func StepSlug(sectionSlug string, stepIndex int) string {
	return fmt.Sprintf("%s/%d", sectionSlug, stepIndex+1)
}
