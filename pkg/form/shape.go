package form

import (
	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/field"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/preflight"
)

// Shape is the active form for one answer set. Hidden fields and emptied
// fieldsets are removed; every step is kept so positions and slugs stay
// stable, with IsRequired false when nothing in it is active.
type Shape struct {
	FormID   string
	Sections []ActiveSection
}

// ActiveSection is a section of the active shape.
type ActiveSection struct {
	Index        int
	Slug         string
	Title        i18n.Text
	ShortTitle   i18n.Text
	Introduction i18n.Text
	Steps        []ActiveStep
}

// ActiveStep is a step of the active shape.
type ActiveStep struct {
	Index      int
	Slug       string
	Title      i18n.Text
	Fieldsets  []ActiveFieldset
	IsRequired bool
	Multipart  bool
	PreFlight  *preflight.Check
	Message    i18n.Text
}

// ActiveFieldset holds the fieldset's currently shown fields.
type ActiveFieldset struct {
	Legend       i18n.Text
	Introduction i18n.Text
	Footer       i18n.Text
	Fields       []ActiveField
}

// ActiveField is a shown field with its answer-dependent properties resolved.
type ActiveField struct {
	Name        string
	Type        field.Type
	Label       i18n.Text
	Explanation i18n.Text
	Options     []field.Option
	Required    bool
	Attributes  map[string]string
}

// Resolve computes the active shape for data. It never mutates the form and
// tolerates nil or partial answers.
func (f *Form) Resolve(data answers.Set) Shape {
	shape := Shape{FormID: f.def.ID, Sections: make([]ActiveSection, 0, len(f.def.Sections))}
	for si, section := range f.def.Sections {
		active := ActiveSection{
			Index:        si,
			Slug:         section.Slug,
			Title:        section.Title,
			ShortTitle:   section.ShortTitle,
			Introduction: section.Introduction,
			Steps:        make([]ActiveStep, 0, len(section.Steps)),
		}
		for sti, step := range section.Steps {
			active.Steps = append(active.Steps, f.resolveStep(section.Slug, sti, step, data))
		}
		shape.Sections = append(shape.Sections, active)
	}
	return shape
}

func (f *Form) resolveStep(sectionSlug string, index int, step Step, data answers.Set) ActiveStep {
	out := ActiveStep{
		Index:     index,
		Slug:      StepSlug(sectionSlug, index),
		Title:     step.Title,
		Multipart: step.Multipart,
		PreFlight: step.PreFlight,
		Message:   step.Message,
	}
	for _, fieldset := range step.Fieldsets {
		fields := make([]ActiveField, 0, len(fieldset.Fields))
		for _, name := range fieldset.Fields {
			fd, ok := f.fields[name]
			if !ok || !fd.ShownFor(data) {
				continue
			}
			fields = append(fields, ActiveField{
				Name:        fd.Name,
				Type:        fd.Type,
				Label:       fd.LabelFor(data),
				Explanation: fd.Explanation,
				Options:     fd.OptionsFor(data),
				Required:    fd.RequiredFor(data),
				Attributes:  fd.Attributes,
			})
		}
		if len(fields) == 0 {
			continue
		}
		out.Fieldsets = append(out.Fieldsets, ActiveFieldset{
			Legend:       fieldset.Legend,
			Introduction: fieldset.Introduction,
			Footer:       fieldset.Footer,
			Fields:       fields,
		})
	}
	out.IsRequired = len(out.Fieldsets) > 0
	return out
}

// HasIntroduction reports whether the section has a landing screen.
func (s ActiveSection) HasIntroduction() bool {
	return !s.Introduction.IsZero()
}

// FieldNames lists the section's active field names in order.
func (s ActiveSection) FieldNames() []string {
	var names []string
	for _, step := range s.Steps {
		names = append(names, step.FieldNames()...)
	}
	return names
}

// Step returns the step at index.
func (s ActiveSection) Step(index int) (ActiveStep, bool) {
	if index < 0 || index >= len(s.Steps) {
		return ActiveStep{}, false
	}
	return s.Steps[index], true
}

// FieldNames lists the step's active field names in order.
func (s ActiveStep) FieldNames() []string {
	var names []string
	for _, fieldset := range s.Fieldsets {
		for _, fd := range fieldset.Fields {
			names = append(names, fd.Name)
		}
	}
	return names
}

// Fields lists every active field name in form order.
func (s Shape) Fields() []string {
	var names []string
	for _, section := range s.Sections {
		names = append(names, section.FieldNames()...)
	}
	return names
}

// Section returns the section at index.
func (s Shape) Section(index int) (ActiveSection, bool) {
	if index < 0 || index >= len(s.Sections) {
		return ActiveSection{}, false
	}
	return s.Sections[index], true
}

// Step returns the step at (section, step).
func (s Shape) Step(section, step int) (ActiveStep, bool) {
	sec, ok := s.Section(section)
	if !ok {
		return ActiveStep{}, false
	}
	return sec.Step(step)
}

// FindStep locates a step by slug.
func (s Shape) FindStep(slug string) (section, step int, ok bool) {
	for si, sec := range s.Sections {
		for sti, st := range sec.Steps {
			if st.Slug == slug {
				return si, sti, true
			}
		}
	}
	return 0, 0, false
}
