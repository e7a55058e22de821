// Package progress derives completion status for a form and each of its
// sections from the active shape and a validation result.
package progress

import (
	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// Status is one of empty, incomplete or complete.
type Status string

const (
	StatusEmpty      Status = "empty"
	StatusIncomplete Status = "incomplete"
	StatusComplete   Status = "complete"
)

// SectionProgress is the status of one section.
type SectionProgress struct {
	Slug   string
	Label  string
	Status Status
}

// Progress is the status of the whole form plus each section in order.
type Progress struct {
	All      Status
	Sections []SectionProgress
}

// Compute derives progress from shape and result.
func Compute(shape form.Shape, result validation.Result, loc i18n.Localizer) Progress {
	out := Progress{
		All:      status(result.Value.Len(), len(result.Messages)),
		Sections: make([]SectionProgress, 0, len(shape.Sections)),
	}
	for _, section := range shape.Sections {
		out.Sections = append(out.Sections, ForSection(section, result, loc))
	}
	return out
}

// ForSection applies the form rule to the section's active fields only. A
// section with no active fields is empty, never complete.
func ForSection(section form.ActiveSection, result validation.Result, loc i18n.Localizer) SectionProgress {
	label := section.ShortTitle
	if label.IsZero() {
		label = section.Title
	}
	out := SectionProgress{Slug: section.Slug, Label: loc.Text(label), Status: StatusEmpty}

	names := section.FieldNames()
	if len(names) == 0 {
		return out
	}
	answered := result.Value.Pick(names...).Len()
	messages := len(validation.ForFields(result.Messages, names))
	out.Status = status(answered, messages)
	return out
}

func status(answered, messages int) Status {
	switch {
	case answered == 0:
		return StatusEmpty
	case messages == 0:
		return StatusComplete
	default:
		return StatusIncomplete
	}
}

// Section finds the progress entry for slug.
func (p Progress) Section(slug string) (SectionProgress, bool) {
	for _, section := range p.Sections {
		if section.Slug == slug {
			return section, true
		}
	}
	return SectionProgress{}, false
}

// Complete reports whether the whole form is complete.
func (p Progress) Complete() bool {
	return p.All == StatusComplete
}
