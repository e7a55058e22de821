package form

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/goliatone/go-formflow/pkg/field"
)

// ErrInvalidDefinition is matched by every *DefinitionError.
var ErrInvalidDefinition = errors.New("form: invalid definition")

// Problem is one structural violation, located by a path such as
// "sections[2].steps[0].fieldsets[1]".
type Problem struct {
	Path    string
	Message string
}

func (p Problem) String() string {
	if p.Path == "" {
		return p.Message
	}
	return fmt.Sprintf("%s (%s)", p.Message, p.Path)
}

// DefinitionError reports a malformed static definition. It is fatal: a form
// that fails validation must not be served.
type DefinitionError struct {
	FormID   string
	Problems []Problem
}

func (e *DefinitionError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.String())
	}
	return fmt.Sprintf("form: invalid definition %q: %s", e.FormID, strings.Join(parts, "; "))
}

// Unwrap lets errors.Is match ErrInvalidDefinition.
func (e *DefinitionError) Unwrap() error { return ErrInvalidDefinition }

// ValidateDefinition checks the structural rules every form must satisfy:
// unique field names of known types, unique section slugs, fieldsets that only
// reference catalog fields, featured fields that exist, and multipart steps
// that carry no list-valued fields.
func ValidateDefinition(def Definition) error {
	var problems []Problem
	add := func(path, format string, args ...any) {
		problems = append(problems, Problem{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(def.ID) == "" {
		add("id", "form id is required")
	}

	catalog := make(map[string]field.Definition, len(def.Fields)+len(def.TermsFields))
	checkCatalog := func(prefix string, defs field.Catalog) {
		for idx, fd := range defs {
			path := fmt.Sprintf("%s[%d]", prefix, idx)
			if strings.TrimSpace(fd.Name) == "" {
				add(path, "field name is required")
				continue
			}
			if _, dup := catalog[fd.Name]; dup {
				add(path, "duplicate field name %q", fd.Name)
				continue
			}
			if !fd.Type.Valid() {
				add(path, "field %q has unknown type %q", fd.Name, fd.Type)
			}
			catalog[fd.Name] = fd
		}
	}
	checkCatalog("fields", def.Fields)
	checkCatalog("termsFields", def.TermsFields)

	if len(def.Sections) == 0 {
		add("sections", "form has no sections")
	}

	slugs := make(map[string]struct{}, len(def.Sections))
	for si, section := range def.Sections {
		sectionPath := fmt.Sprintf("sections[%d]", si)
		slug := strings.TrimSpace(section.Slug)
		switch {
		case slug == "":
			add(sectionPath, "section slug is required")
		case strings.Contains(slug, "/"):
			add(sectionPath, "section slug %q must not contain '/'", slug)
		default:
			if _, dup := slugs[slug]; dup {
				add(sectionPath, "duplicate section slug %q", slug)
			}
			slugs[slug] = struct{}{}
		}
		if len(section.Steps) == 0 {
			add(sectionPath, "section %q has no steps", section.Slug)
		}

		for sti, step := range section.Steps {
			stepPath := fmt.Sprintf("%s.steps[%d]", sectionPath, sti)
			var stepFields []string
			for fi, fieldset := range step.Fieldsets {
				fieldsetPath := fmt.Sprintf("%s.fieldsets[%d]", stepPath, fi)
				for _, name := range fieldset.Fields {
					fd, ok := catalog[name]
					if !ok {
						add(fieldsetPath, "unknown field %q", name)
						continue
					}
					if _, isTerms := indexOf(def.TermsFields, name); isTerms {
						add(fieldsetPath, "terms field %q cannot appear in a step", name)
					}
					if step.Multipart && fd.Type.ArrayValued() {
						add(fieldsetPath, "multipart step cannot contain %s field %q", fd.Type, name)
					}
					stepFields = append(stepFields, name)
				}
			}
			if check := step.PreFlight; check != nil {
				if check.Checker == nil {
					add(stepPath, "preflight check %q has no checker", check.Name)
				}
				for _, name := range check.Fields {
					if !slices.Contains(stepFields, name) {
						add(stepPath, "preflight check %q targets field %q outside the step", check.Name, name)
					}
				}
			}
		}
	}

	for idx, name := range def.FeaturedFields {
		if _, ok := catalog[name]; !ok {
			add(fmt.Sprintf("featuredFields[%d]", idx), "unknown featured field %q", name)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return &DefinitionError{FormID: def.ID, Problems: problems}
}

func indexOf(defs field.Catalog, name string) (int, bool) {
	for idx, fd := range defs {
		if fd.Name == name {
			return idx, true
		}
	}
	return -1, false
}

// Warning is a non-fatal finding from Lint.
type Warning struct {
	Field   string
	Message string
}

// Lint reports definition smells that do not stop the form from working:
// fields whose display and requiredness come from the same rule, fields placed
// in more than one step, and catalog fields no step shows.
func Lint(def Definition) []Warning {
	var warnings []Warning

	for _, fd := range def.Fields {
		shown := field.SourceOf(fd.ShouldShow)
		if shown != "" && shown == field.SourceOf(fd.Required) {
			warnings = append(warnings, Warning{
				Field:   fd.Name,
				Message: fmt.Sprintf("showWhen and required share the rule %q; visibility and requiredness are independent", shown),
			})
		}
	}

	placed := make(map[string]int)
	for _, section := range def.Sections {
		for _, step := range section.Steps {
			for _, fieldset := range step.Fieldsets {
				for _, name := range fieldset.Fields {
					placed[name]++
				}
			}
		}
	}
	for _, fd := range def.Fields {
		switch count := placed[fd.Name]; {
		case count == 0:
			warnings = append(warnings, Warning{Field: fd.Name, Message: "field is not placed in any step"})
		case count > 1:
			warnings = append(warnings, Warning{Field: fd.Name, Message: fmt.Sprintf("field is placed in %d steps", count)})
		}
	}
	return warnings
}

// Lint runs Lint over the form's definition.
func (f *Form) Lint() []Warning {
	if f == nil {
		return nil
	}
	return Lint(f.def)
}
