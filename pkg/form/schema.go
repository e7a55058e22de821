package form

import (
	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/field"
	"github.com/goliatone/go-formflow/pkg/rules"
)

// Schema aggregates the schema of every catalog field, shown or not, each
// resolved against data. Hidden fields rely on their own conditional schema to
// become optional or stripped.
func (f *Form) Schema(data answers.Set) rules.Composite {
	return compose(f.def.Fields, data)
}

// TermsSchema aggregates the confirmation fields.
func (f *Form) TermsSchema(data answers.Set) rules.Composite {
	return compose(f.def.TermsFields, data)
}

func compose(defs field.Catalog, data answers.Set) rules.Composite {
	entries := make([]rules.Entry, 0, len(defs))
	for _, fd := range defs {
		entries = append(entries, rules.Key(fd.Name, fd.SchemaFor(data)))
	}
	return rules.Compose(entries...)
}
