package rules

import "strconv"

// Description is a static summary of a schema's constraints, used by
// exporters that need to document the composite schema.
type Description struct {
	Kind       Kind
	Format     string
	Required   bool
	Stripped   bool
	Enum       []string
	Min        *float64
	Max        *float64
	MinLength  *int
	MaxLength  *int
	MinItems   *int
	MaxItems   *int
	Pattern    string
	Properties []Property
	Items      *Description
}

// Property is a named nested description.
type Property struct {
	Name        string
	Description Description
}

// Describe returns the schema's constraints.
func (s Schema) Describe() Description {
	desc := s.desc
	if desc.Kind == "" {
		desc.Kind = s.Kind()
	}
	desc.Required = s.IsRequired()
	desc.Stripped = s.IsStripped()
	desc.Enum = append([]string(nil), s.desc.Enum...)
	if len(s.children) > 0 {
		desc.Properties = make([]Property, 0, len(s.children))
		for _, c := range s.children {
			desc.Properties = append(desc.Properties, Property{Name: c.name, Description: c.schema.Describe()})
		}
	}
	if s.items != nil {
		items := s.items.Describe()
		desc.Items = &items
	}
	return desc
}

func (s Schema) describe(fn func(*Description)) Schema {
	fn(&s.desc)
	return s
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func itoa(v int) string { return strconv.Itoa(v) }
