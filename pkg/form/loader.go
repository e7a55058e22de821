package form

import (
	_ "embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/field"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/preflight"
	"github.com/goliatone/go-formflow/pkg/rules"
	"github.com/goliatone/go-formflow/pkg/visibility/expr"
)

//go:embed metaschema.cue
var metaSchemaSource string

// MetaSchema returns the CUE source definition documents are checked against.
func MetaSchema() string { return metaSchemaSource }

// LoadOption configures LoadFS and Load.
type LoadOption func(*loadConfig)

type loadConfig struct {
	checkers map[string]preflight.Checker
}

// WithChecker registers the checker a document's `preflight.name` refers to.
func WithChecker(name string, checker preflight.Checker) LoadOption {
	return func(cfg *loadConfig) {
		if cfg.checkers == nil {
			cfg.checkers = make(map[string]preflight.Checker)
		}
		cfg.checkers[strings.TrimSpace(name)] = checker
	}
}

// Registry holds forms loaded from definition documents, keyed by id.
type Registry struct {
	forms map[string]*Form
}

// NewRegistry indexes already built forms.
func NewRegistry(forms ...*Form) (*Registry, error) {
	reg := &Registry{forms: make(map[string]*Form, len(forms))}
	for _, f := range forms {
		if err := reg.add(f, "registry"); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (r *Registry) add(f *Form, source string) error {
	if _, exists := r.forms[f.ID()]; exists {
		return fmt.Errorf("form: duplicate form id %q (%s)", f.ID(), source)
	}
	r.forms[f.ID()] = f
	return nil
}

// Register adds f, failing on a duplicate id.
func (r *Registry) Register(f *Form) error {
	if f == nil {
		return fmt.Errorf("form: register nil form")
	}
	if r.forms == nil {
		r.forms = make(map[string]*Form)
	}
	return r.add(f, "registry")
}

// Get returns the form with id.
func (r *Registry) Get(id string) (*Form, bool) {
	if r == nil {
		return nil, false
	}
	f, ok := r.forms[id]
	return f, ok
}

// IDs lists the loaded form ids sorted.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.forms))
	for id := range r.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadFS walks fsys and loads every JSON/YAML definition document. Any
// document that fails the meta-schema or structural validation fails the
// whole load.
func LoadFS(fsys fs.FS, options ...LoadOption) (*Registry, error) {
	reg := &Registry{forms: make(map[string]*Form)}
	if fsys == nil {
		return reg, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("form: read %s: %w", path, err)
		}
		f, err := Load(data, path, options...)
		if err != nil {
			return err
		}
		return reg.add(f, path)
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// Load parses one definition document. JSON documents are accepted as YAML.
func Load(data []byte, source string, options ...LoadOption) (*Form, error) {
	cfg := loadConfig{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("form: file %s is empty", source)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("form: parse %s: %w", source, err)
	}
	if err := checkMetaSchema(raw, source); err != nil {
		return nil, err
	}

	var doc documentFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("form: decode %s: %w", source, err)
	}

	def, err := doc.compile(cfg)
	if err != nil {
		return nil, fmt.Errorf("form: %s: %w", source, err)
	}
	return New(def)
}

func checkMetaSchema(raw any, source string) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(metaSchemaSource, cue.Filename("metaschema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("form: compile meta-schema: %w", err)
	}
	value := schema.LookupPath(cue.ParsePath("#Form")).Unify(ctx.Encode(raw))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("form: %s does not match the definition schema: %s: %w",
			source, strings.TrimSpace(cueerrors.Details(err, nil)), ErrInvalidDefinition)
	}
	return nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

type documentFile struct {
	ID             string        `yaml:"id"`
	Title          i18n.Text     `yaml:"title"`
	FeaturedFields []string      `yaml:"featuredFields"`
	Fields         []fieldFile   `yaml:"fields"`
	TermsFields    []fieldFile   `yaml:"termsFields"`
	Sections       []sectionFile `yaml:"sections"`
}

type sectionFile struct {
	Slug         string     `yaml:"slug"`
	Title        i18n.Text  `yaml:"title"`
	ShortTitle   i18n.Text  `yaml:"shortTitle"`
	Introduction i18n.Text  `yaml:"introduction"`
	Steps        []stepFile `yaml:"steps"`
}

type stepFile struct {
	Title     i18n.Text      `yaml:"title"`
	Multipart bool           `yaml:"multipart"`
	Message   i18n.Text      `yaml:"message"`
	PreFlight *preflightFile `yaml:"preflight"`
	Fieldsets []fieldsetFile `yaml:"fieldsets"`
}

type preflightFile struct {
	Name        string   `yaml:"name"`
	Fields      []string `yaml:"fields"`
	FailureType string   `yaml:"failureType"`
}

type fieldsetFile struct {
	Legend       i18n.Text `yaml:"legend"`
	Introduction i18n.Text `yaml:"introduction"`
	Footer       i18n.Text `yaml:"footer"`
	Fields       []string  `yaml:"fields"`
}

type fieldFile struct {
	Name        string            `yaml:"name"`
	Type        field.Type        `yaml:"type"`
	Label       i18n.Text         `yaml:"label"`
	Explanation i18n.Text         `yaml:"explanation"`
	Required    any               `yaml:"required"`
	ShowWhen    string            `yaml:"showWhen"`
	DiscardWhen string            `yaml:"discardWhen"`
	Options     []optionFile      `yaml:"options"`
	Validation  validationFile    `yaml:"validation"`
	Messages    []messageFile     `yaml:"messages"`
	Attributes  map[string]string `yaml:"attributes"`
}

type optionFile struct {
	Value       string    `yaml:"value"`
	Label       i18n.Text `yaml:"label"`
	Explanation i18n.Text `yaml:"explanation"`
}

type messageFile struct {
	Type string    `yaml:"type"`
	Key  string    `yaml:"key"`
	Text i18n.Text `yaml:"text"`
}

type validationFile struct {
	MinLength     int      `yaml:"minLength"`
	MaxLength     int      `yaml:"maxLength"`
	MinWords      int      `yaml:"minWords"`
	MaxWords      int      `yaml:"maxWords"`
	Min           *float64 `yaml:"min"`
	Max           *float64 `yaml:"max"`
	Pattern       string   `yaml:"pattern"`
	MaxSize       int64    `yaml:"maxSize"`
	MimeTypes     []string `yaml:"mimeTypes"`
	MaxItems      int      `yaml:"maxItems"`
	MaxBudget     float64  `yaml:"maxBudget"`
	MinAge        int      `yaml:"minAge"`
	FutureDays    int      `yaml:"futureDays"`
	PastOnly      bool     `yaml:"pastOnly"`
	MaxSpanMonths int      `yaml:"maxSpanMonths"`
	DifferentFrom string   `yaml:"differentFrom"`
	AtLeastBudget string   `yaml:"atLeastBudget"`
}

func (doc documentFile) compile(cfg loadConfig) (Definition, error) {
	def := Definition{
		ID:             strings.TrimSpace(doc.ID),
		Title:          doc.Title,
		FeaturedFields: append([]string(nil), doc.FeaturedFields...),
	}

	var err error
	if def.Fields, err = compileFields(doc.Fields); err != nil {
		return Definition{}, err
	}
	if def.TermsFields, err = compileFields(doc.TermsFields); err != nil {
		return Definition{}, err
	}

	for _, rawSection := range doc.Sections {
		section := Section{
			Slug:         strings.TrimSpace(rawSection.Slug),
			Title:        rawSection.Title,
			ShortTitle:   rawSection.ShortTitle,
			Introduction: rawSection.Introduction,
		}
		for _, rawStep := range rawSection.Steps {
			step := Step{Title: rawStep.Title, Multipart: rawStep.Multipart, Message: rawStep.Message}
			for _, rawFieldset := range rawStep.Fieldsets {
				step.Fieldsets = append(step.Fieldsets, Fieldset{
					Legend:       rawFieldset.Legend,
					Introduction: rawFieldset.Introduction,
					Footer:       rawFieldset.Footer,
					Fields:       append([]string(nil), rawFieldset.Fields...),
				})
			}
			if rawStep.PreFlight != nil {
				checker, ok := cfg.checkers[rawStep.PreFlight.Name]
				if !ok {
					return Definition{}, fmt.Errorf("section %q: unknown preflight checker %q", section.Slug, rawStep.PreFlight.Name)
				}
				step.PreFlight = &preflight.Check{
					Name:        rawStep.PreFlight.Name,
					Checker:     checker,
					Fields:      append([]string(nil), rawStep.PreFlight.Fields...),
					FailureType: rawStep.PreFlight.FailureType,
				}
			}
			section.Steps = append(section.Steps, step)
		}
		def.Sections = append(def.Sections, section)
	}
	return def, nil
}

func compileFields(raw []fieldFile) (field.Catalog, error) {
	out := make(field.Catalog, 0, len(raw))
	for _, rf := range raw {
		fd, err := rf.compile()
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", rf.Name, err)
		}
		out = append(out, fd)
	}
	return out, nil
}

func (rf fieldFile) compile() (field.Definition, error) {
	fd := field.Definition{
		Name:        strings.TrimSpace(rf.Name),
		Type:        rf.Type,
		Label:       rf.Label,
		Explanation: rf.Explanation,
		Attributes:  rf.Attributes,
	}
	for _, opt := range rf.Options {
		fd.Options = append(fd.Options, field.Option{Value: opt.Value, Label: opt.Label, Explanation: opt.Explanation})
	}
	for _, msg := range rf.Messages {
		fd.Messages = append(fd.Messages, field.Message{Type: msg.Type, Key: msg.Key, Text: msg.Text})
	}

	switch required := rf.Required.(type) {
	case nil:
	case bool:
		if required {
			fd.Required = field.Always
		}
	case string:
		program, err := expr.Compile(required)
		if err != nil {
			return field.Definition{}, fmt.Errorf("required: %w", err)
		}
		fd.Required = program
	default:
		return field.Definition{}, fmt.Errorf("required must be a bool or a rule, got %T", rf.Required)
	}

	if strings.TrimSpace(rf.ShowWhen) != "" {
		program, err := expr.Compile(rf.ShowWhen)
		if err != nil {
			return field.Definition{}, fmt.Errorf("showWhen: %w", err)
		}
		fd.ShouldShow = program
	}

	var discard *expr.Program
	if strings.TrimSpace(rf.DiscardWhen) != "" {
		program, err := expr.Compile(rf.DiscardWhen)
		if err != nil {
			return field.Definition{}, fmt.Errorf("discardWhen: %w", err)
		}
		discard = program
	}

	base, err := rf.Validation.schema(fd.Type, fd.Options)
	if err != nil {
		return field.Definition{}, err
	}
	required := fd.Required
	fd.SchemaFunc = func(data answers.Set) rules.Schema {
		if discard != nil && discard.Holds(data) {
			return base.Strip()
		}
		if required != nil && required.Holds(data) {
			return base.Required()
		}
		return base
	}
	return fd, nil
}

func (v validationFile) schema(t field.Type, options []field.Option) (rules.Schema, error) {
	var pattern *regexp.Regexp
	if v.Pattern != "" {
		compiled, err := regexp.Compile(v.Pattern)
		if err != nil {
			return rules.Schema{}, fmt.Errorf("validation.pattern: %w", err)
		}
		pattern = compiled
	}

	var s rules.Schema
	switch t {
	case field.TypeText, field.TypeTextarea:
		limit := v.MaxLength
		if limit == 0 {
			limit = 255
			if t == field.TypeTextarea {
				limit = 5000
			}
		}
		s = rules.String().Max(limit)
	case field.TypeDate:
		s = rules.DateParts()
		if v.MinAge > 0 {
			s = s.MinAge(v.MinAge)
		}
		if v.PastOnly {
			s = s.PastOnly()
		}
		if v.FutureDays > 0 {
			s = s.FutureOnly(v.FutureDays)
		}
	case field.TypeDateRange:
		s = rules.DateRange(v.FutureDays, v.MaxSpanMonths)
	case field.TypeMonthYear:
		s = rules.MonthYear()
		if v.PastOnly {
			s = s.PastMonth()
		}
	case field.TypeBudget:
		maxItems, maxBudget := v.MaxItems, v.MaxBudget
		if maxItems == 0 {
			maxItems = 10
		}
		if maxBudget == 0 {
			maxBudget = 10000
		}
		s = rules.Budget(maxItems, maxBudget)
	case field.TypeFile:
		s = rules.File(v.MaxSize, v.MimeTypes...)
	case field.TypeCheckbox:
		s = rules.Checkbox(field.OptionValues(options)...)
		if v.MaxItems > 0 {
			s = s.MaxItems(v.MaxItems)
		}
	default:
		s = field.BaseSchema(t, options)
	}

	if v.MinLength > 0 {
		s = s.Min(v.MinLength)
	}
	if v.MinWords > 0 || v.MaxWords > 0 {
		s = s.WordCount(v.MinWords, v.MaxWords)
	}
	if pattern != nil {
		s = s.Pattern(pattern)
	}
	if v.Min != nil {
		s = s.MinValue(*v.Min)
	}
	if v.Max != nil {
		s = s.MaxValue(*v.Max)
	}
	if v.DifferentFrom != "" {
		s = s.DifferentFrom(v.DifferentFrom)
	}
	if v.AtLeastBudget != "" {
		s = s.AtLeastBudget(v.AtLeastBudget)
	}
	return s, nil
}
