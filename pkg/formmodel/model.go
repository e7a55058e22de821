// Package formmodel combines the derived views of a form for one answer set:
// active shape, composite schema, validation result, progress and navigation.
// A Model is computed in one pass from the same answers so the views cannot
// drift apart. Build a new Model whenever the answers change.
package formmodel

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/preflight"
	"github.com/goliatone/go-formflow/pkg/progress"
	"github.com/goliatone/go-formflow/pkg/rules"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// Context carries the request-scoped values a model may need. It is passed
// explicitly instead of living in globals.
type Context struct {
	ApplicationID uuid.UUID
	Environment   string
	StartedAt     time.Time
}

// Option customises Build.
type Option func(*options)

type options struct {
	translator i18n.Translator
	onMissing  i18n.MissingTranslationHandler
	baseURL    string
	navigation []navigation.Option
}

// WithTranslator resolves keyed copy through t.
func WithTranslator(t i18n.Translator) Option {
	return func(o *options) { o.translator = t }
}

// WithOnMissing overrides how missing translations are reported.
func WithOnMissing(handler i18n.MissingTranslationHandler) Option {
	return func(o *options) { o.onMissing = handler }
}

// WithBaseURL sets the URL prefix for step links.
func WithBaseURL(base string) Option {
	return func(o *options) { o.baseURL = base }
}

// WithNavigationOptions forwards options to the navigator.
func WithNavigationOptions(opts ...navigation.Option) Option {
	return func(o *options) { o.navigation = append(o.navigation, opts...) }
}

// Model is the combined view of a form for one answer set.
type Model struct {
	form   *form.Form
	ctx    Context
	loc    i18n.Localizer
	data   answers.Set
	shape  form.Shape
	schema rules.Composite
	result validation.Result
	nav    *navigation.Navigator
}

// Build computes the model for data. data is copied; the caller keeps
// ownership of its map.
func Build(f *form.Form, locale string, data answers.Set, ctx Context, opts ...Option) *Model {
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	loc := i18n.New(locale, i18n.WithTranslator(cfg.translator), i18n.WithOnMissing(cfg.onMissing))
	data = data.Clone()

	m := &Model{form: f, ctx: ctx, loc: loc, data: data}
	m.shape = f.Resolve(data)
	m.schema = f.Schema(data)
	m.result = validation.Validate(m.schema, data, f, loc)

	navOpts := []navigation.Option{navigation.WithLocalizer(loc)}
	if cfg.baseURL != "" {
		navOpts = append(navOpts, navigation.WithBaseURL(cfg.baseURL))
	}
	navOpts = append(navOpts, cfg.navigation...)
	m.nav = navigation.New(m.shape, navOpts...)
	return m
}

// Form returns the underlying form.
func (m *Model) Form() *form.Form { return m.form }

// Context returns the request context values the model was built with.
func (m *Model) Context() Context { return m.ctx }

// Localizer returns the localizer for the model's locale.
func (m *Model) Localizer() i18n.Localizer { return m.loc }

// Locale returns the normalised locale.
func (m *Model) Locale() string { return m.loc.Locale() }

// Answers returns a copy of the raw answers.
func (m *Model) Answers() answers.Set { return m.data.Clone() }

// Shape returns the active shape.
func (m *Model) Shape() form.Shape { return m.shape }

// ActiveSections lists the sections with at least one active field.
// Section.Index still refers to the position in Shape.
func (m *Model) ActiveSections() []form.ActiveSection {
	out := make([]form.ActiveSection, 0, len(m.shape.Sections))
	for _, section := range m.shape.Sections {
		if len(section.FieldNames()) > 0 {
			out = append(out, section)
		}
	}
	return out
}

// Schema returns the composite schema.
func (m *Model) Schema() rules.Composite { return m.schema }

// Validation returns the validation result for the whole form.
func (m *Model) Validation() validation.Result { return m.result }

// Progress returns whole form and per-section progress.
func (m *Model) Progress() progress.Progress {
	return progress.Compute(m.shape, m.result, m.loc)
}

// SectionProgress returns the progress of the section at index.
func (m *Model) SectionProgress(index int) (progress.SectionProgress, bool) {
	section, ok := m.shape.Section(index)
	if !ok {
		return progress.SectionProgress{}, false
	}
	return progress.ForSection(section, m.result, m.loc), true
}

// Navigator returns the navigator over the active shape.
func (m *Model) Navigator() *navigation.Navigator { return m.nav }

// NextPosition is the screen after pos.
func (m *Model) NextPosition(pos navigation.Position) (navigation.Destination, error) {
	return m.nav.Next(pos)
}

// PreviousPosition is the screen before pos.
func (m *Model) PreviousPosition(pos navigation.Position) (navigation.Destination, error) {
	return m.nav.Previous(pos)
}

// Step returns the active step at pos.
func (m *Model) Step(pos navigation.Position) (form.ActiveStep, error) {
	step, ok := m.shape.Step(pos.Section, pos.Step)
	if !ok {
		return form.ActiveStep{}, fmt.Errorf("%w: section %d step %d", navigation.ErrInvalidPosition, pos.Section, pos.Step)
	}
	return step, nil
}

// StepMessages returns the validation messages of the fields on the step.
func (m *Model) StepMessages(pos navigation.Position) []validation.Message {
	step, err := m.Step(pos)
	if err != nil {
		return nil
	}
	return validation.ForFields(m.result.Messages, step.FieldNames())
}

// StepCheck is the outcome of checking one step before moving on.
type StepCheck struct {
	Valid    bool
	Messages []validation.Message
	// PreFlight is the external check outcome; zero when it did not run.
	PreFlight preflight.Outcome
}

// CheckStep validates the fields of the step at pos. When they are valid and
// the step has an external check, the check runs with the fail-open policy of
// runner; a rejection is turned into field messages through the same
// catalogs. A nil runner uses preflight defaults.
func (m *Model) CheckStep(ctx context.Context, pos navigation.Position, runner *preflight.Runner) (StepCheck, error) {
	step, err := m.Step(pos)
	if err != nil {
		return StepCheck{}, err
	}

	messages := validation.ForFields(m.result.Messages, step.FieldNames())
	if len(messages) > 0 || step.PreFlight == nil {
		return StepCheck{Valid: len(messages) == 0, Messages: messages}, nil
	}

	if runner == nil {
		runner = preflight.NewRunner()
	}
	outcome := runner.Run(ctx, step.PreFlight, m.result.Value)
	if outcome.Passed {
		return StepCheck{Valid: true, PreFlight: outcome}, nil
	}

	rejected := validation.FromFailures(m.result.Value, outcome.Failures, m.form, m.loc)
	return StepCheck{Messages: rejected.Messages, PreFlight: outcome}, nil
}

// ValidateTerms validates the confirmation fields against data.
func (m *Model) ValidateTerms(data answers.Set) validation.Result {
	return validation.Validate(m.form.TermsSchema(data), data, m.form, m.loc)
}
