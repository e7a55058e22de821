// Package wizard drives a form on the terminal: it walks the active steps,
// validates each one (running its external check), saves the answers after
// every valid step, shows the review summary and collects the terms.
package wizard

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/goliatone/go-formflow/internal/store"
	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/field"
	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/formmodel"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/preflight"
	"github.com/goliatone/go-formflow/pkg/upload"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// Repository is the persistence the wizard needs; *store.Store satisfies it.
type Repository interface {
	Load(ctx context.Context, id uuid.UUID) (store.Application, error)
	Save(ctx context.Context, id uuid.UUID, data answers.Set) error
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithPromptDriver overrides the terminal driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(w *Wizard) {
		if driver != nil {
			w.driver = driver
		}
	}
}

// WithRunner sets the preflight runner used for external checks.
func WithRunner(runner *preflight.Runner) Option {
	return func(w *Wizard) { w.runner = runner }
}

// WithUploads stores files read from files into storage.
func WithUploads(storage upload.Storage, files afero.Fs) Option {
	return func(w *Wizard) {
		w.uploads = storage
		if files != nil {
			w.files = files
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(logger *log.Logger) Option {
	return func(w *Wizard) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithEnvironment is reported in the model context.
func WithEnvironment(env string) Option {
	return func(w *Wizard) { w.environment = env }
}

// WithModelOptions forwards options to every model build.
func WithModelOptions(opts ...formmodel.Option) Option {
	return func(w *Wizard) { w.modelOpts = append(w.modelOpts, opts...) }
}

// Wizard walks one form.
type Wizard struct {
	form        *form.Form
	repo        Repository
	driver      PromptDriver
	runner      *preflight.Runner
	uploads     upload.Storage
	files       afero.Fs
	logger      *log.Logger
	environment string
	modelOpts   []formmodel.Option
}

// New builds a Wizard for f.
func New(f *form.Form, repo Repository, opts ...Option) *Wizard {
	w := &Wizard{
		form:   f,
		repo:   repo,
		driver: NewSurveyDriver(),
		files:  afero.NewOsFs(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	if w.runner == nil {
		w.runner = preflight.NewRunner(preflight.WithLogger(w.logger))
	}
	return w
}

// session is the state of one Run.
type session struct {
	app   store.Application
	data  answers.Set
	model *formmodel.Model
}

// Run resumes application id and returns the final model once the summary is
// reached with every section complete and the terms accepted.
func (w *Wizard) Run(ctx context.Context, id uuid.UUID) (*formmodel.Model, error) {
	if w.repo == nil {
		return nil, ErrNoRepository
	}
	app, err := w.repo.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("wizard: load application: %w", err)
	}

	s := &session{app: app, data: app.Set()}
	w.rebuild(s)

	dest := s.model.Navigator().First()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var err error
		switch dest.Kind {
		case navigation.KindIntroduction:
			if err := w.introduce(ctx, s, dest.Position); err != nil {
				return nil, err
			}
			dest, err = s.model.NextPosition(dest.Position)
		case navigation.KindStep:
			var ok bool
			ok, err = w.step(ctx, s, dest.Position)
			if err == nil && ok {
				dest, err = s.model.NextPosition(dest.Position)
			}
		case navigation.KindSummary:
			var done bool
			dest, done, err = w.review(ctx, s)
			if err == nil && done {
				return s.model, nil
			}
		default:
			dest = s.model.Navigator().First()
		}
		if err != nil {
			return nil, err
		}
	}
}

func (w *Wizard) rebuild(s *session) {
	mctx := formmodel.Context{
		ApplicationID: s.app.ID,
		Environment:   w.environment,
		StartedAt:     s.app.StartedAt,
	}
	s.model = formmodel.Build(w.form, s.app.Locale, s.data, mctx, w.modelOpts...)
}

func (w *Wizard) introduce(ctx context.Context, s *session, pos navigation.Position) error {
	section, ok := s.model.Shape().Section(pos.Section)
	if !ok {
		return fmt.Errorf("wizard: %w: section %d", navigation.ErrInvalidPosition, pos.Section)
	}
	loc := s.model.Localizer()
	return w.driver.Info(ctx, fmt.Sprintf("\n== %s ==\n%s", loc.Text(section.Title), loc.Text(section.Introduction)))
}

// step asks every field of the step at pos and reports whether the step
// passed validation, its external check and file storage. Answers are saved
// only when it did.
func (w *Wizard) step(ctx context.Context, s *session, pos navigation.Position) (bool, error) {
	step, err := s.model.Step(pos)
	if err != nil {
		return false, err
	}
	loc := s.model.Localizer()
	if err := w.driver.Info(ctx, "\n-- "+loc.Text(step.Title)+" --"); err != nil {
		return false, err
	}

	prompt := prompter{driver: w.driver, loc: loc}
	files := map[string]upload.File{}
	next := s.data.Clone()
	for _, fieldset := range step.Fieldsets {
		for _, fd := range fieldset.Fields {
			current, _ := next.Get(fd.Name)
			var value any
			if fd.Type == field.TypeFile {
				value, err = w.askFile(ctx, prompt, fd, current, files)
			} else {
				value, err = prompt.ask(ctx, fd, current)
			}
			if err != nil {
				return false, err
			}
			if value == nil {
				delete(next, fd.Name)
				continue
			}
			next[fd.Name] = value
		}
	}

	s.data = next
	w.rebuild(s)

	check, err := s.model.CheckStep(ctx, pos, w.runner)
	if err != nil {
		return false, err
	}
	if check.PreFlight.Degraded {
		w.logger.Printf("wizard: %s check let through: %s", step.Slug, check.PreFlight.Reason)
	}
	if !check.Valid {
		return false, w.showMessages(ctx, check.Messages)
	}

	if len(files) > 0 && w.uploads != nil {
		result, err := upload.Persist(ctx, w.uploads, []string{s.app.ID.String()}, files, s.model.Validation(), s.model.Form(), loc)
		if err != nil {
			w.logger.Printf("wizard: %v", err)
			for name := range files {
				if !result.Value.Has(name) {
					delete(s.data, name)
				}
			}
			w.rebuild(s)
			return false, w.showMessages(ctx, validation.ForFields(result.Messages, step.FieldNames()))
		}
	}

	if err := w.repo.Save(ctx, s.app.ID, s.data); err != nil {
		return false, fmt.Errorf("wizard: save answers: %w", err)
	}
	return true, nil
}

func (w *Wizard) askFile(ctx context.Context, prompt prompter, fd form.ActiveField, current any, files map[string]upload.File) (any, error) {
	existing, _ := current.(map[string]any)
	path, err := w.driver.Input(ctx, InputConfig{
		Message: prompt.loc.Text(fd.Label) + " (path)",
		Help:    prompt.loc.Text(fd.Explanation),
		Default: stringOf(existing["filename"]),
	})
	if err != nil {
		return nil, err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	if existing != nil && path == stringOf(existing["filename"]) {
		return current, nil
	}
	file, err := upload.FromPath(w.files, path)
	if err != nil {
		// An unreadable path reads as a missing answer; validation reports it.
		w.logger.Printf("wizard: %v", err)
		return nil, nil
	}
	files[fd.Name] = file
	return file.Meta.Value(), nil
}

func (w *Wizard) showMessages(ctx context.Context, messages []validation.Message) error {
	for _, msg := range messages {
		if err := w.driver.Info(ctx, "  ! "+msg.Msg); err != nil {
			return err
		}
	}
	return nil
}

// review prints the summary. An incomplete form sends the user to the first
// step with errors; a complete one asks for the terms.
func (w *Wizard) review(ctx context.Context, s *session) (navigation.Destination, bool, error) {
	loc := s.model.Localizer()
	for _, section := range s.model.Summary() {
		if err := w.driver.Info(ctx, fmt.Sprintf("\n%s [%s]", section.Title, section.Progress.Label)); err != nil {
			return navigation.Destination{}, false, err
		}
		for _, st := range section.Steps {
			for _, item := range st.Items {
				line := fmt.Sprintf("  %s: %s", item.Label, item.Value)
				if len(item.Messages) > 0 {
					line += "  (" + strings.Join(item.Messages, "; ") + ")"
				}
				if err := w.driver.Info(ctx, line); err != nil {
					return navigation.Destination{}, false, err
				}
			}
		}
	}

	if pos, ok := firstInvalidStep(s.model); ok {
		dest, err := s.model.Navigator().At(pos)
		if err != nil {
			return navigation.Destination{}, false, err
		}
		msg := loc.Key("wizard.incomplete", "Some answers need attention. Going to {step}.")
		return dest, false, w.driver.Info(ctx, strings.ReplaceAll(msg, "{step}", dest.Link.Label))
	}

	terms, err := w.askTerms(ctx, s)
	if err != nil {
		return navigation.Destination{}, false, err
	}
	result := s.model.ValidateTerms(terms)
	if !result.IsValid {
		return navigation.Destination{Kind: navigation.KindSummary}, false, w.showMessages(ctx, result.Messages)
	}

	s.data = s.data.Merge(result.Value)
	if err := w.repo.Save(ctx, s.app.ID, s.data); err != nil {
		return navigation.Destination{}, false, fmt.Errorf("wizard: save terms: %w", err)
	}
	w.rebuild(s)
	return navigation.Destination{Kind: navigation.KindSummary}, true, nil
}

func (w *Wizard) askTerms(ctx context.Context, s *session) (answers.Set, error) {
	prompt := prompter{driver: w.driver, loc: s.model.Localizer()}
	terms := answers.Set{}
	for _, fd := range s.model.Form().TermsFields() {
		active := form.ActiveField{
			Name:        fd.Name,
			Type:        fd.Type,
			Label:       fd.LabelFor(s.data),
			Explanation: fd.Explanation,
			Options:     fd.OptionsFor(s.data),
		}
		current, _ := s.data.Get(fd.Name)
		value, err := prompt.ask(ctx, active, current)
		if err != nil {
			return nil, err
		}
		if value != nil {
			terms[fd.Name] = value
		}
	}
	return terms, nil
}

func firstInvalidStep(m *formmodel.Model) (navigation.Position, bool) {
	for _, section := range m.Shape().Sections {
		for _, step := range section.Steps {
			pos := navigation.Position{Section: section.Index, Step: step.Index}
			if step.IsRequired && len(m.StepMessages(pos)) > 0 {
				return pos, true
			}
		}
	}
	return navigation.Position{}, false
}
