// Package formflow is the top-level entry point: it re-exports the core form
// types and wires the built-in grant form together with definition documents
// loaded from disk.
package formflow

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/formmodel"
	"github.com/goliatone/go-formflow/pkg/forms/grant"
	"github.com/goliatone/go-formflow/pkg/openapi"
	"github.com/goliatone/go-formflow/pkg/preflight"
)

// Form is a validated, immutable form definition.
type Form = form.Form

// Definition is the static description a Form is built from.
type Definition = form.Definition

// Registry indexes forms by id.
type Registry = form.Registry

// Model is the combined view of a form for one answer set.
type Model = formmodel.Model

// Context carries the application id, environment and start time of a model.
type Context = formmodel.Context

// Answers is the raw, possibly partial answer set.
type Answers = answers.Set

// Option configures LoadForms.
type Option func(*options)

type options struct {
	definitions fs.FS
	checkers    map[string]preflight.Checker
	builtins    bool
}

// WithDefinitions loads every JSON/YAML definition document in fsys.
func WithDefinitions(fsys fs.FS) Option {
	return func(o *options) { o.definitions = fsys }
}

// WithChecker registers an external check. The name is matched against the
// `preflight.name` of definition documents; grant.BankCheckName also attaches
// the checker to the built-in grant form.
func WithChecker(name string, checker preflight.Checker) Option {
	return func(o *options) {
		if checker == nil {
			return
		}
		if o.checkers == nil {
			o.checkers = make(map[string]preflight.Checker)
		}
		o.checkers[name] = checker
	}
}

// WithoutBuiltins skips the built-in grant form.
func WithoutBuiltins() Option {
	return func(o *options) { o.builtins = false }
}

// LoadForms builds the registry of every form the process serves. A broken
// definition fails the whole load.
func LoadForms(opts ...Option) (*Registry, error) {
	cfg := options{builtins: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	loadOpts := make([]form.LoadOption, 0, len(cfg.checkers))
	for name, checker := range cfg.checkers {
		loadOpts = append(loadOpts, form.WithChecker(name, checker))
	}
	reg, err := form.LoadFS(cfg.definitions, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("formflow: load definitions: %w", err)
	}

	if cfg.builtins {
		var grantOpts []grant.Option
		if checker, ok := cfg.checkers[grant.BankCheckName]; ok {
			grantOpts = append(grantOpts, grant.WithBankChecker(checker))
		}
		f, err := grant.New(grantOpts...)
		if err != nil {
			return nil, fmt.Errorf("formflow: build %s: %w", grant.ID, err)
		}
		if err := reg.Register(f); err != nil {
			return nil, fmt.Errorf("formflow: %w", err)
		}
	}
	return reg, nil
}

// Build computes the model of f for data. It is a pure function of its inputs.
func Build(f *Form, locale string, data Answers, ctx Context, opts ...formmodel.Option) *Model {
	return formmodel.Build(f, locale, data, ctx, opts...)
}

// ExportOpenAPI describes the answers f accepts for data as an OpenAPI 3
// document.
func ExportOpenAPI(ctx context.Context, f *Form, data Answers, opts ...openapi.Option) (*openapi3.T, error) {
	return openapi.Export(ctx, f, data, opts...)
}
