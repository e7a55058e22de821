// Package preflight runs the external checks a step performs after its fields
// validate and before answers are saved, such as verifying bank details with a
// third party. Checks fail open: only an explicit INVALID verdict blocks the
// step; errors, timeouts and unknown verdicts let the user continue.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/rules"
)

// Status is the verdict of an external check.
type Status string

const (
	StatusValid   Status = "VALID"
	StatusInvalid Status = "INVALID"
	StatusUnknown Status = "UNKNOWN"
)

// DefaultFailureType is reported on the check's fields when no FailureType is
// configured.
const DefaultFailureType = "preflight.invalid"

// DefaultTimeout bounds a single check.
const DefaultTimeout = 5 * time.Second

// Result is what a Checker reports.
type Result struct {
	Status     Status
	Attributes map[string]any
}

// Checker performs the external call.
type Checker interface {
	Check(ctx context.Context, data answers.Set) (Result, error)
}

// CheckerFunc adapts a function into a Checker.
type CheckerFunc func(ctx context.Context, data answers.Set) (Result, error)

// Check delegates to the underlying function.
func (fn CheckerFunc) Check(ctx context.Context, data answers.Set) (Result, error) {
	return fn(ctx, data)
}

// Check attaches a Checker to a step. Fields receive the failure when the
// checker answers INVALID.
type Check struct {
	Name        string
	Checker     Checker
	Fields      []string
	FailureType string
}

func (c Check) failureType() string {
	if strings.TrimSpace(c.FailureType) == "" {
		return DefaultFailureType
	}
	return c.FailureType
}

// Outcome is the runner's decision.
type Outcome struct {
	Passed bool
	// Degraded is set when the check could not give a verdict and the step
	// was let through.
	Degraded bool
	Reason   string
	Status   Status
	Failures []rules.FieldFailure
}

// ErrUnknownStatus is the degraded reason for verdicts outside VALID/INVALID.
var ErrUnknownStatus = errors.New("preflight: unknown status")

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout bounds every check; zero keeps the default.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithLogger reports degraded checks to logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runner executes checks with the fail-open policy.
type Runner struct {
	timeout time.Duration
	logger  *log.Logger
}

// NewRunner builds a Runner.
func NewRunner(options ...Option) *Runner {
	r := &Runner{timeout: DefaultTimeout, logger: log.New(io.Discard, "", 0)}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Run executes check against data. A nil check or checker passes.
func (r *Runner) Run(ctx context.Context, check *Check, data answers.Set) Outcome {
	if check == nil || check.Checker == nil {
		return Outcome{Passed: true}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type reply struct {
		result Result
		err    error
	}
	done := make(chan reply, 1)
	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				done <- reply{err: fmt.Errorf("preflight: checker panicked: %v", recovered)}
			}
		}()
		result, err := check.Checker.Check(ctx, data.Clone())
		done <- reply{result: result, err: err}
	}()

	var got reply
	select {
	case got = <-done:
	case <-ctx.Done():
		got = reply{err: ctx.Err()}
	}

	if got.err != nil {
		return r.degrade(check, StatusUnknown, got.err)
	}

	switch Status(strings.ToUpper(string(got.result.Status))) {
	case StatusValid:
		return Outcome{Passed: true, Status: StatusValid}
	case StatusInvalid:
		failures := make([]rules.FieldFailure, 0, len(check.Fields))
		for _, name := range check.Fields {
			failures = append(failures, rules.FieldFailure{
				Field:   name,
				Failure: rules.Failure{Type: check.failureType(), Params: got.result.Attributes},
			})
		}
		return Outcome{Status: StatusInvalid, Failures: failures}
	default:
		return r.degrade(check, got.result.Status, fmt.Errorf("%w %q", ErrUnknownStatus, got.result.Status))
	}
}

func (r *Runner) degrade(check *Check, status Status, err error) Outcome {
	r.logger.Printf("preflight: %s degraded, continuing: %v", check.Name, err)
	return Outcome{Passed: true, Degraded: true, Status: status, Reason: err.Error()}
}
