package preflight_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/preflight"
)

func bankCheck(checker preflight.CheckerFunc) *preflight.Check {
	return &preflight.Check{
		Name:    "bank-account",
		Checker: checker,
		Fields:  []string{"accountNumber", "sortCode"},
	}
}

func TestRunnerFailsOpen(t *testing.T) {
	t.Parallel()

	cases := map[string]preflight.CheckerFunc{
		"transport error": func(context.Context, answers.Set) (preflight.Result, error) {
			return preflight.Result{}, errors.New("connection refused")
		},
		"unknown status": func(context.Context, answers.Set) (preflight.Result, error) {
			return preflight.Result{Status: "MAYBE"}, nil
		},
		"explicit unknown": func(context.Context, answers.Set) (preflight.Result, error) {
			return preflight.Result{Status: preflight.StatusUnknown}, nil
		},
		"panic": func(context.Context, answers.Set) (preflight.Result, error) {
			panic("boom")
		},
		"timeout": func(ctx context.Context, _ answers.Set) (preflight.Result, error) {
			<-ctx.Done()
			return preflight.Result{}, ctx.Err()
		},
	}

	for name, checker := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var logs bytes.Buffer
			runner := preflight.NewRunner(
				preflight.WithTimeout(20*time.Millisecond),
				preflight.WithLogger(log.New(&logs, "", 0)),
			)
			outcome := runner.Run(context.Background(), bankCheck(checker), answers.Set{"accountNumber": "12345678"})
			if !outcome.Passed || !outcome.Degraded {
				t.Fatalf("expected degraded pass, got %+v", outcome)
			}
			if len(outcome.Failures) != 0 {
				t.Fatalf("degraded checks must not report failures: %+v", outcome.Failures)
			}
			if !strings.Contains(logs.String(), "bank-account degraded") {
				t.Fatalf("expected degraded log line, got %q", logs.String())
			}
		})
	}
}

func TestRunnerInvalidBlocksWithFieldFailures(t *testing.T) {
	t.Parallel()

	check := bankCheck(func(context.Context, answers.Set) (preflight.Result, error) {
		return preflight.Result{Status: preflight.StatusInvalid}, nil
	})
	outcome := preflight.NewRunner().Run(context.Background(), check, nil)
	if outcome.Passed {
		t.Fatalf("INVALID must block the step")
	}

	got := make([]string, 0, len(outcome.Failures))
	for _, f := range outcome.Failures {
		got = append(got, f.Field+":"+f.Type)
	}
	want := []string{"accountNumber:preflight.invalid", "sortCode:preflight.invalid"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}
}

func TestRunnerValidAndMissingCheck(t *testing.T) {
	t.Parallel()

	runner := preflight.NewRunner()
	valid := bankCheck(func(context.Context, answers.Set) (preflight.Result, error) {
		return preflight.Result{Status: "valid"}, nil
	})
	if outcome := runner.Run(context.Background(), valid, nil); !outcome.Passed || outcome.Degraded {
		t.Fatalf("expected clean pass, got %+v", outcome)
	}
	if outcome := runner.Run(context.Background(), nil, nil); !outcome.Passed {
		t.Fatalf("nil check should pass")
	}
}
