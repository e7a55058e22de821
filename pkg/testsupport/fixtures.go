// Package testsupport loads form, answer and copy fixtures and compares
// golden snapshots. Helpers fail the test on error to keep callers concise.
package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/i18n"
)

// MustLoadForm reads and compiles one definition document.
func MustLoadForm(t *testing.T, path string, options ...form.LoadOption) *form.Form {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read form %s: %v", path, err)
	}
	f, err := form.Load(data, path, options...)
	if err != nil {
		t.Fatalf("load form %s: %v", path, err)
	}
	return f
}

// MustLoadAnswers reads a JSON answer set.
func MustLoadAnswers(t *testing.T, path string) answers.Set {
	t.Helper()

	data, err := LoadAnswers(path)
	if err != nil {
		t.Fatalf("load answers: %v", err)
	}
	return data
}

// LoadAnswers reads a JSON answer set without requiring testing.T. Numbers
// decode as float64, the same as answers posted by a browser.
func LoadAnswers(path string) (answers.Set, error) {
	if path == "" {
		return nil, errors.New("testsupport: answers path is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read %s: %w", path, err)
	}
	var out answers.Set
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("testsupport: decode %s: %w", path, err)
	}
	if out == nil {
		out = answers.Set{}
	}
	return out, nil
}

// MustLoadCatalog reads the per-locale copy files in dir.
func MustLoadCatalog(t *testing.T, dir string) *i18n.Catalog {
	t.Helper()

	catalog, err := i18n.LoadFS(os.DirFS(dir))
	if err != nil {
		t.Fatalf("load copy catalog %s: %v", dir, err)
	}
	return catalog
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set and
// reports whether it did, in which case the test should stop there.
func WriteGolden(t *testing.T, path string, value any) bool {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CompareGolden decodes the JSON golden at path and diffs it against got,
// which is passed through a JSON round trip so both sides share one shape.
func CompareGolden(t *testing.T, path string, got any) string {
	t.Helper()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	var want any
	if err := json.Unmarshal(raw, &want); err != nil {
		t.Fatalf("decode golden %s: %v", path, err)
	}

	encoded, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal value: %v", err)
	}
	var normalised any
	if err := json.Unmarshal(encoded, &normalised); err != nil {
		t.Fatalf("decode value: %v", err)
	}
	return cmp.Diff(want, normalised)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
