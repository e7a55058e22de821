package upload_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/field"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/rules"
	"github.com/goliatone/go-formflow/pkg/upload"
	"github.com/goliatone/go-formflow/pkg/validation"
)

func textFile(name, body string) upload.File {
	return upload.File{
		Meta: upload.Meta{Filename: name, Size: int64(len(body)), Type: "application/pdf"},
		Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(body)), nil },
	}
}

type failingStorage struct{}

func (failingStorage) Store(context.Context, []string, upload.File) error {
	return errors.New("bucket unavailable")
}

var uploadCatalog = validation.CatalogFunc(func(name string) []field.Message {
	if name != "bankStatement" {
		return nil
	}
	return []field.Message{
		{Type: rules.TypeBase, Text: i18n.Copy("Provide a bank statement")},
		{Type: upload.FailureType, Text: i18n.Copy("There was a problem uploading your file")},
	}
})

func validate(data answers.Set) validation.Result {
	composite := rules.Compose(
		rules.Key("projectName", rules.String().Required()),
		rules.Key("bankStatement", rules.File(1024, "application/pdf").Required()),
	)
	return validation.Validate(composite, data, uploadCatalog, i18n.New("en"))
}

func TestFoldAddsMetadataWithoutMutatingInput(t *testing.T) {
	t.Parallel()

	data := answers.Set{"projectName": "Garden"}
	got := upload.Fold(data, map[string]upload.Meta{
		"bankStatement": {Filename: "statement.pdf", Size: 512, Type: "application/pdf"},
		"ignored":       {},
	})

	want := answers.Set{
		"projectName":   "Garden",
		"bankStatement": map[string]any{"filename": "statement.pdf", "size": float64(512), "type": "application/pdf"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("folded set mismatch (-want +got):\n%s", diff)
	}
	if len(data) != 1 {
		t.Fatalf("input was mutated: %v", data)
	}
}

func TestPersistStoresValidFiles(t *testing.T) {
	t.Parallel()

	file := textFile("statement.pdf", "%PDF-1.4")
	data := upload.Fold(answers.Set{"projectName": "Garden"}, map[string]upload.Meta{"bankStatement": file.Meta})
	result := validate(data)
	if !result.IsValid {
		t.Fatalf("expected a valid result, got %+v", result.Messages)
	}

	fs := afero.NewMemMapFs()
	storage := &upload.FSStorage{Fs: fs, Root: "/uploads"}
	got, err := upload.Persist(context.Background(), storage, []string{"app-1"}, map[string]upload.File{"bankStatement": file}, result, uploadCatalog, i18n.New("en"))
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if !got.IsValid {
		t.Fatalf("result should stay valid")
	}

	stored, err := afero.ReadFile(fs, "/uploads/app-1/bankStatement/statement.pdf")
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(stored) != "%PDF-1.4" {
		t.Fatalf("stored content = %q", stored)
	}
}

func TestPersistFailureBecomesFieldMessage(t *testing.T) {
	t.Parallel()

	file := textFile("statement.pdf", "%PDF-1.4")
	data := upload.Fold(answers.Set{"projectName": "Garden"}, map[string]upload.Meta{"bankStatement": file.Meta})

	got, err := upload.Persist(context.Background(), failingStorage{}, nil, map[string]upload.File{"bankStatement": file}, validate(data), uploadCatalog, i18n.New("en"))

	var uploadErr *upload.Error
	if !errors.As(err, &uploadErr) || uploadErr.Field != "bankStatement" {
		t.Fatalf("expected an *upload.Error for bankStatement, got %v", err)
	}
	if got.IsValid || got.Value.Has("bankStatement") {
		t.Fatalf("failed upload must invalidate and drop the field: %+v", got)
	}
	want := []validation.Message{{Param: "bankStatement", Type: upload.FailureType, Msg: "There was a problem uploading your file"}}
	if diff := cmp.Diff(want, got.Messages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestPersistSkipsInvalidFields(t *testing.T) {
	t.Parallel()

	big := textFile("statement.pdf", strings.Repeat("x", 2048))
	data := upload.Fold(answers.Set{"projectName": "Garden"}, map[string]upload.Meta{"bankStatement": big.Meta})
	result := validate(data)

	fs := afero.NewMemMapFs()
	got, err := upload.Persist(context.Background(), &upload.FSStorage{Fs: fs, Root: "/uploads"}, nil, map[string]upload.File{"bankStatement": big}, result, uploadCatalog, i18n.New("en"))
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if exists, _ := afero.Exists(fs, "/uploads/bankStatement/statement.pdf"); exists {
		t.Fatalf("oversized file should not be stored")
	}
	if diff := cmp.Diff(result.Messages, got.Messages); diff != "" {
		t.Fatalf("messages should be unchanged (-want +got):\n%s", diff)
	}
}

func TestFromPathReadsMetadata(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/docs/Statement.PDF", []byte("%PDF-1.7"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	file, err := upload.FromPath(fs, "/docs/Statement.PDF")
	if err != nil {
		t.Fatalf("FromPath: %v", err)
	}
	want := upload.Meta{Filename: "Statement.PDF", Size: 8, Type: "application/pdf"}
	if diff := cmp.Diff(want, file.Meta); diff != "" {
		t.Fatalf("meta mismatch (-want +got):\n%s", diff)
	}

	if _, err := upload.FromPath(fs, "/docs/missing.pdf"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
