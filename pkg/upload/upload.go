// Package upload folds file metadata into an answer set before validation and
// stores the files of a validated step. A storage failure never aborts the
// step: it becomes a "file.upload" message on the field and the field's value
// is dropped so the answer reads as missing.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/rules"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// FailureType is the failure type reported when a file could not be stored.
const FailureType = rules.TypeFileUpload

// Meta describes an uploaded file. It is what the answer set holds; the bytes
// never enter it.
type Meta struct {
	Filename string
	Size     int64
	Type     string
}

// FromHeader reads metadata from a multipart file header.
func FromHeader(header *multipart.FileHeader) Meta {
	if header == nil {
		return Meta{}
	}
	return Meta{
		Filename: path.Base(strings.ReplaceAll(header.Filename, "\\", "/")),
		Size:     header.Size,
		Type:     strings.ToLower(header.Header.Get("Content-Type")),
	}
}

// Value is the answer-set representation of m.
func (m Meta) Value() map[string]any {
	return map[string]any{"filename": m.Filename, "size": float64(m.Size), "type": m.Type}
}

// Fold returns a copy of data with each file's metadata stored under its
// field name. Files without a name are skipped.
func Fold(data answers.Set, metas map[string]Meta) answers.Set {
	out := data.Clone()
	for name, meta := range metas {
		if strings.TrimSpace(meta.Filename) == "" {
			continue
		}
		out[name] = meta.Value()
	}
	return out
}

// File is an uploaded file ready to be stored.
type File struct {
	Meta
	Open func() (io.ReadCloser, error)
}

// FromMultipart pairs a header with its opener.
func FromMultipart(header *multipart.FileHeader) File {
	return File{
		Meta: FromHeader(header),
		Open: func() (io.ReadCloser, error) { return header.Open() },
	}
}

// FromPath describes a file already on fsys, for callers that collect paths
// instead of multipart bodies. The type is guessed from the extension.
func FromPath(fsys afero.Fs, name string) (File, error) {
	info, err := fsys.Stat(name)
	if err != nil {
		return File{}, fmt.Errorf("upload: stat %s: %w", name, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("upload: %s is a directory", name)
	}
	mimeType, _, _ := strings.Cut(mime.TypeByExtension(strings.ToLower(filepath.Ext(name))), ";")
	return File{
		Meta: Meta{Filename: filepath.Base(name), Size: info.Size(), Type: mimeType},
		Open: func() (io.ReadCloser, error) { return fsys.Open(name) },
	}, nil
}

// Storage persists file bytes under a path.
type Storage interface {
	Store(ctx context.Context, pathParts []string, file File) error
}

// FSStorage writes files into an afero filesystem below Root.
type FSStorage struct {
	Fs   afero.Fs
	Root string
}

// NewFSStorage stores files on the OS filesystem below root.
func NewFSStorage(root string) *FSStorage {
	return &FSStorage{Fs: afero.NewOsFs(), Root: root}
}

// Store copies the file to Root/pathParts.../Filename.
func (s *FSStorage) Store(ctx context.Context, pathParts []string, file File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if file.Open == nil {
		return errors.New("upload: file has no content")
	}

	dir := path.Join(append([]string{s.Root}, pathParts...)...)
	if err := s.Fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("upload: create %s: %w", dir, err)
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("upload: open %s: %w", file.Filename, err)
	}
	defer src.Close()

	target := path.Join(dir, path.Base(file.Filename))
	dst, err := s.Fs.Create(target)
	if err != nil {
		return fmt.Errorf("upload: create %s: %w", target, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("upload: write %s: %w", target, err)
	}
	return dst.Close()
}

// Error reports a file that could not be stored.
type Error struct {
	Field string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("upload: store %s: %v", e.Field, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Persist stores every file whose field validated cleanly in result, below
// prefix/<field>. Files of fields that already carry messages are left alone.
// The returned result has a message for each failed file and those fields
// removed from Value; the returned error joins the underlying *Error values.
func Persist(ctx context.Context, storage Storage, prefix []string, files map[string]File, result validation.Result, catalog validation.Catalog, loc i18n.Localizer) (validation.Result, error) {
	if len(files) == 0 || storage == nil {
		return result, nil
	}

	invalid := validation.ByField(result.Messages)
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	names = sortedKnown(names, result.Value)

	var (
		failures []rules.FieldFailure
		errs     []error
	)
	for _, name := range names {
		if _, skip := invalid[name]; skip {
			continue
		}
		parts := append(append([]string(nil), prefix...), name)
		if err := storage.Store(ctx, parts, files[name]); err != nil {
			failures = append(failures, rules.FieldFailure{Field: name, Failure: rules.Failure{Type: FailureType}})
			errs = append(errs, &Error{Field: name, Err: err})
		}
	}
	if len(failures) == 0 {
		return result, nil
	}

	out := result
	out.Value = result.Value.Without(fieldNames(failures)...)
	out.IsValid = false
	messages := validation.Normalize(failures, catalog, loc)
	out.Messages = append(append([]validation.Message(nil), result.Messages...), messages...)
	out.FeaturedMessages = validation.Featured(out.Messages, catalog)

	raw := failures
	var prior *validation.Error
	if errors.As(result.Error, &prior) {
		raw = append(append([]rules.FieldFailure(nil), prior.Failures...), failures...)
	}
	out.Error = &validation.Error{Failures: raw}
	return out, errors.Join(errs...)
}

// sortedKnown keeps the names present in value, in the answer set's key order.
func sortedKnown(names []string, value answers.Set) []string {
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}
	var out []string
	for _, key := range value.Keys() {
		if _, ok := wanted[key]; ok {
			out = append(out, key)
		}
	}
	return out
}

func fieldNames(failures []rules.FieldFailure) []string {
	out := make([]string, 0, len(failures))
	for _, f := range failures {
		out = append(out, f.Field)
	}
	return out
}
