// Package store persists applications: the answer set of one applicant for
// one form, its locale and its lifecycle status. Answers are saved as JSON so
// partially completed, even invalid, answers survive between steps.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-formflow/pkg/answers"
)

// Status is the lifecycle state of an application.
type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusSubmitted  Status = "submitted"
)

var (
	ErrNotFound      = errors.New("store: application not found")
	ErrDuplicate     = errors.New("store: application already exists")
	ErrAlreadyClosed = errors.New("store: application already submitted")
)

// Answers is an answer set stored as a JSON column.
type Answers answers.Set

// Value implements driver.Valuer.
func (a Answers) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(map[string]any(a))
	if err != nil {
		return nil, fmt.Errorf("store: encode answers: %w", err)
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (a *Answers) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = Answers{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("store: cannot scan %T into answers", src)
	}
	out := Answers{}
	if err := json.Unmarshal(raw, (*map[string]any)(&out)); err != nil {
		return fmt.Errorf("store: decode answers: %w", err)
	}
	*a = out
	return nil
}

// Application is one stored application.
type Application struct {
	ID          uuid.UUID    `db:"id"`
	FormID      string       `db:"form_id"`
	Locale      string       `db:"locale"`
	Status      Status       `db:"status"`
	Answers     Answers      `db:"answers"`
	StartedAt   time.Time    `db:"started_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
	SubmittedAt sql.NullTime `db:"submitted_at"`
}

// Set returns the answers as an answer set.
func (a Application) Set() answers.Set {
	return answers.Set(a.Answers).Clone()
}

// Store reads and writes applications through sqlx. Queries are written with
// '?' placeholders and rebound for the driver in use.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New wraps an open database.
func New(db *sqlx.DB, opts ...Option) *Store {
	s := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Open connects with driver "sqlite" or "postgres".
func Open(ctx context.Context, driverName, dsn string, opts ...Option) (*Store, error) {
	switch driverName {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", driverName)
	}
	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connect %s: %w", driverName, err)
	}
	return New(db, opts...), nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS applications (
	id           TEXT PRIMARY KEY,
	form_id      TEXT NOT NULL,
	locale       TEXT NOT NULL,
	status       TEXT NOT NULL,
	answers      TEXT NOT NULL,
	started_at   TIMESTAMP NOT NULL,
	updated_at   TIMESTAMP NOT NULL,
	submitted_at TIMESTAMP NULL
)`

// Migrate creates the applications table when it is missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Create inserts a new in-progress application. A zero ID is replaced by a
// fresh one; timestamps are set from the store clock.
func (s *Store) Create(ctx context.Context, app *Application) error {
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	now := s.now()
	app.Status = StatusInProgress
	app.StartedAt = now
	app.UpdatedAt = now
	if app.Answers == nil {
		app.Answers = Answers{}
	}

	query := s.db.Rebind(`INSERT INTO applications
		(id, form_id, locale, status, answers, started_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query,
		app.ID.String(), app.FormID, app.Locale, app.Status, app.Answers, app.StartedAt, app.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicate, app.ID)
	}
	if err != nil {
		return fmt.Errorf("store: create application: %w", err)
	}
	return nil
}

// Load fetches one application.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (Application, error) {
	var app Application
	query := s.db.Rebind(`SELECT id, form_id, locale, status, answers, started_at, updated_at, submitted_at
		FROM applications
		WHERE id = ?`)
	err := s.db.GetContext(ctx, &app, query, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return Application{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Application{}, fmt.Errorf("store: load application: %w", err)
	}
	return app, nil
}

// List returns the applications of a form, newest first.
func (s *Store) List(ctx context.Context, formID string) ([]Application, error) {
	var apps []Application
	query := s.db.Rebind(`SELECT id, form_id, locale, status, answers, started_at, updated_at, submitted_at
		FROM applications
		WHERE form_id = ?
		ORDER BY updated_at DESC`)
	if err := s.db.SelectContext(ctx, &apps, query, formID); err != nil {
		return nil, fmt.Errorf("store: list applications: %w", err)
	}
	return apps, nil
}

// Save replaces the answers of an in-progress application.
func (s *Store) Save(ctx context.Context, id uuid.UUID, data answers.Set) error {
	query := s.db.Rebind(`UPDATE applications
		SET answers = ?, updated_at = ?
		WHERE id = ? AND status = ?`)
	res, err := s.db.ExecContext(ctx, query, Answers(data), s.now(), id.String(), StatusInProgress)
	if err != nil {
		return fmt.Errorf("store: save answers: %w", err)
	}
	return s.expectOne(ctx, res, id)
}

// SetStatus moves an in-progress application to status. Submitting stamps
// submitted_at.
func (s *Store) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	now := s.now()
	var submitted sql.NullTime
	if status == StatusSubmitted {
		submitted = sql.NullTime{Time: now, Valid: true}
	}
	query := s.db.Rebind(`UPDATE applications
		SET status = ?, updated_at = ?, submitted_at = ?
		WHERE id = ? AND status = ?`)
	res, err := s.db.ExecContext(ctx, query, status, now, submitted, id.String(), StatusInProgress)
	if err != nil {
		return fmt.Errorf("store: set status: %w", err)
	}
	return s.expectOne(ctx, res, id)
}

// expectOne distinguishes a missing application from a closed one when an
// update touched no rows.
func (s *Store) expectOne(ctx context.Context, res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	app, err := s.Load(ctx, id)
	if err != nil {
		return err
	}
	if app.Status != StatusInProgress {
		return fmt.Errorf("%w: %s", ErrAlreadyClosed, id)
	}
	return fmt.Errorf("store: no rows updated for %s", id)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
