package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// ErrLocked reports that another import holds the journal.
var ErrLocked = errors.New("journal locked by another import")

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Run is one import attempt.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	Status       string
	Folder       string
	BaseURL      string
	User         string
	ProjectLabel string
	ProjectID    string
	Error        string
}

// Entity is one object created on the service during a run.
type Entity struct {
	RunID      string
	Kind       string
	Label      string
	RemoteID   string
	ParentID   string
	SubjectKey string
	CreatedAt  time.Time
}

// Journal is an open journal database.
type Journal struct {
	db   *sql.DB
	path string
	lock *flock.Flock
	now  func() time.Time
}

// Open opens the journal for writing, creating it if needed. It fails with
// ErrLocked when another writer holds the journal.
func Open(ctx context.Context, path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire journal lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, lock.Path())
	}
	j, err := open(ctx, path)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	j.lock = lock
	return j, nil
}

// OpenReader opens an existing journal for queries without taking the lock.
func OpenReader(ctx context.Context, path string) (*Journal, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return open(ctx, path)
}

func open(ctx context.Context, path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	j := &Journal{db: db, path: path, now: time.Now}
	if err := j.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// Path returns the database file location.
func (j *Journal) Path() string {
	return j.path
}

// Close closes the database and releases the writer lock.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	err := j.db.Close()
	if j.lock != nil {
		if unlockErr := j.lock.Unlock(); unlockErr != nil && err == nil {
			err = fmt.Errorf("release journal lock: %w", unlockErr)
		}
	}
	return err
}

func (j *Journal) initSchema(ctx context.Context) error {
	var tableExists int
	err := j.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return j.createSchema(ctx)
	}

	var version int
	if err := j.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: journal has version %d, expected %d (move %s aside to start a new journal)",
			ErrSchemaMismatch, version, schemaVersion, j.path)
	}
	return nil
}

func (j *Journal) createSchema(ctx context.Context) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// timeLayout is fixed width so stored timestamps sort chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(value sql.NullString) time.Time {
	if !value.Valid || value.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, value.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
