// Package journal persists per-batch pipeline artifacts to SQLite for
// debugging. The journal is a diagnostic side channel: task outcomes never
// depend on it, and a disabled journal is represented by a nil store whose
// methods are safe no-ops.
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

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; old journal databases must be deleted after a bump.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("journal schema version mismatch")

// Kind names which pipeline stage produced an artifact.
type Kind string

const (
	KindCombined   Kind = "combined"
	KindDenoised   Kind = "denoised"
	KindAnalysis   Kind = "analysis"
	KindStructured Kind = "structured"
	KindError      Kind = "error"
)

// Entry is one recorded artifact.
type Entry struct {
	TaskID    string
	SenderID  string
	Batch     int
	Kind      Kind
	Content   string
	CreatedAt time.Time
}

// Store persists artifacts to a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the journal database at path, creating it and its parent
// directory as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the journal database location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
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
		return tx.Commit()
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// Record appends one artifact. Calling Record on a nil store is a no-op so
// callers need not branch on whether the journal is enabled.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if s == nil || s.db == nil {
		return nil
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO artifacts (task_id, sender_id, batch, kind, content, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		entry.TaskID,
		entry.SenderID,
		entry.Batch,
		string(entry.Kind),
		entry.Content,
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record artifact: %w", err)
	}
	return nil
}

// ForTask returns all artifacts recorded for a task in insertion order.
func (s *Store) ForTask(ctx context.Context, taskID string) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT task_id, sender_id, batch, kind, content, created_at
         FROM artifacts WHERE task_id = ? ORDER BY id`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("query artifacts: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var kind, createdAt string
		if err := rows.Scan(&entry.TaskID, &entry.SenderID, &entry.Batch, &kind, &entry.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		entry.Kind = Kind(kind)
		if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			entry.CreatedAt = parsed
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Prune deletes artifacts older than the retention window and returns how
// many rows were removed.
func (s *Store) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-retention).Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx, "DELETE FROM artifacts WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune artifacts: %w", err)
	}
	return res.RowsAffected()
}
