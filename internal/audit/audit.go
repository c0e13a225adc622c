// Package audit persists policy verdicts and execution outcomes to SQLite.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Kind groups audit entries by the side effect they describe.
type Kind string

const (
	KindCommand Kind = "command"
	KindAction  Kind = "action"
)

// Entry is one audited decision.
type Entry struct {
	ID        int64
	Timestamp time.Time
	RunID     string
	Kind      Kind
	Subject   string
	Verdict   string
	Outcome   string
	Detail    string
}

// Recorder accepts audit entries.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Store is a SQLite-backed Recorder.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS audit_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp DATETIME NOT NULL,
	run_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	subject TEXT NOT NULL,
	verdict TEXT NOT NULL,
	outcome TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_audit_run ON audit_log(run_id);
CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_log(timestamp);
`

// DefaultPath returns $XDG_STATE_HOME/lma/audit.db or its home fallback.
func DefaultPath() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return filepath.Join(xdg, "lma", "audit.db"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for audit database")
	}
	return filepath.Join(home, ".local", "state", "lma", "audit.db"), nil
}

// Open creates the database file and schema when missing.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize audit schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts entry, stamping the current time when Timestamp is zero.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (timestamp, run_id, kind, subject, verdict, outcome, detail) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.Timestamp, entry.RunID, string(entry.Kind), entry.Subject, entry.Verdict, entry.Outcome, entry.Detail,
	)
	if err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, run_id, kind, subject, verdict, outcome, detail FROM audit_log ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry Entry
			kind  string
		)
		if err := rows.Scan(&entry.ID, &entry.Timestamp, &entry.RunID, &kind, &entry.Subject, &entry.Verdict, &entry.Outcome, &entry.Detail); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		entry.Kind = Kind(kind)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Nop discards entries.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, Entry) error { return nil }
