// Package provenance records resolution passes in a local SQLite database so
// that the resolved settings of earlier runs can be inspected later.
package provenance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// ErrNoPasses is returned by Latest when nothing has been recorded.
var ErrNoPasses = errors.New("no recorded passes")

// Pass outcomes.
const (
	OutcomeReady  = "ready"
	OutcomeFailed = "failed"
)

// schema is safe to run on every open.
const schema = `
CREATE TABLE IF NOT EXISTS passes (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    pass_id    TEXT NOT NULL UNIQUE,
    source     TEXT NOT NULL DEFAULT '',
    outcome    TEXT NOT NULL,
    error      TEXT NOT NULL DEFAULT '',
    document   TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS passes_source ON passes(source, id);
`

// Pass is one recorded resolution pass. Document holds the re-emitted
// settings as JSON for ready passes.
type Pass struct {
	ID        int64
	PassID    string
	Source    string
	Outcome   string
	Error     string
	Document  string
	CreatedAt time.Time
}

// Store is a SQLite-backed pass history.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at dbPath, creating parent
// directories as needed.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("provenance: create directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("provenance: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("provenance: %s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("provenance: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts p and returns its row ID. PassID must be unique.
func (s *Store) Record(ctx context.Context, p Pass) (int64, error) {
	if p.PassID == "" {
		return 0, fmt.Errorf("provenance: record: empty pass ID")
	}
	const q = `INSERT INTO passes (pass_id, source, outcome, error, document) VALUES (?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q, p.PassID, p.Source, p.Outcome, p.Error, p.Document)
	if err != nil {
		return 0, fmt.Errorf("provenance: record pass %s: %w", p.PassID, err)
	}
	return res.LastInsertId()
}

// Latest returns the most recent ready pass for source. An empty source
// matches any.
func (s *Store) Latest(ctx context.Context, source string) (Pass, error) {
	q := selectPasses + ` WHERE outcome = ?`
	args := []any{OutcomeReady}
	if source != "" {
		q += ` AND source = ?`
		args = append(args, source)
	}
	passes, err := s.query(ctx, q+` ORDER BY id DESC LIMIT 1`, args...)
	if err != nil {
		return Pass{}, err
	}
	if len(passes) == 0 {
		return Pass{}, ErrNoPasses
	}
	return passes[0], nil
}

// List returns up to limit passes, newest first. A limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Pass, error) {
	q := selectPasses + ` ORDER BY id DESC`
	if limit > 0 {
		return s.query(ctx, q+` LIMIT ?`, limit)
	}
	return s.query(ctx, q)
}

const selectPasses = `SELECT id, pass_id, source, outcome, error, document, created_at FROM passes`

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Pass, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("provenance: query passes: %w", err)
	}
	defer rows.Close()

	var out []Pass
	for rows.Next() {
		var p Pass
		var ts string
		if err := rows.Scan(&p.ID, &p.PassID, &p.Source, &p.Outcome, &p.Error, &p.Document, &ts); err != nil {
			return nil, fmt.Errorf("provenance: scan pass: %w", err)
		}
		if p.CreatedAt, err = parseTimestamp(ts); err != nil {
			return nil, fmt.Errorf("provenance: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("provenance: iterate passes: %w", err)
	}
	return out, nil
}

// modernc.org/sqlite returns RFC 3339 for CURRENT_TIMESTAMP columns while
// canonical SQLite uses the space-separated form.
var timestampFormats = []string{
	time.RFC3339,
	time.DateTime,
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}
