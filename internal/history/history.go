// Package history keeps a local SQLite log of exported reports.
//
// The caller must blank-import the driver:
//
//	import _ "modernc.org/sqlite"
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// driverName is the database/sql name registered by modernc.org/sqlite.
const driverName = "sqlite"

// DefaultLimit bounds List when no limit is given.
const DefaultLimit = 20

// timeLayout is fixed width so created_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrInvalidEntry is returned for entries without an ID or file name.
var ErrInvalidEntry = errors.New("invalid history entry")

const schema = `
CREATE TABLE IF NOT EXISTS exports (
	id         TEXT PRIMARY KEY,
	filename   TEXT NOT NULL,
	path       TEXT NOT NULL,
	pages      INTEGER NOT NULL,
	size       INTEGER NOT NULL,
	sections   TEXT NOT NULL,
	profile    TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_exports_created ON exports(created_at);
`

// Entry is one exported report.
type Entry struct {
	ID        string
	Filename  string
	Path      string
	Pages     int
	Size      int
	Sections  map[string]string // section name to outcome
	Profile   map[string]string // display values of the profile
	CreatedAt time.Time
}

// Store persists entries.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path. Parent directories
// are created. Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("history: mkdir: %w", err)
		}
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("history: open: %w", err)
	}
	if path == ":memory:" {
		// each connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("history: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record stores e, replacing an entry with the same ID.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" || e.Filename == "" {
		return ErrInvalidEntry
	}
	sections, err := json.Marshal(e.Sections)
	if err != nil {
		return fmt.Errorf("history: encode sections: %w", err)
	}
	profile, err := json.Marshal(e.Profile)
	if err != nil {
		return fmt.Errorf("history: encode profile: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO exports (id, filename, path, pages, size, sections, profile, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Filename, e.Path, e.Pages, e.Size, string(sections), string(profile),
		e.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("history: insert: %w", err)
	}
	return nil
}

// List returns the most recent entries first. limit <= 0 uses DefaultLimit.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, path, pages, size, sections, profile, created_at
		FROM exports ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var (
			e                 Entry
			sections, profile string
			created           string
		)
		if err := rows.Scan(&e.ID, &e.Filename, &e.Path, &e.Pages, &e.Size, &sections, &profile, &created); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		if err := json.Unmarshal([]byte(sections), &e.Sections); err != nil {
			return nil, fmt.Errorf("history: decode sections: %w", err)
		}
		if err := json.Unmarshal([]byte(profile), &e.Profile); err != nil {
			return nil, fmt.Errorf("history: decode profile: %w", err)
		}
		if e.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("history: decode time: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("history: count: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }
