package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Outcome classifies how a rip session ended.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeAborted   Outcome = "aborted"
)

// Record is one rip session as persisted in the history database.
type Record struct {
	ID         int64
	Device     string
	Artist     string
	Album      string
	FinalPath  string
	Outcome    Outcome
	ExitCode   int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns the elapsed session time.
func (r Record) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store manages rip-history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database and applies migrations.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("history database path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
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
	if err := store.applyMigrations(context.Background()); err != nil {
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

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) applyMigrations(ctx context.Context) error {
	const schema = `CREATE TABLE IF NOT EXISTS rip_sessions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        device TEXT NOT NULL,
        artist TEXT NOT NULL DEFAULT '',
        album TEXT NOT NULL DEFAULT '',
        final_path TEXT NOT NULL DEFAULT '',
        outcome TEXT NOT NULL,
        exit_code INTEGER NOT NULL DEFAULT 0,
        started_at TEXT NOT NULL,
        finished_at TEXT NOT NULL
    )`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply history schema: %w", err)
	}
	return nil
}

// Add persists a finished rip session and fills in the record ID.
func (s *Store) Add(ctx context.Context, rec *Record) error {
	if rec == nil {
		return fmt.Errorf("record required")
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO rip_sessions (
            device, artist, album, final_path, outcome, exit_code, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Device,
		rec.Artist,
		rec.Album,
		rec.FinalPath,
		string(rec.Outcome),
		rec.ExitCode,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert rip session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read inserted id: %w", err)
	}
	rec.ID = id
	return nil
}

// Recent returns the most recent sessions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, device, artist, album, final_path, outcome, exit_code, started_at, finished_at
         FROM rip_sessions ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query rip sessions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var outcome, startedAt, finishedAt string
		if err := rows.Scan(&rec.ID, &rec.Device, &rec.Artist, &rec.Album, &rec.FinalPath, &outcome, &rec.ExitCode, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan rip session: %w", err)
		}
		rec.Outcome = Outcome(outcome)
		if ts, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			rec.StartedAt = ts
		}
		if ts, err := time.Parse(time.RFC3339Nano, finishedAt); err == nil {
			rec.FinishedAt = ts
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
