package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// timeLayout is fixed width so that stored timestamps sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one journal entry
type Run struct {
	ID         string
	Input      string
	Provider   string
	Languages  []string
	Succeeded  int
	Partial    int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
}

// runRow is the database representation of a Run
type runRow struct {
	ID         string `db:"id"`
	Input      string `db:"input"`
	Provider   string `db:"provider"`
	Languages  string `db:"languages"`
	Succeeded  int    `db:"succeeded"`
	Partial    int    `db:"partial"`
	Failed     int    `db:"failed"`
	StartedAt  string `db:"started_at"`
	FinishedAt string `db:"finished_at"`
}

// Store is the run journal
type Store struct {
	db   *sqlx.DB
	path string
}

// Open opens (and creates if needed) the journal at path
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history database path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// SQLite serializes writers anyway
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS "runs" (
    "id" TEXT PRIMARY KEY NOT NULL,
    "input" TEXT NOT NULL,
    "provider" TEXT NOT NULL DEFAULT '',
    "languages" TEXT NOT NULL DEFAULT '',
    "succeeded" INTEGER NOT NULL DEFAULT 0,
    "partial" INTEGER NOT NULL DEFAULT 0,
    "failed" INTEGER NOT NULL DEFAULT 0,
    "started_at" TEXT NOT NULL,
    "finished_at" TEXT NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS "runs_started_at" ON "runs" ("started_at")`)
	if err != nil {
		return fmt.Errorf("failed to create runs index: %w", err)
	}
	return nil
}

// Path returns the database location
func (s *Store) Path() string {
	return s.path
}

// Record stores run. Recording the same ID twice replaces the entry.
func (s *Store) Record(run Run) error {
	if run.ID == "" {
		return fmt.Errorf("run has no ID")
	}
	row := runRow{
		ID:         run.ID,
		Input:      run.Input,
		Provider:   run.Provider,
		Languages:  strings.Join(run.Languages, ","),
		Succeeded:  run.Succeeded,
		Partial:    run.Partial,
		Failed:     run.Failed,
		StartedAt:  run.StartedAt.UTC().Format(timeLayout),
		FinishedAt: run.FinishedAt.UTC().Format(timeLayout),
	}
	_, err := s.db.NamedExec(`INSERT OR REPLACE INTO runs
    (id, input, provider, languages, succeeded, partial, failed, started_at, finished_at)
    VALUES (:id, :input, :provider, :languages, :succeeded, :partial, :failed, :started_at, :finished_at)`, row)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return nil
}

// Recent returns up to n runs, newest first
func (s *Store) Recent(n int) ([]Run, error) {
	if n <= 0 {
		return nil, nil
	}

	var rows []runRow
	err := s.db.Select(&rows, `SELECT id, input, provider, languages, succeeded, partial, failed, started_at, finished_at
    FROM runs ORDER BY started_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}

	runs := make([]Run, 0, len(rows))
	for _, row := range rows {
		run, err := row.toRun()
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func (r runRow) toRun() (Run, error) {
	started, err := time.Parse(timeLayout, r.StartedAt)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: bad started_at %q: %w", r.ID, r.StartedAt, err)
	}
	finished, err := time.Parse(timeLayout, r.FinishedAt)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: bad finished_at %q: %w", r.ID, r.FinishedAt, err)
	}

	var langs []string
	if r.Languages != "" {
		langs = strings.Split(r.Languages, ",")
	}
	return Run{
		ID:         r.ID,
		Input:      r.Input,
		Provider:   r.Provider,
		Languages:  langs,
		Succeeded:  r.Succeeded,
		Partial:    r.Partial,
		Failed:     r.Failed,
		StartedAt:  started,
		FinishedAt: finished,
	}, nil
}
