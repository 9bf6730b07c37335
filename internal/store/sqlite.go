package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	root TEXT NOT NULL,
	policy TEXT NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	found INTEGER NOT NULL DEFAULT 0,
	skipped INTEGER NOT NULL DEFAULT 0,
	succeeded INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0,
	space_saved INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS run_files (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	input TEXT NOT NULL,
	output TEXT,
	status TEXT NOT NULL,
	error TEXT,
	input_size INTEGER NOT NULL DEFAULT 0,
	output_size INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL,
	applied_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_run_files_run_id ON run_files(run_id);
`

// SQLiteStore records run history in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Open creates or opens the history database under stateDir.
func Open(stateDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	dbPath := filepath.Join(stateDir, "history.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	var version int
	err = db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			db.Close()
			return nil, fmt.Errorf("insert schema version: %w", err)
		}
	} else if err != nil {
		db.Close()
		return nil, fmt.Errorf("check schema version: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// BeginRun inserts a new run row and returns it with a fresh ID.
func (s *SQLiteStore) BeginRun(root, policy string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Root:      root,
		Policy:    policy,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(
		"INSERT INTO runs (id, root, policy, started_at) VALUES (?, ?, ?, ?)",
		run.ID, run.Root, run.Policy, run.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun stores the final counters for a run.
func (s *SQLiteStore) FinishRun(run *Run) error {
	run.FinishedAt = time.Now().UTC()
	_, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, found = ?, skipped = ?, succeeded = ?, failed = ?, space_saved = ?
		 WHERE id = ?`,
		run.FinishedAt.Format(time.RFC3339Nano),
		run.Found, run.Skipped, run.Succeeded, run.Failed, run.SpaceSaved,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordFile stores one file outcome for a run.
func (s *SQLiteStore) RecordFile(rec *FileRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := s.db.Exec(
		`INSERT INTO run_files (id, run_id, input, output, status, error, input_size, output_size, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunID, rec.Input, rec.Output, rec.Status, rec.Error,
		rec.InputSize, rec.OutputSize, rec.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("record file: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, most recent first.
func (s *SQLiteStore) RecentRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, root, policy, started_at, finished_at, found, skipped, succeeded, failed, space_saved
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var startedAt string
		var finishedAt sql.NullString
		if err := rows.Scan(&run.ID, &run.Root, &run.Policy, &startedAt, &finishedAt,
			&run.Found, &run.Skipped, &run.Succeeded, &run.Failed, &run.SpaceSaved); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		if finishedAt.Valid {
			run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedAt.String)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunFiles returns the file outcomes of a run in insertion order.
func (s *SQLiteStore) RunFiles(runID string) ([]*FileRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, input, output, status, error, input_size, output_size, duration_ms
		 FROM run_files WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run files: %w", err)
	}
	defer rows.Close()

	var records []*FileRecord
	for rows.Next() {
		rec := &FileRecord{}
		var output, errMsg sql.NullString
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Input, &output, &rec.Status, &errMsg,
			&rec.InputSize, &rec.OutputSize, &rec.DurationMS); err != nil {
			return nil, fmt.Errorf("scan run file: %w", err)
		}
		rec.Output = output.String
		rec.Error = errMsg.String
		records = append(records, rec)
	}
	return records, rows.Err()
}
