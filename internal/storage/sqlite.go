package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens the run ledger database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			stage TEXT NOT NULL,
			status TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			details JSON
		);`,
		`CREATE TABLE IF NOT EXISTS artifacts (
			run_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			path TEXT NOT NULL,
			PRIMARY KEY (run_id, name)
		);`,
		`CREATE TABLE IF NOT EXISTS gate_results (
			run_id INTEGER NOT NULL,
			artifact TEXT NOT NULL,
			mode TEXT NOT NULL,
			pass INTEGER NOT NULL,
			summary TEXT,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_stage ON runs(stage, id);`,
		`CREATE INDEX IF NOT EXISTS idx_gates_artifact ON gate_results(artifact, mode, run_id);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) BeginRun(ctx context.Context, stage string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (stage, status, started_at) VALUES (?, ?, ?)
	`, stage, RunRunning, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) FinishRun(ctx context.Context, id int64, status string, details map[string]any) error {
	payload, _ := json.Marshal(details)

	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, finished_at = ?, details = ? WHERE id = ?
	`, status, time.Now().UTC().Format(time.RFC3339), payload, id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("no run with id %d", id)
	}
	return nil
}

func (s *SQLiteStore) RecordArtifact(ctx context.Context, runID int64, name, path string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifacts (run_id, name, path) VALUES (?, ?, ?)
		ON CONFLICT(run_id, name) DO UPDATE SET path=excluded.path
	`, runID, name, path)
	return err
}

func (s *SQLiteStore) RecordGate(ctx context.Context, rec GateRecord) error {
	pass := 0
	if rec.Pass {
		pass = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gate_results (run_id, artifact, mode, pass, summary, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.RunID, rec.Artifact, rec.Mode, pass, rec.Summary, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *SQLiteStore) LastRuns(ctx context.Context, stage string, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, stage, status, started_at, finished_at, details
		FROM runs WHERE stage = ? ORDER BY id DESC LIMIT ?
	`, stage, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		var finished sql.NullString
		var details []byte
		if err := rows.Scan(&r.ID, &r.Stage, &r.Status, &started, &finished, &details); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		if finished.Valid {
			r.FinishedAt, _ = time.Parse(time.RFC3339, finished.String)
		}
		if len(details) > 0 {
			_ = json.Unmarshal(details, &r.Details)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) LastGate(ctx context.Context, artifact, mode string) (*GateRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, artifact, mode, pass, summary
		FROM gate_results WHERE artifact = ? AND mode = ?
		ORDER BY rowid DESC LIMIT 1
	`, artifact, mode)

	var rec GateRecord
	var pass int
	if err := row.Scan(&rec.RunID, &rec.Artifact, &rec.Mode, &pass, &rec.Summary); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	rec.Pass = pass == 1
	return &rec, nil
}
