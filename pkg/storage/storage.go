// Package storage keeps an append-only history of sync runs in a local
// SQLite database, so past standard creations and their per-operation
// outcomes can be inspected later.
package storage

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS runs (
  id             INTEGER PRIMARY KEY,
  created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  name           TEXT NOT NULL,
  organization   TEXT NOT NULL,
  provider       TEXT NOT NULL,
  standard_id    TEXT,
  patterns_count INTEGER NOT NULL DEFAULT 0,
  succeeded      INTEGER NOT NULL CHECK (succeeded IN (0,1))
);
CREATE TABLE IF NOT EXISTS run_operations (
  id        INTEGER PRIMARY KEY,
  run_id    INTEGER NOT NULL REFERENCES runs(id),
  operation TEXT NOT NULL,
  status    TEXT NOT NULL CHECK (status IN ('ok','failed','skipped')),
  attempts  INTEGER NOT NULL DEFAULT 0,
  error     TEXT
);
CREATE INDEX IF NOT EXISTS idx_run_operations_run ON run_operations(run_id);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// Run is one recorded sync run.
type Run struct {
	ID            int64
	CreatedAt     time.Time
	Name          string
	Organization  string
	Provider      string
	StandardID    string
	PatternsCount int
	Succeeded     bool
}

// RunOperation is one operation outcome belonging to a run.
type RunOperation struct {
	Operation string
	Status    string
	Attempts  int
	Error     string
}

// RecordRun stores a run and its operation outcomes in one transaction.
func (d *DB) RecordRun(ctx context.Context, run Run, ops []RunOperation) (int64, error) {
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	succeeded := 0
	if run.Succeeded {
		succeeded = 1
	}

	var res sql.Result
	res, err = tx.ExecContext(ctx,
		"INSERT INTO runs (created_at, name, organization, provider, standard_id, patterns_count, succeeded) VALUES (?, ?, ?, ?, ?, ?, ?)",
		time.Now().UTC(), run.Name, run.Organization, run.Provider, run.StandardID, run.PatternsCount, succeeded)
	if err != nil {
		return 0, err
	}

	var runID int64
	runID, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, op := range ops {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO run_operations (run_id, operation, status, attempts, error) VALUES (?, ?, ?, ?, ?)",
			runID, op.Operation, op.Status, op.Attempts, op.Error)
		if err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first.
func (d *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, created_at, name, organization, provider, COALESCE(standard_id, ''), patterns_count, succeeded FROM runs ORDER BY id DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r         Run
			succeeded int
		)
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Name, &r.Organization, &r.Provider, &r.StandardID, &r.PatternsCount, &succeeded); err != nil {
			return nil, err
		}
		r.Succeeded = succeeded == 1
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListRunOperations returns the operation outcomes of one run, in order.
func (d *DB) ListRunOperations(ctx context.Context, runID int64) ([]RunOperation, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT operation, status, attempts, COALESCE(error, '') FROM run_operations WHERE run_id = ? ORDER BY id",
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []RunOperation
	for rows.Next() {
		var op RunOperation
		if err := rows.Scan(&op.Operation, &op.Status, &op.Attempts, &op.Error); err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}
