/*
PURPOSE:
  Run history in SQLite.

REQUIREMENTS:
  Implementation-discovered:
  - Records arrive one by one while a run is still going; keep their order.
  - Pure-Go driver so the binary needs no cgo.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli (run, history)
  - Consumes: internal/model.ScoreRecord

ERROR HANDLING:
  - Errors are wrapped as "sqlite: <action>".

USAGE:
  st, err := store.NewSQLite("results/history.db")
  st.Migrate(ctx)
  run, err := st.CreateRun(ctx, "royalties", dir)
*/

// Package store keeps a history of benchmark runs in SQLite so earlier
// reports can be listed and re-rendered.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/daryltucker/forest-extract/internal/model"
)

// Run is one invocation of a benchmark suite.
type Run struct {
	ID        string
	Suite     string
	Directory string
	CreatedAt time.Time
	Results   int
}

// SQLiteStore implements run history using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, eris.Wrapf(err, "sqlite: create directory %s", dir)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	suite      TEXT NOT NULL,
	directory  TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS results (
	run_id          TEXT NOT NULL REFERENCES runs(id),
	seq             INTEGER NOT NULL,
	model           TEXT NOT NULL,
	temperature     REAL NOT NULL,
	input           INTEGER NOT NULL DEFAULT 0,
	time_taken      REAL NOT NULL,
	entity_count    INTEGER NOT NULL,
	test_case_count INTEGER NOT NULL,
	valid_json      INTEGER NOT NULL,
	parameter_size  TEXT NOT NULL,
	error           TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateRun registers a new run.
func (s *SQLiteStore) CreateRun(ctx context.Context, suite, directory string) (*Run, error) {
	run := &Run{
		ID:        uuid.New().String(),
		Suite:     suite,
		Directory: directory,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, suite, directory, created_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Suite, run.Directory, run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return run, nil
}

// AddResult stores one record of a run at position seq.
func (s *SQLiteStore) AddResult(ctx context.Context, runID string, seq int, rec model.ScoreRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO results (run_id, seq, model, temperature, input, time_taken, entity_count, test_case_count, valid_json, parameter_size, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, seq, rec.Model, rec.Temperature, rec.Input, rec.TimeTaken,
		rec.EntityCount, rec.TestCaseCount, rec.ValidJSON, rec.ParameterSize, rec.Error,
	)
	return eris.Wrapf(err, "sqlite: insert result %d for run %s", seq, runID)
}

// ListRuns returns the most recent runs first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.suite, r.directory, r.created_at, COUNT(res.seq)
		 FROM runs r LEFT JOIN results res ON res.run_id = r.id
		 GROUP BY r.id
		 ORDER BY r.created_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Suite, &r.Directory, &r.CreatedAt, &r.Results); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// Results returns the records of a run in the order they were produced.
func (s *SQLiteStore) Results(ctx context.Context, runID string) ([]model.ScoreRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT model, temperature, input, time_taken, entity_count, test_case_count, valid_json, parameter_size, error
		 FROM results WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query results for run %s", runID)
	}
	defer rows.Close()

	var recs []model.ScoreRecord
	for rows.Next() {
		var rec model.ScoreRecord
		if err := rows.Scan(&rec.Model, &rec.Temperature, &rec.Input, &rec.TimeTaken,
			&rec.EntityCount, &rec.TestCaseCount, &rec.ValidJSON, &rec.ParameterSize, &rec.Error); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan result")
		}
		recs = append(recs, rec)
	}
	return recs, eris.Wrap(rows.Err(), "sqlite: results iterate")
}

// Recorder appends records of one run; it satisfies engine.Sink.
type Recorder struct {
	ctx   context.Context
	store *SQLiteStore
	runID string
	seq   int
}

// Recorder returns a sink bound to runID.
func (s *SQLiteStore) Recorder(ctx context.Context, runID string) *Recorder {
	return &Recorder{ctx: ctx, store: s, runID: runID}
}

// Write stores rec after the previously written record.
func (r *Recorder) Write(rec model.ScoreRecord) error {
	if err := r.store.AddResult(r.ctx, r.runID, r.seq, rec); err != nil {
		return err
	}
	r.seq++
	return nil
}
