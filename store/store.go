// Package store persists sweep runs and their result rows in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Noofbiz/ngramSweep/sweep"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	created_at   TEXT NOT NULL,
	config_json  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS results (
	run_id                    TEXT NOT NULL,
	seq                       INTEGER NOT NULL,
	task_number               TEXT NOT NULL,
	n                         INTEGER NOT NULL,
	confidence_threshold      REAL NOT NULL,
	total_accuracy            REAL,
	total_threshold_accuracy  REAL,
	total_grams               INTEGER NOT NULL,
	total_above_threshold     INTEGER NOT NULL,
	undefined_folds           INTEGER NOT NULL,
	PRIMARY KEY (run_id, seq),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// Run describes one stored sweep.
type Run struct {
	ID        string
	CreatedAt time.Time
	Config    sweep.Config
	Rows      int
}

// Store manages sweep runs in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores cfg and rows under a new run id and returns the id. Rows
// keep their order; NaN means are stored as NULL.
func (s *Store) SaveRun(cfg sweep.Config, rows []sweep.Row) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, created_at, config_json) VALUES (?, ?, ?)`,
		id, now.Format(time.RFC3339Nano), string(cfgJSON),
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO results (run_id, seq, task_number, n, confidence_threshold,
			total_accuracy, total_threshold_accuracy, total_grams, total_above_threshold, undefined_folds)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return "", fmt.Errorf("prepare results: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		if _, err := stmt.Exec(
			id, i, r.Task, r.N, r.Threshold,
			nullable(r.Accuracy), nullable(r.ThresholdAccuracy),
			r.Grams, r.AboveThreshold, r.UndefinedFolds,
		); err != nil {
			return "", fmt.Errorf("insert result %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// Rows returns the rows of runID in the order they were saved.
func (s *Store) Rows(runID string) ([]sweep.Row, error) {
	rs, err := s.db.Query(
		`SELECT task_number, n, confidence_threshold, total_accuracy, total_threshold_accuracy,
			total_grams, total_above_threshold, undefined_folds
		 FROM results WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rs.Close()

	var rows []sweep.Row
	for rs.Next() {
		var (
			r        sweep.Row
			acc, thr sql.NullFloat64
		)
		if err := rs.Scan(&r.Task, &r.N, &r.Threshold, &acc, &thr,
			&r.Grams, &r.AboveThreshold, &r.UndefinedFolds); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Accuracy = fromNullable(acc)
		r.ThresholdAccuracy = fromNullable(thr)
		rows = append(rows, r)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	if len(rows) == 0 {
		if _, err := s.Run(runID); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// Run returns the metadata of runID.
func (s *Store) Run(runID string) (Run, error) {
	row := s.db.QueryRow(
		`SELECT r.run_id, r.created_at, r.config_json,
			(SELECT COUNT(*) FROM results WHERE run_id = r.run_id)
		 FROM runs r WHERE r.run_id = ?`,
		runID,
	)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return Run{}, fmt.Errorf("run %s not found", runID)
	}
	return run, err
}

// Runs lists stored runs, oldest first.
func (s *Store) Runs() ([]Run, error) {
	rs, err := s.db.Query(
		`SELECT r.run_id, r.created_at, r.config_json,
			(SELECT COUNT(*) FROM results WHERE run_id = r.run_id)
		 FROM runs r ORDER BY r.rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rs.Close()

	var runs []Run
	for rs.Next() {
		run, err := scanRun(rs)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rs.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run       Run
		createdAt string
		cfgJSON   string
	)
	if err := sc.Scan(&run.ID, &createdAt, &cfgJSON, &run.Rows); err != nil {
		if err == sql.ErrNoRows {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse created_at: %w", err)
	}
	run.CreatedAt = t
	if err := json.Unmarshal([]byte(cfgJSON), &run.Config); err != nil {
		return Run{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return run, nil
}

func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
