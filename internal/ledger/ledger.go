// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records audit runs and the lifecycle state of every
// consolidated finding in a local SQLite database, so findings left for
// review survive between invocations.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/dialogue-audit/internal/lifecycle"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

// ErrNotFound is returned when a run or finding does not exist.
var ErrNotFound = errors.New("not found")

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run statuses.
const (
	RunStarted   = "started"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// Run is one orchestrated audit.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Dataset    string    `json:"dataset" yaml:"dataset"`
	Scenarios  int       `json:"scenarios" yaml:"scenarios"`
	Workers    int       `json:"workers" yaml:"workers"`
	DryRun     bool      `json:"dry_run" yaml:"dry_run"`
	Status     string    `json:"status" yaml:"status"`
}

// Entry is a finding as recorded for one run.
type Entry struct {
	RunID      string                    `json:"run_id" yaml:"run_id"`
	Finding    types.ConsolidatedFinding `json:"finding" yaml:"finding"`
	State      lifecycle.State           `json:"state" yaml:"state"`
	RolledBack bool                      `json:"rolled_back" yaml:"rolled_back"`
	UpdatedAt  time.Time                 `json:"updated_at" yaml:"updated_at"`
}

// Store is the ledger database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens or creates the ledger at cfg.Path.
func NewStore(cfg types.LedgerConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = types.DefaultPipelineConfig().Ledger.Path
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			dataset TEXT,
			scenarios INTEGER,
			workers INTEGER,
			dry_run INTEGER,
			status TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS findings (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			key TEXT NOT NULL,
			scenario_id TEXT NOT NULL,
			location TEXT NOT NULL,
			validator TEXT NOT NULL,
			confidence REAL,
			state TEXT NOT NULL,
			rolled_back INTEGER NOT NULL DEFAULT 0,
			body TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (run_id, key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_findings_state ON findings(state)`,
		`CREATE INDEX IF NOT EXISTS idx_findings_scenario ON findings(scenario_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// StartRun inserts r with status started. An empty ID is filled with a new
// UUID.
func (s *Store) StartRun(ctx context.Context, r Run) (Run, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = s.now().UTC()
	}
	r.Status = RunStarted
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, dataset, scenarios, workers, dry_run, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.Format(timeLayout), r.Dataset, r.Scenarios, r.Workers, r.DryRun, r.Status,
	)
	if err != nil {
		return r, fmt.Errorf("inserting run: %w", err)
	}
	return r, nil
}

// FinishRun stamps the end time and final status of a run.
func (s *Store) FinishRun(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ? WHERE id = ?`,
		s.now().UTC().Format(timeLayout), status, id,
	)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	return expectRow(res, "run "+id)
}

// Record stores cf under runID in state, replacing any earlier record of
// the same finding in that run.
func (s *Store) Record(ctx context.Context, runID string, cf types.ConsolidatedFinding, state lifecycle.State) error {
	if !state.Valid() {
		return fmt.Errorf("recording %s: unknown state %q", cf.Key(), state)
	}
	body, err := json.Marshal(cf)
	if err != nil {
		return fmt.Errorf("marshaling finding: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO findings (run_id, key, scenario_id, location, validator, confidence, state, body, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id, key) DO UPDATE SET
			confidence=excluded.confidence, state=excluded.state,
			body=excluded.body, updated_at=excluded.updated_at`,
		runID, cf.Key(), cf.ScenarioID, cf.Location, cf.ValidatorName, cf.Confidence,
		string(state), string(body), s.now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("recording finding %s: %w", cf.Key(), err)
	}
	return nil
}

// RecordAll stores findings in one transaction, each in the state chosen
// by stateOf.
func (s *Store) RecordAll(ctx context.Context, runID string, findings []types.ConsolidatedFinding, stateOf func(types.ConsolidatedFinding) lifecycle.State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO findings (run_id, key, scenario_id, location, validator, confidence, state, body, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := s.now().UTC().Format(timeLayout)
	for _, cf := range findings {
		body, err := json.Marshal(cf)
		if err != nil {
			return fmt.Errorf("marshaling finding: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			runID, cf.Key(), cf.ScenarioID, cf.Location, cf.ValidatorName, cf.Confidence,
			string(stateOf(cf)), string(body), now,
		); err != nil {
			return fmt.Errorf("inserting finding %s: %w", cf.Key(), err)
		}
	}
	return tx.Commit()
}

// Transition moves a recorded finding to state to, enforcing the
// lifecycle's transition table.
func (s *Store) Transition(ctx context.Context, runID, key string, to lifecycle.State) error {
	e, err := s.Get(ctx, runID, key)
	if err != nil {
		return err
	}
	if _, err := lifecycle.Transition(e.State, to); err != nil {
		return fmt.Errorf("finding %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE findings SET state = ?, updated_at = ? WHERE run_id = ? AND key = ?`,
		string(to), s.now().UTC().Format(timeLayout), runID, key,
	)
	if err != nil {
		return fmt.Errorf("updating finding state: %w", err)
	}
	return nil
}

// MarkRolledBack flags every AUTO_APPLIED finding of a run whose disk
// effect was undone. Their state is kept.
func (s *Store) MarkRolledBack(ctx context.Context, runID string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE findings SET rolled_back = 1, updated_at = ? WHERE run_id = ? AND state = ?`,
		s.now().UTC().Format(timeLayout), runID, string(lifecycle.AutoApplied),
	)
	if err != nil {
		return 0, fmt.Errorf("marking rollback: %w", err)
	}
	return res.RowsAffected()
}

func expectRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
