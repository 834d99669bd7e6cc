// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/dialogue-audit/internal/lifecycle"
)

// Query filters ledger entries. Zero fields match everything.
type Query struct {
	RunID      string
	States     []lifecycle.State
	ScenarioID string
	Text       string // substring of the stored finding
}

// Get returns one recorded finding.
func (s *Store) Get(ctx context.Context, runID, key string) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT run_id, state, rolled_back, body, updated_at FROM findings WHERE run_id = ? AND key = ?`,
		runID, key)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("finding %s: %w", key, ErrNotFound)
	}
	return e, err
}

// Entries returns the findings matching q ordered by descending confidence
// then key.
func (s *Store) Entries(ctx context.Context, q Query) ([]Entry, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT run_id, state, rolled_back, body, updated_at FROM findings WHERE 1=1`)
	if q.RunID != "" {
		qb.WriteString(` AND run_id = ?`)
		args = append(args, q.RunID)
	}
	if q.ScenarioID != "" {
		qb.WriteString(` AND scenario_id = ?`)
		args = append(args, q.ScenarioID)
	}
	if len(q.States) > 0 {
		qb.WriteString(` AND state IN (?` + strings.Repeat(`, ?`, len(q.States)-1) + `)`)
		for _, st := range q.States {
			args = append(args, string(st))
		}
	}
	if q.Text != "" {
		qb.WriteString(` AND body LIKE ?`)
		args = append(args, "%"+q.Text+"%")
	}
	qb.WriteString(` ORDER BY confidence DESC, key`)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying findings: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Pending returns the findings of runID still awaiting a reviewer. An
// empty runID means the latest run.
func (s *Store) Pending(ctx context.Context, runID string) ([]Entry, error) {
	if runID == "" {
		r, err := s.LatestRun(ctx)
		if err != nil {
			return nil, err
		}
		runID = r.ID
	}
	return s.Entries(ctx, Query{
		RunID:  runID,
		States: []lifecycle.State{lifecycle.PendingApproval, lifecycle.Reported},
	})
}

// Counts tallies the findings of a run by state.
func (s *Store) Counts(ctx context.Context, runID string) (map[lifecycle.State]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT state, count(*) FROM findings WHERE run_id = ? GROUP BY state`, runID)
	if err != nil {
		return nil, fmt.Errorf("counting findings: %w", err)
	}
	defer rows.Close()

	counts := make(map[lifecycle.State]int)
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		counts[lifecycle.State(st)] = n
	}
	return counts, rows.Err()
}

// Runs lists runs newest first. limit <= 0 returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, finished_at, dataset, scenarios, workers, dry_run, status
		FROM runs ORDER BY started_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun returns one run.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, dataset, scenarios, workers, dry_run, status
		 FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return r, err
}

// LatestRun returns the most recently started run.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	runs, err := s.Runs(ctx, 1)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, fmt.Errorf("latest run: %w", ErrNotFound)
	}
	return runs[0], nil
}

// Export is the document written by ExportYAML.
type Export struct {
	Run      Run     `yaml:"run"`
	Findings []Entry `yaml:"findings"`
}

// ExportYAML writes a run and all its findings to w.
func (s *Store) ExportYAML(ctx context.Context, runID string, w io.Writer) error {
	r, err := s.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	entries, err := s.Entries(ctx, Query{RunID: runID})
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	data, err := yaml.Marshal(Export{Run: r, Findings: entries})
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var (
		e       Entry
		state   string
		rolled  bool
		body    string
		updated string
	)
	if err := sc.Scan(&e.RunID, &state, &rolled, &body, &updated); err != nil {
		return Entry{}, err
	}
	if err := json.Unmarshal([]byte(body), &e.Finding); err != nil {
		return Entry{}, fmt.Errorf("decoding finding: %w", err)
	}
	e.State = lifecycle.State(state)
	e.RolledBack = rolled
	e.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return e, nil
}

func scanRun(sc scanner) (Run, error) {
	var (
		r        Run
		started  string
		finished sql.NullString
		dataset  sql.NullString
	)
	if err := sc.Scan(&r.ID, &started, &finished, &dataset, &r.Scenarios, &r.Workers, &r.DryRun, &r.Status); err != nil {
		return Run{}, err
	}
	r.StartedAt, _ = time.Parse(timeLayout, started)
	if finished.Valid {
		r.FinishedAt, _ = time.Parse(timeLayout, finished.String)
	}
	r.Dataset = dataset.String
	return r, nil
}
