// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/dialogue-audit/internal/lifecycle"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(types.LedgerConfig{Path: filepath.Join(t.TempDir(), "audit", "ledger.db")})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func startRun(t *testing.T, store *Store, at time.Time) Run {
	t.Helper()
	r, err := store.StartRun(context.Background(), Run{StartedAt: at, Dataset: "data/scenarios.yaml", Scenarios: 3, Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func sample(scenario, location string, conf float64) types.ConsolidatedFinding {
	return types.ConsolidatedFinding{
		Finding: types.Finding{
			ValidatorName:  "Contextual Substitution",
			ScenarioID:     scenario,
			Location:       location,
			Issue:          "Answer reads awkwardly in context",
			CurrentValue:   "walk",
			SuggestedValue: "wander",
			Confidence:     conf,
		},
		Sources: []int{1, 2},
		Conflict: &types.Conflict{
			Winner:     2,
			Resolution: types.ResolvedByConfidence,
			Alternatives: []types.Alternative{
				{WorkerID: 1, SuggestedValue: "stroll", Confidence: 0.85},
				{WorkerID: 2, SuggestedValue: "wander", Confidence: 0.90},
			},
		},
	}
}

// --- schema ---

func TestNewStoreCreatesSchema(t *testing.T) {
	store := testStore(t)
	for _, table := range []string{"runs", "findings"} {
		var count int
		err := store.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&count)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if count == 0 {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestNewStoreReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	first, err := NewStore(types.LedgerConfig{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	r, err := first.StartRun(context.Background(), Run{})
	if err != nil {
		t.Fatal(err)
	}
	first.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file not created: %v", err)
	}
	second, err := NewStore(types.LedgerConfig{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()
	if _, err := second.GetRun(context.Background(), r.ID); err != nil {
		t.Errorf("run lost after reopen: %v", err)
	}
}

// --- runs ---

func TestRuns(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	older := startRun(t, store, base)
	newer := startRun(t, store, base.Add(time.Hour))

	if older.ID == "" || older.ID == newer.ID {
		t.Fatalf("run ids not unique: %q %q", older.ID, newer.ID)
	}
	if older.Status != RunStarted {
		t.Errorf("status = %q, want %q", older.Status, RunStarted)
	}

	latest, err := store.LatestRun(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if latest.ID != newer.ID {
		t.Errorf("latest = %s, want %s", latest.ID, newer.ID)
	}

	if err := store.FinishRun(ctx, older.ID, RunCompleted); err != nil {
		t.Fatal(err)
	}
	got, err := store.GetRun(ctx, older.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != RunCompleted || got.FinishedAt.IsZero() {
		t.Errorf("run not finished: %+v", got)
	}
	if got.Dataset != "data/scenarios.yaml" || got.Scenarios != 3 || got.Workers != 2 {
		t.Errorf("run fields not stored: %+v", got)
	}

	runs, err := store.Runs(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != newer.ID {
		t.Errorf("runs not newest first: %+v", runs)
	}
}

func TestRunNotFound(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if _, err := store.LatestRun(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("LatestRun on empty ledger: err = %v, want ErrNotFound", err)
	}
	if _, err := store.GetRun(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRun: err = %v, want ErrNotFound", err)
	}
	if err := store.FinishRun(ctx, "missing", RunFailed); !errors.Is(err, ErrNotFound) {
		t.Errorf("FinishRun: err = %v, want ErrNotFound", err)
	}
	if _, err := store.Pending(ctx, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Pending with no runs: err = %v, want ErrNotFound", err)
	}
}

// --- findings ---

func TestRecordAndGet(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	r := startRun(t, store, time.Now())
	cf := sample("advanced-3", "answerVariations[2].answer", 0.9)

	if err := store.Record(ctx, r.ID, cf, lifecycle.Resolved); err != nil {
		t.Fatal(err)
	}
	e, err := store.Get(ctx, r.ID, cf.Key())
	if err != nil {
		t.Fatal(err)
	}
	if e.State != lifecycle.Resolved {
		t.Errorf("state = %s, want RESOLVED", e.State)
	}
	if e.Finding.Conflict == nil || e.Finding.Conflict.Winner != 2 || len(e.Finding.Conflict.Alternatives) != 2 {
		t.Errorf("conflict not round-tripped: %+v", e.Finding.Conflict)
	}
	if e.Finding.SuggestedValue != "wander" {
		t.Errorf("suggested = %q", e.Finding.SuggestedValue)
	}

	if err := store.Record(ctx, r.ID, cf, lifecycle.PendingApproval); err != nil {
		t.Fatal(err)
	}
	entries, err := store.Entries(ctx, Query{RunID: r.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].State != lifecycle.PendingApproval {
		t.Errorf("record did not replace: %+v", entries)
	}

	if err := store.Record(ctx, r.ID, cf, lifecycle.State("DONE")); err == nil {
		t.Error("expected error for unknown state")
	}
	if _, err := store.Get(ctx, r.ID, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing: err = %v", err)
	}
}

func TestTransition(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	r := startRun(t, store, time.Now())
	cf := sample("advanced-3", "answerVariations[2].answer", 0.9)
	if err := store.Record(ctx, r.ID, cf, lifecycle.PendingApproval); err != nil {
		t.Fatal(err)
	}

	if err := store.Transition(ctx, r.ID, cf.Key(), lifecycle.AutoApplied); !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Errorf("PENDING -> AUTO_APPLIED: err = %v, want ErrInvalidTransition", err)
	}
	if err := store.Transition(ctx, r.ID, cf.Key(), lifecycle.EditedAndApplied); err != nil {
		t.Fatal(err)
	}
	e, err := store.Get(ctx, r.ID, cf.Key())
	if err != nil {
		t.Fatal(err)
	}
	if e.State != lifecycle.EditedAndApplied {
		t.Errorf("state = %s", e.State)
	}
	if err := store.Transition(ctx, r.ID, "missing", lifecycle.Skipped); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing finding: err = %v", err)
	}
}

func TestRecordAllPendingAndCounts(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	r := startRun(t, store, time.Now())

	findings := []types.ConsolidatedFinding{
		sample("advanced-1", "answerVariations[1].answer", 0.98),
		sample("advanced-2", "dialogue[5].text", 0.80),
		sample("advanced-3", "answerVariations[2].answer", 0.50),
	}
	states := map[float64]lifecycle.State{
		0.98: lifecycle.AutoApplied,
		0.80: lifecycle.PendingApproval,
		0.50: lifecycle.Reported,
	}
	err := store.RecordAll(ctx, r.ID, findings, func(cf types.ConsolidatedFinding) lifecycle.State {
		return states[cf.Confidence]
	})
	if err != nil {
		t.Fatal(err)
	}

	pending, err := store.Pending(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	if pending[0].Finding.Confidence != 0.80 {
		t.Errorf("pending not ordered by confidence: %+v", pending[0].Finding)
	}

	counts, err := store.Counts(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := map[lifecycle.State]int{lifecycle.AutoApplied: 1, lifecycle.PendingApproval: 1, lifecycle.Reported: 1}
	for st, n := range want {
		if counts[st] != n {
			t.Errorf("counts[%s] = %d, want %d", st, counts[st], n)
		}
	}

	byScenario, err := store.Entries(ctx, Query{ScenarioID: "advanced-2"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byScenario) != 1 {
		t.Errorf("scenario filter returned %d", len(byScenario))
	}
	byText, err := store.Entries(ctx, Query{Text: "dialogue[5]"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byText) != 1 {
		t.Errorf("text filter returned %d", len(byText))
	}

	n, err := store.MarkRolledBack(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("rolled back %d, want 1", n)
	}
	e, err := store.Get(ctx, r.ID, findings[0].Key())
	if err != nil {
		t.Fatal(err)
	}
	if !e.RolledBack || e.State != lifecycle.AutoApplied {
		t.Errorf("rollback should flag without changing state: %+v", e)
	}
}

func TestExportYAML(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	r := startRun(t, store, time.Now())
	cf := sample("advanced-3", "answerVariations[2].answer", 0.9)
	if err := store.Record(ctx, r.ID, cf, lifecycle.PendingApproval); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := store.ExportYAML(ctx, r.ID, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "suggested_value: wander") {
		t.Errorf("export missing finding fields:\n%s", buf.String())
	}

	var got Export
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("export is not valid YAML: %v", err)
	}
	if got.Run.ID != r.ID || len(got.Findings) != 1 {
		t.Errorf("export = %+v", got)
	}

	if err := store.ExportYAML(ctx, "missing", &buf); !errors.Is(err, ErrNotFound) {
		t.Errorf("export missing run: err = %v", err)
	}
}
