// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orchestrate runs a complete audit: it splits the selected
// scenarios across workers, consolidates their findings, resolves
// conflicts, records every finding in the ledger and applies the HIGH
// fixes, guarding the dataset with build checks before and after.
package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/dialogue-audit/internal/audit"
	"github.com/pdiddy/dialogue-audit/internal/consolidate"
	"github.com/pdiddy/dialogue-audit/internal/format"
	"github.com/pdiddy/dialogue-audit/internal/ledger"
	"github.com/pdiddy/dialogue-audit/internal/lifecycle"
	"github.com/pdiddy/dialogue-audit/internal/persist"
	"github.com/pdiddy/dialogue-audit/internal/worker"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

var (
	// ErrPreflight is returned when the build fails before the audit.
	ErrPreflight = errors.New("pre-flight build failed")

	// ErrPostFix is returned when the build fails after fixes were
	// written. The dataset has been restored from its backup.
	ErrPostFix = errors.New("post-fix build verification failed")

	// ErrNoScenarios is returned when the selection is empty.
	ErrNoScenarios = errors.New("no scenarios selected")
)

// Toolchain runs the build check and git operations.
type Toolchain interface {
	Build(ctx context.Context, command []string) error
	GitAvailable(ctx context.Context) bool
	Tag(ctx context.Context, name string) error
	Commit(ctx context.Context, message string, paths ...string) error
}

// Ledger records runs and the state of their findings.
type Ledger interface {
	StartRun(ctx context.Context, r ledger.Run) (ledger.Run, error)
	FinishRun(ctx context.Context, id, status string) error
	RecordAll(ctx context.Context, runID string, findings []types.ConsolidatedFinding, stateOf func(types.ConsolidatedFinding) lifecycle.State) error
	MarkRolledBack(ctx context.Context, runID string) (int64, error)
}

// Recorder receives pipeline metrics.
type Recorder interface {
	RecordWorker(ctx context.Context, out types.WorkerOutput)
	RecordFindings(ctx context.Context, fs []types.Finding)
	RecordConflicts(ctx context.Context, cfs []types.ConsolidatedFinding)
	RecordPersistence(ctx context.Context, r types.PersistenceResult)
}

// Result is the outcome of one orchestrated run.
type Result struct {
	RunID       string
	ScenarioIDs []string
	Outputs     []types.WorkerOutput
	Findings    []types.ConsolidatedFinding
	Stats       types.ConsolidationStats
	Persistence types.PersistenceResult
	Tiers       types.TierCounts
	RolledBack  bool
}

// Orchestrator wires the pipeline stages together. Only the transport is
// required; each optional stage is skipped when its dependency is unset.
type Orchestrator struct {
	cfg       types.PipelineConfig
	transport worker.Transport
	tools     Toolchain
	ledger    Ledger
	fixer     audit.Fixer
	recorder  Recorder
	out       io.Writer
	logger    *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithToolchain enables the build checks and git steps.
func WithToolchain(t Toolchain) Option { return func(o *Orchestrator) { o.tools = t } }

// WithLedger records the run and its findings.
func WithLedger(l Ledger) Option { return func(o *Orchestrator) { o.ledger = l } }

// WithFixer applies HIGH fixes after consolidation.
func WithFixer(f audit.Fixer) Option { return func(o *Orchestrator) { o.fixer = f } }

// WithRecorder records metrics.
func WithRecorder(r Recorder) Option { return func(o *Orchestrator) { o.recorder = r } }

// WithOutput sets where progress is printed. The default discards it.
func WithOutput(w io.Writer) Option { return func(o *Orchestrator) { o.out = w } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(o *Orchestrator) { o.logger = l } }

// New returns an Orchestrator dispatching through transport.
func New(cfg types.PipelineConfig, transport worker.Transport, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:       cfg,
		transport: transport,
		out:       io.Discard,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run audits the scenarios selected from ds by the configured phase or ids.
// Pre-flight, persistence and post-fix failures are returned as errors;
// worker failures only reduce coverage.
func (o *Orchestrator) Run(ctx context.Context, ds types.Dataset) (Result, error) {
	var res Result
	ids, err := Select(ds, o.cfg.Orchestrator.Phase, o.cfg.Audit.ScenarioIDs)
	if err != nil {
		return res, err
	}
	if len(ids) == 0 {
		return res, ErrNoScenarios
	}
	res.ScenarioIDs = ids
	dryRun := o.cfg.Audit.DryRun
	fmt.Fprintf(o.out, "Audit Orchestrator - %d scenarios\n\n", len(ids))

	if err := o.preflight(ctx); err != nil {
		return res, err
	}

	if o.ledger != nil {
		run, err := o.ledger.StartRun(ctx, ledger.Run{
			Dataset:   o.cfg.Persistence.DatasetPath,
			Scenarios: len(ids),
			Workers:   len(Split(ids, o.workers())),
			DryRun:    dryRun,
		})
		if err != nil {
			return res, fmt.Errorf("starting run: %w", err)
		}
		res.RunID = run.ID
	}

	err = o.run(ctx, ids, dryRun, &res)
	if o.ledger != nil && res.RunID != "" {
		status := ledger.RunCompleted
		if err != nil {
			status = ledger.RunFailed
		}
		if ferr := o.ledger.FinishRun(context.WithoutCancel(ctx), res.RunID, status); ferr != nil {
			o.logger.Error("finishing ledger run", "run", res.RunID, "err", ferr)
		}
	}
	return res, err
}

func (o *Orchestrator) run(ctx context.Context, ids []string, dryRun bool, res *Result) error {
	o.tag(ctx, res.RunID)

	outputs, err := o.fanOut(ctx, ids)
	res.Outputs = outputs
	if err != nil {
		return err
	}

	findings := consolidate.Findings(outputs)
	consolidate.Resolve(findings)
	res.Findings = findings
	res.Stats = consolidate.Stats(outputs, findings)
	plain := consolidate.Plain(findings)
	res.Tiers = audit.CountTiers(plain, o.cfg.Thresholds)
	if o.recorder != nil {
		o.recorder.RecordFindings(ctx, plain)
		o.recorder.RecordConflicts(ctx, findings)
	}

	fmt.Fprintln(o.out)
	consolidate.WriteReport(o.out, res.Stats)
	fmt.Fprintln(o.out)
	consolidate.WriteConflictLog(o.out, findings)
	fmt.Fprintln(o.out)
	format.Tiers(o.out, res.Tiers)

	applied := map[string]bool{}
	if o.fixer != nil && !dryRun {
		pr, err := o.fixer.Persist(ctx, findings, false)
		res.Persistence = pr
		if o.recorder != nil {
			o.recorder.RecordPersistence(ctx, pr)
		}
		if err != nil {
			return fmt.Errorf("persisting fixes: %w", err)
		}
		fmt.Fprintln(o.out)
		persist.WriteReport(o.out, pr)
		for _, f := range pr.Fixes {
			applied[f.Key] = true
		}
	} else if dryRun {
		fmt.Fprintln(o.out, "\nDry-run mode: no changes applied")
	}

	if err := o.record(ctx, res.RunID, findings, applied); err != nil {
		return err
	}

	if !res.Persistence.Modified {
		return nil
	}
	if err := o.verify(ctx, res); err != nil {
		return err
	}
	return o.commit(ctx, res)
}

func (o *Orchestrator) workers() int {
	if o.cfg.Orchestrator.Workers > 0 {
		return o.cfg.Orchestrator.Workers
	}
	return 1
}

func (o *Orchestrator) preflight(ctx context.Context) error {
	if o.tools == nil || len(o.cfg.Orchestrator.BuildCommand) == 0 {
		return nil
	}
	fmt.Fprintln(o.out, "Pre-flight checks...")
	if err := o.tools.Build(ctx, o.cfg.Orchestrator.BuildCommand); err != nil {
		fmt.Fprintln(o.out, "  build failed")
		return fmt.Errorf("%w: %v", ErrPreflight, err)
	}
	fmt.Fprintln(o.out, "  build succeeds")
	return nil
}

// tag marks the tree before the audit. A failure is reported and ignored.
func (o *Orchestrator) tag(ctx context.Context, runID string) {
	if !o.gitEnabled(ctx) {
		return
	}
	name := "audit-start"
	if runID != "" {
		name = "audit-" + shortID(runID) + "-start"
	}
	if err := o.tools.Tag(ctx, name); err != nil {
		fmt.Fprintf(o.out, "  git tag %s not created (continuing)\n", name)
		o.logger.Warn("tagging tree", "tag", name, "err", err)
		return
	}
	fmt.Fprintf(o.out, "  git tag created: %s\n", name)
}

func (o *Orchestrator) fanOut(ctx context.Context, ids []string) ([]types.WorkerOutput, error) {
	parts := Split(ids, o.workers())
	dir := o.cfg.Worker.OutputDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "dialogue-audit-*")
		if err != nil {
			return nil, fmt.Errorf("creating worker output dir: %w", err)
		}
		defer os.RemoveAll(tmp)
		dir = tmp
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating worker output dir: %w", err)
	}

	fmt.Fprintf(o.out, "\nValidating %d scenarios with %d workers...\n", len(ids), len(parts))
	start := time.Now()

	outputs := make([]types.WorkerOutput, len(parts))
	var g errgroup.Group
	g.SetLimit(len(parts))
	for i, slice := range parts {
		task := worker.Task{
			WorkerID:    i + 1,
			ScenarioIDs: slice,
			OutputPath:  filepath.Join(dir, fmt.Sprintf("worker-%d.json", i+1)),
		}
		g.Go(func() error {
			outputs[i] = worker.DispatchWithTimeout(ctx, o.transport, task, o.cfg.Worker.Timeout)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return outputs, err
	}

	for _, out := range outputs {
		if o.recorder != nil {
			o.recorder.RecordWorker(ctx, out)
		}
		fmt.Fprintf(o.out, "  worker %d: %d scenarios, %d findings, %d errors (%s)\n",
			out.WorkerID, len(out.ScenarioIDs), len(out.Findings), len(out.Errors), format.Duration(out.Elapsed()))
	}
	fmt.Fprintf(o.out, "Execution time: %s\n", format.Duration(time.Since(start)))
	return outputs, nil
}

// record stores every finding in the state triage puts it in. A finding
// triaged for auto-apply that was not written is recorded as reported.
func (o *Orchestrator) record(ctx context.Context, runID string, findings []types.ConsolidatedFinding, applied map[string]bool) error {
	if o.ledger == nil || runID == "" {
		return nil
	}
	th := o.cfg.Thresholds
	err := o.ledger.RecordAll(ctx, runID, findings, func(cf types.ConsolidatedFinding) lifecycle.State {
		path := lifecycle.Path(cf, th)
		state := path[len(path)-1]
		if state == lifecycle.AutoApplied && !applied[cf.Key()] {
			return lifecycle.Reported
		}
		return state
	})
	if err != nil {
		return fmt.Errorf("recording findings: %w", err)
	}
	return nil
}

// verify rebuilds after fixes were written and restores the dataset from
// its backup when the build breaks.
func (o *Orchestrator) verify(ctx context.Context, res *Result) error {
	if o.tools == nil || len(o.cfg.Orchestrator.BuildCommand) == 0 {
		return nil
	}
	fmt.Fprintln(o.out, "\nVerifying build after fixes...")
	berr := o.tools.Build(ctx, o.cfg.Orchestrator.BuildCommand)
	if berr == nil {
		fmt.Fprintln(o.out, "  build succeeds")
		return nil
	}
	fmt.Fprintln(o.out, "  build failed, restoring dataset")

	if err := persist.Restore(res.Persistence.BackupPath, o.cfg.Persistence.DatasetPath); err != nil {
		return fmt.Errorf("%w: %v (restore from %s failed: %v)", ErrPostFix, berr, res.Persistence.BackupPath, err)
	}
	res.RolledBack = true
	if o.ledger != nil && res.RunID != "" {
		if _, err := o.ledger.MarkRolledBack(context.WithoutCancel(ctx), res.RunID); err != nil {
			o.logger.Error("marking rollback", "run", res.RunID, "err", err)
		}
	}
	return fmt.Errorf("%w: %v", ErrPostFix, berr)
}

func (o *Orchestrator) commit(ctx context.Context, res *Result) error {
	if !o.gitEnabled(ctx) {
		return nil
	}
	msg := fmt.Sprintf("audit: apply %d fixes to %d scenarios", res.Persistence.Applied, len(res.ScenarioIDs))
	if err := o.tools.Commit(ctx, msg, o.cfg.Persistence.DatasetPath); err != nil {
		return fmt.Errorf("committing fixes: %w", err)
	}
	fmt.Fprintln(o.out, "  git commit created")
	return nil
}

func (o *Orchestrator) gitEnabled(ctx context.Context) bool {
	return o.cfg.Orchestrator.Commit && o.tools != nil && o.tools.GitAvailable(ctx)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
