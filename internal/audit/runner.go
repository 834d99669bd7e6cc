// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package audit

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/dialogue-audit/pkg/types"
)

// Fixer applies auto-fixable findings to the dataset.
type Fixer interface {
	Persist(ctx context.Context, findings []types.ConsolidatedFinding, dryRun bool) (types.PersistenceResult, error)
}

// Observer receives per-validator timings and finding counts.
type Observer interface {
	ValidatorRun(ctx context.Context, validator string, d time.Duration, findings int, failed bool)
}

// Runner executes a registry's validators.
type Runner struct {
	reg        *Registry
	thresholds types.Thresholds
	fixer      Fixer
	observer   Observer
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithFixer lets the runner apply HIGH findings after the run.
func WithFixer(f Fixer) Option {
	return func(r *Runner) { r.fixer = f }
}

// WithThresholds sets the tier cutoffs used for counting and fixing.
func WithThresholds(th types.Thresholds) Option {
	return func(r *Runner) { r.thresholds = th }
}

// WithObserver records validator metrics.
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// WithLogger sets the logger. The default is slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// NewRunner returns a Runner over reg.
func NewRunner(reg *Registry, opts ...Option) *Runner {
	r := &Runner{
		reg:        reg,
		thresholds: types.DefaultThresholds(),
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Thresholds returns the runner's tier cutoffs.
func (r *Runner) Thresholds() types.Thresholds {
	return r.thresholds
}

// Run executes every selected validator over every selected scenario,
// validators in registration order and scenarios in input order. A panic
// in one validator on one scenario is recorded as an error and the run
// continues. Run returns early only when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, scenarios []types.Scenario, cfg types.AuditConfig) (types.AuditReport, error) {
	selected := Filter(scenarios, cfg)
	entries := r.selectValidators(cfg.Validators)

	report := types.AuditReport{
		RunID:       uuid.NewString(),
		GeneratedAt: r.now().UTC(),
		Scenarios:   len(selected),
	}
	withIssues := make(map[string]bool)

	for _, e := range entries {
		res := types.ValidatorResult{Name: e.Name}
		var high bool
		start := r.now()
		for _, sc := range selected {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			fs, err := r.runOne(e, sc)
			if err != nil {
				res.Errors++
				report.Errors = append(report.Errors, types.WorkerError{
					ScenarioID: sc.ID,
					Validator:  e.Name,
					Message:    err.Error(),
				})
				continue
			}
			if len(fs) == 0 {
				res.Passed++
				continue
			}
			withIssues[sc.ID] = true
			for _, f := range fs {
				if r.thresholds.Level(f.Confidence) == types.LevelHigh {
					high = true
				}
			}
			res.Findings += len(fs)
			report.Findings = append(report.Findings, fs...)
		}
		res.Status = status(res.Findings, high)
		if r.observer != nil {
			r.observer.ValidatorRun(ctx, e.Name, r.now().Sub(start), res.Findings, res.Errors > 0)
		}
		report.Validators = append(report.Validators, res)
		switch res.Status {
		case types.StatusPass:
			report.Summary.Passed++
		case types.StatusWarning:
			report.Summary.Warning++
		case types.StatusFail:
			report.Summary.Failed++
		}
	}
	report.Summary.ScenariosWithIssues = len(withIssues)
	report.Tiers = CountTiers(report.Findings, r.thresholds)

	if r.fixer != nil && !cfg.DryRun && !cfg.ReportOnly && !cfg.NoAutoApprove {
		var fixable []types.ConsolidatedFinding
		for _, f := range report.Findings {
			if f.AutoFixable(r.thresholds) {
				fixable = append(fixable, types.ConsolidatedFinding{Finding: f})
			}
		}
		if len(fixable) > 0 {
			res, err := r.fixer.Persist(ctx, fixable, false)
			if err != nil {
				return report, fmt.Errorf("applying fixes: %w", err)
			}
			report.AutoFixes = res.Fixes
		}
	}
	return report, nil
}

// runOne calls one validator on one scenario, converting a panic into an
// error and stamping the registered name on every finding.
func (r *Runner) runOne(e Entry, sc types.Scenario) (fs []types.Finding, err error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("validator panicked",
				"validator", e.Name, "scenario", sc.ID, "panic", p, "stack", string(debug.Stack()))
			err = fmt.Errorf("validator panicked: %v", p)
		}
	}()
	fs = e.Fn(sc)
	for i := range fs {
		fs[i].ValidatorName = e.Name
		if fs[i].ScenarioID == "" {
			fs[i].ScenarioID = sc.ID
		}
	}
	return fs, nil
}

func (r *Runner) selectValidators(names []string) []Entry {
	all := r.reg.Validators()
	if len(names) == 0 {
		return all
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []Entry
	for _, e := range all {
		if want[e.Name] {
			out = append(out, e)
		}
	}
	return out
}

// Filter applies the scenario id and category restrictions of cfg,
// preserving input order.
func Filter(scenarios []types.Scenario, cfg types.AuditConfig) []types.Scenario {
	ids := set(cfg.ScenarioIDs)
	cats := set(cfg.Categories)
	var out []types.Scenario
	for _, sc := range scenarios {
		if len(ids) > 0 && !ids[sc.ID] {
			continue
		}
		if len(cats) > 0 && !cats[sc.Category] {
			continue
		}
		out = append(out, sc)
	}
	return out
}

// CountTiers counts findings per confidence tier.
func CountTiers(fs []types.Finding, th types.Thresholds) types.TierCounts {
	var t types.TierCounts
	for _, f := range fs {
		switch th.Level(f.Confidence) {
		case types.LevelHigh:
			t.High++
		case types.LevelMedium:
			t.Medium++
		default:
			t.Low++
		}
	}
	return t
}

func status(findings int, high bool) types.Status {
	switch {
	case high:
		return types.StatusFail
	case findings > 0:
		return types.StatusWarning
	}
	return types.StatusPass
}

func set(xs []string) map[string]bool {
	m := make(map[string]bool, len(xs))
	for _, x := range xs {
		m[x] = true
	}
	return m
}
