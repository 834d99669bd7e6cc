// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package observe records audit metrics through OpenTelemetry. Tests build
// Metrics over their own MeterProvider; the CLI installs a Prometheus
// bridge with InitProvider.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/pdiddy/dialogue-audit/pkg/types"
)

const meterName = "github.com/pdiddy/dialogue-audit"

// Metrics holds the audit instruments. Safe for concurrent use.
type Metrics struct {
	// ValidatorDuration is the time one validator took over its scenarios.
	ValidatorDuration metric.Float64Histogram

	// Findings counts findings by validator and tier.
	Findings metric.Int64Counter

	// ValidatorErrors counts scenarios a validator failed on.
	ValidatorErrors metric.Int64Counter

	// WorkerDuration is the wall time of one worker.
	WorkerDuration metric.Float64Histogram

	// WorkerFailures counts workers that produced an error output.
	WorkerFailures metric.Int64Counter

	// Conflicts counts conflicts by resolution rule.
	Conflicts metric.Int64Counter

	// FixesApplied and FixesFailed count persistence outcomes by mode.
	FixesApplied metric.Int64Counter
	FixesFailed  metric.Int64Counter

	th types.Thresholds
}

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120, 900}

// NewMetrics creates the instruments on mp. th decides the tier attribute
// of recorded findings.
func NewMetrics(mp metric.MeterProvider, th types.Thresholds) (*Metrics, error) {
	m := mp.Meter(meterName)
	met := &Metrics{th: th}
	var err error

	if met.ValidatorDuration, err = m.Float64Histogram("audit.validator.duration",
		metric.WithDescription("Time one validator spent over its scenarios."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.WorkerDuration, err = m.Float64Histogram("audit.worker.duration",
		metric.WithDescription("Wall time of one worker."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Findings, err = m.Int64Counter("audit.findings",
		metric.WithDescription("Findings reported, by validator and tier."),
	); err != nil {
		return nil, err
	}
	if met.ValidatorErrors, err = m.Int64Counter("audit.validator.errors",
		metric.WithDescription("Scenarios a validator failed on."),
	); err != nil {
		return nil, err
	}
	if met.WorkerFailures, err = m.Int64Counter("audit.worker.failures",
		metric.WithDescription("Workers that timed out, crashed or wrote no output."),
	); err != nil {
		return nil, err
	}
	if met.Conflicts, err = m.Int64Counter("audit.conflicts",
		metric.WithDescription("Conflicting suggestions, by resolution rule."),
	); err != nil {
		return nil, err
	}
	if met.FixesApplied, err = m.Int64Counter("audit.fixes.applied",
		metric.WithDescription("Fixes written to the dataset."),
	); err != nil {
		return nil, err
	}
	if met.FixesFailed, err = m.Int64Counter("audit.fixes.failed",
		metric.WithDescription("Fixes that could not be located."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// ValidatorRun records one validator pass. It satisfies audit.Observer.
func (m *Metrics) ValidatorRun(ctx context.Context, validator string, d time.Duration, findings int, failed bool) {
	attrs := metric.WithAttributes(attribute.String("validator", validator))
	m.ValidatorDuration.Record(ctx, d.Seconds(), attrs)
	if failed {
		m.ValidatorErrors.Add(ctx, 1, attrs)
	}
}

// RecordFindings counts findings by validator and tier.
func (m *Metrics) RecordFindings(ctx context.Context, fs []types.Finding) {
	for _, f := range fs {
		m.Findings.Add(ctx, 1, metric.WithAttributes(
			attribute.String("validator", f.ValidatorName),
			attribute.String("tier", string(m.th.Level(f.Confidence))),
		))
	}
}

// RecordWorker records one worker's output.
func (m *Metrics) RecordWorker(ctx context.Context, out types.WorkerOutput) {
	m.WorkerDuration.Record(ctx, out.Elapsed().Seconds())
	for _, e := range out.Errors {
		if e.ScenarioID == "all" {
			m.WorkerFailures.Add(ctx, 1)
			break
		}
	}
}

// RecordConflicts counts resolved conflicts by rule.
func (m *Metrics) RecordConflicts(ctx context.Context, cfs []types.ConsolidatedFinding) {
	for _, cf := range cfs {
		if cf.Conflict == nil {
			continue
		}
		rule := string(cf.Conflict.Resolution)
		if rule == "" {
			rule = "unresolved"
		}
		m.Conflicts.Add(ctx, 1, metric.WithAttributes(attribute.String("resolution", rule)))
	}
}

// RecordPersistence counts a persistence pass.
func (m *Metrics) RecordPersistence(ctx context.Context, r types.PersistenceResult) {
	attrs := metric.WithAttributes(
		attribute.String("mode", string(r.Mode)),
		attribute.Bool("dry_run", r.DryRun),
	)
	m.FixesApplied.Add(ctx, int64(r.Applied), attrs)
	m.FixesFailed.Add(ctx, int64(r.Failed), attrs)
}
