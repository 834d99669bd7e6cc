// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/pdiddy/dialogue-audit/internal/audit"
	"github.com/pdiddy/dialogue-audit/internal/confidence"
	"github.com/pdiddy/dialogue-audit/internal/ledger"
	"github.com/pdiddy/dialogue-audit/internal/logging"
	"github.com/pdiddy/dialogue-audit/internal/observe"
	"github.com/pdiddy/dialogue-audit/internal/persist"
	"github.com/pdiddy/dialogue-audit/internal/validate"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

// newRunner returns a runner over the default validator set.
func newRunner(cfg types.PipelineConfig, opts ...audit.Option) (*audit.Runner, error) {
	reg := audit.NewRegistry()
	if err := validate.Default(reg, confidence.New(cfg.Thresholds)); err != nil {
		return nil, fmt.Errorf("registering validators: %w", err)
	}
	base := []audit.Option{
		audit.WithThresholds(cfg.Thresholds),
		audit.WithLogger(logging.New("audit")),
	}
	return audit.NewRunner(reg, append(base, opts...)...), nil
}

func newPersister(cfg types.PipelineConfig) *persist.Persister {
	return persist.New(cfg.Persistence, cfg.Thresholds, persist.WithLogger(logging.New("persist")))
}

func openLedger(cfg types.PipelineConfig) (*ledger.Store, error) {
	store, err := ledger.NewStore(cfg.Ledger)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	return store, nil
}

// startMetrics returns the audit instruments. With a metrics address they
// are exported over HTTP until the returned stop is called; otherwise they
// record into the no-op global provider.
func startMetrics(ctx context.Context, cfg types.PipelineConfig) (*observe.Metrics, func(), error) {
	if cfg.Metrics.Addr == "" {
		m, err := observe.NewMetrics(otel.GetMeterProvider(), cfg.Thresholds)
		return m, func() {}, err
	}
	p, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
	if err != nil {
		return nil, nil, fmt.Errorf("initializing metrics: %w", err)
	}
	m, err := observe.NewMetrics(p, cfg.Thresholds)
	if err != nil {
		return nil, nil, err
	}
	stopServer, err := p.Serve(ctx, cfg.Metrics.Addr)
	if err != nil {
		return nil, nil, fmt.Errorf("serving metrics: %w", err)
	}
	return m, func() {
		if err := stopServer(); err != nil {
			slog.Warn("stopping metrics server", "err", err)
		}
	}, nil
}
