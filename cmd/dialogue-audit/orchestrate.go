// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/dialogue-audit/internal/dataset"
	"github.com/pdiddy/dialogue-audit/internal/logging"
	"github.com/pdiddy/dialogue-audit/internal/orchestrate"
	"github.com/pdiddy/dialogue-audit/internal/toolchain"
	"github.com/pdiddy/dialogue-audit/internal/worker"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

var orchestrateCmd = &cobra.Command{
	Use:   "orchestrate",
	Short: "Audit the dataset with parallel workers and apply HIGH fixes",
	Long: `Orchestrate splits the selected scenarios across worker processes, waits
for their findings files, consolidates and resolves the findings, records
them in the ledger, and writes the HIGH fixes to the dataset.

When a build command is configured it must pass before the audit and again
after fixes are written; a failing post-fix build restores the dataset from
its backup. With --commit the tree is tagged first and the fixes committed.

Phases select category groups:
  1  Advanced, Workplace
  2  Service/Logistics, Social
  3  Academic, Healthcare, Cultural, Community`,
	RunE: runOrchestrate,
}

func init() {
	f := orchestrateCmd.Flags()
	f.Int("phase", 0, "category phase to audit (1-3)")
	f.StringSlice("scenarios", nil, "explicit scenario ids (overrides --phase)")
	f.Int("workers", 0, "number of parallel workers (default 3, capped to scenarios)")
	f.Bool("dry-run", false, "skip all dataset writes")
	f.Duration("timeout", 0, "per-worker timeout (default 15m)")
	f.String("transport", "", "worker transport: process or inprocess")
	f.String("build-cmd", "", "build command run before and after fixes")
	f.Bool("commit", false, "tag before the audit and commit applied fixes")
	f.String("output-dir", "", "directory for worker findings files (default: temp dir)")

	rootCmd.AddCommand(orchestrateCmd)
}

func runOrchestrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyOrchestrateFlags(cmd, &cfg)
	ctx := cmd.Context()

	ds, err := dataset.Load(cfg.Persistence.DatasetPath)
	if err != nil {
		return err
	}

	transport, err := newTransport(cfg, ds)
	if err != nil {
		return err
	}

	store, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	metrics, stop, err := startMetrics(ctx, cfg)
	if err != nil {
		return err
	}
	defer stop()

	o := orchestrate.New(cfg, transport,
		orchestrate.WithToolchain(toolchain.New("")),
		orchestrate.WithLedger(store),
		orchestrate.WithFixer(newPersister(cfg)),
		orchestrate.WithRecorder(metrics),
		orchestrate.WithOutput(os.Stdout),
		orchestrate.WithLogger(logging.New("orchestrate")),
	)
	res, err := o.Run(ctx, ds)
	if err != nil {
		return err
	}
	if res.RunID != "" {
		fmt.Printf("\nRun %s recorded. Pending findings: dialogue-audit review --run %s\n", res.RunID, res.RunID)
	}
	return nil
}

func applyOrchestrateFlags(cmd *cobra.Command, cfg *types.PipelineConfig) {
	f := cmd.Flags()
	if f.Changed("phase") {
		cfg.Orchestrator.Phase, _ = f.GetInt("phase")
	}
	if f.Changed("scenarios") {
		cfg.Audit.ScenarioIDs, _ = f.GetStringSlice("scenarios")
	}
	if f.Changed("workers") {
		cfg.Orchestrator.Workers, _ = f.GetInt("workers")
	}
	if f.Changed("dry-run") {
		cfg.Audit.DryRun, _ = f.GetBool("dry-run")
	}
	if f.Changed("timeout") {
		cfg.Worker.Timeout, _ = f.GetDuration("timeout")
	}
	if f.Changed("transport") {
		t, _ := f.GetString("transport")
		cfg.Worker.Transport = types.TransportKind(t)
	}
	if f.Changed("build-cmd") {
		c, _ := f.GetString("build-cmd")
		cfg.Orchestrator.BuildCommand = strings.Fields(c)
	}
	if f.Changed("commit") {
		cfg.Orchestrator.Commit, _ = f.GetBool("commit")
	}
	if f.Changed("output-dir") {
		cfg.Worker.OutputDir, _ = f.GetString("output-dir")
	}
}

func newTransport(cfg types.PipelineConfig, ds types.Dataset) (worker.Transport, error) {
	switch cfg.Worker.Transport {
	case types.TransportInProcess:
		runner, err := newRunner(cfg)
		if err != nil {
			return nil, err
		}
		return &worker.InProcess{Dataset: ds, Runner: runner}, nil
	case types.TransportProcess, "":
		sub := &worker.Subprocess{
			Binary:      cfg.Worker.Binary,
			DatasetPath: cfg.Persistence.DatasetPath,
			Env: []string{
				"DIALOGUE_AUDIT_LOG_FORMAT=" + cfg.Log.Format,
				"DIALOGUE_AUDIT_LOG_LEVEL=" + cfg.Log.Level,
			},
			Stderr: os.Stderr,
		}
		if file := viper.ConfigFileUsed(); file != "" {
			sub.Args = []string{"--config=" + file}
		}
		return sub, nil
	}
	return nil, fmt.Errorf("unknown worker transport %q", cfg.Worker.Transport)
}
