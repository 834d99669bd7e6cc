// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dialogue-audit/internal/audit"
	"github.com/pdiddy/dialogue-audit/internal/consolidate"
	"github.com/pdiddy/dialogue-audit/internal/format"
	"github.com/pdiddy/dialogue-audit/internal/persist"
	"github.com/pdiddy/dialogue-audit/internal/worker"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate <worker-output.json>...",
	Short: "Consolidate existing worker findings files",
	Long: `Consolidate reads worker findings files, merges equivalent findings,
resolves conflicting suggestions and prints the statistics and conflict log.
With --apply the HIGH fixes are written to the dataset.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConsolidate,
}

func init() {
	consolidateCmd.Flags().Bool("apply", false, "write HIGH fixes to the dataset")
	consolidateCmd.Flags().Bool("dry-run", false, "with --apply, report fixes without writing")

	rootCmd.AddCommand(consolidateCmd)
}

func runConsolidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	apply, _ := cmd.Flags().GetBool("apply")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	var outputs []types.WorkerOutput
	for _, path := range args {
		out, err := worker.ReadOutput(path)
		if err != nil {
			return err
		}
		outputs = append(outputs, out)
	}

	findings := consolidate.Findings(outputs)
	consolidate.Resolve(findings)
	stats := consolidate.Stats(outputs, findings)

	consolidate.WriteReport(os.Stdout, stats)
	fmt.Println()
	consolidate.WriteConflictLog(os.Stdout, findings)
	if errs := consolidate.Errors(outputs); len(errs) > 0 {
		fmt.Printf("\nWorker errors: %d\n", len(errs))
		for _, e := range errs {
			fmt.Printf("  [%s] %s\n", e.ScenarioID, e.Message)
		}
	}
	fmt.Println()
	format.Tiers(os.Stdout, audit.CountTiers(consolidate.Plain(findings), cfg.Thresholds))

	if !apply {
		return nil
	}
	res, err := newPersister(cfg).Persist(cmd.Context(), findings, dryRun)
	fmt.Println()
	persist.WriteReport(os.Stdout, res)
	return err
}
