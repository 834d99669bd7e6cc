// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dialogue-audit/internal/audit"
	"github.com/pdiddy/dialogue-audit/internal/dataset"
	"github.com/pdiddy/dialogue-audit/internal/fileutil"
	"github.com/pdiddy/dialogue-audit/internal/format"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Run every validator over the dataset in one process",
	Long: `Audit runs the validator set over the dataset (or a filtered part of it)
and prints a per-validator summary. HIGH findings with a suggested value are
applied to the dataset unless --dry-run, --report-only or --no-auto-approve
is given. MEDIUM and LOW findings are grouped by scenario for review.`,
	RunE: runAudit,
}

func init() {
	f := auditCmd.Flags()
	f.Bool("dry-run", false, "report HIGH fixes without applying them")
	f.Bool("report-only", false, "report findings without applying any fix")
	f.Bool("no-auto-approve", false, "do not apply HIGH confidence fixes")
	f.StringSlice("scenario", nil, "audit only these scenario ids")
	f.StringSlice("category", nil, "audit only these categories")
	f.StringSlice("validator", nil, "run only these validators")
	f.String("format", "table", "output format: table, markdown or json")
	f.String("report-file", "", "also write a Markdown report to this file")
	f.BoolP("verbose", "v", false, "list every finding")

	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	cfg.Audit.DryRun, _ = flags.GetBool("dry-run")
	cfg.Audit.ReportOnly, _ = flags.GetBool("report-only")
	cfg.Audit.NoAutoApprove, _ = flags.GetBool("no-auto-approve")
	cfg.Audit.ScenarioIDs, _ = flags.GetStringSlice("scenario")
	cfg.Audit.Categories, _ = flags.GetStringSlice("category")
	cfg.Audit.Validators, _ = flags.GetStringSlice("validator")
	outFormat, _ := flags.GetString("format")
	reportFile, _ := flags.GetString("report-file")
	verbose, _ := flags.GetBool("verbose")

	ds, err := dataset.Load(cfg.Persistence.DatasetPath)
	if err != nil {
		return err
	}

	metrics, stop, err := startMetrics(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer stop()

	runner, err := newRunner(cfg,
		audit.WithFixer(newPersister(cfg)),
		audit.WithObserver(metrics),
	)
	if err != nil {
		return err
	}

	report, err := runner.Run(cmd.Context(), ds.Scenarios, cfg.Audit)
	if err != nil {
		return err
	}
	metrics.RecordFindings(cmd.Context(), report.Findings)

	if outFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	format.WriteAudit(os.Stdout, report, cfg.Thresholds, format.ParseMode(outFormat), verbose)

	groups := audit.GroupByScenario(audit.Suggestions(report.Findings, cfg.Thresholds))
	if len(groups) > 0 {
		fmt.Printf("\nFindings requiring review: %d scenarios\n", len(groups))
		for _, g := range groups {
			fmt.Printf("  %s: %d\n", g.ScenarioID, len(g.Findings))
		}
	}
	if n := countAutoFixable(report.Findings, cfg.Thresholds); cfg.Audit.DryRun && n > 0 {
		fmt.Printf("\nDry-run mode: %d fixes not written\n", n)
	}

	if reportFile != "" {
		var b strings.Builder
		fmt.Fprintf(&b, "# Linguistic Audit Report\n\nGenerated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
		format.WriteAudit(&b, report, cfg.Thresholds, format.Markdown, true)
		if err := fileutil.WriteAtomic(reportFile, []byte(b.String()), 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Printf("\nReport written to %s\n", reportFile)
	}
	return nil
}

func countAutoFixable(fs []types.Finding, th types.Thresholds) int {
	n := 0
	for _, f := range fs {
		if f.AutoFixable(th) {
			n++
		}
	}
	return n
}
