// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dialogue-audit/internal/format"
	"github.com/pdiddy/dialogue-audit/internal/ledger"
	"github.com/pdiddy/dialogue-audit/internal/lifecycle"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show recorded runs and their findings",
	Long: `Report reads the ledger. Without --run it lists recent runs; with --run
(or --latest) it prints the state counts and the findings of that run,
optionally filtered by state, scenario or text. --format yaml exports the
run and every finding.`,
	RunE: runReport,
}

func init() {
	f := reportCmd.Flags()
	f.String("run", "", "run id")
	f.Bool("latest", false, "report the latest run")
	f.Int("limit", 10, "number of runs to list")
	f.StringSlice("state", nil, "only findings in these states")
	f.String("scenario", "", "only findings of this scenario")
	f.String("text", "", "only findings containing this text")
	f.String("format", "table", "output format: table, markdown or yaml")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	runID, _ := f.GetString("run")
	latest, _ := f.GetBool("latest")
	limit, _ := f.GetInt("limit")
	states, _ := f.GetStringSlice("state")
	scenario, _ := f.GetString("scenario")
	text, _ := f.GetString("text")
	outFormat, _ := f.GetString("format")
	ctx := cmd.Context()

	store, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if latest {
		run, err := store.LatestRun(ctx)
		if err != nil {
			return err
		}
		runID = run.ID
	}
	mode := format.ParseMode(outFormat)

	if runID == "" {
		runs, err := store.Runs(ctx, limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}
		fmt.Println(runTable(runs, mode))
		return nil
	}

	if outFormat == "yaml" {
		return store.ExportYAML(ctx, runID, os.Stdout)
	}

	run, err := store.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	counts, err := store.Counts(ctx, runID)
	if err != nil {
		return err
	}
	q := ledger.Query{RunID: runID, ScenarioID: scenario, Text: text}
	for _, s := range states {
		st := lifecycle.State(s)
		if !st.Valid() {
			return fmt.Errorf("unknown state %q", s)
		}
		q.States = append(q.States, st)
	}
	entries, err := store.Entries(ctx, q)
	if err != nil {
		return err
	}

	fmt.Println(runTable([]ledger.Run{run}, mode))
	fmt.Println(stateTable(counts, mode))
	if len(entries) > 0 {
		fmt.Println(entryTable(entries, mode))
	}
	return nil
}

func runTable(runs []ledger.Run, mode format.Mode) string {
	t := format.NewTable(mode)
	t.Header("Run", "Started", "Status", "Scenarios", "Workers", "Dry run")
	t.Columns(format.Column{Number: 4, Align: format.AlignRight}, format.Column{Number: 5, Align: format.AlignRight})
	for _, r := range runs {
		t.Row(r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Status, r.Scenarios, r.Workers, r.DryRun)
	}
	return t.String()
}

var reportStates = []lifecycle.State{
	lifecycle.AutoApplied,
	lifecycle.PendingApproval,
	lifecycle.Reported,
	lifecycle.ApprovedAndApplied,
	lifecycle.EditedAndApplied,
	lifecycle.Skipped,
}

func stateTable(counts map[lifecycle.State]int, mode format.Mode) string {
	t := format.NewTable(mode)
	t.Header("State", "Findings")
	t.Columns(format.Column{Number: 2, Align: format.AlignRight})
	total := 0
	for _, s := range reportStates {
		t.Row(s, counts[s])
		total += counts[s]
	}
	t.Footer("Total", total)
	return t.String()
}

func entryTable(entries []ledger.Entry, mode format.Mode) string {
	t := format.NewTable(mode)
	t.Header("Scenario", "Location", "Validator", "Conf", "State", "Current", "Suggested")
	t.Columns(
		format.Column{Number: 4, Align: format.AlignRight},
		format.Column{Number: 6, MaxWidth: 30},
		format.Column{Number: 7, MaxWidth: 30},
	)
	for _, e := range entries {
		f := e.Finding
		state := string(e.State)
		if e.RolledBack {
			state += " (rolled back)"
		}
		t.Row(f.ScenarioID, f.Location, f.ValidatorName, format.Percent(f.Confidence), state,
			format.Quote(f.CurrentValue), format.Quote(f.SuggestedValue))
	}
	return t.String()
}
