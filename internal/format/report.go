// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package format

import (
	"fmt"
	"io"

	"github.com/pdiddy/dialogue-audit/pkg/types"
)

// Tiers writes the one-line critical/warning/suggestion summary.
func Tiers(w io.Writer, t types.TierCounts) {
	fmt.Fprintf(w, "Critical: %d  Warnings: %d  Suggestions: %d\n", t.High, t.Medium, t.Low)
}

// ValidatorTable renders per-validator outcomes with a totals footer.
func ValidatorTable(r types.AuditReport, m Mode) string {
	t := NewTable(m)
	t.Title("Audit %s (%d scenarios)", r.RunID, r.Scenarios)
	t.Header("Validator", "Status", "Findings", "Passed", "Errors")
	var findings, passed, errs int
	for _, v := range r.Validators {
		t.Row(v.Name, string(v.Status), v.Findings, v.Passed, v.Errors)
		findings += v.Findings
		passed += v.Passed
		errs += v.Errors
	}
	t.Footer("Total", fmt.Sprintf("%d/%d/%d", r.Summary.Passed, r.Summary.Warning, r.Summary.Failed), findings, passed, errs)
	t.Columns(
		Column{Number: 3, Align: AlignRight},
		Column{Number: 4, Align: AlignRight},
		Column{Number: 5, Align: AlignRight},
	)
	return t.String()
}

// FindingTable renders findings with their tier.
func FindingTable(fs []types.Finding, th types.Thresholds, m Mode) string {
	t := NewTable(m)
	t.Header("Level", "Conf", "Scenario", "Location", "Validator", "Issue", "Fix")
	for _, f := range fs {
		fix := Quote(f.CurrentValue) + " -> " + Quote(f.SuggestedValue)
		if f.SuggestedValue == "" {
			fix = "-"
		}
		t.Row(string(th.Level(f.Confidence)), Percent(f.Confidence), f.ScenarioID, f.Location,
			f.ValidatorName, f.Issue, fix)
	}
	t.Columns(
		Column{Number: 2, Align: AlignRight},
		Column{Number: 6, MaxWidth: 60},
		Column{Number: 7, MaxWidth: 50},
	)
	return t.String()
}

// WriteAudit writes the validator table, the tier summary and, when
// verbose, every finding.
func WriteAudit(w io.Writer, r types.AuditReport, th types.Thresholds, m Mode, verbose bool) {
	fmt.Fprintln(w, ValidatorTable(r, m))
	Tiers(w, r.Tiers)
	if len(r.Errors) > 0 {
		fmt.Fprintf(w, "Errors: %d\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  [%s] %s: %s\n", e.ScenarioID, e.Validator, e.Message)
		}
	}
	if len(r.AutoFixes) > 0 {
		fmt.Fprintf(w, "Auto-fixed: %d\n", len(r.AutoFixes))
	}
	if verbose && len(r.Findings) > 0 {
		fmt.Fprintln(w, FindingTable(r.Findings, th, m))
	}
}
