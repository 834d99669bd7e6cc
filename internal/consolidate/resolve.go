// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package consolidate

import (
	"fmt"
	"io"
	"slices"

	"github.com/pdiddy/dialogue-audit/internal/format"
	"github.com/pdiddy/dialogue-audit/internal/validate"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

// unrankedPriority applies to validators missing from the priority table.
const unrankedPriority = 999

var priorities = map[string]int{
	validate.GrammarContext:         1,
	validate.UKSpelling:             2,
	validate.UKVocabulary:           3,
	validate.ContextualSubstitution: 4,
	validate.BlankAnswerPairing:     5,
	validate.ChunkCompliance:        6,
	validate.DialogueFlow:           7,
	validate.AlternativesQuality:    8,
	validate.ContextualRedundancy:   9,
}

// Priority returns the tie-break rank of a validator; lower wins.
func Priority(validator string) int {
	if p, ok := priorities[validator]; ok {
		return p
	}
	return unrankedPriority
}

// Resolve picks a winner for every conflicted finding in place: highest
// confidence, then validator priority, then lowest worker id. The winning
// value and confidence are written onto the finding. The outcome does not
// depend on the order alternatives were collected in.
func Resolve(findings []types.ConsolidatedFinding) {
	for i := range findings {
		c := findings[i].Conflict
		if c == nil || len(c.Alternatives) == 0 {
			continue
		}
		ranked := slices.Clone(c.Alternatives)
		slices.SortStableFunc(ranked, compareAlternatives)

		win := ranked[0]
		c.Winner = win.WorkerID
		c.Resolution = types.ResolvedByConfidence
		if len(ranked) > 1 && ranked[1].Confidence == win.Confidence {
			c.Resolution = types.ResolvedByWorker
			if Priority(ranked[1].ValidatorName) != Priority(win.ValidatorName) {
				c.Resolution = types.ResolvedByPriority
			}
		}
		findings[i].SuggestedValue = win.SuggestedValue
		findings[i].Confidence = win.Confidence
	}
}

func compareAlternatives(a, b types.Alternative) int {
	switch {
	case a.Confidence > b.Confidence:
		return -1
	case a.Confidence < b.Confidence:
		return 1
	}
	if pa, pb := Priority(a.ValidatorName), Priority(b.ValidatorName); pa != pb {
		return pa - pb
	}
	if a.WorkerID != b.WorkerID {
		return a.WorkerID - b.WorkerID
	}
	// Same worker, same confidence: order by value so the result stays total.
	switch {
	case a.SuggestedValue < b.SuggestedValue:
		return -1
	case a.SuggestedValue > b.SuggestedValue:
		return 1
	}
	return 0
}

// maxLoggedConflicts caps WriteConflictLog.
const maxLoggedConflicts = 20

// WriteReport writes consolidation statistics.
func WriteReport(w io.Writer, s types.ConsolidationStats) {
	fmt.Fprintln(w, "Consolidation")
	fmt.Fprintf(w, "  Worker findings:    %d\n", s.TotalFindings)
	fmt.Fprintf(w, "  Unique findings:    %d\n", s.UniqueFindings)
	fmt.Fprintf(w, "  Duplicates removed: %d\n", s.DuplicatesRemoved)
	fmt.Fprintf(w, "  Conflicts:          %d\n", s.Conflicts)
	fmt.Fprintf(w, "  Agreement rate:     %.1f%%\n", s.AgreementRate*100)
}

// WriteConflictLog lists each conflict's alternatives and the chosen value.
func WriteConflictLog(w io.Writer, findings []types.ConsolidatedFinding) {
	var conflicted []types.ConsolidatedFinding
	for _, f := range findings {
		if f.Conflict != nil {
			conflicted = append(conflicted, f)
		}
	}
	if len(conflicted) == 0 {
		fmt.Fprintln(w, "No conflicts to resolve")
		return
	}

	fmt.Fprintf(w, "Conflict resolutions (%d total)\n", len(conflicted))
	for i, f := range conflicted {
		if i == maxLoggedConflicts {
			fmt.Fprintf(w, "... and %d more\n", len(conflicted)-maxLoggedConflicts)
			break
		}
		fmt.Fprintf(w, "\n[%s] %s (%s)\n", f.ScenarioID, f.Location, f.ValidatorName)
		for _, a := range f.Conflict.Alternatives {
			fmt.Fprintf(w, "  %q (%s) worker %d\n", a.SuggestedValue, format.Percent(a.Confidence), a.WorkerID)
		}
		if f.Conflict.Resolved() {
			fmt.Fprintf(w, "  Chose: %q (worker %d) by %s\n", f.SuggestedValue, f.Conflict.Winner, f.Conflict.Resolution)
		} else {
			fmt.Fprintln(w, "  Unresolved")
		}
	}
}
