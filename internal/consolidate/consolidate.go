// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package consolidate merges worker outputs into one deduplicated finding
// list and resolves disagreements between workers.
package consolidate

import (
	"slices"

	"github.com/pdiddy/dialogue-audit/pkg/types"
)

// Findings merges the findings of every output by Finding.Key, in order of
// first appearance. A repeated key with the same (or an empty) suggested
// value only extends Sources. A repeated key with a different non-empty
// value opens or extends a Conflict listing each distinct value once.
func Findings(outputs []types.WorkerOutput) []types.ConsolidatedFinding {
	var out []types.ConsolidatedFinding
	index := make(map[string]int)
	// origin[i] is the worker whose value out[i] currently carries.
	var origin []int

	for _, wo := range outputs {
		for _, f := range wo.Findings {
			key := f.Key()
			i, seen := index[key]
			if !seen {
				index[key] = len(out)
				out = append(out, types.ConsolidatedFinding{
					Finding: f,
					Sources: []int{wo.WorkerID},
				})
				origin = append(origin, wo.WorkerID)
				continue
			}

			cf := &out[i]
			switch {
			case f.SuggestedValue == "":
			case cf.SuggestedValue == "":
				cf.SuggestedValue = f.SuggestedValue
				cf.Confidence = f.Confidence
				origin[i] = wo.WorkerID
			case f.SuggestedValue != cf.SuggestedValue:
				addAlternative(cf, origin[i], wo.WorkerID, f)
			}
			if !slices.Contains(cf.Sources, wo.WorkerID) {
				cf.Sources = append(cf.Sources, wo.WorkerID)
			}
		}
	}
	return out
}

// addAlternative records f from worker against cf. The first call seeds the
// conflict with cf's own value, credited to first.
func addAlternative(cf *types.ConsolidatedFinding, first, worker int, f types.Finding) {
	if cf.Conflict == nil {
		cf.Conflict = &types.Conflict{
			Winner: -1,
			Alternatives: []types.Alternative{{
				WorkerID:       first,
				ValidatorName:  cf.ValidatorName,
				SuggestedValue: cf.SuggestedValue,
				Confidence:     cf.Confidence,
			}},
		}
	}
	for _, a := range cf.Conflict.Alternatives {
		if a.SuggestedValue == f.SuggestedValue {
			return
		}
	}
	cf.Conflict.Alternatives = append(cf.Conflict.Alternatives, types.Alternative{
		WorkerID:       worker,
		ValidatorName:  f.ValidatorName,
		SuggestedValue: f.SuggestedValue,
		Confidence:     f.Confidence,
	})
}

// Stats summarises a consolidation. AgreementRate is the fraction of
// unique findings reported by more than one worker.
func Stats(outputs []types.WorkerOutput, consolidated []types.ConsolidatedFinding) types.ConsolidationStats {
	var s types.ConsolidationStats
	for _, wo := range outputs {
		s.TotalFindings += len(wo.Findings)
	}
	s.UniqueFindings = len(consolidated)
	s.DuplicatesRemoved = s.TotalFindings - s.UniqueFindings

	var agreed int
	for _, cf := range consolidated {
		if cf.Conflict != nil {
			s.Conflicts++
		}
		if len(cf.Sources) > 1 {
			agreed++
		}
	}
	if s.UniqueFindings > 0 {
		s.AgreementRate = float64(agreed) / float64(s.UniqueFindings)
	}
	return s
}

// Errors collects the worker errors of every output.
func Errors(outputs []types.WorkerOutput) []types.WorkerError {
	var errs []types.WorkerError
	for _, wo := range outputs {
		errs = append(errs, wo.Errors...)
	}
	return errs
}

// Plain drops the consolidation metadata.
func Plain(cfs []types.ConsolidatedFinding) []types.Finding {
	fs := make([]types.Finding, len(cfs))
	for i, cf := range cfs {
		fs[i] = cf.Finding
	}
	return fs
}
