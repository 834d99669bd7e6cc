// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package audit

import (
	"sort"

	"github.com/pdiddy/dialogue-audit/pkg/types"
)

// Suggestions returns the findings below the HIGH tier, most confident
// first. These are the findings a human reviews.
func Suggestions(fs []types.Finding, th types.Thresholds) []types.Finding {
	var out []types.Finding
	for _, f := range fs {
		if th.Level(f.Confidence) != types.LevelHigh {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

// ScenarioGroup is the findings of one scenario.
type ScenarioGroup struct {
	ScenarioID string
	Findings   []types.Finding
}

// GroupByScenario groups findings by scenario in first-seen order,
// preserving the order within each group.
func GroupByScenario(fs []types.Finding) []ScenarioGroup {
	index := make(map[string]int)
	var out []ScenarioGroup
	for _, f := range fs {
		i, ok := index[f.ScenarioID]
		if !ok {
			i = len(out)
			index[f.ScenarioID] = i
			out = append(out, ScenarioGroup{ScenarioID: f.ScenarioID})
		}
		out[i].Findings = append(out[i].Findings, f)
	}
	return out
}
