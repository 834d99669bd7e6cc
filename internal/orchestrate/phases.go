// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrate

import (
	"fmt"
	"slices"

	"github.com/pdiddy/dialogue-audit/internal/dataset"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

// Phase is a named group of scenario categories audited together.
type Phase struct {
	Name       string
	Categories []string
}

// Phases are ordered by the risk of the categories they cover.
var Phases = map[int]Phase{
	1: {Name: "Phase 1: High-Risk", Categories: []string{"Advanced", "Workplace"}},
	2: {Name: "Phase 2: Medium-Risk", Categories: []string{"Service/Logistics", "Social"}},
	3: {Name: "Phase 3: Low-Risk", Categories: []string{"Academic", "Healthcare", "Cultural", "Community"}},
}

// Select returns the scenario ids to audit. Explicit ids win over phase;
// with neither, every scenario is selected. Explicit ids are returned as
// given so that unknown ones surface as worker errors.
func Select(ds types.Dataset, phase int, ids []string) ([]string, error) {
	if len(ids) > 0 {
		return slices.Clone(ids), nil
	}
	if phase == 0 {
		return ds.IDs(), nil
	}
	p, ok := Phases[phase]
	if !ok {
		return nil, fmt.Errorf("unknown phase %d", phase)
	}
	return dataset.ByCategory(ds, p.Categories...), nil
}

// Split divides ids into at most n contiguous slices whose sizes differ by
// no more than one. n is capped to len(ids).
func Split(ids []string, n int) [][]string {
	if len(ids) == 0 {
		return nil
	}
	n = max(1, min(n, len(ids)))
	size, extra := len(ids)/n, len(ids)%n
	out := make([][]string, 0, n)
	start := 0
	for i := range n {
		end := start + size
		if i < extra {
			end++
		}
		out = append(out, ids[start:end:end])
		start = end
	}
	return out
}
