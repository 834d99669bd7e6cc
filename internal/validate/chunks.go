// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"fmt"
	"strings"

	"github.com/pdiddy/dialogue-audit/internal/confidence"
	"github.com/pdiddy/dialogue-audit/internal/rules"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

const chunkSuggestions = 3

// chunkCompliance flags novel primary answers once fewer than
// rules.ComplianceTarget percent of a scenario's answers come from the
// locked chunk lists.
func (s *Suite) chunkCompliance(sc types.Scenario) []types.Finding {
	ps := primaries(sc)
	if len(ps) == 0 {
		return nil
	}
	answers := make([]string, len(ps))
	for i, c := range ps {
		answers[i] = c.text
	}
	report := rules.CheckCompliance(answers)
	if report.Compliant() {
		return nil
	}

	var out []types.Finding
	for _, c := range ps {
		if rules.MatchChunk(c.text).Bucket != rules.BucketNovel {
			continue
		}
		sugg := rules.SuggestChunks(c.text, chunkSuggestions)
		d := draft{
			location: c.location,
			issue:    fmt.Sprintf("Novel vocabulary outside the locked chunks. Compliance: %d%%", report.Score),
			current:  c.text,
			context:  sentence(sc, c),
			input:    confidence.Input{IssueType: confidence.ChunkCompliance},
		}
		if len(sugg) > 0 {
			d.suggested = sugg[0]
			d.alternatives = sugg[1:]
			d.reasoning = fmt.Sprintf("%q is not a locked chunk. Similar chunks: %s", c.text, strings.Join(sugg, ", "))
		} else {
			d.reasoning = fmt.Sprintf("%q is not a locked chunk and no similar chunk was found", c.text)
		}
		out = append(out, s.emit(sc, d))
	}
	return out
}
