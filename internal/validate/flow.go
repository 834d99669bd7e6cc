// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"fmt"
	"strings"

	"github.com/pdiddy/dialogue-audit/internal/confidence"
	"github.com/pdiddy/dialogue-audit/internal/rules"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

const maxConsecutiveBlankLines = 2

// dialogueFlow looks at turn-taking: long runs of blank-bearing lines, and
// complaints the next speaker ignores.
func (s *Suite) dialogueFlow(sc types.Scenario) []types.Finding {
	var out []types.Finding

	run := 0
	for i, line := range sc.Dialogue {
		if !strings.Contains(line.Text, types.BlankToken) {
			run = 0
			continue
		}
		run++
		if run <= maxConsecutiveBlankLines {
			continue
		}
		out = append(out, s.emit(sc, draft{
			location:  types.DialogueLocation(i),
			issue:     fmt.Sprintf("Multiple consecutive blank lines (%d) may disrupt dialogue coherence", run),
			current:   line.Text,
			context:   window(sc, i),
			reasoning: "Natural dialogue alternates between given and blank turns",
			input:     confidence.Input{IssueType: confidence.DialogueFlow, AffectedText: line.Text},
			scale:     0.6,
		}))
		run = 0
	}

	for _, c := range primaries(sc) {
		if !rules.ContainsAny(c.text, rules.ComplaintMarkers) {
			continue
		}
		b, ok := sc.Blank(c.ordinal)
		if !ok || b.Line+1 >= len(sc.Dialogue) {
			continue
		}
		next := sc.Dialogue[b.Line+1].Text
		if strings.Contains(next, types.BlankToken) || rules.ContainsAny(next, rules.AcknowledgementMarkers) {
			continue
		}
		out = append(out, s.emit(sc, draft{
			location:  c.location,
			issue:     "Complaint not acknowledged in the next turn",
			current:   c.text,
			context:   fmt.Sprintf("Next line: %q", next),
			reasoning: "A complaint is normally acknowledged before the conversation moves on",
			input:     confidence.Input{IssueType: confidence.DialogueFlow, Context: c.text + " | " + next},
			scale:     0.5,
		}))
	}
	return out
}

// window joins the text of the lines around i.
func window(sc types.Scenario, i int) string {
	lo, hi := i-2, i+3
	if lo < 0 {
		lo = 0
	}
	if hi > len(sc.Dialogue) {
		hi = len(sc.Dialogue)
	}
	parts := make([]string, 0, hi-lo)
	for _, l := range sc.Dialogue[lo:hi] {
		parts = append(parts, l.Text)
	}
	return strings.Join(parts, " | ")
}
