// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/dialogue-audit/internal/confidence"
	"github.com/pdiddy/dialogue-audit/internal/rules"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

const minInsightLength = 20

// deepDiveQuality checks the teaching content: insights must explain usage,
// follow British spelling and say enough, and each phrase must appear in
// its dialogue line once the blanks are filled.
func (s *Suite) deepDiveQuality(sc types.Scenario) []types.Finding {
	var out []types.Finding
	for i, dd := range sc.DeepDive {
		insightLoc := types.DeepDiveLocation(i, "insight")

		if rules.IsDefinitionOnly(dd.Insight) {
			out = append(out, s.emit(sc, draft{
				location:  insightLoc,
				issue:     "Insight reads like a definition instead of a usage pattern",
				current:   dd.Insight,
				reasoning: "Insights should explain when and how native speakers use the phrase",
				input:     confidence.Input{IssueType: confidence.AlternativeQuality},
				scale:     0.7,
			}))
		}

		if f, ok := s.spellingFinding(sc, field{insightLoc, dd.Insight}, "Insight uses non-British spelling"); ok {
			out = append(out, f)
		}

		if b, ok := sc.Blank(dd.Index); ok && strings.TrimSpace(dd.Phrase) != "" {
			line := sc.FilledLine(b.Line)
			if !strings.Contains(strings.ToLower(line), strings.ToLower(dd.Phrase)) {
				out = append(out, s.emit(sc, draft{
					location:  types.DeepDiveLocation(i, "phrase"),
					issue:     "Phrase does not appear in the dialogue line",
					current:   dd.Phrase,
					context:   fmt.Sprintf("Line: %q", line),
					reasoning: fmt.Sprintf("Learners look for %q in the line they just completed", dd.Phrase),
					input:     confidence.Input{IssueType: confidence.AlternativeQuality},
					scale:     0.8,
				}))
			}
		}

		if n := utf8.RuneCountInString(strings.TrimSpace(dd.Insight)); n > 0 && n < minInsightLength {
			out = append(out, s.emit(sc, draft{
				location:  insightLoc,
				issue:     "Insight is too brief to teach anything",
				current:   dd.Insight,
				reasoning: fmt.Sprintf("Insight has %d characters; at least %d are expected", n, minInsightLength),
				input:     confidence.Input{IssueType: confidence.AlternativeQuality},
				scale:     0.6,
			}))
		}
	}
	return out
}
