// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"fmt"
	"unicode/utf8"

	"github.com/pdiddy/dialogue-audit/internal/confidence"
	"github.com/pdiddy/dialogue-audit/internal/rules"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

const (
	minLengthRatio = 0.5
	maxLengthRatio = 2.0
)

// alternativesQuality checks each alternative against its primary answer:
// register, British spelling and vocabulary, and length.
func (s *Suite) alternativesQuality(sc types.Scenario) []types.Finding {
	var out []types.Finding
	for _, c := range candidates(sc) {
		if c.isPrimary() || c.primary == "" {
			continue
		}
		pr, ar := rules.AnalyzeRegister(c.primary), rules.AnalyzeRegister(c.text)
		if pr.Distance(ar) > 1 {
			out = append(out, s.emit(sc, draft{
				location:  c.location,
				issue:     "Alternative has a different tone than the primary answer",
				current:   c.text,
				context:   fmt.Sprintf("Primary: %q", c.primary),
				reasoning: fmt.Sprintf("Alternative %q (%s) does not match the primary answer's tone (%s)", c.text, ar, pr),
				input:     confidence.Input{IssueType: confidence.AlternativeQuality},
				scale:     0.7,
			}))
		}

		f := field{c.location, c.text}
		if finding, ok := s.spellingFinding(sc, f, "Alternative uses non-British spelling"); ok {
			out = append(out, finding)
		}
		if finding, ok := s.vocabularyFinding(sc, f, "Alternative uses American vocabulary"); ok {
			out = append(out, finding)
		}

		pl, al := utf8.RuneCountInString(c.primary), utf8.RuneCountInString(c.text)
		if ratio := float64(al) / float64(pl); ratio < minLengthRatio || ratio > maxLengthRatio {
			out = append(out, s.emit(sc, draft{
				location:  c.location,
				issue:     "Alternative length differs sharply from the primary answer",
				current:   c.text,
				context:   fmt.Sprintf("Primary: %q (%d chars) vs alternative %q (%d chars)", c.primary, pl, c.text, al),
				reasoning: fmt.Sprintf("Alternative is %.0f%% of the primary's length, which may indicate a different meaning", ratio*100),
				input:     confidence.Input{IssueType: confidence.AlternativeQuality},
				scale:     0.5,
			}))
		}
	}
	return out
}
