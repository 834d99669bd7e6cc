// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/dialogue-audit/internal/confidence"
	"github.com/pdiddy/dialogue-audit/internal/rules"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

var reDirective = regexp.MustCompile(`(?i)^\s*(you\s+(should|must|need\s+to|have\s+to)|we\s+(must|need\s+to)|i\s+want|do\s+it|send|finish|fix)\b`)

// tonality compares each answer's register with what its category expects
// and each alternative's register with its primary answer.
func (s *Suite) tonality(sc types.Scenario) []types.Finding {
	var out []types.Finding
	for _, c := range candidates(sc) {
		if !c.isPrimary() {
			pr, ar := rules.AnalyzeRegister(c.primary), rules.AnalyzeRegister(c.text)
			if pr.Distance(ar) > 1 {
				out = append(out, s.emit(sc, draft{
					location:  c.location,
					issue:     "Tone inconsistency: alternative has a different register than the primary answer",
					current:   c.text,
					context:   fmt.Sprintf("Primary: %q (%s), alternative: %q (%s)", c.primary, pr, c.text, ar),
					reasoning: fmt.Sprintf("Primary is %s, alternative is %s", pr, ar),
					input:     confidence.Input{IssueType: confidence.Tonality},
					scale:     0.8,
				}))
			}
			continue
		}

		check := rules.CheckTone(c.text, sc.Category)
		if check.Distance > 1 {
			out = append(out, s.emit(sc, draft{
				location:  c.location,
				issue:     fmt.Sprintf("Tonality mismatch: detected %s, expected %s", check.Detected, registers(check.Expected)),
				current:   c.text,
				context:   sentence(sc, c),
				reasoning: fmt.Sprintf("%q is too %s for the %s category", c.text, strings.ToLower(check.Detected.String()), sc.Category),
				input:     confidence.Input{IssueType: confidence.Tonality},
			}))
		}

		if sc.Category == "Workplace" && !rules.ContainsHedging(c.text) && reDirective.MatchString(c.text) {
			out = append(out, s.emit(sc, draft{
				location:     c.location,
				issue:        "Missing British hedging in a professional context",
				current:      c.text,
				alternatives: hedged(c.text),
				context:      "Category: " + sc.Category,
				reasoning:    "A direct instruction at work usually softens with a hedge such as \"I might suggest\"",
				input:        confidence.Input{IssueType: confidence.Tonality},
				scale:        0.7,
			}))
		}
	}
	return out
}

func hedged(answer string) []string {
	a := lowerFirst(strings.TrimRight(answer, ".!"))
	return []string{
		"Perhaps " + a,
		"I might suggest " + a,
		"I was wondering if " + a,
	}
}

func registers(rs []rules.Register) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.String()
	}
	return strings.Join(parts, " or ")
}
