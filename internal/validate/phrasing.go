// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"fmt"
	"strings"

	"github.com/pdiddy/dialogue-audit/internal/confidence"
	"github.com/pdiddy/dialogue-audit/internal/rules"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

// The phrasing validators look only at primary answers and never propose a
// single replacement; their natural rewrites travel as alternatives.

func (s *Suite) naturalPatterns(sc types.Scenario) []types.Finding {
	var out []types.Finding
	for _, c := range primaries(sc) {
		for _, m := range rules.FindTextbookPatterns(c.text) {
			sugg := m.Pattern.Suggestions
			out = append(out, s.emit(sc, draft{
				location:     c.location,
				issue:        m.Pattern.Issue,
				current:      c.text,
				alternatives: sugg,
				context:      sentence(sc, c),
				reasoning:    fmt.Sprintf("%q sounds textbook-like. Native speakers would say: %s", m.Match, strings.Join(firstN(sugg, 2), " or ")),
				input:        confidence.Input{IssueType: confidence.TextbookPhrase, AffectedText: m.Match},
			}))
		}
	}
	return out
}

func (s *Suite) examLanguage(sc types.Scenario) []types.Finding {
	var out []types.Finding
	for _, c := range primaries(sc) {
		if a := rules.AnalyzeExamLanguage(c.text); a.UsesExam() {
			out = append(out, s.emit(sc, draft{
				location:     c.location,
				issue:        fmt.Sprintf("Uses formal exam language (%d pattern(s))", len(a.Matches)),
				current:      c.text,
				alternatives: a.Suggestions(),
				context:      sentence(sc, c),
				reasoning:    "Speaking-test phrases such as \"In my opinion\" read as exam language; conversation is more direct",
				input:        confidence.Input{IssueType: confidence.ExamLanguage},
				scale:        0.75,
			}))
		}
		if ms := rules.FindRoboticPoliteness(c.text); len(ms) > 0 {
			out = append(out, s.emit(sc, draft{
				location:     c.location,
				issue:        "Uses robotic politeness",
				current:      c.text,
				alternatives: rules.Suggestions(ms),
				context:      "Contains: " + ms[0].Match,
				reasoning:    "Native speakers rarely apologise or thank this formally in conversation",
				input:        confidence.Input{IssueType: confidence.ExamLanguage},
				scale:        0.85,
			}))
		}
	}
	return out
}

func (s *Suite) writtenVsSpoken(sc types.Scenario) []types.Finding {
	var out []types.Finding
	for _, c := range primaries(sc) {
		ms := rules.FindWrittenPatterns(c.text)
		if len(ms) == 0 {
			continue
		}
		quoted := make([]string, len(ms))
		for i, m := range ms {
			quoted[i] = fmt.Sprintf("%q", m.Match)
		}
		out = append(out, s.emit(sc, draft{
			location:     c.location,
			issue:        "Sounds written, not spoken: " + strings.Join(quoted, ", "),
			current:      c.text,
			alternatives: rules.Suggestions(ms),
			context:      sentence(sc, c),
			reasoning:    "Essay language; in conversation a native speaker would use a simpler form",
			input:        confidence.Input{IssueType: confidence.WrittenRegister},
			scale:        0.8,
		}))
	}
	return out
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
