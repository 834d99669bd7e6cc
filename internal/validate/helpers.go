// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"strings"

	"github.com/pdiddy/dialogue-audit/internal/confidence"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

// candidate is one answer that can fill a blank: the primary answer or one
// of its alternatives.
type candidate struct {
	ordinal  int
	alt      int // -1 for the primary answer
	text     string
	location string
	primary  string
}

func (c candidate) isPrimary() bool { return c.alt < 0 }

// candidates enumerates every non-empty primary answer and alternative in
// answer-variation order.
func candidates(sc types.Scenario) []candidate {
	var out []candidate
	for _, av := range sc.AnswerVariations {
		if strings.TrimSpace(av.Answer) != "" {
			out = append(out, candidate{
				ordinal:  av.Index,
				alt:      -1,
				text:     av.Answer,
				location: types.AnswerLocation(av.Index),
				primary:  av.Answer,
			})
		}
		for i, a := range av.Alternatives {
			if strings.TrimSpace(a) == "" {
				continue
			}
			out = append(out, candidate{
				ordinal:  av.Index,
				alt:      i,
				text:     a,
				location: types.AlternativeLocation(av.Index, i),
				primary:  av.Answer,
			})
		}
	}
	return out
}

// primaries is candidates restricted to primary answers.
func primaries(sc types.Scenario) []candidate {
	var out []candidate
	for _, c := range candidates(sc) {
		if c.isPrimary() {
			out = append(out, c)
		}
	}
	return out
}

// sentence returns the dialogue line for a candidate with the candidate in
// place, or the empty string when the blank does not exist.
func sentence(sc types.Scenario, c candidate) string {
	line, _ := sc.Fill(c.ordinal, c.text)
	return line
}

// draft collects the parts of a finding before it is scored.
type draft struct {
	location     string
	issue        string
	current      string
	suggested    string
	alternatives []string
	context      string
	reasoning    string
	input        confidence.Input
	// scale multiplies the scored confidence for subjective checks.
	scale float64
}

// emit scores d and builds the finding. Affected text, suggestion, context
// and category default from the draft and scenario.
func (s *Suite) emit(sc types.Scenario, d draft) types.Finding {
	in := d.input
	if in.AffectedText == "" {
		in.AffectedText = d.current
	}
	if in.SuggestedFix == "" {
		in.SuggestedFix = d.suggested
	}
	if in.Context == "" {
		in.Context = d.context
	}
	in.Category = sc.Category
	r := s.scorer.Score(in)

	score := r.Score
	if d.scale > 0 {
		score = round2(score * d.scale)
	}
	reasoning := d.reasoning
	if reasoning == "" {
		reasoning = r.Reason
	}
	return types.Finding{
		ScenarioID:     sc.ID,
		Location:       d.location,
		Issue:          d.issue,
		IssueType:      string(in.IssueType),
		CurrentValue:   d.current,
		SuggestedValue: d.suggested,
		Alternatives:   d.alternatives,
		Context:        d.context,
		Confidence:     score,
		Reasoning:      reasoning,
	}
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

func lowerFirst(s string) string {
	if s == "" || strings.HasPrefix(s, "I ") || strings.HasPrefix(s, "I'") {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
