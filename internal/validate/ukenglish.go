// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"fmt"
	"strings"

	"github.com/pdiddy/dialogue-audit/internal/confidence"
	"github.com/pdiddy/dialogue-audit/internal/rules"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

// field is a free-text scenario field the UK English validators inspect.
type field struct {
	location string
	text     string
}

// textFields lists answers, alternatives, deep dive insights and dialogue
// lines. Dialogue text is inspected with its blanks in place.
func textFields(sc types.Scenario) []field {
	var out []field
	for _, c := range candidates(sc) {
		out = append(out, field{c.location, c.text})
	}
	for i, dd := range sc.DeepDive {
		if dd.Insight != "" {
			out = append(out, field{types.DeepDiveLocation(i, "insight"), dd.Insight})
		}
	}
	for i, line := range sc.Dialogue {
		out = append(out, field{types.DialogueLocation(i), line.Text})
	}
	return out
}

func (s *Suite) ukSpelling(sc types.Scenario) []types.Finding {
	var out []types.Finding
	for _, f := range textFields(sc) {
		if finding, ok := s.spellingFinding(sc, f, "Non-British spelling"); ok {
			out = append(out, finding)
		}
	}
	return out
}

// spellingFinding reports every American spelling in one field as a single
// finding. The field's confidence is that of its least certain word.
func (s *Suite) spellingFinding(sc types.Scenario, f field, issue string) (types.Finding, bool) {
	issues := rules.FindSpellingIssues(f.text)
	if len(issues) == 0 {
		return types.Finding{}, false
	}
	var (
		best    types.Finding
		changes []string
	)
	for i, is := range issues {
		changes = append(changes, fmt.Sprintf("%q → %q (%s)", is.Word, is.Fixed, is.Rule.Name))
		cand := s.emit(sc, draft{
			location:  f.location,
			issue:     issue,
			current:   f.text,
			suggested: rules.FixSpelling(f.text),
			context:   "Rule: " + is.Rule.Name,
			input: confidence.Input{
				IssueType:     confidence.BritishSpelling,
				AffectedText:  is.Word,
				SuggestedFix:  is.Fixed,
				RuleCertainty: is.Rule.Confidence,
				HasException:  is.HasException,
			},
		})
		if i == 0 || cand.Confidence < best.Confidence {
			best = cand
		}
	}
	best.Reasoning = "Use British spelling: " + strings.Join(changes, ", ")
	return best, true
}

func (s *Suite) ukVocabulary(sc types.Scenario) []types.Finding {
	var out []types.Finding
	for _, f := range textFields(sc) {
		if finding, ok := s.vocabularyFinding(sc, f, "American vocabulary"); ok {
			out = append(out, finding)
		}
	}
	return out
}

func (s *Suite) vocabularyFinding(sc types.Scenario, f field, issue string) (types.Finding, bool) {
	matches := rules.FindAmericanisms(f.text)
	if len(matches) == 0 {
		return types.Finding{}, false
	}
	var (
		best    types.Finding
		changes []string
	)
	for i, m := range matches {
		changes = append(changes, fmt.Sprintf("%q → %q", m.Word, m.Mapping.British))
		cand := s.emit(sc, draft{
			location:  f.location,
			issue:     issue,
			current:   f.text,
			suggested: rules.ReplaceAmericanisms(f.text),
			context:   "British: " + m.Mapping.British,
			input: confidence.Input{
				IssueType:     confidence.UKVocabulary,
				AffectedText:  m.Word,
				SuggestedFix:  m.Mapping.British,
				RuleCertainty: m.Mapping.Confidence,
			},
		})
		if i == 0 || cand.Confidence < best.Confidence {
			best = cand
		}
	}
	best.Reasoning = "Use British vocabulary: " + strings.Join(changes, ", ")
	return best, true
}
