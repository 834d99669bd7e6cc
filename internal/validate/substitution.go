// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/pdiddy/dialogue-audit/internal/confidence"
	"github.com/pdiddy/dialogue-audit/internal/rules"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

const (
	structureCertainty = 0.75
	semanticCertainty  = 0.65
	formalityGap       = 0.6
	minSentenceWords   = 3
)

// formalCategories expect no slang in any answer.
var formalCategories = map[string]bool{"Workplace": true, "Advanced": true}

// contextualSubstitution checks that every answer of a blank with
// alternatives yields a well-formed sentence, and that each alternative
// stays close to the primary answer.
func (s *Suite) contextualSubstitution(sc types.Scenario) []types.Finding {
	var out []types.Finding
	for _, c := range candidates(sc) {
		av, _ := sc.Answer(c.ordinal)
		if len(av.Alternatives) == 0 {
			continue
		}
		line, start, end, ok := sc.FillSpan(c.ordinal, c.text)
		if !ok {
			continue
		}
		context := sc.Dialogue[mustBlank(sc, c.ordinal).Line].Text

		if reason := structureProblem(c.text, line, start, end); reason != "" {
			issue := "Alternative does not fit context"
			if c.isPrimary() {
				issue = "Main answer does not fit context"
			}
			out = append(out, s.emit(sc, draft{
				location:  c.location,
				issue:     issue,
				current:   c.text,
				context:   context,
				reasoning: fmt.Sprintf("%s. Sentence: %q", reason, line),
				input:     confidence.Input{IssueType: confidence.ContextualFit, RuleCertainty: structureCertainty},
			}))
		}
		if c.isPrimary() {
			continue
		}
		if reason := semanticProblem(sc.Category, line, c.text, c.primary); reason != "" {
			out = append(out, s.emit(sc, draft{
				location:  c.location,
				issue:     "Alternative does not maintain meaning",
				current:   c.text,
				context:   context,
				reasoning: fmt.Sprintf("%s. Alternative %q vs main answer %q", reason, c.text, c.primary),
				input:     confidence.Input{IssueType: confidence.ContextualFit, RuleCertainty: semanticCertainty},
			}))
		}
	}
	return out
}

// structureProblem describes the first structural fault the candidate
// introduces into line, or returns "".
func structureProblem(answer, line string, start, end int) string {
	toks := rules.Tokens(line)
	for i := range toks {
		w := toks[i].Text
		if rules.Stopwords[w] || len(w) <= 2 {
			continue
		}
		for j := i + 1; j < len(toks) && j <= i+repeatWindow; j++ {
			if toks[j].Text == w && (toks[i].Within(start, end) || toks[j].Within(start, end)) {
				return fmt.Sprintf("Duplicate word %q creates redundancy", w)
			}
		}
	}
	if len(rules.Negators(answer)) > 0 {
		if n := len(rules.Negators(line)); n >= 2 {
			return fmt.Sprintf("Double negative detected (%d negations found)", n)
		}
	}
	if strings.Count(answer, `"`)%2 != 0 || strings.Count(answer, "(") != strings.Count(answer, ")") {
		return "Unmatched punctuation (quotes or parentheses)"
	}
	if start == 0 && rules.StartsWithConjunction(line) {
		return "Sentence starts with conjunction (possible fragment)"
	}
	if n := len(strings.Fields(line)); n < minSentenceWords {
		return fmt.Sprintf("Sentence too short (%d words)", n)
	}
	return ""
}

// semanticProblem compares an alternative with the primary answer.
func semanticProblem(category, line, alt, primary string) string {
	mc, ac := rules.ClassifyWord(primary), rules.ClassifyWord(alt)
	if mc != rules.ClassUnknown && ac != rules.ClassUnknown && mc != ac {
		return fmt.Sprintf("Alternative %q reads as a %s, but main answer %q is a %s", alt, ac, primary, mc)
	}
	mf, af := rules.WordFormality(primary), rules.WordFormality(alt)
	if math.Abs(mf-af) > formalityGap {
		return fmt.Sprintf("Formality mismatch: %q (%.1f) vs %q (%.1f)", primary, mf, alt, af)
	}
	if (formalCategories[category] || rules.IsFormalContext(line)) && rules.IsSlang(alt) {
		return fmt.Sprintf("Slang term %q inappropriate in formal context", alt)
	}
	return ""
}
