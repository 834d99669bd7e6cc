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

// repeatWindow is how many following words a repeated word is looked for in.
const repeatWindow = 2

func (s *Suite) grammarContext(sc types.Scenario) []types.Finding {
	var out []types.Finding
	for _, c := range candidates(sc) {
		line, start, end, ok := sc.FillSpan(c.ordinal, c.text)
		if !ok {
			continue
		}
		if f, ok := s.repeatedWord(sc, c, line, start, end); ok {
			out = append(out, f)
		}
		if f, ok := s.doubleNegative(sc, c, line); ok {
			out = append(out, f)
		}
		if f, ok := s.coordinationMismatch(sc, c, line); ok {
			out = append(out, f)
		}
	}
	return out
}

// repeatedWord flags a word of the candidate that repeats within
// repeatWindow words once substituted. When the repetition spans two
// primary answers only the later blank is flagged, so fixing both never
// reintroduces it.
func (s *Suite) repeatedWord(sc types.Scenario, c candidate, line string, start, end int) (types.Finding, bool) {
	toks := rules.Tokens(line)
	for i := range toks {
		for j := i + 1; j < len(toks) && j <= i+repeatWindow; j++ {
			if toks[i].Text != toks[j].Text {
				continue
			}
			inI, inJ := toks[i].Within(start, end), toks[j].Within(start, end)
			if !inI && !inJ {
				continue
			}
			if c.isPrimary() && !inJ {
				continue
			}
			word := toks[i].Text
			return s.emit(sc, draft{
				location:  c.location,
				issue:     "Redundancy - same word repeated",
				current:   c.text,
				suggested: redundancyFix(c.text, word),
				context:   sc.Dialogue[mustBlank(sc, c.ordinal).Line].Text,
				reasoning: fmt.Sprintf("%q creates repetition: %q", c.text, line),
				input:     confidence.Input{IssueType: confidence.Redundancy},
			}), true
		}
	}
	return types.Finding{}, false
}

// redundancyFix removes a repetition inside the answer itself, or swaps the
// repeated word for a synonym. It returns "" when neither applies.
func redundancyFix(answer, word string) string {
	if dedup := collapseRepeats(answer); dedup != answer {
		return dedup
	}
	syn, ok := rules.Synonyms[word]
	if !ok {
		return ""
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	loc := re.FindStringIndex(answer)
	if loc == nil {
		return ""
	}
	return answer[:loc[0]] + rules.MatchCase(answer[loc[0]:loc[1]], syn) + answer[loc[1]:]
}

// collapseRepeats drops immediately repeated words: "quite quite clear"
// becomes "quite clear".
func collapseRepeats(text string) string {
	fields := strings.Fields(text)
	out := fields[:0:0]
	for i, f := range fields {
		if i > 0 && strings.EqualFold(f, fields[i-1]) {
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

// doubleNegative flags a candidate that carries a negator into a sentence
// that then holds two or more. There is no mechanical rewrite, so the
// finding has no suggested value.
func (s *Suite) doubleNegative(sc types.Scenario, c candidate, line string) (types.Finding, bool) {
	if len(rules.Negators(c.text)) == 0 {
		return types.Finding{}, false
	}
	negs := rules.Negators(line)
	if len(negs) < 2 {
		return types.Finding{}, false
	}
	return s.emit(sc, draft{
		location:  c.location,
		issue:     "Double negative",
		current:   c.text,
		context:   line,
		reasoning: fmt.Sprintf("Sentence holds %d negatives (%s); remove one negative or rephrase as positive", len(negs), strings.Join(negs, ", ")),
		input:     confidence.Input{IssueType: confidence.DoubleNegative},
	}), true
}

// coordinationMismatch flags an -ly adverb or a comparative coordinated
// with "and"/"or" against a word of another class.
func (s *Suite) coordinationMismatch(sc types.Scenario, c candidate, line string) (types.Finding, bool) {
	ans := strings.ToLower(strings.TrimSpace(c.text))
	if strings.ContainsAny(ans, " \t") {
		return types.Finding{}, false
	}
	adverb := len(ans) > 3 && strings.HasSuffix(ans, "ly")
	comparative := !adverb && len(ans) > 4 && isComparative(ans)
	if !adverb && !comparative {
		return types.Finding{}, false
	}

	q := regexp.QuoteMeta(ans)
	re := regexp.MustCompile(`(?i)\b` + q + `\s+(?:and|or)\s+([A-Za-z]+)|\b([A-Za-z]+)\s+(?:and|or)\s+` + q + `\b`)
	m := re.FindStringSubmatch(line)
	if m == nil {
		return types.Finding{}, false
	}
	other := strings.ToLower(m[1] + m[2])

	d := draft{
		location: c.location,
		current:  c.text,
		context:  line,
		input:    confidence.Input{IssueType: confidence.POSMismatch},
	}
	switch {
	case adverb && !strings.HasSuffix(other, "ly"):
		d.issue = "POS mismatch in coordination"
		d.reasoning = fmt.Sprintf("Adverb %q coordinates with non-adverb %q", c.text, other)
		if stem := strings.TrimSuffix(c.text, "ly"); len(stem) >= 3 {
			d.suggested = stem
		}
	case comparative && !isComparative(other):
		d.issue = "POS mismatch in coordination"
		d.reasoning = fmt.Sprintf("Comparative %q coordinates with non-comparative %q", c.text, other)
	default:
		return types.Finding{}, false
	}
	return s.emit(sc, d), true
}

func isComparative(w string) bool {
	return strings.HasSuffix(w, "er") || strings.HasSuffix(w, "est")
}

func mustBlank(sc types.Scenario, ordinal int) types.Blank {
	b, _ := sc.Blank(ordinal)
	return b
}
