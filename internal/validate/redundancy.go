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

var reSpaces = regexp.MustCompile(`\s{2,}`)

// contextualRedundancy flags pleonasms that appear once a candidate is in
// its sentence. When the redundant word lives in the candidate the
// suggestion drops it.
func (s *Suite) contextualRedundancy(sc types.Scenario) []types.Finding {
	var out []types.Finding
	for _, c := range candidates(sc) {
		line, start, end, ok := sc.FillSpan(c.ordinal, c.text)
		if !ok {
			continue
		}
		for _, m := range rules.FindPleonasms(line) {
			loc := strings.Index(strings.ToLower(line), strings.ToLower(m.Match))
			if loc < 0 || loc+len(m.Match) <= start || loc >= end {
				// The pleonasm is in the line regardless of this candidate.
				continue
			}
			out = append(out, s.emit(sc, draft{
				location:  c.location,
				issue:     fmt.Sprintf("Redundant expression %q", m.Match),
				current:   c.text,
				suggested: dropWord(c.text, m.Pleonasm.Redundant),
				context:   line,
				reasoning: fmt.Sprintf("%q repeats meaning; %q is enough", m.Match, m.Pleonasm.Fixed),
				input:     confidence.Input{IssueType: confidence.RedundantPhrase},
			}))
		}
	}
	return out
}

// dropWord removes word from text on word boundaries. It returns "" when
// the word is absent or removing it leaves nothing.
func dropWord(text, word string) string {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	if !re.MatchString(text) {
		return ""
	}
	return strings.TrimSpace(reSpaces.ReplaceAllString(re.ReplaceAllString(text, ""), " "))
}
