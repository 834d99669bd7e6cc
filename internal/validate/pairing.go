// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/pdiddy/dialogue-audit/internal/confidence"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

// DeepDiveCategories are the accepted deep dive categories.
var DeepDiveCategories = []string{"pronunciation", "grammar", "vocabulary", "culture", "usage", "idiom", "natural-english"}

const (
	// nearDuplicate is the Jaro-Winkler similarity at which two distinct
	// alternatives count as the same answer.
	nearDuplicate = 0.97
	// categoryMatch is the similarity needed to suggest a category.
	categoryMatch = 0.85
	rootLength    = 3
)

func (s *Suite) blankAnswerPairing(sc types.Scenario) []types.Finding {
	var out []types.Finding
	blanks := len(sc.Blanks())

	for i, dd := range sc.DeepDive {
		av, ok := sc.Answer(dd.Index)
		if !ok {
			out = append(out, s.emit(sc, draft{
				location:  types.DeepDiveLocation(i, ""),
				issue:     "DeepDive references non-existent blank index",
				current:   "index: " + strconv.Itoa(dd.Index),
				context:   dd.Phrase,
				reasoning: fmt.Sprintf("DeepDive index %d has no matching answer variation. Valid indices: %s", dd.Index, answerIndices(sc)),
				input:     confidence.Input{IssueType: confidence.DataIntegrity},
			}))
		} else if a := strings.ToLower(av.Answer); !strings.Contains(strings.ToLower(dd.Phrase), a) && !strings.Contains(strings.ToLower(dd.Insight), a) {
			out = append(out, s.emit(sc, draft{
				location:  types.DeepDiveLocation(i, "phrase"),
				issue:     "DeepDive does not reference the answer",
				current:   dd.Phrase,
				context:   fmt.Sprintf("Answer: %q, DeepDive phrase: %q", av.Answer, dd.Phrase),
				reasoning: fmt.Sprintf("DeepDive should explain %q but mentions it in neither phrase nor insight", av.Answer),
				input:     confidence.Input{IssueType: confidence.SemanticAlignment},
			}))
		}

		if dd.Category != "" && !validCategory(dd.Category) {
			out = append(out, s.emit(sc, draft{
				location:  types.DeepDiveLocation(i, "category"),
				issue:     "Invalid deep dive category",
				current:   dd.Category,
				suggested: nearestCategory(dd.Category),
				context:   "Valid categories: " + strings.Join(DeepDiveCategories, ", "),
				reasoning: fmt.Sprintf("Category %q is not recognised", dd.Category),
				input:     confidence.Input{IssueType: confidence.InvalidCategory, RuleCertainty: 0.85},
			}))
		}

		if strings.TrimSpace(dd.Insight) == "" {
			out = append(out, s.emit(sc, draft{
				location:  types.DeepDiveLocation(i, "insight"),
				issue:     "DeepDive insight is empty",
				current:   dd.Insight,
				context:   fmt.Sprintf("Phrase: %q", dd.Phrase),
				reasoning: "DeepDive must have an insight explaining the teaching point",
				input:     confidence.Input{IssueType: confidence.MissingContent, AffectedText: "insight"},
			}))
		}
	}

	for _, av := range sc.AnswerVariations {
		if av.Index < 1 || av.Index > blanks {
			out = append(out, s.emit(sc, draft{
				location:  types.AnswerLocation(av.Index),
				issue:     "Answer index beyond blank count",
				current:   av.Answer,
				reasoning: fmt.Sprintf("Index %d but the dialogue has %d blanks", av.Index, blanks),
				input:     confidence.Input{IssueType: confidence.DataIntegrity},
			}))
		}
		out = append(out, s.duplicateAlternatives(sc, av)...)
		if f, ok := s.lowDiversity(sc, av); ok {
			out = append(out, f)
		}
	}
	return out
}

// duplicateAlternatives flags alternatives that repeat the primary answer
// or an earlier alternative, exactly or near enough to read the same.
func (s *Suite) duplicateAlternatives(sc types.Scenario, av types.AnswerVariation) []types.Finding {
	var out []types.Finding
	seen := []string{norm(av.Answer)}
	for i, alt := range av.Alternatives {
		n := norm(alt)
		var (
			exact, near bool
			closest     string
		)
		for _, prev := range seen {
			if prev == n {
				exact = true
				break
			}
			if matchr.JaroWinkler(prev, n, false) >= nearDuplicate {
				near, closest = true, prev
			}
		}
		seen = append(seen, n)
		switch {
		case exact:
			out = append(out, s.emit(sc, draft{
				location:  types.AlternativeLocation(av.Index, i),
				issue:     "Duplicate alternative (same as main answer or another alternative)",
				current:   alt,
				context:   fmt.Sprintf("Main answer: %q", av.Answer),
				reasoning: fmt.Sprintf("Alternative %q is identical to the main answer or another alternative", alt),
				input:     confidence.Input{IssueType: confidence.DuplicateAlternative},
			}))
		case near:
			out = append(out, s.emit(sc, draft{
				location:  types.AlternativeLocation(av.Index, i),
				issue:     "Near-duplicate alternative",
				current:   alt,
				context:   fmt.Sprintf("Main answer: %q", av.Answer),
				reasoning: fmt.Sprintf("Alternative %q differs from %q only trivially", alt, closest),
				input:     confidence.Input{IssueType: confidence.DuplicateAlternative, RuleCertainty: 0.9},
			}))
		}
	}
	return out
}

// lowDiversity flags a blank whose alternatives all share the primary
// answer's root.
func (s *Suite) lowDiversity(sc types.Scenario, av types.AnswerVariation) (types.Finding, bool) {
	primary := norm(av.Answer)
	if len(av.Alternatives) < 2 || len(primary) < rootLength {
		return types.Finding{}, false
	}
	root := primary[:rootLength]
	for _, alt := range av.Alternatives {
		if !strings.HasPrefix(norm(alt), root) {
			return types.Finding{}, false
		}
	}
	return s.emit(sc, draft{
		location:  types.AnswerLocation(av.Index),
		issue:     "Alternatives lack sufficient diversity",
		current:   av.Answer,
		context:   "All answers: " + strings.Join(append([]string{av.Answer}, av.Alternatives...), ", "),
		reasoning: fmt.Sprintf("Every alternative shares the root %q", root),
		input:     confidence.Input{IssueType: confidence.LowDiversity, RuleCertainty: 0.9},
	}), true
}

func validCategory(c string) bool {
	for _, v := range DeepDiveCategories {
		if c == v {
			return true
		}
	}
	return false
}

// nearestCategory returns the closest accepted category, or "" when none
// is similar enough.
func nearestCategory(c string) string {
	best, score := "", 0.0
	for _, v := range DeepDiveCategories {
		if s := matchr.JaroWinkler(strings.ToLower(c), v, false); s > score {
			best, score = v, s
		}
	}
	if score < categoryMatch {
		return ""
	}
	return best
}

func answerIndices(sc types.Scenario) string {
	idx := make([]int, 0, len(sc.AnswerVariations))
	for _, av := range sc.AnswerVariations {
		idx = append(idx, av.Index)
	}
	sort.Ints(idx)
	parts := make([]string, len(idx))
	for i, n := range idx {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
