// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"regexp"
	"sort"
)

// VocabularyMapping maps an American term to its British equivalent.
type VocabularyMapping struct {
	American   string
	British    string
	Category   string
	Confidence float64
}

// MinVocabularyConfidence is the lowest mapping confidence reported.
const MinVocabularyConfidence = 0.9

// Vocabulary lists US to UK mappings. Lower confidences mark terms whose
// meaning depends on context.
var Vocabulary = []VocabularyMapping{
	{"elevator", "lift", "Transport", 1.0},
	{"subway", "underground", "Transport", 1.0},
	{"trunk", "boot", "Transport", 0.85},
	{"gas station", "petrol station", "Transport", 1.0},
	{"gas", "petrol", "Transport", 0.8},
	{"truck", "lorry", "Transport", 1.0},
	{"parking lot", "car park", "Transport", 1.0},
	{"freeway", "motorway", "Transport", 1.0},
	{"apartment", "flat", "Housing", 1.0},
	{"first floor", "ground floor", "Housing", 0.9},
	{"restroom", "toilet", "Housing", 1.0},
	{"french fries", "chips", "Food", 1.0},
	{"fries", "chips", "Food", 1.0},
	{"cookie", "biscuit", "Food", 0.95},
	{"cracker", "biscuit", "Food", 0.85},
	{"potato chips", "crisps", "Food", 1.0},
	{"candy", "sweets", "Food", 0.95},
	{"check please", "bill please", "Food", 0.95},
	{"vacation", "holiday", "General", 1.0},
	{"garbage", "rubbish", "General", 1.0},
	{"trash", "rubbish", "General", 1.0},
	{"sidewalk", "pavement", "General", 1.0},
	{"flashlight", "torch", "General", 1.0},
	{"eraser", "rubber", "General", 0.9},
	{"cell phone", "mobile phone", "General", 1.0},
	{"cellphone", "mobile", "General", 1.0},
	{"line up", "queue", "General", 0.85},
	{"fall", "autumn", "General", 0.7},
	{"high school", "secondary school", "Education", 0.9},
	{"elementary school", "primary school", "Education", 1.0},
	{"dollar", "pound", "Money", 0.8},
	{"checkbook", "chequebook", "Money", 1.0},
}

// VocabularyMatch is one American term found in a text.
type VocabularyMatch struct {
	Word    string
	Mapping VocabularyMapping
	Start   int
	End     int
}

type compiledMapping struct {
	re *regexp.Regexp
	m  VocabularyMapping
}

var vocabularyIndex = buildVocabularyIndex()

// buildVocabularyIndex orders mappings longest first so "cell phone" claims
// its span before any shorter term inside it.
func buildVocabularyIndex() []compiledMapping {
	out := make([]compiledMapping, 0, len(Vocabulary))
	for _, m := range Vocabulary {
		out = append(out, compiledMapping{re: phraseRegexp(m.American), m: m})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].m.American) > len(out[j].m.American)
	})
	return out
}

// FindAmericanisms returns non-overlapping American terms in text whose
// mapping confidence is at least MinVocabularyConfidence, in text order.
func FindAmericanisms(text string) []VocabularyMatch {
	var found []VocabularyMatch
	taken := make([]bool, len(text))
	for _, cm := range vocabularyIndex {
		if cm.m.Confidence < MinVocabularyConfidence {
			continue
		}
		for _, loc := range cm.re.FindAllStringIndex(text, -1) {
			if overlaps(taken, loc[0], loc[1]) {
				continue
			}
			for i := loc[0]; i < loc[1]; i++ {
				taken[i] = true
			}
			found = append(found, VocabularyMatch{
				Word:    text[loc[0]:loc[1]],
				Mapping: cm.m,
				Start:   loc[0],
				End:     loc[1],
			})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Start < found[j].Start })
	return found
}

// ReplaceAmericanisms rewrites every match returned by FindAmericanisms.
func ReplaceAmericanisms(text string) string {
	matches := FindAmericanisms(text)
	if len(matches) == 0 {
		return text
	}
	out := make([]byte, 0, len(text))
	last := 0
	for _, m := range matches {
		out = append(out, text[last:m.Start]...)
		out = append(out, MatchCase(m.Word, m.Mapping.British)...)
		last = m.End
	}
	out = append(out, text[last:]...)
	return string(out)
}

func overlaps(taken []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if taken[i] {
			return true
		}
	}
	return false
}
