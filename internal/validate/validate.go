// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate implements the linguistic validators. Each validator is
// a pure function of one scenario that substitutes candidate answers into
// their blanks and reports the problems that only appear in context.
package validate

import (
	"strings"

	"github.com/pdiddy/dialogue-audit/internal/confidence"
	"github.com/pdiddy/dialogue-audit/pkg/types"
)

// Func inspects one scenario and returns its findings.
type Func func(s types.Scenario) []types.Finding

// Validator names. They double as keys of the conflict priority table.
const (
	GrammarContext         = "Grammar Context"
	UKSpelling             = "UK English Spelling"
	UKVocabulary           = "UK English Vocabulary"
	ContextualSubstitution = "Contextual Substitution"
	BlankAnswerPairing     = "Blank-Answer Pairing"
	ChunkCompliance        = "Chunk Compliance"
	DialogueFlow           = "Dialogue Flow"
	AlternativesQuality    = "Alternatives Quality"
	ContextualRedundancy   = "Contextual Redundancy"
	TonalityRegister       = "Tonality & Register"
	NaturalPatterns        = "Natural Patterns"
	DeepDiveQuality        = "Deep Dive Quality"
	ExamLanguage           = "Exam Language"
	WrittenVsSpoken        = "Written vs Spoken"
)

// Registrar accepts validators under unique names.
type Registrar interface {
	Register(name string, fn Func) error
}

// Named pairs a validator with its name.
type Named struct {
	Name string
	Fn   Func
}

// Suite holds the scorer the validators grade their findings with. A Suite
// is immutable and safe for concurrent use.
type Suite struct {
	scorer *confidence.Scorer
}

// NewSuite returns a Suite scoring with scorer, or the default scorer when
// scorer is nil.
func NewSuite(scorer *confidence.Scorer) *Suite {
	if scorer == nil {
		scorer = confidence.Default()
	}
	return &Suite{scorer: scorer}
}

// Validators returns the full validator set in priority order. Every
// returned Func stamps its name on its findings and reports at most one
// finding per location.
func (s *Suite) Validators() []Named {
	set := []Named{
		{GrammarContext, s.grammarContext},
		{UKSpelling, s.ukSpelling},
		{UKVocabulary, s.ukVocabulary},
		{ContextualSubstitution, s.contextualSubstitution},
		{BlankAnswerPairing, s.blankAnswerPairing},
		{ChunkCompliance, s.chunkCompliance},
		{DialogueFlow, s.dialogueFlow},
		{AlternativesQuality, s.alternativesQuality},
		{ContextualRedundancy, s.contextualRedundancy},
		{TonalityRegister, s.tonality},
		{NaturalPatterns, s.naturalPatterns},
		{DeepDiveQuality, s.deepDiveQuality},
		{ExamLanguage, s.examLanguage},
		{WrittenVsSpoken, s.writtenVsSpoken},
	}
	for i := range set {
		set[i].Fn = wrap(set[i].Name, set[i].Fn, s.scorer.Thresholds())
	}
	return set
}

// Default registers the full validator set with r, scoring with scorer
// (nil selects the default thresholds).
func Default(r Registrar, scorer *confidence.Scorer) error {
	for _, v := range NewSuite(scorer).Validators() {
		if err := r.Register(v.Name, v.Fn); err != nil {
			return err
		}
	}
	return nil
}

func wrap(name string, fn Func, th types.Thresholds) Func {
	return func(sc types.Scenario) []types.Finding {
		fs := mergeByLocation(fn(sc), th)
		for i := range fs {
			fs[i].ValidatorName = name
		}
		return fs
	}
}

// mergeByLocation folds findings that share a location into one. The most
// confident finding supplies the values, except that within one confidence
// tier a finding with a suggested value wins over one without. The others
// contribute their issue and reasoning text.
func mergeByLocation(fs []types.Finding, th types.Thresholds) []types.Finding {
	if len(fs) < 2 {
		return fs
	}
	index := make(map[string]int, len(fs))
	var out []types.Finding
	for _, f := range fs {
		i, ok := index[f.Location]
		if !ok {
			index[f.Location] = len(out)
			out = append(out, f)
			continue
		}
		base, other := out[i], f
		if prefer(other, base, th) {
			base, other = other, base
		}
		base.Issue = joinDistinct(base.Issue, other.Issue)
		base.Reasoning = joinDistinct(base.Reasoning, other.Reasoning)
		base.Alternatives = appendDistinct(base.Alternatives, other.Alternatives...)
		out[i] = base
	}
	return out
}

// prefer reports whether a should supply the merged values over b.
func prefer(a, b types.Finding, th types.Thresholds) bool {
	if th.Level(a.Confidence) == th.Level(b.Confidence) && (a.SuggestedValue == "") != (b.SuggestedValue == "") {
		return a.SuggestedValue != ""
	}
	return a.Confidence > b.Confidence
}

func joinDistinct(a, b string) string {
	switch {
	case b == "" || strings.Contains(a, b):
		return a
	case a == "":
		return b
	}
	return a + "; " + b
}

func appendDistinct(dst []string, src ...string) []string {
	for _, s := range src {
		dup := false
		for _, d := range dst {
			if d == s {
				dup = true
				break
			}
		}
		if !dup && s != "" {
			dst = append(dst, s)
		}
	}
	return dst
}
