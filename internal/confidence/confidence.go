// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package confidence scores findings and classifies them into the HIGH,
// MEDIUM and LOW tiers that decide whether a fix is applied unattended,
// offered for approval, or only reported.
package confidence

import (
	"math"
	"strings"

	"github.com/pdiddy/dialogue-audit/pkg/types"
)

// IssueType tags a class of finding.
type IssueType string

const (
	BritishSpelling      IssueType = "british-spelling"
	UKVocabulary         IssueType = "uk-vocabulary"
	GrammarError         IssueType = "grammar-error"
	DoubleNegative       IssueType = "double-negative"
	Redundancy           IssueType = "redundancy"
	POSMismatch          IssueType = "pos-mismatch"
	DataIntegrity        IssueType = "data-integrity"
	InvalidCategory      IssueType = "invalid-category"
	MissingContent       IssueType = "missing-content"
	DuplicateAlternative IssueType = "duplicate-alternative"
	SemanticAlignment    IssueType = "semantic-alignment"
	LowDiversity         IssueType = "low-diversity"
	ContextualFit        IssueType = "contextual-fit"
	Tonality             IssueType = "tonality"
	TextbookPhrase       IssueType = "textbook-phrase"
	DialogueFlow         IssueType = "dialogue-flow"
	AlternativeQuality   IssueType = "alternative-quality"
	RedundantPhrase      IssueType = "redundant-phrase"
	ExamLanguage         IssueType = "exam-language"
	WrittenRegister      IssueType = "written-register"
	ChunkCompliance      IssueType = "chunk-compliance"
)

// unknownBase is the score for issue types with no registered policy.
const unknownBase = 0.6

// Input describes the finding being scored.
type Input struct {
	IssueType    IssueType
	AffectedText string
	SuggestedFix string
	Context      string
	// RuleCertainty scales the policy score; zero means 1.0.
	RuleCertainty float64
	HasException  bool
	Category      string
}

// Result is a scored finding.
type Result struct {
	Score  float64
	Level  types.Level
	Reason string
}

// Modifier adjusts a policy's base score. A factor of 1 with an empty
// reason means the modifier does not apply to this input.
type Modifier func(in Input) (factor float64, reason string)

// Policy scores one issue type.
type Policy struct {
	Base      float64
	Reason    string
	Modifiers []Modifier
}

// Scorer maps issue types to policies.
type Scorer struct {
	policies   map[IssueType]Policy
	thresholds types.Thresholds
}

// New returns a Scorer with the default policy table and the given
// thresholds.
func New(th types.Thresholds) *Scorer {
	s := &Scorer{
		policies:   make(map[IssueType]Policy, len(defaultPolicies)),
		thresholds: th,
	}
	for k, p := range defaultPolicies {
		s.policies[k] = p
	}
	return s
}

// Default returns a Scorer with the default thresholds.
func Default() *Scorer {
	return New(types.DefaultThresholds())
}

// Register adds or replaces the policy for an issue type.
func (s *Scorer) Register(t IssueType, p Policy) {
	s.policies[t] = p
}

// Policy returns the policy for t and whether one is registered.
func (s *Scorer) Policy(t IssueType) (Policy, bool) {
	p, ok := s.policies[t]
	return p, ok
}

// Thresholds returns the cutoffs the scorer classifies with.
func (s *Scorer) Thresholds() types.Thresholds {
	return s.thresholds
}

// Score computes the confidence for in, rounded to two decimals. The level
// comes from the unrounded score; when rounding would lift the score into a
// higher tier the unrounded score is kept, so a score below a cutoff never
// compares as reaching it.
func (s *Scorer) Score(in Input) Result {
	p, ok := s.policies[in.IssueType]
	if !ok {
		p = Policy{Base: unknownBase, Reason: "Unknown issue type"}
	}

	score := p.Base
	factors := []string{p.Reason}
	for _, m := range p.Modifiers {
		f, reason := m(in)
		score *= f
		if reason != "" {
			factors = append(factors, reason)
		}
	}

	certainty := in.RuleCertainty
	if certainty == 0 {
		certainty = 1.0
	}
	score *= certainty

	raw := clamp(score)
	level := s.thresholds.Level(raw)
	score = math.Round(raw*100) / 100
	if s.thresholds.Level(score) != level {
		score = raw
	}
	return Result{
		Score:  score,
		Level:  level,
		Reason: strings.Join(factors, "; "),
	}
}

// ShouldAutoFix reports whether r may be applied without approval.
func (s *Scorer) ShouldAutoFix(r Result) bool {
	return r.Level == types.LevelHigh
}

// RequiresApproval reports whether r needs a human decision with a single
// suggested value.
func (s *Scorer) RequiresApproval(r Result) bool {
	return r.Level == types.LevelMedium
}

// IsLow reports whether r is report-only.
func (s *Scorer) IsLow(r Result) bool {
	return r.Level == types.LevelLow
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
