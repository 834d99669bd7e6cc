// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package confidence

import "unicode/utf8"

// defaultPolicies holds the base score of every known issue type. Spelling
// and grammar classes are near-certain; context-dependent judgements sit
// between 0.6 and 0.8.
var defaultPolicies = map[IssueType]Policy{
	BritishSpelling: {
		Base:      1.0,
		Reason:    "British spelling rule",
		Modifiers: []Modifier{exceptionPenalty(0.95)},
	},
	UKVocabulary: {
		Base:      0.98,
		Reason:    "UK vocabulary mapping",
		Modifiers: []Modifier{longTextPenalty(15, 0.95)},
	},
	GrammarError:   {Base: 1.0, Reason: "Grammar rule violation"},
	DoubleNegative: {Base: 1.0, Reason: "Double negative detected"},
	Redundancy:     {Base: 0.98, Reason: "Repeated word after substitution"},
	POSMismatch: {
		Base:      0.90,
		Reason:    "Part-of-speech mismatch",
		Modifiers: []Modifier{posLength},
	},
	DataIntegrity:        {Base: 1.0, Reason: "Data integrity violation"},
	InvalidCategory:      {Base: 0.95, Reason: "Invalid category"},
	MissingContent:       {Base: 0.95, Reason: "Missing content"},
	DuplicateAlternative: {Base: 1.0, Reason: "Duplicate alternative"},
	SemanticAlignment:    {Base: 0.80, Reason: "Answer not reflected in teaching content"},
	LowDiversity:         {Base: 0.85, Reason: "Alternatives lack diversity"},
	ContextualFit: {
		Base:      0.75,
		Reason:    "Contextual fit judgement",
		Modifiers: []Modifier{richContext(50, 0.95)},
	},
	Tonality: {
		Base:      0.75,
		Reason:    "Register judgement",
		Modifiers: []Modifier{casualFormality},
	},
	TextbookPhrase: {
		Base:      0.80,
		Reason:    "Textbook phrasing",
		Modifiers: []Modifier{hasContext(0.9)},
	},
	DialogueFlow: {
		Base:      0.65,
		Reason:    "Dialogue flow judgement",
		Modifiers: []Modifier{richContext(50, 0.95)},
	},
	AlternativeQuality: {Base: 0.70, Reason: "Alternative quality judgement"},
	RedundantPhrase:    {Base: 0.90, Reason: "Pleonasm after substitution"},
	ExamLanguage:       {Base: 0.60, Reason: "Exam-style phrasing"},
	WrittenRegister:    {Base: 0.60, Reason: "Written register in speech"},
	ChunkCompliance:    {Base: 0.60, Reason: "Answer outside locked chunks"},
}

func exceptionPenalty(f float64) Modifier {
	return func(in Input) (float64, string) {
		if in.HasException {
			return f, "Rule has known exceptions"
		}
		return 1, ""
	}
}

func longTextPenalty(limit int, f float64) Modifier {
	return func(in Input) (float64, string) {
		if utf8.RuneCountInString(in.AffectedText) > limit {
			return f, "Longer affected text"
		}
		return 1, ""
	}
}

func posLength(in Input) (float64, string) {
	if utf8.RuneCountInString(in.AffectedText) < 4 {
		return 0.95, "Short word"
	}
	return 0.85, "Word class inferred from suffix"
}

// richContext rewards findings scored against a long surrounding context.
func richContext(limit int, f float64) Modifier {
	return func(in Input) (float64, string) {
		if utf8.RuneCountInString(in.Context) > limit {
			return f, "Rich context"
		}
		return 1, ""
	}
}

func hasContext(f float64) Modifier {
	return func(in Input) (float64, string) {
		if in.Context != "" {
			return f, "Context may justify phrasing"
		}
		return 1, ""
	}
}

// casualFormality penalises longer, more formal fixes in casual scenarios.
func casualFormality(in Input) (float64, string) {
	if in.Category == "Social" && len(in.SuggestedFix) > len(in.AffectedText) {
		return 0.85, "Casual context penalty"
	}
	return 1, ""
}
