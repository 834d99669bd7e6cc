// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/dialogue-audit/pkg/types"
)

func run(t *testing.T, name string, sc types.Scenario) []types.Finding {
	t.Helper()
	for _, v := range NewSuite(nil).Validators() {
		if v.Name == name {
			return v.Fn(sc)
		}
	}
	t.Fatalf("no validator %q", name)
	return nil
}

func at(fs []types.Finding, location string) (types.Finding, bool) {
	for _, f := range fs {
		if f.Location == location {
			return f, true
		}
	}
	return types.Finding{}, false
}

func scenario(lines []string, avs ...types.AnswerVariation) types.Scenario {
	sc := types.Scenario{ID: "test-1", Category: "Social", Topic: "test", AnswerVariations: avs}
	for i, l := range lines {
		speaker := "A"
		if i%2 == 1 {
			speaker = "B"
		}
		sc.Dialogue = append(sc.Dialogue, types.DialogueLine{Speaker: speaker, Text: l})
	}
	return sc
}

func TestGrammarContextAdjacentBlanks(t *testing.T) {
	sc := scenario([]string{"I think ________ ________ clear"},
		types.AnswerVariation{Index: 1, Answer: "quite"},
		types.AnswerVariation{Index: 2, Answer: "quite"},
	)
	fs := run(t, GrammarContext, sc)
	require.Len(t, fs, 1)

	f := fs[0]
	assert.Equal(t, GrammarContext, f.ValidatorName)
	assert.Equal(t, "answerVariations[2].answer", f.Location)
	assert.Equal(t, "quite", f.CurrentValue)
	assert.Equal(t, "rather", f.SuggestedValue)
	assert.Equal(t, 0.98, f.Confidence)
	assert.Contains(t, f.Reasoning, "I think quite quite clear")
}

func TestGrammarContextRepeatInsideAnswer(t *testing.T) {
	sc := scenario([]string{"The plan is ________."},
		types.AnswerVariation{Index: 1, Answer: "quite quite clear"},
	)
	fs := run(t, GrammarContext, sc)
	require.Len(t, fs, 1)
	assert.Equal(t, "quite clear", fs[0].SuggestedValue)
	assert.True(t, fs[0].AutoFixable(types.DefaultThresholds()))
}

func TestGrammarContextDoubleNegative(t *testing.T) {
	sc := scenario([]string{"I don't have ________ money"},
		types.AnswerVariation{Index: 1, Answer: "no"},
	)
	fs := run(t, GrammarContext, sc)
	require.Len(t, fs, 1)
	assert.Empty(t, fs[0].SuggestedValue)
	assert.Equal(t, 1.0, fs[0].Confidence)
	assert.False(t, fs[0].AutoFixable(types.DefaultThresholds()))
	assert.Contains(t, fs[0].Reasoning, "rephrase")

	// A single negative in the line is not flagged.
	clean := scenario([]string{"I have ________ money"}, types.AnswerVariation{Index: 1, Answer: "no"})
	assert.Empty(t, run(t, GrammarContext, clean))
}

func TestGrammarContextAlternatives(t *testing.T) {
	sc := scenario([]string{"That is ________ nice and friendly"},
		types.AnswerVariation{Index: 1, Answer: "really", Alternatives: []string{"nice"}},
	)
	fs := run(t, GrammarContext, sc)
	f, ok := at(fs, "answerVariations[1].alternatives[0]")
	require.True(t, ok)
	assert.Equal(t, "pleasant", f.SuggestedValue)
}

func TestUKSpelling(t *testing.T) {
	sc := scenario([]string{"What ________ is it?"},
		types.AnswerVariation{Index: 1, Answer: "color", Alternatives: []string{"shade"}},
	)
	sc.DeepDive = []types.DeepDive{{Index: 1, Phrase: "color", Insight: "We realize color is spelt with a u here"}}

	fs := run(t, UKSpelling, sc)
	f, ok := at(fs, "answerVariations[1].answer")
	require.True(t, ok)
	assert.Equal(t, "colour", f.SuggestedValue)
	assert.Equal(t, 1.0, f.Confidence)

	f, ok = at(fs, "deepDive[0].insight")
	require.True(t, ok)
	assert.Equal(t, "We realise colour is spelt with a u here", f.SuggestedValue)

	_, ok = at(fs, "answerVariations[1].alternatives[0]")
	assert.False(t, ok)
}

func TestUKSpellingDoubleLIsLessCertain(t *testing.T) {
	sc := scenario([]string{"We were ________ all week"},
		types.AnswerVariation{Index: 1, Answer: "traveling"},
	)
	fs := run(t, UKSpelling, sc)
	require.Len(t, fs, 1)
	assert.Equal(t, "travelling", fs[0].SuggestedValue)
	assert.Equal(t, 0.95, fs[0].Confidence)
}

func TestUKVocabulary(t *testing.T) {
	sc := scenario([]string{"We live in a small ________"},
		types.AnswerVariation{Index: 1, Answer: "apartment"},
	)
	fs := run(t, UKVocabulary, sc)
	require.Len(t, fs, 1)
	assert.Equal(t, "flat", fs[0].SuggestedValue)
	assert.Equal(t, 0.98, fs[0].Confidence)
}

func TestContextualSubstitutionSlangInFormalCategory(t *testing.T) {
	sc := scenario([]string{"The client said it was ________ overall"},
		types.AnswerVariation{Index: 1, Answer: "fine", Alternatives: []string{"cool"}},
	)
	sc.Category = "Workplace"
	fs := run(t, ContextualSubstitution, sc)
	f, ok := at(fs, "answerVariations[1].alternatives[0]")
	require.True(t, ok)
	assert.Contains(t, f.Reasoning, "Slang")
	assert.Empty(t, f.SuggestedValue)
}

func TestContextualSubstitutionSkipsBlanksWithoutAlternatives(t *testing.T) {
	sc := scenario([]string{"and ________"}, types.AnswerVariation{Index: 1, Answer: "so"})
	assert.Empty(t, run(t, ContextualSubstitution, sc))
}

func TestBlankAnswerPairing(t *testing.T) {
	sc := scenario([]string{"It's ________ to see you", "Same ________"},
		types.AnswerVariation{Index: 1, Answer: "lovely", Alternatives: []string{"Lovely", "great"}},
		types.AnswerVariation{Index: 2, Answer: "here"},
		types.AnswerVariation{Index: 7, Answer: "orphan"},
	)
	sc.DeepDive = []types.DeepDive{
		{Index: 1, Phrase: "lovely to see you", Insight: "A warm British greeting between friends", Category: "grammer"},
		{Index: 4, Phrase: "nothing", Insight: "Points at a blank that does not exist"},
		{Index: 2, Phrase: "same to you", Insight: "   "},
	}

	fs := run(t, BlankAnswerPairing, sc)

	f, ok := at(fs, "answerVariations[1].alternatives[0]")
	require.True(t, ok, "case-insensitive duplicate")
	assert.Equal(t, 1.0, f.Confidence)

	f, ok = at(fs, "deepDive[0].category")
	require.True(t, ok)
	assert.Equal(t, "grammar", f.SuggestedValue)

	_, ok = at(fs, "deepDive[1]")
	assert.True(t, ok, "deep dive without answer variation")

	_, ok = at(fs, "deepDive[2].insight")
	assert.True(t, ok, "empty insight")

	_, ok = at(fs, "deepDive[2].phrase")
	assert.True(t, ok, "answer missing from phrase and insight")

	_, ok = at(fs, "answerVariations[7].answer")
	assert.True(t, ok, "index beyond blank count")
}

func TestBlankAnswerPairingNearDuplicate(t *testing.T) {
	sc := scenario([]string{"Ask the ________"},
		types.AnswerVariation{Index: 1, Answer: "organisation", Alternatives: []string{"organisations"}},
	)
	fs := run(t, BlankAnswerPairing, sc)
	f, ok := at(fs, "answerVariations[1].alternatives[0]")
	require.True(t, ok)
	assert.Equal(t, 0.9, f.Confidence)
}

func TestChunkCompliance(t *testing.T) {
	novel := scenario([]string{"Plants use ________ to grow"},
		types.AnswerVariation{Index: 1, Answer: "photosynthesis"},
	)
	fs := run(t, ChunkCompliance, novel)
	require.Len(t, fs, 1)
	assert.Contains(t, fs[0].Issue, "Compliance: 0%")
	assert.Equal(t, 0.6, fs[0].Confidence)

	locked := scenario([]string{"________, let's do it"},
		types.AnswerVariation{Index: 1, Answer: "Fair enough"},
	)
	assert.Empty(t, run(t, ChunkCompliance, locked))
}

func TestDialogueFlowConsecutiveBlanks(t *testing.T) {
	sc := scenario([]string{"________ one", "________ two", "________ three", "plain"},
		types.AnswerVariation{Index: 1, Answer: "a"},
		types.AnswerVariation{Index: 2, Answer: "b"},
		types.AnswerVariation{Index: 3, Answer: "c"},
	)
	fs := run(t, DialogueFlow, sc)
	f, ok := at(fs, "dialogue[2].text")
	require.True(t, ok)
	assert.Less(t, f.Confidence, 0.7)
}

func TestDialogueFlowUnacknowledgedComplaint(t *testing.T) {
	sc := scenario([]string{"My order has a ________", "The weather is nice today"},
		types.AnswerVariation{Index: 1, Answer: "problem"},
	)
	fs := run(t, DialogueFlow, sc)
	_, ok := at(fs, "answerVariations[1].answer")
	assert.True(t, ok)

	sc.Dialogue[1].Text = "I'm so sorry to hear that"
	assert.Empty(t, run(t, DialogueFlow, sc))
}

func TestAlternativesQualityLength(t *testing.T) {
	sc := scenario([]string{"That sounds ________"},
		types.AnswerVariation{Index: 1, Answer: "good", Alternatives: []string{"absolutely wonderful to me"}},
	)
	fs := run(t, AlternativesQuality, sc)
	f, ok := at(fs, "answerVariations[1].alternatives[0]")
	require.True(t, ok)
	assert.Contains(t, f.Issue, "length")
}

func TestContextualRedundancy(t *testing.T) {
	inAnswer := scenario([]string{"I will ________ tomorrow"},
		types.AnswerVariation{Index: 1, Answer: "return back"},
	)
	fs := run(t, ContextualRedundancy, inAnswer)
	require.Len(t, fs, 1)
	assert.Equal(t, "return", fs[0].SuggestedValue)

	inLine := scenario([]string{"I will ________ back tomorrow"},
		types.AnswerVariation{Index: 1, Answer: "return"},
	)
	fs = run(t, ContextualRedundancy, inLine)
	require.Len(t, fs, 1)
	assert.Empty(t, fs[0].SuggestedValue)
}

func TestTonalityMismatch(t *testing.T) {
	sc := scenario([]string{"________, let's begin"},
		types.AnswerVariation{Index: 1, Answer: "Furthermore, accordingly"},
	)
	fs := run(t, TonalityRegister, sc)
	require.Len(t, fs, 1)
	assert.Contains(t, fs[0].Issue, "detected FORMAL")
}

func TestPhrasingValidators(t *testing.T) {
	sc := scenario([]string{"________, it is fine"},
		types.AnswerVariation{Index: 1, Answer: "In my opinion"},
	)
	fs := run(t, ExamLanguage, sc)
	require.Len(t, fs, 1)
	assert.Contains(t, fs[0].Alternatives, "I think")
	assert.Empty(t, fs[0].SuggestedValue)

	sc.AnswerVariations[0].Answer = "Moreover"
	fs = run(t, WrittenVsSpoken, sc)
	require.Len(t, fs, 1)
	assert.Contains(t, fs[0].Issue, `"Moreover"`)

	sc.AnswerVariations[0].Answer = "very good"
	fs = run(t, NaturalPatterns, sc)
	require.Len(t, fs, 1)
	assert.NotEmpty(t, fs[0].Alternatives)
}

func TestDeepDiveQuality(t *testing.T) {
	sc := scenario([]string{"It's a ________ idea"},
		types.AnswerVariation{Index: 1, Answer: "brilliant"},
	)
	sc.DeepDive = []types.DeepDive{{Index: 1, Phrase: "terrible idea", Insight: "Too short"}}

	fs := run(t, DeepDiveQuality, sc)
	_, ok := at(fs, "deepDive[0].phrase")
	assert.True(t, ok)
	_, ok = at(fs, "deepDive[0].insight")
	assert.True(t, ok)
}

func TestMergeByLocation(t *testing.T) {
	th := types.DefaultThresholds()
	fs := mergeByLocation([]types.Finding{
		{Location: "x", Issue: "first", Confidence: 0.5, SuggestedValue: "a"},
		{Location: "y", Issue: "other", Confidence: 0.4},
		{Location: "x", Issue: "second", Confidence: 0.9, SuggestedValue: "b"},
	}, th)
	require.Len(t, fs, 2)
	assert.Equal(t, "b", fs[0].SuggestedValue)
	assert.Equal(t, "second; first", fs[0].Issue)
	assert.Equal(t, 0.9, fs[0].Confidence)
}

func TestMergeByLocationPrefersSuggestion(t *testing.T) {
	th := types.DefaultThresholds()
	tests := []struct {
		name      string
		findings  []types.Finding
		wantValue string
		wantConf  float64
	}{
		{
			name: "same tier keeps the fix",
			findings: []types.Finding{
				{Location: "x", Issue: "Double negative", Confidence: 1.0},
				{Location: "x", Issue: "Redundancy", Confidence: 0.98, SuggestedValue: "quite clear"},
			},
			wantValue: "quite clear",
			wantConf:  0.98,
		},
		{
			name: "higher tier wins without a fix",
			findings: []types.Finding{
				{Location: "x", Issue: "Double negative", Confidence: 1.0},
				{Location: "x", Issue: "Word class", Confidence: 0.8, SuggestedValue: "quickly"},
			},
			wantValue: "",
			wantConf:  1.0,
		},
		{
			name: "both with fixes keeps the more confident",
			findings: []types.Finding{
				{Location: "x", Issue: "A", Confidence: 0.96, SuggestedValue: "a"},
				{Location: "x", Issue: "B", Confidence: 0.99, SuggestedValue: "b"},
			},
			wantValue: "b",
			wantConf:  0.99,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := mergeByLocation(tt.findings, th)
			require.Len(t, fs, 1)
			assert.Equal(t, tt.wantValue, fs[0].SuggestedValue)
			assert.Equal(t, tt.wantConf, fs[0].Confidence)
			assert.Contains(t, fs[0].Issue, tt.findings[0].Issue)
			assert.Contains(t, fs[0].Issue, tt.findings[1].Issue)
		})
	}
}

type fakeRegistrar struct {
	names []string
	fail  string
}

func (r *fakeRegistrar) Register(name string, _ Func) error {
	if name == r.fail {
		return errors.New("boom")
	}
	r.names = append(r.names, name)
	return nil
}

func TestDefault(t *testing.T) {
	r := &fakeRegistrar{}
	require.NoError(t, Default(r, nil))
	require.Len(t, r.names, 14)
	assert.Equal(t, GrammarContext, r.names[0])

	assert.Error(t, Default(&fakeRegistrar{fail: UKVocabulary}, nil))
}
