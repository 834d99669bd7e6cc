// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindSpellingIssues(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]string
	}{
		{"ize", "We need to realize the organization goals", map[string]string{"realize": "realise", "organization": "organisation"}},
		{"prize exception", "She won a prize for her size", map[string]string{}},
		{"our", "My favorite color is grey", map[string]string{"favorite": "favourite", "color": "colour"}},
		{"behaviour", "Their behavior was odd", map[string]string{"behavior": "behaviour"}},
		{"re", "Meet me at the theater in the center", map[string]string{"theater": "theatre", "center": "centre"}},
		{"centred", "The design is centered", map[string]string{"centered": "centred"}},
		{"double l", "I was traveling and canceled", map[string]string{"traveling": "travelling", "canceled": "cancelled"}},
		{"no false double l", "I was feeling fine", map[string]string{}},
		{"word list keeps case", "Gray skies", map[string]string{"Gray": "Grey"}},
		{"yze", "Let me analyze it", map[string]string{"analyze": "analyse"}},
		{"check without banking", "Let me check", map[string]string{}},
		{"check with banking", "Can I pay by check", map[string]string{"check": "cheque"}},
		{"doctor untouched", "The doctor and the actor", map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make(map[string]string)
			for _, is := range FindSpellingIssues(tt.text) {
				got[is.Word] = is.Fixed
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFixSpelling(t *testing.T) {
	assert.Equal(t, "My favourite colour", FixSpelling("My favorite color"))
	assert.Equal(t, "nothing to change", FixSpelling("nothing to change"))
}

func TestFindAmericanisms(t *testing.T) {
	got := FindAmericanisms("Take the elevator, then find your cell phone on the sidewalk")
	require.Len(t, got, 3)
	assert.Equal(t, "lift", got[0].Mapping.British)
	assert.Equal(t, "mobile phone", got[1].Mapping.British)
	assert.Equal(t, "pavement", got[2].Mapping.British)

	// Low-confidence mappings are not reported.
	assert.Empty(t, FindAmericanisms("I need some gas"))
}

func TestReplaceAmericanisms(t *testing.T) {
	assert.Equal(t, "Our flat is near the lift", ReplaceAmericanisms("Our apartment is near the elevator"))
	assert.Equal(t, "Holiday time", ReplaceAmericanisms("Vacation time"))
}

func TestCheckTone(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		category string
		detected Register
		matches  bool
	}{
		{"casual in social", "Cheers mate, that's brilliant", "Social", Casual, true},
		{"formal in social", "Furthermore, accordingly we proceed", "Social", Formal, false},
		{"neutral default", "I will be there", "Service/Logistics", Neutral, true},
		{"casual in advanced", "yeah cool", "Advanced", Casual, false},
		{"school is not cool", "I went to school", "Social", Neutral, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := CheckTone(tt.text, tt.category)
			assert.Equal(t, tt.detected, c.Detected)
			assert.Equal(t, tt.matches, c.Matches())
		})
	}
}

func TestNegators(t *testing.T) {
	assert.Equal(t, []string{"don't", "nothing"}, Negators("I don't know nothing"))
	assert.Empty(t, Negators("I know the snow is nice"))
}

func TestClassifyWord(t *testing.T) {
	assert.Equal(t, ClassVerb, ClassifyWord("running"))
	assert.Equal(t, ClassAdjective, ClassifyWord("beautiful"))
	assert.Equal(t, ClassNoun, ClassifyWord("information"))
	assert.Equal(t, ClassUnknown, ClassifyWord("two words"))
}

func TestMatchChunk(t *testing.T) {
	assert.Equal(t, BucketA, MatchChunk("Fair enough").Bucket)
	assert.True(t, MatchChunk("Fair enough.").Exact)
	assert.Equal(t, BucketB, MatchChunk("carry on").Bucket)
	assert.Equal(t, BucketA, MatchChunk("to be honest with you").Bucket)
	assert.Equal(t, BucketNovel, MatchChunk("photosynthesis").Bucket)
}

func TestCheckCompliance(t *testing.T) {
	c := CheckCompliance([]string{"fair enough", "go ahead", "photosynthesis", "xylophone"})
	assert.Equal(t, 50, c.Score)
	assert.False(t, c.Compliant())
	assert.Equal(t, []string{"photosynthesis", "xylophone"}, c.Novel)

	assert.True(t, CheckCompliance(nil).Compliant())
}

func TestSuggestChunks(t *testing.T) {
	got := SuggestChunks("make a point", 3)
	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 3)
	assert.Empty(t, SuggestChunks("a the", 3))
}

func TestExamAndWrittenPatterns(t *testing.T) {
	a := AnalyzeExamLanguage("In my opinion it is fine")
	assert.True(t, a.UsesExam())
	assert.Contains(t, a.Suggestions(), "I think")

	assert.NotEmpty(t, FindRoboticPoliteness("I sincerely apologize for that"))
	assert.Len(t, FindWrittenPatterns("Moreover, prior to that"), 2)
	assert.Len(t, FindTextbookPatterns("That is very good"), 1)
}

func TestFindPleonasms(t *testing.T) {
	got := FindPleonasms("I will return back tomorrow")
	require.Len(t, got, 1)
	assert.Equal(t, "back", got[0].Pleonasm.Redundant)
}

func TestMatchCase(t *testing.T) {
	assert.Equal(t, "Lift", MatchCase("Elevator", "lift"))
	assert.Equal(t, "lift", MatchCase("elevator", "Lift"))
	assert.Equal(t, "", MatchCase("x", ""))
}
