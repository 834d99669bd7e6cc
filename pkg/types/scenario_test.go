// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoBlankScenario() Scenario {
	return Scenario{
		ID:       "social-1",
		Category: "Social",
		Dialogue: []DialogueLine{
			{Speaker: "Sam", Text: "Hi there."},
			{Speaker: "Jo", Text: "Shall we ________ and ________ later?"},
			{Speaker: "Sam", Text: "Sure, ________."},
		},
		AnswerVariations: []AnswerVariation{
			{Index: 1, Answer: "meet"},
			{Index: 2, Answer: "catch up"},
		},
	}
}

func TestBlanks(t *testing.T) {
	s := twoBlankScenario()
	assert.Equal(t, []Blank{
		{Ordinal: 1, Line: 1, Position: 0},
		{Ordinal: 2, Line: 1, Position: 1},
		{Ordinal: 3, Line: 2, Position: 0},
	}, s.Blanks())

	b, ok := s.Blank(3)
	require.True(t, ok)
	assert.Equal(t, 2, b.Line)

	_, ok = s.Blank(0)
	assert.False(t, ok)
	_, ok = s.Blank(4)
	assert.False(t, ok)
}

func TestFill(t *testing.T) {
	s := twoBlankScenario()
	tests := []struct {
		name      string
		ordinal   int
		candidate string
		want      string
		ok        bool
	}{
		{"first slot keeps second answer", 1, "hang out", "Shall we hang out and catch up later?", true},
		{"second slot keeps first answer", 2, "chat", "Shall we meet and chat later?", true},
		{"blank without answer", 3, "great", "Sure, great.", true},
		{"unknown ordinal", 9, "x", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.Fill(tt.ordinal, tt.candidate)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFillSpan(t *testing.T) {
	s := twoBlankScenario()
	line, start, end, ok := s.FillSpan(2, "chat")
	require.True(t, ok)
	assert.Equal(t, "chat", line[start:end])
}

func TestFilledLine(t *testing.T) {
	s := twoBlankScenario()
	assert.Equal(t, "Hi there.", s.FilledLine(0))
	assert.Equal(t, "Shall we meet and catch up later?", s.FilledLine(1))
	assert.Equal(t, "Sure, ________.", s.FilledLine(2))
	assert.Empty(t, s.FilledLine(5))
}

func TestDatasetValidate(t *testing.T) {
	line := []DialogueLine{{Speaker: "A", Text: "Hello"}}
	tests := []struct {
		name    string
		ds      Dataset
		wantErr string
	}{
		{"valid", Dataset{Scenarios: []Scenario{{ID: "a", Dialogue: line}, {ID: "b", Dialogue: line}}}, ""},
		{"empty", Dataset{}, "no scenarios"},
		{"missing id", Dataset{Scenarios: []Scenario{{Dialogue: line}}}, "has no id"},
		{"duplicate", Dataset{Scenarios: []Scenario{{ID: "a", Dialogue: line}, {ID: "a", Dialogue: line}}}, "duplicate"},
		{"no dialogue", Dataset{Scenarios: []Scenario{{ID: "a"}}}, "no dialogue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ds.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLookupAndIDs(t *testing.T) {
	ds := Dataset{Scenarios: []Scenario{{ID: "a"}, {ID: "b"}}}
	assert.Equal(t, []string{"a", "b"}, ds.IDs())
	s, ok := ds.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, "b", s.ID)
	_, ok = ds.Lookup("c")
	assert.False(t, ok)
}
