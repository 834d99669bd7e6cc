// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"
)

// BlankToken marks a fill-in-the-blank slot in dialogue text.
const BlankToken = "________"

// Character is a named participant in a scenario.
type Character struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// DialogueLine is one turn of a scenario's dialogue. Text may contain one or
// more BlankToken slots.
type DialogueLine struct {
	Speaker string `json:"speaker" yaml:"speaker"`
	Text    string `json:"text" yaml:"text"`
}

// AnswerVariation holds the accepted answers for one blank. Index is the
// 1-based ordinal of the blank across the whole dialogue in reading order.
type AnswerVariation struct {
	Index        int      `json:"index" yaml:"index"`
	Answer       string   `json:"answer" yaml:"answer"`
	Alternatives []string `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
}

// DeepDive is a teaching insight attached to a blank. Index references the
// same blank ordinal as AnswerVariation.Index.
type DeepDive struct {
	Index    int    `json:"index" yaml:"index"`
	Phrase   string `json:"phrase" yaml:"phrase"`
	Insight  string `json:"insight" yaml:"insight"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
}

// Scenario is one roleplay dialogue with fill-in-the-blank practice.
type Scenario struct {
	ID               string            `json:"id" yaml:"id"`
	Category         string            `json:"category" yaml:"category"`
	Topic            string            `json:"topic" yaml:"topic"`
	Context          string            `json:"context,omitempty" yaml:"context,omitempty"`
	Characters       []Character       `json:"characters,omitempty" yaml:"characters,omitempty"`
	Dialogue         []DialogueLine    `json:"dialogue" yaml:"dialogue"`
	AnswerVariations []AnswerVariation `json:"answer_variations" yaml:"answer_variations"`
	DeepDive         []DeepDive        `json:"deep_dive,omitempty" yaml:"deep_dive,omitempty"`
}

// Blank locates one BlankToken slot inside a scenario's dialogue.
type Blank struct {
	Ordinal  int // 1-based, across the whole dialogue
	Line     int // 0-based dialogue line
	Position int // 0-based slot within the line
}

// Blanks enumerates every blank in reading order.
func (s Scenario) Blanks() []Blank {
	var blanks []Blank
	ordinal := 0
	for i, line := range s.Dialogue {
		n := strings.Count(line.Text, BlankToken)
		for p := 0; p < n; p++ {
			ordinal++
			blanks = append(blanks, Blank{Ordinal: ordinal, Line: i, Position: p})
		}
	}
	return blanks
}

// Blank returns the blank with the given ordinal.
func (s Scenario) Blank(ordinal int) (Blank, bool) {
	if ordinal < 1 {
		return Blank{}, false
	}
	for _, b := range s.Blanks() {
		if b.Ordinal == ordinal {
			return b, true
		}
	}
	return Blank{}, false
}

// Answer returns the answer variation for a blank ordinal.
func (s Scenario) Answer(ordinal int) (AnswerVariation, bool) {
	for _, av := range s.AnswerVariations {
		if av.Index == ordinal {
			return av, true
		}
	}
	return AnswerVariation{}, false
}

// Fill returns the dialogue line holding the blank with the given ordinal,
// with candidate substituted into that blank and every other blank on the
// same line filled with its own primary answer where one exists. Blanks
// without an answer are left as BlankToken. The second result is false when
// the ordinal does not exist.
func (s Scenario) Fill(ordinal int, candidate string) (string, bool) {
	line, _, _, ok := s.FillSpan(ordinal, candidate)
	return line, ok
}

// FillSpan is Fill that also returns the byte range [start, end) the
// candidate occupies in the filled line.
func (s Scenario) FillSpan(ordinal int, candidate string) (line string, start, end int, ok bool) {
	target, ok := s.Blank(ordinal)
	if !ok {
		return "", 0, 0, false
	}
	text := s.Dialogue[target.Line].Text
	first := target.Ordinal - target.Position

	parts := strings.Split(text, BlankToken)
	var b strings.Builder
	for i, part := range parts {
		b.WriteString(part)
		if i == len(parts)-1 {
			break
		}
		if i == target.Position {
			start = b.Len()
			b.WriteString(candidate)
			end = b.Len()
			continue
		}
		if av, ok := s.Answer(first + i); ok && av.Answer != "" {
			b.WriteString(av.Answer)
		} else {
			b.WriteString(BlankToken)
		}
	}
	return b.String(), start, end, true
}

// FilledLine returns dialogue line i with every blank filled by its primary
// answer.
func (s Scenario) FilledLine(i int) string {
	if i < 0 || i >= len(s.Dialogue) {
		return ""
	}
	for _, b := range s.Blanks() {
		if b.Line != i {
			continue
		}
		av, ok := s.Answer(b.Ordinal)
		if !ok {
			continue
		}
		filled, _ := s.Fill(b.Ordinal, av.Answer)
		return filled
	}
	return s.Dialogue[i].Text
}

// Dataset is the on-disk scenario collection.
type Dataset struct {
	Scenarios []Scenario `json:"scenarios" yaml:"scenarios"`
}

// Validate checks the structural invariants a dataset file must satisfy:
// every scenario has a unique, non-empty id and at least one dialogue line.
func (d Dataset) Validate() error {
	if len(d.Scenarios) == 0 {
		return errors.New("dataset has no scenarios")
	}
	seen := make(map[string]bool, len(d.Scenarios))
	for i, s := range d.Scenarios {
		if s.ID == "" {
			return fmt.Errorf("scenario %d has no id", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate scenario id %q", s.ID)
		}
		seen[s.ID] = true
		if len(s.Dialogue) == 0 {
			return fmt.Errorf("scenario %s has no dialogue", s.ID)
		}
	}
	return nil
}

// Lookup returns the scenario with the given id.
func (d Dataset) Lookup(id string) (Scenario, bool) {
	for _, s := range d.Scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return Scenario{}, false
}

// IDs returns every scenario id in dataset order.
func (d Dataset) IDs() []string {
	ids := make([]string, len(d.Scenarios))
	for i, s := range d.Scenarios {
		ids[i] = s.ID
	}
	return ids
}
