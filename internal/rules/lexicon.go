// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"regexp"
	"strings"
)

var negators = map[string]bool{
	"no": true, "not": true, "none": true, "never": true, "neither": true,
	"nothing": true, "nobody": true, "nowhere": true, "nor": true,
}

// IsNegator reports whether a lowercase word token negates.
func IsNegator(word string) bool {
	return negators[word] || strings.HasSuffix(word, "n't")
}

// Negators returns the negating tokens of text in order.
func Negators(text string) []string {
	var out []string
	for _, w := range Words(text) {
		if IsNegator(w) {
			out = append(out, w)
		}
	}
	return out
}

// Stopwords are skipped when looking for repeated words.
var Stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "of": true, "is": true,
	"are": true, "that": true, "it": true, "you": true, "i": true, "we": true,
}

// Synonyms offers a replacement for a word that repeats after substitution.
var Synonyms = map[string]string{
	"little": "minor",
	"tiny":   "small",
	"big":    "large",
	"good":   "great",
	"bad":    "terrible",
	"nice":   "pleasant",
	"very":   "extremely",
	"really": "truly",
	"quite":  "rather",
	"pretty": "fairly",
}

// Slang marks terms inappropriate in formal dialogue.
var Slang = map[string]bool{
	"gonna": true, "wanna": true, "gotta": true, "coulda": true, "shoulda": true,
	"woulda": true, "yeah": true, "yep": true, "nope": true, "kinda": true,
	"sorta": true, "cool": true, "awesome": true, "dude": true, "bro": true,
	"mate": true, "bloody": true, "crap": true, "stuff": true, "things": true,
}

// IsSlang reports whether text is a single slang term.
func IsSlang(text string) bool {
	return Slang[strings.ToLower(strings.TrimSpace(text))]
}

// FormalContextMarkers indicate a sentence set in a formal situation.
var FormalContextMarkers = []string{"formal", "professional", "business", "manager", "interview", "client"}

// IsFormalContext reports whether sentence mentions a formal situation.
func IsFormalContext(sentence string) bool {
	for _, m := range FormalContextMarkers {
		if ContainsPhrase(sentence, m) {
			return true
		}
	}
	return false
}

var (
	formalWords = []string{"aforementioned", "nonetheless", "moreover", "therefore", "subsequently", "facilitate", "leverage", "implement", "utilise", "utilize"}
	casualWords = []string{"cool", "awesome", "gonna", "wanna", "kinda", "sorta", "yeah", "nope"}
)

// WordFormality estimates the formality of a short answer on a 0 (casual)
// to 1 (formal) scale. Unmarked text scales with length up to 0.6.
func WordFormality(text string) float64 {
	lower := strings.ToLower(text)
	for _, f := range formalWords {
		if strings.Contains(lower, f) {
			return 0.8
		}
	}
	for _, c := range casualWords {
		if strings.Contains(lower, c) {
			return 0.2
		}
	}
	v := float64(len(text)) / 15
	if v > 0.6 {
		return 0.6
	}
	return v
}

var (
	nounSuffixes = []string{"tion", "ment", "ness", "ity", "er", "or", "ist", "ism", "ship"}
	adjSuffixes  = []string{"ful", "less", "ous", "ible", "able", "ive", "al", "ic", "ed", "en"}
	commonVerbs  = map[string]bool{
		"be": true, "have": true, "do": true, "say": true, "go": true, "know": true,
		"take": true, "see": true, "come": true, "think": true, "make": true, "get": true,
		"use": true, "find": true, "tell": true, "ask": true, "work": true, "seem": true,
		"feel": true, "try": true,
	}
	commonAdjectives = map[string]bool{
		"good": true, "bad": true, "big": true, "small": true, "new": true, "old": true,
		"many": true, "some": true, "more": true, "most": true, "happy": true, "sad": true,
		"beautiful": true, "ugly": true, "bright": true, "dark": true, "hot": true, "cold": true,
	}
)

// WordClass is a coarse part-of-speech guess from suffixes and a small
// closed list.
type WordClass int

const (
	ClassUnknown WordClass = iota
	ClassNoun
	ClassAdjective
	ClassVerb
)

func (c WordClass) String() string {
	switch c {
	case ClassNoun:
		return "noun"
	case ClassAdjective:
		return "adjective"
	case ClassVerb:
		return "verb"
	}
	return "unknown"
}

// ClassifyWord guesses the word class of a single-word answer. Multi-word
// answers are ClassUnknown.
func ClassifyWord(word string) WordClass {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" || strings.ContainsAny(w, " \t") {
		return ClassUnknown
	}
	switch {
	case commonVerbs[w]:
		return ClassVerb
	case commonAdjectives[w]:
		return ClassAdjective
	case strings.HasSuffix(w, "ing"), strings.HasSuffix(w, "ed"):
		return ClassVerb
	case hasAnySuffix(w, adjSuffixes):
		return ClassAdjective
	case hasAnySuffix(w, nounSuffixes):
		return ClassNoun
	}
	return ClassUnknown
}

func hasAnySuffix(w string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(w, s) {
			return true
		}
	}
	return false
}

var reContraction = regexp.MustCompile(`(?i)\b\w+'(s|re|ve|ll|d|m|t)\b`)

// HasContraction reports whether text contains a contraction.
func HasContraction(text string) bool {
	return reContraction.MatchString(text)
}

var reLeadingConjunction = regexp.MustCompile(`(?i)^\s*(and|or|but|because)\s+`)

// StartsWithConjunction reports whether sentence opens with a coordinating
// or subordinating conjunction.
func StartsWithConjunction(sentence string) bool {
	return reLeadingConjunction.MatchString(sentence)
}

// Pleonasm is a redundant word pair; Redundant is the word to drop.
type Pleonasm struct {
	Phrase    string
	Redundant string
	Fixed     string
}

// Pleonasms lists redundant expressions that only appear once an answer
// is placed into its sentence.
var Pleonasms = []Pleonasm{
	{"return back", "back", "return"},
	{"repeat again", "again", "repeat"},
	{"free gift", "free", "gift"},
	{"past history", "past", "history"},
	{"end result", "end", "result"},
	{"final outcome", "final", "outcome"},
	{"advance warning", "advance", "warning"},
	{"close proximity", "close", "proximity"},
	{"future plans", "future", "plans"},
	{"added bonus", "added", "bonus"},
	{"unexpected surprise", "unexpected", "surprise"},
	{"revert back", "back", "revert"},
	{"join together", "together", "join"},
	{"each and every", "each and", "every"},
	{"ATM machine", "machine", "ATM"},
	{"PIN number", "number", "PIN"},
	{"true fact", "true", "fact"},
	{"new innovation", "new", "innovation"},
	{"completely finished", "completely", "finished"},
	{"plan ahead", "ahead", "plan"},
}

// PleonasmMatch is one pleonasm found in a text.
type PleonasmMatch struct {
	Pleonasm Pleonasm
	Match    string
}

// FindPleonasms lists redundant expressions in text.
func FindPleonasms(text string) []PleonasmMatch {
	var out []PleonasmMatch
	for _, p := range Pleonasms {
		if m := phraseRegexp(p.Phrase).FindString(text); m != "" {
			out = append(out, PleonasmMatch{Pleonasm: p, Match: m})
		}
	}
	return out
}

// ComplaintMarkers signal a turn that expects acknowledgement.
var ComplaintMarkers = []string{"problem", "issue", "broken", "wrong", "complaint", "disappointed", "unacceptable", "not working", "stopped working"}

// AcknowledgementMarkers show a turn responding to a complaint.
var AcknowledgementMarkers = []string{"sorry", "apologise", "apologize", "understand", "i see", "let me", "i'll", "fix", "sort", "help", "of course", "right away", "afraid"}

// ContainsAny reports whether text contains any phrase, on word boundaries.
func ContainsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if ContainsPhrase(text, p) {
			return true
		}
	}
	return false
}

var reDefinitionOnly = regexp.MustCompile(`(?i)^\s*("?[\w\s'-]+"?\s+(means|is defined as|refers to)\b|definition:)`)

// IsDefinitionOnly reports whether an insight reads as a dictionary
// definition rather than usage guidance.
func IsDefinitionOnly(insight string) bool {
	if !reDefinitionOnly.MatchString(insight) {
		return false
	}
	return !ContainsAny(insight, []string{"use", "say", "native", "when", "instead", "sounds", "context", "formal", "casual"})
}
