// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rules holds the lexical rule tables the validators consume:
// British spelling and vocabulary, register markers, textbook and exam
// phrasing, pleonasms, and the locked chunk lists.
package rules

import (
	"regexp"
	"strings"
	"sync"
	"unicode"
)

var reWord = regexp.MustCompile(`[A-Za-z']+`)

// Words splits text into lowercase word tokens. Apostrophes are kept so
// contractions stay whole.
func Words(text string) []string {
	raw := reWord.FindAllString(strings.ReplaceAll(text, "’", "'"), -1)
	out := make([]string, 0, len(raw))
	for _, w := range raw {
		w = strings.Trim(w, "'")
		if w != "" {
			out = append(out, strings.ToLower(w))
		}
	}
	return out
}

// Token is a lowercase word with its byte range in the source text.
type Token struct {
	Text       string
	Start, End int
}

// Within reports whether the token lies inside [start, end).
func (t Token) Within(start, end int) bool {
	return t.Start >= start && t.End <= end
}

var reTokenWord = regexp.MustCompile(`[A-Za-z]+(?:['’][A-Za-z]+)*`)

// Tokens splits text into word tokens keeping their offsets.
func Tokens(text string) []Token {
	idx := reTokenWord.FindAllStringIndex(text, -1)
	out := make([]Token, len(idx))
	for i, m := range idx {
		w := strings.ReplaceAll(text[m[0]:m[1]], "’", "'")
		out[i] = Token{Text: strings.ToLower(w), Start: m[0], End: m[1]}
	}
	return out
}

// ContainsPhrase reports whether phrase occurs in text on word boundaries,
// ignoring case.
func ContainsPhrase(text, phrase string) bool {
	return phraseRegexp(phrase).MatchString(text)
}

var phraseCache sync.Map // phrase -> *regexp.Regexp

func phraseRegexp(phrase string) *regexp.Regexp {
	if re, ok := phraseCache.Load(phrase); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(phrase) + `\b`)
	phraseCache.Store(phrase, re)
	return re
}

// MatchCase returns replacement with the capitalisation of original's
// first letter.
func MatchCase(original, replacement string) string {
	if original == "" || replacement == "" {
		return replacement
	}
	r := []rune(replacement)
	if unicode.IsUpper([]rune(original)[0]) {
		r[0] = unicode.ToUpper(r[0])
	} else {
		r[0] = unicode.ToLower(r[0])
	}
	return string(r)
}

// Pattern is a regular expression with a description and natural
// replacements.
type Pattern struct {
	Re          *regexp.Regexp
	Issue       string
	Suggestions []string
}

// PatternMatch is one occurrence of a Pattern in a text.
type PatternMatch struct {
	Pattern *Pattern
	Match   string
}

func findPatterns(text string, table []Pattern) []PatternMatch {
	var out []PatternMatch
	for i := range table {
		for _, m := range table[i].Re.FindAllString(text, -1) {
			out = append(out, PatternMatch{Pattern: &table[i], Match: m})
		}
	}
	return out
}

func pattern(expr, issue string, suggestions ...string) Pattern {
	return Pattern{Re: regexp.MustCompile(`(?i)` + expr), Issue: issue, Suggestions: suggestions}
}
