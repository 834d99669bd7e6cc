// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"regexp"
	"strings"
)

// SpellingRule rewrites an American spelling into its British form.
type SpellingRule struct {
	Name       string
	Re         *regexp.Regexp
	Fix        func(word string) string
	Confidence float64
	// Exceptions are substrings that exempt a word from the rule.
	Exceptions []string
}

// SpellingIssue is one word that a rule would rewrite.
type SpellingIssue struct {
	Word         string
	Fixed        string
	Rule         *SpellingRule
	HasException bool
}

var reWordToken = regexp.MustCompile(`\b[A-Za-z]+\b`)

// SpellingRules is ordered; the first matching rule wins for a word.
var SpellingRules = []SpellingRule{
	{
		Name:       "word list",
		Re:         regexp.MustCompile(`(?i)^(gray|mom|aluminum|catalog|dialog|defense|offense|jewelry|pajamas|cozy|plow|mold|skeptical|mustache|airplane|check(?:book)?s?)$`),
		Fix:        fixWordList,
		Confidence: 1.0,
	},
	{
		Name:       "-ize to -ise",
		Re:         regexp.MustCompile(`(?i)^\w+iz(e|ed|es|er|ers|ing|ation|ations)$`),
		Fix:        func(w string) string { return replaceLast(w, "iz", "is") },
		Confidence: 1.0,
		Exceptions: []string{"prize", "size", "seize", "maize", "baize"},
	},
	{
		Name:       "-yze to -yse",
		Re:         regexp.MustCompile(`(?i)^\w+yz(e|ed|es|er|ers|ing)$`),
		Fix:        func(w string) string { return replaceLast(w, "yz", "ys") },
		Confidence: 1.0,
	},
	{
		Name:       "-or to -our",
		Re:         regexp.MustCompile(`(?i)^(col|fav|behavi|lab|neighb|hon|hum|rum|sav|flav|harb|arm|od|vap|rig|vig|splend|tum|val|cand|parl)or(s|ed|ing|ful|ite|ites|hood|less)?$`),
		Fix:        fixOur,
		Confidence: 1.0,
	},
	{
		Name:       "-er to -re",
		Re:         regexp.MustCompile(`(?i)^(cent|theat|met|fib|lust|nit|lit|somb|spect)er(s|ed)?$`),
		Fix:        fixRe,
		Confidence: 1.0,
	},
	{
		Name:       "double L before suffix",
		Re:         regexp.MustCompile(`(?i)^(travel|cancel|model|level|label|signal|fuel|marvel|quarrel|counsel|dial|total|jewel|channel|tunnel|panel|pedal|rival|shovel|yodel|snorkel)(ing|ed|er|ers)$`),
		Fix:        fixDoubleL,
		Confidence: 0.95,
	},
}

var britishWords = map[string]string{
	"gray":       "grey",
	"mom":        "mum",
	"aluminum":   "aluminium",
	"catalog":    "catalogue",
	"dialog":     "dialogue",
	"defense":    "defence",
	"offense":    "offence",
	"jewelry":    "jewellery",
	"pajamas":    "pyjamas",
	"cozy":       "cosy",
	"plow":       "plough",
	"mold":       "mould",
	"skeptical":  "sceptical",
	"mustache":   "moustache",
	"airplane":   "aeroplane",
	"check":      "cheque",
	"checks":     "cheques",
	"checkbook":  "chequebook",
	"checkbooks": "chequebooks",
}

// bankingContext gates rewriting "check" to "cheque".
var bankingContext = regexp.MustCompile(`(?i)\b(bank|pay|paid|cash|deposit)\w*\b`)

func fixWordList(w string) string {
	if uk, ok := britishWords[strings.ToLower(w)]; ok {
		return MatchCase(w, uk)
	}
	return w
}

var reOurSuffix = regexp.MustCompile(`(?i)or(s|ed|ing|ful|ite|ites|hood|less)?$`)

func fixOur(w string) string {
	loc := reOurSuffix.FindStringIndex(w)
	if loc == nil {
		return w
	}
	suffix := w[loc[0]+2:]
	o := "ou"
	if strings.ToUpper(w) == w {
		o = "OU"
	}
	return w[:loc[0]] + o + w[loc[0]+1:loc[0]+2] + suffix
}

func fixRe(w string) string {
	lower := strings.ToLower(w)
	for _, suffix := range []string{"ers", "ed", "er"} {
		if strings.HasSuffix(lower, suffix) {
			stem := w[:len(w)-len(suffix)]
			switch suffix {
			case "ers":
				return stem + "res"
			case "ed":
				// centered -> centred
				return stem[:len(stem)-2] + "red"
			default:
				return stem + "re"
			}
		}
	}
	return w
}

func fixDoubleL(w string) string {
	lower := strings.ToLower(w)
	for _, suffix := range []string{"ing", "ers", "ed", "er"} {
		if strings.HasSuffix(lower, suffix) {
			stem := w[:len(w)-len(suffix)]
			return stem + stem[len(stem)-1:] + w[len(stem):]
		}
	}
	return w
}

func replaceLast(w, old, repl string) string {
	i := strings.LastIndex(strings.ToLower(w), old)
	if i < 0 {
		return w
	}
	if strings.ToUpper(w[i:i+len(old)]) == w[i:i+len(old)] {
		repl = strings.ToUpper(repl)
	}
	return w[:i] + repl + w[i+len(old):]
}

// CheckSpelling returns the rule that rewrites word, if any. A word that
// contains one of the rule's exceptions is skipped.
func CheckSpelling(word string) (*SpellingRule, bool) {
	lower := strings.ToLower(word)
	for i := range SpellingRules {
		r := &SpellingRules[i]
		if !r.Re.MatchString(word) {
			continue
		}
		for _, e := range r.Exceptions {
			if strings.Contains(lower, e) {
				return nil, false
			}
		}
		return r, true
	}
	return nil, false
}

// FindSpellingIssues lists every word in text that a rule would rewrite.
func FindSpellingIssues(text string) []SpellingIssue {
	var issues []SpellingIssue
	for _, word := range reWordToken.FindAllString(text, -1) {
		lower := strings.ToLower(word)
		if (lower == "check" || lower == "checks") && !bankingContext.MatchString(text) {
			continue
		}
		rule, ok := CheckSpelling(word)
		if !ok {
			continue
		}
		fixed := rule.Fix(word)
		if fixed == word {
			continue
		}
		issues = append(issues, SpellingIssue{
			Word:         word,
			Fixed:        fixed,
			Rule:         rule,
			HasException: len(rule.Exceptions) > 0,
		})
	}
	return issues
}

// FixSpelling rewrites every flagged word in text.
func FixSpelling(text string) string {
	issues := FindSpellingIssues(text)
	if len(issues) == 0 {
		return text
	}
	fixes := make(map[string]string, len(issues))
	for _, is := range issues {
		fixes[is.Word] = is.Fixed
	}
	return reWordToken.ReplaceAllStringFunc(text, func(w string) string {
		if f, ok := fixes[w]; ok {
			return f
		}
		return w
	})
}
