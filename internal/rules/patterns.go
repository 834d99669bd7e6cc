// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import "strings"

// TextbookPatterns flag phrasing that reads as textbook English.
var TextbookPatterns = []Pattern{
	pattern(`\b(very|really|extremely)\s+(good|nice|bad|interesting)\b`,
		"Overly simple intensifier + adjective combination",
		"excellent", "lovely", "awful", "fascinating"),
	pattern(`\bI\s+am\s+(going\s+to|planning\s+to)\b`,
		"Unnatural formality for casual speech",
		"I'm going to", "I'll", "I plan to"),
	pattern(`\b(however|therefore|thus)\b`,
		"Overly formal connectors in casual context",
		"but", "so", "because"),
	pattern(`\b(in\s+conclusion|to\s+conclude|in\s+summary)\b`,
		"Essay-like closing phrases in conversation",
		"Anyway", "So", "That's it"),
	pattern(`\bI\s+would\s+like\s+to\s+say\b`,
		"Textbook politeness phrase (overly formal)",
		"I want to say", "I'd like to mention", "I think"),
}

// FindTextbookPatterns lists textbook phrasing in text.
func FindTextbookPatterns(text string) []PatternMatch {
	return findPatterns(text, TextbookPatterns)
}

// ExamPatterns flag IELTS speaking-test phrasing.
var ExamPatterns = []Pattern{
	pattern(`\bIn\s+my\s+opinion\b`, "Exam speaking phrase", "I think", "I reckon", "I'd say"),
	pattern(`\bIn\s+my\s+view\b`, "Exam speaking phrase", "I think", "I reckon", "My view is"),
	pattern(`\bPersonally,\s+I\s+believe\b`, "Exam speaking phrase", "I believe", "I think", "I reckon"),
	pattern(`\bI\s+strongly\s+believe\b`, "Overly emphatic", "I really believe", "I definitely think"),
	pattern(`\bI\s+am\s+convinced\s+that\b`, "Exam speaking phrase", "I'm sure that", "I believe that"),
	pattern(`\bIt\s+is\s+important\s+to\s+note\b`, "Formal marker", "The thing is", "What's important is"),
	pattern(`\bIt\s+is\s+worth\s+noting\b`, "Formal marker", "Worth mentioning", "Actually"),
	pattern(`\bA\s+key\s+point\s+is\b`, "Formal marker", "The main thing is", "What I mean is"),
	pattern(`\bA\s+significant\s+factor\b`, "Academic language", "An important thing", "Something important"),
	pattern(`\bTo\s+(some|a\s+certain)\s+extent\b`, "IELTS hedging phrase", "Kind of", "Sort of", "In a way"),
	pattern(`\bIt\s+could\s+be\s+argued\b`, "IELTS hedging phrase", "You could say", "Some people think"),
	pattern(`\bOne\s+could\s+say\b`, "IELTS hedging phrase", "You could say", "Some people might say"),
	pattern(`\bthe\s+general\s+public\b`, "Abstract term, too formal", "most people", "ordinary people"),
	pattern(`\bmany\s+individuals\b`, "Abstract term, too formal", "a lot of people", "most people"),
	pattern(`\bthe\s+vast\s+majority\b`, "Abstract term, too formal", "most people", "most of us"),
	pattern(`\bcontemporary\s+society\b`, "Abstract academic term", "today", "these days"),
	pattern(`\bthe\s+modern\s+world\b`, "Abstract academic term", "nowadays", "these days"),
	pattern(`\bI\s+would\s+like\s+to\s+(address|elaborate|emphasi[sz]e)\b`, "Academic framing", "I'd like to talk about", "Let me explain"),
	pattern(`\bPeople\s+(often|usually|generally|tend\s+to)\b`, "Generalized statement", "Some people", "A lot of people"),
	pattern(`\bSociety\s+(needs|requires|demands)\b`, "Generalized statement", "We need", "Most of us need"),
}

// RoboticPoliteness flags over-formal apologies and thanks.
var RoboticPoliteness = []Pattern{
	pattern(`\bI\s+sincerely\s+apologi[sz]e\b`, "Robotic politeness", "Sorry", "I'm sorry"),
	pattern(`\bI\s+apologi[sz]e\s+for\s+the\s+inconvenience\s+caused\b`, "Robotic politeness", "Sorry about that", "My apologies"),
	pattern(`\bI\s+regret\s+to\s+inform\s+you\b`, "Robotic politeness", "I'm afraid", "Unfortunately"),
	pattern(`\bPlease\s+accept\s+my\s+apologies\b`, "Robotic politeness", "Sorry about that", "I apologise"),
	pattern(`\bI\s+would\s+like\s+to\s+express\s+my\s+gratitude\b`, "Robotic gratitude", "Thanks", "Thank you"),
	pattern(`\bThank\s+you\s+very\s+much\s+indeed\b`, "Overly formal thanks", "Thanks", "Cheers"),
	pattern(`\bI\s+would\s+appreciate\s+if\b`, "Overly formal request", "Could you", "Would you mind"),
}

// ExamDensityThreshold is the number of exam phrases per 100 words above
// which text is considered exam language.
const ExamDensityThreshold = 0.3

// ExamAnalysis describes exam-language use in a text.
type ExamAnalysis struct {
	Matches []PatternMatch
	// Density is exam phrases per 100 words, capped at 1.
	Density float64
}

// UsesExam reports whether density exceeds ExamDensityThreshold.
func (a ExamAnalysis) UsesExam() bool {
	return a.Density > ExamDensityThreshold
}

// Suggestions returns the distinct suggestions of every match, in order.
func (a ExamAnalysis) Suggestions() []string {
	return distinctSuggestions(a.Matches)
}

// AnalyzeExamLanguage measures exam phrasing in text.
func AnalyzeExamLanguage(text string) ExamAnalysis {
	matches := findPatterns(text, ExamPatterns)
	words := len(strings.Fields(text))
	if words == 0 || len(matches) == 0 {
		return ExamAnalysis{Matches: matches}
	}
	d := float64(len(matches)) / (float64(words) / 100)
	if d > 1 {
		d = 1
	}
	return ExamAnalysis{Matches: matches, Density: d}
}

// FindRoboticPoliteness lists over-formal politeness in text.
func FindRoboticPoliteness(text string) []PatternMatch {
	return findPatterns(text, RoboticPoliteness)
}

// WrittenPatterns flag essay language in spoken turns.
var WrittenPatterns = []Pattern{
	pattern(`\bMoreover\b`, "Essay linking phrase", "And", "Also", "Plus"),
	pattern(`\bFurthermore\b`, "Essay linking phrase", "And", "Besides", "Plus"),
	pattern(`\bNevertheless\b`, "Essay linking phrase", "But", "Still", "Though"),
	pattern(`\bConversely\b`, "Essay linking phrase", "But", "On the other hand"),
	pattern(`\bIn\s+conclusion\b`, "Essay closing phrase", "Anyway", "So", "In the end"),
	pattern(`\bIn\s+summary\b`, "Essay closing phrase", "So basically", "To sum up"),
	pattern(`\bFurther\s+to\b`, "Overly formal phrase", "Following on from", "About"),
	pattern(`\bWithin\s+the\s+context\s+of\b`, "Overly formal construction", "When it comes to", "With"),
	pattern(`\bIt\s+could\s+be\s+argued\s+that\b`, "Academic hedging, too formal", "You could say that", "Some people think"),
	pattern(`\bI\s+must\s+confess\b`, "Overly formal confession", "I have to admit", "To be honest"),
	pattern(`\bI\s+would\s+like\s+to\s+inquire\b`, "Overly formal question", "Can I ask", "Could you tell me"),
	pattern(`\bPrior\s+to\b`, "Formal time reference", "Before", "Earlier"),
	pattern(`\bSubsequent\s+to\b`, "Formal time reference", "After", "Later"),
	pattern(`\bI\s+would\s+beg\s+to\s+differ\b`, "Overly formal disagreement", "I disagree", "Actually, I think"),
	pattern(`\bit\s+would\s+appear\s+that\b`, "Academic hedging", "It seems", "It looks like"),
	pattern(`\bOne\s+might\s+argue\b`, "Academic hedging", "You could argue", "Some people might say"),
	pattern(`\bIn\s+light\s+of\s+the\s+aforementioned\b`, "Academic reference", "Given what I said", "Based on that"),
	pattern(`\bat\s+this\s+point\s+in\s+time\b`, "Wordy time reference", "Now", "Right now"),
	pattern(`\bdue\s+to\s+the\s+fact\s+that\b`, "Wordy causal connector", "Because", "Since"),
	pattern(`\bfor\s+the\s+purpose\s+of\b`, "Wordy explanation", "To", "For"),
	pattern(`\bwith\s+regard\s+to\b`, "Formal construction", "About", "Regarding"),
	pattern(`\bas\s+far\s+as\s+.+?\s+is\s+concerned\b`, "Wordy construction", "When it comes to", "As for"),
}

// FindWrittenPatterns lists written-register phrasing in text.
func FindWrittenPatterns(text string) []PatternMatch {
	return findPatterns(text, WrittenPatterns)
}

// Suggestions returns the distinct suggestions of matches, in order.
func Suggestions(matches []PatternMatch) []string {
	return distinctSuggestions(matches)
}

func distinctSuggestions(matches []PatternMatch) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range matches {
		for _, s := range m.Pattern.Suggestions {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}
