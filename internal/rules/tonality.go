// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

// Register is a formality level. The numeric order is meaningful:
// distance between registers is the absolute difference.
type Register int

const (
	Casual Register = iota
	Neutral
	Professional
	Formal
)

func (r Register) String() string {
	switch r {
	case Casual:
		return "CASUAL"
	case Neutral:
		return "NEUTRAL"
	case Professional:
		return "PROFESSIONAL"
	case Formal:
		return "FORMAL"
	}
	return "UNKNOWN"
}

// Distance returns how many levels apart r and o are.
func (r Register) Distance(o Register) int {
	d := int(r) - int(o)
	if d < 0 {
		return -d
	}
	return d
}

// ToneMarker is a word or phrase that signals a register.
type ToneMarker struct {
	Text     string
	Register Register
}

var ToneMarkers = []ToneMarker{
	{"mate", Casual}, {"cheers", Casual}, {"bloke", Casual}, {"fancy", Casual},
	{"loads of", Casual}, {"brilliant", Casual}, {"gonna", Casual}, {"wanna", Casual},
	{"yeah", Casual}, {"cool", Casual}, {"hey", Casual}, {"no worries", Casual},

	{"quite", Neutral}, {"rather", Neutral}, {"fairly", Neutral}, {"generally", Neutral},
	{"i think", Neutral}, {"i suppose", Neutral},

	{"regarding", Professional}, {"ensure", Professional}, {"coordinate", Professional},
	{"facilitate", Professional}, {"leverage", Professional}, {"stakeholder", Professional},
	{"deliverable", Professional}, {"touch base", Professional},

	{"furthermore", Formal}, {"nevertheless", Formal}, {"accordingly", Formal},
	{"pursuant to", Formal}, {"hereby", Formal}, {"henceforth", Formal},
}

// CategoryRegisters lists the registers a scenario category expects.
// Categories not listed expect Neutral.
var CategoryRegisters = map[string][]Register{
	"Social":            {Casual},
	"Workplace":         {Professional},
	"Service/Logistics": {Neutral},
	"Advanced":          {Professional, Formal},
}

// ExpectedRegisters returns the registers expected for category.
func ExpectedRegisters(category string) []Register {
	if r, ok := CategoryRegisters[category]; ok {
		return r
	}
	return []Register{Neutral}
}

// AnalyzeRegister returns the register with the most markers in text,
// Neutral when none match. Ties go to the lower register.
func AnalyzeRegister(text string) Register {
	var scores [Formal + 1]int
	for _, m := range ToneMarkers {
		if ContainsPhrase(text, m.Text) {
			scores[m.Register]++
		}
	}
	best, top := Neutral, 0
	for r := Casual; r <= Formal; r++ {
		if scores[r] > top {
			best, top = r, scores[r]
		}
	}
	return best
}

// HasMarkers reports whether any tone marker occurs in text.
func HasMarkers(text string) bool {
	for _, m := range ToneMarkers {
		if ContainsPhrase(text, m.Text) {
			return true
		}
	}
	return false
}

// ToneCheck is the outcome of comparing text against a category.
type ToneCheck struct {
	Detected Register
	Expected []Register
	// Distance is the smallest distance to any expected register.
	Distance int
}

// Matches reports whether the detected register is within one level of
// an expected register.
func (c ToneCheck) Matches() bool {
	return c.Distance <= 1
}

// CheckTone compares the register of text with its category's expectation.
func CheckTone(text, category string) ToneCheck {
	detected := AnalyzeRegister(text)
	expected := ExpectedRegisters(category)
	dist := Formal.Distance(Casual) + 1
	for _, e := range expected {
		if d := detected.Distance(e); d < dist {
			dist = d
		}
	}
	return ToneCheck{Detected: detected, Expected: expected, Distance: dist}
}

// Hedges are softening phrases typical of British workplace speech.
var Hedges = []string{
	"i was wondering if", "would you mind", "perhaps", "i might suggest",
	"possibly", "it seems that", "one could argue", "somewhat", "i'm afraid",
}

// ContainsHedging reports whether text uses any hedge.
func ContainsHedging(text string) bool {
	for _, h := range Hedges {
		if ContainsPhrase(text, h) {
			return true
		}
	}
	return false
}
