package triage

import (
	"regexp"
	"strings"
)

type symptomInfo struct {
	pattern  *regexp.Regexp
	redFlags string
	tips     []string
}

// symptoms is checked in order; the first matching pattern wins.
var symptoms = []string{"Fever", "Cough", "Cold", "Headache", "Fatigue", "Anxiety", "Stomach upset"}

var catalog = map[string]symptomInfo{
	"Fever": {
		pattern:  regexp.MustCompile(`(?i)fever|temperature|pyrex`),
		redFlags: "very high fever (over 39.4°C), stiff neck, confusion, severe dehydration, rash or trouble breathing?",
		tips:     []string{"Stay hydrated with water, ORS or soups.", "Rest and eat light meals.", "Paracetamol can help with fever or pain (follow the label)."},
	},
	"Cough": {
		pattern:  regexp.MustCompile(`(?i)cough|khansi`),
		redFlags: "high fever with cough, chest pain, blue lips, coughing blood or shortness of breath?",
		tips:     []string{"Warm fluids; honey and ginger if suitable.", "Humidify the room and avoid smoke or dust.", "Salt-water gargles for throat irritation."},
	},
	"Cold": {
		pattern:  regexp.MustCompile(`(?i)cold|runny nose|sneez`),
		redFlags: "persistent high fever, severe sinus or ear pain, or symptoms lasting over 10 days?",
		tips:     []string{"Fluids and rest; steam inhalation can ease congestion.", "Saline nasal spray; avoid cold drafts.", "Over-the-counter relief if needed (per label)."},
	},
	"Headache": {
		pattern:  regexp.MustCompile(`(?i)headache|migraine|sir dard`),
		redFlags: "a sudden 'worst ever' headache, head injury, weakness or numbness, confusion, vision loss or stiff neck?",
		tips:     []string{"Hydrate and rest in a low-light room.", "Check whether missed meals or caffeine withdrawal triggered it.", "Gentle neck stretches."},
	},
	"Fatigue": {
		pattern:  regexp.MustCompile(`(?i)fatigue|tired|exhaust`),
		redFlags: "fainting, chest pain, breathlessness at rest, severe palpitations or unexplained weight loss?",
		tips:     []string{"Prioritise 7-9 hours of sleep on a consistent schedule.", "Balanced meals with iron-rich foods and protein.", "A short daylight walk; limit late-evening screens."},
	},
	"Anxiety": {
		pattern:  regexp.MustCompile(`(?i)anxiety|stress|panic|overwhelmed`),
		redFlags: "thoughts of self-harm, fainting, chest pain or breathlessness that does not ease with rest?",
		tips:     []string{"Box breathing: inhale 4s, hold 4s, exhale 4s, hold 4s.", "Grounding: name 5 things you see, 4 you feel, 3 you hear.", "Cut back on caffeine and talk to someone you trust."},
	},
	"Stomach upset": {
		pattern:  regexp.MustCompile(`(?i)stomach|nausea|vomit|gastric`),
		redFlags: "severe belly pain, blood in vomit or stool, black stools, nonstop vomiting or very little urine?",
		tips:     []string{"Small sips of ORS; bland foods like banana, rice, curd or toast.", "Avoid oily or spicy food until better.", "Wash hands and drink clean water."},
	},
}

// DetectSymptom maps free text to one of the known symptoms.
func DetectSymptom(text string) (string, bool) {
	for _, s := range symptoms {
		if catalog[s].pattern.MatchString(text) {
			return s, true
		}
	}
	return "", false
}

var (
	overThreeRe = regexp.MustCompile(`(?i)>|more than|over|3\+|week|7 days`)
	underDayRe  = regexp.MustCompile(`(?i)<|less|under|within|24|hour|today`)
	fewDaysRe   = regexp.MustCompile(`(?i)1-?3|1 to 3|two|three|couple|few|days?`)
)

// ParseDuration buckets a free-text duration. The longest bucket is checked
// first so "more than 3 days" is not read as "1-3 days".
func ParseDuration(text string) (string, bool) {
	t := strings.NewReplacer("\u2013", "-", "\u2014", "-").Replace(text)
	switch {
	case overThreeRe.MatchString(t):
		return DurationOverThree, true
	case underDayRe.MatchString(t):
		return DurationUnderDay, true
	case fewDaysRe.MatchString(t):
		return DurationFewDays, true
	}
	return "", false
}

var (
	mildRe     = regexp.MustCompile(`(?i)mild|light|thoda`)
	moderateRe = regexp.MustCompile(`(?i)moderate|medium|beech`)
	severeRe   = regexp.MustCompile(`(?i)severe|bahut|zyada|intense|worst`)
)

func ParseSeverity(text string) (string, bool) {
	switch {
	case mildRe.MatchString(text):
		return SeverityMild, true
	case moderateRe.MatchString(text):
		return SeverityModerate, true
	case severeRe.MatchString(text):
		return SeveritySevere, true
	}
	return "", false
}
