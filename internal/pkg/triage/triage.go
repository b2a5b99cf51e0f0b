// Package triage is a rule-based wellbeing dialogue. It walks a visitor from
// a symptom through duration, severity and red-flag questions to a short
// self-care plan. It gives general guidance only and keeps no state beyond
// a single Dialogue value.
package triage

import (
	"fmt"
	"regexp"
	"strings"
)

type State string

const (
	AskSymptom  State = "ask_symptom"
	AskDuration State = "ask_duration"
	AskSeverity State = "ask_severity"
	AskRedFlags State = "ask_redflags"
	Aftercare   State = "aftercare"
)

// Durations and severities as recorded in a Context.
const (
	DurationUnderDay  = "<24h"
	DurationFewDays   = "1-3d"
	DurationOverThree = ">3d"
	SeverityMild      = "mild"
	SeverityModerate  = "moderate"
	SeveritySevere    = "severe"
)

// Context is what the dialogue has learned so far.
type Context struct {
	Symptom  string `json:"symptom,omitempty"`
	Duration string `json:"duration,omitempty"`
	Severity string `json:"severity,omitempty"`
	RedFlag  bool   `json:"red_flag"`
}

// Dialogue is one visitor's conversation. It is not safe for concurrent use.
type Dialogue struct {
	brand string
	state State
	ctx   Context
}

func New(brand string) *Dialogue {
	return &Dialogue{brand: brand, state: AskSymptom}
}

func (d *Dialogue) State() State     { return d.state }
func (d *Dialogue) Context() Context { return d.ctx }

// Greeting is the opening bot message.
func (d *Dialogue) Greeting() string {
	return fmt.Sprintf("Hi! I'm the %s wellbeing helper. Tell me what's bothering you, for example fever, cough or headache. (General guidance only, not medical advice.)", d.brand)
}

var (
	resetCmd = regexp.MustCompile(`(?i)^(reset|restart|clear)$`)
	helpCmd  = regexp.MustCompile(`(?i)^(help|tips)$`)
	yesRe    = regexp.MustCompile(`(?i)^(y|yes|haan|ha|true)`)
	noRe     = regexp.MustCompile(`(?i)^(n|no|nah|false)`)
)

// Reply advances the dialogue with one user message and returns the bot's replies.
func (d *Dialogue) Reply(raw string) []string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}
	switch {
	case resetCmd.MatchString(text):
		d.reset()
		return []string{"Reset done. Tell me what's bothering you (fever, cough, headache, ...)."}
	case helpCmd.MatchString(text):
		return []string{"Type a symptom such as 'headache', 'anxiety' or 'stomach upset', or answer my questions with options like '1-3 days', 'mild' or 'yes/no'. Say 'restart' to start over."}
	}

	switch d.state {
	case AskDuration:
		return d.onDuration(text)
	case AskSeverity:
		return d.onSeverity(text)
	case AskRedFlags:
		return d.onRedFlags(text)
	case Aftercare:
		return d.onAftercare(text)
	default:
		return d.onSymptom(text)
	}
}

func (d *Dialogue) reset() {
	d.state = AskSymptom
	d.ctx = Context{}
}

func (d *Dialogue) onSymptom(text string) []string {
	s, ok := DetectSymptom(text)
	if !ok {
		return []string{"I couldn't detect a symptom. Try 'fever', 'cough', 'headache', 'fatigue', 'anxiety' or 'stomach upset'."}
	}
	d.ctx = Context{Symptom: s}
	d.state = AskDuration
	return []string{"Got it, " + strings.ToLower(s) + ".", durationPrompt}
}

const durationPrompt = "How long has it been going on? Less than 24 hours, 1-3 days, or more than 3 days?"

func (d *Dialogue) onDuration(text string) []string {
	dur, ok := ParseDuration(text)
	if !ok {
		return []string{"Please choose one: 'less than 24 hours', '1-3 days' or 'more than 3 days'."}
	}
	d.ctx.Duration = dur
	d.state = AskSeverity
	return []string{"How severe is it right now? (mild / moderate / severe)"}
}

func (d *Dialogue) onSeverity(text string) []string {
	sev, ok := ParseSeverity(text)
	if !ok {
		return []string{"Please reply with 'mild', 'moderate' or 'severe'."}
	}
	d.ctx.Severity = sev
	d.state = AskRedFlags
	check := catalog[d.ctx.Symptom].redFlags
	if check == "" {
		check = "any alarming symptoms"
	}
	return []string{fmt.Sprintf("Before I advise, do you have %s (yes/no)", check)}
}

func (d *Dialogue) onRedFlags(text string) []string {
	yes := yesRe.MatchString(text)
	if !yes && !noRe.MatchString(text) {
		return []string{"Please answer 'yes' or 'no'."}
	}
	d.ctx.RedFlag = yes
	d.state = Aftercare
	if yes {
		return []string{
			fmt.Sprintf("Your answers suggest possible red flags for %s. Please seek urgent medical attention or call local emergency services.", strings.ToLower(d.ctx.Symptom)),
			"Would you like general comfort tips while you arrange care? (yes/no)",
		}
	}
	return []string{Advice(d.ctx), aftercarePrompt}
}

const aftercarePrompt = "Would you like 'more tips', 'mental wellbeing', 'nutrition' or 'share summary'?"

var (
	shareRe     = regexp.MustCompile(`(?i)share|summary`)
	mentalRe    = regexp.MustCompile(`(?i)mental|mind|anxiety|stress`)
	nutritionRe = regexp.MustCompile(`(?i)nutrition|diet|food`)
	moreRe      = regexp.MustCompile(`(?i)more|tips|extra`)
	doneRe      = regexp.MustCompile(`(?i)^no$|thanks|thank you`)
)

func (d *Dialogue) onAftercare(text string) []string {
	switch {
	case shareRe.MatchString(text):
		return []string{"Here's a summary you can share:\n\n" + Summary(d.brand, d.ctx)}
	case mentalRe.MatchString(text):
		return []string{mentalTips}
	case nutritionRe.MatchString(text):
		return []string{nutritionTips}
	case moreRe.MatchString(text):
		return []string{moreTips}
	case doneRe.MatchString(text):
		return []string{"Anytime! Type 'restart' to check another symptom."}
	case d.ctx.RedFlag && yesRe.MatchString(text):
		return []string{"Comfort tips:\n- " + strings.Join(catalog[d.ctx.Symptom].tips, "\n- ")}
	}
	if s, ok := DetectSymptom(text); ok {
		d.ctx = Context{Symptom: s}
		d.state = AskDuration
		return []string{"Okay, switching to " + strings.ToLower(s) + ".", durationPrompt}
	}
	return []string{"I can share 'more tips', 'mental wellbeing', 'nutrition' or 'share summary'. Say 'restart' to begin a new check."}
}

// Advice builds the self-care plan for a completed context without red flags.
func Advice(c Context) string {
	lines := []string{fmt.Sprintf("Here's a simple plan for %s:", strings.ToLower(c.Symptom))}
	for _, t := range catalog[c.Symptom].tips {
		lines = append(lines, "- "+t)
	}
	lines = append(lines,
		"",
		"Duration check: "+durationNote(c.Duration),
		"Severity check: "+severityNote(c.Severity),
		"",
		"General wellbeing:",
		"- Sleep 7-9 hours at consistent times.",
		"- Prefer whole foods, fruit and vegetables; stay hydrated.",
		"- A gentle 20-minute walk or stretches if you can.",
	)
	return strings.Join(lines, "\n")
}

// Summary is the shareable recap of a dialogue.
func Summary(brand string, c Context) string {
	redFlag := "No"
	if c.RedFlag {
		redFlag = "Yes"
	}
	return fmt.Sprintf("%s Wellbeing Summary:\n- Symptom: %s\n- Duration: %s\n- Severity: %s\n- Red flags: %s\n\nAdvice:\n%s",
		brand, c.Symptom, c.Duration, c.Severity, redFlag, Advice(c))
}

func durationNote(d string) string {
	switch d {
	case DurationOverThree:
		return "it has been more than 3 days, so consider seeing a clinician soon."
	case DurationFewDays:
		return "monitor over the next day or two and seek care if it gets worse."
	default:
		return "early phase; home care often helps, keep an eye on changes."
	}
}

func severityNote(s string) string {
	switch s {
	case SeveritySevere:
		return "severity sounds high, so urgent in-person care is recommended."
	case SeverityModerate:
		return "rest, fluids and over-the-counter relief may help. Escalate if it worsens."
	default:
		return "mild symptoms can usually be managed at home for now."
	}
}

const (
	mentalTips    = "Mental wellbeing tips:\n- 4-7-8 breathing: inhale 4s, hold 7s, exhale 8s, four cycles\n- A 10-minute mindful walk\n- Limit caffeine after 2pm\n- Note one thing you are grateful for before bed"
	nutritionTips = "Nutrition basics:\n- Half the plate vegetables, a quarter protein, a quarter whole grains\n- 6-8 glasses of water a day\n- Curd or yoghurt for gut health if it suits you\n- Prefer home-cooked meals over ultra-processed snacks"
	moreTips      = "More tips:\n- Keep a simple symptom log\n- Gentle stretching twice a day\n- 20 minutes of morning light\n- Consistent sleep and wake times"
)
