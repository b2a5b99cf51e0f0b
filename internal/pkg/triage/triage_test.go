package triage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialogue_HappyPath(t *testing.T) {
	d := New("NutriBridge")
	assert.Equal(t, AskSymptom, d.State())
	assert.Contains(t, d.Greeting(), "NutriBridge")

	out := d.Reply("I have a bad headache")
	require.Len(t, out, 2)
	assert.Equal(t, AskDuration, d.State())
	assert.Equal(t, "Headache", d.Context().Symptom)

	d.Reply("1\u20133 days")
	assert.Equal(t, AskSeverity, d.State())
	assert.Equal(t, DurationFewDays, d.Context().Duration)

	out = d.Reply("moderate")
	assert.Equal(t, AskRedFlags, d.State())
	assert.Contains(t, out[0], "worst ever")

	out = d.Reply("no")
	assert.Equal(t, Aftercare, d.State())
	require.Len(t, out, 2)
	assert.Contains(t, out[0], "plan for headache")
	assert.Contains(t, out[0], "monitor over the next day or two")
	assert.False(t, d.Context().RedFlag)

	out = d.Reply("share summary")
	assert.Contains(t, out[0], "- Symptom: Headache")
	assert.Contains(t, out[0], "- Red flags: No")
}

func TestDialogue_RedFlagGivesUrgentCareLine(t *testing.T) {
	d := New("NB")
	d.Reply("fever")
	d.Reply("more than 3 days")
	d.Reply("severe")
	out := d.Reply("yes")
	assert.Contains(t, out[0], "urgent medical attention")
	assert.True(t, d.Context().RedFlag)

	out = d.Reply("yes please")
	assert.Contains(t, out[0], "Comfort tips")
}

func TestDialogue_RepromptsOnUnrecognisedInput(t *testing.T) {
	d := New("NB")
	out := d.Reply("purple elephants")
	assert.Contains(t, out[0], "couldn't detect a symptom")
	assert.Equal(t, AskSymptom, d.State())
	assert.Empty(t, d.Context().Symptom)

	d.Reply("cough")
	out = d.Reply("no idea")
	assert.Contains(t, out[0], "Please choose one")
	assert.Equal(t, AskDuration, d.State())

	d.Reply("today")
	out = d.Reply("hmm")
	assert.Contains(t, out[0], "mild")
	assert.Equal(t, AskSeverity, d.State())

	d.Reply("mild")
	out = d.Reply("maybe")
	assert.Equal(t, []string{"Please answer 'yes' or 'no'."}, out)
	assert.Equal(t, AskRedFlags, d.State())
}

func TestDialogue_CommandsWorkInAnyState(t *testing.T) {
	d := New("NB")
	d.Reply("fatigue")
	d.Reply("a week")
	out := d.Reply("HELP")
	assert.Contains(t, out[0], "restart")
	assert.Equal(t, AskSeverity, d.State())

	out = d.Reply("restart")
	assert.Contains(t, out[0], "Reset done")
	assert.Equal(t, AskSymptom, d.State())
	assert.Equal(t, Context{}, d.Context())
}

func TestDialogue_AftercareNewSymptomRestartsAtDuration(t *testing.T) {
	d := New("NB")
	d.Reply("cold")
	d.Reply("less than 24 hours")
	d.Reply("mild")
	d.Reply("no")

	out := d.Reply("actually my stomach hurts")
	assert.Equal(t, AskDuration, d.State())
	assert.Equal(t, Context{Symptom: "Stomach upset"}, d.Context())
	assert.True(t, strings.HasPrefix(out[0], "Okay, switching to stomach upset"))

	d2 := New("NB")
	d2.Reply("anxiety")
	d2.Reply("two days")
	d2.Reply("mild")
	d2.Reply("n")
	assert.Contains(t, d2.Reply("nutrition")[0], "Nutrition basics")
	assert.Contains(t, d2.Reply("mental wellbeing")[0], "Mental wellbeing")
	assert.Contains(t, d2.Reply("more")[0], "More tips")
	assert.Contains(t, d2.Reply("thanks")[0], "Anytime")
}

func TestDialogue_EmptyInputIsIgnored(t *testing.T) {
	d := New("NB")
	assert.Nil(t, d.Reply("   "))
	assert.Equal(t, AskSymptom, d.State())
}

func TestParseDuration(t *testing.T) {
	cases := map[string]string{
		"Less than 24 hours": DurationUnderDay,
		"< 24 hours":         DurationUnderDay,
		"a few hours":        DurationUnderDay,
		"1\u20133 days":      DurationFewDays,
		"1-3 days":           DurationFewDays,
		"a couple of days":   DurationFewDays,
		"More than 3 days":   DurationOverThree,
		"> 3 days":           DurationOverThree,
		"over a week":        DurationOverThree,
	}
	for in, want := range cases {
		got, ok := ParseDuration(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseDuration("dunno")
	assert.False(t, ok)
}

func TestParseSeverity(t *testing.T) {
	for in, want := range map[string]string{
		"Mild":         SeverityMild,
		"medium-ish":   SeverityModerate,
		"very intense": SeveritySevere,
	} {
		got, ok := ParseSeverity(in)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := ParseSeverity("unsure")
	assert.False(t, ok)
}

func TestDetectSymptom(t *testing.T) {
	for in, want := range map[string]string{
		"high temperature":   "Fever",
		"runny nose":         "Cold",
		"feeling exhausted":  "Fatigue",
		"panic attacks":      "Anxiety",
		"nausea since lunch": "Stomach upset",
	} {
		got, ok := DetectSymptom(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
}
