package emotion

const (
	MoodSadAngry  = "Sad & Angry"
	MoodHappy     = "Happy"
	MoodSad       = "Sad"
	MoodAngry     = "Angry"
	MoodAnxious   = "Anxious"
	MoodSurprised = "Surprised"
	MoodNeutral   = "Neutral"
)

// Verdict is the mood label and supportive message derived from a distribution.
type Verdict struct {
	Mood   string `json:"mood"`
	Advice string `json:"advice"`
}

type rule struct {
	match   func(d Distribution) bool
	verdict Verdict
}

// rules are evaluated top to bottom and the first match wins. The combined
// sadness+anger rule sits first even though its thresholds are lower than the
// single-emotion rules.
var rules = []rule{
	{
		match: func(d Distribution) bool { return d[Sadness] >= 0.35 && d[Anger] >= 0.35 },
		verdict: Verdict{
			Mood:   MoodSadAngry,
			Advice: "Oh no, that sounds really bad. Please take a breath, sip some water, check for any injuries, and tell a responsible adult or someone you trust. You didn't deserve that.",
		},
	},
	{
		match: func(d Distribution) bool { return d[Joy] >= 0.6 && d[Anger] < 0.2 && d[Sadness] < 0.2 },
		verdict: Verdict{
			Mood:   MoodHappy,
			Advice: "That is really nice to hear! Keep enjoying these moments and maybe celebrate with a small treat or a message to a friend.",
		},
	},
	{
		match: func(d Distribution) bool { return d[Sadness] >= 0.5 && d[Anger] < 0.35 },
		verdict: Verdict{
			Mood:   MoodSad,
			Advice: "I'm really sorry you're going through this. Try a gentle check-in: a glass of water, slow breathing, and reach out to someone you trust.",
		},
	},
	{
		match: func(d Distribution) bool { return d[Anger] >= 0.5 && d[Sadness] < 0.35 },
		verdict: Verdict{
			Mood:   MoodAngry,
			Advice: "It's completely valid to feel angry. When you're ready, try writing down what happened and what you need right now.",
		},
	},
	{
		match: func(d Distribution) bool { return d[Fear] >= 0.5 },
		verdict: Verdict{
			Mood:   MoodAnxious,
			Advice: "That sounds stressful. Try 4-7-8 breathing (in 4, hold 7, out 8) and ground yourself by noticing 5 things you can see.",
		},
	},
	{
		match: func(d Distribution) bool { return d[Surprise] >= 0.6 },
		verdict: Verdict{
			Mood:   MoodSurprised,
			Advice: "That was unexpected! Take a moment to process and decide what support you might want.",
		},
	},
}

var defaultVerdict = Verdict{
	Mood:   MoodNeutral,
	Advice: "Thanks for sharing. Keep listening to yourself. A short walk or a favorite song might help right now.",
}

// Resolve maps a distribution to a mood label and advice. Missing keys read as 0.
func Resolve(d Distribution) Verdict {
	for _, r := range rules {
		if r.match(d) {
			return r.verdict
		}
	}
	return defaultVerdict
}

// Moods lists every label Resolve can produce.
func Moods() []string {
	out := make([]string, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.verdict.Mood)
	}
	return append(out, defaultVerdict.Mood)
}
