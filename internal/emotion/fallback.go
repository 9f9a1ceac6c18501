package emotion

import "strings"

// scoredEmotions are the emotions the keyword classifier can detect, in the
// order used to pick its dominant emotion.
var scoredEmotions = [...]string{Joy, Sadness, Anger, Fear, Surprise}

const (
	phraseWeight = 2
	wordWeight   = 1

	// significanceThreshold is the share the leading emotion needs before it is
	// reported as dominant instead of neutral.
	significanceThreshold = 0.25

	lowSignalAdvice = "Thanks for sharing. If you add a bit more detail, I can help better."
)

func isScored(label string) bool {
	for _, l := range scoredEmotions {
		if l == label {
			return true
		}
	}
	return false
}

// Classifier scores text against a lexicon without any network access.
type Classifier struct {
	lexicon *Lexicon
}

func NewClassifier(lexicon *Lexicon) *Classifier {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	return &Classifier{lexicon: lexicon}
}

// Classify always produces a result. Keywords match as substrings of
// whitespace-separated tokens, so "made" counts toward "mad".
func (c *Classifier) Classify(text string) Result {
	counts := c.count(text)

	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		d := NewDistribution()
		d[Neutral] = 1
		return Result{
			Mood:            MoodNeutral,
			Score:           1,
			Emotions:        d,
			DominantEmotion: Neutral,
			Advice:          lowSignalAdvice,
			IsFallback:      true,
		}
	}

	d := NewDistribution()
	for _, emo := range scoredEmotions {
		d[emo] = float64(counts[emo]) / float64(total)
	}

	dominant, top := Neutral, 0.0
	for _, emo := range scoredEmotions {
		if d[emo] > top {
			dominant, top = emo, d[emo]
		}
	}
	if top < significanceThreshold {
		dominant = Neutral
	}

	verdict := Resolve(d)
	return Result{
		Mood:            verdict.Mood,
		Score:           top,
		Emotions:        d,
		DominantEmotion: dominant,
		Advice:          verdict.Advice,
		IsFallback:      true,
	}
}

func (c *Classifier) count(text string) map[string]int {
	t := strings.ToLower(text)
	counts := make(map[string]int, len(scoredEmotions))

	for _, e := range c.lexicon.entries {
		for _, p := range e.phrases {
			if strings.Contains(t, p) {
				counts[e.emotion] += phraseWeight
			}
		}
	}

	for _, word := range strings.Fields(t) {
		for _, e := range c.lexicon.entries {
			if containsAny(word, e.keywords) {
				counts[e.emotion] += wordWeight
			}
		}
	}
	return counts
}

func containsAny(text string, cues []string) bool {
	for _, c := range cues {
		if strings.Contains(text, c) {
			return true
		}
	}
	return false
}
