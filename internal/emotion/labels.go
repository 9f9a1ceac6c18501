package emotion

const (
	Joy      = "joy"
	Sadness  = "sadness"
	Anger    = "anger"
	Fear     = "fear"
	Surprise = "surprise"
	Disgust  = "disgust"
	Neutral  = "neutral"
)

// labelOrder is the positional order of the remote classifier's output vector.
// Dominant-emotion scans walk it so that exact ties resolve to the earlier label.
var labelOrder = [...]string{Anger, Disgust, Fear, Joy, Neutral, Sadness, Surprise}

// displayOrder is the order used when presenting a distribution.
var displayOrder = [...]string{Joy, Sadness, Anger, Fear, Surprise, Disgust, Neutral}

// LabelOrder returns the remote classifier label order.
func LabelOrder() []string {
	return append([]string(nil), labelOrder[:]...)
}

// Emotions returns the canonical emotion set in display order.
func Emotions() []string {
	return append([]string(nil), displayOrder[:]...)
}

func IsEmotion(label string) bool {
	for _, l := range labelOrder {
		if l == label {
			return true
		}
	}
	return false
}

// Distribution maps every canonical emotion to a score in [0,1]. Scores are
// independent confidences and need not sum to one.
type Distribution map[string]float64

func NewDistribution() Distribution {
	d := make(Distribution, len(labelOrder))
	for _, l := range labelOrder {
		d[l] = 0
	}
	return d
}

func (d Distribution) Clone() Distribution {
	out := NewDistribution()
	for k, v := range d {
		if IsEmotion(k) {
			out[k] = v
		}
	}
	return out
}

// Dominant returns the emotion with the strictly greatest score, scanning the
// remote label order. An all-zero distribution is neutral.
func (d Distribution) Dominant() (string, float64) {
	top, topScore := Neutral, 0.0
	for _, l := range labelOrder {
		if d[l] > topScore {
			top, topScore = l, d[l]
		}
	}
	return top, topScore
}

// Result is the outcome of one analysis call.
type Result struct {
	Mood            string       `json:"mood"`
	Score           float64      `json:"score"`
	Emotions        Distribution `json:"emotions"`
	DominantEmotion string       `json:"dominant_emotion"`
	Advice          string       `json:"advice"`
	IsFallback      bool         `json:"is_fallback"`
}

const emptyInputAdvice = "Write something to analyze your mood!"

// emptyResult is returned for blank input without touching the network.
func emptyResult() Result {
	d := NewDistribution()
	d[Neutral] = 1
	return Result{
		Mood:            "neutral",
		Score:           1,
		Emotions:        d,
		DominantEmotion: Neutral,
		Advice:          emptyInputAdvice,
	}
}
