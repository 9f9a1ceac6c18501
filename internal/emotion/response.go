package emotion

import (
	"encoding/json"
	"strings"
)

type responseShape int

const (
	shapeUnrecognized responseShape = iota
	shapeLabelScores
	shapePositional
	shapeNestedLabelScores
)

func (s responseShape) String() string {
	switch s {
	case shapeLabelScores:
		return "label_scores"
	case shapePositional:
		return "positional"
	case shapeNestedLabelScores:
		return "nested_label_scores"
	default:
		return "unrecognized"
	}
}

type labelScore struct {
	Label *string  `json:"label"`
	Score *float64 `json:"score"`
}

// inferenceResponse is a decoded classifier response. Only one of pairs or
// scores is set, according to shape.
type inferenceResponse struct {
	shape  responseShape
	pairs  []labelScore
	scores []float64
}

// parseInferenceResponse tries each known response schema in turn and returns
// the first that decodes strictly. Payloads matching none are unrecognized.
func parseInferenceResponse(body []byte) inferenceResponse {
	var nested [][]labelScore
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 && validPairs(nested[0]) {
		return inferenceResponse{shape: shapeNestedLabelScores, pairs: nested[0]}
	}

	var pairs []labelScore
	if err := json.Unmarshal(body, &pairs); err == nil && validPairs(pairs) {
		return inferenceResponse{shape: shapeLabelScores, pairs: pairs}
	}

	var rows [][]float64
	if err := json.Unmarshal(body, &rows); err == nil && len(rows) > 0 && len(rows[0]) > 0 {
		return inferenceResponse{shape: shapePositional, scores: rows[0]}
	}

	var flat []float64
	if err := json.Unmarshal(body, &flat); err == nil && len(flat) > 0 {
		return inferenceResponse{shape: shapePositional, scores: flat}
	}

	return inferenceResponse{shape: shapeUnrecognized}
}

func validPairs(pairs []labelScore) bool {
	if len(pairs) == 0 {
		return false
	}
	for _, p := range pairs {
		if p.Label == nil {
			return false
		}
	}
	return true
}

// distribution converts a recognized response into a canonical distribution.
// Unknown labels and surplus positions are dropped.
func (r inferenceResponse) distribution() (Distribution, bool) {
	d := NewDistribution()
	switch r.shape {
	case shapeLabelScores, shapeNestedLabelScores:
		for _, p := range r.pairs {
			key := strings.ToLower(strings.TrimSpace(*p.Label))
			if !IsEmotion(key) || p.Score == nil {
				continue
			}
			d[key] = clamp(*p.Score, 0, 1)
		}
	case shapePositional:
		for i, score := range r.scores {
			if i >= len(labelOrder) {
				break
			}
			d[labelOrder[i]] = clamp(score, 0, 1)
		}
	default:
		return nil, false
	}
	return d, true
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
