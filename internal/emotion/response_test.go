package emotion

import "testing"

func TestParseInferenceResponseShapes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantShape responseShape
		wantJoy   float64
	}{
		{name: "label scores", body: `[{"label":"JOY","score":0.8},{"label":"sadness","score":0.1}]`, wantShape: shapeLabelScores, wantJoy: 0.8},
		{name: "nested label scores", body: `[[{"label":"joy","score":0.65},{"label":"anger","score":0.2}]]`, wantShape: shapeNestedLabelScores, wantJoy: 0.65},
		{name: "positional flat", body: `[0.1,0,0.05,0.75,0.05,0.03,0.02]`, wantShape: shapePositional, wantJoy: 0.75},
		{name: "positional nested", body: `[[0.1,0,0.05,0.75,0.05,0.03,0.02]]`, wantShape: shapePositional, wantJoy: 0.75},
		{name: "error object", body: `{"error":"Model is currently loading","estimated_time":20}`, wantShape: shapeUnrecognized},
		{name: "empty array", body: `[]`, wantShape: shapeUnrecognized},
		{name: "empty nested", body: `[[]]`, wantShape: shapeUnrecognized},
		{name: "objects without labels", body: `[{"score":0.3}]`, wantShape: shapeUnrecognized},
		{name: "not json", body: `<html>bad gateway</html>`, wantShape: shapeUnrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := parseInferenceResponse([]byte(tt.body))
			if parsed.shape != tt.wantShape {
				t.Fatalf("shape=%s, want %s", parsed.shape, tt.wantShape)
			}
			d, ok := parsed.distribution()
			if tt.wantShape == shapeUnrecognized {
				if ok {
					t.Fatalf("expected no distribution for unrecognized payload")
				}
				return
			}
			if !ok {
				t.Fatalf("expected distribution")
			}
			assertNear(t, d[Joy], tt.wantJoy)
			for _, emo := range Emotions() {
				if _, present := d[emo]; !present {
					t.Fatalf("missing key %s", emo)
				}
			}
		})
	}
}

func TestPositionalScoresFollowLabelOrder(t *testing.T) {
	parsed := parseInferenceResponse([]byte(`[0.1,0,0.05,0.75,0.05,0.03,0.02]`))
	d, ok := parsed.distribution()
	if !ok {
		t.Fatalf("expected distribution")
	}
	want := map[string]float64{
		Anger: 0.1, Disgust: 0, Fear: 0.05, Joy: 0.75, Neutral: 0.05, Sadness: 0.03, Surprise: 0.02,
	}
	for k, v := range want {
		assertNear(t, d[k], v)
	}
}

func TestUnknownLabelsAreDropped(t *testing.T) {
	parsed := parseInferenceResponse([]byte(`[{"label":"optimism","score":0.9},{"label":"Fear","score":0.4}]`))
	d, ok := parsed.distribution()
	if !ok {
		t.Fatalf("expected distribution")
	}
	if _, present := d["optimism"]; present {
		t.Fatalf("unknown label leaked into distribution")
	}
	assertNear(t, d[Fear], 0.4)
	if len(d) != len(labelOrder) {
		t.Fatalf("len=%d, want %d", len(d), len(labelOrder))
	}
}

func TestDominantTieBreak(t *testing.T) {
	d := NewDistribution()
	d[Joy] = 0.4
	d[Anger] = 0.4
	got, score := d.Dominant()
	if got != Anger || score != 0.4 {
		t.Fatalf("dominant=(%s,%.2f), want (anger,0.40)", got, score)
	}

	if got, _ := NewDistribution().Dominant(); got != Neutral {
		t.Fatalf("dominant of zero distribution=%s, want neutral", got)
	}
}
