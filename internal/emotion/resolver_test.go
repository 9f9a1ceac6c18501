package emotion

import "testing"

func TestResolveDecisionList(t *testing.T) {
	tests := []struct {
		name string
		in   Distribution
		want string
	}{
		{name: "sad and angry preempts single rules", in: Distribution{Sadness: 0.4, Anger: 0.4}, want: MoodSadAngry},
		{name: "sad and angry at threshold", in: Distribution{Sadness: 0.35, Anger: 0.35}, want: MoodSadAngry},
		{name: "happy", in: Distribution{Joy: 0.7, Anger: 0.1, Sadness: 0.1}, want: MoodHappy},
		{name: "joy blocked by anger", in: Distribution{Joy: 0.7, Anger: 0.2}, want: MoodNeutral},
		{name: "sad", in: Distribution{Sadness: 0.6, Anger: 0.2}, want: MoodSad},
		{name: "angry", in: Distribution{Anger: 0.55, Sadness: 0.1}, want: MoodAngry},
		{name: "anxious", in: Distribution{Fear: 0.55}, want: MoodAnxious},
		{name: "surprised", in: Distribution{Surprise: 0.6}, want: MoodSurprised},
		{name: "surprise below threshold", in: Distribution{Surprise: 0.59}, want: MoodNeutral},
		{name: "empty distribution", in: Distribution{}, want: MoodNeutral},
		{name: "fear beats surprise by order", in: Distribution{Fear: 0.5, Surprise: 0.9}, want: MoodAnxious},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.in)
			if got.Mood != tt.want {
				t.Fatalf("Resolve(%v).Mood = %q, want %q", tt.in, got.Mood, tt.want)
			}
			if got.Advice == "" {
				t.Fatalf("Resolve(%v) returned empty advice", tt.in)
			}
		})
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	d := Distribution{Joy: 0.2, Sadness: 0.45, Anger: 0.4, Fear: 0.1}
	first := Resolve(d)
	second := Resolve(d)
	if first != second {
		t.Fatalf("Resolve not idempotent: first=%+v second=%+v", first, second)
	}
	if d[Sadness] != 0.45 || d[Anger] != 0.4 {
		t.Fatalf("Resolve mutated its input: %v", d)
	}
}

func TestMoodsListsEveryLabel(t *testing.T) {
	got := Moods()
	want := []string{MoodSadAngry, MoodHappy, MoodSad, MoodAngry, MoodAnxious, MoodSurprised, MoodNeutral}
	if len(got) != len(want) {
		t.Fatalf("len(Moods())=%d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Moods()[%d]=%q, want %q", i, got[i], want[i])
		}
	}
}
