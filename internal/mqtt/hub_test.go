package mqtt

import (
	"io"
	"log/slog"
	"testing"

	"sentio/internal/domain"
)

func TestTopics(t *testing.T) {
	if got := TopicMood("sentio", "u-1"); got != "sentio/user/u-1/mood" {
		t.Fatalf("TopicMood=%s", got)
	}
	if got := TopicUserMoods("sentio/dev"); got != "sentio/dev/user/+/mood" {
		t.Fatalf("TopicUserMoods=%s", got)
	}
}

func TestParseUserID(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		prefix  string
		want    string
		wantErr bool
	}{
		{name: "simple", topic: "sentio/user/u-1/mood", prefix: "sentio", want: "u-1"},
		{name: "nested prefix", topic: "a/b/user/u-2/mood", prefix: "a/b", want: "u-2"},
		{name: "prefix mismatch", topic: "other/user/u-1/mood", prefix: "sentio", wantErr: true},
		{name: "wrong kind", topic: "sentio/user/u-1/stats", prefix: "sentio", wantErr: true},
		{name: "too short", topic: "sentio/user", prefix: "sentio", wantErr: true},
		{name: "empty user", topic: "sentio/user//mood", prefix: "sentio", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUserID(tt.topic, tt.prefix)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseUserID(%q) expected error, got %q", tt.topic, got)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("ParseUserID(%q) = (%q,%v), want %q", tt.topic, got, err, tt.want)
			}
		})
	}
}

func TestHandleMood(t *testing.T) {
	h := NewHub(HubConfig{TopicPrefix: "sentio"}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	var got []domain.MoodEvent
	handler := func(_ string, e domain.MoodEvent) { got = append(got, e) }

	h.handleMood("sentio/user/u-1/mood", []byte(`{"entry_id":"e1","mood":"Happy"}`), handler)
	h.handleMood("sentio/user/u-1/mood", []byte(`{"entry_id":"e2","user_id":"u-2"}`), handler)
	h.handleMood("sentio/user/u-1/mood", []byte(`not json`), handler)
	h.handleMood("elsewhere/user/u-1/mood", []byte(`{}`), handler)

	if len(got) != 1 {
		t.Fatalf("handled %d events, want 1", len(got))
	}
	if got[0].UserID != "u-1" || got[0].Mood != "Happy" {
		t.Fatalf("unexpected event: %+v", got[0])
	}
}
