package domain

import "time"

// JournalEntry is one persisted journal record.
type JournalEntry struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Content        string    `json:"content"`
	Mood           string    `json:"mood"`
	MoodData       MoodData  `json:"mood_data"`
	SentimentScore float64   `json:"sentiment_score"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// MoodData is the analysis snapshot stored alongside an entry.
type MoodData struct {
	Emotions        map[string]float64 `json:"emotions"`
	DominantEmotion string             `json:"dominantEmotion"`
	Advice          string             `json:"advice"`
	Timestamp       string             `json:"timestamp"`
	IsFallback      bool               `json:"isFallback,omitempty"`
}

type EntryStats struct {
	TotalEntries int     `json:"total_entries"`
	WeekEntries  int     `json:"week_entries"`
	AvgScore     float64 `json:"avg_score"`
	Streak       int     `json:"streak"`
}

// TrendPoint is one day of averaged emotion scores.
type TrendPoint struct {
	Date     string             `json:"date"`
	Entries  int                `json:"entries"`
	Emotions map[string]float64 `json:"emotions"`
}

type MoodShare struct {
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
}

// MoodEvent is published after an entry is saved.
type MoodEvent struct {
	EntryID         string  `json:"entry_id"`
	UserID          string  `json:"user_id"`
	Mood            string  `json:"mood"`
	DominantEmotion string  `json:"dominant_emotion"`
	Score           float64 `json:"score"`
	IsFallback      bool    `json:"is_fallback"`
	TS              string  `json:"ts"`
}
