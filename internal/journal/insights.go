package journal

import (
	"context"
	"fmt"
	"time"

	"sentio/internal/domain"
	"sentio/internal/emotion"
)

const streakWindowDays = 30

// trendEmotions are the series drawn on the mood trend chart.
var trendEmotions = []string{emotion.Joy, emotion.Sadness, emotion.Anger, emotion.Fear, emotion.Surprise}

// Stats summarizes a user's journaling activity as of now.
func (s *Service) Stats(ctx context.Context, userID string) (domain.EntryStats, error) {
	now := s.now().In(s.loc)

	total, err := s.repo.CountEntries(ctx, userID)
	if err != nil {
		return domain.EntryStats{}, fmt.Errorf("count entries: %w", err)
	}

	week, err := s.repo.EntriesSince(ctx, userID, now.AddDate(0, 0, -7))
	if err != nil {
		return domain.EntryStats{}, fmt.Errorf("load week entries: %w", err)
	}
	avg := 0.0
	if len(week) > 0 {
		sum := 0.0
		for _, e := range week {
			sum += e.SentimentScore
		}
		avg = sum / float64(len(week))
	}

	window, err := s.repo.EntriesSince(ctx, userID, now.AddDate(0, 0, -streakWindowDays))
	if err != nil {
		return domain.EntryStats{}, fmt.Errorf("load streak entries: %w", err)
	}

	return domain.EntryStats{
		TotalEntries: total,
		WeekEntries:  len(week),
		AvgScore:     avg,
		Streak:       streak(window, now, s.loc),
	}, nil
}

// streak counts consecutive days, ending today, with at least one entry.
func streak(entries []domain.JournalEntry, now time.Time, loc *time.Location) int {
	days := make(map[string]bool, len(entries))
	for _, e := range entries {
		days[dayKey(e.CreatedAt, loc)] = true
	}
	n := 0
	for i := 0; i < streakWindowDays; i++ {
		if !days[dayKey(now.AddDate(0, 0, -i), loc)] {
			break
		}
		n++
	}
	return n
}

// Trend returns per-day average emotion scores over the last days days,
// oldest day first. Days without entries are omitted.
func (s *Service) Trend(ctx context.Context, userID string, days int) ([]domain.TrendPoint, error) {
	entries, err := s.windowEntries(ctx, userID, days)
	if err != nil {
		return nil, err
	}

	out := make([]domain.TrendPoint, 0)
	index := make(map[string]int)
	for _, e := range entries {
		key := dayKey(e.CreatedAt, s.loc)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, domain.TrendPoint{Date: key, Emotions: make(map[string]float64, len(trendEmotions))})
		}
		out[i].Entries++
		for _, emo := range trendEmotions {
			out[i].Emotions[emo] += e.MoodData.Emotions[emo]
		}
	}
	for i := range out {
		for _, emo := range trendEmotions {
			out[i].Emotions[emo] /= float64(out[i].Entries)
		}
	}
	return out, nil
}

// Distribution counts entries by dominant emotion in display order. Emotions
// with no entries are left out.
func (s *Service) Distribution(ctx context.Context, userID string, days int) ([]domain.MoodShare, error) {
	entries, err := s.windowEntries(ctx, userID, days)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, e := range entries {
		counts[entryDominant(e)]++
	}

	out := make([]domain.MoodShare, 0, len(counts))
	for _, emo := range emotion.Emotions() {
		if counts[emo] > 0 {
			out = append(out, domain.MoodShare{Emotion: emo, Count: counts[emo]})
		}
	}
	return out, nil
}

// entryDominant prefers the stored dominant emotion and derives one only for
// records that lack a usable value.
func entryDominant(e domain.JournalEntry) string {
	if emotion.IsEmotion(e.MoodData.DominantEmotion) {
		return e.MoodData.DominantEmotion
	}
	return displayDominant(e.MoodData.Emotions)
}

// displayDominant scans in display order; ties keep the earlier emotion and an
// empty map reads as neutral.
func displayDominant(emotions map[string]float64) string {
	top, topScore := emotion.Neutral, 0.0
	for _, emo := range emotion.Emotions() {
		if emotions[emo] > topScore {
			top, topScore = emo, emotions[emo]
		}
	}
	return top
}

func (s *Service) windowEntries(ctx context.Context, userID string, days int) ([]domain.JournalEntry, error) {
	if days <= 0 {
		days = streakWindowDays
	}
	since := s.now().In(s.loc).AddDate(0, 0, -days)
	entries, err := s.repo.EntriesSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("load entries since %s: %w", since.Format(time.RFC3339), err)
	}
	return entries, nil
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
