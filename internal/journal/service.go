package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"sentio/internal/db"
	"sentio/internal/domain"
	"sentio/internal/emotion"
)

var (
	ErrEntryNotFound = db.ErrEntryNotFound
	ErrForbidden     = errors.New("journal entry belongs to another user")
	ErrEmptyContent  = errors.New("journal entry content is empty")
)

const (
	defaultListLimit = 10
	maxListLimit     = 1000
)

type Analyzer interface {
	Analyze(ctx context.Context, text string) emotion.Result
}

// Publisher announces saved moods. Publishing is best effort.
type Publisher interface {
	PublishMood(ctx context.Context, event domain.MoodEvent) error
}

type Config struct {
	ListLimit int
	Location  *time.Location
}

type Service struct {
	repo      Repository
	analyzer  Analyzer
	publisher Publisher
	logger    *slog.Logger
	listLimit int
	loc       *time.Location
	now       func() time.Time
}

func NewService(cfg Config, repo Repository, analyzer Analyzer, publisher Publisher, logger *slog.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("journal repository is required")
	}
	if analyzer == nil {
		return nil, errors.New("emotion analyzer is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = defaultListLimit
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{
		repo:      repo,
		analyzer:  analyzer,
		publisher: publisher,
		logger:    logger,
		listLimit: cfg.ListLimit,
		loc:       cfg.Location,
		now:       time.Now,
	}, nil
}

func (s *Service) Analyze(ctx context.Context, text string) emotion.Result {
	return s.analyzer.Analyze(ctx, text)
}

// Save persists a new entry. A previously computed analysis of the same text
// is reused; otherwise the text is analyzed first.
func (s *Service) Save(ctx context.Context, userID, content string, analysis *emotion.Result) (domain.JournalEntry, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.JournalEntry{}, ErrEmptyContent
	}
	if analysis == nil {
		res := s.analyzer.Analyze(ctx, content)
		analysis = &res
	} else {
		res := settleAnalysis(*analysis)
		analysis = &res
	}

	now := s.now().UTC()
	entry := domain.JournalEntry{
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
	}
	applyAnalysis(&entry, *analysis, now)

	saved, err := s.repo.CreateEntry(ctx, entry)
	if err != nil {
		return domain.JournalEntry{}, fmt.Errorf("save journal entry: %w", err)
	}
	s.publish(ctx, saved, *analysis)
	return saved, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (domain.JournalEntry, error) {
	e, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return domain.JournalEntry{}, err
	}
	if e.UserID != userID {
		return domain.JournalEntry{}, ErrForbidden
	}
	return e, nil
}

func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]domain.JournalEntry, error) {
	return s.repo.ListEntries(ctx, userID, s.clampLimit(limit))
}

func (s *Service) Search(ctx context.Context, userID, query string, limit int) ([]domain.JournalEntry, error) {
	if strings.TrimSpace(query) == "" {
		return []domain.JournalEntry{}, nil
	}
	return s.repo.SearchEntries(ctx, userID, query, s.clampLimit(limit))
}

// Update replaces an entry's content and re-analyzes it.
func (s *Service) Update(ctx context.Context, userID, id, content string) (domain.JournalEntry, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.JournalEntry{}, ErrEmptyContent
	}
	e, err := s.Get(ctx, userID, id)
	if err != nil {
		return domain.JournalEntry{}, err
	}

	analysis := s.analyzer.Analyze(ctx, content)
	now := s.now().UTC()
	e.Content = content
	e.UpdatedAt = now
	applyAnalysis(&e, analysis, now)

	updated, err := s.repo.UpdateEntry(ctx, e)
	if err != nil {
		return domain.JournalEntry{}, fmt.Errorf("update journal entry %s: %w", id, err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.DeleteEntry(ctx, id)
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.listLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func (s *Service) publish(ctx context.Context, e domain.JournalEntry, analysis emotion.Result) {
	if s.publisher == nil {
		return
	}
	event := domain.MoodEvent{
		EntryID:         e.ID,
		UserID:          e.UserID,
		Mood:            analysis.Mood,
		DominantEmotion: analysis.DominantEmotion,
		Score:           analysis.Score,
		IsFallback:      analysis.IsFallback,
		TS:              e.CreatedAt.Format(time.RFC3339Nano),
	}
	if err := s.publisher.PublishMood(ctx, event); err != nil {
		s.logger.Warn("publish mood event failed", "entry_id", e.ID, "user_id", e.UserID, "error", err)
	}
}

// settleAnalysis rebuilds a caller-supplied result from its emotions: the mood
// and advice come from the resolver, unknown labels are dropped and the score
// is clamped to [0,1].
func settleAnalysis(r emotion.Result) emotion.Result {
	emotions := r.Emotions.Clone()
	verdict := emotion.Resolve(emotions)
	dominant, top := emotions.Dominant()
	if emotion.IsEmotion(r.DominantEmotion) {
		dominant = r.DominantEmotion
	}
	score := r.Score
	if score < 0 || score > 1 || math.IsNaN(score) {
		score = top
	}
	return emotion.Result{
		Mood:            verdict.Mood,
		Score:           score,
		Emotions:        emotions,
		DominantEmotion: dominant,
		Advice:          verdict.Advice,
		IsFallback:      r.IsFallback,
	}
}

func applyAnalysis(e *domain.JournalEntry, analysis emotion.Result, at time.Time) {
	emotions := make(map[string]float64, len(analysis.Emotions))
	for k, v := range analysis.Emotions.Clone() {
		emotions[k] = v
	}
	e.Mood = analysis.Mood
	e.SentimentScore = analysis.Score
	e.MoodData = domain.MoodData{
		Emotions:        emotions,
		DominantEmotion: analysis.DominantEmotion,
		Advice:          analysis.Advice,
		Timestamp:       at.Format(time.RFC3339Nano),
		IsFallback:      analysis.IsFallback,
	}
}
