package journal

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sentio/internal/db"
	"sentio/internal/domain"
)

// Repository persists journal entries. *db.Store is the production
// implementation.
type Repository interface {
	CreateEntry(ctx context.Context, e domain.JournalEntry) (domain.JournalEntry, error)
	GetEntry(ctx context.Context, id string) (domain.JournalEntry, error)
	ListEntries(ctx context.Context, userID string, limit int) ([]domain.JournalEntry, error)
	EntriesSince(ctx context.Context, userID string, since time.Time) ([]domain.JournalEntry, error)
	SearchEntries(ctx context.Context, userID, query string, limit int) ([]domain.JournalEntry, error)
	CountEntries(ctx context.Context, userID string) (int, error)
	UpdateEntry(ctx context.Context, e domain.JournalEntry) (domain.JournalEntry, error)
	DeleteEntry(ctx context.Context, id string) error
}

var _ Repository = (*db.Store)(nil)

// MemoryRepository keeps entries in process memory. It backs local runs
// without a database and the service tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]domain.JournalEntry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[string]domain.JournalEntry)}
}

func (r *MemoryRepository) CreateEntry(_ context.Context, e domain.JournalEntry) (domain.JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	e.UpdatedAt = e.CreatedAt
	r.entries[e.ID] = e
	return e, nil
}

func (r *MemoryRepository) GetEntry(_ context.Context, id string) (domain.JournalEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return domain.JournalEntry{}, db.ErrEntryNotFound
	}
	return e, nil
}

func (r *MemoryRepository) ListEntries(_ context.Context, userID string, limit int) ([]domain.JournalEntry, error) {
	out := r.filter(func(e domain.JournalEntry) bool { return e.UserID == userID })
	sortNewestFirst(out)
	return truncate(out, limit), nil
}

func (r *MemoryRepository) EntriesSince(_ context.Context, userID string, since time.Time) ([]domain.JournalEntry, error) {
	out := r.filter(func(e domain.JournalEntry) bool {
		return e.UserID == userID && !e.CreatedAt.Before(since)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// SearchEntries matches entries containing every query word, case-insensitively.
func (r *MemoryRepository) SearchEntries(_ context.Context, userID, query string, limit int) ([]domain.JournalEntry, error) {
	words := strings.Fields(strings.ToLower(query))
	out := r.filter(func(e domain.JournalEntry) bool {
		if e.UserID != userID || len(words) == 0 {
			return false
		}
		content := strings.ToLower(e.Content)
		for _, w := range words {
			if !strings.Contains(content, w) {
				return false
			}
		}
		return true
	})
	sortNewestFirst(out)
	return truncate(out, limit), nil
}

func (r *MemoryRepository) CountEntries(_ context.Context, userID string) (int, error) {
	return len(r.filter(func(e domain.JournalEntry) bool { return e.UserID == userID })), nil
}

func (r *MemoryRepository) UpdateEntry(_ context.Context, e domain.JournalEntry) (domain.JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.entries[e.ID]
	if !ok {
		return domain.JournalEntry{}, db.ErrEntryNotFound
	}
	current.Content = e.Content
	current.Mood = e.Mood
	current.MoodData = e.MoodData
	current.SentimentScore = e.SentimentScore
	current.UpdatedAt = e.UpdatedAt
	if current.UpdatedAt.IsZero() {
		current.UpdatedAt = time.Now().UTC()
	}
	r.entries[e.ID] = current
	return current, nil
}

func (r *MemoryRepository) DeleteEntry(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return db.ErrEntryNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *MemoryRepository) filter(keep func(domain.JournalEntry) bool) []domain.JournalEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.JournalEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func sortNewestFirst(entries []domain.JournalEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
}

func truncate(entries []domain.JournalEntry, limit int) []domain.JournalEntry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
