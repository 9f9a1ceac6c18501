package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sentio/internal/domain"
)

var ErrEntryNotFound = errors.New("journal entry not found")

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS journal_entries (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			content TEXT NOT NULL,
			mood TEXT NOT NULL DEFAULT 'Neutral',
			mood_data JSONB NOT NULL DEFAULT '{}'::jsonb,
			sentiment_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_journal_entries_user_created ON journal_entries(user_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_journal_entries_content_fts ON journal_entries USING GIN (to_tsvector('english', content));`,
	}

	for _, q := range queries {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

const entryColumns = `id, user_id, content, mood, mood_data, sentiment_score, created_at, updated_at`

func (s *Store) CreateEntry(ctx context.Context, e domain.JournalEntry) (domain.JournalEntry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(e.MoodData)
	if err != nil {
		return domain.JournalEntry{}, err
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO journal_entries(id, user_id, content, mood, mood_data, sentiment_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $7)
		RETURNING `+entryColumns,
		e.ID, e.UserID, e.Content, e.Mood, string(raw), e.SentimentScore, e.CreatedAt)
	return scanEntry(row)
}

func (s *Store) GetEntry(ctx context.Context, id string) (domain.JournalEntry, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id=$1`, id)
	return scanEntry(row)
}

// ListEntries returns a user's entries, newest first.
func (s *Store) ListEntries(ctx context.Context, userID string, limit int) ([]domain.JournalEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE user_id=$1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return collectEntries(rows)
}

// EntriesSince returns a user's entries created at or after since, oldest first.
func (s *Store) EntriesSince(ctx context.Context, userID string, since time.Time) ([]domain.JournalEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE user_id=$1 AND created_at >= $2
		ORDER BY created_at ASC
	`, userID, since)
	if err != nil {
		return nil, err
	}
	return collectEntries(rows)
}

func (s *Store) SearchEntries(ctx context.Context, userID, query string, limit int) ([]domain.JournalEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE user_id=$1 AND to_tsvector('english', content) @@ plainto_tsquery('english', $2)
		ORDER BY created_at DESC
		LIMIT $3
	`, userID, strings.TrimSpace(query), limit)
	if err != nil {
		return nil, err
	}
	return collectEntries(rows)
}

func (s *Store) CountEntries(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM journal_entries WHERE user_id=$1`, userID).Scan(&n)
	return n, err
}

// UpdateEntry overwrites the mutable fields of an existing entry.
func (s *Store) UpdateEntry(ctx context.Context, e domain.JournalEntry) (domain.JournalEntry, error) {
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(e.MoodData)
	if err != nil {
		return domain.JournalEntry{}, err
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE journal_entries
		SET content=$2, mood=$3, mood_data=$4::jsonb, sentiment_score=$5, updated_at=$6
		WHERE id=$1
		RETURNING `+entryColumns,
		e.ID, e.Content, e.Mood, string(raw), e.SentimentScore, e.UpdatedAt)
	return scanEntry(row)
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM journal_entries WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func scanEntry(row pgx.Row) (domain.JournalEntry, error) {
	var out domain.JournalEntry
	var moodRaw []byte
	err := row.Scan(
		&out.ID,
		&out.UserID,
		&out.Content,
		&out.Mood,
		&moodRaw,
		&out.SentimentScore,
		&out.CreatedAt,
		&out.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.JournalEntry{}, ErrEntryNotFound
	}
	if err != nil {
		return domain.JournalEntry{}, err
	}
	if len(moodRaw) > 0 {
		if err := json.Unmarshal(moodRaw, &out.MoodData); err != nil {
			return domain.JournalEntry{}, fmt.Errorf("decode mood_data for entry %s: %w", out.ID, err)
		}
	}
	out.CreatedAt = out.CreatedAt.UTC()
	out.UpdatedAt = out.UpdatedAt.UTC()
	return out, nil
}

func collectEntries(rows pgx.Rows) ([]domain.JournalEntry, error) {
	defer rows.Close()

	out := make([]domain.JournalEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
