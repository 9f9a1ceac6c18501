package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentio/internal/auth"
	"sentio/internal/domain"
	"sentio/internal/emotion"
	"sentio/internal/journal"
)

func newTestRouter(t *testing.T, opts Options) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gateway := emotion.NewGateway(emotion.NewClient(emotion.ClientConfig{}), emotion.NewClassifier(nil), nil, logger)
	svc, err := journal.NewService(journal.Config{}, journal.NewMemoryRepository(), gateway, nil, logger)
	require.NoError(t, err)
	return NewRouter(svc, opts, logger)
}

func do(t *testing.T, h http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if user != "" {
		req.Header.Set(auth.UserIDHeader, user)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	h := newTestRouter(t, Options{})
	rec := do(t, h, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	h = newTestRouter(t, Options{Ready: func(context.Context) error { return errors.New("db down") }})
	rec = do(t, h, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRoutesRequireIdentity(t *testing.T) {
	h := newTestRouter(t, Options{})
	rec := do(t, h, http.MethodGet, "/v1/entries", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAnalyzeUsesFallbackWithoutCredential(t *testing.T) {
	h := newTestRouter(t, Options{})
	rec := do(t, h, http.MethodPost, "/v1/mood/analyze", "u1", `{"text":"I fell down and it made me cry, why would someone do that"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out emotion.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "Sad", out.Mood)
	assert.True(t, out.IsFallback)
	assert.InDelta(t, 0.7, out.Emotions[emotion.Sadness], 1e-9)
	assert.Len(t, out.Emotions, 7)
}

func TestAnalyzeEmptyText(t *testing.T) {
	h := newTestRouter(t, Options{})
	rec := do(t, h, http.MethodPost, "/v1/mood/analyze", "u1", `{"text":"   "}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out emotion.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "neutral", out.Mood)
	assert.Equal(t, 1.0, out.Score)
	assert.False(t, out.IsFallback)
}

func TestAnalyzeRejectsBadBodies(t *testing.T) {
	h := newTestRouter(t, Options{MaxBodyBytes: 32})
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown field", body: `{"txt":"hi"}`},
		{name: "two values", body: `{"text":"a"}{"text":"b"}`},
		{name: "too large", body: `{"text":"` + strings.Repeat("a", 64) + `"}`},
		{name: "not json", body: `hello`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/mood/analyze", "u1", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestEntryLifecycle(t *testing.T) {
	h := newTestRouter(t, Options{})

	rec := do(t, h, http.MethodPost, "/v1/entries", "u1", `{"content":"such a great day with a friend"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.JournalEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "u1", created.UserID)
	assert.Equal(t, "Happy", created.Mood)
	assert.Equal(t, emotion.Joy, created.MoodData.DominantEmotion)

	rec = do(t, h, http.MethodGet, "/v1/entries/"+created.ID, "u1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/entries/"+created.ID, "u2", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodPatch, "/v1/entries/"+created.ID, "u1", `{"content":"I am so scared and nervous"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated domain.JournalEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Anxious", updated.Mood)

	rec = do(t, h, http.MethodGet, "/v1/entries?limit=5", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Entries []domain.JournalEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Entries, 1)

	rec = do(t, h, http.MethodDelete, "/v1/entries/"+created.ID, "u1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/entries/"+created.ID, "u1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateEntryValidation(t *testing.T) {
	h := newTestRouter(t, Options{})

	rec := do(t, h, http.MethodPost, "/v1/entries", "u1", `{"content":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "content is required")

	rec = do(t, h, http.MethodPost, "/v1/entries", "u1", `{"content":"ok","analysis":{"mood":"Elated","score":1}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/entries", "u1", `{"content":"ok","analysis":{"mood":"Happy","score":0.9,"emotions":{"glee":0.9}}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEntryKeepsSuppliedAnalysis(t *testing.T) {
	h := newTestRouter(t, Options{})
	body := `{"content":"plain words","analysis":{"mood":"Surprised","score":0.8,"emotions":{"surprise":0.8,"joy":0.2},"dominant_emotion":"surprise","advice":"Take a breath."}}`

	rec := do(t, h, http.MethodPost, "/v1/entries", "u1", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.JournalEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Surprised", created.Mood)
	assert.Equal(t, 0.8, created.SentimentScore)
	assert.Equal(t, "surprise", created.MoodData.DominantEmotion)
}

func TestSearchStatsAndExport(t *testing.T) {
	h := newTestRouter(t, Options{})
	for _, content := range []string{"great gym session", "rude driver pushed me", "great dinner"} {
		rec := do(t, h, http.MethodPost, "/v1/entries", "u1", `{"content":"`+content+`"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := do(t, h, http.MethodGet, "/v1/entries/search?q=great", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var found struct {
		Entries []domain.JournalEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	assert.Len(t, found.Entries, 2)

	rec = do(t, h, http.MethodGet, "/v1/stats", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats domain.EntryStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.TotalEntries)
	assert.Equal(t, 3, stats.WeekEntries)
	assert.Equal(t, 1, stats.Streak)

	rec = do(t, h, http.MethodGet, "/v1/mood/distribution?days=7", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"emotion":"joy","count":2`)

	rec = do(t, h, http.MethodGet, "/v1/mood/trend?days=abc", "u1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/mood/trend?days=400", "u1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/entries/export.csv", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Equal(t, "Date,Mood,Content", lines[0])
	assert.Len(t, lines, 4)

	rec = do(t, h, http.MethodGet, "/v1/entries/export.csv", "u2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Date,Mood,Content", strings.TrimSpace(rec.Body.String()))
}

func TestMetricsMount(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	h := newTestRouter(t, Options{Metrics: metrics})
	rec := do(t, h, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestCreateEntryRejectsBadAnalysis(t *testing.T) {
	h := newTestRouter(t, Options{})
	tests := []struct {
		name     string
		analysis string
		wantMsg  string
	}{
		{name: "score too high", analysis: `{"mood":"Happy","score":500,"emotions":{"joy":1}}`, wantMsg: "analysis.score"},
		{name: "negative score", analysis: `{"mood":"Happy","score":-0.1,"emotions":{"joy":1}}`, wantMsg: "analysis.score"},
		{name: "unknown dominant", analysis: `{"mood":"Happy","score":1,"emotions":{"joy":1},"dominant_emotion":"banana"}`, wantMsg: "analysis.dominant_emotion"},
		{name: "emotion out of range", analysis: `{"mood":"Happy","score":1,"emotions":{"joy":1.5}}`, wantMsg: "analysis.emotions.joy"},
		{name: "everything wrong", analysis: `{"mood":"Happy","score":500,"emotions":{"sadness":1},"dominant_emotion":"banana"}`, wantMsg: "analysis."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/entries", "u1", `{"content":"ok","analysis":`+tt.analysis+`}`)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantMsg)
		})
	}

	rec := do(t, h, http.MethodGet, "/v1/stats", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats domain.EntryStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Zero(t, stats.TotalEntries)
}

func TestCreateEntryResolvesMoodFromEmotions(t *testing.T) {
	h := newTestRouter(t, Options{})
	body := `{"content":"plain words","analysis":{"mood":"Happy","score":0.9,"emotions":{"sadness":0.9}}}`

	rec := do(t, h, http.MethodPost, "/v1/entries", "u1", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.JournalEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, emotion.MoodSad, created.Mood)
	assert.Equal(t, emotion.Sadness, created.MoodData.DominantEmotion)
}

func TestValidationMessagesByKind(t *testing.T) {
	h := newTestRouter(t, Options{})

	rec := do(t, h, http.MethodGet, "/v1/entries?limit=5000", "u1", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "limit must be at most 1000")
	assert.NotContains(t, rec.Body.String(), "characters")

	rec = do(t, h, http.MethodGet, "/v1/entries/search?q="+strings.Repeat("a", 201), "u1", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "q must be at most 200 characters")
}

func TestListEntriesEmptyIsArray(t *testing.T) {
	h := newTestRouter(t, Options{})
	rec := do(t, h, http.MethodGet, "/v1/entries", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"entries":[]}`, rec.Body.String())
}
