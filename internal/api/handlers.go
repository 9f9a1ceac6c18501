package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"sentio/internal/auth"
	"sentio/internal/emotion"
	"sentio/internal/journal"
)

type analyzeRequest struct {
	Text string `json:"text" validate:"max=20000"`
}

type createEntryRequest struct {
	Content  string          `json:"content" validate:"required,max=20000"`
	Analysis *emotion.Result `json:"analysis,omitempty"`
}

type updateEntryRequest struct {
	Content string `json:"content" validate:"required,max=20000"`
}

type listQuery struct {
	Limit int    `json:"limit" validate:"min=0,max=1000"`
	Query string `json:"q" validate:"max=200"`
}

type windowQuery struct {
	Days int `json:"days" validate:"min=0,max=365"`
}

func (h *Handler) analyze(w http.ResponseWriter, req *http.Request) {
	var in analyzeRequest
	if !h.decode(w, req, &in) {
		return
	}
	WriteJSON(w, http.StatusOK, h.svc.Analyze(req.Context(), in.Text))
}

func (h *Handler) createEntry(w http.ResponseWriter, req *http.Request) {
	var in createEntryRequest
	if !h.decode(w, req, &in) {
		return
	}
	if in.Analysis != nil {
		if err := checkAnalysis(*in.Analysis); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	entry, err := h.svc.Save(req.Context(), userID(req), in.Content, in.Analysis)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, entry)
}

func (h *Handler) listEntries(w http.ResponseWriter, req *http.Request) {
	q, ok := parseListQuery(w, req)
	if !ok {
		return
	}
	entries, err := h.svc.Recent(req.Context(), userID(req), q.Limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) searchEntries(w http.ResponseWriter, req *http.Request) {
	q, ok := parseListQuery(w, req)
	if !ok {
		return
	}
	entries, err := h.svc.Search(req.Context(), userID(req), q.Query, q.Limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) exportCSV(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="journal-%s.csv"`, time.Now().UTC().Format("2006-01-02")))
	n, err := h.svc.ExportCSV(req.Context(), userID(req), w)
	if err != nil {
		// headers are already sent once rows were written
		h.logger.Error("export csv failed", "rows", n, "error", err)
		if n == 0 {
			h.writeServiceError(w, err)
		}
	}
}

func (h *Handler) getEntry(w http.ResponseWriter, req *http.Request) {
	entry, err := h.svc.Get(req.Context(), userID(req), chi.URLParam(req, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) updateEntry(w http.ResponseWriter, req *http.Request) {
	var in updateEntryRequest
	if !h.decode(w, req, &in) {
		return
	}
	entry, err := h.svc.Update(req.Context(), userID(req), chi.URLParam(req, "id"), in.Content)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) deleteEntry(w http.ResponseWriter, req *http.Request) {
	if err := h.svc.Delete(req.Context(), userID(req), chi.URLParam(req, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) stats(w http.ResponseWriter, req *http.Request) {
	stats, err := h.svc.Stats(req.Context(), userID(req))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) trend(w http.ResponseWriter, req *http.Request) {
	q, ok := parseWindowQuery(w, req)
	if !ok {
		return
	}
	points, err := h.svc.Trend(req.Context(), userID(req), q.Days)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"days": points})
}

func (h *Handler) distribution(w http.ResponseWriter, req *http.Request) {
	q, ok := parseWindowQuery(w, req)
	if !ok {
		return
	}
	shares, err := h.svc.Distribution(req.Context(), userID(req), q.Days)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"distribution": shares})
}

func (h *Handler) decode(w http.ResponseWriter, req *http.Request, out any) bool {
	if err := DecodeJSONBody(req, h.maxBody, out); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := ValidateStruct(out); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, journal.ErrEntryNotFound):
		WriteError(w, http.StatusNotFound, "entry not found")
	case errors.Is(err, journal.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, journal.ErrEmptyContent):
		WriteError(w, http.StatusBadRequest, "content is required")
	default:
		h.logger.Error("journal request failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func userID(req *http.Request) string {
	id, _ := auth.UserIDFromContext(req.Context())
	return id
}

func parseListQuery(w http.ResponseWriter, req *http.Request) (listQuery, bool) {
	var q listQuery
	limit, err := queryInt(req, "limit")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return q, false
	}
	q.Limit = limit
	q.Query = strings.TrimSpace(req.URL.Query().Get("q"))
	if err := ValidateStruct(q); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return q, false
	}
	return q, true
}

func parseWindowQuery(w http.ResponseWriter, req *http.Request) (windowQuery, bool) {
	var q windowQuery
	days, err := queryInt(req, "days")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return q, false
	}
	q.Days = days
	if err := ValidateStruct(q); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return q, false
	}
	return q, true
}

func queryInt(req *http.Request, key string) (int, error) {
	v := strings.TrimSpace(req.URL.Query().Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

// checkAnalysis accepts a client-computed result only when it uses known labels.
func checkAnalysis(r emotion.Result) error {
	if !knownMood(r.Mood) {
		return fmt.Errorf("analysis.mood %q is not a known mood", r.Mood)
	}
	if math.IsNaN(r.Score) || r.Score < 0 || r.Score > 1 {
		return fmt.Errorf("analysis.score must be within [0,1]")
	}
	if r.DominantEmotion != "" && !emotion.IsEmotion(r.DominantEmotion) {
		return fmt.Errorf("analysis.dominant_emotion %q is not a known emotion", r.DominantEmotion)
	}
	for label, score := range r.Emotions {
		if !emotion.IsEmotion(label) {
			return fmt.Errorf("analysis.emotions has unknown label %q", label)
		}
		if math.IsNaN(score) || score < 0 || score > 1 {
			return fmt.Errorf("analysis.emotions.%s must be within [0,1]", label)
		}
	}
	return nil
}

func knownMood(mood string) bool {
	if mood == "neutral" {
		return true
	}
	for _, m := range emotion.Moods() {
		if m == mood {
			return true
		}
	}
	return false
}
