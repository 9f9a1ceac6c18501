package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"sentio/internal/auth"
	"sentio/internal/journal"
)

type Options struct {
	MaxBodyBytes   int64
	AllowedOrigins []string
	Identifier     auth.Identifier
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	// Ready backs /healthz when set.
	Ready func(ctx context.Context) error
}

type Handler struct {
	svc     *journal.Service
	logger  *slog.Logger
	maxBody int64
	ready   func(ctx context.Context) error
}

func NewRouter(svc *journal.Service, opts Options, logger *slog.Logger) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 65536
	}
	if opts.Identifier == nil {
		opts.Identifier = auth.HeaderIdentifier{}
	}
	h := &Handler{
		svc:     svc,
		logger:  logger,
		maxBody: opts.MaxBodyBytes,
		ready:   opts.Ready,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", auth.UserIDHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", h.healthz)
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(auth.Middleware(opts.Identifier, logger))

		r.Post("/mood/analyze", h.analyze)
		r.Get("/mood/trend", h.trend)
		r.Get("/mood/distribution", h.distribution)
		r.Get("/stats", h.stats)

		r.Route("/entries", func(r chi.Router) {
			r.Post("/", h.createEntry)
			r.Get("/", h.listEntries)
			r.Get("/search", h.searchEntries)
			r.Get("/export.csv", h.exportCSV)
			r.Get("/{id}", h.getEntry)
			r.Patch("/{id}", h.updateEntry)
			r.Delete("/{id}", h.deleteEntry)
		})
	})
	return r
}

func (h *Handler) healthz(w http.ResponseWriter, req *http.Request) {
	if h.ready != nil {
		if err := h.ready(req.Context()); err != nil {
			h.logger.Error("readiness check failed", "error", err)
			WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
			return
		}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}
