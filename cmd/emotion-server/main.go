package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sentio/internal/api"
	"sentio/internal/config"
	"sentio/internal/emotion"
)

type analyzeRequest struct {
	Text string `json:"text" validate:"max=20000"`
}

type resolveRequest struct {
	Emotions map[string]float64 `json:"emotions" validate:"required"`
}

type analyzeResponse struct {
	emotion.Result
	LatencyMS float64 `json:"latency_ms"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg, err := config.LoadEmotionServerConfig()
	if err != nil {
		logger.Error("load config failed", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	clientCfg := cfg.Emotion.ClientConfig()
	clientCfg.OnBreakerChange = func(from, to string) {
		logger.Warn("emotion inference breaker changed", "from", from, "to", to)
	}
	client := emotion.NewClient(clientCfg)
	lexicon := emotion.DefaultLexicon()
	gateway := emotion.NewGateway(client, emotion.NewClassifier(lexicon), emotion.NewMetrics(registry), logger)

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		api.WriteJSON(w, http.StatusOK, map[string]any{
			"ok":     true,
			"remote": client.Enabled(),
			"labels": emotion.Emotions(),
			"moods":  emotion.Moods(),
		})
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Get("/v1/emotion/lexicon", func(w http.ResponseWriter, _ *http.Request) {
		api.WriteJSON(w, http.StatusOK, map[string]any{"lexicon": lexicon.Entries()})
	})
	r.Post("/v1/emotion/analyze", func(w http.ResponseWriter, req *http.Request) {
		var in analyzeRequest
		if err := decodeAndValidate(req, cfg.MaxBodyBytes, &in); err != nil {
			api.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		start := time.Now()
		out := gateway.Analyze(req.Context(), in.Text)
		api.WriteJSON(w, http.StatusOK, analyzeResponse{Result: out, LatencyMS: roundMillis(time.Since(start))})
	})
	r.Post("/v1/emotion/resolve", func(w http.ResponseWriter, req *http.Request) {
		var in resolveRequest
		if err := decodeAndValidate(req, cfg.MaxBodyBytes, &in); err != nil {
			api.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		dist := emotion.NewDistribution()
		for label, score := range in.Emotions {
			if !emotion.IsEmotion(label) {
				api.WriteError(w, http.StatusBadRequest, fmt.Sprintf("unknown emotion %q", label))
				return
			}
			if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 || score > 1 {
				api.WriteError(w, http.StatusBadRequest, fmt.Sprintf("emotions.%s must be within [0,1]", label))
				return
			}
			dist[label] = score
		}
		api.WriteJSON(w, http.StatusOK, emotion.Resolve(dist))
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Info("emotion server started", "addr", cfg.HTTPAddr, "remote", client.Enabled())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("received shutdown signal")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
}

func decodeAndValidate(req *http.Request, maxBytes int64, out any) error {
	if err := api.DecodeJSONBody(req, maxBytes, out); err != nil {
		return err
	}
	return api.ValidateStruct(out)
}

func roundMillis(d time.Duration) float64 {
	ms := float64(d.Microseconds()) / 1000.0
	return math.Round(ms*1000) / 1000
}
