package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sentio/internal/api"
	"sentio/internal/auth"
	"sentio/internal/config"
	"sentio/internal/db"
	"sentio/internal/emotion"
	"sentio/internal/journal"
	"sentio/internal/mqtt"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadServerConfig()
	if err != nil {
		logger.Error("load config failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		repo  journal.Repository
		ready func(context.Context) error
	)
	if cfg.DBDSN != "" {
		store, err := db.New(ctx, cfg.DBDSN)
		if err != nil {
			logger.Error("connect db failed", "error", err)
			os.Exit(1)
		}
		defer store.Close()

		if err := store.Migrate(ctx); err != nil {
			logger.Error("migrate db failed", "error", err)
			os.Exit(1)
		}
		repo, ready = store, store.Ping
	} else {
		logger.Warn("DB_DSN not set, journal entries are kept in memory")
		repo = journal.NewMemoryRepository()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	clientCfg := cfg.Emotion.ClientConfig()
	clientCfg.OnBreakerChange = func(from, to string) {
		logger.Warn("emotion inference breaker changed", "from", from, "to", to)
	}
	client := emotion.NewClient(clientCfg)
	gateway := emotion.NewGateway(client, emotion.NewClassifier(nil), emotion.NewMetrics(registry), logger)
	if client.Enabled() {
		logger.Info("remote emotion inference enabled", "endpoint", client.Endpoint())
	} else {
		logger.Warn("HUGGINGFACE_API_KEY not set, using keyword classifier only")
	}

	var publisher journal.Publisher
	if cfg.MQTTBrokerURL != "" {
		hub := mqtt.NewHub(mqtt.HubConfig{
			BrokerURL:   cfg.MQTTBrokerURL,
			ClientID:    cfg.MQTTClientID,
			Username:    cfg.MQTTUsername,
			Password:    cfg.MQTTPassword,
			TopicPrefix: cfg.MQTTTopicPrefix,
		}, logger)
		if err := hub.Start(ctx); err != nil {
			logger.Error("start mqtt hub failed", "error", err)
			os.Exit(1)
		}
		publisher = hub
	}

	svc, err := journal.NewService(journal.Config{ListLimit: cfg.EntryListLimit}, repo, gateway, publisher, logger)
	if err != nil {
		logger.Error("init journal service failed", "error", err)
		os.Exit(1)
	}

	var identifier auth.Identifier = auth.HeaderIdentifier{}
	if cfg.SupabaseURL != "" {
		supa, err := auth.NewSupabaseIdentifier(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		if err != nil {
			logger.Error("init supabase auth failed", "error", err)
			os.Exit(1)
		}
		identifier = supa
	} else {
		logger.Warn("SUPABASE_URL not set, trusting X-User-ID header")
	}

	handler := api.NewRouter(svc, api.Options{
		MaxBodyBytes:   cfg.MaxBodyBytes,
		AllowedOrigins: cfg.CORSOrigins,
		Identifier:     identifier,
		Metrics:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Ready:          ready,
	}, logger)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("sentio server started", "addr", cfg.HTTPAddr)
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
