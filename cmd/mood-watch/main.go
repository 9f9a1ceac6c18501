package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"sentio/internal/config"
	"sentio/internal/domain"
	"sentio/internal/mqtt"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := config.LoadMoodWatchConfig()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

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

	err := hub.SubscribeMoods(func(userID string, e domain.MoodEvent) {
		logger.Info("mood",
			"user_id", userID,
			"entry_id", e.EntryID,
			"mood", e.Mood,
			"dominant", e.DominantEmotion,
			"score", e.Score,
			"fallback", e.IsFallback,
			"ts", e.TS,
		)
	})
	if err != nil {
		logger.Error("subscribe mood topic failed", "error", err)
		os.Exit(1)
	}
	logger.Info("watching mood events", "topic", mqtt.TopicUserMoods(cfg.MQTTTopicPrefix))

	<-ctx.Done()
	logger.Info("received shutdown signal")
}
