package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"sentio/internal/domain"
)

const publishTimeout = 5 * time.Second

type HubConfig struct {
	BrokerURL   string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// Hub publishes mood events to an MQTT broker and lets tools subscribe to them.
type Hub struct {
	cfg    HubConfig
	client paho.Client
	logger *slog.Logger
}

// MoodHandler receives events decoded from a user's mood topic.
type MoodHandler func(userID string, event domain.MoodEvent)

func NewHub(cfg HubConfig, logger *slog.Logger) *Hub {
	return &Hub{
		cfg:    cfg,
		logger: logger,
	}
}

func (h *Hub) Start(ctx context.Context) error {
	opts := paho.NewClientOptions().
		AddBroker(h.cfg.BrokerURL).
		SetClientID(h.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	if h.cfg.Username != "" {
		opts.SetUsername(h.cfg.Username)
		opts.SetPassword(h.cfg.Password)
	}

	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		h.logger.Error("mqtt connection lost", "error", err)
	})

	h.client = paho.NewClient(opts)
	if token := h.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	go func() {
		<-ctx.Done()
		h.client.Disconnect(100)
	}()

	return nil
}

func (h *Hub) PublishMood(ctx context.Context, event domain.MoodEvent) error {
	if h.client == nil {
		return errors.New("mqtt hub is not started")
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	topic := TopicMood(h.cfg.TopicPrefix, event.UserID)
	token := h.client.Publish(topic, 1, false, body)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
		return token.Error()
	case <-time.After(publishTimeout):
		return fmt.Errorf("mqtt publish timeout on %s", topic)
	}
}

func (h *Hub) SubscribeMoods(handler MoodHandler) error {
	if h.client == nil {
		return errors.New("mqtt hub is not started")
	}
	token := h.client.Subscribe(TopicUserMoods(h.cfg.TopicPrefix), 1, func(_ paho.Client, msg paho.Message) {
		h.handleMood(msg.Topic(), msg.Payload(), handler)
	})
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (h *Hub) handleMood(topic string, payload []byte, handler MoodHandler) {
	userID, err := ParseUserID(topic, h.cfg.TopicPrefix)
	if err != nil {
		h.logger.Warn("skip invalid mood topic", "topic", topic, "error", err)
		return
	}

	var event domain.MoodEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Warn("invalid mood payload", "user_id", userID, "error", err)
		return
	}
	if event.UserID == "" {
		event.UserID = userID
	}
	if event.UserID != userID {
		h.logger.Warn("mood event user mismatch", "topic_user", userID, "payload_user", event.UserID)
		return
	}
	handler(userID, event)
}
