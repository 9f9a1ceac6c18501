package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"sentio/internal/emotion"
)

type ServerConfig struct {
	HTTPAddr        string
	DBDSN           string
	MaxBodyBytes    int64
	EntryListLimit  int
	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopicPrefix string
	SupabaseURL     string
	SupabaseAnonKey string
	CORSOrigins     []string
	Emotion         EmotionConfig
}

type EmotionConfig struct {
	APIKey          string
	Model           string
	URLTemplate     string
	WaitForModel    bool
	Timeout         time.Duration
	RatePerMinute   int
	BreakerFailures int
	BreakerCooldown time.Duration
}

type EmotionServerConfig struct {
	HTTPAddr     string
	MaxBodyBytes int64
	Emotion      EmotionConfig
}

type MoodWatchConfig struct {
	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopicPrefix string
}

func LoadServerConfig() (ServerConfig, error) {
	emotionCfg, err := loadEmotionConfig()
	if err != nil {
		return ServerConfig{}, err
	}
	cfg := ServerConfig{
		HTTPAddr:        getenvDefault("SENTIO_HTTP_ADDR", ":9020"),
		DBDSN:           os.Getenv("DB_DSN"),
		MaxBodyBytes:    int64(getenvIntDefault("MAX_BODY_BYTES", 65536)),
		EntryListLimit:  getenvIntDefault("ENTRY_LIST_LIMIT", 10),
		MQTTBrokerURL:   os.Getenv("MQTT_BROKER_URL"),
		MQTTClientID:    getenvDefault("MQTT_CLIENT_ID", "sentio-server"),
		MQTTUsername:    os.Getenv("MQTT_USERNAME"),
		MQTTPassword:    os.Getenv("MQTT_PASSWORD"),
		MQTTTopicPrefix: strings.Trim(getenvDefault("MQTT_TOPIC_PREFIX", "sentio"), "/"),
		SupabaseURL:     strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseAnonKey: os.Getenv("SUPABASE_ANON_KEY"),
		CORSOrigins:     splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		Emotion:         emotionCfg,
	}

	if cfg.MaxBodyBytes <= 0 {
		return ServerConfig{}, fmt.Errorf("MAX_BODY_BYTES must be positive")
	}
	if cfg.EntryListLimit <= 0 {
		return ServerConfig{}, fmt.Errorf("ENTRY_LIST_LIMIT must be positive")
	}
	if (cfg.SupabaseURL == "") != (cfg.SupabaseAnonKey == "") {
		return ServerConfig{}, fmt.Errorf("SUPABASE_URL and SUPABASE_ANON_KEY must be set together")
	}
	if cfg.MQTTTopicPrefix == "" {
		return ServerConfig{}, fmt.Errorf("MQTT_TOPIC_PREFIX must not be empty")
	}

	return cfg, nil
}

func LoadEmotionServerConfig() (EmotionServerConfig, error) {
	emotionCfg, err := loadEmotionConfig()
	if err != nil {
		return EmotionServerConfig{}, err
	}
	cfg := EmotionServerConfig{
		HTTPAddr:     getenvDefault("EMOTION_HTTP_ADDR", ":9012"),
		MaxBodyBytes: int64(getenvIntDefault("EMOTION_MAX_BODY_BYTES", 65536)),
		Emotion:      emotionCfg,
	}
	if cfg.MaxBodyBytes <= 0 {
		return EmotionServerConfig{}, fmt.Errorf("EMOTION_MAX_BODY_BYTES must be positive")
	}
	return cfg, nil
}

func LoadMoodWatchConfig() MoodWatchConfig {
	return MoodWatchConfig{
		MQTTBrokerURL:   getenvDefault("MQTT_BROKER_URL", "tcp://localhost:1883"),
		MQTTClientID:    getenvDefault("MOOD_WATCH_MQTT_CLIENT_ID", "sentio-mood-watch"),
		MQTTUsername:    os.Getenv("MQTT_USERNAME"),
		MQTTPassword:    os.Getenv("MQTT_PASSWORD"),
		MQTTTopicPrefix: strings.Trim(getenvDefault("MQTT_TOPIC_PREFIX", "sentio"), "/"),
	}
}

func loadEmotionConfig() (EmotionConfig, error) {
	cfg := EmotionConfig{
		APIKey:          strings.TrimSpace(os.Getenv("HUGGINGFACE_API_KEY")),
		Model:           getenvDefault("EMOTION_MODEL", "j-hartmann/emotion-english-distilroberta-base"),
		URLTemplate:     getenvDefault("EMOTION_MODEL_URL_TEMPLATE", "https://api-inference.huggingface.co/models/%s"),
		WaitForModel:    getenvBoolDefault("EMOTION_WAIT_FOR_MODEL", true),
		Timeout:         time.Duration(getenvIntDefault("EMOTION_TIMEOUT_SECONDS", 20)) * time.Second,
		RatePerMinute:   getenvIntDefault("EMOTION_RATE_PER_MINUTE", 60),
		BreakerFailures: getenvIntDefault("EMOTION_BREAKER_FAILURES", 5),
		BreakerCooldown: time.Duration(getenvIntDefault("EMOTION_BREAKER_COOLDOWN_SECONDS", 30)) * time.Second,
	}

	if strings.Count(cfg.URLTemplate, "%s") > 1 {
		return EmotionConfig{}, fmt.Errorf("EMOTION_MODEL_URL_TEMPLATE must contain at most one %%s")
	}
	if cfg.Timeout <= 0 {
		return EmotionConfig{}, fmt.Errorf("EMOTION_TIMEOUT_SECONDS must be positive")
	}
	if cfg.RatePerMinute < 0 {
		return EmotionConfig{}, fmt.Errorf("EMOTION_RATE_PER_MINUTE must not be negative")
	}
	if cfg.BreakerFailures <= 0 {
		return EmotionConfig{}, fmt.Errorf("EMOTION_BREAKER_FAILURES must be positive")
	}
	return cfg, nil
}

func (c EmotionConfig) ClientConfig() emotion.ClientConfig {
	return emotion.ClientConfig{
		APIKey:          c.APIKey,
		Model:           c.Model,
		URLTemplate:     c.URLTemplate,
		WaitForModel:    c.WaitForModel,
		Timeout:         c.Timeout,
		RatePerMinute:   c.RatePerMinute,
		BreakerFailures: uint32(c.BreakerFailures),
		BreakerCooldown: c.BreakerCooldown,
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenvDefault(key, val string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return val
}

func getenvIntDefault(key string, val int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return val
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return val
	}
	return n
}

func getenvBoolDefault(key string, val bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return val
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return val
	}
	return b
}
