package emotion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	DefaultModel       = "j-hartmann/emotion-english-distilroberta-base"
	DefaultURLTemplate = "https://api-inference.huggingface.co/models/%s"

	maxResponseBytes = 1 << 20
)

var (
	ErrNotConfigured        = errors.New("emotion inference is not configured")
	ErrRateLimited          = errors.New("emotion inference rate limit reached")
	ErrUnrecognizedResponse = errors.New("unrecognized emotion inference response")
)

// StatusError reports a non-2xx answer from the inference endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("emotion inference status=%d body=%s", e.Code, e.Body)
}

type ClientConfig struct {
	APIKey        string
	Model         string
	URLTemplate   string
	WaitForModel  bool
	Timeout       time.Duration
	RatePerMinute int
	// BreakerFailures consecutive failures open the breaker for BreakerCooldown.
	BreakerFailures uint32
	BreakerCooldown time.Duration
	OnBreakerChange func(from, to string)
}

// Client calls a hosted text-classification model. It makes exactly one HTTP
// attempt per call.
type Client struct {
	endpoint     string
	apiKey       string
	waitForModel bool
	http         *http.Client
	limiter      *rate.Limiter
	breaker      *gobreaker.CircuitBreaker
}

type inferenceRequest struct {
	Inputs  string           `json:"inputs"`
	Options inferenceOptions `json:"options"`
}

type inferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if strings.TrimSpace(cfg.URLTemplate) == "" {
		cfg.URLTemplate = DefaultURLTemplate
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}

	c := &Client{
		endpoint:     endpointFor(cfg.URLTemplate, cfg.Model),
		apiKey:       strings.TrimSpace(cfg.APIKey),
		waitForModel: cfg.WaitForModel,
		http:         &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.RatePerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(float64(cfg.RatePerMinute)/60.0), cfg.RatePerMinute)
	}

	failures := cfg.BreakerFailures
	onChange := cfg.OnBreakerChange
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "emotion-inference",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			if onChange != nil {
				onChange(from.String(), to.String())
			}
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return c
}

func endpointFor(template, model string) string {
	template = strings.TrimSpace(template)
	if strings.Contains(template, "%s") {
		return fmt.Sprintf(template, model)
	}
	return strings.TrimRight(template, "/")
}

// Enabled reports whether a credential is configured. Without one the remote
// path is never attempted.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Infer classifies text remotely and returns the normalized distribution.
func (c *Client) Infer(ctx context.Context, text string) (Distribution, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	if c.limiter != nil && !c.limiter.Allow() {
		return nil, ErrRateLimited
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.infer(ctx, text)
	})
	if err != nil {
		return nil, err
	}
	return out.(Distribution), nil
}

func (c *Client) infer(ctx context.Context, text string) (Distribution, error) {
	body, err := json.Marshal(inferenceRequest{
		Inputs:  text,
		Options: inferenceOptions{WaitForModel: c.waitForModel},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read inference response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	parsed := parseInferenceResponse(respBody)
	d, ok := parsed.distribution()
	if !ok {
		return nil, ErrUnrecognizedResponse
	}
	return d, nil
}
