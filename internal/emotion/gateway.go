package emotion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

const (
	pathEmpty    = "empty"
	pathRemote   = "remote"
	pathFallback = "fallback"
)

// Inferrer is the remote half of the gateway; *Client implements it.
type Inferrer interface {
	Enabled() bool
	Infer(ctx context.Context, text string) (Distribution, error)
}

// Gateway analyzes text remotely when possible and locally otherwise. Analyze
// never fails: every remote problem is routed to the local classifier.
type Gateway struct {
	remote   Inferrer
	fallback *Classifier
	metrics  *Metrics
	logger   *slog.Logger
}

func NewGateway(remote Inferrer, fallback *Classifier, metrics *Metrics, logger *slog.Logger) *Gateway {
	if fallback == nil {
		fallback = NewClassifier(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		remote:   remote,
		fallback: fallback,
		metrics:  metrics,
		logger:   logger,
	}
}

// remoteOutcome is the result of the single remote attempt. A non-empty
// reason routes the request to the local classifier.
type remoteOutcome struct {
	emotions Distribution
	reason   string
	err      error
}

func (g *Gateway) Analyze(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		g.metrics.recordPath(pathEmpty)
		return emptyResult()
	}

	outcome := g.attemptRemote(ctx, text)
	if outcome.reason != "" {
		if outcome.err != nil {
			g.logger.Warn("emotion inference failed, using keyword fallback", "reason", outcome.reason, "error", outcome.err)
		}
		g.metrics.recordPath(pathFallback)
		g.metrics.recordFallback(outcome.reason)
		return g.fallback.Classify(text)
	}

	g.metrics.recordPath(pathRemote)
	dominant, score := outcome.emotions.Dominant()
	verdict := Resolve(outcome.emotions)
	return Result{
		Mood:            verdict.Mood,
		Score:           score,
		Emotions:        outcome.emotions,
		DominantEmotion: dominant,
		Advice:          verdict.Advice,
	}
}

func (g *Gateway) attemptRemote(ctx context.Context, text string) (out remoteOutcome) {
	if g.remote == nil || !g.remote.Enabled() {
		return remoteOutcome{reason: "not_configured"}
	}

	defer func() {
		if r := recover(); r != nil {
			out = remoteOutcome{reason: "internal", err: fmt.Errorf("panic during inference: %v", r)}
		}
	}()

	start := time.Now()
	emotions, err := g.remote.Infer(ctx, text)
	g.metrics.observeRemote(time.Since(start).Seconds())
	if err != nil {
		return remoteOutcome{reason: fallbackReason(err), err: err}
	}
	if emotions == nil {
		return remoteOutcome{reason: "unrecognized", err: ErrUnrecognizedResponse}
	}
	return remoteOutcome{emotions: emotions.Clone()}
}

func fallbackReason(err error) string {
	var statusErr *StatusError
	switch {
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case errors.Is(err, ErrUnrecognizedResponse):
		return "unrecognized"
	case errors.As(err, &statusErr):
		return "status"
	default:
		return "transport"
	}
}
