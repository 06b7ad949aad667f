package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/genai"

	"github.com/prakkhar03/skillbridge/internal/config"
)

// GenerativeBackend is a prompt-in, text-out generative model. GenerateJSON
// asks the model for a JSON-only answer but callers must still tolerate prose
// around it.
type GenerativeBackend interface {
	Name() string
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// NewBackend builds the backend selected by ANALYSIS_BACKEND.
func NewBackend(ctx context.Context, pipeline *config.PipelineConfig) (GenerativeBackend, error) {
	policy := RetryPolicyFromConfig(pipeline)
	switch strings.ToLower(pipeline.Backend) {
	case config.BackendOpenRouter:
		return NewOpenRouterService(*config.LoadOpenRouterConfig(), policy)
	case config.BackendGemini, "":
		return NewGeminiService(ctx, *config.LoadGeminiConfig(), policy)
	}
	return nil, fmt.Errorf("unknown analysis backend %q", pipeline.Backend)
}

// StatusError is a non-2xx answer from an HTTP backend.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Body)
}

var ErrCircuitOpen = errors.New("circuit breaker open")

// RetryPolicy bounds the retries around a single backend call.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxElapsed      time.Duration
	BreakerMax      int
	BreakerCooldown time.Duration
}

func RetryPolicyFromConfig(cfg *config.PipelineConfig) RetryPolicy {
	return RetryPolicy{
		MaxRetries:      cfg.MaxRetries,
		InitialInterval: cfg.InitialBackoff,
		MaxElapsed:      cfg.MaxElapsed,
		BreakerMax:      5,
		BreakerCooldown: cfg.BreakerCooldown,
	}
}

func (p RetryPolicy) newBackOff(ctx context.Context) backoff.BackOffContext {
	expo := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		expo.InitialInterval = p.InitialInterval
	}
	expo.MaxElapsedTime = p.MaxElapsed
	return backoff.WithContext(backoff.WithMaxRetries(expo, p.MaxRetries), ctx)
}

// retry runs op under the policy. Errors that are not retryable stop the loop
// immediately.
func (p RetryPolicy) retry(ctx context.Context, name string, op func() error) error {
	return backoff.RetryNotify(func() error {
		err := op()
		if err != nil && !isRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, p.newBackOff(ctx), func(err error, delay time.Duration) {
		slog.Warn("retrying backend call",
			slog.String("backend", name),
			slog.Duration("delay", delay),
			slog.Any("error", err))
	})
}

// breaker fails fast after too many consecutive transient failures. Once
// the cooldown has passed a single trial call goes through; its outcome
// closes the breaker or restarts the cooldown.
type breaker struct {
	mu                sync.Mutex
	consecutiveErrors int
	max               int
	cooldown          time.Duration
	openedAt          time.Time
	trial             bool
	now               func() time.Time
}

func newBreaker(p RetryPolicy) *breaker {
	return &breaker{max: p.BreakerMax, cooldown: p.BreakerCooldown, now: time.Now}
}

func (b *breaker) open() bool {
	return b.max > 0 && b.consecutiveErrors >= b.max
}

func (b *breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open() {
		return nil
	}
	if !b.trial && b.now().Sub(b.openedAt) >= b.cooldown {
		b.trial = true
		return nil
	}
	return fmt.Errorf("%w: too many consecutive errors (%d)", ErrCircuitOpen, b.consecutiveErrors)
}

// record feeds a call outcome back. Errors that say nothing about backend
// health, like a 400 or a cancelled request, count as a reachable backend.
func (b *breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	wasTrial := b.trial
	b.trial = false
	if err == nil || !isRetryableError(err) {
		if b.open() {
			slog.Info("circuit breaker closed")
		}
		b.consecutiveErrors = 0
		return
	}
	b.consecutiveErrors++
	if b.open() && (wasTrial || b.consecutiveErrors == b.max) {
		b.openedAt = b.now()
		slog.Warn("circuit breaker open", slog.Int("consecutive_errors", b.consecutiveErrors), slog.Duration("cooldown", b.cooldown))
	}
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrCircuitOpen) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return isRetryableCode(statusErr.Code)
	}
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return isRetryableCode(apiErr.Code)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	errMsg := err.Error()
	for _, code := range []string{"Error 429", "Error 500", "Error 502", "Error 503", "Error 504"} {
		if strings.Contains(errMsg, code) {
			return true
		}
	}
	return strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "connection reset") ||
		strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "temporary failure") ||
		strings.Contains(errMsg, "EOF")
}

func isRetryableCode(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}
