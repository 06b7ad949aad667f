package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/prakkhar03/skillbridge/internal/config"
	"github.com/prakkhar03/skillbridge/internal/metrics"
)

const openRouterSystemPrompt = "You are an assistant that evaluates freelancer skills for a hiring marketplace."

type OpenRouterService struct {
	client  *resty.Client
	cfg     config.OpenRouterConfig
	policy  RetryPolicy
	breaker *breaker
}

func NewOpenRouterService(cfg config.OpenRouterConfig, policy RetryPolicy) (*OpenRouterService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY not set")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)
	return &OpenRouterService{
		client:  client,
		cfg:     cfg,
		policy:  policy,
		breaker: newBreaker(policy),
	}, nil
}

func (s *OpenRouterService) Name() string { return config.BackendOpenRouter }

func (s *OpenRouterService) GenerateText(ctx context.Context, prompt string) (string, error) {
	return s.complete(ctx, prompt, false)
}

func (s *OpenRouterService) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return s.complete(ctx, prompt, true)
}

func (s *OpenRouterService) complete(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}
	if err := s.breaker.allow(); err != nil {
		return "", err
	}

	body := map[string]any{
		"model": s.cfg.Model,
		"messages": []map[string]string{
			{"role": "system", "content": openRouterSystemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature": 0.2,
	}
	mode := "text"
	if jsonMode {
		mode = "json"
		body["response_format"] = map[string]string{"type": "json_object"}
	}
	start := time.Now()
	defer func() {
		metrics.BackendLatency.WithLabelValues(s.Name(), mode).Observe(time.Since(start).Seconds())
	}()

	var text string
	err := s.policy.retry(ctx, s.Name(), func() error {
		resp, err := s.client.R().
			SetContext(ctx).
			SetBody(body).
			Post("/chat/completions")
		if err != nil {
			return err
		}
		if resp.IsError() {
			return &StatusError{Code: resp.StatusCode(), Body: truncate(resp.String(), 300)}
		}
		content := gjson.Get(resp.String(), "choices.0.message.content")
		if !content.Exists() || strings.TrimSpace(content.String()) == "" {
			return fmt.Errorf("no response content from model")
		}
		text = content.String()
		return nil
	})
	s.breaker.record(err)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
