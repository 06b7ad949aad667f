package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/prakkhar03/skillbridge/internal/config"
	"github.com/prakkhar03/skillbridge/internal/metrics"
)

type GeminiService struct {
	Client  *genai.Client
	cfg     config.GeminiConfig
	policy  RetryPolicy
	breaker *breaker
}

func NewGeminiService(ctx context.Context, cfg config.GeminiConfig, policy RetryPolicy) (*GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiService{
		Client:  client,
		cfg:     cfg,
		policy:  policy,
		breaker: newBreaker(policy),
	}, nil
}

func (s *GeminiService) Name() string { return config.BackendGemini }

func (s *GeminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	return s.generate(ctx, prompt, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.2)),
	})
}

func (s *GeminiService) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return s.generate(ctx, prompt, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.1)),
		ResponseMIMEType: "application/json",
	})
}

func (s *GeminiService) generate(ctx context.Context, prompt string, genConfig *genai.GenerateContentConfig) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}
	if err := s.breaker.allow(); err != nil {
		return "", err
	}

	mode := "text"
	if genConfig.ResponseMIMEType != "" {
		mode = "json"
	}
	start := time.Now()
	defer func() {
		metrics.BackendLatency.WithLabelValues(s.Name(), mode).Observe(time.Since(start).Seconds())
	}()

	var text string
	err := s.policy.retry(ctx, s.Name(), func() error {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()

		result, err := s.Client.Models.GenerateContent(callCtx, s.cfg.Model, genai.Text(prompt), genConfig)
		if err != nil {
			return err
		}
		if err := validateGenerateResponse(result); err != nil {
			return fmt.Errorf("invalid response: %w", err)
		}
		text = result.Text()
		return nil
	})
	s.breaker.record(err)
	if err != nil {
		return "", fmt.Errorf("generate content failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func validateGenerateResponse(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("response is nil")
	}
	if len(resp.Candidates) == 0 {
		return fmt.Errorf("no candidates in response")
	}
	if resp.Candidates[0].Content == nil {
		return fmt.Errorf("candidate content is nil")
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("no parts in content")
	}
	return nil
}
