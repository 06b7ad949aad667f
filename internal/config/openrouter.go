package config

import (
	"sync"
	"time"
)

type OpenRouterConfig struct {
	APIKey  string        `env:"OPENROUTER_API_KEY"`
	BaseURL string        `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	Model   string        `env:"OPENROUTER_MODEL" envDefault:"openai/gpt-4o-mini"`
	Timeout time.Duration `env:"OPENROUTER_TIMEOUT" envDefault:"90s"`
}

var (
	openRouterConfig *OpenRouterConfig
	openRouterOnce   sync.Once
)

func LoadOpenRouterConfig() *OpenRouterConfig {
	openRouterOnce.Do(func() {
		openRouterConfig = &OpenRouterConfig{}
		parse(openRouterConfig, "openrouter")
	})
	return openRouterConfig
}
