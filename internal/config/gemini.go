package config

import (
	"sync"
	"time"
)

type GeminiConfig struct {
	APIKey  string        `env:"GEMINI_API_KEY"`
	Model   string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	Timeout time.Duration `env:"GEMINI_TIMEOUT" envDefault:"90s"`
}

var (
	geminiConfig *GeminiConfig
	geminiOnce   sync.Once
)

func LoadGeminiConfig() *GeminiConfig {
	geminiOnce.Do(func() {
		geminiConfig = &GeminiConfig{}
		parse(geminiConfig, "gemini")
	})
	return geminiConfig
}
