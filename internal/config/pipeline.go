package config

import (
	"sync"
	"time"
)

// PipelineConfig tunes the verification pipeline and its generative backend.
type PipelineConfig struct {
	Backend             string        `env:"ANALYSIS_BACKEND" envDefault:"gemini"`
	MaxRetries          uint64        `env:"BACKEND_MAX_RETRIES" envDefault:"2"`
	InitialBackoff      time.Duration `env:"BACKEND_INITIAL_BACKOFF" envDefault:"1s"`
	MaxElapsed          time.Duration `env:"BACKEND_MAX_ELAPSED" envDefault:"60s"`
	BreakerCooldown     time.Duration `env:"BACKEND_BREAKER_COOLDOWN" envDefault:"30s"`
	AssessmentQuestions int           `env:"ASSESSMENT_QUESTIONS" envDefault:"5"`
	PassThreshold       float64       `env:"PASS_THRESHOLD" envDefault:"60"`
}

const (
	BackendGemini     = "gemini"
	BackendOpenRouter = "openrouter"
)

var (
	pipelineConfig *PipelineConfig
	pipelineOnce   sync.Once
)

func LoadPipelineConfig() *PipelineConfig {
	pipelineOnce.Do(func() {
		pipelineConfig = &PipelineConfig{}
		parse(pipelineConfig, "pipeline")
	})
	return pipelineConfig
}
