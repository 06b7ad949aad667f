package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPipelineConfigDefaults(t *testing.T) {
	cfg := &PipelineConfig{}
	parse(cfg, "pipeline")

	assert.Equal(t, BackendGemini, cfg.Backend)
	assert.Equal(t, uint64(2), cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.InitialBackoff)
	assert.Equal(t, 30*time.Second, cfg.BreakerCooldown)
	assert.Equal(t, 5, cfg.AssessmentQuestions)
	assert.Equal(t, 60.0, cfg.PassThreshold)
}

func TestPipelineConfigFromEnv(t *testing.T) {
	t.Setenv("ANALYSIS_BACKEND", BackendOpenRouter)
	t.Setenv("BACKEND_MAX_RETRIES", "4")
	t.Setenv("BACKEND_MAX_ELAPSED", "2m")
	t.Setenv("PASS_THRESHOLD", "75")

	cfg := &PipelineConfig{}
	parse(cfg, "pipeline")

	assert.Equal(t, BackendOpenRouter, cfg.Backend)
	assert.Equal(t, uint64(4), cfg.MaxRetries)
	assert.Equal(t, 2*time.Minute, cfg.MaxElapsed)
	assert.Equal(t, 75.0, cfg.PassThreshold)
}

func TestDBConfigDSN(t *testing.T) {
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PASSWORD", "secret")

	cfg := &DBConfig{}
	parse(cfg, "database")

	assert.Equal(t, "host=db user=postgres password=secret dbname=skillbridge port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())
}

func TestAppConfigIsProduction(t *testing.T) {
	assert.True(t, (&AppConfig{Env: "Production"}).IsProduction())
	assert.False(t, (&AppConfig{Env: "development"}).IsProduction())
}
