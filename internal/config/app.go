package config

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/caarlos0/env/v10"
)

type AppConfig struct {
	Name    string `env:"APP_NAME" envDefault:"skillbridge"`
	Env     string `env:"APP_ENV"`
	Port    string `env:"APP_PORT" envDefault:":8080"`
	BaseURL string `env:"APP_URL"`
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		appConfig = &AppConfig{}
		parse(appConfig, "app")
		if appConfig.Env == "" {
			appConfig.Env = "development"
			slog.Warn("APP_ENV not set, using default", slog.String("env", appConfig.Env))
		}
	})
	return appConfig
}

func (c *AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// parse fills cfg from the environment, keeping envDefault values when a
// variable is malformed.
func parse(cfg any, name string) {
	if err := env.Parse(cfg); err != nil {
		slog.Error("config parse failed", slog.String("config", name), slog.Any("error", err))
	}
}
