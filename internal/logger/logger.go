// Package logger configures the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/prakkhar03/skillbridge/internal/config"
)

// Setup builds a JSON logger tagged with the service name and environment and
// installs it as the slog default.
func Setup(cfg *config.AppConfig) *slog.Logger {
	return setup(os.Stdout, cfg)
}

func setup(w io.Writer, cfg *config.AppConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if !cfg.IsProduction() {
		opts.Level = slog.LevelDebug
	}
	lg := slog.New(slog.NewJSONHandler(w, opts)).With(
		slog.String("service", cfg.Name),
		slog.String("env", cfg.Env),
	)
	slog.SetDefault(lg)
	return lg
}
