package logger

import (
	"log/slog"
	"os"
)

func levelFor(cfg Config) slog.Level {
	if cfg.Debug && cfg.Level == 0 {
		return slog.LevelDebug
	}
	return cfg.Level
}

func newStdHandler(cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     levelFor(cfg),
		AddSource: cfg.AddSource,
	}
	if cfg.Env == EnvDev {
		return slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.NewJSONHandler(os.Stdout, opts)
}
