package logger

import (
	"log/slog"
	"os"

	"pdf-qa-backend/internal/config"
)

var Logger *slog.Logger

// InitLogger initializes structured JSON logging based on configuration.
func InitLogger(cfg *config.Config) {
	level := slog.LevelInfo
	if cfg.GinMode == "debug" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.GinMode == "debug",
	}

	Logger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
	slog.SetDefault(Logger)

	Logger.Info("structured logging initialized", "level", level.String())
}

// With returns a child logger tagged with a component name.
func With(component string) *slog.Logger {
	if Logger == nil {
		return slog.Default().With("component", component)
	}
	return Logger.With("component", component)
}

func Info(msg string, args ...any) {
	if Logger != nil {
		Logger.Info(msg, args...)
	}
}

func Error(msg string, args ...any) {
	if Logger != nil {
		Logger.Error(msg, args...)
	}
}

func Debug(msg string, args ...any) {
	if Logger != nil {
		Logger.Debug(msg, args...)
	}
}

func Warn(msg string, args ...any) {
	if Logger != nil {
		Logger.Warn(msg, args...)
	}
}
