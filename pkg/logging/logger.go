package logging

import (
	"log/slog"
	"os"
)

func NewLogger(service, env, level, format string) *slog.Logger {
	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: true, // critical for incident debugging
	}
	switch format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With(
		slog.String("service", service),
		slog.String("env", env),
		slog.Int("pid", os.Getpid()),
	)

	slog.SetDefault(logger)
	return logger
}
