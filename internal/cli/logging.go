package cli

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"globent-quiz-service/internal/config"
)

func newLogger(cfg config.Config) *slog.Logger {
	return newLoggerTo(os.Stderr, cfg.Log.Level, cfg.Log.Format)
}

func newLoggerTo(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo
	}
	return level
}
