// Package logging builds the application's slog logger from configuration.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"arpulse/internal/config"
)

// Level maps a configured log level to slog.
func Level(level config.LogLevel) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a logger writing to stderr. In production it writes JSON and
// also appends to a rotating file under cfg.LogsDirectory. The returned
// closer flushes and closes that file; it is a no-op otherwise.
func New(cfg *config.Config) (*slog.Logger, io.Closer) {
	opts := &slog.HandlerOptions{Level: Level(cfg.LogLevel)}

	if !cfg.IsProduction() {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nopCloser{}
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogsDirectory, cfg.AppName+".log"),
		MaxSize:    cfg.LogsMaxSizeInMb,
		MaxBackups: cfg.LogsMaxBackups,
		MaxAge:     cfg.LogsMaxAgeInDays,
		Compress:   true,
	}
	w := io.MultiWriter(os.Stderr, rotator)
	logger := slog.New(slog.NewJSONHandler(w, opts)).With(
		slog.String("app", cfg.AppName),
		slog.String("env", cfg.Environment),
	)
	return logger, rotator
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
