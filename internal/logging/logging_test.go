package logging_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arpulse/internal/config"
	"arpulse/internal/logging"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.Level(config.LogLevelDebug))
	assert.Equal(t, slog.LevelInfo, logging.Level(config.LogLevelInfo))
	assert.Equal(t, slog.LevelWarn, logging.Level(config.LogLevelWarn))
	assert.Equal(t, slog.LevelError, logging.Level(config.LogLevelError))
	assert.Equal(t, slog.LevelInfo, logging.Level("loud"))
}

func TestNew(t *testing.T) {
	t.Run("Development logs to stderr only", func(t *testing.T) {
		dir := t.TempDir()
		cfg := &config.Config{AppName: "arpulse", Environment: config.Development, LogLevel: config.LogLevelWarn, LogsDirectory: dir}

		logger, closer := logging.New(cfg)
		require.NotNil(t, logger)
		defer closer.Close()

		assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
		assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Production also writes a rotating file", func(t *testing.T) {
		dir := t.TempDir()
		cfg := &config.Config{
			AppName:          "arpulse",
			Environment:      config.Production,
			LogLevel:         config.LogLevelInfo,
			LogsDirectory:    dir,
			LogsMaxSizeInMb:  1,
			LogsMaxBackups:   1,
			LogsMaxAgeInDays: 1,
		}

		logger, closer := logging.New(cfg)
		logger.Info("report generated", slog.Int("visitors", 3))
		require.NoError(t, closer.Close())

		data, err := os.ReadFile(filepath.Join(dir, "arpulse.log"))
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"report generated"`)
		assert.Contains(t, string(data), `"visitors":3`)
		assert.Contains(t, string(data), `"env":"production"`)
	})
}
