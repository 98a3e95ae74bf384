package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arpulse/internal/config"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults are applied", func(t *testing.T) {
		t.Setenv("ARPULSE_ENV", "test")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, "arpulse", cfg.AppName)
		assert.True(t, cfg.IsTest())
		assert.Equal(t, config.LogLevelInfo, cfg.LogLevel)
		assert.Equal(t, "table", cfg.ExportFormat)
		assert.Equal(t, "intent_score", cfg.SortKey)
		assert.True(t, cfg.SortDesc)
		assert.Equal(t, 90, cfg.ArchiveRetentionDays)
		assert.Equal(t, filepath.Join("storage", "arpulse-test.db"), cfg.DatabaseName)
	})

	t.Run("Environment variables override defaults", func(t *testing.T) {
		t.Setenv("ARPULSE_ENV", "production")
		t.Setenv("ARPULSE_LOG_LEVEL", "WARN")
		t.Setenv("ARPULSE_EXPORT_FORMAT", "csv")
		t.Setenv("ARPULSE_STORAGE_PATH", "/var/lib/arpulse")
		t.Setenv("ARPULSE_SORT_DESC", "false")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.True(t, cfg.IsProduction())
		assert.Equal(t, config.LogLevelWarn, cfg.LogLevel)
		assert.Equal(t, "csv", cfg.ExportFormat)
		assert.False(t, cfg.SortDesc)
		assert.Equal(t, "/var/lib/arpulse/arpulse-production.db", cfg.DatabaseName)
	})

	t.Run("Config file values are read", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "arpulse.yaml")
		require.NoError(t, os.WriteFile(path, []byte("exportformat: xlsx\nsortkey: session_count\ntimezone: Europe/Berlin\n"), 0o600))
		t.Setenv("ARPULSE_ENV", "test")
		t.Setenv("ARPULSE_CONFIG_FILE", path)

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, "xlsx", cfg.ExportFormat)
		assert.Equal(t, "session_count", cfg.SortKey)
		assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	})

	t.Run("Invalid values are rejected", func(t *testing.T) {
		tests := []struct {
			name  string
			key   string
			value string
		}{
			{"environment", "ARPULSE_ENV", "staging"},
			{"log level", "ARPULSE_LOG_LEVEL", "verbose"},
			{"export format", "ARPULSE_EXPORT_FORMAT", "pdf"},
			{"archive retention", "ARPULSE_ARCHIVE_RETENTION_DAYS", "-1"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Setenv(tt.key, tt.value)
				_, err := config.Load()
				assert.Error(t, err)
			})
		}
	})

	t.Run("Missing config file is an error", func(t *testing.T) {
		t.Setenv("ARPULSE_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
		_, err := config.Load()
		assert.Error(t, err)
	})
}

func TestGetConfigIsCached(t *testing.T) {
	t.Setenv("ARPULSE_ENV", "test")
	config.Reset()
	t.Cleanup(config.Reset)

	first := config.GetConfig()
	second := config.GetConfig()
	assert.Same(t, first, second)
}
