// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Export formats accepted by the report commands
var exportFormats = map[string]bool{
	"table": true,
	"csv":   true,
	"json":  true,
	"yaml":  true,
	"xlsx":  true,
}

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`
	ConfigFile  string   `mapstructure:"configfile"`

	// Report archive
	StoragePath          string `mapstructure:"storagepath"`
	DatabaseName         string `mapstructure:"-"` // Derived from other settings
	ArchiveRetentionDays int    `mapstructure:"archiveretentiondays"`

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Report defaults
	ExportFormat string `mapstructure:"exportformat"`
	SortKey      string `mapstructure:"sortkey"`
	SortDesc     bool   `mapstructure:"sortdesc"`
	Timezone     string `mapstructure:"timezone"`

	// Prometheus textfile written after each report run; empty disables it
	MetricsFile string `mapstructure:"metricsfile"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		c, err := Load()
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg = c
	})
	return cfg
}

// Load builds a fresh configuration from defaults, the optional config file
// and the environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("appname", "arpulse")
	v.SetDefault("environment", Development)
	v.SetDefault("loglevel", string(LogLevelInfo))
	v.SetDefault("configfile", "")
	v.SetDefault("storagepath", "storage")
	v.SetDefault("archiveretentiondays", 90)
	v.SetDefault("logsdir", "logs")
	v.SetDefault("logsmaxsizeinmb", 20)
	v.SetDefault("logsmaxbackups", 10)
	v.SetDefault("logsmaxageindays", 30)
	v.SetDefault("exportformat", "table")
	v.SetDefault("sortkey", "intent_score")
	v.SetDefault("sortdesc", true)
	v.SetDefault("timezone", "UTC")
	v.SetDefault("metricsfile", "")

	v.BindEnv("appname", "ARPULSE_APP_NAME")
	v.BindEnv("environment", "ARPULSE_ENV")
	v.BindEnv("loglevel", "ARPULSE_LOG_LEVEL")
	v.BindEnv("configfile", "ARPULSE_CONFIG_FILE")
	v.BindEnv("storagepath", "ARPULSE_STORAGE_PATH")
	v.BindEnv("archiveretentiondays", "ARPULSE_ARCHIVE_RETENTION_DAYS")
	v.BindEnv("logsdir", "ARPULSE_LOGS_DIR")
	v.BindEnv("logsmaxsizeinmb", "ARPULSE_LOGS_MAX_SIZE_IN_MB")
	v.BindEnv("logsmaxbackups", "ARPULSE_LOGS_MAX_BACKUPS")
	v.BindEnv("logsmaxageindays", "ARPULSE_LOGS_MAX_AGE_IN_DAYS")
	v.BindEnv("exportformat", "ARPULSE_EXPORT_FORMAT")
	v.BindEnv("sortkey", "ARPULSE_SORT_KEY")
	v.BindEnv("sortdesc", "ARPULSE_SORT_DESC")
	v.BindEnv("timezone", "ARPULSE_TIMEZONE")
	v.BindEnv("metricsfile", "ARPULSE_METRICS_FILE")

	// Optional YAML file; environment variables still take precedence
	if path := v.GetString("configfile"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Set derived values
	c.DatabaseName = c.GetDatabasePath()

	return c, nil
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	validLevels := map[LogLevel]bool{
		LogLevelDebug: true,
		LogLevelInfo:  true,
		LogLevelWarn:  true,
		LogLevelError: true,
	}
	c.LogLevel = LogLevel(strings.ToLower(string(c.LogLevel)))
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	c.ExportFormat = strings.ToLower(c.ExportFormat)
	if !exportFormats[c.ExportFormat] {
		return fmt.Errorf("invalid export format: %s", c.ExportFormat)
	}

	if c.ArchiveRetentionDays < 0 {
		return fmt.Errorf("invalid archive retention: %d days", c.ArchiveRetentionDays)
	}

	return nil
}

// GetDatabasePath returns the report archive path based on environment
func (c *Config) GetDatabasePath() string {
	if c.DatabaseName == "" {
		c.DatabaseName = filepath.Join(c.StoragePath,
			fmt.Sprintf("%s-%s.db", c.AppName, c.Environment))
	}
	return c.DatabaseName
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// Reset clears the cached configuration; intended for tests.
func Reset() {
	once = sync.Once{}
	cfg = nil
}
