package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"arpulse/internal/archive"
	"arpulse/internal/config"
)

// DBManager owns the connection to the report archive.
type DBManager struct {
	path   string
	logger *slog.Logger

	mu sync.Mutex
	db *gorm.DB
}

// NewDBManager creates a manager for the archive at cfg.DatabaseName. The
// connection is opened lazily by Init.
func NewDBManager(cfg *config.Config, logger *slog.Logger) *DBManager {
	return &DBManager{
		path:   cfg.GetDatabasePath(),
		logger: logger,
	}
}

// Init opens the database, creating its directory when needed.
func (dm *DBManager) Init() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.db != nil {
		return nil
	}

	if dir := filepath.Dir(dm.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dm.path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", dm.path, err)
	}

	// A single CLI process writes at a time; WAL keeps readers unblocked
	db.Exec("PRAGMA journal_mode = WAL")
	db.Exec("PRAGMA busy_timeout = 5000")
	db.Exec("PRAGMA foreign_keys = ON")

	dm.db = db
	dm.logger.Debug("Database opened", slog.String("path", dm.path))
	return nil
}

// GetConnection returns the open connection, or nil before Init.
func (dm *DBManager) GetConnection() *gorm.DB {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.db
}

// MigrateDatabase creates or updates the archive tables.
func (dm *DBManager) MigrateDatabase() error {
	db := dm.GetConnection()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.AutoMigrate(archive.Models()...)
	})
	if err != nil {
		dm.logger.Error("Failed to auto-migrate database", slog.Any("error", err))
		return err
	}

	dm.logger.Debug("Database migration completed successfully")
	return nil
}

// Close releases the connection.
func (dm *DBManager) Close() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.db == nil {
		return nil
	}
	sqlDB, err := dm.db.DB()
	if err != nil {
		return err
	}
	dm.db = nil
	return sqlDB.Close()
}
