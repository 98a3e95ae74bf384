package testsupport

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"arpulse/internal/activity"
	"arpulse/internal/archive"
)

// ReferenceNow is the fixed "now" shared by analysis tests.
var ReferenceNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

// DaysAgo returns ReferenceNow shifted back by the given number of days.
func DaysAgo(days float64) time.Time {
	return ReferenceNow.Add(-time.Duration(days * float64(24*time.Hour)))
}

// RecordOption customizes a record built by NewRecord.
type RecordOption func(*activity.Record)

// NewRecord builds a bare page-view record for a session.
func NewRecord(session string, ts time.Time, opts ...RecordOption) activity.Record {
	r := activity.Record{SessionToken: session, Timestamp: ts}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// WithHint sets the explicit visitor hint.
func WithHint(hint string) RecordOption {
	return func(r *activity.Record) { r.VisitorHint = hint }
}

// WithAttributes sets the auxiliary attributes from key/value pairs.
func WithAttributes(kv ...string) RecordOption {
	return func(r *activity.Record) {
		if r.Attributes == nil {
			r.Attributes = make(map[string]string, len(kv)/2)
		}
		for i := 0; i+1 < len(kv); i += 2 {
			r.Attributes[kv[i]] = kv[i+1]
		}
	}
}

// WithARSeconds marks a successful AR attempt of the given duration.
func WithARSeconds(seconds float64) RecordOption {
	return func(r *activity.Record) {
		r.ARSeconds = seconds
		r.Succeeded = true
	}
}

// WithState sets the engagement state and success flag without a duration.
func WithState(state activity.EngagementState, succeeded bool) RecordOption {
	return func(r *activity.Record) {
		r.EngagementState = state
		r.Succeeded = succeeded
	}
}

// WithQRScan marks a desktop-to-phone QR hand-off.
func WithQRScan() RecordOption {
	return func(r *activity.Record) { r.QRScanned = true }
}

// WithCTA marks a call-to-action click at the record's own timestamp.
func WithCTA(label, target string) RecordOption {
	return func(r *activity.Record) {
		ts := r.Timestamp
		r.CTAClicked = true
		r.CTATimestamp = &ts
		r.CTALabel = label
		r.CTATargetURL = target
	}
}

// WithLocation sets the coarse coordinates.
func WithLocation(lat, lng float64) RecordOption {
	return func(r *activity.Record) {
		r.Latitude = &lat
		r.Longitude = &lng
	}
}

// testDBCache caches test databases by root test name so that subtests
// share the database of their parent
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

// SetupTestDB creates an in-memory database with the archive models migrated.
// Uses a named in-memory database with cache=shared so every connection of
// the pool sees the same data.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	rootName := t.Name()
	if idx := strings.Index(rootName, "/"); idx > 0 {
		rootName = rootName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", rootName, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")

	if err := db.AutoMigrate(archive.Models()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// CleanTables clears the given tables, or every archive table when none are
// named.
func CleanTables(db *gorm.DB, tables ...string) {
	if len(tables) == 0 {
		tables = []string{archive.VisitorSnapshot{}.TableName(), archive.ReportRun{}.TableName()}
	}

	db.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			tx.Exec("DELETE FROM " + table)
			tx.Exec("DELETE FROM sqlite_sequence WHERE name=?", table)
		}
		return nil
	})
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
