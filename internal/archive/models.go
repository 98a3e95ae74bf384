// Package archive persists report runs so that intent tiers can be compared
// across batches. Tiers are relative to the population they were computed
// in, so the archive stores both the scores and the thresholds of each run.
package archive

import (
	"time"
)

// ReportRun is one archived analysis run.
type ReportRun struct {
	ID            string    `gorm:"primaryKey;size:26" json:"id"`
	Source        string    `gorm:"size:1024" json:"source"`
	GeneratedAt   time.Time `gorm:"not null;index" json:"generated_at"`
	ReferenceTime time.Time `gorm:"not null" json:"reference_time"`
	RecordCount   int       `gorm:"not null;default:0" json:"record_count"`
	ExcludedCount int       `gorm:"not null;default:0" json:"excluded_count"`
	VisitorCount  int       `gorm:"not null;default:0" json:"visitor_count"`
	HighCount     int       `gorm:"not null;default:0" json:"high_count"`
	MediumCount   int       `gorm:"not null;default:0" json:"medium_count"`
	LowCount      int       `gorm:"not null;default:0" json:"low_count"`
	Mode          string    `gorm:"size:20" json:"mode"`
	HighThreshold float64   `json:"high_threshold"`
	LowThreshold  float64   `json:"low_threshold"`
	MeanScore     float64   `json:"mean_score"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (ReportRun) TableName() string {
	return "report_runs"
}

// VisitorSnapshot is one visitor's standing within an archived run.
type VisitorSnapshot struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID          string    `gorm:"not null;size:26;uniqueIndex:idx_snapshots_run_visitor" json:"run_id"`
	VisitorKey     string    `gorm:"not null;uniqueIndex:idx_snapshots_run_visitor" json:"visitor_key"`
	Label          string    `gorm:"size:255" json:"label"`
	IdentitySource string    `gorm:"size:20" json:"identity_source"`
	Score          int       `gorm:"not null;default:0;index" json:"score"`
	Tier           string    `gorm:"size:10;index" json:"tier"`
	Position       int       `gorm:"not null;default:0" json:"position"`
	ARSeconds      float64   `json:"ar_seconds"`
	Sessions       int       `json:"sessions"`
	ARSessions     int       `json:"ar_sessions"`
	Views          int       `json:"views"`
	UniqueDays     int       `json:"unique_days"`
	CTAClicks      int       `json:"cta_clicks"`
	QRHandoff      bool      `json:"qr_handoff"`
	LastSeen       time.Time `json:"last_seen"`
}

// TableName specifies the table name for GORM
func (VisitorSnapshot) TableName() string {
	return "visitor_snapshots"
}

// Models returns every archive model for migration.
func Models() []any {
	return []any{
		&ReportRun{},
		&VisitorSnapshot{},
	}
}
