package archive

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"arpulse/internal/analytics"
)

const snapshotBatchSize = 200

// ErrNoPreviousRun is returned by PreviousRun for the oldest run.
var ErrNoPreviousRun = errors.New("archive: no earlier run")

// SaveRun stores a result and its visitor snapshots in one transaction.
// Snapshots carry their position by descending score.
func SaveRun(db *gorm.DB, res *analytics.Result, source string, generatedAt time.Time) (*ReportRun, error) {
	if res == nil {
		return nil, fmt.Errorf("archive: nil result")
	}

	summary := analytics.Summarize(res)
	run := &ReportRun{
		ID:            ulid.Make().String(),
		Source:        source,
		GeneratedAt:   generatedAt.UTC(),
		ReferenceTime: res.Now.UTC(),
		RecordCount:   summary.Records,
		ExcludedCount: summary.Excluded,
		VisitorCount:  summary.Visitors,
		HighCount:     summary.Tiers[analytics.TierHigh],
		MediumCount:   summary.Tiers[analytics.TierMedium],
		LowCount:      summary.Tiers[analytics.TierLow],
		Mode:          string(summary.Mode),
		HighThreshold: res.Classification.HighThreshold,
		LowThreshold:  res.Classification.LowThreshold,
		MeanScore:     summary.MeanScore,
		CreatedAt:     time.Now().UTC(),
	}

	ranked := analytics.Sort(res.Visitors, analytics.SortByIntentScore, true)
	snapshots := make([]VisitorSnapshot, 0, len(ranked))
	for i, v := range ranked {
		snapshots = append(snapshots, VisitorSnapshot{
			RunID:          run.ID,
			VisitorKey:     v.ID,
			Label:          v.DisplayLabel,
			IdentitySource: string(v.IdentitySource),
			Score:          v.IntentScore,
			Tier:           string(v.IntentTier),
			Position:       i + 1,
			ARSeconds:      v.TotalARSeconds,
			Sessions:       v.SessionCount,
			ARSessions:     v.ARSessionCount,
			Views:          v.ViewCount,
			UniqueDays:     v.UniqueDayCount,
			CTAClicks:      v.CTAClickCount,
			QRHandoff:      v.HadQRHandoff,
			LastSeen:       v.LastSeen.UTC(),
		})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("failed to create run: %w", err)
		}
		if len(snapshots) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(snapshots, snapshotBatchSize).Error; err != nil {
			return fmt.Errorf("failed to create visitor snapshots: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func ListRuns(db *gorm.DB, limit int) ([]ReportRun, error) {
	var runs []ReportRun
	query := db.Order("generated_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun retrieves a run by its full ID or by a unique ID prefix.
func GetRun(db *gorm.DB, id string) (*ReportRun, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if id == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var runs []ReportRun
	err := db.Where("id LIKE ?", id+"%").Order("id ASC").Limit(2).Find(&runs).Error
	if err != nil {
		return nil, err
	}
	switch len(runs) {
	case 0:
		return nil, gorm.ErrRecordNotFound
	case 1:
		return &runs[0], nil
	default:
		if runs[0].ID == id {
			return &runs[0], nil
		}
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

// PreviousRun returns the run generated immediately before the given one.
func PreviousRun(db *gorm.DB, run *ReportRun) (*ReportRun, error) {
	var prev ReportRun
	err := db.Where("generated_at < ? OR (generated_at = ? AND id < ?)",
		run.GeneratedAt, run.GeneratedAt, run.ID).
		Order("generated_at DESC, id DESC").
		First(&prev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoPreviousRun
	}
	if err != nil {
		return nil, err
	}
	return &prev, nil
}

// RunVisitors returns a run's snapshots in position order.
func RunVisitors(db *gorm.DB, runID string) ([]VisitorSnapshot, error) {
	var snapshots []VisitorSnapshot
	err := db.Where("run_id = ?", runID).
		Order("position ASC").
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

// DeleteRun removes a run and its snapshots.
func DeleteRun(db *gorm.DB, runID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", runID).Delete(&VisitorSnapshot{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", runID).Delete(&ReportRun{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
