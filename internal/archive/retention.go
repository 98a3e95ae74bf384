package archive

import (
	"log/slog"
	"time"

	"gorm.io/gorm"
)

const pruneBatchSize = 100

// PruneRuns removes runs generated before cutoff together with their
// snapshots. Runs are deleted in batches so a large archive is never locked
// for long. It returns the number of runs removed.
func PruneRuns(db *gorm.DB, cutoff time.Time, logger *slog.Logger) (int64, error) {
	var countToDelete int64
	if err := db.Model(&ReportRun{}).
		Where("generated_at < ?", cutoff.UTC()).
		Count(&countToDelete).Error; err != nil {
		logger.Error("Failed to count old report runs", slog.Any("error", err))
		return 0, err
	}

	if countToDelete == 0 {
		logger.Debug("No old report runs to prune")
		return 0, nil
	}

	totalDeleted := int64(0)
	for {
		var ids []string
		if err := db.Model(&ReportRun{}).
			Where("generated_at < ?", cutoff.UTC()).
			Order("generated_at ASC").
			Limit(pruneBatchSize).
			Pluck("id", &ids).Error; err != nil {
			return totalDeleted, err
		}
		if len(ids) == 0 {
			break
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("run_id IN ?", ids).Delete(&VisitorSnapshot{}).Error; err != nil {
				return err
			}
			result := tx.Where("id IN ?", ids).Delete(&ReportRun{})
			if result.Error != nil {
				return result.Error
			}
			totalDeleted += result.RowsAffected
			return nil
		})
		if err != nil {
			logger.Error("Failed to prune report runs",
				slog.Any("error", err),
				slog.Int64("deleted_so_far", totalDeleted))
			return totalDeleted, err
		}

		if len(ids) < pruneBatchSize {
			break
		}
	}

	logger.Info("Pruned old report runs",
		slog.Int64("deleted_count", totalDeleted),
		slog.Time("cutoff", cutoff))
	return totalDeleted, nil
}
