package logging

import (
	"context"
	"time"

	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
	"gorm.io/gorm"
)

// PurgeSystemLogs deletes system_logs older than the retention window.
func PurgeSystemLogs(ctx context.Context, db *gorm.DB, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}
