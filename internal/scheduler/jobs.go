package scheduler

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ermradulsharma/pahadigo-sub000/internal/logging"
)

// BookingSweeper is the part of the booking service the sweeps drive.
type BookingSweeper interface {
	CompleteDue(ctx context.Context) (int64, error)
	ExpireUnpaid(ctx context.Context) (int64, error)
}

// Job names.
const (
	JobCompleteBookings = "complete_bookings"
	JobExpireUnpaid     = "expire_unpaid_bookings"
	JobPurgeLogs        = "purge_system_logs"
)

// MarketplaceJobs returns the standard set: a daily completion sweep just
// after midnight, an hourly expiry of unpaid bookings, and the nightly
// system log purge.
func MarketplaceJobs(bookings BookingSweeper, db *gorm.DB, retentionDays int) []Job {
	return []Job{
		{Name: JobCompleteBookings, Spec: "5 0 * * *", Run: bookings.CompleteDue},
		{Name: JobExpireUnpaid, Spec: "@hourly", Run: bookings.ExpireUnpaid},
		{
			Name:    JobPurgeLogs,
			Spec:    "30 3 * * *",
			Timeout: 10 * time.Minute,
			Run: func(ctx context.Context) (int64, error) {
				return logging.PurgeSystemLogs(ctx, db, retentionDays)
			},
		},
	}
}
