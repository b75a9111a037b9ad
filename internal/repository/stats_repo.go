package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
)

type Counts struct {
	Users          int64 `json:"users"`
	Travellers     int64 `json:"travellers"`
	Vendors        int64 `json:"vendors"`
	PendingVendors int64 `json:"pendingVendors"`
	Bookings       int64 `json:"bookings"`
	Packages       int64 `json:"packages"`
	Categories     int64 `json:"categories"`
}

type MonthlyPoint struct {
	Month    time.Time `json:"month"`
	Bookings int64     `json:"bookings"`
	Revenue  float64   `json:"revenue"`
}

type CategoryPoint struct {
	Category string  `json:"category"`
	Bookings int64   `json:"bookings"`
	Revenue  float64 `json:"revenue"`
}

type StatsRepository interface {
	Counts(ctx context.Context) (Counts, error)
	// Revenue sums paid, unrefunded bookings.
	Revenue(ctx context.Context) (float64, error)
	Monthly(ctx context.Context, since time.Time) ([]MonthlyPoint, error)
	ByCategory(ctx context.Context, since time.Time) ([]CategoryPoint, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Counts(ctx context.Context) (Counts, error) {
	db := r.db.WithContext(ctx)
	var c Counts
	steps := []struct {
		dst *int64
		q   *gorm.DB
	}{
		{&c.Users, db.Model(&models.User{}).Where("is_deleted = ?", false)},
		{&c.Travellers, db.Model(&models.User{}).Where("role = ? AND is_deleted = ?", models.RoleTraveller, false)},
		{&c.Vendors, db.Model(&models.Vendor{})},
		{&c.PendingVendors, db.Model(&models.Vendor{}).Where("is_approved = ?", false)},
		{&c.Bookings, db.Model(&models.Booking{})},
		{&c.Packages, db.Model(&models.CatalogItem{})},
	}
	for _, s := range steps {
		if err := s.q.Count(s.dst).Error; err != nil {
			return Counts{}, err
		}
	}

	// categories is owned by the reference plugin and may be absent
	if db.Migrator().HasTable("categories") {
		if err := db.Table("categories").Count(&c.Categories).Error; err != nil {
			return Counts{}, err
		}
	}
	return c, nil
}

func (r *statsRepository) Revenue(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("payment_status = ? AND refund_status = ?", models.PaymentPaid, models.RefundNone).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&total).Error
	return total, err
}

func (r *statsRepository) Monthly(ctx context.Context, since time.Time) ([]MonthlyPoint, error) {
	var points []MonthlyPoint
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select(`date_trunc('month', created_at) AS month,
			COUNT(*) AS bookings,
			COALESCE(SUM(CASE WHEN payment_status = ? AND refund_status = ? THEN total_price ELSE 0 END), 0) AS revenue`,
			models.PaymentPaid, models.RefundNone).
		Where("created_at >= ?", since).
		Group("month").
		Order("month ASC").
		Scan(&points).Error
	return points, err
}

func (r *statsRepository) ByCategory(ctx context.Context, since time.Time) ([]CategoryPoint, error) {
	var points []CategoryPoint
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select(`category,
			COUNT(*) AS bookings,
			COALESCE(SUM(CASE WHEN payment_status = ? AND refund_status = ? THEN total_price ELSE 0 END), 0) AS revenue`,
			models.PaymentPaid, models.RefundNone).
		Where("created_at >= ?", since).
		Group("category").
		Order("bookings DESC").
		Scan(&points).Error
	return points, err
}
