package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jinzhu/now"

	"github.com/ermradulsharma/pahadigo-sub000/internal/audit"
	"github.com/ermradulsharma/pahadigo-sub000/internal/dto"
	"github.com/ermradulsharma/pahadigo-sub000/internal/repository"
)

const (
	defaultAnalyticsMonths = 6
	maxAnalyticsMonths     = 24
)

type AuditReader interface {
	List(ctx context.Context, f audit.Filter) ([]audit.Entry, int64, error)
}

// AdminService is the read side of the dashboard.
type AdminService struct {
	stats    repository.StatsRepository
	audit    AuditReader
	currency string
	now      func() time.Time
}

func NewAdminService(stats repository.StatsRepository, auditReader AuditReader, currency string) *AdminService {
	return &AdminService{stats: stats, audit: auditReader, currency: currency, now: time.Now}
}

func (s *AdminService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	counts, err := s.stats.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count entities: %w", err)
	}
	revenue, err := s.stats.Revenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return &dto.StatsResponse{Counts: counts, Revenue: roundMoney(revenue), Currency: s.currency}, nil
}

// Analytics returns per-month totals for the last months (current month
// included) with empty months filled in, plus a per-category breakdown over
// the same window.
func (s *AdminService) Analytics(ctx context.Context, months int) (*dto.AnalyticsResponse, error) {
	if months < 1 {
		months = defaultAnalyticsMonths
	}
	if months > maxAnalyticsMonths {
		months = maxAnalyticsMonths
	}
	current := now.With(s.now().UTC()).BeginningOfMonth()
	since := current.AddDate(0, -(months - 1), 0)

	points, err := s.stats.Monthly(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly totals: %w", err)
	}
	byCategory, err := s.stats.ByCategory(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load category totals: %w", err)
	}
	if byCategory == nil {
		byCategory = []repository.CategoryPoint{}
	}

	found := make(map[string]repository.MonthlyPoint, len(points))
	for _, p := range points {
		found[p.Month.UTC().Format("2006-01")] = p
	}
	monthly := make([]repository.MonthlyPoint, 0, months)
	for m := since; !m.After(current); m = m.AddDate(0, 1, 0) {
		p, ok := found[m.Format("2006-01")]
		if !ok {
			p = repository.MonthlyPoint{}
		}
		p.Month = m
		p.Revenue = roundMoney(p.Revenue)
		monthly = append(monthly, p)
	}

	return &dto.AnalyticsResponse{Since: since, Monthly: monthly, ByCategory: byCategory}, nil
}

func (s *AdminService) AuditLogs(ctx context.Context, f audit.Filter) (dto.Paginated[audit.Entry], error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	entries, total, err := s.audit.List(ctx, f)
	if err != nil {
		return dto.Paginated[audit.Entry]{}, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return dto.NewPaginated(entries, total, f.Page, f.Limit), nil
}
