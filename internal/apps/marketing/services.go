package marketing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ermradulsharma/pahadigo-sub000/internal/audit"
	"github.com/ermradulsharma/pahadigo-sub000/internal/services"
)

var (
	ErrBannerNotFound = errors.New("banner not found")
	ErrCouponNotFound = errors.New("coupon not found")
	ErrCouponExists   = errors.New("coupon code already exists")
)

type Service struct {
	db    *gorm.DB
	audit services.ActionLogger
	now   func() time.Time
}

func NewService(db *gorm.DB, auditLog services.ActionLogger) *Service {
	return &Service{db: db, audit: auditLog, now: time.Now}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ActiveBanners lists banners shown to travellers, by position.
func (s *Service) ActiveBanners(ctx context.Context) ([]Banner, error) {
	var banners []Banner
	err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("position ASC, created_at ASC").Find(&banners).Error
	return banners, err
}

func (s *Service) AllBanners(ctx context.Context) ([]Banner, error) {
	var banners []Banner
	err := s.db.WithContext(ctx).Order("position ASC, created_at ASC").Find(&banners).Error
	return banners, err
}

func (s *Service) SaveBanner(ctx context.Context, id *uuid.UUID, req *BannerRequest) (*Banner, error) {
	b := Banner{}
	if id != nil {
		if err := s.db.WithContext(ctx).First(&b, "id = ?", *id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrBannerNotFound
			}
			return nil, err
		}
	}
	b.Title = strings.TrimSpace(req.Title)
	b.Subtitle = strings.TrimSpace(req.Subtitle)
	b.ImageURL = req.ImageURL
	b.LinkURL = req.LinkURL
	b.Position = req.Position
	b.IsActive = req.IsActive == nil || *req.IsActive

	if err := s.db.WithContext(ctx).Save(&b).Error; err != nil {
		return nil, fmt.Errorf("failed to save banner: %w", err)
	}
	return &b, nil
}

func (s *Service) DeleteBanner(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&Banner{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBannerNotFound
	}
	return nil
}

func (s *Service) Coupons(ctx context.Context) ([]Coupon, error) {
	var coupons []Coupon
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&coupons).Error
	return coupons, err
}

func (s *Service) SaveCoupon(ctx context.Context, actor audit.Actor, id *uuid.UUID, req *CouponRequest) (*Coupon, error) {
	c := Coupon{}
	if id != nil {
		if err := s.db.WithContext(ctx).First(&c, "id = ?", *id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCouponNotFound
			}
			return nil, err
		}
	}
	c.Code = normalizeCode(req.Code)
	c.Description = req.Description
	c.DiscountType = req.DiscountType
	c.DiscountValue = req.DiscountValue
	c.MaxDiscount = req.MaxDiscount
	c.MinBookingAmount = req.MinBookingAmount
	c.MaxUses = req.MaxUses
	c.ValidFrom = req.ValidFrom
	c.ValidUntil = req.ValidUntil
	c.IsActive = req.IsActive == nil || *req.IsActive

	if err := s.db.WithContext(ctx).Save(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCouponExists
		}
		return nil, fmt.Errorf("failed to save coupon: %w", err)
	}
	s.audit.LogAction(actor, audit.ActionSaveCoupon, "coupon", c.ID.String(), map[string]any{
		"code": c.Code, "discountType": c.DiscountType, "discountValue": c.DiscountValue, "maxUses": c.MaxUses,
	})
	return &c, nil
}

func (s *Service) DeleteCoupon(ctx context.Context, actor audit.Actor, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&Coupon{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCouponNotFound
	}
	s.audit.LogAction(actor, audit.ActionDeleteCoupon, "coupon", id.String(), nil)
	return nil
}

// Quote previews the discount without reserving a use.
func (s *Service) Quote(ctx context.Context, code string, amount float64) (*CouponQuote, error) {
	var c Coupon
	if err := s.db.WithContext(ctx).First(&c, "code = ?", normalizeCode(code)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrInvalidCoupon
		}
		return nil, err
	}
	if !c.Applicable(amount, s.now()) || c.Exhausted() {
		return nil, services.ErrInvalidCoupon
	}
	d := c.Discount(amount)
	return &CouponQuote{Code: c.Code, Discount: d, Total: amount - d}, nil
}

// Redeem reserves one use with a single conditional increment, so
// concurrent bookings can never exceed MaxUses.
func (s *Service) Redeem(ctx context.Context, code string, amount float64, at time.Time) (float64, error) {
	var c Coupon
	if err := s.db.WithContext(ctx).First(&c, "code = ?", normalizeCode(code)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, services.ErrInvalidCoupon
		}
		return 0, err
	}
	if !c.Applicable(amount, at) {
		return 0, services.ErrInvalidCoupon
	}

	res := s.db.WithContext(ctx).Model(&Coupon{}).
		Where("id = ? AND is_active = ? AND (max_uses = 0 OR used_count < max_uses)", c.ID, true).
		Update("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to redeem coupon: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, services.ErrInvalidCoupon
	}
	return c.Discount(amount), nil
}

// Release gives back a use reserved by Redeem.
func (s *Service) Release(ctx context.Context, code string) error {
	return s.db.WithContext(ctx).Model(&Coupon{}).
		Where("code = ? AND used_count > 0", normalizeCode(code)).
		Update("used_count", gorm.Expr("used_count - 1")).Error
}
