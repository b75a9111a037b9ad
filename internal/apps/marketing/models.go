package marketing

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Banner is a promotional slide on the traveller home screen.
type Banner struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Subtitle  string    `gorm:"size:300" json:"subtitle"`
	ImageURL  string    `gorm:"size:500;not null" json:"imageUrl"`
	LinkURL   string    `gorm:"size:500" json:"linkUrl"`
	Position  int       `gorm:"default:0;index" json:"position"`
	IsActive  bool      `gorm:"not null" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	DiscountPercent = "percent"
	DiscountFlat    = "flat"
)

// Coupon is a discount code redeemed at booking time. MaxUses 0 means
// unlimited.
type Coupon struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code             string     `gorm:"size:40;uniqueIndex;not null" json:"code"`
	Description      string     `gorm:"size:300" json:"description"`
	DiscountType     string     `gorm:"size:10;not null" json:"discountType"`
	DiscountValue    float64    `gorm:"not null" json:"discountValue"`
	MaxDiscount      float64    `gorm:"default:0" json:"maxDiscount"`
	MinBookingAmount float64    `gorm:"default:0" json:"minBookingAmount"`
	MaxUses          int        `gorm:"default:0" json:"maxUses"`
	UsedCount        int        `gorm:"default:0" json:"usedCount"`
	ValidFrom        *time.Time `json:"validFrom"`
	ValidUntil       *time.Time `json:"validUntil"`
	IsActive         bool       `gorm:"not null" json:"isActive"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Applicable reports whether the coupon may be used for amount at t,
// ignoring the usage counter.
func (c *Coupon) Applicable(amount float64, t time.Time) bool {
	switch {
	case !c.IsActive:
		return false
	case c.ValidFrom != nil && t.Before(*c.ValidFrom):
		return false
	case c.ValidUntil != nil && t.After(*c.ValidUntil):
		return false
	case amount < c.MinBookingAmount:
		return false
	}
	return true
}

// Exhausted reports whether every allowed use has been taken.
func (c *Coupon) Exhausted() bool {
	return c.MaxUses > 0 && c.UsedCount >= c.MaxUses
}

// Discount is the amount taken off amount, capped by MaxDiscount and never
// more than amount.
func (c *Coupon) Discount(amount float64) float64 {
	var d float64
	switch c.DiscountType {
	case DiscountPercent:
		d = amount * c.DiscountValue / 100
		if c.MaxDiscount > 0 {
			d = math.Min(d, c.MaxDiscount)
		}
	case DiscountFlat:
		d = c.DiscountValue
	}
	d = math.Min(math.Max(d, 0), amount)
	return math.Round(d*100) / 100
}
