package marketing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCoupon_Discount(t *testing.T) {
	cases := []struct {
		name   string
		coupon Coupon
		amount float64
		want   float64
	}{
		{"percent", Coupon{DiscountType: DiscountPercent, DiscountValue: 10}, 8500, 850},
		{"percent capped", Coupon{DiscountType: DiscountPercent, DiscountValue: 50, MaxDiscount: 1000}, 8500, 1000},
		{"flat", Coupon{DiscountType: DiscountFlat, DiscountValue: 500}, 8500, 500},
		{"flat above amount", Coupon{DiscountType: DiscountFlat, DiscountValue: 500}, 300, 300},
		{"rounded", Coupon{DiscountType: DiscountPercent, DiscountValue: 12.5}, 99.99, 12.5},
		{"unknown type", Coupon{DiscountType: "bogo", DiscountValue: 1}, 100, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.coupon.Discount(tc.amount))
		})
	}
}

func TestCoupon_Applicable(t *testing.T) {
	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 6, 30, 23, 59, 59, 0, time.UTC)
	c := Coupon{IsActive: true, ValidFrom: &from, ValidUntil: &until, MinBookingAmount: 2000}

	assert.True(t, c.Applicable(2000, from.Add(time.Hour)))
	assert.False(t, c.Applicable(1999, from.Add(time.Hour)), "below minimum")
	assert.False(t, c.Applicable(5000, from.Add(-time.Second)), "not yet valid")
	assert.False(t, c.Applicable(5000, until.Add(time.Second)), "expired")

	c.IsActive = false
	assert.False(t, c.Applicable(5000, from.Add(time.Hour)))
}

func TestCoupon_Exhausted(t *testing.T) {
	assert.False(t, (&Coupon{MaxUses: 0, UsedCount: 1000}).Exhausted(), "zero means unlimited")
	assert.False(t, (&Coupon{MaxUses: 3, UsedCount: 2}).Exhausted())
	assert.True(t, (&Coupon{MaxUses: 3, UsedCount: 3}).Exhausted())
}
