package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"

	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"

	PayoutPending = "pending"
	PayoutPaid    = "paid"

	RefundNone     = "none"
	RefundRefunded = "refunded"
)

// Booking snapshots the item's price at creation; later catalog edits never
// change TotalPrice. Payment, payout and refund are independent sub-states.
type Booking struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	VendorID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"vendorId"`
	PackageID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"packageId"`
	ItemID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"itemId"`
	Category         string     `gorm:"size:30;not null" json:"category"`
	ItemTitle        string     `gorm:"size:255" json:"itemTitle"`
	TravelDate       time.Time  `gorm:"type:date;not null;index" json:"travelDate"`
	Guests           int        `gorm:"not null;default:1" json:"guests"`
	UnitPrice        float64    `gorm:"type:numeric(12,2);not null" json:"unitPrice"`
	DiscountAmount   float64    `gorm:"type:numeric(12,2);not null;default:0" json:"discountAmount"`
	CouponCode       string     `gorm:"size:40" json:"couponCode,omitempty"`
	TotalPrice       float64    `gorm:"type:numeric(12,2);not null" json:"totalPrice"`
	Currency         string     `gorm:"size:3;not null;default:'INR'" json:"currency"`
	Status           string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	PaymentStatus    string     `gorm:"size:20;not null;default:'pending';index" json:"paymentStatus"`
	PayoutStatus     string     `gorm:"size:20;not null;default:'pending'" json:"payoutStatus"`
	RefundStatus     string     `gorm:"size:20;not null;default:'none'" json:"refundStatus"`
	RefundAmount     float64    `gorm:"type:numeric(12,2);not null;default:0" json:"refundAmount"`
	GatewayOrderID   *string    `gorm:"size:100;uniqueIndex" json:"gatewayOrderId,omitempty"`
	GatewayPaymentID string     `gorm:"size:100" json:"gatewayPaymentId,omitempty"`
	GatewaySignature string     `gorm:"size:128" json:"-"`
	CancelReason     string     `gorm:"size:500" json:"cancelReason,omitempty"`
	PaidAt           *time.Time `json:"paidAt,omitempty"`
	PayoutAt         *time.Time `json:"payoutAt,omitempty"`
	RefundedAt       *time.Time `json:"refundedAt,omitempty"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	CreatedAt        time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func (b *Booking) OrderID() string {
	if b.GatewayOrderID == nil {
		return ""
	}
	return *b.GatewayOrderID
}
