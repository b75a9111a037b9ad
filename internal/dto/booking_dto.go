package dto

import "github.com/google/uuid"

type CreateBookingRequest struct {
	ItemID        uuid.UUID `json:"itemId" validate:"required"`
	TravelDate    string    `json:"travelDate" validate:"required,datetime=2006-01-02"`
	Guests        int       `json:"guests" validate:"required,min=1,max=50"`
	CouponCode    string    `json:"couponCode" validate:"omitempty,max=40"`
	ExpectedPrice *float64  `json:"expectedPrice" validate:"omitempty,gte=0"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type CreateOrderRequest struct {
	BookingID uuid.UUID `json:"bookingId" validate:"required"`
}

type CreateOrderResponse struct {
	OrderID   string    `json:"orderId"`
	BookingID uuid.UUID `json:"bookingId"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	KeyID     string    `json:"keyId"`
}

type VerifyPaymentRequest struct {
	BookingID *uuid.UUID `json:"bookingId"`
	OrderID   string     `json:"orderId" validate:"required"`
	PaymentID string     `json:"paymentId" validate:"required"`
	Signature string     `json:"signature" validate:"required,hexadecimal"`
}

type PayoutRequest struct {
	BookingID uuid.UUID `json:"bookingId" validate:"required"`
}

type RefundRequest struct {
	BookingID uuid.UUID `json:"bookingId" validate:"required"`
	Reason    string    `json:"reason" validate:"max=500"`
}
