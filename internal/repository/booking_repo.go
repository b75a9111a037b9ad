package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
)

type BookingFilter struct {
	UserID        *uuid.UUID
	VendorID      *uuid.UUID
	Status        string
	PaymentStatus string
	Page
}

// PaymentUpdate carries the gateway references stored on successful payment.
type PaymentUpdate struct {
	PaymentID string
	Signature string
	PaidAt    time.Time
}

type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Booking, error)
	List(ctx context.Context, f BookingFilter) ([]models.Booking, int64, error)
	// SetOrderID attaches a gateway order to an unpaid, uncancelled booking.
	SetOrderID(ctx context.Context, id uuid.UUID, orderID string) error
	// MarkPaid moves an unpaid, uncancelled booking to paid and confirmed.
	MarkPaid(ctx context.Context, id uuid.UUID, p PaymentUpdate) error
	MarkPaymentFailed(ctx context.Context, id uuid.UUID) error
	// MarkPayout requires paid, not refunded, payout pending.
	MarkPayout(ctx context.Context, id uuid.UUID, at time.Time) error
	// MarkRefunded requires paid and not refunded. It returns the payout
	// status the row had before the update.
	MarkRefunded(ctx context.Context, id uuid.UUID, reason string, at time.Time) (string, error)
	// Cancel requires a pending, unpaid booking owned by userID.
	Cancel(ctx context.Context, id, userID uuid.UUID, reason string) error
	CompleteDue(ctx context.Context, travelBefore time.Time, at time.Time) (int64, error)
	ExpireUnpaid(ctx context.Context, createdBefore time.Time) (int64, error)
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, b *models.Booking) error {
	return translate(r.db.WithContext(ctx).Create(b).Error)
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *bookingRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.WithContext(ctx).First(&b, "gateway_order_id = ?", orderID).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *bookingRepository) List(ctx context.Context, f BookingFilter) ([]models.Booking, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Booking{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.VendorID != nil {
		q = q.Where("vendor_id = ?", *f.VendorID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var bookings []models.Booking
	if err := q.Order("created_at DESC").Scopes(paginate(f.Page)).Find(&bookings).Error; err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *bookingRepository) conditional(ctx context.Context, where string, args []any, fields map[string]any) error {
	fields["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&models.Booking{}).Where(where, args...).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

func (r *bookingRepository) SetOrderID(ctx context.Context, id uuid.UUID, orderID string) error {
	return r.conditional(ctx,
		"id = ? AND payment_status <> ? AND status = ?",
		[]any{id, models.PaymentPaid, models.BookingPending},
		map[string]any{"gateway_order_id": orderID, "payment_status": models.PaymentPending},
	)
}

func (r *bookingRepository) MarkPaid(ctx context.Context, id uuid.UUID, p PaymentUpdate) error {
	return r.conditional(ctx,
		"id = ? AND payment_status <> ? AND status <> ?",
		[]any{id, models.PaymentPaid, models.BookingCancelled},
		map[string]any{
			"payment_status":     models.PaymentPaid,
			"status":             models.BookingConfirmed,
			"gateway_payment_id": p.PaymentID,
			"gateway_signature":  p.Signature,
			"paid_at":            p.PaidAt,
		},
	)
}

func (r *bookingRepository) MarkPaymentFailed(ctx context.Context, id uuid.UUID) error {
	return r.conditional(ctx,
		"id = ? AND payment_status = ?",
		[]any{id, models.PaymentPending},
		map[string]any{"payment_status": models.PaymentFailed},
	)
}

func (r *bookingRepository) MarkPayout(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.conditional(ctx,
		"id = ? AND payment_status = ? AND refund_status = ? AND payout_status = ?",
		[]any{id, models.PaymentPaid, models.RefundNone, models.PayoutPending},
		map[string]any{"payout_status": models.PayoutPaid, "payout_at": at},
	)
}

const refundSQL = `
UPDATE bookings AS b SET
	refund_status = ?, refund_amount = b.total_price, status = ?,
	payout_status = ?, payout_at = NULL, cancel_reason = ?,
	refunded_at = ?, updated_at = ?
FROM (SELECT id, payout_status FROM bookings WHERE id = ? FOR UPDATE) AS prev
WHERE b.id = prev.id AND b.payment_status = ? AND b.refund_status = ?
RETURNING prev.payout_status`

func (r *bookingRepository) MarkRefunded(ctx context.Context, id uuid.UUID, reason string, at time.Time) (string, error) {
	var prev []string
	err := r.db.WithContext(ctx).Raw(refundSQL,
		models.RefundRefunded, models.BookingCancelled,
		models.PayoutPending, reason,
		at, at,
		id, models.PaymentPaid, models.RefundNone,
	).Scan(&prev).Error
	if err != nil {
		return "", err
	}
	if len(prev) == 0 {
		return "", ErrStale
	}
	return prev[0], nil
}

func (r *bookingRepository) Cancel(ctx context.Context, id, userID uuid.UUID, reason string) error {
	return r.conditional(ctx,
		"id = ? AND user_id = ? AND status = ? AND payment_status <> ?",
		[]any{id, userID, models.BookingPending, models.PaymentPaid},
		map[string]any{"status": models.BookingCancelled, "cancel_reason": reason},
	)
}

func (r *bookingRepository) CompleteDue(ctx context.Context, travelBefore, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("status = ? AND payment_status = ? AND refund_status = ? AND travel_date < ?",
			models.BookingConfirmed, models.PaymentPaid, models.RefundNone, travelBefore).
		Updates(map[string]any{"status": models.BookingCompleted, "completed_at": at, "updated_at": at})
	return res.RowsAffected, res.Error
}

func (r *bookingRepository) ExpireUnpaid(ctx context.Context, createdBefore time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("status = ? AND payment_status <> ? AND created_at < ?",
			models.BookingPending, models.PaymentPaid, createdBefore).
		Updates(map[string]any{
			"status":        models.BookingCancelled,
			"cancel_reason": "payment window expired",
			"updated_at":    time.Now(),
		})
	return res.RowsAffected, res.Error
}
