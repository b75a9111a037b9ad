package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/now"

	"github.com/ermradulsharma/pahadigo-sub000/internal/audit"
	"github.com/ermradulsharma/pahadigo-sub000/internal/dto"
	"github.com/ermradulsharma/pahadigo-sub000/internal/events"
	"github.com/ermradulsharma/pahadigo-sub000/internal/gateway"
	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
	"github.com/ermradulsharma/pahadigo-sub000/internal/repository"
	"github.com/ermradulsharma/pahadigo-sub000/internal/voucher"
)

type PaymentGateway interface {
	CreateOrder(ctx context.Context, creds gateway.Credentials, req gateway.OrderRequest) (*gateway.Order, error)
}

type PaymentCredentials interface {
	Razorpay(ctx context.Context) (gateway.Credentials, error)
}

// CouponRedeemer reserves one use of a coupon and returns the discount for
// the given amount. Release gives a use back when the booking is abandoned.
type CouponRedeemer interface {
	Redeem(ctx context.Context, code string, amount float64, at time.Time) (float64, error)
	Release(ctx context.Context, code string) error
}

type BookingDeps struct {
	Bookings    repository.BookingRepository
	Catalog     repository.CatalogRepository
	Users       repository.UserRepository
	Vendors     repository.VendorRepository
	Gateway     PaymentGateway
	Credentials PaymentCredentials
	Coupons     CouponRedeemer
	Audit       ActionLogger
	Events      events.Publisher
	Vouchers    *voucher.Renderer

	Currency      string
	PaymentWindow time.Duration
}

// BookingService owns the booking lifecycle. Payment, payout and refund
// transitions are conditional single-row updates; when one matches nothing
// the current row is read back only to explain why.
type BookingService struct {
	BookingDeps
	now func() time.Time
}

func NewBookingService(deps BookingDeps) *BookingService {
	if deps.Currency == "" {
		deps.Currency = "INR"
	}
	if deps.PaymentWindow <= 0 {
		deps.PaymentWindow = 24 * time.Hour
	}
	if deps.Events == nil {
		deps.Events = events.Noop{}
	}
	return &BookingService{BookingDeps: deps, now: time.Now}
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *BookingService) find(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	b, err := s.Bookings.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

func (s *BookingService) owned(ctx context.Context, userID, id uuid.UUID) (*models.Booking, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

// CreateBooking snapshots the item's current price into the booking. Later
// catalog edits never change an existing booking's total.
func (s *BookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req *dto.CreateBookingRequest) (*models.Booking, error) {
	current := s.now().UTC()
	travel, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.TravelDate), time.UTC)
	if err != nil || travel.Before(now.With(current).BeginningOfDay()) {
		return nil, ErrInvalidTravelDate
	}
	if req.Guests < 1 {
		return nil, ErrInvalidGuests
	}

	row, err := s.Catalog.FindPublic(ctx, req.ItemID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrItemUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	item, err := toItem(row.CatalogItem)
	if err != nil {
		return nil, fmt.Errorf("failed to decode item: %w", err)
	}

	unit := item.Details.UnitPrice()
	gross := roundMoney(unit * float64(req.Guests))

	code := strings.ToUpper(strings.TrimSpace(req.CouponCode))
	var discount float64
	if code != "" {
		if s.Coupons == nil {
			return nil, ErrInvalidCoupon
		}
		discount, err = s.Coupons.Redeem(ctx, code, gross, current)
		if err != nil {
			return nil, err
		}
		discount = roundMoney(math.Min(discount, gross))
	}
	total := roundMoney(gross - discount)

	if req.ExpectedPrice != nil && math.Abs(*req.ExpectedPrice-total) > 0.005 {
		s.releaseCoupon(code)
		return nil, ErrPriceChanged
	}

	b := &models.Booking{
		UserID:         userID,
		VendorID:       row.VendorID,
		PackageID:      row.PackageID,
		ItemID:         row.ID,
		Category:       row.Category,
		ItemTitle:      item.Details.Title(),
		TravelDate:     travel,
		Guests:         req.Guests,
		UnitPrice:      unit,
		DiscountAmount: discount,
		CouponCode:     code,
		TotalPrice:     total,
		Currency:       s.Currency,
		Status:         models.BookingPending,
		PaymentStatus:  models.PaymentPending,
		PayoutStatus:   models.PayoutPending,
		RefundStatus:   models.RefundNone,
	}
	if err := s.Bookings.Create(ctx, b); err != nil {
		s.releaseCoupon(code)
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	slog.Info("booking created", "booking_id", b.ID.String(), "user_id", userID.String(), "vendor_id", b.VendorID.String(), "action", "booking_create")
	events.PublishAsync(s.Events, events.BookingCreated, b)
	return b, nil
}

func (s *BookingService) releaseCoupon(code string) {
	if code == "" || s.Coupons == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Coupons.Release(ctx, code); err != nil {
		slog.Error("failed to release coupon", "coupon", code, "action", "coupon_release", "error", err.Error())
	}
}

func gatewayError(err error) error {
	switch {
	case errors.Is(err, gateway.ErrNotConfigured):
		return ErrNotConfigured
	case errors.Is(err, gateway.ErrProviderTimeout):
		return ErrProviderTimeout
	case errors.Is(err, gateway.ErrProviderFailure):
		return fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	return err
}

// CreateOrder opens a gateway order for the booking total. An order already
// attached to an unpaid booking is returned as is.
func (s *BookingService) CreateOrder(ctx context.Context, userID uuid.UUID, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	b, err := s.owned(ctx, userID, req.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingPending || b.PaymentStatus == models.PaymentPaid {
		return nil, ErrBookingNotPayable
	}

	creds, err := s.Credentials.Razorpay(ctx)
	if err != nil {
		return nil, err
	}
	if !creds.Configured() {
		return nil, ErrNotConfigured
	}

	resp := &dto.CreateOrderResponse{
		BookingID: b.ID,
		Amount:    gateway.MinorUnits(b.TotalPrice),
		Currency:  b.Currency,
		KeyID:     creds.KeyID,
	}
	if id := b.OrderID(); id != "" {
		resp.OrderID = id
		return resp, nil
	}

	order, err := s.Gateway.CreateOrder(ctx, creds, gateway.OrderRequest{
		Amount:   b.TotalPrice,
		Currency: b.Currency,
		Receipt:  b.ID.String(),
		Notes:    map[string]string{"bookingId": b.ID.String(), "userId": userID.String()},
	})
	if err != nil {
		slog.Error("gateway order failed", "booking_id", b.ID.String(), "action", "create_order", "error", err.Error())
		return nil, gatewayError(err)
	}

	if err := s.Bookings.SetOrderID(ctx, b.ID, order.ID); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return nil, ErrBookingNotPayable
		}
		return nil, fmt.Errorf("failed to save order: %w", err)
	}
	resp.OrderID = order.ID
	return resp, nil
}

// VerifyPayment checks the checkout signature and marks the booking paid.
// The order must belong to the caller and, when given, to the named booking.
// Repeating a verification for the same payment is a no-op.
func (s *BookingService) VerifyPayment(ctx context.Context, userID uuid.UUID, req *dto.VerifyPaymentRequest) (*models.Booking, error) {
	creds, err := s.Credentials.Razorpay(ctx)
	if err != nil {
		return nil, err
	}
	if creds.KeySecret == "" {
		return nil, ErrNotConfigured
	}
	if !gateway.VerifyPayment(creds.KeySecret, req.OrderID, req.PaymentID, strings.ToLower(req.Signature)) {
		slog.Warn("payment signature mismatch", "order_id", req.OrderID, "user_id", userID.String(), "action", "verify_payment")
		return nil, ErrInvalidSignature
	}

	b, err := s.Bookings.FindByOrderID(ctx, req.OrderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderMismatch
	}
	if err != nil {
		return nil, err
	}
	if b.UserID != userID || (req.BookingID != nil && *req.BookingID != b.ID) {
		return nil, ErrOrderMismatch
	}

	return s.markPaid(ctx, b, req.PaymentID, strings.ToLower(req.Signature))
}

func (s *BookingService) markPaid(ctx context.Context, b *models.Booking, paymentID, signature string) (*models.Booking, error) {
	if b.PaymentStatus == models.PaymentPaid {
		if b.GatewayPaymentID == paymentID {
			return b, nil
		}
		return nil, ErrBookingNotPayable
	}

	err := s.Bookings.MarkPaid(ctx, b.ID, repository.PaymentUpdate{
		PaymentID: paymentID,
		Signature: signature,
		PaidAt:    s.now(),
	})
	if err != nil && !errors.Is(err, repository.ErrStale) {
		return nil, fmt.Errorf("failed to mark booking paid: %w", err)
	}

	updated, ferr := s.find(ctx, b.ID)
	if ferr != nil {
		return nil, ferr
	}
	if errors.Is(err, repository.ErrStale) {
		if updated.PaymentStatus == models.PaymentPaid && updated.GatewayPaymentID == paymentID {
			return updated, nil
		}
		return nil, ErrBookingNotPayable
	}

	slog.Info("booking paid", "booking_id", updated.ID.String(), "payment_id", paymentID, "action", "payment_paid")
	events.PublishAsync(s.Events, events.BookingPaid, updated)
	return updated, nil
}

// HandleWebhook applies a signed gateway event. Unknown events and orders are
// acknowledged without change.
func (s *BookingService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	creds, err := s.Credentials.Razorpay(ctx)
	if err != nil {
		return err
	}
	if creds.WebhookSecret == "" {
		return ErrNotConfigured
	}
	if !gateway.VerifyWebhook(creds.WebhookSecret, body, signature) {
		return ErrInvalidSignature
	}

	var hook dto.RazorpayWebhook
	if err := json.Unmarshal(body, &hook); err != nil {
		return fmt.Errorf("%w: malformed webhook body", ErrInvalidSignature)
	}
	payment := hook.Payload.Payment.Entity
	if payment.OrderID == "" {
		return nil
	}

	b, err := s.Bookings.FindByOrderID(ctx, payment.OrderID)
	if errors.Is(err, repository.ErrNotFound) {
		slog.Warn("webhook for unknown order", "order_id", payment.OrderID, "event", hook.Event, "action", "payment_webhook")
		return nil
	}
	if err != nil {
		return err
	}

	switch hook.Event {
	case dto.RazorpayPaymentCaptured:
		_, err := s.markPaid(ctx, b, payment.ID, "")
		if errors.Is(err, ErrBookingNotPayable) {
			slog.Warn("captured payment for unpayable booking", "booking_id", b.ID.String(), "payment_id", payment.ID, "action", "payment_webhook")
			return nil
		}
		return err
	case dto.RazorpayPaymentFailed:
		err := s.Bookings.MarkPaymentFailed(ctx, b.ID)
		if err != nil && !errors.Is(err, repository.ErrStale) {
			return err
		}
		slog.Info("payment failed", "booking_id", b.ID.String(), "reason", payment.ErrorDescription, "action", "payment_webhook")
	}
	return nil
}

// MarkPayout records the vendor payout. It never succeeds on a refunded
// booking.
func (s *BookingService) MarkPayout(ctx context.Context, actor audit.Actor, req *dto.PayoutRequest) (*models.Booking, error) {
	err := s.Bookings.MarkPayout(ctx, req.BookingID, s.now())
	if errors.Is(err, repository.ErrStale) {
		b, ferr := s.find(ctx, req.BookingID)
		if ferr != nil {
			return nil, ferr
		}
		switch {
		case b.RefundStatus == models.RefundRefunded:
			return nil, ErrRefundedBooking
		case b.PayoutStatus == models.PayoutPaid:
			return nil, ErrPayoutAlreadyPaid
		case b.PaymentStatus != models.PaymentPaid:
			return nil, ErrPaymentNotCompleted
		}
		return nil, ErrConcurrentUpdate
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark payout: %w", err)
	}

	b, err := s.find(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	s.Audit.LogAction(actor, audit.ActionPayout, "booking", b.ID.String(), map[string]any{
		"amount":   b.TotalPrice,
		"vendorId": b.VendorID.String(),
	})
	events.PublishAsync(s.Events, events.BookingPayout, b)
	return b, nil
}

// ProcessRefund refunds a paid booking once. A refund resets the payout to
// pending; if a payout had already gone out it is flagged for reversal.
func (s *BookingService) ProcessRefund(ctx context.Context, actor audit.Actor, req *dto.RefundRequest) (*models.Booking, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "refunded by admin"
	}

	prevPayout, err := s.Bookings.MarkRefunded(ctx, req.BookingID, reason, s.now())
	if errors.Is(err, repository.ErrStale) {
		b, ferr := s.find(ctx, req.BookingID)
		if ferr != nil {
			return nil, ferr
		}
		switch {
		case b.RefundStatus == models.RefundRefunded:
			return nil, ErrAlreadyRefunded
		case b.PaymentStatus != models.PaymentPaid:
			return nil, ErrPaymentNotCompleted
		}
		return nil, ErrConcurrentUpdate
	}
	if err != nil {
		return nil, fmt.Errorf("failed to refund booking: %w", err)
	}

	b, err := s.find(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if prevPayout == models.PayoutPaid {
		slog.Warn("refund issued after vendor payout", "booking_id", b.ID.String(), "vendor_id", b.VendorID.String(), "action", audit.ActionPayoutReversalRequired)
		s.Audit.LogAction(actor, audit.ActionPayoutReversalRequired, "booking", b.ID.String(), map[string]any{
			"amount":   b.TotalPrice,
			"vendorId": b.VendorID.String(),
		})
	}
	s.Audit.LogAction(actor, audit.ActionRefund, "booking", b.ID.String(), map[string]any{
		"amount": b.RefundAmount,
		"reason": reason,
	})
	events.PublishAsync(s.Events, events.BookingRefunded, b)
	return b, nil
}

// CancelBooking lets the traveller drop a booking that has not been paid.
func (s *BookingService) CancelBooking(ctx context.Context, userID, bookingID uuid.UUID, req *dto.CancelBookingRequest) (*models.Booking, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "cancelled by traveller"
	}
	err := s.Bookings.Cancel(ctx, bookingID, userID, reason)
	if errors.Is(err, repository.ErrStale) {
		if _, ferr := s.owned(ctx, userID, bookingID); ferr != nil {
			return nil, ferr
		}
		return nil, ErrNotCancellable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	b, err := s.find(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.releaseCoupon(b.CouponCode)
	events.PublishAsync(s.Events, events.BookingCancel, b)
	return b, nil
}

func (s *BookingService) GetForUser(ctx context.Context, userID, id uuid.UUID) (*models.Booking, error) {
	return s.owned(ctx, userID, id)
}

func (s *BookingService) Get(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.find(ctx, id)
}

func (s *BookingService) List(ctx context.Context, f repository.BookingFilter) (dto.Paginated[models.Booking], error) {
	f.Page = f.Page.Normalize()
	rows, total, err := s.Bookings.List(ctx, f)
	if err != nil {
		return dto.Paginated[models.Booking]{}, fmt.Errorf("failed to list bookings: %w", err)
	}
	return dto.NewPaginated(rows, total, f.Page.Page, f.Page.Limit), nil
}

// ListForVendor lists bookings against the caller's vendor profile.
func (s *BookingService) ListForVendor(ctx context.Context, userID uuid.UUID, f repository.BookingFilter) (dto.Paginated[models.Booking], error) {
	v, err := s.Vendors.FindByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return dto.Paginated[models.Booking]{}, ErrVendorNotFound
	}
	if err != nil {
		return dto.Paginated[models.Booking]{}, err
	}
	f.UserID = nil
	f.VendorID = &v.ID
	return s.List(ctx, f)
}

// Voucher renders the PDF voucher of a paid, unrefunded booking.
func (s *BookingService) Voucher(ctx context.Context, userID, id uuid.UUID) ([]byte, error) {
	b, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if b.PaymentStatus != models.PaymentPaid || b.RefundStatus != models.RefundNone {
		return nil, ErrPaymentNotCompleted
	}

	var d voucher.Details
	if u, err := s.Users.FindByID(ctx, b.UserID); err == nil {
		d.TravellerName = u.Name
	}
	if v, err := s.Vendors.FindByID(ctx, b.VendorID); err == nil {
		d.VendorName = v.BusinessName
		d.VendorPhone = v.ContactPhone
	}
	return s.Vouchers.Render(b, d)
}

// CompleteDue marks paid, confirmed bookings whose travel date has passed as
// completed.
func (s *BookingService) CompleteDue(ctx context.Context) (int64, error) {
	t := s.now().UTC()
	return s.Bookings.CompleteDue(ctx, now.With(t).BeginningOfDay(), t)
}

// ExpireUnpaid cancels pending bookings left unpaid past the payment window.
func (s *BookingService) ExpireUnpaid(ctx context.Context) (int64, error) {
	return s.Bookings.ExpireUnpaid(ctx, s.now().Add(-s.PaymentWindow))
}
