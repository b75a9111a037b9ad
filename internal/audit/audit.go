// Package audit records admin actions. Writes never block or fail the
// request that triggered them.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Actions written by the admin surface.
const (
	ActionVerifyDocument         = "verify_document"
	ActionApproveVendor          = "approve_vendor"
	ActionRejectVendor           = "reject_vendor"
	ActionVerifyBank             = "verify_bank"
	ActionPayout                 = "payout"
	ActionRefund                 = "refund"
	ActionPayoutReversalRequired = "payout_reversal_required"
	ActionUpdateSetting          = "update_setting"
	ActionDeleteSetting          = "delete_setting"
	ActionUpsertPolicy           = "upsert_policy"
	ActionDeletePolicy           = "delete_policy"
	ActionUpdateInquiry          = "update_inquiry"
	ActionSaveCoupon             = "save_coupon"
	ActionDeleteCoupon           = "delete_coupon"
)

// Actor identifies who performed an action and from where.
type Actor struct {
	AdminID   uuid.UUID
	IP        string
	UserAgent string
}

type Entry struct {
	ID         string         `json:"id"`
	AdminID    uuid.UUID      `json:"adminId"`
	Action     string         `json:"action"`
	TargetType string         `json:"targetType"`
	TargetID   string         `json:"targetId"`
	Details    map[string]any `json:"details,omitempty"`
	IP         string         `json:"ip,omitempty"`
	UserAgent  string         `json:"userAgent,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

type Filter struct {
	Action     string
	TargetType string
	TargetID   string
	Page       int
	Limit      int
}

func (f Filter) normalized() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	return f
}

func (f Filter) offset() int {
	return (f.Page - 1) * f.Limit
}

type Sink interface {
	Write(ctx context.Context, e Entry) error
	List(ctx context.Context, f Filter) ([]Entry, int64, error)
}

type Logger struct {
	sink    Sink
	timeout time.Duration
	now     func() time.Time
	wg      sync.WaitGroup
}

func NewLogger(sink Sink) *Logger {
	return &Logger{sink: sink, timeout: 5 * time.Second, now: time.Now}
}

// LogAction appends an entry in the background. Errors are logged only.
func (l *Logger) LogAction(actor Actor, action, targetType, targetID string, details map[string]any) {
	e := Entry{
		AdminID:    actor.AdminID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		IP:         actor.IP,
		UserAgent:  actor.UserAgent,
		CreatedAt:  l.now().UTC(),
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()
		if err := l.sink.Write(ctx, e); err != nil {
			slog.Error("audit write failed",
				"action", "audit_write",
				"audit_action", action,
				"target_id", targetID,
				"error", err.Error(),
			)
		}
	}()
}

func (l *Logger) List(ctx context.Context, f Filter) ([]Entry, int64, error) {
	return l.sink.List(ctx, f.normalized())
}

// Flush waits for pending writes.
func (l *Logger) Flush() {
	l.wg.Wait()
}
