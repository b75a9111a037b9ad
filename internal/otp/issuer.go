package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
)

var (
	ErrInvalidOTP        = errors.New("invalid or expired otp")
	ErrOTPThrottled      = errors.New("too many otp requests, try again later")
	ErrInvalidRole       = errors.New("role must be vendor or traveller")
	ErrInvalidIdentifier = errors.New("email or phone is required")
)

const codeDigits = 6

// Dispatcher delivers a code out of band.
type Dispatcher interface {
	Dispatch(ctx context.Context, identifier, code string) error
}

type Options struct {
	TTL             time.Duration
	DispatchTimeout time.Duration
	// MasterCode is accepted for any identifier. Leave empty outside development.
	MasterCode    string
	ThrottleEvery time.Duration
	ThrottleBurst int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type Issuer struct {
	store      Store
	dispatcher Dispatcher
	opts       Options
	now        func() time.Time

	mu       sync.Mutex
	limiters map[string]*limiterEntry

	inflight sync.WaitGroup
}

func NewIssuer(store Store, dispatcher Dispatcher, opts Options) *Issuer {
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.DispatchTimeout <= 0 {
		opts.DispatchTimeout = 10 * time.Second
	}
	if opts.ThrottleEvery <= 0 {
		opts.ThrottleEvery = 30 * time.Second
	}
	if opts.ThrottleBurst <= 0 {
		opts.ThrottleBurst = 3
	}
	return &Issuer{
		store:      store,
		dispatcher: dispatcher,
		opts:       opts,
		now:        time.Now,
		limiters:   make(map[string]*limiterEntry),
	}
}

// NormalizeIdentifier lowercases emails and strips phone formatting.
func NormalizeIdentifier(identifier string) string {
	id := strings.TrimSpace(identifier)
	if strings.Contains(id, "@") {
		return strings.ToLower(id)
	}
	var b strings.Builder
	for i, r := range id {
		if (r >= '0' && r <= '9') || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Generate stores a fresh code for identifier and sends it in the background.
// A previous unexpired code for the same identifier stops working.
func (i *Issuer) Generate(ctx context.Context, identifier, role string) error {
	id := NormalizeIdentifier(identifier)
	if id == "" {
		return ErrInvalidIdentifier
	}
	if role != models.RoleVendor && role != models.RoleTraveller {
		return ErrInvalidRole
	}
	if !i.allow(id) {
		return ErrOTPThrottled
	}

	code, err := newCode()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}
	rec := Record{Code: code, Role: role, ExpiresAt: i.now().Add(i.opts.TTL)}
	if err := i.store.Save(ctx, id, rec, i.opts.TTL); err != nil {
		return err
	}

	i.inflight.Add(1)
	go func() {
		defer i.inflight.Done()
		dctx, cancel := context.WithTimeout(context.Background(), i.opts.DispatchTimeout)
		defer cancel()
		if err := i.dispatcher.Dispatch(dctx, id, code); err != nil {
			slog.Error("otp dispatch failed", "identifier", id, "action", "otp_dispatch", "error", err.Error())
		}
	}()
	return nil
}

// Verify consumes the code for identifier and returns the role it was issued
// for. The master code yields models.RolePending.
func (i *Issuer) Verify(ctx context.Context, identifier, code string) (string, error) {
	id := NormalizeIdentifier(identifier)
	code = strings.TrimSpace(code)
	if id == "" || code == "" {
		return "", ErrInvalidOTP
	}

	if i.opts.MasterCode != "" && subtle.ConstantTimeCompare([]byte(code), []byte(i.opts.MasterCode)) == 1 {
		slog.Warn("master otp used", "identifier", id, "action", "otp_master")
		return models.RolePending, nil
	}

	rec, err := i.store.Consume(ctx, id, code)
	if errors.Is(err, ErrNoRecord) {
		return "", ErrInvalidOTP
	}
	if err != nil {
		return "", err
	}
	if !i.now().Before(rec.ExpiresAt) {
		return "", ErrInvalidOTP
	}
	return rec.Role, nil
}

// Wait blocks until background dispatches have finished.
func (i *Issuer) Wait() {
	i.inflight.Wait()
}

func (i *Issuer) allow(id string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	if len(i.limiters) > 4096 {
		for k, e := range i.limiters {
			if now.Sub(e.lastSeen) > 10*time.Minute {
				delete(i.limiters, k)
			}
		}
	}

	e, ok := i.limiters[id]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Every(i.opts.ThrottleEvery), i.opts.ThrottleBurst)}
		i.limiters[id] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func newCode() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}
