// Package gateway talks to the payment provider (Razorpay).
package gateway

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	ErrNotConfigured   = errors.New("payment gateway is not configured")
	ErrProviderTimeout = errors.New("payment gateway timed out")
	ErrProviderFailure = errors.New("payment gateway request failed")
)

const DefaultBaseURL = "https://api.razorpay.com/v1"

// Credentials are looked up per call so a key rotation applies immediately.
type Credentials struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
}

func (c Credentials) Configured() bool { return c.KeyID != "" && c.KeySecret != "" }

type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type OrderRequest struct {
	Amount   float64
	Currency string
	Receipt  string
	Notes    map[string]string
}

type Razorpay struct {
	client  *resty.Client
	timeout time.Duration
}

func NewRazorpay(baseURL string, timeout time.Duration) *Razorpay {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Razorpay{
		client:  resty.New().SetBaseURL(baseURL).SetHeader("Content-Type", "application/json"),
		timeout: timeout,
	}
}

// MinorUnits converts a rupee amount to paise.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (r *Razorpay) CreateOrder(ctx context.Context, creds Credentials, req OrderRequest) (*Order, error) {
	if !creds.Configured() {
		return nil, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var order Order
	var apiErr struct {
		Error struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetBasicAuth(creds.KeyID, creds.KeySecret).
		SetBody(map[string]any{
			"amount":   MinorUnits(req.Amount),
			"currency": req.Currency,
			"receipt":  req.Receipt,
			"notes":    req.Notes,
		}).
		SetResult(&order).
		SetError(&apiErr).
		Post("/orders")
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrProviderTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d: %s", ErrProviderFailure, resp.StatusCode(), apiErr.Error.Description)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: empty order id", ErrProviderFailure)
	}
	return &order, nil
}
