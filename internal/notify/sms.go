package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

const defaultMSG91URL = "https://control.msg91.com/api/v5"

type SMSSender interface {
	SendOTP(ctx context.Context, cfg SMSConfig, phone, code string) error
}

// MSG91 sends OTP messages through the MSG91 v5 API.
type MSG91 struct {
	client *resty.Client
}

func NewMSG91(baseURL string) *MSG91 {
	if baseURL == "" {
		baseURL = defaultMSG91URL
	}
	return &MSG91{client: resty.New().SetBaseURL(baseURL)}
}

func (m *MSG91) SendOTP(ctx context.Context, cfg SMSConfig, phone, code string) error {
	if cfg.AuthKey == "" || cfg.TemplateID == "" {
		return ErrNotConfigured
	}

	var result struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	req := m.client.R().
		SetContext(ctx).
		SetHeader("authkey", cfg.AuthKey).
		SetQueryParams(map[string]string{
			"template_id": cfg.TemplateID,
			"mobile":      msisdn(phone),
			"otp":         code,
		}).
		SetResult(&result).
		SetError(&result)
	if cfg.SenderID != "" {
		req.SetQueryParam("sender", cfg.SenderID)
	}

	resp, err := req.Post("/otp")
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: sms timed out", ErrDeliveryFailed)
		}
		return fmt.Errorf("%w: sms: %v", ErrDeliveryFailed, err)
	}
	if resp.IsError() || strings.EqualFold(result.Type, "error") {
		return fmt.Errorf("%w: sms status %d: %s", ErrDeliveryFailed, resp.StatusCode(), result.Message)
	}
	return nil
}

// msisdn strips formatting and assumes India for bare 10 digit numbers.
func msisdn(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 10 {
		return "91" + digits
	}
	return digits
}
