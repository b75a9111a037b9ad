// Package notify delivers transactional email and SMS.
package notify

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotConfigured  = errors.New("notification channel is not configured")
	ErrDeliveryFailed = errors.New("notification delivery failed")
)

type EmailConfig struct {
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPassword   string
	From           string
	SendGridAPIKey string
}

type SMSConfig struct {
	AuthKey    string
	SenderID   string
	TemplateID string
}

// ConfigSource supplies provider credentials at call time.
type ConfigSource interface {
	EmailConfig(ctx context.Context) (EmailConfig, error)
	SMSConfig(ctx context.Context) (SMSConfig, error)
}

// IsEmail reports whether an identifier should be reached by email.
func IsEmail(identifier string) bool {
	return strings.Contains(identifier, "@")
}
