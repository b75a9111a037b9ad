package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// OTPDispatcher routes a one-time code to email or SMS based on the
// identifier's shape.
type OTPDispatcher struct {
	source ConfigSource
	email  EmailSender
	sms    SMSSender
	// logFallback writes the code to the log when no provider is configured.
	logFallback bool
}

func NewOTPDispatcher(source ConfigSource, email EmailSender, sms SMSSender, logFallback bool) *OTPDispatcher {
	return &OTPDispatcher{source: source, email: email, sms: sms, logFallback: logFallback}
}

func (d *OTPDispatcher) Dispatch(ctx context.Context, identifier, code string) error {
	var err error
	if IsEmail(identifier) {
		err = d.sendEmail(ctx, identifier, code)
	} else {
		err = d.sendSMS(ctx, identifier, code)
	}

	if errors.Is(err, ErrNotConfigured) && d.logFallback {
		slog.Warn("otp provider not configured, code logged instead", "identifier", identifier, "code", code, "action", "otp_fallback")
		return nil
	}
	return err
}

func (d *OTPDispatcher) sendEmail(ctx context.Context, to, code string) error {
	cfg, err := d.source.EmailConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load email settings: %w", err)
	}
	body := fmt.Sprintf("Your PahadiGo verification code is %s. It expires in 5 minutes.\n\nIf you did not request this code you can ignore this email.", code)
	return d.email.SendEmail(ctx, cfg, to, "Your PahadiGo verification code", body)
}

func (d *OTPDispatcher) sendSMS(ctx context.Context, phone, code string) error {
	cfg, err := d.source.SMSConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sms settings: %w", err)
	}
	return d.sms.SendOTP(ctx, cfg, phone, code)
}
