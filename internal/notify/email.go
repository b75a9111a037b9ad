package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type EmailSender interface {
	SendEmail(ctx context.Context, cfg EmailConfig, to, subject, body string) error
}

// Mailer sends through SendGrid when an API key is configured and falls back
// to plain SMTP otherwise.
type Mailer struct {
	sendGridHost string
}

func NewMailer() *Mailer {
	return &Mailer{sendGridHost: "https://api.sendgrid.com"}
}

func (m *Mailer) SendEmail(ctx context.Context, cfg EmailConfig, to, subject, body string) error {
	switch {
	case cfg.SendGridAPIKey != "":
		return m.sendGrid(ctx, cfg, to, subject, body)
	case cfg.SMTPHost != "":
		return sendSMTP(ctx, cfg, to, subject, body)
	}
	return ErrNotConfigured
}

func (m *Mailer) sendGrid(ctx context.Context, cfg EmailConfig, to, subject, body string) error {
	from := mail.NewEmail("", cfg.From)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), body, "")

	req := sendgrid.GetRequest(cfg.SendGridAPIKey, "/v3/mail/send", m.sendGridHost)
	req.Method = "POST"
	req.Body = mail.GetRequestBody(message)

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: sendgrid: %v", ErrDeliveryFailed, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: sendgrid status %d", ErrDeliveryFailed, resp.StatusCode)
	}
	return nil
}

func sendSMTP(ctx context.Context, cfg EmailConfig, to, subject, body string) error {
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}
	addr := net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(port))

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: dial smtp: %v", ErrDeliveryFailed, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(30 * time.Second))
	}

	client, err := smtp.NewClient(conn, cfg.SMTPHost)
	if err != nil {
		conn.Close()
		return fmt.Errorf("%w: smtp handshake: %v", ErrDeliveryFailed, err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: cfg.SMTPHost}); err != nil {
			return fmt.Errorf("%w: starttls: %v", ErrDeliveryFailed, err)
		}
	}
	if cfg.SMTPUser != "" {
		auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("%w: smtp auth: %v", ErrDeliveryFailed, err)
		}
	}

	from := cfg.From
	if from == "" {
		from = cfg.SMTPUser
	}
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	if _, err := w.Write(buildMessage(from, to, subject, body)); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return client.Quit()
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + strings.ReplaceAll(subject, "\r\n", " ") + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
