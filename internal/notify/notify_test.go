package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	email EmailConfig
	sms   SMSConfig
}

func (s staticSource) EmailConfig(context.Context) (EmailConfig, error) { return s.email, nil }
func (s staticSource) SMSConfig(context.Context) (SMSConfig, error) { return s.sms, nil }

type captureEmail struct {
	to, body string
	err      error
}

func (c *captureEmail) SendEmail(_ context.Context, _ EmailConfig, to, _, body string) error {
	c.to, c.body = to, body
	return c.err
}

type captureSMS struct {
	phone, code string
	err         error
}

func (c *captureSMS) SendOTP(_ context.Context, _ SMSConfig, phone, code string) error {
	c.phone, c.code = phone, code
	return c.err
}

func TestOTPDispatcher_RoutesByIdentifierShape(t *testing.T) {
	email, sms := &captureEmail{}, &captureSMS{}
	d := NewOTPDispatcher(staticSource{}, email, sms, false)

	require.NoError(t, d.Dispatch(context.Background(), "asha@example.com", "123456"))
	assert.Equal(t, "asha@example.com", email.to)
	assert.Contains(t, email.body, "123456")
	assert.Empty(t, sms.phone)

	require.NoError(t, d.Dispatch(context.Background(), "+91 98765 43210", "654321"))
	assert.Equal(t, "+91 98765 43210", sms.phone)
	assert.Equal(t, "654321", sms.code)
}

func TestOTPDispatcher_Fallback(t *testing.T) {
	sms := &captureSMS{err: ErrNotConfigured}

	strict := NewOTPDispatcher(staticSource{}, &captureEmail{}, sms, false)
	assert.ErrorIs(t, strict.Dispatch(context.Background(), "9876543210", "111111"), ErrNotConfigured)

	lenient := NewOTPDispatcher(staticSource{}, &captureEmail{}, sms, true)
	assert.NoError(t, lenient.Dispatch(context.Background(), "9876543210", "111111"))

	sms.err = ErrDeliveryFailed
	assert.ErrorIs(t, lenient.Dispatch(context.Background(), "9876543210", "111111"), ErrDeliveryFailed,
		"only a missing provider is masked, real failures still surface")
}

func TestMailer_NotConfigured(t *testing.T) {
	err := NewMailer().SendEmail(context.Background(), EmailConfig{}, "a@b.c", "s", "b")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestMSG91_SendOTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/otp", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("authkey"))
		assert.Equal(t, "919876543210", r.URL.Query().Get("mobile"))
		assert.Equal(t, "246810", r.URL.Query().Get("otp"))
		assert.Equal(t, "tpl", r.URL.Query().Get("template_id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type":"success","request_id":"x"}`))
	}))
	defer srv.Close()

	err := NewMSG91(srv.URL).SendOTP(context.Background(), SMSConfig{AuthKey: "key-1", TemplateID: "tpl"}, "98765-43210", "246810")
	assert.NoError(t, err)
}

func TestMSG91_ErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type":"error","message":"invalid template"}`))
	}))
	defer srv.Close()

	err := NewMSG91(srv.URL).SendOTP(context.Background(), SMSConfig{AuthKey: "k", TemplateID: "t"}, "9876543210", "1")
	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Contains(t, err.Error(), "invalid template")
}

func TestMSG91_NotConfigured(t *testing.T) {
	err := NewMSG91("").SendOTP(context.Background(), SMSConfig{}, "9876543210", "1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestMsisdn(t *testing.T) {
	assert.Equal(t, "919876543210", msisdn("98765 43210"))
	assert.Equal(t, "919876543210", msisdn("+91-98765-43210"))
	assert.Equal(t, "14155550100", msisdn("+1 415 555 0100"))
}

func TestBuildMessage_StripsHeaderInjection(t *testing.T) {
	msg := string(buildMessage("a@x", "b@y", "hi\r\nBcc: evil@z", "body"))
	assert.Contains(t, msg, "Subject: hi Bcc: evil@z\r\n")
}
