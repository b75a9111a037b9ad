package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ermradulsharma/pahadigo-sub000/internal/audit"
	"github.com/ermradulsharma/pahadigo-sub000/internal/catalog"
	"github.com/ermradulsharma/pahadigo-sub000/internal/dto"
	"github.com/ermradulsharma/pahadigo-sub000/internal/gateway"
	"github.com/ermradulsharma/pahadigo-sub000/internal/kyc"
	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
	"github.com/ermradulsharma/pahadigo-sub000/internal/otp"
	"github.com/ermradulsharma/pahadigo-sub000/internal/repository"
	"github.com/ermradulsharma/pahadigo-sub000/internal/services"
)

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, headers ...string) (int, dto.Response) {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	var out dto.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{errBadBody, fiber.StatusBadRequest},
		{otp.ErrInvalidOTP, fiber.StatusBadRequest},
		{services.ErrInvalidSignature, fiber.StatusBadRequest},
		{services.ErrInvalidToken, fiber.StatusUnauthorized},
		{services.ErrAccountDeleted, fiber.StatusForbidden},
		{catalog.ErrItemNotFound, fiber.StatusNotFound},
		{kyc.ErrDocumentNotFound, fiber.StatusNotFound},
		{kyc.ErrInvalidTransition, fiber.StatusConflict},
		{services.ErrAlreadyRefunded, fiber.StatusConflict},
		{fmt.Errorf("%w: x", kyc.ErrSingularSlot), fiber.StatusUnprocessableEntity},
		{&services.MissingDocumentsError{Slots: []kyc.Slot{kyc.PanCard}}, fiber.StatusUnprocessableEntity},
		{&services.RejectedContentError{Reason: services.ReasonSpam}, fiber.StatusUnprocessableEntity},
		{otp.ErrOTPThrottled, fiber.StatusTooManyRequests},
		{fmt.Errorf("create order: %w", gateway.ErrProviderFailure), fiber.StatusBadGateway},
		{gateway.ErrProviderTimeout, fiber.StatusGatewayTimeout},
		{services.ErrNotConfigured, fiber.StatusServiceUnavailable},
		{fiber.ErrMethodNotAllowed, fiber.StatusMethodNotAllowed},
		{errors.New("db exploded"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestRespondError_Envelope(t *testing.T) {
	app := newApp()
	app.Get("/missing", func(c *fiber.Ctx) error {
		return RespondError(c, &services.MissingDocumentsError{Slots: []kyc.Slot{kyc.PanCard, kyc.GSTRegistration}})
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return RespondError(c, errors.New("pq: connection refused at 10.0.0.5"))
	})
	app.Get("/gateway", func(c *fiber.Ctx) error {
		return RespondError(c, fmt.Errorf("%w: %v", services.ErrProviderFailure, errors.New("razorpay: BAD_REQUEST_ERROR key rzp_live_abc")))
	})

	status, body := doJSON(t, app, fiber.MethodGet, "/missing", nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.False(t, body.Success)
	assert.Equal(t, map[string]any{"missingDocuments": []any{"panCard", "gstRegistration"}}, body.Data)

	status, body = doJSON(t, app, fiber.MethodGet, "/boom", nil)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Internal server error", body.Message)

	status, body = doJSON(t, app, fiber.MethodGet, "/gateway", nil)
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, services.ErrProviderFailure.Error(), body.Message)
	assert.NotContains(t, body.Message, "rzp_live")

	status, body = doJSON(t, app, fiber.MethodGet, "/nowhere", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.False(t, body.Success)
}

func TestBindJSON_Validation(t *testing.T) {
	app := newApp()
	app.Post("/otp", func(c *fiber.Ctx) error {
		var req dto.OTPRequest
		if err := BindJSON(c, &req); err != nil {
			return RespondError(c, err)
		}
		return RespondOK(c, "ok", nil)
	})

	status, body := doJSON(t, app, fiber.MethodPost, "/otp", `{"identifier":`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, body.Success)

	status, body = doJSON(t, app, fiber.MethodPost, "/otp", map[string]string{"identifier": "a@b.co", "role": "admin"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "must be one of: vendor traveller", body.Data.(map[string]any)["role"])

	status, body = doJSON(t, app, fiber.MethodPost, "/otp", map[string]string{"role": "vendor"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, body.Data.(map[string]any), "identifier")

	status, body = doJSON(t, app, fiber.MethodPost, "/otp", map[string]string{"email": "a@b.co", "role": "vendor"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, body.Success)
}

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: refused") }

	app := newApp()
	app.Get("/ok", NewHealthHandler(ok, ok).Check)
	app.Get("/down", NewHealthHandler(ok, down).Check)

	status, body := doJSON(t, app, fiber.MethodGet, "/ok", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body.Data.(map[string]any)["redis"])

	status, body = doJSON(t, app, fiber.MethodGet, "/down", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "degraded", body.Data.(map[string]any)["status"])
}

type memPolicies map[string]models.Policy

func (m memPolicies) Find(_ context.Context, target, kind string) (*models.Policy, error) {
	p, ok := m[target+"/"+kind]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}
func (m memPolicies) List(context.Context, string) ([]models.Policy, error) { return nil, nil }
func (m memPolicies) Upsert(_ context.Context, p *models.Policy) error {
	m[p.Target+"/"+p.Type] = *p
	return nil
}
func (m memPolicies) Delete(context.Context, string, string) error { return nil }

type nopAudit struct{}

func (nopAudit) LogAction(audit.Actor, string, string, string, map[string]any) {}

func TestPolicyPage(t *testing.T) {
	repo := memPolicies{"all/privacy": {
		Target: "all", Type: "privacy", Title: "Privacy Policy",
		Content:   "We collect <b>phone</b> numbers.\n\nWe never sell data.",
		UpdatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}}
	h := NewPolicyHandler(services.NewPolicyService(repo, nopAudit{}))
	app := newApp()
	app.Get("/api/policies/:target/:type", h.Get)
	app.Get("/api/legal/:target/:type", h.Page)

	status, body := doJSON(t, app, fiber.MethodGet, "/api/policies/vendor/privacy", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Privacy Policy", body.Data.(map[string]any)["title"])

	status, _ = doJSON(t, app, fiber.MethodGet, "/api/policies/vendor/cookies", nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/legal/traveller/privacy", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	html, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(html), "<p>We never sell data.</p>")
	assert.Contains(t, string(html), "&lt;b&gt;phone&lt;/b&gt;")
	assert.Contains(t, string(html), "March 1, 2026")

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/api/legal/traveller/terms", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

type staticRazorpay gateway.Credentials

func (s staticRazorpay) Razorpay(context.Context) (gateway.Credentials, error) {
	return gateway.Credentials(s), nil
}

func TestRazorpayWebhook_RejectsBadSignature(t *testing.T) {
	svc := services.NewBookingService(services.BookingDeps{
		Credentials: staticRazorpay{KeyID: "rzp_test", KeySecret: "s", WebhookSecret: "whsec"},
	})
	app := newApp()
	app.Post("/api/webhooks/razorpay", NewBookingHandler(svc).RazorpayWebhook)

	payload := `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1"}}}}`

	status, body := doJSON(t, app, fiber.MethodPost, "/api/webhooks/razorpay", payload)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, body.Success)

	status, _ = doJSON(t, app, fiber.MethodPost, "/api/webhooks/razorpay", payload, "X-Razorpay-Signature", strings.Repeat("0", 64))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, data := range files {
		fw, err := w.CreateFormFile(name, name+".pdf")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestDecodeFormJSON(t *testing.T) {
	app := newApp()
	app.Post("/profile", func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return RespondError(c, errBadBody)
		}
		var req dto.VendorProfileRequest
		if err := decodeFormJSON(form, &req, "categories"); err != nil {
			return RespondError(c, err)
		}
		if err := check(&req); err != nil {
			return RespondError(c, err)
		}
		return RespondOK(c, "", req)
	})

	post := func(fields map[string]string) (int, dto.Response) {
		body, ctype := multipartBody(t, fields, nil)
		req := httptest.NewRequest(fiber.MethodPost, "/profile", body)
		req.Header.Set(fiber.HeaderContentType, ctype)
		resp, err := app.Test(req)
		require.NoError(t, err)
		var out dto.Response
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return resp.StatusCode, out
	}

	status, body := post(map[string]string{
		"businessName": "Ganga Rafters",
		"categories":   "River Rafting, Camping",
		"address":      `{"city":"Rishikesh"}`,
	})
	require.Equal(t, fiber.StatusOK, status)
	data := body.Data.(map[string]any)
	assert.Equal(t, "Ganga Rafters", data["businessName"])
	assert.Equal(t, []any{"River Rafting", "Camping"}, data["categories"])
	assert.Equal(t, "Rishikesh", data["address"].(map[string]any)["city"])

	status, body = post(map[string]string{"data": `{"businessName":"Ganga Rafters","categories":["Trekking"]}`})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []any{"Trekking"}, body.Data.(map[string]any)["categories"])

	status, _ = post(map[string]string{"data": `{"businessName":`})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = post(map[string]string{"contactEmail": "not-an-email"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, body.Data.(map[string]any), "contactEmail")
}

func withUser(id uuid.UUID) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"sub": id.String(), "role": models.RoleVendor}})
		return c.Next()
	}
}

func TestUploadDocuments_UnknownSlot(t *testing.T) {
	userID := uuid.New()
	svc := services.NewVendorService(nil, nil, nopAudit{}, nil, false)
	h := NewVendorHandler(svc, nil, nil)

	app := newApp()
	app.Post("/api/vendor/document/upload", withUser(userID), h.UploadDocuments)

	body, ctype := multipartBody(t, nil, map[string][]byte{"passport": []byte("%PDF-1.4")})
	req := httptest.NewRequest(fiber.MethodPost, "/api/vendor/document/upload", body)
	req.Header.Set(fiber.HeaderContentType, ctype)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	status, out := doJSON(t, app, fiber.MethodPost, "/api/vendor/document/upload", `{}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, services.ErrNoFiles.Error(), out.Message)
}
