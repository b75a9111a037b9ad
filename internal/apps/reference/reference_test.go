package reference

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ermradulsharma/pahadigo-sub000/internal/handlers"
	"github.com/ermradulsharma/pahadigo-sub000/internal/kyc"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"River Rafting":        "river-rafting",
		"  Bungee   Jumping! ": "bungee-jumping",
		"Camping & Glamping":   "camping-glamping",
		"4x4 Off-Road":         "4x4-off-road",
		"Chār Dhām":            "chār-dhām",
		"---":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestServiceRejectsBeforeQuery(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	_, err := svc.SaveCategory(ctx, nil, &CategoryRequest{Name: "!!!"})
	assert.ErrorIs(t, err, ErrInvalidSlug)

	_, err = svc.SetDocumentRule(ctx, uuid.New(), &CategoryDocumentRequest{Slot: "passportPhoto"})
	assert.ErrorIs(t, err, kyc.ErrUnknownSlot)

	_, err = svc.SaveState(ctx, nil, &StateRequest{CountryID: "nope", Name: "Uttarakhand"})
	assert.ErrorIs(t, err, ErrCountryNotFound)
}

func TestAdminHandlers_StatusCodes(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	New(nil).RegisterAdminRoutes(app.Group("/admin"))

	cases := []struct {
		method, path, body string
		want               int
	}{
		{fiber.MethodPost, "/admin/reference/categories", `{"name":"***"}`, fiber.StatusUnprocessableEntity},
		{fiber.MethodPut, "/admin/reference/categories/" + uuid.NewString() + "/documents", `{"slot":"selfie"}`, fiber.StatusUnprocessableEntity},
		{fiber.MethodPost, "/admin/reference/countries", `{"name":"India","isoCode":"I"}`, fiber.StatusUnprocessableEntity},
		{fiber.MethodDelete, "/admin/reference/states/123", "", fiber.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, tc.want, resp.StatusCode, tc.path)
	}
}
