package inquiries

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ermradulsharma/pahadigo-sub000/internal/handlers"
	"github.com/ermradulsharma/pahadigo-sub000/internal/middleware"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func fail(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrInquiryNotFound) {
		err = fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return handlers.RespondError(c, err)
}

// Create accepts a contact-form message. Signed-in travellers have the
// inquiry linked to their account.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		return fail(c, err)
	}
	var userID *uuid.UUID
	if id, err := middleware.UserID(c); err == nil {
		userID = &id
	}
	inq, err := h.svc.Create(c.UserContext(), userID, &req)
	if err != nil {
		return fail(c, err)
	}
	return handlers.RespondCreated(c, "Thanks, we will get back to you soon", inq)
}

func (h *Handler) List(c *fiber.Ctx) error {
	status := c.Query("status")
	switch status {
	case "", StatusPending, StatusReviewed, StatusResolved:
	default:
		return fail(c, fiber.NewError(fiber.StatusUnprocessableEntity, "status must be one of: pending reviewed resolved"))
	}
	page, err := h.svc.List(c.UserContext(), status, handlers.PageQuery(c))
	if err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "", page)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := handlers.ParamUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req UpdateRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		return fail(c, err)
	}
	inq, err := h.svc.Update(c.UserContext(), middleware.Actor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "Inquiry updated", inq)
}
