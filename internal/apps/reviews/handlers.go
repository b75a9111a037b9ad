package reviews

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ermradulsharma/pahadigo-sub000/internal/handlers"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrReviewNotFound):
		err = fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotReviewable), errors.Is(err, ErrAlreadyReviewed):
		err = fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return handlers.RespondError(c, err)
}

func (h *Handler) Create(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return fail(c, err)
	}
	var req CreateRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		return fail(c, err)
	}
	review, err := h.svc.Create(c.UserContext(), userID, &req)
	if err != nil {
		return fail(c, err)
	}
	return handlers.RespondCreated(c, "Review submitted", review)
}

func (h *Handler) ForItem(c *fiber.Ctx) error {
	itemID, err := handlers.ParamUUID(c, "itemId")
	if err != nil {
		return fail(c, err)
	}
	out, err := h.svc.ForItem(c.UserContext(), itemID, handlers.PageQuery(c))
	if err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "", out)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := handlers.ParamUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.svc.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "Review removed", nil)
}
