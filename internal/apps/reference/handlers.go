package reference

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

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
	case errors.Is(err, ErrCountryNotFound), errors.Is(err, ErrStateNotFound),
		errors.Is(err, ErrCategoryNotFound), errors.Is(err, ErrRuleNotFound):
		err = fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrExists):
		err = fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidSlug):
		err = fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	return handlers.RespondError(c, err)
}

// optionalID returns nil for create routes that carry no :id.
func optionalID(c *fiber.Ctx) (*uuid.UUID, error) {
	if c.Params("id") == "" {
		return nil, nil
	}
	id, err := handlers.ParamUUID(c, "id")
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (h *Handler) Countries(c *fiber.Ctx) error {
	list, err := h.svc.Countries(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "", list)
}

func (h *Handler) States(c *fiber.Ctx) error {
	countryID, err := handlers.ParamUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	list, err := h.svc.States(c.UserContext(), countryID)
	if err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "", list)
}

func (h *Handler) Categories(c *fiber.Ctx) error {
	list, err := h.svc.Categories(c.UserContext(), false)
	if err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "", list)
}

func (h *Handler) AllCategories(c *fiber.Ctx) error {
	list, err := h.svc.Categories(c.UserContext(), true)
	if err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "", list)
}

func (h *Handler) SaveCountry(c *fiber.Ctx) error {
	id, err := optionalID(c)
	if err != nil {
		return fail(c, err)
	}
	var req CountryRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		return fail(c, err)
	}
	country, err := h.svc.SaveCountry(c.UserContext(), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "Country saved", country)
}

func (h *Handler) DeleteCountry(c *fiber.Ctx) error {
	id, err := handlers.ParamUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.svc.DeleteCountry(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "Country deleted", nil)
}

func (h *Handler) SaveState(c *fiber.Ctx) error {
	id, err := optionalID(c)
	if err != nil {
		return fail(c, err)
	}
	var req StateRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		return fail(c, err)
	}
	st, err := h.svc.SaveState(c.UserContext(), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "State saved", st)
}

func (h *Handler) DeleteState(c *fiber.Ctx) error {
	id, err := handlers.ParamUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.svc.DeleteState(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "State deleted", nil)
}

func (h *Handler) SaveCategory(c *fiber.Ctx) error {
	id, err := optionalID(c)
	if err != nil {
		return fail(c, err)
	}
	var req CategoryRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		return fail(c, err)
	}
	cat, err := h.svc.SaveCategory(c.UserContext(), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "Category saved", cat)
}

func (h *Handler) DeleteCategory(c *fiber.Ctx) error {
	id, err := handlers.ParamUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.svc.DeleteCategory(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "Category deleted", nil)
}

func (h *Handler) SetDocumentRule(c *fiber.Ctx) error {
	id, err := handlers.ParamUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req CategoryDocumentRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		return fail(c, err)
	}
	rule, err := h.svc.SetDocumentRule(c.UserContext(), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "Document rule saved", rule)
}

func (h *Handler) RemoveDocumentRule(c *fiber.Ctx) error {
	id, err := handlers.ParamUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.svc.RemoveDocumentRule(c.UserContext(), id, c.Params("slot")); err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "Document rule removed", nil)
}
