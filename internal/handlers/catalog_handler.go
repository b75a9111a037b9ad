package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ermradulsharma/pahadigo-sub000/internal/repository"
	"github.com/ermradulsharma/pahadigo-sub000/internal/services"
)

// CatalogHandler serves the public package listing.
type CatalogHandler struct {
	catalogService *services.CatalogService
}

func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) Browse(c *fiber.Ctx) error {
	f := repository.PublicItemFilter{
		Category: c.Query("category"),
		Search:   c.Query("q"),
		Page:     PageQuery(c),
	}
	if v := c.Query("vendorId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return RespondError(c, &validationError{fields: map[string]string{"vendorId": "must be a valid id"}})
		}
		f.VendorID = &id
	}
	page, err := h.catalogService.Browse(c.UserContext(), f)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "", page)
}

func (h *CatalogHandler) Item(c *fiber.Ctx) error {
	id, err := ParamUUID(c, "itemId")
	if err != nil {
		return RespondError(c, err)
	}
	item, err := h.catalogService.PublicItem(c.UserContext(), id)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "", item)
}
