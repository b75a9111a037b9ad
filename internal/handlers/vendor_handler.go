package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ermradulsharma/pahadigo-sub000/internal/dto"
	"github.com/ermradulsharma/pahadigo-sub000/internal/services"
)

type VendorHandler struct {
	vendorService  *services.VendorService
	catalogService *services.CatalogService
	bookingService *services.BookingService
}

func NewVendorHandler(vendorService *services.VendorService, catalogService *services.CatalogService, bookingService *services.BookingService) *VendorHandler {
	return &VendorHandler{
		vendorService:  vendorService,
		catalogService: catalogService,
		bookingService: bookingService,
	}
}

func (h *VendorHandler) Profile(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return RespondError(c, err)
	}
	resp, err := h.vendorService.Profile(c.UserContext(), userID)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "", resp)
}

// SaveProfile accepts JSON, or multipart with either a JSON "data" field or
// plain form fields plus an optional profileImage file.
func (h *VendorHandler) SaveProfile(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return RespondError(c, err)
	}

	var req dto.VendorProfileRequest
	var image *services.Upload
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return RespondError(c, errBadBody)
		}
		if err := decodeFormJSON(form, &req, "categories"); err != nil {
			return RespondError(c, err)
		}
		if files := form.File["profileImage"]; len(files) > 0 {
			u, err := readUpload("profileImage", files[0])
			if err != nil {
				return RespondError(c, err)
			}
			image = &u
		}
		if err := check(&req); err != nil {
			return RespondError(c, err)
		}
	} else if err := BindJSON(c, &req); err != nil {
		return RespondError(c, err)
	}

	resp, err := h.vendorService.UpsertProfile(c.UserContext(), userID, &req, image)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "Profile saved", resp)
}

func (h *VendorHandler) UploadDocuments(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return RespondError(c, err)
	}
	if !isMultipart(c) {
		return RespondError(c, services.ErrNoFiles)
	}
	form, err := c.MultipartForm()
	if err != nil {
		return RespondError(c, errBadBody)
	}
	uploads, err := formUploads(form)
	if err != nil {
		return RespondError(c, err)
	}

	resp, err := h.vendorService.UploadDocuments(c.UserContext(), userID, uploads)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "Documents uploaded", resp)
}

func (h *VendorHandler) Status(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return RespondError(c, err)
	}
	resp, err := h.vendorService.Profile(c.UserContext(), userID)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "", resp.Status)
}

func (h *VendorHandler) Catalog(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return RespondError(c, err)
	}
	resp, err := h.catalogService.VendorView(c.UserContext(), userID)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "", resp)
}

func (h *VendorHandler) AddItem(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return RespondError(c, err)
	}
	var req dto.AddItemRequest
	if err := BindJSON(c, &req); err != nil {
		return RespondError(c, err)
	}
	resp, err := h.catalogService.AddItem(c.UserContext(), userID, &req)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondCreated(c, "Item added", resp)
}

func (h *VendorHandler) UpdateItem(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return RespondError(c, err)
	}
	var req dto.UpdateItemRequest
	if err := BindJSON(c, &req); err != nil {
		return RespondError(c, err)
	}
	resp, err := h.catalogService.UpdateItem(c.UserContext(), userID, &req)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "Item updated", resp)
}

func (h *VendorHandler) DeleteItem(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return RespondError(c, err)
	}
	var req dto.DeleteItemRequest
	if err := BindJSON(c, &req); err != nil {
		return RespondError(c, err)
	}
	resp, err := h.catalogService.RemoveItem(c.UserContext(), userID, &req)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "Item removed", resp)
}

func (h *VendorHandler) ToggleItem(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return RespondError(c, err)
	}
	var req dto.ToggleItemRequest
	if err := BindJSON(c, &req); err != nil {
		return RespondError(c, err)
	}
	resp, err := h.catalogService.ToggleItem(c.UserContext(), userID, &req)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "Item status updated", resp)
}

func (h *VendorHandler) ToggleCategory(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return RespondError(c, err)
	}
	var req dto.ToggleCategoryRequest
	if err := BindJSON(c, &req); err != nil {
		return RespondError(c, err)
	}
	resp, err := h.catalogService.ToggleCategory(c.UserContext(), userID, &req)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "Category status updated", resp)
}

func (h *VendorHandler) Bookings(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return RespondError(c, err)
	}
	page, err := h.bookingService.ListForVendor(c.UserContext(), userID, bookingFilter(c))
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "", page)
}
