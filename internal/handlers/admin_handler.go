package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ermradulsharma/pahadigo-sub000/internal/audit"
	"github.com/ermradulsharma/pahadigo-sub000/internal/dto"
	"github.com/ermradulsharma/pahadigo-sub000/internal/middleware"
	"github.com/ermradulsharma/pahadigo-sub000/internal/repository"
	"github.com/ermradulsharma/pahadigo-sub000/internal/services"
)

type AdminHandler struct {
	adminService    *services.AdminService
	userService     *services.UserService
	vendorService   *services.VendorService
	bookingService  *services.BookingService
	settingsService *services.SettingsService
	policyService   *services.PolicyService
}

type AdminDeps struct {
	Admin    *services.AdminService
	Users    *services.UserService
	Vendors  *services.VendorService
	Bookings *services.BookingService
	Settings *services.SettingsService
	Policies *services.PolicyService
}

func NewAdminHandler(deps AdminDeps) *AdminHandler {
	return &AdminHandler{
		adminService:    deps.Admin,
		userService:     deps.Users,
		vendorService:   deps.Vendors,
		bookingService:  deps.Bookings,
		settingsService: deps.Settings,
		policyService:   deps.Policies,
	}
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.adminService.Stats(c.UserContext())
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "", stats)
}

func (h *AdminHandler) Analytics(c *fiber.Ctx) error {
	resp, err := h.adminService.Analytics(c.UserContext(), c.QueryInt("months", 0))
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "", resp)
}

func (h *AdminHandler) AuditLogs(c *fiber.Ctx) error {
	p := PageQuery(c)
	page, err := h.adminService.AuditLogs(c.UserContext(), audit.Filter{
		Action:     c.Query("action"),
		TargetType: c.Query("targetType"),
		TargetID:   c.Query("targetId"),
		Page:       p.Page,
		Limit:      p.Limit,
	})
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "", page)
}

func (h *AdminHandler) Users(c *fiber.Ctx) error {
	page, err := h.userService.List(c.UserContext(), repository.UserFilter{
		Role:   c.Query("role"),
		Search: c.Query("q"),
		Page:   PageQuery(c),
	})
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "", page)
}

func (h *AdminHandler) Vendors(c *fiber.Ctx) error {
	f := repository.VendorFilter{Search: c.Query("q"), Page: PageQuery(c)}
	if v := c.Query("approved"); v != "" {
		approved, err := strconv.ParseBool(v)
		if err != nil {
			return RespondError(c, &validationError{fields: map[string]string{"approved": "must be true or false"}})
		}
		f.Approved = &approved
	}
	page, err := h.vendorService.List(c.UserContext(), f)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "", page)
}

func (h *AdminHandler) Vendor(c *fiber.Ctx) error {
	id, err := ParamUUID(c, "id")
	if err != nil {
		return RespondError(c, err)
	}
	resp, err := h.vendorService.Get(c.UserContext(), id)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "", resp)
}

func (h *AdminHandler) VerifyDocument(c *fiber.Ctx) error {
	var req dto.VerifyDocumentRequest
	if err := BindJSON(c, &req); err != nil {
		return RespondError(c, err)
	}
	v, err := h.vendorService.VerifyDocument(c.UserContext(), middleware.Actor(c), &req)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "Document "+req.Status, v)
}

func (h *AdminHandler) ApproveVendor(c *fiber.Ctx) error {
	var req dto.ApproveVendorRequest
	if err := BindJSON(c, &req); err != nil {
		return RespondError(c, err)
	}
	v, err := h.vendorService.SetApproval(c.UserContext(), middleware.Actor(c), &req)
	if err != nil {
		return RespondError(c, err)
	}
	msg := "Vendor rejected"
	if v.IsApproved {
		msg = "Vendor approved"
	}
	return RespondOK(c, msg, v)
}

func (h *AdminHandler) VerifyBank(c *fiber.Ctx) error {
	var req dto.VerifyBankRequest
	if err := BindJSON(c, &req); err != nil {
		return RespondError(c, err)
	}
	v, err := h.vendorService.VerifyBankDetails(c.UserContext(), middleware.Actor(c), &req)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "Bank details "+req.Status, v)
}

func (h *AdminHandler) Bookings(c *fiber.Ctx) error {
	page, err := h.bookingService.List(c.UserContext(), bookingFilter(c))
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "", page)
}

func (h *AdminHandler) Booking(c *fiber.Ctx) error {
	id, err := ParamUUID(c, "id")
	if err != nil {
		return RespondError(c, err)
	}
	b, err := h.bookingService.Get(c.UserContext(), id)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "", b)
}

func (h *AdminHandler) Payout(c *fiber.Ctx) error {
	var req dto.PayoutRequest
	if err := BindJSON(c, &req); err != nil {
		return RespondError(c, err)
	}
	b, err := h.bookingService.MarkPayout(c.UserContext(), middleware.Actor(c), &req)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "Payout recorded", b)
}

func (h *AdminHandler) Refund(c *fiber.Ctx) error {
	var req dto.RefundRequest
	if err := BindJSON(c, &req); err != nil {
		return RespondError(c, err)
	}
	b, err := h.bookingService.ProcessRefund(c.UserContext(), middleware.Actor(c), &req)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "Refund recorded", b)
}

func (h *AdminHandler) Settings(c *fiber.Ctx) error {
	list, err := h.settingsService.List(c.UserContext())
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "", list)
}

func (h *AdminHandler) SetSetting(c *fiber.Ctx) error {
	var req dto.SettingRequest
	if err := BindJSON(c, &req); err != nil {
		return RespondError(c, err)
	}
	resp, err := h.settingsService.Set(c.UserContext(), middleware.Actor(c), c.Params("key"), &req)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "Setting saved", resp)
}

func (h *AdminHandler) DeleteSetting(c *fiber.Ctx) error {
	if err := h.settingsService.Delete(c.UserContext(), middleware.Actor(c), c.Params("key")); err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "Setting deleted", nil)
}

func (h *AdminHandler) Policies(c *fiber.Ctx) error {
	list, err := h.policyService.List(c.UserContext(), c.Query("target"))
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "", list)
}

func (h *AdminHandler) UpsertPolicy(c *fiber.Ctx) error {
	var req dto.PolicyRequest
	if err := BindJSON(c, &req); err != nil {
		return RespondError(c, err)
	}
	p, err := h.policyService.Upsert(c.UserContext(), middleware.Actor(c), c.Params("target"), c.Params("type"), &req)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "Policy saved", p)
}

func (h *AdminHandler) DeletePolicy(c *fiber.Ctx) error {
	if err := h.policyService.Delete(c.UserContext(), middleware.Actor(c), c.Params("target"), c.Params("type")); err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "Policy deleted", nil)
}
