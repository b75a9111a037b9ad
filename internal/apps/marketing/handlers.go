package marketing

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ermradulsharma/pahadigo-sub000/internal/handlers"
	"github.com/ermradulsharma/pahadigo-sub000/internal/middleware"
)

type BannerRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Subtitle string `json:"subtitle" validate:"max=300"`
	ImageURL string `json:"imageUrl" validate:"required,url,max=500"`
	LinkURL  string `json:"linkUrl" validate:"omitempty,max=500"`
	Position int    `json:"position" validate:"min=0"`
	IsActive *bool  `json:"isActive"`
}

type CouponRequest struct {
	Code             string     `json:"code" validate:"required,min=3,max=40,alphanum"`
	Description      string     `json:"description" validate:"max=300"`
	DiscountType     string     `json:"discountType" validate:"required,oneof=percent flat"`
	DiscountValue    float64    `json:"discountValue" validate:"required,gt=0"`
	MaxDiscount      float64    `json:"maxDiscount" validate:"gte=0"`
	MinBookingAmount float64    `json:"minBookingAmount" validate:"gte=0"`
	MaxUses          int        `json:"maxUses" validate:"gte=0"`
	ValidFrom        *time.Time `json:"validFrom"`
	ValidUntil       *time.Time `json:"validUntil"`
	IsActive         *bool      `json:"isActive"`
}

type ValidateCouponRequest struct {
	Code   string  `json:"code" validate:"required,max=40"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

type CouponQuote struct {
	Code     string  `json:"code"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrBannerNotFound), errors.Is(err, ErrCouponNotFound):
		err = fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrCouponExists):
		err = fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return handlers.RespondError(c, err)
}

func (h *Handler) Banners(c *fiber.Ctx) error {
	banners, err := h.svc.ActiveBanners(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "", banners)
}

func (h *Handler) ValidateCoupon(c *fiber.Ctx) error {
	var req ValidateCouponRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		return fail(c, err)
	}
	quote, err := h.svc.Quote(c.UserContext(), req.Code, req.Amount)
	if err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "Coupon applied", quote)
}

func (h *Handler) AdminBanners(c *fiber.Ctx) error {
	banners, err := h.svc.AllBanners(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "", banners)
}

func (h *Handler) SaveBanner(c *fiber.Ctx) error {
	var id *uuid.UUID
	if c.Params("id") != "" {
		parsed, err := handlers.ParamUUID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		id = &parsed
	}
	var req BannerRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		return fail(c, err)
	}
	b, err := h.svc.SaveBanner(c.UserContext(), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "Banner saved", b)
}

func (h *Handler) DeleteBanner(c *fiber.Ctx) error {
	id, err := handlers.ParamUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.svc.DeleteBanner(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "Banner deleted", nil)
}

func (h *Handler) Coupons(c *fiber.Ctx) error {
	coupons, err := h.svc.Coupons(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "", coupons)
}

func (h *Handler) SaveCoupon(c *fiber.Ctx) error {
	var id *uuid.UUID
	if c.Params("id") != "" {
		parsed, err := handlers.ParamUUID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		id = &parsed
	}
	var req CouponRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		return fail(c, err)
	}
	coupon, err := h.svc.SaveCoupon(c.UserContext(), middleware.Actor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "Coupon saved", coupon)
}

func (h *Handler) DeleteCoupon(c *fiber.Ctx) error {
	id, err := handlers.ParamUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.svc.DeleteCoupon(c.UserContext(), middleware.Actor(c), id); err != nil {
		return fail(c, err)
	}
	return handlers.RespondOK(c, "Coupon deleted", nil)
}
