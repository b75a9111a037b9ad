package marketing

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ermradulsharma/pahadigo-sub000/internal/apps"
	"github.com/ermradulsharma/pahadigo-sub000/internal/services"
)

// Plugin serves home-screen banners and booking coupons. Its Service is
// also the booking flow's coupon redeemer.
type Plugin struct {
	svc *Service
}

func New(db *gorm.DB, auditLog services.ActionLogger) *Plugin {
	return &Plugin{svc: NewService(db, auditLog)}
}

// Coupons exposes the redeemer used when bookings are created.
func (p *Plugin) Coupons() *Service { return p.svc }

func (p *Plugin) ID() string { return "marketing" }

func (p *Plugin) Models() []interface{} {
	return []interface{}{&Banner{}, &Coupon{}}
}

func (p *Plugin) RegisterRoutes(r apps.Routes) {
	h := NewHandler(p.svc)
	r.Public.Get("/banners", h.Banners)
	r.Public.Post("/coupons/validate", r.Auth, h.ValidateCoupon)
}

func (p *Plugin) RegisterAdminRoutes(router fiber.Router) {
	h := NewHandler(p.svc)
	router.Get("/marketing/banners", h.AdminBanners)
	router.Post("/marketing/banners", h.SaveBanner)
	router.Put("/marketing/banners/:id", h.SaveBanner)
	router.Delete("/marketing/banners/:id", h.DeleteBanner)
	router.Get("/marketing/coupons", h.Coupons)
	router.Post("/marketing/coupons", h.SaveCoupon)
	router.Put("/marketing/coupons/:id", h.SaveCoupon)
	router.Delete("/marketing/coupons/:id", h.DeleteCoupon)
}
