package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ermradulsharma/pahadigo-sub000/internal/apps"
	"github.com/ermradulsharma/pahadigo-sub000/internal/config"
	"github.com/ermradulsharma/pahadigo-sub000/internal/handlers"
	"github.com/ermradulsharma/pahadigo-sub000/internal/middleware"
	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	User    *handlers.UserHandler
	Vendor  *handlers.VendorHandler
	Catalog *handlers.CatalogHandler
	Booking *handlers.BookingHandler
	Admin   *handlers.AdminHandler
	Policy  *handlers.PolicyHandler
	Health  *handlers.HealthHandler
}

func perIPLimiter(perMinute int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               perMinute,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later")
		},
	})
}

func Setup(
	app *fiber.App,
	cfg *config.Config,
	users middleware.UserLookup,
	h Handlers,
	plugins []apps.Plugin,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(perIPLimiter(60))

	api.Get("/health", h.Health.Check)

	// Policies (public)
	api.Get("/policies/:target/:type", h.Policy.Get)
	api.Get("/legal/:target/:type", h.Policy.Page)

	protected := middleware.JWTProtected(cfg)
	optional := middleware.OptionalJWT(cfg)
	traveller := middleware.RequireRoles(models.RoleTraveller)
	vendor := middleware.RequireRoles(models.RoleVendor)

	// Auth: 10 req/min per IP (stricter)
	auth := api.Group("/auth", perIPLimiter(10))
	auth.Post("/otp", h.Auth.RequestOTP)
	auth.Post("/verify", h.Auth.VerifyOTP)
	auth.Post("/google", h.Auth.Social(models.ProviderGoogle))
	auth.Post("/facebook", h.Auth.Social(models.ProviderFacebook))
	auth.Post("/apple", h.Auth.Social(models.ProviderApple))
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/logout", h.Auth.Logout)
	auth.Post("/admin/login", h.Auth.AdminLogin)
	// Protected routes get JWT middleware per route so it never applies
	// to the public routes above.
	auth.Post("/select-role", protected, h.Auth.SelectRole)

	api.Get("/users/me", protected, h.User.Me)
	api.Put("/users/me", protected, h.User.UpdateMe)
	api.Delete("/users/me", protected, h.User.DeleteMe)

	// Public catalog
	api.Get("/packages", h.Catalog.Browse)
	api.Get("/packages/:itemId", h.Catalog.Item)

	// Vendor
	v := api.Group("/vendor", protected, vendor)
	v.Get("/profile", h.Vendor.Profile)
	v.Post("/profile/create", h.Vendor.SaveProfile)
	v.Post("/document/upload", h.Vendor.UploadDocuments)
	v.Get("/status", h.Vendor.Status)
	v.Get("/packages", h.Vendor.Catalog)
	v.Post("/package/add-item", h.Vendor.AddItem)
	v.Post("/package/update-item", h.Vendor.UpdateItem)
	v.Post("/package/delete-item", h.Vendor.DeleteItem)
	v.Post("/package/toggle-item", h.Vendor.ToggleItem)
	v.Post("/package/toggle-category", h.Vendor.ToggleCategory)
	v.Get("/bookings", h.Vendor.Bookings)

	// Traveller bookings and payment
	api.Post("/bookings", protected, traveller, h.Booking.Create)
	api.Get("/bookings", protected, traveller, h.Booking.Mine)
	api.Get("/bookings/:id", protected, traveller, h.Booking.Get)
	api.Post("/bookings/:id/cancel", protected, traveller, h.Booking.Cancel)
	api.Get("/bookings/:id/voucher", protected, traveller, h.Booking.Voucher)
	api.Post("/payment/create-order", protected, traveller, h.Booking.CreateOrder)
	api.Post("/payment/verify", protected, traveller, h.Booking.VerifyPayment)

	// Webhooks: authenticated by the gateway signature, no JWT
	api.Post("/webhooks/razorpay", h.Booking.RazorpayWebhook)

	// Admin panel (protected + admin required)
	admin := api.Group("/admin", protected, middleware.AdminRequired(users))
	admin.Get("/stats", h.Admin.Stats)
	admin.Get("/analytics", h.Admin.Analytics)
	admin.Get("/audit-logs", h.Admin.AuditLogs)
	admin.Get("/users", h.Admin.Users)
	admin.Get("/vendors", h.Admin.Vendors)
	admin.Get("/vendors/:id", h.Admin.Vendor)
	admin.Post("/verify-document", h.Admin.VerifyDocument)
	admin.Post("/approve-vendor", h.Admin.ApproveVendor)
	admin.Post("/verify-bank", h.Admin.VerifyBank)
	admin.Get("/bookings", h.Admin.Bookings)
	admin.Get("/bookings/:id", h.Admin.Booking)
	admin.Post("/payout", h.Admin.Payout)
	admin.Post("/refund", h.Admin.Refund)
	admin.Get("/settings", h.Admin.Settings)
	admin.Put("/settings/:key", h.Admin.SetSetting)
	admin.Delete("/settings/:key", h.Admin.DeleteSetting)
	admin.Get("/policies", h.Admin.Policies)
	admin.Put("/policies/:target/:type", h.Admin.UpsertPolicy)
	admin.Delete("/policies/:target/:type", h.Admin.DeletePolicy)

	// Plugins attach protected routes with r.Auth themselves.
	for _, p := range plugins {
		p.RegisterRoutes(apps.Routes{Public: api, Auth: protected, OptionalAuth: optional})
		if ap, ok := p.(apps.AdminPlugin); ok {
			ap.RegisterAdminRoutes(admin)
		}
	}
}
