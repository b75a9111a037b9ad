package reviews

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ermradulsharma/pahadigo-sub000/internal/apps"
	"github.com/ermradulsharma/pahadigo-sub000/internal/middleware"
	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
)

// Plugin lets travellers rate completed trips.
type Plugin struct {
	svc *Service
}

func New(db *gorm.DB, bookings BookingLookup, moderation ContentChecker) *Plugin {
	return &Plugin{svc: NewService(db, bookings, moderation)}
}

func (p *Plugin) ID() string { return "reviews" }

func (p *Plugin) Models() []interface{} {
	return []interface{}{&Review{}}
}

func (p *Plugin) RegisterRoutes(r apps.Routes) {
	h := NewHandler(p.svc)
	r.Public.Get("/packages/:itemId/reviews", h.ForItem)
	r.Public.Post("/reviews", r.Auth, middleware.RequireRoles(models.RoleTraveller), h.Create)
}

func (p *Plugin) RegisterAdminRoutes(router fiber.Router) {
	h := NewHandler(p.svc)
	router.Delete("/reviews/:id", h.Delete)
}
