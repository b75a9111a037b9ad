package inquiries

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ermradulsharma/pahadigo-sub000/internal/apps"
	"github.com/ermradulsharma/pahadigo-sub000/internal/services"
)

// Plugin handles the public contact form and its admin inbox.
type Plugin struct {
	svc *Service
}

func New(db *gorm.DB, moderation ContentChecker, auditLog services.ActionLogger) *Plugin {
	return &Plugin{svc: NewService(db, moderation, auditLog)}
}

func (p *Plugin) ID() string { return "inquiries" }

func (p *Plugin) Models() []interface{} {
	return []interface{}{&Inquiry{}}
}

func (p *Plugin) RegisterRoutes(r apps.Routes) {
	h := NewHandler(p.svc)
	r.Public.Post("/inquiries", r.OptionalAuth, h.Create)
}

func (p *Plugin) RegisterAdminRoutes(router fiber.Router) {
	h := NewHandler(p.svc)
	router.Get("/inquiries", h.List)
	router.Put("/inquiries/:id", h.Update)
}
