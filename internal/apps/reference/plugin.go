package reference

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ermradulsharma/pahadigo-sub000/internal/apps"
)

// Plugin serves lookup tables: countries, states and service categories
// with the KYC documents each category asks for.
type Plugin struct {
	svc *Service
}

func New(db *gorm.DB) *Plugin {
	return &Plugin{svc: NewService(db)}
}

func (p *Plugin) ID() string { return "reference" }

func (p *Plugin) Models() []interface{} {
	return []interface{}{&Country{}, &State{}, &Category{}, &CategoryDocument{}}
}

func (p *Plugin) RegisterRoutes(r apps.Routes) {
	h := NewHandler(p.svc)
	r.Public.Get("/countries", h.Countries)
	r.Public.Get("/countries/:id/states", h.States)
	r.Public.Get("/categories", h.Categories)
}

func (p *Plugin) RegisterAdminRoutes(router fiber.Router) {
	h := NewHandler(p.svc)
	ref := router.Group("/reference")
	ref.Post("/countries", h.SaveCountry)
	ref.Put("/countries/:id", h.SaveCountry)
	ref.Delete("/countries/:id", h.DeleteCountry)
	ref.Post("/states", h.SaveState)
	ref.Put("/states/:id", h.SaveState)
	ref.Delete("/states/:id", h.DeleteState)
	ref.Get("/categories", h.AllCategories)
	ref.Post("/categories", h.SaveCategory)
	ref.Put("/categories/:id", h.SaveCategory)
	ref.Delete("/categories/:id", h.DeleteCategory)
	ref.Put("/categories/:id/documents", h.SetDocumentRule)
	ref.Delete("/categories/:id/documents/:slot", h.RemoveDocumentRule)
}
