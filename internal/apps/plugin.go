package apps

import (
	"github.com/gofiber/fiber/v2"
)

// Routes are the mount points handed to a plugin. Public is the /api group
// without authentication; Auth is the JWT middleware to attach per route so
// it never leaks onto public paths sharing the prefix. OptionalAuth reads a
// token when one is sent.
type Routes struct {
	Public       fiber.Router
	Auth         fiber.Handler
	OptionalAuth fiber.Handler
}

// Plugin is a self-contained feature module with its own tables and routes.
type Plugin interface {
	// ID returns the unique plugin identifier, used in logs.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts the plugin's public and user routes.
	RegisterRoutes(r Routes)
}

// AdminPlugin extends Plugin with admin-only routes.
type AdminPlugin interface {
	Plugin

	// RegisterAdminRoutes mounts routes on the /api/admin group, which has
	// both JWT and admin middleware applied.
	RegisterAdminRoutes(router fiber.Router)
}
