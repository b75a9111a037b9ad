package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"

	"github.com/ermradulsharma/pahadigo-sub000/internal/config"
	"github.com/ermradulsharma/pahadigo-sub000/internal/dto"
)

func unauthorized(c *fiber.Ctx, _ error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.Response{
		Success: false,
		Message: "Unauthorized: invalid or expired token",
	})
}

// JWTProtected validates the HS256 access token and stores it under
// c.Locals("user").
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		ErrorHandler: unauthorized,
	})
}

// OptionalJWT is JWTProtected for routes that also serve anonymous callers.
// Requests without an Authorization header pass through untouched; a
// present but invalid token is still rejected.
func OptionalJWT(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		Filter:       func(c *fiber.Ctx) bool { return c.Get(fiber.HeaderAuthorization) == "" },
		SigningKey:   jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		ErrorHandler: unauthorized,
	})
}
