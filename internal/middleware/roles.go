package middleware

import (
	"context"
	"slices"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ermradulsharma/pahadigo-sub000/internal/dto"
	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
)

// UserLookup is the slice of the user repository the admin guard needs.
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// RequireRoles lets the request through when the token's role claim is one
// of roles. Must run after JWTProtected.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := UserID(c); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Response{
				Success: false, Message: "Unauthorized",
			})
		}
		if !slices.Contains(roles, Role(c)) {
			return c.Status(fiber.StatusForbidden).JSON(dto.Response{
				Success: false, Message: "You do not have access to this resource",
			})
		}
		return c.Next()
	}
}

// AdminRequired checks the role claim and then confirms against the
// database that the account is still an active admin.
func AdminRequired(users UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := UserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Response{
				Success: false, Message: "Unauthorized",
			})
		}

		if Role(c) == models.RoleAdmin {
			user, err := users.FindByID(c.UserContext(), userID)
			if err == nil && user.Role == models.RoleAdmin && !user.IsDeleted {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.Response{
			Success: false, Message: "Admin access required",
		})
	}
}
