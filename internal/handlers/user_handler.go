package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ermradulsharma/pahadigo-sub000/internal/dto"
	"github.com/ermradulsharma/pahadigo-sub000/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return RespondError(c, err)
	}
	user, err := h.userService.Get(c.UserContext(), userID)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "", user)
}

func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return RespondError(c, err)
	}
	var req dto.UpdateProfileRequest
	if err := BindJSON(c, &req); err != nil {
		return RespondError(c, err)
	}
	user, err := h.userService.Update(c.UserContext(), userID, &req)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "Profile updated", user)
}

func (h *UserHandler) DeleteMe(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return RespondError(c, err)
	}
	if err := h.userService.Delete(c.UserContext(), userID); err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "Account deleted successfully", nil)
}
