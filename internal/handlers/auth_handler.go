package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ermradulsharma/pahadigo-sub000/internal/dto"
	"github.com/ermradulsharma/pahadigo-sub000/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RequestOTP(c *fiber.Ctx) error {
	var req dto.OTPRequest
	if err := BindJSON(c, &req); err != nil {
		return RespondError(c, err)
	}
	if err := h.authService.RequestOTP(c.UserContext(), &req); err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "OTP sent", nil)
}

func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req dto.VerifyOTPRequest
	if err := BindJSON(c, &req); err != nil {
		return RespondError(c, err)
	}
	resp, err := h.authService.VerifyOTP(c.UserContext(), &req)
	if err != nil {
		return RespondError(c, err)
	}
	if resp.IsNewUser {
		return RespondCreated(c, "Account created", resp)
	}
	return RespondOK(c, "Logged in", resp)
}

// Social returns the login handler for one OAuth provider (google,
// facebook, apple).
func (h *AuthHandler) Social(provider string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req dto.SocialLoginRequest
		if err := BindJSON(c, &req); err != nil {
			return RespondError(c, err)
		}
		resp, err := h.authService.SocialLogin(c.UserContext(), provider, &req)
		if err != nil {
			return RespondError(c, err)
		}
		return RespondOK(c, "Logged in", resp)
	}
}

func (h *AuthHandler) SelectRole(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return RespondError(c, err)
	}
	var req dto.SelectRoleRequest
	if err := BindJSON(c, &req); err != nil {
		return RespondError(c, err)
	}
	resp, err := h.authService.SelectRole(c.UserContext(), userID, req.Role)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "Role selected", resp)
}

func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := BindJSON(c, &req); err != nil {
		return RespondError(c, err)
	}
	resp, err := h.authService.AdminLogin(c.UserContext(), &req)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "Logged in", resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := BindJSON(c, &req); err != nil {
		return RespondError(c, err)
	}
	resp, err := h.authService.Refresh(c.UserContext(), &req)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "Token refreshed", resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := BindJSON(c, &req); err != nil {
		return RespondError(c, err)
	}
	if err := h.authService.Logout(c.UserContext(), &req); err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "Logged out successfully", nil)
}
