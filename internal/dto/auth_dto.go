package dto

import (
	"strings"

	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
)

// IdentifierFields lets clients send either a generic identifier or an
// explicit email/phone.
type IdentifierFields struct {
	Identifier string `json:"identifier" validate:"required_without_all=Email Phone,omitempty,max=255"`
	Email      string `json:"email" validate:"omitempty,email,max=255"`
	Phone      string `json:"phone" validate:"omitempty,min=7,max=20"`
}

func (f IdentifierFields) Target() string {
	switch {
	case strings.TrimSpace(f.Identifier) != "":
		return f.Identifier
	case f.Email != "":
		return f.Email
	}
	return f.Phone
}

type OTPRequest struct {
	IdentifierFields
	Role string `json:"role" validate:"required,oneof=vendor traveller"`
}

type VerifyOTPRequest struct {
	IdentifierFields
	OTP string `json:"otp" validate:"required,max=12"`
}

type SocialLoginRequest struct {
	Token string `json:"token" validate:"required"`
	Role  string `json:"role" validate:"omitempty,oneof=vendor traveller"`
	// Apple only sends the name on the first authorisation.
	Name string `json:"name" validate:"omitempty,max=120"`
}

type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SelectRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=vendor traveller"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int64        `json:"expiresIn"`
	IsNewUser    bool         `json:"isNewUser"`
	User         *models.User `json:"user"`
}

type UpdateProfileRequest struct {
	Name                    *string                         `json:"name" validate:"omitempty,min=1,max=120"`
	Email                   *string                         `json:"email" validate:"omitempty,email,max=255"`
	Phone                   *string                         `json:"phone" validate:"omitempty,min=7,max=20"`
	ProfileImage            *string                         `json:"profileImage" validate:"omitempty,url,max=500"`
	NotificationPreferences *models.NotificationPreferences `json:"notificationPreferences"`
}
