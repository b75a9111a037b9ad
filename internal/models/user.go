package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RoleAdmin     = "admin"
	RoleVendor    = "vendor"
	RoleTraveller = "traveller"
	// RolePending marks an account that must pick vendor or traveller.
	RolePending = "pending"
)

const (
	ProviderLocal    = "local"
	ProviderPhone    = "phone"
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
	ProviderApple    = "apple"
)

type NotificationPreferences struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
	Push  bool `json:"push"`
}

func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{Email: true, SMS: true, Push: true}
}

// User is any account on the marketplace. Email and phone are unique when
// present; NULL values never collide.
type User struct {
	ID                uuid.UUID                                   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name              string                                      `gorm:"size:120" json:"name"`
	Email             *string                                     `gorm:"size:255;uniqueIndex" json:"email"`
	Phone             *string                                     `gorm:"size:20;uniqueIndex" json:"phone"`
	Password          string                                      `gorm:"size:255" json:"-"`
	Role              string                                      `gorm:"size:20;not null;index;default:'traveller'" json:"role"`
	AuthProvider      string                                      `gorm:"size:20;not null;default:'local'" json:"authProvider"`
	GoogleID          *string                                     `gorm:"size:255;uniqueIndex" json:"-"`
	FacebookID        *string                                     `gorm:"size:255;uniqueIndex" json:"-"`
	AppleUserID       *string                                     `gorm:"size:255;uniqueIndex" json:"-"`
	IsEmailVerified   bool                                        `gorm:"default:false" json:"isEmailVerified"`
	IsPhoneVerified   bool                                        `gorm:"default:false" json:"isPhoneVerified"`
	ProfileImage      string                                      `gorm:"size:500" json:"profileImage,omitempty"`
	NotificationPrefs datatypes.JSONType[NotificationPreferences] `gorm:"type:jsonb" json:"notificationPreferences"`
	IsDeleted         bool                                        `gorm:"default:false" json:"-"`
	DeletedAt         *time.Time                                  `json:"-"`
	LastLoginAt       *time.Time                                  `json:"lastLoginAt,omitempty"`
	CreatedAt         time.Time                                   `json:"createdAt"`
	UpdatedAt         time.Time                                   `json:"updatedAt"`
}

func (u *User) EmailValue() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

func (u *User) PhoneValue() string {
	if u.Phone == nil {
		return ""
	}
	return *u.Phone
}
