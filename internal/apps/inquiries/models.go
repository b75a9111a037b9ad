package inquiries

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "pending"
	StatusReviewed = "reviewed"
	StatusResolved = "resolved"
)

// Inquiry is a contact-form message from a visitor or traveller.
type Inquiry struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"userId,omitempty"`
	Name      string     `gorm:"size:120;not null" json:"name"`
	Email     string     `gorm:"size:255;not null" json:"email"`
	Phone     string     `gorm:"size:20" json:"phone"`
	Subject   string     `gorm:"size:200;not null" json:"subject"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	Status    string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	AdminNote string     `gorm:"type:text" json:"adminNote"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type CreateRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Phone   string `json:"phone" validate:"omitempty,min=7,max=20"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

type UpdateRequest struct {
	Status    string `json:"status" validate:"required,oneof=pending reviewed resolved"`
	AdminNote string `json:"adminNote" validate:"max=2000"`
}
