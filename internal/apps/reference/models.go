package reference

import (
	"time"

	"github.com/google/uuid"
)

type Country struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	ISOCode   string    `gorm:"size:3;uniqueIndex;not null" json:"isoCode"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type State struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CountryID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_state_country_name" json:"countryId"`
	Name      string    `gorm:"size:100;not null;uniqueIndex:idx_state_country_name" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Category is an admin-curated service category vendors can declare.
type Category struct {
	ID        uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string             `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Slug      string             `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	IsActive  bool               `gorm:"not null" json:"isActive"`
	Documents []CategoryDocument `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// CategoryDocument names a KYC slot vendors in a category must or may upload.
type CategoryDocument struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CategoryID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_category_doc_slot" json:"categoryId"`
	Slot        string    `gorm:"size:60;not null;uniqueIndex:idx_category_doc_slot" json:"slot"`
	IsMandatory bool      `gorm:"not null" json:"isMandatory"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CountryRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	ISOCode string `json:"isoCode" validate:"required,len=2|len=3,alpha"`
}

type StateRequest struct {
	CountryID string `json:"countryId" validate:"required,uuid"`
	Name      string `json:"name" validate:"required,max=100"`
}

type CategoryRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Slug     string `json:"slug" validate:"omitempty,max=120"`
	IsActive *bool  `json:"isActive"`
}

type CategoryDocumentRequest struct {
	Slot        string `json:"slot" validate:"required,max=60"`
	IsMandatory bool   `json:"isMandatory"`
}
