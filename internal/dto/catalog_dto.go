package dto

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/ermradulsharma/pahadigo-sub000/internal/catalog"
)

type AddItemRequest struct {
	Category string          `json:"category" validate:"required"`
	Item     json.RawMessage `json:"item" validate:"required"`
}

type UpdateItemRequest struct {
	Category string          `json:"category" validate:"required"`
	ItemID   uuid.UUID       `json:"itemId" validate:"required"`
	Updates  json.RawMessage `json:"updates" validate:"required"`
}

type DeleteItemRequest struct {
	Category string    `json:"category" validate:"required"`
	ItemID   uuid.UUID `json:"itemId" validate:"required"`
}

type ToggleItemRequest struct {
	Category string    `json:"category" validate:"required"`
	ItemID   uuid.UUID `json:"itemId" validate:"required"`
	IsActive *bool     `json:"isActive" validate:"required"`
}

type ToggleCategoryRequest struct {
	Category string `json:"category" validate:"required"`
	IsActive *bool  `json:"isActive" validate:"required"`
}

// CatalogResponse is a vendor's catalog keyed by category.
type CatalogResponse struct {
	PackageID  uuid.UUID          `json:"packageId"`
	VendorID   uuid.UUID          `json:"vendorId"`
	Categories []catalog.Category `json:"categories"`
	Items      catalog.View       `json:"items"`
}

// PublicItem is a bookable item as shown to travellers.
type PublicItem struct {
	Item         catalog.Item     `json:"item"`
	Category     catalog.Category `json:"category"`
	VendorID     uuid.UUID        `json:"vendorId"`
	BusinessName string           `json:"businessName"`
	UnitPrice    float64          `json:"unitPrice"`
	Title        string           `json:"title"`
}
