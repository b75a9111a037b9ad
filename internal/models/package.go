package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Package is a vendor's catalog. Items live in catalog_items so each
// add/remove/toggle is a single-row statement.
type Package struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VendorID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"vendorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CatalogItem struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"_id"`
	PackageID uuid.UUID      `gorm:"type:uuid;not null;index:idx_catalog_items_package_category,priority:1" json:"packageId"`
	VendorID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"vendorId"`
	Category  string         `gorm:"size:30;not null;index:idx_catalog_items_package_category,priority:2" json:"category"`
	IsActive  bool           `gorm:"not null;default:true" json:"isActive"`
	Details   datatypes.JSON `gorm:"type:jsonb;not null" json:"details"`
	Version   int            `gorm:"not null;default:1" json:"-"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
