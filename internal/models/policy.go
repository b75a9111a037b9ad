package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PolicyTargetTraveller = "traveller"
	PolicyTargetVendor    = "vendor"
	PolicyTargetAll       = "all"
)

// Policy is legal text, one row per (target, type).
type Policy struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Target    string     `gorm:"size:20;not null;uniqueIndex:idx_policies_target_type,priority:1" json:"target"`
	Type      string     `gorm:"size:30;not null;uniqueIndex:idx_policies_target_type,priority:2" json:"type"`
	Title     string     `gorm:"size:200;not null" json:"title"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	UpdatedBy *uuid.UUID `gorm:"type:uuid" json:"updatedBy,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
