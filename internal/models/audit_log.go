package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog is an append-only record of an admin action.
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AdminID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"adminId"`
	Action     string         `gorm:"size:100;not null;index" json:"action"`
	TargetType string         `gorm:"size:50;not null;index:idx_audit_target,priority:1" json:"targetType"`
	TargetID   string         `gorm:"size:64;index:idx_audit_target,priority:2" json:"targetId"`
	Details    datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"details"`
	IP         string         `gorm:"size:64" json:"ip"`
	UserAgent  string         `gorm:"size:255" json:"userAgent"`
	CreatedAt  time.Time      `gorm:"index" json:"createdAt"`
}
