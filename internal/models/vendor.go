package models

import (
	"time"

	"github.com/ermradulsharma/pahadigo-sub000/internal/kyc"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Address struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	Pincode string `json:"pincode"`
}

type BankDetails struct {
	AccountHolder string     `json:"accountHolder"`
	AccountNumber string     `json:"accountNumber"`
	IFSC          string     `json:"ifsc"`
	BankName      string     `json:"bankName"`
	UPIID         string     `json:"upiId,omitempty"`
	Status        kyc.Status `json:"status"`
	Reason        *string    `json:"reason"`
}

// Vendor is the business profile owned by exactly one user. Writes are
// conditional on Version.
type Vendor struct {
	ID              uuid.UUID                         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID                         `gorm:"type:uuid;not null;uniqueIndex" json:"userId"`
	BusinessName    string                            `gorm:"size:200" json:"businessName"`
	BusinessType    string                            `gorm:"size:100" json:"businessType"`
	Description     string                            `gorm:"type:text" json:"description"`
	ContactEmail    string                            `gorm:"size:255" json:"contactEmail"`
	ContactPhone    string                            `gorm:"size:20" json:"contactPhone"`
	ProfileImage    string                            `gorm:"size:500" json:"profileImage,omitempty"`
	Categories      datatypes.JSONSlice[string]       `gorm:"type:jsonb" json:"categories"`
	Address         datatypes.JSONType[Address]       `gorm:"type:jsonb" json:"address"`
	BankDetails     datatypes.JSONType[BankDetails]   `gorm:"type:jsonb" json:"bankDetails"`
	Documents       datatypes.JSONType[kyc.Documents] `gorm:"type:jsonb" json:"documents"`
	IsApproved      bool                              `gorm:"default:false;index" json:"isApproved"`
	RejectionReason *string                           `gorm:"type:text" json:"rejectionReason"`
	ApprovedAt      *time.Time                        `json:"approvedAt,omitempty"`
	Version         int                               `gorm:"not null;default:1" json:"-"`
	CreatedAt       time.Time                         `json:"createdAt"`
	UpdatedAt       time.Time                         `json:"updatedAt"`
	User            *User                             `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (v *Vendor) Docs() kyc.Documents {
	d := v.Documents.Data()
	if d == nil {
		return kyc.Documents{}
	}
	return d
}
