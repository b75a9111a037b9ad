package dto

import (
	"github.com/google/uuid"

	"github.com/ermradulsharma/pahadigo-sub000/internal/kyc"
	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
)

// AddressPatch fields left nil keep their stored value.
type AddressPatch struct {
	Line1   *string `json:"line1" validate:"omitempty,max=200"`
	Line2   *string `json:"line2" validate:"omitempty,max=200"`
	City    *string `json:"city" validate:"omitempty,max=100"`
	State   *string `json:"state" validate:"omitempty,max=100"`
	Country *string `json:"country" validate:"omitempty,max=100"`
	Pincode *string `json:"pincode" validate:"omitempty,max=12"`
}

type BankPatch struct {
	AccountHolder *string `json:"accountHolder" validate:"omitempty,max=120"`
	AccountNumber *string `json:"accountNumber" validate:"omitempty,min=6,max=20,numeric"`
	IFSC          *string `json:"ifsc" validate:"omitempty,len=11,alphanum"`
	BankName      *string `json:"bankName" validate:"omitempty,max=120"`
	UPIID         *string `json:"upiId" validate:"omitempty,max=100"`
}

type VendorProfileRequest struct {
	BusinessName *string       `json:"businessName" validate:"omitempty,min=2,max=200"`
	BusinessType *string       `json:"businessType" validate:"omitempty,max=100"`
	Description  *string       `json:"description" validate:"omitempty,max=5000"`
	ContactEmail *string       `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone *string       `json:"contactPhone" validate:"omitempty,min=7,max=20"`
	Categories   []string      `json:"categories" validate:"omitempty,max=7,dive,required,max=60"`
	Address      *AddressPatch `json:"address"`
	BankDetails  *BankPatch    `json:"bankDetails"`
}

type VerifyDocumentRequest struct {
	VendorID     uuid.UUID `json:"vendorId" validate:"required"`
	DocumentType string    `json:"documentType" validate:"required"`
	Status       string    `json:"status" validate:"required,oneof=verified rejected"`
	Reason       string    `json:"reason" validate:"required_if=Status rejected,max=500"`
	Index        *int      `json:"index" validate:"omitempty,min=0"`
}

type ApproveVendorRequest struct {
	VendorID   uuid.UUID `json:"vendorId" validate:"required"`
	IsApproved *bool     `json:"isApproved" validate:"required"`
	Reason     string    `json:"reason" validate:"max=500"`
}

type VerifyBankRequest struct {
	VendorID uuid.UUID `json:"vendorId" validate:"required"`
	Status   string    `json:"status" validate:"required,oneof=verified rejected"`
	Reason   string    `json:"reason" validate:"required_if=Status rejected,max=500"`
}

type VendorStatus struct {
	ProfileCompleted  bool               `json:"profileCompleted"`
	DocumentsUploaded bool               `json:"documentsUploaded"`
	DocumentsVerified bool               `json:"documentsVerified"`
	IsApproved        bool               `json:"isApproved"`
	BankVerified      bool               `json:"bankVerified"`
	MissingDocuments  []kyc.Slot         `json:"missingDocuments"`
	RejectionReason   *string            `json:"rejectionReason"`
	DocumentSummary   map[kyc.Status]int `json:"documentSummary"`
}

type VendorProfileResponse struct {
	Vendor *models.Vendor `json:"vendor"`
	Status VendorStatus   `json:"status"`
}
