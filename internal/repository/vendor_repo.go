package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
)

type VendorFilter struct {
	Approved *bool
	Search   string
	Page
}

type VendorRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Vendor, error)
	Create(ctx context.Context, vendor *models.Vendor) error
	// SaveVersioned writes every mutable column when the stored version still
	// equals vendor.Version, then bumps vendor.Version. ErrStale otherwise.
	SaveVersioned(ctx context.Context, vendor *models.Vendor) error
	List(ctx context.Context, f VendorFilter) ([]models.Vendor, int64, error)
}

type vendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) VendorRepository {
	return &vendorRepository{db: db}
}

func (r *vendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var v models.Vendor
	if err := r.db.WithContext(ctx).Preload("User").First(&v, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *vendorRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Vendor, error) {
	var v models.Vendor
	if err := r.db.WithContext(ctx).First(&v, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *vendorRepository) Create(ctx context.Context, vendor *models.Vendor) error {
	if vendor.Version == 0 {
		vendor.Version = 1
	}
	return translate(r.db.WithContext(ctx).Create(vendor).Error)
}

func (r *vendorRepository) SaveVersioned(ctx context.Context, v *models.Vendor) error {
	res := r.db.WithContext(ctx).
		Model(&models.Vendor{}).
		Where("id = ? AND version = ?", v.ID, v.Version).
		Updates(map[string]any{
			"business_name":    v.BusinessName,
			"business_type":    v.BusinessType,
			"description":      v.Description,
			"contact_email":    v.ContactEmail,
			"contact_phone":    v.ContactPhone,
			"profile_image":    v.ProfileImage,
			"categories":       v.Categories,
			"address":          v.Address,
			"bank_details":     v.BankDetails,
			"documents":        v.Documents,
			"is_approved":      v.IsApproved,
			"rejection_reason": v.RejectionReason,
			"approved_at":      v.ApprovedAt,
			"version":          v.Version + 1,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	v.Version++
	return nil
}

func (r *vendorRepository) List(ctx context.Context, f VendorFilter) ([]models.Vendor, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Vendor{})
	if f.Approved != nil {
		q = q.Where("is_approved = ?", *f.Approved)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(business_name) LIKE ? OR LOWER(contact_email) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var vendors []models.Vendor
	if err := q.Preload("User").Order("created_at DESC").Scopes(paginate(f.Page)).Find(&vendors).Error; err != nil {
		return nil, 0, err
	}
	return vendors, total, nil
}
