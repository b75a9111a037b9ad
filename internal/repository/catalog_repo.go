package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
)

// PublicItem is an active catalog item joined with its vendor's name.
type PublicItem struct {
	models.CatalogItem
	BusinessName string `json:"businessName"`
}

type PublicItemFilter struct {
	Category string
	VendorID *uuid.UUID
	Search   string
	Page
}

type CatalogRepository interface {
	EnsurePackage(ctx context.Context, vendorID uuid.UUID) (*models.Package, error)
	FindPackage(ctx context.Context, vendorID uuid.UUID) (*models.Package, error)
	ListItems(ctx context.Context, vendorID uuid.UUID) ([]models.CatalogItem, error)
	FindItem(ctx context.Context, vendorID, itemID uuid.UUID) (*models.CatalogItem, error)
	FindItemByID(ctx context.Context, itemID uuid.UUID) (*models.CatalogItem, error)
	InsertItem(ctx context.Context, item *models.CatalogItem) error
	// UpdateDetails replaces details, and the active flag when given, in one
	// write that only applies while the stored version matches.
	UpdateDetails(ctx context.Context, vendorID, itemID uuid.UUID, version int, details datatypes.JSON, active *bool) error
	SetItemActive(ctx context.Context, vendorID, itemID uuid.UUID, category string, active bool) error
	SetCategoryActive(ctx context.Context, vendorID uuid.UUID, category string, active bool) (int64, error)
	DeleteItem(ctx context.Context, vendorID, itemID uuid.UUID, category string) error
	ListPublic(ctx context.Context, f PublicItemFilter) ([]PublicItem, int64, error)
	FindPublic(ctx context.Context, itemID uuid.UUID) (*PublicItem, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) EnsurePackage(ctx context.Context, vendorID uuid.UUID) (*models.Package, error) {
	pkg := models.Package{VendorID: vendorID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "vendor_id"}}, DoNothing: true}).
		Create(&pkg).Error
	if err != nil {
		return nil, err
	}
	return r.FindPackage(ctx, vendorID)
}

func (r *catalogRepository) FindPackage(ctx context.Context, vendorID uuid.UUID) (*models.Package, error) {
	var pkg models.Package
	if err := r.db.WithContext(ctx).First(&pkg, "vendor_id = ?", vendorID).Error; err != nil {
		return nil, translate(err)
	}
	return &pkg, nil
}

func (r *catalogRepository) ListItems(ctx context.Context, vendorID uuid.UUID) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *catalogRepository) FindItem(ctx context.Context, vendorID, itemID uuid.UUID) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := r.db.WithContext(ctx).First(&item, "id = ? AND vendor_id = ?", itemID, vendorID).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *catalogRepository) FindItemByID(ctx context.Context, itemID uuid.UUID) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", itemID).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *catalogRepository) InsertItem(ctx context.Context, item *models.CatalogItem) error {
	if item.Version == 0 {
		item.Version = 1
	}
	return translate(r.db.WithContext(ctx).Create(item).Error)
}

func (r *catalogRepository) UpdateDetails(ctx context.Context, vendorID, itemID uuid.UUID, version int, details datatypes.JSON, active *bool) error {
	fields := map[string]any{
		"details":    details,
		"version":    version + 1,
		"updated_at": time.Now(),
	}
	if active != nil {
		fields["is_active"] = *active
	}
	res := r.db.WithContext(ctx).
		Model(&models.CatalogItem{}).
		Where("id = ? AND vendor_id = ? AND version = ?", itemID, vendorID, version).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

func (r *catalogRepository) SetItemActive(ctx context.Context, vendorID, itemID uuid.UUID, category string, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.CatalogItem{}).
		Where("id = ? AND vendor_id = ? AND category = ?", itemID, vendorID, category).
		Updates(map[string]any{"is_active": active, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *catalogRepository) SetCategoryActive(ctx context.Context, vendorID uuid.UUID, category string, active bool) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CatalogItem{}).
		Where("vendor_id = ? AND category = ?", vendorID, category).
		Updates(map[string]any{"is_active": active, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}

func (r *catalogRepository) DeleteItem(ctx context.Context, vendorID, itemID uuid.UUID, category string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND vendor_id = ? AND category = ?", itemID, vendorID, category).
		Delete(&models.CatalogItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

const publicColumns = "catalog_items.*, vendors.business_name"

func (r *catalogRepository) publicQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("catalog_items").
		Joins("JOIN vendors ON vendors.id = catalog_items.vendor_id").
		Where("catalog_items.is_active = ? AND vendors.is_approved = ?", true, true)
}

func (r *catalogRepository) ListPublic(ctx context.Context, f PublicItemFilter) ([]PublicItem, int64, error) {
	q := r.publicQuery(ctx)
	if f.Category != "" {
		q = q.Where("catalog_items.category = ?", f.Category)
	}
	if f.VendorID != nil {
		q = q.Where("catalog_items.vendor_id = ?", *f.VendorID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where("catalog_items.details::text ILIKE ?", "%"+s+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []PublicItem
	if err := q.Select(publicColumns).Order("catalog_items.created_at DESC").Scopes(paginate(f.Page)).Scan(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *catalogRepository) FindPublic(ctx context.Context, itemID uuid.UUID) (*PublicItem, error) {
	var items []PublicItem
	if err := r.publicQuery(ctx).Select(publicColumns).Where("catalog_items.id = ?", itemID).Limit(1).Scan(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return &items[0], nil
}
