package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ermradulsharma/pahadigo-sub000/internal/catalog"
	"github.com/ermradulsharma/pahadigo-sub000/internal/dto"
	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
	"github.com/ermradulsharma/pahadigo-sub000/internal/repository"
)

// CatalogService manages each vendor's items. Every mutation is a single
// statement against one item row, or one bulk statement for a category.
type CatalogService struct {
	catalog repository.CatalogRepository
	vendors repository.VendorRepository
}

func NewCatalogService(catalogRepo repository.CatalogRepository, vendors repository.VendorRepository) *CatalogService {
	return &CatalogService{catalog: catalogRepo, vendors: vendors}
}

func (s *CatalogService) vendor(ctx context.Context, userID uuid.UUID) (*models.Vendor, error) {
	v, err := s.vendors.FindByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrVendorNotFound
	}
	return v, err
}

// VendorView returns the catalog restricted to the categories the vendor
// declared on its profile.
func (s *CatalogService) VendorView(ctx context.Context, userID uuid.UUID) (*dto.CatalogResponse, error) {
	v, err := s.vendor(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp, err := s.view(ctx, v)
	if err != nil {
		return nil, err
	}
	keys := catalog.KeysForVendorCategories(v.Categories)
	resp.Categories = keys
	resp.Items = resp.Items.Only(keys)
	return resp, nil
}

// view loads the full catalog, creating the package row on first use.
func (s *CatalogService) view(ctx context.Context, v *models.Vendor) (*dto.CatalogResponse, error) {
	pkg, err := s.catalog.EnsurePackage(ctx, v.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	rows, err := s.catalog.ListItems(ctx, v.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog items: %w", err)
	}

	view := catalog.NewView()
	for _, row := range rows {
		item, err := toItem(row)
		if err != nil {
			slog.Error("skipping unreadable catalog item", "vendor_id", v.ID.String(), "item_id", row.ID.String(), "error", err.Error())
			continue
		}
		view.Add(item)
	}
	return &dto.CatalogResponse{
		PackageID:  pkg.ID,
		VendorID:   v.ID,
		Categories: catalog.Categories,
		Items:      view,
	}, nil
}

func toItem(row models.CatalogItem) (catalog.Item, error) {
	c, err := catalog.ParseCategory(row.Category)
	if err != nil {
		return catalog.Item{}, err
	}
	d, err := catalog.DecodeDetails(c, []byte(row.Details))
	if err != nil {
		return catalog.Item{}, err
	}
	return catalog.Item{ID: row.ID, IsActive: row.IsActive, Details: d}, nil
}

type activeFlag struct {
	IsActive *bool `json:"isActive"`
}

// AddItem validates the payload against its category schema and appends it.
// The vendor's package is created if it does not exist yet.
func (s *CatalogService) AddItem(ctx context.Context, userID uuid.UUID, req *dto.AddItemRequest) (*dto.CatalogResponse, error) {
	c, err := catalog.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}
	d, err := catalog.DecodeDetails(c, req.Item)
	if err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	var flag activeFlag
	_ = json.Unmarshal(req.Item, &flag)

	v, err := s.vendor(ctx, userID)
	if err != nil {
		return nil, err
	}
	pkg, err := s.catalog.EnsurePackage(ctx, v.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	row := &models.CatalogItem{
		ID:        uuid.New(),
		PackageID: pkg.ID,
		VendorID:  v.ID,
		Category:  string(c),
		IsActive:  flag.IsActive == nil || *flag.IsActive,
		Details:   datatypes.JSON(raw),
		Version:   1,
	}
	if err := s.catalog.InsertItem(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to add item: %w", err)
	}
	return s.view(ctx, v)
}

// UpdateItem merges the patch onto the stored details, validates the result
// and writes it conditionally on the item version.
func (s *CatalogService) UpdateItem(ctx context.Context, userID uuid.UUID, req *dto.UpdateItemRequest) (*dto.CatalogResponse, error) {
	c, err := catalog.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}
	v, err := s.vendor(ctx, userID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		row, err := s.catalog.FindItem(ctx, v.ID, req.ItemID)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && row.Category != string(c)) {
			return nil, catalog.ErrItemNotFound
		}
		if err != nil {
			return nil, err
		}

		existing, err := catalog.DecodeDetails(c, []byte(row.Details))
		if err != nil {
			return nil, err
		}
		merged, err := catalog.MergeDetails(existing, req.Updates)
		if err != nil {
			return nil, err
		}
		if err := merged.Validate(); err != nil {
			return nil, err
		}
		raw, err := json.Marshal(merged)
		if err != nil {
			return nil, err
		}

		var flag activeFlag
		_ = json.Unmarshal(req.Updates, &flag)

		err = s.catalog.UpdateDetails(ctx, v.ID, req.ItemID, row.Version, datatypes.JSON(raw), flag.IsActive)
		if errors.Is(err, repository.ErrStale) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to update item: %w", err)
		}
		return s.view(ctx, v)
	}
	return nil, ErrConcurrentUpdate
}

func (s *CatalogService) RemoveItem(ctx context.Context, userID uuid.UUID, req *dto.DeleteItemRequest) (*dto.CatalogResponse, error) {
	c, err := catalog.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}
	v, err := s.vendor(ctx, userID)
	if err != nil {
		return nil, err
	}
	err = s.catalog.DeleteItem(ctx, v.ID, req.ItemID, string(c))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, catalog.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to remove item: %w", err)
	}
	return s.view(ctx, v)
}

func (s *CatalogService) ToggleItem(ctx context.Context, userID uuid.UUID, req *dto.ToggleItemRequest) (*dto.CatalogResponse, error) {
	c, err := catalog.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}
	v, err := s.vendor(ctx, userID)
	if err != nil {
		return nil, err
	}
	err = s.catalog.SetItemActive(ctx, v.ID, req.ItemID, string(c), *req.IsActive)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, catalog.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to toggle item: %w", err)
	}
	return s.view(ctx, v)
}

// ToggleCategory flips every item of one category in a single statement.
// An empty category is not an error.
func (s *CatalogService) ToggleCategory(ctx context.Context, userID uuid.UUID, req *dto.ToggleCategoryRequest) (*dto.CatalogResponse, error) {
	c, err := catalog.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}
	v, err := s.vendor(ctx, userID)
	if err != nil {
		return nil, err
	}
	n, err := s.catalog.SetCategoryActive(ctx, v.ID, string(c), *req.IsActive)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle category: %w", err)
	}
	slog.Info("catalog category toggled", "vendor_id", v.ID.String(), "category", string(c), "items", n, "is_active", *req.IsActive)
	return s.view(ctx, v)
}

// Browse lists bookable items: active, from approved vendors.
func (s *CatalogService) Browse(ctx context.Context, f repository.PublicItemFilter) (dto.Paginated[dto.PublicItem], error) {
	if f.Category != "" {
		if _, err := catalog.ParseCategory(f.Category); err != nil {
			return dto.Paginated[dto.PublicItem]{}, err
		}
	}
	f.Page = f.Page.Normalize()
	rows, total, err := s.catalog.ListPublic(ctx, f)
	if err != nil {
		return dto.Paginated[dto.PublicItem]{}, fmt.Errorf("failed to list items: %w", err)
	}
	out := make([]dto.PublicItem, 0, len(rows))
	for _, row := range rows {
		item, err := toPublicItem(row)
		if err != nil {
			continue
		}
		out = append(out, item)
	}
	return dto.NewPaginated(out, total, f.Page.Page, f.Page.Limit), nil
}

func (s *CatalogService) PublicItem(ctx context.Context, itemID uuid.UUID) (*dto.PublicItem, error) {
	row, err := s.catalog.FindPublic(ctx, itemID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, catalog.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	item, err := toPublicItem(*row)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func toPublicItem(row repository.PublicItem) (dto.PublicItem, error) {
	item, err := toItem(row.CatalogItem)
	if err != nil {
		return dto.PublicItem{}, err
	}
	return dto.PublicItem{
		Item:         item,
		Category:     item.Category(),
		VendorID:     row.VendorID,
		BusinessName: row.BusinessName,
		UnitPrice:    item.Details.UnitPrice(),
		Title:        item.Details.Title(),
	}, nil
}
