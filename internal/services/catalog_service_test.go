package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/ermradulsharma/pahadigo-sub000/internal/catalog"
	"github.com/ermradulsharma/pahadigo-sub000/internal/dto"
	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
	"github.com/ermradulsharma/pahadigo-sub000/internal/repository"
)

func newCatalogFixture(categories ...string) (*CatalogService, *fakeCatalog, *models.Vendor) {
	vendors := newFakeVendors()
	cat := newFakeCatalog()
	v := vendors.add(&models.Vendor{UserID: uuid.New(), BusinessName: "Valley Adventures", Categories: datatypes.JSONSlice[string](categories)})
	return NewCatalogService(cat, vendors), cat, v
}

func onlyItem(t *testing.T, resp *dto.CatalogResponse, c catalog.Category) catalog.Item {
	t.Helper()
	require.Len(t, resp.Items[c], 1)
	return resp.Items[c][0]
}

func TestAddItem_CreatesPackageOnFirstUse(t *testing.T) {
	svc, cat, v := newCatalogFixture("Trekking")
	ctx := context.Background()

	resp, err := svc.AddItem(ctx, v.UserID, &dto.AddItemRequest{
		Category: "trekking",
		Item:     json.RawMessage(`{"trekkingName":"Har Ki Dun","pricePerPerson":9500,"_id":"client-id"}`),
	})
	require.NoError(t, err)
	require.Contains(t, cat.packages, v.ID)
	assert.Equal(t, cat.packages[v.ID].ID, resp.PackageID)

	item := onlyItem(t, resp, catalog.Trekking)
	assert.True(t, item.IsActive)
	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.Equal(t, "Har Ki Dun", item.Details.Title())
	assert.Equal(t, 9500.0, item.Details.UnitPrice())
}

func TestAddItem_Rejections(t *testing.T) {
	svc, cat, v := newCatalogFixture("Trekking")
	ctx := context.Background()

	_, err := svc.AddItem(ctx, v.UserID, &dto.AddItemRequest{Category: "scuba", Item: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, catalog.ErrUnknownCategory)

	_, err = svc.AddItem(ctx, v.UserID, &dto.AddItemRequest{Category: "trekking", Item: json.RawMessage(`{"pricePerPerson":-1}`)})
	assert.ErrorIs(t, err, catalog.ErrInvalidItem)

	_, err = svc.AddItem(ctx, uuid.New(), &dto.AddItemRequest{Category: "trekking", Item: json.RawMessage(`{"trekkingName":"x","pricePerPerson":1}`)})
	assert.ErrorIs(t, err, ErrVendorNotFound)
	assert.Empty(t, cat.items)
}

func TestVendorView_FiltersToDeclaredCategories(t *testing.T) {
	svc, _, v := newCatalogFixture("River Rafting", "Homestays")
	ctx := context.Background()

	_, err := svc.AddItem(ctx, v.UserID, &dto.AddItemRequest{Category: "rafting", Item: json.RawMessage(`{"riverName":"Ganga","stretch":"Shivpuri","pricePerPerson":1500}`)})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, v.UserID, &dto.AddItemRequest{Category: "camping", Item: json.RawMessage(`{"campName":"Riverside","pricePerPerson":2000}`)})
	require.NoError(t, err)

	resp, err := svc.VendorView(ctx, v.UserID)
	require.NoError(t, err)
	assert.Equal(t, []catalog.Category{catalog.Homestay, catalog.Rafting}, resp.Categories)
	assert.Len(t, resp.Items[catalog.Rafting], 1)
	_, hasCamping := resp.Items[catalog.Camping]
	assert.False(t, hasCamping)
}

func TestUpdateItem_MergesAndToggles(t *testing.T) {
	svc, cat, v := newCatalogFixture("Camping")
	ctx := context.Background()
	resp, err := svc.AddItem(ctx, v.UserID, &dto.AddItemRequest{Category: "camping", Item: json.RawMessage(`{"campName":"Riverside","pricePerPerson":2000}`)})
	require.NoError(t, err)
	id := onlyItem(t, resp, catalog.Camping).ID

	cat.staleN = 1
	resp, err = svc.UpdateItem(ctx, v.UserID, &dto.UpdateItemRequest{
		Category: "camping", ItemID: id, Updates: json.RawMessage(`{"pricePerPerson":2400,"isActive":false}`),
	})
	require.NoError(t, err)
	item := onlyItem(t, resp, catalog.Camping)
	assert.Equal(t, "Riverside", item.Details.Title())
	assert.Equal(t, 2400.0, item.Details.UnitPrice())
	assert.False(t, item.IsActive)
	assert.Equal(t, 1, cat.detailWrites, "details and status land in one write")
	assert.Zero(t, cat.activeWrites)

	_, err = svc.UpdateItem(ctx, v.UserID, &dto.UpdateItemRequest{Category: "camping", ItemID: id, Updates: json.RawMessage(`{"pricePerPerson":0}`)})
	assert.ErrorIs(t, err, catalog.ErrInvalidItem)

	_, err = svc.UpdateItem(ctx, v.UserID, &dto.UpdateItemRequest{Category: "trekking", ItemID: id, Updates: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, catalog.ErrItemNotFound)

	cat.staleN = maxVersionRetries
	_, err = svc.UpdateItem(ctx, v.UserID, &dto.UpdateItemRequest{Category: "camping", ItemID: id, Updates: json.RawMessage(`{"pricePerPerson":2500}`)})
	assert.ErrorIs(t, err, ErrConcurrentUpdate)
}

func TestToggleAndRemove(t *testing.T) {
	svc, _, v := newCatalogFixture("Camping")
	ctx := context.Background()
	for _, name := range []string{"A", "B"} {
		_, err := svc.AddItem(ctx, v.UserID, &dto.AddItemRequest{Category: "camping", Item: json.RawMessage(`{"campName":"` + name + `","pricePerPerson":100}`)})
		require.NoError(t, err)
	}

	resp, err := svc.ToggleCategory(ctx, v.UserID, &dto.ToggleCategoryRequest{Category: "camping", IsActive: boolPtr(false)})
	require.NoError(t, err)
	for _, it := range resp.Items[catalog.Camping] {
		assert.False(t, it.IsActive)
	}

	_, err = svc.ToggleCategory(ctx, v.UserID, &dto.ToggleCategoryRequest{Category: "rafting", IsActive: boolPtr(true)})
	assert.NoError(t, err)

	first := resp.Items[catalog.Camping][0].ID
	resp, err = svc.ToggleItem(ctx, v.UserID, &dto.ToggleItemRequest{Category: "camping", ItemID: first, IsActive: boolPtr(true)})
	require.NoError(t, err)
	active := 0
	for _, it := range resp.Items[catalog.Camping] {
		if it.IsActive {
			active++
		}
	}
	assert.Equal(t, 1, active)

	_, err = svc.RemoveItem(ctx, v.UserID, &dto.DeleteItemRequest{Category: "rafting", ItemID: first})
	assert.ErrorIs(t, err, catalog.ErrItemNotFound)

	resp, err = svc.RemoveItem(ctx, v.UserID, &dto.DeleteItemRequest{Category: "camping", ItemID: first})
	require.NoError(t, err)
	assert.Len(t, resp.Items[catalog.Camping], 1)

	_, err = svc.ToggleItem(ctx, v.UserID, &dto.ToggleItemRequest{Category: "camping", ItemID: first, IsActive: boolPtr(true)})
	assert.ErrorIs(t, err, catalog.ErrItemNotFound)
}

func TestBrowse_OnlyApprovedActive(t *testing.T) {
	svc, cat, v := newCatalogFixture("Camping")
	ctx := context.Background()
	_, err := svc.AddItem(ctx, v.UserID, &dto.AddItemRequest{Category: "camping", Item: json.RawMessage(`{"campName":"Riverside","pricePerPerson":2000}`)})
	require.NoError(t, err)

	page, err := svc.Browse(ctx, repository.PublicItemFilter{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	cat.approved[v.ID] = v.BusinessName
	page, err = svc.Browse(ctx, repository.PublicItemFilter{Category: "camping"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Valley Adventures", page.Items[0].BusinessName)
	assert.Equal(t, 2000.0, page.Items[0].UnitPrice)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Limit)

	got, err := svc.PublicItem(ctx, page.Items[0].Item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Riverside", got.Title)

	_, err = svc.Browse(ctx, repository.PublicItemFilter{Category: "scuba"})
	assert.ErrorIs(t, err, catalog.ErrUnknownCategory)
	_, err = svc.PublicItem(ctx, uuid.New())
	assert.ErrorIs(t, err, catalog.ErrItemNotFound)
}
