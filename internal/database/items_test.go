package database

import (
	"context"
	"testing"

	"shareit/internal/apperror"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner")

	item := &models.Item{Name: "Ladder", Description: "Three meters", Available: true, OwnerID: owner.ID}
	require.NoError(t, db.CreateItem(ctx, item))
	assert.NotZero(t, item.ID)

	found, err := db.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ladder", found.Name)
	assert.True(t, found.Available)
	assert.Equal(t, owner.ID, found.OwnerID)
	assert.Nil(t, found.RequestID)

	found.Available = false
	found.Description = "Two meters"
	require.NoError(t, db.UpdateItem(ctx, found))

	updated, err := db.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, updated.Available)
	assert.Equal(t, "Two meters", updated.Description)

	_, err = db.GetItem(ctx, 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	exists, err := db.ItemExists(ctx, 999)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestListItemsByOwnerPaging(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner")
	other := seedUser(t, db, "other")
	for _, name := range []string{"a", "b", "c"} {
		seedItem(t, db, owner.ID, name, true)
	}
	seedItem(t, db, other.ID, "foreign", true)

	firstPage, err := db.ListItemsByOwner(ctx, owner.ID, models.NewPage(0, 2))
	require.NoError(t, err)
	require.Len(t, firstPage, 2)
	assert.Equal(t, "a", firstPage[0].Name)
	assert.Equal(t, "b", firstPage[1].Name)

	secondPage, err := db.ListItemsByOwner(ctx, owner.ID, models.NewPage(2, 2))
	require.NoError(t, err)
	require.Len(t, secondPage, 1)
	assert.Equal(t, "c", secondPage[0].Name)
}

func TestSearchAvailableItems(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner")
	require.NoError(t, db.CreateItem(ctx, &models.Item{Name: "Office Chair", Description: "ergonomic", Available: true, OwnerID: owner.ID}))
	require.NoError(t, db.CreateItem(ctx, &models.Item{Name: "Stool", Description: "a small CHAIR", Available: true, OwnerID: owner.ID}))
	require.NoError(t, db.CreateItem(ctx, &models.Item{Name: "Broken chair", Description: "do not use", Available: false, OwnerID: owner.ID}))
	require.NoError(t, db.CreateItem(ctx, &models.Item{Name: "Table", Description: "oak", Available: true, OwnerID: owner.ID}))

	items, err := db.SearchAvailableItems(ctx, "cHaIr", models.NewPage(0, 10))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Office Chair", items[0].Name)
	assert.Equal(t, "Stool", items[1].Name)

	items, err = db.SearchAvailableItems(ctx, "sofa", models.NewPage(0, 10))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSearchAvailableItemsUnicode(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner")
	drill := &models.Item{Name: "ДРЕЛЬ", Description: "ударная", Available: true, OwnerID: owner.ID}
	require.NoError(t, db.CreateItem(ctx, drill))
	require.NoError(t, db.CreateItem(ctx, &models.Item{Name: "Пила", Description: "для ДРЕЛИ не подходит", Available: true, OwnerID: owner.ID}))

	items, err := db.SearchAvailableItems(ctx, "дРелЬ", models.NewPage(0, 10))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, drill.ID, items[0].ID)

	items, err = db.SearchAvailableItems(ctx, "УДАРН", models.NewPage(0, 10))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, drill.ID, items[0].ID)
}

func TestSearchAvailableItemsLiteralWildcards(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner")
	heater := &models.Item{Name: "Heater", Description: "500 W", Available: true, OwnerID: owner.ID}
	require.NoError(t, db.CreateItem(ctx, heater))
	discount := &models.Item{Name: "Voucher", Description: "50% off", Available: true, OwnerID: owner.ID}
	require.NoError(t, db.CreateItem(ctx, discount))
	path := &models.Item{Name: "Cable", Description: `C:\cable_box`, Available: true, OwnerID: owner.ID}
	require.NoError(t, db.CreateItem(ctx, path))

	cases := []struct {
		text string
		want []int64
	}{
		{"5_0", nil},
		{"5%W", nil},
		{"50%", []int64{discount.ID}},
		{"_box", []int64{path.ID}},
		{`:\cab`, []int64{path.ID}},
		{`\`, []int64{path.ID}},
	}
	for _, tc := range cases {
		items, err := db.SearchAvailableItems(ctx, tc.text, models.NewPage(0, 10))
		require.NoError(t, err, tc.text)

		var got []int64
		for _, it := range items {
			got = append(got, it.ID)
		}
		assert.Equal(t, tc.want, got, tc.text)
	}
}

func TestListItemsByRequestIDs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	requestor := seedUser(t, db, "requestor")
	owner := seedUser(t, db, "owner")

	req := &models.ItemRequest{Description: "need a tent", RequestorID: requestor.ID}
	require.NoError(t, db.CreateItemRequest(ctx, req))

	tent := &models.Item{Name: "Tent", Description: "2 person", Available: true, OwnerID: owner.ID, RequestID: &req.ID}
	require.NoError(t, db.CreateItem(ctx, tent))
	seedItem(t, db, owner.ID, "Unrelated", true)

	grouped, err := db.ListItemsByRequestIDs(ctx, []int64{req.ID, 12345})
	require.NoError(t, err)
	require.Len(t, grouped[req.ID], 1)
	assert.Equal(t, tent.ID, grouped[req.ID][0].ID)
	assert.Empty(t, grouped[12345])

	empty, err := db.ListItemsByRequestIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
