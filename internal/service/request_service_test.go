package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/apperror"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tent, err := f.requests.Create(ctx, f.booker.ID, "need a tent")
	require.NoError(t, err)
	assert.True(t, tent.Created.Equal(f.now))
	assert.NotNil(t, tent.Items)
	assert.Empty(t, tent.Items)

	f.requests.now = func() time.Time { return f.now.Add(time.Minute) }
	kayak, err := f.requests.Create(ctx, f.booker.ID, "need a kayak")
	require.NoError(t, err)

	_, err = f.requests.Create(ctx, 999, "ghost request")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	answer := &models.Item{Name: "Tent", Description: "two person", Available: true, OwnerID: f.owner.ID, RequestID: &tent.ID}
	require.NoError(t, f.store.CreateItem(ctx, answer))

	t.Run("ListOwn", func(t *testing.T) {
		own, err := f.requests.ListOwn(ctx, f.booker.ID)
		require.NoError(t, err)
		require.Len(t, own, 2)
		assert.Equal(t, kayak.ID, own[0].ID)
		assert.Empty(t, own[0].Items)
		assert.Equal(t, tent.ID, own[1].ID)
		require.Len(t, own[1].Items, 1)
		assert.Equal(t, answer.ID, own[1].Items[0].ID)
		assert.Equal(t, f.owner.ID, own[1].Items[0].OwnerID)
	})

	t.Run("ListOthers", func(t *testing.T) {
		others, err := f.requests.ListOthers(ctx, f.owner.ID, models.NewPage(0, 10))
		require.NoError(t, err)
		assert.Len(t, others, 2)

		mine, err := f.requests.ListOthers(ctx, f.booker.ID, models.NewPage(0, 10))
		require.NoError(t, err)
		assert.Empty(t, mine)
	})

	t.Run("Get", func(t *testing.T) {
		got, err := f.requests.Get(ctx, tent.ID, f.stranger.ID)
		require.NoError(t, err)
		assert.Equal(t, "need a tent", got.Description)
		assert.Len(t, got.Items, 1)

		_, err = f.requests.Get(ctx, 999, f.stranger.ID)
		assert.ErrorIs(t, err, apperror.ErrNotFound)

		_, err = f.requests.Get(ctx, tent.ID, 999)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}
