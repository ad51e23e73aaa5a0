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

const day = 24 * time.Hour

func TestLastAndNext(t *testing.T) {
	now := time.Now()
	at := func(d time.Duration) *models.Booking { return &models.Booking{Start: now.Add(d)} }

	bookings := []*models.Booking{at(-3 * day), at(-day), at(2 * day)}
	last, next := lastAndNext(bookings, now)
	require.NotNil(t, last)
	require.NotNil(t, next)
	assert.Equal(t, bookings[1], last)
	assert.Equal(t, bookings[2], next)

	last, next = lastAndNext(nil, now)
	assert.Nil(t, last)
	assert.Nil(t, next)

	onlyFuture := []*models.Booking{at(day), at(2 * day)}
	last, next = lastAndNext(onlyFuture, now)
	assert.Nil(t, last)
	assert.Equal(t, onlyFuture[0], next)

	startsNow := []*models.Booking{at(0)}
	last, next = lastAndNext(startsNow, now)
	assert.Equal(t, startsNow[0], last)
	assert.Nil(t, next)
}

func TestItemProjection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedBooking(t, f.booker.ID, -3*day, -3*day+time.Hour, models.StatusApproved)
	last := f.seedBooking(t, f.booker.ID, -day, -day+time.Hour, models.StatusApproved)
	next := f.seedBooking(t, f.booker.ID, 2*day, 2*day+time.Hour, models.StatusApproved)
	f.seedBooking(t, f.booker.ID, day, day+time.Hour, models.StatusWaiting)
	f.seedBooking(t, f.booker.ID, -2*time.Hour, -time.Hour, models.StatusRejected)

	view, err := f.items.Get(ctx, f.item.ID, f.owner.ID)
	require.NoError(t, err)
	require.NotNil(t, view.LastBooking)
	require.NotNil(t, view.NextBooking)
	assert.Equal(t, last.ID, view.LastBooking.ID)
	assert.True(t, view.LastBooking.Start.Equal(f.now.Add(-day)))
	assert.Equal(t, next.ID, view.NextBooking.ID)
	assert.True(t, view.NextBooking.Start.Equal(f.now.Add(2*day)))
	assert.Equal(t, f.booker.ID, view.NextBooking.BookerID)

	view, err = f.items.Get(ctx, f.item.ID, f.booker.ID)
	require.NoError(t, err)
	assert.Nil(t, view.LastBooking)
	assert.Nil(t, view.NextBooking)

	listed, err := f.items.ListByOwner(ctx, f.owner.ID, models.NewPage(0, 10))
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, last.ID, listed[0].LastBooking.ID)
	assert.Equal(t, next.ID, listed[0].NextBooking.ID)
}

func TestItemProjectionWithoutApprovedBookings(t *testing.T) {
	f := newFixture(t)
	f.seedBooking(t, f.booker.ID, day, 2*day, models.StatusWaiting)

	view, err := f.items.Get(context.Background(), f.item.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Nil(t, view.LastBooking)
	assert.Nil(t, view.NextBooking)
	assert.NotNil(t, view.Comments)
	assert.Empty(t, view.Comments)
}

func TestListByOwnerBatchesPerItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	second := &models.Item{Name: "Saw", Description: "Hand saw", Available: true, OwnerID: f.owner.ID}
	require.NoError(t, f.store.CreateItem(ctx, second))
	onSaw := &models.Booking{ItemID: second.ID, BookerID: f.booker.ID, Start: f.now.Add(day), End: f.now.Add(2 * day), Status: models.StatusApproved}
	require.NoError(t, f.store.CreateBooking(ctx, onSaw))

	views, err := f.items.ListByOwner(ctx, f.owner.ID, models.NewPage(0, 10))
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Nil(t, views[0].NextBooking)
	require.NotNil(t, views[1].NextBooking)
	assert.Equal(t, onSaw.ID, views[1].NextBooking.ID)
}

func TestCreateAndUpdateItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.items.Create(ctx, f.owner.ID, CreateItemInput{Name: "Tent", Description: "Four person", Available: true})
	require.NoError(t, err)
	assert.NotZero(t, view.ID)
	assert.Empty(t, view.Comments)

	_, err = f.items.Create(ctx, 999, CreateItemInput{Name: "Tent", Description: "x", Available: true})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	missing := int64(404)
	_, err = f.items.Create(ctx, f.owner.ID, CreateItemInput{Name: "Tent", Description: "x", Available: true, RequestID: &missing})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	unavailable := false
	updated, err := f.items.Update(ctx, f.owner.ID, view.ID, models.ItemPatch{Available: &unavailable})
	require.NoError(t, err)
	assert.Equal(t, "Tent", updated.Name)
	assert.Equal(t, "Four person", updated.Description)
	assert.False(t, updated.Available)

	name := "Stolen"
	_, err = f.items.Update(ctx, f.booker.ID, view.ID, models.ItemPatch{Name: &name})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.items.Update(ctx, f.owner.ID, 999, models.ItemPatch{Name: &name})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.items.Update(ctx, 999, view.ID, models.ItemPatch{Name: &name})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.NotErrorIs(t, err, apperror.ErrForbidden)

	stored, err := f.store.GetItem(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tent", stored.Name)
	assert.Equal(t, f.owner.ID, stored.OwnerID)
}

func TestCreateItemForRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.requests.Create(ctx, f.booker.ID, "need a tent")
	require.NoError(t, err)

	view, err := f.items.Create(ctx, f.owner.ID, CreateItemInput{Name: "Tent", Description: "x", Available: true, RequestID: &req.ID})
	require.NoError(t, err)
	require.NotNil(t, view.RequestID)
	assert.Equal(t, req.ID, *view.RequestID)
}

func TestAddComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("BookingNotFinished", func(t *testing.T) {
		f.seedBooking(t, f.booker.ID, -time.Hour, time.Hour, models.StatusApproved)
		_, err := f.items.AddComment(ctx, f.item.ID, f.booker.ID, "nice")
		assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
	})

	t.Run("RejectedBookingDoesNotCount", func(t *testing.T) {
		f.seedBooking(t, f.stranger.ID, -3*time.Hour, -2*time.Hour, models.StatusRejected)
		_, err := f.items.AddComment(ctx, f.item.ID, f.stranger.ID, "nice")
		assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
	})

	t.Run("UnknownItem", func(t *testing.T) {
		_, err := f.items.AddComment(ctx, 999, f.booker.ID, "nice")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, err := f.items.AddComment(ctx, f.item.ID, 999, "nice")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("Finished", func(t *testing.T) {
		f.seedBooking(t, f.booker.ID, -2*day, -day, models.StatusApproved)
		comment, err := f.items.AddComment(ctx, f.item.ID, f.booker.ID, "worked great")
		require.NoError(t, err)
		assert.Equal(t, "worked great", comment.Text)
		assert.Equal(t, "booker", comment.AuthorName)
		assert.True(t, comment.Created.Equal(f.now))

		// comments are visible to every viewer
		view, err := f.items.Get(ctx, f.item.ID, f.stranger.ID)
		require.NoError(t, err)
		require.Len(t, view.Comments, 1)
		assert.Equal(t, comment.ID, view.Comments[0].ID)
	})
}

func TestSearchBlankDoesNotTouchStorage(t *testing.T) {
	svc := NewItemService(noStorage{}, &testLogger)

	for _, text := range []string{"", "   "} {
		views, err := svc.Search(context.Background(), text, models.NewPage(0, 10))
		require.NoError(t, err)
		assert.NotNil(t, views)
		assert.Empty(t, views)
	}
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	chair := &models.Item{Name: "Folding CHAIR", Description: "light", Available: true, OwnerID: f.owner.ID}
	hidden := &models.Item{Name: "Chair", Description: "broken", Available: false, OwnerID: f.owner.ID}
	stool := &models.Item{Name: "Stool", Description: "works as a chair", Available: true, OwnerID: f.owner.ID}
	for _, it := range []*models.Item{chair, hidden, stool} {
		require.NoError(t, f.store.CreateItem(ctx, it))
	}
	require.NoError(t, f.store.CreateComment(ctx, &models.Comment{Text: "sturdy", ItemID: chair.ID, AuthorID: f.booker.ID, Created: f.now}))

	views, err := f.items.Search(ctx, "chair", models.NewPage(0, 10))
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, chair.ID, views[0].ID)
	assert.Equal(t, stool.ID, views[1].ID)
	require.Len(t, views[0].Comments, 1)
	assert.Equal(t, "booker", views[0].Comments[0].AuthorName)
	assert.Empty(t, views[1].Comments)
	assert.Nil(t, views[0].LastBooking)

	paged, err := f.items.Search(ctx, "CHAIR", models.NewPage(1, 1))
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, stool.ID, paged[0].ID)
}
