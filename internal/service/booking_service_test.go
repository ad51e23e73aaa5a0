package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"shareit/internal/apperror"
	"shareit/internal/database"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func (f *fixture) input(from, to time.Duration) CreateBookingInput {
	return CreateBookingInput{ItemID: f.item.ID, Start: f.now.Add(from), End: f.now.Add(to)}
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.bus.On("PublishJSON", events.EventBookingCreated, mock.AnythingOfType("events.BookingEventPayload")).Return(nil).Once()

	view, err := f.bookings.Create(ctx, f.booker.ID, f.input(time.Hour, 2*time.Hour))
	require.NoError(t, err)
	assert.NotZero(t, view.ID)
	assert.Equal(t, models.StatusWaiting, view.Status)
	assert.Equal(t, f.booker.ID, view.Booker.ID)
	assert.Equal(t, models.ItemRef{ID: f.item.ID, Name: "Drill"}, view.Item)

	f.bus.AssertExpectations(t)
}

func TestCreateBookingErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("UnknownUser", func(t *testing.T) {
		_, err := f.bookings.Create(ctx, 999, f.input(time.Hour, 2*time.Hour))
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("UnknownItem", func(t *testing.T) {
		_, err := f.bookings.Create(ctx, f.booker.ID, CreateBookingInput{ItemID: 999, Start: f.now.Add(time.Hour), End: f.now.Add(2 * time.Hour)})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("OwnerBooksOwnItem", func(t *testing.T) {
		_, err := f.bookings.Create(ctx, f.owner.ID, f.input(time.Hour, 2*time.Hour))
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("Unavailable", func(t *testing.T) {
		f.item.Available = false
		require.NoError(t, f.store.UpdateItem(ctx, f.item))

		_, err := f.bookings.Create(ctx, f.booker.ID, f.input(time.Hour, 2*time.Hour))
		assert.ErrorIs(t, err, apperror.ErrInvalidState)

		// ownership is checked before availability
		_, err = f.bookings.Create(ctx, f.owner.ID, f.input(time.Hour, 2*time.Hour))
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	f.bus.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
}

func TestDecideBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.bus.On("PublishJSON", events.EventBookingApproved, mock.AnythingOfType("events.BookingEventPayload")).Return(nil).Once()
	f.bus.On("PublishJSON", events.EventBookingRejected, mock.AnythingOfType("events.BookingEventPayload")).Return(nil).Once()

	approved := f.seedBooking(t, f.booker.ID, time.Hour, 2*time.Hour, models.StatusWaiting)
	rejected := f.seedBooking(t, f.booker.ID, 3*time.Hour, 4*time.Hour, models.StatusWaiting)

	view, err := f.bookings.Decide(ctx, approved.ID, f.owner.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, view.Status)

	view, err = f.bookings.Decide(ctx, rejected.ID, f.owner.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, view.Status)

	f.bus.AssertExpectations(t)
}

func TestDecideTwice(t *testing.T) {
	for _, second := range []bool{true, false} {
		f := newFixture(t)
		ctx := context.Background()
		f.bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil)

		b := f.seedBooking(t, f.booker.ID, time.Hour, 2*time.Hour, models.StatusWaiting)
		_, err := f.bookings.Decide(ctx, b.ID, f.owner.ID, true)
		require.NoError(t, err)

		_, err = f.bookings.Decide(ctx, b.ID, f.owner.ID, second)
		assert.ErrorIs(t, err, apperror.ErrInvalidState)
		assert.Contains(t, err.Error(), "APPROVED")

		stored, err := f.store.GetBooking(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, stored.Status)
		f.bus.AssertNumberOfCalls(t, "PublishJSON", 1)
	}
}

func TestDecideAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seedBooking(t, f.booker.ID, time.Hour, 2*time.Hour, models.StatusWaiting)

	_, err := f.bookings.Decide(ctx, b.ID, f.booker.ID, true)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.bookings.Decide(ctx, b.ID, 999, true)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.bookings.Decide(ctx, 999, f.owner.ID, true)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetBookingByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seedBooking(t, f.booker.ID, time.Hour, 2*time.Hour, models.StatusWaiting)

	for _, actor := range []int64{f.booker.ID, f.owner.ID} {
		view, err := f.bookings.GetByID(ctx, b.ID, actor)
		require.NoError(t, err)
		assert.Equal(t, b.ID, view.ID)
	}

	_, err := f.bookings.GetByID(ctx, b.ID, f.stranger.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.bookings.GetByID(ctx, b.ID, 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListBookingsCurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedBooking(t, f.booker.ID, -2*time.Hour, -time.Hour, models.StatusApproved)
	current := f.seedBooking(t, f.booker.ID, -10*time.Minute, 10*time.Minute, models.StatusApproved)
	f.seedBooking(t, f.booker.ID, time.Hour, 2*time.Hour, models.StatusWaiting)

	byBooker, err := f.bookings.ListByBooker(ctx, f.booker.ID, "CURRENT", models.NewPage(0, 10))
	require.NoError(t, err)
	require.Len(t, byBooker, 1)
	assert.Equal(t, current.ID, byBooker[0].ID)

	byOwner, err := f.bookings.ListByOwner(ctx, f.owner.ID, "CURRENT", models.NewPage(0, 10))
	require.NoError(t, err)
	require.Len(t, byOwner, 1)
	assert.Equal(t, current.ID, byOwner[0].ID)

	all, err := f.bookings.ListByBooker(ctx, f.booker.ID, "", models.NewPage(0, 10))
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.True(t, all[0].Start.After(all[1].Start))
}

func TestListBookingsErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.bookings.ListByBooker(ctx, f.booker.ID, "SOMETIMES", models.NewPage(0, 10))
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
	assert.EqualError(t, err, "Unknown state: SOMETIMES")

	_, err = f.bookings.ListByOwner(ctx, f.owner.ID, "current", models.NewPage(0, 10))
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)

	_, err = f.bookings.ListByOwner(ctx, 999, "ALL", models.NewPage(0, 10))
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestExportOwnerBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	exporter := new(mockExporter)
	f.bookings.exporter = exporter

	f.seedBooking(t, f.booker.ID, time.Hour, 2*time.Hour, models.StatusWaiting)
	f.seedBooking(t, f.booker.ID, -2*time.Hour, -time.Hour, models.StatusApproved)

	exporter.On("ExportBookings", mock.MatchedBy(func(b []*models.BookingDetails) bool {
		return len(b) == 1 && b[0].Status == models.StatusWaiting
	}), models.StateWaiting).Return([]byte("xlsx"), nil).Once()

	data, err := f.bookings.ExportOwnerBookings(ctx, f.owner.ID, "WAITING")
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), data)
	exporter.AssertExpectations(t)

	_, err = f.bookings.ExportOwnerBookings(ctx, f.owner.ID, "NEVER")
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
}

func TestConcurrentDecide(t *testing.T) {
	store, err := database.NewDB(filepath.Join(t.TempDir(), "decide.db"), &testLogger)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	bus := new(mockEventBus)
	bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil)
	svc := NewBookingService(store, bus, nil, 0, &testLogger)

	owner := &models.User{Name: "owner", Email: "owner@example.com"}
	booker := &models.User{Name: "booker", Email: "booker@example.com"}
	require.NoError(t, store.CreateUser(ctx, owner))
	require.NoError(t, store.CreateUser(ctx, booker))
	item := &models.Item{Name: "Kayak", Description: "Two seats", Available: true, OwnerID: owner.ID}
	require.NoError(t, store.CreateItem(ctx, item))
	start := time.Now().Add(24 * time.Hour)
	booking := &models.Booking{ItemID: item.ID, BookerID: booker.ID, Start: start, End: start.Add(time.Hour), Status: models.StatusWaiting}
	require.NoError(t, store.CreateBooking(ctx, booking))

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(approve bool) {
			defer wg.Done()
			_, err := svc.Decide(ctx, booking.ID, owner.ID, approve)
			errs <- err
		}(i%2 == 0)
	}
	wg.Wait()
	close(errs)

	var ok, invalid int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperror.ErrInvalidState):
			invalid++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, invalid)
	bus.AssertNumberOfCalls(t, "PublishJSON", 1)
}
