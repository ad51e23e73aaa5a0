package service

import (
	"context"
	"io"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(et string, p interface{}) error { return m.Called(et, p).Error(0) }

type mockExporter struct {
	mock.Mock
}

func (m *mockExporter) ExportBookings(b []*models.BookingDetails, st models.BookingState) ([]byte, error) {
	args := m.Called(b, st)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// noStorage panics on any repository call.
type noStorage struct {
	domain.Repository
}

var testLogger = zerolog.New(io.Discard)

func setupStore(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewDB(":memory:", &testLogger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type fixture struct {
	store    *database.DB
	bus      *mockEventBus
	bookings *BookingService
	items    *ItemService
	users    *UserService
	requests *RequestService
	now      time.Time

	owner    *models.User
	booker   *models.User
	stranger *models.User
	item     *models.Item
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := setupStore(t)
	bus := new(mockEventBus)
	now := time.Date(2030, 6, 15, 12, 0, 0, 0, time.UTC)

	f := &fixture{
		store:    store,
		bus:      bus,
		bookings: NewBookingService(store, bus, nil, 0, &testLogger),
		items:    NewItemService(store, &testLogger),
		users:    NewUserService(store, &testLogger),
		requests: NewRequestService(store, &testLogger),
		now:      now,
	}
	clock := func() time.Time { return now }
	f.bookings.now = clock
	f.items.now = clock
	f.requests.now = clock

	ctx := context.Background()
	f.owner = &models.User{Name: "owner", Email: "owner@example.com"}
	f.booker = &models.User{Name: "booker", Email: "booker@example.com"}
	f.stranger = &models.User{Name: "stranger", Email: "stranger@example.com"}
	for _, u := range []*models.User{f.owner, f.booker, f.stranger} {
		require.NoError(t, store.CreateUser(ctx, u))
	}
	f.item = &models.Item{Name: "Drill", Description: "Cordless drill", Available: true, OwnerID: f.owner.ID}
	require.NoError(t, store.CreateItem(ctx, f.item))
	return f
}

// seedBooking stores a booking relative to the fixture clock, bypassing the service.
func (f *fixture) seedBooking(t *testing.T, bookerID int64, from, to time.Duration, status models.BookingStatus) *models.Booking {
	t.Helper()
	b := &models.Booking{
		ItemID:   f.item.ID,
		BookerID: bookerID,
		Start:    f.now.Add(from),
		End:      f.now.Add(to),
		Status:   status,
	}
	require.NoError(t, f.store.CreateBooking(context.Background(), b))
	return b
}
