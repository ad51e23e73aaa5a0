package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/apperror"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

const tableBookings = "bookings"

var bookingColumns = []interface{}{"id", "item_id", "booker_id", "start_time", "end_time", "status"}

func (db *DB) bookingDetails() *goqu.SelectDataset {
	return db.dialect.From(goqu.T(tableBookings).As("b")).
		Prepared(true).
		Join(goqu.T(tableItems).As("i"), goqu.On(goqu.I("i.id").Eq(goqu.I("b.item_id")))).
		Select(
			goqu.I("b.id"),
			goqu.I("b.item_id"),
			goqu.I("b.booker_id"),
			goqu.I("b.start_time"),
			goqu.I("b.end_time"),
			goqu.I("b.status"),
			goqu.I("i.name").As("item_name"),
			goqu.I("i.owner_id").As("item_owner_id"),
		)
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.BookingDetails, error) {
	var booking models.BookingDetails
	err := db.get(ctx, &booking, db.bookingDetails().Where(goqu.I("b.id").Eq(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("Booking with id %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	id, err := db.insert(ctx, db.dialect.Insert(tableBookings).Rows(goqu.Record{
		"item_id":    booking.ItemID,
		"booker_id":  booking.BookerID,
		"start_time": utc(booking.Start),
		"end_time":   utc(booking.End),
		"status":     string(booking.Status),
	}))
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	booking.ID = id
	return nil
}

// UpdateBookingStatusFrom is a compare-and-set on the status column.
// It returns domain.ErrConcurrentModification when the booking no longer has status from.
func (db *DB) UpdateBookingStatusFrom(ctx context.Context, id int64, from, to models.BookingStatus) error {
	rows, err := db.exec(ctx, db.dialect.Update(tableBookings).Prepared(true).
		Set(goqu.Record{"status": string(to)}).
		Where(goqu.C("id").Eq(id), goqu.C("status").Eq(string(from))))
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if rows == 0 {
		return domain.ErrConcurrentModification
	}
	return nil
}

// ListBookings returns the booker's or the owner's bookings matching the
// state filter, newest start first.
func (db *DB) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]*models.BookingDetails, error) {
	ds := db.bookingDetails()

	switch {
	case filter.BookerID != 0:
		ds = ds.Where(goqu.I("b.booker_id").Eq(filter.BookerID))
	case filter.OwnerID != 0:
		ds = ds.Where(goqu.I("i.owner_id").Eq(filter.OwnerID))
	default:
		return nil, errors.New("booking filter requires a booker or an owner")
	}

	cond, err := stateCondition(filter.State, utc(filter.Now))
	if err != nil {
		return nil, err
	}
	if cond != nil {
		ds = ds.Where(cond)
	}

	ds = ds.Order(goqu.I("b.start_time").Desc(), goqu.I("b.id").Desc())
	switch {
	case filter.Page != nil:
		ds = paginate(ds, *filter.Page)
	case filter.MaxRows > 0:
		ds = ds.Limit(uint(filter.MaxRows))
	}

	bookings := make([]*models.BookingDetails, 0)
	if err := db.selectAll(ctx, &bookings, ds); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func stateCondition(state models.BookingState, now time.Time) (exp.Expression, error) {
	switch state {
	case models.StateAll, "":
		return nil, nil
	case models.StateCurrent:
		return goqu.And(
			goqu.I("b.start_time").Lte(now),
			goqu.I("b.end_time").Gt(now),
		), nil
	case models.StateFuture:
		return goqu.I("b.start_time").Gt(now), nil
	case models.StatePast:
		return goqu.I("b.end_time").Lt(now), nil
	case models.StateWaiting:
		return goqu.I("b.status").Eq(string(models.StatusWaiting)), nil
	case models.StateRejected:
		return goqu.I("b.status").Eq(string(models.StatusRejected)), nil
	default:
		return nil, apperror.InvalidArgument("Unknown state: %s", state)
	}
}

func (db *DB) ListApprovedBookingsByItems(ctx context.Context, itemIDs []int64) (map[int64][]*models.Booking, error) {
	grouped := make(map[int64][]*models.Booking, len(itemIDs))
	if len(itemIDs) == 0 {
		return grouped, nil
	}

	var bookings []*models.Booking
	ds := db.from(tableBookings).
		Select(bookingColumns...).
		Where(
			goqu.C("item_id").In(itemIDs),
			goqu.C("status").Eq(string(models.StatusApproved)),
		).
		Order(goqu.C("start_time").Asc(), goqu.C("id").Asc())
	if err := db.selectAll(ctx, &bookings, ds); err != nil {
		return nil, fmt.Errorf("failed to list approved bookings: %w", err)
	}

	for _, b := range bookings {
		grouped[b.ItemID] = append(grouped[b.ItemID], b)
	}
	return grouped, nil
}

// HasFinishedApprovedBooking reports whether booker has an APPROVED booking of
// the item that ended before now.
func (db *DB) HasFinishedApprovedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error) {
	var found int64
	err := db.get(ctx, &found, db.from(tableBookings).
		Select(goqu.L("1")).
		Where(
			goqu.C("item_id").Eq(itemID),
			goqu.C("booker_id").Eq(bookerID),
			goqu.C("status").Eq(string(models.StatusApproved)),
			goqu.C("end_time").Lt(utc(now)),
		).
		Limit(1))
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check finished bookings: %w", err)
	}
	return true, nil
}
