package service

import (
	"context"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

// lastAndNext splits an item's APPROVED bookings, sorted by start ascending, at now.
// last is the latest booking that has started, next the earliest that has not.
func lastAndNext(bookings []*models.Booking, now time.Time) (last, next *models.Booking) {
	for _, b := range bookings {
		if b.Start.After(now) {
			return last, b
		}
		last = b
	}
	return last, nil
}

// buildItemViews assembles views for items with two batched reads: comments
// for every item and, when ownerView is set, the approved bookings.
func buildItemViews(ctx context.Context, repo domain.Repository, items []*models.Item, ownerView bool, now time.Time) ([]models.ItemView, error) {
	views := make([]models.ItemView, 0, len(items))
	if len(items) == 0 {
		return views, nil
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	comments, err := repo.ListCommentsByItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	var bookings map[int64][]*models.Booking
	if ownerView {
		bookings, err = repo.ListApprovedBookingsByItems(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	for _, item := range items {
		view := models.ToItemView(item, comments[item.ID])
		if ownerView {
			last, next := lastAndNext(bookings[item.ID], now)
			view.LastBooking = models.ToBookingShort(last)
			view.NextBooking = models.ToBookingShort(next)
		}
		views = append(views, view)
	}
	return views, nil
}

func requireUser(ctx context.Context, repo domain.UserRepository, id int64) error {
	ok, err := repo.UserExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return userNotFound(id)
	}
	return nil
}
