package models

import "time"

type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

// Booking is a reservation of an item by a booker over [Start, End).
type Booking struct {
	ID       int64         `json:"id" db:"id"`
	ItemID   int64         `json:"item_id" db:"item_id"`
	BookerID int64         `json:"booker_id" db:"booker_id"`
	Start    time.Time     `json:"start" db:"start_time"`
	End      time.Time     `json:"end" db:"end_time"`
	Status   BookingStatus `json:"status" db:"status"`
}

// BookingDetails is a booking joined with the item fields the views need.
type BookingDetails struct {
	Booking
	ItemName    string `db:"item_name"`
	ItemOwnerID int64  `db:"item_owner_id"`
}

// IsActiveAt reports whether now falls inside [Start, End).
func (b *Booking) IsActiveAt(now time.Time) bool {
	return !b.Start.After(now) && now.Before(b.End)
}
