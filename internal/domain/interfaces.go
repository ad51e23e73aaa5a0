package domain

import (
	"context"
	"errors"
	"time"

	"shareit/internal/models"
)

// ErrConcurrentModification is returned by a conditional update whose
// precondition no longer holds.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// BookingFilter selects bookings for the booker and owner listings.
// Exactly one of BookerID and OwnerID is set.
type BookingFilter struct {
	BookerID int64
	OwnerID  int64
	State    models.BookingState
	Now      time.Time
	// Page is nil for unpaged reads such as exports.
	Page *models.Page
	// MaxRows caps unpaged reads; zero means no cap.
	MaxRows int
}

type UserRepository interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

type ItemRepository interface {
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	ItemExists(ctx context.Context, id int64) (bool, error)
	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	ListItemsByOwner(ctx context.Context, ownerID int64, page models.Page) ([]*models.Item, error)
	SearchAvailableItems(ctx context.Context, text string, page models.Page) ([]*models.Item, error)
	ListItemsByRequestIDs(ctx context.Context, requestIDs []int64) (map[int64][]*models.Item, error)
}

type BookingRepository interface {
	GetBooking(ctx context.Context, id int64) (*models.BookingDetails, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	// UpdateBookingStatusFrom changes the status only while it still equals from.
	UpdateBookingStatusFrom(ctx context.Context, id int64, from, to models.BookingStatus) error
	ListBookings(ctx context.Context, filter BookingFilter) ([]*models.BookingDetails, error)
	// ListApprovedBookingsByItems returns APPROVED bookings grouped by item id, start ascending.
	ListApprovedBookingsByItems(ctx context.Context, itemIDs []int64) (map[int64][]*models.Booking, error)
	HasFinishedApprovedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error)
}

type ItemRequestRepository interface {
	GetItemRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	ItemRequestExists(ctx context.Context, id int64) (bool, error)
	CreateItemRequest(ctx context.Context, req *models.ItemRequest) error
	ListItemRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error)
	ListItemRequestsExcept(ctx context.Context, requestorID int64, page models.Page) ([]*models.ItemRequest, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	// ListCommentsByItems returns comments grouped by item id, oldest first.
	ListCommentsByItems(ctx context.Context, itemIDs []int64) (map[int64][]*models.CommentDetails, error)
}

// Repository is the whole persistence surface used by the services.
type Repository interface {
	UserRepository
	ItemRepository
	BookingRepository
	ItemRequestRepository
	CommentRepository

	// InTx runs fn inside one transaction. fn receives a Repository bound to it;
	// any error rolls the transaction back.
	InTx(ctx context.Context, fn func(repo Repository) error) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// BookingExporter renders an owner's bookings as a spreadsheet.
type BookingExporter interface {
	ExportBookings(bookings []*models.BookingDetails, state models.BookingState) ([]byte, error)
}

// RateLimitStore counts requests per key in fixed windows.
type RateLimitStore interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
