package service

import (
	"context"
	"errors"
	"time"

	"shareit/internal/apperror"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo          domain.Repository
	eventBus      domain.EventPublisher
	exporter      domain.BookingExporter
	exportMaxRows int
	logger        *zerolog.Logger
	now           func() time.Time
}

func NewBookingService(
	repo domain.Repository,
	eventBus domain.EventPublisher,
	exporter domain.BookingExporter,
	exportMaxRows int,
	logger *zerolog.Logger,
) *BookingService {
	if exportMaxRows <= 0 {
		exportMaxRows = models.DefaultExportMaxRows
	}
	return &BookingService{
		repo:          repo,
		eventBus:      eventBus,
		exporter:      exporter,
		exportMaxRows: exportMaxRows,
		logger:        logger,
		now:           time.Now,
	}
}

type CreateBookingInput struct {
	ItemID int64
	Start  time.Time
	End    time.Time
}

// Create books an item for bookerID. Start/end ordering is checked at the edge.
func (s *BookingService) Create(ctx context.Context, bookerID int64, in CreateBookingInput) (*models.BookingView, error) {
	var created *models.BookingDetails

	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		if err := requireUser(ctx, repo, bookerID); err != nil {
			return err
		}

		item, err := repo.GetItem(ctx, in.ItemID)
		if err != nil {
			return err
		}
		if item.OwnerID == bookerID {
			return apperror.Forbidden("Owner cannot book own item %d", item.ID)
		}
		if !item.Available {
			return apperror.InvalidState("Item %d is not available for booking", item.ID)
		}

		booking := models.Booking{
			ItemID:   item.ID,
			BookerID: bookerID,
			Start:    in.Start,
			End:      in.End,
			Status:   models.StatusWaiting,
		}
		if err := repo.CreateBooking(ctx, &booking); err != nil {
			return err
		}

		created = &models.BookingDetails{Booking: booking, ItemName: item.Name, ItemOwnerID: item.OwnerID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("booking_id", created.ID).Int64("item_id", created.ItemID).Int64("booker_id", bookerID).Msg("Booking created")
	s.publishEvent(events.EventBookingCreated, created, bookerID)

	view := models.ToBookingView(created)
	return &view, nil
}

// Decide approves or rejects a WAITING booking on behalf of the item owner.
func (s *BookingService) Decide(ctx context.Context, bookingID, actorID int64, approve bool) (*models.BookingView, error) {
	var decided *models.BookingDetails

	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		if err := requireUser(ctx, repo, actorID); err != nil {
			return err
		}

		booking, err := repo.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking.ItemOwnerID != actorID {
			return apperror.Forbidden("User %d is not the owner of item %d", actorID, booking.ItemID)
		}
		if booking.Status != models.StatusWaiting {
			return alreadyDecided(booking)
		}

		to := models.StatusRejected
		if approve {
			to = models.StatusApproved
		}

		err = repo.UpdateBookingStatusFrom(ctx, bookingID, models.StatusWaiting, to)
		if errors.Is(err, domain.ErrConcurrentModification) {
			current, getErr := repo.GetBooking(ctx, bookingID)
			if getErr != nil {
				return getErr
			}
			return alreadyDecided(current)
		}
		if err != nil {
			return err
		}

		booking.Status = to
		decided = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	eventType := events.EventBookingRejected
	if decided.Status == models.StatusApproved {
		eventType = events.EventBookingApproved
	}
	s.logger.Info().Int64("booking_id", bookingID).Str("status", string(decided.Status)).Int64("owner_id", actorID).Msg("Booking decided")
	s.publishEvent(eventType, decided, actorID)

	view := models.ToBookingView(decided)
	return &view, nil
}

func alreadyDecided(b *models.BookingDetails) error {
	return apperror.InvalidState("Booking %d has already been decided, current status: %s", b.ID, b.Status)
}

// GetByID returns the booking to its booker or to the item owner.
func (s *BookingService) GetByID(ctx context.Context, bookingID, actorID int64) (*models.BookingView, error) {
	var booking *models.BookingDetails

	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		if err := requireUser(ctx, repo, actorID); err != nil {
			return err
		}

		b, err := repo.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.BookerID != actorID && b.ItemOwnerID != actorID {
			return apperror.Forbidden("User %d has no access to booking %d", actorID, bookingID)
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := models.ToBookingView(booking)
	return &view, nil
}

func (s *BookingService) ListByBooker(ctx context.Context, bookerID int64, rawState string, page models.Page) ([]models.BookingView, error) {
	return s.list(ctx, domain.BookingFilter{BookerID: bookerID, Page: &page}, bookerID, rawState)
}

func (s *BookingService) ListByOwner(ctx context.Context, ownerID int64, rawState string, page models.Page) ([]models.BookingView, error) {
	return s.list(ctx, domain.BookingFilter{OwnerID: ownerID, Page: &page}, ownerID, rawState)
}

func (s *BookingService) list(ctx context.Context, filter domain.BookingFilter, userID int64, rawState string) ([]models.BookingView, error) {
	bookings, err := s.fetch(ctx, filter, userID, rawState)
	if err != nil {
		return nil, err
	}

	views := make([]models.BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, models.ToBookingView(b))
	}
	return views, nil
}

func (s *BookingService) fetch(ctx context.Context, filter domain.BookingFilter, userID int64, rawState string) ([]*models.BookingDetails, error) {
	state, err := parseState(rawState)
	if err != nil {
		return nil, err
	}
	filter.State = state
	filter.Now = s.now()

	var bookings []*models.BookingDetails
	err = s.repo.InTx(ctx, func(repo domain.Repository) error {
		if err := requireUser(ctx, repo, userID); err != nil {
			return err
		}
		found, err := repo.ListBookings(ctx, filter)
		if err != nil {
			return err
		}
		bookings = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// ExportOwnerBookings renders the owner's bookings for the state filter as a spreadsheet.
func (s *BookingService) ExportOwnerBookings(ctx context.Context, ownerID int64, rawState string) ([]byte, error) {
	if s.exporter == nil {
		return nil, errors.New("booking export is not configured")
	}

	bookings, err := s.fetch(ctx, domain.BookingFilter{OwnerID: ownerID, MaxRows: s.exportMaxRows}, ownerID, rawState)
	if err != nil {
		return nil, err
	}

	state, _ := parseState(rawState)
	data, err := s.exporter.ExportBookings(bookings, state)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("owner_id", ownerID).Int("rows", len(bookings)).Msg("Bookings exported")
	return data, nil
}

func parseState(raw string) (models.BookingState, error) {
	state, err := models.ParseBookingState(raw)
	if err != nil {
		return "", apperror.InvalidArgument("%s", err.Error())
	}
	return state, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.BookingDetails, actorID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		ItemID:    booking.ItemID,
		ItemName:  booking.ItemName,
		OwnerID:   booking.ItemOwnerID,
		BookerID:  booking.BookerID,
		Status:    string(booking.Status),
		Start:     booking.Start,
		End:       booking.End,
		ActorID:   actorID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
