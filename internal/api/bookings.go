package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"shareit/internal/apperror"
	"shareit/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type createBookingRequest struct {
	ItemID *int64     `json:"itemId"`
	Start  *time.Time `json:"start"`
	End    *time.Time `json:"end"`
}

// handleCreateBooking trusts the gateway for start/end ordering and only
// guards against missing fields.
func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	bookerID, err := actingUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var body createBookingRequest
	if err := decodeJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	if body.ItemID == nil || body.Start == nil || body.End == nil {
		s.fail(w, r, apperror.InvalidArgument("itemId, start and end are required"))
		return
	}

	booking, err := s.services.Bookings.Create(r.Context(), bookerID, service.CreateBookingInput{
		ItemID: *body.ItemID,
		Start:  *body.Start,
		End:    *body.End,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleDecideBooking(w http.ResponseWriter, r *http.Request) {
	actorID, err := actingUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		s.fail(w, r, apperror.InvalidArgument("approved must be true or false"))
		return
	}

	booking, err := s.services.Bookings.Decide(r.Context(), bookingID, actorID, approved)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	actorID, err := actingUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	booking, err := s.services.Bookings.GetByID(r.Context(), bookingID, actorID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleListBookerBookings(w http.ResponseWriter, r *http.Request) {
	bookerID, err := actingUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	page, err := pageParams(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	bookings, err := s.services.Bookings.ListByBooker(r.Context(), bookerID, r.URL.Query().Get("state"), page)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *HTTPServer) handleListOwnerBookings(w http.ResponseWriter, r *http.Request) {
	ownerID, err := actingUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	page, err := pageParams(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	bookings, err := s.services.Bookings.ListByOwner(r.Context(), ownerID, r.URL.Query().Get("state"), page)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *HTTPServer) handleExportOwnerBookings(w http.ResponseWriter, r *http.Request) {
	ownerID, err := actingUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	state := r.URL.Query().Get("state")
	data, err := s.services.Bookings.ExportOwnerBookings(r.Context(), ownerID, state)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if state == "" {
		state = "ALL"
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="bookings_%d_%s.xlsx"`, ownerID, state))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
