package models

import "fmt"

// BookingState is the list filter accepted by booking listings.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StateFuture   BookingState = "FUTURE"
	StatePast     BookingState = "PAST"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

var knownStates = map[BookingState]struct{}{
	StateAll:      {},
	StateCurrent:  {},
	StateFuture:   {},
	StatePast:     {},
	StateWaiting:  {},
	StateRejected: {},
}

// ErrUnknownState is returned by ParseBookingState for values outside the known set.
type ErrUnknownState struct {
	Value string
}

func (e *ErrUnknownState) Error() string {
	return fmt.Sprintf("Unknown state: %s", e.Value)
}

// ParseBookingState maps a raw query value to a filter. Empty means ALL.
func ParseBookingState(raw string) (BookingState, error) {
	if raw == "" {
		return StateAll, nil
	}
	st := BookingState(raw)
	if _, ok := knownStates[st]; !ok {
		return "", &ErrUnknownState{Value: raw}
	}
	return st, nil
}
