package reservation

import (
	"errors"
	"fmt"
	"strings"
)

// Reservation domain errors.
var (
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrAlreadyPaid          = errors.New("reservation already paid")
	ErrReservationCancelled = errors.New("reservation is cancelled")
	ErrPaymentExists        = errors.New("a payment already exists for this reservation")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrLocatorExhausted     = errors.New("could not allocate a unique locator, retry the request")
	ErrTicketNotReserved    = errors.New("ticket is not in reserved state")
	ErrTripRequired         = errors.New("trip is required")
	ErrInvalidSeatNumber    = errors.New("seat number must be positive")
	ErrInvalidPrice         = errors.New("price must not be negative")
	ErrNoTickets            = errors.New("at least one ticket is required")
	ErrPassengerIndex       = errors.New("ticket references an unknown passenger index")
)

// SeatRef names one (trip, seat) pair.
type SeatRef struct {
	TripID     int64 `json:"trip_id"`
	SeatNumber int   `json:"seat_number"`
}

func (s SeatRef) String() string {
	return fmt.Sprintf("trip %d seat %d", s.TripID, s.SeatNumber)
}

// SeatConflictError reports seats that are already held. The pre-check
// collects every offending pair; the allocation path reports the single
// seat that lost the race.
type SeatConflictError struct {
	Conflicts []SeatRef
}

func (e *SeatConflictError) Error() string {
	refs := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		refs[i] = c.String()
	}
	return "seat already held: " + strings.Join(refs, ", ")
}

// AmountMismatchError reports a payment amount that does not match the
// reservation total.
type AmountMismatchError struct {
	Expected float64
	Got      float64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("payment amount %.2f does not match reservation total, expected %.2f", e.Got, e.Expected)
}
