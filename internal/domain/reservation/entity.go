package reservation

import (
	"math"
	"time"
)

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusCreated   Status = "created"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// Reservation is a group of tickets sharing one locator code and one
// payment lifecycle.
type Reservation struct {
	ID         int64
	Locator    string
	Status     Status
	OwnerID    *string
	TotalPrice float64 // derived: sum of non-refunded ticket prices
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewReservation creates a reservation shell in created status.
func NewReservation(locator string, ownerID *string) *Reservation {
	now := time.Now()
	return &Reservation{
		Locator:   locator,
		Status:    StatusCreated,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkPaid transitions the reservation to paid.
func (r *Reservation) MarkPaid() error {
	switch r.Status {
	case StatusPaid:
		return ErrAlreadyPaid
	case StatusCancelled:
		return ErrReservationCancelled
	}
	r.Status = StatusPaid
	r.UpdatedAt = time.Now()
	return nil
}

// MarkCancelled transitions the reservation to cancelled. Cancelling an
// already-cancelled reservation is a no-op.
func (r *Reservation) MarkCancelled() {
	if r.Status == StatusCancelled {
		return
	}
	r.Status = StatusCancelled
	r.UpdatedAt = time.Now()
}

// TicketStatus is the lifecycle state of a ticket.
type TicketStatus string

const (
	TicketStatusReserved TicketStatus = "reserved"
	TicketStatusIssued   TicketStatus = "issued"
	TicketStatusRefunded TicketStatus = "refunded"
)

// Ticket is one seat on one trip for one passenger.
type Ticket struct {
	ID            int64
	ReservationID int64
	TripID        int64
	PassengerID   int64
	SeatNumber    int
	Price         float64
	Status        TicketStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewTicket creates a ticket in reserved status.
func NewTicket(reservationID, tripID, passengerID int64, seatNumber int, price float64) *Ticket {
	now := time.Now()
	return &Ticket{
		ReservationID: reservationID,
		TripID:        tripID,
		PassengerID:   passengerID,
		SeatNumber:    seatNumber,
		Price:         price,
		Status:        TicketStatusReserved,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate checks ticket fields.
func (t *Ticket) Validate() error {
	if t.TripID == 0 {
		return ErrTripRequired
	}
	if t.SeatNumber <= 0 {
		return ErrInvalidSeatNumber
	}
	if t.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// Issue transitions the ticket from reserved to issued.
func (t *Ticket) Issue() error {
	if t.Status != TicketStatusReserved {
		return ErrTicketNotReserved
	}
	t.Status = TicketStatusIssued
	t.UpdatedAt = time.Now()
	return nil
}

// Refund transitions the ticket to refunded, freeing its seat.
func (t *Ticket) Refund() {
	if t.Status == TicketStatusRefunded {
		return
	}
	t.Status = TicketStatusRefunded
	t.UpdatedAt = time.Now()
}

// Payment records a successful settlement of a reservation.
type Payment struct {
	ID            int64
	ReservationID int64
	Method        string
	Amount        float64
	Status        string
	Reference     string
	PaidAt        time.Time
}

// PaymentStatusSuccess is the only status a stored payment can hold;
// failed attempts are never persisted.
const PaymentStatusSuccess = "success"

// AmountMatches reports whether a submitted amount settles the given
// total. Both are rounded to whole cents first, so float representation
// noise is absorbed but a real cent of difference is not.
func AmountMatches(got, total float64) bool {
	return math.Round(got*100) == math.Round(total*100)
}
