package reservation

import (
	"context"
	"time"

	"github.com/emirhangull/Train-DB-APP/internal/domain/transaction"
)

// Summary is a reservation with its derived total and ticket count, as
// returned by list queries.
type Summary struct {
	ID          int64     `json:"reservation_id"`
	Locator     string    `json:"locator"`
	Status      Status    `json:"status"`
	OwnerID     *string   `json:"owner_id,omitempty"`
	TotalPrice  float64   `json:"total_price"`
	TicketCount int       `json:"ticket_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// TicketDetail is a ticket joined with its passenger and trip, as shown
// by the locator lookup.
type TicketDetail struct {
	Ticket
	PassengerName   string
	PassengerEmail  string
	PassengerPhone  string
	TrainCode       string
	DepartsAt       time.Time
	ArrivesAt       time.Time
	OriginName      string
	OriginCity      string
	DestinationName string
	DestinationCity string
}

// TicketStatusStat is one row of the ticket statistics report.
type TicketStatusStat struct {
	Status TicketStatus `json:"status"`
	Count  int          `json:"count"`
	Total  float64      `json:"total_price"`
}

// RevenueSummary aggregates successful payments.
type RevenueSummary struct {
	PaymentCount int     `json:"payment_count"`
	TotalRevenue float64 `json:"total_revenue"`
}

// RouteRevenue aggregates issued-ticket revenue per city pair.
type RouteRevenue struct {
	OriginCity      string  `json:"origin_city"`
	DestinationCity string  `json:"destination_city"`
	TicketCount     int     `json:"ticket_count"`
	Revenue         float64 `json:"revenue"`
}

// Repository persists reservations.
type Repository interface {
	// CreateShell inserts a reservation in created status. It returns
	// false without error when the locator is already taken, so callers
	// can retry with a fresh code.
	CreateShell(ctx context.Context, tx transaction.Tx, r *Reservation) (bool, error)

	GetByID(ctx context.Context, id int64) (*Reservation, error)

	// GetByIDForUpdate locks the reservation row for the duration of tx.
	GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id int64) (*Reservation, error)

	GetByLocator(ctx context.Context, locator string) (*Reservation, error)
	LocatorExists(ctx context.Context, locator string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*Summary, error)
	UpdateStatus(ctx context.Context, tx transaction.Tx, id int64, status Status) error

	// StaleCreatedIDs returns reservations still in created status older
	// than the given age.
	StaleCreatedIDs(ctx context.Context, olderThan time.Duration) ([]int64, error)
}

// TicketRepository persists tickets and enforces the seat invariant at
// the storage layer.
type TicketRepository interface {
	// SeatAvailable reports whether no non-refunded ticket holds the
	// (trip, seat) pair. Purely advisory: the write path re-checks.
	SeatAvailable(ctx context.Context, tripID int64, seatNumber int) (bool, error)

	// InsertIfSeatFree atomically inserts the ticket unless a
	// non-refunded ticket already holds its (trip, seat) pair. Returns
	// false without error when the seat is held.
	InsertIfSeatFree(ctx context.Context, tx transaction.Tx, t *Ticket) (bool, error)

	MarkRefunded(ctx context.Context, tx transaction.Tx, ids []int64) error
	MarkRefundedByReservation(ctx context.Context, tx transaction.Tx, reservationID int64) error
	MarkIssuedByReservation(ctx context.Context, tx transaction.Tx, reservationID int64) error

	// SumPrices recomputes the reservation total over non-refunded
	// tickets. tx may be nil for reads outside a transaction.
	SumPrices(ctx context.Context, tx transaction.Tx, reservationID int64) (float64, error)

	ListByReservation(ctx context.Context, reservationID int64) ([]*Ticket, error)
	ListDetails(ctx context.Context, reservationID int64) ([]*TicketDetail, error)
	HeldSeatNumbers(ctx context.Context, tripID int64) ([]int, error)
	CountHeld(ctx context.Context, tripID int64) (int, error)
	StatusStats(ctx context.Context) ([]*TicketStatusStat, error)
}

// PaymentRepository persists payments.
type PaymentRepository interface {
	// Insert stores a successful payment. Returns false without error
	// when a payment already exists for the reservation.
	Insert(ctx context.Context, tx transaction.Tx, p *Payment) (bool, error)

	ExistsForReservation(ctx context.Context, tx transaction.Tx, reservationID int64) (bool, error)
	GetByReservation(ctx context.Context, reservationID int64) (*Payment, error)
	RevenueSummary(ctx context.Context, from, to *time.Time) (*RevenueSummary, error)
	RevenueByRoute(ctx context.Context, from, to *time.Time) ([]*RouteRevenue, error)
}
