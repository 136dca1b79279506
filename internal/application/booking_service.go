package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emirhangull/Train-DB-APP/internal/domain/catalog"
	"github.com/emirhangull/Train-DB-APP/internal/domain/passenger"
	"github.com/emirhangull/Train-DB-APP/internal/domain/reservation"
	"github.com/emirhangull/Train-DB-APP/internal/domain/transaction"
	redisinfra "github.com/emirhangull/Train-DB-APP/internal/infrastructure/redis"
	"github.com/emirhangull/Train-DB-APP/internal/pkg/logger"
	"github.com/emirhangull/Train-DB-APP/internal/pkg/metrics"
)

// locatorInsertAttempts bounds retries against storage-level locator
// collisions (a concurrent workflow inserting the same code between our
// probe and our insert).
const locatorInsertAttempts = 10

// BookingService drives the reservation, settlement and cancellation
// state machine. All coordination state lives in the database; the
// partial unique index on (trip, seat) over non-refunded tickets is the
// single arbiter for seat conflicts.
type BookingService struct {
	txManager       transaction.Manager
	reservationRepo reservation.Repository
	ticketRepo      reservation.TicketRepository
	paymentRepo     reservation.PaymentRepository
	passengerRepo   passenger.Repository
	tripRepo        catalog.TripRepository
	occupancy       *redisinfra.OccupancyCache
}

func NewBookingService(
	tm transaction.Manager,
	rr reservation.Repository,
	tr reservation.TicketRepository,
	pr reservation.PaymentRepository,
	pass passenger.Repository,
	trips catalog.TripRepository,
	occupancy *redisinfra.OccupancyCache,
) *BookingService {
	return &BookingService{
		txManager:       tm,
		reservationRepo: rr,
		ticketRepo:      tr,
		paymentRepo:     pr,
		passengerRepo:   pass,
		tripRepo:        trips,
		occupancy:       occupancy,
	}
}

type PassengerInput struct {
	FullName string
	Email    string
	Phone    string
}

type TicketInput struct {
	TripID         int64
	PassengerIndex int
	SeatNumber     int
	Price          float64
}

type CreateReservationInput struct {
	OwnerID    *string
	Passengers []PassengerInput
	Tickets    []TicketInput
}

// CreateReservation runs the booking workflow: optimistic pre-check,
// passenger resolution, reservation shell with a bounded locator retry
// loop, then per-seat allocation in input order. A seat lost to a
// concurrent workflow triggers compensation: this invocation's tickets
// are refunded and the reservation cancelled before the conflict is
// surfaced.
func (s *BookingService) CreateReservation(ctx context.Context, input CreateReservationInput) (*reservation.Reservation, error) {
	if len(input.Tickets) == 0 {
		return nil, reservation.ErrNoTickets
	}
	for _, t := range input.Tickets {
		if t.PassengerIndex < 0 || t.PassengerIndex >= len(input.Passengers) {
			return nil, reservation.ErrPassengerIndex
		}
	}

	tripIDs := distinctTripIDs(input.Tickets)
	for _, tripID := range tripIDs {
		trip, err := s.tripRepo.GetByID(ctx, tripID)
		if err != nil {
			return nil, err
		}
		if !trip.IsOpenForSale() {
			return nil, catalog.ErrTripNotOpen
		}
	}

	// Optimistic pre-check. Inherently racy: its only job is failing
	// fast with the full conflict list before anything is written. The
	// write path below re-checks atomically.
	var conflicts []reservation.SeatRef
	for _, t := range input.Tickets {
		free, err := s.ticketRepo.SeatAvailable(ctx, t.TripID, t.SeatNumber)
		if err != nil {
			return nil, err
		}
		if !free {
			conflicts = append(conflicts, reservation.SeatRef{TripID: t.TripID, SeatNumber: t.SeatNumber})
		}
	}
	if len(conflicts) > 0 {
		s.countConflict("precheck")
		s.countBooking("conflict")
		return nil, &reservation.SeatConflictError{Conflicts: conflicts}
	}

	passengerIDs, err := s.resolvePassengers(ctx, input.Passengers)
	if err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := s.createShell(ctx, tx, input.OwnerID)
	if err != nil {
		s.countBooking("locator_exhausted")
		return nil, err
	}

	var inserted []int64
	for _, in := range input.Tickets {
		t := reservation.NewTicket(res.ID, in.TripID, passengerIDs[in.PassengerIndex], in.SeatNumber, in.Price)
		if err := t.Validate(); err != nil {
			return nil, err
		}
		ok, err := s.ticketRepo.InsertIfSeatFree(ctx, tx, t)
		if err != nil {
			s.countBooking("error")
			return nil, err
		}
		if !ok {
			s.countConflict("insert")
			s.countBooking("conflict")
			conflict := &reservation.SeatConflictError{
				Conflicts: []reservation.SeatRef{{TripID: in.TripID, SeatNumber: in.SeatNumber}},
			}
			s.compensate(ctx, tx, res.ID, inserted, conflict)
			s.invalidateTrips(ctx, tripIDs)
			return nil, conflict
		}
		inserted = append(inserted, t.ID)
	}

	// Recompute the total from the tickets just written; a client-echoed
	// total is never trusted.
	total, err := s.ticketRepo.SumPrices(ctx, tx, res.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		s.countBooking("error")
		return nil, fmt.Errorf("commit reservation: %w", err)
	}

	s.invalidateTrips(ctx, tripIDs)
	s.countBooking("success")
	s.gaugeActive(1)
	res.TotalPrice = total
	return res, nil
}

// resolvePassengers maps each payload to a passenger id, preserving
// input order. Known emails are reused; unknown ones are inserted.
// Passenger rows deliberately survive a failed booking.
func (s *BookingService) resolvePassengers(ctx context.Context, inputs []PassengerInput) ([]int64, error) {
	ids := make([]int64, 0, len(inputs))
	for _, in := range inputs {
		p := passenger.New(in.FullName, in.Email, in.Phone)
		if err := p.Validate(); err != nil {
			return nil, err
		}
		existing, err := s.passengerRepo.GetByEmail(ctx, p.Email)
		if err == nil {
			ids = append(ids, existing.ID)
			continue
		}
		if !errors.Is(err, passenger.ErrPassengerNotFound) {
			return nil, err
		}
		if err := s.passengerRepo.Create(ctx, p); err != nil {
			// Lost an insert race on the email; the row now exists.
			if errors.Is(err, passenger.ErrEmailTaken) {
				existing, err := s.passengerRepo.GetByEmail(ctx, p.Email)
				if err != nil {
					return nil, err
				}
				ids = append(ids, existing.ID)
				continue
			}
			return nil, err
		}
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// createShell inserts the reservation row, retrying with a fresh locator
// on storage-level collisions.
func (s *BookingService) createShell(ctx context.Context, tx transaction.Tx, ownerID *string) (*reservation.Reservation, error) {
	for attempt := 0; attempt < locatorInsertAttempts; attempt++ {
		locator, err := reservation.GenerateLocator(ctx, s.reservationRepo.LocatorExists)
		if err != nil {
			return nil, err
		}
		res := reservation.NewReservation(locator, ownerID)
		ok, err := s.reservationRepo.CreateShell(ctx, tx, res)
		if err != nil {
			return nil, err
		}
		if ok {
			return res, nil
		}
	}
	return nil, reservation.ErrLocatorExhausted
}

// compensate marks this invocation's tickets refunded and the
// reservation cancelled, then commits the cleanup so the conflict leaves
// a consistent terminal record. Failure to clean up is logged, never
// allowed to mask the conflict itself.
func (s *BookingService) compensate(ctx context.Context, tx transaction.Tx, reservationID int64, ticketIDs []int64, cause error) {
	if err := s.ticketRepo.MarkRefunded(ctx, tx, ticketIDs); err != nil {
		logger.Error("compensation failed: refund tickets",
			zap.Int64("reservation_id", reservationID), zap.Error(err), zap.NamedError("cause", cause))
		return
	}
	if err := s.reservationRepo.UpdateStatus(ctx, tx, reservationID, reservation.StatusCancelled); err != nil {
		logger.Error("compensation failed: cancel reservation",
			zap.Int64("reservation_id", reservationID), zap.Error(err), zap.NamedError("cause", cause))
		return
	}
	if err := tx.Commit(); err != nil {
		logger.Error("compensation failed: commit",
			zap.Int64("reservation_id", reservationID), zap.Error(err), zap.NamedError("cause", cause))
	}
}

type SettlePaymentInput struct {
	ReservationID int64
	Method        string
	Amount        float64
}

// SettlePayment finalizes a reservation: one success payment, the
// reservation paid, every ticket issued, atomically. The reservation row
// is locked for the duration, so racing settlements serialize; the
// unique payment index backs that up. No precondition failure mutates
// state.
func (s *BookingService) SettlePayment(ctx context.Context, input SettlePaymentInput) (*reservation.Payment, error) {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := s.reservationRepo.GetByIDForUpdate(ctx, tx, input.ReservationID)
	if err != nil {
		return nil, err
	}
	switch res.Status {
	case reservation.StatusPaid:
		s.countPayment("duplicate")
		return nil, reservation.ErrAlreadyPaid
	case reservation.StatusCancelled:
		return nil, reservation.ErrReservationCancelled
	}
	exists, err := s.paymentRepo.ExistsForReservation(ctx, tx, res.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		s.countPayment("duplicate")
		return nil, reservation.ErrPaymentExists
	}

	total, err := s.ticketRepo.SumPrices(ctx, tx, res.ID)
	if err != nil {
		return nil, err
	}
	if !reservation.AmountMatches(input.Amount, total) {
		s.countPayment("amount_mismatch")
		return nil, &reservation.AmountMismatchError{Expected: total, Got: input.Amount}
	}

	p := &reservation.Payment{
		ReservationID: res.ID,
		Method:        input.Method,
		Amount:        input.Amount,
		Status:        reservation.PaymentStatusSuccess,
		Reference:     uuid.NewString(),
	}
	ok, err := s.paymentRepo.Insert(ctx, tx, p)
	if err != nil {
		s.countPayment("error")
		return nil, err
	}
	if !ok {
		s.countPayment("duplicate")
		return nil, reservation.ErrPaymentExists
	}
	if err := s.reservationRepo.UpdateStatus(ctx, tx, res.ID, reservation.StatusPaid); err != nil {
		return nil, err
	}
	if err := s.ticketRepo.MarkIssuedByReservation(ctx, tx, res.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		s.countPayment("error")
		return nil, fmt.Errorf("commit payment: %w", err)
	}

	s.countPayment("success")
	s.gaugeActive(-1)
	s.invalidateReservationTrips(ctx, res.ID)
	return p, nil
}

// CancelReservation cancels the reservation and refunds all its tickets
// atomically, freeing the seats. The second return value reports whether
// the reservation was already cancelled (a data-level no-op).
func (s *BookingService) CancelReservation(ctx context.Context, id int64) (*reservation.Reservation, bool, error) {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := s.reservationRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, false, err
	}
	if res.Status == reservation.StatusCancelled {
		return res, true, nil
	}
	wasAwaitingPayment := res.Status == reservation.StatusCreated
	if err := s.reservationRepo.UpdateStatus(ctx, tx, res.ID, reservation.StatusCancelled); err != nil {
		return nil, false, err
	}
	if err := s.ticketRepo.MarkRefundedByReservation(ctx, tx, res.ID); err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit cancellation: %w", err)
	}

	res.MarkCancelled()
	if wasAwaitingPayment {
		s.gaugeActive(-1)
	}
	s.invalidateReservationTrips(ctx, res.ID)
	return res, false, nil
}

// GetByLocator returns the reservation with its recomputed total and the
// enriched ticket list.
func (s *BookingService) GetByLocator(ctx context.Context, locator string) (*reservation.Reservation, []*reservation.TicketDetail, error) {
	res, err := s.reservationRepo.GetByLocator(ctx, locator)
	if err != nil {
		return nil, nil, err
	}
	total, err := s.ticketRepo.SumPrices(ctx, nil, res.ID)
	if err != nil {
		return nil, nil, err
	}
	res.TotalPrice = total
	details, err := s.ticketRepo.ListDetails(ctx, res.ID)
	if err != nil {
		return nil, nil, err
	}
	return res, details, nil
}

func (s *BookingService) ListReservations(ctx context.Context, limit, offset int) ([]*reservation.Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.reservationRepo.List(ctx, limit, offset)
}

// GetPayment returns the settled payment of a reservation.
func (s *BookingService) GetPayment(ctx context.Context, reservationID int64) (*reservation.Payment, error) {
	if _, err := s.reservationRepo.GetByID(ctx, reservationID); err != nil {
		return nil, err
	}
	return s.paymentRepo.GetByReservation(ctx, reservationID)
}

func (s *BookingService) ListPassengers(ctx context.Context) ([]*passenger.Passenger, error) {
	return s.passengerRepo.List(ctx)
}

func (s *BookingService) GetPassenger(ctx context.Context, id int64) (*passenger.Passenger, error) {
	return s.passengerRepo.GetByID(ctx, id)
}

// CancelStale cancels reservations that stayed in created status longer
// than maxAge, through the normal cancellation path.
func (s *BookingService) CancelStale(ctx context.Context, maxAge time.Duration) (int, error) {
	ids, err := s.reservationRepo.StaleCreatedIDs(ctx, maxAge)
	if err != nil {
		return 0, err
	}
	cancelled := 0
	for _, id := range ids {
		if _, already, err := s.CancelReservation(ctx, id); err != nil {
			logger.Warn("stale reservation cancel failed", zap.Int64("reservation_id", id), zap.Error(err))
		} else if !already {
			cancelled++
		}
	}
	return cancelled, nil
}

func (s *BookingService) invalidateReservationTrips(ctx context.Context, reservationID int64) {
	if s.occupancy == nil {
		return
	}
	tickets, err := s.ticketRepo.ListByReservation(ctx, reservationID)
	if err != nil {
		logger.Warn("occupancy invalidation skipped", zap.Int64("reservation_id", reservationID), zap.Error(err))
		return
	}
	seen := make(map[int64]struct{}, len(tickets))
	var tripIDs []int64
	for _, t := range tickets {
		if _, ok := seen[t.TripID]; !ok {
			seen[t.TripID] = struct{}{}
			tripIDs = append(tripIDs, t.TripID)
		}
	}
	s.invalidateTrips(ctx, tripIDs)
}

func (s *BookingService) invalidateTrips(ctx context.Context, tripIDs []int64) {
	if s.occupancy == nil {
		return
	}
	if err := s.occupancy.InvalidateAll(ctx, tripIDs); err != nil {
		logger.Warn("occupancy invalidation failed", zap.Error(err))
	}
}

func (s *BookingService) countBooking(status string) {
	if m := metrics.Get(); m != nil {
		m.BookingsTotal.WithLabelValues(status).Inc()
	}
}

func (s *BookingService) countPayment(status string) {
	if m := metrics.Get(); m != nil {
		m.PaymentsTotal.WithLabelValues(status).Inc()
	}
}

func (s *BookingService) countConflict(stage string) {
	if m := metrics.Get(); m != nil {
		m.SeatConflictsTotal.WithLabelValues(stage).Inc()
	}
}

// gaugeActive tracks reservations sitting in the created state.
func (s *BookingService) gaugeActive(delta float64) {
	if m := metrics.Get(); m != nil {
		m.ActiveReservations.Add(delta)
	}
}

func distinctTripIDs(tickets []TicketInput) []int64 {
	seen := make(map[int64]struct{}, len(tickets))
	var ids []int64
	for _, t := range tickets {
		if _, ok := seen[t.TripID]; !ok {
			seen[t.TripID] = struct{}{}
			ids = append(ids, t.TripID)
		}
	}
	return ids
}
