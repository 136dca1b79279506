package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/emirhangull/Train-DB-APP/internal/domain/reservation"
	"github.com/emirhangull/Train-DB-APP/internal/domain/transaction"
)

type ticketRow struct {
	ID            int64     `db:"id"`
	ReservationID int64     `db:"reservation_id"`
	TripID        int64     `db:"trip_id"`
	PassengerID   int64     `db:"passenger_id"`
	SeatNumber    int       `db:"seat_number"`
	Price         float64   `db:"price"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r *ticketRow) toEntity() reservation.Ticket {
	return reservation.Ticket{
		ID: r.ID, ReservationID: r.ReservationID, TripID: r.TripID,
		PassengerID: r.PassengerID, SeatNumber: r.SeatNumber, Price: r.Price,
		Status: reservation.TicketStatus(r.Status),
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type TicketRepository struct{ db *sqlx.DB }

func NewTicketRepository(db *sqlx.DB) *TicketRepository { return &TicketRepository{db: db} }

// ext returns the transaction when one is given, otherwise the pool.
func (r *TicketRepository) ext(tx transaction.Tx) sqlx.ExtContext {
	if s := UnwrapTx(tx); s != nil {
		return s
	}
	return r.db
}

func (r *TicketRepository) SeatAvailable(ctx context.Context, tripID int64, seatNumber int) (bool, error) {
	var held bool
	query := `SELECT EXISTS (SELECT 1 FROM tickets WHERE trip_id = $1 AND seat_number = $2 AND status <> 'refunded')`
	if err := r.db.GetContext(ctx, &held, query, tripID, seatNumber); err != nil {
		return false, fmt.Errorf("seat availability: %w", err)
	}
	return !held, nil
}

// InsertIfSeatFree inserts the ticket unless its (trip, seat) pair is
// held. The conflict target is the partial unique index over non-refunded
// tickets, so a lost race yields zero rows instead of aborting the
// surrounding transaction.
func (r *TicketRepository) InsertIfSeatFree(ctx context.Context, tx transaction.Tx, t *reservation.Ticket) (bool, error) {
	query := `INSERT INTO tickets (reservation_id, trip_id, passenger_id, seat_number, price, status)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (trip_id, seat_number) WHERE status <> 'refunded' DO NOTHING
	          RETURNING id, created_at, updated_at`
	err := UnwrapTx(tx).QueryRowContext(ctx, query,
		t.ReservationID, t.TripID, t.PassengerID, t.SeatNumber, t.Price, string(t.Status),
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert ticket: %w", err)
	}
	return true, nil
}

func (r *TicketRepository) MarkRefunded(ctx context.Context, tx transaction.Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE tickets SET status = 'refunded', updated_at = NOW() WHERE id = ANY($1)`
	if _, err := r.ext(tx).ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("refund tickets: %w", err)
	}
	return nil
}

func (r *TicketRepository) MarkRefundedByReservation(ctx context.Context, tx transaction.Tx, reservationID int64) error {
	query := `UPDATE tickets SET status = 'refunded', updated_at = NOW() WHERE reservation_id = $1 AND status <> 'refunded'`
	if _, err := r.ext(tx).ExecContext(ctx, query, reservationID); err != nil {
		return fmt.Errorf("refund reservation tickets: %w", err)
	}
	return nil
}

func (r *TicketRepository) MarkIssuedByReservation(ctx context.Context, tx transaction.Tx, reservationID int64) error {
	query := `UPDATE tickets SET status = 'issued', updated_at = NOW() WHERE reservation_id = $1 AND status = 'reserved'`
	if _, err := r.ext(tx).ExecContext(ctx, query, reservationID); err != nil {
		return fmt.Errorf("issue reservation tickets: %w", err)
	}
	return nil
}

func (r *TicketRepository) SumPrices(ctx context.Context, tx transaction.Tx, reservationID int64) (float64, error) {
	var total float64
	query := `SELECT COALESCE(SUM(price), 0) FROM tickets WHERE reservation_id = $1 AND status <> 'refunded'`
	if err := sqlx.GetContext(ctx, r.ext(tx), &total, query, reservationID); err != nil {
		return 0, fmt.Errorf("sum ticket prices: %w", err)
	}
	return total, nil
}

func (r *TicketRepository) ListByReservation(ctx context.Context, reservationID int64) ([]*reservation.Ticket, error) {
	var rows []ticketRow
	query := `SELECT id, reservation_id, trip_id, passenger_id, seat_number, price, status, created_at, updated_at
	          FROM tickets WHERE reservation_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &rows, query, reservationID); err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	tickets := make([]*reservation.Ticket, len(rows))
	for i, row := range rows {
		t := row.toEntity()
		tickets[i] = &t
	}
	return tickets, nil
}

func (r *TicketRepository) ListDetails(ctx context.Context, reservationID int64) ([]*reservation.TicketDetail, error) {
	type detailRow struct {
		ticketRow
		PassengerName   string    `db:"passenger_name"`
		PassengerEmail  string    `db:"passenger_email"`
		PassengerPhone  string    `db:"passenger_phone"`
		TrainCode       string    `db:"train_code"`
		DepartsAt       time.Time `db:"departs_at"`
		ArrivesAt       time.Time `db:"arrives_at"`
		OriginName      string    `db:"origin_name"`
		OriginCity      string    `db:"origin_city"`
		DestinationName string    `db:"destination_name"`
		DestinationCity string    `db:"destination_city"`
	}
	query := `
	SELECT b.id, b.reservation_id, b.trip_id, b.passenger_id, b.seat_number, b.price, b.status, b.created_at, b.updated_at,
	       p.full_name AS passenger_name, p.email AS passenger_email, p.phone AS passenger_phone,
	       tr.code AS train_code, t.departs_at, t.arrives_at,
	       so.name AS origin_name, so.city AS origin_city,
	       sd.name AS destination_name, sd.city AS destination_city
	FROM tickets b
	JOIN passengers p ON p.id = b.passenger_id
	JOIN trips t ON t.id = b.trip_id
	JOIN trains tr ON tr.id = t.train_id
	JOIN stations so ON so.id = t.origin_station_id
	JOIN stations sd ON sd.id = t.destination_station_id
	WHERE b.reservation_id = $1
	ORDER BY b.id`
	var rows []detailRow
	if err := r.db.SelectContext(ctx, &rows, query, reservationID); err != nil {
		return nil, fmt.Errorf("list ticket details: %w", err)
	}
	details := make([]*reservation.TicketDetail, len(rows))
	for i, row := range rows {
		details[i] = &reservation.TicketDetail{
			Ticket:          row.ticketRow.toEntity(),
			PassengerName:   row.PassengerName,
			PassengerEmail:  row.PassengerEmail,
			PassengerPhone:  row.PassengerPhone,
			TrainCode:       row.TrainCode,
			DepartsAt:       row.DepartsAt,
			ArrivesAt:       row.ArrivesAt,
			OriginName:      row.OriginName,
			OriginCity:      row.OriginCity,
			DestinationName: row.DestinationName,
			DestinationCity: row.DestinationCity,
		}
	}
	return details, nil
}

func (r *TicketRepository) HeldSeatNumbers(ctx context.Context, tripID int64) ([]int, error) {
	var seats []int
	query := `SELECT seat_number FROM tickets WHERE trip_id = $1 AND status <> 'refunded' ORDER BY seat_number`
	if err := r.db.SelectContext(ctx, &seats, query, tripID); err != nil {
		return nil, fmt.Errorf("held seats: %w", err)
	}
	return seats, nil
}

func (r *TicketRepository) CountHeld(ctx context.Context, tripID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM tickets WHERE trip_id = $1 AND status <> 'refunded'`
	if err := r.db.GetContext(ctx, &count, query, tripID); err != nil {
		return 0, fmt.Errorf("count held seats: %w", err)
	}
	return count, nil
}

func (r *TicketRepository) StatusStats(ctx context.Context) ([]*reservation.TicketStatusStat, error) {
	type statRow struct {
		Status string  `db:"status"`
		Count  int     `db:"count"`
		Total  float64 `db:"total"`
	}
	var rows []statRow
	query := `SELECT status, COUNT(*) AS count, COALESCE(SUM(price), 0) AS total FROM tickets GROUP BY status ORDER BY status`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("ticket stats: %w", err)
	}
	stats := make([]*reservation.TicketStatusStat, len(rows))
	for i, row := range rows {
		stats[i] = &reservation.TicketStatusStat{
			Status: reservation.TicketStatus(row.Status),
			Count:  row.Count,
			Total:  row.Total,
		}
	}
	return stats, nil
}

var _ reservation.TicketRepository = (*TicketRepository)(nil)
