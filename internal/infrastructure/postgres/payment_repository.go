package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/emirhangull/Train-DB-APP/internal/domain/reservation"
	"github.com/emirhangull/Train-DB-APP/internal/domain/transaction"
)

type paymentRow struct {
	ID            int64     `db:"id"`
	ReservationID int64     `db:"reservation_id"`
	Method        string    `db:"method"`
	Amount        float64   `db:"amount"`
	Status        string    `db:"status"`
	Reference     string    `db:"reference"`
	PaidAt        time.Time `db:"paid_at"`
}

func (r *paymentRow) toEntity() *reservation.Payment {
	return &reservation.Payment{
		ID: r.ID, ReservationID: r.ReservationID, Method: r.Method,
		Amount: r.Amount, Status: r.Status, Reference: r.Reference, PaidAt: r.PaidAt,
	}
}

type PaymentRepository struct{ db *sqlx.DB }

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository { return &PaymentRepository{db: db} }

func (r *PaymentRepository) ext(tx transaction.Tx) sqlx.ExtContext {
	if s := UnwrapTx(tx); s != nil {
		return s
	}
	return r.db
}

// Insert stores a successful payment. The unique index on reservation_id
// is the arbiter for duplicate payments; ON CONFLICT DO NOTHING turns a
// lost race into a zero-row result instead of a transaction abort.
func (r *PaymentRepository) Insert(ctx context.Context, tx transaction.Tx, p *reservation.Payment) (bool, error) {
	query := `INSERT INTO payments (reservation_id, method, amount, status, reference)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (reservation_id) DO NOTHING
	          RETURNING id, paid_at`
	err := UnwrapTx(tx).QueryRowContext(ctx, query, p.ReservationID, p.Method, p.Amount, p.Status, p.Reference).
		Scan(&p.ID, &p.PaidAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert payment: %w", err)
	}
	return true, nil
}

func (r *PaymentRepository) ExistsForReservation(ctx context.Context, tx transaction.Tx, reservationID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE reservation_id = $1)`
	if err := sqlx.GetContext(ctx, r.ext(tx), &exists, query, reservationID); err != nil {
		return false, fmt.Errorf("payment exists: %w", err)
	}
	return exists, nil
}

func (r *PaymentRepository) GetByReservation(ctx context.Context, reservationID int64) (*reservation.Payment, error) {
	var row paymentRow
	query := `SELECT id, reservation_id, method, amount, status, reference, paid_at FROM payments WHERE reservation_id = $1`
	if err := r.db.GetContext(ctx, &row, query, reservationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return row.toEntity(), nil
}

func (r *PaymentRepository) RevenueSummary(ctx context.Context, from, to *time.Time) (*reservation.RevenueSummary, error) {
	query := `SELECT COUNT(*) AS payment_count, COALESCE(SUM(amount), 0) AS total_revenue FROM payments WHERE status = 'success'`
	args := []interface{}{}
	if from != nil && to != nil {
		query += ` AND paid_at >= $1 AND paid_at < $2`
		args = append(args, *from, *to)
	}
	var row struct {
		PaymentCount int     `db:"payment_count"`
		TotalRevenue float64 `db:"total_revenue"`
	}
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, fmt.Errorf("revenue summary: %w", err)
	}
	return &reservation.RevenueSummary{PaymentCount: row.PaymentCount, TotalRevenue: row.TotalRevenue}, nil
}

func (r *PaymentRepository) RevenueByRoute(ctx context.Context, from, to *time.Time) ([]*reservation.RouteRevenue, error) {
	query := `
	SELECT so.city AS origin_city, sd.city AS destination_city,
	       COUNT(b.id) AS ticket_count, COALESCE(SUM(b.price), 0) AS revenue
	FROM tickets b
	JOIN trips t ON t.id = b.trip_id
	JOIN stations so ON so.id = t.origin_station_id
	JOIN stations sd ON sd.id = t.destination_station_id
	WHERE b.status = 'issued'`
	args := []interface{}{}
	if from != nil && to != nil {
		query += ` AND t.departs_at >= $1 AND t.departs_at < $2`
		args = append(args, *from, *to)
	}
	query += ` GROUP BY so.city, sd.city ORDER BY revenue DESC`
	type routeRow struct {
		OriginCity      string  `db:"origin_city"`
		DestinationCity string  `db:"destination_city"`
		TicketCount     int     `db:"ticket_count"`
		Revenue         float64 `db:"revenue"`
	}
	var rows []routeRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("revenue by route: %w", err)
	}
	result := make([]*reservation.RouteRevenue, len(rows))
	for i, row := range rows {
		result[i] = &reservation.RouteRevenue{
			OriginCity:      row.OriginCity,
			DestinationCity: row.DestinationCity,
			TicketCount:     row.TicketCount,
			Revenue:         row.Revenue,
		}
	}
	return result, nil
}

var _ reservation.PaymentRepository = (*PaymentRepository)(nil)
