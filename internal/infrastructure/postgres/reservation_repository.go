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

type reservationRow struct {
	ID        int64     `db:"id"`
	Locator   string    `db:"locator"`
	Status    string    `db:"status"`
	OwnerID   *string   `db:"owner_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *reservationRow) toEntity() *reservation.Reservation {
	return &reservation.Reservation{
		ID: r.ID, Locator: r.Locator,
		Status: reservation.Status(r.Status), OwnerID: r.OwnerID,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const reservationSelect = `SELECT id, locator, status, owner_id, created_at, updated_at FROM reservations`

type ReservationRepository struct{ db *sqlx.DB }

func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// CreateShell inserts the reservation shell. A locator collision is not
// an error: ON CONFLICT DO NOTHING keeps the surrounding transaction
// usable and the caller retries with a fresh locator.
func (r *ReservationRepository) CreateShell(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) (bool, error) {
	query := `INSERT INTO reservations (locator, status, owner_id)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (locator) DO NOTHING
	          RETURNING id, created_at, updated_at`
	err := UnwrapTx(tx).QueryRowContext(ctx, query, res.Locator, string(res.Status), res.OwnerID).
		Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create reservation: %w", err)
	}
	return true, nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*reservation.Reservation, error) {
	var row reservationRow
	if err := r.db.GetContext(ctx, &row, reservationSelect+` WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return row.toEntity(), nil
}

// GetByIDForUpdate locks the reservation row until tx ends, serializing
// concurrent settlement and cancellation of the same reservation.
func (r *ReservationRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id int64) (*reservation.Reservation, error) {
	var row reservationRow
	if err := UnwrapTx(tx).GetContext(ctx, &row, reservationSelect+` WHERE id = $1 FOR UPDATE`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("get reservation for update: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ReservationRepository) GetByLocator(ctx context.Context, locator string) (*reservation.Reservation, error) {
	var row reservationRow
	if err := r.db.GetContext(ctx, &row, reservationSelect+` WHERE locator = $1`, locator); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("get reservation by locator: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ReservationRepository) LocatorExists(ctx context.Context, locator string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM reservations WHERE locator = $1)`, locator); err != nil {
		return false, fmt.Errorf("locator exists: %w", err)
	}
	return exists, nil
}

func (r *ReservationRepository) List(ctx context.Context, limit, offset int) ([]*reservation.Summary, error) {
	type summaryRow struct {
		reservationRow
		TotalPrice  float64 `db:"total_price"`
		TicketCount int     `db:"ticket_count"`
	}
	query := `
	SELECT r.id, r.locator, r.status, r.owner_id, r.created_at, r.updated_at,
	       COALESCE(SUM(t.price) FILTER (WHERE t.status <> 'refunded'), 0) AS total_price,
	       COUNT(t.id) FILTER (WHERE t.status <> 'refunded') AS ticket_count
	FROM reservations r
	LEFT JOIN tickets t ON t.reservation_id = r.id
	GROUP BY r.id
	ORDER BY r.created_at DESC
	LIMIT $1 OFFSET $2`
	var rows []summaryRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	result := make([]*reservation.Summary, len(rows))
	for i, row := range rows {
		result[i] = &reservation.Summary{
			ID:          row.ID,
			Locator:     row.Locator,
			Status:      reservation.Status(row.Status),
			OwnerID:     row.OwnerID,
			TotalPrice:  row.TotalPrice,
			TicketCount: row.TicketCount,
			CreatedAt:   row.CreatedAt,
		}
	}
	return result, nil
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, id int64, status reservation.Status) error {
	query := `UPDATE reservations SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := UnwrapTx(tx).ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) StaleCreatedIDs(ctx context.Context, olderThan time.Duration) ([]int64, error) {
	var ids []int64
	query := `SELECT id FROM reservations WHERE status = 'created' AND created_at < NOW() - $1::interval`
	interval := fmt.Sprintf("%d seconds", int(olderThan.Seconds()))
	if err := r.db.SelectContext(ctx, &ids, query, interval); err != nil {
		return nil, fmt.Errorf("stale reservations: %w", err)
	}
	return ids, nil
}

var _ reservation.Repository = (*ReservationRepository)(nil)
