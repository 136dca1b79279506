package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/emirhangull/Train-DB-APP/internal/domain/passenger"
)

type passengerRow struct {
	ID        int64     `db:"id"`
	FullName  string    `db:"full_name"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *passengerRow) toEntity() *passenger.Passenger {
	return &passenger.Passenger{
		ID: r.ID, FullName: r.FullName, Email: r.Email,
		Phone: r.Phone, CreatedAt: r.CreatedAt,
	}
}

type PassengerRepository struct{ db *sqlx.DB }

func NewPassengerRepository(db *sqlx.DB) *PassengerRepository {
	return &PassengerRepository{db: db}
}

func (r *PassengerRepository) Create(ctx context.Context, p *passenger.Passenger) error {
	query := `INSERT INTO passengers (full_name, email, phone) VALUES ($1, $2, $3) RETURNING id, created_at`
	if err := r.db.QueryRowContext(ctx, query, p.FullName, p.Email, p.Phone).Scan(&p.ID, &p.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return passenger.ErrEmailTaken
		}
		return fmt.Errorf("create passenger: %w", err)
	}
	return nil
}

func (r *PassengerRepository) GetByEmail(ctx context.Context, email string) (*passenger.Passenger, error) {
	var row passengerRow
	if err := r.db.GetContext(ctx, &row, `SELECT id, full_name, email, phone, created_at FROM passengers WHERE email = $1`, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, passenger.ErrPassengerNotFound
		}
		return nil, fmt.Errorf("get passenger by email: %w", err)
	}
	return row.toEntity(), nil
}

func (r *PassengerRepository) GetByID(ctx context.Context, id int64) (*passenger.Passenger, error) {
	var row passengerRow
	if err := r.db.GetContext(ctx, &row, `SELECT id, full_name, email, phone, created_at FROM passengers WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, passenger.ErrPassengerNotFound
		}
		return nil, fmt.Errorf("get passenger: %w", err)
	}
	return row.toEntity(), nil
}

func (r *PassengerRepository) List(ctx context.Context) ([]*passenger.Passenger, error) {
	var rows []passengerRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, full_name, email, phone, created_at FROM passengers ORDER BY full_name`); err != nil {
		return nil, fmt.Errorf("list passengers: %w", err)
	}
	passengers := make([]*passenger.Passenger, len(rows))
	for i, row := range rows {
		passengers[i] = row.toEntity()
	}
	return passengers, nil
}

var _ passenger.Repository = (*PassengerRepository)(nil)
