package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/emirhangull/Train-DB-APP/internal/domain/catalog"
)

type trainRow struct {
	ID        int64     `db:"id"`
	Code      string    `db:"code"`
	Name      string    `db:"name"`
	SeatCount int       `db:"seat_count"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *trainRow) toEntity() *catalog.Train {
	return &catalog.Train{ID: r.ID, Code: r.Code, Name: r.Name, SeatCount: r.SeatCount, CreatedAt: r.CreatedAt}
}

type TrainRepository struct{ db *sqlx.DB }

func NewTrainRepository(db *sqlx.DB) *TrainRepository { return &TrainRepository{db: db} }

func (r *TrainRepository) Create(ctx context.Context, t *catalog.Train) error {
	query := `INSERT INTO trains (code, name, seat_count) VALUES ($1, $2, $3) RETURNING id, created_at`
	if err := r.db.QueryRowContext(ctx, query, t.Code, t.Name, t.SeatCount).Scan(&t.ID, &t.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrTrainCodeTaken
		}
		return fmt.Errorf("create train: %w", err)
	}
	return nil
}

func (r *TrainRepository) GetByID(ctx context.Context, id int64) (*catalog.Train, error) {
	var row trainRow
	if err := r.db.GetContext(ctx, &row, `SELECT id, code, name, seat_count, created_at FROM trains WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrTrainNotFound
		}
		return nil, fmt.Errorf("get train: %w", err)
	}
	return row.toEntity(), nil
}

func (r *TrainRepository) List(ctx context.Context) ([]*catalog.Train, error) {
	var rows []trainRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, code, name, seat_count, created_at FROM trains ORDER BY code`); err != nil {
		return nil, fmt.Errorf("list trains: %w", err)
	}
	trains := make([]*catalog.Train, len(rows))
	for i, row := range rows {
		trains[i] = row.toEntity()
	}
	return trains, nil
}

func (r *TrainRepository) Update(ctx context.Context, t *catalog.Train) error {
	result, err := r.db.ExecContext(ctx, `UPDATE trains SET code = $1, name = $2, seat_count = $3 WHERE id = $4`, t.Code, t.Name, t.SeatCount, t.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrTrainCodeTaken
		}
		return fmt.Errorf("update train: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return catalog.ErrTrainNotFound
	}
	return nil
}

func (r *TrainRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM trains WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete train: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return catalog.ErrTrainNotFound
	}
	return nil
}

var _ catalog.TrainRepository = (*TrainRepository)(nil)
