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

type stationRow struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	City      string    `db:"city"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *stationRow) toEntity() *catalog.Station {
	return &catalog.Station{ID: r.ID, Name: r.Name, City: r.City, CreatedAt: r.CreatedAt}
}

type StationRepository struct{ db *sqlx.DB }

func NewStationRepository(db *sqlx.DB) *StationRepository { return &StationRepository{db: db} }

func (r *StationRepository) Create(ctx context.Context, s *catalog.Station) error {
	query := `INSERT INTO stations (name, city) VALUES ($1, $2) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, s.Name, s.City).Scan(&s.ID, &s.CreatedAt)
}

func (r *StationRepository) GetByID(ctx context.Context, id int64) (*catalog.Station, error) {
	var row stationRow
	if err := r.db.GetContext(ctx, &row, `SELECT id, name, city, created_at FROM stations WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrStationNotFound
		}
		return nil, fmt.Errorf("get station: %w", err)
	}
	return row.toEntity(), nil
}

func (r *StationRepository) List(ctx context.Context) ([]*catalog.Station, error) {
	var rows []stationRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, name, city, created_at FROM stations ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	stations := make([]*catalog.Station, len(rows))
	for i, row := range rows {
		stations[i] = row.toEntity()
	}
	return stations, nil
}

func (r *StationRepository) Update(ctx context.Context, s *catalog.Station) error {
	result, err := r.db.ExecContext(ctx, `UPDATE stations SET name = $1, city = $2 WHERE id = $3`, s.Name, s.City, s.ID)
	if err != nil {
		return fmt.Errorf("update station: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return catalog.ErrStationNotFound
	}
	return nil
}

func (r *StationRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete station: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return catalog.ErrStationNotFound
	}
	return nil
}

var _ catalog.StationRepository = (*StationRepository)(nil)
