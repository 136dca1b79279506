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

type tripRow struct {
	ID                   int64     `db:"id"`
	TrainID              int64     `db:"train_id"`
	OriginStationID      int64     `db:"origin_station_id"`
	DestinationStationID int64     `db:"destination_station_id"`
	DepartsAt            time.Time `db:"departs_at"`
	ArrivesAt            time.Time `db:"arrives_at"`
	Status               string    `db:"status"`
	CreatedAt            time.Time `db:"created_at"`
}

func (r *tripRow) toEntity() *catalog.Trip {
	return &catalog.Trip{
		ID: r.ID, TrainID: r.TrainID,
		OriginStationID: r.OriginStationID, DestinationStationID: r.DestinationStationID,
		DepartsAt: r.DepartsAt, ArrivesAt: r.ArrivesAt,
		Status: catalog.TripStatus(r.Status), CreatedAt: r.CreatedAt,
	}
}

type tripDetailRow struct {
	tripRow
	TrainCode       string `db:"train_code"`
	TrainName       string `db:"train_name"`
	SeatCount       int    `db:"seat_count"`
	OriginName      string `db:"origin_name"`
	OriginCity      string `db:"origin_city"`
	DestinationName string `db:"destination_name"`
	DestinationCity string `db:"destination_city"`
}

func (r *tripDetailRow) toEntity() *catalog.TripDetail {
	return &catalog.TripDetail{
		Trip:            *r.tripRow.toEntity(),
		TrainCode:       r.TrainCode,
		TrainName:       r.TrainName,
		SeatCount:       r.SeatCount,
		OriginName:      r.OriginName,
		OriginCity:      r.OriginCity,
		DestinationName: r.DestinationName,
		DestinationCity: r.DestinationCity,
	}
}

const tripDetailSelect = `
SELECT t.id, t.train_id, t.origin_station_id, t.destination_station_id,
       t.departs_at, t.arrives_at, t.status, t.created_at,
       tr.code AS train_code, tr.name AS train_name, tr.seat_count,
       so.name AS origin_name, so.city AS origin_city,
       sd.name AS destination_name, sd.city AS destination_city
FROM trips t
JOIN trains tr ON tr.id = t.train_id
JOIN stations so ON so.id = t.origin_station_id
JOIN stations sd ON sd.id = t.destination_station_id`

type TripRepository struct{ db *sqlx.DB }

func NewTripRepository(db *sqlx.DB) *TripRepository { return &TripRepository{db: db} }

func (r *TripRepository) Create(ctx context.Context, t *catalog.Trip) error {
	query := `INSERT INTO trips (train_id, origin_station_id, destination_station_id, departs_at, arrives_at, status)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query,
		t.TrainID, t.OriginStationID, t.DestinationStationID,
		t.DepartsAt, t.ArrivesAt, string(t.Status),
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *TripRepository) GetByID(ctx context.Context, id int64) (*catalog.Trip, error) {
	var row tripRow
	query := `SELECT id, train_id, origin_station_id, destination_station_id, departs_at, arrives_at, status, created_at FROM trips WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrTripNotFound
		}
		return nil, fmt.Errorf("get trip: %w", err)
	}
	return row.toEntity(), nil
}

func (r *TripRepository) GetDetail(ctx context.Context, id int64) (*catalog.TripDetail, error) {
	var row tripDetailRow
	if err := r.db.GetContext(ctx, &row, tripDetailSelect+` WHERE t.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrTripNotFound
		}
		return nil, fmt.Errorf("get trip detail: %w", err)
	}
	return row.toEntity(), nil
}

func (r *TripRepository) List(ctx context.Context, limit, offset int) ([]*catalog.TripDetail, error) {
	var rows []tripDetailRow
	query := tripDetailSelect + ` ORDER BY t.departs_at LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	return toDetailEntities(rows), nil
}

func (r *TripRepository) Search(ctx context.Context, originID, destinationID int64, day time.Time) ([]*catalog.TripDetail, error) {
	var rows []tripDetailRow
	query := tripDetailSelect + `
	WHERE t.origin_station_id = $1
	  AND t.destination_station_id = $2
	  AND t.departs_at >= $3 AND t.departs_at < $4
	  AND t.status = 'open_for_sale'
	ORDER BY t.departs_at`
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	if err := r.db.SelectContext(ctx, &rows, query, originID, destinationID, dayStart, dayStart.AddDate(0, 0, 1)); err != nil {
		return nil, fmt.Errorf("search trips: %w", err)
	}
	return toDetailEntities(rows), nil
}

func (r *TripRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return catalog.ErrTripNotFound
	}
	return nil
}

func (r *TripRepository) Occupancy(ctx context.Context) ([]*catalog.OccupancyRow, error) {
	type occRow struct {
		TripID          int64     `db:"trip_id"`
		TrainCode       string    `db:"train_code"`
		OriginName      string    `db:"origin_name"`
		DestinationName string    `db:"destination_name"`
		DepartsAt       time.Time `db:"departs_at"`
		SeatCount       int       `db:"seat_count"`
		HeldSeats       int       `db:"held_seats"`
	}
	query := `
	SELECT t.id AS trip_id, tr.code AS train_code,
	       so.name AS origin_name, sd.name AS destination_name,
	       t.departs_at, tr.seat_count,
	       COUNT(b.id) FILTER (WHERE b.status <> 'refunded') AS held_seats
	FROM trips t
	JOIN trains tr ON tr.id = t.train_id
	JOIN stations so ON so.id = t.origin_station_id
	JOIN stations sd ON sd.id = t.destination_station_id
	LEFT JOIN tickets b ON b.trip_id = t.id
	WHERE t.status = 'open_for_sale'
	GROUP BY t.id, tr.code, so.name, sd.name, t.departs_at, tr.seat_count
	ORDER BY t.departs_at`
	var rows []occRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("trip occupancy: %w", err)
	}
	result := make([]*catalog.OccupancyRow, len(rows))
	for i, row := range rows {
		pct := 0.0
		if row.SeatCount > 0 {
			pct = float64(row.HeldSeats) * 100 / float64(row.SeatCount)
		}
		result[i] = &catalog.OccupancyRow{
			TripID:          row.TripID,
			TrainCode:       row.TrainCode,
			OriginName:      row.OriginName,
			DestinationName: row.DestinationName,
			DepartsAt:       row.DepartsAt,
			SeatCount:       row.SeatCount,
			HeldSeats:       row.HeldSeats,
			FreeSeats:       row.SeatCount - row.HeldSeats,
			OccupancyPct:    pct,
		}
	}
	return result, nil
}

func toDetailEntities(rows []tripDetailRow) []*catalog.TripDetail {
	trips := make([]*catalog.TripDetail, len(rows))
	for i, row := range rows {
		trips[i] = row.toEntity()
	}
	return trips
}

var _ catalog.TripRepository = (*TripRepository)(nil)
