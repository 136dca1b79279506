package catalog

import (
	"context"
	"time"
)

// StationRepository persists stations.
type StationRepository interface {
	Create(ctx context.Context, s *Station) error
	GetByID(ctx context.Context, id int64) (*Station, error)
	List(ctx context.Context) ([]*Station, error)
	Update(ctx context.Context, s *Station) error
	Delete(ctx context.Context, id int64) error
}

// TrainRepository persists trains.
type TrainRepository interface {
	Create(ctx context.Context, t *Train) error
	GetByID(ctx context.Context, id int64) (*Train, error)
	List(ctx context.Context) ([]*Train, error)
	Update(ctx context.Context, t *Train) error
	Delete(ctx context.Context, id int64) error
}

// TripRepository persists trips and answers the occupancy report.
type TripRepository interface {
	Create(ctx context.Context, t *Trip) error
	GetByID(ctx context.Context, id int64) (*Trip, error)
	GetDetail(ctx context.Context, id int64) (*TripDetail, error)
	List(ctx context.Context, limit, offset int) ([]*TripDetail, error)

	// Search returns open-for-sale trips between two stations departing
	// on the given calendar day.
	Search(ctx context.Context, originID, destinationID int64, day time.Time) ([]*TripDetail, error)

	Delete(ctx context.Context, id int64) error

	// Occupancy reports seat usage for every open-for-sale trip.
	Occupancy(ctx context.Context) ([]*OccupancyRow, error)
}
