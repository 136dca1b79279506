package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/emirhangull/Train-DB-APP/internal/domain/catalog"
	"github.com/emirhangull/Train-DB-APP/internal/domain/reservation"
	redisinfra "github.com/emirhangull/Train-DB-APP/internal/infrastructure/redis"
	"github.com/emirhangull/Train-DB-APP/internal/pkg/logger"
)

// CatalogService manages stations, trains and trips, and answers
// availability questions about a trip's seat inventory.
type CatalogService struct {
	stationRepo catalog.StationRepository
	trainRepo   catalog.TrainRepository
	tripRepo    catalog.TripRepository
	ticketRepo  reservation.TicketRepository
	occupancy   *redisinfra.OccupancyCache
}

func NewCatalogService(
	stations catalog.StationRepository,
	trains catalog.TrainRepository,
	trips catalog.TripRepository,
	tickets reservation.TicketRepository,
	occupancy *redisinfra.OccupancyCache,
) *CatalogService {
	return &CatalogService{
		stationRepo: stations,
		trainRepo:   trains,
		tripRepo:    trips,
		ticketRepo:  tickets,
		occupancy:   occupancy,
	}
}

func (s *CatalogService) CreateStation(ctx context.Context, name, city string) (*catalog.Station, error) {
	st := &catalog.Station{Name: name, City: city}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	if err := s.stationRepo.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *CatalogService) ListStations(ctx context.Context) ([]*catalog.Station, error) {
	return s.stationRepo.List(ctx)
}

func (s *CatalogService) GetStation(ctx context.Context, id int64) (*catalog.Station, error) {
	return s.stationRepo.GetByID(ctx, id)
}

func (s *CatalogService) UpdateStation(ctx context.Context, id int64, name, city string) (*catalog.Station, error) {
	st, err := s.stationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	st.Name = name
	st.City = city
	if err := st.Validate(); err != nil {
		return nil, err
	}
	if err := s.stationRepo.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *CatalogService) DeleteStation(ctx context.Context, id int64) error {
	return s.stationRepo.Delete(ctx, id)
}

func (s *CatalogService) CreateTrain(ctx context.Context, code, name string, seatCount int) (*catalog.Train, error) {
	t := &catalog.Train{Code: code, Name: name, SeatCount: seatCount}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.trainRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *CatalogService) ListTrains(ctx context.Context) ([]*catalog.Train, error) {
	return s.trainRepo.List(ctx)
}

func (s *CatalogService) GetTrain(ctx context.Context, id int64) (*catalog.Train, error) {
	return s.trainRepo.GetByID(ctx, id)
}

func (s *CatalogService) UpdateTrain(ctx context.Context, id int64, code, name string, seatCount int) (*catalog.Train, error) {
	t, err := s.trainRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Code = code
	t.Name = name
	t.SeatCount = seatCount
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.trainRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *CatalogService) DeleteTrain(ctx context.Context, id int64) error {
	return s.trainRepo.Delete(ctx, id)
}

type CreateTripInput struct {
	TrainID       int64
	OriginID      int64
	DestinationID int64
	DepartsAt     time.Time
	ArrivesAt     time.Time
	Status        string
}

func (s *CatalogService) CreateTrip(ctx context.Context, input CreateTripInput) (*catalog.Trip, error) {
	trip := catalog.NewTrip(input.TrainID, input.OriginID, input.DestinationID, input.DepartsAt, input.ArrivesAt, catalog.TripStatus(input.Status))
	if err := trip.Validate(); err != nil {
		return nil, err
	}
	// Referenced rows are checked up front so a missing train or station
	// surfaces as not-found rather than a storage error.
	if _, err := s.trainRepo.GetByID(ctx, trip.TrainID); err != nil {
		return nil, err
	}
	if _, err := s.stationRepo.GetByID(ctx, trip.OriginStationID); err != nil {
		return nil, err
	}
	if _, err := s.stationRepo.GetByID(ctx, trip.DestinationStationID); err != nil {
		return nil, err
	}
	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

func (s *CatalogService) ListTrips(ctx context.Context, limit, offset int) ([]*catalog.TripDetail, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.tripRepo.List(ctx, limit, offset)
}

func (s *CatalogService) GetTrip(ctx context.Context, id int64) (*catalog.TripDetail, error) {
	return s.tripRepo.GetDetail(ctx, id)
}

func (s *CatalogService) DeleteTrip(ctx context.Context, id int64) error {
	if err := s.tripRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// SearchTrips returns open-for-sale trips between two stations on the
// given calendar day.
func (s *CatalogService) SearchTrips(ctx context.Context, originID, destinationID int64, day time.Time) ([]*catalog.TripDetail, error) {
	return s.tripRepo.Search(ctx, originID, destinationID, day)
}

// SeatMap returns the trip with the hold state of every seat, numbered
// 1 through the train's seat count.
func (s *CatalogService) SeatMap(ctx context.Context, tripID int64) (*catalog.TripDetail, []catalog.SeatState, error) {
	detail, err := s.tripRepo.GetDetail(ctx, tripID)
	if err != nil {
		return nil, nil, err
	}
	held, err := s.ticketRepo.HeldSeatNumbers(ctx, tripID)
	if err != nil {
		return nil, nil, err
	}
	heldSet := make(map[int]struct{}, len(held))
	for _, n := range held {
		heldSet[n] = struct{}{}
	}
	seats := make([]catalog.SeatState, 0, detail.SeatCount)
	for n := 1; n <= detail.SeatCount; n++ {
		_, taken := heldSet[n]
		seats = append(seats, catalog.SeatState{SeatNumber: n, Held: taken})
	}
	return detail, seats, nil
}

// CountHeldSeats returns how many seats on the trip are currently held,
// served from the occupancy cache when warm.
func (s *CatalogService) CountHeldSeats(ctx context.Context, tripID int64) (int, error) {
	if _, err := s.tripRepo.GetByID(ctx, tripID); err != nil {
		return 0, err
	}
	if s.occupancy != nil {
		count, err := s.occupancy.GetHeldCount(ctx, tripID)
		if err == nil {
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("occupancy cache read failed", zap.Int64("trip_id", tripID), zap.Error(err))
		}
	}
	count, err := s.ticketRepo.CountHeld(ctx, tripID)
	if err != nil {
		return 0, err
	}
	if s.occupancy != nil {
		if err := s.occupancy.SetHeldCount(ctx, tripID, count, redisinfra.DefaultOccupancyTTL); err != nil {
			logger.Warn("occupancy cache write failed", zap.Int64("trip_id", tripID), zap.Error(err))
		}
	}
	return count, nil
}

func (s *CatalogService) invalidate(ctx context.Context, tripID int64) {
	if s.occupancy == nil {
		return
	}
	if err := s.occupancy.Invalidate(ctx, tripID); err != nil {
		logger.Warn("occupancy invalidation failed", zap.Int64("trip_id", tripID), zap.Error(err))
	}
}
