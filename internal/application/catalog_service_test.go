package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/emirhangull/Train-DB-APP/internal/domain/catalog"
)

// MockStationRepository implements catalog.StationRepository
type MockStationRepository struct {
	mock.Mock
}

func (m *MockStationRepository) Create(ctx context.Context, s *catalog.Station) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStationRepository) GetByID(ctx context.Context, id int64) (*catalog.Station, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Station), args.Error(1)
}

func (m *MockStationRepository) List(ctx context.Context) ([]*catalog.Station, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.Station), args.Error(1)
}

func (m *MockStationRepository) Update(ctx context.Context, s *catalog.Station) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStationRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTrainRepository implements catalog.TrainRepository
type MockTrainRepository struct {
	mock.Mock
}

func (m *MockTrainRepository) Create(ctx context.Context, t *catalog.Train) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTrainRepository) GetByID(ctx context.Context, id int64) (*catalog.Train, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Train), args.Error(1)
}

func (m *MockTrainRepository) List(ctx context.Context) ([]*catalog.Train, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.Train), args.Error(1)
}

func (m *MockTrainRepository) Update(ctx context.Context, t *catalog.Train) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTrainRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type catalogMocks struct {
	station *MockStationRepository
	train   *MockTrainRepository
	trip    *MockTripRepository
	ticket  *MockTicketRepository
}

func newCatalogService() (*CatalogService, *catalogMocks) {
	m := &catalogMocks{
		station: new(MockStationRepository),
		train:   new(MockTrainRepository),
		trip:    new(MockTripRepository),
		ticket:  new(MockTicketRepository),
	}
	svc := NewCatalogService(m.station, m.train, m.trip, m.ticket, nil)
	return svc, m
}

func TestCreateStation(t *testing.T) {
	t.Run("creates a valid station", func(t *testing.T) {
		svc, m := newCatalogService()
		m.station.On("Create", mock.Anything, mock.AnythingOfType("*catalog.Station")).Return(nil)

		st, err := svc.CreateStation(context.Background(), "Ankara Gar", "Ankara")
		require.NoError(t, err)
		assert.Equal(t, "Ankara Gar", st.Name)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		svc, m := newCatalogService()

		_, err := svc.CreateStation(context.Background(), "", "Ankara")
		assert.ErrorIs(t, err, catalog.ErrStationNameRequired)

		_, err = svc.CreateStation(context.Background(), "Ankara Gar", "")
		assert.ErrorIs(t, err, catalog.ErrStationCityRequired)

		m.station.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestUpdateStation(t *testing.T) {
	t.Run("updates an existing station", func(t *testing.T) {
		svc, m := newCatalogService()
		m.station.On("GetByID", mock.Anything, int64(1)).Return(&catalog.Station{ID: 1, Name: "Ankara Gar", City: "Ankara"}, nil)
		m.station.On("Update", mock.Anything, mock.AnythingOfType("*catalog.Station")).Return(nil)

		st, err := svc.UpdateStation(context.Background(), 1, "Ankara Gar YHT", "Ankara")
		require.NoError(t, err)
		assert.Equal(t, "Ankara Gar YHT", st.Name)
	})

	t.Run("missing station", func(t *testing.T) {
		svc, m := newCatalogService()
		m.station.On("GetByID", mock.Anything, int64(99)).Return(nil, catalog.ErrStationNotFound)

		_, err := svc.UpdateStation(context.Background(), 99, "X", "Y")
		assert.ErrorIs(t, err, catalog.ErrStationNotFound)
		m.station.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("invalid fields are rejected before the write", func(t *testing.T) {
		svc, m := newCatalogService()
		m.station.On("GetByID", mock.Anything, int64(1)).Return(&catalog.Station{ID: 1, Name: "Ankara Gar", City: "Ankara"}, nil)

		_, err := svc.UpdateStation(context.Background(), 1, "", "Ankara")
		assert.ErrorIs(t, err, catalog.ErrStationNameRequired)
		m.station.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestUpdateTrain(t *testing.T) {
	t.Run("updates an existing train", func(t *testing.T) {
		svc, m := newCatalogService()
		m.train.On("GetByID", mock.Anything, int64(1)).Return(&catalog.Train{ID: 1, Code: "YHT-101", SeatCount: 240}, nil)
		m.train.On("Update", mock.Anything, mock.AnythingOfType("*catalog.Train")).Return(nil)

		train, err := svc.UpdateTrain(context.Background(), 1, "YHT-102", "Ankara Ekspresi", 300)
		require.NoError(t, err)
		assert.Equal(t, "YHT-102", train.Code)
		assert.Equal(t, 300, train.SeatCount)
	})

	t.Run("taken code surfaces from storage", func(t *testing.T) {
		svc, m := newCatalogService()
		m.train.On("GetByID", mock.Anything, int64(1)).Return(&catalog.Train{ID: 1, Code: "YHT-101", SeatCount: 240}, nil)
		m.train.On("Update", mock.Anything, mock.AnythingOfType("*catalog.Train")).Return(catalog.ErrTrainCodeTaken)

		_, err := svc.UpdateTrain(context.Background(), 1, "YHT-202", "", 240)
		assert.ErrorIs(t, err, catalog.ErrTrainCodeTaken)
	})
}

func TestCreateTrain_Validation(t *testing.T) {
	svc, m := newCatalogService()

	_, err := svc.CreateTrain(context.Background(), "", "", 100)
	assert.ErrorIs(t, err, catalog.ErrTrainCodeRequired)

	_, err = svc.CreateTrain(context.Background(), "YHT-101", "", 0)
	assert.ErrorIs(t, err, catalog.ErrInvalidSeatCount)

	m.train.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateTrip(t *testing.T) {
	departs := time.Now().Add(24 * time.Hour)
	arrives := departs.Add(4 * time.Hour)

	validInput := func() CreateTripInput {
		return CreateTripInput{
			TrainID: 1, OriginID: 1, DestinationID: 2,
			DepartsAt: departs, ArrivesAt: arrives,
			Status: "open_for_sale",
		}
	}

	t.Run("creates a valid trip", func(t *testing.T) {
		svc, m := newCatalogService()
		m.train.On("GetByID", mock.Anything, int64(1)).Return(&catalog.Train{ID: 1, Code: "YHT-101", SeatCount: 240}, nil)
		m.station.On("GetByID", mock.Anything, int64(1)).Return(&catalog.Station{ID: 1}, nil)
		m.station.On("GetByID", mock.Anything, int64(2)).Return(&catalog.Station{ID: 2}, nil)
		m.trip.On("Create", mock.Anything, mock.AnythingOfType("*catalog.Trip")).Return(nil)

		trip, err := svc.CreateTrip(context.Background(), validInput())
		require.NoError(t, err)
		assert.Equal(t, catalog.TripStatusOpenForSale, trip.Status)
	})

	t.Run("rejects identical stations", func(t *testing.T) {
		svc, _ := newCatalogService()
		input := validInput()
		input.DestinationID = input.OriginID

		_, err := svc.CreateTrip(context.Background(), input)
		assert.ErrorIs(t, err, catalog.ErrSameStations)
	})

	t.Run("rejects arrival before departure", func(t *testing.T) {
		svc, _ := newCatalogService()
		input := validInput()
		input.ArrivesAt = input.DepartsAt.Add(-time.Hour)

		_, err := svc.CreateTrip(context.Background(), input)
		assert.ErrorIs(t, err, catalog.ErrInvalidSchedule)
	})

	t.Run("unknown train surfaces as not found", func(t *testing.T) {
		svc, m := newCatalogService()
		m.train.On("GetByID", mock.Anything, int64(1)).Return(nil, catalog.ErrTrainNotFound)

		_, err := svc.CreateTrip(context.Background(), validInput())
		assert.ErrorIs(t, err, catalog.ErrTrainNotFound)
		m.trip.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestSeatMap(t *testing.T) {
	svc, m := newCatalogService()

	detail := &catalog.TripDetail{
		Trip:      catalog.Trip{ID: 1, Status: catalog.TripStatusOpenForSale},
		TrainCode: "YHT-101",
		SeatCount: 4,
	}
	m.trip.On("GetDetail", mock.Anything, int64(1)).Return(detail, nil)
	m.ticket.On("HeldSeatNumbers", mock.Anything, int64(1)).Return([]int{2, 4}, nil)

	got, seats, err := svc.SeatMap(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "YHT-101", got.TrainCode)
	require.Len(t, seats, 4)
	assert.False(t, seats[0].Held)
	assert.True(t, seats[1].Held)
	assert.False(t, seats[2].Held)
	assert.True(t, seats[3].Held)
}

func TestSeatMap_TripNotFound(t *testing.T) {
	svc, m := newCatalogService()
	m.trip.On("GetDetail", mock.Anything, int64(9)).Return(nil, catalog.ErrTripNotFound)

	_, _, err := svc.SeatMap(context.Background(), 9)
	assert.ErrorIs(t, err, catalog.ErrTripNotFound)
}

func TestCountHeldSeats_WithoutCache(t *testing.T) {
	svc, m := newCatalogService()
	m.trip.On("GetByID", mock.Anything, int64(1)).Return(&catalog.Trip{ID: 1}, nil)
	m.ticket.On("CountHeld", mock.Anything, int64(1)).Return(3, nil)

	count, err := svc.CountHeldSeats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestListTrips_ClampsPaging(t *testing.T) {
	svc, m := newCatalogService()
	m.trip.On("List", mock.Anything, 20, 0).Return([]*catalog.TripDetail{}, nil).Once()
	m.trip.On("List", mock.Anything, 100, 5).Return([]*catalog.TripDetail{}, nil).Once()

	_, err := svc.ListTrips(context.Background(), 0, -3)
	require.NoError(t, err)
	_, err = svc.ListTrips(context.Background(), 500, 5)
	require.NoError(t, err)
	m.trip.AssertExpectations(t)
}
