package handler

import (
	"context"
	"time"

	"github.com/emirhangull/Train-DB-APP/internal/application"
	"github.com/emirhangull/Train-DB-APP/internal/domain/catalog"
	"github.com/emirhangull/Train-DB-APP/internal/domain/passenger"
	"github.com/emirhangull/Train-DB-APP/internal/domain/reservation"
)

// CatalogServiceInterface covers station, train and trip management.
type CatalogServiceInterface interface {
	CreateStation(ctx context.Context, name, city string) (*catalog.Station, error)
	ListStations(ctx context.Context) ([]*catalog.Station, error)
	GetStation(ctx context.Context, id int64) (*catalog.Station, error)
	UpdateStation(ctx context.Context, id int64, name, city string) (*catalog.Station, error)
	DeleteStation(ctx context.Context, id int64) error

	CreateTrain(ctx context.Context, code, name string, seatCount int) (*catalog.Train, error)
	ListTrains(ctx context.Context) ([]*catalog.Train, error)
	GetTrain(ctx context.Context, id int64) (*catalog.Train, error)
	UpdateTrain(ctx context.Context, id int64, code, name string, seatCount int) (*catalog.Train, error)
	DeleteTrain(ctx context.Context, id int64) error

	CreateTrip(ctx context.Context, input application.CreateTripInput) (*catalog.Trip, error)
	ListTrips(ctx context.Context, limit, offset int) ([]*catalog.TripDetail, error)
	GetTrip(ctx context.Context, id int64) (*catalog.TripDetail, error)
	DeleteTrip(ctx context.Context, id int64) error
	SearchTrips(ctx context.Context, originID, destinationID int64, day time.Time) ([]*catalog.TripDetail, error)
	SeatMap(ctx context.Context, tripID int64) (*catalog.TripDetail, []catalog.SeatState, error)
	CountHeldSeats(ctx context.Context, tripID int64) (int, error)
}

// BookingServiceInterface covers the reservation lifecycle.
type BookingServiceInterface interface {
	CreateReservation(ctx context.Context, input application.CreateReservationInput) (*reservation.Reservation, error)
	SettlePayment(ctx context.Context, input application.SettlePaymentInput) (*reservation.Payment, error)
	GetPayment(ctx context.Context, reservationID int64) (*reservation.Payment, error)
	CancelReservation(ctx context.Context, id int64) (*reservation.Reservation, bool, error)
	GetByLocator(ctx context.Context, locator string) (*reservation.Reservation, []*reservation.TicketDetail, error)
	ListReservations(ctx context.Context, limit, offset int) ([]*reservation.Summary, error)
	ListPassengers(ctx context.Context) ([]*passenger.Passenger, error)
	GetPassenger(ctx context.Context, id int64) (*passenger.Passenger, error)
}

// ReportServiceInterface covers the reporting queries.
type ReportServiceInterface interface {
	TripOccupancy(ctx context.Context) ([]*catalog.OccupancyRow, error)
	Revenue(ctx context.Context, from, to *time.Time) (*application.RevenueReport, error)
	TicketStats(ctx context.Context) ([]*reservation.TicketStatusStat, error)
}
