package catalog

import "time"

// Station is a boarding point served by trips.
type Station struct {
	ID        int64
	Name      string
	City      string
	CreatedAt time.Time
}

// Validate checks station fields.
func (s *Station) Validate() error {
	if s.Name == "" {
		return ErrStationNameRequired
	}
	if s.City == "" {
		return ErrStationCityRequired
	}
	return nil
}

// Train is a vehicle with a fixed seat capacity.
type Train struct {
	ID        int64
	Code      string
	Name      string
	SeatCount int
	CreatedAt time.Time
}

// Validate checks train fields.
func (t *Train) Validate() error {
	if t.Code == "" {
		return ErrTrainCodeRequired
	}
	if t.SeatCount <= 0 {
		return ErrInvalidSeatCount
	}
	return nil
}

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	TripStatusPlanned     TripStatus = "planned"
	TripStatusOpenForSale TripStatus = "open_for_sale"
	TripStatusCancelled   TripStatus = "cancelled"
)

// Trip is a scheduled train run between two stations.
type Trip struct {
	ID                   int64
	TrainID              int64
	OriginStationID      int64
	DestinationStationID int64
	DepartsAt            time.Time
	ArrivesAt            time.Time
	Status               TripStatus
	CreatedAt            time.Time
}

// NewTrip creates a trip in planned status unless another status is given.
func NewTrip(trainID, originID, destinationID int64, departsAt, arrivesAt time.Time, status TripStatus) *Trip {
	if status == "" {
		status = TripStatusPlanned
	}
	return &Trip{
		TrainID:              trainID,
		OriginStationID:      originID,
		DestinationStationID: destinationID,
		DepartsAt:            departsAt,
		ArrivesAt:            arrivesAt,
		Status:               status,
		CreatedAt:            time.Now(),
	}
}

// IsOpenForSale reports whether tickets may be sold on the trip.
func (t *Trip) IsOpenForSale() bool {
	return t.Status == TripStatusOpenForSale
}

// Validate checks trip fields.
func (t *Trip) Validate() error {
	if t.TrainID == 0 {
		return ErrTrainRequired
	}
	if t.OriginStationID == 0 || t.DestinationStationID == 0 {
		return ErrStationRequired
	}
	if t.OriginStationID == t.DestinationStationID {
		return ErrSameStations
	}
	if !t.ArrivesAt.After(t.DepartsAt) {
		return ErrInvalidSchedule
	}
	switch t.Status {
	case TripStatusPlanned, TripStatusOpenForSale, TripStatusCancelled:
	default:
		return ErrInvalidTripStatus
	}
	return nil
}

// TripDetail is a trip joined with its train and stations, used by search
// results, the seat map and the occupancy report.
type TripDetail struct {
	Trip
	TrainCode       string
	TrainName       string
	SeatCount       int
	OriginName      string
	OriginCity      string
	DestinationName string
	DestinationCity string
}

// SeatState is one entry of a trip's seat map.
type SeatState struct {
	SeatNumber int  `json:"seat_number"`
	Held       bool `json:"held"`
}

// OccupancyRow is one trip of the occupancy report.
type OccupancyRow struct {
	TripID          int64     `json:"trip_id"`
	TrainCode       string    `json:"train_code"`
	OriginName      string    `json:"origin_station"`
	DestinationName string    `json:"destination_station"`
	DepartsAt       time.Time `json:"departs_at"`
	SeatCount       int       `json:"seat_count"`
	HeldSeats       int       `json:"held_seats"`
	FreeSeats       int       `json:"free_seats"`
	OccupancyPct    float64   `json:"occupancy_pct"`
}
