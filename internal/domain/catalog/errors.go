package catalog

import "errors"

// Catalog domain errors.
var (
	ErrStationNotFound     = errors.New("station not found")
	ErrTrainNotFound       = errors.New("train not found")
	ErrTripNotFound        = errors.New("trip not found")
	ErrTripNotOpen         = errors.New("trip is not open for sale")
	ErrStationNameRequired = errors.New("station name is required")
	ErrStationCityRequired = errors.New("station city is required")
	ErrTrainCodeRequired   = errors.New("train code is required")
	ErrTrainCodeTaken      = errors.New("train code already exists")
	ErrInvalidSeatCount    = errors.New("seat count must be positive")
	ErrTrainRequired       = errors.New("train is required")
	ErrStationRequired     = errors.New("origin and destination stations are required")
	ErrSameStations        = errors.New("origin and destination must differ")
	ErrInvalidSchedule     = errors.New("arrival must be after departure")
	ErrInvalidTripStatus   = errors.New("invalid trip status")
)
