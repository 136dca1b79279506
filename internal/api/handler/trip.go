package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/emirhangull/Train-DB-APP/internal/application"
	"github.com/emirhangull/Train-DB-APP/internal/domain/catalog"
)

type TripHandler struct {
	service CatalogServiceInterface
}

func NewTripHandler(s CatalogServiceInterface) *TripHandler {
	return &TripHandler{service: s}
}

type CreateTripRequest struct {
	TrainID       int64     `json:"train_id" validate:"required" example:"1"`
	OriginID      int64     `json:"origin_station_id" validate:"required" example:"1"`
	DestinationID int64     `json:"destination_station_id" validate:"required" example:"2"`
	DepartsAt     time.Time `json:"departs_at" validate:"required"`
	ArrivesAt     time.Time `json:"arrives_at" validate:"required"`
	Status        string    `json:"status" validate:"omitempty,oneof=planned open_for_sale cancelled" example:"open_for_sale"`
}

type TripResponse struct {
	ID            int64     `json:"id" example:"1"`
	TrainID       int64     `json:"train_id" example:"1"`
	OriginID      int64     `json:"origin_station_id" example:"1"`
	DestinationID int64     `json:"destination_station_id" example:"2"`
	DepartsAt     time.Time `json:"departs_at"`
	ArrivesAt     time.Time `json:"arrives_at"`
	Status        string    `json:"status" example:"open_for_sale"`
}

type TripDetailResponse struct {
	TripResponse
	TrainCode       string `json:"train_code" example:"YHT-101"`
	TrainName       string `json:"train_name,omitempty" example:"Ankara Ekspresi"`
	SeatCount       int    `json:"seat_count" example:"240"`
	OriginName      string `json:"origin_station" example:"Ankara Gar"`
	OriginCity      string `json:"origin_city" example:"Ankara"`
	DestinationName string `json:"destination_station" example:"İstanbul Söğütlüçeşme"`
	DestinationCity string `json:"destination_city" example:"İstanbul"`
}

type SeatMapResponse struct {
	Trip      TripDetailResponse  `json:"trip"`
	Seats     []catalog.SeatState `json:"seats"`
	HeldCount int                 `json:"held_count"`
	FreeCount int                 `json:"free_count"`
}

func toTripResponse(t *catalog.Trip) TripResponse {
	return TripResponse{
		ID: t.ID, TrainID: t.TrainID,
		OriginID: t.OriginStationID, DestinationID: t.DestinationStationID,
		DepartsAt: t.DepartsAt, ArrivesAt: t.ArrivesAt, Status: string(t.Status),
	}
}

func toTripDetailResponse(d *catalog.TripDetail) TripDetailResponse {
	return TripDetailResponse{
		TripResponse:    toTripResponse(&d.Trip),
		TrainCode:       d.TrainCode,
		TrainName:       d.TrainName,
		SeatCount:       d.SeatCount,
		OriginName:      d.OriginName,
		OriginCity:      d.OriginCity,
		DestinationName: d.DestinationName,
		DestinationCity: d.DestinationCity,
	}
}

// Create godoc
// @Summary Create a trip
// @Tags trips
// @Accept json
// @Produce json
// @Param request body CreateTripRequest true "Trip"
// @Success 201 {object} TripResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string "Train or station not found"
// @Router /trips [post]
func (h *TripHandler) Create(c echo.Context) error {
	var req CreateTripRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	trip, err := h.service.CreateTrip(c.Request().Context(), application.CreateTripInput{
		TrainID:       req.TrainID,
		OriginID:      req.OriginID,
		DestinationID: req.DestinationID,
		DepartsAt:     req.DepartsAt,
		ArrivesAt:     req.ArrivesAt,
		Status:        req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrTrainNotFound), errors.Is(err, catalog.ErrStationNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, catalog.ErrSameStations),
			errors.Is(err, catalog.ErrInvalidSchedule),
			errors.Is(err, catalog.ErrInvalidTripStatus),
			errors.Is(err, catalog.ErrTrainRequired),
			errors.Is(err, catalog.ErrStationRequired):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, toTripResponse(trip))
}

// List godoc
// @Summary List trips
// @Tags trips
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} TripDetailResponse
// @Router /trips [get]
func (h *TripHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	trips, err := h.service.ListTrips(c.Request().Context(), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]TripDetailResponse, len(trips))
	for i, t := range trips {
		resp[i] = toTripDetailResponse(t)
	}
	return c.JSON(http.StatusOK, resp)
}

// Search godoc
// @Summary Search trips by route and day
// @Description Lists open-for-sale trips between two stations on a calendar day
// @Tags trips
// @Produce json
// @Param origin_id query int true "Origin station ID"
// @Param destination_id query int true "Destination station ID"
// @Param date query string true "Day (YYYY-MM-DD)"
// @Success 200 {array} TripDetailResponse
// @Failure 400 {object} map[string]string
// @Router /trips/search [get]
func (h *TripHandler) Search(c echo.Context) error {
	originID, err := strconv.ParseInt(c.QueryParam("origin_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid origin_id")
	}
	destinationID, err := strconv.ParseInt(c.QueryParam("destination_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid destination_id")
	}
	day, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}
	trips, err := h.service.SearchTrips(c.Request().Context(), originID, destinationID, day)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]TripDetailResponse, len(trips))
	for i, t := range trips {
		resp[i] = toTripDetailResponse(t)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetByID godoc
// @Summary Get a trip
// @Tags trips
// @Produce json
// @Param id path int true "Trip ID"
// @Success 200 {object} TripDetailResponse
// @Failure 404 {object} map[string]string
// @Router /trips/{id} [get]
func (h *TripHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid trip id")
	}
	trip, err := h.service.GetTrip(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrTripNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toTripDetailResponse(trip))
}

// SeatMap godoc
// @Summary Get a trip's seat map
// @Description Lists every seat of the trip with its hold state
// @Tags trips
// @Produce json
// @Param id path int true "Trip ID"
// @Success 200 {object} SeatMapResponse
// @Failure 404 {object} map[string]string
// @Router /trips/{id}/seats [get]
func (h *TripHandler) SeatMap(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid trip id")
	}
	trip, seats, err := h.service.SeatMap(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrTripNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	held := 0
	for _, s := range seats {
		if s.Held {
			held++
		}
	}
	return c.JSON(http.StatusOK, SeatMapResponse{
		Trip:      toTripDetailResponse(trip),
		Seats:     seats,
		HeldCount: held,
		FreeCount: len(seats) - held,
	})
}

// CountHeldSeats godoc
// @Summary Count held seats on a trip
// @Tags trips
// @Produce json
// @Param id path int true "Trip ID"
// @Success 200 {object} map[string]int
// @Failure 404 {object} map[string]string
// @Router /trips/{id}/seats/held [get]
func (h *TripHandler) CountHeldSeats(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid trip id")
	}
	count, err := h.service.CountHeldSeats(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrTripNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"held_count": count})
}

// Delete godoc
// @Summary Delete a trip
// @Tags trips
// @Param id path int true "Trip ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /trips/{id} [delete]
func (h *TripHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid trip id")
	}
	if err := h.service.DeleteTrip(c.Request().Context(), id); err != nil {
		if errors.Is(err, catalog.ErrTripNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
