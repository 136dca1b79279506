package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/emirhangull/Train-DB-APP/internal/domain/passenger"
)

type PassengerHandler struct {
	service BookingServiceInterface
}

func NewPassengerHandler(s BookingServiceInterface) *PassengerHandler {
	return &PassengerHandler{service: s}
}

type PassengerResponse struct {
	ID        int64     `json:"id" example:"1"`
	FullName  string    `json:"full_name" example:"Ayşe Yılmaz"`
	Email     string    `json:"email" example:"ayse@example.com"`
	Phone     string    `json:"phone,omitempty" example:"+90 555 123 4567"`
	CreatedAt time.Time `json:"created_at"`
}

func toPassengerResponse(p *passenger.Passenger) PassengerResponse {
	return PassengerResponse{
		ID:        p.ID,
		FullName:  p.FullName,
		Email:     p.Email,
		Phone:     p.Phone,
		CreatedAt: p.CreatedAt,
	}
}

// List godoc
// @Summary List passengers
// @Tags passengers
// @Produce json
// @Success 200 {array} PassengerResponse
// @Router /passengers [get]
func (h *PassengerHandler) List(c echo.Context) error {
	passengers, err := h.service.ListPassengers(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]PassengerResponse, len(passengers))
	for i, p := range passengers {
		resp[i] = toPassengerResponse(p)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetByID godoc
// @Summary Get a passenger
// @Tags passengers
// @Produce json
// @Param id path int true "Passenger ID"
// @Success 200 {object} PassengerResponse
// @Failure 404 {object} map[string]string
// @Router /passengers/{id} [get]
func (h *PassengerHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid passenger id")
	}
	p, err := h.service.GetPassenger(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, passenger.ErrPassengerNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toPassengerResponse(p))
}
