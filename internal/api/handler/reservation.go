package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/emirhangull/Train-DB-APP/internal/api"
	"github.com/emirhangull/Train-DB-APP/internal/application"
	"github.com/emirhangull/Train-DB-APP/internal/domain/catalog"
	"github.com/emirhangull/Train-DB-APP/internal/domain/passenger"
	"github.com/emirhangull/Train-DB-APP/internal/domain/reservation"
)

type ReservationHandler struct {
	service BookingServiceInterface
}

func NewReservationHandler(s BookingServiceInterface) *ReservationHandler {
	return &ReservationHandler{service: s}
}

type PassengerRequest struct {
	FullName string `json:"full_name" validate:"required" example:"Ayşe Yılmaz"`
	Email    string `json:"email" validate:"required,email" example:"ayse@example.com"`
	Phone    string `json:"phone" example:"+90 555 123 4567"`
}

type TicketRequest struct {
	TripID         int64   `json:"trip_id" validate:"required" example:"1"`
	PassengerIndex int     `json:"passenger_index" validate:"min=0" example:"0"`
	SeatNumber     int     `json:"seat_number" validate:"required,min=1" example:"12"`
	Price          float64 `json:"price" validate:"required,gt=0" example:"149.90"`
}

type CreateReservationRequest struct {
	Passengers []PassengerRequest `json:"passengers" validate:"required,min=1,dive"`
	Tickets    []TicketRequest    `json:"tickets" validate:"required,min=1,dive"`
}

type TicketDetailResponse struct {
	ID              int64     `json:"id"`
	TripID          int64     `json:"trip_id"`
	SeatNumber      int       `json:"seat_number"`
	Price           float64   `json:"price"`
	Status          string    `json:"status"`
	PassengerName   string    `json:"passenger_name"`
	PassengerEmail  string    `json:"passenger_email"`
	TrainCode       string    `json:"train_code"`
	DepartsAt       time.Time `json:"departs_at"`
	ArrivesAt       time.Time `json:"arrives_at"`
	OriginName      string    `json:"origin_station"`
	OriginCity      string    `json:"origin_city"`
	DestinationName string    `json:"destination_station"`
	DestinationCity string    `json:"destination_city"`
}

type ReservationResponse struct {
	ID         int64                  `json:"id" example:"1"`
	Locator    string                 `json:"locator" example:"K7KQ2N"`
	Status     string                 `json:"status" example:"created"`
	OwnerID    *string                `json:"owner_id,omitempty"`
	TotalPrice float64                `json:"total_price" example:"299.80"`
	CreatedAt  time.Time              `json:"created_at"`
	Tickets    []TicketDetailResponse `json:"tickets,omitempty"`
}

type PaymentRequest struct {
	Method string  `json:"method" validate:"required,oneof=card cash transfer" example:"card"`
	Amount float64 `json:"amount" validate:"required,gt=0" example:"299.80"`
}

type PaymentResponse struct {
	ID            int64     `json:"id" example:"1"`
	ReservationID int64     `json:"reservation_id" example:"1"`
	Method        string    `json:"method" example:"card"`
	Amount        float64   `json:"amount" example:"299.80"`
	Status        string    `json:"status" example:"success"`
	Reference     string    `json:"reference"`
	PaidAt        time.Time `json:"paid_at"`
}

type CancelResponse struct {
	ID               int64  `json:"id" example:"1"`
	Locator          string `json:"locator" example:"K7KQ2N"`
	Status           string `json:"status" example:"cancelled"`
	AlreadyCancelled bool   `json:"already_cancelled"`
}

func toReservationResponse(r *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID: r.ID, Locator: r.Locator, Status: string(r.Status),
		OwnerID: r.OwnerID, TotalPrice: r.TotalPrice, CreatedAt: r.CreatedAt,
	}
}

func toTicketDetailResponse(t *reservation.TicketDetail) TicketDetailResponse {
	return TicketDetailResponse{
		ID: t.ID, TripID: t.TripID, SeatNumber: t.SeatNumber,
		Price: t.Price, Status: string(t.Status),
		PassengerName: t.PassengerName, PassengerEmail: t.PassengerEmail,
		TrainCode: t.TrainCode, DepartsAt: t.DepartsAt, ArrivesAt: t.ArrivesAt,
		OriginName: t.OriginName, OriginCity: t.OriginCity,
		DestinationName: t.DestinationName, DestinationCity: t.DestinationCity,
	}
}

// Create godoc
// @Summary Create a reservation
// @Description Books seats on one or more trips. All seats are allocated or none are.
// @Tags reservations
// @Accept json
// @Produce json
// @Param X-User-ID header string false "Owner ID"
// @Param request body CreateReservationRequest true "Reservation"
// @Success 201 {object} ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "One or more seats already held"
// @Failure 503 {object} map[string]string "Locator space exhausted"
// @Router /reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	var req CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	input := application.CreateReservationInput{}
	if userID := c.Request().Header.Get("X-User-ID"); userID != "" {
		input.OwnerID = &userID
	}
	for _, p := range req.Passengers {
		input.Passengers = append(input.Passengers, application.PassengerInput{
			FullName: p.FullName, Email: p.Email, Phone: p.Phone,
		})
	}
	for _, t := range req.Tickets {
		input.Tickets = append(input.Tickets, application.TicketInput{
			TripID: t.TripID, PassengerIndex: t.PassengerIndex,
			SeatNumber: t.SeatNumber, Price: t.Price,
		})
	}

	r, err := h.service.CreateReservation(c.Request().Context(), input)
	if err != nil {
		var seatErr *reservation.SeatConflictError
		if errors.As(err, &seatErr) {
			return c.JSON(http.StatusConflict, api.ErrorResponse{
				Error:   seatErr.Error(),
				Code:    http.StatusConflict,
				Details: seatErr.Conflicts,
			})
		}
		switch {
		case errors.Is(err, catalog.ErrTripNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, catalog.ErrTripNotOpen):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, reservation.ErrLocatorExhausted):
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, reservation.ErrNoTickets),
			errors.Is(err, reservation.ErrPassengerIndex),
			errors.Is(err, reservation.ErrInvalidSeatNumber),
			errors.Is(err, reservation.ErrInvalidPrice),
			errors.Is(err, passenger.ErrNameRequired),
			errors.Is(err, passenger.ErrEmailRequired):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, toReservationResponse(r))
}

// List godoc
// @Summary List reservations
// @Tags reservations
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} reservation.Summary
// @Router /reservations [get]
func (h *ReservationHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	summaries, err := h.service.ListReservations(c.Request().Context(), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, summaries)
}

// GetByLocator godoc
// @Summary Look up a reservation by locator
// @Tags reservations
// @Produce json
// @Param locator path string true "Booking locator"
// @Success 200 {object} ReservationResponse
// @Failure 404 {object} map[string]string
// @Router /reservations/{locator} [get]
func (h *ReservationHandler) GetByLocator(c echo.Context) error {
	locator := c.Param("locator")
	r, tickets, err := h.service.GetByLocator(c.Request().Context(), locator)
	if err != nil {
		if errors.Is(err, reservation.ErrReservationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := toReservationResponse(r)
	for _, t := range tickets {
		resp.Tickets = append(resp.Tickets, toTicketDetailResponse(t))
	}
	return c.JSON(http.StatusOK, resp)
}

// Pay godoc
// @Summary Pay for a reservation
// @Description Records the payment, marks the reservation paid and issues all tickets
// @Tags reservations
// @Accept json
// @Produce json
// @Param id path int true "Reservation ID"
// @Param request body PaymentRequest true "Payment"
// @Success 201 {object} PaymentResponse
// @Failure 400 {object} map[string]string "Amount does not match the reservation total"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Already paid or cancelled"
// @Router /reservations/{id}/payment [post]
func (h *ReservationHandler) Pay(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid reservation id")
	}
	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := h.service.SettlePayment(c.Request().Context(), application.SettlePaymentInput{
		ReservationID: id, Method: req.Method, Amount: req.Amount,
	})
	if err != nil {
		var amountErr *reservation.AmountMismatchError
		if errors.As(err, &amountErr) {
			return echo.NewHTTPError(http.StatusBadRequest, amountErr.Error())
		}
		switch {
		case errors.Is(err, reservation.ErrReservationNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, reservation.ErrAlreadyPaid),
			errors.Is(err, reservation.ErrPaymentExists),
			errors.Is(err, reservation.ErrReservationCancelled):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, PaymentResponse{
		ID: p.ID, ReservationID: p.ReservationID, Method: p.Method,
		Amount: p.Amount, Status: p.Status, Reference: p.Reference, PaidAt: p.PaidAt,
	})
}

// GetPayment godoc
// @Summary Get the payment of a reservation
// @Tags reservations
// @Produce json
// @Param id path int true "Reservation ID"
// @Success 200 {object} PaymentResponse
// @Failure 404 {object} map[string]string
// @Router /reservations/{id}/payment [get]
func (h *ReservationHandler) GetPayment(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid reservation id")
	}
	p, err := h.service.GetPayment(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, reservation.ErrReservationNotFound) || errors.Is(err, reservation.ErrPaymentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, PaymentResponse{
		ID: p.ID, ReservationID: p.ReservationID, Method: p.Method,
		Amount: p.Amount, Status: p.Status, Reference: p.Reference, PaidAt: p.PaidAt,
	})
}

// Cancel godoc
// @Summary Cancel a reservation
// @Description Cancels the reservation and refunds all tickets, freeing the seats. Repeat calls are no-ops.
// @Tags reservations
// @Produce json
// @Param id path int true "Reservation ID"
// @Success 200 {object} CancelResponse
// @Failure 404 {object} map[string]string
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid reservation id")
	}
	r, already, err := h.service.CancelReservation(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, reservation.ErrReservationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, CancelResponse{
		ID: r.ID, Locator: r.Locator, Status: string(r.Status), AlreadyCancelled: already,
	})
}
