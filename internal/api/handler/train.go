package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/emirhangull/Train-DB-APP/internal/domain/catalog"
)

type TrainHandler struct {
	service CatalogServiceInterface
}

func NewTrainHandler(s CatalogServiceInterface) *TrainHandler {
	return &TrainHandler{service: s}
}

type CreateTrainRequest struct {
	Code      string `json:"code" validate:"required" example:"YHT-101"`
	Name      string `json:"name" example:"Ankara Ekspresi"`
	SeatCount int    `json:"seat_count" validate:"required,min=1" example:"240"`
}

type TrainResponse struct {
	ID        int64  `json:"id" example:"1"`
	Code      string `json:"code" example:"YHT-101"`
	Name      string `json:"name" example:"Ankara Ekspresi"`
	SeatCount int    `json:"seat_count" example:"240"`
}

func toTrainResponse(t *catalog.Train) TrainResponse {
	return TrainResponse{ID: t.ID, Code: t.Code, Name: t.Name, SeatCount: t.SeatCount}
}

// Create godoc
// @Summary Create a train
// @Tags trains
// @Accept json
// @Produce json
// @Param request body CreateTrainRequest true "Train"
// @Success 201 {object} TrainResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "Train code already in use"
// @Router /trains [post]
func (h *TrainHandler) Create(c echo.Context) error {
	var req CreateTrainRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	t, err := h.service.CreateTrain(c.Request().Context(), req.Code, req.Name, req.SeatCount)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrTrainCodeTaken):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, catalog.ErrTrainCodeRequired), errors.Is(err, catalog.ErrInvalidSeatCount):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, toTrainResponse(t))
}

// List godoc
// @Summary List trains
// @Tags trains
// @Produce json
// @Success 200 {array} TrainResponse
// @Router /trains [get]
func (h *TrainHandler) List(c echo.Context) error {
	trains, err := h.service.ListTrains(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]TrainResponse, len(trains))
	for i, t := range trains {
		resp[i] = toTrainResponse(t)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetByID godoc
// @Summary Get a train
// @Tags trains
// @Produce json
// @Param id path int true "Train ID"
// @Success 200 {object} TrainResponse
// @Failure 404 {object} map[string]string
// @Router /trains/{id} [get]
func (h *TrainHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid train id")
	}
	t, err := h.service.GetTrain(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrTrainNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toTrainResponse(t))
}

// Update godoc
// @Summary Update a train
// @Tags trains
// @Accept json
// @Produce json
// @Param id path int true "Train ID"
// @Param request body CreateTrainRequest true "Train"
// @Success 200 {object} TrainResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Train code already in use"
// @Router /trains/{id} [put]
func (h *TrainHandler) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid train id")
	}
	var req CreateTrainRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	t, err := h.service.UpdateTrain(c.Request().Context(), id, req.Code, req.Name, req.SeatCount)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrTrainNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, catalog.ErrTrainCodeTaken):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, catalog.ErrTrainCodeRequired), errors.Is(err, catalog.ErrInvalidSeatCount):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toTrainResponse(t))
}

// Delete godoc
// @Summary Delete a train
// @Tags trains
// @Param id path int true "Train ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /trains/{id} [delete]
func (h *TrainHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid train id")
	}
	if err := h.service.DeleteTrain(c.Request().Context(), id); err != nil {
		if errors.Is(err, catalog.ErrTrainNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
