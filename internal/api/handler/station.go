package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/emirhangull/Train-DB-APP/internal/domain/catalog"
)

type StationHandler struct {
	service CatalogServiceInterface
}

func NewStationHandler(s CatalogServiceInterface) *StationHandler {
	return &StationHandler{service: s}
}

type CreateStationRequest struct {
	Name string `json:"name" validate:"required" example:"Ankara Gar"`
	City string `json:"city" validate:"required" example:"Ankara"`
}

type StationResponse struct {
	ID   int64  `json:"id" example:"1"`
	Name string `json:"name" example:"Ankara Gar"`
	City string `json:"city" example:"Ankara"`
}

func toStationResponse(s *catalog.Station) StationResponse {
	return StationResponse{ID: s.ID, Name: s.Name, City: s.City}
}

// Create godoc
// @Summary Create a station
// @Tags stations
// @Accept json
// @Produce json
// @Param request body CreateStationRequest true "Station"
// @Success 201 {object} StationResponse
// @Failure 400 {object} map[string]string
// @Router /stations [post]
func (h *StationHandler) Create(c echo.Context) error {
	var req CreateStationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	st, err := h.service.CreateStation(c.Request().Context(), req.Name, req.City)
	if err != nil {
		if errors.Is(err, catalog.ErrStationNameRequired) || errors.Is(err, catalog.ErrStationCityRequired) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, toStationResponse(st))
}

// List godoc
// @Summary List stations
// @Tags stations
// @Produce json
// @Success 200 {array} StationResponse
// @Router /stations [get]
func (h *StationHandler) List(c echo.Context) error {
	stations, err := h.service.ListStations(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]StationResponse, len(stations))
	for i, s := range stations {
		resp[i] = toStationResponse(s)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetByID godoc
// @Summary Get a station
// @Tags stations
// @Produce json
// @Param id path int true "Station ID"
// @Success 200 {object} StationResponse
// @Failure 404 {object} map[string]string
// @Router /stations/{id} [get]
func (h *StationHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid station id")
	}
	st, err := h.service.GetStation(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrStationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toStationResponse(st))
}

// Update godoc
// @Summary Update a station
// @Tags stations
// @Accept json
// @Produce json
// @Param id path int true "Station ID"
// @Param request body CreateStationRequest true "Station"
// @Success 200 {object} StationResponse
// @Failure 404 {object} map[string]string
// @Router /stations/{id} [put]
func (h *StationHandler) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid station id")
	}
	var req CreateStationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	st, err := h.service.UpdateStation(c.Request().Context(), id, req.Name, req.City)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrStationNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, catalog.ErrStationNameRequired), errors.Is(err, catalog.ErrStationCityRequired):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toStationResponse(st))
}

// Delete godoc
// @Summary Delete a station
// @Tags stations
// @Param id path int true "Station ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /stations/{id} [delete]
func (h *StationHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid station id")
	}
	if err := h.service.DeleteStation(c.Request().Context(), id); err != nil {
		if errors.Is(err, catalog.ErrStationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
