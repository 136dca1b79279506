package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type ReportHandler struct {
	service ReportServiceInterface
}

func NewReportHandler(s ReportServiceInterface) *ReportHandler {
	return &ReportHandler{service: s}
}

// Occupancy godoc
// @Summary Per-trip occupancy report
// @Tags reports
// @Produce json
// @Success 200 {array} catalog.OccupancyRow
// @Router /reports/occupancy [get]
func (h *ReportHandler) Occupancy(c echo.Context) error {
	rows, err := h.service.TripOccupancy(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}

// Revenue godoc
// @Summary Revenue report
// @Description Settled revenue overall and by route, optionally windowed
// @Tags reports
// @Produce json
// @Param from query string false "Window start (YYYY-MM-DD)"
// @Param to query string false "Window end (YYYY-MM-DD)"
// @Success 200 {object} application.RevenueReport
// @Failure 400 {object} map[string]string
// @Router /reports/revenue [get]
func (h *ReportHandler) Revenue(c echo.Context) error {
	from, err := parseDateParam(c.QueryParam("from"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid from, expected YYYY-MM-DD")
	}
	to, err := parseDateParam(c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid to, expected YYYY-MM-DD")
	}
	report, err := h.service.Revenue(c.Request().Context(), from, to)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

// TicketStats godoc
// @Summary Ticket counts by status
// @Tags reports
// @Produce json
// @Success 200 {array} reservation.TicketStatusStat
// @Router /reports/tickets [get]
func (h *ReportHandler) TicketStats(c echo.Context) error {
	stats, err := h.service.TicketStats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

func parseDateParam(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
