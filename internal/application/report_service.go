package application

import (
	"context"
	"time"

	"github.com/emirhangull/Train-DB-APP/internal/domain/catalog"
	"github.com/emirhangull/Train-DB-APP/internal/domain/reservation"
)

// ReportService aggregates occupancy, revenue and ticket statistics.
// All numbers are computed from storage on demand.
type ReportService struct {
	tripRepo    catalog.TripRepository
	ticketRepo  reservation.TicketRepository
	paymentRepo reservation.PaymentRepository
}

func NewReportService(trips catalog.TripRepository, tickets reservation.TicketRepository, payments reservation.PaymentRepository) *ReportService {
	return &ReportService{tripRepo: trips, ticketRepo: tickets, paymentRepo: payments}
}

// TripOccupancy lists per-trip held seat counts against capacity.
func (s *ReportService) TripOccupancy(ctx context.Context) ([]*catalog.OccupancyRow, error) {
	return s.tripRepo.Occupancy(ctx)
}

// RevenueReport combines the overall settled revenue with a breakdown by
// route for the optional [from, to) window.
type RevenueReport struct {
	Summary *reservation.RevenueSummary
	ByRoute []*reservation.RouteRevenue
}

func (s *ReportService) Revenue(ctx context.Context, from, to *time.Time) (*RevenueReport, error) {
	summary, err := s.paymentRepo.RevenueSummary(ctx, from, to)
	if err != nil {
		return nil, err
	}
	byRoute, err := s.paymentRepo.RevenueByRoute(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &RevenueReport{Summary: summary, ByRoute: byRoute}, nil
}

// TicketStats returns ticket counts grouped by status.
func (s *ReportService) TicketStats(ctx context.Context) ([]*reservation.TicketStatusStat, error) {
	return s.ticketRepo.StatusStats(ctx)
}
