package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deliverytrujillo/dispatch/internal/model"
	"github.com/deliverytrujillo/dispatch/internal/render"
	"github.com/deliverytrujillo/dispatch/internal/repository"
)

// dashboardWindow caps how many deliveries feed the dashboard artifacts.
// The operation is city-scale; this is generous.
const dashboardWindow = 1000

// driverReportDays bounds the per-day series on a driver report.
const driverReportDays = 30

// Dashboard aggregates everything the main screen renders in one response.
type Dashboard struct {
	Summary     DashboardSummary          `json:"summary"`
	StatusChart []render.PieSlice         `json:"status_chart"`
	DailyChart  []render.DayCount         `json:"daily_chart"`
	DriverChart []render.DriverSeries     `json:"driver_chart"`
	Map         *render.FeatureCollection `json:"map"`
}

type DashboardSummary struct {
	TotalDeliveries     int64   `json:"total_deliveries"`
	Last24h             int     `json:"last_24h"`
	Pending             int     `json:"pending"`
	HighPriorityPending int     `json:"high_priority_pending"`
	Assigned            int     `json:"assigned"`
	InTransit           int     `json:"in_transit"`
	Delivered           int     `json:"delivered"`
	Failed              int     `json:"failed"`
	SuccessRate         float64 `json:"success_rate"`
	RouteCount          int64   `json:"route_count"`
}

type DashboardService struct {
	deliveryRepo DeliveryRepository
	driverRepo   DriverRepository
	routeRepo    RouteRepository
}

func NewDashboardService(deliveryRepo DeliveryRepository, driverRepo DriverRepository, routeRepo RouteRepository) *DashboardService {
	return &DashboardService{
		deliveryRepo: deliveryRepo,
		driverRepo:   driverRepo,
		routeRepo:    routeRepo,
	}
}

func (s *DashboardService) Get(ctx context.Context) (*Dashboard, error) {
	deliveries, total, err := s.deliveryRepo.List(ctx, model.DeliveryFilter{
		Limit: dashboardWindow,
		Desc:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("dashboard deliveries: %w", err)
	}

	drivers, err := s.driverRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("dashboard drivers: %w", err)
	}

	_, routeCount, err := s.routeRepo.List(ctx, model.RouteFilter{Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("dashboard routes: %w", err)
	}

	summary := DashboardSummary{
		TotalDeliveries: total,
		RouteCount:      routeCount,
	}
	dayAgo := nowFunc().Add(-24 * time.Hour)
	for _, d := range deliveries {
		if d.CreatedAt.After(dayAgo) {
			summary.Last24h++
		}
		switch d.Status {
		case model.DeliveryStatusPending:
			summary.Pending++
			if d.Priority == 1 {
				summary.HighPriorityPending++
			}
		case model.DeliveryStatusAssigned:
			summary.Assigned++
		case model.DeliveryStatusInTransit:
			summary.InTransit++
		case model.DeliveryStatusDelivered:
			summary.Delivered++
		case model.DeliveryStatusFailed:
			summary.Failed++
		}
	}
	if len(deliveries) > 0 {
		summary.SuccessRate = float64(summary.Delivered) / float64(len(deliveries)) * 100
	}

	return &Dashboard{
		Summary:     summary,
		StatusChart: render.StatusBreakdown(deliveries),
		DailyChart:  render.DeliveriesPerDay(deliveries),
		DriverChart: render.DriverDeliveriesPerDay(deliveries, drivers),
		Map:         render.DeliveryMap(deliveries),
	}, nil
}

// DriverReport is the per-driver performance view.
type DriverReport struct {
	Driver     *model.Driver     `json:"driver"`
	Assigned   int               `json:"assigned"`
	Delivered  int               `json:"delivered"`
	Failed     int               `json:"failed"`
	Pending    int               `json:"pending"`
	Efficiency float64           `json:"efficiency"`
	PerDay     []render.DayCount `json:"per_day"`
}

// DriverReport builds the report for one driver from their assigned
// deliveries.
func (s *DashboardService) DriverReport(ctx context.Context, driverID int64) (*DriverReport, error) {
	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrDriverNotFound
	}
	if err != nil {
		return nil, err
	}

	deliveries, _, err := s.deliveryRepo.List(ctx, model.DeliveryFilter{
		DriverID: &driverID,
		Limit:    dashboardWindow,
	})
	if err != nil {
		return nil, fmt.Errorf("driver report deliveries: %w", err)
	}

	report := &DriverReport{
		Driver:   driver,
		Assigned: len(deliveries),
		PerDay:   render.DriverDayWindow(render.DeliveriesPerDay(deliveries), nowFunc(), driverReportDays),
	}
	for _, d := range deliveries {
		switch d.Status {
		case model.DeliveryStatusDelivered:
			report.Delivered++
		case model.DeliveryStatusFailed:
			report.Failed++
		case model.DeliveryStatusPending, model.DeliveryStatusAssigned:
			report.Pending++
		}
	}
	if report.Assigned > 0 {
		report.Efficiency = float64(report.Delivered) / float64(report.Assigned) * 100
	}
	return report, nil
}
