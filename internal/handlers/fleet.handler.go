package handlers

import (
	"context"

	"github.com/fasthttp/router"

	"github.com/deliverytrujillo/dispatch/internal/model"
	"github.com/deliverytrujillo/dispatch/internal/services"
	xhttp "github.com/deliverytrujillo/dispatch/pkg/http"
)

type FleetService interface {
	Vehicles(ctx context.Context, status *string) ([]*model.Vehicle, error)
	Drivers(ctx context.Context, status *string) ([]*model.Driver, error)
}

type DashboardService interface {
	Get(ctx context.Context) (*services.Dashboard, error)
	DriverReport(ctx context.Context, driverID int64) (*services.DriverReport, error)
}

type FleetHandler struct {
	fleet     FleetService
	dashboard DashboardService
}

func RegisterFleetRoutes(e *router.Group, h *FleetHandler) {
	e.GET("/vehicles", h.ListVehicles)
	e.GET("/drivers", h.ListDrivers)
	e.GET("/drivers/{id}/report", h.GetDriverReport)
}

func NewFleetHandler(fleet FleetService, dashboard DashboardService) *FleetHandler {
	return &FleetHandler{
		fleet:     fleet,
		dashboard: dashboard,
	}
}

func (h *FleetHandler) ListVehicles(ctx *xhttp.RequestCtx) {
	var status *string
	if v := query(ctx, "status"); v != "" {
		status = &v
	}
	items, err := h.fleet.Vehicles(ctx, status)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]any{"items": items})
}

func (h *FleetHandler) ListDrivers(ctx *xhttp.RequestCtx) {
	var status *string
	if v := query(ctx, "status"); v != "" {
		status = &v
	}
	items, err := h.fleet.Drivers(ctx, status)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]any{"items": items})
}

func (h *FleetHandler) GetDriverReport(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid driver id")
		return
	}
	report, err := h.dashboard.DriverReport(ctx, id)
	if err == services.ErrDriverNotFound {
		writeError(ctx, 404, err.Error())
		return
	}
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, report)
}
