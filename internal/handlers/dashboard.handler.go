package handlers

import (
	"github.com/fasthttp/router"

	xhttp "github.com/deliverytrujillo/dispatch/pkg/http"
)

type DashboardHandler struct {
	svc DashboardService
}

func RegisterDashboardRoutes(e *router.Group, h *DashboardHandler) {
	e.GET("/dashboard", h.GetDashboard)
}

func NewDashboardHandler(dashboardService DashboardService) *DashboardHandler {
	return &DashboardHandler{
		svc: dashboardService,
	}
}

func (h *DashboardHandler) GetDashboard(ctx *xhttp.RequestCtx) {
	dash, err := h.svc.Get(ctx)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, dash)
}
