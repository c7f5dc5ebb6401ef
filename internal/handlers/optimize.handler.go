package handlers

import (
	"context"
	"errors"

	"github.com/fasthttp/router"

	"github.com/deliverytrujillo/dispatch/internal/optimizer"
	"github.com/deliverytrujillo/dispatch/internal/services"
	xhttp "github.com/deliverytrujillo/dispatch/pkg/http"
)

type OptimizeService interface {
	Optimize(ctx context.Context, req optimizer.TriggerRequest) (*optimizer.Result, error)
	Status(ctx context.Context) (*services.OptimizeStatus, error)
}

type OptimizeHandler struct {
	svc OptimizeService
}

func RegisterOptimizeRoutes(e *router.Group, h *OptimizeHandler) {
	e.POST("/optimize", h.Optimize)
	e.GET("/optimize/status", h.GetStatus)
}

func NewOptimizeHandler(optimizeService OptimizeService) *OptimizeHandler {
	return &OptimizeHandler{
		svc: optimizeService,
	}
}

type optimizeRequest struct {
	DeliveryIDs      []int64 `json:"delivery_ids"`
	OptimizationType string  `json:"optimization_type"`
	VehicleID        *int64  `json:"vehicle_id"`
	DriverID         *int64  `json:"driver_id"`
	RouteDate        string  `json:"route_date"`
	RequestedBy      string  `json:"requested_by"`
}

func (h *OptimizeHandler) Optimize(ctx *xhttp.RequestCtx) {
	var req optimizeRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	res, err := h.svc.Optimize(ctx, optimizer.TriggerRequest{
		DeliveryIDs:      req.DeliveryIDs,
		OptimizationType: req.OptimizationType,
		VehicleID:        req.VehicleID,
		DriverID:         req.DriverID,
		RouteDate:        req.RouteDate,
		RequestedBy:      req.RequestedBy,
	})
	if err != nil {
		writeOptimizeError(ctx, err)
		return
	}
	writeJSON(ctx, 200, res)
}

func (h *OptimizeHandler) GetStatus(ctx *xhttp.RequestCtx) {
	status, err := h.svc.Status(ctx)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, status)
}

// writeOptimizeError maps trigger failures onto HTTP statuses: bad
// selections are the caller's fault, engine refusals are a bad gateway.
func writeOptimizeError(ctx *xhttp.RequestCtx, err error) {
	var webhookErr *optimizer.WebhookError
	switch {
	case errors.As(err, &webhookErr):
		writeJSON(ctx, 502, map[string]any{
			"error":       "optimization engine rejected the request",
			"engine_code": webhookErr.StatusCode,
			"engine_body": webhookErr.Body,
		})
	case errors.Is(err, optimizer.ErrNoDeliveries),
		errors.Is(err, optimizer.ErrTooManyDeliveries),
		errors.Is(err, optimizer.ErrDuplicateDelivery),
		errors.Is(err, services.ErrUnknownDeliveries):
		writeError(ctx, 400, err.Error())
	default:
		writeError(ctx, 500, err.Error())
	}
}
