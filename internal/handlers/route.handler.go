package handlers

import (
	"context"
	"strconv"

	"github.com/fasthttp/router"

	"github.com/deliverytrujillo/dispatch/internal/model"
	"github.com/deliverytrujillo/dispatch/internal/render"
	"github.com/deliverytrujillo/dispatch/internal/services"
	xhttp "github.com/deliverytrujillo/dispatch/pkg/http"
)

type RouteService interface {
	List(ctx context.Context, f model.RouteFilter) ([]*model.OptimizedRoute, int64, error)
	Get(ctx context.Context, id int64) (*services.RouteDetail, error)
	Map(ctx context.Context, id int64) (*render.FeatureCollection, error)
}

type RouteHandler struct {
	svc RouteService
}

func RegisterRouteRoutes(e *router.Group, h *RouteHandler) {
	e.GET("/routes", h.ListRoutes)
	e.GET("/routes/{id}", h.GetRoute)
	e.GET("/routes/{id}/map", h.GetRouteMap)
}

func NewRouteHandler(routeService RouteService) *RouteHandler {
	return &RouteHandler{
		svc: routeService,
	}
}

type routeListResponse struct {
	Items []*model.OptimizedRoute `json:"items"`
	Total int64                   `json:"total"`
}

func (h *RouteHandler) ListRoutes(ctx *xhttp.RequestCtx) {
	var f model.RouteFilter

	if v := query(ctx, "from"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.From = &t
		}
	}
	if v := query(ctx, "to"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.To = &t
		}
	}
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Offset = n
		}
	}

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, routeListResponse{Items: items, Total: total})
}

func (h *RouteHandler) GetRoute(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid route id")
		return
	}
	detail, err := h.svc.Get(ctx, id)
	if err == services.ErrRouteNotFound {
		writeError(ctx, 404, err.Error())
		return
	}
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, detail)
}

func (h *RouteHandler) GetRouteMap(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid route id")
		return
	}
	fc, err := h.svc.Map(ctx, id)
	if err == services.ErrRouteNotFound {
		writeError(ctx, 404, err.Error())
		return
	}
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, fc)
}
