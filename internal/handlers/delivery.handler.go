package handlers

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/fasthttp/router"

	"github.com/deliverytrujillo/dispatch/internal/model"
	"github.com/deliverytrujillo/dispatch/internal/services"
	xhttp "github.com/deliverytrujillo/dispatch/pkg/http"
)

type DeliveryService interface {
	Create(ctx context.Context, p model.DeliveryCreateRequest) (*model.Delivery, error)
	List(ctx context.Context, f model.DeliveryFilter) ([]*model.Delivery, int64, error)
	Get(ctx context.Context, id int64) (*model.Delivery, error)
	UpdateStatus(ctx context.Context, ids []int64, status model.DeliveryStatus) (*services.StatusUpdateResult, error)
	Export(ctx context.Context, f model.DeliveryFilter, format string) (*services.ExportFile, error)
}

type DeliveryHandler struct {
	svc DeliveryService
}

func RegisterDeliveryRoutes(e *router.Group, h *DeliveryHandler) {
	e.POST("/deliveries", h.CreateDelivery)
	e.GET("/deliveries", h.ListDeliveries)
	e.GET("/deliveries/export", h.ExportDeliveries)
	e.GET("/deliveries/{id}", h.GetDelivery)
	e.POST("/deliveries/status", h.UpdateDeliveryStatus)
}

func NewDeliveryHandler(deliveryService DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{
		svc: deliveryService,
	}
}

type createDeliveryRequest struct {
	CustomerName        string   `json:"customer_name"`
	CustomerPhone       string   `json:"customer_phone"`
	CustomerEmail       string   `json:"customer_email"`
	Street              string   `json:"street"`
	Urbanization        string   `json:"urbanization"`
	District            string   `json:"district"`
	PackageDescription  string   `json:"package_description"`
	PackageWeight       float64  `json:"package_weight"`
	Priority            int      `json:"priority"`
	SpecialInstructions string   `json:"special_instructions"`
	Latitude            *float64 `json:"latitude"`
	Longitude           *float64 `json:"longitude"`
}

type updateStatusRequest struct {
	DeliveryIDs []int64 `json:"delivery_ids"`
	Status      string  `json:"status"`
}

type deliveryListResponse struct {
	Items []*model.Delivery `json:"items"`
	Total int64             `json:"total"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *DeliveryHandler) CreateDelivery(ctx *xhttp.RequestCtx) {
	var req createDeliveryRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	p := model.DeliveryCreateRequest{
		CustomerName:        req.CustomerName,
		CustomerPhone:       req.CustomerPhone,
		CustomerEmail:       req.CustomerEmail,
		Street:              req.Street,
		Urbanization:        req.Urbanization,
		District:            req.District,
		PackageDescription:  req.PackageDescription,
		PackageWeight:       req.PackageWeight,
		Priority:            req.Priority,
		SpecialInstructions: req.SpecialInstructions,
		Latitude:            req.Latitude,
		Longitude:           req.Longitude,
	}
	d, err := h.svc.Create(ctx, p)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, d)
}

func (h *DeliveryHandler) ListDeliveries(ctx *xhttp.RequestCtx) {
	f := deliveryFilter(ctx)

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, deliveryListResponse{Items: items, Total: total})
}

func (h *DeliveryHandler) GetDelivery(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid delivery id")
		return
	}
	d, err := h.svc.Get(ctx, id)
	if err == services.ErrNotFound {
		writeError(ctx, 404, err.Error())
		return
	}
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, d)
}

func (h *DeliveryHandler) UpdateDeliveryStatus(ctx *xhttp.RequestCtx) {
	var req updateStatusRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	res, err := h.svc.UpdateStatus(ctx, req.DeliveryIDs, model.DeliveryStatus(req.Status))
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, res)
}

func (h *DeliveryHandler) ExportDeliveries(ctx *xhttp.RequestCtx) {
	format := query(ctx, "format")
	if format == "" {
		format = services.ExportFormatCSV
	}

	file, err := h.svc.Export(ctx, deliveryFilter(ctx), format)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}

	ctx.Response.Header.Set("Content-Type", file.ContentType)
	ctx.Response.Header.Set("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	ctx.Response.SetStatusCode(200)
	ctx.Response.SetBodyRaw(file.Body)
}

func deliveryFilter(ctx *xhttp.RequestCtx) model.DeliveryFilter {
	var f model.DeliveryFilter

	if v := query(ctx, "status"); v != "" {
		s := model.DeliveryStatus(v)
		f.Status = &s
	}
	if v := query(ctx, "priority"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Priority = &n
		}
	}
	if v := query(ctx, "district"); v != "" {
		f.District = &v
	}
	if v := query(ctx, "driver_id"); v != "" {
		if id, e := strconv.ParseInt(v, 10, 64); e == nil {
			f.DriverID = &id
		}
	}
	f.Search = query(ctx, "search")
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
	if strings.EqualFold(query(ctx, "order"), "desc") {
		f.Desc = true
	}
	return f
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

func pathInt64(ctx *xhttp.RequestCtx, name string) (int64, error) {
	v, _ := ctx.UserValue(name).(string)
	return strconv.ParseInt(v, 10, 64)
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func parseTime(s string) (time.Time, error) {
	// Accept RFC3339 or YYYY-MM-DD
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
