package optimizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/deliverytrujillo/dispatch/internal/model"
	"github.com/deliverytrujillo/dispatch/internal/repository"
	"github.com/deliverytrujillo/dispatch/pkg/logger"
	"github.com/deliverytrujillo/dispatch/pkg/prom"
)

// MaxDeliveriesPerTrigger bounds a single optimization batch. The workflow's
// routing step degrades sharply past this many waypoints.
const MaxDeliveriesPerTrigger = 25

const requestLocation = "Trujillo, Peru"

var (
	ErrNoDeliveries      = errors.New("optimizer: no deliveries selected")
	ErrTooManyDeliveries = fmt.Errorf("optimizer: more than %d deliveries selected", MaxDeliveriesPerTrigger)
	ErrDuplicateDelivery = errors.New("optimizer: duplicate delivery id in selection")
)

// Payload is the wire shape the optimization workflow expects.
type Payload struct {
	DeliveryIDs []int64    `json:"delivery_ids"`
	Parameters  Parameters `json:"parameters"`
	Metadata    Metadata   `json:"metadata"`
}

type Parameters struct {
	OptimizationType string `json:"optimization_type"`
	VehicleID        *int64 `json:"vehicle_id,omitempty"`
	DriverID         *int64 `json:"driver_id,omitempty"`
	RouteDate        string `json:"route_date"`
	MaxWaypoints     int    `json:"max_waypoints"`
}

type Metadata struct {
	RequestedBy string `json:"requested_by"`
	RequestedAt string `json:"requested_at"`
	Location    string `json:"location"`
	RequestID   string `json:"request_id"`
}

// TriggerRequest is what callers fill in; everything else in the payload is
// derived here.
type TriggerRequest struct {
	DeliveryIDs      []int64
	OptimizationType string
	VehicleID        *int64
	DriverID         *int64
	RouteDate        string
	RequestedBy      string
}

// Result reports the outcome of one trigger. Confirmed is true only when the
// polled route echoes the request id; an unconfirmed route is the best-effort
// newest row and may belong to an earlier run.
type Result struct {
	RequestID string                `json:"request_id"`
	Route     *model.OptimizedRoute `json:"route,omitempty"`
	Confirmed bool                  `json:"confirmed"`
}

// routeReader is the slice of the route repository the trigger needs.
type routeReader interface {
	Latest(ctx context.Context) (*model.OptimizedRoute, error)
}

// Trigger dispatches optimization requests and polls for the resulting
// route. The engine runs elsewhere; this side only starts it and looks at
// what appeared in the store.
type Trigger struct {
	dispatcher Dispatcher
	routes     routeReader
	pollDelay  time.Duration
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewTrigger(dispatcher Dispatcher, routes routeReader, pollDelay time.Duration) *Trigger {
	return &Trigger{
		dispatcher: dispatcher,
		routes:     routes,
		pollDelay:  pollDelay,
		now:        time.Now,
		sleep:      sleepCtx,
	}
}

// Run validates the selection, posts it to the engine, waits out the
// engine's expected processing window, and polls once for the result.
func (t *Trigger) Run(ctx context.Context, req TriggerRequest) (*Result, error) {
	if err := validate(req); err != nil {
		prom.AddOptimizerTrigger("rejected")
		return nil, err
	}

	requestID := uuid.NewString()
	payload := t.buildPayload(req, requestID)

	if err := t.dispatcher.Dispatch(ctx, payload); err != nil {
		prom.AddOptimizerTrigger("failed")
		return nil, err
	}
	prom.AddOptimizerTrigger("accepted")

	logger.Info("optimization dispatched",
		"request_id", requestID,
		"deliveries", len(req.DeliveryIDs))

	if err := t.sleep(ctx, t.pollDelay); err != nil {
		return &Result{RequestID: requestID}, nil
	}

	start := t.now()
	route, err := t.routes.Latest(ctx)
	prom.AddOptimizerPollDuration(t.now().Sub(start).Seconds())

	if errors.Is(err, repository.ErrNotFound) {
		return &Result{RequestID: requestID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("optimizer poll: %w", err)
	}

	confirmed := route.RequestID() == requestID
	if !confirmed {
		logger.Warn("newest route does not echo request id",
			"request_id", requestID, "route_id", route.ID)
	}

	return &Result{
		RequestID: requestID,
		Route:     route,
		Confirmed: confirmed,
	}, nil
}

func (t *Trigger) buildPayload(req TriggerRequest, requestID string) *Payload {
	routeDate := req.RouteDate
	if routeDate == "" {
		routeDate = t.now().Format("2006-01-02")
	}
	optimizationType := req.OptimizationType
	if optimizationType == "" {
		optimizationType = "shortest_distance"
	}
	requestedBy := req.RequestedBy
	if requestedBy == "" {
		requestedBy = "dispatch-dashboard"
	}

	return &Payload{
		DeliveryIDs: req.DeliveryIDs,
		Parameters: Parameters{
			OptimizationType: optimizationType,
			VehicleID:        req.VehicleID,
			DriverID:         req.DriverID,
			RouteDate:        routeDate,
			MaxWaypoints:     MaxDeliveriesPerTrigger,
		},
		Metadata: Metadata{
			RequestedBy: requestedBy,
			RequestedAt: t.now().UTC().Format(time.RFC3339),
			Location:    requestLocation,
			RequestID:   requestID,
		},
	}
}

func validate(req TriggerRequest) error {
	if len(req.DeliveryIDs) == 0 {
		return ErrNoDeliveries
	}
	if len(req.DeliveryIDs) > MaxDeliveriesPerTrigger {
		return ErrTooManyDeliveries
	}
	seen := make(map[int64]struct{}, len(req.DeliveryIDs))
	for _, id := range req.DeliveryIDs {
		if _, ok := seen[id]; ok {
			return ErrDuplicateDelivery
		}
		seen[id] = struct{}{}
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
