package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deliverytrujillo/dispatch/internal/model"
	"github.com/deliverytrujillo/dispatch/internal/optimizer"
	"github.com/deliverytrujillo/dispatch/internal/repository"
)

var ErrUnknownDeliveries = errors.New("selection contains unknown delivery ids")

// OptimizeTrigger is the piece of the optimizer package this service drives.
type OptimizeTrigger interface {
	Run(ctx context.Context, req optimizer.TriggerRequest) (*optimizer.Result, error)
}

type OptimizeService struct {
	trigger      OptimizeTrigger
	deliveryRepo DeliveryRepository
	routeRepo    RouteRepository
}

func NewOptimizeService(trigger OptimizeTrigger, deliveryRepo DeliveryRepository, routeRepo RouteRepository) *OptimizeService {
	return &OptimizeService{
		trigger:      trigger,
		deliveryRepo: deliveryRepo,
		routeRepo:    routeRepo,
	}
}

// Optimize verifies the selected deliveries exist, then hands the batch to
// the trigger. The heavy lifting happens in the external engine; the result
// reports what came back, if anything.
func (s *OptimizeService) Optimize(ctx context.Context, req optimizer.TriggerRequest) (*optimizer.Result, error) {
	if len(req.DeliveryIDs) == 0 {
		return nil, optimizer.ErrNoDeliveries
	}
	if len(req.DeliveryIDs) > optimizer.MaxDeliveriesPerTrigger {
		return nil, optimizer.ErrTooManyDeliveries
	}

	found, err := s.deliveryRepo.GetByIDs(ctx, req.DeliveryIDs)
	if err != nil {
		return nil, fmt.Errorf("load selection: %w", err)
	}
	if missing := missingIDs(req.DeliveryIDs, found); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnknownDeliveries, missing)
	}

	return s.trigger.Run(ctx, req)
}

// OptimizeStatus summarizes what the external engine has produced so far.
// The newest route's creation time doubles as the last optimization time.
type OptimizeStatus struct {
	TotalRoutes     int64                 `json:"total_routes"`
	LastOptimizedAt *time.Time            `json:"last_optimized_at,omitempty"`
	LatestRoute     *model.OptimizedRoute `json:"latest_route,omitempty"`
}

// Status reports engine progress from the store, which is the only place it
// is visible.
func (s *OptimizeService) Status(ctx context.Context) (*OptimizeStatus, error) {
	_, total, err := s.routeRepo.List(ctx, model.RouteFilter{Limit: 1})
	if err != nil {
		return nil, err
	}

	status := &OptimizeStatus{TotalRoutes: total}

	latest, err := s.routeRepo.Latest(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return status, nil
	}
	if err != nil {
		return nil, err
	}

	status.LatestRoute = latest
	status.LastOptimizedAt = &latest.CreatedAt
	return status, nil
}

func missingIDs(want []int64, have []*model.Delivery) []int64 {
	present := make(map[int64]struct{}, len(have))
	for _, d := range have {
		present[d.ID] = struct{}{}
	}
	var missing []int64
	for _, id := range want {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
