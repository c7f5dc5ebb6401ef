package services

import (
	"context"
	"errors"

	"github.com/deliverytrujillo/dispatch/internal/model"
	"github.com/deliverytrujillo/dispatch/internal/render"
	"github.com/deliverytrujillo/dispatch/internal/repository"
)

var ErrRouteNotFound = errors.New("route not found")

type RouteRepository interface {
	List(ctx context.Context, f model.RouteFilter) ([]*model.OptimizedRoute, int64, error)
	Latest(ctx context.Context) (*model.OptimizedRoute, error)
	GetByID(ctx context.Context, id int64) (*model.OptimizedRoute, error)
	GetWithDeliveries(ctx context.Context, id int64) (*model.OptimizedRoute, []*model.RouteDelivery, error)
}

type RouteService struct {
	routeRepo    RouteRepository
	deliveryRepo DeliveryRepository
}

func NewRouteService(routeRepo RouteRepository, deliveryRepo DeliveryRepository) *RouteService {
	return &RouteService{
		routeRepo:    routeRepo,
		deliveryRepo: deliveryRepo,
	}
}

func (s *RouteService) List(ctx context.Context, f model.RouteFilter) ([]*model.OptimizedRoute, int64, error) {
	return s.routeRepo.List(ctx, f)
}

// RouteDetail is a route with its stops resolved to full deliveries in
// visit order.
type RouteDetail struct {
	Route *model.OptimizedRoute `json:"route"`
	Stops []*model.Delivery     `json:"stops"`
}

func (s *RouteService) Get(ctx context.Context, id int64) (*RouteDetail, error) {
	route, rds, err := s.routeRepo.GetWithDeliveries(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRouteNotFound
	}
	if err != nil {
		return nil, err
	}

	stops, err := s.resolveStops(ctx, rds)
	if err != nil {
		return nil, err
	}
	return &RouteDetail{Route: route, Stops: stops}, nil
}

// Map builds the GeoJSON artifact for a route.
func (s *RouteService) Map(ctx context.Context, id int64) (*render.FeatureCollection, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return render.RouteMap(detail.Route, detail.Stops)
}

// resolveStops loads the stop deliveries and returns them in sequence
// order. A join row pointing at a missing delivery is skipped.
func (s *RouteService) resolveStops(ctx context.Context, rds []*model.RouteDelivery) ([]*model.Delivery, error) {
	if len(rds) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(rds))
	for i, rd := range rds {
		ids[i] = rd.DeliveryID
	}
	deliveries, err := s.deliveryRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*model.Delivery, len(deliveries))
	for _, d := range deliveries {
		byID[d.ID] = d
	}

	stops := make([]*model.Delivery, 0, len(rds))
	for _, rd := range rds {
		if d, ok := byID[rd.DeliveryID]; ok {
			stops = append(stops, d)
		}
	}
	return stops, nil
}
