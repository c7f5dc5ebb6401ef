package repository

import (
	"context"
	"errors"

	"github.com/deliverytrujillo/dispatch/internal/model"
	"github.com/deliverytrujillo/dispatch/pkg/pg"
	"gorm.io/gorm"
)

// RouteRepository reads optimized_routes and its join table. Routes are
// written only by the external optimization engine.
type RouteRepository struct {
	*pg.DB
}

func NewRouteRepository(db *pg.DB) *RouteRepository {
	return &RouteRepository{
		db,
	}
}

// List returns routes newest first.
func (r *RouteRepository) List(ctx context.Context, f model.RouteFilter) ([]*model.OptimizedRoute, int64, error) {
	q := r.Read(ctx).Model(&RouteEntity{})

	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*RouteEntity
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toRouteModels(entities), total, nil
}

// Latest returns the newest route, or ErrNotFound when none exist.
func (r *RouteRepository) Latest(ctx context.Context) (*model.OptimizedRoute, error) {
	var entity RouteEntity
	err := r.Read(ctx).Order("created_at DESC").First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toRouteModel(&entity), nil
}

func (r *RouteRepository) GetByID(ctx context.Context, id int64) (*model.OptimizedRoute, error) {
	var entity RouteEntity
	err := r.Read(ctx).First(&entity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toRouteModel(&entity), nil
}

// GetWithDeliveries returns the route and its join rows ordered by visit
// sequence.
func (r *RouteRepository) GetWithDeliveries(ctx context.Context, id int64) (*model.OptimizedRoute, []*model.RouteDelivery, error) {
	route, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var entities []*RouteDeliveryEntity
	if err := r.Read(ctx).
		Where("route_id = ?", id).
		Order("sequence_order ASC").
		Find(&entities).Error; err != nil {
		return nil, nil, err
	}

	rds := make([]*model.RouteDelivery, len(entities))
	for i, e := range entities {
		rds[i] = toRouteDeliveryModel(e)
	}
	return route, rds, nil
}
