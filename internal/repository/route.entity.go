package repository

import (
	"encoding/json"
	"time"

	"github.com/deliverytrujillo/dispatch/internal/model"
)

type RouteEntity struct {
	ID                       int64     `db:"id"                         gorm:"primaryKey;autoIncrement;column:id"`
	RouteName                string    `db:"route_name"                 gorm:"column:route_name;not null"`
	TotalDistanceKm          float64   `db:"total_distance_km"          gorm:"column:total_distance_km"`
	EstimatedDurationMinutes float64   `db:"estimated_duration_minutes" gorm:"column:estimated_duration_minutes"`
	RouteStatus              string    `db:"route_status"               gorm:"column:route_status;not null;default:planned"`
	Polyline                 string    `db:"polyline"                   gorm:"column:polyline"`
	Metadata                 string    `db:"metadata"                   gorm:"column:metadata;type:jsonb"`
	CreatedAt                time.Time `db:"created_at"                 gorm:"column:created_at;autoCreateTime;index"`
}

func (RouteEntity) TableName() string {
	return "optimized_routes"
}

type RouteDeliveryEntity struct {
	ID            int64 `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	RouteID       int64 `db:"route_id"       gorm:"column:route_id;not null;index"`
	DeliveryID    int64 `db:"delivery_id"    gorm:"column:delivery_id;not null;index"`
	SequenceOrder int   `db:"sequence_order" gorm:"column:sequence_order;not null"`
}

func (RouteDeliveryEntity) TableName() string {
	return "route_deliveries"
}

func toRouteModel(e *RouteEntity) *model.OptimizedRoute {
	if e == nil {
		return nil
	}
	var meta map[string]any
	if e.Metadata != "" {
		// engine-written blob; a malformed one degrades to empty metadata
		_ = json.Unmarshal([]byte(e.Metadata), &meta)
	}
	return &model.OptimizedRoute{
		ID:                       e.ID,
		RouteName:                e.RouteName,
		TotalDistanceKm:          e.TotalDistanceKm,
		EstimatedDurationMinutes: e.EstimatedDurationMinutes,
		RouteStatus:              e.RouteStatus,
		Polyline:                 e.Polyline,
		Metadata:                 meta,
		CreatedAt:                e.CreatedAt,
	}
}

func toRouteModels(entities []*RouteEntity) []*model.OptimizedRoute {
	if entities == nil {
		return nil
	}
	models := make([]*model.OptimizedRoute, len(entities))
	for i, e := range entities {
		models[i] = toRouteModel(e)
	}
	return models
}

func toRouteDeliveryModel(e *RouteDeliveryEntity) *model.RouteDelivery {
	if e == nil {
		return nil
	}
	return &model.RouteDelivery{
		ID:            e.ID,
		RouteID:       e.RouteID,
		DeliveryID:    e.DeliveryID,
		SequenceOrder: e.SequenceOrder,
	}
}
