package model

import "time"

// OptimizedRoute rows are created exclusively by the external optimization
// engine; this service treats them as immutable.
type OptimizedRoute struct {
	ID                       int64          `json:"id"`
	RouteName                string         `json:"route_name"`
	TotalDistanceKm          float64        `json:"total_distance_km"`
	EstimatedDurationMinutes float64        `json:"estimated_duration_minutes"`
	RouteStatus              string         `json:"route_status"`
	Polyline                 string         `json:"polyline"`
	Metadata                 map[string]any `json:"metadata"`
	CreatedAt                time.Time      `json:"created_at"`
}

// DeliveryCount reads the count the engine recorded in the route metadata.
func (r *OptimizedRoute) DeliveryCount() int {
	if r.Metadata == nil {
		return 0
	}
	switch v := r.Metadata["delivery_count"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// RequestID reads the correlation id the trigger put in the request
// metadata, when the engine echoed it back.
func (r *OptimizedRoute) RequestID() string {
	if r.Metadata == nil {
		return ""
	}
	if v, ok := r.Metadata["request_id"].(string); ok {
		return v
	}
	return ""
}

// RouteDelivery links a route to a delivery with its visit order.
type RouteDelivery struct {
	ID            int64 `json:"id"`
	RouteID       int64 `json:"route_id"`
	DeliveryID    int64 `json:"delivery_id"`
	SequenceOrder int   `json:"sequence_order"`
}

// RouteFilter controls route listings. Routes are always returned newest
// first; the time range serves the history screen.
type RouteFilter struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}
