package render

import (
	"fmt"

	"github.com/twpayne/go-polyline"

	"github.com/deliverytrujillo/dispatch/internal/geocode"
	"github.com/deliverytrujillo/dispatch/internal/model"
)

// GeoJSON output for the dashboard map. Coordinates follow the GeoJSON
// convention of [lon, lat].

type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
}

type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// statusColors are the marker colors the dashboard uses per delivery state.
var statusColors = map[model.DeliveryStatus]string{
	model.DeliveryStatusPending:   "#f39c12",
	model.DeliveryStatusAssigned:  "#3498db",
	model.DeliveryStatusInTransit: "#9b59b6",
	model.DeliveryStatusDelivered: "#2ecc71",
	model.DeliveryStatusFailed:    "#e74c3c",
	model.DeliveryStatusCancelled: "#95a5a6",
}

func statusColor(s model.DeliveryStatus) string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return "#7f8c8d"
}

// DeliveryMap builds the map artifact: one point per geolocated delivery
// plus the operations center marker. Deliveries without coordinates are
// skipped rather than plotted at a wrong spot.
func DeliveryMap(deliveries []*model.Delivery) *FeatureCollection {
	fc := &FeatureCollection{Type: "FeatureCollection"}
	fc.Features = append(fc.Features, centerFeature())

	for _, d := range deliveries {
		if !d.HasCoordinates() {
			continue
		}
		fc.Features = append(fc.Features, deliveryFeature(d))
	}
	return fc
}

// RouteMap builds the artifact for a single optimized route: the decoded
// polyline, the ordered stops, and the operations center.
func RouteMap(route *model.OptimizedRoute, stops []*model.Delivery) (*FeatureCollection, error) {
	fc := &FeatureCollection{Type: "FeatureCollection"}
	fc.Features = append(fc.Features, centerFeature())

	if route.Polyline != "" {
		line, err := decodePolyline(route.Polyline)
		if err != nil {
			return nil, fmt.Errorf("render route %d: %w", route.ID, err)
		}
		fc.Features = append(fc.Features, &Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "LineString",
				Coordinates: line,
			},
			Properties: map[string]any{
				"route_id":          route.ID,
				"route_name":        route.RouteName,
				"total_distance_km": route.TotalDistanceKm,
				"stroke":            "#2980b9",
			},
		})
	}

	for i, d := range stops {
		if !d.HasCoordinates() {
			continue
		}
		f := deliveryFeature(d)
		f.Properties["sequence_order"] = i + 1
		fc.Features = append(fc.Features, f)
	}
	return fc, nil
}

func deliveryFeature(d *model.Delivery) *Feature {
	return &Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: []float64{*d.CustomerLongitude, *d.CustomerLatitude},
		},
		Properties: map[string]any{
			"delivery_id":     d.ID,
			"tracking_number": d.TrackingNumber,
			"customer_name":   d.CustomerName,
			"district":        d.District,
			"status":          string(d.Status),
			"priority":        d.Priority,
			"marker-color":    statusColor(d.Status),
		},
	}
}

func centerFeature() *Feature {
	return &Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: []float64{geocode.CityCenter.Lon, geocode.CityCenter.Lat},
		},
		Properties: map[string]any{
			"name":         "Centro de operaciones",
			"marker-color": "#2c3e50",
		},
	}
}

// decodePolyline turns an encoded polyline into GeoJSON [lon, lat] pairs.
func decodePolyline(encoded string) ([][]float64, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, err
	}
	line := make([][]float64, len(coords))
	for i, c := range coords {
		line[i] = []float64{c[1], c[0]}
	}
	return line, nil
}
