package geocode

import (
	"math"
	"strings"
)

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CityCenter is the operations center, Plaza de Armas, Trujillo.
var CityCenter = Point{Lat: -8.1092, Lon: -79.0215}

const (
	// maxCenterDistanceDeg bounds accepted provider results to a coarse
	// ~50 km radius around the city center, in straight-line degrees.
	maxCenterDistanceDeg = 0.5

	// jitterRangeDeg is the per-axis spread of the last-resort fallback.
	jitterRangeDeg = 0.02
)

// placeTokens are the qualifiers a local address is expected to carry.
var placeTokens = []string{"Trujillo", "La Libertad", "Perú", "Peru"}

const addressQualifier = "Trujillo, La Libertad, Perú"

// QualifyAddress appends the city and region qualifiers unless the address
// already names one of the expected place tokens.
func QualifyAddress(address string) string {
	for _, tok := range placeTokens {
		if strings.Contains(address, tok) {
			return address
		}
	}
	return address + ", " + addressQualifier
}

// ComposeAddress builds the canonical full address stored on a delivery:
// street, optional urbanization, district, always suffixed with the city
// qualifier.
func ComposeAddress(street, urbanization, district string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{street, urbanization, district} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ") + ", " + addressQualifier
}

// withinCityBound reports whether p is acceptably close to the city center.
func withinCityBound(p Point) bool {
	dLat := p.Lat - CityCenter.Lat
	dLon := p.Lon - CityCenter.Lon
	return math.Sqrt(dLat*dLat+dLon*dLon) < maxCenterDistanceDeg
}
