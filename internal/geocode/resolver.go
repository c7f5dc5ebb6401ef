package geocode

import (
	"context"
	"math/rand"

	"github.com/deliverytrujillo/dispatch/pkg/logger"
	"github.com/deliverytrujillo/dispatch/pkg/prom"
)

// Resolution sources, recorded in metrics and returned to callers so the
// accuracy of a stored coordinate can be judged later.
const (
	SourceProvider = "provider"
	SourceCache    = "cache"
	SourceDistrict = "district"
	SourceJitter   = "jitter"
)

// Strategy is one step of the fallback chain. A strategy either produces a
// point or reports a miss; it never fails the resolution.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, address, district string) (Point, bool)
}

// Resolver walks its strategies in order and returns the first hit. The
// chain is built so the last strategy always produces, making Resolve total.
type Resolver struct {
	strategies []Strategy
}

func NewResolver(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// NewDefaultResolver wires the standard chain: cached provider answers,
// the geocoding provider itself, district table, jitter around the city
// center.
func NewDefaultResolver(geocoder Geocoder, cache Cache) *Resolver {
	return NewResolver(
		cacheStrategy{cache: cache},
		&providerStrategy{geocoder: geocoder, cache: cache},
		districtStrategy{},
		jitterStrategy{},
	)
}

// Resolve produces coordinates for a delivery address. It cannot fail: a
// provider outage or an unrecognized district degrades the answer, never the
// operation.
func (r *Resolver) Resolve(ctx context.Context, address, district string) (Point, string) {
	for _, s := range r.strategies {
		if p, ok := s.Attempt(ctx, address, district); ok {
			prom.AddGeocodeResolution(s.Name())
			return p, s.Name()
		}
	}
	// Unreachable with the default chain; kept so a custom chain without a
	// terminal strategy still answers.
	prom.AddGeocodeResolution(SourceJitter)
	return jitterNear(CityCenter), SourceJitter
}

// cacheStrategy answers from previously cached provider results, keyed by
// the qualified address. A nil or failing cache is a miss.
type cacheStrategy struct {
	cache Cache
}

func (s cacheStrategy) Name() string { return SourceCache }

func (s cacheStrategy) Attempt(_ context.Context, address, _ string) (Point, bool) {
	if s.cache == nil {
		return Point{}, false
	}
	return s.cache.Get(QualifyAddress(address))
}

// providerStrategy queries the external geocoder. Results outside the city
// bound are treated as misses; accepted points are written to the cache.
type providerStrategy struct {
	geocoder Geocoder
	cache    Cache
}

func (s *providerStrategy) Name() string { return SourceProvider }

func (s *providerStrategy) Attempt(ctx context.Context, address, _ string) (Point, bool) {
	qualified := QualifyAddress(address)

	p, err := s.geocoder.Geocode(ctx, qualified)
	if err != nil {
		logger.Warn("geocode provider miss", "address", qualified, "err", err)
		return Point{}, false
	}

	if !withinCityBound(p) {
		logger.Warn("geocode result outside city bound",
			"address", qualified, "lat", p.Lat, "lon", p.Lon)
		return Point{}, false
	}

	if s.cache != nil {
		s.cache.Put(qualified, p)
	}
	return p, true
}

// districtStrategy answers from the fixed district table.
type districtStrategy struct{}

func (districtStrategy) Name() string { return SourceDistrict }

func (districtStrategy) Attempt(_ context.Context, _, district string) (Point, bool) {
	return DistrictPoint(district)
}

// jitterStrategy always answers with a point near the city center. It is the
// terminal step of the chain.
type jitterStrategy struct{}

func (jitterStrategy) Name() string { return SourceJitter }

func (jitterStrategy) Attempt(context.Context, string, string) (Point, bool) {
	return jitterNear(CityCenter), true
}

func jitterNear(center Point) Point {
	return Point{
		Lat: center.Lat + (rand.Float64()*2-1)*jitterRangeDeg,
		Lon: center.Lon + (rand.Float64()*2-1)*jitterRangeDeg,
	}
}
