package geocode

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGeocoder struct {
	point Point
	err   error
	calls int
	last  string
}

func (f *fakeGeocoder) Geocode(_ context.Context, address string) (Point, error) {
	f.calls++
	f.last = address
	return f.point, f.err
}

func TestQualifyAddress(t *testing.T) {
	t.Run("appends city and region to a bare street", func(t *testing.T) {
		got := QualifyAddress("Av. España 123")
		assert.Equal(t, "Av. España 123, Trujillo, La Libertad, Perú", got)
	})

	t.Run("leaves an already qualified address alone", func(t *testing.T) {
		addr := "Av. España 123, Trujillo"
		assert.Equal(t, addr, QualifyAddress(addr))
	})

	t.Run("accepts the ascii country spelling", func(t *testing.T) {
		addr := "Jr. Pizarro 500, Peru"
		assert.Equal(t, addr, QualifyAddress(addr))
	})
}

func TestComposeAddress(t *testing.T) {
	t.Run("street, urbanization and district", func(t *testing.T) {
		got := ComposeAddress("Calle San Andrés 457", "Urb. San Andrés", "Trujillo Centro")
		assert.Equal(t, "Calle San Andrés 457, Urb. San Andrés, Trujillo Centro, Trujillo, La Libertad, Perú", got)
	})

	t.Run("urbanization is optional", func(t *testing.T) {
		got := ComposeAddress("Av. Larco 1234", "", "Victor Larco")
		assert.Equal(t, "Av. Larco 1234, Victor Larco, Trujillo, La Libertad, Perú", got)
	})
}

func TestResolverProviderHit(t *testing.T) {
	g := &fakeGeocoder{point: Point{Lat: -8.1120, Lon: -79.0300}}
	r := NewDefaultResolver(g, nil)

	p, source := r.Resolve(context.Background(), "Av. Larco 1234", "Victor Larco")

	assert.Equal(t, SourceProvider, source)
	assert.Equal(t, g.point, p)
	assert.Equal(t, "Av. Larco 1234, Trujillo, La Libertad, Perú", g.last)
}

func TestResolverProviderDownFallsToDistrict(t *testing.T) {
	g := &fakeGeocoder{err: errors.New("connection refused")}
	r := NewDefaultResolver(g, nil)

	p, source := r.Resolve(context.Background(), "Calle San Andrés 457", "Trujillo Centro")

	assert.Equal(t, SourceDistrict, source)
	assert.Equal(t, Point{Lat: -8.1092, Lon: -79.0215}, p)
	assert.Equal(t, 1, g.calls)
}

func TestResolverRejectsOutOfBoundResult(t *testing.T) {
	// Lima coordinates are a plausible wrong answer for an ambiguous
	// address; they sit far outside the acceptance radius.
	g := &fakeGeocoder{point: Point{Lat: -12.0464, Lon: -77.0428}}
	r := NewDefaultResolver(g, nil)

	p, source := r.Resolve(context.Background(), "Av. Arequipa 100", "Moche")

	assert.Equal(t, SourceDistrict, source)
	assert.Equal(t, Point{Lat: -8.1667, Lon: -79.0333}, p)
}

func TestResolverUnknownDistrictJitters(t *testing.T) {
	g := &fakeGeocoder{err: errors.New("timeout")}
	r := NewDefaultResolver(g, nil)

	for i := 0; i < 20; i++ {
		p, source := r.Resolve(context.Background(), "Mz. B Lote 4", "Simbal")

		require.Equal(t, SourceJitter, source)
		assert.LessOrEqual(t, math.Abs(p.Lat-CityCenter.Lat), jitterRangeDeg)
		assert.LessOrEqual(t, math.Abs(p.Lon-CityCenter.Lon), jitterRangeDeg)
	}
}

func TestResolverUsesCacheBeforeProvider(t *testing.T) {
	cached := Point{Lat: -8.1000, Lon: -79.0200}
	cache := &memoryCache{entries: map[string]Point{
		"Av. España 123, Trujillo, La Libertad, Perú": cached,
	}}
	g := &fakeGeocoder{point: Point{Lat: -8.2, Lon: -79.1}}
	r := NewDefaultResolver(g, cache)

	p, source := r.Resolve(context.Background(), "Av. España 123", "Trujillo Centro")

	assert.Equal(t, SourceCache, source)
	assert.Equal(t, cached, p)
	assert.Zero(t, g.calls)
}

func TestResolverCachesProviderHits(t *testing.T) {
	cache := &memoryCache{entries: map[string]Point{}}
	g := &fakeGeocoder{point: Point{Lat: -8.1120, Lon: -79.0300}}
	r := NewDefaultResolver(g, cache)

	_, first := r.Resolve(context.Background(), "Av. Húsares 50", "Trujillo Centro")
	_, second := r.Resolve(context.Background(), "Av. Húsares 50", "Trujillo Centro")

	assert.Equal(t, 1, g.calls)
	assert.Equal(t, SourceProvider, first)
	assert.Equal(t, SourceCache, second)
}

func TestDistrictTable(t *testing.T) {
	assert.Len(t, Districts(), 10)

	p, ok := DistrictPoint("Huanchaco")
	require.True(t, ok)
	assert.Equal(t, Point{Lat: -8.0833, Lon: -79.1167}, p)

	_, ok = DistrictPoint("Simbal")
	assert.False(t, ok)
}

type memoryCache struct {
	entries map[string]Point
}

func (m *memoryCache) Get(address string) (Point, bool) {
	p, ok := m.entries[address]
	return p, ok
}

func (m *memoryCache) Put(address string, p Point) {
	m.entries[address] = p
}
