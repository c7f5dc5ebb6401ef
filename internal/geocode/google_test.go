package geocode

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

// serveGeocoder runs handler on an in-process listener and points g at it.
func serveGeocoder(t *testing.T, g *GoogleClient, handler fasthttp.RequestHandler) {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: handler}
	go srv.Serve(ln) //nolint:errcheck
	t.Cleanup(func() { ln.Close() })
	g.client.Dial = func(string) (net.Conn, error) { return ln.Dial() }
}

func okBody(lat, lon float64) string {
	return fmt.Sprintf(`{
		"status": "OK",
		"results": [{"geometry": {"location": {"lat": %f, "lng": %f}}}]
	}`, lat, lon)
}

func TestGoogleClient_Geocode(t *testing.T) {
	var gotArgs map[string]string
	g := NewGoogleClient("http://geocode.test/maps/api/geocode/json", "test-key", time.Second)
	serveGeocoder(t, g, func(ctx *fasthttp.RequestCtx) {
		gotArgs = map[string]string{}
		ctx.QueryArgs().VisitAll(func(k, v []byte) {
			gotArgs[string(k)] = string(v)
		})
		ctx.SetContentType("application/json")
		ctx.SetBodyString(okBody(-8.1120, -79.0300))
	})

	p, err := g.Geocode(context.Background(), "Av. Larco 1234, Trujillo, La Libertad, Perú")
	require.NoError(t, err)
	assert.Equal(t, Point{Lat: -8.1120, Lon: -79.0300}, p)

	// The country-biasing parameters are the point of this client.
	assert.Equal(t, "Av. Larco 1234, Trujillo, La Libertad, Perú", gotArgs["address"])
	assert.Equal(t, "test-key", gotArgs["key"])
	assert.Equal(t, "pe", gotArgs["region"])
	assert.Equal(t, "es", gotArgs["language"])
	assert.Equal(t, "country:PE", gotArgs["components"])
}

func TestGoogleClient_NonOKStatusIsAMiss(t *testing.T) {
	g := NewGoogleClient("http://geocode.test/maps/api/geocode/json", "test-key", time.Second)
	serveGeocoder(t, g, func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString(`{"status": "ZERO_RESULTS", "results": []}`)
	})

	_, err := g.Geocode(context.Background(), "Mz. Z Lote 99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ZERO_RESULTS")
}

func TestGoogleClient_ProviderErrorMessageSurfaces(t *testing.T) {
	g := NewGoogleClient("http://geocode.test/maps/api/geocode/json", "bad-key", time.Second)
	serveGeocoder(t, g, func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString(`{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid."}`)
	})

	_, err := g.Geocode(context.Background(), "Av. España 123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
	assert.Contains(t, err.Error(), "API key is invalid")
}

func TestGoogleClient_HTTPErrorStatus(t *testing.T) {
	g := NewGoogleClient("http://geocode.test/maps/api/geocode/json", "test-key", time.Second)
	serveGeocoder(t, g, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusBadGateway)
	})

	_, err := g.Geocode(context.Background(), "Av. España 123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestGoogleClient_MalformedBody(t *testing.T) {
	g := NewGoogleClient("http://geocode.test/maps/api/geocode/json", "test-key", time.Second)
	serveGeocoder(t, g, func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString(`<html>gateway timeout</html>`)
	})

	_, err := g.Geocode(context.Background(), "Av. España 123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}
