package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

// Geocoder turns a free-text address into a point. Implementations must not
// be assumed reliable; callers treat any error as a miss.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Point, error)
}

// GoogleClient calls the Google-style geocoding endpoint with the
// country-biasing parameters the operation depends on (region=pe,
// components=country:PE, Spanish labels).
type GoogleClient struct {
	url     string
	apiKey  string
	timeout time.Duration
	client  *fasthttp.Client
}

func NewGoogleClient(url, apiKey string, timeout time.Duration) *GoogleClient {
	return &GoogleClient{
		url:     url,
		apiKey:  apiKey,
		timeout: timeout,
		client: &fasthttp.Client{
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 60 * time.Second,
		},
	}
}

type googleResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	ErrorMessage string `json:"error_message"`
}

func (g *GoogleClient) Geocode(ctx context.Context, address string) (Point, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(g.url)
	req.Header.SetMethod(fasthttp.MethodGet)
	args := req.URI().QueryArgs()
	args.Set("address", address)
	args.Set("key", g.apiKey)
	args.Set("region", "pe")
	args.Set("language", "es")
	args.Set("components", "country:PE")

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(g.timeout)
	}

	if err := g.client.DoDeadline(req, resp, deadline); err != nil {
		return Point{}, fmt.Errorf("geocode request failed: %w", err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return Point{}, fmt.Errorf("geocode unexpected status code: %d", resp.StatusCode())
	}

	var decoded googleResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return Point{}, fmt.Errorf("geocode decode response: %w", err)
	}

	if decoded.Status != "OK" || len(decoded.Results) == 0 {
		if decoded.ErrorMessage != "" {
			return Point{}, fmt.Errorf("geocode provider: %s: %s", decoded.Status, decoded.ErrorMessage)
		}
		return Point{}, fmt.Errorf("geocode provider: %s", decoded.Status)
	}

	loc := decoded.Results[0].Geometry.Location
	return Point{Lat: loc.Lat, Lon: loc.Lng}, nil
}
