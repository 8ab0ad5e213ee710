// Package geo resolves Singapore postal codes to coordinates via the Google
// Maps geocoding API.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// ErrNoMatch means the service answered but found nothing for the address.
var ErrNoMatch = errors.New("no geocoding match")

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geocoder resolves a postal code to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, postalCode string) (Point, error)
}

// GoogleGeocoder calls the Google Maps geocoding endpoint. Requests pass
// through a client-side rate limiter so a burst of tool calls cannot blow
// the API quota.
type GoogleGeocoder struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// Option customizes a GoogleGeocoder.
type Option func(*GoogleGeocoder)

// WithBaseURL points the geocoder at a different endpoint. Used by tests.
func WithBaseURL(u string) Option {
	return func(g *GoogleGeocoder) { g.baseURL = u }
}

// WithHTTPClient substitutes the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *GoogleGeocoder) { g.http = c }
}

// NewGoogleGeocoder creates a geocoder with a 10 req/s limit and a short
// request timeout.
func NewGoogleGeocoder(apiKey string, opts ...Option) *GoogleGeocoder {
	g := &GoogleGeocoder{
		apiKey:  apiKey,
		baseURL: "https://maps.googleapis.com/maps/api/geocode/json",
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(10), 10),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location Point `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves postalCode to a coordinate. The query always carries a
// ", Singapore" suffix so a bare 6-digit code cannot match an address in
// another country.
func (g *GoogleGeocoder) Geocode(ctx context.Context, postalCode string) (Point, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return Point{}, fmt.Errorf("geocode rate limit: %w", err)
	}

	q := url.Values{}
	q.Set("address", postalCode+", Singapore")
	q.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Point{}, fmt.Errorf("building geocode request: %w", err)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return Point{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Point{}, fmt.Errorf("geocode request: unexpected status %d", resp.StatusCode)
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Point{}, fmt.Errorf("decoding geocode response: %w", err)
	}

	if body.Status != "OK" || len(body.Results) == 0 {
		return Point{}, fmt.Errorf("geocoding %q: %w", postalCode, ErrNoMatch)
	}
	return body.Results[0].Geometry.Location, nil
}
