package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	geocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"
	routesURL  = "https://routes.googleapis.com/directions/v2:computeRoutes"
)

// GoogleMapsRouter implements Router against the Geocoding API and
// Routes API v2.
type GoogleMapsRouter struct {
	apiKey string
	client *http.Client
}

var _ Router = (*GoogleMapsRouter)(nil)

// NewGoogleMapsRouter returns a Router using the given API key.
func NewGoogleMapsRouter(apiKey string) *GoogleMapsRouter {
	return &GoogleMapsRouter{
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Geocode resolves a full street address to coordinates.
func (g *GoogleMapsRouter) Geocode(ctx context.Context, address string) (Coordinates, error) {
	q := url.Values{"address": {address}, "key": {g.apiKey}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, geocodeURL+"?"+q.Encode(), nil)
	if err != nil {
		return Coordinates{}, fmt.Errorf("build geocode request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocode: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Status  string `json:"status"`
		Results []struct {
			Geometry struct {
				Location Coordinates `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if body.Status != "OK" || len(body.Results) == 0 {
		return Coordinates{}, fmt.Errorf("geocode status %s", body.Status)
	}
	return body.Results[0].Geometry.Location, nil
}

// Route computes a two-wheeler riding route between two points. Uses the
// traffic-unaware tier, which is enough for a fee estimate.
func (g *GoogleMapsRouter) Route(ctx context.Context, origin, destination Coordinates) (float64, float64, error) {
	payload := map[string]any{
		"origin":                   latLng(origin),
		"destination":              latLng(destination),
		"travelMode":               "TWO_WHEELER",
		"routingPreference":        "TRAFFIC_UNAWARE",
		"computeAlternativeRoutes": false,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return 0, 0, fmt.Errorf("encode route request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, routesURL, bytes.NewReader(buf))
	if err != nil {
		return 0, 0, fmt.Errorf("build route request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", g.apiKey)
	req.Header.Set("X-Goog-FieldMask", "routes.duration,routes.distanceMeters")

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("route: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Routes []struct {
			DistanceMeters float64 `json:"distanceMeters"`
			Duration       string  `json:"duration"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, 0, fmt.Errorf("decode route response: %w", err)
	}
	if len(body.Routes) == 0 {
		return 0, 0, fmt.Errorf("no route found")
	}

	route := body.Routes[0]
	duration, err := time.ParseDuration(route.Duration)
	if err != nil {
		// The API returns durations like "1234s"; anything else is ignored.
		duration = 0
	}
	return route.DistanceMeters / 1000, duration.Minutes(), nil
}

func latLng(c Coordinates) map[string]any {
	return map[string]any{
		"location": map[string]any{
			"latLng": map[string]any{"latitude": c.Lat, "longitude": c.Lng},
		},
	}
}
