// Package delivery estimates delivery fee and time for an address. When a
// Google Maps API key is configured, distance comes from real routing;
// otherwise (or on any routing failure) it falls back to great-circle
// distance, so the storefront always gets an estimate.
package delivery

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Fee schedule: a flat base fee covers the first range, then one more base
// fee per started 3 km range. Times are minutes.
type feeConfig struct {
	baseFee     float64
	feePerRange float64
	kmPerRange  float64
	baseMinutes float64
}

var defaultFees = feeConfig{baseFee: 9.00, feePerRange: 9.00, kmPerRange: 3, baseMinutes: 20}

// Fixed points for the pizzeria's neighborhood: the shop itself, and a
// downtown default used when an address cannot be geocoded and the customer
// supplied no coordinates.
var (
	DefaultOrigin      = Coordinates{Lat: -23.5236, Lng: -46.7031}
	DefaultDestination = Coordinates{Lat: -23.5505, Lng: -46.6333}
)

// Estimate is what the storefront shows before checkout.
type Estimate struct {
	DistanceKm    float64 `json:"distance"`
	DeliveryFee   string  `json:"deliveryFee"`
	EstimatedTime string  `json:"estimatedTime"`
}

// Router resolves an address to coordinates and computes a riding distance.
// Both methods may fail; the estimator falls back to haversine on any error.
type Router interface {
	Geocode(ctx context.Context, address string) (Coordinates, error)
	Route(ctx context.Context, origin, destination Coordinates) (distanceKm float64, durationMin float64, err error)
}

// Estimator computes delivery estimates from the pizzeria's fixed origin.
type Estimator struct {
	origin Coordinates
	fees   feeConfig
	router Router // nil when no maps key is configured
	logger *zap.Logger
}

// NewEstimator builds an Estimator. router may be nil.
func NewEstimator(origin Coordinates, router Router, logger *zap.Logger) *Estimator {
	return &Estimator{origin: origin, fees: defaultFees, router: router, logger: logger}
}

// Estimate returns fee and time for delivering to the given address. The
// fallback destination is used when no router is available to geocode the
// address.
func (e *Estimator) Estimate(ctx context.Context, address string, fallback Coordinates) Estimate {
	km := e.distanceKm(ctx, address, fallback)
	return e.fromDistance(km)
}

func (e *Estimator) distanceKm(ctx context.Context, address string, fallback Coordinates) float64 {
	if e.router != nil && address != "" {
		dest, err := e.router.Geocode(ctx, address)
		if err == nil {
			km, _, err := e.router.Route(ctx, e.origin, dest)
			if err == nil {
				return km
			}
			e.logger.Warn("route lookup failed, falling back to haversine", zap.Error(err))
			return Haversine(e.origin, dest)
		}
		e.logger.Warn("geocoding failed, falling back to default destination", zap.Error(err))
	}
	return Haversine(e.origin, fallback)
}

func (e *Estimator) fromDistance(km float64) Estimate {
	// Round to one decimal, never below 1 km.
	rounded := math.Max(1, math.Round(km*10)/10)

	ranges := math.Ceil(rounded / e.fees.kmPerRange)
	fee := math.Max(ranges*e.fees.feePerRange, e.fees.baseFee)
	minutes := math.Max(e.fees.baseMinutes, e.fees.baseMinutes+rounded*1.5)

	return Estimate{
		DistanceKm:    rounded,
		DeliveryFee:   fmt.Sprintf("%.2f", fee),
		EstimatedTime: fmt.Sprintf("%d min", int(math.Round(minutes))),
	}
}

const earthRadiusKm = 6371

// Haversine returns the great-circle distance between two points in km.
func Haversine(a, b Coordinates) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
