package delivery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	pizzeria = Coordinates{Lat: -23.5236, Lng: -46.7031}
	downtown = Coordinates{Lat: -23.5505, Lng: -46.6333}
)

func TestHaversine(t *testing.T) {
	// Pizzeria to downtown São Paulo is roughly 7.7 km in a straight line.
	km := Haversine(pizzeria, downtown)
	require.InDelta(t, 7.7, km, 0.3)

	require.Zero(t, Haversine(pizzeria, pizzeria))
}

func TestFeeBanding(t *testing.T) {
	e := NewEstimator(pizzeria, nil, zap.NewNop())

	tests := []struct {
		name    string
		km      float64
		wantFee string
	}{
		{"inside first range", 2.0, "9.00"},
		{"exactly one range", 3.0, "9.00"},
		{"second range", 3.1, "18.00"},
		{"third range", 7.7, "27.00"},
		{"sub-km clamps to one", 0.2, "9.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := e.fromDistance(tt.km)
			require.Equal(t, tt.wantFee, est.DeliveryFee)
		})
	}
}

func TestEstimateTime(t *testing.T) {
	e := NewEstimator(pizzeria, nil, zap.NewNop())

	est := e.fromDistance(4.0)
	require.Equal(t, "26 min", est.EstimatedTime) // 20 + 4*1.5
	require.Equal(t, 4.0, est.DistanceKm)
}

func TestEstimateFallsBackWithoutRouter(t *testing.T) {
	e := NewEstimator(pizzeria, nil, zap.NewNop())

	est := e.Estimate(context.Background(), "Av. Paulista, 1000", downtown)
	require.InDelta(t, 7.7, est.DistanceKm, 0.3)
	require.NotEmpty(t, est.DeliveryFee)
}

type stubRouter struct {
	dest Coordinates
	km   float64
	err  error
}

func (s *stubRouter) Geocode(context.Context, string) (Coordinates, error) {
	return s.dest, s.err
}

func (s *stubRouter) Route(context.Context, Coordinates, Coordinates) (float64, float64, error) {
	return s.km, s.km * 2, s.err
}

func TestEstimateUsesRouter(t *testing.T) {
	e := NewEstimator(pizzeria, &stubRouter{dest: downtown, km: 10.4}, zap.NewNop())

	est := e.Estimate(context.Background(), "Av. Paulista, 1000", downtown)
	require.Equal(t, 10.4, est.DistanceKm)
	require.Equal(t, "36.00", est.DeliveryFee) // ceil(10.4/3)=4 ranges
}
