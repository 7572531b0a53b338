package geo

import (
	"math/rand"
	"testing"

	"dispatch-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm_KnownPairs(t *testing.T) {
	tests := []struct {
		name     string
		a, b     models.Coordinates
		expected float64
		delta    float64
	}{
		{"same point", models.Coordinates{Latitude: 10, Longitude: 10}, models.Coordinates{Latitude: 10, Longitude: 10}, 0, 1e-9},
		{"one degree of latitude", models.Coordinates{Latitude: 0, Longitude: 0}, models.Coordinates{Latitude: 1, Longitude: 0}, 111.19, 0.01},
		{"london to paris", models.Coordinates{Latitude: 51.5074, Longitude: -0.1278}, models.Coordinates{Latitude: 48.8566, Longitude: 2.3522}, 343.5, 1.0},
		{"antipodes", models.Coordinates{Latitude: 0, Longitude: 0}, models.Coordinates{Latitude: 0, Longitude: 180}, 20015.09, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Between(tt.a, tt.b), tt.delta)
		})
	}
}

func TestDistanceKm_SymmetricAndZeroOnIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		lat1, lon1 := rng.Float64()*180-90, rng.Float64()*360-180
		lat2, lon2 := rng.Float64()*180-90, rng.Float64()*360-180

		assert.InDelta(t, DistanceKm(lat1, lon1, lat2, lon2), DistanceKm(lat2, lon2, lat1, lon1), 1e-9)
		assert.Equal(t, 0.0, DistanceKm(lat1, lon1, lat1, lon1))
	}
}
