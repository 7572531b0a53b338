// Package geo computes great-circle distances between job sites and employees.
package geo

import (
	"math"

	"dispatch-workers/internal/models"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// DistanceKm returns the haversine distance in kilometres between two
// latitude/longitude pairs given in degrees.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Between is DistanceKm over two coordinate values.
func Between(a, b models.Coordinates) float64 {
	return DistanceKm(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
