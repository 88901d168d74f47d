package matcher

import (
	"math"

	"ideomatch/backend/internal/models"
)

const earthRadiusKm = 6371

// DistanceKm returns the great-circle distance between p and q.
func DistanceKm(p, q models.Point) float64 {
	dLat := (q.Lat - p.Lat) * (math.Pi / 180)
	dLon := (q.Lon - p.Lon) * (math.Pi / 180)
	lat1 := p.Lat * (math.Pi / 180)
	lat2 := q.Lat * (math.Pi / 180)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}
