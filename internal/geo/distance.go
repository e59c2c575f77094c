package geo

import (
	"fmt"
	"math"
)

const (
	earthRadiusKm   = 6371.0
	walkingSpeedKmh = 5.0
)

// Distance returns the great-circle distance in kilometers between two
// coordinates using the haversine formula, rounded to two decimals.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := toRad(lat1)
	lat2Rad := toRad(lat2)
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return math.Round(earthRadiusKm*c*100) / 100
}

// WalkingMinutes estimates walking time for the given distance at an
// average 5 km/h pace. Any positive distance reports at least one minute.
func WalkingMinutes(distanceKm float64) int {
	if distanceKm <= 0 {
		return 0
	}
	minutes := distanceKm / walkingSpeedKmh * 60
	if minutes < 1 {
		return 1
	}
	return int(math.Ceil(minutes))
}

// FormatDistance renders a distance for display, e.g. "0.5 km".
func FormatDistance(distanceKm float64) string {
	return fmt.Sprintf("%.1f km", distanceKm)
}

// FormatWalkingTime renders a walking estimate for display, e.g. "~6 min walk".
func FormatWalkingTime(minutes int) string {
	return fmt.Sprintf("~%d min walk", minutes)
}

func toRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}
