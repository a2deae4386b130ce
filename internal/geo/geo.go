// Package geo holds great-circle distance and geofence checks.
//
// Every distance is computed in meters on a sphere of radius EarthRadiusMeters.
// Miles are derived from meters, never computed with a separate radius.
package geo

import (
	"fmt"
	"math"
)

const (
	EarthRadiusMeters = 6371000.0
	MetersPerMile     = 1609.344
)

// Point is a WGS84 latitude/longitude pair in degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Latitude, p.Longitude)
}

// Distance returns the haversine distance between p1 and p2 in meters.
// Coordinates are not range-checked; see Validate.
func Distance(p1, p2 Point) float64 {
	phi1 := toRadians(p1.Latitude)
	phi2 := toRadians(p2.Latitude)
	dPhi := toRadians(p2.Latitude - p1.Latitude)
	dLambda := toRadians(p2.Longitude - p1.Longitude)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// WithinRadius reports whether point lies inside the circle of radiusMeters around center.
func WithinRadius(point, center Point, radiusMeters float64) bool {
	return Distance(point, center) <= radiusMeters
}

func MetersToMiles(m float64) float64 {
	return m / MetersPerMile
}

func MilesToMeters(mi float64) float64 {
	return mi * MetersPerMile
}

// TotalDistanceMiles sums the leg distances along a path.
func TotalDistanceMiles(path []Point) float64 {
	if len(path) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += Distance(path[i-1], path[i])
	}
	return MetersToMiles(total)
}

// Validate checks that p is a real coordinate.
func Validate(p Point) error {
	if math.IsNaN(p.Latitude) || p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90,90]", p.Latitude)
	}
	if math.IsNaN(p.Longitude) || p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180,180]", p.Longitude)
	}
	return nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
