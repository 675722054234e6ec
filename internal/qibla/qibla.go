package qibla

import (
	"errors"
	"fmt"
	"math"
)

// earthRadiusKm is the mean Earth radius used for great-circle distances.
const earthRadiusKm = 6371.0088

// ErrInvalidCoordinate is returned by Validate for out-of-range readings.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is a point on the Earth in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Kaaba is the default target for qibla computations.
var Kaaba = Coordinate{Latitude: 21.422487, Longitude: 39.826206}

// Validate reports whether the coordinate is within the valid latitude and
// longitude ranges. Bearing does not call it; callers discard bad sensor
// readings before computing.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrInvalidCoordinate)
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrInvalidCoordinate)
	}
	return nil
}

// Bearing returns the initial great-circle bearing from observer to target in
// degrees, in [0, 360), clockwise from true north. Identical points yield 0.
func Bearing(observer, target Coordinate) float64 {
	phi1 := degToRad(observer.Latitude)
	phi2 := degToRad(target.Latitude)
	deltaLon := degToRad(target.Longitude) - degToRad(observer.Longitude)

	y := math.Sin(deltaLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(deltaLon)

	return math.Mod(radToDeg(math.Atan2(y, x))+360, 360)
}

// Compass converts a bearing to an 8-point compass direction.
func Compass(bearing float64) string {
	directions := []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	index := int((normalize(bearing)+22.5)/45.0) % 8
	return directions[index]
}

// RelativeRotation returns how far a pointer must be rotated clockwise from
// the device's forward direction to face bearing, given the device heading.
func RelativeRotation(bearing, heading float64) float64 {
	return normalize(bearing - heading)
}

// DistanceKm returns the haversine distance between two points.
func DistanceKm(a, b Coordinate) float64 {
	phi1 := degToRad(a.Latitude)
	phi2 := degToRad(b.Latitude)
	dPhi := phi2 - phi1
	dLambda := degToRad(b.Longitude - a.Longitude)

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// A tiny negative remainder rounds up to 360 when shifted.
	if deg == 360 {
		return 0
	}
	return deg
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }
func radToDeg(rad float64) float64 { return rad * 180 / math.Pi }
