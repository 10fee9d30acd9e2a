// Package geo provides immutable geographic value types and the distance
// algorithms used throughout the source model. Fast flat-earth variants are
// used in performance-sensitive iteration paths; precise spherical variants
// are available where construction accuracy matters.
package geo

import (
	"math"

	"github.com/rotisserie/eris"
)

// Earth radii in km. The mean radius is used for all distance conversions.
const (
	EarthRadiusMean       = 6371.0072
	EarthRadiusEquatorial = 6378.1370
	EarthRadiusPolar      = 6356.7523
)

// Supported coordinate ranges. Longitude extends past 180 so that models
// spanning the antimeridian (e.g. the Aleutians) can use a continuous range.
const (
	MinLat   = -90.0
	MaxLat   = 90.0
	MinLon   = -180.0
	MaxLon   = 360.0
	MinDepth = -5.0
	MaxDepth = 700.0
)

// Degrees/radians conversions.
const (
	ToRad = math.Pi / 180.0
	ToDeg = 180.0 / math.Pi
)

// Numeric tolerance for pole and coincident-point checks.
const tolerance = 1e-12

// ValidateLat returns lat or an error if it is outside [MinLat, MaxLat].
func ValidateLat(lat float64) (float64, error) {
	if lat < MinLat || lat > MaxLat {
		return 0, eris.Errorf("geo: latitude %f outside [%.0f..%.0f]", lat, MinLat, MaxLat)
	}
	return lat, nil
}

// ValidateLon returns lon or an error if it is outside [MinLon, MaxLon].
func ValidateLon(lon float64) (float64, error) {
	if lon < MinLon || lon > MaxLon {
		return 0, eris.Errorf("geo: longitude %f outside [%.0f..%.0f]", lon, MinLon, MaxLon)
	}
	return lon, nil
}

// ValidateDepth returns depth or an error if it is outside [MinDepth, MaxDepth].
func ValidateDepth(depth float64) (float64, error) {
	if depth < MinDepth || depth > MaxDepth {
		return 0, eris.Errorf("geo: depth %f outside [%.0f..%.0f] km", depth, MinDepth, MaxDepth)
	}
	return depth, nil
}

// DegreesLatPerKm returns the latitude change subtended by 1 km of
// north-south travel.
func DegreesLatPerKm() float64 {
	return ToDeg / EarthRadiusMean
}

// DegreesLonPerKm returns the longitude change subtended by 1 km of
// east-west travel at the latitude of loc.
func DegreesLonPerKm(loc Location) float64 {
	return ToDeg / (EarthRadiusMean * math.Cos(loc.latRad))
}
