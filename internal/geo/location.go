package geo

import (
	"fmt"
	"math"
)

// Location is an immutable latitude-longitude-depth triple. Latitude and
// longitude are in decimal degrees, depth in km (positive down, negative
// values permitted for elevated terrain). Radian values are cached at
// construction because every distance algorithm consumes radians.
type Location struct {
	lat, lon, depth float64
	latRad, lonRad  float64
}

// Loc returns a surface Location without range checking. Use NewLocation for
// externally supplied coordinates.
func Loc(lat, lon float64) Location {
	return LocWithDepth(lat, lon, 0)
}

// LocWithDepth returns a Location without range checking.
func LocWithDepth(lat, lon, depth float64) Location {
	return Location{
		lat:    lat,
		lon:    lon,
		depth:  depth,
		latRad: lat * ToRad,
		lonRad: lon * ToRad,
	}
}

// NewLocation returns a range-checked Location.
func NewLocation(lat, lon, depth float64) (Location, error) {
	if _, err := ValidateLat(lat); err != nil {
		return Location{}, err
	}
	if _, err := ValidateLon(lon); err != nil {
		return Location{}, err
	}
	if _, err := ValidateDepth(depth); err != nil {
		return Location{}, err
	}
	return LocWithDepth(lat, lon, depth), nil
}

// Lat returns latitude in decimal degrees.
func (l Location) Lat() float64 { return l.lat }

// Lon returns longitude in decimal degrees.
func (l Location) Lon() float64 { return l.lon }

// Depth returns depth in km.
func (l Location) Depth() float64 { return l.depth }

// LatRad returns latitude in radians.
func (l Location) LatRad() float64 { return l.latRad }

// LonRad returns longitude in radians.
func (l Location) LonRad() float64 { return l.lonRad }

// AtDepth returns a copy of the Location at the supplied depth.
func (l Location) AtDepth(depth float64) Location {
	return LocWithDepth(l.lat, l.lon, depth)
}

// Equal reports whether two Locations are coincident within numeric
// tolerance.
func (l Location) Equal(o Location) bool {
	return math.Abs(l.lat-o.lat) < tolerance &&
		math.Abs(l.lon-o.lon) < tolerance &&
		math.Abs(l.depth-o.depth) < tolerance
}

// String formats the Location as "lon,lat,depth" with 5-decimal coordinates.
func (l Location) String() string {
	return fmt.Sprintf("%.5f,%.5f,%.5f", l.lon, l.lat, l.depth)
}
