package geo

import (
	"fmt"
	"math"
)

// Vector is a displacement between two Locations, expressed as an azimuth
// (radians), a horizontal distance (km) and a vertical distance (km,
// positive down). Used by surface construction to project traces down dip.
type Vector struct {
	Azimuth    float64
	Horizontal float64
	Vertical   float64
}

// NewVector returns a Vector with the supplied components.
func NewVector(azimuthRad, horizontal, vertical float64) Vector {
	return Vector{Azimuth: azimuthRad, Horizontal: horizontal, Vertical: vertical}
}

// VectorBetween returns the Vector describing the displacement from p1 to p2.
func VectorBetween(p1, p2 Location) Vector {
	return Vector{
		Azimuth:    AzimuthRad(p1, p2),
		Horizontal: HorzDistance(p1, p2),
		Vertical:   VertDistance(p1, p2),
	}
}

// VectorWithPlunge returns a Vector derived from an azimuth, a plunge angle
// (radians, positive down) and a slant distance (km).
func VectorWithPlunge(azimuthRad, plungeRad, distance float64) Vector {
	return Vector{
		Azimuth:    azimuthRad,
		Horizontal: distance * math.Cos(plungeRad),
		Vertical:   distance * math.Sin(plungeRad),
	}
}

// AzimuthDeg returns the azimuth in decimal degrees, [0°, 360°).
func (v Vector) AzimuthDeg() float64 {
	return math.Mod(v.Azimuth*ToDeg+360.0, 360.0)
}

// Plunge returns the plunge angle in radians.
func (v Vector) Plunge() float64 {
	return math.Atan2(v.Vertical, v.Horizontal)
}

// Reverse returns the Vector pointing the opposite way.
func (v Vector) Reverse() Vector {
	return Vector{
		Azimuth:    math.Mod(v.Azimuth+math.Pi, twoPi),
		Horizontal: v.Horizontal,
		Vertical:   -v.Vertical,
	}
}

func (v Vector) String() string {
	return fmt.Sprintf("az: %.4f rad, dH: %.4f km, dV: %.4f km", v.Azimuth, v.Horizontal, v.Vertical)
}
