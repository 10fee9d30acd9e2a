// Package fault provides fault parameter validation and trace geometry
// helpers shared by the surface and source-model packages.
package fault

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hazard-cli/internal/geo"
)

// Supported fault parameter ranges. Depth and width ranges differ by
// tectonic setting; surfaces of unknown use validate against the widest
// (interface) values.
const (
	MinStrike = 0.0
	MaxStrike = 360.0

	MinDip = 0.0
	MaxDip = 90.0

	MinRake = -180.0
	MaxRake = 180.0

	MinCrustalDepth = 0.0
	MaxCrustalDepth = 40.0

	MaxCrustalWidth = 60.0 // exclusive of 0

	MinSlabDepth = 20.0
	MaxSlabDepth = 700.0

	MinInterfaceDepth = 0.0
	MaxInterfaceDepth = 60.0

	MaxInterfaceWidth = 200.0 // exclusive of 0
)

// ValidateStrike returns strike or an error if outside [0, 360].
func ValidateStrike(strike float64) (float64, error) {
	return checkRange("strike", strike, MinStrike, MaxStrike)
}

// ValidateDip returns dip or an error if outside [0, 90].
func ValidateDip(dip float64) (float64, error) {
	return checkRange("dip", dip, MinDip, MaxDip)
}

// ValidateRake returns rake or an error if outside [-180, 180].
func ValidateRake(rake float64) (float64, error) {
	return checkRange("rake", rake, MinRake, MaxRake)
}

// ValidateDepth returns a crustal depth or an error if outside [0, 40] km.
func ValidateDepth(depth float64) (float64, error) {
	return checkRange("depth", depth, MinCrustalDepth, MaxCrustalDepth)
}

// ValidateSlabDepth returns a subduction slab depth or an error if outside
// [20, 700] km.
func ValidateSlabDepth(depth float64) (float64, error) {
	return checkRange("slab depth", depth, MinSlabDepth, MaxSlabDepth)
}

// ValidateInterfaceDepth returns a subduction interface depth or an error
// if outside [0, 60] km.
func ValidateInterfaceDepth(depth float64) (float64, error) {
	return checkRange("interface depth", depth, MinInterfaceDepth, MaxInterfaceDepth)
}

// ValidateWidth returns a crustal down-dip width or an error if outside
// (0, 60] km.
func ValidateWidth(width float64) (float64, error) {
	if width <= 0 || width > MaxCrustalWidth {
		return 0, eris.Errorf("fault: width %f outside (0..%.0f] km", width, MaxCrustalWidth)
	}
	return width, nil
}

// ValidateInterfaceWidth returns a subduction interface down-dip width or
// an error if outside (0, 200] km.
func ValidateInterfaceWidth(width float64) (float64, error) {
	if width <= 0 || width > MaxInterfaceWidth {
		return 0, eris.Errorf("fault: interface width %f outside (0..%.0f] km", width, MaxInterfaceWidth)
	}
	return width, nil
}

// ValidateTrace returns trace or an error if it has fewer than 2 points.
func ValidateTrace(trace geo.LocationList) (geo.LocationList, error) {
	if trace.Size() < 2 {
		return geo.LocationList{}, eris.Errorf("fault: trace requires 2 or more points, got %d", trace.Size())
	}
	return trace, nil
}

func checkRange(name string, v, min, max float64) (float64, error) {
	if v < min || v > max {
		return 0, eris.Errorf("fault: %s %f outside [%.0f..%.0f]", name, v, min, max)
	}
	return v, nil
}

// Strike returns the strike (degrees, [0°, 360°)) of a trace from the line
// connecting its first and last points. This has been shown to be as
// accurate as length-weighted angle averaging and is significantly faster.
func Strike(trace geo.LocationList) float64 {
	return geo.Azimuth(trace.First(), trace.Last())
}

// StrikeRad returns the strike of a trace in radians.
func StrikeRad(trace geo.LocationList) float64 {
	return geo.AzimuthRad(trace.First(), trace.Last())
}

// DipDirection returns the dip direction (degrees) normal to strike.
func DipDirection(strike float64) float64 {
	return math.Mod(strike+90.0, 360.0)
}

// DipDirectionRad returns the dip direction (radians) normal to strike.
func DipDirectionRad(strikeRad float64) float64 {
	return math.Mod(strikeRad+math.Pi/2, 2*math.Pi)
}

// DipDirectionForTrace returns the dip direction (radians) normal to the
// average strike of trace.
func DipDirectionForTrace(trace geo.LocationList) float64 {
	return DipDirectionRad(StrikeRad(trace))
}

// HypocentralDepth returns the depth (km) of the hypocenter centered down
// dip on a rupture with the supplied dip (degrees), width and depth to top.
func HypocentralDepth(dip, width, zTop float64) float64 {
	return zTop + math.Sin(dip*geo.ToRad)*width/2.0
}
