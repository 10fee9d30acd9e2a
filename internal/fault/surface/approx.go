package surface

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hazard-cli/internal/fault"
	"github.com/sells-group/hazard-cli/internal/geo"
)

// ApproxGriddedSurface is an approximately gridded surface spanning an
// upper and a lower trace, used for subduction interfaces where the fault
// geometry is defined by its edges rather than a trace-dip-width triple.
// Columns connect resampled points on the two traces; rows interpolate
// evenly between them, so node spacing is only approximately uniform.
type ApproxGriddedSurface struct {
	grid
	upper    geo.LocationList
	lower    geo.LocationList
	dipRad   float64
	width    float64
	centroid geo.Location
}

var _ Surface = (*ApproxGriddedSurface)(nil)

// NewApproxGriddedSurface builds a surface between two traces at the
// supplied node spacing (km). The traces are assumed to run in the same
// direction; the lower trace must be deeper than the upper everywhere.
func NewApproxGriddedSurface(upper, lower geo.LocationList, spacing float64) (*ApproxGriddedSurface, error) {
	if _, err := fault.ValidateTrace(upper); err != nil {
		return nil, eris.Wrap(err, "surface: approx surface upper trace")
	}
	if _, err := fault.ValidateTrace(lower); err != nil {
		return nil, eris.Wrap(err, "surface: approx surface lower trace")
	}
	if spacing < MinSpacing || spacing > MaxSpacing {
		return nil, eris.Errorf("surface: spacing %f outside [%.2f..%.0f]", spacing, MinSpacing, MaxSpacing)
	}
	if lower.MinDepth() <= upper.MaxDepth() {
		return nil, eris.New("surface: lower trace is not below upper trace")
	}

	avgLength := (upper.Length() + lower.Length()) / 2.0
	segments := int(math.Round(avgLength / spacing))
	if segments < 1 {
		segments = 1
	}
	top := upper.Resample(segments)
	bot := lower.Resample(segments)
	cols := top.Size()
	if bot.Size() < cols {
		cols = bot.Size()
	}

	// average down-dip extent between paired edge points
	var slantSum, plungeSum float64
	for col := 0; col < cols; col++ {
		v := geo.VectorBetween(top.Get(col), bot.Get(col))
		slantSum += math.Hypot(v.Horizontal, v.Vertical)
		plungeSum += v.Plunge()
	}
	width := slantSum / float64(cols)
	dipRad := plungeSum / float64(cols)

	rows := int(math.Round(width/spacing)) + 1
	if rows < 2 {
		rows = 2
	}

	s := &ApproxGriddedSurface{
		upper:  top,
		lower:  bot,
		dipRad: dipRad,
		width:  width,
	}
	s.strikeSpacing = avgLength / float64(segments)
	s.dipSpacing = width / float64(rows-1)
	s.init(rows, cols)

	for col := 0; col < cols; col++ {
		topLoc := top.Get(col)
		v := geo.VectorBetween(topLoc, bot.Get(col))
		for row := 0; row < rows; row++ {
			f := float64(row) / float64(rows-1)
			step := geo.NewVector(v.Azimuth, v.Horizontal*f, v.Vertical*f)
			s.set(row, col, geo.ShiftedLocation(topLoc, step))
		}
	}
	s.centroid = s.centroidOfNodes()
	return s, nil
}

// Strike returns the strike of the resampled upper trace.
func (s *ApproxGriddedSurface) Strike() float64 { return fault.Strike(s.upper) }

// Dip returns the average dip in degrees.
func (s *ApproxGriddedSurface) Dip() float64 { return s.dipRad * geo.ToDeg }

// DipRad returns the average dip in radians.
func (s *ApproxGriddedSurface) DipRad() float64 { return s.dipRad }

// DipDirection returns the direction normal to the upper trace strike.
func (s *ApproxGriddedSurface) DipDirection() float64 {
	return fault.DipDirection(s.Strike())
}

// Depth returns the shallowest depth of the upper trace.
func (s *ApproxGriddedSurface) Depth() float64 { return s.upper.MinDepth() }

// Width returns the average down-dip width.
func (s *ApproxGriddedSurface) Width() float64 { return s.width }

// Length returns the along-strike length.
func (s *ApproxGriddedSurface) Length() float64 {
	return s.strikeSpacing * float64(s.cols-1)
}

// Area returns length × width.
func (s *ApproxGriddedSurface) Area() float64 { return s.Length() * s.width }

// Centroid returns the average position of all surface nodes.
func (s *ApproxGriddedSurface) Centroid() geo.Location { return s.centroid }

// Perimeter returns the closed outline of the discretized grid.
func (s *ApproxGriddedSurface) Perimeter() geo.LocationList {
	return s.gridPerimeter()
}

// DistanceTo returns the distance metrics from the surface to loc.
func (s *ApproxGriddedSurface) DistanceTo(loc geo.Location) Distance {
	return Compute(s, loc)
}
