package surface

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hazard-cli/internal/fault"
	"github.com/sells-group/hazard-cli/internal/geo"
)

// Node spacing limits for gridded surfaces, km.
const (
	MinSpacing = 0.01
	MaxSpacing = 20.0
)

// GriddedSurface is the default extended-fault surface: an evenly
// discretized fault trace projected down dip in the direction normal to the
// average strike of the trace (the line connecting its endpoints).
type GriddedSurface struct {
	grid
	trace     geo.LocationList
	depth     float64
	dipRad    float64
	dipDirRad float64
	width     float64
	centroid  geo.Location
}

var _ Surface = (*GriddedSurface)(nil)

// GriddedSurfaceBuilder assembles a GriddedSurface. Builders are consumed
// by Build and return an error on reuse. Either a width or a lower depth
// must be supplied, not both; the dip direction defaults to the normal of
// the average trace strike.
type GriddedSurfaceBuilder struct {
	err   error
	built bool

	trace      geo.LocationList
	traceSet   bool
	dipRad     float64
	dipSet     bool
	depth      float64
	depthSet   bool
	width      float64
	widthSet   bool
	lowerDepth float64
	lowerSet   bool
	dipDirRad  float64
	dipDirSet  bool

	dipSpacing    float64
	strikeSpacing float64
}

// NewGriddedSurfaceBuilder returns a builder with 1 km default spacings.
func NewGriddedSurfaceBuilder() *GriddedSurfaceBuilder {
	return &GriddedSurfaceBuilder{dipSpacing: 1.0, strikeSpacing: 1.0}
}

func (b *GriddedSurfaceBuilder) fail(err error) *GriddedSurfaceBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Trace sets the fault trace.
func (b *GriddedSurfaceBuilder) Trace(trace geo.LocationList) *GriddedSurfaceBuilder {
	t, err := fault.ValidateTrace(trace)
	if err != nil {
		return b.fail(err)
	}
	b.trace = t
	b.traceSet = true
	return b
}

// Dip sets the dip in degrees.
func (b *GriddedSurfaceBuilder) Dip(dip float64) *GriddedSurfaceBuilder {
	d, err := fault.ValidateDip(dip)
	if err != nil {
		return b.fail(err)
	}
	b.dipRad = d * geo.ToRad
	b.dipSet = true
	return b
}

// DipDir sets an explicit dip direction in degrees. When unset the
// direction normal to the average trace strike is used.
func (b *GriddedSurfaceBuilder) DipDir(dipDir float64) *GriddedSurfaceBuilder {
	d, err := fault.ValidateStrike(dipDir)
	if err != nil {
		return b.fail(err)
	}
	b.dipDirRad = d * geo.ToRad
	b.dipDirSet = true
	return b
}

// Depth sets the depth to the top of the surface in km.
func (b *GriddedSurfaceBuilder) Depth(depth float64) *GriddedSurfaceBuilder {
	d, err := fault.ValidateInterfaceDepth(depth)
	if err != nil {
		return b.fail(err)
	}
	b.depth = d
	b.depthSet = true
	return b
}

// Width sets the down-dip width in km. Mutually exclusive with LowerDepth.
// The surface may represent any tectonic setting so the widest (interface)
// range applies.
func (b *GriddedSurfaceBuilder) Width(width float64) *GriddedSurfaceBuilder {
	if b.lowerSet {
		return b.fail(eris.New("surface: either width or lower depth may be set, not both"))
	}
	w, err := fault.ValidateInterfaceWidth(width)
	if err != nil {
		return b.fail(err)
	}
	b.width = w
	b.widthSet = true
	return b
}

// LowerDepth sets the depth to the bottom of the surface in km. Mutually
// exclusive with Width.
func (b *GriddedSurfaceBuilder) LowerDepth(lowerDepth float64) *GriddedSurfaceBuilder {
	if b.widthSet {
		return b.fail(eris.New("surface: either width or lower depth may be set, not both"))
	}
	d, err := fault.ValidateInterfaceDepth(lowerDepth)
	if err != nil {
		return b.fail(err)
	}
	b.lowerDepth = d
	b.lowerSet = true
	return b
}

// Spacing sets both node spacings in km.
func (b *GriddedSurfaceBuilder) Spacing(spacing float64) *GriddedSurfaceBuilder {
	return b.SpacingDipStrike(spacing, spacing)
}

// SpacingDipStrike sets independent down-dip and along-strike spacings.
func (b *GriddedSurfaceBuilder) SpacingDipStrike(dipSpacing, strikeSpacing float64) *GriddedSurfaceBuilder {
	if dipSpacing < MinSpacing || dipSpacing > MaxSpacing {
		return b.fail(eris.Errorf("surface: dip spacing %f outside [%.2f..%.0f]", dipSpacing, MinSpacing, MaxSpacing))
	}
	if strikeSpacing < MinSpacing || strikeSpacing > MaxSpacing {
		return b.fail(eris.Errorf("surface: strike spacing %f outside [%.2f..%.0f]", strikeSpacing, MinSpacing, MaxSpacing))
	}
	b.dipSpacing = dipSpacing
	b.strikeSpacing = strikeSpacing
	return b
}

// Build validates required fields and constructs the surface. The builder
// cannot be reused.
func (b *GriddedSurfaceBuilder) Build() (*GriddedSurface, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.built {
		return nil, eris.New("surface: gridded surface builder already used")
	}
	if !b.traceSet {
		return nil, eris.New("surface: gridded surface trace not set")
	}
	if !b.dipSet {
		return nil, eris.New("surface: gridded surface dip not set")
	}
	if !b.depthSet {
		return nil, eris.New("surface: gridded surface depth not set")
	}
	if b.widthSet == b.lowerSet {
		return nil, eris.New("surface: gridded surface width or lower depth not set")
	}
	if b.lowerSet && b.lowerDepth <= b.depth {
		return nil, eris.New("surface: lower depth is above upper depth")
	}
	b.built = true

	if !b.dipDirSet {
		b.dipDirRad = fault.DipDirectionForTrace(b.trace)
	}
	width := b.width
	if b.lowerSet {
		width = (b.lowerDepth - b.depth) / math.Sin(b.dipRad)
	}

	s := &GriddedSurface{
		trace:     b.trace,
		depth:     b.depth,
		dipRad:    b.dipRad,
		dipDirRad: b.dipDirRad,
		width:     width,
	}

	// snap to actual (best fit) spacings
	length := b.trace.Length()
	s.strikeSpacing = length / math.Ceil(length/b.strikeSpacing)
	s.dipSpacing = width / math.Ceil(width/b.dipSpacing)

	s.discretize()
	s.centroid = s.centroidOfNodes()
	return s, nil
}

// discretize lays out the surface grid: columns step along the trace at the
// strike spacing, rows project each top node down dip.
func (s *GriddedSurface) discretize() {
	numSegments := s.trace.Size() - 1
	hStep := s.dipSpacing * math.Cos(s.dipRad)
	vStep := s.dipSpacing * math.Sin(s.dipRad)

	segLength := make([]float64, numSegments)
	segAzimuth := make([]float64, numSegments)
	segCumLength := make([]float64, numSegments)

	var cumDistance float64
	for i := 0; i < numSegments; i++ {
		v := geo.VectorBetween(s.trace.Get(i), s.trace.Get(i+1))
		cumDistance += v.Horizontal
		segLength[i] = v.Horizontal
		segAzimuth[i] = v.Azimuth
		segCumLength[i] = cumDistance
	}

	rows := 1 + int(math.Round(s.width/s.dipSpacing))
	cols := 1 + int(math.Round(segCumLength[numSegments-1]/s.strikeSpacing))
	s.init(rows, cols)

	for col := 0; col < cols; col++ {
		distanceAlong := float64(col) * s.strikeSpacing

		// locate the segment containing this column
		segment := 1
		for segment <= numSegments && distanceAlong > segCumLength[segment-1] {
			segment++
		}
		// snap back when a grid point just barely steps off the end
		if segment == numSegments+1 {
			segment--
		}

		distance := distanceAlong
		if segment > 1 {
			distance = distanceAlong - segCumLength[segment-2]
		}

		v := geo.NewVector(segAzimuth[segment-1], distance, 0)
		traceLoc := geo.ShiftedLocation(s.trace.Get(segment-1), v)
		topLoc := geo.LocWithDepth(traceLoc.Lat(), traceLoc.Lon(), s.depth)
		s.set(0, col, topLoc)

		for row := 1; row < rows; row++ {
			down := geo.NewVector(s.dipDirRad, float64(row)*hStep, float64(row)*vStep)
			s.set(row, col, geo.ShiftedLocation(topLoc, down))
		}
	}
}

// Strike returns the strike of the original trace.
func (s *GriddedSurface) Strike() float64 { return fault.Strike(s.trace) }

// Dip returns the dip in degrees.
func (s *GriddedSurface) Dip() float64 { return s.dipRad * geo.ToDeg }

// DipRad returns the dip in radians.
func (s *GriddedSurface) DipRad() float64 { return s.dipRad }

// DipDirection returns the dip direction in degrees.
func (s *GriddedSurface) DipDirection() float64 { return s.dipDirRad * geo.ToDeg }

// Depth returns the depth to the top of the surface.
func (s *GriddedSurface) Depth() float64 { return s.depth }

// Width returns the down-dip width.
func (s *GriddedSurface) Width() float64 { return s.width }

// Length returns the along-strike length of the discretized surface.
func (s *GriddedSurface) Length() float64 {
	return s.strikeSpacing * float64(s.cols-1)
}

// Area returns length × width.
func (s *GriddedSurface) Area() float64 { return s.Length() * s.width }

// Centroid returns the average position of all surface nodes.
func (s *GriddedSurface) Centroid() geo.Location { return s.centroid }

// Perimeter returns a reduced-point outline derived from the original trace
// rather than the discretized grid.
func (s *GriddedSurface) Perimeter() geo.LocationList {
	lowerDepth := s.depth + s.width*math.Sin(s.dipRad)
	vDist := lowerDepth - s.depth
	hDist := vDist / math.Tan(s.dipRad)

	top := make([]geo.Location, 0, s.trace.Size())
	bot := make([]geo.Location, 0, s.trace.Size())
	for _, traceLoc := range s.trace.All() {
		top = append(top, geo.LocWithDepth(traceLoc.Lat(), traceLoc.Lon(), s.depth))
		down := geo.NewVector(s.dipDirRad, hDist, vDist)
		bot = append(bot, geo.ShiftedLocation(traceLoc, down))
	}

	perimeter := make([]geo.Location, 0, 2*len(top)+1)
	perimeter = append(perimeter, top...)
	for i := len(bot) - 1; i >= 0; i-- {
		perimeter = append(perimeter, bot[i])
	}
	perimeter = append(perimeter, top[0])
	return geo.LocList(perimeter...)
}

// DistanceTo returns the distance metrics from the surface to loc.
func (s *GriddedSurface) DistanceTo(loc geo.Location) Distance {
	return Compute(s, loc)
}
