package model

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/hazard-cli/internal/fault"
	"github.com/sells-group/hazard-cli/internal/fault/surface"
	"github.com/sells-group/hazard-cli/internal/geo"
	"github.com/sells-group/hazard-cli/internal/mfd"
)

// InterfaceSource is a subduction interface: a fault source whose surface
// may be built either from an upper trace with depth, dip and width, or
// from paired upper and lower traces that pin the surface at both edges.
type InterfaceSource struct {
	FaultSource
	lowerTrace geo.LocationList
}

// LowerTrace returns the lower edge of the surface; derived from the
// discretized surface when the source was built from a single trace.
func (s *InterfaceSource) LowerTrace() geo.LocationList { return s.lowerTrace }

// InterfaceSourceBuilder assembles an InterfaceSource. Geometry is
// specified one of two ways: Trace with Depth, Dip and Width, or Trace
// with LowerTrace, in which case depth, dip and width derive from the
// surface.
type InterfaceSourceBuilder struct {
	err   error
	built bool

	name        string
	id          *int
	trace       geo.LocationList
	traceSet    bool
	lowerTrace  geo.LocationList
	lowerSet    bool
	dip         *float64
	width       *float64
	depth       *float64
	rake        *float64
	mfds        []*mfd.Mfd
	spacing     *float64
	scaling     *surface.ScalingModel
	floating    *surface.FloatingModel
	variability *bool
	minRate     float64
}

func NewInterfaceSourceBuilder() *InterfaceSourceBuilder {
	return &InterfaceSourceBuilder{minRate: DefaultMinRuptureRate}
}

func (b *InterfaceSourceBuilder) fail(err error) *InterfaceSourceBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

func (b *InterfaceSourceBuilder) Name(name string) *InterfaceSourceBuilder {
	if name == "" {
		return b.fail(eris.New("interface: name is empty"))
	}
	b.name = name
	return b
}

func (b *InterfaceSourceBuilder) ID(id int) *InterfaceSourceBuilder {
	b.id = &id
	return b
}

func (b *InterfaceSourceBuilder) Trace(trace geo.LocationList) *InterfaceSourceBuilder {
	if _, err := fault.ValidateTrace(trace); err != nil {
		return b.fail(err)
	}
	b.trace = trace
	b.traceSet = true
	return b
}

// LowerTrace pins the lower edge of the surface. The upper trace must be
// set first and the traces must pair point for point.
func (b *InterfaceSourceBuilder) LowerTrace(trace geo.LocationList) *InterfaceSourceBuilder {
	if !b.traceSet {
		return b.fail(eris.New("interface: upper trace must be set first"))
	}
	if _, err := fault.ValidateTrace(trace); err != nil {
		return b.fail(err)
	}
	if trace.Size() != b.trace.Size() {
		return b.fail(eris.Errorf("interface: upper and lower trace sizes differ [%d, %d]",
			b.trace.Size(), trace.Size()))
	}
	b.lowerTrace = trace
	b.lowerSet = true
	return b
}

func (b *InterfaceSourceBuilder) Dip(dip float64) *InterfaceSourceBuilder {
	if _, err := fault.ValidateDip(dip); err != nil {
		return b.fail(err)
	}
	b.dip = &dip
	return b
}

func (b *InterfaceSourceBuilder) Width(width float64) *InterfaceSourceBuilder {
	if _, err := fault.ValidateInterfaceWidth(width); err != nil {
		return b.fail(err)
	}
	b.width = &width
	return b
}

func (b *InterfaceSourceBuilder) Depth(depth float64) *InterfaceSourceBuilder {
	if _, err := fault.ValidateInterfaceDepth(depth); err != nil {
		return b.fail(err)
	}
	b.depth = &depth
	return b
}

func (b *InterfaceSourceBuilder) Rake(rake float64) *InterfaceSourceBuilder {
	if _, err := fault.ValidateRake(rake); err != nil {
		return b.fail(err)
	}
	b.rake = &rake
	return b
}

func (b *InterfaceSourceBuilder) Mfd(m *mfd.Mfd) *InterfaceSourceBuilder {
	if m == nil {
		return b.fail(eris.New("interface: mfd is nil"))
	}
	b.mfds = append(b.mfds, m)
	return b
}

func (b *InterfaceSourceBuilder) SurfaceSpacing(spacing float64) *InterfaceSourceBuilder {
	if spacing < surface.MinSpacing || spacing > surface.MaxSpacing {
		return b.fail(eris.Errorf("interface: surface spacing %f outside [%f, %f]",
			spacing, surface.MinSpacing, surface.MaxSpacing))
	}
	b.spacing = &spacing
	return b
}

func (b *InterfaceSourceBuilder) Scaling(scaling surface.ScalingModel) *InterfaceSourceBuilder {
	b.scaling = &scaling
	return b
}

func (b *InterfaceSourceBuilder) Floating(floating surface.FloatingModel) *InterfaceSourceBuilder {
	b.floating = &floating
	return b
}

func (b *InterfaceSourceBuilder) Variability(v bool) *InterfaceSourceBuilder {
	b.variability = &v
	return b
}

// MinRuptureRate overrides the rate below which rupture bins are dropped.
func (b *InterfaceSourceBuilder) MinRuptureRate(rate float64) *InterfaceSourceBuilder {
	if rate < 0 {
		return b.fail(eris.Errorf("interface: min rupture rate %g is negative", rate))
	}
	b.minRate = rate
	return b
}

func (b *InterfaceSourceBuilder) checkState() error {
	if b.err != nil {
		return b.err
	}
	if b.built {
		return eris.New("interface: builder already used")
	}
	switch {
	case b.name == "":
		return eris.New("interface: name not set")
	case b.id == nil:
		return eris.New("interface: id not set")
	case !b.traceSet:
		return eris.New("interface: trace not set")
	case b.rake == nil:
		return eris.New("interface: rake not set")
	case len(b.mfds) == 0:
		return eris.New("interface: has no mfds")
	case b.spacing == nil:
		return eris.New("interface: surface grid spacing not set")
	case b.scaling == nil:
		return eris.New("interface: rupture-scaling relation not set")
	case b.floating == nil:
		return eris.New("interface: rupture-floating model not set")
	case b.variability == nil:
		return eris.New("interface: rupture-area variability flag not set")
	}
	if !b.lowerSet {
		switch {
		case b.depth == nil:
			return eris.New("interface: depth not set")
		case b.dip == nil:
			return eris.New("interface: dip not set")
		case b.width == nil:
			return eris.New("interface: width not set")
		}
	}
	b.built = true
	return nil
}

func (b *InterfaceSourceBuilder) Build() (*InterfaceSource, error) {
	if err := b.checkState(); err != nil {
		return nil, err
	}

	var surf surface.Surface
	if b.lowerSet {
		approx, err := surface.NewApproxGriddedSurface(b.trace, b.lowerTrace, *b.spacing)
		if err != nil {
			return nil, err
		}
		surf = approx
	} else {
		gridded, err := surface.NewGriddedSurfaceBuilder().
			Trace(b.trace).
			Depth(*b.depth).
			Dip(*b.dip).
			Width(*b.width).
			Spacing(*b.spacing).
			Build()
		if err != nil {
			return nil, err
		}
		surf = gridded
	}

	s := &InterfaceSource{
		FaultSource: FaultSource{
			name:        b.name,
			id:          *b.id,
			trace:       b.trace,
			dip:         surf.Dip(),
			width:       surf.Width(),
			rake:        *b.rake,
			mfds:        b.mfds,
			spacing:     *b.spacing,
			scaling:     *b.scaling,
			floating:    *b.floating,
			variability: *b.variability,
			surface:     surf,
		},
	}
	if b.lowerSet {
		s.lowerTrace = b.lowerTrace
	} else {
		// derive the lower edge from the discretized surface
		rows, cols := surf.Rows(), surf.Cols()
		lower := make([]geo.Location, cols)
		for col := 0; col < cols; col++ {
			lower[col] = surf.At(rows-1, col)
		}
		s.lowerTrace = geo.LocList(lower...)
	}
	if err := s.createRuptures(b.minRate); err != nil {
		return nil, err
	}
	return s, nil
}

// InterfaceSourceSet is a collection of subduction interface sources.
type InterfaceSourceSet struct {
	sourceSetInfo
	sources []*InterfaceSource
}

func (s *InterfaceSourceSet) Type() SourceType { return TypeInterface }

func (s *InterfaceSourceSet) Size() int { return len(s.sources) }

func (s *InterfaceSourceSet) Source(i int) Source { return s.sources[i] }

// Near filters against both the upper and lower traces; interface
// surfaces are wide enough that the lower edge governs for many sites.
func (s *InterfaceSourceSet) Near(site geo.Location, distance float64) []Source {
	var near []Source
	for _, src := range s.sources {
		if traceIsNear(src.trace, site, distance) ||
			traceIsNear(src.lowerTrace, site, distance) {
			near = append(near, src)
		}
	}
	return near
}

// InterfaceSourceSetBuilder assembles an InterfaceSourceSet.
type InterfaceSourceSetBuilder struct {
	setBuilder
	sources []*InterfaceSource
}

func NewInterfaceSourceSetBuilder() *InterfaceSourceSetBuilder {
	b := &InterfaceSourceSetBuilder{}
	b.label = "interface set"
	return b
}

func (b *InterfaceSourceSetBuilder) Name(name string) *InterfaceSourceSetBuilder {
	b.setName(name)
	return b
}

func (b *InterfaceSourceSetBuilder) ID(id int) *InterfaceSourceSetBuilder {
	b.setID(id)
	return b
}

func (b *InterfaceSourceSetBuilder) Weight(weight float64) *InterfaceSourceSetBuilder {
	b.setWeight(weight)
	return b
}

func (b *InterfaceSourceSetBuilder) Gmms(gmms *GmmSet) *InterfaceSourceSetBuilder {
	b.setGmms(gmms)
	return b
}

func (b *InterfaceSourceSetBuilder) Source(src *InterfaceSource) *InterfaceSourceSetBuilder {
	if src == nil {
		b.fail(eris.New("interface set: source is nil"))
		return b
	}
	b.sources = append(b.sources, src)
	return b
}

func (b *InterfaceSourceSetBuilder) Build() (*InterfaceSourceSet, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	if len(b.sources) == 0 {
		return nil, eris.New("interface set: source list is empty")
	}
	return &InterfaceSourceSet{sourceSetInfo: b.info, sources: b.sources}, nil
}
