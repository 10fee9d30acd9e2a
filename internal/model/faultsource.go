package model

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/hazard-cli/internal/fault"
	"github.com/sells-group/hazard-cli/internal/fault/surface"
	"github.com/sells-group/hazard-cli/internal/geo"
	"github.com/sells-group/hazard-cli/internal/mfd"
)

// DefaultMinRuptureRate is the annual rate below which fault rupture
// bins are dropped during enumeration.
const DefaultMinRuptureRate = 1e-14

// FaultSource is a crustal fault: a surface built from a trace with one
// or more MFDs spread across it. Ruptures are enumerated up front; MFD
// bins whose magnitude floats spawn one rupture per floating sub-surface,
// full-surface bins spawn one.
type FaultSource struct {
	name     string
	id       int
	trace    geo.LocationList
	dip      float64
	width    float64
	rake     float64
	mfds     []*mfd.Mfd
	spacing  float64
	scaling  surface.ScalingModel
	floating surface.FloatingModel
	// variability spreads floater weight over rupture-area uncertainty.
	variability bool

	surface  surface.Surface
	ruptures []*Rupture
}

func (s *FaultSource) Name() string { return s.name }

// ID returns the source's model-assigned id.
func (s *FaultSource) ID() int { return s.id }

// Trace returns the surface trace the source was built from.
func (s *FaultSource) Trace() geo.LocationList { return s.trace }

// Surface returns the discretized fault surface.
func (s *FaultSource) Surface() surface.Surface { return s.surface }

// Mfds returns the MFDs spread across the surface.
func (s *FaultSource) Mfds() []*mfd.Mfd { return s.mfds }

func (s *FaultSource) Size() int { return len(s.ruptures) }

func (s *FaultSource) Ruptures() (RuptureIterator, error) {
	return &sliceIterator{ruptures: s.ruptures}, nil
}

// createRuptures expands the source's MFDs over the surface.
func (s *FaultSource) createRuptures(minRate float64) error {
	for _, m := range s.mfds {
		n := len(s.ruptures)
		for i := 0; i < m.Size(); i++ {
			mag := m.Mag(i)
			rate := m.Rate(i)
			if rate < minRate {
				continue
			}
			if !m.Floats() {
				s.ruptures = append(s.ruptures, &Rupture{
					Mag: mag, Rake: s.rake, Rate: rate, Surface: s.surface,
				})
				continue
			}
			floaters, err := s.floating.Float(s.surface, s.scaling, mag, s.variability)
			if err != nil {
				return err
			}
			for _, f := range floaters {
				s.ruptures = append(s.ruptures, &Rupture{
					Mag: mag, Rake: s.rake, Rate: rate * f.Weight, Surface: f.Surface,
				})
			}
		}
		if len(s.ruptures) == n {
			return eris.Errorf("fault: source %q mfd yields no ruptures", s.name)
		}
	}
	if len(s.ruptures) == 0 {
		return eris.Errorf("fault: source %q has no ruptures", s.name)
	}
	return nil
}

// FaultSourceBuilder incrementally assembles a FaultSource and its
// surface.
type FaultSourceBuilder struct {
	err   error
	built bool
	label string

	name        string
	id          *int
	trace       geo.LocationList
	traceSet    bool
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

func NewFaultSourceBuilder() *FaultSourceBuilder {
	return &FaultSourceBuilder{label: "fault", minRate: DefaultMinRuptureRate}
}

func (b *FaultSourceBuilder) fail(err error) *FaultSourceBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

func (b *FaultSourceBuilder) Name(name string) *FaultSourceBuilder {
	if name == "" {
		return b.fail(eris.Errorf("%s: name is empty", b.label))
	}
	b.name = name
	return b
}

func (b *FaultSourceBuilder) ID(id int) *FaultSourceBuilder {
	b.id = &id
	return b
}

func (b *FaultSourceBuilder) Trace(trace geo.LocationList) *FaultSourceBuilder {
	if _, err := fault.ValidateTrace(trace); err != nil {
		return b.fail(err)
	}
	b.trace = trace
	b.traceSet = true
	return b
}

func (b *FaultSourceBuilder) Dip(dip float64) *FaultSourceBuilder {
	if _, err := fault.ValidateDip(dip); err != nil {
		return b.fail(err)
	}
	b.dip = &dip
	return b
}

func (b *FaultSourceBuilder) Width(width float64) *FaultSourceBuilder {
	if _, err := fault.ValidateWidth(width); err != nil {
		return b.fail(err)
	}
	b.width = &width
	return b
}

func (b *FaultSourceBuilder) Depth(depth float64) *FaultSourceBuilder {
	if _, err := fault.ValidateDepth(depth); err != nil {
		return b.fail(err)
	}
	b.depth = &depth
	return b
}

func (b *FaultSourceBuilder) Rake(rake float64) *FaultSourceBuilder {
	if _, err := fault.ValidateRake(rake); err != nil {
		return b.fail(err)
	}
	b.rake = &rake
	return b
}

func (b *FaultSourceBuilder) Mfd(m *mfd.Mfd) *FaultSourceBuilder {
	if m == nil {
		return b.fail(eris.Errorf("%s: mfd is nil", b.label))
	}
	b.mfds = append(b.mfds, m)
	return b
}

func (b *FaultSourceBuilder) Mfds(mfds []*mfd.Mfd) *FaultSourceBuilder {
	if len(mfds) == 0 {
		return b.fail(eris.Errorf("%s: mfd list is empty", b.label))
	}
	for _, m := range mfds {
		b.Mfd(m)
	}
	return b
}

func (b *FaultSourceBuilder) SurfaceSpacing(spacing float64) *FaultSourceBuilder {
	if spacing < surface.MinSpacing || spacing > surface.MaxSpacing {
		return b.fail(eris.Errorf("%s: surface spacing %f outside [%f, %f]",
			b.label, spacing, surface.MinSpacing, surface.MaxSpacing))
	}
	b.spacing = &spacing
	return b
}

func (b *FaultSourceBuilder) Scaling(scaling surface.ScalingModel) *FaultSourceBuilder {
	b.scaling = &scaling
	return b
}

func (b *FaultSourceBuilder) Floating(floating surface.FloatingModel) *FaultSourceBuilder {
	b.floating = &floating
	return b
}

func (b *FaultSourceBuilder) Variability(v bool) *FaultSourceBuilder {
	b.variability = &v
	return b
}

// MinRuptureRate overrides the rate below which rupture bins are dropped.
func (b *FaultSourceBuilder) MinRuptureRate(rate float64) *FaultSourceBuilder {
	if rate < 0 {
		return b.fail(eris.Errorf("%s: min rupture rate %g is negative", b.label, rate))
	}
	b.minRate = rate
	return b
}

func (b *FaultSourceBuilder) checkState() error {
	if b.err != nil {
		return b.err
	}
	if b.built {
		return eris.Errorf("%s: builder already used", b.label)
	}
	switch {
	case b.name == "":
		return eris.Errorf("%s: name not set", b.label)
	case b.id == nil:
		return eris.Errorf("%s: id not set", b.label)
	case !b.traceSet:
		return eris.Errorf("%s: trace not set", b.label)
	case b.dip == nil:
		return eris.Errorf("%s: dip not set", b.label)
	case b.width == nil:
		return eris.Errorf("%s: width not set", b.label)
	case b.depth == nil:
		return eris.Errorf("%s: depth not set", b.label)
	case b.rake == nil:
		return eris.Errorf("%s: rake not set", b.label)
	case len(b.mfds) == 0:
		return eris.Errorf("%s: has no mfds", b.label)
	case b.spacing == nil:
		return eris.Errorf("%s: surface grid spacing not set", b.label)
	case b.scaling == nil:
		return eris.Errorf("%s: rupture-scaling relation not set", b.label)
	case b.floating == nil:
		return eris.Errorf("%s: rupture-floating model not set", b.label)
	case b.variability == nil:
		return eris.Errorf("%s: rupture-area variability flag not set", b.label)
	}
	b.built = true
	return nil
}

func (b *FaultSourceBuilder) Build() (*FaultSource, error) {
	if err := b.checkState(); err != nil {
		return nil, err
	}
	surf, err := surface.NewGriddedSurfaceBuilder().
		Trace(b.trace).
		Depth(*b.depth).
		Dip(*b.dip).
		Width(*b.width).
		Spacing(*b.spacing).
		Build()
	if err != nil {
		return nil, err
	}
	s := &FaultSource{
		name:        b.name,
		id:          *b.id,
		trace:       b.trace,
		dip:         *b.dip,
		width:       *b.width,
		rake:        *b.rake,
		mfds:        b.mfds,
		spacing:     *b.spacing,
		scaling:     *b.scaling,
		floating:    *b.floating,
		variability: *b.variability,
		surface:     surf,
	}
	if err := s.createRuptures(b.minRate); err != nil {
		return nil, err
	}
	return s, nil
}

// FaultSourceSet is a collection of crustal fault sources.
type FaultSourceSet struct {
	sourceSetInfo
	sources []*FaultSource
}

func (s *FaultSourceSet) Type() SourceType { return TypeFault }

func (s *FaultSourceSet) Size() int { return len(s.sources) }

func (s *FaultSourceSet) Source(i int) Source { return s.sources[i] }

func (s *FaultSourceSet) Near(site geo.Location, distance float64) []Source {
	var near []Source
	for _, src := range s.sources {
		if traceIsNear(src.trace, site, distance) {
			near = append(near, src)
		}
	}
	return near
}

// traceIsNear is the quick trace-proximity test applied before full
// distance calculations: either endpoint within range, or the site within
// range of the great circle extensions of the trace segments.
func traceIsNear(trace geo.LocationList, site geo.Location, distance float64) bool {
	return geo.HorzDistanceFast(site, trace.First()) <= distance ||
		geo.HorzDistanceFast(site, trace.Last()) <= distance ||
		geo.MinDistanceToLine(site, trace) <= distance
}

// FaultSourceSetBuilder assembles a FaultSourceSet.
type FaultSourceSetBuilder struct {
	setBuilder
	sources []*FaultSource
}

func NewFaultSourceSetBuilder() *FaultSourceSetBuilder {
	b := &FaultSourceSetBuilder{}
	b.label = "fault set"
	return b
}

func (b *FaultSourceSetBuilder) Name(name string) *FaultSourceSetBuilder {
	b.setName(name)
	return b
}

func (b *FaultSourceSetBuilder) ID(id int) *FaultSourceSetBuilder {
	b.setID(id)
	return b
}

func (b *FaultSourceSetBuilder) Weight(weight float64) *FaultSourceSetBuilder {
	b.setWeight(weight)
	return b
}

func (b *FaultSourceSetBuilder) Gmms(gmms *GmmSet) *FaultSourceSetBuilder {
	b.setGmms(gmms)
	return b
}

func (b *FaultSourceSetBuilder) Source(src *FaultSource) *FaultSourceSetBuilder {
	if src == nil {
		b.fail(eris.Errorf("%s: source is nil", b.label))
		return b
	}
	b.sources = append(b.sources, src)
	return b
}

func (b *FaultSourceSetBuilder) Build() (*FaultSourceSet, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	if len(b.sources) == 0 {
		return nil, eris.Errorf("%s: source list is empty", b.label)
	}
	return &FaultSourceSet{sourceSetInfo: b.info, sources: b.sources}, nil
}
