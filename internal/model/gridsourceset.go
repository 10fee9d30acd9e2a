package model

import (
	"math"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hazard-cli/internal/fault"
	"github.com/sells-group/hazard-cli/internal/fault/surface"
	"github.com/sells-group/hazard-cli/internal/geo"
	"github.com/sells-group/hazard-cli/internal/mfd"
)

// GridSourceSet is a collection of point sources, one per grid node, each
// with its own magnitude-frequency distribution and optionally its own
// focal mechanism weights. Slab sets share this implementation under
// TypeSlab with slab depth validation.
type GridSourceSet struct {
	sourceSetInfo

	typ        SourceType
	locs       []geo.Location
	mfds       []*mfd.Mfd
	mechMaps   []MechWeights
	depthModel *DepthModel
	strike     float64 // NaN unless fixed-strike
	sourceType PointSourceType
	scaling    surface.ScalingModel
}

func (s *GridSourceSet) Type() SourceType { return s.typ }

// SourceType returns the point source rendering of the set.
func (s *GridSourceSet) SourceType() PointSourceType { return s.sourceType }

// DepthModel exposes the flattened depth model shared by the set's
// sources.
func (s *GridSourceSet) DepthModel() *DepthModel { return s.depthModel }

func (s *GridSourceSet) Size() int { return len(s.locs) }

// Source builds the point source for node i. The builder has validated
// every node, so construction cannot fail.
func (s *GridSourceSet) Source(i int) Source {
	switch s.sourceType {
	case PointTypeFinite:
		src, _ := NewPointSourceFinite(s.locs[i], s.mfds[i], s.mechMaps[i], s.scaling, s.depthModel)
		return src
	case PointTypeFixedStrike:
		src, _ := NewPointSourceFixedStrike(s.locs[i], s.mfds[i], s.mechMaps[i], s.scaling,
			s.depthModel, s.strike)
		return src
	default:
		src, _ := NewPointSource(s.locs[i], s.mfds[i], s.mechMaps[i], s.scaling, s.depthModel)
		return src
	}
}

func (s *GridSourceSet) Near(site geo.Location, distance float64) []Source {
	keep := geo.DistanceAndRectangleFilter(site, distance)
	var near []Source
	for i, loc := range s.locs {
		if keep(loc) {
			near = append(near, s.Source(i))
		}
	}
	return near
}

// GridSourceSetBuilder incrementally assembles a GridSourceSet.
type GridSourceSetBuilder struct {
	setBuilder

	typ         SourceType
	strike      float64
	strikeSet   bool
	sourceType  *PointSourceType
	scaling     *surface.ScalingModel
	magDepthMap MagDepthMap
	maxDepth    *float64
	mechMap     MechWeights

	locs     []geo.Location
	mfds     []*mfd.Mfd
	mechMaps []MechWeights

	mMin, mMax, dMag *float64
}

// NewGridSourceSetBuilder starts a builder for a grid-backed set of the
// supplied type; TypeGrid, TypeSlab and TypeArea apply.
func NewGridSourceSetBuilder(typ SourceType) *GridSourceSetBuilder {
	b := &GridSourceSetBuilder{typ: typ, strike: math.NaN()}
	b.label = "grid"
	if typ != TypeGrid && typ != TypeSlab && typ != TypeArea {
		b.fail(eris.Errorf("grid: %s is not a grid-backed source type", typ))
	}
	return b
}

func (b *GridSourceSetBuilder) Name(name string) *GridSourceSetBuilder {
	b.setName(name)
	return b
}

func (b *GridSourceSetBuilder) ID(id int) *GridSourceSetBuilder {
	b.setID(id)
	return b
}

func (b *GridSourceSetBuilder) Weight(weight float64) *GridSourceSetBuilder {
	b.setWeight(weight)
	return b
}

func (b *GridSourceSetBuilder) Gmms(gmms *GmmSet) *GridSourceSetBuilder {
	b.setGmms(gmms)
	return b
}

// Strike fixes the strike of all ruptures. NaN marks the strike unknown,
// which is the norm for grid sources.
func (b *GridSourceSetBuilder) Strike(strike float64) *GridSourceSetBuilder {
	if !math.IsNaN(strike) {
		if _, err := fault.ValidateStrike(strike); err != nil {
			b.fail(err)
			return b
		}
	}
	b.strike = strike
	b.strikeSet = true
	return b
}

func (b *GridSourceSetBuilder) SourceType(t PointSourceType) *GridSourceSetBuilder {
	b.sourceType = &t
	return b
}

func (b *GridSourceSetBuilder) Scaling(scaling surface.ScalingModel) *GridSourceSetBuilder {
	b.scaling = &scaling
	return b
}

func (b *GridSourceSetBuilder) DepthMap(m MagDepthMap) *GridSourceSetBuilder {
	if len(m) == 0 {
		b.fail(eris.New("grid: mag-depth map is empty"))
		return b
	}
	b.magDepthMap = m
	return b
}

func (b *GridSourceSetBuilder) MaxDepth(depth float64) *GridSourceSetBuilder {
	b.maxDepth = &depth
	return b
}

// Mechs sets the default focal mechanism weights applied to nodes added
// without their own.
func (b *GridSourceSetBuilder) Mechs(weights MechWeights) *GridSourceSetBuilder {
	if err := validateMechWeights(weights); err != nil {
		b.fail(err)
		return b
	}
	b.mechMap = weights
	return b
}

// MfdData declares the master magnitude range and bin width spanned by
// the node MFDs.
func (b *GridSourceSetBuilder) MfdData(mMin, mMax, dMag float64) *GridSourceSetBuilder {
	if _, err := mfd.ValidateMag(mMin); err != nil {
		b.fail(err)
		return b
	}
	if _, err := mfd.ValidateMag(mMax); err != nil {
		b.fail(err)
		return b
	}
	if mMin > mMax {
		b.fail(eris.Errorf("grid: min mag %f > max mag %f", mMin, mMax))
		return b
	}
	b.mMin, b.mMax, b.dMag = &mMin, &mMax, &dMag
	return b
}

// Location adds a grid node with its MFD, using the default mech weights.
func (b *GridSourceSetBuilder) Location(loc geo.Location, m *mfd.Mfd) *GridSourceSetBuilder {
	if m == nil {
		b.fail(eris.New("grid: node mfd is nil"))
		return b
	}
	b.locs = append(b.locs, loc)
	b.mfds = append(b.mfds, m)
	return b
}

// LocationWithMechs adds a grid node carrying its own mech weights.
func (b *GridSourceSetBuilder) LocationWithMechs(loc geo.Location, m *mfd.Mfd, weights MechWeights) *GridSourceSetBuilder {
	if err := validateMechWeights(weights); err != nil {
		b.fail(err)
		return b
	}
	b.Location(loc, m)
	b.mechMaps = append(b.mechMaps, weights)
	return b
}

func (b *GridSourceSetBuilder) Build() (*GridSourceSet, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	switch {
	case !b.strikeSet:
		return nil, eris.New("grid: strike not set")
	case b.sourceType == nil:
		return nil, eris.New("grid: source type not set")
	case len(b.locs) == 0:
		return nil, eris.New("grid: no locations added")
	case b.scaling == nil:
		return nil, eris.New("grid: rupture scaling not set")
	case b.magDepthMap == nil:
		return nil, eris.New("grid: mag-depth map not set")
	case b.maxDepth == nil:
		return nil, eris.New("grid: max depth not set")
	case b.mechMap == nil:
		return nil, eris.New("grid: focal mech map not set")
	case b.mMin == nil:
		return nil, eris.New("grid: mfd data not set")
	}
	if len(b.mechMaps) > 0 && len(b.mechMaps) != len(b.locs) {
		return nil, eris.Errorf("grid: only %d of %d focal mech maps were added",
			len(b.mechMaps), len(b.locs))
	}
	if math.IsNaN(b.strike) {
		if *b.sourceType == PointTypeFixedStrike {
			return nil, eris.New("grid: fixed-strike source type requires a strike")
		}
	} else if *b.sourceType != PointTypeFixedStrike {
		return nil, eris.Errorf("grid: source type must be fixed-strike for strike %f", b.strike)
	}

	mags := cleanSequence(*b.mMin, *b.mMax, *b.dMag)
	depthModel, err := NewDepthModel(b.magDepthMap, mags, *b.maxDepth, b.typ)
	if err != nil {
		return nil, err
	}

	mechMaps := b.mechMaps
	if len(mechMaps) == 0 {
		mechMaps = make([]MechWeights, len(b.locs))
		for i := range mechMaps {
			mechMaps[i] = b.mechMap
		}
	}
	for _, m := range b.mfds {
		if depthModel.lastIndexForMag(m.Size()-1) < 0 {
			return nil, eris.Errorf("grid: node mfd %s does not align with master magnitudes", m)
		}
	}

	return &GridSourceSet{
		sourceSetInfo: b.info,
		typ:           b.typ,
		locs:          b.locs,
		mfds:          b.mfds,
		mechMaps:      mechMaps,
		depthModel:    depthModel,
		strike:        b.strike,
		sourceType:    *b.sourceType,
		scaling:       *b.scaling,
	}, nil
}

// cleanSequence builds the ascending magnitude sequence from min to max,
// snapping the step and values to 2 decimal places so accumulated
// floating point error cannot shift bin centers.
func cleanSequence(min, max, delta float64) []float64 {
	delta = clean(delta)
	var mags []float64
	for m := clean(min); m <= max+1e-9; m = clean(m + delta) {
		mags = append(mags, m)
		if delta == 0 {
			break
		}
	}
	return mags
}

func clean(v float64) float64 {
	c, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return c
}
