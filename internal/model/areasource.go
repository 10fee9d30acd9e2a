package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/hazard-cli/internal/fault"
	"github.com/sells-group/hazard-cli/internal/fault/surface"
	"github.com/sells-group/hazard-cli/internal/geo"
	"github.com/sells-group/hazard-cli/internal/mfd"
)

// GridScaling selects the gridding resolution(s) an area source is
// discretized at. Uniform scalings grid once; scaled variants pre-build a
// ladder of resolutions and pick one per site by distance to the border,
// coarsening the grid for far-away sites.
type GridScaling int

const (
	GridScalingUniform0P005 GridScaling = iota
	GridScalingUniform0P01
	GridScalingUniform0P02
	GridScalingUniform0P05
	GridScalingUniform0P1
	GridScalingUniform0P5
	GridScalingScaledSmall
	GridScalingScaledLarge
)

var gridScalingData = map[GridScaling]struct {
	name         string
	defaultIndex int
	resolutions  []float64
}{
	GridScalingUniform0P005: {"UNIFORM_0P005", 0, []float64{0.005}},
	GridScalingUniform0P01:  {"UNIFORM_0P01", 0, []float64{0.01}},
	GridScalingUniform0P02:  {"UNIFORM_0P02", 0, []float64{0.02}},
	GridScalingUniform0P05:  {"UNIFORM_0P05", 0, []float64{0.05}},
	GridScalingUniform0P1:   {"UNIFORM_0P1", 0, []float64{0.1}},
	GridScalingUniform0P5:   {"UNIFORM_0P5", 0, []float64{0.5}},
	GridScalingScaledSmall:  {"SCALED_SMALL", 2, []float64{0.02, 0.05, 0.1, 0.2, 0.5}},
	GridScalingScaledLarge:  {"SCALED_LARGE", 0, []float64{0.1, 0.2, 0.5}},
}

func (g GridScaling) String() string { return gridScalingData[g].name }

// Resolutions returns the grid spacings of the scaling ladder, degrees.
func (g GridScaling) Resolutions() []float64 { return gridScalingData[g].resolutions }

// DefaultIndex is the ladder rung used when no site is in play.
func (g GridScaling) DefaultIndex() int { return gridScalingData[g].defaultIndex }

// indexForDistance picks the ladder rung for a site at distance km from
// the area border. Indices past the ladder fall back to the coarsest rung.
func (g GridScaling) indexForDistance(d float64) int {
	switch g {
	case GridScalingScaledSmall:
		switch {
		case d < 20.0:
			return 0
		case d < 50.0:
			return 1
		case d < 100.0:
			return 2
		case d < 200.0:
			return 3
		case d < 400.0:
			return 4
		default:
			return len(g.Resolutions()) - 1
		}
	case GridScalingScaledLarge:
		switch {
		case d < 100.0:
			return 0
		case d < 200.0:
			return 1
		default:
			return 2
		}
	default:
		return g.DefaultIndex()
	}
}

// ParseGridScaling resolves a case-insensitive grid scaling name.
func ParseGridScaling(s string) (GridScaling, error) {
	for g, data := range gridScalingData {
		if strings.EqualFold(s, data.name) {
			return g, nil
		}
	}
	return 0, eris.Errorf("area: unknown grid scaling %q", s)
}

// AreaSource spreads a single MFD uniformly over a polygonal region. The
// region is discretized into grid nodes, each rendered as a point source
// carrying the MFD scaled by 1/nodeCount.
type AreaSource struct {
	name        string
	id          int
	mfd         *mfd.Mfd
	gridScaling GridScaling
	sourceGrids []*geo.GriddedRegion
	mechMap     MechWeights
	depthModel  *DepthModel
	strike      float64
	scaling     surface.ScalingModel
	sourceType  PointSourceType
}

func (s *AreaSource) Name() string { return s.name }

// ID returns the source's model-assigned id.
func (s *AreaSource) ID() int { return s.id }

// Border returns the polygon enclosing the source.
func (s *AreaSource) Border() geo.LocationList {
	return s.sourceGrids[0].Border()
}

// Mfd returns the area-total MFD.
func (s *AreaSource) Mfd() *mfd.Mfd { return s.mfd }

func (s *AreaSource) Size() int {
	mechCount := s.mechCount()
	grid := s.sourceGrids[s.gridScaling.DefaultIndex()]
	return grid.Size() * s.mfd.Size() * mechCount
}

func (s *AreaSource) mechCount() int {
	ss := slotCount(s.mechMap[StrikeSlip])
	rev := slotCount(s.mechMap[Reverse])
	nor := slotCount(s.mechMap[Normal])
	if s.sourceType == PointTypePoint {
		return ss + rev + nor
	}
	return ss + rev*2 + nor*2
}

// Ruptures enumerates the default-resolution grid.
func (s *AreaSource) Ruptures() (RuptureIterator, error) {
	return s.gridRuptures(s.sourceGrids[s.gridScaling.DefaultIndex()])
}

// RupturesForSite enumerates the grid resolution appropriate to a site's
// distance from the area border.
func (s *AreaSource) RupturesForSite(site geo.Location) (RuptureIterator, error) {
	d := geo.MinDistanceToLine(site, s.Border())
	idx := s.gridScaling.indexForDistance(d)
	return s.gridRuptures(s.sourceGrids[idx])
}

func (s *AreaSource) gridRuptures(grid *geo.GriddedRegion) (RuptureIterator, error) {
	scaled := s.mfd.Copy()
	scaled.Scale(1.0 / float64(grid.Size()))

	sources := make([]Source, grid.Size())
	for i, loc := range grid.Nodes() {
		src, err := s.nodeSource(loc, scaled)
		if err != nil {
			return nil, err
		}
		sources[i] = src
	}
	return &chainIterator{sources: sources}, nil
}

func (s *AreaSource) nodeSource(loc geo.Location, m *mfd.Mfd) (Source, error) {
	switch s.sourceType {
	case PointTypeFinite:
		return NewPointSourceFinite(loc, m, s.mechMap, s.scaling, s.depthModel)
	case PointTypeFixedStrike:
		return NewPointSourceFixedStrike(loc, m, s.mechMap, s.scaling, s.depthModel, s.strike)
	default:
		return NewPointSource(loc, m, s.mechMap, s.scaling, s.depthModel)
	}
}

// chainIterator concatenates the rupture iterators of several sources.
type chainIterator struct {
	sources []Source
	caret   int
	current RuptureIterator
}

func (it *chainIterator) Next() bool {
	for {
		if it.current != nil && it.current.Next() {
			return true
		}
		if it.caret >= len(it.sources) {
			return false
		}
		next, err := it.sources[it.caret].Ruptures()
		it.caret++
		if err != nil {
			continue
		}
		it.current = next
	}
}

func (it *chainIterator) Rupture() *Rupture { return it.current.Rupture() }

// AreaSourceBuilder assembles an AreaSource and its grid ladder.
type AreaSourceBuilder struct {
	err   error
	built bool
	log   *zap.Logger

	name        string
	id          *int
	border      geo.LocationList
	borderSet   bool
	mfd         *mfd.Mfd
	strike      *float64
	gridScaling *GridScaling
	scaling     *surface.ScalingModel
	mechMap     MechWeights
	magDepthMap MagDepthMap
	maxDepth    *float64
	sourceType  *PointSourceType
}

func NewAreaSourceBuilder() *AreaSourceBuilder {
	return &AreaSourceBuilder{log: zap.NewNop()}
}

func (b *AreaSourceBuilder) fail(err error) *AreaSourceBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Logger attaches a logger for grid construction diagnostics.
func (b *AreaSourceBuilder) Logger(log *zap.Logger) *AreaSourceBuilder {
	if log != nil {
		b.log = log
	}
	return b
}

func (b *AreaSourceBuilder) Name(name string) *AreaSourceBuilder {
	if name == "" {
		return b.fail(eris.New("area: name is empty"))
	}
	b.name = name
	return b
}

func (b *AreaSourceBuilder) ID(id int) *AreaSourceBuilder {
	b.id = &id
	return b
}

func (b *AreaSourceBuilder) Border(border geo.LocationList) *AreaSourceBuilder {
	if border.Size() < 3 {
		return b.fail(eris.Errorf("area: border contains fewer than 3 points [%d]", border.Size()))
	}
	b.border = border
	b.borderSet = true
	return b
}

func (b *AreaSourceBuilder) Mfd(m *mfd.Mfd) *AreaSourceBuilder {
	if m == nil {
		return b.fail(eris.New("area: mfd is nil"))
	}
	b.mfd = m
	return b
}

func (b *AreaSourceBuilder) Strike(strike float64) *AreaSourceBuilder {
	if !math.IsNaN(strike) {
		if _, err := fault.ValidateStrike(strike); err != nil {
			return b.fail(err)
		}
	}
	b.strike = &strike
	return b
}

func (b *AreaSourceBuilder) GridScaling(g GridScaling) *AreaSourceBuilder {
	b.gridScaling = &g
	return b
}

func (b *AreaSourceBuilder) Scaling(scaling surface.ScalingModel) *AreaSourceBuilder {
	b.scaling = &scaling
	return b
}

func (b *AreaSourceBuilder) Mechs(weights MechWeights) *AreaSourceBuilder {
	if err := validateMechWeights(weights); err != nil {
		return b.fail(err)
	}
	b.mechMap = weights
	return b
}

func (b *AreaSourceBuilder) DepthMap(m MagDepthMap) *AreaSourceBuilder {
	if len(m) == 0 {
		return b.fail(eris.New("area: mag-depth map is empty"))
	}
	b.magDepthMap = m
	return b
}

func (b *AreaSourceBuilder) MaxDepth(depth float64) *AreaSourceBuilder {
	b.maxDepth = &depth
	return b
}

func (b *AreaSourceBuilder) SourceType(t PointSourceType) *AreaSourceBuilder {
	b.sourceType = &t
	return b
}

func (b *AreaSourceBuilder) checkState() error {
	if b.err != nil {
		return b.err
	}
	if b.built {
		return eris.New("area: builder already used")
	}
	switch {
	case b.name == "":
		return eris.New("area: name not set")
	case b.id == nil:
		return eris.New("area: id not set")
	case !b.borderSet:
		return eris.New("area: border not set")
	case b.mfd == nil:
		return eris.New("area: mfd not set")
	case b.strike == nil:
		return eris.New("area: strike not set")
	case b.sourceType == nil:
		return eris.New("area: source type not set")
	case b.gridScaling == nil:
		return eris.New("area: grid scaling not set")
	case b.scaling == nil:
		return eris.New("area: rupture-scaling relation not set")
	case b.mechMap == nil:
		return eris.New("area: focal mech map not set")
	case b.magDepthMap == nil:
		return eris.New("area: mag-depth-weight map not set")
	case b.maxDepth == nil:
		return eris.New("area: maximum depth not set")
	}
	if math.IsNaN(*b.strike) == (*b.sourceType == PointTypeFixedStrike) {
		return eris.Errorf("area: strike [%f] inconsistent with source type %s",
			*b.strike, *b.sourceType)
	}
	b.built = true
	return nil
}

func (b *AreaSourceBuilder) Build() (*AreaSource, error) {
	if err := b.checkState(); err != nil {
		return nil, err
	}

	mags := make([]float64, b.mfd.Size())
	for i := range mags {
		mags[i] = b.mfd.Mag(i)
	}
	depthModel, err := NewDepthModel(b.magDepthMap, mags, *b.maxDepth, TypeArea)
	if err != nil {
		return nil, err
	}

	grids, err := b.buildSourceGrids()
	if err != nil {
		return nil, err
	}

	return &AreaSource{
		name:        b.name,
		id:          *b.id,
		mfd:         b.mfd,
		gridScaling: *b.gridScaling,
		sourceGrids: grids,
		mechMap:     b.mechMap,
		depthModel:  depthModel,
		strike:      *b.strike,
		scaling:     *b.scaling,
		sourceType:  *b.sourceType,
	}, nil
}

// buildSourceGrids grids the border at every ladder resolution. The
// default-resolution grid must not be empty; an empty grid at any other
// rung falls back to the default grid so small areas survive coarse
// discretization.
func (b *AreaSourceBuilder) buildSourceGrids() ([]*geo.GriddedRegion, error) {
	scaling := *b.gridScaling
	resolutions := scaling.Resolutions()

	grids := make([]*geo.GriddedRegion, len(resolutions))
	for i, res := range resolutions {
		name := fmt.Sprintf("Area source grid [%v° spacing]", res)
		grid, err := geo.NewGriddedRegion(name, b.border, res)
		if err != nil {
			return nil, err
		}
		grids[i] = grid
	}

	defaultGrid := grids[scaling.DefaultIndex()]
	if defaultGrid.Size() == 0 {
		return nil, eris.Errorf("area: source %q default grid is empty", b.name)
	}
	for i, grid := range grids {
		if grid.Size() == 0 {
			b.log.Warn("empty area source grid, using default resolution",
				zap.String("source", b.name),
				zap.Float64("resolution", resolutions[i]))
			grids[i] = defaultGrid
		}
	}
	return grids, nil
}

// AreaSourceSet is a collection of area sources.
type AreaSourceSet struct {
	sourceSetInfo
	sources []*AreaSource
}

func (s *AreaSourceSet) Type() SourceType { return TypeArea }

func (s *AreaSourceSet) Size() int { return len(s.sources) }

func (s *AreaSourceSet) Source(i int) Source { return s.sources[i] }

// Near keeps sources whose border is within range or encloses the site.
func (s *AreaSourceSet) Near(site geo.Location, distance float64) []Source {
	var near []Source
	for _, src := range s.sources {
		grid := src.sourceGrids[src.gridScaling.DefaultIndex()]
		if grid.Contains(site) || traceIsNear(src.Border(), site, distance) {
			near = append(near, src)
		}
	}
	return near
}

// AreaSourceSetBuilder assembles an AreaSourceSet.
type AreaSourceSetBuilder struct {
	setBuilder
	sources []*AreaSource
}

func NewAreaSourceSetBuilder() *AreaSourceSetBuilder {
	b := &AreaSourceSetBuilder{}
	b.label = "area set"
	return b
}

func (b *AreaSourceSetBuilder) Name(name string) *AreaSourceSetBuilder {
	b.setName(name)
	return b
}

func (b *AreaSourceSetBuilder) ID(id int) *AreaSourceSetBuilder {
	b.setID(id)
	return b
}

func (b *AreaSourceSetBuilder) Weight(weight float64) *AreaSourceSetBuilder {
	b.setWeight(weight)
	return b
}

func (b *AreaSourceSetBuilder) Gmms(gmms *GmmSet) *AreaSourceSetBuilder {
	b.setGmms(gmms)
	return b
}

func (b *AreaSourceSetBuilder) Source(src *AreaSource) *AreaSourceSetBuilder {
	if src == nil {
		b.fail(eris.New("area set: source is nil"))
		return b
	}
	b.sources = append(b.sources, src)
	return b
}

func (b *AreaSourceSetBuilder) Build() (*AreaSourceSet, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	if len(b.sources) == 0 {
		return nil, eris.New("area set: source list is empty")
	}
	return &AreaSourceSet{sourceSetInfo: b.info, sources: b.sources}, nil
}
