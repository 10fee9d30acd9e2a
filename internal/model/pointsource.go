package model

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hazard-cli/internal/fault/surface"
	"github.com/sells-group/hazard-cli/internal/geo"
	"github.com/sells-group/hazard-cli/internal/mfd"
)

// Fixed down-dip width reported for unscaled point surfaces, km.
const pointSurfaceWidth = 10.0

// PointSource models all seismicity at a single grid node as occurring at
// a point. Ruptures are generated for every (magnitude, depth) pair of
// the depth model crossed with every non-zero focal mechanism, in
// strike-slip, reverse, normal order.
type PointSource struct {
	loc        geo.Location
	mfd        *mfd.Mfd
	mechWts    MechWeights
	scaling    surface.ScalingModel
	depthModel *DepthModel

	rupCount     int
	magDepthSize int
	ssIdx        int
	revIdx       int
}

// NewPointSource validates inputs and indexes the rupture space. The mfd
// magnitudes must align with the master sequence the depth model was
// flattened over.
func NewPointSource(loc geo.Location, m *mfd.Mfd, mechWts MechWeights,
	scaling surface.ScalingModel, depthModel *DepthModel) (*PointSource, error) {

	if err := validatePointInputs(m, mechWts, depthModel); err != nil {
		return nil, err
	}
	s := &PointSource{
		loc:        loc,
		mfd:        m,
		mechWts:    mechWts,
		scaling:    scaling,
		depthModel: depthModel,
	}
	s.magDepthSize = depthModel.lastIndexForMag(m.Size()-1) + 1
	ssCount := slotCount(mechWts[StrikeSlip]) * s.magDepthSize
	revCount := slotCount(mechWts[Reverse]) * s.magDepthSize
	norCount := slotCount(mechWts[Normal]) * s.magDepthSize
	s.ssIdx = ssCount
	s.revIdx = ssCount + revCount
	s.rupCount = ssCount + revCount + norCount
	return s, nil
}

func validatePointInputs(m *mfd.Mfd, mechWts MechWeights, depthModel *DepthModel) error {
	if m == nil {
		return eris.New("model: point source mfd is nil")
	}
	if depthModel == nil {
		return eris.New("model: point source depth model is nil")
	}
	if err := validateMechWeights(mechWts); err != nil {
		return err
	}
	if depthModel.lastIndexForMag(m.Size()-1) < 0 {
		return eris.New("model: mfd does not align with depth model magnitudes")
	}
	return nil
}

// slotCount reserves a full block of (magnitude, depth) slots for any
// mechanism with non-zero weight.
func slotCount(weight float64) int {
	return int(math.Ceil(weight))
}

func (s *PointSource) Name() string {
	return fmt.Sprintf("PointSource: %s", s.loc)
}

// Location returns the grid node the source occupies.
func (s *PointSource) Location() geo.Location { return s.loc }

func (s *PointSource) Size() int { return s.rupCount }

// mechForIndex maps a flattened rupture index to its focal mechanism.
func (s *PointSource) mechForIndex(idx int) FocalMech {
	switch {
	case idx < s.ssIdx:
		return StrikeSlip
	case idx < s.revIdx:
		return Reverse
	default:
		return Normal
	}
}

func (s *PointSource) updateRupture(r *Rupture, idx int) {
	magDepthIdx := idx % s.magDepthSize
	magIdx := s.depthModel.MagIndex(magDepthIdx)
	mech := s.mechForIndex(idx)

	r.Mag = s.mfd.Mag(magIdx)
	r.Rake = mech.Rake()
	r.Rate = s.mfd.Rate(magIdx) * s.depthModel.Weight(magDepthIdx) * s.mechWts[mech]

	ps := r.Surface.(*pointSurface)
	ps.mag = r.Mag
	ps.dipRad = mech.Dip() * geo.ToRad
	ps.zTop = s.depthModel.Depth(magDepthIdx)
}

func (s *PointSource) Ruptures() (RuptureIterator, error) {
	return &cursorIterator{
		rupture: &Rupture{Surface: &pointSurface{loc: s.loc, scaling: s.scaling}},
		size:    s.rupCount,
		update:  s.updateRupture,
	}, nil
}

// cursorIterator walks a rupture index space, refreshing a single shared
// Rupture at each step. skipZero drops ruptures whose rate resolves to
// zero, which fixed-strike sources use to elide unused mechanism slots.
type cursorIterator struct {
	rupture  *Rupture
	size     int
	caret    int
	update   func(r *Rupture, idx int)
	skipZero bool
}

func (it *cursorIterator) Next() bool {
	for it.caret < it.size {
		it.update(it.rupture, it.caret)
		it.caret++
		if !it.skipZero || it.rupture.Rate > 0.0 {
			return true
		}
	}
	return false
}

func (it *cursorIterator) Rupture() *Rupture { return it.rupture }

// pointSurface renders a rupture as a point at zTop, with rJB adjusted by
// the scaling model's finite-rupture distance correction.
type pointSurface struct {
	loc     geo.Location
	scaling surface.ScalingModel

	mag    float64
	dipRad float64
	zTop   float64
}

func (p *pointSurface) Dip() float64 { return p.dipRad * geo.ToDeg }

func (p *pointSurface) Width() float64 { return pointSurfaceWidth }

func (p *pointSurface) Depth() float64 { return p.zTop }

func (p *pointSurface) DistanceTo(loc geo.Location) surface.Distance {
	rJB := geo.HorzDistanceFast(p.loc, loc)
	rJB = p.scaling.PointSourceDistance(p.mag, rJB)
	return surface.Distance{RJB: rJB, RRup: math.Hypot(rJB, p.zTop), RX: rJB}
}
