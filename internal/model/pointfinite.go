package model

import (
	"fmt"
	"math"

	"github.com/sells-group/hazard-cli/internal/fault/surface"
	"github.com/sells-group/hazard-cli/internal/geo"
	"github.com/sells-group/hazard-cli/internal/mfd"
)

// Minimum rJB reported by finite point surfaces, km. Half the bin width
// of the distance discretization historically used for grid sources.
const minFiniteRJB = 0.5

// PointSourceFinite is a PointSource whose dipping ruptures know which
// side of the fault a site is on. Non-strike-slip mechanisms split into
// footwall and hanging-wall variants at half weight each, so the rupture
// count doubles for those mechanisms.
type PointSourceFinite struct {
	PointSource

	fwIdxLo int
	fwIdxHi int
}

// NewPointSourceFinite validates inputs and indexes the expanded rupture
// space.
func NewPointSourceFinite(loc geo.Location, m *mfd.Mfd, mechWts MechWeights,
	scaling surface.ScalingModel, depthModel *DepthModel) (*PointSourceFinite, error) {

	if err := validatePointInputs(m, mechWts, depthModel); err != nil {
		return nil, err
	}
	s := &PointSourceFinite{
		PointSource: PointSource{
			loc:        loc,
			mfd:        m,
			mechWts:    mechWts,
			scaling:    scaling,
			depthModel: depthModel,
		},
	}
	s.magDepthSize = depthModel.lastIndexForMag(m.Size()-1) + 1
	ssCount := slotCount(mechWts[StrikeSlip]) * s.magDepthSize
	revCount := slotCount(mechWts[Reverse]) * s.magDepthSize * 2
	norCount := slotCount(mechWts[Normal]) * s.magDepthSize * 2
	s.ssIdx = ssCount
	s.revIdx = ssCount + revCount
	s.fwIdxLo = ssCount + revCount/2
	s.fwIdxHi = ssCount + revCount + norCount/2
	s.rupCount = ssCount + revCount + norCount
	return s, nil
}

func (s *PointSourceFinite) Name() string {
	return fmt.Sprintf("PointSourceFinite: %s", s.loc)
}

// isOnFootwall reports whether the rupture at idx places the site side on
// the footwall; the first half of each dipping mechanism's block does.
func (s *PointSourceFinite) isOnFootwall(idx int) bool {
	switch {
	case idx < s.fwIdxLo:
		return true
	case idx < s.revIdx:
		return false
	case idx < s.fwIdxHi:
		return true
	default:
		return false
	}
}

func (s *PointSourceFinite) updateRupture(r *Rupture, idx int) {
	magDepthIdx := idx % s.magDepthSize
	magIdx := s.depthModel.MagIndex(magDepthIdx)
	mech := s.mechForIndex(idx)

	mechWt := s.mechWts[mech]
	if mech != StrikeSlip {
		mechWt *= 0.5
	}
	mag := s.mfd.Mag(magIdx)
	zTop := s.depthModel.Depth(magDepthIdx)
	dipRad := mech.Dip() * geo.ToRad
	maxWidthDD := (s.depthModel.MaxDepth() - zTop) / math.Sin(dipRad)
	dims, _ := s.scaling.Dimensions(mag, maxWidthDD)

	r.Mag = mag
	r.Rake = mech.Rake()
	r.Rate = s.mfd.Rate(magIdx) * s.depthModel.Weight(magDepthIdx) * mechWt

	fs := r.Surface.(*finiteSurface)
	fs.mag = mag
	fs.dipRad = dipRad
	fs.widthDD = dims.Width
	fs.widthH = dims.Width * math.Cos(dipRad)
	fs.zTop = zTop
	fs.zBot = zTop + dims.Width*math.Sin(dipRad)
	fs.footwall = s.isOnFootwall(idx)
}

func (s *PointSourceFinite) Ruptures() (RuptureIterator, error) {
	return &cursorIterator{
		rupture: &Rupture{Surface: &finiteSurface{pointSurface: pointSurface{loc: s.loc, scaling: s.scaling}}},
		size:    s.rupCount,
		update:  s.updateRupture,
	}, nil
}

// finiteSurface approximates the distance metrics of a dipping rupture of
// unknown strike centered on the source location.
type finiteSurface struct {
	pointSurface

	zBot     float64 // base of rupture
	widthH   float64 // horizontal width (surface projection)
	widthDD  float64 // down-dip width
	footwall bool
}

func (f *finiteSurface) Width() float64 { return f.widthDD }

func (f *finiteSurface) DistanceTo(loc geo.Location) surface.Distance {
	rJB := geo.HorzDistanceFast(f.loc, loc)
	rJB = f.scaling.PointSourceDistance(f.mag, rJB)
	rJB = math.Max(minFiniteRJB, rJB)
	if f.footwall {
		return surface.Distance{RJB: rJB, RRup: math.Hypot(rJB, f.zTop), RX: -rJB}
	}
	rX := rJB + f.widthH
	rCut := f.zBot * math.Tan(f.dipRad)
	if rJB > rCut {
		return surface.Distance{RJB: rJB, RRup: math.Hypot(rJB, f.zBot), RX: rX}
	}
	// rRup at rJB=0 is the lesser of the site-to-top-edge distance and the
	// rupture-normal distance for a site over the down-dip edge; scale
	// linearly out to the cutoff value.
	rRup0 := math.Min(math.Hypot(f.widthH, f.zTop), f.zBot*math.Cos(f.dipRad))
	rRupC := f.zBot / math.Cos(f.dipRad)
	rRup := (rRupC-rRup0)*rJB/rCut + rRup0
	return surface.Distance{RJB: rJB, RRup: rRup, RX: rX}
}
