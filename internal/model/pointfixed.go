package model

import (
	"fmt"
	"math"

	"github.com/sells-group/hazard-cli/internal/fault"
	"github.com/sells-group/hazard-cli/internal/fault/surface"
	"github.com/sells-group/hazard-cli/internal/geo"
	"github.com/sells-group/hazard-cli/internal/mfd"
)

// PointSourceFixedStrike renders grid seismicity as true finite ruptures
// with a single prescribed strike, centered on the source location. The
// four corners of each rupture are rebuilt per magnitude and the distance
// metrics computed against them, so zero-rate slots are skipped during
// iteration rather than rendered.
type PointSourceFixedStrike struct {
	PointSourceFinite

	strike float64
}

// NewPointSourceFixedStrike validates inputs, including the strike, and
// indexes the rupture space.
func NewPointSourceFixedStrike(loc geo.Location, m *mfd.Mfd, mechWts MechWeights,
	scaling surface.ScalingModel, depthModel *DepthModel, strike float64) (*PointSourceFixedStrike, error) {

	finite, err := NewPointSourceFinite(loc, m, mechWts, scaling, depthModel)
	if err != nil {
		return nil, err
	}
	if _, err := fault.ValidateStrike(strike); err != nil {
		return nil, err
	}
	return &PointSourceFixedStrike{PointSourceFinite: *finite, strike: strike}, nil
}

func (s *PointSourceFixedStrike) Name() string {
	return fmt.Sprintf("PointSourceFixedStrike: %s", s.loc)
}

func (s *PointSourceFixedStrike) updateRupture(r *Rupture, idx int) {
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
	strikeRad := s.strike * geo.ToRad
	maxWidthDD := (s.depthModel.MaxDepth() - zTop) / math.Sin(dipRad)
	dims, _ := s.scaling.Dimensions(mag, maxWidthDD)
	widthDD := dims.Width
	widthH := widthDD * math.Cos(dipRad)
	zBot := zTop + widthDD*math.Sin(dipRad)

	r.Mag = mag
	r.Rake = mech.Rake()
	r.Rate = s.mfd.Rate(magIdx) * s.depthModel.Weight(magDepthIdx) * mechWt

	fs := r.Surface.(*fixedStrikeSurface)
	fs.mag = mag
	fs.dipRad = dipRad
	fs.widthDD = widthDD
	fs.widthH = widthH
	fs.zTop = zTop
	fs.zBot = zBot
	fs.footwall = s.isOnFootwall(idx)

	// Endpoints of the upper trace, with p1 to p2 ordered so that the
	// hanging wall lies to the right for hanging-wall variants.
	half := dims.Length / 2
	center := s.loc.AtDepth(zTop)
	v := geo.NewVector(strikeRad, half, 0.0)
	pa := geo.ShiftedLocation(center, v)
	pb := geo.ShiftedLocation(center, v.Reverse())
	if fs.footwall {
		fs.p1, fs.p2 = pa, pb
	} else {
		fs.p1, fs.p2 = pb, pa
	}
	if mech == StrikeSlip {
		fs.p3 = fs.p2.AtDepth(zBot)
		fs.p4 = fs.p1.AtDepth(zBot)
		return
	}
	dipDirRad := fault.DipDirectionRad(geo.AzimuthRad(fs.p1, fs.p2))
	vDownDip := geo.NewVector(dipDirRad, widthH, zBot-zTop)
	fs.p3 = geo.ShiftedLocation(fs.p2, vDownDip)
	fs.p4 = geo.ShiftedLocation(fs.p1, vDownDip)
}

func (s *PointSourceFixedStrike) Ruptures() (RuptureIterator, error) {
	return &cursorIterator{
		rupture: &Rupture{Surface: &fixedStrikeSurface{
			finiteSurface: finiteSurface{pointSurface: pointSurface{loc: s.loc, scaling: s.scaling}},
		}},
		size:     s.rupCount,
		update:   s.updateRupture,
		skipZero: true,
	}, nil
}

// fixedStrikeSurface computes distance metrics against the actual rupture
// corners: p1-p2 is the upper trace, p3-p4 the lower, with p1-p4 and
// p2-p3 the down-dip edges.
type fixedStrikeSurface struct {
	finiteSurface

	p1, p2, p3, p4 geo.Location
}

func (f *fixedStrikeSurface) DistanceTo(loc geo.Location) surface.Distance {
	rX := geo.DistanceToLineFast(f.p1, f.p2, loc)
	rSeg := geo.DistanceToSegmentFast(f.p1, f.p2, loc)
	vertical := f.dipRad == 90.0*geo.ToRad

	if rX <= 0.0 || vertical {
		return surface.Distance{RJB: rSeg, RRup: math.Hypot(rSeg, f.zTop), RX: rX}
	}

	rCutTop := math.Tan(f.dipRad) * f.zTop
	rCutBot := math.Tan(f.dipRad)*f.zBot + f.widthH
	var rRup float64
	switch {
	case rX > rCutBot:
		rRup = math.Hypot(rX-f.widthH, f.zBot)
	case rX < rCutTop:
		rRup = math.Hypot(rX, f.zTop)
	default:
		rRup = math.Hypot(rCutTop, f.zTop) + (rX-rCutTop)*math.Sin(f.dipRad)
	}

	// Sites beyond the ends of the trace pick up a rupture-parallel
	// component; rSeg exceeding rX flags that case.
	if rSeg-rX > 1e-5 {
		rJB := math.Min(
			geo.DistanceToSegmentFast(f.p1, f.p4, loc),
			geo.DistanceToSegmentFast(f.p2, f.p3, loc))
		rY := math.Sqrt(rSeg*rSeg - rX*rX)
		return surface.Distance{RJB: rJB, RRup: math.Hypot(rRup, rY), RX: rX}
	}

	rJB := 0.0
	if rX > f.widthH {
		rJB = rX - f.widthH
	}
	return surface.Distance{RJB: rJB, RRup: rRup, RX: rX}
}
