package surface

import (
	"math"

	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/sells-group/hazard-cli/internal/fault"
	"github.com/sells-group/hazard-cli/internal/geo"
)

// MaxDistance is the limiting source-to-site distance supported by ground
// motion models.
const MaxDistance = 1000.0

// Distance carries the three source-to-site distance metrics consumed by
// ground motion models: Joyner-Boore distance (shortest distance to the
// surface projection of the rupture), rupture distance (shortest 3D
// distance), and rX (horizontal distance from the surface projection of the
// upper edge, positive toward the hanging wall).
type Distance struct {
	RJB  float64
	RRup float64
	RX   float64
}

// Compute returns the distance metrics from a gridded surface to loc by
// scanning the surface nodes. For near-vertical surfaces (dip > 89°) only
// the top row is scanned since deeper rows share its surface projection.
// A small rJB is snapped to zero when the site falls inside the surface
// perimeter.
func Compute(s Surface, loc geo.Location) Distance {
	distJB := math.MaxFloat64
	distRupSq := math.MaxFloat64

	scan := func(loc2 geo.Location) {
		horz := geo.HorzDistanceFast(loc, loc2)
		if horz < distJB {
			distJB = horz
		}
		vert := geo.VertDistance(loc, loc2)
		rupSq := horz*horz + vert*vert
		if rupSq < distRupSq {
			distRupSq = rupSq
		}
	}

	if s.Dip() > 89 {
		for col := 0; col < s.Cols(); col++ {
			scan(s.At(0, col))
		}
	} else {
		for row := 0; row < s.Rows(); row++ {
			for col := 0; col < s.Cols(); col++ {
				scan(s.At(row, col))
			}
		}
	}

	distRup := math.Sqrt(distRupSq)

	if distJB < s.AvgSpacing() && insideBorder(s.Perimeter(), loc) {
		distJB = 0
	}

	rX := distanceX(s.UpperEdge(), loc)
	return Distance{RJB: distJB, RRup: distRup, RX: rX}
}

// distanceX returns the signed rX metric for a discretized upper edge. The
// trace is extended 1000 km off each end and a hanging-wall polygon is
// built by projecting the extended trace down dip; sites inside the polygon
// (or exactly on the extended trace) are on the hanging wall and take a
// positive sign.
func distanceX(trace geo.LocationList, site geo.Location) float64 {
	strike := fault.StrikeRad(trace)
	dipDir := fault.DipDirectionRad(strike)

	toP3 := geo.NewVector(strike, MaxDistance, 0)
	toP2 := toP3.Reverse()
	toP14 := geo.NewVector(dipDir, MaxDistance, 0)

	p3 := geo.ShiftedLocation(trace.Last(), toP3)
	p4 := geo.ShiftedLocation(p3, toP14)
	p2 := geo.ShiftedLocation(trace.First(), toP2)
	p1 := geo.ShiftedLocation(p2, toP14)

	region := make([]geo.Location, 0, trace.Size()+4)
	region = append(region, p1, p2)
	region = append(region, trace.All()...)
	region = append(region, p3, p4)

	extended := make([]geo.Location, 0, trace.Size()+2)
	extended = append(extended, p2)
	extended = append(extended, trace.All()...)
	extended = append(extended, p3)
	extendedTrace := geo.LocList(extended...)

	inside := insideBorder(geo.LocList(region...), site)
	dist := geo.MinDistanceToLine(site, extendedTrace)
	if inside || dist == 0.0 {
		// zero values are always on the hanging wall
		return dist
	}
	return -dist
}

// insideBorder reports whether pt falls inside the polygon outlined by
// border, treated as linear in lat-lon space.
func insideBorder(border geo.LocationList, pt geo.Location) bool {
	ring := make([]float64, 0, (border.Size()+1)*2)
	for _, loc := range border.All() {
		ring = append(ring, loc.Lon(), loc.Lat())
	}
	first := border.First()
	if !border.Last().Equal(first) {
		ring = append(ring, first.Lon(), first.Lat())
	}
	return xy.IsPointInRing(geom.XY, geom.Coord{pt.Lon(), pt.Lat()}, ring)
}
