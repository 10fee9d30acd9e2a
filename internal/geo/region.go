package geo

import (
	"math"

	"github.com/rotisserie/eris"
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// GriddedRegion is a polygonal region discretized into a uniform grid of
// node Locations. Node membership is tested against the border polygon, so
// a node list may legitimately be empty for a spacing coarser than the
// region extent.
type GriddedRegion struct {
	name    string
	border  LocationList
	spacing float64
	nodes   []Location
	ring    []float64
}

// NewGriddedRegion grids the polygon defined by border (closed implicitly;
// the last point need not repeat the first) at the supplied node spacing in
// decimal degrees. Nodes are anchored on multiples of the spacing.
func NewGriddedRegion(name string, border LocationList, spacing float64) (*GriddedRegion, error) {
	if border.Size() < 3 {
		return nil, eris.Errorf("geo: region border requires 3 or more points, got %d", border.Size())
	}
	if spacing <= 0 {
		return nil, eris.Errorf("geo: region spacing %f is not positive", spacing)
	}

	ring := closedRing(border)
	gr := &GriddedRegion{
		name:    name,
		border:  border,
		spacing: spacing,
		ring:    ring,
	}

	minLat, maxLat := math.MaxFloat64, -math.MaxFloat64
	minLon, maxLon := math.MaxFloat64, -math.MaxFloat64
	for _, loc := range border.All() {
		minLat = math.Min(minLat, loc.Lat())
		maxLat = math.Max(maxLat, loc.Lat())
		minLon = math.Min(minLon, loc.Lon())
		maxLon = math.Max(maxLon, loc.Lon())
	}

	// snap the grid origin outward to spacing multiples
	lat0 := math.Floor(minLat/spacing) * spacing
	lon0 := math.Floor(minLon/spacing) * spacing

	for lat := lat0; lat <= maxLat; lat += spacing {
		for lon := lon0; lon <= maxLon; lon += spacing {
			if gr.contains(lon, lat) {
				gr.nodes = append(gr.nodes, Loc(lat, lon))
			}
		}
	}
	return gr, nil
}

// closedRing flattens a border to an explicitly closed go-geom ring.
func closedRing(border LocationList) []float64 {
	ring := make([]float64, 0, (border.Size()+1)*2)
	for _, loc := range border.All() {
		ring = append(ring, loc.Lon(), loc.Lat())
	}
	first := border.First()
	if !border.Last().Equal(first) {
		ring = append(ring, first.Lon(), first.Lat())
	}
	return ring
}

func (gr *GriddedRegion) contains(lon, lat float64) bool {
	return xy.IsPointInRing(geom.XY, geom.Coord{lon, lat}, gr.ring)
}

// Name returns the region name.
func (gr *GriddedRegion) Name() string { return gr.name }

// Border returns the region border.
func (gr *GriddedRegion) Border() LocationList { return gr.border }

// Spacing returns the node spacing in decimal degrees.
func (gr *GriddedRegion) Spacing() float64 { return gr.spacing }

// Size returns the number of grid nodes inside the region.
func (gr *GriddedRegion) Size() int { return len(gr.nodes) }

// Node returns the Location of node i.
func (gr *GriddedRegion) Node(i int) Location { return gr.nodes[i] }

// Nodes returns all node Locations. Callers must not mutate the slice.
func (gr *GriddedRegion) Nodes() []Location { return gr.nodes }

// Contains reports whether loc falls inside the region border.
func (gr *GriddedRegion) Contains(loc Location) bool {
	return gr.contains(loc.Lon(), loc.Lat())
}
