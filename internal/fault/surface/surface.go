// Package surface models earthquake rupture surfaces: gridded fault
// surfaces built from traces, approximate dual-trace subduction interface
// surfaces, floating sub-surface windows, and the rupture scaling and
// floating policies that govern how sources expand over them.
package surface

import (
	"github.com/sells-group/hazard-cli/internal/geo"
)

// Surface is an evenly discretized rupture surface. Implementations expose
// the grid of Locations that defines the surface along with its summary
// geometry. All distances are in km, angles in degrees unless the method
// name says otherwise.
type Surface interface {
	// Strike is the strike of the upper edge, [0°, 360°).
	Strike() float64
	// Dip is the average dip, [0°, 90°].
	Dip() float64
	// DipRad is the average dip in radians.
	DipRad() float64
	// DipDirection is the azimuth the surface dips toward.
	DipDirection() float64
	// Depth is the depth to the shallowest point of the surface.
	Depth() float64
	// Width is the down-dip width.
	Width() float64
	// Length is the along-strike length.
	Length() float64
	// Area returns length × width.
	Area() float64
	// Centroid returns the average position of all surface nodes.
	Centroid() geo.Location

	// Rows and Cols describe the discretized grid; rows run down dip,
	// columns along strike.
	Rows() int
	Cols() int
	// At returns the Location of the node at (row, col).
	At(row, col int) geo.Location
	// UpperEdge returns the discretized top row.
	UpperEdge() geo.LocationList
	// Perimeter returns a closed outline of the surface.
	Perimeter() geo.LocationList

	// StrikeSpacing and DipSpacing are the actual (best fit) node spacings;
	// AvgSpacing is their mean.
	StrikeSpacing() float64
	DipSpacing() float64
	AvgSpacing() float64

	// DistanceTo returns the rJB, rRup and rX metrics from the surface to
	// loc.
	DistanceTo(loc geo.Location) Distance
}

// grid is the backing store shared by gridded surface implementations.
type grid struct {
	rows, cols    int
	locs          []geo.Location
	strikeSpacing float64
	dipSpacing    float64
}

func (g *grid) init(rows, cols int) {
	g.rows = rows
	g.cols = cols
	g.locs = make([]geo.Location, rows*cols)
}

func (g *grid) Rows() int { return g.rows }

func (g *grid) Cols() int { return g.cols }

func (g *grid) At(row, col int) geo.Location {
	return g.locs[row*g.cols+col]
}

func (g *grid) set(row, col int, loc geo.Location) {
	g.locs[row*g.cols+col] = loc
}

func (g *grid) StrikeSpacing() float64 { return g.strikeSpacing }

func (g *grid) DipSpacing() float64 { return g.dipSpacing }

// AvgSpacing returns the mean of the strike and dip spacings.
func (g *grid) AvgSpacing() float64 {
	return (g.strikeSpacing + g.dipSpacing) / 2.0
}

// row returns the Locations of a single grid row.
func (g *grid) row(i int) []geo.Location {
	return g.locs[i*g.cols : (i+1)*g.cols]
}

func (g *grid) UpperEdge() geo.LocationList {
	return geo.LocList(g.row(0)...)
}

// gridPerimeter returns the closed outline of the discretized grid: top row,
// reversed bottom row, back to the first point.
func (g *grid) gridPerimeter() geo.LocationList {
	top := g.row(0)
	bot := g.row(g.rows - 1)
	locs := make([]geo.Location, 0, 2*g.cols+1)
	locs = append(locs, top...)
	for i := len(bot) - 1; i >= 0; i-- {
		locs = append(locs, bot[i])
	}
	locs = append(locs, top[0])
	return geo.LocList(locs...)
}

func (g *grid) centroidOfNodes() geo.Location {
	return geo.Centroid(g.locs)
}
