package surface

import (
	"github.com/sells-group/hazard-cli/internal/geo"
)

// SubsetSurface is a rectangular window onto a parent gridded surface. It
// is the geometry of a floating rupture: smaller than its parent, sharing
// the parent's nodes and spacing.
type SubsetSurface struct {
	parent           Surface
	rows, cols       int
	startRow, startCol int
}

var _ Surface = (*SubsetSurface)(nil)

// NewSubsetSurface returns a rows × cols window onto parent anchored at
// (startRow, startCol). The window must fit inside the parent grid.
func NewSubsetSurface(rows, cols, startRow, startCol int, parent Surface) *SubsetSurface {
	return &SubsetSurface{
		parent:   parent,
		rows:     rows,
		cols:     cols,
		startRow: startRow,
		startCol: startCol,
	}
}

// Rows returns the window row count.
func (s *SubsetSurface) Rows() int { return s.rows }

// Cols returns the window column count.
func (s *SubsetSurface) Cols() int { return s.cols }

// At returns the parent node at the window-relative position.
func (s *SubsetSurface) At(row, col int) geo.Location {
	return s.parent.At(s.startRow+row, s.startCol+col)
}

// Strike returns the strike of the window's upper edge.
func (s *SubsetSurface) Strike() float64 {
	edge := s.UpperEdge()
	return geo.Azimuth(edge.First(), edge.Last())
}

// Dip returns the parent dip.
func (s *SubsetSurface) Dip() float64 { return s.parent.Dip() }

// DipRad returns the parent dip in radians.
func (s *SubsetSurface) DipRad() float64 { return s.parent.DipRad() }

// DipDirection returns the parent dip direction.
func (s *SubsetSurface) DipDirection() float64 { return s.parent.DipDirection() }

// Depth returns the average depth of the window's top row.
func (s *SubsetSurface) Depth() float64 {
	var sum float64
	for col := 0; col < s.cols; col++ {
		sum += s.At(0, col).Depth()
	}
	return sum / float64(s.cols)
}

// Width returns the window's down-dip width.
func (s *SubsetSurface) Width() float64 {
	return s.DipSpacing() * float64(s.rows-1)
}

// Length returns the window's along-strike length.
func (s *SubsetSurface) Length() float64 {
	return s.StrikeSpacing() * float64(s.cols-1)
}

// Area returns length × width.
func (s *SubsetSurface) Area() float64 { return s.Length() * s.Width() }

// Centroid returns the average position of the window nodes.
func (s *SubsetSurface) Centroid() geo.Location {
	locs := make([]geo.Location, 0, s.rows*s.cols)
	for row := 0; row < s.rows; row++ {
		for col := 0; col < s.cols; col++ {
			locs = append(locs, s.At(row, col))
		}
	}
	return geo.Centroid(locs)
}

// UpperEdge returns the window's top row.
func (s *SubsetSurface) UpperEdge() geo.LocationList {
	locs := make([]geo.Location, s.cols)
	for col := 0; col < s.cols; col++ {
		locs[col] = s.At(0, col)
	}
	return geo.LocList(locs...)
}

// Perimeter returns the closed outline of the window.
func (s *SubsetSurface) Perimeter() geo.LocationList {
	locs := make([]geo.Location, 0, 2*s.cols+1)
	for col := 0; col < s.cols; col++ {
		locs = append(locs, s.At(0, col))
	}
	for col := s.cols - 1; col >= 0; col-- {
		locs = append(locs, s.At(s.rows-1, col))
	}
	locs = append(locs, s.At(0, 0))
	return geo.LocList(locs...)
}

// StrikeSpacing returns the parent strike spacing.
func (s *SubsetSurface) StrikeSpacing() float64 { return s.parent.StrikeSpacing() }

// DipSpacing returns the parent dip spacing.
func (s *SubsetSurface) DipSpacing() float64 { return s.parent.DipSpacing() }

// AvgSpacing returns the parent average spacing.
func (s *SubsetSurface) AvgSpacing() float64 { return s.parent.AvgSpacing() }

// DistanceTo returns the distance metrics from the window to loc.
func (s *SubsetSurface) DistanceTo(loc geo.Location) Distance {
	return Compute(s, loc)
}
