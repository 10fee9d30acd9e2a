package geo

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// LocationList is an immutable ordered sequence of Locations, typically a
// fault trace or polygon border.
type LocationList struct {
	locs []Location
}

// NewLocationList returns a LocationList over a copy of locs. At least one
// Location is required.
func NewLocationList(locs ...Location) (LocationList, error) {
	if len(locs) == 0 {
		return LocationList{}, eris.New("geo: location list is empty")
	}
	cp := make([]Location, len(locs))
	copy(cp, locs)
	return LocationList{locs: cp}, nil
}

// LocList is the unchecked variant of NewLocationList for internally
// computed sequences.
func LocList(locs ...Location) LocationList {
	cp := make([]Location, len(locs))
	copy(cp, locs)
	return LocationList{locs: cp}
}

// Size returns the number of Locations in the list.
func (ll LocationList) Size() int { return len(ll.locs) }

// Get returns the Location at index i.
func (ll LocationList) Get(i int) Location { return ll.locs[i] }

// First returns the first Location.
func (ll LocationList) First() Location { return ll.locs[0] }

// Last returns the last Location.
func (ll LocationList) Last() Location { return ll.locs[len(ll.locs)-1] }

// All returns the backing slice. Callers must not mutate it.
func (ll LocationList) All() []Location { return ll.locs }

// Length returns the cumulative great-circle length (km) of the list.
func (ll LocationList) Length() float64 {
	var sum float64
	for i := 1; i < len(ll.locs); i++ {
		sum += HorzDistance(ll.locs[i-1], ll.locs[i])
	}
	return sum
}

// Reverse returns a copy of the list in reverse order.
func (ll LocationList) Reverse() LocationList {
	cp := make([]Location, len(ll.locs))
	for i, loc := range ll.locs {
		cp[len(ll.locs)-1-i] = loc
	}
	return LocationList{locs: cp}
}

// Depth returns the depth of the first Location. Traces are assumed to lie
// at uniform depth.
func (ll LocationList) Depth() float64 { return ll.locs[0].depth }

// MinDepth returns the shallowest depth in the list.
func (ll LocationList) MinDepth() float64 {
	min := math.MaxFloat64
	for _, loc := range ll.locs {
		min = math.Min(min, loc.depth)
	}
	return min
}

// MaxDepth returns the deepest depth in the list.
func (ll LocationList) MaxDepth() float64 {
	max := -math.MaxFloat64
	for _, loc := range ll.locs {
		max = math.Max(max, loc.depth)
	}
	return max
}

// Centroid returns the average position of the list.
func (ll LocationList) Centroid() Location {
	return Centroid(ll.locs)
}

// Resample splits the list into num subsections of equal length measured
// along the original trace, returning num+1 points. Corners are cut where
// the original has curvature, so resampled subsections may be slightly
// shorter than the originals.
func (ll LocationList) Resample(num int) LocationList {
	interval := ll.Length() / float64(num)
	resampled := make([]Location, 0, num+1)
	resampled = append(resampled, ll.First())

	remaining := interval
	last := ll.First()
	next := 1
	for next < len(ll.locs) {
		nextLoc := ll.locs[next]
		length := LinearDistanceFast(last, nextLoc)
		if length > remaining {
			src := VectorBetween(last, nextLoc)
			v := NewVector(
				src.Azimuth,
				src.Horizontal*remaining/length,
				src.Vertical*remaining/length)
			loc := ShiftedLocation(last, v)
			resampled = append(resampled, loc)
			last = loc
			remaining = interval
			continue
		}
		last = nextLoc
		next++
		remaining -= length
	}

	// numerical precision can drop the final point
	if LinearDistanceFast(ll.Last(), resampled[len(resampled)-1]) > interval/2 {
		resampled = append(resampled, ll.Last())
	}
	return LocationList{locs: resampled}
}

func (ll LocationList) String() string {
	var b strings.Builder
	for i, loc := range ll.locs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(loc.String())
	}
	return b.String()
}
