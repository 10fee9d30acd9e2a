package model

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hazard-cli/internal/fault"
	"github.com/sells-group/hazard-cli/internal/mfd"
)

// MagDepthMap associates magnitude cutoffs with depth-weight
// distributions. A magnitude M maps to the distribution of the lowest
// cutoff greater than M, so cutoffs are exclusive lower bounds of the
// interval they govern. At least one cutoff must equal or exceed the
// supported maximum magnitude so every magnitude resolves.
type MagDepthMap map[float64]map[float64]float64

// DepthModel flattens a MagDepthMap over the master magnitude sequence of
// a grid source set. For each magnitude index the applicable depths and
// weights are unrolled into parallel slices, so a point source can address
// every (magnitude, depth) pair with a single index.
type DepthModel struct {
	maxDepth float64

	magDepthIndices []int
	magDepthDepths  []float64
	magDepthWeights []float64
}

// NewDepthModel flattens magDepthMap over mags. Depths are validated
// against typ (crustal or slab ranges) and against maxDepth.
func NewDepthModel(magDepthMap MagDepthMap, mags []float64, maxDepth float64, typ SourceType) (*DepthModel, error) {
	if len(magDepthMap) == 0 {
		return nil, eris.New("model: mag-depth map is empty")
	}
	if err := validateDepthMap(magDepthMap, maxDepth, typ); err != nil {
		return nil, err
	}

	cutoffs := make([]float64, 0, len(magDepthMap))
	for m := range magDepthMap {
		cutoffs = append(cutoffs, m)
	}
	sort.Float64s(cutoffs)
	if cutoffs[len(cutoffs)-1] < mfd.MaxMag {
		return nil, eris.Errorf(
			"model: mag-depth map needs a cutoff of at least M%.1f, max is M%.2f",
			mfd.MaxMag, cutoffs[len(cutoffs)-1])
	}

	d := &DepthModel{maxDepth: maxDepth}
	for i, mag := range mags {
		var depthMap map[float64]float64
		for _, cut := range cutoffs {
			if cut > mag {
				depthMap = magDepthMap[cut]
				break
			}
		}
		depths := make([]float64, 0, len(depthMap))
		for z := range depthMap {
			depths = append(depths, z)
		}
		sort.Float64s(depths)
		for _, z := range depths {
			d.magDepthIndices = append(d.magDepthIndices, i)
			d.magDepthDepths = append(d.magDepthDepths, z)
			d.magDepthWeights = append(d.magDepthWeights, depthMap[z])
		}
	}
	return d, nil
}

func validateDepthMap(m MagDepthMap, maxDepth float64, typ SourceType) error {
	validate := fault.ValidateDepth
	if typ == TypeSlab {
		validate = fault.ValidateSlabDepth
	}
	if _, err := validate(maxDepth); err != nil {
		return err
	}
	for _, depthMap := range m {
		var wtSum float64
		for z, wt := range depthMap {
			if _, err := validate(z); err != nil {
				return err
			}
			if z > maxDepth {
				return eris.Errorf("model: mag-depth map depth %f > max depth %f", z, maxDepth)
			}
			wtSum += wt
		}
		if !fuzzyEquals(wtSum, 1.0, 1e-4) {
			return eris.Errorf("model: mag-depth weights sum to %f, not 1", wtSum)
		}
	}
	return nil
}

// MaxDepth is the depth below which ruptures may not extend.
func (d *DepthModel) MaxDepth() float64 { return d.maxDepth }

// Size is the flattened (magnitude, depth) pair count.
func (d *DepthModel) Size() int { return len(d.magDepthIndices) }

// MagIndex returns the master-sequence magnitude index of pair i.
func (d *DepthModel) MagIndex(i int) int { return d.magDepthIndices[i] }

// Depth returns the depth of pair i.
func (d *DepthModel) Depth(i int) float64 { return d.magDepthDepths[i] }

// Weight returns the depth weight of pair i.
func (d *DepthModel) Weight(i int) float64 { return d.magDepthWeights[i] }

// lastIndexForMag returns the last flattened index whose magnitude index
// is magIdx, or -1 when none.
func (d *DepthModel) lastIndexForMag(magIdx int) int {
	for i := len(d.magDepthIndices) - 1; i >= 0; i-- {
		if d.magDepthIndices[i] == magIdx {
			return i
		}
	}
	return -1
}
