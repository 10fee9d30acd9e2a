package surface

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// WeightedSurface pairs a floating rupture surface with the fraction of its
// parent magnitude bin's rate it carries. Weights across one expansion sum
// to 1, conserving the bin rate.
type WeightedSurface struct {
	Surface Surface
	Weight  float64
}

// FloatingModel governs how a magnitude bin on a gridded surface expands
// into floating rupture surfaces.
type FloatingModel int

// Supported floating models.
const (
	// FloatOff emits one geometry-filling rupture.
	FloatOff FloatingModel = iota
	// FloatOn floats both down dip and along strike; the only model that
	// recognizes rupture area uncertainty.
	FloatOn
	// FloatStrikeOnly floats along strike with full down-dip width.
	FloatStrikeOnly
	// FloatNSHM approximates the NSHM fortran analytical model, using
	// magnitude-dependent rupture top depths.
	FloatNSHM
	// FloatTriangular weights down-dip positions by a triangular
	// distribution of hypocenters peaking at one third of the parent width.
	// Intended for wide faults in stable continental crust.
	FloatTriangular
)

var floatingNames = map[FloatingModel]string{
	FloatOff:        "OFF",
	FloatOn:         "ON",
	FloatStrikeOnly: "STRIKE_ONLY",
	FloatNSHM:       "NSHM",
	FloatTriangular: "TRIANGULAR",
}

func (f FloatingModel) String() string { return floatingNames[f] }

// ParseFloatingModel returns the FloatingModel named by s.
func ParseFloatingModel(s string) (FloatingModel, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for f, name := range floatingNames {
		if name == want {
			return f, nil
		}
	}
	return 0, eris.Errorf("surface: unknown floating model %q", s)
}

// Float expands one magnitude bin over parent into weighted floating
// surfaces. The uncertainty flag requests the scaling model's dimension
// distribution and is honored only by FloatOn.
func (f FloatingModel) Float(parent Surface, scaling ScalingModel, mag float64, uncertainty bool) ([]WeightedSurface, error) {
	switch f {
	case FloatOff:
		return []WeightedSurface{{Surface: parent, Weight: 1.0}}, nil

	case FloatOn:
		maxWidth := parent.Width()
		if uncertainty {
			dims, err := scaling.DimensionsDistribution(mag, maxWidth)
			if err != nil {
				return nil, err
			}
			var out []WeightedSurface
			for _, d := range dims {
				surfaces := floatingSurfaces(parent, d.Length, d.Width)
				w := d.Weight / float64(len(surfaces))
				for _, s := range surfaces {
					out = append(out, WeightedSurface{Surface: s, Weight: w})
				}
			}
			return out, nil
		}
		d, err := scaling.Dimensions(mag, maxWidth)
		if err != nil {
			return nil, err
		}
		return uniform(floatingSurfaces(parent, d.Length, d.Width)), nil

	case FloatStrikeOnly:
		maxWidth := parent.Width()
		d, err := scaling.Dimensions(mag, maxWidth)
		if err != nil {
			return nil, err
		}
		return uniform(floatingSurfaces(parent, d.Length, maxWidth)), nil

	case FloatNSHM:
		surfaces, err := floatNSHM(parent, scaling, mag)
		if err != nil {
			return nil, err
		}
		return uniform(surfaces), nil

	case FloatTriangular:
		maxWidth := parent.Width()
		d, err := scaling.Dimensions(mag, maxWidth)
		if err != nil {
			return nil, err
		}
		return triangularSurfaces(parent, d.Length, d.Width)
	}
	return nil, eris.Errorf("surface: unknown floating model %d", f)
}

func uniform(surfaces []Surface) []WeightedSurface {
	w := 1.0 / float64(len(surfaces))
	out := make([]WeightedSurface, len(surfaces))
	for i, s := range surfaces {
		out[i] = WeightedSurface{Surface: s, Weight: w}
	}
	return out
}

// floaterExtent sizes a floater dimension against its parent, clamping to a
// single full-extent window when the floater does not fit.
func floaterExtent(floatDim, spacing float64, parentSize int) (size, count int) {
	size = int(math.Round(floatDim/spacing + 1))
	count = parentSize - size + 1
	if count <= 1 {
		count = 1
		size = parentSize
	}
	return size, count
}

// floatingSurfaces windows parent into all along-strike and down-dip
// placements of a floatLength × floatWidth rupture.
func floatingSurfaces(parent Surface, floatLength, floatWidth float64) []Surface {
	colSize, alongCount := floaterExtent(floatLength, parent.StrikeSpacing(), parent.Cols())
	rowSize, downCount := floaterExtent(floatWidth, parent.DipSpacing(), parent.Rows())

	surfaces := make([]Surface, 0, alongCount*downCount)
	for startCol := 0; startCol < alongCount; startCol++ {
		for startRow := 0; startRow < downCount; startRow++ {
			surfaces = append(surfaces, NewSubsetSurface(rowSize, colSize, startRow, startCol, parent))
		}
	}
	return surfaces
}

// floatNSHM windows parent along strike at magnitude-dependent top depths:
// one depth variant above M 7 or for buried surfaces, stepping to four
// 2 km-deeper variants below M 6.5.
func floatNSHM(parent Surface, scaling ScalingModel, mag float64) ([]Surface, error) {
	zTop := parent.Depth()
	downDipCount := 4
	switch {
	case zTop > 1.0 || mag > 7.0:
		downDipCount = 1
	case mag > 6.75:
		downDipCount = 2
	case mag > 6.5:
		downDipCount = 3
	}

	zWidthDelta := 2.0 / math.Sin(parent.DipRad())
	var surfaces []Surface
	for i := 0; i < downDipCount; i++ {
		zTopWidth := float64(i) * zWidthDelta

		d, err := scaling.Dimensions(mag, parent.Width()-zTopWidth)
		if err != nil {
			return nil, err
		}

		startRow := int(math.Round(zTopWidth / parent.DipSpacing()))
		rowSize := int(math.Round(d.Width/parent.DipSpacing() + 1))
		colSize, alongCount := floaterExtent(d.Length, parent.StrikeSpacing(), parent.Cols())

		for startCol := 0; startCol < alongCount; startCol++ {
			surfaces = append(surfaces, NewSubsetSurface(rowSize, colSize, startRow, startCol, parent))
		}
	}
	return surfaces, nil
}

// triangularSurfaces distributes down-dip placements by a triangular
// hypocenter pdf rising from zero at the top of the parent to a peak at one
// third of its depth extent and back to zero at the bottom. Along-strike
// placements are weighted uniformly.
func triangularSurfaces(parent Surface, floatLength, floatWidth float64) ([]WeightedSurface, error) {
	colSize, alongCount := floaterExtent(floatLength, parent.StrikeSpacing(), parent.Cols())
	rowSize, downCount := floaterExtent(floatWidth, parent.DipSpacing(), parent.Rows())

	sinDip := math.Sin(parent.DipRad())
	halfDepth := float64(rowSize) * parent.DipSpacing() * sinDip / 2.0
	hypoDepths := make([]float64, downCount)
	for startRow := 0; startRow < downCount; startRow++ {
		hypoDepths[startRow] = parent.At(startRow, 0).Depth() + halfDepth
	}

	zTop := parent.Depth()
	zBot := zTop + parent.Width()*sinDip
	depthWeights, err := triangularWeights(zTop, zBot, hypoDepths)
	if err != nil {
		return nil, err
	}

	horizScale := 1.0 / float64(alongCount)
	out := make([]WeightedSurface, 0, alongCount*downCount)
	for startCol := 0; startCol < alongCount; startCol++ {
		for startRow := 0; startRow < downCount; startRow++ {
			out = append(out, WeightedSurface{
				Surface: NewSubsetSurface(rowSize, colSize, startRow, startCol, parent),
				Weight:  depthWeights[startRow] * horizScale,
			})
		}
	}
	return out, nil
}

// triangularWeights interpolates a normalized triangular pdf peaking at one
// third of the [zTop, zBot] extent onto the supplied depths.
func triangularWeights(zTop, zBot float64, depths []float64) ([]float64, error) {
	for _, d := range depths {
		if d < zTop || d > zBot {
			return nil, eris.Errorf("surface: hypocentral depth %f outside [%f..%f]", d, zTop, zBot)
		}
	}

	xPeak := zTop + (zBot-zTop)/3.0
	yPeak := 2.0 / (3.0 * (xPeak - zTop))

	weights := make([]float64, len(depths))
	var sum float64
	for i, d := range depths {
		var w float64
		if d <= xPeak {
			w = yPeak * (d - zTop) / (xPeak - zTop)
		} else {
			w = yPeak * (zBot - d) / (zBot - xPeak)
		}
		weights[i] = w
		sum += w
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights, nil
}
