// Package mfd builds and manipulates discretized magnitude-frequency
// distributions: ordered (magnitude, annual rate) sequences on a uniform
// magnitude step.
package mfd

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// Magnitude-moment conversion scale for N·m (9.05; dyn·cm would be 16.05).
const momentScale = 9.05

// Supported magnitude range.
const (
	MinMag = -2.0
	MaxMag = 9.7
)

// MagToMoment converts moment magnitude to seismic moment in N·m.
func MagToMoment(mag float64) float64 {
	return math.Pow(10, 1.5*mag+momentScale)
}

// MomentToMag converts a seismic moment in N·m to moment magnitude.
func MomentToMag(moment float64) float64 {
	return (math.Log10(moment) - momentScale) / 1.5
}

// ValidateMag returns mag or an error if it is outside the supported range.
func ValidateMag(mag float64) (float64, error) {
	if mag < MinMag || mag > MaxMag {
		return 0, eris.Errorf("mfd: magnitude %f outside [%.1f..%.1f]", mag, MinMag, MaxMag)
	}
	return mag, nil
}

// Mfd is an incremental magnitude-frequency distribution: rates on
// magnitudes strictly increasing by a constant delta. The floats flag
// records whether constituent ruptures fill their source geometry or may
// float across a larger parent surface.
type Mfd struct {
	min    float64
	delta  float64
	rates  []float64
	floats bool
}

// newMfd allocates a zero-rate distribution. Factories in this package
// populate rates after construction.
func newMfd(min, delta float64, size int, floats bool) *Mfd {
	return &Mfd{
		min:    min,
		delta:  delta,
		rates:  make([]float64, size),
		floats: floats,
	}
}

// Copy returns a deep copy of the distribution.
func (m *Mfd) Copy() *Mfd {
	cp := newMfd(m.min, m.delta, len(m.rates), m.floats)
	copy(cp.rates, m.rates)
	return cp
}

// Size returns the number of magnitude bins.
func (m *Mfd) Size() int { return len(m.rates) }

// Delta returns the magnitude step.
func (m *Mfd) Delta() float64 { return m.delta }

// Floats reports whether constituent ruptures may float on a parent surface.
func (m *Mfd) Floats() bool { return m.floats }

// Mag returns the magnitude of bin i.
func (m *Mfd) Mag(i int) float64 { return m.min + float64(i)*m.delta }

// MinMag returns the magnitude of the first bin.
func (m *Mfd) MinMag() float64 { return m.min }

// MaxMag returns the magnitude of the last bin.
func (m *Mfd) MaxMag() float64 { return m.Mag(len(m.rates) - 1) }

// Rate returns the incremental annual rate of bin i.
func (m *Mfd) Rate(i int) float64 { return m.rates[i] }

// SetRate sets the incremental annual rate of bin i.
func (m *Mfd) SetRate(i int, rate float64) { m.rates[i] = rate }

// IndexOf returns the bin index for mag, or -1 if mag is not within
// tolerance of a bin center. Tolerance is delta/1e6, or 1e-7 for
// single-bin distributions.
func (m *Mfd) IndexOf(mag float64) int {
	tol := m.delta / 1e6
	if m.delta == 0 {
		tol = 1e-7
	}
	i := int(math.Round((mag - m.min) / math.Max(m.delta, 1e-7)))
	if i < 0 || i >= len(m.rates) {
		return -1
	}
	if math.Abs(m.Mag(i)-mag) > tol {
		return -1
	}
	return i
}

// IncrRate returns the incremental rate at mag, which must align with a bin.
func (m *Mfd) IncrRate(mag float64) (float64, error) {
	i := m.IndexOf(mag)
	if i < 0 {
		return 0, eris.Errorf("mfd: magnitude %f is not a bin center", mag)
	}
	return m.rates[i], nil
}

// CumRate returns the total rate of bins at and above index i.
func (m *Mfd) CumRate(i int) float64 {
	var sum float64
	for ; i < len(m.rates); i++ {
		sum += m.rates[i]
	}
	return sum
}

// TotalRate returns the sum of all incremental rates.
func (m *Mfd) TotalRate() float64 { return m.CumRate(0) }

// MomentRate returns the moment rate of bin i.
func (m *Mfd) MomentRate(i int) float64 {
	return m.rates[i] * MagToMoment(m.Mag(i))
}

// TotalMomentRate returns the total moment rate across all bins.
func (m *Mfd) TotalMomentRate() float64 {
	var sum float64
	for i := range m.rates {
		sum += m.MomentRate(i)
	}
	return sum
}

// Scale multiplies all rates by factor.
func (m *Mfd) Scale(factor float64) {
	for i := range m.rates {
		m.rates[i] *= factor
	}
}

// ScaleToTotalMomentRate rescales all rates so the total moment rate equals
// target.
func (m *Mfd) ScaleToTotalMomentRate(target float64) {
	m.Scale(target / m.TotalMomentRate())
}

// ScaleToCumRate rescales all rates so the cumulative rate at and above bin
// i equals target.
func (m *Mfd) ScaleToCumRate(i int, target float64) {
	m.Scale(target / m.CumRate(i))
}

// ScaleToIncrRate rescales all rates so bin i's incremental rate equals
// target.
func (m *Mfd) ScaleToIncrRate(i int, target float64) {
	m.Scale(target / m.rates[i])
}

func (m *Mfd) String() string {
	var b strings.Builder
	b.WriteString("MFD [")
	for i := range m.rates {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%.2f:%.4g", m.Mag(i), m.rates[i])
	}
	b.WriteString("]")
	return b.String()
}
