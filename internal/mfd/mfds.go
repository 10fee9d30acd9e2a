package mfd

import (
	"math"

	"github.com/rotisserie/eris"
)

// Gaussian distributions are doubly truncated at 2 sigma.
const truncLevel = 2.0

// Tapered-GR constants: the upper-bound magnitude used to normalize the
// Pareto taper and the small reference magnitude anchoring its moment.
const (
	taperedLargeMag = 9.05
	smallMoMag      = 4.0
)

// MagCount returns the number of uniform bins spanning [mMin, mMax] at step
// dMag. The 0.4 offset tolerates ranges that are not exact multiples of the
// step.
func MagCount(mMin, mMax, dMag float64) int {
	return int((mMax-mMin)/dMag + 1.4)
}

// GRRate returns the incremental Gutenberg-Richter rate 10^(a - b·M).
func GRRate(a, b, mag float64) float64 {
	return math.Pow(10, a-b*mag)
}

// IncrRate returns the incremental rate at mMin for a linear a-value.
func IncrRate(a, b, mMin float64) float64 {
	return a * math.Pow(10, -b*mMin)
}

// TotalMoRate returns the total moment rate of a GR distribution defined by
// a, b over nMag bins from mMin at step dMag.
func TotalMoRate(mMin float64, nMag int, dMag, a, b float64) float64 {
	moRate := 1e-10 // non-zero starting rate
	for i := 0; i < nMag; i++ {
		mag := mMin + float64(i)*dMag
		moRate += GRRate(a, b, mag) * MagToMoment(mag)
	}
	return moRate
}

// RateToProb converts an annual rate to a Poisson probability of one or
// more events in time years.
func RateToProb(rate, time float64) float64 {
	return 1 - math.Exp(-rate*time)
}

// ProbToRate converts a Poisson probability over time years to an annual
// rate.
func ProbToRate(p, time float64) float64 {
	return -math.Log(1-p) / time
}

// NewSingle returns a single-magnitude distribution with the supplied
// cumulative rate.
func NewSingle(mag, cumRate float64, floats bool) *Mfd {
	m := newMfd(mag, 0, 1, floats)
	m.SetRate(0, cumRate)
	return m
}

// NewSingleMoBalanced returns a single-magnitude distribution whose rate is
// derived from a target moment rate.
func NewSingleMoBalanced(mag, moRate float64, floats bool) *Mfd {
	return NewSingle(mag, moRate/MagToMoment(mag), floats)
}

// NewIncremental returns a distribution over explicit magnitude and rate
// arrays. Magnitudes must be uniformly spaced; lengths must match.
func NewIncremental(mags, rates []float64) (*Mfd, error) {
	if len(mags) != len(rates) {
		return nil, eris.Errorf("mfd: %d magnitudes but %d rates", len(mags), len(rates))
	}
	if len(mags) < 2 {
		return nil, eris.Errorf("mfd: incremental distribution requires 2 or more bins, got %d", len(mags))
	}
	delta := (mags[len(mags)-1] - mags[0]) / float64(len(mags)-1)
	m := newMfd(mags[0], delta, len(mags), true)
	copy(m.rates, rates)
	return m, nil
}

// NewGutenbergRichter returns a GR distribution over size bins from min at
// step delta, scaled so the total cumulative rate equals cumRate.
func NewGutenbergRichter(min, delta float64, size int, b, cumRate float64) (*Mfd, error) {
	m, err := grBase(min, delta, size, b)
	if err != nil {
		return nil, err
	}
	m.ScaleToCumRate(0, cumRate)
	return m, nil
}

// NewGutenbergRichterMoBalanced returns a GR distribution scaled so the
// total moment rate equals moRate. Required when mixing magnitude
// uncertainty branches so total moment is conserved regardless of branch
// count.
func NewGutenbergRichterMoBalanced(min, delta float64, size int, b, moRate float64) (*Mfd, error) {
	m, err := grBase(min, delta, size, b)
	if err != nil {
		return nil, err
	}
	m.ScaleToTotalMomentRate(moRate)
	return m, nil
}

// NewTaperedGutenbergRichter returns a GR distribution with an exponential
// (Pareto) moment taper above the corner magnitude.
func NewTaperedGutenbergRichter(min, delta float64, size int, a, b, corner, weight float64) (*Mfd, error) {
	m, err := NewGutenbergRichter(min, delta, size, b, 1.0)
	if err != nil {
		return nil, err
	}
	m.ScaleToIncrRate(0, IncrRate(a, b, min)*weight)
	taper(m, b, corner)
	return m, nil
}

// NewGaussian returns a normal distribution in magnitude, doubly truncated
// at 2 sigma over size bins, scaled so the total rate equals cumRate. Size
// must be odd so the distribution centers on the mean.
func NewGaussian(mean, sigma float64, size int, cumRate float64, floats bool) (*Mfd, error) {
	m, err := gaussianBase(mean, sigma, size, floats)
	if err != nil {
		return nil, err
	}
	m.ScaleToCumRate(0, cumRate)
	return m, nil
}

// NewGaussianMoBalanced returns a truncated normal distribution scaled so
// the total moment rate equals moRate.
func NewGaussianMoBalanced(mean, sigma float64, size int, moRate float64, floats bool) (*Mfd, error) {
	m, err := gaussianBase(mean, sigma, size, floats)
	if err != nil {
		return nil, err
	}
	m.ScaleToTotalMomentRate(moRate)
	return m, nil
}

func grBase(min, delta float64, size int, b float64) (*Mfd, error) {
	if size <= 0 {
		return nil, eris.Errorf("mfd: gutenberg-richter bin count %d (mMin >= mMax after rounding)", size)
	}
	m := newMfd(min, delta, size, true)
	for i := 0; i < size; i++ {
		m.SetRate(i, math.Pow(10, -b*m.Mag(i)))
	}
	return m, nil
}

func gaussianBase(mean, sigma float64, size int, floats bool) (*Mfd, error) {
	if size <= 0 {
		return nil, eris.Errorf("mfd: gaussian bin count %d is not positive", size)
	}
	if size%2 == 0 {
		return nil, eris.Errorf("mfd: gaussian bin count %d must be odd to center on the mean", size)
	}
	min := mean - truncLevel*sigma
	max := mean + truncLevel*sigma
	delta := 0.0
	if size > 1 {
		delta = (max - min) / float64(size-1)
	}
	m := newMfd(min, delta, size, floats)
	for i := 0; i < size; i++ {
		x := (m.Mag(i) - mean) / sigma
		m.SetRate(i, math.Exp(-x*x/2))
	}
	return m, nil
}

// taper applies the Pareto taper to a GR distribution in place.
func taper(m *Mfd, b, mCorner float64) {
	minMo := MagToMoment(smallMoMag)
	cornerMo := MagToMoment(mCorner)
	largeMo := MagToMoment(taperedLargeMag)
	beta := b / 1.5
	halfWidth := m.Delta() / 2.0

	for i := 0; i < m.Size(); i++ {
		mag := m.Mag(i)
		moLo := MagToMoment(mag - halfWidth)
		moHi := MagToMoment(mag + halfWidth)
		tapered := magBinCount(minMo, moLo, moHi, beta, cornerMo)
		untapered := magBinCount(minMo, moLo, moHi, beta, largeMo)
		m.SetRate(i, m.Rate(i)*tapered/untapered)
	}
}

func magBinCount(minMo, moLo, moHi, beta, cornerMo float64) float64 {
	return pareto(minMo, moLo, beta, cornerMo) - pareto(minMo, moHi, beta, cornerMo)
}

func pareto(minMo, magMo, beta, cornerMo float64) float64 {
	return math.Pow(minMo/magMo, beta) * math.Exp((minMo-magMo)/cornerMo)
}
