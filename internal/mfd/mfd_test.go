package mfd

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMagToMomentRoundTrip(t *testing.T) {
	for _, m := range []float64{5.0, 6.5, 7.8, 9.0} {
		assert.InDelta(t, m, MomentToMag(MagToMoment(m)), 1e-9)
	}
	// Hanks & Kanamori: M6.0 is about 1.26e18 N·m
	assert.InEpsilon(t, 1.2589e18, MagToMoment(6.0), 1e-3)
}

func TestValidateMag(t *testing.T) {
	_, err := ValidateMag(6.5)
	require.NoError(t, err)
	_, err = ValidateMag(-3.0)
	require.Error(t, err)
	_, err = ValidateMag(10.5)
	require.Error(t, err)
}

func TestNewSingle(t *testing.T) {
	m := NewSingle(6.5, 0.001, true)
	require.Equal(t, 1, m.Size())
	assert.InDelta(t, 6.5, m.Mag(0), 1e-12)
	assert.InDelta(t, 0.001, m.Rate(0), 1e-15)
	assert.True(t, m.Floats())
}

func TestNewSingleMoBalanced(t *testing.T) {
	moRate := 0.001 * MagToMoment(6.5)
	m := NewSingleMoBalanced(6.5, moRate, false)
	require.Equal(t, 1, m.Size())
	assert.InDelta(t, 0.001, m.Rate(0), 1e-12)
	assert.InDelta(t, moRate, m.TotalMomentRate(), moRate*1e-12)
}

func TestNewIncremental(t *testing.T) {
	m, err := NewIncremental([]float64{6.0, 6.1, 6.2}, []float64{3e-3, 2e-3, 1e-3})
	require.NoError(t, err)
	require.Equal(t, 3, m.Size())
	assert.InDelta(t, 0.1, m.Delta(), 1e-9)
	assert.InDelta(t, 6e-3, m.TotalRate(), 1e-12)

	_, err = NewIncremental([]float64{6.0}, []float64{1e-3, 2e-3})
	require.Error(t, err)
}

func TestGutenbergRichterSlope(t *testing.T) {
	m, err := NewGutenbergRichter(5.05, 0.1, 25, 1.0, 0.1)
	require.NoError(t, err)
	require.Equal(t, 25, m.Size())
	assert.InDelta(t, 0.1, m.TotalRate(), 1e-12)

	// b=1 means each 0.1-mag bin carries 10^-0.1 of the previous rate
	for i := 1; i < m.Size(); i++ {
		assert.InDelta(t, math.Pow(10, -0.1), m.Rate(i)/m.Rate(i-1), 1e-9)
	}
}

func TestGutenbergRichterMoBalanced(t *testing.T) {
	target := 1e16
	m, err := NewGutenbergRichterMoBalanced(5.05, 0.1, 25, 0.8, target)
	require.NoError(t, err)
	assert.InDelta(t, target, m.TotalMomentRate(), target*1e-9)
}

func TestTaperedGutenbergRichter(t *testing.T) {
	tapered, err := NewTaperedGutenbergRichter(5.05, 0.1, 30, 4.0, 0.8, 7.0, 1.0)
	require.NoError(t, err)
	plain, err := NewGutenbergRichter(5.05, 0.1, 30, 0.8, 1.0)
	require.NoError(t, err)
	plain.ScaleToIncrRate(0, IncrRate(4.0, 0.8, 5.05))

	// tapering suppresses rates above the corner magnitude
	iCorner := tapered.IndexOf(7.05)
	require.Positive(t, iCorner)
	assert.Less(t, tapered.Rate(tapered.Size()-1), plain.Rate(plain.Size()-1))
	// and leaves the low-magnitude end nearly untouched
	assert.InEpsilon(t, plain.Rate(0), tapered.Rate(0), 0.05)
}

func TestGaussian(t *testing.T) {
	m, err := NewGaussian(6.5, 0.12, 11, 0.001, false)
	require.NoError(t, err)
	require.Equal(t, 11, m.Size())
	assert.InDelta(t, 0.001, m.TotalRate(), 1e-12)
	// centered on the mean
	assert.InDelta(t, 6.5, m.Mag(5), 1e-9)
	// symmetric
	for i := 0; i < 5; i++ {
		assert.InDelta(t, m.Rate(i), m.Rate(10-i), 1e-15)
	}
}

func TestGaussianMoBalanced(t *testing.T) {
	target := 5e15
	m, err := NewGaussianMoBalanced(6.5, 0.12, 11, target, false)
	require.NoError(t, err)
	assert.InDelta(t, target, m.TotalMomentRate(), target*1e-9)
}

func TestMagCount(t *testing.T) {
	assert.Equal(t, 25, MagCount(5.05, 7.45, 0.1))
	assert.Equal(t, 1, MagCount(6.5, 6.5, 0.1))
	assert.Negative(t, MagCount(7.0, 6.0, 0.1))
}

func TestTotalMoRate(t *testing.T) {
	// single bin reduces to GR rate times moment
	want := GRRate(3.0, 1.0, 5.05) * MagToMoment(5.05)
	assert.InEpsilon(t, want, TotalMoRate(5.05, 1, 0.1, 3.0, 1.0), 1e-6)

	// more bins carry more moment
	assert.Greater(t,
		TotalMoRate(5.05, 20, 0.1, 3.0, 1.0),
		TotalMoRate(5.05, 10, 0.1, 3.0, 1.0))
}

func TestScaleToTotalMomentRate(t *testing.T) {
	m, err := NewGutenbergRichter(5.05, 0.1, 10, 1.0, 0.5)
	require.NoError(t, err)
	m.ScaleToTotalMomentRate(2e15)
	assert.InDelta(t, 2e15, m.TotalMomentRate(), 2e15*1e-12)
}

func TestCumRate(t *testing.T) {
	m, err := NewIncremental([]float64{6.0, 6.1, 6.2}, []float64{3e-3, 2e-3, 1e-3})
	require.NoError(t, err)
	assert.InDelta(t, 6e-3, m.CumRate(0), 1e-15)
	assert.InDelta(t, 3e-3, m.CumRate(1), 1e-15)
	assert.InDelta(t, 1e-3, m.CumRate(2), 1e-15)
}

func TestCopyIsIndependent(t *testing.T) {
	m := NewSingle(6.5, 0.001, false)
	c := m.Copy()
	c.SetRate(0, 0.5)
	assert.InDelta(t, 0.001, m.Rate(0), 1e-15)
}

func TestRateProbConversions(t *testing.T) {
	p := RateToProb(0.01, 50)
	assert.InDelta(t, 0.01, ProbToRate(p, 50), 1e-12)
	assert.Greater(t, p, 0.0)
	assert.Less(t, p, 1.0)
}
