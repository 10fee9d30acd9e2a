package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/hazard-cli/internal/fault/surface"
	"github.com/sells-group/hazard-cli/internal/geo"
	"github.com/sells-group/hazard-cli/internal/mfd"
)

func testFaultTrace() geo.LocationList {
	return geo.LocList(geo.Loc(34.0, -118.0), geo.Loc(34.3, -118.0))
}

func testFaultBuilder() *FaultSourceBuilder {
	return NewFaultSourceBuilder().
		Name("Test Fault").
		ID(1).
		Trace(testFaultTrace()).
		Dip(50).
		Width(14).
		Depth(1).
		Rake(90).
		SurfaceSpacing(1.0).
		Scaling(surface.ScalingFaultWC94Length).
		Variability(false)
}

func TestFaultSourceSingleMfd(t *testing.T) {
	src, err := testFaultBuilder().
		Mfd(mfd.NewSingle(6.5, 0.001, false)).
		Floating(surface.FloatOff).
		Build()
	require.NoError(t, err)

	require.Equal(t, 1, src.Size())
	it, err := src.Ruptures()
	require.NoError(t, err)
	require.True(t, it.Next())
	r := it.Rupture()
	assert.Equal(t, 6.5, r.Mag)
	assert.Equal(t, 0.001, r.Rate)
	assert.Equal(t, 90.0, r.Rake)
	assert.Equal(t, src.Surface(), r.Surface)
	assert.False(t, it.Next())
}

func TestFaultSourceFloaterRateConservation(t *testing.T) {
	rate := 0.004
	src, err := testFaultBuilder().
		Mfd(mfd.NewSingle(6.0, rate, true)).
		Floating(surface.FloatOn).
		Build()
	require.NoError(t, err)

	// the bin expands into many floaters whose rates sum to the bin rate
	require.Greater(t, src.Size(), 1)
	it, err := src.Ruptures()
	require.NoError(t, err)
	var sum float64
	n := 0
	for it.Next() {
		sum += it.Rupture().Rate
		n++
	}
	assert.Equal(t, src.Size(), n)
	assert.InEpsilon(t, rate, sum, 1e-9)
}

func TestFaultSourceFloatOffFillsGeometry(t *testing.T) {
	m, err := mfd.NewGutenbergRichter(6.0, 0.1, 5, 0.8, 0.002)
	require.NoError(t, err)

	// with floating disabled each bin ruptures the full surface
	src, err := testFaultBuilder().
		Mfd(m).
		Floating(surface.FloatOff).
		Build()
	require.NoError(t, err)
	require.Equal(t, 5, src.Size())

	it, err := src.Ruptures()
	require.NoError(t, err)
	for it.Next() {
		assert.Equal(t, src.Surface(), it.Rupture().Surface)
	}
}

func TestFaultSourceGRFloaterRateConservation(t *testing.T) {
	m, err := mfd.NewGutenbergRichter(6.0, 0.1, 5, 0.8, 0.002)
	require.NoError(t, err)

	src, err := testFaultBuilder().
		Mfd(m).
		Floating(surface.FloatStrikeOnly).
		Build()
	require.NoError(t, err)
	require.Greater(t, src.Size(), 5)

	it, err := src.Ruptures()
	require.NoError(t, err)
	var sum float64
	for it.Next() {
		sum += it.Rupture().Rate
	}
	assert.InEpsilon(t, m.TotalRate(), sum, 1e-9)
}

func TestFaultSourceMinRateDropsBins(t *testing.T) {
	_, err := testFaultBuilder().
		Mfd(mfd.NewSingle(6.5, 1e-20, false)).
		Floating(surface.FloatOff).
		Build()
	require.ErrorContains(t, err, "yields no ruptures")
}

func TestFaultSourceBuilderValidation(t *testing.T) {
	_, err := NewFaultSourceBuilder().Build()
	require.ErrorContains(t, err, "name not set")

	_, err = NewFaultSourceBuilder().Name("F").ID(1).Build()
	require.ErrorContains(t, err, "trace not set")

	b := testFaultBuilder().
		Mfd(mfd.NewSingle(6.5, 0.001, false)).
		Floating(surface.FloatOff)
	_, err = b.Build()
	require.NoError(t, err)
	_, err = b.Build()
	require.ErrorContains(t, err, "already used")
}

func TestFaultSourceSetNear(t *testing.T) {
	src, err := testFaultBuilder().
		Mfd(mfd.NewSingle(6.5, 0.001, false)).
		Floating(surface.FloatOff).
		Build()
	require.NoError(t, err)

	set, err := NewFaultSourceSetBuilder().
		Name("Faults").
		ID(1).
		Weight(1.0).
		Gmms(testGmms(t)).
		Source(src).
		Build()
	require.NoError(t, err)

	assert.Equal(t, TypeFault, set.Type())
	assert.Len(t, set.Near(geo.Loc(34.1, -117.9), 50), 1)
	assert.Empty(t, set.Near(geo.Loc(40.0, -110.0), 50))
}

func TestInterfaceSourceFromTraceAndWidth(t *testing.T) {
	src, err := NewInterfaceSourceBuilder().
		Name("Test Interface").
		ID(1).
		Trace(testFaultTrace()).
		Dip(15).
		Width(80).
		Depth(5).
		Rake(90).
		Mfd(mfd.NewSingle(8.0, 0.0005, false)).
		SurfaceSpacing(5.0).
		Scaling(surface.ScalingSubGeomatLength).
		Floating(surface.FloatOff).
		Variability(false).
		Build()
	require.NoError(t, err)

	assert.Equal(t, 1, src.Size())
	// the lower trace derives from the bottom row of the surface
	lower := src.LowerTrace()
	require.Positive(t, lower.Size())
	assert.Greater(t, lower.First().Depth(), 5.0)
}

func TestInterfaceSourceFromPairedTraces(t *testing.T) {
	upper := geo.LocList(
		geo.LocWithDepth(34.0, -118.0, 5),
		geo.LocWithDepth(34.3, -118.0, 5))
	lower := geo.LocList(
		geo.LocWithDepth(34.0, -117.5, 30),
		geo.LocWithDepth(34.3, -117.5, 30))

	src, err := NewInterfaceSourceBuilder().
		Name("Paired Interface").
		ID(2).
		Trace(upper).
		LowerTrace(lower).
		Rake(90).
		Mfd(mfd.NewSingle(8.5, 0.0002, false)).
		SurfaceSpacing(5.0).
		Scaling(surface.ScalingSubGeomatLength).
		Floating(surface.FloatOff).
		Variability(false).
		Build()
	require.NoError(t, err)
	assert.Equal(t, lower, src.LowerTrace())
	assert.Equal(t, 1, src.Size())
}

func TestInterfaceSourceTraceSizeMismatch(t *testing.T) {
	upper := geo.LocList(
		geo.LocWithDepth(34.0, -118.0, 5),
		geo.LocWithDepth(34.3, -118.0, 5))
	lower := geo.LocList(
		geo.LocWithDepth(34.0, -117.5, 30),
		geo.LocWithDepth(34.15, -117.5, 30),
		geo.LocWithDepth(34.3, -117.5, 30))

	_, err := NewInterfaceSourceBuilder().
		Name("Bad Interface").
		ID(3).
		Trace(upper).
		LowerTrace(lower).
		Rake(90).
		Mfd(mfd.NewSingle(8.5, 0.0002, false)).
		SurfaceSpacing(5.0).
		Scaling(surface.ScalingSubGeomatLength).
		Floating(surface.FloatOff).
		Variability(false).
		Build()
	require.ErrorContains(t, err, "sizes differ")
}
