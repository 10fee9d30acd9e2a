package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/hazard-cli/internal/fault/surface"
	"github.com/sells-group/hazard-cli/internal/geo"
	"github.com/sells-group/hazard-cli/internal/mfd"
)

func testBorder() geo.LocationList {
	return geo.LocList(
		geo.Loc(34.0, -118.0), geo.Loc(34.0, -117.0),
		geo.Loc(35.0, -117.0), geo.Loc(35.0, -118.0))
}

func testAreaSource(t *testing.T, scaling GridScaling) *AreaSource {
	t.Helper()
	m, err := mfd.NewGutenbergRichter(5.0, 0.5, 5, 0.8, 0.05)
	require.NoError(t, err)

	src, err := NewAreaSourceBuilder().
		Name("Test Zone").
		ID(1).
		Border(testBorder()).
		Mfd(m).
		Strike(math.NaN()).
		SourceType(PointTypePoint).
		GridScaling(scaling).
		Scaling(surface.ScalingPointWC94Length).
		Mechs(MechWeights{StrikeSlip: 1.0, Reverse: 0.0, Normal: 0.0}).
		DepthMap(MagDepthMap{10.0: {5.0: 1.0}}).
		MaxDepth(14.0).
		Build()
	require.NoError(t, err)
	return src
}

func TestGridScalingTiers(t *testing.T) {
	// resolution index climbs monotonically with distance and steps at
	// every cutoff
	cutoffsSmall := []float64{20, 50, 100, 200, 400}
	prev := -1
	for _, d := range []float64{0, 19.9, 20, 49.9, 50, 99, 100, 199, 200, 399, 400, 1000} {
		idx := GridScalingScaledSmall.indexForDistance(d)
		assert.GreaterOrEqual(t, idx, prev)
		prev = idx
	}
	for i, cut := range cutoffsSmall {
		below := GridScalingScaledSmall.indexForDistance(cut - 0.1)
		above := GridScalingScaledSmall.indexForDistance(cut)
		assert.Equal(t, i, below)
		assert.Equal(t, i+1, above)
	}

	// uniform scalings ignore distance
	assert.Equal(t, 0, GridScalingUniform0P1.indexForDistance(0))
	assert.Equal(t, 0, GridScalingUniform0P1.indexForDistance(500))

	assert.Equal(t, 0, GridScalingScaledLarge.indexForDistance(50))
	assert.Equal(t, 1, GridScalingScaledLarge.indexForDistance(150))
	assert.Equal(t, 2, GridScalingScaledLarge.indexForDistance(5000))
}

func TestParseGridScaling(t *testing.T) {
	g, err := ParseGridScaling("scaled_small")
	require.NoError(t, err)
	assert.Equal(t, GridScalingScaledSmall, g)
	assert.Equal(t, "SCALED_SMALL", g.String())
	assert.Equal(t, []float64{0.02, 0.05, 0.1, 0.2, 0.5}, g.Resolutions())

	_, err = ParseGridScaling("bogus")
	require.Error(t, err)
}

func TestAreaSourceRateConservation(t *testing.T) {
	src := testAreaSource(t, GridScalingUniform0P1)

	it, err := src.Ruptures()
	require.NoError(t, err)
	var sum float64
	n := 0
	for it.Next() {
		sum += it.Rupture().Rate
		n++
	}
	// node mfds are scaled by 1/nodeCount, so the area total survives
	assert.InEpsilon(t, src.Mfd().TotalRate(), sum, 1e-9)
	assert.Equal(t, src.Size(), n)
}

func TestAreaSourceSiteScaledResolution(t *testing.T) {
	src := testAreaSource(t, GridScalingScaledSmall)

	count := func(it RuptureIterator) int {
		n := 0
		for it.Next() {
			n++
		}
		return n
	}

	// a nearby site grids finer than a distant one
	nearIt, err := src.RupturesForSite(geo.Loc(34.5, -117.6))
	require.NoError(t, err)
	farIt, err := src.RupturesForSite(geo.Loc(38.0, -117.5))
	require.NoError(t, err)
	assert.Greater(t, count(nearIt), count(farIt))
}

func TestAreaSourceBuilderValidation(t *testing.T) {
	m, err := mfd.NewGutenbergRichter(5.0, 0.5, 5, 0.8, 0.05)
	require.NoError(t, err)

	_, err = NewAreaSourceBuilder().Build()
	require.ErrorContains(t, err, "name not set")

	// a concrete strike demands the fixed-strike source type
	_, err = NewAreaSourceBuilder().
		Name("Zone").
		ID(1).
		Border(testBorder()).
		Mfd(m).
		Strike(45.0).
		SourceType(PointTypePoint).
		GridScaling(GridScalingUniform0P1).
		Scaling(surface.ScalingPointWC94Length).
		Mechs(MechWeights{StrikeSlip: 1.0, Reverse: 0.0, Normal: 0.0}).
		DepthMap(MagDepthMap{10.0: {5.0: 1.0}}).
		MaxDepth(14.0).
		Build()
	require.ErrorContains(t, err, "inconsistent with source type")

	_, err = NewAreaSourceBuilder().
		Name("Zone").
		Border(geo.LocList(geo.Loc(34.0, -118.0), geo.Loc(34.0, -117.0))).
		Build()
	require.ErrorContains(t, err, "fewer than 3")
}

func TestAreaSourceSetNear(t *testing.T) {
	src := testAreaSource(t, GridScalingUniform0P1)
	set, err := NewAreaSourceSetBuilder().
		Name("Zones").
		ID(1).
		Weight(1.0).
		Gmms(testGmms(t)).
		Source(src).
		Build()
	require.NoError(t, err)
	assert.Equal(t, TypeArea, set.Type())
	assert.Equal(t, 1, set.Size())

	// inside the border
	assert.Len(t, set.Near(geo.Loc(34.5, -117.5), 50), 1)
	// outside but within range
	assert.Len(t, set.Near(geo.Loc(34.5, -116.7), 50), 1)
	// far away
	assert.Empty(t, set.Near(geo.Loc(45.0, -100.0), 50))
}
