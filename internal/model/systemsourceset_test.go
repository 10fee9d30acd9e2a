package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/hazard-cli/internal/fault/surface"
	"github.com/sells-group/hazard-cli/internal/geo"
)

func testSection(t *testing.T, lat1, lat2 float64) surface.Surface {
	t.Helper()
	s, err := surface.NewGriddedSurfaceBuilder().
		Trace(geo.LocList(geo.Loc(lat1, -118.0), geo.Loc(lat2, -118.0))).
		Dip(90).
		Depth(0.0).
		Width(12.0).
		Build()
	require.NoError(t, err)
	return s
}

// testSystemSet pools four adjacent sections with three multi-section
// ruptures.
func testSystemSet(t *testing.T) *SystemSourceSet {
	t.Helper()
	b := NewSystemSourceSetBuilder().
		Name("Test System").
		ID(1).
		Weight(1.0).
		Gmms(testGmms(t))
	for i := 0.0; i < 4; i++ {
		b.Section("sec", testSection(t, 34.0+i*0.3, 34.3+i*0.3))
	}
	for _, rup := range []struct {
		indices []int
		mag     float64
		rate    float64
	}{
		{[]int{0, 1}, 6.8, 1e-4},
		{[]int{1, 2, 3}, 7.2, 5e-5},
		{[]int{0, 1, 2, 3}, 7.5, 1e-5},
	} {
		b.Indices(rup.indices).
			Mag(rup.mag).
			Rate(rup.rate).
			Depth(0.0).
			Dip(90.0).
			Width(12.0).
			Rake(0.0)
	}
	set, err := b.Build()
	require.NoError(t, err)
	return set
}

func TestSystemSetNearMatchesBruteForce(t *testing.T) {
	set := testSystemSet(t)
	sections := [][]int{{0, 1}, {1, 2, 3}, {0, 1, 2, 3}}

	sites := []geo.Location{
		geo.Loc(34.1, -118.0),
		geo.Loc(34.8, -118.0),
		geo.Loc(35.2, -118.0),
		geo.Loc(40.0, -110.0),
	}
	for _, site := range sites {
		for _, dist := range []float64{10.0, 50.0, 300.0} {
			// brute force: a rupture is near when any of its section
			// centroids is in range
			var want int
			for _, secs := range sections {
				for _, sec := range secs {
					if geo.HorzDistanceFast(site, set.Section(sec).Centroid()) <= dist {
						want++
						break
					}
				}
			}
			assert.Len(t, set.Near(site, dist), want, "site %v dist %v", site, dist)
		}
	}
}

func TestSystemInputs(t *testing.T) {
	set := testSystemSet(t)
	site := geo.Loc(34.15, -117.8)

	inputs := set.Inputs(site)
	// every rupture touches a section near this site
	require.Len(t, inputs, 3)

	for _, in := range inputs {
		assert.Positive(t, in.Rate)
		assert.Positive(t, in.RJB)
		assert.GreaterOrEqual(t, in.RRup, in.RJB)
		assert.Equal(t, 90.0, in.Dip)
		assert.Equal(t, 12.0, in.Width)
		// vertical fault: hypocenter half the width down
		assert.InDelta(t, 6.0, in.ZHyp, 1e-9)
	}

	// rupture rJB is the minimum over its in-range sections
	d0 := set.Section(0).DistanceTo(site)
	assert.InDelta(t, d0.RJB, inputs[0].RJB, 1e-9)
}

func TestSystemInputsParallelMatchesSerial(t *testing.T) {
	set := testSystemSet(t)
	site := geo.Loc(34.5, -117.7)

	serial := set.Inputs(site)
	parallel, err := set.InputsParallel(context.Background(), site, 4)
	require.NoError(t, err)
	assert.Equal(t, serial, parallel)
}

func TestSystemSourceCannotIterate(t *testing.T) {
	set := testSystemSet(t)
	require.Equal(t, 3, set.Size())

	src := set.Source(1).(*SystemSource)
	assert.Equal(t, 7.2, src.Mag())
	assert.Equal(t, 5e-5, src.Rate())
	assert.Equal(t, 1, src.Size())

	_, err := src.Ruptures()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRuptureIteration))
}

func TestSystemBuilderValidation(t *testing.T) {
	_, err := NewSystemSourceSetBuilder().
		Name("Sys").ID(1).Weight(1.0).Gmms(testGmms(t)).
		Build()
	require.ErrorContains(t, err, "no sections")

	// indices before sections
	b := NewSystemSourceSetBuilder().
		Name("Sys").ID(1).Weight(1.0).Gmms(testGmms(t))
	b.Indices([]int{0, 1})
	_, err = b.Build()
	require.ErrorContains(t, err, "after sections")

	// single-section rupture
	b = NewSystemSourceSetBuilder().
		Name("Sys").ID(1).Weight(1.0).Gmms(testGmms(t)).
		Section("a", testSection(t, 34.0, 34.3))
	b.Indices([]int{0})
	_, err = b.Build()
	require.ErrorContains(t, err, "2 or more")

	// index out of range
	b = NewSystemSourceSetBuilder().
		Name("Sys").ID(1).Weight(1.0).Gmms(testGmms(t)).
		Section("a", testSection(t, 34.0, 34.3))
	b.Indices([]int{0, 3})
	_, err = b.Build()
	require.ErrorContains(t, err, "out of range")

	// ragged per-rupture lists
	b = NewSystemSourceSetBuilder().
		Name("Sys").ID(1).Weight(1.0).Gmms(testGmms(t)).
		Section("a", testSection(t, 34.0, 34.3)).
		Section("b", testSection(t, 34.3, 34.6))
	b.Indices([]int{0, 1}).Mag(7.0).Rate(1e-4).Depth(0).Dip(90).Width(12)
	_, err = b.Build()
	require.ErrorContains(t, err, "too few rakes")
}

func TestBitset(t *testing.T) {
	b := newBitset(130)
	b.set(0)
	b.set(64)
	b.set(129)

	assert.True(t, b.get(0))
	assert.True(t, b.get(64))
	assert.True(t, b.get(129))
	assert.False(t, b.get(1))
	assert.Equal(t, []int{0, 64, 129}, b.indices())

	o := newBitset(130)
	o.set(64)
	assert.True(t, b.intersects(o))
	assert.Equal(t, []int{64}, b.and(o).indices())

	o = newBitset(130)
	o.set(2)
	assert.False(t, b.intersects(o))
}
