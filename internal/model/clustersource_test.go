package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/hazard-cli/internal/fault/surface"
	"github.com/sells-group/hazard-cli/internal/geo"
	"github.com/sells-group/hazard-cli/internal/mfd"
)

func testClusterFaults(t *testing.T) *FaultSourceSet {
	t.Helper()
	m := mfd.NewSingle(6.8, 0.001, false)
	src, err := testFaultBuilder().
		Mfd(m).
		Floating(surface.FloatOff).
		Build()
	require.NoError(t, err)

	set, err := NewFaultSourceSetBuilder().
		Name("New Madrid - center").
		ID(900).
		Weight(0.5).
		Gmms(testGmms(t)).
		Source(src).
		Build()
	require.NoError(t, err)
	return set
}

func TestClusterSource(t *testing.T) {
	faults := testClusterFaults(t)
	src, err := NewClusterSource(0.002, faults)
	require.NoError(t, err)

	assert.Equal(t, faults.Name(), src.Name())
	assert.Equal(t, 0.002, src.Rate())
	assert.Equal(t, 0.5, src.Weight())
	assert.Same(t, faults, src.Faults())
	assert.Equal(t, faults.Size(), src.Size())
}

func TestClusterSourceCannotIterate(t *testing.T) {
	src, err := NewClusterSource(0.002, testClusterFaults(t))
	require.NoError(t, err)

	it, err := src.Ruptures()
	assert.Nil(t, it)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRuptureIteration))
}

func TestNewClusterSourceValidation(t *testing.T) {
	_, err := NewClusterSource(0.002, nil)
	require.ErrorContains(t, err, "empty")

	_, err = NewClusterSource(0.0, testClusterFaults(t))
	require.ErrorContains(t, err, "positive")

	_, err = NewClusterSource(-1e-4, testClusterFaults(t))
	require.ErrorContains(t, err, "positive")
}

func TestClusterSourceSet(t *testing.T) {
	src, err := NewClusterSource(0.002, testClusterFaults(t))
	require.NoError(t, err)

	set, err := NewClusterSourceSetBuilder().
		Name("New Madrid").
		ID(901).
		Weight(1.0).
		Gmms(testGmms(t)).
		Source(src).
		Build()
	require.NoError(t, err)

	assert.Equal(t, TypeCluster, set.Type())
	require.Equal(t, 1, set.Size())
	assert.Same(t, src, set.Source(0))

	// trace runs (34, -118) to (34.3, -118)
	assert.Len(t, set.Near(geo.Loc(34.1, -117.9), 50), 1)
	assert.Empty(t, set.Near(geo.Loc(40.0, -110.0), 50))
}

func TestClusterSourceSetBuilderValidation(t *testing.T) {
	_, err := NewClusterSourceSetBuilder().
		Name("New Madrid").
		ID(901).
		Weight(1.0).
		Gmms(testGmms(t)).
		Build()
	require.ErrorContains(t, err, "source list is empty")

	_, err = NewClusterSourceSetBuilder().
		Name("New Madrid").
		ID(901).
		Weight(1.0).
		Gmms(testGmms(t)).
		Source(nil).
		Build()
	require.ErrorContains(t, err, "source is nil")
}
