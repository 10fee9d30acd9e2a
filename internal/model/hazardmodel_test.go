package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/hazard-cli/internal/config"
	"github.com/sells-group/hazard-cli/internal/geo"
	"github.com/sells-group/hazard-cli/internal/mfd"
)

func testGridSet(t *testing.T) *GridSourceSet {
	t.Helper()
	m := mfd.NewSingle(6.0, 0.01, false)
	set, err := testGridBuilder(t).
		Location(geo.Loc(34.0, -118.0), m).
		Build()
	require.NoError(t, err)
	return set
}

func testCalc() *config.Calc {
	return &config.Calc{
		SurfaceSpacing:  1.0,
		FloatingModel:   "off",
		PointSourceType: "finite",
		GridScaling:     "scaled_small",
		MinRuptureRate:  1e-14,
		MaxDistance:     300.0,
		Workers:         4,
	}
}

func TestHazardModelGrouping(t *testing.T) {
	faults := testClusterFaults(t)
	grid := testGridSet(t)
	cluster, err := NewClusterSource(0.002, faults)
	require.NoError(t, err)
	clusters, err := NewClusterSourceSetBuilder().
		Name("Clusters").ID(10).Weight(1.0).Gmms(testGmms(t)).
		Source(cluster).
		Build()
	require.NoError(t, err)

	// added grid-first; types report in first-added order
	m, err := NewHazardModelBuilder().
		Name("Test Model").
		Config(testCalc()).
		SourceSet(grid).
		SourceSet(faults).
		SourceSet(clusters).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "Test Model", m.Name())
	assert.Equal(t, 3, m.Size())
	assert.Equal(t, []SourceType{TypeGrid, TypeFault, TypeCluster}, m.Types())
	assert.Len(t, m.Sets(TypeFault), 1)
	assert.Empty(t, m.Sets(TypeSlab))

	all := m.All()
	require.Len(t, all, 3)
	assert.Equal(t, TypeGrid, all[0].Type())
	assert.Equal(t, TypeCluster, all[2].Type())

	assert.Contains(t, m.String(), "Test Model")
	assert.Contains(t, m.String(), faults.Name())

	assert.Equal(t, 300.0, m.Config().MaxDistance)
}

func TestHazardModelBuilderValidation(t *testing.T) {
	faults := testClusterFaults(t)

	_, err := NewHazardModelBuilder().Name(" ").Build()
	require.ErrorContains(t, err, "name may not be empty")

	_, err = NewHazardModelBuilder().Config(nil).Build()
	require.ErrorContains(t, err, "config may not be nil")

	_, err = NewHazardModelBuilder().SourceSet(nil).Build()
	require.ErrorContains(t, err, "source set may not be nil")

	_, err = NewHazardModelBuilder().Config(testCalc()).SourceSet(faults).Build()
	require.ErrorContains(t, err, "name not set")

	_, err = NewHazardModelBuilder().Name("Test Model").Config(testCalc()).Build()
	require.ErrorContains(t, err, "no source sets")

	_, err = NewHazardModelBuilder().Name("Test Model").SourceSet(faults).Build()
	require.ErrorContains(t, err, "config not set")

	b := NewHazardModelBuilder().Name("Test Model").Config(testCalc()).SourceSet(faults)
	_, err = b.Build()
	require.NoError(t, err)
	_, err = b.Build()
	require.ErrorContains(t, err, "already used")
}
