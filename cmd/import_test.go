package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/hazard-cli/internal/geo"
	"github.com/sells-group/hazard-cli/internal/model"
	"github.com/sells-group/hazard-cli/internal/shapefile"
)

func testBorders(t *testing.T) []shapefile.Border {
	t.Helper()
	coords := [][]float64{
		{34.0, -118.0}, {34.0, -117.0}, {35.0, -117.0}, {35.0, -118.0},
	}
	locs := make([]geo.Location, 0, len(coords))
	for _, c := range coords {
		loc, err := geo.NewLocation(c[0], c[1], 0)
		require.NoError(t, err)
		locs = append(locs, loc)
	}
	return []shapefile.Border{{Name: "Mojave", Locations: geo.LocList(locs...), Area: 1.0}}
}

func TestAreaSetSkeleton(t *testing.T) {
	cfg = testConfig()
	doc := areaSetSkeleton("Imported Zones", 7, testBorders(t))

	require.Len(t, doc.SourceSets, 1)
	set := doc.SourceSets[0]
	assert.Equal(t, "AREA", set.Type)
	assert.Equal(t, 7, set.ID)
	require.Len(t, set.Sources, 1)
	assert.Equal(t, "Mojave", set.Sources[0].Name)
	assert.Equal(t, 700, set.Sources[0].ID)
	assert.Len(t, set.Sources[0].Border, 4)
}

// The emitted skeleton must round-trip through the model loader.
func TestAreaSetSkeletonLoads(t *testing.T) {
	cfg = testConfig()
	doc := areaSetSkeleton("Imported Zones", 7, testBorders(t))

	data, err := yaml.Marshal(doc)
	require.NoError(t, err)

	m, err := model.ParseModel(data, &cfg.Calc, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "Imported Zones Model", m.Name())
	require.Len(t, m.Sets(model.TypeArea), 1)
}
