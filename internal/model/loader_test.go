package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/hazard-cli/internal/config"
)

func testLoaderCalc() *config.Calc {
	return &config.Calc{
		SurfaceSpacing:     1.0,
		FloatingModel:      "off",
		RuptureVariability: false,
		PointSourceType:    "finite",
		GridScaling:        "scaled_small",
		MinRuptureRate:     0,
		MaxDistance:        300,
		Workers:            2,
	}
}

const faultModelYAML = `
name: Loader Test Model
source_sets:
  - type: FAULT
    name: Crustal Faults
    id: 1
    weight: 1.0
    gmms:
      primary: {ASK_14: 0.5, BSSA_14: 0.5}
      primary_max_distance: 300
    default_mfds:
      - type: SINGLE
        rate: 0.001
        m: 6.5
        floats: false
        weight: 1.0
    sources:
      - name: North Strand
        id: 10
        trace: [[34.0, -118.0], [34.5, -118.0]]
        dip: 90
        width: 12
        depth: 0
        rake: 0
        mfds:
          - type: SINGLE
      - name: South Strand
        id: 11
        trace: [[33.5, -118.0], [34.0, -118.0]]
        dip: 50
        width: 14
        depth: 1
        rake: 90
        mfds:
          - type: SINGLE
            m: 7.0
`

func TestParseModelFaults(t *testing.T) {
	m, err := ParseModel([]byte(faultModelYAML), testLoaderCalc(), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "Loader Test Model", m.Name())
	assert.Equal(t, 1, m.Size())

	sets := m.Sets(TypeFault)
	require.Len(t, sets, 1)
	set := sets[0]
	assert.Equal(t, "Crustal Faults", set.Name())
	assert.Equal(t, 2, set.Size())

	// The second source overrides the default magnitude.
	src, ok := set.Source(1).(*FaultSource)
	require.True(t, ok)
	rups, err := src.Ruptures()
	require.NoError(t, err)
	require.True(t, rups.Next())
	assert.InDelta(t, 7.0, rups.Rupture().Mag, 1e-9)
}

func TestLoadModelFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(faultModelYAML), 0o644))

	m, err := LoadModel(path, testLoaderCalc(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Loader Test Model", m.Name())
}

func TestParseModelGrid(t *testing.T) {
	const doc = `
name: Grid Model
source_sets:
  - type: GRID
    name: Background Seismicity
    id: 2
    weight: 1.0
    gmms:
      primary: {ASK_14: 1.0}
      primary_max_distance: 200
    point_source_type: FINITE
    scaling: NSHM_POINT_WC94_LENGTH
    max_depth: 14
    depth_map:
      10.0: {5.0: 1.0}
    mechs: {STRIKE_SLIP: 0.5, REVERSE: 0.25, NORMAL: 0.25}
    mfd_data:
      m_min: 5.0
      m_max: 7.5
      d_mag: 0.1
    locations:
      - lat: 34.0
        lon: -118.0
        mfd: {type: GR, a: 2.0, b: 0.8, d_mag: 0.1, m_min: 5.0, m_max: 7.5, weight: 1.0}
      - lat: 34.1
        lon: -118.0
        mfd: {type: GR, a: 2.1, b: 0.8, d_mag: 0.1, m_min: 5.0, m_max: 7.0, weight: 1.0}
`
	m, err := ParseModel([]byte(doc), testLoaderCalc(), zap.NewNop())
	require.NoError(t, err)

	sets := m.Sets(TypeGrid)
	require.Len(t, sets, 1)
	assert.Equal(t, 2, sets[0].Size())
}

func TestParseModelCluster(t *testing.T) {
	const doc = `
name: Cluster Model
source_sets:
  - type: CLUSTER
    name: New Madrid
    id: 3
    weight: 1.0
    gmms:
      primary: {ASK_14: 1.0}
      primary_max_distance: 500
    default_mfds:
      - type: SINGLE
        rate: 0.002
        m: 7.5
        floats: false
        weight: 1.0
    clusters:
      - name: Center Strand
        id: 30
        rate: 0.002
        weight: 1.0
        sources:
          - name: Center Fault
            id: 31
            trace: [[36.3, -89.5], [36.6, -89.5]]
            dip: 90
            width: 15
            depth: 0
            rake: 0
            mfds:
              - type: SINGLE
`
	m, err := ParseModel([]byte(doc), testLoaderCalc(), zap.NewNop())
	require.NoError(t, err)

	sets := m.Sets(TypeCluster)
	require.Len(t, sets, 1)
	src, ok := sets[0].Source(0).(*ClusterSource)
	require.True(t, ok)
	assert.InDelta(t, 0.002, src.Rate(), 1e-12)
	assert.Equal(t, 1, src.Faults().Size())
}

func TestParseModelRejectsUnknownFields(t *testing.T) {
	const doc = `
name: Bad Model
source_sets:
  - type: FAULT
    name: Faults
    id: 1
    weight: 1.0
    gmms:
      primary: {ASK_14: 1.0}
      primary_max_distance: 300
    bogus_field: true
`
	_, err := ParseModel([]byte(doc), testLoaderCalc(), zap.NewNop())
	require.Error(t, err)
}

func TestParseModelUnknownSourceType(t *testing.T) {
	const doc = `
name: Bad Model
source_sets:
  - type: VOLCANO
    name: Faults
    id: 1
    weight: 1.0
    gmms:
      primary: {ASK_14: 1.0}
      primary_max_distance: 300
`
	_, err := ParseModel([]byte(doc), testLoaderCalc(), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source type")
}
