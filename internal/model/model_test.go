package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/hazard-cli/internal/geo"
	"github.com/sells-group/hazard-cli/internal/mfd"
)

// testGmms builds the minimal single-model gmm assignment most tests
// share.
func testGmms(t *testing.T) *GmmSet {
	t.Helper()
	gmms, err := NewGmmSetBuilder().
		Primary(GmmWeights{"ASK_14": 1.0}, 300).
		Build()
	require.NoError(t, err)
	return gmms
}

// testDepthModel flattens a one-depth map over the supplied magnitudes.
func testDepthModel(t *testing.T, mags []float64) *DepthModel {
	t.Helper()
	dm, err := NewDepthModel(MagDepthMap{10.0: {5.0: 1.0}}, mags, 14.0, TypeGrid)
	require.NoError(t, err)
	return dm
}

func magsOf(m *mfd.Mfd) []float64 {
	mags := make([]float64, m.Size())
	for i := range mags {
		mags[i] = m.Mag(i)
	}
	return mags
}

func TestParseSourceType(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want SourceType
	}{
		{"FAULT", TypeFault},
		{"grid", TypeGrid},
		{"Interface", TypeInterface},
		{"SLAB", TypeSlab},
		{"system", TypeSystem},
		{"AREA", TypeArea},
		{"cluster", TypeCluster},
	} {
		got, err := ParseSourceType(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
	_, err := ParseSourceType("VOLCANO")
	require.Error(t, err)
}

func TestParsePointSourceType(t *testing.T) {
	got, err := ParsePointSourceType("fixed_strike")
	require.NoError(t, err)
	assert.Equal(t, PointTypeFixedStrike, got)

	_, err = ParsePointSourceType("sphere")
	require.Error(t, err)
}

func TestFocalMech(t *testing.T) {
	assert.Equal(t, 90.0, StrikeSlip.Dip())
	assert.Equal(t, 50.0, Reverse.Dip())
	assert.Equal(t, 50.0, Normal.Dip())

	assert.Equal(t, 0.0, StrikeSlip.Rake())
	assert.Equal(t, 90.0, Reverse.Rake())
	assert.Equal(t, -90.0, Normal.Rake())

	m, err := ParseFocalMech("strike_slip")
	require.NoError(t, err)
	assert.Equal(t, StrikeSlip, m)
}

func TestValidateMechWeights(t *testing.T) {
	require.NoError(t, validateMechWeights(MechWeights{
		StrikeSlip: 0.5, Reverse: 0.3, Normal: 0.2,
	}))

	// all three mechanisms must be present even at zero weight
	err := validateMechWeights(MechWeights{StrikeSlip: 1.0})
	require.ErrorContains(t, err, "3 entries")

	err = validateMechWeights(MechWeights{
		StrikeSlip: 0.5, Reverse: 0.5, Normal: 0.5,
	})
	require.ErrorContains(t, err, "sum to")
}

func TestCleanSequence(t *testing.T) {
	mags := cleanSequence(5.0, 7.0, 0.1)
	require.Len(t, mags, 21)
	assert.Equal(t, 5.0, mags[0])
	assert.Equal(t, 7.0, mags[20])
	// values snap to 2 decimal places, no drift
	assert.Equal(t, 6.1, mags[11])

	assert.Equal(t, []float64{6.5}, cleanSequence(6.5, 6.5, 0.1))
	assert.Equal(t, []float64{6.5}, cleanSequence(6.5, 6.5, 0.0))
}

func TestSliceIterator(t *testing.T) {
	rups := []*Rupture{{Mag: 5.0}, {Mag: 6.0}}
	it := &sliceIterator{ruptures: rups}

	var mags []float64
	for it.Next() {
		mags = append(mags, it.Rupture().Mag)
	}
	assert.Equal(t, []float64{5.0, 6.0}, mags)
	assert.False(t, it.Next())
}

func TestSetBuilderValidation(t *testing.T) {
	b := NewFaultSourceSetBuilder()
	_, err := b.Build()
	require.ErrorContains(t, err, "name not set")

	b = NewFaultSourceSetBuilder().Name("Faults")
	_, err = b.Build()
	require.ErrorContains(t, err, "id not set")

	b = NewFaultSourceSetBuilder().Name("Faults").ID(1).Weight(1.5)
	_, err = b.Build()
	require.ErrorContains(t, err, "outside (0, 1]")

	b = NewFaultSourceSetBuilder().Name("Faults").ID(1).Weight(1.0).Gmms(testGmms(t))
	_, err = b.Build()
	require.ErrorContains(t, err, "source list is empty")
}

func TestTraceIsNear(t *testing.T) {
	trace := geo.LocList(geo.Loc(34.0, -118.0), geo.Loc(35.0, -118.0))

	assert.True(t, traceIsNear(trace, geo.Loc(34.5, -117.8), 50))
	assert.True(t, traceIsNear(trace, geo.Loc(34.05, -118.0), 50))
	assert.False(t, traceIsNear(trace, geo.Loc(40.0, -110.0), 50))
}
