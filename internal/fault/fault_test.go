package fault

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/hazard-cli/internal/geo"
)

func TestValidateRanges(t *testing.T) {
	tests := []struct {
		name     string
		validate func(float64) (float64, error)
		ok       []float64
		bad      []float64
	}{
		{"strike", ValidateStrike, []float64{0, 180, 360}, []float64{-1, 361}},
		{"dip", ValidateDip, []float64{0, 45, 90}, []float64{-1, 91}},
		{"rake", ValidateRake, []float64{-180, 0, 180}, []float64{-181, 181}},
		{"depth", ValidateDepth, []float64{0, 14, 40}, []float64{-0.1, 41}},
		{"slab depth", ValidateSlabDepth, []float64{20, 100, 700}, []float64{19, 701}},
		{"interface depth", ValidateInterfaceDepth, []float64{0, 30, 60}, []float64{-1, 61}},
		{"width", ValidateWidth, []float64{0.1, 15, 60}, []float64{0, -5, 61}},
		{"interface width", ValidateInterfaceWidth, []float64{0.1, 100, 200}, []float64{0, 201}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for _, v := range tc.ok {
				got, err := tc.validate(v)
				require.NoError(t, err)
				assert.Equal(t, v, got)
			}
			for _, v := range tc.bad {
				_, err := tc.validate(v)
				require.Error(t, err)
			}
		})
	}
}

func TestValidateTrace(t *testing.T) {
	trace := geo.LocList(geo.Loc(34.0, -118.0), geo.Loc(34.5, -118.0))
	got, err := ValidateTrace(trace)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Size())

	_, err = ValidateTrace(geo.LocList(geo.Loc(34.0, -118.0)))
	require.Error(t, err)
}

func TestStrike(t *testing.T) {
	northward := geo.LocList(geo.Loc(34.0, -118.0), geo.Loc(35.0, -118.0))
	assert.InDelta(t, 0.0, Strike(northward), 1e-6)

	eastward := geo.LocList(geo.Loc(0.0, 0.0), geo.Loc(0.0, 1.0))
	assert.InDelta(t, 90.0, Strike(eastward), 1e-6)
}

func TestDipDirection(t *testing.T) {
	assert.InDelta(t, 90.0, DipDirection(0.0), 1e-9)
	assert.InDelta(t, 60.0, DipDirection(330.0), 1e-9)

	trace := geo.LocList(geo.Loc(34.0, -118.0), geo.Loc(35.0, -118.0))
	assert.InDelta(t, math.Pi/2, DipDirectionForTrace(trace), 1e-6)
}

func TestHypocentralDepth(t *testing.T) {
	// vertical fault: hypocenter is half the width below the top
	assert.InDelta(t, 10.0, HypocentralDepth(90, 10, 5), 1e-9)
	// horizontal surface stays at zTop
	assert.InDelta(t, 5.0, HypocentralDepth(0, 10, 5), 1e-9)
	// 30 degree dip: sin(30)*w/2 = 2.5
	assert.InDelta(t, 7.5, HypocentralDepth(30, 10, 5), 1e-9)
}
