package model

import (
	"github.com/rotisserie/eris"
)

// Gmm identifies a ground motion model by name. Model implementations are
// out of scope here; source sets only carry the weighted assignments that
// a downstream hazard calculation dereferences.
type Gmm string

// GmmWeights maps ground motion models to branch weights.
type GmmWeights map[Gmm]float64

// Maximum ground-motion-model distance limits, km.
const (
	MinGmmDistance = 50.0
	MaxGmmDistance = 1000.0
)

type uncertType int

const (
	uncertNone uncertType = iota
	uncertSingle
	uncertMulti
)

// GmmSet is the ground motion model assignment of a source set: a primary
// weight map with a distance limit, an optional secondary map taking over
// beyond that limit, and optional additive epistemic uncertainty.
type GmmSet struct {
	weightsLo GmmWeights
	maxDistLo float64
	weightsHi GmmWeights // nil when singular
	maxDistHi float64

	uncertainty uncertType
	epiValue    float64
	epiValues   [3][3]float64
	epiWeights  []float64
}

// Gmms returns the full set of models referenced by the set.
func (g *GmmSet) Gmms() []Gmm {
	gmms := make([]Gmm, 0, len(g.weightsLo))
	for gmm := range g.weightsLo {
		gmms = append(gmms, gmm)
	}
	return gmms
}

// WeightsAt returns the weight map applicable at the supplied distance.
func (g *GmmSet) WeightsAt(distance float64) GmmWeights {
	if g.weightsHi == nil || distance <= g.maxDistLo {
		return g.weightsLo
	}
	return g.weightsHi
}

// MaxDistance is the limit beyond which the set provides no ground motion.
func (g *GmmSet) MaxDistance() float64 { return g.maxDistHi }

// Epistemic returns the additive epistemic uncertainty on ground motion
// for a magnitude and distance, or 0 when the set carries none.
func (g *GmmSet) Epistemic(mag, distance float64) float64 {
	switch g.uncertainty {
	case uncertMulti:
		mi := 0
		switch {
		case mag >= 7.0:
			mi = 2
		case mag >= 6.0:
			mi = 1
		}
		di := 0
		switch {
		case distance >= 30.0:
			di = 2
		case distance >= 10.0:
			di = 1
		}
		return g.epiValues[di][mi]
	case uncertSingle:
		return g.epiValue
	default:
		return 0.0
	}
}

// EpistemicWeights returns the three-branch weights applied to the
// [-1, 0, +1] epistemic scalings, or nil when the set carries none.
func (g *GmmSet) EpistemicWeights() []float64 { return g.epiWeights }

// GmmSetBuilder incrementally assembles a GmmSet.
type GmmSetBuilder struct {
	err   error
	built bool

	weightsLo GmmWeights
	maxDistLo *float64
	weightsHi GmmWeights
	maxDistHi *float64

	epiValues  []float64
	epiWeights []float64
}

func NewGmmSetBuilder() *GmmSetBuilder { return &GmmSetBuilder{} }

func (b *GmmSetBuilder) fail(err error) *GmmSetBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Primary sets the primary weight map and its distance limit.
func (b *GmmSetBuilder) Primary(weights GmmWeights, maxDistance float64) *GmmSetBuilder {
	if err := validateGmmWeights(weights); err != nil {
		return b.fail(err)
	}
	if err := validateGmmDistance(maxDistance); err != nil {
		return b.fail(err)
	}
	b.weightsLo = weights
	b.maxDistLo = &maxDistance
	return b
}

// Secondary sets the weight map used beyond the primary distance limit.
func (b *GmmSetBuilder) Secondary(weights GmmWeights, maxDistance float64) *GmmSetBuilder {
	if err := validateGmmWeights(weights); err != nil {
		return b.fail(err)
	}
	if err := validateGmmDistance(maxDistance); err != nil {
		return b.fail(err)
	}
	b.weightsHi = weights
	b.maxDistHi = &maxDistance
	return b
}

// Uncertainty supplies additive epistemic uncertainty: either 1 value or
// 9 values (a 3×3 distance-magnitude table), with 3 branch weights.
func (b *GmmSetBuilder) Uncertainty(values, weights []float64) *GmmSetBuilder {
	if len(values) != 1 && len(values) != 9 {
		return b.fail(eris.Errorf("gmm: uncertainty needs 1 or 9 values, has %d", len(values)))
	}
	if len(weights) != 3 {
		return b.fail(eris.Errorf("gmm: uncertainty needs 3 weights, has %d", len(weights)))
	}
	b.epiValues = values
	b.epiWeights = weights
	return b
}

func (b *GmmSetBuilder) Build() (*GmmSet, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.built {
		return nil, eris.New("gmm: builder already used")
	}
	if b.weightsLo == nil {
		return nil, eris.New("gmm: primary weight map not set")
	}
	if b.maxDistLo == nil {
		return nil, eris.New("gmm: primary max distance not set")
	}
	if b.weightsHi != nil {
		for gmm := range b.weightsHi {
			if _, ok := b.weightsLo[gmm]; !ok {
				return nil, eris.Errorf("gmm: secondary model %s not among primary models", gmm)
			}
		}
		if b.maxDistHi == nil {
			return nil, eris.New("gmm: secondary max distance not set")
		}
		if *b.maxDistHi <= *b.maxDistLo {
			return nil, eris.Errorf("gmm: secondary distance %f <= primary distance %f",
				*b.maxDistHi, *b.maxDistLo)
		}
	}
	b.built = true

	g := &GmmSet{
		weightsLo: b.weightsLo,
		maxDistLo: *b.maxDistLo,
		weightsHi: b.weightsHi,
		maxDistHi: *b.maxDistLo,
	}
	if b.weightsHi != nil {
		g.maxDistHi = *b.maxDistHi
	}
	switch len(b.epiValues) {
	case 1:
		g.uncertainty = uncertSingle
		g.epiValue = b.epiValues[0]
		g.epiWeights = b.epiWeights
	case 9:
		g.uncertainty = uncertMulti
		for i, v := range b.epiValues {
			g.epiValues[i/3][i%3] = v
		}
		g.epiWeights = b.epiWeights
	}
	return g, nil
}

func validateGmmWeights(weights GmmWeights) error {
	if len(weights) == 0 {
		return eris.New("gmm: weight map is empty")
	}
	var sum float64
	for _, wt := range weights {
		sum += wt
	}
	if !fuzzyEquals(sum, 1.0, 1e-4) {
		return eris.Errorf("gmm: weights sum to %f, not 1", sum)
	}
	return nil
}

func validateGmmDistance(d float64) error {
	if d < MinGmmDistance || d > MaxGmmDistance {
		return eris.Errorf("gmm: max distance %f outside [%f, %f]",
			d, MinGmmDistance, MaxGmmDistance)
	}
	return nil
}
