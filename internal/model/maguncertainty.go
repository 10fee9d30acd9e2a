package model

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/hazard-cli/internal/mfd"
)

// MagUncertainty describes how characteristic magnitudes branch. Epistemic
// branches offset the mean magnitude by fixed deltas with weights; aleatory
// variability spreads each branch over a Gaussian distribution. Either part
// may be inert, and cutoffs disable the branching below a magnitude.
type MagUncertainty struct {
	EpiDeltas  []float64
	EpiWeights []float64
	EpiCutoff  float64

	AleaSigma  float64
	AleaCount  int
	MoBalance  bool
	AleaCutoff float64
}

// NewMagUncertainty validates and assembles a MagUncertainty.
func NewMagUncertainty(epiDeltas, epiWeights []float64, epiCutoff,
	aleaSigma float64, aleaCount int, moBalance bool, aleaCutoff float64) (*MagUncertainty, error) {

	if len(epiDeltas) == 0 || len(epiWeights) == 0 {
		return nil, eris.New("model: epistemic deltas and weights may not be empty")
	}
	if len(epiDeltas) != len(epiWeights) {
		return nil, eris.Errorf("model: epistemic deltas and weights are different lengths [%d, %d]",
			len(epiDeltas), len(epiWeights))
	}
	if _, err := mfd.ValidateMag(epiCutoff); err != nil {
		return nil, err
	}
	if aleaSigma < 0 {
		return nil, eris.Errorf("model: aleatory sigma %f is negative", aleaSigma)
	}
	if aleaCount >= 40 {
		return nil, eris.Errorf("model: aleatory count %d too large", aleaCount)
	}
	if aleaCount%2 != 1 {
		return nil, eris.Errorf("model: aleatory count %d must be odd to center on the mean magnitude",
			aleaCount)
	}
	if _, err := mfd.ValidateMag(aleaCutoff); err != nil {
		return nil, err
	}

	return &MagUncertainty{
		EpiDeltas:  epiDeltas,
		EpiWeights: epiWeights,
		EpiCutoff:  epiCutoff,
		AleaSigma:  aleaSigma,
		AleaCount:  aleaCount,
		MoBalance:  moBalance,
		AleaCutoff: aleaCutoff,
	}, nil
}

// HasEpistemic reports whether magnitudes branch epistemically.
func (u *MagUncertainty) HasEpistemic() bool {
	return u != nil && len(u.EpiDeltas) > 1
}

// HasAleatory reports whether magnitudes carry aleatory variability.
func (u *MagUncertainty) HasAleatory() bool {
	return u != nil && u.AleaCount > 1 && u.AleaSigma != 0.0
}
