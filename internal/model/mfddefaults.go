package model

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hazard-cli/internal/mfd"
)

// SingleData holds the parameters of a single-magnitude MFD.
type SingleData struct {
	Rate   float64
	M      float64
	Floats bool
	Weight float64
}

// GRData holds the parameters of a Gutenberg-Richter MFD.
type GRData struct {
	A      float64
	B      float64
	DMag   float64
	MMin   float64
	MMax   float64
	Weight float64
}

// TaperData holds the parameters of a tapered Gutenberg-Richter MFD.
type TaperData struct {
	A      float64
	B      float64
	CMag   float64
	DMag   float64
	MMin   float64
	MMax   float64
	Weight float64
}

// IncrData holds the parameters of an explicit incremental MFD.
type IncrData struct {
	Mags   []float64
	Rates  []float64
	Weight float64
}

// SingleOverride carries per-source overrides of a SingleData default.
// Nil fields inherit the default value.
type SingleOverride struct {
	Rate   *float64
	M      *float64
	Floats *bool
	Weight *float64
}

// GROverride carries per-source overrides of a GRData default.
type GROverride struct {
	A      *float64
	B      *float64
	DMag   *float64
	MMin   *float64
	MMax   *float64
	Weight *float64
}

// TaperOverride carries per-source overrides of a TaperData default.
type TaperOverride struct {
	A      *float64
	B      *float64
	CMag   *float64
	DMag   *float64
	MMin   *float64
	MMax   *float64
	Weight *float64
}

// IncrOverride carries per-source overrides of an IncrData default.
type IncrOverride struct {
	Mags   []float64
	Rates  []float64
	Weight *float64
}

// MfdDefaults collects the source-set level default MFD parameterizations
// that individual sources may partially override. A source-set commonly
// declares one or more defaults (e.g. a pair of weighted characteristic
// magnitudes) and each source then supplies only the fields that vary,
// typically its rate. Resolving an override against n defaults yields n
// merged parameter sets.
type MfdDefaults struct {
	singles []SingleData
	grs     []GRData
	tapers  []TaperData
	incrs   []IncrData
}

// NewMfdDefaults returns an empty defaults container.
func NewMfdDefaults() *MfdDefaults {
	return &MfdDefaults{}
}

// AddSingle registers a single-magnitude default. Defaults are kept
// sorted ascending by magnitude.
func (d *MfdDefaults) AddSingle(data SingleData) {
	d.singles = append(d.singles, data)
	sort.Slice(d.singles, func(i, j int) bool {
		return d.singles[i].M < d.singles[j].M
	})
}

// AddGR registers a Gutenberg-Richter default.
func (d *MfdDefaults) AddGR(data GRData) {
	d.grs = append(d.grs, data)
}

// AddTaper registers a tapered Gutenberg-Richter default.
func (d *MfdDefaults) AddTaper(data TaperData) {
	d.tapers = append(d.tapers, data)
}

// AddIncr registers an incremental default.
func (d *MfdDefaults) AddIncr(data IncrData) {
	d.incrs = append(d.incrs, data)
}

// Size returns the total number of registered defaults of all types.
func (d *MfdDefaults) Size() int {
	return len(d.singles) + len(d.grs) + len(d.tapers) + len(d.incrs)
}

// SingleData resolves an override against the registered single-magnitude
// defaults. With no defaults present the override must be complete.
func (d *MfdDefaults) SingleData(o SingleOverride) ([]SingleData, error) {
	if len(d.singles) == 0 {
		if o.Rate == nil || o.M == nil || o.Floats == nil || o.Weight == nil {
			return nil, eris.New("model: incomplete SINGLE mfd and no defaults")
		}
		return []SingleData{{Rate: *o.Rate, M: *o.M, Floats: *o.Floats, Weight: *o.Weight}}, nil
	}
	out := make([]SingleData, 0, len(d.singles))
	for _, ref := range d.singles {
		merged := ref
		if o.Rate != nil {
			merged.Rate = *o.Rate
		}
		if o.M != nil {
			merged.M = *o.M
		}
		if o.Floats != nil {
			merged.Floats = *o.Floats
		}
		if o.Weight != nil {
			merged.Weight = *o.Weight
		}
		out = append(out, merged)
	}
	return out, nil
}

// GRData resolves an override against the registered Gutenberg-Richter
// defaults. With no defaults present the override must be complete.
func (d *MfdDefaults) GRData(o GROverride) ([]GRData, error) {
	if len(d.grs) == 0 {
		if o.A == nil || o.B == nil || o.DMag == nil || o.MMin == nil ||
			o.MMax == nil || o.Weight == nil {
			return nil, eris.New("model: incomplete GR mfd and no defaults")
		}
		return []GRData{{A: *o.A, B: *o.B, DMag: *o.DMag, MMin: *o.MMin,
			MMax: *o.MMax, Weight: *o.Weight}}, nil
	}
	out := make([]GRData, 0, len(d.grs))
	for _, ref := range d.grs {
		merged := ref
		if o.A != nil {
			merged.A = *o.A
		}
		if o.B != nil {
			merged.B = *o.B
		}
		if o.DMag != nil {
			merged.DMag = *o.DMag
		}
		if o.MMin != nil {
			merged.MMin = *o.MMin
		}
		if o.MMax != nil {
			merged.MMax = *o.MMax
		}
		if o.Weight != nil {
			merged.Weight = *o.Weight
		}
		out = append(out, merged)
	}
	return out, nil
}

// TaperData resolves an override against the registered tapered-GR
// defaults. With no defaults present the override must be complete.
func (d *MfdDefaults) TaperData(o TaperOverride) ([]TaperData, error) {
	if len(d.tapers) == 0 {
		if o.A == nil || o.B == nil || o.CMag == nil || o.DMag == nil ||
			o.MMin == nil || o.MMax == nil || o.Weight == nil {
			return nil, eris.New("model: incomplete TAPER mfd and no defaults")
		}
		return []TaperData{{A: *o.A, B: *o.B, CMag: *o.CMag, DMag: *o.DMag,
			MMin: *o.MMin, MMax: *o.MMax, Weight: *o.Weight}}, nil
	}
	out := make([]TaperData, 0, len(d.tapers))
	for _, ref := range d.tapers {
		merged := ref
		if o.A != nil {
			merged.A = *o.A
		}
		if o.B != nil {
			merged.B = *o.B
		}
		if o.CMag != nil {
			merged.CMag = *o.CMag
		}
		if o.DMag != nil {
			merged.DMag = *o.DMag
		}
		if o.MMin != nil {
			merged.MMin = *o.MMin
		}
		if o.MMax != nil {
			merged.MMax = *o.MMax
		}
		if o.Weight != nil {
			merged.Weight = *o.Weight
		}
		out = append(out, merged)
	}
	return out, nil
}

// IncrData resolves an override against the registered incremental
// defaults. With no defaults present the override must be complete.
func (d *MfdDefaults) IncrData(o IncrOverride) ([]IncrData, error) {
	if len(d.incrs) == 0 {
		if o.Mags == nil || o.Rates == nil || o.Weight == nil {
			return nil, eris.New("model: incomplete INCR mfd and no defaults")
		}
		if len(o.Mags) != len(o.Rates) {
			return nil, eris.Errorf("model: inconsistent INCR mfd mag [%d] and rate [%d] arrays",
				len(o.Mags), len(o.Rates))
		}
		return []IncrData{{Mags: o.Mags, Rates: o.Rates, Weight: *o.Weight}}, nil
	}
	out := make([]IncrData, 0, len(d.incrs))
	for _, ref := range d.incrs {
		merged := ref
		if o.Mags != nil {
			merged.Mags = o.Mags
		}
		if o.Rates != nil {
			merged.Rates = o.Rates
		}
		if o.Weight != nil {
			merged.Weight = *o.Weight
		}
		if len(merged.Mags) != len(merged.Rates) {
			return nil, eris.Errorf("model: inconsistent INCR mfd mag [%d] and rate [%d] arrays",
				len(merged.Mags), len(merged.Rates))
		}
		out = append(out, merged)
	}
	return out, nil
}

// SingleMfds expands a single-magnitude parameterization into its
// uncertainty-branched MFDs. Epistemic branches offset the magnitude and
// split the weight; aleatory variability replaces each branch with a
// Gaussian distribution, moment-balanced when so configured. Floating
// single-magnitude sources below the epistemic cutoff do not branch.
func SingleMfds(data SingleData, unc *MagUncertainty) ([]*mfd.Mfd, error) {
	// total moment and event rates
	tmr := data.Rate * mfd.MagToMoment(data.M)
	tcr := data.Rate

	minUncertMag := data.M
	if unc.HasEpistemic() {
		minUncertMag += unc.EpiDeltas[0]
	}
	uncertAllowed := !(minUncertMag < epiCutoff(unc) && data.Floats)

	var mfds []*mfd.Mfd

	if unc.HasEpistemic() && uncertAllowed {
		for i, delta := range unc.EpiDeltas {
			epiMag := data.M + delta
			mfdWeight := data.Weight * unc.EpiWeights[i]
			if unc.HasAleatory() {
				var m *mfd.Mfd
				var err error
				if unc.MoBalance {
					m, err = mfd.NewGaussianMoBalanced(epiMag, unc.AleaSigma,
						unc.AleaCount, mfdWeight*tmr, data.Floats)
				} else {
					m, err = mfd.NewGaussian(epiMag, unc.AleaSigma,
						unc.AleaCount, mfdWeight*tcr, data.Floats)
				}
				if err != nil {
					return nil, err
				}
				mfds = append(mfds, m)
				continue
			}
			// epistemic branches without aleatory variability are moment
			// balanced at the central magnitude
			mfds = append(mfds, mfd.NewSingleMoBalanced(epiMag, tmr*mfdWeight, data.Floats))
		}
		return mfds, nil
	}

	if unc.HasAleatory() && uncertAllowed {
		var m *mfd.Mfd
		var err error
		if unc.MoBalance {
			m, err = mfd.NewGaussianMoBalanced(data.M, unc.AleaSigma,
				unc.AleaCount, data.Weight*tmr, data.Floats)
		} else {
			m, err = mfd.NewGaussian(data.M, unc.AleaSigma,
				unc.AleaCount, data.Weight*tcr, data.Floats)
		}
		if err != nil {
			return nil, err
		}
		return []*mfd.Mfd{m}, nil
	}

	return []*mfd.Mfd{mfd.NewSingle(data.M, data.Weight*data.Rate, data.Floats)}, nil
}

// GRMfds expands a Gutenberg-Richter parameterization into its
// uncertainty-branched MFDs. Epistemic branches shift mMax; branches that
// preserve no magnitude bins are dropped. All branches are moment balanced
// against the unbranched distribution.
func GRMfds(data GRData, unc *MagUncertainty) ([]*mfd.Mfd, error) {
	nMag := mfd.MagCount(data.MMin, data.MMax, data.DMag)
	if nMag <= 0 {
		return nil, eris.Errorf("model: GR mfd with no magnitudes [mMin: %f, mMax: %f, dMag: %f]",
			data.MMin, data.MMax, data.DMag)
	}
	tmr := mfd.TotalMoRate(data.MMin, nMag, data.DMag, data.A, data.B)

	if unc.HasEpistemic() && data.MMax+unc.EpiDeltas[0] >= epiCutoff(unc) {
		var mfds []*mfd.Mfd
		for i, delta := range unc.EpiDeltas {
			mMaxEpi := data.MMax + delta
			nMagEpi := mfd.MagCount(data.MMin, mMaxEpi, data.DMag)
			if nMagEpi <= 0 {
				continue
			}
			weightEpi := data.Weight * unc.EpiWeights[i]
			m, err := mfd.NewGutenbergRichterMoBalanced(data.MMin, data.DMag,
				nMagEpi, data.B, tmr*weightEpi)
			if err != nil {
				return nil, err
			}
			mfds = append(mfds, m)
		}
		if len(mfds) == 0 {
			return nil, eris.New("model: GR mfd with no viable epistemic branches")
		}
		return mfds, nil
	}

	m, err := mfd.NewGutenbergRichterMoBalanced(data.MMin, data.DMag, nMag,
		data.B, tmr*data.Weight)
	if err != nil {
		return nil, err
	}
	return []*mfd.Mfd{m}, nil
}

// TaperMfds builds the MFD for a tapered Gutenberg-Richter
// parameterization. Tapered distributions do not branch.
func TaperMfds(data TaperData) ([]*mfd.Mfd, error) {
	nMag := mfd.MagCount(data.MMin, data.MMax, data.DMag)
	if nMag <= 0 {
		return nil, eris.Errorf("model: tapered GR mfd with no magnitudes [mMin: %f, mMax: %f, dMag: %f]",
			data.MMin, data.MMax, data.DMag)
	}
	m, err := mfd.NewTaperedGutenbergRichter(data.MMin, data.DMag, nMag,
		data.A, data.B, data.CMag, data.Weight)
	if err != nil {
		return nil, err
	}
	return []*mfd.Mfd{m}, nil
}

// IncrMfds builds the MFD for an explicit incremental parameterization,
// scaling rates by the branch weight. Incremental MFDs ignore uncertainty
// models.
func IncrMfds(data IncrData) ([]*mfd.Mfd, error) {
	rates := make([]float64, len(data.Rates))
	for i, r := range data.Rates {
		rates[i] = r * data.Weight
	}
	m, err := mfd.NewIncremental(data.Mags, rates)
	if err != nil {
		return nil, err
	}
	return []*mfd.Mfd{m}, nil
}

func epiCutoff(unc *MagUncertainty) float64 {
	if unc == nil {
		return 0.0
	}
	return unc.EpiCutoff
}
