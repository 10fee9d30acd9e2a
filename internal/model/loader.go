package model

import (
	"bytes"
	"math"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/hazard-cli/internal/config"
	"github.com/sells-group/hazard-cli/internal/fault/surface"
	"github.com/sells-group/hazard-cli/internal/geo"
	"github.com/sells-group/hazard-cli/internal/mfd"
)

// modelDoc is the YAML shape of a model definition file. Unknown fields
// are rejected so typos in hand-edited files fail loudly.
type modelDoc struct {
	Name       string         `yaml:"name"`
	SourceSets []sourceSetDoc `yaml:"source_sets"`
}

type sourceSetDoc struct {
	Type   string  `yaml:"type"`
	Name   string  `yaml:"name"`
	ID     int     `yaml:"id"`
	Weight float64 `yaml:"weight"`
	Gmms   gmmDoc  `yaml:"gmms"`

	MagUncertainty *magUncertaintyDoc `yaml:"mag_uncertainty"`
	DefaultMfds    []mfdRecordDoc     `yaml:"default_mfds"`

	SurfaceSpacing float64  `yaml:"surface_spacing"`
	Scaling        string   `yaml:"scaling"`
	Floating       string   `yaml:"floating"`
	Variability    *bool    `yaml:"rupture_variability"`
	MinRuptureRate *float64 `yaml:"min_rupture_rate"`

	// grid and area fields
	Strike          *float64                        `yaml:"strike"`
	PointSourceType string                          `yaml:"point_source_type"`
	GridScaling     string                          `yaml:"grid_scaling"`
	DepthMap        map[float64]map[float64]float64 `yaml:"depth_map"`
	MaxDepth        *float64                        `yaml:"max_depth"`
	Mechs           map[string]float64              `yaml:"mechs"`
	MfdData         *mfdDataDoc                     `yaml:"mfd_data"`
	Locations       []gridNodeDoc                   `yaml:"locations"`

	Sources  []sourceDoc  `yaml:"sources"`
	Clusters []clusterDoc `yaml:"clusters"`

	// system fields
	Sections []sectionDoc       `yaml:"sections"`
	Ruptures []systemRuptureDoc `yaml:"ruptures"`
}

type gmmDoc struct {
	Primary              map[string]float64 `yaml:"primary"`
	PrimaryMaxDistance   float64            `yaml:"primary_max_distance"`
	Secondary            map[string]float64 `yaml:"secondary"`
	SecondaryMaxDistance float64            `yaml:"secondary_max_distance"`
	EpistemicValues      []float64          `yaml:"epistemic_values"`
	EpistemicWeights     []float64          `yaml:"epistemic_weights"`
}

type magUncertaintyDoc struct {
	EpiDeltas  []float64 `yaml:"epi_deltas"`
	EpiWeights []float64 `yaml:"epi_weights"`
	EpiCutoff  float64   `yaml:"epi_cutoff"`
	AleaSigma  float64   `yaml:"alea_sigma"`
	AleaCount  int       `yaml:"alea_count"`
	MoBalance  bool      `yaml:"mo_balance"`
	AleaCutoff float64   `yaml:"alea_cutoff"`
}

// mfdRecordDoc holds the union of MFD parameters. Fields left unset fall
// through to the set-level defaults; records with no defaults in scope
// must be complete.
type mfdRecordDoc struct {
	Type   string    `yaml:"type"`
	Rate   *float64  `yaml:"rate"`
	M      *float64  `yaml:"m"`
	Floats *bool     `yaml:"floats"`
	Weight *float64  `yaml:"weight"`
	A      *float64  `yaml:"a"`
	B      *float64  `yaml:"b"`
	CMag   *float64  `yaml:"c_mag"`
	DMag   *float64  `yaml:"d_mag"`
	MMin   *float64  `yaml:"m_min"`
	MMax   *float64  `yaml:"m_max"`
	Mags   []float64 `yaml:"mags"`
	Rates  []float64 `yaml:"rates"`
}

type mfdDataDoc struct {
	MMin float64 `yaml:"m_min"`
	MMax float64 `yaml:"m_max"`
	DMag float64 `yaml:"d_mag"`
}

type sourceDoc struct {
	Name       string         `yaml:"name"`
	ID         int            `yaml:"id"`
	Trace      [][]float64    `yaml:"trace"`
	LowerTrace [][]float64    `yaml:"lower_trace"`
	Border     [][]float64    `yaml:"border"`
	Dip        float64        `yaml:"dip"`
	Width      float64        `yaml:"width"`
	Depth      float64        `yaml:"depth"`
	Rake       float64        `yaml:"rake"`
	Strike     *float64       `yaml:"strike"`
	Mfds       []mfdRecordDoc `yaml:"mfds"`
}

type clusterDoc struct {
	Name    string      `yaml:"name"`
	ID      int         `yaml:"id"`
	Rate    float64     `yaml:"rate"`
	Weight  float64     `yaml:"weight"`
	Sources []sourceDoc `yaml:"sources"`
}

type gridNodeDoc struct {
	Lat   float64            `yaml:"lat"`
	Lon   float64            `yaml:"lon"`
	Depth float64            `yaml:"depth"`
	Mfd   mfdRecordDoc       `yaml:"mfd"`
	Mechs map[string]float64 `yaml:"mechs"`
}

type sectionDoc struct {
	Name    string      `yaml:"name"`
	Trace   [][]float64 `yaml:"trace"`
	Dip     float64     `yaml:"dip"`
	Depth   float64     `yaml:"depth"`
	Width   float64     `yaml:"width"`
	Spacing float64     `yaml:"spacing"`
}

type systemRuptureDoc struct {
	Indices []int   `yaml:"indices"`
	Mag     float64 `yaml:"mag"`
	Rate    float64 `yaml:"rate"`
	Depth   float64 `yaml:"depth"`
	Dip     float64 `yaml:"dip"`
	Width   float64 `yaml:"width"`
	Rake    float64 `yaml:"rake"`
}

// LoadModel reads a YAML model definition and assembles a HazardModel
// under the supplied calculation settings. Per-set fields such as
// surface spacing and the floating model fall back to the settings when
// a set omits them.
func LoadModel(path string, calc *config.Calc, log *zap.Logger) (*HazardModel, error) {
	if log == nil {
		log = zap.NewNop()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "model: read %s", path)
	}
	return ParseModel(data, calc, log)
}

// ParseModel assembles a HazardModel from YAML model definition bytes.
func ParseModel(data []byte, calc *config.Calc, log *zap.Logger) (*HazardModel, error) {
	if calc == nil {
		return nil, eris.New("model: calc settings are nil")
	}
	if log == nil {
		log = zap.NewNop()
	}

	var doc modelDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, eris.Wrap(err, "model: decode model definition")
	}

	b := NewHazardModelBuilder().Name(doc.Name).Config(calc)
	for i := range doc.SourceSets {
		set, err := buildSourceSet(&doc.SourceSets[i], calc, log)
		if err != nil {
			return nil, eris.Wrapf(err, "model: source set %q", doc.SourceSets[i].Name)
		}
		b.SourceSet(set)
		log.Debug("loaded source set",
			zap.String("name", set.Name()),
			zap.Stringer("type", set.Type()),
			zap.Int("sources", set.Size()))
	}
	return b.Build()
}

func buildSourceSet(doc *sourceSetDoc, calc *config.Calc, log *zap.Logger) (SourceSet, error) {
	typ, err := ParseSourceType(doc.Type)
	if err != nil {
		return nil, err
	}
	gmms, err := buildGmmSet(&doc.Gmms)
	if err != nil {
		return nil, err
	}
	switch typ {
	case TypeFault:
		return buildFaultSet(doc, calc, gmms)
	case TypeInterface:
		return buildInterfaceSet(doc, calc, gmms)
	case TypeCluster:
		return buildClusterSet(doc, calc, gmms)
	case TypeGrid, TypeSlab:
		return buildGridSet(doc, typ, calc, gmms)
	case TypeArea:
		return buildAreaSet(doc, calc, gmms, log)
	case TypeSystem:
		return buildSystemSet(doc, calc, gmms)
	default:
		return nil, eris.Errorf("model: source type %s is not file-loadable", typ)
	}
}

func buildGmmSet(doc *gmmDoc) (*GmmSet, error) {
	b := NewGmmSetBuilder().Primary(gmmWeights(doc.Primary), doc.PrimaryMaxDistance)
	if len(doc.Secondary) > 0 {
		b.Secondary(gmmWeights(doc.Secondary), doc.SecondaryMaxDistance)
	}
	if len(doc.EpistemicValues) > 0 {
		b.Uncertainty(doc.EpistemicValues, doc.EpistemicWeights)
	}
	return b.Build()
}

func gmmWeights(m map[string]float64) GmmWeights {
	w := make(GmmWeights, len(m))
	for name, weight := range m {
		w[Gmm(name)] = weight
	}
	return w
}

func buildUncertainty(doc *magUncertaintyDoc) (*MagUncertainty, error) {
	if doc == nil {
		return nil, nil
	}
	return NewMagUncertainty(doc.EpiDeltas, doc.EpiWeights, doc.EpiCutoff,
		doc.AleaSigma, doc.AleaCount, doc.MoBalance, doc.AleaCutoff)
}

func buildDefaults(docs []mfdRecordDoc) (*MfdDefaults, error) {
	defaults := NewMfdDefaults()
	for i := range docs {
		d := &docs[i]
		switch d.Type {
		case "SINGLE":
			if d.Rate == nil || d.M == nil || d.Floats == nil || d.Weight == nil {
				return nil, eris.New("model: incomplete SINGLE mfd default")
			}
			defaults.AddSingle(SingleData{Rate: *d.Rate, M: *d.M, Floats: *d.Floats, Weight: *d.Weight})
		case "GR":
			if d.A == nil || d.B == nil || d.DMag == nil || d.MMin == nil || d.MMax == nil || d.Weight == nil {
				return nil, eris.New("model: incomplete GR mfd default")
			}
			defaults.AddGR(GRData{A: *d.A, B: *d.B, DMag: *d.DMag, MMin: *d.MMin, MMax: *d.MMax, Weight: *d.Weight})
		case "GR_TAPER":
			if d.A == nil || d.B == nil || d.CMag == nil || d.DMag == nil || d.MMin == nil || d.MMax == nil || d.Weight == nil {
				return nil, eris.New("model: incomplete GR_TAPER mfd default")
			}
			defaults.AddTaper(TaperData{A: *d.A, B: *d.B, CMag: *d.CMag, DMag: *d.DMag, MMin: *d.MMin, MMax: *d.MMax, Weight: *d.Weight})
		case "INCR":
			if len(d.Mags) == 0 || len(d.Rates) == 0 || d.Weight == nil {
				return nil, eris.New("model: incomplete INCR mfd default")
			}
			defaults.AddIncr(IncrData{Mags: d.Mags, Rates: d.Rates, Weight: *d.Weight})
		default:
			return nil, eris.Errorf("model: unknown mfd type %q", d.Type)
		}
	}
	return defaults, nil
}

// resolveMfds merges each record with the set defaults and expands the
// result through the uncertainty model.
func resolveMfds(defaults *MfdDefaults, unc *MagUncertainty, records []mfdRecordDoc) ([]*mfd.Mfd, error) {
	var mfds []*mfd.Mfd
	for i := range records {
		r := &records[i]
		switch r.Type {
		case "SINGLE":
			data, err := defaults.SingleData(SingleOverride{Rate: r.Rate, M: r.M, Floats: r.Floats, Weight: r.Weight})
			if err != nil {
				return nil, err
			}
			for _, d := range data {
				built, err := SingleMfds(d, unc)
				if err != nil {
					return nil, err
				}
				mfds = append(mfds, built...)
			}
		case "GR":
			data, err := defaults.GRData(GROverride{A: r.A, B: r.B, DMag: r.DMag, MMin: r.MMin, MMax: r.MMax, Weight: r.Weight})
			if err != nil {
				return nil, err
			}
			for _, d := range data {
				built, err := GRMfds(d, unc)
				if err != nil {
					return nil, err
				}
				mfds = append(mfds, built...)
			}
		case "GR_TAPER":
			data, err := defaults.TaperData(TaperOverride{A: r.A, B: r.B, CMag: r.CMag, DMag: r.DMag, MMin: r.MMin, MMax: r.MMax, Weight: r.Weight})
			if err != nil {
				return nil, err
			}
			for _, d := range data {
				built, err := TaperMfds(d)
				if err != nil {
					return nil, err
				}
				mfds = append(mfds, built...)
			}
		case "INCR":
			data, err := defaults.IncrData(IncrOverride{Mags: r.Mags, Rates: r.Rates, Weight: r.Weight})
			if err != nil {
				return nil, err
			}
			for _, d := range data {
				built, err := IncrMfds(d)
				if err != nil {
					return nil, err
				}
				mfds = append(mfds, built...)
			}
		default:
			return nil, eris.Errorf("model: unknown mfd type %q", r.Type)
		}
	}
	if len(mfds) == 0 {
		return nil, eris.New("model: source defines no mfds")
	}
	return mfds, nil
}

func buildTrace(coords [][]float64) (geo.LocationList, error) {
	if len(coords) < 2 {
		return geo.LocationList{}, eris.Errorf("model: trace must have at least 2 points, has %d", len(coords))
	}
	return buildLocations(coords)
}

func buildLocations(coords [][]float64) (geo.LocationList, error) {
	locs := make([]geo.Location, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 || len(c) > 3 {
			return geo.LocationList{}, eris.Errorf("model: coordinate must be [lat, lon] or [lat, lon, depth], has %d values", len(c))
		}
		var depth float64
		if len(c) == 3 {
			depth = c[2]
		}
		loc, err := geo.NewLocation(c[0], c[1], depth)
		if err != nil {
			return geo.LocationList{}, err
		}
		locs = append(locs, loc)
	}
	return geo.LocList(locs...), nil
}

func setSpacing(doc *sourceSetDoc, calc *config.Calc) float64 {
	if doc.SurfaceSpacing > 0 {
		return doc.SurfaceSpacing
	}
	return calc.SurfaceSpacing
}

func setFloating(doc *sourceSetDoc, calc *config.Calc) (surface.FloatingModel, error) {
	name := doc.Floating
	if name == "" {
		name = calc.FloatingModel
	}
	return surface.ParseFloatingModel(name)
}

func setVariability(doc *sourceSetDoc, calc *config.Calc) bool {
	if doc.Variability != nil {
		return *doc.Variability
	}
	return calc.RuptureVariability
}

func setMinRate(doc *sourceSetDoc, calc *config.Calc) float64 {
	if doc.MinRuptureRate != nil {
		return *doc.MinRuptureRate
	}
	return calc.MinRuptureRate
}

func setScaling(name string) (surface.ScalingModel, error) {
	if name == "" {
		return surface.ScalingNone, nil
	}
	return surface.ParseScalingModel(name)
}

func buildFaultSet(doc *sourceSetDoc, calc *config.Calc, gmms *GmmSet) (*FaultSourceSet, error) {
	b := NewFaultSourceSetBuilder().
		Name(doc.Name).
		ID(doc.ID).
		Weight(doc.Weight).
		Gmms(gmms)
	if err := addFaults(b, doc.Sources, doc, calc); err != nil {
		return nil, err
	}
	return b.Build()
}

// addFaults builds fault sources from docs and adds them to b. Cluster
// sets reuse this for their wrapped fault geometries.
func addFaults(b *FaultSourceSetBuilder, sources []sourceDoc, doc *sourceSetDoc, calc *config.Calc) error {
	unc, err := buildUncertainty(doc.MagUncertainty)
	if err != nil {
		return err
	}
	defaults, err := buildDefaults(doc.DefaultMfds)
	if err != nil {
		return err
	}
	floating, err := setFloating(doc, calc)
	if err != nil {
		return err
	}
	scaling, err := setScaling(doc.Scaling)
	if err != nil {
		return err
	}
	for i := range sources {
		s := &sources[i]
		trace, err := buildTrace(s.Trace)
		if err != nil {
			return eris.Wrapf(err, "source %q", s.Name)
		}
		mfds, err := resolveMfds(defaults, unc, s.Mfds)
		if err != nil {
			return eris.Wrapf(err, "source %q", s.Name)
		}
		src, err := NewFaultSourceBuilder().
			Name(s.Name).
			ID(s.ID).
			Trace(trace).
			Dip(s.Dip).
			Width(s.Width).
			Depth(s.Depth).
			Rake(s.Rake).
			Mfds(mfds).
			SurfaceSpacing(setSpacing(doc, calc)).
			Scaling(scaling).
			Floating(floating).
			Variability(setVariability(doc, calc)).
			MinRuptureRate(setMinRate(doc, calc)).
			Build()
		if err != nil {
			return eris.Wrapf(err, "source %q", s.Name)
		}
		b.Source(src)
	}
	return nil
}

func buildInterfaceSet(doc *sourceSetDoc, calc *config.Calc, gmms *GmmSet) (*InterfaceSourceSet, error) {
	unc, err := buildUncertainty(doc.MagUncertainty)
	if err != nil {
		return nil, err
	}
	defaults, err := buildDefaults(doc.DefaultMfds)
	if err != nil {
		return nil, err
	}
	floating, err := setFloating(doc, calc)
	if err != nil {
		return nil, err
	}
	scaling, err := setScaling(doc.Scaling)
	if err != nil {
		return nil, err
	}
	b := NewInterfaceSourceSetBuilder().
		Name(doc.Name).
		ID(doc.ID).
		Weight(doc.Weight).
		Gmms(gmms)
	for i := range doc.Sources {
		s := &doc.Sources[i]
		trace, err := buildTrace(s.Trace)
		if err != nil {
			return nil, eris.Wrapf(err, "source %q", s.Name)
		}
		mfds, err := resolveMfds(defaults, unc, s.Mfds)
		if err != nil {
			return nil, eris.Wrapf(err, "source %q", s.Name)
		}
		sb := NewInterfaceSourceBuilder().
			Name(s.Name).
			ID(s.ID).
			Trace(trace).
			Dip(s.Dip).
			Width(s.Width).
			Depth(s.Depth).
			Rake(s.Rake).
			SurfaceSpacing(setSpacing(doc, calc)).
			Scaling(scaling).
			Floating(floating).
			Variability(setVariability(doc, calc)).
			MinRuptureRate(setMinRate(doc, calc))
		if len(s.LowerTrace) > 0 {
			lower, err := buildTrace(s.LowerTrace)
			if err != nil {
				return nil, eris.Wrapf(err, "source %q lower trace", s.Name)
			}
			sb.LowerTrace(lower)
		}
		for _, m := range mfds {
			sb.Mfd(m)
		}
		src, err := sb.Build()
		if err != nil {
			return nil, eris.Wrapf(err, "source %q", s.Name)
		}
		b.Source(src)
	}
	return b.Build()
}

func buildClusterSet(doc *sourceSetDoc, calc *config.Calc, gmms *GmmSet) (*ClusterSourceSet, error) {
	b := NewClusterSourceSetBuilder().
		Name(doc.Name).
		ID(doc.ID).
		Weight(doc.Weight).
		Gmms(gmms)
	for i := range doc.Clusters {
		c := &doc.Clusters[i]
		fb := NewFaultSourceSetBuilder().
			Name(c.Name).
			ID(c.ID).
			Weight(c.Weight).
			Gmms(gmms)
		if err := addFaults(fb, c.Sources, doc, calc); err != nil {
			return nil, eris.Wrapf(err, "cluster %q", c.Name)
		}
		faults, err := fb.Build()
		if err != nil {
			return nil, eris.Wrapf(err, "cluster %q", c.Name)
		}
		src, err := NewClusterSource(c.Rate, faults)
		if err != nil {
			return nil, eris.Wrapf(err, "cluster %q", c.Name)
		}
		b.Source(src)
	}
	return b.Build()
}

func buildMechWeights(m map[string]float64) (MechWeights, error) {
	w := make(MechWeights, len(m))
	for name, weight := range m {
		mech, err := ParseFocalMech(name)
		if err != nil {
			return nil, err
		}
		w[mech] = weight
	}
	return w, nil
}

func buildGridSet(doc *sourceSetDoc, typ SourceType, calc *config.Calc, gmms *GmmSet) (*GridSourceSet, error) {
	defaults, err := buildDefaults(doc.DefaultMfds)
	if err != nil {
		return nil, err
	}
	scaling, err := setScaling(doc.Scaling)
	if err != nil {
		return nil, err
	}
	ptName := doc.PointSourceType
	if ptName == "" {
		ptName = calc.PointSourceType
	}
	ptType, err := ParsePointSourceType(ptName)
	if err != nil {
		return nil, err
	}
	mechs, err := buildMechWeights(doc.Mechs)
	if err != nil {
		return nil, err
	}
	if doc.MfdData == nil {
		return nil, eris.New("model: grid set mfd_data not set")
	}
	if doc.MaxDepth == nil {
		return nil, eris.New("model: grid set max_depth not set")
	}

	strike := math.NaN()
	if doc.Strike != nil {
		strike = *doc.Strike
	}
	b := NewGridSourceSetBuilder(typ).
		Name(doc.Name).
		ID(doc.ID).
		Weight(doc.Weight).
		Gmms(gmms).
		Strike(strike).
		SourceType(ptType).
		Scaling(scaling).
		DepthMap(MagDepthMap(doc.DepthMap)).
		MaxDepth(*doc.MaxDepth).
		Mechs(mechs).
		MfdData(doc.MfdData.MMin, doc.MfdData.MMax, doc.MfdData.DMag)

	for i := range doc.Locations {
		n := &doc.Locations[i]
		loc, err := geo.NewLocation(n.Lat, n.Lon, n.Depth)
		if err != nil {
			return nil, eris.Wrapf(err, "grid node %d", i)
		}
		mfds, err := resolveMfds(defaults, nil, []mfdRecordDoc{n.Mfd})
		if err != nil {
			return nil, eris.Wrapf(err, "grid node %d", i)
		}
		if len(mfds) != 1 {
			return nil, eris.Errorf("model: grid node %d resolved %d mfds; expected 1", i, len(mfds))
		}
		if len(n.Mechs) > 0 {
			nodeMechs, err := buildMechWeights(n.Mechs)
			if err != nil {
				return nil, eris.Wrapf(err, "grid node %d", i)
			}
			b.LocationWithMechs(loc, mfds[0], nodeMechs)
		} else {
			b.Location(loc, mfds[0])
		}
	}
	return b.Build()
}

func buildAreaSet(doc *sourceSetDoc, calc *config.Calc, gmms *GmmSet, log *zap.Logger) (*AreaSourceSet, error) {
	defaults, err := buildDefaults(doc.DefaultMfds)
	if err != nil {
		return nil, err
	}
	scaling, err := setScaling(doc.Scaling)
	if err != nil {
		return nil, err
	}
	gridName := doc.GridScaling
	if gridName == "" {
		gridName = calc.GridScaling
	}
	gridScaling, err := ParseGridScaling(gridName)
	if err != nil {
		return nil, err
	}
	ptName := doc.PointSourceType
	if ptName == "" {
		ptName = calc.PointSourceType
	}
	ptType, err := ParsePointSourceType(ptName)
	if err != nil {
		return nil, err
	}
	mechs, err := buildMechWeights(doc.Mechs)
	if err != nil {
		return nil, err
	}
	if doc.MaxDepth == nil {
		return nil, eris.New("model: area set max_depth not set")
	}

	b := NewAreaSourceSetBuilder().
		Name(doc.Name).
		ID(doc.ID).
		Weight(doc.Weight).
		Gmms(gmms)
	for i := range doc.Sources {
		s := &doc.Sources[i]
		border, err := buildLocations(s.Border)
		if err != nil {
			return nil, eris.Wrapf(err, "source %q", s.Name)
		}
		mfds, err := resolveMfds(defaults, nil, s.Mfds)
		if err != nil {
			return nil, eris.Wrapf(err, "source %q", s.Name)
		}
		if len(mfds) != 1 {
			return nil, eris.Errorf("model: area source %q resolved %d mfds; expected 1", s.Name, len(mfds))
		}
		sb := NewAreaSourceBuilder().
			Logger(log).
			Name(s.Name).
			ID(s.ID).
			Border(border).
			Mfd(mfds[0]).
			GridScaling(gridScaling).
			Scaling(scaling).
			Mechs(mechs).
			DepthMap(MagDepthMap(doc.DepthMap)).
			MaxDepth(*doc.MaxDepth).
			SourceType(ptType)
		if s.Strike != nil {
			sb.Strike(*s.Strike)
		}
		src, err := sb.Build()
		if err != nil {
			return nil, eris.Wrapf(err, "source %q", s.Name)
		}
		b.Source(src)
	}
	return b.Build()
}

func buildSystemSet(doc *sourceSetDoc, calc *config.Calc, gmms *GmmSet) (*SystemSourceSet, error) {
	b := NewSystemSourceSetBuilder().
		Name(doc.Name).
		ID(doc.ID).
		Weight(doc.Weight).
		Gmms(gmms)
	for i := range doc.Sections {
		s := &doc.Sections[i]
		trace, err := buildTrace(s.Trace)
		if err != nil {
			return nil, eris.Wrapf(err, "section %q", s.Name)
		}
		spacing := s.Spacing
		if spacing <= 0 {
			spacing = setSpacing(doc, calc)
		}
		surf, err := surface.NewGriddedSurfaceBuilder().
			Trace(trace).
			Depth(s.Depth).
			Dip(s.Dip).
			Width(s.Width).
			Spacing(spacing).
			Build()
		if err != nil {
			return nil, eris.Wrapf(err, "section %q", s.Name)
		}
		b.Section(s.Name, surf)
	}
	for i := range doc.Ruptures {
		r := &doc.Ruptures[i]
		b.Indices(r.Indices).
			Mag(r.Mag).
			Rate(r.Rate).
			Depth(r.Depth).
			Dip(r.Dip).
			Width(r.Width).
			Rake(r.Rake)
	}
	return b.Build()
}
