package model

import (
	"context"
	"fmt"
	"math"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/hazard-cli/internal/fault"
	"github.com/sells-group/hazard-cli/internal/fault/surface"
	"github.com/sells-group/hazard-cli/internal/geo"
	"github.com/sells-group/hazard-cli/internal/mfd"
)

// SystemSourceSet holds the rupture set of a fault-system inversion: a
// pool of fault sections and, per rupture, the participating sections as
// a bitset plus the rupture's magnitude, rate and representative
// geometry. Ruptures are far too numerous to enumerate with surfaces, so
// sites query the set for flattened inputs instead.
type SystemSourceSet struct {
	sourceSetInfo

	sections     []surface.Surface
	sectionNames []string
	bitsets      []bitset
	mags         []float64
	rates        []float64
	depths       []float64
	dips         []float64
	widths       []float64
	rakes        []float64
}

func (s *SystemSourceSet) Type() SourceType { return TypeSystem }

func (s *SystemSourceSet) Size() int { return len(s.bitsets) }

// Sections returns the number of fault sections in the pool.
func (s *SystemSourceSet) Sections() int { return len(s.sections) }

// Section returns the surface of section i.
func (s *SystemSourceSet) Section(i int) surface.Surface { return s.sections[i] }

// SectionName returns the name of section i.
func (s *SystemSourceSet) SectionName(i int) string { return s.sectionNames[i] }

func (s *SystemSourceSet) Source(i int) Source {
	return &SystemSource{set: s, index: i}
}

// Near keeps ruptures with any participating section centroid in range.
func (s *SystemSourceSet) Near(site geo.Location, distance float64) []Source {
	siteBits := s.bitsetForLocation(site, distance)
	var near []Source
	for i, bits := range s.bitsets {
		if bits.intersects(siteBits) {
			near = append(near, s.Source(i))
		}
	}
	return near
}

// SystemSource is a single rupture of the parent set. It cannot iterate
// ruptures; its data is consumed through the parent's input generation.
type SystemSource struct {
	set   *SystemSourceSet
	index int
}

// Mag returns the rupture magnitude.
func (s *SystemSource) Mag() float64 { return s.set.mags[s.index] }

// Rate returns the annual rupture rate.
func (s *SystemSource) Rate() float64 { return s.set.rates[s.index] }

func (s *SystemSource) Name() string { return "Unnamed fault system source" }

func (s *SystemSource) Size() int { return 1 }

func (s *SystemSource) Ruptures() (RuptureIterator, error) {
	return nil, eris.Wrap(ErrRuptureIteration, "system")
}

// SiteInput is the flattened per-rupture input for a site: the rupture's
// rate, magnitude and geometry with the three distance metrics resolved.
type SiteInput struct {
	Rate  float64
	Mag   float64
	RJB   float64
	RRup  float64
	RX    float64
	Dip   float64
	Width float64
	ZTop  float64
	ZHyp  float64
	Rake  float64
}

// Inputs computes SiteInputs for every rupture of the set relevant to
// site, serially. Section distances are computed once and shared across
// the ruptures that touch them; a rupture's rJB and rRup are the minima
// over its in-range sections, with rX taken from the minimum-rRup
// section.
func (s *SystemSourceSet) Inputs(site geo.Location) []SiteInput {
	maxDistance := s.gmms.MaxDistance()
	siteBits := s.bitsetForLocation(site, maxDistance)

	distances := make([]surface.Distance, len(s.sections))
	for i := range s.sections {
		if siteBits.get(i) {
			distances[i] = s.sections[i].DistanceTo(site)
		}
	}
	return s.generateInputs(siteBits, distances)
}

// InputsParallel is Inputs with the per-section distance calculations
// fanned out across an errgroup.
func (s *SystemSourceSet) InputsParallel(ctx context.Context, site geo.Location, workers int) ([]SiteInput, error) {
	maxDistance := s.gmms.MaxDistance()
	siteBits := s.bitsetForLocation(site, maxDistance)

	distances := make([]surface.Distance, len(s.sections))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range s.sections {
		if !siteBits.get(i) {
			continue
		}
		i := i
		g.Go(func() error {
			distances[i] = s.sections[i].DistanceTo(site)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return s.generateInputs(siteBits, distances), nil
}

func (s *SystemSourceSet) generateInputs(siteBits bitset, distances []surface.Distance) []SiteInput {
	var inputs []SiteInput
	for i, bits := range s.bitsets {
		if !bits.intersects(siteBits) {
			continue
		}
		rJB := math.MaxFloat64
		rRup := math.MaxFloat64
		rRupIdx := -1
		for _, sec := range bits.and(siteBits).indices() {
			d := distances[sec]
			rJB = math.Min(rJB, d.RJB)
			if d.RRup < rRup {
				rRup = d.RRup
				rRupIdx = sec
			}
		}
		inputs = append(inputs, SiteInput{
			Rate:  s.rates[i],
			Mag:   s.mags[i],
			RJB:   rJB,
			RRup:  rRup,
			RX:    distances[rRupIdx].RX,
			Dip:   s.dips[i],
			Width: s.widths[i],
			ZTop:  s.depths[i],
			ZHyp:  fault.HypocentralDepth(s.dips[i], s.widths[i], s.depths[i]),
			Rake:  s.rakes[i],
		})
	}
	return inputs
}

func (s *SystemSourceSet) bitsetForLocation(loc geo.Location, r float64) bitset {
	bits := newBitset(len(s.sections))
	for i, sec := range s.sections {
		if geo.HorzDistanceFast(loc, sec.Centroid()) <= r {
			bits.set(i)
		}
	}
	return bits
}

// SystemSourceSetBuilder assembles a SystemSourceSet. Sections must be
// added before any rupture index lists, and every per-rupture field list
// must end up the same length as the index list.
type SystemSourceSetBuilder struct {
	setBuilder

	sections     []surface.Surface
	sectionNames []string
	bitsets      []bitset
	mags         []float64
	rates        []float64
	depths       []float64
	dips         []float64
	widths       []float64
	rakes        []float64
}

func NewSystemSourceSetBuilder() *SystemSourceSetBuilder {
	b := &SystemSourceSetBuilder{}
	b.label = "system"
	return b
}

func (b *SystemSourceSetBuilder) Name(name string) *SystemSourceSetBuilder {
	b.setName(name)
	return b
}

func (b *SystemSourceSetBuilder) ID(id int) *SystemSourceSetBuilder {
	b.setID(id)
	return b
}

func (b *SystemSourceSetBuilder) Weight(weight float64) *SystemSourceSetBuilder {
	b.setWeight(weight)
	return b
}

func (b *SystemSourceSetBuilder) Gmms(gmms *GmmSet) *SystemSourceSetBuilder {
	b.setGmms(gmms)
	return b
}

// Section adds a fault section surface to the pool.
func (b *SystemSourceSetBuilder) Section(name string, surf surface.Surface) *SystemSourceSetBuilder {
	if surf == nil {
		b.fail(eris.New("system: section surface is nil"))
		return b
	}
	b.sections = append(b.sections, surf)
	b.sectionNames = append(b.sectionNames, name)
	return b
}

// Indices starts a rupture by declaring its participating sections.
func (b *SystemSourceSetBuilder) Indices(indices []int) *SystemSourceSetBuilder {
	if len(b.sections) == 0 {
		b.fail(eris.New("system: indices may only be added after sections"))
		return b
	}
	if len(indices) < 2 {
		b.fail(eris.Errorf("system: rupture index list must contain 2 or more values, has %d",
			len(indices)))
		return b
	}
	bits := newBitset(len(b.sections))
	for _, i := range indices {
		if i < 0 || i >= len(b.sections) {
			b.fail(eris.Errorf("system: section index %d out of range [0, %d)", i, len(b.sections)))
			return b
		}
		bits.set(i)
	}
	b.bitsets = append(b.bitsets, bits)
	return b
}

func (b *SystemSourceSetBuilder) Mag(mag float64) *SystemSourceSetBuilder {
	if _, err := mfd.ValidateMag(mag); err != nil {
		b.fail(err)
		return b
	}
	b.mags = append(b.mags, mag)
	return b
}

func (b *SystemSourceSetBuilder) Rate(rate float64) *SystemSourceSetBuilder {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		b.fail(eris.New("system: rate is not a finite value"))
		return b
	}
	b.rates = append(b.rates, rate)
	return b
}

func (b *SystemSourceSetBuilder) Depth(depth float64) *SystemSourceSetBuilder {
	if _, err := fault.ValidateDepth(depth); err != nil {
		b.fail(err)
		return b
	}
	b.depths = append(b.depths, depth)
	return b
}

func (b *SystemSourceSetBuilder) Dip(dip float64) *SystemSourceSetBuilder {
	if _, err := fault.ValidateDip(dip); err != nil {
		b.fail(err)
		return b
	}
	b.dips = append(b.dips, dip)
	return b
}

func (b *SystemSourceSetBuilder) Width(width float64) *SystemSourceSetBuilder {
	if _, err := fault.ValidateWidth(width); err != nil {
		b.fail(err)
		return b
	}
	b.widths = append(b.widths, width)
	return b
}

func (b *SystemSourceSetBuilder) Rake(rake float64) *SystemSourceSetBuilder {
	if _, err := fault.ValidateRake(rake); err != nil {
		b.fail(err)
		return b
	}
	b.rakes = append(b.rakes, rake)
	return b
}

func (b *SystemSourceSetBuilder) Build() (*SystemSourceSet, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	if len(b.sections) == 0 {
		return nil, eris.New("system: no sections added")
	}
	if len(b.bitsets) == 0 {
		return nil, eris.New("system: no rupture index lists added")
	}
	target := len(b.bitsets)
	for _, check := range []struct {
		name string
		size int
	}{
		{"magnitudes", len(b.mags)},
		{"rates", len(b.rates)},
		{"depths", len(b.depths)},
		{"dips", len(b.dips)},
		{"widths", len(b.widths)},
		{"rakes", len(b.rakes)},
	} {
		if check.size != target {
			return nil, eris.Errorf("system: too few %s [%d of %d]", check.name, check.size, target)
		}
	}
	return &SystemSourceSet{
		sourceSetInfo: b.info,
		sections:      b.sections,
		sectionNames:  b.sectionNames,
		bitsets:       b.bitsets,
		mags:          b.mags,
		rates:         b.rates,
		depths:        b.depths,
		dips:          b.dips,
		widths:        b.widths,
		rakes:         b.rakes,
	}, nil
}

// bitset is a fixed-size bit vector sized to the section pool.
type bitset []uint64

func newBitset(size int) bitset {
	return make(bitset, (size+63)/64)
}

func (b bitset) set(i int) {
	b[i/64] |= 1 << (uint(i) % 64)
}

func (b bitset) get(i int) bool {
	return b[i/64]&(1<<(uint(i)%64)) != 0
}

func (b bitset) intersects(o bitset) bool {
	for i := range b {
		if b[i]&o[i] != 0 {
			return true
		}
	}
	return false
}

func (b bitset) and(o bitset) bitset {
	out := make(bitset, len(b))
	for i := range b {
		out[i] = b[i] & o[i]
	}
	return out
}

func (b bitset) indices() []int {
	var out []int
	for i := range b {
		for j := 0; j < 64; j++ {
			if b[i]&(1<<uint(j)) != 0 {
				out = append(out, i*64+j)
			}
		}
	}
	return out
}

func (b bitset) String() string { return fmt.Sprintf("bitset%v", b.indices()) }
