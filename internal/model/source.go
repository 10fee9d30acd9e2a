package model

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/hazard-cli/internal/fault/surface"
	"github.com/sells-group/hazard-cli/internal/geo"
)

// ErrRuptureIteration is returned by source sets whose members cannot be
// iterated as independent ruptures; cluster sources are processed as a
// unit and system sources are enumerated through their parent set.
var ErrRuptureIteration = eris.New("model: source does not support independent rupture iteration")

// RuptureSurface is the slice of surface geometry a rupture carries into
// a ground motion calculation.
type RuptureSurface interface {
	Dip() float64
	Width() float64
	// Depth is the depth to the top of the rupture, in km.
	Depth() float64
	DistanceTo(loc geo.Location) surface.Distance
}

// Rupture is a single earthquake: a magnitude and rake on a surface,
// occurring at an annual rate.
type Rupture struct {
	Mag     float64
	Rake    float64
	Rate    float64
	Surface RuptureSurface
}

// RuptureIterator is a cursor over the ruptures of a source. The Rupture
// returned is only valid until the next call to Next; callers that need
// to retain one must copy it.
//
//	it, err := src.Ruptures()
//	for it.Next() {
//	    r := it.Rupture()
//	    ...
//	}
type RuptureIterator interface {
	Next() bool
	Rupture() *Rupture
}

// Source is a single seismic source capable of generating ruptures.
type Source interface {
	Name() string
	// Size is the number of ruptures the source generates, before any
	// zero-rate ruptures are skipped.
	Size() int
	Ruptures() (RuptureIterator, error)
}

// SourceSet is a named, weighted collection of like-typed sources that
// share a ground motion model assignment.
type SourceSet interface {
	Name() string
	ID() int
	Weight() float64
	Type() SourceType
	Gmms() *GmmSet
	// Size is the number of sources in the set.
	Size() int
	Source(i int) Source
	// Near returns the sources within distance km of site, using the
	// fast filtering appropriate to the set's geometry.
	Near(site geo.Location, distance float64) []Source
}

// sliceRuptures is the common eager iteration strategy: sources that can
// enumerate their ruptures up front wrap them in a sliceIterator.
type sliceIterator struct {
	ruptures []*Rupture
	caret    int
}

func (it *sliceIterator) Next() bool {
	if it.caret >= len(it.ruptures) {
		return false
	}
	it.caret++
	return true
}

func (it *sliceIterator) Rupture() *Rupture { return it.ruptures[it.caret-1] }

// sourceSetInfo carries the fields common to every source set.
type sourceSetInfo struct {
	name   string
	id     int
	weight float64
	gmms   *GmmSet
}

func (s *sourceSetInfo) Name() string    { return s.name }
func (s *sourceSetInfo) ID() int         { return s.id }
func (s *sourceSetInfo) Weight() float64 { return s.weight }
func (s *sourceSetInfo) Gmms() *GmmSet   { return s.gmms }

// setBuilder accumulates and validates the common source-set fields. The
// pkg name prefixes error messages so each concrete builder reports under
// its own identity.
type setBuilder struct {
	label string
	info  sourceSetInfo
	err   error
	built bool

	nameSet, idSet, weightSet, gmmsSet bool
}

func (b *setBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *setBuilder) setName(name string) {
	if name == "" {
		b.fail(eris.Errorf("%s: name is empty", b.label))
		return
	}
	b.info.name = name
	b.nameSet = true
}

func (b *setBuilder) setID(id int) {
	b.info.id = id
	b.idSet = true
}

func (b *setBuilder) setWeight(weight float64) {
	if weight <= 0.0 || weight > 1.0 {
		b.fail(eris.Errorf("%s: weight %f outside (0, 1]", b.label, weight))
		return
	}
	b.info.weight = weight
	b.weightSet = true
}

func (b *setBuilder) setGmms(gmms *GmmSet) {
	if gmms == nil {
		b.fail(eris.Errorf("%s: gmm set is nil", b.label))
		return
	}
	b.info.gmms = gmms
	b.gmmsSet = true
}

// validate finalizes the common state. Concrete builders call it first in
// their Build methods and then layer on their own checks.
func (b *setBuilder) validate() error {
	if b.err != nil {
		return b.err
	}
	if b.built {
		return eris.Errorf("%s: already built", b.label)
	}
	if !b.nameSet {
		return eris.Errorf("%s: name not set", b.label)
	}
	if !b.idSet {
		return eris.Errorf("%s: id not set", b.label)
	}
	if !b.weightSet {
		return eris.Errorf("%s: weight not set", b.label)
	}
	if !b.gmmsSet {
		return eris.Errorf("%s: gmm set not set", b.label)
	}
	b.built = true
	return nil
}
