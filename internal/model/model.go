// Package model assembles earthquake source models: the source-set
// containers for fault, grid, slab, area, interface, cluster and system
// sources, the point-source family that grid-based sets iterate, and the
// HazardModel root that groups source sets by type. Sources produce
// Ruptures, each pairing a magnitude, rake and annual rate with a surface
// that can report the standard distance metrics to a site.
package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// SourceType identifies the tectonic flavor of a source set.
type SourceType int

const (
	TypeArea SourceType = iota
	TypeCluster
	TypeFault
	TypeGrid
	TypeInterface
	TypeSlab
	TypeSystem
)

var sourceTypeNames = map[SourceType]string{
	TypeArea:      "AREA",
	TypeCluster:   "CLUSTER",
	TypeFault:     "FAULT",
	TypeGrid:      "GRID",
	TypeInterface: "INTERFACE",
	TypeSlab:      "SLAB",
	TypeSystem:    "SYSTEM",
}

func (t SourceType) String() string { return sourceTypeNames[t] }

// ParseSourceType resolves a case-insensitive source type name.
func ParseSourceType(s string) (SourceType, error) {
	for t, name := range sourceTypeNames {
		if strings.EqualFold(s, name) {
			return t, nil
		}
	}
	return 0, eris.Errorf("model: unknown source type %q", s)
}

// PointSourceType selects the geometric rendering of grid-based sources.
type PointSourceType int

const (
	// PointTypePoint treats every rupture as a point.
	PointTypePoint PointSourceType = iota
	// PointTypeFinite adds finite-fault distance approximations.
	PointTypeFinite
	// PointTypeFixedStrike builds ruptures as true finite faults with a
	// single prescribed strike.
	PointTypeFixedStrike
)

var pointTypeNames = map[PointSourceType]string{
	PointTypePoint:       "POINT",
	PointTypeFinite:      "FINITE",
	PointTypeFixedStrike: "FIXED_STRIKE",
}

func (t PointSourceType) String() string { return pointTypeNames[t] }

// ParsePointSourceType resolves a case-insensitive point source type name.
func ParsePointSourceType(s string) (PointSourceType, error) {
	for t, name := range pointTypeNames {
		if strings.EqualFold(s, name) {
			return t, nil
		}
	}
	return 0, eris.Errorf("model: unknown point source type %q", s)
}

// FocalMech is a generalized focal mechanism with a representative dip
// and rake.
type FocalMech int

const (
	StrikeSlip FocalMech = iota
	Reverse
	Normal
)

var mechNames = map[FocalMech]string{
	StrikeSlip: "STRIKE_SLIP",
	Reverse:    "REVERSE",
	Normal:     "NORMAL",
}

func (m FocalMech) String() string { return mechNames[m] }

// Dip returns the representative dip, in degrees.
func (m FocalMech) Dip() float64 {
	if m == StrikeSlip {
		return 90.0
	}
	return 50.0
}

// Rake returns the representative rake, in degrees.
func (m FocalMech) Rake() float64 {
	switch m {
	case Reverse:
		return 90.0
	case Normal:
		return -90.0
	default:
		return 0.0
	}
}

// ParseFocalMech resolves a case-insensitive focal mechanism name.
func ParseFocalMech(s string) (FocalMech, error) {
	for m, name := range mechNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, eris.Errorf("model: unknown focal mech %q", s)
}

// MechWeights is a complete focal-mechanism weight assignment. Weights
// may be zero but all three mechanisms must be present.
type MechWeights map[FocalMech]float64

func validateMechWeights(w MechWeights) error {
	if len(w) != 3 {
		return eris.Errorf("model: focal mech map must have 3 entries, has %d", len(w))
	}
	sum := w[StrikeSlip] + w[Reverse] + w[Normal]
	if !fuzzyEquals(sum, 1.0, 1e-4) {
		return eris.Errorf("model: focal mech weights sum to %f, not 1", sum)
	}
	return nil
}

func fuzzyEquals(a, b, tol float64) bool {
	d := a - b
	return d < tol && d > -tol
}
