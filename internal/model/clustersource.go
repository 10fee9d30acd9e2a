package model

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/hazard-cli/internal/geo"
)

// ClusterSource groups fault sources that rupture together at a single
// cluster rate. The faults within are alternative rupture geometries
// whose weights sum to 1 across the wrapped set, so a cluster cannot be
// iterated as independent ruptures; hazard calculations process the
// wrapped fault set as a unit at the cluster rate.
type ClusterSource struct {
	rate   float64
	faults *FaultSourceSet
}

// NewClusterSource wraps faults at the supplied annual cluster rate.
func NewClusterSource(rate float64, faults *FaultSourceSet) (*ClusterSource, error) {
	if faults == nil || faults.Size() == 0 {
		return nil, eris.New("cluster: fault source set is empty")
	}
	if rate <= 0 {
		return nil, eris.Errorf("cluster: rate %g must be positive", rate)
	}
	return &ClusterSource{rate: rate, faults: faults}, nil
}

func (s *ClusterSource) Name() string { return s.faults.Name() }

// Rate is the annual rate of the cluster as a whole.
func (s *ClusterSource) Rate() float64 { return s.rate }

// Weight is the weight of the wrapped fault set.
func (s *ClusterSource) Weight() float64 { return s.faults.Weight() }

// Faults returns the geometries participating in the cluster.
func (s *ClusterSource) Faults() *FaultSourceSet { return s.faults }

func (s *ClusterSource) Size() int { return s.faults.Size() }

func (s *ClusterSource) Ruptures() (RuptureIterator, error) {
	return nil, eris.Wrap(ErrRuptureIteration, "cluster")
}

// ClusterSourceSet is a collection of cluster sources.
type ClusterSourceSet struct {
	sourceSetInfo
	sources []*ClusterSource
}

func (s *ClusterSourceSet) Type() SourceType { return TypeCluster }

func (s *ClusterSourceSet) Size() int { return len(s.sources) }

func (s *ClusterSourceSet) Source(i int) Source { return s.sources[i] }

// Near keeps clusters with any participating fault trace in range.
func (s *ClusterSourceSet) Near(site geo.Location, distance float64) []Source {
	var near []Source
	for _, src := range s.sources {
		for _, f := range src.faults.sources {
			if traceIsNear(f.trace, site, distance) {
				near = append(near, src)
				break
			}
		}
	}
	return near
}

// ClusterSourceSetBuilder assembles a ClusterSourceSet.
type ClusterSourceSetBuilder struct {
	setBuilder
	sources []*ClusterSource
}

func NewClusterSourceSetBuilder() *ClusterSourceSetBuilder {
	b := &ClusterSourceSetBuilder{}
	b.label = "cluster set"
	return b
}

func (b *ClusterSourceSetBuilder) Name(name string) *ClusterSourceSetBuilder {
	b.setName(name)
	return b
}

func (b *ClusterSourceSetBuilder) ID(id int) *ClusterSourceSetBuilder {
	b.setID(id)
	return b
}

func (b *ClusterSourceSetBuilder) Weight(weight float64) *ClusterSourceSetBuilder {
	b.setWeight(weight)
	return b
}

func (b *ClusterSourceSetBuilder) Gmms(gmms *GmmSet) *ClusterSourceSetBuilder {
	b.setGmms(gmms)
	return b
}

func (b *ClusterSourceSetBuilder) Source(src *ClusterSource) *ClusterSourceSetBuilder {
	if src == nil {
		b.fail(eris.New("cluster set: source is nil"))
		return b
	}
	b.sources = append(b.sources, src)
	return b
}

func (b *ClusterSourceSetBuilder) Build() (*ClusterSourceSet, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	if len(b.sources) == 0 {
		return nil, eris.New("cluster set: source list is empty")
	}
	return &ClusterSourceSet{sourceSetInfo: b.info, sources: b.sources}, nil
}
