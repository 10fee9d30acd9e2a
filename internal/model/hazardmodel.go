package model

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hazard-cli/internal/config"
)

// HazardModel is the top-level wrapper for earthquake source definitions
// used in probabilistic seismic hazard calculations. A model groups
// SourceSets by SourceType; each set carries the ground motion models and
// weights to use when evaluating the hazard it contributes.
type HazardModel struct {
	name string
	calc *config.Calc
	typs []SourceType
	sets map[SourceType][]SourceSet
	size int
}

// Name returns the model name.
func (m *HazardModel) Name() string { return m.name }

// Size returns the number of source sets in the model.
func (m *HazardModel) Size() int { return m.size }

// Config returns the default calculation configuration for this model.
// Callers may override it.
func (m *HazardModel) Config() *config.Calc { return m.calc }

// Types returns the source types present in the model, in the order they
// were first added.
func (m *HazardModel) Types() []SourceType {
	out := make([]SourceType, len(m.typs))
	copy(out, m.typs)
	return out
}

// Sets returns the source sets of the given type, in addition order.
func (m *HazardModel) Sets(typ SourceType) []SourceSet {
	return m.sets[typ]
}

// All returns every source set in the model, grouped by type in
// first-added order.
func (m *HazardModel) All() []SourceSet {
	out := make([]SourceSet, 0, m.size)
	for _, typ := range m.typs {
		out = append(out, m.sets[typ]...)
	}
	return out
}

func (m *HazardModel) String() string {
	var sb strings.Builder
	sb.WriteString("HazardModel: ")
	sb.WriteString(m.name)
	sb.WriteByte('\n')
	for _, set := range m.All() {
		fmt.Fprintf(&sb, "  %-22s%s: %s [%d sources]\n",
			set.Type().String()+" Source Set", set.Name(), set.Type(), set.Size())
	}
	return sb.String()
}

// HazardModelBuilder assembles a HazardModel from source sets and a
// calculation configuration.
type HazardModelBuilder struct {
	name  string
	calc  *config.Calc
	typs  []SourceType
	sets  map[SourceType][]SourceSet
	size  int
	err   error
	built bool
}

// NewHazardModelBuilder returns an empty builder.
func NewHazardModelBuilder() *HazardModelBuilder {
	return &HazardModelBuilder{sets: make(map[SourceType][]SourceSet)}
}

func (b *HazardModelBuilder) fail(err error) *HazardModelBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Name sets the model name.
func (b *HazardModelBuilder) Name(name string) *HazardModelBuilder {
	if strings.TrimSpace(name) == "" {
		return b.fail(eris.New("model: name may not be empty"))
	}
	b.name = name
	return b
}

// Config sets the default calculation configuration.
func (b *HazardModelBuilder) Config(calc *config.Calc) *HazardModelBuilder {
	if calc == nil {
		return b.fail(eris.New("model: config may not be nil"))
	}
	b.calc = calc
	return b
}

// SourceSet adds a source set, registering it under its type.
func (b *HazardModelBuilder) SourceSet(set SourceSet) *HazardModelBuilder {
	if set == nil {
		return b.fail(eris.New("model: source set may not be nil"))
	}
	typ := set.Type()
	if _, ok := b.sets[typ]; !ok {
		b.typs = append(b.typs, typ)
	}
	b.sets[typ] = append(b.sets[typ], set)
	b.size++
	return b
}

// Build validates and returns the model. The builder may be used once.
func (b *HazardModelBuilder) Build() (*HazardModel, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.built {
		return nil, eris.New("model: builder already used")
	}
	b.built = true
	switch {
	case b.name == "":
		return nil, eris.New("model: model name not set")
	case b.size == 0:
		return nil, eris.New("model: model has no source sets")
	case b.calc == nil:
		return nil, eris.New("model: model config not set")
	}
	return &HazardModel{
		name: b.name,
		calc: b.calc,
		typs: b.typs,
		sets: b.sets,
		size: b.size,
	}, nil
}
