// Package manual implements a hand-specified topology source.
//
// The caller supplies per-layer neuron counts and optionally a custom
// connectivity rule; by default every neuron connects to every neuron of
// the next layer. Network specs can also be loaded from TOML files, see
// LoadSpec.
package manual

import (
	"github.com/strataviz/stratum/pkg/errors"
	"github.com/strataviz/stratum/pkg/scene"
	"github.com/strataviz/stratum/pkg/source"
	"github.com/strataviz/stratum/pkg/topology"
	"gonum.org/v1/gonum/spatial/r3"
)

// Connectivity answers which neurons a given neuron connects to.
// Targets must reference strictly greater layer indices.
type Connectivity func(layer, neuron int) []topology.NeuronID

// Source is a topology source built from explicit layer counts.
type Source struct {
	counts  []int
	connect Connectivity
	params  source.Params
}

// Option configures a Source.
type Option func(*Source)

// WithParams sets the presentation parameters.
func WithParams(p source.Params) Option {
	return func(s *Source) { s.params = p }
}

// WithConnectivity replaces the default full next-layer connectivity.
func WithConnectivity(c Connectivity) Option {
	return func(s *Source) { s.connect = c }
}

// New creates a manual source for the given per-layer neuron counts.
// Counts must be non-empty and non-negative; the alignment carried by the
// params is validated eagerly so misconfiguration fails at construction.
func New(counts []int, opts ...Option) (*Source, error) {
	if len(counts) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidTopology, "manual source needs at least one layer")
	}
	for i, n := range counts {
		if n < 0 {
			return nil, errors.New(errors.ErrCodeInvalidTopology, "layer %d has negative neuron count %d", i, n)
		}
	}

	s := &Source{counts: append([]int(nil), counts...)}
	for _, opt := range opts {
		opt(s)
	}

	s.params.ApplyDefaults()
	if err := s.params.Validate(); err != nil {
		return nil, err
	}
	if s.connect == nil {
		s.connect = FullNextLayer(s.counts)
	}
	return s, nil
}

// FullNextLayer returns the default connectivity: every neuron of layer i
// connects to every neuron of layer i+1.
func FullNextLayer(counts []int) Connectivity {
	return func(layer, neuron int) []topology.NeuronID {
		next := layer + 1
		if next >= len(counts) {
			return nil
		}
		targets := make([]topology.NeuronID, counts[next])
		for j := range targets {
			targets[j] = topology.NeuronID{Layer: next, Index: j}
		}
		return targets
	}
}

// LayerCount implements topology.Source.
func (s *Source) LayerCount() int { return len(s.counts) }

// NeuronCount implements topology.Source.
func (s *Source) NeuronCount(layer int) int { return s.counts[layer] }

// ConnectingNeurons implements topology.Source.
func (s *Source) ConnectingNeurons(layer, neuron int) []topology.NeuronID {
	return s.connect(layer, neuron)
}

// NeuronDimensions implements topology.Source.
func (s *Source) NeuronDimensions() r3.Vec { return s.params.NeuronDims }

// NeuronSpacing implements topology.Source.
func (s *Source) NeuronSpacing() float64 { return s.params.NeuronSpacing }

// LayerSpacing implements topology.Source.
func (s *Source) LayerSpacing() float64 { return s.params.LayerSpacing }

// LayerAlignment implements topology.Source.
func (s *Source) LayerAlignment() topology.Alignment { return s.params.Alignment }

// NeuronDetailLevels implements topology.Source.
func (s *Source) NeuronDetailLevels() []*scene.Geometry { return s.params.NeuronLevels }

// EdgeDetailLevels implements topology.Source.
func (s *Source) EdgeDetailLevels() []*scene.Geometry { return s.params.EdgeLevels }
