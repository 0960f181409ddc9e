// Package source holds shared configuration for topology adapters.
//
// Concrete adapters live in subpackages: manual (hand-specified layer
// counts, optionally loaded from a TOML network spec) and model (counts
// derived from a saved dense-network model). Each adapter implements
// [topology.Source]; this package only carries the presentation parameters
// they have in common.
package source

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/strataviz/stratum/pkg/scene"
	"github.com/strataviz/stratum/pkg/topology"
)

// Presentation defaults shared by all adapters.
const (
	// DefaultNeuronSpacing is the default gap between neurons in a layer.
	DefaultNeuronSpacing = 6.0

	// DefaultLayerSpacing is the default gap between adjacent layers.
	DefaultLayerSpacing = 45.0
)

// Params are the presentation parameters of a topology source: everything
// a layout engine needs beyond the layer structure itself.
type Params struct {
	// NeuronDims are the extents of the largest neuron model.
	// Zero means a unit cube.
	NeuronDims r3.Vec

	// NeuronSpacing is the gap between neurons within a layer.
	// Zero means DefaultNeuronSpacing.
	NeuronSpacing float64

	// LayerSpacing is the gap between adjacent layers.
	// Zero means DefaultLayerSpacing.
	LayerSpacing float64

	// Alignment reconciles layers of unequal width.
	Alignment topology.Alignment

	// NeuronLevels are neuron geometry variants, highest detail first.
	NeuronLevels []*scene.Geometry

	// EdgeLevels are edge geometry variants, highest detail first.
	EdgeLevels []*scene.Geometry
}

// ApplyDefaults fills zero values with the package defaults.
func (p *Params) ApplyDefaults() {
	if p.NeuronDims == (r3.Vec{}) {
		p.NeuronDims = r3.Vec{X: 1, Y: 1, Z: 1}
	}
	if p.NeuronSpacing == 0 {
		p.NeuronSpacing = DefaultNeuronSpacing
	}
	if p.LayerSpacing == 0 {
		p.LayerSpacing = DefaultLayerSpacing
	}
}

// Validate rejects unusable parameter combinations.
func (p *Params) Validate() error {
	return p.Alignment.Validate()
}
