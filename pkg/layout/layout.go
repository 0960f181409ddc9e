// Package layout computes neuron positions for layered network topologies.
//
// The engine is a pure geometric function: given layer sizes, neuron
// extents, spacing and an alignment policy, it produces a planar (x, z)
// position for every neuron. It knows nothing about scene graphs or
// rendering backends; scene assembly consumes the result.
//
// The propagation axis (x) encodes the layer index, the spread axis (z)
// the neuron index within its layer, and y is always zero.
package layout

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/strataviz/stratum/pkg/errors"
	"github.com/strataviz/stratum/pkg/topology"
)

// Params are the inputs of one layout computation.
type Params struct {
	// LayerCounts holds the number of neurons per layer, ordered by layer
	// index. A zero entry yields an empty row.
	LayerCounts []int

	// NeuronDims are the extents of the largest neuron model. The X extent
	// lies along the propagation axis, the Z extent along the spread axis.
	NeuronDims r3.Vec

	// NeuronSpacing is the gap between neighboring neurons in a layer.
	NeuronSpacing float64

	// LayerSpacing is the gap between adjacent layers.
	LayerSpacing float64

	// Alignment reconciles layers narrower than the widest layer.
	Alignment topology.Alignment
}

// FromSource collects layout parameters from a topology source.
func FromSource(src topology.Source) Params {
	return Params{
		LayerCounts:   topology.Counts(src),
		NeuronDims:    src.NeuronDimensions(),
		NeuronSpacing: src.NeuronSpacing(),
		LayerSpacing:  src.LayerSpacing(),
		Alignment:     src.LayerAlignment(),
	}
}

// Result holds the computed neuron positions.
type Result struct {
	// ReferenceWidth is the center-to-center span of the widest layer
	// along the spread axis. All alignment is measured against it.
	ReferenceWidth float64

	positions [][]r3.Vec
}

// LayerCount returns the number of layers in the result.
func (r *Result) LayerCount() int { return len(r.positions) }

// Layer returns the positions of one layer, ordered by neuron index.
// The returned slice is owned by the result and must not be modified.
func (r *Result) Layer(i int) []r3.Vec { return r.positions[i] }

// Position returns the position of one neuron. The second return value is
// false when the identifier lies outside the computed topology (including
// lookups into zero-neuron layers).
func (r *Result) Position(id topology.NeuronID) (r3.Vec, bool) {
	if id.Layer < 0 || id.Layer >= len(r.positions) {
		return r3.Vec{}, false
	}
	row := r.positions[id.Layer]
	if id.Index < 0 || id.Index >= len(row) {
		return r3.Vec{}, false
	}
	return row[id.Index], true
}

// NeuronCount returns the total number of positioned neurons.
func (r *Result) NeuronCount() int {
	total := 0
	for _, row := range r.positions {
		total += len(row)
	}
	return total
}

// Compute lays out every neuron on the xz-plane.
//
// Compute is a pure function: identical parameters always produce
// identical results, and no layer's placement depends on another layer's
// computation order. An invalid alignment is rejected with
// ErrCodeInvalidAlignment.
func Compute(p Params) (*Result, error) {
	if err := p.Alignment.Validate(); err != nil {
		return nil, err
	}

	maxNeurons := 0
	for _, n := range p.LayerCounts {
		maxNeurons = max(maxNeurons, n)
	}

	// Offsets are measured center to center: model extent plus gap.
	baseOffset := p.NeuronDims.Z + p.NeuronSpacing
	layerOffset := p.NeuronDims.X + p.LayerSpacing

	res := &Result{
		ReferenceWidth: float64(maxNeurons-1) * baseOffset,
		positions:      make([][]r3.Vec, len(p.LayerCounts)),
	}

	for layer, neurons := range p.LayerCounts {
		offset, centering, err := spreadFor(p.Alignment, neurons, baseOffset, res.ReferenceWidth)
		if err != nil {
			return nil, err
		}

		row := make([]r3.Vec, neurons)
		for j := range row {
			row[j] = r3.Vec{
				X: float64(layer) * layerOffset,
				Z: float64(j)*offset + centering,
			}
		}
		res.positions[layer] = row
	}

	return res, nil
}

// spreadFor resolves the per-layer neuron offset and centering shift for
// one layer of the given size.
func spreadFor(a topology.Alignment, neurons int, baseOffset, referenceWidth float64) (offset, centering float64, err error) {
	layerWidth := float64(neurons-1) * baseOffset

	switch a {
	case topology.AlignmentCenter:
		// Narrower layers stay symmetric around the shared center axis.
		return baseOffset, (referenceWidth - layerWidth) / 2, nil

	case topology.AlignmentJustified:
		if neurons == 1 {
			// A lone neuron cannot stretch; center it.
			return baseOffset, referenceWidth / 2, nil
		}
		if layerWidth < referenceWidth {
			// Stretch spacing so the layer's extremes meet the widest
			// layer's extremes.
			return referenceWidth / float64(neurons-1), 0, nil
		}
		return baseOffset, 0, nil

	default:
		return 0, 0, errors.New(errors.ErrCodeInvalidAlignment, "invalid layer alignment %q", a)
	}
}
