// Package topology defines the capability contract between network
// descriptions and the layout/assembly engines.
//
// A topology source answers the structural questions a layout engine asks:
// how many layers, how many neurons per layer, which neurons connect, how
// much space a neuron occupies, and which geometry variants represent
// neurons and edges at each level of detail. Anything that can answer
// those questions — a hand-written description, a saved trained model —
// plugs in by implementing [Source].
//
// All Source methods are pure queries: they may be called any number of
// times and must return stable values for the duration of one build.
package topology

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/strataviz/stratum/pkg/errors"
	"github.com/strataviz/stratum/pkg/scene"
)

// Alignment is the policy for horizontally reconciling layers that hold
// unequal neuron counts against the widest layer.
type Alignment int

const (
	// AlignmentCenter centers narrower layers on the widest layer's axis,
	// keeping neuron spacing uniform.
	AlignmentCenter Alignment = iota

	// AlignmentJustified stretches narrower layers so their first and last
	// neurons line up with the widest layer's extremes. A single-neuron
	// layer is centered instead.
	AlignmentJustified
)

// Alignment names accepted by ParseAlignment.
const (
	AlignmentNameCenter    = "center"
	AlignmentNameJustified = "justified"
)

// String returns the parseable name of the alignment.
func (a Alignment) String() string {
	switch a {
	case AlignmentCenter:
		return AlignmentNameCenter
	case AlignmentJustified:
		return AlignmentNameJustified
	default:
		return fmt.Sprintf("alignment(%d)", int(a))
	}
}

// Validate rejects values outside the closed set.
func (a Alignment) Validate() error {
	switch a {
	case AlignmentCenter, AlignmentJustified:
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidAlignment, "invalid layer alignment %q (must be one of: center, justified)", a)
	}
}

// ParseAlignment converts a configuration string to an Alignment.
// Unrecognized values fail fast with ErrCodeInvalidAlignment so a bad
// configuration is caught at construction time, not at layout time.
func ParseAlignment(s string) (Alignment, error) {
	switch s {
	case AlignmentNameCenter:
		return AlignmentCenter, nil
	case AlignmentNameJustified:
		return AlignmentJustified, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidAlignment, "invalid layer alignment %q (must be one of: center, justified)", s)
	}
}

// NeuronID uniquely identifies a neuron within one build.
type NeuronID struct {
	Layer int
	Index int
}

// Tag returns the globally unique scene tag for the neuron.
func (id NeuronID) Tag() string {
	return fmt.Sprintf("neuron/%d/%d", id.Layer, id.Index)
}

// EdgeID identifies a directed connection between two neurons.
// Edges are derived at build time, never stored independently.
type EdgeID struct {
	Source NeuronID
	Target NeuronID
}

// Tag returns the globally unique scene tag for the edge.
func (id EdgeID) Tag() string {
	return fmt.Sprintf("edge/%d/%d-%d/%d", id.Source.Layer, id.Source.Index, id.Target.Layer, id.Target.Index)
}

// Source supplies the abstract data a layout engine needs from any network
// description. Implementations must be deterministic: repeated calls with
// the same arguments return the same values for the duration of a build.
type Source interface {
	// LayerCount returns the number of network layers.
	LayerCount() int

	// NeuronCount returns the number of neurons in the given layer,
	// including any synthetic neurons (e.g. bias) the source exposes.
	NeuronCount(layer int) int

	// ConnectingNeurons returns the neurons the given neuron connects to.
	// Targets reference strictly greater layer indices, which rules out
	// cycles by construction; the layout engine does not defend against
	// sources that violate this.
	ConnectingNeurons(layer, neuron int) []NeuronID

	// NeuronDimensions returns the extents of the largest neuron model.
	// The X extent spans the layer-propagation axis, the Z extent the
	// in-layer spread axis.
	NeuronDimensions() r3.Vec

	// NeuronSpacing returns the gap between neurons within a layer.
	NeuronSpacing() float64

	// LayerSpacing returns the gap between adjacent layers.
	LayerSpacing() float64

	// LayerAlignment returns the policy for layers of unequal width.
	LayerAlignment() Alignment

	// NeuronDetailLevels returns the neuron geometry variants ordered from
	// highest detail to lowest. May be empty.
	NeuronDetailLevels() []*scene.Geometry

	// EdgeDetailLevels returns the edge geometry variants ordered from
	// highest detail to lowest. May be empty.
	EdgeDetailLevels() []*scene.Geometry
}

// Counts collects the per-layer neuron counts from a source.
func Counts(src Source) []int {
	counts := make([]int, src.LayerCount())
	for i := range counts {
		counts[i] = src.NeuronCount(i)
	}
	return counts
}
