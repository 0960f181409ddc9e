// Package model derives a topology source from a saved dense network.
//
// The adapter inspects each fully-connected layer's weight-matrix shape to
// recover displayable neuron counts; it does not evaluate the network. A
// layer contributes one extra synthetic "bias" neuron when it carries a
// bias term. Layers that are not dense (dropout, activation-only) are
// skipped entirely. Learned weight magnitudes are deliberately ignored:
// every neuron of layer i connects to every non-bias neuron of layer i+1
// regardless of how close the corresponding weight is to zero, so the
// rendered topology shows raw structure, not learned sparsity.
package model

import (
	"encoding/json"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/strataviz/stratum/pkg/errors"
	"github.com/strataviz/stratum/pkg/scene"
	"github.com/strataviz/stratum/pkg/source"
	"github.com/strataviz/stratum/pkg/topology"
)

// LayerTypeDense marks fully-connected layers in a saved model.
// Any other type is skipped by the scan.
const LayerTypeDense = "dense"

// Model is the JSON wire format of a saved network:
//
//	{
//	  "name": "mnist-mlp",
//	  "layers": [
//	    {"type": "dense", "weights_shape": [784, 128], "use_bias": true},
//	    {"type": "dropout"},
//	    {"type": "dense", "weights_shape": [128, 10], "use_bias": false}
//	  ]
//	}
type Model struct {
	Name   string  `json:"name,omitempty"`
	Layers []Layer `json:"layers"`
}

// Layer is one saved layer description.
type Layer struct {
	Type         string `json:"type"`
	WeightsShape []int  `json:"weights_shape,omitempty"`
	UseBias      bool   `json:"use_bias,omitempty"`
}

// Load reads and decodes a saved model file.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "model %s", path)
		}
		return nil, err
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "parse %s", path)
	}
	return &m, nil
}

// Source is a topology source derived from a saved model.
type Source struct {
	neurons []int // displayable neurons per layer, bias excluded
	bias    []int // synthetic bias neurons per layer (0 or 1)
	params  source.Params
}

// New derives a source from the model's dense layers.
//
// For every dense layer the neuron count is the product of all weight
// dimensions except the last; the final dense layer additionally yields a
// trailing output layer sized by its last weight dimension. Bias flags
// follow the scanned layer; the input scan assigns none to the output
// layer. A model without dense layers cannot be visualized.
func New(m *Model, params source.Params) (*Source, error) {
	params.ApplyDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var (
		neurons   []int
		bias      []int
		lastShape []int
	)

	for i, l := range m.Layers {
		if l.Type != LayerTypeDense {
			continue
		}
		if len(l.WeightsShape) < 2 {
			return nil, errors.New(errors.ErrCodeInvalidModel, "dense layer %d: weights shape %v needs at least 2 dimensions", i, l.WeightsShape)
		}

		count := 1
		for _, d := range l.WeightsShape[:len(l.WeightsShape)-1] {
			count *= d
		}
		neurons = append(neurons, count)

		if l.UseBias {
			bias = append(bias, 1)
		} else {
			bias = append(bias, 0)
		}
		lastShape = l.WeightsShape
	}

	if len(neurons) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidModel, "model %q has no dense layers", m.Name)
	}

	// The final dense layer's last weight dimension is the output layer.
	neurons = append(neurons, lastShape[len(lastShape)-1])
	bias = append(bias, 0)

	return &Source{neurons: neurons, bias: bias, params: params}, nil
}

// NeuronsPerLayer returns the derived per-layer neuron counts, bias
// neurons excluded.
func (s *Source) NeuronsPerLayer() []int {
	return append([]int(nil), s.neurons...)
}

// BiasPerLayer returns the synthetic bias-neuron count per layer.
func (s *Source) BiasPerLayer() []int {
	return append([]int(nil), s.bias...)
}

// LayerCount implements topology.Source.
func (s *Source) LayerCount() int { return len(s.neurons) }

// NeuronCount implements topology.Source. The count includes the layer's
// synthetic bias neuron, if any.
func (s *Source) NeuronCount(layer int) int { return s.neurons[layer] + s.bias[layer] }

// ConnectingNeurons implements topology.Source. Every neuron (bias
// included) connects to every non-bias neuron of the next layer; bias
// neurons therefore have outgoing edges but never incoming ones.
func (s *Source) ConnectingNeurons(layer, neuron int) []topology.NeuronID {
	next := layer + 1
	if next >= len(s.neurons) {
		return nil
	}
	targets := make([]topology.NeuronID, s.neurons[next])
	for j := range targets {
		targets[j] = topology.NeuronID{Layer: next, Index: j}
	}
	return targets
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
