package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/strataviz/stratum/pkg/layout"
)

// Layout is the serialization format for a bare grid computation, without
// scene assembly. Positions are grouped per layer in neuron order.
type Layout struct {
	ReferenceWidth float64        `json:"reference_width"`
	Layers         [][][3]float64 `json:"layers"`
}

// FromLayout converts a computed grid to its serialization format.
func FromLayout(res *layout.Result) Layout {
	out := Layout{ReferenceWidth: res.ReferenceWidth}
	for l := 0; l < res.LayerCount(); l++ {
		positions := res.Layer(l)
		row := make([][3]float64, len(positions))
		for i, p := range positions {
			row[i] = [3]float64{p.X, p.Y, p.Z}
		}
		out.Layers = append(out.Layers, row)
	}
	return out
}

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	return l, nil
}
