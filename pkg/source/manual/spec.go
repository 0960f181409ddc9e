package manual

import (
	"os"

	"github.com/BurntSushi/toml"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/strataviz/stratum/pkg/errors"
	"github.com/strataviz/stratum/pkg/mesh"
	"github.com/strataviz/stratum/pkg/source"
	"github.com/strataviz/stratum/pkg/topology"
)

// Spec is a TOML network description:
//
//	[network]
//	layers = [4, 6, 6, 2]
//	alignment = "center"        # or "justified"
//	neuron_spacing = 6.0
//	layer_spacing = 45.0
//	neuron_dimensions = [1.0, 1.0, 1.0]
//
//	[meshes]
//	dir = "assets/meshes"       # optional; holds neuron_*T.obj / edge_*T.obj
type Spec struct {
	Network NetworkSpec `toml:"network"`
	Meshes  MeshSpec    `toml:"meshes"`
}

// NetworkSpec is the [network] table.
type NetworkSpec struct {
	Layers           []int     `toml:"layers"`
	Alignment        string    `toml:"alignment"`
	NeuronSpacing    float64   `toml:"neuron_spacing"`
	LayerSpacing     float64   `toml:"layer_spacing"`
	NeuronDimensions []float64 `toml:"neuron_dimensions"`
}

// MeshSpec is the [meshes] table.
type MeshSpec struct {
	Dir string `toml:"dir"`
}

// LoadSpec reads and decodes a TOML network spec.
func LoadSpec(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Spec{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "network spec %s", path)
		}
		return Spec{}, err
	}

	var spec Spec
	if err := toml.Unmarshal(data, &spec); err != nil {
		return Spec{}, errors.Wrap(errors.ErrCodeInvalidSpec, err, "parse %s", path)
	}
	if len(spec.Network.Layers) == 0 {
		return Spec{}, errors.New(errors.ErrCodeInvalidSpec, "%s: network.layers must not be empty", path)
	}
	if d := spec.Network.NeuronDimensions; len(d) != 0 && len(d) != 3 {
		return Spec{}, errors.New(errors.ErrCodeInvalidSpec, "%s: neuron_dimensions needs exactly 3 values, got %d", path, len(d))
	}
	return spec, nil
}

// Source builds a manual topology source from the spec. Mesh detail levels
// are resolved through lib when the spec names a mesh directory.
func (sp Spec) Source(lib *mesh.Library) (*Source, error) {
	params := source.Params{
		NeuronSpacing: sp.Network.NeuronSpacing,
		LayerSpacing:  sp.Network.LayerSpacing,
	}

	if d := sp.Network.NeuronDimensions; len(d) == 3 {
		params.NeuronDims = r3.Vec{X: d[0], Y: d[1], Z: d[2]}
	}

	if sp.Network.Alignment != "" {
		a, err := topology.ParseAlignment(sp.Network.Alignment)
		if err != nil {
			return nil, err
		}
		params.Alignment = a
	}

	if sp.Meshes.Dir != "" {
		var err error
		if params.NeuronLevels, err = lib.DetailLevels(sp.Meshes.Dir, mesh.CategoryNeuron); err != nil {
			return nil, err
		}
		if params.EdgeLevels, err = lib.DetailLevels(sp.Meshes.Dir, mesh.CategoryEdge); err != nil {
			return nil, err
		}
	}

	return New(sp.Network.Layers, WithParams(params))
}
