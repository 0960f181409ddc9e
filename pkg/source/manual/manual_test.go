package manual

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/strataviz/stratum/pkg/errors"
	"github.com/strataviz/stratum/pkg/mesh"
	"github.com/strataviz/stratum/pkg/topology"
)

func TestNewDefaults(t *testing.T) {
	s, err := New([]int{3, 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if s.LayerCount() != 2 {
		t.Errorf("LayerCount = %d, want 2", s.LayerCount())
	}
	if s.NeuronCount(0) != 3 || s.NeuronCount(1) != 2 {
		t.Errorf("counts = %d, %d", s.NeuronCount(0), s.NeuronCount(1))
	}

	// Presentation defaults.
	if s.NeuronSpacing() != 6 {
		t.Errorf("NeuronSpacing = %v, want 6", s.NeuronSpacing())
	}
	if s.LayerSpacing() != 45 {
		t.Errorf("LayerSpacing = %v, want 45", s.LayerSpacing())
	}
	if dims := s.NeuronDimensions(); dims.X != 1 || dims.Y != 1 || dims.Z != 1 {
		t.Errorf("NeuronDimensions = %v, want unit cube", dims)
	}
	if s.LayerAlignment() != topology.AlignmentCenter {
		t.Errorf("LayerAlignment = %v, want center", s.LayerAlignment())
	}
}

func TestNewInvalid(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
	}{
		{name: "empty", counts: nil},
		{name: "negative", counts: []int{3, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.counts); !errors.Is(err, errors.ErrCodeInvalidTopology) {
				t.Fatalf("got %v, want INVALID_TOPOLOGY", err)
			}
		})
	}
}

func TestNewCopiesCounts(t *testing.T) {
	counts := []int{2, 2}
	s, err := New(counts)
	if err != nil {
		t.Fatal(err)
	}
	counts[0] = 99
	if s.NeuronCount(0) != 2 {
		t.Error("source must not alias the caller's count slice")
	}
}

func TestFullNextLayer(t *testing.T) {
	s, err := New([]int{2, 3})
	if err != nil {
		t.Fatal(err)
	}

	targets := s.ConnectingNeurons(0, 1)
	if len(targets) != 3 {
		t.Fatalf("got %d targets, want 3", len(targets))
	}
	for j, id := range targets {
		want := topology.NeuronID{Layer: 1, Index: j}
		if id != want {
			t.Errorf("target %d = %+v, want %+v", j, id, want)
		}
	}

	// The last layer has nothing to connect to.
	if got := s.ConnectingNeurons(1, 0); got != nil {
		t.Errorf("last layer targets = %v, want nil", got)
	}
}

func TestWithConnectivity(t *testing.T) {
	// Chain connectivity: neuron j connects only to neuron j of the next layer.
	chain := func(layer, neuron int) []topology.NeuronID {
		if layer >= 1 {
			return nil
		}
		return []topology.NeuronID{{Layer: layer + 1, Index: neuron}}
	}

	s, err := New([]int{2, 2}, WithConnectivity(chain))
	if err != nil {
		t.Fatal(err)
	}

	targets := s.ConnectingNeurons(0, 1)
	if len(targets) != 1 || targets[0] != (topology.NeuronID{Layer: 1, Index: 1}) {
		t.Errorf("targets = %v, want [{1 1}]", targets)
	}
}

func TestLoadSpec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "network.toml")
	data := `
[network]
layers = [4, 6, 2]
alignment = "justified"
neuron_spacing = 8.0
layer_spacing = 50.0
neuron_dimensions = [2.0, 1.0, 2.0]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	spec, err := LoadSpec(path)
	if err != nil {
		t.Fatalf("LoadSpec: %v", err)
	}

	src, err := spec.Source(mesh.NewLibrary())
	if err != nil {
		t.Fatalf("Source: %v", err)
	}

	if src.LayerCount() != 3 {
		t.Errorf("LayerCount = %d, want 3", src.LayerCount())
	}
	if src.LayerAlignment() != topology.AlignmentJustified {
		t.Errorf("alignment = %v, want justified", src.LayerAlignment())
	}
	if src.NeuronSpacing() != 8 || src.LayerSpacing() != 50 {
		t.Errorf("spacing = %v/%v, want 8/50", src.NeuronSpacing(), src.LayerSpacing())
	}
	if dims := src.NeuronDimensions(); dims.X != 2 || dims.Z != 2 {
		t.Errorf("dims = %v, want x=2 z=2", dims)
	}
}

func TestLoadSpecMinimal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "network.toml")
	if err := os.WriteFile(path, []byte("[network]\nlayers = [3, 1]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	spec, err := LoadSpec(path)
	if err != nil {
		t.Fatalf("LoadSpec: %v", err)
	}

	// Omitted fields fall back to the source defaults.
	src, err := spec.Source(mesh.NewLibrary())
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	if src.NeuronSpacing() != 6 || src.LayerSpacing() != 45 {
		t.Errorf("spacing = %v/%v, want defaults 6/45", src.NeuronSpacing(), src.LayerSpacing())
	}
}

func TestLoadSpecErrors(t *testing.T) {
	dir := t.TempDir()

	write := func(name, data string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{
			name: "missing file",
			path: filepath.Join(dir, "nope.toml"),
			code: errors.ErrCodeFileNotFound,
		},
		{
			name: "malformed toml",
			path: write("bad.toml", "[network\nlayers = oops"),
			code: errors.ErrCodeInvalidSpec,
		},
		{
			name: "no layers",
			path: write("empty.toml", "[network]\nalignment = \"center\"\n"),
			code: errors.ErrCodeInvalidSpec,
		},
		{
			name: "wrong dimension arity",
			path: write("dims.toml", "[network]\nlayers = [2]\nneuron_dimensions = [1.0, 2.0]\n"),
			code: errors.ErrCodeInvalidSpec,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadSpec(tt.path); !errors.Is(err, tt.code) {
				t.Fatalf("got %v, want %s", err, tt.code)
			}
		})
	}
}

func TestSpecSourceBadAlignment(t *testing.T) {
	spec := Spec{Network: NetworkSpec{Layers: []int{2}, Alignment: "left"}}
	if _, err := spec.Source(mesh.NewLibrary()); !errors.Is(err, errors.ErrCodeInvalidAlignment) {
		t.Fatalf("got %v, want INVALID_ALIGNMENT", err)
	}
}
