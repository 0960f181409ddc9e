package layout

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/strataviz/stratum/pkg/errors"
	"github.com/strataviz/stratum/pkg/topology"
)

// defaultParams mirrors the adapter defaults: unit-cube neurons, spacing 6
// within a layer and 45 between layers. Center-to-center offsets are then
// 7 on the spread axis and 46 on the propagation axis.
func defaultParams(counts []int, a topology.Alignment) Params {
	return Params{
		LayerCounts:   counts,
		NeuronDims:    r3.Vec{X: 1, Y: 1, Z: 1},
		NeuronSpacing: 6,
		LayerSpacing:  45,
		Alignment:     a,
	}
}

func TestComputeCenter(t *testing.T) {
	res, err := Compute(defaultParams([]int{3, 5}, topology.AlignmentCenter))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// Widest layer has 5 neurons, so the reference width is 4*7.
	if res.ReferenceWidth != 28 {
		t.Fatalf("ReferenceWidth = %v, want 28", res.ReferenceWidth)
	}

	// The narrow layer shifts by half the width difference.
	wantZ0 := []float64{7, 14, 21}
	for j, z := range wantZ0 {
		got, ok := res.Position(topology.NeuronID{Layer: 0, Index: j})
		if !ok {
			t.Fatalf("missing position 0/%d", j)
		}
		if got.X != 0 || got.Y != 0 || got.Z != z {
			t.Errorf("neuron 0/%d at %v, want (0, 0, %v)", j, got, z)
		}
	}

	// The widest layer spans the full reference width at the next x step.
	wantZ1 := []float64{0, 7, 14, 21, 28}
	for j, z := range wantZ1 {
		got, _ := res.Position(topology.NeuronID{Layer: 1, Index: j})
		if got.X != 46 || got.Z != z {
			t.Errorf("neuron 1/%d at %v, want (46, 0, %v)", j, got, z)
		}
	}
}

func TestComputeCenterSymmetry(t *testing.T) {
	res, err := Compute(defaultParams([]int{3, 7}, topology.AlignmentCenter))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// Every layer must be symmetric around the shared center axis.
	center := res.ReferenceWidth / 2
	for l := 0; l < res.LayerCount(); l++ {
		row := res.Layer(l)
		for j := range row {
			mirror := row[len(row)-1-j]
			if math.Abs((row[j].Z-center)+(mirror.Z-center)) > 1e-9 {
				t.Errorf("layer %d not symmetric: z[%d]=%v, mirror=%v", l, j, row[j].Z, mirror.Z)
			}
		}
	}
}

func TestComputeJustified(t *testing.T) {
	res, err := Compute(defaultParams([]int{2, 5}, topology.AlignmentJustified))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.ReferenceWidth != 28 {
		t.Fatalf("ReferenceWidth = %v, want 28", res.ReferenceWidth)
	}

	// The narrow layer stretches so its extremes meet the widest layer's.
	first, _ := res.Position(topology.NeuronID{Layer: 0, Index: 0})
	last, _ := res.Position(topology.NeuronID{Layer: 0, Index: 1})
	if first.Z != 0 {
		t.Errorf("first neuron z = %v, want 0", first.Z)
	}
	if last.Z != 28 {
		t.Errorf("last neuron z = %v, want 28", last.Z)
	}
}

func TestComputeJustifiedSingleNeuron(t *testing.T) {
	res, err := Compute(defaultParams([]int{1, 3}, topology.AlignmentJustified))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// A lone neuron cannot stretch; it sits at the center instead.
	got, _ := res.Position(topology.NeuronID{Layer: 0, Index: 0})
	if got.Z != res.ReferenceWidth/2 {
		t.Errorf("single neuron z = %v, want %v", got.Z, res.ReferenceWidth/2)
	}
}

func TestComputePlanar(t *testing.T) {
	res, err := Compute(defaultParams([]int{4, 4, 4}, topology.AlignmentCenter))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for l := 0; l < res.LayerCount(); l++ {
		for j, p := range res.Layer(l) {
			if p.Y != 0 {
				t.Errorf("neuron %d/%d has y = %v, want 0", l, j, p.Y)
			}
		}
	}
}

func TestComputeZeroNeuronLayer(t *testing.T) {
	res, err := Compute(defaultParams([]int{0, 2}, topology.AlignmentCenter))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(res.Layer(0)) != 0 {
		t.Errorf("empty layer produced %d positions", len(res.Layer(0)))
	}
	if _, ok := res.Position(topology.NeuronID{Layer: 0, Index: 0}); ok {
		t.Error("lookup into an empty layer must report absence")
	}
	if res.NeuronCount() != 2 {
		t.Errorf("NeuronCount = %d, want 2", res.NeuronCount())
	}
}

func TestComputeDeterministic(t *testing.T) {
	p := defaultParams([]int{5, 3, 8, 1}, topology.AlignmentJustified)

	a, err := Compute(p)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Compute(p)
	if err != nil {
		t.Fatal(err)
	}

	for l := 0; l < a.LayerCount(); l++ {
		rowA, rowB := a.Layer(l), b.Layer(l)
		for j := range rowA {
			if rowA[j] != rowB[j] {
				t.Fatalf("layer %d neuron %d differs between runs: %v vs %v", l, j, rowA[j], rowB[j])
			}
		}
	}
}

func TestComputeInvalidAlignment(t *testing.T) {
	p := defaultParams([]int{2, 2}, topology.Alignment(42))
	if _, err := Compute(p); !errors.Is(err, errors.ErrCodeInvalidAlignment) {
		t.Fatalf("got %v, want INVALID_ALIGNMENT", err)
	}
}

func TestPositionOutOfRange(t *testing.T) {
	res, err := Compute(defaultParams([]int{2}, topology.AlignmentCenter))
	if err != nil {
		t.Fatal(err)
	}

	tests := []topology.NeuronID{
		{Layer: -1, Index: 0},
		{Layer: 1, Index: 0},
		{Layer: 0, Index: -1},
		{Layer: 0, Index: 2},
	}
	for _, id := range tests {
		if _, ok := res.Position(id); ok {
			t.Errorf("Position(%+v) should report absence", id)
		}
	}
}
