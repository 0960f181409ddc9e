package source

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/strataviz/stratum/pkg/errors"
	"github.com/strataviz/stratum/pkg/topology"
)

func TestApplyDefaults(t *testing.T) {
	var p Params
	p.ApplyDefaults()

	if p.NeuronDims != (r3.Vec{X: 1, Y: 1, Z: 1}) {
		t.Errorf("NeuronDims = %v, want unit cube", p.NeuronDims)
	}
	if p.NeuronSpacing != DefaultNeuronSpacing {
		t.Errorf("NeuronSpacing = %v, want %v", p.NeuronSpacing, DefaultNeuronSpacing)
	}
	if p.LayerSpacing != DefaultLayerSpacing {
		t.Errorf("LayerSpacing = %v, want %v", p.LayerSpacing, DefaultLayerSpacing)
	}
}

func TestApplyDefaultsPreservesExplicit(t *testing.T) {
	p := Params{
		NeuronDims:    r3.Vec{X: 2, Y: 3, Z: 4},
		NeuronSpacing: 10,
		LayerSpacing:  20,
	}
	p.ApplyDefaults()

	if p.NeuronDims != (r3.Vec{X: 2, Y: 3, Z: 4}) || p.NeuronSpacing != 10 || p.LayerSpacing != 20 {
		t.Errorf("explicit values overwritten: %+v", p)
	}
}

func TestValidate(t *testing.T) {
	p := Params{Alignment: topology.AlignmentJustified}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	bad := Params{Alignment: topology.Alignment(9)}
	if err := bad.Validate(); !errors.Is(err, errors.ErrCodeInvalidAlignment) {
		t.Errorf("got %v, want INVALID_ALIGNMENT", err)
	}
}
