package lod

import (
	"math"
	"testing"

	"github.com/strataviz/stratum/pkg/errors"
)

func TestSwitchesDefaults(t *testing.T) {
	ranges := DefaultPolicy.Switches(3)
	if len(ranges) != 3 {
		t.Fatalf("got %d ranges, want 3", len(ranges))
	}

	want := []Range{
		{Near: 0, Far: 23},
		{Near: 23, Far: 23 * 1.8},
		{Near: 23 * 1.8, Far: math.Inf(1)},
	}
	for i, r := range ranges {
		if r.Near != want[i].Near {
			t.Errorf("range %d near = %v, want %v", i, r.Near, want[i].Near)
		}
		if r.Far != want[i].Far {
			t.Errorf("range %d far = %v, want %v", i, r.Far, want[i].Far)
		}
	}

	if !ranges[2].Unbounded() {
		t.Error("last range must be unbounded")
	}
	if ranges[0].Unbounded() {
		t.Error("first range must be bounded")
	}
}

func TestSwitchesContiguous(t *testing.T) {
	// Consecutive ranges must share their bounds regardless of count.
	for _, n := range []int{1, 2, 5, 10} {
		ranges := DefaultPolicy.Switches(n)
		if ranges[0].Near != 0 {
			t.Errorf("n=%d: first range starts at %v, want 0", n, ranges[0].Near)
		}
		for i := 1; i < len(ranges); i++ {
			if ranges[i].Near != ranges[i-1].Far {
				t.Errorf("n=%d: range %d near %v != previous far %v", n, i, ranges[i].Near, ranges[i-1].Far)
			}
		}
		if !ranges[len(ranges)-1].Unbounded() {
			t.Errorf("n=%d: last range must be unbounded", n)
		}
	}
}

func TestSwitchesSingle(t *testing.T) {
	ranges := DefaultPolicy.Switches(1)
	if len(ranges) != 1 {
		t.Fatalf("got %d ranges, want 1", len(ranges))
	}
	if ranges[0].Near != 0 || !ranges[0].Unbounded() {
		t.Errorf("single range = %+v, want [0, +Inf)", ranges[0])
	}
}

func TestSwitchesEmpty(t *testing.T) {
	if got := DefaultPolicy.Switches(0); got != nil {
		t.Errorf("Switches(0) = %v, want nil", got)
	}
	if got := DefaultPolicy.Switches(-1); got != nil {
		t.Errorf("Switches(-1) = %v, want nil", got)
	}
}

func TestRangeContains(t *testing.T) {
	r := Range{Near: 23, Far: 41.4}

	tests := []struct {
		d    float64
		want bool
	}{
		{22.9, false},
		{23, true}, // near bound is inclusive
		{30, true},
		{41.4, false}, // far bound is exclusive
		{100, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.d); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.d, got, tt.want)
		}
	}

	unbounded := Range{Near: 41.4, Far: math.Inf(1)}
	if !unbounded.Contains(1e12) {
		t.Error("unbounded range must contain arbitrarily large distances")
	}
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		wantErr bool
	}{
		{name: "default", policy: DefaultPolicy},
		{name: "custom", policy: Policy{FirstFar: 10, Ratio: 2}},
		{name: "zero first far", policy: Policy{FirstFar: 0, Ratio: 2}, wantErr: true},
		{name: "negative first far", policy: Policy{FirstFar: -5, Ratio: 2}, wantErr: true},
		{name: "ratio one", policy: Policy{FirstFar: 10, Ratio: 1}, wantErr: true},
		{name: "shrinking ratio", policy: Policy{FirstFar: 10, Ratio: 0.5}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.wantErr && !errors.Is(err, errors.ErrCodeInvalidTopology) {
				t.Errorf("got %v, want INVALID_TOPOLOGY", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
