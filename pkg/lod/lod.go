// Package lod computes level-of-detail switch ranges.
//
// A switch range is the half-open camera-distance interval [Near, Far) in
// which one geometry variant is visible. Variants are ordered from highest
// detail (index 0, nearest) to lowest detail (last, farthest). The Far bound
// of each range becomes the Near bound of the next, and bounds grow
// geometrically so that coarser variants cover progressively wider bands.
// The last range is unbounded: an object never disappears, regardless of
// camera distance.
//
// The actual distance measurement and variant swapping is owned by the
// rendering engine; this package only assigns the ranges.
package lod

import (
	"math"

	"github.com/strataviz/stratum/pkg/errors"
)

// Defaults for the switch-range policy.
const (
	// DefaultFirstFar is the far bound of the highest-detail range.
	DefaultFirstFar = 23.0

	// DefaultRatio is the geometric growth factor between successive
	// far bounds.
	DefaultRatio = 1.8
)

// Range is a half-open visibility interval [Near, Far) in world units of
// camera distance.
type Range struct {
	Near float64
	Far  float64
}

// Unbounded reports whether the range extends to infinity.
func (r Range) Unbounded() bool {
	return math.IsInf(r.Far, 1)
}

// Contains reports whether distance d falls inside the range.
func (r Range) Contains(d float64) bool {
	return d >= r.Near && d < r.Far
}

// Policy derives switch ranges for a stack of geometry variants.
// The zero value is not usable; use DefaultPolicy or construct explicitly.
type Policy struct {
	// FirstFar is the far bound assigned to the highest-detail variant.
	FirstFar float64

	// Ratio is the multiplicative growth of the far bound per variant.
	Ratio float64
}

// DefaultPolicy is the reference switch policy: the most detailed variant
// is visible within 23 units, and each coarser variant covers a band 1.8
// times farther out.
var DefaultPolicy = Policy{FirstFar: DefaultFirstFar, Ratio: DefaultRatio}

// Validate checks that the policy produces strictly increasing thresholds.
func (p Policy) Validate() error {
	if p.FirstFar <= 0 {
		return errors.New(errors.ErrCodeInvalidTopology, "lod policy: first switch distance must be positive, got %v", p.FirstFar)
	}
	if p.Ratio <= 1 {
		return errors.New(errors.ErrCodeInvalidTopology, "lod policy: ratio must exceed 1, got %v", p.Ratio)
	}
	return nil
}

// Switches returns the visibility ranges for n geometry variants, ordered
// from highest detail to lowest. The ranges partition [0, +Inf): each Far
// bound is the next range's Near bound, and the final range is unbounded.
// Returns nil for n <= 0.
func (p Policy) Switches(n int) []Range {
	if n <= 0 {
		return nil
	}

	ranges := make([]Range, n)
	near, far := 0.0, p.FirstFar
	for i := range ranges {
		if i == n-1 {
			far = math.Inf(1)
		}
		ranges[i] = Range{Near: near, Far: far}
		near, far = far, far*p.Ratio
	}
	return ranges
}
