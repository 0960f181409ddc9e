package scene

import (
	"github.com/strataviz/stratum/pkg/errors"
	"github.com/strataviz/stratum/pkg/lod"
)

// Level pairs one geometry variant with its visibility range.
type Level struct {
	Range    lod.Range
	Geometry *Geometry
}

// LODNode is a scene node that swaps between geometry variants based on
// camera distance. Variants are ordered from highest detail (nearest range)
// to lowest. The selection mechanism itself belongs to the rendering
// engine; the node only records the variants and their ranges.
//
// A LODNode with no levels is valid but renders nothing.
type LODNode struct {
	*Node
	levels []Level
}

// NewLODNode creates a detached LOD node.
func NewLODNode(name string) *LODNode {
	return &LODNode{Node: NewNode(name)}
}

// AddLevel appends a geometry variant covering the given range.
// Ranges must be contiguous: the new range's Near bound has to equal the
// previous range's Far bound (the first range must start at 0).
func (l *LODNode) AddLevel(r lod.Range, g *Geometry) error {
	if g == nil {
		return errors.New(errors.ErrCodeMissingGeometry, "lod node %s: nil geometry for range [%v, %v)", l.Name(), r.Near, r.Far)
	}
	want := 0.0
	if k := len(l.levels); k > 0 {
		want = l.levels[k-1].Range.Far
	}
	if r.Near != want {
		return errors.New(errors.ErrCodeInvalidTopology, "lod node %s: range near bound %v, want %v", l.Name(), r.Near, want)
	}
	if r.Far <= r.Near {
		return errors.New(errors.ErrCodeInvalidTopology, "lod node %s: empty range [%v, %v)", l.Name(), r.Near, r.Far)
	}
	l.levels = append(l.levels, Level{Range: r, Geometry: g})
	return nil
}

// Levels returns a copy of the attached detail levels, highest detail first.
func (l *LODNode) Levels() []Level {
	out := make([]Level, len(l.levels))
	copy(out, l.levels)
	return out
}

// Select returns the geometry variant visible at camera distance d, or nil
// if no variant covers it (only possible when the node has no levels).
func (l *LODNode) Select(d float64) *Geometry {
	for _, lv := range l.levels {
		if lv.Range.Contains(d) {
			return lv.Geometry
		}
	}
	return nil
}
