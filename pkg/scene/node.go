// Package scene provides an in-memory scene graph for assembled topologies.
//
// This is the reference implementation of the scene-graph host contract: a
// tree of transform nodes with tag lookup, plus level-of-detail nodes that
// carry geometry variants with their switch ranges. A rendering engine
// consumes the tree after construction; nothing in this package renders.
//
// Nodes hold a local transform (position, rotation, scale) relative to
// their parent. World-space queries compose transforms from the root down.
//
// The scene graph is not safe for concurrent mutation. Construction is
// single-threaded; once built, the tree may be read concurrently.
package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// up is the local long axis of a node; LookAt points it at the target.
var up = r3.Vec{Y: 1}

// Node is a transform node in the scene graph.
//
// The zero value is not usable; use NewNode.
type Node struct {
	name string
	tag  string

	parent   *Node
	children []*Node

	pos   r3.Vec
	rot   r3.Rotation
	scale r3.Vec
}

// NewNode creates a detached node with identity rotation and unit scale.
func NewNode(name string) *Node {
	return &Node{
		name:  name,
		rot:   r3.NewRotation(0, r3.Vec{X: 1}),
		scale: r3.Vec{X: 1, Y: 1, Z: 1},
	}
}

// Name returns the node name given at creation.
func (n *Node) Name() string { return n.name }

// Tag returns the lookup tag, or "" if none was set.
func (n *Node) Tag() string { return n.tag }

// SetTag assigns the lookup tag used by Find.
func (n *Node) SetTag(tag string) { n.tag = tag }

// Parent returns the parent node, or nil for a root or detached node.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the direct children.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Attach makes child a child of n, detaching it from any previous parent.
func (n *Node) Attach(child *Node) {
	if child.parent != nil {
		child.parent.detach(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

func (n *Node) detach(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Position returns the local position relative to the parent.
func (n *Node) Position() r3.Vec { return n.pos }

// SetPosition sets the local position relative to the parent.
func (n *Node) SetPosition(p r3.Vec) { n.pos = p }

// Rotation returns the local rotation.
func (n *Node) Rotation() r3.Rotation { return n.rot }

// SetRotation sets the local rotation.
func (n *Node) SetRotation(r r3.Rotation) { n.rot = r }

// Scale returns the local scale.
func (n *Node) Scale() r3.Vec { return n.scale }

// SetScale sets the local per-axis scale.
func (n *Node) SetScale(s r3.Vec) { n.scale = s }

// TransformPoint maps a point from the node's local space to world space,
// composing transforms up through the ancestor chain.
func (n *Node) TransformPoint(p r3.Vec) r3.Vec {
	local := r3.Add(n.pos, n.rot.Rotate(r3.Vec{
		X: p.X * n.scale.X,
		Y: p.Y * n.scale.Y,
		Z: p.Z * n.scale.Z,
	}))
	if n.parent == nil {
		return local
	}
	return n.parent.TransformPoint(local)
}

// WorldPosition returns the node origin in world space.
func (n *Node) WorldPosition() r3.Vec {
	return n.TransformPoint(r3.Vec{})
}

// Distance returns the world-space Euclidean distance between two nodes.
func (n *Node) Distance(other *Node) float64 {
	return r3.Norm(r3.Sub(other.WorldPosition(), n.WorldPosition()))
}

// LookAt orients the node's +Y axis toward a world-space target.
//
// The target is resolved against ancestors' translations only: LookAt
// assumes the ancestor chain carries no rotation or non-unit scale, which
// holds for the flat layouts built here (all leaves parent directly to an
// untransformed root).
func (n *Node) LookAt(target r3.Vec) {
	dir := r3.Sub(target, n.WorldPosition())
	dist := r3.Norm(dir)
	if dist == 0 {
		return
	}
	dir = r3.Scale(1/dist, dir)

	const eps = 1e-12
	dot := r3.Dot(up, dir)
	switch {
	case dot >= 1-eps:
		n.rot = r3.NewRotation(0, r3.Vec{X: 1})
	case dot <= -1+eps:
		// Antiparallel: any axis perpendicular to +Y works.
		n.rot = r3.NewRotation(math.Pi, r3.Vec{X: 1})
	default:
		axis := r3.Unit(r3.Cross(up, dir))
		n.rot = r3.NewRotation(math.Acos(dot), axis)
	}
}

// Find returns the first node in the subtree rooted at n (excluding n
// itself) whose tag matches, in depth-first order. Returns nil if no node
// matches.
//
// Find exists for the host contract and for debugging; builders that need
// repeated lookups should keep their own identifier-to-node map instead of
// searching the tree.
func (n *Node) Find(tag string) *Node {
	for _, c := range n.children {
		if c.tag == tag {
			return c
		}
		if found := c.Find(tag); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits every node in the subtree rooted at n (including n) in
// depth-first order. Walking stops early if fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}
