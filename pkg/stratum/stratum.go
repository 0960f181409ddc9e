// Package stratum assembles layered network topologies into scene graphs.
//
// A Stratum owns the root node of one rendered network instance. Build
// materializes the topology in two strict phases: first every neuron is
// laid out and attached under the root, then every edge is derived from
// the neuron positions. Edges are never stored by the topology source;
// they are recomputed from connectivity on every build.
//
// Build is single-threaded and one-shot: it runs to completion or fails,
// and a Stratum must not be built concurrently with itself or read while
// a build is in flight. To change the topology, rebuild.
package stratum

import (
	"io"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/strataviz/stratum/pkg/errors"
	"github.com/strataviz/stratum/pkg/layout"
	"github.com/strataviz/stratum/pkg/lod"
	"github.com/strataviz/stratum/pkg/scene"
	"github.com/strataviz/stratum/pkg/topology"
)

// DefaultEdgeCrossSection is the default edge scale on the two non-length
// axes. Edges are thin rods; the length axis is scaled per edge.
const DefaultEdgeCrossSection = 0.05

// RootName is the name of the scene node representing a whole network.
const RootName = "stratum"

// Option configures a Stratum.
type Option func(*Stratum)

// WithLODPolicy overrides the switch-range policy for both neuron and edge
// detail stacks.
func WithLODPolicy(p lod.Policy) Option {
	return func(s *Stratum) { s.policy = p }
}

// WithEdgeCrossSection overrides the edge scale on the non-length axes.
func WithEdgeCrossSection(v float64) Option {
	return func(s *Stratum) { s.cross = v }
}

// WithLogger attaches a logger for build diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *Stratum) { s.logger = l }
}

// Edge is one materialized connection.
type Edge struct {
	ID   topology.EdgeID
	Node *scene.LODNode
}

// Stratum builds and owns the scene graph of one network instance.
type Stratum struct {
	src    topology.Source
	policy lod.Policy
	cross  float64
	logger *log.Logger

	root    *scene.Node
	neurons map[topology.NeuronID]*scene.LODNode
	order   []topology.NeuronID
	edges   []Edge
	grid    *layout.Result
}

// New creates a Stratum for the given topology source.
// The scene graph is empty until Build is called.
func New(src topology.Source, opts ...Option) *Stratum {
	s := &Stratum{
		src:    src,
		policy: lod.DefaultPolicy,
		cross:  DefaultEdgeCrossSection,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the root scene node, or nil before the first build.
func (s *Stratum) Root() *scene.Node { return s.root }

// Layout returns the computed neuron positions, or nil before the first
// build.
func (s *Stratum) Layout() *layout.Result { return s.grid }

// Neuron returns the scene node of one neuron.
func (s *Stratum) Neuron(id topology.NeuronID) (*scene.LODNode, bool) {
	n, ok := s.neurons[id]
	return n, ok
}

// NeuronIDs returns the built neuron identifiers in creation order
// (layer-major, then neuron index).
func (s *Stratum) NeuronIDs() []topology.NeuronID {
	out := make([]topology.NeuronID, len(s.order))
	copy(out, s.order)
	return out
}

// Edges returns the built edges in creation order.
func (s *Stratum) Edges() []Edge {
	out := make([]Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// NeuronCount returns the number of built neuron nodes.
func (s *Stratum) NeuronCount() int { return len(s.order) }

// EdgeCount returns the number of built edge nodes.
func (s *Stratum) EdgeCount() int { return len(s.edges) }

// Build constructs the scene graph from the topology source.
//
// Neurons are created first so that edge construction can resolve both
// endpoints; a connectivity target that names a nonexistent neuron aborts
// the build with ErrCodeMissingNeuron. Calling Build again discards the
// previous graph and rebuilds from the source's current answers.
func (s *Stratum) Build() error {
	if err := s.policy.Validate(); err != nil {
		return err
	}

	grid, err := layout.Compute(layout.FromSource(s.src))
	if err != nil {
		return err
	}

	s.root = scene.NewNode(RootName)
	s.neurons = make(map[topology.NeuronID]*scene.LODNode)
	s.order = s.order[:0]
	s.edges = s.edges[:0]
	s.grid = grid

	if err := s.buildNeurons(grid); err != nil {
		return err
	}
	if err := s.buildEdges(); err != nil {
		return err
	}

	s.logger.Debug("stratum built", "neurons", len(s.order), "edges", len(s.edges))
	return nil
}

// buildNeurons creates one tagged LOD node per neuron at its computed
// position, parented to the root.
func (s *Stratum) buildNeurons(grid *layout.Result) error {
	levels := s.src.NeuronDetailLevels()
	switches := s.policy.Switches(len(levels))
	if len(levels) == 0 {
		s.logger.Debug("no neuron detail levels; neuron nodes will be empty")
	}

	for layer := 0; layer < s.src.LayerCount(); layer++ {
		for j := range grid.Layer(layer) {
			id := topology.NeuronID{Layer: layer, Index: j}
			pos, ok := grid.Position(id)
			if !ok {
				return errors.New(errors.ErrCodeInternal, "no position for %s", id.Tag())
			}

			node := scene.NewLODNode(id.Tag())
			node.SetTag(id.Tag())
			node.SetPosition(pos)
			s.root.Attach(node.Node)

			if err := attachLevels(node, switches, levels); err != nil {
				return err
			}

			s.neurons[id] = node
			s.order = append(s.order, id)
		}
	}
	return nil
}

// buildEdges derives one tagged LOD node per connection. Both endpoints
// must already exist in the neuron map.
func (s *Stratum) buildEdges() error {
	levels := s.src.EdgeDetailLevels()
	switches := s.policy.Switches(len(levels))
	if len(levels) == 0 {
		s.logger.Debug("no edge detail levels; edge nodes will be empty")
	}

	for layer := 0; layer < s.src.LayerCount()-1; layer++ {
		for j := 0; j < s.src.NeuronCount(layer); j++ {
			srcID := topology.NeuronID{Layer: layer, Index: j}
			srcNode, ok := s.neurons[srcID]
			if !ok {
				return errors.New(errors.ErrCodeMissingNeuron, "connectivity source %s was never built", srcID.Tag())
			}

			for _, tgtID := range s.src.ConnectingNeurons(layer, j) {
				tgtNode, ok := s.neurons[tgtID]
				if !ok {
					return errors.New(errors.ErrCodeMissingNeuron, "edge %s references unknown neuron %s",
						topology.EdgeID{Source: srcID, Target: tgtID}.Tag(), tgtID.Tag())
				}

				edge, err := s.buildEdge(srcID, tgtID, srcNode, tgtNode, switches, levels)
				if err != nil {
					return err
				}
				s.edges = append(s.edges, edge)
			}
		}
	}
	return nil
}

// buildEdge creates the scene node for one connection. The node sits at
// the midpoint of the endpoints, its Y axis points at the target, and its
// Y scale is half the endpoint distance so each half reaches one endpoint.
func (s *Stratum) buildEdge(srcID, tgtID topology.NeuronID, srcNode, tgtNode *scene.LODNode, switches []lod.Range, levels []*scene.Geometry) (Edge, error) {
	id := topology.EdgeID{Source: srcID, Target: tgtID}

	node := scene.NewLODNode(id.Tag())
	node.SetTag(id.Tag())
	s.root.Attach(node.Node)

	from := srcNode.WorldPosition()
	to := tgtNode.WorldPosition()

	node.SetPosition(r3.Scale(0.5, r3.Add(from, to)))
	node.SetScale(r3.Vec{X: s.cross, Y: r3.Norm(r3.Sub(to, from)) / 2, Z: s.cross})
	node.LookAt(to)

	if err := attachLevels(node, switches, levels); err != nil {
		return Edge{}, err
	}
	return Edge{ID: id, Node: node}, nil
}

// attachLevels binds each geometry variant to its switch range.
// An empty variant list leaves the LOD node empty, which is degenerate but
// permitted: the object simply renders nothing.
func attachLevels(node *scene.LODNode, switches []lod.Range, levels []*scene.Geometry) error {
	for i, g := range levels {
		if err := node.AddLevel(switches[i], g); err != nil {
			return err
		}
	}
	return nil
}
