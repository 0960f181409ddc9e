// Package export provides serialization and preview rendering for built
// scenes.
//
// The canonical wire format is scene.json: every neuron and edge node with
// its transform and level-of-detail ranges, plus a shared geometry table.
// The format is designed for consumption by a rendering engine or by the
// bundled previews (DOT/SVG projection, HTML 3D scatter).
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/num/quat"

	"github.com/strataviz/stratum/pkg/scene"
	"github.com/strataviz/stratum/pkg/stratum"
)

// Scene is the canonical serialization format for a built network.
type Scene struct {
	BuildID string `json:"build_id"`
	Name    string `json:"name,omitempty"`

	Neurons    []Neuron   `json:"neurons"`
	Edges      []Edge     `json:"edges"`
	Geometries []Geometry `json:"geometries,omitempty"`
}

// Neuron is one serialized neuron node.
type Neuron struct {
	Tag   string `json:"tag"`
	Layer int    `json:"layer"`
	Index int    `json:"index"`
	Transform
	Levels []Level `json:"levels,omitempty"`
}

// Edge is one serialized edge node.
type Edge struct {
	Tag         string `json:"tag"`
	SourceLayer int    `json:"source_layer"`
	SourceIndex int    `json:"source_index"`
	TargetLayer int    `json:"target_layer"`
	TargetIndex int    `json:"target_index"`
	Transform
	Levels []Level `json:"levels,omitempty"`
}

// Transform is a node's local transform relative to the stratum root.
// Rotation is a unit quaternion in (w, x, y, z) order.
type Transform struct {
	Position [3]float64 `json:"position"`
	Rotation [4]float64 `json:"rotation"`
	Scale    [3]float64 `json:"scale"`
}

// Level is one serialized level-of-detail assignment. An unbounded level
// is visible at any distance beyond Near; its Far field is omitted because
// JSON cannot carry infinity.
type Level struct {
	Near      float64 `json:"near"`
	Far       float64 `json:"far,omitempty"`
	Unbounded bool    `json:"unbounded,omitempty"`
	Geometry  string  `json:"geometry"`
}

// Geometry is one entry of the shared geometry table, keyed by name.
type Geometry struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Triangles int    `json:"triangles"`
}

// FromStratum converts a built stratum to its serialization format.
// The scene receives a fresh build UUID; name is an optional display name.
func FromStratum(s *stratum.Stratum, name string) Scene {
	out := Scene{
		BuildID: uuid.NewString(),
		Name:    name,
	}

	geoms := map[string]Geometry{}

	for _, id := range s.NeuronIDs() {
		node, _ := s.Neuron(id)
		out.Neurons = append(out.Neurons, Neuron{
			Tag:       node.Tag(),
			Layer:     id.Layer,
			Index:     id.Index,
			Transform: transformOf(node),
			Levels:    levelsOf(node, geoms),
		})
	}

	for _, e := range s.Edges() {
		out.Edges = append(out.Edges, Edge{
			Tag:         e.Node.Tag(),
			SourceLayer: e.ID.Source.Layer,
			SourceIndex: e.ID.Source.Index,
			TargetLayer: e.ID.Target.Layer,
			TargetIndex: e.ID.Target.Index,
			Transform:   transformOf(e.Node),
			Levels:      levelsOf(e.Node, geoms),
		})
	}

	for _, g := range geoms {
		out.Geometries = append(out.Geometries, g)
	}
	sort.Slice(out.Geometries, func(i, j int) bool {
		return out.Geometries[i].Name < out.Geometries[j].Name
	})

	return out
}

func transformOf(n *scene.LODNode) Transform {
	pos := n.Position()
	sc := n.Scale()
	q := quat.Number(n.Rotation())
	return Transform{
		Position: [3]float64{pos.X, pos.Y, pos.Z},
		Rotation: [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag},
		Scale:    [3]float64{sc.X, sc.Y, sc.Z},
	}
}

func levelsOf(n *scene.LODNode, geoms map[string]Geometry) []Level {
	var out []Level
	for _, lv := range n.Levels() {
		g := lv.Geometry
		geoms[g.Name()] = Geometry{Name: g.Name(), Path: g.Path(), Triangles: g.Triangles()}

		l := Level{Near: lv.Range.Near, Geometry: g.Name()}
		if math.IsInf(lv.Range.Far, 1) {
			l.Unbounded = true
		} else {
			l.Far = lv.Range.Far
		}
		out = append(out, l)
	}
	return out
}

// =============================================================================
// Scene Serialization API
// =============================================================================

// MarshalScene serializes a Scene to pretty-printed JSON bytes.
func MarshalScene(sc Scene) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sc); err != nil {
		return nil, fmt.Errorf("encode scene: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalScene deserializes JSON bytes into a Scene.
func UnmarshalScene(data []byte) (Scene, error) {
	var sc Scene
	if err := json.Unmarshal(data, &sc); err != nil {
		return Scene{}, fmt.Errorf("unmarshal scene: %w", err)
	}
	if len(sc.Neurons) == 0 {
		return Scene{}, fmt.Errorf("scene must contain neurons")
	}
	return sc, nil
}

// WriteSceneFile writes a Scene to a JSON file.
func WriteSceneFile(sc Scene, path string) error {
	data, err := MarshalScene(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadSceneFile reads a Scene from a JSON file.
func ReadSceneFile(path string) (Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalScene(data)
}

// WriteScene writes a Scene as JSON to an io.Writer.
func WriteScene(sc Scene, w io.Writer) error {
	data, err := MarshalScene(sc)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
