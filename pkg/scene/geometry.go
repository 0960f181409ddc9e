package scene

// Geometry is a shared handle to a mesh resource.
//
// Geometry values are attached by reference: many nodes may point at the
// same Geometry, so it must never be mutated after creation. Ownership of
// the underlying mesh data (loading, reference counting, GPU upload) stays
// with the rendering engine; the scene graph only tracks the handle.
type Geometry struct {
	name      string
	path      string
	triangles int
}

// NewGeometry creates a geometry handle for the mesh at path.
// Triangles records the mesh complexity and orders detail variants.
func NewGeometry(name, path string, triangles int) *Geometry {
	return &Geometry{name: name, path: path, triangles: triangles}
}

// Name returns the display name of the geometry.
func (g *Geometry) Name() string { return g.name }

// Path returns the source file path of the mesh.
func (g *Geometry) Path() string { return g.path }

// Triangles returns the triangle count of the mesh.
func (g *Geometry) Triangles() int { return g.triangles }
