// Package mesh discovers level-of-detail mesh files and hands out shared
// geometry references.
//
// Mesh variants follow the filename convention "<category>_<N>T.obj" where
// category names the object kind ("neuron", "edge") and N is the triangle
// count of the mesh. The triangle count orders variants: more triangles
// means higher detail. Files that do not match the convention are ignored.
package mesh

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/strataviz/stratum/pkg/errors"
	"github.com/strataviz/stratum/pkg/scene"
)

// Object categories with a filename convention.
const (
	CategoryNeuron = "neuron"
	CategoryEdge   = "edge"
)

// Variant is one discovered mesh file.
type Variant struct {
	Path      string
	Triangles int
}

// Discover scans dir for mesh files of the given category and returns them
// ordered by descending triangle count (highest detail first). Filenames
// that do not match "<category>_<N>T.obj" are silently skipped.
func Discover(dir, category string) ([]Variant, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeDirNotFound, err, "mesh directory %s", dir)
		}
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(category) + `_([0-9]+)T\.obj$`)

	var variants []Variant
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := pattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		triangles, err := strconv.Atoi(m[1])
		if err != nil {
			continue // count overflows int; treat as malformed
		}
		variants = append(variants, Variant{
			Path:      filepath.Join(dir, e.Name()),
			Triangles: triangles,
		})
	}

	sort.Slice(variants, func(i, j int) bool {
		if variants[i].Triangles != variants[j].Triangles {
			return variants[i].Triangles > variants[j].Triangles
		}
		return variants[i].Path < variants[j].Path
	})

	return variants, nil
}

// Library deduplicates geometry handles by source path so that every node
// referencing the same mesh file shares one *scene.Geometry. The library
// never loads mesh data; handle resolution is the rendering engine's job.
//
// Library is not safe for concurrent use.
type Library struct {
	geoms map[string]*scene.Geometry
}

// NewLibrary creates an empty geometry library.
func NewLibrary() *Library {
	return &Library{geoms: make(map[string]*scene.Geometry)}
}

// Geometry returns the shared handle for a discovered variant, creating it
// on first use.
func (l *Library) Geometry(category string, v Variant) *scene.Geometry {
	if g, ok := l.geoms[v.Path]; ok {
		return g
	}
	name := fmt.Sprintf("%s_%dT", category, v.Triangles)
	g := scene.NewGeometry(name, v.Path, v.Triangles)
	l.geoms[v.Path] = g
	return g
}

// DetailLevels discovers the category's variants in dir and returns shared
// geometry handles ordered from highest detail to lowest.
func (l *Library) DetailLevels(dir, category string) ([]*scene.Geometry, error) {
	variants, err := Discover(dir, category)
	if err != nil {
		return nil, err
	}
	levels := make([]*scene.Geometry, len(variants))
	for i, v := range variants {
		levels[i] = l.Geometry(category, v)
	}
	return levels, nil
}

// Len returns the number of distinct geometries in the library.
func (l *Library) Len() int { return len(l.geoms) }
