// Package pipeline provides the core scene-construction pipeline for Stratum.
//
// This package implements the complete load → layout → assemble → export
// pipeline that can be used by CLI and server components. By centralizing
// this logic, we ensure consistent behavior across all entry points and
// avoid code duplication.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: Build a topology source from a TOML spec, a model file, or
//     explicit layer counts
//  2. Layout: Compute the 3D neuron grid
//  3. Assemble: Build the scene graph with level-of-detail nodes
//  4. Export: Generate output in various formats (JSON, DOT, SVG, HTML)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, logger)
//	opts := pipeline.Options{
//	    SpecPath: "network.toml",
//	    MeshDir:  "meshes/",
//	    Formats:  []string{"json", "svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	data := result.Artifacts["json"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/strataviz/stratum/pkg/errors"
	"github.com/strataviz/stratum/pkg/export"
	"github.com/strataviz/stratum/pkg/layout"
	"github.com/strataviz/stratum/pkg/lod"
	"github.com/strataviz/stratum/pkg/stratum"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatHTML = "html"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatHTML: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the scene-construction pipeline.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Source options. Exactly one of SpecPath, ModelPath, or Layers must
	// be set.
	SpecPath  string `json:"spec_path,omitempty"`
	ModelPath string `json:"model_path,omitempty"`
	Layers    []int  `json:"layers,omitempty"`

	// MeshDir is the directory scanned for neuron and edge geometry
	// variants. When empty, nodes are positioned without geometry.
	MeshDir string `json:"mesh_dir,omitempty"`

	// Layout overrides. Zero values defer to the source (and its own
	// defaults). Alignment must be "center" or "justified" when set.
	Alignment     string  `json:"alignment,omitempty"`
	NeuronSpacing float64 `json:"neuron_spacing,omitempty"`
	LayerSpacing  float64 `json:"layer_spacing,omitempty"`

	// Assembly options.
	EdgeCrossSection float64 `json:"edge_cross_section,omitempty"`
	LODFirstFar      float64 `json:"lod_first_far,omitempty"`
	LODRatio         float64 `json:"lod_ratio,omitempty"`

	// Export options.
	Name    string   `json:"name,omitempty"`
	Formats []string `json:"formats,omitempty"`
	Refresh bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Scene is the serialized scene built from the assembled stratum.
	Scene export.Scene

	// Layout contains the computed neuron grid.
	Layout *layout.Result

	// Artifacts contains exported outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which artifacts hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NeuronCount  int
	EdgeCount    int
	LoadTime     time.Duration
	AssembleTime time.Duration
	ExportTime   time.Duration
}

// CacheInfo tracks cache hits for exported artifacts.
type CacheInfo struct {
	// ArtifactHits records, per format, whether the artifact came from
	// the cache.
	ArtifactHits map[string]bool
}

// AllHit reports whether every requested artifact came from the cache.
func (c CacheInfo) AllHit() bool {
	if len(c.ArtifactHits) == 0 {
		return false
	}
	for _, hit := range c.ArtifactHits {
		if !hit {
			return false
		}
	}
	return true
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: json, dot, svg, html)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	o.SetExportDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := o.LODPolicy().Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for source loading.
func (o *Options) ValidateForLoad() error {
	sources := 0
	if o.SpecPath != "" {
		sources++
	}
	if o.ModelPath != "" {
		sources++
	}
	if len(o.Layers) > 0 {
		sources++
	}
	if sources == 0 {
		return errors.New(errors.ErrCodeInvalidSpec,
			"a spec file, model file, or layer counts are required")
	}
	if sources > 1 {
		return errors.New(errors.ErrCodeInvalidSpec,
			"spec file, model file, and layer counts are mutually exclusive")
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// SetExportDefaults sets default values for artifact export.
func (o *Options) SetExportDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LODPolicy returns the level-of-detail policy described by the options,
// falling back to the defaults for unset fields.
func (o *Options) LODPolicy() lod.Policy {
	p := lod.DefaultPolicy
	if o.LODFirstFar > 0 {
		p.FirstFar = o.LODFirstFar
	}
	if o.LODRatio > 0 {
		p.Ratio = o.LODRatio
	}
	return p
}

// StratumOptions returns the assembly options described by the options.
func (o *Options) StratumOptions() []stratum.Option {
	out := []stratum.Option{stratum.WithLODPolicy(o.LODPolicy())}
	if o.EdgeCrossSection > 0 {
		out = append(out, stratum.WithEdgeCrossSection(o.EdgeCrossSection))
	}
	if o.Logger != nil {
		out = append(out, stratum.WithLogger(o.Logger))
	}
	return out
}
