package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/strataviz/stratum/pkg/cache"
	"github.com/strataviz/stratum/pkg/export"
	"github.com/strataviz/stratum/pkg/layout"
	"github.com/strataviz/stratum/pkg/mesh"
	"github.com/strataviz/stratum/pkg/observability"
	"github.com/strataviz/stratum/pkg/source"
	"github.com/strataviz/stratum/pkg/source/manual"
	"github.com/strataviz/stratum/pkg/source/model"
	"github.com/strataviz/stratum/pkg/stratum"
	"github.com/strataviz/stratum/pkg/topology"
)

// cacheableFormats marks artifacts worth caching. Graphviz rendering
// dominates pipeline time; the JSON and HTML exports are cheap string
// assembly and carry the per-run build ID, so they are always rebuilt.
var cacheableFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
}

// Runner encapsulates pipeline execution with artifact caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Execute runs the complete load → layout → assemble → export pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
		CacheInfo: CacheInfo{ArtifactHits: make(map[string]bool)},
	}

	// Stage 1: Load
	loadStart := time.Now()
	src, err := r.LoadSource(opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = time.Since(loadStart)

	r.Logger.Info("loaded topology",
		"layers", src.LayerCount(),
		"duration", result.Stats.LoadTime)

	// Stage 2 + 3: Layout and assembly
	assembleStart := time.Now()
	s, err := r.Assemble(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = s.Layout()
	result.Stats.AssembleTime = time.Since(assembleStart)
	result.Stats.NeuronCount = s.NeuronCount()
	result.Stats.EdgeCount = s.EdgeCount()

	r.Logger.Info("assembled scene",
		"neurons", result.Stats.NeuronCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.AssembleTime)

	result.Scene = export.FromStratum(s, opts.Name)

	// Stage 4: Export
	exportStart := time.Now()
	artifacts, hits, err := r.ExportArtifacts(ctx, src, result.Scene, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.CacheInfo.ArtifactHits = hits
	result.Stats.ExportTime = time.Since(exportStart)

	r.Logger.Info("exported artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// LoadSource builds a topology source from the configured input. Layout
// overrides from the options win over values carried by a spec file.
func (r *Runner) LoadSource(opts Options) (topology.Source, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	lib := mesh.NewLibrary()

	switch {
	case opts.SpecPath != "":
		sp, err := manual.LoadSpec(opts.SpecPath)
		if err != nil {
			return nil, err
		}
		if opts.Alignment != "" {
			sp.Network.Alignment = opts.Alignment
		}
		if opts.NeuronSpacing > 0 {
			sp.Network.NeuronSpacing = opts.NeuronSpacing
		}
		if opts.LayerSpacing > 0 {
			sp.Network.LayerSpacing = opts.LayerSpacing
		}
		if opts.MeshDir != "" {
			sp.Meshes.Dir = opts.MeshDir
		}
		return sp.Source(lib)

	case opts.ModelPath != "":
		m, err := model.Load(opts.ModelPath)
		if err != nil {
			return nil, err
		}
		params, err := opts.sourceParams(lib)
		if err != nil {
			return nil, err
		}
		return model.New(m, params)

	default:
		params, err := opts.sourceParams(lib)
		if err != nil {
			return nil, err
		}
		return manual.New(opts.Layers, manual.WithParams(params))
	}
}

// sourceParams builds layout parameters from the option overrides, with
// mesh detail levels resolved when a mesh directory is configured.
func (o *Options) sourceParams(lib *mesh.Library) (source.Params, error) {
	p := source.Params{
		NeuronSpacing: o.NeuronSpacing,
		LayerSpacing:  o.LayerSpacing,
	}

	if o.Alignment != "" {
		a, err := topology.ParseAlignment(o.Alignment)
		if err != nil {
			return source.Params{}, err
		}
		p.Alignment = a
	}

	if o.MeshDir != "" {
		var err error
		if p.NeuronLevels, err = lib.DetailLevels(o.MeshDir, mesh.CategoryNeuron); err != nil {
			return source.Params{}, err
		}
		if p.EdgeLevels, err = lib.DetailLevels(o.MeshDir, mesh.CategoryEdge); err != nil {
			return source.Params{}, err
		}
	}

	return p, nil
}

// ComputeLayout computes the bare neuron grid without assembling a scene.
// Used by callers that only need positions.
func (r *Runner) ComputeLayout(ctx context.Context, src topology.Source) (*layout.Result, error) {
	observability.Pipeline().OnLayoutStart(ctx, src.LayerCount())

	start := time.Now()
	res, err := layout.Compute(layout.FromSource(src))

	total := 0
	if res != nil {
		total = res.NeuronCount()
	}
	observability.Pipeline().OnLayoutComplete(ctx, total, time.Since(start), err)

	return res, err
}

// Assemble builds the scene graph for a topology source.
func (r *Runner) Assemble(ctx context.Context, src topology.Source, opts Options) (*stratum.Stratum, error) {
	r.applyLogger(&opts)
	observability.Pipeline().OnAssembleStart(ctx, src.LayerCount())

	start := time.Now()
	s := stratum.New(src, opts.StratumOptions()...)
	err := s.Build()

	observability.Pipeline().OnAssembleComplete(ctx, s.NeuronCount(), s.EdgeCount(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ExportArtifacts renders the requested formats, consulting the artifact
// cache where the format is deterministic enough to cache. The returned
// map records per-format cache hits.
func (r *Runner) ExportArtifacts(ctx context.Context, src topology.Source, sc export.Scene, opts Options) (map[string][]byte, map[string]bool, error) {
	opts.SetExportDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, nil, err
	}

	observability.Pipeline().OnExportStart(ctx, opts.Formats)
	start := time.Now()

	fp := r.fingerprint(src, sc, opts)
	artifacts := make(map[string][]byte, len(opts.Formats))
	hits := make(map[string]bool, len(opts.Formats))

	var exportErr error
	for _, format := range opts.Formats {
		key := cache.Key("artifact", fp, format)

		if cacheableFormats[format] && !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, format)
				artifacts[format] = data
				hits[format] = true
				continue
			}
			observability.Cache().OnCacheMiss(ctx, format)
		}

		data, err := renderFormat(sc, format)
		if err != nil {
			exportErr = err
			break
		}
		artifacts[format] = data
		hits[format] = false

		if cacheableFormats[format] {
			if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
				observability.Cache().OnCacheSet(ctx, format, len(data))
			}
		}
	}

	observability.Pipeline().OnExportComplete(ctx, opts.Formats, time.Since(start), exportErr)
	if exportErr != nil {
		return nil, nil, exportErr
	}
	return artifacts, hits, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func renderFormat(sc export.Scene, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return export.MarshalScene(sc)
	case FormatDOT:
		return []byte(export.ToDOT(sc)), nil
	case FormatSVG:
		return export.RenderSVG(export.ToDOT(sc))
	case FormatHTML:
		return export.PreviewHTML(sc)
	default:
		return nil, ValidateFormat(format)
	}
}

// fingerprint derives a cache key component from everything that shapes the
// exported artifacts: topology counts and edge set, layout parameters,
// detail levels, and assembly options. The edge tags come from the
// assembled scene because counts alone do not pin down connectivity
// (sources with identical counts can wire different edges).
func (r *Runner) fingerprint(src topology.Source, sc export.Scene, opts Options) string {
	dims := src.NeuronDimensions()

	var levels []string
	for _, g := range src.NeuronDetailLevels() {
		levels = append(levels, "n:"+g.Name())
	}
	for _, g := range src.EdgeDetailLevels() {
		levels = append(levels, "e:"+g.Name())
	}

	edges := make([]string, len(sc.Edges))
	for i, e := range sc.Edges {
		edges[i] = e.Tag
	}

	return cache.Key("scene",
		topology.Counts(src),
		edges,
		src.LayerAlignment().String(),
		src.NeuronSpacing(),
		src.LayerSpacing(),
		[3]float64{dims.X, dims.Y, dims.Z},
		levels,
		opts.LODPolicy(),
		opts.EdgeCrossSection,
	)
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
