package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strataviz/stratum/pkg/pipeline"
)

// buildFlags holds the command-line flags shared by the build and preview
// commands.
type buildFlags struct {
	spec      string
	model     string
	layers    string
	meshes    string
	alignment string

	neuronSpacing float64
	layerSpacing  float64
	crossSection  float64
	lodFirstFar   float64
	lodRatio      float64

	name      string
	output    string
	noCache   bool
	redisAddr string
	refresh   bool
}

func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.spec, "spec", "", "TOML network spec file")
	cmd.Flags().StringVar(&f.model, "model", "", "saved model file (JSON)")
	cmd.Flags().StringVar(&f.layers, "layers", "", "explicit layer counts, comma-separated (e.g. 4,6,6,2)")
	cmd.Flags().StringVar(&f.meshes, "meshes", "", "directory with neuron_*T.obj / edge_*T.obj mesh variants")
	cmd.Flags().StringVar(&f.alignment, "alignment", "", "layer alignment: center (default), justified")
	cmd.Flags().Float64Var(&f.neuronSpacing, "neuron-spacing", 0, "gap between neurons within a layer")
	cmd.Flags().Float64Var(&f.layerSpacing, "layer-spacing", 0, "gap between adjacent layers")
	cmd.Flags().Float64Var(&f.crossSection, "cross-section", 0, "edge cross-section scale")
	cmd.Flags().Float64Var(&f.lodFirstFar, "lod-first-far", 0, "far bound of the most detailed LOD range")
	cmd.Flags().Float64Var(&f.lodRatio, "lod-ratio", 0, "growth ratio between consecutive LOD ranges")
	cmd.Flags().StringVar(&f.name, "name", "", "display name embedded in the scene")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable artifact caching")
	cmd.Flags().StringVar(&f.redisAddr, "redis", "", "redis address for a shared artifact cache (host:port)")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute artifacts even when cached")
}

// options converts the flags to pipeline options.
func (f *buildFlags) options(c *CLI) (pipeline.Options, error) {
	layers, err := parseLayers(f.layers)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		SpecPath:         f.spec,
		ModelPath:        f.model,
		Layers:           layers,
		MeshDir:          f.meshes,
		Alignment:        f.alignment,
		NeuronSpacing:    f.neuronSpacing,
		LayerSpacing:     f.layerSpacing,
		EdgeCrossSection: f.crossSection,
		LODFirstFar:      f.lodFirstFar,
		LODRatio:         f.lodRatio,
		Name:             f.name,
		Refresh:          f.refresh,
		Logger:           c.Logger,
	}, nil
}

// sourceFlag reconstructs the source flag for suggested follow-up commands.
func (f *buildFlags) sourceFlag() string {
	switch {
	case f.spec != "":
		return "--spec " + f.spec
	case f.model != "":
		return "--model " + f.model
	default:
		return "--layers " + f.layers
	}
}

// inputName returns the flag value naming the network, for output paths.
func (f *buildFlags) inputName() string {
	switch {
	case f.spec != "":
		return strings.TrimSuffix(filepath.Base(f.spec), filepath.Ext(f.spec))
	case f.model != "":
		return strings.TrimSuffix(filepath.Base(f.model), filepath.Ext(f.model))
	default:
		return "network"
	}
}

// buildCommand creates the build command for assembling scenes.
func (c *CLI) buildCommand() *cobra.Command {
	var flags buildFlags
	var formatsStr string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Assemble a 3D scene from a network topology",
		Long: `Assemble a 3D scene from a network topology.

The topology comes from one of three sources: a TOML spec file (--spec),
a saved model file (--model), or explicit layer counts (--layers). The
resulting scene description contains every neuron and edge node with its
transform and level-of-detail assignments.

Output formats: json (scene description), dot (connectivity projection),
svg (rendered projection), html (interactive layout preview).

Rendered dot and svg artifacts are cached locally for faster subsequent runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(c)
			if err != nil {
				return err
			}
			opts.Formats = parseFormats(formatsStr)
			return c.runBuild(cmd.Context(), opts, &flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), dot, svg, html (comma-separated)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")

	return cmd
}

// runBuild executes the pipeline and writes all requested artifacts.
func (c *CLI) runBuild(ctx context.Context, opts pipeline.Options, flags *buildFlags) error {
	runner, err := c.newRunner(ctx, flags.noCache, flags.redisAddr)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Assembling scene...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Build failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := flags.output
	if base == "" {
		base = flags.inputName()
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))

	printSuccess("Scene assembled")
	for _, format := range opts.Formats {
		path := base + "." + format
		if len(opts.Formats) == 1 && flags.output != "" {
			path = flags.output
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(result.Stats.NeuronCount, result.Stats.EdgeCount, result.CacheInfo.AllHit())
	printNewline()
	printNextStep("Serve", appName+" serve "+flags.sourceFlag())

	return nil
}
