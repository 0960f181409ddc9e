package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/strataviz/stratum/pkg/pipeline"
)

// previewCommand creates the preview command for rendering quick looks at a
// network without exporting the full scene.
func (c *CLI) previewCommand() *cobra.Command {
	var flags buildFlags
	var format string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render a quick preview of a network layout",
		Long: `Render a quick preview of a network layout.

Preview runs the full pipeline but writes only a single visual artifact:
an interactive HTML scatter plot of the neuron grid (default), an SVG
connectivity projection rendered with Graphviz, or the raw DOT source.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case pipeline.FormatHTML, pipeline.FormatSVG, pipeline.FormatDOT:
			default:
				return fmt.Errorf("invalid preview format: %q (must be 'html', 'svg' or 'dot')", format)
			}
			opts, err := flags.options(c)
			if err != nil {
				return err
			}
			opts.Formats = []string{format}
			return c.runPreview(cmd.Context(), opts, &flags, format)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatHTML, "preview format: html (default), svg, dot")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default: <input>.<format>)")

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, opts pipeline.Options, flags *buildFlags, format string) error {
	runner, err := c.newRunner(ctx, flags.noCache, flags.redisAddr)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering preview...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Preview failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := flags.output
	if outputPath == "" {
		outputPath = flags.inputName() + "." + format
	}
	if err := os.WriteFile(outputPath, result.Artifacts[format], 0644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Preview ready")
	printFile(outputPath)
	printStats(result.Stats.NeuronCount, result.Stats.EdgeCount, result.CacheInfo.AllHit())

	return nil
}
