package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/strataviz/stratum/pkg/export"
	"github.com/strataviz/stratum/pkg/pipeline"
)

// layoutCommand creates the layout command for computing bare neuron grids.
func (c *CLI) layoutCommand() *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute neuron positions without scene assembly",
		Long: `Compute neuron positions without scene assembly.

The layout command runs only the geometric stage of the pipeline: it places
every neuron on the xz-plane according to the spacing and alignment
parameters and writes the positions as JSON. Useful for inspecting a
network's footprint before committing to a full scene build.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(c)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), opts, &flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default: <input>.layout.json)")

	return cmd
}

// runLayout loads the source, computes the grid, and writes the output.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, flags *buildFlags) error {
	runner, err := c.newRunner(ctx, true, "")
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	src, err := runner.LoadSource(opts)
	if err != nil {
		return err
	}

	prog := newProgress(loggerFromContext(ctx))
	res, err := runner.ComputeLayout(ctx, src)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	prog.done(fmt.Sprintf("Positioned %d neurons", res.NeuronCount()))

	data, err := export.MarshalLayout(export.FromLayout(res))
	if err != nil {
		return err
	}

	outputPath := flags.output
	if outputPath == "" {
		outputPath = flags.inputName() + ".layout.json"
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printDetail("reference width: %.1f", res.ReferenceWidth)
	printNewline()
	printNextStep("Build", appName+" build "+flags.sourceFlag())

	return nil
}
