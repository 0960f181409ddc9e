package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strataviz/stratum/pkg/mesh"
)

// meshesCommand creates the meshes command for inspecting mesh directories.
func (c *CLI) meshesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "meshes [dir]",
		Short: "List discovered level-of-detail mesh variants",
		Long: `List discovered level-of-detail mesh variants.

Scans a directory for files matching the "<category>_<N>T.obj" naming
convention and prints the variants per category, ordered from highest
detail to lowest. Files that do not match the convention are ignored,
which is also how the build pipeline treats them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeshes(args[0])
		},
	}
}

func runMeshes(dir string) error {
	categories := []string{mesh.CategoryNeuron, mesh.CategoryEdge}

	total := 0
	for _, category := range categories {
		variants, err := mesh.Discover(dir, category)
		if err != nil {
			return err
		}
		if len(variants) == 0 {
			printWarning("no %s meshes in %s", category, dir)
			continue
		}

		printInfo("%s (%d variants)", category, len(variants))
		for _, v := range variants {
			printKeyValue(fmt.Sprintf("%dT", v.Triangles), v.Path)
		}
		total += len(variants)
	}

	if total > 0 {
		printNewline()
		printSuccess("%d mesh variants discovered", total)
	}
	return nil
}
