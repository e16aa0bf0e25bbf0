package main

import (
	"fmt"

	"github.com/agavesunset/agave"
	"github.com/agavesunset/agave/internal/presentation/graph"
	"github.com/agavesunset/agave/pkg/workflow"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <snapshot>",
	Short: "Export a workflow snapshot as a Mermaid diagram",
	Long: `Reads a workflow snapshot (JSON/YAML with workflow and prompt) and outputs a
Mermaid diagram. Nodes from the catalogue are drawn as subroutines. With
--expr, the nodes the expression references are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := workflow.LoadFile(args[0])
		if err != nil {
			return err
		}

		overlay := &graph.GraphOverlay{Catalogue: agave.New().Registry().Classes()}
		if expression, _ := cmd.Flags().GetString("expr"); expression != "" {
			overlay.Referenced, err = graph.ReferencedNodes(snap, expression)
			if err != nil {
				return err
			}
		}
		if current, _ := cmd.Flags().GetString("current"); current != "" {
			overlay.Current = workflow.NodeID(current)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(snap, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("expr", "", "Highlight the nodes this expression references")
	graphCmd.Flags().String("current", "", "Highlight this node id as the evaluating node")
}
