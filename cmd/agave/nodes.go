package main

import (
	"fmt"

	"github.com/agavesunset/agave"
	"github.com/agavesunset/agave/internal/cli"
	"github.com/agavesunset/agave/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes [class]",
	Short: "List the node catalogue or describe one node",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		host := agave.New()
		out := cmd.OutOrStdout()

		if jsonMode, _ := cmd.Flags().GetBool("json"); jsonMode {
			info := host.ObjectInfo()
			if len(args) == 1 {
				entry, ok := info[args[0]]
				if !ok {
					return fmt.Errorf("unknown node class %q", args[0])
				}
				return cli.WriteJSON(out, map[string]any{args[0]: entry})
			}
			return cli.WriteJSON(out, info)
		}

		markdown := tui.CatalogMarkdown(host.Catalog())
		if len(args) == 1 {
			node, err := host.Registry().Lookup(args[0])
			if err != nil {
				return err
			}
			markdown = tui.NodeMarkdown(node.Spec())
		}

		render := tui.NewRenderer(tui.IsTerminal(out))
		rendered, err := render(markdown)
		if err != nil {
			return err
		}
		fmt.Fprint(out, rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(nodesCmd)
	nodesCmd.Flags().Bool("json", false, "Print object_info JSON instead of markdown")
}
