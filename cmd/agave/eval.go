package main

import (
	"github.com/agavesunset/agave/internal/cli"
	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate a math expression",
	Long: `Evaluates an expression with the same rules as the Math_AS node.

Bindings are passed with --set, e.g. --set a=3 --set 'b={samples: [1, 4, 64, 64]}'.
NodeName.widget references are resolved against --snapshot.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		rt, _, err := newRuntime(ctx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		set, _ := cmd.Flags().GetStringArray("set")
		snapshot, _ := cmd.Flags().GetString("snapshot")
		jsonMode, _ := cmd.Flags().GetBool("json")

		return cli.Evaluate(ctx, rt.Host, cli.EvalOptions{
			Expression:   args[0],
			Set:          set,
			SnapshotPath: snapshot,
			JSON:         jsonMode,
		}, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringArrayP("set", "s", nil, "Binding as name=value (repeatable)")
	evalCmd.Flags().String("snapshot", "", "Workflow snapshot (JSON/YAML with workflow and prompt)")
	evalCmd.Flags().Bool("json", false, "Print the result as JSON")
}
