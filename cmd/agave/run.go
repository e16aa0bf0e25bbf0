package main

import (
	"github.com/agavesunset/agave/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <class>",
	Short: "Execute a single node",
	Long: `Executes one node class the way the node editor would: missing widgets take
their defaults and inputs are validated against their socket types.

Inputs come from --inputs (JSON/YAML file, "-" for stdin) and --set overrides.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		rt, _, err := newRuntime(ctx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		inputs, _ := cmd.Flags().GetString("inputs")
		set, _ := cmd.Flags().GetStringArray("set")
		snapshot, _ := cmd.Flags().GetString("snapshot")
		uniqueID, _ := cmd.Flags().GetString("unique-id")
		jsonMode, _ := cmd.Flags().GetBool("json")

		return cli.RunNode(ctx, rt.Host, cli.RunOptions{
			Class:        args[0],
			InputsPath:   inputs,
			Set:          set,
			SnapshotPath: snapshot,
			UniqueID:     uniqueID,
			JSON:         jsonMode,
		}, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("inputs", "i", "", "Input values file (JSON/YAML object, - for stdin)")
	runCmd.Flags().StringArrayP("set", "s", nil, "Input value as name=value (repeatable)")
	runCmd.Flags().String("snapshot", "", "Workflow snapshot passed as hidden inputs")
	runCmd.Flags().String("unique-id", "", "Node id reported to hooks and logs")
	runCmd.Flags().Bool("json", false, "Print the output as JSON")
}
