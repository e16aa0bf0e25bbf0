package main

import (
	"fmt"
	"strings"

	"github.com/agavesunset/agave"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of agave",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "agave version %s\n", strings.TrimSpace(agave.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
