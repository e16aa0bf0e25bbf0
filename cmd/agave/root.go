package main

import (
	"context"
	"fmt"
	"os"

	"github.com/agavesunset/agave/internal/cli"
	"github.com/agavesunset/agave/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "agave",
	Short:         "Agave runs AgaveSunset nodes and math expressions outside the node editor",
	Long:          `Agave hosts the AgaveSunset node catalogue. It evaluates expressions, executes single nodes and serves them over HTTP or MCP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().String("cache", "", "Result cache: none, memory or redis")
}

// loadConfig reads the configuration file and environment, then applies
// the persistent flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	overrides := map[string]*string{
		"log-level":  &cfg.Log.Level,
		"log-format": &cfg.Log.Format,
		"cache":      &cfg.Cache.Mode,
	}
	for flag, dst := range overrides {
		if cmd.Flags().Changed(flag) {
			*dst, _ = cmd.Flags().GetString(flag)
		}
	}
	return cfg, cfg.Validate()
}

// newRuntime builds the host for a command.
func newRuntime(ctx context.Context, cmd *cobra.Command) (*cli.Runtime, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	logger, err := cli.NewLogger(cfg.Log)
	if err != nil {
		return nil, cfg, err
	}
	rt, err := cli.NewRuntime(ctx, cfg, logger)
	return rt, cfg, err
}
