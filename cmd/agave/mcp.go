package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/agavesunset/agave/internal/cli"
	"github.com/agavesunset/agave/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the node catalogue as MCP tools: list_nodes, execute_node and
evaluate_expression.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		rt, cfg, err := newRuntime(ctx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if cmd.Flags().Changed("transport") {
			cfg.MCP.Transport, _ = cmd.Flags().GetString("transport")
		}
		if cmd.Flags().Changed("addr") {
			cfg.MCP.Addr, _ = cmd.Flags().GetString("addr")
		}

		srv := mcp.NewServer(rt.Host)
		switch cfg.MCP.Transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			rt.Logger.Info("Starting Agave MCP Server (Stdio)...")
			return srv.ServeStdio()
		case "sse":
			rt.Logger.Info("Starting Agave MCP Server (SSE)", "addr", cfg.MCP.Addr)
			if err := srv.ServeSSE(ctx, cfg.MCP.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			rt.Logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", cfg.MCP.Transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", "", "Address to listen on (only for SSE, default :8081)")
}
