package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/aretw0/gaea/internal/cli"
	"github.com/aretw0/gaea/pkg/adapters/mcp"
	"github.com/aretw0/gaea/pkg/navigation"
	"github.com/aretw0/gaea/pkg/session"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes mounting, rendering, publishing and invoking as MCP tools so agents can drive previews.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		jumps := navigation.NewRecorder(100)
		a, err := setup(cli.EngineConfig{Navigator: jumps})
		if err != nil {
			return err
		}
		defer a.Close()

		mounts := session.NewManager(a.engine, session.WithLogger(a.logger))
		defer mounts.CloseAll(context.Background())

		srv := mcp.NewServer(a.engine, mounts, mcp.WithJumps(jumps), mcp.WithLogger(a.logger))

		switch transport {
		case "stdio":
			a.logger.Info("Starting Gaea MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			a.logger.Info("Starting Gaea MCP server (SSE)", "port", port)
			ctx := cli.NewSignalContext(context.Background())
			defer ctx.Cancel()
			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("MCP server failed: %w", err)
			}
			a.logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport %q, supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
