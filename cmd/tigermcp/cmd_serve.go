package main

import (
	"context"

	"github.com/spf13/cobra"

	"tigermcp/internal/logging"
	mcpserver "tigermcp/internal/mcp"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout. MCP clients launch this as a child
process and call the validation tools directly.

The server monitors for parent process death. When the client disconnects or
restarts, the server self-terminates to prevent zombie processes.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	inv, err := newInvoker()
	if err != nil {
		return err
	}
	srv := mcpserver.NewServer(inv)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mcpserver.WatchParent(ctx, cancel)

	logging.New("mcp").Info("starting ck3-tiger MCP server over stdio (parent watchdog active)",
		"tiger_path", cfg.TigerPath, "mods_base", cfg.ModsBase)
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
