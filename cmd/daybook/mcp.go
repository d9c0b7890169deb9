package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chaoscascade/daybook/pkg/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Daybook MCP server (stdio)",
	Long: `Start a Model Context Protocol (MCP) server that exposes record storage,
search, and the secure overwrite as MCP tools via STDIO.

The --db flag is optional. If not provided, a system-specific default location will be used:
- Windows: %USERPROFILE%\AppData\Roaming\daybook\daybook.db
- macOS: ~/Library/Application Support/daybook/daybook.db
- Linux: ~/.local/share/daybook/daybook.db

Set ` + mcp.SecondaryURLEnv + ` to a SurrealDB endpoint to route medical
categories to a secondary store; leave it unset on hosts without one.

Example:
  daybook mcp
  daybook mcp --db daybook.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := mcp.NewDaybookMCPServer(dbPath, walMode, syncMode, newLogger())
		if err != nil {
			return err
		}
		defer srv.Close()

		srv.RegisterAllTools()

		// Log to stderr so we don't contaminate the JSON-RPC stream on stdout.
		fmt.Fprintf(os.Stderr, "Daybook MCP server started. DB: %s (WAL: %t, Sync: %s)\n", srv.DbPath, walMode, syncMode)
		fmt.Fprintln(os.Stderr, "Available tools: ping, save_record, get_record, list_records, delete_record, search_tags, search_content, date_range, list_tags, secure_overwrite")
		fmt.Fprintln(os.Stderr, "Listening for MCP JSON-RPC on STDIN/STDOUT ... (Ctrl+C to quit)")

		// Run the server (blocks until stdio closes).
		return srv.Start()
	},
}
