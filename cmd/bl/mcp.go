package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	blmcp "github.com/gorewood/bloglog/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run bl as a Model Context Protocol (MCP) server over stdio.

Agents can then log notes, wins, blockers and conversation summaries into
the current project's timeline, and read it back.

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "bloglog": {
        "command": "bl",
        "args": ["mcp"]
      }
    }
  }

Available tools: note, win, blocker, capture, timeline, metadata`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openProject()
			if err != nil {
				return err
			}
			server := blmcp.NewServer(buildVersion(), store)
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
