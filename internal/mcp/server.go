// Package mcp provides a Model Context Protocol server for bloglog.
// It exposes capture and timeline operations as tools, so an agent can
// record notes and wins into the same journal the CLI and web UI use.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/bloglog/internal/journal"
)

// NewServer creates an MCP server with all bloglog tools registered.
func NewServer(version string, store *journal.Store) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "bloglog",
		Version: version,
	}, nil)
	registerTools(server, store)
	return server
}

func boolPtr(b bool) *bool {
	return &b
}

func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// writeAnnotations marks append-only tools.
func writeAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		DestructiveHint: boolPtr(false),
		OpenWorldHint:   boolPtr(false),
	}
}

func registerTools(server *mcp.Server, store *journal.Store) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "note",
		Description: "Add a note to the development timeline.",
		Annotations: writeAnnotations(),
	}, handleText(store, journal.Note))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "win",
		Description: "Record a win: something that worked or shipped.",
		Annotations: writeAnnotations(),
	}, handleText(store, journal.Win))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "blocker",
		Description: "Record a blocker: something that is stopping progress.",
		Annotations: writeAnnotations(),
	}, handleText(store, journal.Blocker))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "capture",
		Description: "Capture a summary of an AI conversation, with optional tags.",
		Annotations: writeAnnotations(),
	}, handleCapture(store))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "timeline",
		Description: "List timeline entries oldest first. Filter by type, tags, a since cutoff (24h, 7d, 2026-01-17), or keep only the last N.",
		Annotations: readOnlyAnnotations(),
	}, handleTimeline(store))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "metadata",
		Description: "Show the project's name, problem, goals, success criteria and entry count.",
		Annotations: readOnlyAnnotations(),
	}, handleMetadata(store))
}
