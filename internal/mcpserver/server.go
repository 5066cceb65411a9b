// Package mcpserver exposes the engine as MCP tools over stdio.
//
// Each tool is a struct holding its dependencies, with Definition()
// returning the schema and Handle() serving calls. Engine errors become
// tool error results rather than protocol errors.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/felixgeelhaar/taskweave/internal/engine"
	"github.com/felixgeelhaar/taskweave/internal/log"
)

// Config selects the document the tools operate on.
type Config struct {
	// DocPath is the backlog document.
	DocPath string
	// Lock takes the document lock around writes.
	Lock bool
	// AdminToken, when set, must accompany the tools that write the
	// document: backlog_reorganize and backlog_insert_task.
	AdminToken string
	// Version is reported to MCP clients.
	Version string
}

// New creates the MCP server with every tool registered.
func New(e *engine.Engine, cfg Config, logger *log.Logger) *server.MCPServer {
	if logger == nil {
		logger = log.Discard()
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	s := server.NewMCPServer(
		"taskweave",
		cfg.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	reorganize := NewReorganizeTool(e, cfg, logger)
	s.AddTool(reorganize.Definition(), reorganize.Handle)

	preview := NewPreviewTool(e, cfg)
	s.AddTool(preview.Definition(), preview.Handle)

	insert := NewInsertTool(e, cfg, logger)
	s.AddTool(insert.Definition(), insert.Handle)

	return s
}

// Serve runs s on stdin/stdout until the client disconnects.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

const instructions = `taskweave keeps a backlog document's priority list organised.
Use backlog_preview to see how tasks would be clustered and ordered.
Use backlog_insert_task to add a task next to related work.
backlog_reorganize rewrites the whole priority list.
Both writing tools may require an admin token.`
