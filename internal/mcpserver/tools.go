package mcpserver

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/felixgeelhaar/taskweave/internal/backlog"
	"github.com/felixgeelhaar/taskweave/internal/engine"
	"github.com/felixgeelhaar/taskweave/internal/log"
)

// ReorganizeTool handles backlog_reorganize.
type ReorganizeTool struct {
	engine *engine.Engine
	cfg    Config
	logger *log.Logger
}

// NewReorganizeTool creates a ReorganizeTool.
func NewReorganizeTool(e *engine.Engine, cfg Config, logger *log.Logger) *ReorganizeTool {
	if logger == nil {
		logger = log.Discard()
	}
	return &ReorganizeTool{engine: e, cfg: cfg, logger: logger}
}

// Definition returns the tool schema.
func (t *ReorganizeTool) Definition() mcp.Tool {
	return mcp.NewTool("backlog_reorganize",
		mcp.WithDescription(
			"Recluster every task in the backlog, order the clusters by dependencies and build phase, "+
				"and rewrite the priority list. Only the priority list changes.",
		),
		mcp.WithString("admin_token",
			mcp.Description("Admin token, required when the server is configured with one"),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Compute the new priority list without writing it (default: false)"),
		),
	)
}

// Handle processes a backlog_reorganize call.
func (t *ReorganizeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !t.cfg.authorized(req.GetString("admin_token", "")) {
		t.logger.Warn("rejected backlog_reorganize call", "reason", "bad admin token")
		return mcp.NewToolResultError("unauthorized: backlog_reorganize requires a valid admin_token"), nil
	}

	report, err := t.engine.ReorganizeFile(ctx, t.cfg.DocPath, engine.FileOptions{
		Lock:   t.cfg.Lock,
		DryRun: boolArg(req, "dry_run", false),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reorganize failed: %v", err)), nil
	}
	return mcp.NewToolResultText(Summary(report)), nil
}

// authorized checks the admin token guarding tools that write the document.
func (c Config) authorized(token string) bool {
	if c.AdminToken == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(c.AdminToken)) == 1
}

// PreviewTool handles backlog_preview.
type PreviewTool struct {
	engine *engine.Engine
	cfg    Config
}

// NewPreviewTool creates a PreviewTool.
func NewPreviewTool(e *engine.Engine, cfg Config) *PreviewTool {
	return &PreviewTool{engine: e, cfg: cfg}
}

// Definition returns the tool schema.
func (t *PreviewTool) Definition() mcp.Tool {
	return mcp.NewTool("backlog_preview",
		mcp.WithDescription("Show the clusters, their order and the priority list diff a reorganize would produce, without writing anything."),
		mcp.WithBoolean("show_list",
			mcp.Description("Include the full new priority list (default: false)"),
		),
	)
}

// Handle processes a backlog_preview call.
func (t *PreviewTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := t.engine.PreviewFile(ctx, t.cfg.DocPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("preview failed: %v", err)), nil
	}

	var b strings.Builder
	b.WriteString(Summary(report))
	if diff := report.Diff(); !diff.IsEmpty() {
		b.WriteString("\n")
		b.WriteString(diff.Unified())
	}
	if boolArg(req, "show_list", false) {
		b.WriteString("\nNew priority list:\n")
		for _, line := range report.NewPriorityList {
			b.WriteString("  " + line + "\n")
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

// InsertTool handles backlog_insert_task.
type InsertTool struct {
	engine *engine.Engine
	cfg    Config
	logger *log.Logger
}

// NewInsertTool creates an InsertTool.
func NewInsertTool(e *engine.Engine, cfg Config, logger *log.Logger) *InsertTool {
	if logger == nil {
		logger = log.Discard()
	}
	return &InsertTool{engine: e, cfg: cfg, logger: logger}
}

// Definition returns the tool schema.
func (t *InsertTool) Definition() mcp.Tool {
	return mcp.NewTool("backlog_insert_task",
		mcp.WithDescription(
			"Add a task to the backlog, placing it in the most similar cluster or a new one, "+
				"and rewrite the priority list.",
		),
		mcp.WithString("admin_token",
			mcp.Description("Admin token, required when the server is configured with one"),
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Task id such as 'SEC-004'. The part before the first hyphen selects the priority section."),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short task title"),
		),
		mcp.WithString("description",
			mcp.Description("Longer description"),
		),
		mcp.WithString("category",
			mcp.Description("Free-form category, e.g. 'Security'"),
		),
		mcp.WithString("files",
			mcp.Description("Comma-separated files the task likely modifies"),
		),
		mcp.WithString("acceptance_criteria",
			mcp.Description("Acceptance criteria separated by ';'"),
		),
		mcp.WithString("depends_on",
			mcp.Description("Comma-separated ids this task depends on"),
		),
		mcp.WithBoolean("priority",
			mcp.Description("Put the task at the front of its cluster (default: false)"),
		),
	)
}

// Handle processes a backlog_insert_task call.
func (t *InsertTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !t.cfg.authorized(req.GetString("admin_token", "")) {
		t.logger.Warn("rejected backlog_insert_task call", "reason", "bad admin token")
		return mcp.NewToolResultError("unauthorized: backlog_insert_task requires a valid admin_token"), nil
	}

	task := backlog.Task{
		ID:                  strings.TrimSpace(req.GetString("id", "")),
		Title:               strings.TrimSpace(req.GetString("title", "")),
		Description:         req.GetString("description", ""),
		Category:            req.GetString("category", ""),
		FilesLikelyModified: splitList(req.GetString("files", ""), ","),
		AcceptanceCriteria:  splitList(req.GetString("acceptance_criteria", ""), ";"),
		DependsOn:           splitList(req.GetString("depends_on", ""), ","),
	}
	if task.ID == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	if task.Title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}

	report, err := t.engine.InsertFile(ctx, t.cfg.DocPath, task, boolArg(req, "priority", false), engine.FileOptions{Lock: t.cfg.Lock})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("insert failed: %v", err)), nil
	}
	return mcp.NewToolResultText(Summary(report)), nil
}

// boolArg reads a boolean argument, falling back to def.
func boolArg(req mcp.CallToolRequest, key string, def bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return def
	}
	return v
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
