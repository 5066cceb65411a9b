package mcpserver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskweave/internal/backlog"
	"github.com/felixgeelhaar/taskweave/internal/engine"
)

const backlogJSON = `{
  "tasks": [
    {"id": "UI-001", "title": "Preferences panel", "files_likely_modified": ["settings.py", "ui.py"]},
    {"id": "UI-002", "title": "Dark theme", "files_likely_modified": ["ui.py", "styles.css"]},
    {"id": "API-001", "title": "Login endpoint", "files_likely_modified": ["api_server.py", "auth.py"]}
  ],
  "priority_list": []
}
`

func setup(t *testing.T, token string) (Config, *engine.Engine) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backlog.json")
	require.NoError(t, os.WriteFile(path, []byte(backlogJSON), 0644))
	cfg := Config{DocPath: path, Lock: true, AdminToken: token, Version: "test"}
	return cfg, engine.New(engine.WithThreshold(0.2))
}

func makeReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(r *mcp.CallToolResult) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func loadDoc(t *testing.T, path string) *backlog.Document {
	t.Helper()
	doc, err := backlog.NewFileRepository().Load(path)
	require.NoError(t, err)
	return doc
}

func TestNew(t *testing.T) {
	cfg, e := setup(t, "")
	assert.NotNil(t, New(e, cfg, nil))
}

func TestDefinitions(t *testing.T) {
	cfg, e := setup(t, "")

	assert.Equal(t, "backlog_reorganize", NewReorganizeTool(e, cfg, nil).Definition().Name)
	assert.Equal(t, "backlog_preview", NewPreviewTool(e, cfg).Definition().Name)

	insert := NewInsertTool(e, cfg, nil).Definition()
	assert.Equal(t, "backlog_insert_task", insert.Name)
	assert.ElementsMatch(t, []string{"id", "title"}, insert.InputSchema.Required)
	assert.Contains(t, insert.InputSchema.Properties, "files")
}

func TestReorganizeTool(t *testing.T) {
	cfg, e := setup(t, "")

	res, err := NewReorganizeTool(e, cfg, nil).Handle(context.Background(), makeReq(nil))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(res))

	text := resultText(res)
	assert.Contains(t, text, "reorganize complete")
	assert.Contains(t, text, "Tasks: 3")
	assert.Contains(t, text, "Clusters: 2")
	assert.Contains(t, text, "UI Tasks [other] 2 task(s)")
	assert.Contains(t, text, "Priority list: updated")

	assert.Equal(t, []string{
		"=== API & Services (API) ===", "API-001 - Login endpoint",
		"=== UI & Polish (UI) ===", "UI-001 - Preferences panel", "UI-002 - Dark theme",
	}, loadDoc(t, cfg.DocPath).PriorityList)
}

func TestReorganizeToolAdminToken(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		wantErr bool
	}{
		{"missing token", nil, true},
		{"wrong token", map[string]any{"admin_token": "nope"}, true},
		{"valid token", map[string]any{"admin_token": "s3cret"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, e := setup(t, "s3cret")

			res, err := NewReorganizeTool(e, cfg, nil).Handle(context.Background(), makeReq(tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.wantErr, res.IsError)
			if tt.wantErr {
				assert.Contains(t, resultText(res), "unauthorized")
				assert.Empty(t, loadDoc(t, cfg.DocPath).PriorityList)
			}
		})
	}
}

func TestReorganizeToolDryRun(t *testing.T) {
	cfg, e := setup(t, "")

	res, err := NewReorganizeTool(e, cfg, nil).Handle(context.Background(), makeReq(map[string]any{"dry_run": true}))
	require.NoError(t, err)
	assert.Contains(t, resultText(res), "Priority list: not written")
	assert.Empty(t, loadDoc(t, cfg.DocPath).PriorityList)
}

func TestPreviewTool(t *testing.T) {
	cfg, e := setup(t, "")

	res, err := NewPreviewTool(e, cfg).Handle(context.Background(), makeReq(map[string]any{"show_list": true}))
	require.NoError(t, err)

	text := resultText(res)
	assert.Contains(t, text, "preview complete")
	assert.Contains(t, text, "+++ b/priority_list")
	assert.Contains(t, text, "+API-001 - Login endpoint")
	assert.Contains(t, text, "New priority list:")
	assert.Empty(t, loadDoc(t, cfg.DocPath).PriorityList)
}

func TestPreviewToolMissingDocument(t *testing.T) {
	cfg, e := setup(t, "")
	cfg.DocPath += ".missing"

	res, err := NewPreviewTool(e, cfg).Handle(context.Background(), makeReq(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "DOC-001")
}

func TestInsertTool(t *testing.T) {
	cfg, e := setup(t, "")

	res, err := NewInsertTool(e, cfg, nil).Handle(context.Background(), makeReq(map[string]any{
		"id":                  "UI-003",
		"title":               "Accent palette",
		"files":               "ui.py, styles.css",
		"acceptance_criteria": "palette applied; contrast checked",
		"priority":            true,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(res))
	assert.Contains(t, resultText(res), `Inserted UI-003: existing cluster "UI Tasks"`)

	doc := loadDoc(t, cfg.DocPath)
	require.Len(t, doc.Tasks, 4)
	assert.Equal(t, []string{"ui.py", "styles.css"}, doc.Tasks[3].FilesLikelyModified)
	assert.Equal(t, []string{"palette applied", "contrast checked"}, doc.Tasks[3].AcceptanceCriteria)
	assert.Equal(t, "UI-003 - Accent palette", doc.PriorityList[3])
}

func TestInsertToolValidation(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing id", map[string]any{"title": "x"}, "'id' is required"},
		{"missing title", map[string]any{"id": "X-1"}, "'title' is required"},
		{"duplicate", map[string]any{"id": "UI-001", "title": "again"}, "INSERT-001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, e := setup(t, "")

			res, err := NewInsertTool(e, cfg, nil).Handle(context.Background(), makeReq(tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(res), tt.want)
		})
	}
}

func TestInsertToolAdminToken(t *testing.T) {
	args := func(extra map[string]any) map[string]any {
		m := map[string]any{"id": "UI-003", "title": "Accent palette"}
		for k, v := range extra {
			m[k] = v
		}
		return m
	}

	tests := []struct {
		name    string
		args    map[string]any
		wantErr bool
	}{
		{"missing token", args(nil), true},
		{"wrong token", args(map[string]any{"admin_token": "nope"}), true},
		{"valid token", args(map[string]any{"admin_token": "s3cret"}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, e := setup(t, "s3cret")

			res, err := NewInsertTool(e, cfg, nil).Handle(context.Background(), makeReq(tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.wantErr, res.IsError, resultText(res))

			doc := loadDoc(t, cfg.DocPath)
			if tt.wantErr {
				assert.Contains(t, resultText(res), "unauthorized")
				assert.Len(t, doc.Tasks, 3)
				assert.Empty(t, doc.PriorityList)
			} else {
				assert.Len(t, doc.Tasks, 4)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ", ","))
	assert.Nil(t, splitList("", ","))
}
