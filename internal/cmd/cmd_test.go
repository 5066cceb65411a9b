package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/taskweave/internal/backlog"
	"github.com/felixgeelhaar/taskweave/internal/engine"
	"github.com/felixgeelhaar/taskweave/internal/errors"
)

const scenarioJSON = `{
  "tasks": [
    {"id": "UI-001", "title": "Preferences panel", "files_likely_modified": ["settings.py", "ui.py"]},
    {"id": "UI-002", "title": "Dark theme", "files_likely_modified": ["ui.py", "styles.css"]},
    {"id": "API-001", "title": "Login endpoint", "files_likely_modified": ["api_server.py", "auth.py"]},
    {"id": "API-002", "title": "Throttle requests", "files_likely_modified": ["api_server.py", "rate_limiter.py"]},
    {"id": "SEC-001", "title": "Escape user input", "files_likely_modified": ["api_server.py", "sanitizer.py"]}
  ],
  "priority_list": []
}
`

// setupHome isolates the test from any real ~/.taskweave and returns a
// scenario document path.
func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, "backlog.json")
	require.NoError(t, os.WriteFile(path, []byte(scenarioJSON), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func loadDoc(t *testing.T, path string) *backlog.Document {
	t.Helper()
	doc, err := backlog.NewFileRepository().Load(path)
	require.NoError(t, err)
	return doc
}

func TestVersion(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "taskweave dev\n", out)

	out, _, err = run(t, "version", "-o", "json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info["version"])
}

func TestReorganize(t *testing.T) {
	path := setupHome(t)

	out, _, err := run(t, "reorganize", "--doc", path, "--threshold", "0.2", "--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "Reorganized "+path)
	assert.Contains(t, out, "UI Tasks")
	assert.Contains(t, out, "Priority list updated (+8 -0)")

	doc := loadDoc(t, path)
	require.Len(t, doc.PriorityList, 8)
	assert.Equal(t, "=== Security (SEC) ===", doc.PriorityList[0])
	assert.FileExists(t, path+".lock")
}

func TestReorganizeDryRun(t *testing.T) {
	path := setupHome(t)

	out, _, err := run(t, "reorganize", "--doc", path, "--threshold", "0.2", "--dry-run", "--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "Dry run of "+path)
	assert.Contains(t, out, "Priority list not written (+8 -0)")
	assert.Contains(t, out, "+ === Security (SEC) ===")
	assert.Empty(t, loadDoc(t, path).PriorityList)
}

func TestReorganizeJSON(t *testing.T) {
	path := setupHome(t)

	out, _, err := run(t, "reorganize", "--doc", path, "--threshold", "0.2", "-o", "json")
	require.NoError(t, err)

	var report engine.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 5, report.TaskCount)
	assert.Equal(t, []int{2, 2, 1}, report.ClusterSizes())
	assert.True(t, report.Applied)
}

func TestReorganizeMissingDocument(t *testing.T) {
	setupHome(t)

	_, _, err := run(t, "reorganize", "--doc", filepath.Join(t.TempDir(), "none.json"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDocNotFound, errors.CodeOf(err))
}

func TestUnknownFormat(t *testing.T) {
	path := setupHome(t)

	_, _, err := run(t, "clusters", "--doc", path, "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestClustersFromEnvironment(t *testing.T) {
	path := setupHome(t)
	t.Setenv("TASKWEAVE_DOCUMENT_PATH", path)
	t.Setenv("TASKWEAVE_CLUSTER_SIMILARITY_THRESHOLD", "0.2")

	out, _, err := run(t, "clusters", "--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "1. UI Tasks (other)")
	assert.Contains(t, out, "   UI-002")
	assert.Contains(t, out, "3. SEC Tasks (other)")
	assert.Empty(t, loadDoc(t, path).PriorityList)
}

func TestInsert(t *testing.T) {
	path := setupHome(t)

	out, _, err := run(t, "insert", "--doc", path, "--threshold", "0.2", "--no-color",
		"--id", "UI-003", "--title", "Accent palette",
		"--files", "ui.py,styles.css",
		"--criteria", "palette applied, contrast checked",
		"--priority")
	require.NoError(t, err)
	assert.Contains(t, out, "UI-003 -> UI Tasks (existing, score 0.40)")

	doc := loadDoc(t, path)
	require.Len(t, doc.Tasks, 6)
	assert.Equal(t, []string{"palette applied, contrast checked"}, doc.Tasks[5].AcceptanceCriteria)
	assert.Equal(t, "UI-003 - Accent palette", doc.PriorityList[6])
}

func TestInsertRequiresFlags(t *testing.T) {
	path := setupHome(t)

	_, _, err := run(t, "insert", "--doc", path, "--id", "UI-003")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")
}

func TestInsertDuplicate(t *testing.T) {
	path := setupHome(t)

	_, _, err := run(t, "insert", "--doc", path, "--id", "UI-001", "--title", "again")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInsertInvalid, errors.CodeOf(err))
}

func TestHints(t *testing.T) {
	path := setupHome(t)

	out, _, err := run(t, "hints", "SEC-001", "--doc", path, "-o", "json")
	require.NoError(t, err)

	var res hintsResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "SEC-001", res.TaskID)
	assert.Equal(t, []string{"api_server.py", "sanitizer.py", "security.py"}, res.Files)

	_, _, err = run(t, "hints", "SEC-999", "--doc", path)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeTaskNotFound, errors.CodeOf(err))
}

func TestConfigView(t *testing.T) {
	setupHome(t)
	file := filepath.Join(t.TempDir(), "taskweave.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
document:
  path: tasks.yaml
embed:
  provider: openai/text-embedding-3-small
  api_key: sk-secret
mcp:
  admin_token: hunter2
`), 0644))

	out, _, err := run(t, "config", "view", "--config", file, "-o", "yaml")
	require.NoError(t, err)
	assert.NotContains(t, out, "sk-secret")
	assert.NotContains(t, out, "hunter2")

	var cfg map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "tasks.yaml", cfg["document"].(map[string]any)["path"])

	out, _, err = run(t, "config", "view", "--config", file, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "# source: "+file)
	assert.Contains(t, out, "provider: openai/text-embedding-3-small")
}

func TestConfigInvalid(t *testing.T) {
	setupHome(t)
	file := filepath.Join(t.TempDir(), "taskweave.yaml")
	require.NoError(t, os.WriteFile(file, []byte("cluster:\n  similarity_threshold: 3\n"), 0644))

	_, _, err := run(t, "config", "view", "--config", file)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.CodeOf(err))

	_, _, err = run(t, "config", "view", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.CodeOf(err))
}

func TestConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	out, _, err := run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".taskweave", "config.yaml")+"\n", out)

	out, _, err = run(t, "config", "path", "--config", "/etc/taskweave.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/etc/taskweave.yaml\n", out)
}

func TestLogsGoToStderr(t *testing.T) {
	path := setupHome(t)

	out, errOut, err := run(t, "reorganize", "--doc", path, "--log-level", "debug", "--log-format", "json", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, errOut, `"msg":"run complete"`)
	assert.NotContains(t, out, "run complete")
}

func TestSetupRuntimeMetrics(t *testing.T) {
	tests := []struct {
		name        string
		annotations map[string]string
		env         string
		want        bool
	}{
		{"short-lived command", nil, "", false},
		{"long-running command", map[string]string{runtimeMetrics: "true"}, "", true},
		{"enabled in config", nil, "true", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupHome(t)
			if tt.env != "" {
				t.Setenv("TASKWEAVE_TELEMETRY_RUNTIME_METRICS", tt.env)
			}

			a := &app{}
			cmd := &cobra.Command{Use: "work", Annotations: tt.annotations}
			cmd.SetContext(context.Background())
			cmd.SetErr(io.Discard)

			require.NoError(t, a.setup(cmd, nil))
			assert.Equal(t, tt.want, a.telemetry.RuntimeMetrics())
			require.NoError(t, a.teardown(context.Background()))
		})
	}
}
