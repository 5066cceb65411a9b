package backlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskweave/internal/errors"
)

func TestFileRepositoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backlog.json")
	require.NoError(t, os.WriteFile(path, []byte(jsonDoc), 0600))

	repo := NewFileRepository()
	doc, err := repo.Load(path)
	require.NoError(t, err)

	doc.SetPriorityList([]string{"SEC-001 - Sanitize"})
	require.NoError(t, repo.Save(doc, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "existing permissions are kept")

	reloaded, err := repo.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"SEC-001 - Sanitize"}, reloaded.PriorityList)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestFileRepositoryErrors(t *testing.T) {
	repo := NewFileRepository()
	dir := t.TempDir()

	_, err := repo.Load(filepath.Join(dir, "missing.json"))
	assert.Equal(t, errors.ErrCodeDocNotFound, errors.CodeOf(err))

	_, err = repo.Load(filepath.Join(dir, "backlog.txt"))
	assert.Equal(t, errors.ErrCodeDocUnsupported, errors.CodeOf(err))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	_, err = repo.Load(bad)
	assert.Equal(t, errors.ErrCodeDocInvalid, errors.CodeOf(err))
}

func TestFileRepositorySaveFailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backlog.json")
	require.NoError(t, os.WriteFile(path, []byte(jsonDoc), 0644))

	doc := NewDocument("toml")
	err := NewFileRepository().Save(doc, path)
	assert.Equal(t, errors.ErrCodeDocWriteFailed, errors.CodeOf(err))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, jsonDoc, string(data))
}
