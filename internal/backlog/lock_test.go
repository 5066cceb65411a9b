package backlog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskweave/internal/errors"
)

func TestLockExclusive(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "backlog.json")

	first := NewLock(doc)
	assert.Equal(t, doc+".lock", first.Path())
	require.NoError(t, first.Acquire())

	second := NewLock(doc)
	ok, err := second.TryLock()
	require.NoError(t, err)
	assert.False(t, ok, "second lock should not be acquired while the first is held")

	err = second.Acquire()
	assert.Equal(t, errors.ErrCodeLockBusy, errors.CodeOf(err))

	require.NoError(t, first.Release())

	ok, err = second.TryLock()
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, second.Release())
}

func TestLockReleaseWithoutAcquire(t *testing.T) {
	l := NewLock(filepath.Join(t.TempDir(), "backlog.json"))
	assert.NoError(t, l.Release())
}
