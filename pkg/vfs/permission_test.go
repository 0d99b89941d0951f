package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRequiresExecOnTraversedDirectory(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.MkdirAt(CurrentDirectory, "/d", 0700))
	require.NoError(t, m.MkdirAt(CurrentDirectory, "/d/sub", 0700))
	require.NoError(t, m.ChmodAt(CurrentDirectory, "/d", 0600))

	_, err := m.OpenFileAt(CurrentDirectory, "/d/sub/f", OWrOnly|OCreat, 0644)
	assert.Equal(t, EACCES, err)
}

func TestOpenDirectoryRequiresReadAndExec(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.MkdirAt(CurrentDirectory, "/d", 0100))

	_, err := m.OpenDirectory(CurrentDirectory, "/d")
	assert.Equal(t, EACCES, err, "exec alone is not enough to opendir; read is also required")

	require.NoError(t, m.ChmodAt(CurrentDirectory, "/d", 0500))
	fd, err := m.OpenDirectory(CurrentDirectory, "/d")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, fd, 0)
}
