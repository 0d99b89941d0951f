package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenameIntoOwnDescendantReturnsEINVAL(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.MkdirAt(CurrentDirectory, "/d", 0755))
	require.NoError(t, m.MkdirAt(CurrentDirectory, "/d/e", 0755))

	err := m.RenameAt(CurrentDirectory, "/d", CurrentDirectory, "/d/e/d")
	assert.Equal(t, EINVAL, err)

	fd, err := m.OpenDirectory(CurrentDirectory, "/d")
	require.NoError(t, err, "the rejected rename must leave the original tree intact")
	m.CloseDirectory(fd)
}

func TestRenameIntoUnrelatedDirectoryStillWorks(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.MkdirAt(CurrentDirectory, "/d", 0755))
	require.NoError(t, m.MkdirAt(CurrentDirectory, "/other", 0755))

	require.NoError(t, m.RenameAt(CurrentDirectory, "/d", CurrentDirectory, "/other/d"))

	fd, err := m.OpenDirectory(CurrentDirectory, "/other/d")
	require.NoError(t, err)
	m.CloseDirectory(fd)
}
