package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFcntlDupFDRespectsLowerBound(t *testing.T) {
	m := NewManager()
	fd, err := m.OpenFileAt(CurrentDirectory, "/f", OWrOnly|OCreat, 0644)
	require.NoError(t, err)

	newfd, err := m.Fcntl(fd, FDupFD, 10)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, newfd, 10)
}

func TestFcntlCloexecIsPerSlotNotPerDescriptor(t *testing.T) {
	m := NewManager()
	fd, err := m.OpenFileAt(CurrentDirectory, "/f", OWrOnly|OCreat, 0644)
	require.NoError(t, err)

	_, err = m.Fcntl(fd, FSetFD, 1)
	require.NoError(t, err)
	flags, err := m.Fcntl(fd, FGetFD, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, flags)

	dupfd, err := m.Duplicate(fd)
	require.NoError(t, err)
	flags, err = m.Fcntl(dupfd, FGetFD, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, flags, "dup must not inherit FD_CLOEXEC from its source fd")
}

func TestFcntlSetFLLatchesAppendAcrossDup(t *testing.T) {
	m := NewManager()
	fd, err := m.OpenFileAt(CurrentDirectory, "/f", OWrOnly|OCreat, 0644)
	require.NoError(t, err)

	_, err = m.Fcntl(fd, FSetFL, int(OAppend))
	require.NoError(t, err)
	dupfd, err := m.Duplicate(fd)
	require.NoError(t, err)
	_, err = m.Fcntl(dupfd, FSetFL, 0)
	assert.Equal(t, EPERM, err, "clearing O_APPEND once latched must be rejected")
}

func TestFcntlGetFLPreservesAccessMode(t *testing.T) {
	m := NewManager()
	fd, err := m.OpenFileAt(CurrentDirectory, "/f", OWrOnly|OCreat, 0644)
	require.NoError(t, err)

	_, err = m.Fcntl(fd, FSetFL, int(ONonblock))
	require.NoError(t, err)
	flags, err := m.Fcntl(fd, FGetFL, 0)
	require.NoError(t, err)
	got := OpenFlags(flags)
	assert.True(t, got.has(ONonblock))
	assert.True(t, got.Writable(), "F_SETFL must not clobber the access mode set at open")
}
