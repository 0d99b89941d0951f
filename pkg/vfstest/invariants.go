package vfstest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coopvfs/coopvfs/pkg/vfs"
)

func testCreateThenStatRoundTrips(t *testing.T, m *vfs.Manager) {
	fd, err := m.OpenFileAt(vfs.CurrentDirectory, "/greeting", vfs.OWrOnly|vfs.OCreat, 0644)
	must(t, err)
	_, err = m.Write(fd, []byte("hello"))
	must(t, err)
	must(t, m.CloseFile(fd))

	fi, err := m.Stat(vfs.CurrentDirectory, "/greeting")
	must(t, err)
	assert.Equal(t, int64(5), fi.Size)
	assert.True(t, fi.Mode.IsRegular())
}

func testRemoveDetachesNameNotDescriptor(t *testing.T, m *vfs.Manager) {
	fd, err := m.OpenFileAt(vfs.CurrentDirectory, "/doomed", vfs.ORdWr|vfs.OCreat, 0644)
	must(t, err)
	_, err = m.Write(fd, []byte("still here"))
	must(t, err)

	must(t, m.RemoveFile(vfs.CurrentDirectory, "/doomed"))

	_, err = m.Stat(vfs.CurrentDirectory, "/doomed")
	assert.ErrorIs(t, err, vfs.ENOENT)

	buf := make([]byte, 32)
	_, err = m.Lseek(fd, 0, vfs.SeekSet)
	require.NoError(t, err)
	n, err := m.Read(fd, buf)
	require.NoError(t, err)
	assert.Equal(t, "still here", string(buf[:n]))
}

func testEachDescriptorHasIndependentOffset(t *testing.T, m *vfs.Manager) {
	fd1, err := m.OpenFileAt(vfs.CurrentDirectory, "/shared", vfs.ORdWr|vfs.OCreat, 0644)
	must(t, err)
	_, err = m.Write(fd1, []byte("0123456789"))
	must(t, err)

	fd2, err := m.OpenFileAt(vfs.CurrentDirectory, "/shared", vfs.ORdOnly, 0)
	must(t, err)

	buf := make([]byte, 4)
	n, err := m.Read(fd2, buf)
	must(t, err)
	assert.Equal(t, "0123", string(buf[:n]))

	n, err = m.Read(fd2, buf)
	must(t, err)
	assert.Equal(t, "4567", string(buf[:n]))
}

func testSymlinkLoopReturnsELOOP(t *testing.T, m *vfs.Manager) {
	must(t, m.CreateSymLinkAt(vfs.CurrentDirectory, "/b", "/a"))
	must(t, m.CreateSymLinkAt(vfs.CurrentDirectory, "/a", "/b"))

	_, err := m.OpenFileAt(vfs.CurrentDirectory, "/a", vfs.ORdOnly, 0)
	var errno vfs.Errno
	require.True(t, errors.As(err, &errno))
	assert.ErrorIs(t, err, vfs.ELOOP)
}

func testRmdirRequiresEmpty(t *testing.T, m *vfs.Manager) {
	must(t, m.MkdirAt(vfs.CurrentDirectory, "/d", 0755))
	must(t, m.MkdirAt(vfs.CurrentDirectory, "/d/child", 0755))

	err := m.RemoveDirectory(vfs.CurrentDirectory, "/d")
	assert.ErrorIs(t, err, vfs.ENOTEMPTY)

	must(t, m.RemoveDirectory(vfs.CurrentDirectory, "/d/child"))
	must(t, m.RemoveDirectory(vfs.CurrentDirectory, "/d"))
}

func testTruncateExtendsWithZeros(t *testing.T, m *vfs.Manager) {
	fd, err := m.OpenFileAt(vfs.CurrentDirectory, "/sparse", vfs.ORdWr|vfs.OCreat, 0644)
	must(t, err)
	must(t, m.Truncate(fd, 8))

	buf := make([]byte, 8)
	n, err := m.Read(fd, buf)
	must(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0}, buf[:n])
}

func testPipeWriteAfterReaderCloseReturnsEPIPE(t *testing.T, m *vfs.Manager) {
	readfd, writefd, err := m.Pipe()
	must(t, err)
	must(t, m.CloseFile(readfd))

	_, err = m.Write(writefd, []byte("x"))
	assert.ErrorIs(t, err, vfs.EPIPE)
}

func testUmaskMasksPermissionBitsNotType(t *testing.T, m *vfs.Manager) {
	m.Umask(vfs.Mode(0077))
	fd, err := m.OpenFileAt(vfs.CurrentDirectory, "/masked", vfs.OWrOnly|vfs.OCreat, 0666)
	must(t, err)
	must(t, m.CloseFile(fd))

	fi, err := m.Stat(vfs.CurrentDirectory, "/masked")
	must(t, err)
	assert.True(t, fi.Mode.IsRegular())
	assert.Equal(t, vfs.Mode(0600), fi.Mode&0777)
}

func testDupSharesOffset(t *testing.T, m *vfs.Manager) {
	fd, err := m.OpenFileAt(vfs.CurrentDirectory, "/dupped", vfs.ORdWr|vfs.OCreat, 0644)
	must(t, err)
	_, err = m.Write(fd, []byte("0123456789"))
	must(t, err)
	_, err = m.Lseek(fd, 0, vfs.SeekSet)
	must(t, err)

	dupfd, err := m.Duplicate(fd)
	must(t, err)

	buf := make([]byte, 4)
	n, err := m.Read(fd, buf)
	must(t, err)
	assert.Equal(t, "0123", string(buf[:n]))

	n, err = m.Read(dupfd, buf)
	must(t, err)
	assert.Equal(t, "4567", string(buf[:n]))
}
