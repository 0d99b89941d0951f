package vfstest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coopvfs/coopvfs/pkg/vfs"
)

// scenarioCreateWriteReadBack: create a file, write to it, reopen and
// read the same bytes back.
func scenarioCreateWriteReadBack(t *testing.T, m *vfs.Manager) {
	fd, err := m.OpenFileAt(vfs.CurrentDirectory, "/file.txt", vfs.OWrOnly|vfs.OCreat, 0644)
	must(t, err)
	_, err = m.Write(fd, []byte("payload"))
	must(t, err)
	must(t, m.CloseFile(fd))

	fd, err = m.OpenFileAt(vfs.CurrentDirectory, "/file.txt", vfs.ORdOnly, 0)
	must(t, err)
	buf := make([]byte, 32)
	n, err := m.Read(fd, buf)
	must(t, err)
	assert.Equal(t, "payload", string(buf[:n]))
	must(t, m.CloseFile(fd))
}

// scenarioMkdirRenameListing: build a small tree, rename a subdirectory
// into another, and confirm the listing reflects the move.
func scenarioMkdirRenameListing(t *testing.T, m *vfs.Manager) {
	must(t, m.MkdirAt(vfs.CurrentDirectory, "/src", 0755))
	must(t, m.MkdirAt(vfs.CurrentDirectory, "/dst", 0755))
	must(t, m.MkdirAt(vfs.CurrentDirectory, "/src/leaf", 0755))

	must(t, m.RenameAt(vfs.CurrentDirectory, "/src/leaf", vfs.CurrentDirectory, "/dst/leaf"))

	_, err := m.Stat(vfs.CurrentDirectory, "/src/leaf")
	assert.ErrorIs(t, err, vfs.ENOENT)

	fi, err := m.Stat(vfs.CurrentDirectory, "/dst/leaf")
	must(t, err)
	assert.True(t, fi.Mode.IsDir())
}

// scenarioPipeProducerConsumer: write more than one read's worth of
// data into a pipe and drain it across multiple reads.
func scenarioPipeProducerConsumer(t *testing.T, m *vfs.Manager) {
	readfd, writefd, err := m.Pipe()
	must(t, err)

	_, err = m.Write(writefd, []byte("abcdefghij"))
	must(t, err)
	must(t, m.CloseFile(writefd))

	var got []byte
	buf := make([]byte, 4)
	for {
		n, err := m.Read(readfd, buf)
		must(t, err)
		if n == 0 {
			break
		}
		got = append(got, buf[:n]...)
		if len(got) >= 10 {
			break
		}
	}
	assert.Equal(t, "abcdefghij", string(got))
}

// scenarioSymlinkResolution: a symlink to a directory resolves
// transparently for both stat and further path traversal.
func scenarioSymlinkResolution(t *testing.T, m *vfs.Manager) {
	must(t, m.MkdirAt(vfs.CurrentDirectory, "/real", 0755))
	fd, err := m.OpenFileAt(vfs.CurrentDirectory, "/real/inside.txt", vfs.OWrOnly|vfs.OCreat, 0644)
	must(t, err)
	_, err = m.Write(fd, []byte("x"))
	must(t, err)
	must(t, m.CloseFile(fd))

	must(t, m.CreateSymLinkAt(vfs.CurrentDirectory, "/real", "/alias"))

	fi, err := m.Stat(vfs.CurrentDirectory, "/alias/inside.txt")
	must(t, err)
	assert.Equal(t, int64(1), fi.Size)

	target, err := m.ReadLinkAt(vfs.CurrentDirectory, "/alias")
	must(t, err)
	assert.Equal(t, "/real", target)
}

// scenarioStreamSocketEcho: a pair of connected stream sockets pass a
// message in one direction and a reply in the other.
func scenarioStreamSocketEcho(t *testing.T, m *vfs.Manager) {
	fd0, fd1, err := m.SocketPair(vfs.SockStream)
	must(t, err)

	_, err = m.Write(fd0, []byte("ping"))
	must(t, err)
	buf := make([]byte, 16)
	n, err := m.Read(fd1, buf)
	must(t, err)
	assert.Equal(t, "ping", string(buf[:n]))

	_, err = m.Write(fd1, []byte("pong"))
	must(t, err)
	n, err = m.Read(fd0, buf)
	must(t, err)
	assert.Equal(t, "pong", string(buf[:n]))
}

// scenarioDatagramSocketExchange: two bound datagram sockets exchange a
// message via Sendto/Recvfrom, with the receiver learning the sender's
// address.
func scenarioDatagramSocketExchange(t *testing.T, m *vfs.Manager) {
	serverFd, err := m.Socket(vfs.SockDgram)
	must(t, err)
	must(t, m.Bind(serverFd, "/srv.sock"))

	clientFd, err := m.Socket(vfs.SockDgram)
	must(t, err)
	must(t, m.Bind(clientFd, "/cli.sock"))

	_, err = m.Sendto(clientFd, []byte("hi"), "/srv.sock", 0)
	must(t, err)

	buf := make([]byte, 16)
	n, from, err := m.Recvfrom(serverFd, buf, 0)
	must(t, err)
	assert.Equal(t, "hi", string(buf[:n]))
	assert.Equal(t, "/cli.sock", from.Path())
}

// scenarioSocketMsgFlags: MSG_DONTWAIT on an empty stream socket
// reports EAGAIN instead of suspending, and MSG_PEEK leaves the queued
// bytes in place for the following plain Recv to see again.
func scenarioSocketMsgFlags(t *testing.T, m *vfs.Manager) {
	fd0, fd1, err := m.SocketPair(vfs.SockStream)
	must(t, err)

	_, err = m.Recv(fd1, make([]byte, 4), vfs.MsgDontWait)
	assert.Equal(t, vfs.EAGAIN, err)

	_, err = m.Send(fd0, []byte("abcd"), 0)
	must(t, err)

	peeked := make([]byte, 4)
	n, err := m.Recv(fd1, peeked, vfs.MsgPeek)
	must(t, err)
	assert.Equal(t, "abcd", string(peeked[:n]))

	again := make([]byte, 4)
	n, err = m.Recv(fd1, again, 0)
	must(t, err)
	assert.Equal(t, "abcd", string(again[:n]), "MSG_PEEK must not have consumed the queued bytes")
}
