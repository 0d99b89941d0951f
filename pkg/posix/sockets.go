package posix

import (
	"golang.org/x/sys/unix"

	"github.com/coopvfs/coopvfs/pkg/vfs"
)

func translateSocketType(t int) (vfs.SocketType, error) {
	switch t &^ (unix.SOCK_NONBLOCK | unix.SOCK_CLOEXEC) {
	case unix.SOCK_STREAM:
		return vfs.SockStream, nil
	case unix.SOCK_SEQPACKET:
		return vfs.SockSeqPacket, nil
	case unix.SOCK_DGRAM:
		return vfs.SockDgram, nil
	default:
		return 0, vfs.EPROTONOSUPP
	}
}

func (f *Facade) Socket(domain, socktype, protocol int) (int, error) {
	if domain != unix.AF_UNIX {
		return -1, vfs.EAFNOSUPPORT
	}
	t, err := translateSocketType(socktype)
	if err != nil {
		return -1, err
	}
	return f.mgr.Socket(t)
}

func (f *Facade) Socketpair(domain, socktype, protocol int) (fd0, fd1 int, err error) {
	if domain != unix.AF_UNIX {
		return -1, -1, vfs.EAFNOSUPPORT
	}
	t, err := translateSocketType(socktype)
	if err != nil {
		return -1, -1, err
	}
	return f.mgr.SocketPair(t)
}

func (f *Facade) Bind(fd int, path string) error {
	return f.mgr.Bind(fd, path)
}

func (f *Facade) Listen(fd int, backlog int) error {
	return f.mgr.Listen(fd, backlog)
}

func (f *Facade) Connect(fd int, path string) error {
	return f.mgr.Connect(fd, path)
}

func (f *Facade) Accept(fd int) (int, error) {
	return f.mgr.Accept(fd)
}

func translateMsgFlags(flags int) vfs.MsgFlags {
	var out vfs.MsgFlags
	if flags&unix.MSG_DONTWAIT != 0 {
		out |= vfs.MsgDontWait
	}
	if flags&unix.MSG_WAITALL != 0 {
		out |= vfs.MsgWaitAll
	}
	if flags&unix.MSG_PEEK != 0 {
		out |= vfs.MsgPeek
	}
	return out
}

func (f *Facade) Send(fd int, buf []byte, flags int) (int, error) {
	return f.mgr.Send(fd, buf, translateMsgFlags(flags))
}

func (f *Facade) Recv(fd int, buf []byte, flags int) (int, error) {
	return f.mgr.Recv(fd, buf, translateMsgFlags(flags))
}

func (f *Facade) Sendto(fd int, buf []byte, path string, flags int) (int, error) {
	return f.mgr.Sendto(fd, buf, path, translateMsgFlags(flags))
}

func (f *Facade) Recvfrom(fd int, buf []byte, flags int) (int, string, error) {
	n, addr, err := f.mgr.Recvfrom(fd, buf, translateMsgFlags(flags))
	return n, addr.Path(), err
}

// Getsockname/Getpeername return the path of the socket's own or
// connected-peer address as a plain string; no address family is
// returned and no sockaddr_un struct is filled, since nothing here
// crosses into an actual kernel socket layer.
func (f *Facade) Getsockname(fd int) (string, error) {
	return f.mgr.LocalAddress(fd)
}

func (f *Facade) Getpeername(fd int) (string, error) {
	return f.mgr.PeerAddress(fd)
}
