package vfs

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Errno is the error type returned by every Manager and data-item
// operation. It carries a standard POSIX error code; callers translate
// it to an errno-style integer at the posix facade.
type Errno unix.Errno

func (e Errno) Error() string {
	return unix.Errno(e).Error()
}

// Is lets callers compare against unix.Errno or a plain Errno with
// errors.Is, e.g. errors.Is(err, vfs.ENOENT).
func (e Errno) Is(target error) bool {
	switch t := target.(type) {
	case Errno:
		return e == t
	case unix.Errno:
		return unix.Errno(e) == t
	}
	return false
}

const (
	ENOENT       = Errno(unix.ENOENT)
	ENOTDIR      = Errno(unix.ENOTDIR)
	ELOOP        = Errno(unix.ELOOP)
	ENAMETOOLONG = Errno(unix.ENAMETOOLONG)
	EACCES       = Errno(unix.EACCES)
	EPERM        = Errno(unix.EPERM)
	EEXIST       = Errno(unix.EEXIST)
	ENOTEMPTY    = Errno(unix.ENOTEMPTY)
	EISDIR       = Errno(unix.EISDIR)
	EBADF        = Errno(unix.EBADF)
	ENOTSOCK     = Errno(unix.ENOTSOCK)
	EINVAL       = Errno(unix.EINVAL)
	EOPNOTSUPP   = Errno(unix.EOPNOTSUPP)
	EPROTOTYPE   = Errno(unix.EPROTOTYPE)
	EPROTONOSUPP = Errno(unix.EPROTONOSUPPORT)
	ESPIPE       = Errno(unix.ESPIPE)
	ENXIO        = Errno(unix.ENXIO)
	ENFILE       = Errno(unix.ENFILE)
	ENOMEM       = Errno(unix.ENOMEM)
	EOVERFLOW    = Errno(unix.EOVERFLOW)
	EDESTADDRREQ = Errno(unix.EDESTADDRREQ)
	EADDRINUSE   = Errno(unix.EADDRINUSE)
	ENOTCONN     = Errno(unix.ENOTCONN)
	EISCONN      = Errno(unix.EISCONN)
	ECONNREFUSED = Errno(unix.ECONNREFUSED)
	ECONNRESET   = Errno(unix.ECONNRESET)
	EPIPE        = Errno(unix.EPIPE)
	EAGAIN       = Errno(unix.EAGAIN)
	EBUSY        = Errno(unix.EBUSY)
	EAFNOSUPPORT = Errno(unix.EAFNOSUPPORT)
	EXDEV        = Errno(unix.EXDEV)
	ENOBUFS      = Errno(unix.ENOBUFS)
	EFAULT       = Errno(unix.EFAULT)
	ENOTTY       = Errno(unix.ENOTTY)
)

// Problem is raised for unrecoverable logic defects: double-opening a
// FIFO side, a corrupted directory invariant. It is never caught by
// Manager operations themselves; only
// a POSIX-facade boundary (or a test harness) may recover it.
type Problem struct {
	Reason string
}

func (p Problem) Error() string {
	return fmt.Sprintf("vfs: unrecoverable problem: %s", p.Reason)
}

func raiseProblem(format string, args ...interface{}) {
	panic(Problem{Reason: fmt.Sprintf(format, args...)})
}
