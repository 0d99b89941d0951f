// Package posix is the in-process POSIX-shaped facade over a
// vfs.Manager: one function per syscall surface it exposes, each
// translating Go-idiomatic Manager results into the (return value,
// errno) pair a C caller would see, the same shape a ptrace handler
// produces by calling errnoFromError/negErrno on every result before
// handing it back to a traced process. Unlike a ptrace handler,
// nothing here intercepts a real process's syscalls: a host calls
// these functions directly.
package posix

import (
	"golang.org/x/sys/unix"

	"github.com/coopvfs/coopvfs/pkg/vfs"
)

// Errno converts any error this package's functions can return into the
// negative-errno convention a C-shaped caller expects from a syscall
// wrapper: 0 for success, a negative errno otherwise.
func Errno(err error) int {
	if err == nil {
		return 0
	}
	if e, ok := err.(vfs.Errno); ok {
		return -int(e)
	}
	panic(err)
}

// Facade binds a Manager to the POSIX-shaped surface below it.
type Facade struct {
	mgr *vfs.Manager
}

func New(mgr *vfs.Manager) *Facade {
	return &Facade{mgr: mgr}
}

func translateOpenFlags(flags int) vfs.OpenFlags {
	var out vfs.OpenFlags
	switch flags & (unix.O_RDONLY | unix.O_WRONLY | unix.O_RDWR) {
	case unix.O_WRONLY:
		out |= vfs.OWrOnly
	case unix.O_RDWR:
		out |= vfs.ORdWr
	default:
		out |= vfs.ORdOnly
	}
	if flags&unix.O_APPEND != 0 {
		out |= vfs.OAppend
	}
	if flags&unix.O_CREAT != 0 {
		out |= vfs.OCreat
	}
	if flags&unix.O_EXCL != 0 {
		out |= vfs.OExcl
	}
	if flags&unix.O_TRUNC != 0 {
		out |= vfs.OTrunc
	}
	if flags&unix.O_DIRECTORY != 0 {
		out |= vfs.ODirectory
	}
	if flags&unix.O_NONBLOCK != 0 {
		out |= vfs.ONonblock
	}
	return out
}

func (f *Facade) Open(path string, flags int, mode uint32) (int, error) {
	return f.Openat(vfs.CurrentDirectory, path, flags, mode)
}

func (f *Facade) Openat(dirfd int, path string, flags int, mode uint32) (int, error) {
	return f.mgr.OpenFileAt(dirfd, path, translateOpenFlags(flags), vfs.Mode(mode)&0777)
}

func (f *Facade) Close(fd int) error {
	return f.mgr.CloseFile(fd)
}

func (f *Facade) Read(fd int, buf []byte) (int, error) {
	return f.mgr.Read(fd, buf)
}

func (f *Facade) Write(fd int, buf []byte) (int, error) {
	return f.mgr.Write(fd, buf)
}

func (f *Facade) Pread(fd int, buf []byte, offset int64) (int, error) {
	return f.mgr.Pread(fd, buf, offset)
}

func (f *Facade) Pwrite(fd int, buf []byte, offset int64) (int, error) {
	return f.mgr.Pwrite(fd, buf, offset)
}

func (f *Facade) Lseek(fd int, offset int64, whence int) (int64, error) {
	return f.mgr.Lseek(fd, offset, whence)
}

func (f *Facade) Ftruncate(fd int, size int64) error {
	return f.mgr.Truncate(fd, size)
}

func (f *Facade) Mkdirat(dirfd int, path string, mode uint32) error {
	return f.mgr.MkdirAt(dirfd, path, vfs.Mode(mode)&0777)
}

func (f *Facade) Unlinkat(dirfd int, path string, isDir bool) error {
	if isDir {
		return f.mgr.RemoveDirectory(dirfd, path)
	}
	return f.mgr.RemoveFile(dirfd, path)
}

func (f *Facade) Renameat(oldDirfd int, oldPath string, newDirfd int, newPath string) error {
	return f.mgr.RenameAt(oldDirfd, oldPath, newDirfd, newPath)
}

func (f *Facade) Linkat(oldDirfd int, oldPath string, newDirfd int, newPath string) error {
	return f.mgr.CreateHardLinkAt(oldDirfd, oldPath, newDirfd, newPath)
}

func (f *Facade) Symlinkat(target string, newDirfd int, linkPath string) error {
	return f.mgr.CreateSymLinkAt(newDirfd, target, linkPath)
}

func (f *Facade) Readlinkat(dirfd int, path string) (string, error) {
	return f.mgr.ReadLinkAt(dirfd, path)
}

func (f *Facade) Fchmodat(dirfd int, path string, mode uint32) error {
	return f.mgr.ChmodAt(dirfd, path, vfs.Mode(mode))
}

func (f *Facade) Faccessat(dirfd int, path string) error {
	return f.mgr.AccessAt(dirfd, path)
}

func (f *Facade) Chdir(path string) error {
	return f.mgr.ChangeDirectory(vfs.CurrentDirectory, path)
}

func (f *Facade) Fchdir(fd int) error {
	return f.mgr.ChangeDirectory(fd, ".")
}

func (f *Facade) Dup(oldfd int) (int, error) {
	return f.mgr.Duplicate(oldfd)
}

func (f *Facade) Dup2(oldfd, newfd int) error {
	return f.mgr.Duplicate2(oldfd, newfd)
}

func (f *Facade) Umask(mask uint32) uint32 {
	return uint32(f.mgr.Umask(vfs.Mode(mask)))
}

func (f *Facade) Stat(path string) (unix.Stat_t, error) {
	return f.statResult(f.mgr.Stat(vfs.CurrentDirectory, path))
}

func (f *Facade) Lstat(path string) (unix.Stat_t, error) {
	return f.statResult(f.mgr.Lstat(vfs.CurrentDirectory, path))
}

func (f *Facade) Fstat(fd int) (unix.Stat_t, error) {
	return f.statResult(f.mgr.Fstat(fd))
}

func (f *Facade) statResult(fi *vfs.FileInfo, err error) (unix.Stat_t, error) {
	if err != nil {
		return unix.Stat_t{}, err
	}
	return fi.ToStat(), nil
}

func (f *Facade) Pipe2(flags int) (readfd, writefd int, err error) {
	return f.mgr.Pipe()
}

func (f *Facade) Opendir(path string) (int, error) {
	return f.mgr.OpenDirectory(vfs.CurrentDirectory, path)
}

func (f *Facade) Readdir(fd int) (vfs.DirEntry, bool, error) {
	return f.mgr.ReadDirectory(fd)
}

func (f *Facade) Closedir(fd int) error {
	return f.mgr.CloseDirectory(fd)
}

// Fcntl translates the unix.F_* command numbers onto Manager.Fcntl,
// converting arg between the raw bits a C caller passes and this
// package's OpenFlags for F_GETFL/F_SETFL.
func (f *Facade) Fcntl(fd int, cmd int, arg int) (int, error) {
	switch cmd {
	case unix.F_GETFD:
		return f.mgr.Fcntl(fd, vfs.FGetFD, arg)
	case unix.F_SETFD:
		return f.mgr.Fcntl(fd, vfs.FSetFD, arg)
	case unix.F_GETFL:
		n, err := f.mgr.Fcntl(fd, vfs.FGetFL, arg)
		if err != nil {
			return -1, err
		}
		return int(translateRawFlags(vfs.OpenFlags(n))), nil
	case unix.F_SETFL:
		return f.mgr.Fcntl(fd, vfs.FSetFL, int(translateOpenFlags(arg)))
	case unix.F_DUPFD:
		return f.mgr.Fcntl(fd, vfs.FDupFD, arg)
	case unix.F_DUPFD_CLOEXEC:
		return f.mgr.Fcntl(fd, vfs.FDupFDCloexec, arg)
	default:
		return -1, vfs.EINVAL
	}
}

// translateRawFlags is F_GETFL's direction of translateOpenFlags: it
// turns the OpenFlags this model tracks back into the unix.O_* bits a
// C-shaped caller expects to read back.
func translateRawFlags(flags vfs.OpenFlags) int {
	var out int
	switch {
	case flags.Has(vfs.OWrOnly):
		out |= unix.O_WRONLY
	case flags.Has(vfs.ORdWr):
		out |= unix.O_RDWR
	default:
		out |= unix.O_RDONLY
	}
	if flags.Has(vfs.OAppend) {
		out |= unix.O_APPEND
	}
	if flags.Has(vfs.ONonblock) {
		out |= unix.O_NONBLOCK
	}
	return out
}

// Isatty and Ttyname are always-stub implementations: this model has no
// inode kind representing a controlling terminal, so every descriptor
// answers "not a tty".
func (f *Facade) Isatty(fd int) bool {
	return false
}

func (f *Facade) Ttyname(fd int) (string, error) {
	if _, err := f.mgr.Fstat(fd); err != nil {
		return "", err
	}
	return "", vfs.ENOTTY
}
