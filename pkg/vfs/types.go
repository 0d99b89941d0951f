package vfs

import (
	"time"

	"golang.org/x/sys/unix"
)

// FileInfo is the stat(2)-shaped view Manager.Stat/Lstat/Fstat return;
// package posix converts it the rest of the way into a real
// unix.Stat_t for a host that wants to hand one back to a caller.
type FileInfo struct {
	Ino     uint64
	Mode    Mode
	Nlink   uint64
	Size    int64
	ModTime time.Time
}

// ToStat fills a unix.Stat_t, using statSetNlink/statSetBlksize for
// Nlink/Blksize since unix.Stat_t's field widths vary across
// amd64/arm64.
func (fi *FileInfo) ToStat() unix.Stat_t {
	var st unix.Stat_t
	st.Ino = fi.Ino
	st.Mode = uint32(fi.Mode)
	st.Size = fi.Size
	mtime := unix.Timespec{Sec: fi.ModTime.Unix(), Nsec: int64(fi.ModTime.Nanosecond())}
	st.Mtim = mtime
	st.Atim = mtime
	st.Ctim = mtime
	statSetNlink(&st, fi.Nlink)
	statSetBlksize(&st, 4096)
	return st
}

// Stat resolves name and reports its FileInfo, following a trailing
// symlink; Lstat is the same without that last hop.
func (m *Manager) Stat(dirfd int, name string) (*FileInfo, error) {
	return m.statResolve(dirfd, name, true)
}

func (m *Manager) Lstat(dirfd int, name string) (*FileInfo, error) {
	return m.statResolve(dirfd, name, false)
}

func (m *Manager) statResolve(dirfd int, name string, followLast bool) (*FileInfo, error) {
	base, err := m.dirFor(dirfd)
	if err != nil {
		return nil, err
	}
	node, err := m.resolve(base, name, followLast)
	if err != nil {
		return nil, err
	}
	return fileInfoOf(node), nil
}

func (m *Manager) Fstat(fd int) (*FileInfo, error) {
	d, err := m.fds.get(fd)
	if err != nil {
		return nil, err
	}
	return fileInfoOf(d.inode), nil
}

func fileInfoOf(n *Inode) *FileInfo {
	size := int64(0)
	if rf, ok := n.Data.(*RegularFile); ok {
		size = rf.Size()
	}
	return &FileInfo{
		Ino:   n.Ino,
		Mode:  n.Mode,
		Nlink: uint64(n.nlink),
		Size:  size,
	}
}
