package vfs

// MapFlags selects MAP_SHARED vs MAP_PRIVATE for Manager.Mmap.
type MapFlags int

const (
	MapPrivate MapFlags = iota
	MapShared
)

// Mmap implements mmap(2) over a RegularFile descriptor. MAP_SHARED
// takes the file's write-lock interlock: further
// Write/Truncate calls on that file fail with EBUSY until every shared
// mapping of it is released by Munmap.
func (m *Manager) Mmap(fd int, offset, length int64, flags MapFlags) (*Memory, error) {
	d, err := m.fds.get(fd)
	if err != nil {
		return nil, err
	}
	rf, ok := d.inode.Data.(*RegularFile)
	if !ok {
		return nil, EINVAL
	}
	if length <= 0 || offset < 0 {
		return nil, EINVAL
	}
	if flags == MapShared {
		return newSharedMapping(rf, offset, length), nil
	}
	return newPrivateMapping(rf, offset, length), nil
}

func (m *Manager) Munmap(mem *Memory) error {
	mem.unmap()
	return nil
}
