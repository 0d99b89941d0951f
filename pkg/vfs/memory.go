package vfs

// Memory is the object Manager.Mmap hands back: a byte window over
// either a private copy of a RegularFile's content (MAP_PRIVATE,
// writes never reach the file) or the file's own bytes directly
// (MAP_SHARED, writes reach the file immediately and the file refuses
// its own writers while the mapping is live).
type Memory struct {
	data   []byte
	shared bool
	file   *RegularFile
}

// newPrivateMapping copies length bytes starting at offset out of file;
// the copy is independent of the file from the moment it is taken.
func newPrivateMapping(file *RegularFile, offset, length int64) *Memory {
	buf := make([]byte, length)
	file.ReadAt(buf, offset)
	return &Memory{data: buf, shared: false}
}

// newSharedMapping takes the write lock described in regularfile.go and
// returns a Memory whose Bytes is the live underlying slice region,
// so writes through the mapping are writes to the file.
func newSharedMapping(file *RegularFile, offset, length int64) *Memory {
	file.lockForSharedMapping()
	end := offset + length
	if end > int64(len(file.owned)) {
		grown := make([]byte, end)
		copy(grown, file.bytes())
		file.detach()
		file.owned = grown
	}
	return &Memory{data: file.owned[offset:end], shared: true, file: file}
}

func (m *Memory) Bytes() []byte { return m.data }

// unmap releases the write-lock interlock a shared mapping held; a
// private mapping holds none and unmap is a no-op for it.
func (m *Memory) unmap() {
	if m.shared && m.file != nil {
		m.file.unlockSharedMapping()
		m.file = nil
	}
}
