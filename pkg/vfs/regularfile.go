package vfs

// content is the copy-on-write cell a RegularFile points at until its
// first write, at which point the file detaches into its own owned
// slice and the cell is left untouched. NewRegularFile and
// NewRegularFileFromContent each make a fresh cell (the snapshot loader
// calls the latter once per file record), and CreateHardLinkAt shares
// the Inode itself, so no two RegularFile values share a cell.
type content struct {
	bytes []byte
}

// RegularFile is the DataItem for ordinary files. It carries its bytes
// copy-on-write: Read/Stat never materialize a private copy, only
// Write/Truncate do, mirroring the original fs_regular_file's lazy
// detach from a shared snapshot buffer.
type RegularFile struct {
	shared *content
	owned  []byte

	// writeLocks counts live shared mmap mappings (Memory.shared) that
	// hold this file's write lock; Write and Truncate refuse with EBUSY
	// while it is nonzero.
	writeLocks int
}

func NewRegularFile() *RegularFile {
	return &RegularFile{shared: &content{}}
}

// NewRegularFileFromContent is the exported constructor package
// snapshot uses to seed a file's bytes as a shared, not-yet-detached
// cell; the first write against the result copies it, per the
// copy-on-write contract above.
func NewRegularFileFromContent(b []byte) *RegularFile {
	return &RegularFile{shared: &content{bytes: b}}
}

func (f *RegularFile) Kind() Mode { return ModeRegular }

func (f *RegularFile) bytes() []byte {
	if f.shared != nil {
		return f.shared.bytes
	}
	return f.owned
}

func (f *RegularFile) Size() int64 {
	return int64(len(f.bytes()))
}

func (f *RegularFile) ReadAt(buf []byte, offset int64) int {
	src := f.bytes()
	if offset < 0 || offset >= int64(len(src)) {
		return 0
	}
	return copy(buf, src[offset:])
}

// detach materializes an owned copy if this file still points at a
// shared cell, so the write below cannot be observed by any sibling
// RegularFile pointing at the same cell.
func (f *RegularFile) detach() {
	if f.shared == nil {
		return
	}
	f.owned = append([]byte(nil), f.shared.bytes...)
	f.shared = nil
}

func (f *RegularFile) WriteAt(buf []byte, offset int64) (int, error) {
	if f.writeLocks > 0 {
		return 0, EBUSY
	}
	f.detach()
	end := offset + int64(len(buf))
	if end > int64(len(f.owned)) {
		grown := make([]byte, end)
		copy(grown, f.owned)
		f.owned = grown
	}
	copy(f.owned[offset:end], buf)
	return len(buf), nil
}

func (f *RegularFile) Truncate(size int64) error {
	if f.writeLocks > 0 {
		return EBUSY
	}
	f.detach()
	switch {
	case size == int64(len(f.owned)):
	case size < int64(len(f.owned)):
		f.owned = f.owned[:size]
	default:
		grown := make([]byte, size)
		copy(grown, f.owned)
		f.owned = grown
	}
	return nil
}

func (f *RegularFile) lockForSharedMapping() { f.writeLocks++ }
func (f *RegularFile) unlockSharedMapping()   { f.writeLocks-- }

// Link is the DataItem for a symbolic link: an immutable target string
// set once at creation (symlinks are never rewritten in place, only
// replaced by removing and recreating).
type Link struct {
	Target string
}

func (l *Link) Kind() Mode { return ModeSymlink }

// WriteOnlyFile models a descriptor-side object that accepts writes
// and discards them, standing in for a process's real stdout/stderr
// inside the model now that there is no host terminal underneath.
type WriteOnlyFile struct{}

func (w *WriteOnlyFile) Kind() Mode { return ModeCharDev }

func (w *WriteOnlyFile) WriteAt(buf []byte) int { return len(buf) }

// StandardInput is the DataItem backing fd 0. Reads are served from an
// optional preloaded buffer and otherwise answer EOF; the exact byte
// content is a host concern (a Chooser could extend this to
// nondeterministic input, not modeled here).
type StandardInput struct {
	buf []byte
	pos int
}

func NewStandardInput(preload []byte) *StandardInput {
	return &StandardInput{buf: preload}
}

func (s *StandardInput) Kind() Mode { return ModeCharDev }

func (s *StandardInput) Read(p []byte) int {
	n := copy(p, s.buf[s.pos:])
	s.pos += n
	return n
}
