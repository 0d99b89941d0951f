package vfs

import "sync"

// OpenFlags mirrors the subset of POSIX open(2) flags this model
// tracks on a descriptor rather than delegating to the Inode.
type OpenFlags int

const (
	ORdOnly OpenFlags = 1 << iota
	OWrOnly
	ORdWr
	OAppend
	OCreat
	OExcl
	OTrunc
	ODirectory
	ONonblock
)

func (f OpenFlags) has(bit OpenFlags) bool { return f&bit != 0 }

// Has is the exported form of has for use outside this package.
func (f OpenFlags) Has(bit OpenFlags) bool { return f.has(bit) }

func (f OpenFlags) Readable() bool { return f.has(ORdOnly) || f.has(ORdWr) }
func (f OpenFlags) Writable() bool { return f.has(OWrOnly) || f.has(ORdWr) }

// Descriptor is an open file description in the POSIX sense: the Inode
// it was opened against and the per-open state (offset, flags) that
// belongs to the descriptor rather than the Inode. Two independent
// opens of the same RegularFile get their own
// Descriptor and so their own offset; dup/dup2 instead install the same
// Descriptor pointer under a second fd number, so seeks and flag
// changes made through either fd are visible through the other, the
// real POSIX "shared open file description" rule. refs counts how many
// fd slots currently point at this Descriptor, so Close only runs
// release side effects (pipe detach) once the last one goes away.
type Descriptor struct {
	inode  *Inode
	offset int64
	flags  OpenFlags
	refs   int

	// appendLatched: once O_APPEND has been set on this descriptor,
	// clearing it via a later F_SETFL is rejected rather than silently
	// applied.
	appendLatched bool
}

func (d *Descriptor) Inode() *Inode { return d.inode }

// SetFlags applies an F_SETFL-style flag update, refusing to clear
// O_APPEND once it has ever been set.
func (d *Descriptor) SetFlags(next OpenFlags) error {
	if d.appendLatched && !next.has(OAppend) {
		return EPERM
	}
	if next.has(OAppend) {
		d.appendLatched = true
	}
	d.flags = next
	return nil
}

// stdioStreamFD is the DataItem fd 1/2 point at: every write stands in
// for output a real process would have sent to its controlling
// terminal or to a captured pipe, discarded here since nothing consumes
// it within the model.
var stdioStreamFD = newInode(ModeCharDev, &WriteOnlyFile{})

// fdSlot is one entry in a Manager's descriptor table. The Descriptor
// it points at is a shared open file description, possibly aliased
// into several slots by dup/dup2; cloexec is not, since FD_CLOEXEC is
// the one fcntl flag POSIX scopes to the fd-table slot rather than the
// open file description, so a dup'd fd never inherits it from its
// source.
type fdSlot struct {
	desc    *Descriptor
	cloexec bool
}

// FDTable is a Manager's per-process-like descriptor table: a dense
// slot array bounded by FileDescriptorLimit, with 0/1/2 pre-populated
// the way a real process inherits stdin/stdout/stderr before main ever
// runs.
type FDTable struct {
	mu    sync.Mutex
	slots []fdSlot
}

func newFDTable(stdin *Inode) *FDTable {
	t := &FDTable{slots: make([]fdSlot, 3, 16)}
	t.slots[0] = fdSlot{desc: &Descriptor{inode: stdin, flags: ORdOnly, refs: 1}}
	t.slots[1] = fdSlot{desc: &Descriptor{inode: stdioStreamFD, flags: OWrOnly, refs: 1}}
	t.slots[2] = fdSlot{desc: &Descriptor{inode: stdioStreamFD, flags: OWrOnly, refs: 1}}
	return t
}

// allocate installs a freshly opened Descriptor (refs must be zero; it
// is set to 1 here) in the lowest free slot, POSIX's "lowest available
// descriptor" rule, reporting ENFILE once every slot up to
// FileDescriptorLimit is taken.
func (t *FDTable) allocate(d *Descriptor) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	d.refs = 1
	for i, s := range t.slots {
		if s.desc == nil {
			t.slots[i] = fdSlot{desc: d}
			return i, nil
		}
	}
	if len(t.slots) >= FileDescriptorLimit {
		return -1, ENFILE
	}
	t.slots = append(t.slots, fdSlot{desc: d})
	return len(t.slots) - 1, nil
}

// installAliasAt is Dup2's variant of allocate: it forces the slot
// number, growing the table if needed, bumps d's refcount for the new
// alias, and reports whatever previously occupied the slot (with its
// own refcount already decremented) so the caller can run release side
// effects if that was the last reference.
func (t *FDTable) installAliasAt(fd int, d *Descriptor) (released *Descriptor, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if fd < 0 || fd >= FileDescriptorLimit {
		return nil, EBADF
	}
	for len(t.slots) <= fd {
		t.slots = append(t.slots, fdSlot{})
	}
	old := t.slots[fd].desc
	d.refs++
	t.slots[fd] = fdSlot{desc: d}
	if old != nil {
		old.refs--
		if old.refs == 0 {
			return old, nil
		}
	}
	return nil, nil
}

func (t *FDTable) get(fd int) (*Descriptor, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if fd < 0 || fd >= len(t.slots) || t.slots[fd].desc == nil {
		return nil, EBADF
	}
	return t.slots[fd].desc, nil
}

// free clears fd's slot and reports the Descriptor that had occupied it
// together with whether that was its last reference, so the caller
// knows whether to run per-open-file release side effects (pipe
// detach) or leave them to whichever alias is still open.
func (t *FDTable) free(fd int) (d *Descriptor, lastRef bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if fd < 0 || fd >= len(t.slots) || t.slots[fd].desc == nil {
		return nil, false, EBADF
	}
	d = t.slots[fd].desc
	t.slots[fd] = fdSlot{}
	d.refs--
	return d, d.refs == 0, nil
}

// duplicateInto is dup(2): a new lowest-available fd aliasing the same
// Descriptor as oldfd, sharing its offset and flags from this point on.
func (t *FDTable) duplicateInto(oldfd int) (int, error) {
	return t.duplicateFrom(oldfd, 0)
}

// duplicateFrom is F_DUPFD's dup: the new fd is the lowest available
// slot number that is still >= lowerBound, rather than simply the
// lowest available slot overall.
func (t *FDTable) duplicateFrom(oldfd, lowerBound int) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if oldfd < 0 || oldfd >= len(t.slots) || t.slots[oldfd].desc == nil {
		return -1, EBADF
	}
	if lowerBound < 0 {
		return -1, EINVAL
	}
	src := t.slots[oldfd].desc
	for len(t.slots) < lowerBound {
		t.slots = append(t.slots, fdSlot{})
	}
	for i := lowerBound; i < len(t.slots); i++ {
		if t.slots[i].desc == nil {
			src.refs++
			t.slots[i] = fdSlot{desc: src}
			return i, nil
		}
	}
	if len(t.slots) >= FileDescriptorLimit {
		return -1, ENFILE
	}
	src.refs++
	t.slots = append(t.slots, fdSlot{desc: src})
	return len(t.slots) - 1, nil
}

// getCloexec and setCloexec report and set the FD_CLOEXEC bit on fd's slot, a property
// of the slot itself rather than the shared Descriptor it points at.
func (t *FDTable) getCloexec(fd int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if fd < 0 || fd >= len(t.slots) || t.slots[fd].desc == nil {
		return false, EBADF
	}
	return t.slots[fd].cloexec, nil
}

func (t *FDTable) setCloexec(fd int, v bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if fd < 0 || fd >= len(t.slots) || t.slots[fd].desc == nil {
		return EBADF
	}
	t.slots[fd].cloexec = v
	return nil
}
