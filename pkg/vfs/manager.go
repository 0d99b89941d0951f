package vfs

import (
	"log/slog"
)

// ManagerOption configures a Manager at construction time, the usual
// functional-options idiom for flags applied over a base configuration.
type ManagerOption func(*Manager)

func WithScheduler(s Scheduler) ManagerOption {
	return func(m *Manager) { m.sched = s }
}

func WithChooser(c Chooser) ManagerOption {
	return func(m *Manager) { m.choose = c }
}

func WithUmask(umask Mode) ManagerOption {
	return func(m *Manager) { m.umask = umask & permMask }
}

func WithStandardInput(preload []byte) ManagerOption {
	return func(m *Manager) { m.stdinContent = preload }
}

func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.log = l }
}

// Manager is the single entry point for every filesystem operation:
// it owns the inode graph (reachable from root), the per-instance FD
// table, umask, and current directory, and threads a
// Scheduler/Chooser through every operation that can block or branch
// nondeterministically.
type Manager struct {
	root *Inode
	cwd  *Inode

	umask Mode
	fds   *FDTable

	sched  Scheduler
	choose Chooser
	log    *slog.Logger

	stdinContent []byte

	dirIterators map[int]*dirIterator
}

func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		sched:  inlineScheduler{},
		choose: firstChooser{},
		log:    newLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}

	root := newInode(ModeDir|0755, newDirectory())
	root.Data.(*Directory).bind(root)
	m.root = root
	m.cwd = root

	stdin := newInode(ModeCharDev, NewStandardInput(m.stdinContent))
	m.fds = newFDTable(stdin)
	m.dirIterators = make(map[int]*dirIterator)
	return m
}

// resolve walks name component by component starting from base (root
// for an absolute path, cwd or an AT_FDCWD-resolved directory
// otherwise), following symlinks along the way. followLast
// controls whether a symlink in the final component is itself followed
// (false for Lstat and ReadLinkAt, which must see the link itself).
func (m *Manager) resolve(base *Inode, name string, followLast bool) (*Inode, error) {
	return m.resolveSeen(base, name, followLast, make(map[*Inode]bool))
}

// resolveSeen is resolve with the set of symlinks already followed in
// this lookup, shared with the nested lookups of link targets so a loop
// spanning several links is reported as ELOOP.
func (m *Manager) resolveSeen(base *Inode, name string, followLast bool, seen map[*Inode]bool) (*Inode, error) {
	if len(name) > PathLimit {
		return nil, ENAMETOOLONG
	}
	cur := base
	if IsAbsolute(name) {
		cur = m.root
	}
	comps := splitComponents(normalize(name))
	for i, comp := range comps {
		if len(comp) > FileNameLimit {
			return nil, ENAMETOOLONG
		}
		dir, ok := cur.AsDirectory()
		if !ok {
			return nil, ENOTDIR
		}
		if err := requireExec(cur); err != nil {
			return nil, err
		}
		next, ok := dir.lookup(comp)
		if !ok {
			return nil, ENOENT
		}
		last := i == len(comps)-1
		if link, isLink := next.Data.(*Link); isLink && (!last || followLast) {
			if seen[next] {
				return nil, ELOOP
			}
			seen[next] = true
			target := link.Target
			var err error
			if IsAbsolute(target) {
				next, err = m.resolveSeen(m.root, target, true, seen)
			} else {
				next, err = m.resolveSeen(cur, target, true, seen)
			}
			if err != nil {
				return nil, err
			}
		}
		cur = next
	}
	return cur, nil
}

// requireExec enforces search permission on a directory being traversed:
// this model has a single effective user (uid/gid are stored but never
// compared against a caller identity), so the owner bit is the only
// one that can ever apply.
func requireExec(dir *Inode) error {
	if !dir.Mode.UserExec() {
		return EACCES
	}
	return nil
}

// requireReadExec enforces the read+execute permission a directory
// iterator needs on the directory it opens, distinct from the
// execute-only check resolve applies to directories it merely passes
// through on the way to a final component.
func requireReadExec(dir *Inode) error {
	if !dir.Mode.UserRead() || !dir.Mode.UserExec() {
		return EACCES
	}
	return nil
}

// dirFor resolves the at-descriptor/cwd base an *At operation starts
// from, the same AT_FDCWD handling every *at(2) syscall performs.
func (m *Manager) dirFor(dirfd int) (*Inode, error) {
	if dirfd == CurrentDirectory {
		return m.cwd, nil
	}
	d, err := m.fds.get(dirfd)
	if err != nil {
		return nil, err
	}
	if !d.inode.IsDir() {
		return nil, ENOTDIR
	}
	return d.inode, nil
}

// resolveParent resolves the directory a create/remove/rename targets
// and returns it together with the trailing component name.
func (m *Manager) resolveParent(dirfd int, name string) (*Inode, string, error) {
	base, err := m.dirFor(dirfd)
	if err != nil {
		return nil, "", err
	}
	dirPath, leaf := splitFileName(name)
	if dirPath == "" {
		if err := requireExec(base); err != nil {
			return nil, "", err
		}
		return base, leaf, nil
	}
	parent, err := m.resolve(base, dirPath, true)
	if err != nil {
		return nil, "", err
	}
	if !parent.IsDir() {
		return nil, "", ENOTDIR
	}
	return parent, leaf, nil
}

// CreateNodeAt creates a new Inode of the given kind as name under
// dirfd, applying umask the way every O_CREAT/mkdir/mknod path does; it
// is also the entry point package snapshot uses to materialize a
// serialized image, so every kind this model supports must be
// reachable through it.
func (m *Manager) CreateNodeAt(dirfd int, name string, requested Mode, data DataItem) (*Inode, error) {
	parent, leaf, err := m.resolveParent(dirfd, name)
	if err != nil {
		return nil, err
	}
	dir, ok := parent.AsDirectory()
	if !ok {
		return nil, ENOTDIR
	}
	if _, exists := dir.lookup(leaf); exists {
		return nil, EEXIST
	}
	mode := applyUmask(requested, m.umask)
	child := newInode(mode, data)
	child.parent = parent
	if childDir, ok := data.(*Directory); ok {
		childDir.bind(child)
	}
	dir.insert(leaf, child)
	m.log.Debug("create-node", "name", name, "mode", uint32(mode))
	return child, nil
}

// MkdirAt implements mkdir(2)/mkdirat(2).
func (m *Manager) MkdirAt(dirfd int, name string, mode Mode) error {
	_, err := m.CreateNodeAt(dirfd, name, ModeDir|(mode&permMask), newDirectory())
	return err
}

func (m *Manager) Umask(next Mode) Mode {
	old := m.umask
	m.umask = next & permMask
	return old
}

// Duplicate implements dup(2): a new lowest-available fd aliasing the
// same open file description as oldfd, sharing its offset from this
// point on (POSIX's dup, not a detached copy).
func (m *Manager) Duplicate(oldfd int) (int, error) {
	return m.fds.duplicateInto(oldfd)
}

// Duplicate2 implements dup2(2): newfd is closed first if it was open,
// then forced to alias the same open file description as oldfd.
func (m *Manager) Duplicate2(oldfd, newfd int) error {
	if oldfd == newfd {
		if _, err := m.fds.get(oldfd); err != nil {
			return err
		}
		return nil
	}
	src, err := m.fds.get(oldfd)
	if err != nil {
		return err
	}
	released, err := m.fds.installAliasAt(newfd, src)
	if err != nil {
		return err
	}
	if released != nil {
		m.releaseDescriptor(newfd, released)
	}
	return nil
}

func (m *Manager) CloseFile(fd int) error {
	d, lastRef, err := m.fds.free(fd)
	if err != nil {
		return err
	}
	if lastRef {
		m.releaseDescriptor(fd, d)
	}
	delete(m.dirIterators, fd)
	return nil
}

// releaseDescriptor runs the side effects that belong to an open file
// description going away for good, not merely one of its fd aliases:
// detaching a Pipe's reader/writer side, which otherwise would let a
// still-open dup keep a pipe's peer waiting forever on a side that
// looks closed, and closing a stream/seqpacket socket so its peer's
// peerGone latches.
func (m *Manager) releaseDescriptor(fd int, d *Descriptor) {
	if r, ok := reliableOf(d.inode.Data); ok {
		r.close()
	}
	if data, ok := d.inode.Data.(*Pipe); ok {
		if d.flags.Readable() {
			data.releaseReader()
		}
		if d.flags.Writable() {
			data.releaseWriter()
		}
	}
}
