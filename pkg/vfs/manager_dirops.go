package vfs

// dirIterator is the cursor a directory-descriptor readdir call
// advances; it is kept in Manager.dirIterators rather than on the
// Descriptor itself so closing and reopening the same fd number never
// confuses two unrelated iterations.
type dirIterator struct {
	entries []DirEntry
	pos     int
}

// OpenDirectory implements opendir(3)-over-openat: it resolves name to
// a directory Inode and installs a fresh iterator positioned before the
// first entry.
func (m *Manager) OpenDirectory(dirfd int, name string) (int, error) {
	base, err := m.dirFor(dirfd)
	if err != nil {
		return -1, err
	}
	node, err := m.resolve(base, name, true)
	if err != nil {
		return -1, err
	}
	dir, ok := node.AsDirectory()
	if !ok {
		return -1, ENOTDIR
	}
	if err := requireReadExec(node); err != nil {
		return -1, err
	}
	d := &Descriptor{inode: node, flags: ORdOnly | ODirectory}
	fd, err := m.fds.allocate(d)
	if err != nil {
		return -1, err
	}
	m.dirIterators[fd] = &dirIterator{entries: dir.Entries()}
	return fd, nil
}

// ReadDirectory returns the next entry, (DirEntry{}, false, nil) at
// end of stream, matching readdir(3)'s NULL-without-errno convention
// for "no more entries" versus a real error.
func (m *Manager) ReadDirectory(fd int) (DirEntry, bool, error) {
	d, err := m.fds.get(fd)
	if err != nil {
		return DirEntry{}, false, err
	}
	if !d.flags.has(ODirectory) {
		return DirEntry{}, false, ENOTDIR
	}
	it, ok := m.dirIterators[fd]
	if !ok {
		return DirEntry{}, false, EBADF
	}
	if it.pos >= len(it.entries) {
		return DirEntry{}, false, nil
	}
	e := it.entries[it.pos]
	it.pos++
	return e, true, nil
}

func (m *Manager) CloseDirectory(fd int) error {
	delete(m.dirIterators, fd)
	_, _, err := m.fds.free(fd)
	return err
}

// Pipe implements pipe(2): two fds backed by one Pipe Inode, reader
// first per POSIX's pipefd[0]=read,pipefd[1]=write convention.
func (m *Manager) Pipe() (readfd, writefd int, err error) {
	node := newInode(ModeFifo|0600, NewPipe())
	p := node.Data.(*Pipe)
	p.assignReader()
	p.assignWriter()

	rd := &Descriptor{inode: node, flags: ORdOnly}
	wr := &Descriptor{inode: node, flags: OWrOnly}

	readfd, err = m.fds.allocate(rd)
	if err != nil {
		return -1, -1, err
	}
	writefd, err = m.fds.allocate(wr)
	if err != nil {
		m.fds.free(readfd)
		return -1, -1, err
	}
	return readfd, writefd, nil
}
