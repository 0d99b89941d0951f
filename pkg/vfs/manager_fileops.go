package vfs

// OpenFileAt implements open(2)/openat(2). O_CREAT creates a
// RegularFile (applying umask) when the name is missing; otherwise the
// existing Inode is opened, following a symlink in the final component
// (ELOOP on a link loop), refusing directories opened for write and
// refusing to open a second side of a Pipe that already has one
// (surfaced as a Problem, not an errno).
func (m *Manager) OpenFileAt(dirfd int, name string, flags OpenFlags, requested Mode) (int, error) {
	parent, leaf, err := m.resolveParent(dirfd, name)
	if err != nil {
		return -1, err
	}
	dir, ok := parent.AsDirectory()
	if !ok {
		return -1, ENOTDIR
	}

	node, exists := dir.lookup(leaf)
	if exists {
		if _, isLink := node.Data.(*Link); isLink {
			node, err = m.resolve(parent, leaf, true)
			if err != nil {
				return -1, err
			}
		}
	}
	if !exists {
		if !flags.has(OCreat) {
			return -1, ENOENT
		}
		mode := applyUmask(requested, m.umask) | ModeRegular
		node = newInode(mode, NewRegularFile())
		node.parent = parent
		dir.insert(leaf, node)
	} else if flags.has(OCreat) && flags.has(OExcl) {
		return -1, EEXIST
	}

	if node.IsDir() && flags.Writable() {
		return -1, EISDIR
	}

	if flags.has(OTrunc) {
		if rf, ok := node.Data.(*RegularFile); ok {
			if err := rf.Truncate(0); err != nil {
				return -1, err
			}
		}
	}

	if pipe, isPipe := node.Data.(*Pipe); isPipe {
		if flags.Readable() {
			pipe.assignReader()
		}
		if flags.Writable() {
			pipe.assignWriter()
		}
	}

	d := &Descriptor{inode: node, flags: flags}
	if flags.has(OAppend) {
		d.appendLatched = true
	}
	if rf, ok := node.Data.(*RegularFile); ok && flags.has(OAppend) {
		d.offset = rf.Size()
	}
	fd, err := m.fds.allocate(d)
	if err != nil {
		return -1, err
	}
	m.log.Debug("open", "name", name, "fd", fd)
	return fd, nil
}

// nonblockFlags translates a descriptor's O_NONBLOCK bit into the
// MsgFlags a generic Read/Write hands a socket DataItem, so fcntl(fd,
// F_SETFL, O_NONBLOCK) affects plain read(2)/write(2) on a socket fd
// exactly as it would Send/Recv.
func nonblockFlags(d *Descriptor) MsgFlags {
	if d.flags.has(ONonblock) {
		return MsgDontWait
	}
	return 0
}

func (m *Manager) Read(fd int, buf []byte) (int, error) {
	d, err := m.fds.get(fd)
	if err != nil {
		return 0, err
	}
	if !d.flags.Readable() {
		return 0, EBADF
	}
	switch data := d.inode.Data.(type) {
	case *RegularFile:
		n := data.ReadAt(buf, d.offset)
		d.offset += int64(n)
		return n, nil
	case *Pipe:
		return data.Read(m.sched, buf), nil
	case *SocketStream:
		return data.Read(m.sched, buf, nonblockFlags(d))
	case *SeqPacketSocket:
		return data.Read(m.sched, buf, nonblockFlags(d))
	case *StandardInput:
		return data.Read(buf), nil
	default:
		return 0, EINVAL
	}
}

func (m *Manager) Write(fd int, buf []byte) (int, error) {
	d, err := m.fds.get(fd)
	if err != nil {
		return 0, err
	}
	if !d.flags.Writable() {
		return 0, EBADF
	}
	switch data := d.inode.Data.(type) {
	case *RegularFile:
		if d.flags.has(OAppend) {
			d.offset = data.Size()
		}
		n, err := data.WriteAt(buf, d.offset)
		d.offset += int64(n)
		return n, err
	case *Pipe:
		return data.Write(m.sched, buf)
	case *SocketStream:
		return data.Write(m.sched, buf, nonblockFlags(d))
	case *SeqPacketSocket:
		return data.Write(m.sched, buf, nonblockFlags(d))
	case *WriteOnlyFile:
		return data.WriteAt(buf), nil
	default:
		return 0, EINVAL
	}
}

// Pread/Pwrite save and restore the descriptor's offset around a
// positional access rather than threading an independent offset
// through RegularFile itself.
func (m *Manager) Pread(fd int, buf []byte, offset int64) (int, error) {
	d, err := m.fds.get(fd)
	if err != nil {
		return 0, err
	}
	rf, ok := d.inode.Data.(*RegularFile)
	if !ok {
		return 0, ESPIPE
	}
	saved := d.offset
	d.offset = offset
	n := rf.ReadAt(buf, d.offset)
	d.offset = saved
	return n, nil
}

func (m *Manager) Pwrite(fd int, buf []byte, offset int64) (int, error) {
	d, err := m.fds.get(fd)
	if err != nil {
		return 0, err
	}
	rf, ok := d.inode.Data.(*RegularFile)
	if !ok {
		return 0, ESPIPE
	}
	saved := d.offset
	d.offset = offset
	n, err := rf.WriteAt(buf, d.offset)
	d.offset = saved
	return n, err
}

func (m *Manager) Lseek(fd int, offset int64, whence int) (int64, error) {
	d, err := m.fds.get(fd)
	if err != nil {
		return -1, err
	}
	rf, ok := d.inode.Data.(*RegularFile)
	if !ok {
		return -1, ESPIPE
	}
	var next int64
	switch whence {
	case SeekSet:
		next = offset
	case SeekCur:
		next = d.offset + offset
	case SeekEnd:
		next = rf.Size() + offset
	default:
		return -1, EINVAL
	}
	if next < 0 {
		return -1, EINVAL
	}
	d.offset = next
	return next, nil
}

const (
	SeekSet = iota
	SeekCur
	SeekEnd
)

func (m *Manager) Truncate(fd int, size int64) error {
	d, err := m.fds.get(fd)
	if err != nil {
		return err
	}
	rf, ok := d.inode.Data.(*RegularFile)
	if !ok {
		return EINVAL
	}
	return rf.Truncate(size)
}

func (m *Manager) ChangeDirectory(dirfd int, name string) error {
	base, err := m.dirFor(dirfd)
	if err != nil {
		return err
	}
	target, err := m.resolve(base, name, true)
	if err != nil {
		return err
	}
	if !target.IsDir() {
		return ENOTDIR
	}
	m.cwd = target
	return nil
}

func (m *Manager) ChmodAt(dirfd int, name string, mode Mode) error {
	base, err := m.dirFor(dirfd)
	if err != nil {
		return err
	}
	target, err := m.resolve(base, name, true)
	if err != nil {
		return err
	}
	target.Mode = target.Mode.Type() | (mode & chmodMask)
	return nil
}

func (m *Manager) AccessAt(dirfd int, name string) error {
	base, err := m.dirFor(dirfd)
	if err != nil {
		return err
	}
	_, err = m.resolve(base, name, true)
	return err
}

func (m *Manager) CreateSymLinkAt(dirfd int, target, linkName string) error {
	_, err := m.CreateNodeAt(dirfd, linkName, ModeSymlink|ModeAllRWX, &Link{Target: target})
	return err
}

func (m *Manager) ReadLinkAt(dirfd int, name string) (string, error) {
	base, err := m.dirFor(dirfd)
	if err != nil {
		return "", err
	}
	node, err := m.resolve(base, name, false)
	if err != nil {
		return "", err
	}
	link, ok := node.Data.(*Link)
	if !ok {
		return "", EINVAL
	}
	return link.Target, nil
}

func (m *Manager) CreateHardLinkAt(dirfd int, existing string, newDirfd int, newName string) error {
	base, err := m.dirFor(dirfd)
	if err != nil {
		return err
	}
	target, err := m.resolve(base, existing, true)
	if err != nil {
		return err
	}
	if target.IsDir() {
		return EPERM
	}
	parent, leaf, err := m.resolveParent(newDirfd, newName)
	if err != nil {
		return err
	}
	dir, ok := parent.AsDirectory()
	if !ok {
		return ENOTDIR
	}
	if _, exists := dir.lookup(leaf); exists {
		return EEXIST
	}
	target.nlink++
	dir.insert(leaf, target)
	return nil
}

func (m *Manager) RemoveFile(dirfd int, name string) error {
	parent, leaf, err := m.resolveParent(dirfd, name)
	if err != nil {
		return err
	}
	dir, ok := parent.AsDirectory()
	if !ok {
		return ENOTDIR
	}
	node, exists := dir.lookup(leaf)
	if !exists {
		return ENOENT
	}
	if node.IsDir() {
		return EISDIR
	}
	node.nlink--
	dir.remove(leaf)
	return nil
}

func (m *Manager) RemoveDirectory(dirfd int, name string) error {
	parent, leaf, err := m.resolveParent(dirfd, name)
	if err != nil {
		return err
	}
	dir, ok := parent.AsDirectory()
	if !ok {
		return ENOTDIR
	}
	node, exists := dir.lookup(leaf)
	if !exists {
		return ENOENT
	}
	childDir, ok := node.AsDirectory()
	if !ok {
		return ENOTDIR
	}
	if !childDir.empty() {
		return ENOTEMPTY
	}
	dir.remove(leaf)
	return nil
}

// rejectRenameIntoSelf walks newParent's ancestor chain back to root,
// returning EINVAL if node appears in it: rename("d", "d/e/d") would
// otherwise unlink d from its current parent and relink it under its
// own former child e, producing a directory graph that refers back to
// itself.
func rejectRenameIntoSelf(node, newParent *Inode) error {
	for anc := newParent; anc != nil; anc = anc.parent {
		if anc == node {
			return EINVAL
		}
	}
	return nil
}

// RenameAt implements rename(2): the new name is unlinked first if it
// already exists (replacing a file, or an empty directory of the same
// kind), then the old directory entry is moved, never copied, so the
// Inode identity and any open descriptors on it survive the rename.
func (m *Manager) RenameAt(oldDirfd int, oldName string, newDirfd int, newName string) error {
	oldParent, oldLeaf, err := m.resolveParent(oldDirfd, oldName)
	if err != nil {
		return err
	}
	oldDir, ok := oldParent.AsDirectory()
	if !ok {
		return ENOTDIR
	}
	node, exists := oldDir.lookup(oldLeaf)
	if !exists {
		return ENOENT
	}

	newParent, newLeaf, err := m.resolveParent(newDirfd, newName)
	if err != nil {
		return err
	}
	newDir, ok := newParent.AsDirectory()
	if !ok {
		return ENOTDIR
	}

	if node.IsDir() {
		if err := rejectRenameIntoSelf(node, newParent); err != nil {
			return err
		}
	}

	if existing, exists := newDir.lookup(newLeaf); exists {
		if existing == node {
			return nil
		}
		existingIsDir := existing.IsDir()
		nodeIsDir := node.IsDir()
		if existingIsDir && !nodeIsDir {
			return EISDIR
		}
		if !existingIsDir && nodeIsDir {
			return ENOTDIR
		}
		if existingIsDir {
			existingDir, _ := existing.AsDirectory()
			if !existingDir.empty() {
				return ENOTEMPTY
			}
		}
		newDir.remove(newLeaf)
	}

	oldDir.remove(oldLeaf)
	node.parent = newParent
	newDir.insert(newLeaf, node)
	return nil
}
