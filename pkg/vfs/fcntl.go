package vfs

// FcntlCmd selects which fcntl(2) command Manager.Fcntl executes.
type FcntlCmd int

const (
	FGetFD FcntlCmd = iota
	FSetFD
	FGetFL
	FSetFL
	FDupFD
	FDupFDCloexec
)

// fcntlMutableFlags is the subset of OpenFlags F_SETFL is allowed to
// change; the access-mode and open-time bits (O_RDONLY/O_WRONLY/O_RDWR,
// O_CREAT, O_EXCL, O_TRUNC, O_DIRECTORY) are fixed for the life of the
// open file description, matching real fcntl(2).
const fcntlMutableFlags = OAppend | ONonblock

// Fcntl implements the fcntl(2) commands this model supports:
// F_GETFD/F_SETFD toggle the fd-table slot's FD_CLOEXEC bit, F_GETFL/
// F_SETFL read and narrow-write the descriptor's open flags, and
// F_DUPFD/F_DUPFD_CLOEXEC dup oldfd onto the lowest free slot that is
// still >= arg. arg is interpreted per cmd: the raw FD_CLOEXEC bit for
// F_SETFD, an OpenFlags value for F_SETFL, and a lower-bound fd number
// for F_DUPFD/F_DUPFD_CLOEXEC.
func (m *Manager) Fcntl(fd int, cmd FcntlCmd, arg int) (int, error) {
	switch cmd {
	case FGetFD:
		cloexec, err := m.fds.getCloexec(fd)
		if err != nil {
			return -1, err
		}
		if cloexec {
			return 1, nil
		}
		return 0, nil

	case FSetFD:
		if err := m.fds.setCloexec(fd, arg != 0); err != nil {
			return -1, err
		}
		return 0, nil

	case FGetFL:
		d, err := m.fds.get(fd)
		if err != nil {
			return -1, err
		}
		return int(d.flags), nil

	case FSetFL:
		d, err := m.fds.get(fd)
		if err != nil {
			return -1, err
		}
		next := (d.flags &^ fcntlMutableFlags) | (OpenFlags(arg) & fcntlMutableFlags)
		if err := d.SetFlags(next); err != nil {
			return -1, err
		}
		return 0, nil

	case FDupFD:
		return m.fds.duplicateFrom(fd, arg)

	case FDupFDCloexec:
		newfd, err := m.fds.duplicateFrom(fd, arg)
		if err != nil {
			return -1, err
		}
		if err := m.fds.setCloexec(newfd, true); err != nil {
			return -1, err
		}
		return newfd, nil

	default:
		return -1, EINVAL
	}
}
