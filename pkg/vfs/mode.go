package vfs

import "golang.org/x/sys/unix"

// Mode packs a POSIX file-type nibble together with owner/group/other
// permission triplets and the setuid/setgid/sticky bits, laid out the
// same way the real mode_t is (so stat conversions in package posix
// need no translation table).
type Mode uint32

const (
	typeMask Mode = unix.S_IFMT

	ModeDir     Mode = unix.S_IFDIR
	ModeRegular Mode = unix.S_IFREG
	ModeSymlink Mode = unix.S_IFLNK
	ModeFifo    Mode = unix.S_IFIFO
	ModeSocket  Mode = unix.S_IFSOCK
	ModeCharDev Mode = unix.S_IFCHR
	ModeBlockDev Mode = unix.S_IFBLK

	ModeSetuid Mode = unix.S_ISUID
	ModeSetgid Mode = unix.S_ISGID
	ModeSticky Mode = unix.S_ISVTX

	// permMask is every bit subtracted by umask and restorable by chmod.
	permMask Mode = 0777

	ModeUserRead  Mode = 0400
	ModeUserWrite Mode = 0200
	ModeUserExec  Mode = 0100

	ModeGroupRead  Mode = 0040
	ModeGroupWrite Mode = 0020
	ModeGroupExec  Mode = 0010

	ModeOtherRead  Mode = 0004
	ModeOtherWrite Mode = 0002
	ModeOtherExec  Mode = 0001

	// ModeAllRWX grants rwx to user, group and other; used as the
	// default mode for symlinks, which are immutable once created and
	// so carry no meaningful permission bits of their own.
	ModeAllRWX Mode = 0777

	// chmodMask is what Manager.ChmodAt is allowed to rewrite:
	// the type nibble never changes after creation.
	chmodMask Mode = permMask | ModeSetuid | ModeSetgid | ModeSticky
)

func (m Mode) Type() Mode { return m & typeMask }

func (m Mode) IsDir() bool      { return m.Type() == ModeDir }
func (m Mode) IsRegular() bool  { return m.Type() == ModeRegular }
func (m Mode) IsSymlink() bool  { return m.Type() == ModeSymlink }
func (m Mode) IsFifo() bool     { return m.Type() == ModeFifo }
func (m Mode) IsSocket() bool   { return m.Type() == ModeSocket }
func (m Mode) IsCharDev() bool  { return m.Type() == ModeCharDev }
func (m Mode) IsBlockDev() bool { return m.Type() == ModeBlockDev }

func (m Mode) UserRead() bool  { return m&ModeUserRead != 0 }
func (m Mode) UserWrite() bool { return m&ModeUserWrite != 0 }
func (m Mode) UserExec() bool  { return m&ModeUserExec != 0 }

func (m Mode) GroupRead() bool  { return m&ModeGroupRead != 0 }
func (m Mode) GroupWrite() bool { return m&ModeGroupWrite != 0 }
func (m Mode) GroupExec() bool  { return m&ModeGroupExec != 0 }

func (m Mode) OtherRead() bool  { return m&ModeOtherRead != 0 }
func (m Mode) OtherWrite() bool { return m&ModeOtherWrite != 0 }
func (m Mode) OtherExec() bool  { return m&ModeOtherExec != 0 }

// applyUmask masks off the requested permission bits on node creation;
// the type nibble and setgid-on-mkdir bit are never affected by umask.
func applyUmask(requested, umask Mode) Mode {
	mode := requested &^ (umask & permMask)
	if mode.IsDir() {
		mode |= ModeSetgid
	}
	return mode
}
