package vfs

import "sync/atomic"

var inoCounter uint64

func nextIno() uint64 {
	return atomic.AddUint64(&inoCounter, 1)
}

// DataItem is the tagged-sum payload every Inode carries. Each concrete
// type (Directory, RegularFile, Pipe, a Socket variant, Link,
// WriteOnlyFile, StandardInput) implements it; Manager type-switches on
// the concrete type where the operation is kind-specific, the same
// dispatch the original's virtual fs_file hierarchy used method calls
// for.
type DataItem interface {
	// Kind returns the Mode type nibble this item presents through
	// stat, independent of the Inode's own stored Mode.
	Kind() Mode
}

// Inode is a node in the filesystem graph: a stable identity (Ino), a
// Mode, and a DataItem payload. Directories hold children through their
// own DataItem (Directory); every other kind is a leaf.
//
// Ownership is plain Go pointers rather than the original's
// shared_ptr/weak_ptr pairing: the garbage collector already resolves
// the reference-counting half of that pattern, and the observable half
// (can a peer reached through a "weak" path still be used?) is modeled
// explicitly per data item with a Closed/Released flag instead of a
// dangling-pointer check, see Pipe.writerGone and ReliableSocket.peerGone.
type Inode struct {
	Ino   uint64
	Mode  Mode
	Data  DataItem
	nlink int

	// parent is nil only for the root. It is a strong pointer; the
	// graph lives for the Manager's whole lifetime and nothing but
	// RemoveDirectory/RemoveFile/RenameAt ever severs an edge, at which point
	// the child becomes unreachable from root and is collected
	// normally once any descriptors referencing it close.
	parent *Inode
}

func newInode(mode Mode, data DataItem) *Inode {
	return &Inode{
		Ino:   nextIno(),
		Mode:  mode,
		Data:  data,
		nlink: 1,
	}
}

func (n *Inode) AsDirectory() (*Directory, bool) {
	d, ok := n.Data.(*Directory)
	return d, ok
}

func (n *Inode) IsDir() bool { return n.Mode.IsDir() }
