package vfs

// Directory is the DataItem for a directory Inode: a name -> Inode map
// plus an order slice so iteration (readdir) is deterministic and
// stable across insertions, the way an overlay filesystem's dirent
// layer keeps a parallel order alongside its whiteout map.
type Directory struct {
	self    *Inode
	entries map[string]*Inode
	order   []string
}

func newDirectory() *Directory {
	return &Directory{entries: make(map[string]*Inode)}
}

func (d *Directory) Kind() Mode { return ModeDir }

// bind attaches the Directory to the Inode that owns it, so "." can
// resolve to self without the Manager threading it through separately.
func (d *Directory) bind(self *Inode) {
	d.self = self
}

func (d *Directory) lookup(name string) (*Inode, bool) {
	switch name {
	case ".":
		return d.self, true
	case "..":
		if d.self.parent != nil {
			return d.self.parent, true
		}
		return d.self, true
	}
	n, ok := d.entries[name]
	return n, ok
}

func (d *Directory) insert(name string, child *Inode) {
	if _, exists := d.entries[name]; !exists {
		d.order = append(d.order, name)
	}
	d.entries[name] = child
}

func (d *Directory) remove(name string) {
	if _, ok := d.entries[name]; !ok {
		return
	}
	delete(d.entries, name)
	for i, n := range d.order {
		if n == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

func (d *Directory) empty() bool {
	return len(d.entries) == 0
}

// Entries returns (name, inode) pairs in insertion order, "." and ".."
// first, the way the original manager's readdir iterator presented
// synthetic entries ahead of real ones.
func (d *Directory) Entries() []DirEntry {
	out := make([]DirEntry, 0, len(d.order)+2)
	out = append(out, DirEntry{Name: ".", Inode: d.self})
	parent := d.self
	if d.self.parent != nil {
		parent = d.self.parent
	}
	out = append(out, DirEntry{Name: "..", Inode: parent})
	for _, name := range d.order {
		out = append(out, DirEntry{Name: name, Inode: d.entries[name]})
	}
	return out
}

// DirEntry is one readdir result.
type DirEntry struct {
	Name  string
	Inode *Inode
}
