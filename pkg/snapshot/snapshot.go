// Package snapshot loads a serialized filesystem image into a
// vfs.Manager, the same pre-order directory-tree walk a filesystem
// generator uses to emit a VFS literal, reworked here as a TOML
// manifest loaded at runtime instead
// of a generated source file compiled in.
package snapshot

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/coopvfs/coopvfs/pkg/vfs"
)

// Record is one manifest entry. Directories are walked first so every
// file/pipe/symlink record's Path can assume its parent already exists,
// mirroring brick::fs::traverseDirectoryTree's pre-order, directories-
// before-children guarantee.
type Record struct {
	Path    string `toml:"path"`
	Type    string `toml:"type"`
	Mode    uint32 `toml:"mode"`
	Content string `toml:"content"`
}

// Manifest is the top-level TOML document; StdinContent carries a
// captured stdin blob alongside the tree, the way the generator's
// three-argument form bundled one. Apply does not read it: fd 0 is
// preloaded only through vfs.WithStandardInput when the Manager is built.
type Manifest struct {
	StdinContent string   `toml:"stdin_content"`
	Nodes        []Record `toml:"node"`
}

// Load parses path as a TOML manifest.
func Load(path string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("snapshot: decode %s: %w", path, err)
	}
	return &m, nil
}

// Apply materializes every record in m into mgr via the same
// CreateNodeAt path Manager.MkdirAt/CreateSymLinkAt use, so a loaded snapshot
// is indistinguishable from one built up by ordinary syscalls.
func Apply(mgr *vfs.Manager, m *Manifest) error {
	for _, rec := range m.Nodes {
		if err := applyRecord(mgr, rec); err != nil {
			return fmt.Errorf("snapshot: %s: %w", rec.Path, err)
		}
	}
	return nil
}

func applyRecord(mgr *vfs.Manager, rec Record) error {
	mode := vfs.Mode(rec.Mode)
	switch rec.Type {
	case "dir":
		return mgr.MkdirAt(vfs.CurrentDirectory, rec.Path, mode)
	case "file":
		_, err := mgr.CreateNodeAt(vfs.CurrentDirectory, rec.Path, vfs.ModeRegular|mode, vfs.NewRegularFileFromContent([]byte(rec.Content)))
		return err
	case "pipe":
		_, err := mgr.CreateNodeAt(vfs.CurrentDirectory, rec.Path, vfs.ModeFifo|mode, vfs.NewPipe())
		return err
	case "symlink":
		return mgr.CreateSymLinkAt(vfs.CurrentDirectory, rec.Content, rec.Path)
	case "socket":
		_, err := mgr.CreateNodeAt(vfs.CurrentDirectory, rec.Path, vfs.ModeSocket|mode, vfs.NewSocketDatagram())
		return err
	default:
		return fmt.Errorf("unknown node type %q", rec.Type)
	}
}

// LoadStdin reads path's contents for use with vfs.WithStandardInput,
// the runtime counterpart of the generator's captured-stdin blob.
func LoadStdin(path string) ([]byte, error) {
	return os.ReadFile(path)
}
