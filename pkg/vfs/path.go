package vfs

import "strings"

// CurrentDirectory is the AT_FDCWD sentinel.
const CurrentDirectory = -100

const (
	PathLimit        = 1023
	FileNameLimit    = 255
	FileDescriptorLimit = 1024
	PipeSizeLimit    = 1024
	socketStreamCap  = 1024
)

// IsAbsolute reports whether name starts a resolution at the root
// rather than the current directory.
func IsAbsolute(name string) bool {
	return strings.HasPrefix(name, "/")
}

func IsRelative(name string) bool {
	return !IsAbsolute(name)
}

// normalize collapses "//" runs and leaves "." / ".." components for
// the resolver to interpret (".." is only safe to collapse here when
// the resolver already knows the preceding component isn't a symlink,
// so normalize does not attempt that itself — see resolve in manager.go).
func normalize(name string) string {
	if name == "" {
		return name
	}
	var b strings.Builder
	b.Grow(len(name))
	absolute := IsAbsolute(name)
	if absolute {
		b.WriteByte('/')
	}
	first := true
	for _, part := range strings.Split(name, "/") {
		if part == "" {
			continue
		}
		if !first {
			b.WriteByte('/')
		}
		b.WriteString(part)
		first = false
	}
	return b.String()
}

// splitComponents breaks a normalized path into its non-empty segments.
func splitComponents(name string) []string {
	var out []string
	for _, part := range strings.Split(name, "/") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// splitFileName separates the trailing component (the name to create or
// remove) from the directory path that must resolve to an existing
// directory, mirroring _findDirectoryOfFile's use of path::splitFileName.
func splitFileName(name string) (dir, base string) {
	idx := strings.LastIndexByte(name, '/')
	if idx < 0 {
		return "", name
	}
	dir = name[:idx]
	if dir == "" {
		dir = "/"
	}
	return dir, name[idx+1:]
}
