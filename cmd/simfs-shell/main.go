// Command simfs-shell drives an in-process virtual filesystem from an
// interactive line-oriented shell, the manual-exploration counterpart
// of a ptrace-driven CLI that instead drives a traced external process.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coopvfs/coopvfs/pkg/posix"
	"github.com/coopvfs/coopvfs/pkg/snapshot"
	"github.com/coopvfs/coopvfs/pkg/vfs"
)

var (
	manifestPath string
	initialUmask uint32
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "simfs-shell [flags]",
		Short: "Interactively explore an in-process virtual filesystem",
		Long: `simfs-shell opens a line-oriented session over an in-process virtual
filesystem, optionally preloaded from a TOML snapshot manifest, and
accepts commands: ls, cat, write, mkdir, rm, rmdir, ln, readlink, stat,
pwd, exit. There is no cd; pwd always prints /.`,
		RunE: run,
	}

	rootCmd.Flags().StringVar(&manifestPath, "snapshot", "", "Optional TOML snapshot manifest to preload")
	rootCmd.Flags().Uint32Var(&initialUmask, "umask", 022, "Initial umask; a leading 0 makes it octal (e.g. 022), otherwise it is decimal")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	mgr := vfs.NewManager(vfs.WithUmask(vfs.Mode(initialUmask)))

	if manifestPath != "" {
		m, err := snapshot.Load(manifestPath)
		if err != nil {
			return err
		}
		if err := snapshot.Apply(mgr, m); err != nil {
			return err
		}
	}

	fs := posix.New(mgr)
	return repl(cmd, fs)
}

func repl(cmd *cobra.Command, fs *posix.Facade) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	fmt.Fprint(out, "simfs> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			if exit := dispatch(out, fs, line); exit {
				return nil
			}
		}
		fmt.Fprint(out, "simfs> ")
	}
	return scanner.Err()
}

func dispatch(out io.Writer, fs *posix.Facade, line string) bool {
	fields := strings.Fields(line)
	cmd, rest := fields[0], fields[1:]

	report := func(err error) {
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}

	switch cmd {
	case "exit", "quit":
		return true
	case "pwd":
		fmt.Fprintln(out, "/")
	case "mkdir":
		if len(rest) != 1 {
			fmt.Fprintln(out, "usage: mkdir PATH")
			return false
		}
		report(fs.Mkdirat(vfs.CurrentDirectory, rest[0], 0755))
	case "rm":
		if len(rest) != 1 {
			fmt.Fprintln(out, "usage: rm PATH")
			return false
		}
		report(fs.Unlinkat(vfs.CurrentDirectory, rest[0], false))
	case "rmdir":
		if len(rest) != 1 {
			fmt.Fprintln(out, "usage: rmdir PATH")
			return false
		}
		report(fs.Unlinkat(vfs.CurrentDirectory, rest[0], true))
	case "write":
		if len(rest) < 2 {
			fmt.Fprintln(out, "usage: write PATH TEXT...")
			return false
		}
		fd, err := fs.Openat(vfs.CurrentDirectory, rest[0], 0x241 /* O_WRONLY|O_CREAT|O_TRUNC */, 0644)
		if err != nil {
			report(err)
			return false
		}
		_, err = fs.Write(fd, []byte(strings.Join(rest[1:], " ")+"\n"))
		report(err)
		report(fs.Close(fd))
	case "cat":
		if len(rest) != 1 {
			fmt.Fprintln(out, "usage: cat PATH")
			return false
		}
		fd, err := fs.Openat(vfs.CurrentDirectory, rest[0], 0, 0)
		if err != nil {
			report(err)
			return false
		}
		buf := make([]byte, 4096)
		n, err := fs.Read(fd, buf)
		if err != nil {
			report(err)
		} else {
			out.Write(buf[:n])
		}
		report(fs.Close(fd))
	case "ln":
		if len(rest) != 2 {
			fmt.Fprintln(out, "usage: ln TARGET LINKPATH")
			return false
		}
		report(fs.Symlinkat(rest[0], vfs.CurrentDirectory, rest[1]))
	case "readlink":
		if len(rest) != 1 {
			fmt.Fprintln(out, "usage: readlink PATH")
			return false
		}
		target, err := fs.Readlinkat(vfs.CurrentDirectory, rest[0])
		if err != nil {
			report(err)
			return false
		}
		fmt.Fprintln(out, target)
	case "stat":
		if len(rest) != 1 {
			fmt.Fprintln(out, "usage: stat PATH")
			return false
		}
		st, err := fs.Stat(rest[0])
		if err != nil {
			report(err)
			return false
		}
		fmt.Fprintf(out, "ino=%d mode=%s size=%d\n", st.Ino, strconv.FormatUint(uint64(st.Mode), 8), st.Size)
	case "ls":
		path := "/"
		if len(rest) == 1 {
			path = rest[0]
		}
		fd, err := fs.Opendir(path)
		if err != nil {
			report(err)
			return false
		}
		for {
			entry, more, err := fs.Readdir(fd)
			if err != nil {
				report(err)
				break
			}
			if !more {
				break
			}
			fmt.Fprintln(out, entry.Name)
		}
		report(fs.Closedir(fd))
	default:
		fmt.Fprintf(out, "unknown command: %s\n", cmd)
	}
	return false
}
