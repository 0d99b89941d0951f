// Command simfs-gen walks a real directory tree and emits a TOML
// snapshot manifest package snapshot can load, the runtime counterpart
// of a source-tree traversal that once compiled a directory into a
// literal C++ initializer.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/coopvfs/coopvfs/pkg/snapshot"
)

var (
	outputPath string
	stdinPath  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "simfs-gen [flags] SOURCE_DIR",
		Short: "Generate a TOML snapshot manifest from a real directory tree",
		Long: `simfs-gen walks SOURCE_DIR and writes a TOML manifest describing every
directory, regular file, pipe and symlink it finds, suitable for
loading with package snapshot into an in-process virtual filesystem.

Example:
  simfs-gen --output snapshot.toml --stdin captured.bin /layers/base`,
		Args: cobra.ExactArgs(1),
		RunE: run,
	}

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "snapshot.toml", "Output manifest path")
	rootCmd.Flags().StringVar(&stdinPath, "stdin", "", "Optional file whose content preloads the generated image's stdin")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	sourceDir := args[0]

	var m snapshot.Manifest
	if stdinPath != "" {
		blob, err := os.ReadFile(stdinPath)
		if err != nil {
			return fmt.Errorf("read stdin blob: %w", err)
		}
		m.StdinContent = string(blob)
	}

	err := filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = "/" + filepath.ToSlash(rel)

		st, ok := info.Sys().(*unix.Stat_t)
		if !ok {
			return fmt.Errorf("%s: no unix stat info", path)
		}

		switch {
		case info.IsDir():
			m.Nodes = append(m.Nodes, snapshot.Record{Path: rel, Type: "dir", Mode: st.Mode & 0777})
		case info.Mode()&os.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			m.Nodes = append(m.Nodes, snapshot.Record{Path: rel, Type: "symlink", Mode: st.Mode & 0777, Content: target})
		case info.Mode()&os.ModeNamedPipe != 0:
			m.Nodes = append(m.Nodes, snapshot.Record{Path: rel, Type: "pipe", Mode: st.Mode & 0777})
		case info.Mode()&os.ModeSocket != 0:
			m.Nodes = append(m.Nodes, snapshot.Record{Path: rel, Type: "socket", Mode: st.Mode & 0777})
		case info.Mode().IsRegular():
			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			m.Nodes = append(m.Nodes, snapshot.Record{Path: rel, Type: "file", Mode: st.Mode & 0777, Content: string(content)})
		default:
			return fmt.Errorf("%s: unsupported file kind", path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := toml.NewEncoder(out).Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d nodes to %s\n", len(m.Nodes), strings.TrimSpace(outputPath))
	return nil
}
