package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	dumpDepth   int
	dumpPreview int
)

func init() {
	cmd := newDumpCmd()
	cmd.Flags().IntVar(&dumpDepth, "depth", 0, "Maximum depth (0 = unlimited)")
	cmd.Flags().IntVar(&dumpPreview, "preview", 16, "Leaf bytes to preview (0 = none)")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the chunk tree of a container",
		Long: `The dump command prints every chunk of a container with its offset and
size. Leaf chunks show a short preview of their payload.

Example:
  ucfbctl dump side.lvl
  ucfbctl dump side.lvl --depth 2 --preview 0
  ucfbctl dump shaders.lvl.zst --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}
}

func runDump(args []string) error {
	c, err := openContainer(args[0])
	if err != nil {
		return err
	}
	defer c.Close()

	s, err := loadSchema()
	if err != nil {
		return err
	}
	tree, err := walkTree(c.root.Reader, walkOptions{schema: s, depth: dumpDepth, previewLen: dumpPreview})
	if err != nil {
		return fmt.Errorf("walk %s: %w", args[0], err)
	}

	if jsonOut {
		return printJSON(tree)
	}

	eachNode(tree, func(n *chunkInfo, depth int) {
		line := fmt.Sprintf("%s%s  %d bytes @0x%x", strings.Repeat("  ", depth), n.Tag, n.Size, n.Offset)
		if n.Preview != "" {
			line += "  " + n.Preview
		}
		printInfo("%s\n", line)
	})
	return nil
}
