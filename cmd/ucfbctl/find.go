package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newFindCmd())
}

func newFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <file> <tag>",
		Short: "List every chunk with a given tag",
		Long: `The find command searches the whole chunk tree, descending into parent
chunks, and lists every chunk tagged <tag> in document order.

Example:
  ucfbctl find side.lvl modl
  ucfbctl find side.lvl INFO --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(args)
		},
	}
}

type findMatch struct {
	Path   string `json:"path"`
	Offset int    `json:"offset"`
	Size   int    `json:"size"`
}

func runFind(args []string) error {
	tags, err := parseTags(args[1:2])
	if err != nil {
		return err
	}
	want := tags[0].String()

	c, err := openContainer(args[0])
	if err != nil {
		return err
	}
	defer c.Close()

	s, err := loadSchema()
	if err != nil {
		return err
	}
	tree, err := walkTree(c.root.Reader, walkOptions{schema: s})
	if err != nil {
		return fmt.Errorf("walk %s: %w", args[0], err)
	}

	matches := []findMatch{}
	eachNode(tree, func(n *chunkInfo, _ int) {
		if n != tree && n.Tag == want {
			matches = append(matches, findMatch{Path: n.path, Offset: n.Offset, Size: n.Size})
		}
	})

	if jsonOut {
		return printJSON(map[string]any{"file": args[0], "tag": want, "matches": matches})
	}
	for _, m := range matches {
		printInfo("%s @0x%x (%d bytes)\n", m.Path, m.Offset, m.Size)
	}
	printVerbose("%d match(es)\n", len(matches))
	return nil
}
