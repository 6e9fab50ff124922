package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ucfbkit/cmd/ucfbctl/logger"
	"github.com/joshuapare/ucfbkit/internal/writer"
	"github.com/joshuapare/ucfbkit/ucfb"
)

var (
	stripTags     []string
	stripCompress bool
)

func init() {
	cmd := newStripCmd()
	cmd.Flags().StringSliceVarP(&stripTags, "tag", "t", nil, "Chunk tag to remove (repeatable)")
	cmd.Flags().BoolVar(&stripCompress, "compress", false, "zstd-compress the output")
	_ = cmd.MarkFlagRequired("tag")
	rootCmd.AddCommand(cmd)
}

func newStripCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strip <in> <out>",
		Short: "Remove chunks by tag and write a new container",
		Long: `The strip command rebuilds a container without the chunks tagged with any
of the given tags, at any depth, and writes the result atomically.

Example:
  ucfbctl strip side.lvl side_nodebug.lvl --tag DBG_
  ucfbctl strip side.lvl side.lvl.zst -t DBG_ -t PRFL`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStrip(args)
		},
	}
}

// stripTree erases matching entries from p and every parent below it.
func stripTree(p *ucfb.ParentChunk, drop map[ucfb.MagicNumber]bool) int {
	removed := 0
	stack := []*ucfb.ParentChunk{p}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		removed += top.EraseFunc(func(e ucfb.Entry) bool { return drop[e.Magic] })
		for _, e := range top.All() {
			if e.IsParent() {
				stack = append(stack, e.Parent())
			}
		}
	}
	return removed
}

func runStrip(args []string) error {
	tags, err := parseTags(stripTags)
	if err != nil {
		return err
	}
	drop := make(map[ucfb.MagicNumber]bool, len(tags))
	for _, mn := range tags {
		drop[mn] = true
	}

	c, err := openContainer(args[0])
	if err != nil {
		return err
	}
	ed, err := c.buildEditor()
	_ = c.Close()
	if err != nil {
		return err
	}

	removed := stripTree(&ed.ParentChunk, drop)
	out, err := ed.Bytes()
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}

	w := &writer.FileWriter{Path: args[1], Compress: stripCompress}
	if err := w.WriteFile(out); err != nil {
		return fmt.Errorf("write %s: %w", args[1], err)
	}
	logger.Info("stripped container", "in", args[0], "out", args[1], "removed", removed, "bytes", len(out))

	if jsonOut {
		return printJSON(map[string]any{"in": args[0], "out": args[1], "removed": removed, "size": len(out)})
	}
	printInfo("Removed %d chunk(s), wrote %s (%d bytes)\n", removed, args[1], len(out))
	return nil
}
