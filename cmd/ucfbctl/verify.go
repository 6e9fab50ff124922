package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ucfbkit/cmd/ucfbctl/logger"
)

func init() {
	rootCmd.AddCommand(newVerifyCmd())
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>",
		Short: "Check that a container rebuilds byte for byte",
		Long: `The verify command parses a container into an editable tree, assembles it
again and compares the result with the original bytes. A mismatch points
at an incorrect schema or a file not laid out by a conforming writer.

Example:
  ucfbctl verify side.lvl
  ucfbctl verify side.lvl --schema munge.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args)
		},
	}
}

var errVerifyMismatch = errors.New("rebuilt container differs from the original")

type verifyResult struct {
	File     string `json:"file"`
	OK       bool   `json:"ok"`
	Size     int    `json:"size"`
	Rebuilt  int    `json:"rebuilt_size"`
	Mismatch int    `json:"mismatch_offset"`
}

func firstDifference(a, b []byte) int {
	for i := range min(len(a), len(b)) {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return min(len(a), len(b))
	}
	return -1
}

func runVerify(args []string) error {
	c, err := openContainer(args[0])
	if err != nil {
		return err
	}
	defer c.Close()

	ed, err := c.buildEditor()
	if err != nil {
		return err
	}
	rebuilt, err := ed.Bytes()
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}

	// Bytes past the root chunk, padding included, are not part of the
	// container.
	orig := c.src.Data
	if end := 8 + c.root.Size(); end < len(orig) {
		orig = orig[:end]
	}
	diff := firstDifference(orig, rebuilt)
	res := verifyResult{File: args[0], OK: diff < 0, Size: len(orig), Rebuilt: len(rebuilt), Mismatch: diff}
	logger.Debug("verified container", "path", args[0], "ok", res.OK, "mismatch", diff)

	if jsonOut {
		if err := printJSON(res); err != nil {
			return err
		}
	} else if res.OK {
		printInfo("%s: OK (%d bytes)\n", args[0], res.Size)
	} else {
		printInfo("%s: MISMATCH at offset 0x%x (original %d bytes, rebuilt %d bytes)\n",
			args[0], diff, res.Size, res.Rebuilt)
	}
	if !res.OK {
		return errVerifyMismatch
	}
	return nil
}
