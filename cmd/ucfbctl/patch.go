package main

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ucfbkit/cmd/ucfbctl/logger"
	"github.com/joshuapare/ucfbkit/internal/dirty"
	"github.com/joshuapare/ucfbkit/patch"
	"github.com/joshuapare/ucfbkit/ucfb"
)

var (
	patchPath   string
	patchOffset int
	patchType   string
	patchValue  string
	patchDryRun bool
	patchFlush  string
)

func init() {
	cmd := newPatchCmd()
	cmd.Flags().StringVar(&patchPath, "path", "", "Slash-separated chunk path below the root, e.g. modl/segm/INFO")
	cmd.Flags().IntVar(&patchOffset, "offset", 0, "Byte offset of the field in the chunk payload")
	cmd.Flags().StringVar(&patchType, "type", "u32", "Field type: u8, u16, u32, i32, f32")
	cmd.Flags().StringVar(&patchValue, "value", "", "New value (omit to print the current one)")
	cmd.Flags().BoolVar(&patchDryRun, "dry-run", false, "Show the change without writing it")
	cmd.Flags().StringVar(&patchFlush, "flush", "auto", "Durability: auto, data, full")
	_ = cmd.MarkFlagRequired("path")
	rootCmd.AddCommand(cmd)
}

func newPatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "patch <file>",
		Short: "Read or overwrite one field in place",
		Long: `The patch command maps the file read-write, follows --path from the root
chunk (first match at every level), and reads or overwrites the field at
--offset. Only the changed page is written back; chunk sizes never change.

Example:
  ucfbctl patch side.lvl --path modl/segm/INFO --type u32
  ucfbctl patch side.lvl --path modl/segm/INFO --offset 4 --type u32 --value 0x7f
  ucfbctl patch side.lvl --path tern/INFO --type f32 --value 0.5 --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatch(args)
		},
	}
}

func parseFlushMode(s string) (dirty.FlushMode, error) {
	switch s {
	case "auto":
		return dirty.FlushAuto, nil
	case "data":
		return dirty.FlushDataOnly, nil
	case "full":
		return dirty.FlushFull, nil
	}
	return 0, fmt.Errorf("unknown flush mode %q (want auto, data or full)", s)
}

type patchResult struct {
	File   string `json:"file"`
	Path   string `json:"path"`
	Offset int    `json:"offset"`
	Type   string `json:"type"`
	Old    string `json:"old"`
	New    string `json:"new,omitempty"`
	Wrote  bool   `json:"wrote"`
}

// setField reads the field of type T at the tweaker's head and, when value
// is non-empty, stores the parsed value over it.
func setField[T any](tw *ucfb.Tweaker, value string, parse func(string) (T, error), format func(T) string) (old, updated string, err error) {
	p, err := ucfb.Get[T](tw, ucfb.Unaligned)
	if err != nil {
		return "", "", err
	}
	old = format(p.Load())
	if value == "" {
		return old, "", nil
	}
	v, err := parse(value)
	if err != nil {
		return "", "", fmt.Errorf("value %q: %w", value, err)
	}
	if !patchDryRun {
		p.Store(v)
	}
	return old, format(v), nil
}

func parseUint[T ~uint8 | ~uint16 | ~uint32](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		v, err := strconv.ParseUint(s, 0, bits)
		return T(v), err
	}
}

func hexFormat[T ~uint8 | ~uint16 | ~uint32](digits int) func(T) string {
	return func(v T) string { return fmt.Sprintf("0x%0*x", digits, uint64(v)) }
}

func applyField(tw *ucfb.Tweaker, typ, value string) (string, string, error) {
	switch typ {
	case "u8":
		return setField(tw, value, parseUint[uint8](8), hexFormat[uint8](2))
	case "u16":
		return setField(tw, value, parseUint[uint16](16), hexFormat[uint16](4))
	case "u32":
		return setField(tw, value, parseUint[uint32](32), hexFormat[uint32](8))
	case "i32":
		return setField(tw, value,
			func(s string) (int32, error) {
				v, err := strconv.ParseInt(s, 0, 32)
				return int32(v), err
			},
			func(v int32) string { return strconv.FormatInt(int64(v), 10) })
	case "f32":
		return setField(tw, value,
			func(s string) (float32, error) {
				v, err := strconv.ParseFloat(s, 32)
				if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
					return 0, fmt.Errorf("not a finite number")
				}
				return float32(v), err
			},
			func(v float32) string { return strconv.FormatFloat(float64(v), 'g', -1, 32) })
	}
	return "", "", fmt.Errorf("unknown field type %q (want u8, u16, u32, i32 or f32)", typ)
}

func runPatch(args []string) error {
	mode, err := parseFlushMode(patchFlush)
	if err != nil {
		return err
	}
	path, err := parseTags(strings.Split(strings.Trim(patchPath, "/"), "/"))
	if err != nil {
		return err
	}

	printVerbose("Mapping %s read-write\n", args[0])
	f, err := patch.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	tw, err := f.Locate(ucfb.Aligned, path...)
	if err != nil {
		return fmt.Errorf("locate %s: %w", patchPath, err)
	}
	if err := tw.Consume(patchOffset, ucfb.Unaligned); err != nil {
		return fmt.Errorf("offset %d: %w", patchOffset, err)
	}
	old, updated, err := applyField(&tw, patchType, patchValue)
	if err != nil {
		return err
	}

	wrote := updated != "" && !patchDryRun
	if wrote {
		if err := f.Flush(context.Background(), mode); err != nil {
			return fmt.Errorf("flush: %w", err)
		}
		logger.Info("patched field", "file", args[0], "path", patchPath, "offset", patchOffset,
			"type", patchType, "old", old, "new", updated, "flush", mode.String())
	}

	if jsonOut {
		return printJSON(patchResult{
			File: args[0], Path: patchPath, Offset: patchOffset, Type: patchType,
			Old: old, New: updated, Wrote: wrote,
		})
	}
	switch {
	case updated == "":
		printInfo("%s+%d %s = %s\n", patchPath, patchOffset, patchType, old)
	case patchDryRun:
		printInfo("%s+%d %s: %s -> %s (dry run)\n", patchPath, patchOffset, patchType, old, updated)
	default:
		printInfo("%s+%d %s: %s -> %s\n", patchPath, patchOffset, patchType, old, updated)
	}
	return nil
}
