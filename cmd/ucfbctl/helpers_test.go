package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/ucfbkit/ucfb"
)

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)
	return buf.String(), fnErr
}

// assertJSON checks that output is valid JSON and decodes it into v.
func assertJSON(t *testing.T, output string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(output), v), "output: %s", output)
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

// assertNotContains checks that output doesn't contain unwanted strings
func assertNotContains(t *testing.T, output string, unwanted []string) {
	t.Helper()
	for _, dont := range unwanted {
		if strings.Contains(output, dont) {
			t.Errorf("output contains unwanted string %q\nGot: %s", dont, output)
		}
	}
}

// resetFlags puts every global flag back to its default.
func resetFlags(t *testing.T) {
	t.Helper()
	verbose, quiet, jsonOut, debug = false, false, false, false
	logDir, schemaPath = "", ""
	dumpDepth, dumpPreview = 0, 16
	stripTags, stripCompress = nil, false
	patchPath, patchOffset, patchType, patchValue = "", 0, "u32", ""
	patchDryRun, patchFlush = false, "auto"
}

func leaf(tag string, fill func(w *ucfb.DataWriter)) ucfb.Entry {
	d := ucfb.NewDataChunk(nil)
	fill(d.Writer())
	return ucfb.Entry{Magic: ucfb.MN(tag), Node: d}
}

func str(s string) func(w *ucfb.DataWriter) {
	return func(w *ucfb.DataWriter) { w.WriteString(s, ucfb.Unaligned) }
}

func model(name string, flags uint32) ucfb.Entry {
	segm := ucfb.NewParentChunk(
		leaf("INFO", func(w *ucfb.DataWriter) { w.WriteValues(ucfb.Aligned, flags, uint32(0xff)) }),
		leaf("MTRL", str(name+"_mat")),
	)
	return ucfb.Entry{Magic: ucfb.MN("modl"), Node: ucfb.NewParentChunk(
		leaf("NAME", str(name)),
		ucfb.Entry{Magic: ucfb.MN("segm"), Node: segm},
	)}
}

// fixtureBytes is a small level: a name, two models and a debug chunk.
func fixtureBytes(t *testing.T) []byte {
	t.Helper()
	ed := ucfb.NewEditor()
	ed.AppendEntries(
		leaf("NAME", str("side")),
		model("rock", 0x10),
		model("tree", 0x20),
		leaf("DBG_", func(w *ucfb.DataWriter) { w.Write([]byte{1, 2, 3}, ucfb.Unaligned) }),
	)
	b, err := ed.Bytes()
	require.NoError(t, err)
	return b
}

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "side.lvl")
	require.NoError(t, os.WriteFile(path, fixtureBytes(t), 0o644))
	return path
}
