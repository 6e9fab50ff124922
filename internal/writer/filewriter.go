// Package writer exposes sinks for assembled containers.
package writer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/joshuapare/ucfbkit/internal/source"
)

// FileWriter writes container bytes to a filesystem path atomically.
type FileWriter struct {
	Path string

	// Compress zstd-compresses the output. Paths ending in ".zst" are
	// always compressed.
	Compress bool

	// Level is the zstd level used when compressing. Zero means
	// zstd.SpeedBetterCompression.
	Level zstd.EncoderLevel
}

func (w *FileWriter) compressed() bool {
	return w.Compress || source.IsCompressed(w.Path)
}

func (w *FileWriter) encode(buf []byte) ([]byte, error) {
	level := w.Level
	if level == 0 {
		level = zstd.SpeedBetterCompression
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(buf, make([]byte, 0, len(buf)/2)), nil
}

// WriteFile writes buf to the configured path atomically via temp file +
// rename, compressing first when configured to.
func (w *FileWriter) WriteFile(buf []byte) error {
	if w.compressed() {
		var err error
		if buf, err = w.encode(buf); err != nil {
			return err
		}
	}

	// Temp file in the same directory so the rename is atomic.
	dir := filepath.Dir(w.Path)
	tmpFile, err := os.CreateTemp(dir, ".ucfbkit-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, writeErr := tmpFile.Write(buf); writeErr != nil {
		return fmt.Errorf("write temp file: %w", writeErr)
	}
	if syncErr := tmpFile.Sync(); syncErr != nil {
		return fmt.Errorf("sync temp file: %w", syncErr)
	}
	if closeErr := tmpFile.Close(); closeErr != nil {
		return fmt.Errorf("close temp file: %w", closeErr)
	}
	tmpFile = nil

	if renameErr := os.Rename(tmpPath, w.Path); renameErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", renameErr)
	}
	return nil
}
