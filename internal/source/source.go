// Package source loads container bytes from disk: plain files are memory
// mapped, zstd-compressed files (".zst") are decompressed into memory.
package source

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/joshuapare/ucfbkit/internal/mmfile"
)

// CompressedExt marks zstd-compressed containers.
const CompressedExt = ".zst"

// maxDecoded bounds decompression to the largest size a chunk header can
// describe.
const maxDecoded = math.MaxInt32 + 8

// IsCompressed reports whether path names a compressed container.
func IsCompressed(path string) bool {
	return strings.EqualFold(extOf(path), CompressedExt)
}

func extOf(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 && !strings.ContainsAny(path[i:], `/\`) {
		return path[i:]
	}
	return ""
}

// Source is a loaded container. Data stays valid until Close.
type Source struct {
	Path       string
	Data       []byte
	Compressed bool
	release    func() error
}

// Load reads the container at path.
func Load(path string) (*Source, error) {
	if IsCompressed(path) {
		data, err := decompressFile(path)
		if err != nil {
			return nil, err
		}
		return &Source{Path: path, Data: data, Compressed: true, release: func() error { return nil }}, nil
	}
	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", path, err)
	}
	return &Source{Path: path, Data: data, release: cleanup}, nil
}

// Close releases the mapping, if any. It is safe to call twice.
func (s *Source) Close() error {
	if s.release == nil {
		return nil
	}
	err := s.release()
	s.release = nil
	s.Data = nil
	return err
}

func decompressFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1), zstd.WithDecoderMaxMemory(maxDecoded))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	data, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", path, err)
	}
	return data, nil
}
