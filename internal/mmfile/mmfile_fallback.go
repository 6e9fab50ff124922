//go:build !unix && !windows

package mmfile

import (
	"errors"
	"os"
)

// Map reads the entire file when mmap is not available.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	return data, func() error { return nil }, nil
}

// OpenRW is not available without shared memory mappings.
func OpenRW(string) (*File, error) {
	return nil, errors.ErrUnsupported
}
