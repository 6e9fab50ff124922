// Package mmfile provides platform-specific helpers for memory-mapping
// container files.
package mmfile

import (
	"errors"
	"os"
)

// File is a writable, shared mapping of a whole file.
type File struct {
	f     *os.File
	data  []byte
	unmap func() error
}

// Bytes returns the mapped contents. The slice is invalid after Close.
func (m *File) Bytes() []byte { return m.data }

// FD returns the underlying file descriptor (a HANDLE on Windows).
func (m *File) FD() int { return int(m.f.Fd()) }

// Name returns the path the file was opened with.
func (m *File) Name() string { return m.f.Name() }

// Close unmaps the file and closes it. Unflushed stores may still be written
// back by the OS afterwards.
func (m *File) Close() error {
	if m.f == nil {
		return nil
	}
	err := m.unmap()
	m.data = nil
	err = errors.Join(err, m.f.Close())
	m.f = nil
	return err
}
