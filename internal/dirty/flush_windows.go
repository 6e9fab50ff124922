//go:build windows

package dirty

import (
	"context"
	"unsafe"

	"golang.org/x/sys/windows"
)

func (t *Tracker) flushRanges(ctx context.Context, data []byte) error {
	for _, r := range t.coalesce() {
		if err := ctx.Err(); err != nil {
			return err
		}
		start, end, ok := clip(r, len(data))
		if !ok {
			continue
		}
		addr := uintptr(unsafe.Pointer(&data[start]))
		if err := windows.FlushViewOfFile(addr, uintptr(end-start)); err != nil {
			return err
		}
	}
	return nil
}

// fdatasync ignores fullfsync on Windows; FlushFileBuffers covers data and
// metadata.
func fdatasync(fd int, _ bool) error {
	return windows.FlushFileBuffers(windows.Handle(fd))
}
