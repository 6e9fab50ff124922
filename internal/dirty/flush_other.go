//go:build !linux && !freebsd && !darwin && !windows

package dirty

import (
	"context"
	"os"
)

// flushRanges is a no-op where no msync binding is wired up; shared
// mappings are written back by the kernel on unmap.
func (t *Tracker) flushRanges(ctx context.Context, _ []byte) error {
	return ctx.Err()
}

func fdatasync(fd int, _ bool) error {
	return os.NewFile(uintptr(fd), "").Sync()
}
