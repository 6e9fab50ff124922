package ucfb

import (
	"fmt"
	"io"
)

// Target is the byte sink a Writer emits into. Writes append at Position;
// WriteAt overwrites bytes already written and is used to back-patch chunk
// sizes on Close.
type Target interface {
	Position() int64
	Write(p []byte) error
	WriteAt(p []byte, pos int64) error
}

// MemoryTarget appends to an in-memory buffer.
type MemoryTarget struct {
	buf []byte
}

// NewMemoryTarget returns a target that appends to dst.
func NewMemoryTarget(dst []byte) *MemoryTarget {
	return &MemoryTarget{buf: dst}
}

func (t *MemoryTarget) Position() int64 { return int64(len(t.buf)) }

func (t *MemoryTarget) Write(p []byte) error {
	t.buf = append(t.buf, p...)
	return nil
}

func (t *MemoryTarget) WriteAt(p []byte, pos int64) error {
	if pos < 0 || pos+int64(len(p)) > int64(len(t.buf)) {
		return fmt.Errorf("ucfb: write of %d bytes at %d outside buffer of %d", len(p), pos, len(t.buf))
	}
	copy(t.buf[pos:], p)
	return nil
}

// Bytes returns everything written so far.
func (t *MemoryTarget) Bytes() []byte { return t.buf }

// StreamTarget writes through an io.WriteSeeker such as an *os.File. Output
// starts at the stream's position when the target is created.
type StreamTarget struct {
	ws  io.WriteSeeker
	pos int64
}

// NewStreamTarget wraps ws.
func NewStreamTarget(ws io.WriteSeeker) (*StreamTarget, error) {
	pos, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("ucfb: stream position: %w", err)
	}
	return &StreamTarget{ws: ws, pos: pos}, nil
}

func (t *StreamTarget) Position() int64 { return t.pos }

func (t *StreamTarget) Write(p []byte) error {
	n, err := t.ws.Write(p)
	t.pos += int64(n)
	if err != nil {
		return fmt.Errorf("ucfb: write at %d: %w", t.pos, err)
	}
	return nil
}

func (t *StreamTarget) WriteAt(p []byte, pos int64) error {
	if _, err := t.ws.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("ucfb: seek to %d: %w", pos, err)
	}
	if _, err := t.ws.Write(p); err != nil {
		return fmt.Errorf("ucfb: patch at %d: %w", pos, err)
	}
	if _, err := t.ws.Seek(t.pos, io.SeekStart); err != nil {
		return fmt.Errorf("ucfb: seek back to %d: %w", t.pos, err)
	}
	return nil
}
