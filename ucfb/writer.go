package ucfb

import (
	"fmt"
	"math"

	"github.com/joshuapare/ucfbkit/internal/buf"
)

// Writer emits one chunk into a Target. The header goes out when the Writer
// is created with a zero size; Close back-patches the real size.
//
// A chunk's size counts everything written into its payload, including
// padding added by aligned writes. Padding in front of a child header is
// written when the next child is emplaced or the parent makes an aligned
// write, and is counted by the chunk it lands in. A closing child adds only
// its own header and payload to the parent, so a parent's last child and the
// root chunk end unpadded.
//
// While a child returned by EmplaceChild is open the parent must not be
// written to or closed, and every Writer must be closed exactly once.
// Breaking either rule panics.
type Writer struct {
	out     Target
	mn      MagicNumber
	parent  *Writer
	child   *Writer
	sizePos int64
	size    int64
	closed  bool
}

// NewWriter starts a root chunk tagged mn at out's current position.
func NewWriter(mn MagicNumber, out Target) (*Writer, error) {
	w := &Writer{out: out, mn: mn}
	if err := w.writeHeader(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader() error {
	var hdr [headerSize]byte
	b := w.mn.Bytes()
	copy(hdr[:4], b[:])
	w.sizePos = w.out.Position() + 4
	return w.out.Write(hdr[:])
}

// Magic returns the chunk's tag.
func (w *Writer) Magic() MagicNumber { return w.mn }

// Size returns the payload bytes written so far, padding included.
func (w *Writer) Size() int64 { return w.size }

// AbsoluteSize returns the target's total length so far.
func (w *Writer) AbsoluteSize() int64 { return w.out.Position() }

func (w *Writer) usable() {
	precondition(!w.closed, fmt.Sprintf("write to closed chunk %q", w.mn))
	precondition(w.child == nil, fmt.Sprintf("write to chunk %q while child %q is open", w.mn, magicOf(w.child)))
}

func magicOf(w *Writer) MagicNumber {
	if w == nil {
		return 0
	}
	return w.mn
}

func (w *Writer) grow(n int64) error {
	if w.size+n > math.MaxInt32 {
		return fmt.Errorf("%w: %q would reach %d bytes", ErrTooLarge, w.mn, w.size+n)
	}
	return nil
}

func (w *Writer) raw(p []byte) error {
	if err := w.grow(int64(len(p))); err != nil {
		return err
	}
	if err := w.out.Write(p); err != nil {
		return err
	}
	w.size += int64(len(p))
	return nil
}

var zeros [3]byte

func (w *Writer) align() error {
	return w.raw(zeros[:buf.Padding(w.size)])
}

func (w *Writer) finish(a Alignment) error {
	if a == Unaligned {
		return nil
	}
	return w.align()
}

// EmplaceChild pads this chunk to a 4-byte boundary, starts a child chunk
// tagged mn and returns its Writer. This Writer is frozen until the child is
// closed.
func (w *Writer) EmplaceChild(mn MagicNumber) (*Writer, error) {
	w.usable()
	if err := w.align(); err != nil {
		return nil, err
	}
	if err := w.grow(headerSize); err != nil {
		return nil, err
	}
	c := &Writer{out: w.out, mn: mn, parent: w}
	if err := c.writeHeader(); err != nil {
		return nil, err
	}
	w.child = c
	return c, nil
}

// Write appends p to the payload.
func (w *Writer) Write(p []byte, a Alignment) error {
	w.usable()
	if err := w.raw(p); err != nil {
		return err
	}
	return w.finish(a)
}

// WriteValue appends the little-endian encoding of the fixed-size value v.
func (w *Writer) WriteValue(v any, a Alignment) error {
	return w.Write(encodeValue(nil, v), a)
}

// WriteValues appends each value in order, applying a after every one.
func (w *Writer) WriteValues(a Alignment, vs ...any) error {
	for _, v := range vs {
		if err := w.WriteValue(v, a); err != nil {
			return err
		}
	}
	return nil
}

// WriteString appends s and a NUL terminator.
func (w *Writer) WriteString(s string, a Alignment) error {
	w.usable()
	if err := w.raw(append([]byte(s), 0)); err != nil {
		return err
	}
	return w.finish(a)
}

// Pad appends n zero bytes.
func (w *Writer) Pad(n int, a Alignment) error {
	precondition(n >= 0, "negative pad")
	w.usable()
	if err := w.raw(make([]byte, n)); err != nil {
		return err
	}
	return w.finish(a)
}

// Close back-patches the chunk's size. For a child, the parent then grows by
// the child's header and payload. Nothing is padded here.
func (w *Writer) Close() error {
	precondition(!w.closed, fmt.Sprintf("chunk %q closed twice", w.mn))
	precondition(w.child == nil, fmt.Sprintf("closing chunk %q while child %q is open", w.mn, magicOf(w.child)))
	w.closed = true

	var size [4]byte
	buf.PutU32LE(size[:], 0, uint32(w.size))
	if err := w.out.WriteAt(size[:], w.sizePos); err != nil {
		return err
	}

	p := w.parent
	if p == nil {
		return nil
	}
	p.child = nil
	footprint := headerSize + w.size
	if err := p.grow(footprint); err != nil {
		return err
	}
	p.size += footprint
	return nil
}

// WriteAtAlignment writes a uint32 offset, that many zero bytes, then data,
// so that data starts at an absolute position that is a multiple of
// alignment. Texture and vertex payloads use this to meet GPU alignment
// when the file is mapped.
func WriteAtAlignment(w *Writer, alignment int, data []byte) error {
	precondition(alignment > 0 && alignment&(alignment-1) == 0, "alignment must be a power of two")
	w.usable()
	if err := w.align(); err != nil {
		return err
	}
	from := w.AbsoluteSize() + 4
	off := buf.AlignUp(from, int64(alignment)) - from
	if err := w.WriteValue(uint32(off), Unaligned); err != nil {
		return err
	}
	if err := w.Pad(int(off), Unaligned); err != nil {
		return err
	}
	return w.Write(data, Aligned)
}
