package ucfb

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/joshuapare/ucfbkit/internal/buf"
)

// DirtyTracker is told about every byte range a Proxy stores into. Offsets
// are absolute within the buffer the root Tweaker was created from.
type DirtyTracker interface {
	Add(off, length int)
}

// Tweaker walks a chunk like Reader, but over mutable bytes. Instead of
// values it hands out Proxy handles that remember where a field lives, so a
// caller can locate a field once and then read-modify-write it without
// touching the rest of the file.
type Tweaker struct {
	mn      MagicNumber
	payload []byte
	head    int
	offset  int
	tracker DirtyTracker
}

// NewTweaker parses the chunk header at the start of b.
func NewTweaker(b []byte) (Tweaker, error) {
	mn, payload, err := parseHeader(b)
	if err != nil {
		return Tweaker{}, err
	}
	return Tweaker{mn: mn, payload: payload, offset: headerSize}, nil
}

// NewTweakerFrom creates a Tweaker over a bare payload tagged mn.
func NewTweakerFrom(mn MagicNumber, payload []byte) Tweaker {
	return Tweaker{mn: mn, payload: payload[:len(payload):len(payload)]}
}

// Track reports every subsequent Store made through this Tweaker, or any
// child or proxy obtained from it, to tr.
func (t *Tweaker) Track(tr DirtyTracker) { t.tracker = tr }

// Magic returns the chunk's tag.
func (t *Tweaker) Magic() MagicNumber { return t.mn }

// Size returns the payload length in bytes, excluding header and padding.
func (t *Tweaker) Size() int { return len(t.payload) }

// Head returns the offset of the next unvisited byte, relative to payload
// start.
func (t *Tweaker) Head() int { return t.head }

// Offset returns the absolute offset of the payload within the root buffer.
// Proxies report dirty ranges relative to the same origin.
func (t *Tweaker) Offset() int { return t.offset }

// Payload returns the whole mutable payload regardless of the head.
func (t *Tweaker) Payload() []byte { return t.payload }

// More reports whether unvisited payload bytes remain.
func (t *Tweaker) More() bool { return t.head < len(t.payload) }

// ResetHead moves the head back to the start of the payload.
func (t *Tweaker) ResetHead() { t.head = 0 }

// Reader returns a read-only view of the same payload with its head at 0.
func (t *Tweaker) Reader() Reader {
	return Reader{mn: t.mn, payload: t.payload, offset: t.offset}
}

func (t *Tweaker) take(n int, a Alignment, what string) (int, error) {
	end, ok := buf.End(len(t.payload), t.head, n)
	if !ok {
		return 0, newError(ErrKindOutOfBounds, t.mn, t.offset+t.head,
			"%s of %d bytes at head %d overruns payload of %d bytes", what, n, t.head, len(t.payload))
	}
	start := t.head
	t.head = alignHead(end, a)
	return start, nil
}

// GetChild fetches the next child chunk as a Tweaker over its payload.
func (t *Tweaker) GetChild(a Alignment) (Tweaker, error) {
	hdr, ok := buf.Slice(t.payload, t.head, headerSize)
	if !ok {
		return Tweaker{}, newError(ErrKindOutOfBounds, t.mn, t.offset+t.head,
			"child header at head %d overruns payload of %d bytes", t.head, len(t.payload))
	}
	mn := MagicFromBytes([4]byte(hdr[:4]))
	size := int(buf.U32LE(hdr[4:]))
	start := t.head + headerSize
	end, ok := buf.End(len(t.payload), start, size)
	if !ok {
		return Tweaker{}, newError(ErrKindMalformed, t.mn, t.offset+t.head,
			"child %q declares %d bytes but only %d remain", mn, size, len(t.payload)-start)
	}
	child := Tweaker{
		mn:      mn,
		payload: t.payload[start:end:end],
		offset:  t.offset + start,
		tracker: t.tracker,
	}
	t.head = alignHead(end, a)
	return child, nil
}

// GetChildMagic fetches the next child if it is tagged mn. On a mismatch it
// fails with ErrMagicMismatch and the head does not move.
func (t *Tweaker) GetChildMagic(mn MagicNumber, a Alignment) (Tweaker, error) {
	saved := t.head
	child, err := t.GetChild(a)
	if err != nil {
		return Tweaker{}, err
	}
	if child.mn != mn {
		t.head = saved
		return Tweaker{}, newError(ErrKindMagicMismatch, t.mn, t.offset+saved,
			"expected child %q, found %q", mn, child.mn)
	}
	return child, nil
}

// GetChildChecked is GetChildMagic with the tag fixed by the Tag type M.
func GetChildChecked[M Tag](t *Tweaker, a Alignment) (Tweaker, error) {
	return t.GetChildMagic(tagOf[M](), a)
}

// Get returns a Proxy for the fixed-size field of type T at the head.
//
//	flags, err := ucfb.Get[uint32](&mtrl, ucfb.Aligned)
//	flags.Store(flags.Load() &^ glowFlag)
func Get[T any](t *Tweaker, a Alignment) (Proxy[T], error) {
	n := fixedSize[T]()
	start, err := t.take(n, a, "value get")
	if err != nil {
		return Proxy[T]{}, err
	}
	return Proxy[T]{b: t.payload[start : start+n : start+n], offset: t.offset + start, tracker: t.tracker}, nil
}

// GetBytes returns a proxy over the next n bytes.
func (t *Tweaker) GetBytes(n int, a Alignment) (BytesProxy, error) {
	precondition(n >= 0, "negative byte count")
	start, err := t.take(n, a, "byte get")
	if err != nil {
		return BytesProxy{}, err
	}
	return BytesProxy{b: t.payload[start : start+n : start+n], offset: t.offset + start, tracker: t.tracker}, nil
}

// ReadString reads a NUL-terminated string at the head.
func (t *Tweaker) ReadString(a Alignment) (string, error) {
	r := t.Reader()
	r.head = t.head
	s, err := r.ReadString(a)
	if err != nil {
		return "", err
	}
	t.head = r.head
	return s, nil
}

// Consume moves the head forward by n bytes.
func (t *Tweaker) Consume(n int, a Alignment) error {
	precondition(n >= 0, "negative consume")
	_, err := t.take(n, a, "consume")
	return err
}

// Proxy is a deferred handle to one fixed-size field inside a Tweaker's
// bytes. It stays valid as long as those bytes do.
type Proxy[T any] struct {
	b       []byte
	offset  int
	tracker DirtyTracker
}

// Load decodes the field's current value.
func (p Proxy[T]) Load() T { return decodeValue[T](p.b) }

// Store encodes v over the field.
func (p Proxy[T]) Store(v T) {
	_, err := binary.Encode(p.b, binary.LittleEndian, v)
	precondition(err == nil, fmt.Sprintf("encode %T: %v", v, err))
	if p.tracker != nil {
		p.tracker.Add(p.offset, len(p.b))
	}
}

// Offset returns the field's absolute offset.
func (p Proxy[T]) Offset() int { return p.offset }

// BytesProxy is a deferred handle to a fixed-length byte range.
type BytesProxy struct {
	b       []byte
	offset  int
	tracker DirtyTracker
}

// Len returns the length of the range.
func (p BytesProxy) Len() int { return len(p.b) }

// Offset returns the range's absolute offset.
func (p BytesProxy) Offset() int { return p.offset }

// Load returns a copy of the range.
func (p BytesProxy) Load() []byte { return bytes.Clone(p.b) }

// Store overwrites the range. src must be exactly Len bytes.
func (p BytesProxy) Store(src []byte) {
	precondition(len(src) == len(p.b), fmt.Sprintf("store of %d bytes into %d byte field", len(src), len(p.b)))
	copy(p.b, src)
	if p.tracker != nil {
		p.tracker.Add(p.offset, len(p.b))
	}
}

// Find returns the first child of parent tagged mn, searching from the start
// of parent's payload.
func Find(mn MagicNumber, parent Tweaker, a Alignment) (Tweaker, bool, error) {
	parent.ResetHead()
	return FindNext(mn, &parent, a)
}

// FindNext returns the next child of parent tagged mn, starting at parent's
// current head and leaving the head just past the match.
func FindNext(mn MagicNumber, parent *Tweaker, a Alignment) (Tweaker, bool, error) {
	for parent.More() {
		child, err := parent.GetChild(a)
		if err != nil {
			return Tweaker{}, false, err
		}
		if child.mn == mn {
			return child, true, nil
		}
	}
	return Tweaker{}, false, nil
}

// FindAll returns every child of parent tagged mn in document order.
func FindAll(mn MagicNumber, parent Tweaker, a Alignment) ([]Tweaker, error) {
	parent.ResetHead()
	var matches []Tweaker
	for {
		child, ok, err := FindNext(mn, &parent, a)
		if err != nil {
			return nil, err
		}
		if !ok {
			return matches, nil
		}
		matches = append(matches, child)
	}
}
