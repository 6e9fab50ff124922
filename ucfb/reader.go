package ucfb

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/charmap"

	"github.com/joshuapare/ucfbkit/internal/buf"
)

// Reader is a non-owning, bounds-checked cursor over one chunk's payload.
//
// The only mutable state is the head, the offset of the next unread byte.
// Copying a Reader copies the head. The borrowed bytes must outlive the
// Reader and must not be modified while it is in use.
//
// After an aligned operation consumes the last payload byte the head may rest
// on the padded end of the payload (for a 3-byte payload, at 4). It never
// moves further, and any read from there fails with ErrOutOfBounds.
type Reader struct {
	mn      MagicNumber
	payload []byte
	head    int
	offset  int // absolute offset of payload[0] in the root buffer
}

// NewReader parses the chunk header at the start of b. b may extend past the
// chunk; the extra bytes are ignored. It fails with ErrMalformed when b is
// shorter than a header or than the size the header declares.
func NewReader(b []byte) (Reader, error) {
	mn, payload, err := parseHeader(b)
	if err != nil {
		return Reader{}, err
	}
	return Reader{mn: mn, payload: payload, offset: headerSize}, nil
}

// NewReaderFrom creates a Reader over a bare payload (no header) tagged mn.
func NewReaderFrom(mn MagicNumber, payload []byte) Reader {
	return Reader{mn: mn, payload: payload[:len(payload):len(payload)]}
}

// Magic returns the chunk's tag.
func (r *Reader) Magic() MagicNumber { return r.mn }

// Size returns the payload length in bytes, excluding header and padding.
func (r *Reader) Size() int { return len(r.payload) }

// Head returns the offset of the next unread byte, relative to payload start.
func (r *Reader) Head() int { return r.head }

// Offset returns the absolute offset of the payload within the buffer the
// root Reader was created from. Useful for "corrupt at offset N" messages.
func (r *Reader) Offset() int { return r.offset }

// Payload returns the whole payload regardless of the head.
func (r *Reader) Payload() []byte { return r.payload }

// More reports whether unread payload bytes remain. It is the loop condition
// for walking every child of a chunk:
//
//	for r.More() {
//	    child, err := r.ReadChild(ucfb.Aligned)
//	    ...
//	}
func (r *Reader) More() bool { return r.head < len(r.payload) }

// ResetHead moves the head back to the start of the payload.
func (r *Reader) ResetHead() { r.head = 0 }

func (r *Reader) outOfBounds(n int, what string) error {
	return newError(ErrKindOutOfBounds, r.mn, r.offset+r.head,
		"%s of %d bytes at head %d overruns payload of %d bytes", what, n, r.head, len(r.payload))
}

// take returns the next n bytes and advances the head, or leaves the head
// alone and fails with ErrOutOfBounds.
func (r *Reader) take(n int, a Alignment, what string) ([]byte, error) {
	end, ok := buf.End(len(r.payload), r.head, n)
	if !ok {
		return nil, r.outOfBounds(n, what)
	}
	b := r.payload[r.head:end:end]
	r.head = alignHead(end, a)
	return b, nil
}

// ReadBytes returns the next n payload bytes without copying.
func (r *Reader) ReadBytes(n int, a Alignment) ([]byte, error) {
	precondition(n >= 0, "negative byte count")
	return r.take(n, a, "byte read")
}

// Consume moves the head forward by n bytes.
func (r *Reader) Consume(n int, a Alignment) error {
	precondition(n >= 0, "negative consume")
	_, err := r.take(n, a, "consume")
	return err
}

// Read decodes one little-endian value of the fixed-size type T.
//
//	count, err := ucfb.Read[uint32](&r, ucfb.Aligned)
func Read[T any](r *Reader, a Alignment) (T, error) {
	b, err := r.take(fixedSize[T](), a, "value read")
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeValue[T](b), nil
}

// ReadArray decodes n consecutive values of the fixed-size type T. The
// alignment applies once, after the whole array.
func ReadArray[T any](r *Reader, n int, a Alignment) ([]T, error) {
	elem := fixedSize[T]()
	end, err := buf.CheckArrayBounds(len(r.payload), r.head, n, elem)
	if err != nil {
		e := newError(ErrKindOutOfBounds, r.mn, r.offset+r.head, "array of %d x %d bytes", n, elem)
		e.Err = err
		return nil, e
	}
	out := make([]T, n)
	if _, err := binary.Decode(r.payload[r.head:end], binary.LittleEndian, out); err != nil {
		precondition(false, fmt.Sprintf("decode []%T: %v", *new(T), err))
	}
	r.head = alignHead(end, a)
	return out, nil
}

// ReadMulti decodes one value into each pointer in order, applying a after
// every value. Either every value is read or the head does not move.
//
//	var count, stride uint32
//	var flags vbufFlags
//	err := r.ReadMulti(ucfb.Aligned, &count, &stride, &flags)
func (r *Reader) ReadMulti(a Alignment, ptrs ...any) error {
	saved := r.head
	for _, p := range ptrs {
		n := binary.Size(p)
		precondition(n >= 0, fmt.Sprintf("%T does not point to a fixed-size value", p))
		b, err := r.take(n, a, "value read")
		if err != nil {
			r.head = saved
			return err
		}
		if _, err := binary.Decode(b, binary.LittleEndian, p); err != nil {
			precondition(false, fmt.Sprintf("decode %T: %v", p, err))
		}
	}
	return nil
}

// ReadString reads a NUL-terminated string and returns it without the
// terminator. The terminator counts toward alignment. A string with no
// terminator before the payload end is ErrMalformed.
func (r *Reader) ReadString(a Alignment) (string, error) {
	if r.head >= len(r.payload) {
		return "", r.outOfBounds(1, "string read")
	}
	n := bytes.IndexByte(r.payload[r.head:], 0)
	if n < 0 {
		return "", newError(ErrKindMalformed, r.mn, r.offset+r.head,
			"string at head %d is not NUL-terminated", r.head)
	}
	b, err := r.take(n+1, a, "string read")
	if err != nil {
		return "", err
	}
	return string(b[:n]), nil
}

// ReadText reads a NUL-terminated Windows-1252 string, the encoding the munge
// tools use for names, and returns it as UTF-8.
func (r *Reader) ReadText(a Alignment) (string, error) {
	saved := r.head
	s, err := r.ReadString(a)
	if err != nil {
		return "", err
	}
	out, err := charmap.Windows1252.NewDecoder().String(s)
	if err != nil {
		r.head = saved
		return "", &Error{Kind: ErrKindMalformed, Magic: r.mn, Offset: r.offset + saved,
			Msg: "string is not valid Windows-1252", Err: err}
	}
	return out, nil
}

// ReadChild reads the next chunk header and returns a Reader scoped to that
// child, moving the head past the child (and its padding when aligned).
// A truncated header is ErrOutOfBounds; a size larger than the bytes left in
// this chunk is ErrMalformed.
func (r *Reader) ReadChild(a Alignment) (Reader, error) {
	hdr, ok := buf.Slice(r.payload, r.head, headerSize)
	if !ok {
		return Reader{}, r.outOfBounds(headerSize, "child header")
	}
	mn := MagicFromBytes([4]byte(hdr[:4]))
	size := int(buf.U32LE(hdr[4:]))
	start := r.head + headerSize
	end, ok := buf.End(len(r.payload), start, size)
	if !ok {
		return Reader{}, newError(ErrKindMalformed, r.mn, r.offset+r.head,
			"child %q declares %d bytes but only %d remain", mn, size, len(r.payload)-start)
	}
	child := Reader{mn: mn, payload: r.payload[start:end:end], offset: r.offset + start}
	r.head = alignHead(end, a)
	return child, nil
}

// TryReadChild is ReadChild without the error: ok is false, and the head is
// unchanged, when the next child cannot be read.
func (r *Reader) TryReadChild(a Alignment) (Reader, bool) {
	child, err := r.ReadChild(a)
	return child, err == nil
}

// ReadChildMagic reads the next child and checks its tag. On a mismatch it
// fails with ErrMagicMismatch and the head stays put, so the caller can try
// another tag.
func (r *Reader) ReadChildMagic(mn MagicNumber, a Alignment) (Reader, error) {
	saved := r.head
	child, err := r.ReadChild(a)
	if err != nil {
		return Reader{}, err
	}
	if child.mn != mn {
		r.head = saved
		return Reader{}, newError(ErrKindMagicMismatch, r.mn, r.offset+saved,
			"expected child %q, found %q", mn, child.mn)
	}
	return child, nil
}
