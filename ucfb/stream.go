package ucfb

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/joshuapare/ucfbkit/internal/buf"
)

// StreamReader walks a container through an io.ReadSeeker without loading
// it. It mirrors Reader, except that values are copied out of the stream and
// every call seeks to an absolute offset, so a parent and its children may
// be used in any order.
//
// Bounds failures carry a trace of the enclosing chunks and their file
// offsets in the error message.
type StreamReader struct {
	rs     io.ReadSeeker
	mn     MagicNumber
	size   int64
	start  int64 // absolute offset of the payload
	head   int64
	parent *StreamReader
}

// NewStreamReader reads the chunk header at the stream's current position.
func NewStreamReader(rs io.ReadSeeker) (*StreamReader, error) {
	pos, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("ucfb: stream position: %w", err)
	}
	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("ucfb: stream length: %w", err)
	}
	if end-pos < headerSize {
		return nil, newError(ErrKindMalformed, 0, int(pos),
			"need %d header bytes, have %d", headerSize, end-pos)
	}
	var hdr [headerSize]byte
	if _, err := rs.Seek(pos, io.SeekStart); err != nil {
		return nil, fmt.Errorf("ucfb: seek to %d: %w", pos, err)
	}
	if _, err := io.ReadFull(rs, hdr[:]); err != nil {
		return nil, fmt.Errorf("ucfb: read header: %w", err)
	}
	mn := MagicFromBytes([4]byte(hdr[:4]))
	size := int64(buf.U32LE(hdr[4:]))
	if size > end-pos-headerSize {
		return nil, newError(ErrKindMalformed, mn, int(pos),
			"declared size %d exceeds the %d bytes available", size, end-pos-headerSize)
	}
	return &StreamReader{rs: rs, mn: mn, size: size, start: pos + headerSize}, nil
}

func (s *StreamReader) Magic() MagicNumber { return s.mn }
func (s *StreamReader) Size() int64        { return s.size }
func (s *StreamReader) Head() int64        { return s.head }

// Offset returns the absolute offset of the payload in the stream.
func (s *StreamReader) Offset() int64 { return s.start }

// More reports whether unread payload bytes remain.
func (s *StreamReader) More() bool { return s.head < s.size }

func (s *StreamReader) overflow(n int64, what string) error {
	var chain []*StreamReader
	for c := s; c != nil; c = c.parent {
		chain = append(chain, c)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s of %d bytes went past chunk bounds. Trace:\n", what, n)
	for depth, i := 0, len(chain)-1; i >= 0; depth, i = depth+1, i-1 {
		c := chain[i]
		fmt.Fprintf(&sb, "%s%s at %d (read offset: %d)\n",
			strings.Repeat("    ", depth), c.mn, c.start-headerSize, c.start+c.head)
	}
	return newError(ErrKindOutOfBounds, s.mn, int(s.start+s.head), "%s", strings.TrimRight(sb.String(), "\n"))
}

func (s *StreamReader) advance(end int64, a Alignment) {
	if a == Aligned {
		end = buf.Align4(end)
	}
	s.head = end
}

func (s *StreamReader) readAt(p []byte, at int64) error {
	if _, err := s.rs.Seek(at, io.SeekStart); err != nil {
		return fmt.Errorf("ucfb: seek to %d: %w", at, err)
	}
	if _, err := io.ReadFull(s.rs, p); err != nil {
		return fmt.Errorf("ucfb: read %d bytes at %d: %w", len(p), at, err)
	}
	return nil
}

// Read fills p from the payload. Nothing is consumed when p does not fit.
func (s *StreamReader) Read(p []byte, a Alignment) error {
	n := int64(len(p))
	if s.head+n > s.size {
		return s.overflow(n, "read")
	}
	if err := s.readAt(p, s.start+s.head); err != nil {
		return err
	}
	s.advance(s.head+n, a)
	return nil
}

// ReadValue decodes one little-endian value of the fixed-size type T.
func ReadValue[T any](s *StreamReader, a Alignment) (T, error) {
	b := make([]byte, fixedSize[T]())
	if err := s.Read(b, a); err != nil {
		var zero T
		return zero, err
	}
	return decodeValue[T](b), nil
}

// ReadString reads a NUL-terminated string.
func (s *StreamReader) ReadString(a Alignment) (string, error) {
	var out []byte
	var block [64]byte
	for at := s.head; ; {
		n := min(int64(len(block)), s.size-at)
		if n <= 0 {
			return "", s.overflow(at-s.head+1, "string read")
		}
		if err := s.readAt(block[:n], s.start+at); err != nil {
			return "", err
		}
		if i := bytes.IndexByte(block[:n], 0); i >= 0 {
			out = append(out, block[:i]...)
			s.advance(at+int64(i)+1, a)
			return string(out), nil
		}
		out = append(out, block[:n]...)
		at += n
	}
}

// Consume skips n payload bytes.
func (s *StreamReader) Consume(n int64, a Alignment) error {
	precondition(n >= 0, "negative consume")
	if s.head+n > s.size {
		return s.overflow(n, "consume")
	}
	s.advance(s.head+n, a)
	return nil
}

// ReadChild reads the next child header and returns a StreamReader for it.
func (s *StreamReader) ReadChild(a Alignment) (*StreamReader, error) {
	if s.head+headerSize > s.size {
		return nil, s.overflow(headerSize, "child header")
	}
	var hdr [headerSize]byte
	if err := s.readAt(hdr[:], s.start+s.head); err != nil {
		return nil, err
	}
	mn := MagicFromBytes([4]byte(hdr[:4]))
	size := int64(buf.U32LE(hdr[4:]))
	start := s.head + headerSize
	if start+size > s.size {
		return nil, newError(ErrKindMalformed, s.mn, int(s.start+s.head),
			"child %q declares %d bytes but only %d remain", mn, size, s.size-start)
	}
	child := &StreamReader{rs: s.rs, mn: mn, size: size, start: s.start + start, parent: s}
	s.advance(start+size, a)
	return child, nil
}
