package ucfb

import (
	"encoding/binary"
	"fmt"

	"github.com/joshuapare/ucfbkit/internal/buf"
)

// Alignment selects whether an operation rounds the head (or the written
// length) up to the next multiple of 4 afterwards.
type Alignment uint8

const (
	// Aligned rounds up to a 4-byte boundary after the operation.
	Aligned Alignment = iota
	// Unaligned leaves the head directly after the value.
	Unaligned
)

func (a Alignment) String() string {
	if a == Unaligned {
		return "unaligned"
	}
	return "aligned"
}

// headerSize is the magic number plus the size field.
const headerSize = 8

// fixedSize returns the encoded size of T. T must be a fixed-size type as
// understood by encoding/binary: numbers, bools, arrays and structs of them.
func fixedSize[T any]() int {
	var v T
	n := binary.Size(v)
	precondition(n >= 0, fmt.Sprintf("%T is not a fixed-size type", v))
	return n
}

func decodeValue[T any](b []byte) T {
	var v T
	_, err := binary.Decode(b, binary.LittleEndian, &v)
	precondition(err == nil, fmt.Sprintf("decode %T: %v", v, err))
	return v
}

func encodeValue(dst []byte, v any) []byte {
	out, err := binary.Append(dst, binary.LittleEndian, v)
	precondition(err == nil, fmt.Sprintf("encode %T: %v", v, err))
	return out
}

// alignHead returns the head after an operation ending at end.
func alignHead(end int, a Alignment) int {
	if a == Unaligned {
		return end
	}
	return buf.Align4(end)
}

// parseHeader splits a complete chunk (header + payload, optionally followed
// by padding or siblings) into its tag and payload.
func parseHeader(b []byte) (MagicNumber, []byte, error) {
	if len(b) < headerSize {
		return 0, nil, newError(ErrKindMalformed, 0, 0,
			"need %d header bytes, have %d", headerSize, len(b))
	}
	mn := MagicFromBytes([4]byte(b[:4]))
	size := int(buf.U32LE(b[4:8]))
	payload, ok := buf.Slice(b, headerSize, size)
	if !ok {
		return mn, nil, newError(ErrKindMalformed, mn, 0,
			"declared size %d exceeds the %d bytes available", size, len(b)-headerSize)
	}
	return mn, payload, nil
}
