// Package buf contains bounds, alignment and little-endian helpers shared by
// the chunk readers and writers.
package buf

import "encoding/binary"

// U32LE reads a little-endian uint32 from b. Returns 0 when b is too short.
func U32LE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// PutU32LE writes v into b[off:off+4]. It reports false, leaving b untouched,
// when the range does not fit.
func PutU32LE(b []byte, off int, v uint32) bool {
	dst, ok := Slice(b, off, 4)
	if !ok {
		return false
	}
	binary.LittleEndian.PutUint32(dst, v)
	return true
}

// AppendU32LE appends v to b in little-endian order.
func AppendU32LE(b []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, v)
}
