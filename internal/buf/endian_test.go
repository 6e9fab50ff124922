package buf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEndianHelpers(t *testing.T) {
	data := []byte{0x01, 0x23, 0x45, 0x67}
	require.Equal(t, uint32(0x67452301), U32LE(data))
	require.Zero(t, U32LE(data[:3]))

	out := make([]byte, 8)
	require.True(t, PutU32LE(out, 4, 0xdeadbeef))
	require.Equal(t, []byte{0, 0, 0, 0, 0xef, 0xbe, 0xad, 0xde}, out)
	require.False(t, PutU32LE(out, 5, 1))

	require.Equal(t, []byte{'x', 4, 0, 0, 0}, AppendU32LE([]byte{'x'}, 4))
}
