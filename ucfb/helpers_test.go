package ucfb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/ucfbkit/internal/buf"
)

// chunk encodes one chunk without trailing padding, the way Writer leaves
// a chunk that nothing follows.
func chunk(tag string, payload []byte) []byte {
	out := make([]byte, 0, headerSize+len(payload))
	out = append(out, tag...)
	out = buf.AppendU32LE(out, uint32(len(payload)))
	return append(out, payload...)
}

// cat lays sibling chunks out back to back, padding each one but the last to
// a multiple of 4.
func cat(parts ...[]byte) []byte {
	var out []byte
	for i, p := range parts {
		out = append(out, p...)
		if i < len(parts)-1 {
			out = append(out, make([]byte, buf.Padding(len(out)))...)
		}
	}
	return out
}

func mustReader(t *testing.T, b []byte) Reader {
	t.Helper()
	r, err := NewReader(b)
	require.NoError(t, err)
	return r
}

func requireKind(t *testing.T, err error, kind ErrKind) {
	t.Helper()
	require.Error(t, err)
	var ue *Error
	require.ErrorAs(t, err, &ue)
	require.Equal(t, kind, ue.Kind, "error: %v", err)
}

type rangeLog [][2]int

func (l *rangeLog) Add(off, length int) {
	*l = append(*l, [2]int{off, length})
}

type abcTag struct{}

func (abcTag) Magic() MagicNumber { return MN("ABC_") }

type xyzTag struct{}

func (xyzTag) Magic() MagicNumber { return MN("XYZ_") }
