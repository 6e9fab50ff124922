package dirty

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type memMapping struct {
	data []byte
}

func (m memMapping) Bytes() []byte { return m.data }
func (m memMapping) FD() int       { return -1 }

func TestTrackerPageAlignment(t *testing.T) {
	tr := NewTracker(memMapping{})
	tr.Add(100, 200)
	require.Equal(t, []Range{{Off: 0, Len: 4096}}, tr.Ranges())
}

func TestTrackerCoalesce(t *testing.T) {
	tests := []struct {
		name string
		add  [][2]int
		want []Range
	}{
		{
			name: "adjacent pages merge",
			add:  [][2]int{{4096, 4096}, {8192, 4096}},
			want: []Range{{Off: 4096, Len: 8192}},
		},
		{
			name: "same page merges",
			add:  [][2]int{{10, 4}, {20, 4}, {4000, 8}},
			want: []Range{{Off: 0, Len: 4096}},
		},
		{
			name: "straddling range spans two pages",
			add:  [][2]int{{4094, 4}},
			want: []Range{{Off: 0, Len: 8192}},
		},
		{
			name: "gaps stay separate and sorted",
			add:  [][2]int{{20000, 4}, {10, 4}},
			want: []Range{{Off: 0, Len: 4096}, {Off: 16384, Len: 4096}},
		},
		{
			name: "empty lengths are ignored",
			add:  [][2]int{{10, 0}},
			want: nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := NewTracker(memMapping{})
			for _, a := range tc.add {
				tr.Add(a[0], a[1])
			}
			require.Equal(t, tc.want, tr.Ranges())
		})
	}
}

func TestTrackerRawAndReset(t *testing.T) {
	tr := NewTracker(memMapping{})
	tr.Add(8, 4)
	tr.Add(40, 4)
	require.Equal(t, 2, tr.Len())

	raw := tr.Raw()
	raw[0].Off = 999
	require.Equal(t, []Range{{Off: 8, Len: 4}, {Off: 40, Len: 4}}, tr.Raw())

	tr.Reset()
	require.Zero(t, tr.Len())
	require.Nil(t, tr.Ranges())
}

func TestClip(t *testing.T) {
	start, end, ok := clip(Range{Off: 4096, Len: 4096}, 5000)
	require.True(t, ok)
	require.Equal(t, 4096, start)
	require.Equal(t, 5000, end)

	_, _, ok = clip(Range{Off: 8192, Len: 4096}, 5000)
	require.False(t, ok)
}

func TestFlushCancelled(t *testing.T) {
	tr := NewTracker(memMapping{data: make([]byte, 64)})
	tr.Add(8, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := tr.Flush(ctx, FlushAuto)
	require.True(t, errors.Is(err, context.Canceled), "got %v", err)
	require.Equal(t, 1, tr.Len(), "ranges survive a cancelled flush")
}

func TestFlushNothingDirty(t *testing.T) {
	tr := NewTracker(memMapping{})
	require.NoError(t, tr.Flush(context.Background(), FlushFull))
}

func TestFlushModeString(t *testing.T) {
	require.Equal(t, "auto", FlushAuto.String())
	require.Equal(t, "data", FlushDataOnly.String())
	require.Equal(t, "full", FlushFull.String())
}
