package ucfb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func materialFile() []byte {
	return chunk("ucfb", cat(
		chunk("NAME", []byte("mtrl\x00")),
		chunk("MTRL", cat(
			chunk("INFO", []byte{0x10, 0, 0, 0, 0xff, 0, 0, 0}),
			chunk("TNAM", []byte("rock\x00")),
		)),
		chunk("MTRL", chunk("INFO", []byte{0x20, 0, 0, 0, 0x7f, 0, 0, 0})),
	))
}

func TestTweakerPatchIsVisibleToReader(t *testing.T) {
	b := materialFile()
	root, err := NewTweaker(b)
	require.NoError(t, err)

	var log rangeLog
	root.Track(&log)

	mtrl, ok, err := Find(MN("MTRL"), root, Aligned)
	require.NoError(t, err)
	require.True(t, ok)

	info, err := mtrl.GetChildMagic(MN("INFO"), Aligned)
	require.NoError(t, err)
	flags, err := Get[uint32](&info, Aligned)
	require.NoError(t, err)
	require.Equal(t, uint32(0x10), flags.Load())

	flags.Store(flags.Load() | 0x01)
	require.Equal(t, uint32(0x11), flags.Load())
	require.Equal(t, rangeLog{{flags.Offset(), 4}}, log)

	// The rest of the file is untouched.
	want := materialFile()
	want[flags.Offset()] = 0x11
	require.Equal(t, want, b)

	r := mustReader(t, b)
	_, err = SkipToChild[mtrlTag](&r, Aligned)
	require.NoError(t, err)
}

type mtrlTag struct{}

func (mtrlTag) Magic() MagicNumber { return MN("MTRL") }

func TestTweakerGetChildChecked(t *testing.T) {
	root, err := NewTweaker(materialFile())
	require.NoError(t, err)

	_, err = GetChildChecked[mtrlTag](&root, Aligned)
	requireKind(t, err, ErrKindMagicMismatch)
	require.Equal(t, 0, root.Head())

	name, err := root.GetChild(Aligned)
	require.NoError(t, err)
	s, err := name.ReadString(Aligned)
	require.NoError(t, err)
	require.Equal(t, "mtrl", s)

	m, err := GetChildChecked[mtrlTag](&root, Aligned)
	require.NoError(t, err)
	require.Equal(t, MN("MTRL"), m.Magic())
}

func TestTweakerFindAllOrder(t *testing.T) {
	root, err := NewTweaker(materialFile())
	require.NoError(t, err)

	all, err := FindAll(MN("MTRL"), root, Aligned)
	require.NoError(t, err)
	require.Len(t, all, 2)

	// Same as repeated FindNext calls.
	var seq []int
	cursor := root
	for {
		c, ok, err := FindNext(MN("MTRL"), &cursor, Aligned)
		require.NoError(t, err)
		if !ok {
			break
		}
		seq = append(seq, c.Offset())
	}
	require.Equal(t, []int{all[0].Offset(), all[1].Offset()}, seq)
	require.Less(t, seq[0], seq[1])

	none, err := FindAll(MN("INFO"), root, Aligned)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestTweakerBytesProxy(t *testing.T) {
	b := chunk("TNAM", []byte("rock\x00"))
	tw, err := NewTweaker(b)
	require.NoError(t, err)

	var log rangeLog
	tw.Track(&log)

	name, err := tw.GetBytes(4, Unaligned)
	require.NoError(t, err)
	require.Equal(t, []byte("rock"), name.Load())
	name.Store([]byte("sand"))
	require.Equal(t, "sand\x00", string(b[headerSize:headerSize+5]))
	require.Equal(t, rangeLog{{headerSize, 4}}, log)

	require.Panics(t, func() { name.Store([]byte("toolong")) })
}

func TestTweakerOutOfBounds(t *testing.T) {
	tw := NewTweakerFrom(MN("INFO"), make([]byte, 6))
	_, err := Get[uint32](&tw, Aligned)
	require.NoError(t, err)
	require.Equal(t, 4, tw.Head())

	_, err = Get[uint32](&tw, Aligned)
	requireKind(t, err, ErrKindOutOfBounds)
	require.Equal(t, 4, tw.Head())

	err = tw.Consume(3, Aligned)
	requireKind(t, err, ErrKindOutOfBounds)
	require.NoError(t, tw.Consume(2, Aligned))
	require.False(t, tw.More())

	_, err = tw.GetChild(Aligned)
	requireKind(t, err, ErrKindOutOfBounds)
}

func TestDataChunkTweaker(t *testing.T) {
	d := NewDataChunk([]byte{1, 0, 0, 0})
	tw := d.Tweaker(MN("INFO"))
	p, err := Get[uint32](&tw, Aligned)
	require.NoError(t, err)
	p.Store(42)
	require.Equal(t, []byte{42, 0, 0, 0}, d.Bytes())

	r := tw.Reader()
	v, err := Read[uint32](&r, Aligned)
	require.NoError(t, err)
	require.Equal(t, uint32(42), v)
}
