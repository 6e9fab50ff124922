package ucfb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func parentsOf(tags ...string) Classifier {
	set := make(map[MagicNumber]bool, len(tags))
	for _, tag := range tags {
		set[MN(tag)] = true
	}
	return func(mn MagicNumber) bool { return set[mn] }
}

func mustEditor(t *testing.T, b []byte, isParent Classifier) *Editor {
	t.Helper()
	root, err := NewStrictReader[RootTag](b)
	require.NoError(t, err)
	ed, err := NewEditorFrom(root, isParent, DefaultLimits())
	require.NoError(t, err)
	return ed
}

func nestedFile() []byte {
	return chunk("ucfb", cat(
		chunk("A___", []byte("a")),
		chunk("B___", chunk("C___", []byte("c"))),
	))
}

func TestEditorBuild(t *testing.T) {
	ed := mustEditor(t, nestedFile(), parentsOf("B___"))

	require.Equal(t, 2, ed.Len())
	require.False(t, ed.At(0).IsParent())
	require.Equal(t, []byte("a"), ed.At(0).Data().Bytes())

	b := ed.At(1)
	require.True(t, b.IsParent())
	require.Equal(t, 1, b.Parent().Len())
	require.Equal(t, MN("C___"), b.Parent().At(0).Magic)

	require.Equal(t, 0, ed.Find(MN("A___")))
	require.Empty(t, ed.FindAll(MN("C___")))
	require.Equal(t, -1, ed.Find(MN("C___")))
}

func TestEditorClassifierDecidesShape(t *testing.T) {
	ed := mustEditor(t, nestedFile(), parentsOf())
	require.False(t, ed.At(1).IsParent())
	require.Equal(t, chunk("C___", []byte("c")), ed.At(1).Data().Bytes())
}

func TestEditorRoundTrip(t *testing.T) {
	files := map[string][]byte{
		"nested":   nestedFile(),
		"material": materialFile(),
		"empty":    chunk("ucfb", nil),
		"odd leaves": chunk("ucfb", cat(
			chunk("ODD1", []byte{1}),
			chunk("ODD2", []byte{1, 2}),
			chunk("ODD3", []byte{1, 2, 3}),
			chunk("EVEN", []byte{1, 2, 3, 4}),
		)),
		"unpadded last child": chunk("ucfb", cat(
			chunk("P___", chunk("C___", []byte{1, 2, 3})),
			chunk("D___", []byte{1, 2, 3, 4}),
		)),
		"unpadded nesting": chunk("ucfb", cat(
			chunk("P___", chunk("P___", chunk("C___", []byte{1}))),
			chunk("P___", cat(chunk("C___", []byte{1, 2}), chunk("C___", nil))),
		)),
	}
	for name, in := range files {
		t.Run(name, func(t *testing.T) {
			ed := mustEditor(t, in, parentsOf("B___", "MTRL", "P___"))
			out, err := ed.Bytes()
			require.NoError(t, err)
			require.Equal(t, in, out)

			again := mustEditor(t, out, parentsOf("B___", "MTRL", "P___"))
			require.True(t, ed.Equal(&again.ParentChunk))
			out2, err := again.Bytes()
			require.NoError(t, err)
			require.Equal(t, out, out2)
		})
	}
}

func TestEditorRoundTripKeepsParentSizes(t *testing.T) {
	in := chunk("ucfb", cat(
		chunk("P___", chunk("C___", []byte{1, 2, 3})),
		chunk("D___", []byte{1, 2, 3, 4}),
	))
	require.Equal(t, byte(11), in[12])
	require.Len(t, in, 40)

	out, err := mustEditor(t, in, parentsOf("P___")).Bytes()
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestEditorEraseShiftsIndexes(t *testing.T) {
	ed := NewEditor()
	for _, tag := range []string{"AAAA", "BBBB", "CCCC", "DDDD"} {
		ed.Append(MN(tag), NewDataChunk([]byte(tag)))
	}
	d := ed.Find(MN("DDDD"))
	require.Equal(t, 3, d)

	next := ed.Erase(1)
	require.Equal(t, 1, next)
	require.Equal(t, MN("CCCC"), ed.At(next).Magic)

	// Indexes after the erased entry moved down by one.
	require.Equal(t, 2, ed.Find(MN("DDDD")))
	require.Equal(t, 3, ed.Len())

	ed.Insert(0, Entry{Magic: MN("ZZZZ"), Node: NewDataChunk(nil)})
	require.Equal(t, MN("ZZZZ"), ed.At(0).Magic)
	require.Equal(t, 3, ed.Find(MN("DDDD")))

	require.Equal(t, 1, ed.EraseRange(1, 3))
	require.Equal(t, 2, ed.Len())

	removed := ed.EraseFunc(func(e Entry) bool { return e.Magic == MN("ZZZZ") })
	require.Equal(t, 1, removed)
	require.Equal(t, 1, ed.Len())

	ed.Clear()
	require.Zero(t, ed.Len())
}

func TestEditorFindFrom(t *testing.T) {
	ed := NewEditor()
	for _, tag := range []string{"seg_", "NAME", "seg_", "seg_"} {
		ed.Append(MN(tag), NewDataChunk(nil))
	}
	require.Equal(t, []int{0, 2, 3}, ed.FindAll(MN("seg_")))

	var resumed []int
	for i := ed.Find(MN("seg_")); i >= 0; i = ed.FindFrom(MN("seg_"), i+1) {
		resumed = append(resumed, i)
	}
	require.Equal(t, ed.FindAll(MN("seg_")), resumed)
	require.Equal(t, -1, ed.FindFrom(MN("NAME"), 2))
}

func TestEditorAll(t *testing.T) {
	ed := mustEditor(t, materialFile(), parentsOf("MTRL"))
	var tags []MagicNumber
	for _, e := range ed.All() {
		tags = append(tags, e.Magic)
	}
	require.Equal(t, []MagicNumber{MN("NAME"), MN("MTRL"), MN("MTRL")}, tags)

	n := 0
	for range ed.All() {
		n++
		break
	}
	require.Equal(t, 1, n)
}

func TestEditorCloneIsDeep(t *testing.T) {
	ed := mustEditor(t, materialFile(), parentsOf("MTRL"))
	c := ed.Clone()
	require.True(t, ed.Equal(&c.ParentChunk))

	info := c.At(1).Parent().At(0).Data()
	info.Writer().WriteValue(uint32(5), Aligned)
	require.False(t, ed.Equal(&c.ParentChunk))
	require.Equal(t, 8, ed.At(1).Parent().At(0).Data().Len())
}

func TestEditorEqual(t *testing.T) {
	a := NewParentChunk(Entry{Magic: MN("AAAA"), Node: NewDataChunk([]byte{1})})
	b := NewParentChunk(Entry{Magic: MN("AAAA"), Node: NewParentChunk()})
	require.False(t, a.Equal(b))
	require.True(t, a.Equal(a.Clone()))

	c := a.Clone()
	c.Append(MN("BBBB"), NewDataChunk(nil))
	require.False(t, a.Equal(c))
}

func nest(levels int) []byte {
	b := chunk("NEST", nil)
	for i := 1; i < levels; i++ {
		b = chunk("NEST", b)
	}
	return chunk("ucfb", b)
}

func TestEditorDepthLimit(t *testing.T) {
	isParent := parentsOf("NEST")
	root, err := NewStrictReader[RootTag](nest(5))
	require.NoError(t, err)

	_, err = NewEditorFrom(root, isParent, Limits{MaxDepth: 5})
	require.NoError(t, err)

	_, err = NewEditorFrom(root, isParent, Limits{MaxDepth: 4})
	requireKind(t, err, ErrKindMalformed)

	deep, err := NewStrictReader[RootTag](nest(1000))
	require.NoError(t, err)
	_, err = NewEditorFrom(deep, isParent, Limits{})
	requireKind(t, err, ErrKindMalformed)

	_, err = NewEditorFrom(deep, isParent, Limits{MaxDepth: 1000})
	require.NoError(t, err)
}

func TestEditorMalformedChild(t *testing.T) {
	inner := chunk("B___", chunk("C___", []byte("cccc")))
	inner[headerSize+4] = 99
	root, err := NewStrictReader[RootTag](chunk("ucfb", inner))
	require.NoError(t, err)

	_, err = NewEditorFrom(root, parentsOf("B___"), DefaultLimits())
	requireKind(t, err, ErrKindMalformed)

	_, err = BuildParent(root.Reader, nil, DefaultLimits())
	require.Error(t, err)
}

func TestMakeReader(t *testing.T) {
	ed := mustEditor(t, materialFile(), parentsOf("MTRL"))

	name := MakeReader(ed.At(0))
	s, err := name.ReadString(Aligned)
	require.NoError(t, err)
	require.Equal(t, "mtrl", s)

	require.Panics(t, func() { MakeReader(ed.At(1)) })
	require.Panics(t, func() { ed.At(0).Parent() })

	info := MakeStrictReader[infoTag](ed.At(1).Parent().At(0))
	flags, err := Read[uint32](&info.Reader, Aligned)
	require.NoError(t, err)
	require.Equal(t, uint32(0x10), flags)

	require.Panics(t, func() { MakeStrictReader[mtrlTag](ed.At(0)) })
}

type infoTag struct{}

func (infoTag) Magic() MagicNumber { return MN("INFO") }

func TestDataWriter(t *testing.T) {
	d := NewDataChunk(nil)
	w := d.Writer()

	w.WriteString("ab", Aligned)
	require.Equal(t, []byte("ab\x00\x00"), d.Bytes())

	w.WriteValue(uint16(7), Unaligned)
	w.WriteValue(uint8(1), Aligned)
	require.Equal(t, 8, w.Len())

	w.WriteValues(Aligned, uint32(1), uint8(2))
	require.Equal(t, 16, w.Len())

	w.Pad(1, Unaligned)
	require.Equal(t, 17, w.Len())
	w.Write([]byte{9}, Aligned)
	require.Equal(t, 20, w.Len())

	require.NoError(t, w.WriteText("café", Unaligned))
	require.Equal(t, []byte{'c', 'a', 'f', 0xe9, 0}, d.Bytes()[20:])
	require.Error(t, w.WriteText("日本", Aligned))
	require.Equal(t, 25, w.Len())

	d.Reset()
	require.Zero(t, d.Len())
}

func TestEditorProgrammaticBuild(t *testing.T) {
	ed := NewEditor()
	name := NewDataChunk(nil)
	name.Writer().WriteString("mtrl", Unaligned)
	ed.Append(MN("NAME"), name)

	mtrl := NewParentChunk()
	for _, v := range []uint32{0x10, 0x20} {
		info := NewDataChunk(nil)
		info.Writer().WriteValues(Aligned, v, uint32(0xff))
		mtrl.Append(MN("INFO"), info)
	}
	tnam := NewDataChunk(nil)
	tnam.Writer().WriteString("rock", Unaligned)
	mtrl.Set(1, Entry{Magic: MN("TNAM"), Node: tnam})
	ed.Append(MN("MTRL"), mtrl)

	other := NewParentChunk()
	other.Append(MN("INFO"), NewDataChunk([]byte{0x20, 0, 0, 0, 0x7f, 0, 0, 0}))
	ed.Append(MN("MTRL"), other)

	out, err := ed.Bytes()
	require.NoError(t, err)
	require.Equal(t, materialFile(), out)

	require.Panics(t, func() { ed.Append(MN("NULL"), nil) })
}
