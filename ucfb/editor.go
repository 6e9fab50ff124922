package ucfb

import (
	"bytes"
	"fmt"
	"iter"
	"slices"
)

// Node is the payload of an Entry: either *DataChunk (a leaf) or
// *ParentChunk (a container). No other implementations exist.
type Node interface {
	isNode()
}

// DataChunk is an owned, growable leaf payload.
type DataChunk struct {
	b []byte
}

func (*DataChunk) isNode() {}

// NewDataChunk returns a leaf holding a copy of b.
func NewDataChunk(b []byte) *DataChunk {
	return &DataChunk{b: bytes.Clone(b)}
}

// Bytes returns the payload. The slice aliases the chunk's storage.
func (d *DataChunk) Bytes() []byte { return d.b }

// Len returns the payload length.
func (d *DataChunk) Len() int { return len(d.b) }

// Reset empties the payload, keeping its storage.
func (d *DataChunk) Reset() { d.b = d.b[:0] }

// SetBytes replaces the payload with a copy of b.
func (d *DataChunk) SetBytes(b []byte) { d.b = append(d.b[:0], b...) }

// Clone returns a deep copy.
func (d *DataChunk) Clone() *DataChunk { return NewDataChunk(d.b) }

// Writer returns a writer that appends to the payload.
func (d *DataChunk) Writer() *DataWriter { return &DataWriter{c: d} }

// Tweaker returns a Tweaker tagged mn over the payload, for patching fields
// in place.
func (d *DataChunk) Tweaker(mn MagicNumber) Tweaker { return NewTweakerFrom(mn, d.b) }

// Entry is one child of a ParentChunk.
type Entry struct {
	Magic MagicNumber
	Node  Node
}

// IsParent reports whether the entry holds a *ParentChunk.
func (e Entry) IsParent() bool {
	_, ok := e.Node.(*ParentChunk)
	return ok
}

// Data returns the entry's leaf. It panics if the entry is a parent.
func (e Entry) Data() *DataChunk {
	d, ok := e.Node.(*DataChunk)
	precondition(ok, fmt.Sprintf("entry %q is not a data chunk", e.Magic))
	return d
}

// Parent returns the entry's container. It panics if the entry is a leaf.
func (e Entry) Parent() *ParentChunk {
	p, ok := e.Node.(*ParentChunk)
	precondition(ok, fmt.Sprintf("entry %q is not a parent chunk", e.Magic))
	return p
}

// ParentChunk is an owned, ordered sequence of entries. Order is on-disk
// order. Entries are addressed by index; any insertion or erase shifts the
// indexes of the entries after it.
type ParentChunk struct {
	entries []Entry
}

func (*ParentChunk) isNode() {}

// NewParentChunk returns a container holding entries.
func NewParentChunk(entries ...Entry) *ParentChunk {
	p := &ParentChunk{}
	p.AppendEntries(entries...)
	return p
}

// Len returns the number of entries.
func (p *ParentChunk) Len() int { return len(p.entries) }

// At returns entry i.
func (p *ParentChunk) At(i int) Entry { return p.entries[i] }

// Set replaces entry i.
func (p *ParentChunk) Set(i int, e Entry) {
	precondition(e.Node != nil, "entry without a node")
	p.entries[i] = e
}

// All iterates entries in document order.
func (p *ParentChunk) All() iter.Seq2[int, Entry] {
	return func(yield func(int, Entry) bool) {
		for i, e := range p.entries {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Append adds a child at the end and returns its index.
func (p *ParentChunk) Append(mn MagicNumber, n Node) int {
	precondition(n != nil, "entry without a node")
	p.entries = append(p.entries, Entry{Magic: mn, Node: n})
	return len(p.entries) - 1
}

// AppendEntries adds entries at the end.
func (p *ParentChunk) AppendEntries(entries ...Entry) {
	for _, e := range entries {
		p.Append(e.Magic, e.Node)
	}
}

// Insert places entries before index i.
func (p *ParentChunk) Insert(i int, entries ...Entry) {
	for _, e := range entries {
		precondition(e.Node != nil, "entry without a node")
	}
	p.entries = slices.Insert(p.entries, i, entries...)
}

// Erase removes entry i and returns the index of the entry that followed it.
func (p *ParentChunk) Erase(i int) int {
	return p.EraseRange(i, i+1)
}

// EraseRange removes entries [i, j) and returns i.
func (p *ParentChunk) EraseRange(i, j int) int {
	p.entries = slices.Delete(p.entries, i, j)
	return i
}

// EraseFunc removes every entry for which del returns true and reports how
// many were removed.
func (p *ParentChunk) EraseFunc(del func(Entry) bool) int {
	before := len(p.entries)
	p.entries = slices.DeleteFunc(p.entries, del)
	return before - len(p.entries)
}

// Clear removes every entry.
func (p *ParentChunk) Clear() {
	clear(p.entries)
	p.entries = p.entries[:0]
}

// Reserve grows capacity for n more entries.
func (p *ParentChunk) Reserve(n int) {
	p.entries = slices.Grow(p.entries, n)
}

// Find returns the index of the first entry tagged mn, or -1.
func (p *ParentChunk) Find(mn MagicNumber) int {
	return p.FindFrom(mn, 0)
}

// FindFrom returns the index of the first entry at or after from tagged mn,
// or -1. Passing the previous match + 1 resumes a search.
func (p *ParentChunk) FindFrom(mn MagicNumber, from int) int {
	for i := max(from, 0); i < len(p.entries); i++ {
		if p.entries[i].Magic == mn {
			return i
		}
	}
	return -1
}

// FindAll returns the indexes of every entry tagged mn in document order.
// Only direct children are searched.
func (p *ParentChunk) FindAll(mn MagicNumber) []int {
	var out []int
	for i := p.Find(mn); i >= 0; i = p.FindFrom(mn, i+1) {
		out = append(out, i)
	}
	return out
}

type chunkPair struct {
	a, b *ParentChunk
}

// Clone returns a deep copy of the tree rooted at p.
func (p *ParentChunk) Clone() *ParentChunk {
	out := &ParentChunk{entries: make([]Entry, 0, len(p.entries))}
	stack := []chunkPair{{a: p, b: out}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range top.a.entries {
			switch n := e.Node.(type) {
			case *DataChunk:
				top.b.entries = append(top.b.entries, Entry{Magic: e.Magic, Node: n.Clone()})
			case *ParentChunk:
				c := &ParentChunk{entries: make([]Entry, 0, len(n.entries))}
				top.b.entries = append(top.b.entries, Entry{Magic: e.Magic, Node: c})
				stack = append(stack, chunkPair{a: n, b: c})
			}
		}
	}
	return out
}

// Equal reports whether p and other have the same shape, tags and leaf bytes.
func (p *ParentChunk) Equal(other *ParentChunk) bool {
	stack := []chunkPair{{a: p, b: other}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(top.a.entries) != len(top.b.entries) {
			return false
		}
		for i, ea := range top.a.entries {
			eb := top.b.entries[i]
			if ea.Magic != eb.Magic {
				return false
			}
			switch na := ea.Node.(type) {
			case *DataChunk:
				nb, ok := eb.Node.(*DataChunk)
				if !ok || !bytes.Equal(na.b, nb.b) {
					return false
				}
			case *ParentChunk:
				nb, ok := eb.Node.(*ParentChunk)
				if !ok {
					return false
				}
				stack = append(stack, chunkPair{a: na, b: nb})
			}
		}
	}
	return true
}

// MakeReader returns a Reader over a leaf entry's bytes. It panics if the
// entry is a parent.
func MakeReader(e Entry) Reader {
	return NewReaderFrom(e.Magic, e.Data().b)
}

// MakeStrictReader returns a Strict[M] over a leaf entry's bytes. It panics
// if the entry is a parent or is not tagged M.
func MakeStrictReader[M Tag](e Entry) Strict[M] {
	return NewStrict[M](MakeReader(e))
}

// Editor is an owned, mutable "ucfb" file: the root container of the tree.
type Editor struct {
	ParentChunk
}

// NewEditor returns an empty file.
func NewEditor() *Editor { return &Editor{} }

// NewEditorFrom materializes the file read by root. isParent decides, per
// tag, whether a child is a container to descend into or a leaf to copy.
func NewEditorFrom(root Strict[RootTag], isParent Classifier, limits Limits) (*Editor, error) {
	p, err := BuildParent(root.Reader, isParent, limits)
	if err != nil {
		return nil, err
	}
	return &Editor{ParentChunk: *p}, nil
}

// Clone returns a deep copy of the file.
func (e *Editor) Clone() *Editor {
	return &Editor{ParentChunk: *e.ParentChunk.Clone()}
}

// Assemble writes every entry of the file into w, which the caller created
// with RootMagic and closes afterwards.
func (e *Editor) Assemble(w *Writer) error {
	return e.ParentChunk.AssembleInto(w)
}

// Bytes assembles the whole file, header included, into a new buffer.
func (e *Editor) Bytes() ([]byte, error) {
	out := NewMemoryTarget(nil)
	w, err := NewWriter(RootMagic, out)
	if err != nil {
		return nil, err
	}
	if err := e.Assemble(w); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
