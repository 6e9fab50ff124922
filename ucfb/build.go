package ucfb

import "errors"

// Classifier reports whether chunks tagged mn are containers. The same tag
// can be a leaf in one resource type and a container in another, so the
// caller decides.
type Classifier func(mn MagicNumber) bool

// DefaultMaxDepth bounds container nesting when building or reading trees.
// Real files nest a handful of levels.
const DefaultMaxDepth = 256

// Limits bounds the work done on untrusted input.
type Limits struct {
	// MaxDepth is the deepest container nesting accepted, counting the
	// container being built as depth 0. Zero means DefaultMaxDepth.
	MaxDepth int
}

// DefaultLimits returns the limits used when none are given.
func DefaultLimits() Limits {
	return Limits{MaxDepth: DefaultMaxDepth}
}

func (l Limits) maxDepth() int {
	if l.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return l.MaxDepth
}

type buildFrame struct {
	r     Reader
	dst   *ParentChunk
	depth int
}

// BuildParent materializes every remaining child of r into a ParentChunk in
// one pass. Children whose tag isParent accepts are descended into; the rest
// are copied as leaves. Traversal uses an explicit stack, and nesting deeper
// than limits.MaxDepth fails with ErrMalformed.
func BuildParent(r Reader, isParent Classifier, limits Limits) (*ParentChunk, error) {
	if isParent == nil {
		return nil, errors.New("ucfb: nil classifier")
	}
	maxDepth := limits.maxDepth()

	root := &ParentChunk{}
	stack := []buildFrame{{r: r, dst: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if !top.r.More() {
			stack = stack[:len(stack)-1]
			continue
		}
		child, err := top.r.ReadChild(Aligned)
		if err != nil {
			return nil, err
		}
		if !isParent(child.mn) {
			top.dst.Append(child.mn, NewDataChunk(child.payload))
			continue
		}
		if top.depth+1 > maxDepth {
			return nil, newError(ErrKindMalformed, child.mn, child.offset,
				"container nesting exceeds %d levels", maxDepth)
		}
		p := &ParentChunk{}
		top.dst.Append(child.mn, p)
		stack = append(stack, buildFrame{r: child, dst: p, depth: top.depth + 1})
	}
	return root, nil
}

type assembleFrame struct {
	p    *ParentChunk
	next int
	w    *Writer
}

// AssembleInto writes p's entries as children of w, depth first: each child
// is opened on the writer, filled with its bytes or its own children, then
// closed so its length is back-patched. w itself is left open.
func (p *ParentChunk) AssembleInto(w *Writer) error {
	stack := []assembleFrame{{p: p, w: w}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.p.entries) {
			if len(stack) > 1 {
				if err := top.w.Close(); err != nil {
					return err
				}
			}
			stack = stack[:len(stack)-1]
			continue
		}
		e := top.p.entries[top.next]
		top.next++

		cw, err := top.w.EmplaceChild(e.Magic)
		if err != nil {
			return err
		}
		switch n := e.Node.(type) {
		case *DataChunk:
			if err := cw.Write(n.b, Unaligned); err != nil {
				return err
			}
			if err := cw.Close(); err != nil {
				return err
			}
		case *ParentChunk:
			stack = append(stack, assembleFrame{p: n, w: cw})
		default:
			precondition(false, "entry without a node")
		}
	}
	return nil
}
