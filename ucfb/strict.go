package ucfb

import "fmt"

// Strict is a Reader whose tag is known to be M's magic number. The check
// happens once, where the reader is created, so functions taking a Strict[M]
// need not re-check the tag.
type Strict[M Tag] struct {
	Reader
}

// NewStrict wraps r. It panics when r's tag is not M's; use AsStrict for tags
// that come from untrusted data.
func NewStrict[M Tag](r Reader) Strict[M] {
	want := tagOf[M]()
	precondition(r.mn == want, fmt.Sprintf("strict reader for %q given chunk %q", want, r.mn))
	return Strict[M]{Reader: r}
}

// AsStrict wraps r, failing with ErrMagicMismatch when r's tag is not M's.
func AsStrict[M Tag](r Reader) (Strict[M], error) {
	want := tagOf[M]()
	if r.mn != want {
		return Strict[M]{}, newError(ErrKindMagicMismatch, r.mn, r.offset,
			"expected chunk %q", want)
	}
	return Strict[M]{Reader: r}, nil
}

// NewStrictReader parses the chunk at the start of b and checks its tag.
//
//	root, err := ucfb.NewStrictReader[ucfb.RootTag](data)
func NewStrictReader[M Tag](b []byte) (Strict[M], error) {
	r, err := NewReader(b)
	if err != nil {
		return Strict[M]{}, err
	}
	return AsStrict[M](r)
}

// ReadChildStrict reads the next child of r as a Strict[M]. On a tag
// mismatch it fails with ErrMagicMismatch without moving r's head.
func ReadChildStrict[M Tag](r *Reader, a Alignment) (Strict[M], error) {
	child, err := r.ReadChildMagic(tagOf[M](), a)
	if err != nil {
		return Strict[M]{}, err
	}
	return Strict[M]{Reader: child}, nil
}

// ReadChildStrictOptional reads the next child of r if it is tagged M. A
// different tag is not an error: ok is false and the head does not move.
func ReadChildStrictOptional[M Tag](r *Reader, a Alignment) (child Strict[M], ok bool, err error) {
	saved := r.head
	c, err := r.ReadChild(a)
	if err != nil {
		return Strict[M]{}, false, err
	}
	if c.mn != tagOf[M]() {
		r.head = saved
		return Strict[M]{}, false, nil
	}
	return Strict[M]{Reader: c}, true, nil
}

// SkipToChild reads children of r until one tagged M is found. Children
// before it are skipped for good. It fails with ErrNotFound when r runs out.
func SkipToChild[M Tag](r *Reader, a Alignment) (Strict[M], error) {
	want := tagOf[M]()
	for r.More() {
		child, err := r.ReadChild(a)
		if err != nil {
			return Strict[M]{}, err
		}
		if child.mn == want {
			return Strict[M]{Reader: child}, nil
		}
	}
	return Strict[M]{}, newError(ErrKindNotFound, r.mn, r.offset+r.head,
		"no child %q", want)
}
