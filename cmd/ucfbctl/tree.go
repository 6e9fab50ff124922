package main

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/joshuapare/ucfbkit/schema"
	"github.com/joshuapare/ucfbkit/ucfb"
)

// chunkInfo is one node of a walked container, as printed by dump and find.
type chunkInfo struct {
	Tag      string       `json:"tag"`
	Offset   int          `json:"offset"`
	Size     int          `json:"size"`
	Preview  string       `json:"preview,omitempty"`
	Children []*chunkInfo `json:"children,omitempty"`

	parent bool
	path   string
}

type walkOptions struct {
	schema     *schema.Schema
	depth      int // deepest level expanded; 0 = unlimited
	previewLen int // leaf bytes shown; 0 = no preview
}

type walkFrame struct {
	r     ucfb.Reader
	node  *chunkInfo
	depth int
	seen  map[ucfb.MagicNumber]int
}

// walkTree reads the whole chunk tree under root with an explicit stack.
func walkTree(root ucfb.Reader, opts walkOptions) (*chunkInfo, error) {
	maxDepth := opts.schema.EditorLimits().MaxDepth
	if maxDepth == 0 {
		maxDepth = ucfb.DefaultMaxDepth
	}

	top := &chunkInfo{
		Tag:    root.Magic().String(),
		Offset: root.Offset() - 8,
		Size:   root.Size(),
		parent: true,
		path:   root.Magic().String(),
	}
	stack := []walkFrame{{r: root, node: top, seen: map[ucfb.MagicNumber]int{}}}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if !f.r.More() {
			stack = stack[:len(stack)-1]
			continue
		}
		child, err := f.r.ReadChild(ucfb.Aligned)
		if err != nil {
			return nil, err
		}
		mn := child.Magic()
		n := &chunkInfo{
			Tag:    mn.String(),
			Offset: child.Offset() - 8,
			Size:   child.Size(),
			parent: opts.schema.IsParent(mn),
			path:   fmt.Sprintf("%s/%s[%d]", f.node.path, mn, f.seen[mn]),
		}
		f.seen[mn]++
		f.node.Children = append(f.node.Children, n)

		switch {
		case !n.parent:
			n.Preview = preview(child, opts.previewLen)
		case opts.depth > 0 && f.depth+1 >= opts.depth:
			// shown, not expanded
		case f.depth+1 > maxDepth:
			return nil, fmt.Errorf("%s: nesting deeper than %d levels", n.path, maxDepth)
		default:
			stack = append(stack, walkFrame{r: child, node: n, depth: f.depth + 1, seen: map[ucfb.MagicNumber]int{}})
		}
	}
	return top, nil
}

// preview renders up to n leading payload bytes: quoted text when the
// payload is one NUL-terminated printable string, hex otherwise.
func preview(r ucfb.Reader, n int) string {
	if n <= 0 || r.Size() == 0 {
		return ""
	}
	payload := r.Payload()
	if i := bytes.IndexByte(payload, 0); i > 0 && i == len(payload)-1 && printable(payload[:i]) {
		if s, err := r.ReadText(ucfb.Unaligned); err == nil {
			if len(s) > n {
				return fmt.Sprintf("%q...", s[:n])
			}
			return fmt.Sprintf("%q", s)
		}
	}
	if len(payload) > n {
		return hex.EncodeToString(payload[:n]) + "..."
	}
	return hex.EncodeToString(payload)
}

func printable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c == 0x7f {
			return false
		}
	}
	return true
}

// eachNode visits nodes depth first in document order.
func eachNode(root *chunkInfo, fn func(n *chunkInfo, depth int)) {
	type item struct {
		n     *chunkInfo
		depth int
	}
	stack := []item{{root, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(it.n, it.depth)
		for i := len(it.n.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{it.n.Children[i], it.depth + 1})
		}
	}
}
