// Package patch edits fields of a container file in place. The file is
// mapped read-write, fields are located and changed through ucfb.Tweaker,
// and only the pages that changed are synced back on Flush. Nothing is
// inserted or removed, so chunk sizes never change.
package patch

import (
	"context"
	"fmt"

	"github.com/joshuapare/ucfbkit/internal/dirty"
	"github.com/joshuapare/ucfbkit/internal/mmfile"
	"github.com/joshuapare/ucfbkit/ucfb"
)

// File is an open patch session.
type File struct {
	m       *mmfile.File
	tracker *dirty.Tracker
	root    ucfb.Tweaker
}

// Open maps path read-write and checks that it is a "ucfb" file.
func Open(path string) (*File, error) {
	m, err := mmfile.OpenRW(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	root, err := ucfb.NewTweaker(m.Bytes())
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if root.Magic() != ucfb.RootMagic {
		_ = m.Close()
		return nil, fmt.Errorf("%s: %w", path, &ucfb.Error{
			Kind:  ucfb.ErrKindMagicMismatch,
			Magic: root.Magic(),
			Msg:   fmt.Sprintf("root chunk is not %q", ucfb.RootMagic),
		})
	}
	tracker := dirty.NewTracker(m)
	root.Track(tracker)
	return &File{m: m, tracker: tracker, root: root}, nil
}

// Root returns a Tweaker over the root chunk. Stores made through it, or
// anything obtained from it, are tracked for Flush.
func (f *File) Root() ucfb.Tweaker { return f.root }

// Locate follows path from the root, taking the first child with each tag
// in turn.
//
//	info, err := f.Locate(ucfb.Aligned, magicMTRL, magicINFO)
func (f *File) Locate(a ucfb.Alignment, path ...ucfb.MagicNumber) (ucfb.Tweaker, error) {
	cur := f.root
	for i, mn := range path {
		child, ok, err := ucfb.Find(mn, cur, a)
		if err != nil {
			return ucfb.Tweaker{}, err
		}
		if !ok {
			return ucfb.Tweaker{}, &ucfb.Error{
				Kind:   ucfb.ErrKindNotFound,
				Magic:  cur.Magic(),
				Offset: cur.Offset(),
				Msg:    fmt.Sprintf("no child %q at path element %d", mn, i),
			}
		}
		cur = child
	}
	return cur, nil
}

// Dirty returns the page ranges Flush would sync.
func (f *File) Dirty() []dirty.Range { return f.tracker.Ranges() }

// Flush syncs changed pages to disk.
func (f *File) Flush(ctx context.Context, mode dirty.FlushMode) error {
	return f.tracker.Flush(ctx, mode)
}

// Close unmaps the file without flushing. Changes still reach the file
// eventually because the mapping is shared, but without durability
// guarantees.
func (f *File) Close() error {
	return f.m.Close()
}
