// Package dirty tracks byte ranges modified through a memory mapping and
// flushes them to disk.
//
// The tracker records raw ranges cheaply, then page-aligns, sorts and merges
// them at flush time so each dirty page is synced once, using msync on Unix
// and FlushViewOfFile on Windows.
//
// A Tracker is not safe for concurrent use.
package dirty

import (
	"cmp"
	"context"
	"slices"
)

const (
	defaultRangeCapacity = 64

	// standardPageSize is the typical OS page size (4KB).
	standardPageSize = 4096
)

// FlushMode controls how far Flush goes to make changes durable.
type FlushMode int

const (
	// FlushAuto syncs dirty pages, then the file descriptor. On macOS the
	// descriptor sync is a plain fsync.
	FlushAuto FlushMode = iota

	// FlushDataOnly only syncs dirty pages. Use it when batching several
	// patch rounds and syncing the file once at the end.
	FlushDataOnly

	// FlushFull syncs dirty pages and the descriptor, with F_FULLFSYNC on
	// macOS for power-loss durability.
	FlushFull
)

func (m FlushMode) String() string {
	switch m {
	case FlushDataOnly:
		return "data"
	case FlushFull:
		return "full"
	default:
		return "auto"
	}
}

// Mapping is the memory a Tracker flushes: the mapped bytes and the file
// descriptor behind them.
type Mapping interface {
	Bytes() []byte
	FD() int
}

// Range is a dirty byte range in absolute file offsets.
type Range struct {
	Off int64
	Len int64
}

// Tracker accumulates dirty ranges and flushes them.
type Tracker struct {
	m        Mapping
	ranges   []Range
	pageSize int64
}

// NewTracker creates a tracker for m.
func NewTracker(m Mapping) *Tracker {
	return &Tracker{
		m:        m,
		ranges:   make([]Range, 0, defaultRangeCapacity),
		pageSize: standardPageSize,
	}
}

// Add records a dirty range. It only appends; alignment and merging happen
// at flush time.
func (t *Tracker) Add(off, length int) {
	if length <= 0 {
		return
	}
	t.ranges = append(t.ranges, Range{Off: int64(off), Len: int64(length)})
}

// Len returns the number of raw ranges recorded since the last flush.
func (t *Tracker) Len() int { return len(t.ranges) }

// Reset drops every recorded range without flushing.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
}

// Raw returns a copy of the recorded, uncoalesced ranges.
func (t *Tracker) Raw() []Range {
	return slices.Clone(t.ranges)
}

// Ranges returns the page-aligned, sorted, merged ranges Flush would sync.
func (t *Tracker) Ranges() []Range {
	return t.coalesce()
}

// Flush syncs every dirty page, then syncs the file descriptor unless mode
// is FlushDataOnly. Recorded ranges are cleared on success.
//
// The context is checked before each range. If cancelled midway some ranges
// may already be on disk; the ranges stay recorded so a later Flush retries.
func (t *Tracker) Flush(ctx context.Context, mode FlushMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(t.ranges) == 0 {
		return nil
	}
	data := t.m.Bytes()
	if len(data) == 0 {
		t.Reset()
		return nil
	}

	if err := t.flushRanges(ctx, data); err != nil {
		return err
	}
	if mode != FlushDataOnly {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fdatasync(t.m.FD(), mode == FlushFull); err != nil {
			return err
		}
	}
	t.Reset()
	return nil
}

// coalesce page-aligns all ranges, sorts them, and merges overlapping or
// adjacent ones.
func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		start := (r.Off / t.pageSize) * t.pageSize
		end := r.Off + r.Len
		if end%t.pageSize != 0 {
			end = ((end / t.pageSize) + 1) * t.pageSize
		}
		aligned[i] = Range{Off: start, Len: end - start}
	}

	slices.SortFunc(aligned, func(a, b Range) int {
		return cmp.Compare(a.Off, b.Off)
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]
	for _, next := range aligned[1:] {
		if next.Off <= current.Off+current.Len {
			current.Len = max(current.Off+current.Len, next.Off+next.Len) - current.Off
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}

// clip bounds r to a mapping of n bytes. The last page of a file is usually
// partial.
func clip(r Range, n int) (start, end int, ok bool) {
	start = int(r.Off)
	if start >= n {
		return 0, 0, false
	}
	return start, min(int(r.Off+r.Len), n), true
}
