package ucfb

import (
	"errors"
	"fmt"
)

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindOutOfBounds   ErrKind = iota // read/consume/get would pass the payload end
	ErrKindMalformed                    // header size inconsistent, missing terminator, nesting too deep
	ErrKindMagicMismatch                // checked accessor saw an unexpected tag
	ErrKindNotFound                     // search for a child tag came up empty
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindOutOfBounds:
		return "out of bounds"
	case ErrKindMalformed:
		return "malformed container"
	case ErrKindMagicMismatch:
		return "magic number mismatch"
	case ErrKindNotFound:
		return "not found"
	default:
		return fmt.Sprintf("ErrKind(%d)", int(k))
	}
}

// Error is a typed error describing a problem with container bytes.
type Error struct {
	Kind   ErrKind
	Magic  MagicNumber // tag of the chunk being read
	Offset int         // absolute offset where the failing operation started
	Msg    string
	Err    error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("ucfb: %s: %s", e.Kind, e.Msg)
	switch {
	case e.Magic != 0:
		msg += fmt.Sprintf(" (chunk %q at offset %d)", e.Magic, e.Offset)
	case e.Offset != 0:
		// No header was readable yet, so there is no tag to name.
		msg += fmt.Sprintf(" (at offset %d)", e.Offset)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, ErrOutOfBounds)
// works regardless of the chunk or offset involved.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is.
var (
	ErrOutOfBounds   = &Error{Kind: ErrKindOutOfBounds, Msg: "read past end of chunk"}
	ErrMalformed     = &Error{Kind: ErrKindMalformed, Msg: "malformed container"}
	ErrMagicMismatch = &Error{Kind: ErrKindMagicMismatch, Msg: "chunk magic number mismatch"}
	ErrNotFound      = &Error{Kind: ErrKindNotFound, Msg: "child chunk not found"}
)

// ErrTooLarge is returned by Writer when a chunk outgrows the signed 32-bit
// size the format can describe.
var ErrTooLarge = errors.New("ucfb: chunk too large")

func newError(kind ErrKind, mn MagicNumber, offset int, format string, args ...any) *Error {
	return &Error{Kind: kind, Magic: mn, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// precondition panics when a caller broke an API contract. These are logic
// errors in the calling code, not problems with the data.
func precondition(ok bool, msg string) {
	if !ok {
		panic("ucfb: precondition violated: " + msg)
	}
}
