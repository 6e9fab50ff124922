// Package ucfb reads, patches, edits and writes "ucfb" chunk containers, the
// nested tag-length-value format used by munged game resource archives
// (levels, shader packs, models, terrain).
//
// # Wire Format
//
// Every chunk is a 4-byte magic number, a little-endian uint32 payload size,
// the payload, and 0-3 zero bytes of padding so the next header starts on a
// 4-byte boundary relative to the parent's payload start:
//
//	+-------+------+-------------------+---------+
//	| magic | size | payload (size B)  | pad 0-3 |
//	+-------+------+-------------------+---------+
//
// The padding belongs to whatever follows. A chunk that is the last thing in
// its parent, or in the file, has none, and a parent's size then ends at its
// last child's final payload byte.
//
// The outermost chunk of a file is tagged "ucfb".
//
// # Access Modes
//
//   - Reader: zero-copy, bounds-checked cursor over borrowed bytes.
//   - Strict[M]: a Reader whose tag was checked against the Tag type M.
//   - Tweaker: the same traversal over mutable bytes, handing out Proxy
//     values that load and store one field in place.
//   - Editor: an owned tree of DataChunk leaves and ParentChunk containers,
//     built from a Reader with a caller-supplied classifier and serialized
//     back through a Writer.
//   - StreamReader: sequential traversal of an io.ReadSeeker without loading
//     the whole file.
//
// # Alignment
//
// Every read and write takes an explicit Alignment. Aligned operations move
// the head to the next multiple of 4 after the value; Unaligned ones do not.
// Which one a field needs is a property of the resource being parsed, so the
// package never guesses.
//
// # Errors
//
// Problems caused by the bytes being read are returned as *Error values that
// match ErrOutOfBounds, ErrMalformed, ErrMagicMismatch or ErrNotFound through
// errors.Is. Failing operations leave the cursor where it was. Caller misuse
// (asking a parent entry for its bytes, writing to a writer with an open
// child) panics.
//
// # Thread Safety
//
// Nothing in this package synchronizes. Readers over the same bytes may be
// used from different goroutines; an Editor may be read concurrently while
// nobody mutates it.
package ucfb
