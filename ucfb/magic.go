package ucfb

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"strings"
)

// MagicNumber is a chunk tag: four bytes in file order read as a
// little-endian uint32, so comparing two tags compares their bytes.
type MagicNumber uint32

// RootMagic is the tag of the outermost chunk of every file, "ucfb".
const RootMagic = MagicNumber('u') | MagicNumber('c')<<8 | MagicNumber('f')<<16 | MagicNumber('b')<<24

// MN converts a four character literal into a MagicNumber. It panics when s
// is not exactly four bytes long, so it belongs in package-level variables
// where a typo fails at init.
//
//	var magicNAME = ucfb.MN("NAME")
func MN(s string) MagicNumber {
	if len(s) != 4 {
		panic(fmt.Sprintf("ucfb: magic number literal %q must be 4 bytes", s))
	}
	return MagicNumber(binary.LittleEndian.Uint32([]byte(s)))
}

// MagicFromBytes builds a MagicNumber from its on-disk bytes.
func MagicFromBytes(b [4]byte) MagicNumber {
	return MagicNumber(binary.LittleEndian.Uint32(b[:]))
}

// Bytes returns the tag in file order.
func (m MagicNumber) Bytes() [4]byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(m))
	return b
}

// Compare orders tags by their numeric value. The order is total and stable
// but is not lexical on the characters.
func (m MagicNumber) Compare(other MagicNumber) int {
	return cmp.Compare(m, other)
}

// String renders the tag as its four characters, escaping non-printables.
func (m MagicNumber) String() string {
	var sb strings.Builder
	for _, c := range m.Bytes() {
		if c >= 0x20 && c < 0x7f {
			sb.WriteByte(c)
			continue
		}
		fmt.Fprintf(&sb, `\x%02x`, c)
	}
	return sb.String()
}

// Tag pins a strict reader to one magic number at the type level. Tag types
// are empty structs:
//
//	type fontTag struct{}
//
//	func (fontTag) Magic() ucfb.MagicNumber { return magicFont }
type Tag interface {
	Magic() MagicNumber
}

// RootTag is the Tag of the outermost "ucfb" chunk.
type RootTag struct{}

// Magic implements Tag.
func (RootTag) Magic() MagicNumber { return RootMagic }

func tagOf[M Tag]() MagicNumber {
	var m M
	return m.Magic()
}
