package ucfb

import (
	"golang.org/x/text/encoding/charmap"

	"github.com/joshuapare/ucfbkit/internal/buf"
)

// DataWriter appends to a DataChunk's payload. Aligned writes pad the
// payload with zeros to a multiple of 4.
type DataWriter struct {
	c *DataChunk
}

// Len returns the payload length so far.
func (w *DataWriter) Len() int { return len(w.c.b) }

func (w *DataWriter) align(a Alignment) {
	if a == Aligned {
		w.c.b = append(w.c.b, make([]byte, buf.Padding(len(w.c.b)))...)
	}
}

// Write appends p.
func (w *DataWriter) Write(p []byte, a Alignment) {
	w.c.b = append(w.c.b, p...)
	w.align(a)
}

// WriteValue appends the little-endian encoding of the fixed-size value v.
func (w *DataWriter) WriteValue(v any, a Alignment) {
	w.c.b = encodeValue(w.c.b, v)
	w.align(a)
}

// WriteValues appends each value in order, applying a after every one.
func (w *DataWriter) WriteValues(a Alignment, vs ...any) {
	for _, v := range vs {
		w.WriteValue(v, a)
	}
}

// WriteString appends s and a NUL terminator. The terminator counts toward
// alignment.
func (w *DataWriter) WriteString(s string, a Alignment) {
	w.c.b = append(w.c.b, s...)
	w.c.b = append(w.c.b, 0)
	w.align(a)
}

// WriteText encodes s as Windows-1252 and appends it NUL-terminated. Runes
// with no Windows-1252 form are an error and nothing is written.
func (w *DataWriter) WriteText(s string, a Alignment) error {
	enc, err := charmap.Windows1252.NewEncoder().String(s)
	if err != nil {
		return err
	}
	w.WriteString(enc, a)
	return nil
}

// Pad appends n zero bytes.
func (w *DataWriter) Pad(n int, a Alignment) {
	precondition(n >= 0, "negative pad")
	w.c.b = append(w.c.b, make([]byte, n)...)
	w.align(a)
}
