// Package codec implements the spec.md §4.6 boundary serializers: the
// binary match-list wire format, the JSON finding format, and the compact
// JSON node-info format.
package codec

import (
	"encoding/binary"

	"github.com/oxhq/astgrep/internal/pattern"
)

// ResultBufferSize is the fixed output buffer size for WriteMatches. On
// overflow the writer returns a zero-length slice rather than growing the
// buffer or erroring, matching spec.md §4.6.
const ResultBufferSize = 64 * 1024

// WriteMatches encodes l into buf using the little-endian binary layout of
// spec.md §4.6: a u32 count, then per match six u32 coordinates and a u32
// binding count, then per binding a length-prefixed name and text. buf must
// be at least ResultBufferSize; WriteMatches never writes past len(buf). On
// overflow it returns a zero-length slice, signalling the host to treat the
// result as absent rather than partially written.
func WriteMatches(buf []byte, l *pattern.MatchList) []byte {
	pos := 0
	put32 := func(v uint32) bool {
		if pos+4 > len(buf) {
			return false
		}
		binary.LittleEndian.PutUint32(buf[pos:], v)
		pos += 4
		return true
	}
	putStr := func(s string) bool {
		if !put32(uint32(len(s))) {
			return false
		}
		if pos+len(s) > len(buf) {
			return false
		}
		copy(buf[pos:], s)
		pos += len(s)
		return true
	}

	if !put32(uint32(l.Len())) {
		return buf[:0]
	}
	for i := 0; i < l.Len(); i++ {
		m := l.At(i)
		ok := put32(uint32(m.Range.StartByte)) &&
			put32(uint32(m.Range.EndByte)) &&
			put32(uint32(m.Range.StartPoint.Row)) &&
			put32(uint32(m.Range.StartPoint.Col)) &&
			put32(uint32(m.Range.EndPoint.Row)) &&
			put32(uint32(m.Range.EndPoint.Col)) &&
			put32(uint32(m.Bindings.Len()))
		if !ok {
			return buf[:0]
		}
		for bi := 0; bi < m.Bindings.Len(); bi++ {
			b := m.Bindings.At(bi)
			if !putStr(b.Name) || !putStr(b.Text) {
				return buf[:0]
			}
		}
	}
	return buf[:pos]
}
