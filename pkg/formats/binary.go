package formats

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Faultbox/map2prop/pkg/encoding"
	"github.com/Faultbox/map2prop/pkg/math"
)

// binReader reads little-endian fields and remembers the first error, so a
// record can be decoded field by field and checked once.
type binReader struct {
	r         *bytes.Reader
	truncated error
	err       error
}

func newBinReader(data []byte, truncated error) *binReader {
	return &binReader{r: bytes.NewReader(data), truncated: truncated}
}

func (b *binReader) read(v any, what string) {
	if b.err != nil {
		return
	}
	if err := binary.Read(b.r, binary.LittleEndian, v); err != nil {
		b.err = fmt.Errorf("%w: reading %s", b.truncated, what)
	}
}

func (b *binReader) int32(what string) int32 {
	var v int32
	b.read(&v, what)
	return v
}

func (b *binReader) uint32(what string) uint32 {
	var v uint32
	b.read(&v, what)
	return v
}

func (b *binReader) int16(what string) int16 {
	var v int16
	b.read(&v, what)
	return v
}

func (b *binReader) uint8(what string) uint8 {
	var v uint8
	b.read(&v, what)
	return v
}

func (b *binReader) float32(what string) float64 {
	var v float32
	b.read(&v, what)
	return float64(v)
}

func (b *binReader) float64(what string) float64 {
	var v float64
	b.read(&v, what)
	return v
}

func (b *binReader) vec3(what string) math.Vec3 {
	var v [3]float32
	b.read(&v, what)
	return math.Vec3{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
}

// count reads an int32 element count and rejects negative or absurd values.
func (b *binReader) count(what string) int {
	n := b.int32(what)
	if b.err != nil {
		return 0
	}
	if n < 0 || int(n) > b.r.Len() {
		b.err = fmt.Errorf("%w: invalid %s %d", b.truncated, what, n)
		return 0
	}
	return int(n)
}

func (b *binReader) bytes(n int, what string) []byte {
	if b.err != nil {
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(b.r, buf); err != nil {
		b.err = fmt.Errorf("%w: reading %s", b.truncated, what)
		return nil
	}
	return buf
}

func (b *binReader) skip(n int, what string) {
	if b.err != nil {
		return
	}
	if b.r.Len() < n {
		b.err = fmt.Errorf("%w: skipping %s", b.truncated, what)
		return
	}
	b.r.Seek(int64(n), io.SeekCurrent)
}

// fixedString reads a null-terminated string stored in a field of n bytes.
func (b *binReader) fixedString(n int, what string) string {
	return encoding.FixedStringToUTF8(b.bytes(n, what))
}

// byteString reads a string prefixed by a one byte length.
func (b *binReader) byteString(what string) string {
	n := int(b.uint8(what))
	if n == 0 {
		return ""
	}
	return b.fixedString(n, what)
}

// intString reads a string prefixed by an int32 length, -1 meaning empty.
func (b *binReader) intString(what string) string {
	n := b.int32(what)
	if b.err != nil || n <= 0 {
		return ""
	}
	return b.fixedString(int(n), what)
}

func (b *binReader) remaining() int {
	return b.r.Len()
}
