// Package nibble implements the nibble-ASCII byte encoding: every 4-bit nibble
// is written as one character by adding 0x20 to it, so a byte always becomes
// two characters in the range 0x20..0x2F.
package nibble

import (
	"io"
)

const (
	// Offset is added to each nibble to get its character.
	Offset = 0x20
	// Max is the largest value accepted before clamping.
	Max = 0xFFFF
)

// Clamp limits v to [0, Max].
func Clamp(v int) int {
	if v > Max {
		return Max
	} else if v < 0 {
		return 0
	}
	return v
}

// EncodeByte clamps v and encodes its low byte as two characters.
func EncodeByte(v int) [2]byte {
	v = Clamp(v)
	return [2]byte{
		byte((v>>4)&0xF) + Offset,
		byte(v&0xF) + Offset,
	}
}

// EncodedLen returns the length of an encoding of n source bytes.
func EncodedLen(n int) int {
	return n * 2
}

// Encode encodes src into EncodedLen(len(src)) bytes of dst and returns the
// number of bytes written.
func Encode(dst, src []byte) int {
	j := 0
	for _, v := range src {
		dst[j] = v>>4 + Offset
		dst[j+1] = v&0xF + Offset
		j += 2
	}
	return len(src) * 2
}

// EncodeToString returns the encoding of src.
func EncodeToString(src []byte) string {
	dst := make([]byte, EncodedLen(len(src)))
	Encode(dst, src)
	return string(dst)
}

const bufferSize = 1024

type encoder struct {
	w   io.Writer
	err error
	out [bufferSize]byte
}

// NewEncoder returns an io.Writer that writes the encoding of everything
// written to it into w.
func NewEncoder(w io.Writer) io.Writer {
	return &encoder{w: w}
}

func (e *encoder) Write(p []byte) (n int, err error) {
	for len(p) > 0 && e.err == nil {
		chunk := bufferSize / 2
		if len(p) < chunk {
			chunk = len(p)
		}

		var written int
		encoded := Encode(e.out[:], p[:chunk])
		written, e.err = e.w.Write(e.out[:encoded])
		n += written / 2
		p = p[chunk:]
	}
	return n, e.err
}
