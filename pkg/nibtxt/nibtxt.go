// Package nibtxt writes images in the nibble-ASCII RGB565 text format used by
// display firmware:
//
//	width byte, height byte, then width*height RGB565 pixels (high byte first)
//
// Pixels run left to right, then top to bottom. Each logical byte is written as
// two characters in 0x20..0x2F (see package nibble). There is no footer.
package nibtxt

import (
	"bufio"
	"image"
	"io"
	"strings"

	"github.com/pkg/errors"

	"rgb565txt/pkg/bitmap"
	"rgb565txt/pkg/nibble"
)

// MaxHeader is the largest dimension a header byte can hold.
const MaxHeader = 0xFF

// ErrDimension is returned under Strict for a width or height above MaxHeader.
var ErrDimension = errors.New("dimension does not fit in a header byte")

// HeaderPolicy decides what happens to dimensions above MaxHeader.
type HeaderPolicy int

const (
	// Strict rejects dimensions above MaxHeader.
	Strict HeaderPolicy = iota
	// Truncate keeps only the low byte, so 300 is written as 44.
	Truncate
)

func (p HeaderPolicy) String() string {
	switch p {
	case Strict:
		return "strict"
	case Truncate:
		return "truncate"
	}
	return "unknown"
}

// ParseHeaderPolicy parses "strict" or "truncate"; empty means Strict.
func ParseHeaderPolicy(s string) (HeaderPolicy, error) {
	switch strings.ToLower(s) {
	case "", "strict":
		return Strict, nil
	case "truncate":
		return Truncate, nil
	}
	return Strict, errors.Errorf("unknown header policy %q", s)
}

// HeaderBytes returns the two header bytes for an image of the given size.
// Both dimensions are clamped to [0, 65535] first.
func HeaderBytes(width, height int, policy HeaderPolicy) ([2]byte, error) {
	width, height = nibble.Clamp(width), nibble.Clamp(height)

	if policy == Strict && (width > MaxHeader || height > MaxHeader) {
		return [2]byte{}, errors.Wrapf(ErrDimension, "%dx%d", width, height)
	}

	return [2]byte{byte(width), byte(height)}, nil
}

// EncodedLen returns the number of characters Encode writes for an image of
// the given size.
func EncodedLen(width, height int) int {
	return nibble.EncodedLen(2 + 2*width*height)
}

// Encode writes img to w. The header is checked against policy before
// anything is written.
func Encode(w io.Writer, img image.Image, policy HeaderPolicy) error {
	size := img.Bounds().Size()

	header, err := HeaderBytes(size.X, size.Y, policy)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	enc := nibble.NewEncoder(bw)

	if _, err := enc.Write(header[:]); err != nil {
		return errors.Wrap(err, "write header")
	}

	if _, err := enc.Write(bitmap.Encode(img)); err != nil {
		return errors.Wrap(err, "write pixels")
	}

	return bw.Flush()
}
