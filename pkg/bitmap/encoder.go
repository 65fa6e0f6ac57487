package bitmap

import (
	"image"
)

// Encode converts src to RGB565 and returns its pixel bytes, left to right
// then top to bottom, high byte first.
func Encode(src image.Image) []byte {
	b := src.Bounds()
	d := NewRGB565(b)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			d.Set(x, y, src.At(x, y))
		}
	}

	return d.Pix
}
