package bitmap

import (
	"fmt"
	"image"
	"image/color"
)

// NewRGB565 returns an empty RGB565 image with the given bounds.
func NewRGB565(r image.Rectangle) *RGB565 {
	return &RGB565{
		Pix:    make([]byte, pixelBufferLength(2, r)),
		Stride: 2 * r.Dx(),
		Rect:   r,
	}
}

// RGB565 is an in-memory image of Color values. Pixels are stored row-major,
// two bytes each, high byte first. It implements the draw.Image interface.
type RGB565 struct {
	Pix    []byte
	Stride int
	Rect   image.Rectangle
}

// Bounds implements the image.Image interface.
func (p *RGB565) Bounds() image.Rectangle {
	return p.Rect
}

// ColorModel implements the image.Image interface.
func (p *RGB565) ColorModel() color.Model {
	return Model
}

// PixOffset returns the index of the high byte of the pixel at (x, y).
func (p *RGB565) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*2
}

// At implements the image.Image interface.
func (p *RGB565) At(x, y int) color.Color {
	return p.RGB565At(x, y)
}

// RGB565At returns the pixel at (x, y), or 0 outside the bounds.
func (p *RGB565) RGB565At(x, y int) Color {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return 0
	}
	i := p.PixOffset(x, y)
	return Color(p.Pix[i])<<8 | Color(p.Pix[i+1])
}

// Set implements the draw.Image interface.
func (p *RGB565) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	v := Model.Convert(c).(Color)
	i := p.PixOffset(x, y)
	p.Pix[i] = v.Hi()
	p.Pix[i+1] = v.Lo()
}

func pixelBufferLength(bytesPerPixel int, r image.Rectangle) int {
	totalLength := r.Dx() * r.Dy() * bytesPerPixel
	if totalLength < 0 || r.Dx() < 0 || r.Dy() < 0 {
		panic(fmt.Sprintf("bitmap: NewRGB565 Rectangle has huge or negative dimensions %v", r))
	}
	return totalLength
}

// Model converts any color to a Color. Alpha is ignored: callers flatten
// translucent images before conversion.
//
// This shows the memory layout of a pixel:
//
//	bit 76543210  76543210
//	    RRRRRGGG  GGGBBBBB
//	   high byte  low byte
var Model = color.ModelFunc(func(c color.Color) color.Color {
	if v, ok := c.(Color); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return Color(Quantize(uint8(r>>8), uint8(g>>8), uint8(b>>8)))
})

// Quantize scales each 8-bit channel linearly into 5, 6 and 5 bits,
// truncating, and packs them as RRRRRGGGGGGBBBBB.
func Quantize(r, g, b uint8) uint16 {
	r5 := uint16(uint32(r)*0x1F/0xFF) << 11
	g6 := uint16(uint32(g)*0x3F/0xFF) << 5
	b5 := uint16(uint32(b) * 0x1F / 0xFF)
	return r5 | g6 | b5
}

// Color is a 16-bit RGB565 value. It implements the color.Color interface.
type Color uint16

// RGBA implements the color.Color interface.
func (c Color) RGBA() (r, g, b, a uint32) {
	// To convert a channel from 5 or 6 bits back to 16 bits, the short bit
	// pattern is duplicated to fill all 16 bits, so all-zero and all-one
	// channels map to 0x0000 and 0xFFFF.
	rBits := uint32(c & 0xF800) // RRRRR00000000000
	gBits := uint32(c & 0x7E0)  // 00000GGGGGG00000
	bBits := uint32(c & 0x1F)   // 00000000000BBBBB
	r = rBits | rBits>>5 | rBits>>10 | rBits>>15
	g = gBits<<5 | gBits>>1 | gBits>>7
	b = bBits<<11 | bBits<<6 | bBits<<1 | bBits>>4
	a = 0xFFFF
	return
}

// Hi returns the high byte.
func (c Color) Hi() byte {
	return byte(c >> 8)
}

// Lo returns the low byte.
func (c Color) Lo() byte {
	return byte(c)
}
