package bitmap

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floorScale(v uint8, max float64) uint16 {
	return uint16(math.Floor(float64(v) / 255 * max))
}

func TestQuantizeFields(t *testing.T) {
	for r := 0; r <= 0xFF; r += 3 {
		for g := 0; g <= 0xFF; g += 5 {
			for b := 0; b <= 0xFF; b += 7 {
				v := Quantize(uint8(r), uint8(g), uint8(b))
				assert.Equal(t, floorScale(uint8(r), 31), v>>11, "r=%d", r)
				assert.Equal(t, floorScale(uint8(g), 63), (v>>5)&0x3F, "g=%d", g)
				assert.Equal(t, floorScale(uint8(b), 31), v&0x1F, "b=%d", b)
			}
		}
	}
}

func TestQuantizeEdges(t *testing.T) {
	assert.Equal(t, uint16(0xFFFF), Quantize(0xFF, 0xFF, 0xFF))
	assert.Equal(t, uint16(0x0000), Quantize(0, 0, 0))
	assert.Equal(t, uint16(0xF800), Quantize(0xFF, 0, 0))
	assert.Equal(t, uint16(0x07E0), Quantize(0, 0xFF, 0))
	assert.Equal(t, uint16(0x001F), Quantize(0, 0, 0xFF))
	// 254/255*31 = 30.88, truncated
	assert.Equal(t, uint16(30<<11), Quantize(0xFE, 0, 0))
}

func TestColorBytes(t *testing.T) {
	c := Color(0xF81F)
	assert.Equal(t, byte(0xF8), c.Hi())
	assert.Equal(t, byte(0x1F), c.Lo())
}

func TestColorRGBAExtremes(t *testing.T) {
	r, g, b, a := Color(0xFFFF).RGBA()
	assert.Equal(t, []uint32{0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF}, []uint32{r, g, b, a})

	r, g, b, a = Color(0).RGBA()
	assert.Equal(t, []uint32{0, 0, 0, 0xFFFF}, []uint32{r, g, b, a})
}

func TestModelIsStableForPrimaries(t *testing.T) {
	for _, c := range []Color{0xFFFF, 0x0000, 0xF800, 0x07E0, 0x001F} {
		r, g, b, _ := c.RGBA()
		got := Model.Convert(color.RGBA64{R: uint16(r), G: uint16(g), B: uint16(b), A: 0xFFFF})
		assert.Equal(t, c, got)
	}
}

func TestRGB565SetAt(t *testing.T) {
	m := NewRGB565(image.Rect(0, 0, 3, 2))
	require.Len(t, m.Pix, 12)

	m.Set(2, 1, color.NRGBA{R: 0xFF, A: 0xFF})
	assert.Equal(t, Color(0xF800), m.RGB565At(2, 1))
	assert.Equal(t, []byte{0xF8, 0x00}, m.Pix[10:12])

	// out of bounds is ignored
	m.Set(3, 0, color.White)
	assert.Equal(t, Color(0), m.RGB565At(3, 0))
}

func TestEncodeRowMajor(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
	src.Set(1, 0, color.NRGBA{A: 0xFF})
	src.Set(0, 1, color.NRGBA{R: 0xFF, A: 0xFF})
	src.Set(1, 1, color.NRGBA{B: 0xFF, A: 0xFF})

	assert.Equal(t, []byte{
		0xFF, 0xFF, 0x00, 0x00,
		0xF8, 0x00, 0x00, 0x1F,
	}, Encode(src))
}

func TestEncodeOffsetBounds(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.Set(2, 3, color.NRGBA{G: 0xFF, A: 0xFF})

	sub := src.SubImage(image.Rect(2, 3, 4, 4))
	assert.Equal(t, []byte{0x07, 0xE0, 0x00, 0x00}, Encode(sub))
}
