package nibtxt

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rgb565txt/pkg/nibble"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func enc(v int) string {
	e := nibble.EncodeByte(v)
	return string(e[:])
}

func TestEncodeLength64(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, solid(64, 64, color.White), Strict))

	assert.Equal(t, 16388, buf.Len())
	assert.Equal(t, EncodedLen(64, 64), buf.Len())
	// pixel section alone
	assert.Equal(t, 4*64*64, buf.Len()-4)
}

func TestEncodeTwoByOne(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.NRGBA{A: 255})

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, Strict))

	out := buf.String()
	require.Len(t, out, 12)
	assert.Equal(t, enc(2)+enc(1), out[:4])
	assert.Equal(t, enc(0xFF)+enc(0xFF)+enc(0x00)+enc(0x00), out[4:])
	assert.Equal(t, "////    ", out[4:])
}

func TestEncodeCharacterRange(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 16), B: uint8(x ^ y), A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, Strict))

	for i, c := range buf.Bytes() {
		if c < 0x20 || c > 0x2F {
			t.Fatalf("character %d out of range: %#x", i, c)
		}
	}
}

func TestHeaderPolicy(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		policy HeaderPolicy
		want   [2]byte
		err    bool
	}{
		{name: "fits", w: 255, h: 0, policy: Strict, want: [2]byte{255, 0}},
		{name: "strict rejects width", w: 300, h: 10, policy: Strict, err: true},
		{name: "strict rejects height", w: 10, h: 300, policy: Strict, err: true},
		{name: "truncate aliases", w: 300, h: 300, policy: Truncate, want: [2]byte{44, 44}},
		{name: "truncate clamps first", w: 70000, h: -5, policy: Truncate, want: [2]byte{0xFF, 0}},
		{name: "strict negative clamps", w: -1, h: 1, policy: Strict, want: [2]byte{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HeaderBytes(tt.w, tt.h, tt.policy)
			if tt.err {
				assert.ErrorIs(t, err, ErrDimension)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeWideImage(t *testing.T) {
	img := solid(300, 1, color.Black)

	var buf bytes.Buffer
	err := Encode(&buf, img, Strict)
	assert.ErrorIs(t, err, ErrDimension)
	assert.Zero(t, buf.Len())

	buf.Reset()
	require.NoError(t, Encode(&buf, img, Truncate))
	assert.Equal(t, enc(44)+enc(1), buf.String()[:4])
	assert.Equal(t, EncodedLen(300, 1), buf.Len())
}

func TestParseHeaderPolicy(t *testing.T) {
	p, err := ParseHeaderPolicy("Truncate")
	require.NoError(t, err)
	assert.Equal(t, Truncate, p)

	p, err = ParseHeaderPolicy("")
	require.NoError(t, err)
	assert.Equal(t, Strict, p)

	_, err = ParseHeaderPolicy("wrap")
	assert.Error(t, err)
}
