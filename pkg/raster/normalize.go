package raster

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Normalize resamples img to exactly width x height, ignoring its aspect
// ratio, and composites it over bg so every pixel is opaque.
func Normalize(img image.Image, width, height int, bg color.Color) *image.NRGBA {
	if width <= 0 || height <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, max0(width), max0(height)))
	}

	var resized *image.NRGBA
	if b := img.Bounds(); b.Dx() == width && b.Dy() == height {
		resized = imaging.Clone(img)
	} else {
		resized = imaging.Resize(img, width, height, imaging.Lanczos)
	}

	return imaging.Overlay(imaging.New(width, height, bg), resized, image.Point{}, 1.0)
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
