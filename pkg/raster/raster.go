// Package raster turns source files into fixed-size, opaque images.
package raster

import (
	"context"
	"image"
	"path/filepath"
	"strings"
)

// Rasterizer renders a vector source at exactly width x height, flattened
// onto a black background.
type Rasterizer interface {
	Rasterize(ctx context.Context, path string, width, height int) (image.Image, error)
}

// RasterizerFunc adapts a function to a Rasterizer.
type RasterizerFunc func(ctx context.Context, path string, width, height int) (image.Image, error)

func (f RasterizerFunc) Rasterize(ctx context.Context, path string, width, height int) (image.Image, error) {
	return f(ctx, path, width, height)
}

// IsVector reports whether path names a source that needs a Rasterizer.
func IsVector(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg", ".svgz":
		return true
	}
	return false
}
