package raster

import (
	"compress/gzip"
	"context"
	"image"
	"image/color"
	"image/draw"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

func NewNative(fs afero.Fs) *Native {
	return &Native{fs: fs}
}

// Native renders SVG sources in-process. The icon is stretched to fill the
// target on both axes and drawn over black.
type Native struct {
	fs afero.Fs
}

func (n *Native) Rasterize(ctx context.Context, path string, width, height int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := n.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(path), ".svgz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "svgz")
		}
		defer func() {
			_ = zr.Close()
		}()
		r = zr
	}

	icon, err := oksvg.ReadIconStream(r)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	if width == 0 || height == 0 {
		return dst, nil
	}

	icon.SetTarget(0, 0, float64(width), float64(height))
	dc := rasterx.NewDasher(width, height, rasterx.NewScannerGV(width, height, dst, dst.Bounds()))
	icon.Draw(dc, 1.0)

	return dst, nil
}
