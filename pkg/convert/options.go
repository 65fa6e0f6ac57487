package convert

import (
	"image/color"
	"io"

	"rgb565txt/pkg/nibtxt"
	"rgb565txt/pkg/source"
)

type Option func(c *Converter)

func WithHeaderPolicy(p nibtxt.HeaderPolicy) Option {
	return func(c *Converter) {
		c.policy = p
	}
}

// WithBackground sets the color translucent pixels are flattened onto.
func WithBackground(bg color.Color) Option {
	return func(c *Converter) {
		c.background = bg
	}
}

// WithProgress draws job and download progress on w.
func WithProgress(w io.Writer) Option {
	return func(c *Converter) {
		c.progress = w
	}
}

func WithFetcher(f *source.Fetcher) Option {
	return func(c *Converter) {
		c.fetcher = f
	}
}
