// Package convert runs conversion jobs: each source is rasterized or decoded,
// stretched to the job size and written in the nibble-ASCII RGB565 format.
package convert

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"time"

	"github.com/inhies/go-bytesize"
	"github.com/rs/xid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"rgb565txt/pkg/config"
	"rgb565txt/pkg/nibtxt"
	"rgb565txt/pkg/raster"
	"rgb565txt/pkg/source"
)

// New returns a Converter reading sources from in and writing results to out.
func New(in, out afero.Fs, r raster.Rasterizer, logger *zap.Logger, opts ...Option) *Converter {
	c := &Converter{
		in:         in,
		out:        out,
		rasterizer: r,
		logger:     logger,
		policy:     nibtxt.Strict,
		background: color.Black,
		progress:   io.Discard,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.fetcher == nil {
		c.fetcher = source.NewFetcher(in, logger, source.WithProgress(c.progress))
	}

	return c
}

type Converter struct {
	in         afero.Fs
	out        afero.Fs
	rasterizer raster.Rasterizer
	fetcher    *source.Fetcher
	logger     *zap.Logger
	policy     nibtxt.HeaderPolicy
	background color.Color
	progress   io.Writer
}

// Run converts jobs in order and stops at the first failure. Every job is
// checked before the first one starts.
func (c *Converter) Run(ctx context.Context, jobs []config.Job) error {
	for i, job := range jobs {
		if err := c.check(job.Normalize()); err != nil {
			return fmt.Errorf("job %d: %w", i, err)
		}
	}

	if err := c.out.MkdirAll(".", 0755); err != nil {
		return fmt.Errorf("create output dir failed: %w", err)
	}

	bar := progressbar.NewOptions(
		len(jobs),
		progressbar.OptionSetWriter(c.progress),
		progressbar.OptionSetDescription("Converting"),
	)

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.Convert(ctx, job); err != nil {
			return fmt.Errorf("job %d (%s): %w", i, job.Normalize(), err)
		}
		_ = bar.Add(1)
	}

	c.logger.With(zap.Int("jobs", len(jobs))).Info("all jobs converted")
	return nil
}

func (c *Converter) check(job config.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}
	_, err := nibtxt.HeaderBytes(job.Width, job.Height, c.policy)
	return err
}

// Convert runs a single job. On failure no file is left at the job output.
func (c *Converter) Convert(ctx context.Context, job config.Job) error {
	job = job.Normalize()
	if err := c.check(job); err != nil {
		return err
	}

	log := c.logger.With(
		zap.String("source", job.Source),
		zap.String("output", job.Output),
		zap.Int("width", job.Width),
		zap.Int("height", job.Height),
	)
	start := time.Now()

	if err := c.convert(ctx, job, log); err != nil {
		if info, statErr := c.out.Stat(job.Output); statErr == nil && !info.IsDir() {
			_ = c.out.Remove(job.Output)
		}
		return err
	}

	log.With(
		zap.String("size", bytesize.New(float64(nibtxt.EncodedLen(job.Width, job.Height))).String()),
		zap.Duration("cost", time.Since(start)),
	).Info("converted")

	return nil
}

func (c *Converter) convert(ctx context.Context, job config.Job, log *zap.Logger) error {
	src, err := c.load(ctx, job)
	if err != nil {
		return err
	}

	img := raster.Normalize(src, job.Width, job.Height, c.background)
	if !img.Bounds().Empty() {
		log.With(zap.Any("pixel", img.NRGBAAt(0, 0))).Debug("first pixel")
	}

	return c.write(job.Output, img)
}

func (c *Converter) load(ctx context.Context, job config.Job) (image.Image, error) {
	f, err := c.fetcher.Fetch(ctx, job.Source)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Release()
	}()

	if !raster.IsVector(f.Path) {
		return raster.Decode(c.in, f.Path)
	}

	if job.Width == 0 || job.Height == 0 {
		if _, err := c.in.Stat(f.Path); err != nil {
			return nil, err
		}
		return image.NewNRGBA(image.Rectangle{}), nil
	}

	img, err := c.rasterizer.Rasterize(ctx, f.Path, job.Width, job.Height)
	if err != nil {
		return nil, fmt.Errorf("rasterize failed: %w", err)
	}
	return img, nil
}

// write encodes img into a temp file next to name and renames it into place.
func (c *Converter) write(name string, img image.Image) (err error) {
	dir := filepath.Dir(name)
	if err := c.out.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp := filepath.Join(dir, "."+xid.New().String()+".tmp")
	f, err := c.out.Create(tmp)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = c.out.Remove(tmp)
		}
	}()

	if err := nibtxt.Encode(f, img, c.policy); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode failed: %w", err)
	}

	if err := f.Close(); err != nil {
		return err
	}

	return c.out.Rename(tmp, name)
}
