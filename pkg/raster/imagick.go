package raster

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"rgb565txt/pkg/tmpfs"
)

const DefaultTimeout = 30 * time.Second

func NewIMagick(tmp *tmpfs.TmpFs, logger *zap.Logger, opts ...IMagickOption) *IMagick {
	m := &IMagick{
		tmpfs:   tmp,
		logger:  logger,
		command: "convert",
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// IMagick rasterizes through the ImageMagick convert tool. The result is
// written to a temp png which is decoded and removed again.
type IMagick struct {
	tmpfs   *tmpfs.TmpFs
	logger  *zap.Logger
	command string
	workDir string
	timeout time.Duration
}

type IMagickOption func(m *IMagick)

// WithCommand replaces the convert binary.
func WithCommand(name string) IMagickOption {
	return func(m *IMagick) {
		m.command = name
	}
}

// WithTimeout bounds each convert run; zero disables the limit.
func WithTimeout(d time.Duration) IMagickOption {
	return func(m *IMagick) {
		m.timeout = d
	}
}

// WithWorkDir resolves relative source paths against dir.
func WithWorkDir(dir string) IMagickOption {
	return func(m *IMagick) {
		m.workDir = dir
	}
}

// Args returns the convert arguments for one run.
func (m *IMagick) Args(src, dst string, width, height int) []string {
	return []string{
		"-background", "black",
		"-flatten",
		src,
		"-resize", fmt.Sprintf("%dx%d!", width, height),
		dst,
	}
}

func (m *IMagick) Rasterize(ctx context.Context, path string, width, height int) (image.Image, error) {
	tmp, err := m.tmpfs.NewFile(".png")
	if err != nil {
		return nil, errors.Wrap(err, "no temp file")
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, m.command, m.Args(path, tmp, width, height)...)
	cmd.Dir = m.workDir

	defer func() {
		_ = m.tmpfs.Remove(tmp)
	}()

	if bs, err := cmd.CombinedOutput(); err != nil {
		m.logger.With(zap.String("exec", cmd.String()), zap.Error(err)).Info("failed")
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return nil, errors.Wrapf(err, "%s: %s", m.command, bs)
	}

	m.logger.With(zap.String("by", "imagick"), zap.String("src", path), zap.String("dst", tmp)).Debug("converted")

	f, err := os.Open(tmp)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	img, err := png.Decode(f)
	if err != nil {
		return nil, errors.Wrap(err, "decode convert output")
	}

	return img, nil
}
