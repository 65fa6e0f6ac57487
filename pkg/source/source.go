// Package source resolves job sources to files readable from the input fs.
// Local paths pass through untouched; http and https sources are downloaded
// into the input fs and removed again on Release.
package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func NewFetcher(fs afero.Fs, logger *zap.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		fs:       fs,
		cli:      resty.New().SetDoNotParseResponse(true),
		log:      logger,
		progress: io.Discard,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

type Fetcher struct {
	fs       afero.Fs
	cli      *resty.Client
	log      *zap.Logger
	progress io.Writer
}

type Option func(f *Fetcher)

// WithProgress draws a download bar on w.
func WithProgress(w io.Writer) Option {
	return func(f *Fetcher) {
		f.progress = w
	}
}

// File is a resolved source.
type File struct {
	Path   string
	Remote bool
	fs     afero.Fs
}

// Release removes a downloaded file. It is a no-op for local files.
func (f *File) Release() error {
	if !f.Remote {
		return nil
	}
	return f.fs.Remove(f.Path)
}

// IsRemote reports whether src should be downloaded.
func IsRemote(src string) bool {
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Fetch resolves src. The returned path keeps the extension of the source so
// vector detection still works on downloads.
func (f *Fetcher) Fetch(ctx context.Context, src string) (*File, error) {
	if !IsRemote(src) {
		return &File{Path: src, fs: f.fs}, nil
	}

	u, _ := url.Parse(src)
	name := fmt.Sprintf(".%s%s", xid.New().String(), path.Ext(u.Path))

	resp, err := f.cli.R().SetContext(ctx).Get(src)
	if err != nil {
		return nil, errors.Wrapf(err, "download %s", src)
	}

	defer func() {
		_ = resp.RawBody().Close()
	}()

	if resp.IsError() {
		return nil, errors.Errorf("download %s: %s", src, resp.Status())
	}

	bar := progressbar.NewOptions64(
		resp.RawResponse.ContentLength,
		progressbar.OptionSetWriter(f.progress),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", src)),
	)

	var buf bytes.Buffer
	if _, err := io.Copy(io.MultiWriter(&buf, bar), resp.RawBody()); err != nil {
		return nil, errors.Wrapf(err, "download %s", src)
	}

	if err := afero.WriteFile(f.fs, name, buf.Bytes(), 0644); err != nil {
		return nil, err
	}

	f.log.With(zap.String("url", src), zap.String("file", name), zap.Int("bytes", buf.Len())).Debug("source downloaded")

	return &File{Path: name, Remote: true, fs: f.fs}, nil
}
