package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"rgb565txt/pkg/config"
	"rgb565txt/pkg/convert"
	"rgb565txt/pkg/nibtxt"
	"rgb565txt/pkg/raster"
	"rgb565txt/pkg/tmpfs"
)

var configFile = flag.StringP("config", "c", "", "jobs file (default jobs.yaml if present)")
var jobFlags = flag.StringArray("job", nil, "extra job as source,width,height,output (repeatable)")
var output = flag.StringP("output", "o", "", "output dir")
var rasterizer = flag.String("rasterizer", "", "vector rasterizer: imagick or native")
var header = flag.String("header", "", "header policy for sizes above 255: strict or truncate")
var debug = flag.Bool("debug", false, "set debug")
var progress = flag.Bool("progress", false, "show progress bars")

type filesystems struct {
	In  afero.Fs
	Out afero.Fs
}

func main() {
	flag.Parse()

	app := fx.New(
		lo.Ternary(*debug, fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}), fx.NopLogger),
		fx.Provide(
			newLogger,
			loadConfig,
			newFilesystems,
			newTmpFs,
			newRasterizer,
			newConverter,
		),
		fx.Invoke(run),
	)

	if err := app.Err(); err != nil {
		log.Fatal(err)
	}
}

func newLogger() (*zap.Logger, error) {
	return lo.Ternary(*debug, zap.NewDevelopment, zap.NewProduction)()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}

	for _, s := range *jobFlags {
		job, err := config.ParseJob(s)
		if err != nil {
			return nil, err
		}
		cfg.Jobs = append(cfg.Jobs, job)
	}

	if *output != "" {
		cfg.Output = *output
	}
	if *rasterizer != "" {
		cfg.Rasterizer = *rasterizer
	}
	if *header != "" {
		cfg.Header = *header
	}

	if len(cfg.Jobs) == 0 {
		return nil, errors.New("no jobs, use --config or --job")
	}

	return cfg, nil
}

func newFilesystems(cfg *config.Config) (*filesystems, error) {
	in, err := tmpfs.NewFs(cfg.WorkDir)
	if err != nil {
		return nil, errors.Wrap(err, "workdir")
	}

	out := cfg.Output
	if !filepath.IsAbs(out) {
		out = filepath.Join(cfg.WorkDir, out)
	}
	if out, err = filepath.Abs(out); err != nil {
		return nil, err
	}

	return &filesystems{In: in, Out: afero.NewBasePathFs(afero.NewOsFs(), out)}, nil
}

func newTmpFs(cfg *config.Config) (*tmpfs.TmpFs, error) {
	return tmpfs.NewTmpFs(lo.Ternary(cfg.TmpDir != "", cfg.TmpDir, cfg.WorkDir))
}

func newRasterizer(cfg *config.Config, fs *filesystems, tmp *tmpfs.TmpFs, logger *zap.Logger) (raster.Rasterizer, error) {
	switch cfg.Rasterizer {
	case "imagick":
		return raster.NewIMagick(
			tmp,
			logger,
			raster.WithCommand(cfg.Convert),
			raster.WithTimeout(cfg.Timeout),
			raster.WithWorkDir(cfg.WorkDir),
		), nil
	case "native":
		return raster.NewNative(fs.In), nil
	}
	return nil, errors.Errorf("unknown rasterizer %q", cfg.Rasterizer)
}

func newConverter(cfg *config.Config, fs *filesystems, r raster.Rasterizer, logger *zap.Logger) (*convert.Converter, error) {
	policy, err := nibtxt.ParseHeaderPolicy(cfg.Header)
	if err != nil {
		return nil, err
	}

	bg, err := cfg.BackgroundColor()
	if err != nil {
		return nil, err
	}

	return convert.New(fs.In, fs.Out, r, logger,
		convert.WithHeaderPolicy(policy),
		convert.WithBackground(bg),
		convert.WithProgress(lo.Ternary[io.Writer](*progress, os.Stderr, io.Discard)),
	), nil
}

func run(cfg *config.Config, c *convert.Converter, logger *zap.Logger) error {
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.With(
		zap.Int("jobs", len(cfg.Jobs)),
		zap.String("rasterizer", cfg.Rasterizer),
		zap.String("header", cfg.Header),
	).Info("starting")

	return c.Run(ctx, cfg.Jobs)
}
