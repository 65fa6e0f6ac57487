package config

import (
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kkyr/fig"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"rgb565txt/pkg/nibble"
)

const (
	EnvPrefix   = "RGB565TXT"
	DefaultFile = "jobs.yaml"
)

type Config struct {
	Output     string        `fig:"output" default:"output"`
	WorkDir    string        `fig:"workdir" default:"."`
	TmpDir     string        `fig:"tmpdir"`
	Rasterizer string        `fig:"rasterizer" default:"imagick"`
	Convert    string        `fig:"convert" default:"convert"`
	Timeout    time.Duration `fig:"timeout" default:"30s"`
	Header     string        `fig:"header" default:"strict"`
	// Background is what translucent raster sources are flattened onto.
	// Vector sources are always rendered over black.
	Background string        `fig:"background" default:"#000000"`
	Jobs       []Job         `fig:"jobs"`
}

// BackgroundColor parses Background as #rgb or #rrggbb.
func (c *Config) BackgroundColor() (color.Color, error) {
	col, err := colorful.Hex(c.Background)
	if err != nil {
		return nil, errors.Wrapf(err, "background %q", c.Background)
	}
	r, g, b := col.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xFF}, nil
}

// Job is one conversion: Source rendered at Width x Height into Output,
// relative to the output directory.
type Job struct {
	Source string `fig:"source"`
	Width  int    `fig:"width"`
	Height int    `fig:"height"`
	Output string `fig:"output"`
}

// Normalize clamps the dimensions to [0, 65535].
func (j Job) Normalize() Job {
	j.Width = nibble.Clamp(j.Width)
	j.Height = nibble.Clamp(j.Height)
	return j
}

// Validate checks that the job has a source and that Output names a file
// inside the output dir.
func (j Job) Validate() error {
	if j.Source == "" {
		return errors.New("job has no source")
	}
	if j.Output == "" {
		return errors.Errorf("job %s has no output", j.Source)
	}

	last := j.Output[strings.LastIndexAny(j.Output, "/"+string(filepath.Separator))+1:]
	if last == "" || last == "." || last == ".." {
		return errors.Errorf("job %s output %s is a directory", j.Source, j.Output)
	}

	clean := filepath.Clean(j.Output)
	if filepath.IsAbs(j.Output) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return errors.Errorf("job %s output %s escapes the output dir", j.Source, j.Output)
	}
	return nil
}

func (j Job) String() string {
	return j.Source + " " + strconv.Itoa(j.Width) + "x" + strconv.Itoa(j.Height) + " -> " + j.Output
}

// ParseJob parses "source,width,height,output".
func ParseJob(s string) (Job, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Job{}, errors.Errorf("job %q: want source,width,height,output", s)
	}

	w, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Job{}, errors.Wrapf(err, "job %q width", s)
	}

	h, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return Job{}, errors.Wrapf(err, "job %q height", s)
	}

	return Job{
		Source: strings.TrimSpace(parts[0]),
		Width:  w,
		Height: h,
		Output: strings.TrimSpace(parts[3]),
	}, nil
}

// Load reads the config file at path, or DefaultFile from the working
// directory when path is empty. A missing default file is not an error: the
// defaults are used and jobs can come from the command line. Environment
// variables prefixed with RGB565TXT_ override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		if _, err := os.Stat(DefaultFile); err != nil {
			return loadDefaults()
		}
		path = DefaultFile
	}

	var cfg Config
	if err := fig.Load(&cfg,
		fig.File(filepath.Base(path)),
		fig.Dirs(filepath.Dir(path)),
		fig.UseEnv(EnvPrefix),
	); err != nil {
		return nil, errors.Wrapf(err, "load config %s", path)
	}

	return &cfg, nil
}

// loadDefaults runs fig over an empty document so the default tags and env
// overrides apply without a jobs file.
func loadDefaults() (*Config, error) {
	dir, err := os.MkdirTemp("", "rgb565txt")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = os.RemoveAll(dir)
	}()

	const name = "defaults.yaml"
	if err := os.WriteFile(filepath.Join(dir, name), []byte("{}\n"), 0644); err != nil {
		return nil, err
	}

	var cfg Config
	if err := fig.Load(&cfg, fig.File(name), fig.Dirs(dir), fig.UseEnv(EnvPrefix)); err != nil {
		return nil, errors.Wrap(err, "load defaults")
	}

	return &cfg, nil
}
