package tmpfs

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/spf13/afero"
)

// NewFs returns an afero.Fs rooted at path, which must exist.
func NewFs(path string) (afero.Fs, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fs := afero.NewOsFs()
	if exists, err := afero.DirExists(fs, path); err != nil {
		return nil, err
	} else if !exists {
		return nil, errors.Errorf("dir %s not exists", path)
	}
	return afero.NewBasePathFs(fs, path), nil
}

func NewTmpFs(dir string) (*TmpFs, error) {
	fs, err := NewFs(dir)
	if err != nil {
		return nil, fmt.Errorf("create tmpdir failed: %w", err)
	}
	return &TmpFs{fs: fs}, nil
}

// TmpFs hands out unique paths for transient files, such as the raster an
// external tool writes for a vector source.
type TmpFs struct {
	fs afero.Fs
}

// NewFile returns a real, unused path in the temp dir ending with ext.
func (t *TmpFs) NewFile(ext string) (string, error) {
	name := xid.New().String() + ext
	if bp, ok := t.fs.(*afero.BasePathFs); ok {
		return bp.RealPath(name)
	}
	return name, nil
}

// Remove deletes a path previously returned by NewFile.
func (t *TmpFs) Remove(path string) error {
	return afero.NewOsFs().Remove(path)
}
