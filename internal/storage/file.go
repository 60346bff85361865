package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileEngine keeps one file per key under dir. Each write goes to its own
// uniquely named temp file that is renamed over the target, so readers never
// see a partial value.
type FileEngine struct {
	fs  afero.Fs
	dir string
}

// NewFileEngine creates dir if needed. Use afero.NewOsFs() in production and
// afero.NewMemMapFs() in tests.
func NewFileEngine(fs afero.Fs, dir string) (*FileEngine, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileEngine{fs: fs, dir: dir}, nil
}

func (f *FileEngine) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+".json")
}

func (f *FileEngine) Get(_ context.Context, key string) (string, bool, error) {
	b, err := afero.ReadFile(f.fs, f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(b), true, nil
}

func (f *FileEngine) Set(_ context.Context, key, value string) error {
	target := f.path(key)
	tmp, err := afero.TempFile(f.fs, f.dir, filepath.Base(target)+".*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	_, werr := tmp.WriteString(value)
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = f.fs.Chmod(name, 0o644)
	}
	if werr == nil {
		werr = f.fs.Rename(name, target)
	}
	if werr != nil {
		_ = f.fs.Remove(name)
		return werr
	}
	return nil
}

func (f *FileEngine) Remove(_ context.Context, key string) error {
	err := f.fs.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (f *FileEngine) Ping(context.Context) error {
	_, err := f.fs.Stat(f.dir)
	return err
}

func (f *FileEngine) Name() string { return "file" }
