package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

var _ FileStore = (*Local)(nil)

// Local is a FileStore over one directory of the local filesystem.
//
// Reads report the file size so Load allocates the destination buffer
// once. Writes go to a temporary file next to the target and replace it
// on Close, so readers never see a partially written file.
type Local struct {
	dir string
}

// NewLocal returns a store for the files under dir. The directory does not
// need to exist until the first Write.
func NewLocal(dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: local dir %s: %w", dir, err)
	}
	return &Local{dir: abs}, nil
}

// Dir returns the absolute directory of the store.
func (l *Local) Dir() string {
	return l.dir
}

// file maps a slash-separated store path to a filesystem path. Paths that
// are absolute or climb out of the store directory are rejected.
func (l *Local) file(path string) (string, error) {
	native := filepath.FromSlash(path)
	if !filepath.IsLocal(native) {
		return "", fmt.Errorf("storage: path %q escapes %s: %w", path, l.dir, fs.ErrInvalid)
	}
	return filepath.Join(l.dir, native), nil
}

// Read opens the named regular file. The returned reader implements
// Size() int64.
func (l *Local) Read(_ context.Context, path string) (io.ReadCloser, error) {
	name, err := l.file(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !fi.Mode().IsRegular() {
		f.Close()
		return nil, fmt.Errorf("storage: read %s: not a regular file: %w", path, fs.ErrInvalid)
	}
	return &sizedBody{ReadCloser: f, size: fi.Size()}, nil
}

// Write returns a writer that replaces the named file on Close. Parent
// directories are created as needed.
func (l *Local) Write(_ context.Context, path string) (io.WriteCloser, error) {
	name, err := l.file(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*")
	if err != nil {
		return nil, err
	}
	return &localWriter{tmp: tmp, name: name}, nil
}

// Exists reports whether the named regular file exists.
func (l *Local) Exists(_ context.Context, path string) (bool, error) {
	name, err := l.file(path)
	if err != nil {
		return false, err
	}
	fi, err := os.Stat(name)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return fi.Mode().IsRegular(), nil
}

type localWriter struct {
	tmp    *os.File
	name   string
	closed bool
}

func (w *localWriter) Write(p []byte) (int, error) {
	return w.tmp.Write(p)
}

// Close moves the written file into place. A second Close is a no-op.
func (w *localWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.tmp.Close(); err != nil {
		os.Remove(w.tmp.Name())
		return err
	}
	if err := os.Chmod(w.tmp.Name(), 0o644); err != nil {
		os.Remove(w.tmp.Name())
		return err
	}
	if err := os.Rename(w.tmp.Name(), w.name); err != nil {
		os.Remove(w.tmp.Name())
		return err
	}
	return nil
}
