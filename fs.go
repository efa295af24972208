package cfgedit

import (
	"errors"
	"io"
	"io/fs"
	"os"
)

// FileSystem is the set of file primitives the Store and Writer use. OSFS is
// the real implementation; tests substitute in-memory or failing ones.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
	MkdirAll(path string, perm fs.FileMode) error
	// CreateTemp creates a new file in dir, see os.CreateTemp.
	CreateTemp(dir, pattern string) (TempFile, error)
	Chmod(path string, perm fs.FileMode) error
	Rename(oldpath, newpath string) error
	Remove(path string) error
}

// TempFile is an open temporary file.
type TempFile interface {
	io.Writer
	Name() string
	Sync() error
	Close() error
}

// OSFS implements FileSystem on the host file system.
type OSFS struct{}

func (OSFS) ReadFile(path string) ([]byte, error)         { return os.ReadFile(path) }
func (OSFS) Stat(path string) (fs.FileInfo, error)        { return os.Stat(path) }
func (OSFS) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }
func (OSFS) Chmod(path string, perm fs.FileMode) error    { return os.Chmod(path, perm) }
func (OSFS) Rename(oldpath, newpath string) error         { return os.Rename(oldpath, newpath) }
func (OSFS) Remove(path string) error                     { return os.Remove(path) }

func (OSFS) CreateTemp(dir, pattern string) (TempFile, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// exists reports whether path names an existing regular file.
func exists(fsys FileSystem, path string) (bool, error) {
	info, err := fsys.Stat(path)
	switch {
	case err == nil:
		return !info.IsDir(), nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, ioErr("stat", path, err)
	}
}
