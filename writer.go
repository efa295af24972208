package cfgedit

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sync"
)

// DefaultBackupSuffix is appended to a target path to name its backup.
const DefaultBackupSuffix = ".cfgedit.bak"

const (
	dirPerm     fs.FileMode = 0o755
	defaultPerm fs.FileMode = 0o600
)

// Writer replaces files atomically and keeps one pristine backup per target.
// A Writer is safe for concurrent use; the files it writes are not locked.
type Writer struct {
	fs     FileSystem
	suffix string

	mu     sync.Mutex
	backed map[string]bool
}

// NewWriter returns a Writer over fsys. An empty suffix selects
// DefaultBackupSuffix.
func NewWriter(fsys FileSystem, suffix string) *Writer {
	if fsys == nil {
		fsys = OSFS{}
	}
	if suffix == "" {
		suffix = DefaultBackupSuffix
	}
	return &Writer{fs: fsys, suffix: suffix, backed: map[string]bool{}}
}

// BackupPath names the backup of path.
func (w *Writer) BackupPath(path string) string { return path + w.suffix }

// Write stores data at path through a temporary file in the same directory
// and a rename, so path holds either the old or the new contents. The file
// keeps its previous mode, new files get 0600.
func (w *Writer) Write(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := w.fs.MkdirAll(dir, dirPerm); err != nil {
		return ioErr("mkdir", dir, err)
	}

	perm := defaultPerm
	if info, err := w.fs.Stat(path); err == nil {
		perm = info.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return ioErr("stat", path, err)
	}

	f, err := w.fs.CreateTemp(dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return ioErr("create temp", dir, err)
	}
	tmp := f.Name()
	closed := false
	defer func() {
		if err != nil {
			if !closed {
				f.Close()
			}
			w.fs.Remove(tmp)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return ioErr("write", tmp, err)
	}
	if err := f.Sync(); err != nil {
		return ioErr("sync", tmp, err)
	}
	closed = true
	if err := f.Close(); err != nil {
		return ioErr("close", tmp, err)
	}
	if err := w.fs.Chmod(tmp, perm); err != nil {
		return ioErr("chmod", tmp, err)
	}
	if err := w.fs.Rename(tmp, path); err != nil {
		return ioErr("rename", path, err)
	}
	return nil
}

// BackupOnce copies path to its backup unless a backup already exists or was
// made earlier by this Writer. A missing source is not backed up. It reports
// whether a backup was written.
func (w *Writer) BackupOnce(path string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.backed[path] {
		return false, nil
	}
	backup := w.BackupPath(path)
	ok, err := exists(w.fs, backup)
	if err != nil {
		return false, err
	}
	if ok {
		w.backed[path] = true
		return false, nil
	}

	data, err := w.fs.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, ioErr("read", path, err)
	}
	if err := w.Write(backup, data); err != nil {
		return false, err
	}
	w.backed[path] = true
	return true, nil
}

// Remove deletes path. It reports false when there was nothing to delete.
func (w *Writer) Remove(path string) (bool, error) {
	err := w.fs.Remove(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, ioErr("remove", path, err)
	}
}

// Reset forgets which paths were backed up by this Writer. Backups already on
// disk still count.
func (w *Writer) Reset() {
	w.mu.Lock()
	w.backed = map[string]bool{}
	w.mu.Unlock()
}
