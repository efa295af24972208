package cfgedit

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/pmezard/go-difflib/difflib"
)

func unifiedDiff(before, after string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "before",
		ToFile:   "after",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}

func diffStats(diff string) (adds, removes int) {
	for _, line := range strings.Split(diff, "\n") {
		if len(line) == 0 {
			continue
		}
		switch line[0] {
		case '+':
			if !strings.HasPrefix(line, "+++") {
				adds++
			}
		case '-':
			if !strings.HasPrefix(line, "---") {
				removes++
			}
		}
	}
	return
}

// assertJSONEqual compares two JSON texts ignoring formatting and key order.
func assertJSONEqual(t *testing.T, got, want string) {
	t.Helper()
	if !jsonpatch.Equal([]byte(got), []byte(want)) {
		t.Fatalf("JSON mismatch\n got: %s\nwant: %s", got, want)
	}
}

func mustParseJSON(t *testing.T, s string) Value {
	t.Helper()
	v, err := ParseJSON([]byte(s))
	if err != nil {
		t.Fatalf("ParseJSON(%q): %v", s, err)
	}
	return v
}

// ----- in-memory file system -----

type memFile struct {
	data []byte
	mode fs.FileMode
}

type memFS struct {
	mu    sync.Mutex
	files map[string]*memFile
	dirs  map[string]bool
	ops   int
	temps int

	failRename error
	failWrite  error
}

func newMemFS() *memFS {
	return &memFS{files: map[string]*memFile{}, dirs: map[string]bool{}}
}

func (m *memFS) add(p, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[p] = &memFile{data: []byte(content), mode: 0o644}
	m.dirs[path.Dir(p)] = true
}

func (m *memFS) get(p string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[p]
	if !ok {
		return "", false
	}
	return string(f.data), true
}

func (m *memFS) names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for p := range m.files {
		out = append(out, p)
	}
	return out
}

func (m *memFS) ReadFile(p string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops++
	f, ok := m.files[p]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), f.data...), nil
}

func (m *memFS) Stat(p string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops++
	if f, ok := m.files[p]; ok {
		return memInfo{name: path.Base(p), size: int64(len(f.data)), mode: f.mode}, nil
	}
	if m.dirs[p] {
		return memInfo{name: path.Base(p), mode: fs.ModeDir | 0o755}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
}

func (m *memFS) MkdirAll(p string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops++
	for d := p; d != "." && d != "/" && !m.dirs[d]; d = path.Dir(d) {
		m.dirs[d] = true
	}
	return nil
}

func (m *memFS) CreateTemp(dir, pattern string) (TempFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops++
	m.temps++
	name := path.Join(dir, fmt.Sprintf("%s%d", pattern, m.temps))
	m.files[name] = &memFile{mode: 0o600}
	return &memTemp{fs: m, name: name}, nil
}

func (m *memFS) Chmod(p string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops++
	f, ok := m.files[p]
	if !ok {
		return &fs.PathError{Op: "chmod", Path: p, Err: fs.ErrNotExist}
	}
	f.mode = perm
	return nil
}

func (m *memFS) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops++
	if m.failRename != nil {
		return m.failRename
	}
	f, ok := m.files[oldpath]
	if !ok {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: fs.ErrNotExist}
	}
	delete(m.files, oldpath)
	m.files[newpath] = f
	return nil
}

func (m *memFS) Remove(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops++
	if _, ok := m.files[p]; !ok {
		return &fs.PathError{Op: "remove", Path: p, Err: fs.ErrNotExist}
	}
	delete(m.files, p)
	return nil
}

func (m *memFS) opCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ops
}

type memTemp struct {
	fs   *memFS
	name string
	buf  bytes.Buffer
}

func (f *memTemp) Name() string { return f.name }

func (f *memTemp) Write(p []byte) (int, error) {
	if f.fs.failWrite != nil {
		return 0, f.fs.failWrite
	}
	return f.buf.Write(p)
}

func (f *memTemp) Sync() error {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	if mf, ok := f.fs.files[f.name]; ok {
		mf.data = append([]byte(nil), f.buf.Bytes()...)
	}
	return nil
}

func (f *memTemp) Close() error { return f.Sync() }

type memInfo struct {
	name string
	size int64
	mode fs.FileMode
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) Mode() fs.FileMode  { return i.mode }
func (i memInfo) ModTime() time.Time { return time.Time{} }
func (i memInfo) IsDir() bool        { return i.mode.IsDir() }
func (i memInfo) Sys() any           { return nil }

var errInjected = errors.New("injected failure")
