package cfgedit

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Locator resolves where each document lives.
type Locator interface {
	// Path returns the location of the document, or a PathResolutionError.
	Path(kind Kind) (string, error)
	// Candidates lists every location Path considers.
	Candidates(kind Kind) []string
}

// StaticLocator maps kinds to fixed paths.
type StaticLocator map[Kind]string

func (l StaticLocator) Path(kind Kind) (string, error) {
	p, ok := l[kind]
	if !ok || p == "" {
		return "", &PathResolutionError{Kind: kind, Hint: "no path configured"}
	}
	return p, nil
}

func (l StaticLocator) Candidates(kind Kind) []string {
	if p, ok := l[kind]; ok && p != "" {
		return []string{p}
	}
	return nil
}

// Store runs read-modify-write transactions against the documents a Locator
// names. Each call reads the file fresh; nothing is cached between calls.
type Store struct {
	loc    Locator
	fs     FileSystem
	log    hclog.Logger
	backup bool
	suffix string
	writer *Writer
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(l hclog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func WithFileSystem(fsys FileSystem) Option {
	return func(s *Store) {
		if fsys != nil {
			s.fs = fsys
		}
	}
}

// WithBackup turns the one-time backup before the first write on or off.
// It is on by default.
func WithBackup(enabled bool) Option {
	return func(s *Store) { s.backup = enabled }
}

func WithBackupSuffix(suffix string) Option {
	return func(s *Store) { s.suffix = suffix }
}

func NewStore(loc Locator, opts ...Option) *Store {
	s := &Store{
		loc:    loc,
		fs:     OSFS{},
		log:    hclog.NewNullLogger(),
		backup: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.writer = NewWriter(s.fs, s.suffix)
	return s
}

// Writer exposes the Store's writer, mainly to reset its backup session.
func (s *Store) Writer() *Writer { return s.writer }

// Result describes a completed apply.
type Result struct {
	Kind     Kind
	Path     string
	Text     string
	Written  bool
	BackedUp bool
}

// DeleteReport lists what a delete removed.
type DeleteReport struct {
	Deleted       []string
	AlreadyAbsent []string
}

// ApplyBasic writes the managed fields of u into the kind's document.
func (s *Store) ApplyBasic(kind Kind, u Update) (Result, error) {
	t, err := s.prepareBasic(kind, u)
	if err != nil {
		return Result{}, err
	}
	return s.commit(t)
}

// ApplyAdvanced merges a full replacement document into the kind's document.
func (s *Store) ApplyAdvanced(kind Kind, replacement string) (Result, error) {
	t, err := s.prepareAdvanced(kind, replacement)
	if err != nil {
		return Result{}, err
	}
	return s.commit(t)
}

// Plan computes what ApplyBasic would write without touching the file.
func (s *Store) Plan(kind Kind, u Update) (Change, error) {
	t, err := s.prepareBasic(kind, u)
	if err != nil {
		return Change{}, err
	}
	return newChange(t)
}

// PlanAdvanced computes what ApplyAdvanced would write without touching the
// file.
func (s *Store) PlanAdvanced(kind Kind, replacement string) (Change, error) {
	t, err := s.prepareAdvanced(kind, replacement)
	if err != nil {
		return Change{}, err
	}
	return newChange(t)
}

// ReadCurrent decodes the kind's document. It reports false when the file
// does not exist.
func (s *Store) ReadCurrent(kind Kind) (Value, bool, error) {
	info, err := kind.info()
	if err != nil {
		return Value{}, false, err
	}
	path, err := s.loc.Path(kind)
	if err != nil {
		return Value{}, false, err
	}
	data, err := s.read(path)
	if err != nil || data == nil {
		return Value{}, false, err
	}
	t, err := parseTable(info.format, path, data)
	if err != nil {
		return Value{}, false, err
	}
	return TableOf(t), true, nil
}

// DeleteTargets removes the documents of kinds. The editor settings file is
// shared with other extensions and cannot be deleted.
func (s *Store) DeleteTargets(kinds ...Kind) (DeleteReport, error) {
	var report DeleteReport
	if len(kinds) == 0 {
		return report, &ValidationError{Field: "kind", Message: "at least one document kind is required"}
	}
	for _, k := range kinds {
		if _, err := k.info(); err != nil {
			return report, err
		}
		if k.Textual() {
			return report, &ValidationError{Field: "kind", Message: fmt.Sprintf("%s is shared with other tools and is never deleted", k)}
		}
	}

	paths := make([]string, 0, len(kinds))
	for _, k := range kinds {
		path, err := s.loc.Path(k)
		if err != nil {
			return report, err
		}
		paths = append(paths, path)
	}
	for _, path := range paths {
		removed, err := s.writer.Remove(path)
		if err != nil {
			return report, err
		}
		if removed {
			s.log.Info("deleted document", "path", path)
			report.Deleted = append(report.Deleted, path)
		} else {
			report.AlreadyAbsent = append(report.AlreadyAbsent, path)
		}
	}
	return report, nil
}

// transaction is one prepared read-modify-write.
type transaction struct {
	kind   Kind
	path   string
	before []byte // nil when the file is absent
	after  string
}

func (s *Store) prepareBasic(kind Kind, u Update) (transaction, error) {
	if err := ValidateUpdate(kind, u); err != nil {
		return transaction{}, err
	}
	path, err := s.loc.Path(kind)
	if err != nil {
		return transaction{}, err
	}
	if kind == AssistantExtension {
		if err := s.requireAssistantSettings(); err != nil {
			return transaction{}, err
		}
	}
	before, err := s.read(path)
	if err != nil {
		return transaction{}, err
	}
	s.inspect(kind, path, before)

	after, err := Merge(kind, before, u)
	if err != nil {
		return transaction{}, withPath(err, path)
	}
	return transaction{kind: kind, path: path, before: before, after: after}, nil
}

func (s *Store) prepareAdvanced(kind Kind, replacement string) (transaction, error) {
	info, err := kind.info()
	if err != nil {
		return transaction{}, err
	}
	if strings.TrimSpace(replacement) == "" {
		return transaction{}, &ValidationError{Field: "document", Message: "replacement document must not be empty"}
	}
	if _, err := parseTable(info.format, "", []byte(replacement)); err != nil {
		return transaction{}, err
	}
	path, err := s.loc.Path(kind)
	if err != nil {
		return transaction{}, err
	}
	before, err := s.read(path)
	if err != nil {
		return transaction{}, err
	}
	s.inspect(kind, path, before)

	after, err := MergeAdvanced(kind, before, replacement)
	if err != nil {
		return transaction{}, withPath(err, path)
	}
	return transaction{kind: kind, path: path, before: before, after: after}, nil
}

func (s *Store) commit(t transaction) (Result, error) {
	res := Result{Kind: t.kind, Path: t.path, Text: t.after}
	if t.before != nil && string(t.before) == t.after {
		s.log.Debug("document unchanged", "kind", t.kind, "path", t.path)
		return res, nil
	}
	if s.backup {
		backed, err := s.writer.BackupOnce(t.path)
		if err != nil {
			return res, err
		}
		if backed {
			s.log.Info("backed up document", "path", t.path, "backup", s.writer.BackupPath(t.path))
		}
		res.BackedUp = backed
	}
	if err := s.writer.Write(t.path, []byte(t.after)); err != nil {
		return res, err
	}
	res.Written = true
	s.log.Info("wrote document", "kind", t.kind, "path", t.path, "bytes", len(t.after))
	return res, nil
}

// read returns the file contents, or nil when the file does not exist.
func (s *Store) read(path string) ([]byte, error) {
	data, err := s.fs.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, ioErr("read", path, err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// inspect logs how an existing structural document is classified, and warns
// when it is corrupt and will be replaced by an empty one.
func (s *Store) inspect(kind Kind, path string, before []byte) {
	if before == nil || kind.Textual() {
		return
	}
	t, err := parseTable(kind.Format(), path, before)
	if err != nil {
		s.log.Warn("existing document is not valid, starting from empty", "path", path, "error", err)
		return
	}
	if s.log.IsDebug() {
		managed, extras := Classify(kind, t)
		s.log.Debug("classified keys", "kind", kind, "managed", managed, "extras", extras)
	}
}

func (s *Store) requireAssistantSettings() error {
	settings, err := s.loc.Path(AssistantSettings)
	if err != nil {
		return err
	}
	ok, err := exists(s.fs, settings)
	if err != nil {
		return err
	}
	if !ok {
		return &ValidationError{
			Field:   "kind",
			Message: fmt.Sprintf("configure %s first: %s does not exist", AssistantSettings, settings),
		}
	}
	return nil
}

func withPath(err error, path string) error {
	var pe *ParseError
	if errors.As(err, &pe) && pe.Path == "" {
		pe.Path = path
	}
	return err
}
