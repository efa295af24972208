package cfgedit

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched through errors.Is by the typed errors below.
var (
	ErrParse          = errors.New("cfgedit: parse error")
	ErrIO             = errors.New("cfgedit: io error")
	ErrPathResolution = errors.New("cfgedit: path resolution failed")
	ErrValidation     = errors.New("cfgedit: validation failed")
)

// ParseError describes a malformed document.
type ParseError struct {
	// Path is the file the text came from, empty for caller-supplied text.
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	src := e.Path
	if src == "" {
		src = "<input>"
	}
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("cfgedit: parse error in %s at line %d, column %d: %s", src, e.Line, e.Column, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("cfgedit: parse error in %s at line %d: %s", src, e.Line, e.Message)
	default:
		return fmt.Sprintf("cfgedit: parse error in %s: %s", src, e.Message)
	}
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// IoError is a failed filesystem primitive.
type IoError struct {
	Op   string
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("cfgedit: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

func (e *IoError) Is(target error) bool { return target == ErrIO }

// PathResolutionError means no location could be determined for a document.
type PathResolutionError struct {
	Kind       Kind
	Candidates []string
	Hint       string
}

func (e *PathResolutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cfgedit: no path found for %s", e.Kind)
	if len(e.Candidates) > 0 {
		fmt.Fprintf(&b, " (looked in %s)", strings.Join(e.Candidates, ", "))
	}
	if e.Hint != "" {
		b.WriteString(": ")
		b.WriteString(e.Hint)
	}
	return b.String()
}

func (e *PathResolutionError) Is(target error) bool { return target == ErrPathResolution }

// ValidationError rejects caller input before any filesystem access.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "cfgedit: " + e.Message
	}
	return fmt.Sprintf("cfgedit: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func ioErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var ie *IoError
	if errors.As(err, &ie) {
		return err
	}
	return &IoError{Op: op, Path: path, Err: err}
}
