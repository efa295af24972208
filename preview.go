package cfgedit

import (
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/pmezard/go-difflib/difflib"
)

// Change is a dry-run view of a write.
type Change struct {
	Kind   Kind
	Path   string
	Exists bool
	Before string
	After  string
	// Diff is a unified diff from Before to After, empty when they match.
	Diff string
	// MergePatch is the RFC 7386 merge patch taking the old document to the
	// new one, as JSON.
	MergePatch []byte
}

// Changed reports whether applying would modify the file.
func (c Change) Changed() bool { return !c.Exists || c.Before != c.After }

func newChange(t transaction) (Change, error) {
	c := Change{
		Kind:   t.kind,
		Path:   t.path,
		Exists: t.before != nil,
		Before: string(t.before),
		After:  t.after,
	}
	if c.Before != c.After {
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(c.Before),
			B:        difflib.SplitLines(c.After),
			FromFile: t.path,
			ToFile:   t.path,
			Context:  3,
		})
		if err != nil {
			return c, fmt.Errorf("cfgedit: failed to diff %s: %w", t.path, err)
		}
		c.Diff = diff
	}

	from := documentJSON(t.kind, t.before)
	to := documentJSON(t.kind, []byte(t.after))
	patch, err := jsonpatch.CreateMergePatch(from, to)
	if err != nil {
		return c, fmt.Errorf("cfgedit: failed to build merge patch for %s: %w", t.path, err)
	}
	c.MergePatch = patch
	return c, nil
}

// documentJSON renders a document of any kind as compact JSON. Absent or
// unreadable documents become an empty object.
func documentJSON(kind Kind, data []byte) []byte {
	if data == nil {
		return []byte("{}")
	}
	t, err := parseTable(kind.Format(), "", data)
	if err != nil {
		return []byte("{}")
	}
	out, _ := TableOf(t).MarshalJSON()
	return out
}
