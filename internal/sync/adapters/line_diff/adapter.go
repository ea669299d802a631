// Package linediff renders unified diffs of descriptor rewrites.
package linediff

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Adapter implements ports.DiffPort with a line-based unified diff.
type Adapter struct {
	context int
}

// New creates a new line diff adapter with three lines of context.
func New() *Adapter {
	return &Adapter{context: 3}
}

// ComputeDiff returns a unified diff of base and head, or "" if they are
// identical.
func (a *Adapter) ComputeDiff(baseName, headName string, base, head []byte) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(base)),
		B:        difflib.SplitLines(string(head)),
		FromFile: baseName,
		ToFile:   headName,
		Context:  a.context,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}
