package cli

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// unifiedDiff renders a unified diff between a source file and its
// generated Python, for --debug output — adapted from the teacher's
// util.UnifiedDiff (internal/util/util.go), which wraps the same library.
func unifiedDiff(source, python, path string) string {
	d := difflib.UnifiedDiff{
		A:        difflib.SplitLines(source),
		B:        difflib.SplitLines(python),
		FromFile: path,
		ToFile:   path + " (generated)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(d)
	if err != nil {
		return "(diff error: " + err.Error() + ")"
	}
	return strings.TrimRight(text, "\n") + "\n"
}
