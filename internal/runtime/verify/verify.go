// Package verify is an optional --debug smoke check: it parses generated
// Python source back with a tree-sitter Python grammar purely to detect
// gross syntax breakage before a file is written. This is not a round-trip
// guarantee (the spec's Non-goals explicitly exclude that) — just a cheap
// sanity pass, grounded on the teacher's tree-sitter parsing idiom
// (providers/golang/config_test.go: sitter.NewParser / SetLanguage / Parse).
package verify

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// SmokeCheck reports whether src parses as syntactically valid Python,
// per the tree-sitter Python grammar's own error recovery. A non-nil error
// is never fatal to a translation run (spec section 8's external-interface
// note): callers log it at WARN and still write the file.
func SmokeCheck(src []byte) error {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree := parser.Parse(nil, src)
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return &SyntaxWarning{Snippet: firstErrorContext(root, src)}
	}
	return nil
}

// SyntaxWarning reports that tree-sitter's Python grammar flagged a parse
// error somewhere in the generated source.
type SyntaxWarning struct {
	Snippet string
}

func (e *SyntaxWarning) Error() string {
	return "generated Python failed the syntax smoke check near: " + e.Snippet
}

func firstErrorContext(n *sitter.Node, src []byte) string {
	var walk func(*sitter.Node) *sitter.Node
	walk = func(node *sitter.Node) *sitter.Node {
		if node.IsError() || node.IsMissing() {
			return node
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			if found := walk(node.Child(i)); found != nil {
				return found
			}
		}
		return nil
	}
	if bad := walk(n); bad != nil {
		start, end := bad.StartByte(), bad.EndByte()
		if int(end) <= len(src) {
			return string(src[start:end])
		}
	}
	return "(unknown location)"
}
