// Package transform is the CST->Python-AST Transformer of spec section 4.2.
// It walks a cst.Node tree and builds pyast nodes, consulting
// internal/grammar for the default skip/first/all/contains-body behavior of
// each rule and falling back to an explicit per-rule handler — a Go
// dispatch table standing in for the original implementation's
// __getattribute__-based reflection, per the design note in spec section 9.
package transform

import (
	"fmt"

	"github.com/oxhq/tspyc/internal/cst"
	"github.com/oxhq/tspyc/internal/grammar"
	"github.com/oxhq/tspyc/internal/hoist"
	"github.com/oxhq/tspyc/internal/names"
	"github.com/oxhq/tspyc/internal/pyast"
)

// TransformError reports a CST rule the transformer has no handler for, or
// one whose children didn't have the shape its handler expected.
type TransformError struct {
	Rule string
	Line int
	Col  int
	Msg  string
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform error at %s (%d:%d): %s", e.Rule, e.Line, e.Col, e.Msg)
}

// Transformer holds per-file state: the grammar table for the input
// dialect, a fresh Name Manager, and a fresh Hoist Registry. One Transformer
// is built per translated file; none of this state is safe to share across
// files translated concurrently (spec section 5/7).
type Transformer struct {
	g      *grammar.Grammar
	Names  *names.Manager
	Hoist  *hoist.Registry
	thisID string
}

// New constructs a Transformer for one file. snakeCase controls whether the
// Name Manager rewrites identifiers to snake_case as it allocates them.
func New(g *grammar.Grammar, snakeCase bool) *Transformer {
	return &Transformer{
		g:      g,
		Names:  names.NewManager(snakeCase),
		Hoist:  hoist.NewRegistry(),
		thisID: "self",
	}
}

// TransformFile transforms a parsed "start" node into a pyast.Module.
func (t *Transformer) TransformFile(root *cst.Node) (*pyast.Module, error) {
	if root.Rule != "start" {
		return nil, &TransformError{Rule: root.Rule, Line: root.Line, Col: root.Col, Msg: "expected start node"}
	}
	body, err := t.transformBody(root)
	if err != nil {
		return nil, err
	}
	if pending := t.Hoist.Pending(); len(pending) > 0 {
		return nil, &TransformError{Rule: "start", Line: root.Line, Col: root.Col,
			Msg: fmt.Sprintf("hoisted definitions never spliced into any body: %v", pending)}
	}
	return &pyast.Module{Body: body}, nil
}

// dispatch routes one CST node through its grammar bucket, then either the
// bucket's generic default or a rule-specific handler. It returns one of:
// pyast.Stmt, pyast.Expr, pyast.Op, []pyast.Stmt (for "body"/"start"), or
// []any (for "all"-bucket plural containers) — callers type-assert the
// shape they expect from a given grammar position.
func (t *Transformer) dispatch(n *cst.Node) (any, error) {
	if n == nil {
		return nil, nil
	}

	switch t.g.Bucket(n.Rule) {
	case grammar.BucketSkip:
		return nil, nil
	case grammar.BucketFirst:
		if len(n.Children) == 0 {
			return nil, nil
		}
		if child, ok := cst.AsNode(n.Children[0]); ok {
			return t.dispatch(child)
		}
		return n.Children[0], nil
	case grammar.BucketAll:
		out := make([]any, 0, len(n.Children))
		for _, c := range n.Children {
			child, ok := cst.AsNode(c)
			if !ok {
				continue
			}
			v, err := t.dispatch(child)
			if err != nil {
				return nil, err
			}
			if v != nil {
				out = append(out, v)
			}
		}
		return out, nil
	case grammar.BucketContainsBody:
		return t.transformBody(n)
	default:
		h, ok := handlers[n.Rule]
		if !ok {
			return nil, &TransformError{Rule: n.Rule, Line: n.Line, Col: n.Col, Msg: "no transform handler registered"}
		}
		return h(t, n)
	}
}

// transformBody transforms every statement child of a "body"/"start" node,
// then runs the Hoist Registry's splice pass over the result (spec section
// 4.7): any anonymous function definitions that were registered while
// transforming these statements get spliced in at the front of the
// resulting statement list, ahead of every statement that references them.
func (t *Transformer) transformBody(n *cst.Node) ([]pyast.Stmt, error) {
	var out []pyast.Stmt
	for _, c := range n.Children {
		child, ok := cst.AsNode(c)
		if !ok {
			continue
		}
		stmts, err := t.transformStatement(child)
		if err != nil {
			return nil, err
		}
		for _, s := range stmts {
			var ids []string
			collectNameIDs(s, &ids)
			t.Hoist.RecordRefs(s, ids)
		}
		out = append(out, stmts...)
	}
	return t.Hoist.AdaptBody(out), nil
}

// transformStatement transforms one statement-position CST node into zero
// or more pyast.Stmt — most rules produce exactly one, but a bare
// expression statement whose expression is itself an assignment-like form
// etc. still yields one; destructuring declarations can expand into several
// assignments via their custom handler.
func (t *Transformer) transformStatement(n *cst.Node) ([]pyast.Stmt, error) {
	// delete_expr only ever appears in statement position in real JS
	// (`delete obj[key];`); there it must become a Delete statement rather
	// than an ExprStmt wrapping a value-less expression.
	if n.Rule == "delete_expr" {
		target, err := t.transformExpr(n.Child(0))
		if err != nil {
			return nil, err
		}
		return []pyast.Stmt{&pyast.Delete{Targets: []pyast.Expr{target}}}, nil
	}

	v, err := t.dispatch(n)
	if err != nil {
		return nil, err
	}
	switch val := v.(type) {
	case nil:
		return nil, nil
	case pyast.Stmt:
		return []pyast.Stmt{val}, nil
	case []pyast.Stmt:
		return val, nil
	case pyast.Expr:
		return []pyast.Stmt{&pyast.ExprStmt{Value: val}}, nil
	default:
		return nil, &TransformError{Rule: n.Rule, Line: n.Line, Col: n.Col, Msg: "value did not resolve to a statement"}
	}
}

// transformExpr transforms one expression-position CST node and requires
// the result to be a pyast.Expr.
func (t *Transformer) transformExpr(v cst.Value) (pyast.Expr, error) {
	if cst.IsAbsent(v) {
		return pyast.None(), nil
	}
	n, ok := cst.AsNode(v)
	if !ok {
		return nil, &TransformError{Msg: "expected expression node"}
	}
	out, err := t.dispatch(n)
	if err != nil {
		return nil, err
	}
	e, ok := out.(pyast.Expr)
	if !ok {
		return nil, &TransformError{Rule: n.Rule, Line: n.Line, Col: n.Col, Msg: "value did not resolve to an expression"}
	}
	return e, nil
}

func (t *Transformer) transformOp(v cst.Value) (pyast.Op, error) {
	n, ok := cst.AsNode(v)
	if !ok {
		return nil, &TransformError{Msg: "expected operator node"}
	}
	out, err := t.dispatch(n)
	if err != nil {
		return nil, err
	}
	op, ok := out.(pyast.Op)
	if !ok {
		return nil, &TransformError{Rule: n.Rule, Line: n.Line, Col: n.Col, Msg: "value did not resolve to an operator"}
	}
	return op, nil
}

// handler is one rule's custom transform logic.
type handler func(*Transformer, *cst.Node) (any, error)

// handlers is the explicit dispatch table: every grammar rule the parser
// can emit that is not covered by a generic skip/first/all/contains-body
// default. Registered by init() in stmt.go and expr.go to keep each table
// entry next to the code that implements it.
var handlers = map[string]handler{}

func register(rule string, h handler) {
	if _, exists := handlers[rule]; exists {
		panic("transform: duplicate handler for rule " + rule)
	}
	handlers[rule] = h
}
