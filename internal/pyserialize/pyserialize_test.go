package pyserialize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxhq/tspyc/internal/pyast"
)

func TestSerializeAssignAndExprStmt(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.Assign{Targets: []pyast.Expr{&pyast.Name{Id: "x"}}, Value: pyast.Int(1)},
		&pyast.ExprStmt{Value: &pyast.Call{Func: &pyast.Name{Id: "print"}, Args: []pyast.Expr{&pyast.Name{Id: "x"}}}},
	}}
	assert.Equal(t, "x = 1\nprint(x)\n", Serialize(mod))
}

func TestSerializeIfElifElse(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.If{
			Test: &pyast.Compare{Left: &pyast.Name{Id: "a"}, Ops: []pyast.Op{pyast.Gt{}}, Comparators: []pyast.Expr{pyast.Int(0)}},
			Body: []pyast.Stmt{&pyast.Return{Value: pyast.Str("pos")}},
			Orelse: []pyast.Stmt{&pyast.If{
				Test:   &pyast.Compare{Left: &pyast.Name{Id: "a"}, Ops: []pyast.Op{pyast.Lt{}}, Comparators: []pyast.Expr{pyast.Int(0)}},
				Body:   []pyast.Stmt{&pyast.Return{Value: pyast.Str("neg")}},
				Orelse: []pyast.Stmt{&pyast.Return{Value: pyast.Str("zero")}},
			}},
		},
	}}
	want := "if a > 0:\n" +
		"    return 'pos'\n" +
		"elif a < 0:\n" +
		"    return 'neg'\n" +
		"else:\n" +
		"    return 'zero'\n"
	assert.Equal(t, want, Serialize(mod))
}

func TestSerializePropertyDecoratorsRenderWithoutParens(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.ClassDef{
			Name: "Point",
			Body: []pyast.Stmt{
				&pyast.FunctionDef{
					Name:      "x",
					Args:      pyast.Arguments{Positional: []pyast.Arg{{Name: "self"}}},
					Body:      []pyast.Stmt{&pyast.Return{Value: &pyast.Attribute{Value: &pyast.Name{Id: "self"}, Attr: "_x"}}},
					Decorator: []pyast.Expr{&pyast.Call{Func: &pyast.Name{Id: "property"}}},
				},
				&pyast.FunctionDef{
					Name:      "x",
					Args:      pyast.Arguments{Positional: []pyast.Arg{{Name: "self"}, {Name: "v"}}},
					Body:      []pyast.Stmt{&pyast.Assign{Targets: []pyast.Expr{&pyast.Attribute{Value: &pyast.Name{Id: "self"}, Attr: "_x"}}, Value: &pyast.Name{Id: "v"}}},
					Decorator: []pyast.Expr{&pyast.Call{Func: &pyast.Name{Id: "x.setter"}}},
				},
			},
		},
	}}
	out := Serialize(mod)
	assert.Contains(t, out, "@property\n    def x(self):")
	assert.Contains(t, out, "@x.setter\n    def x(self, v):")
	assert.NotContains(t, out, "@property()")
}

func TestSerializeBinOpPrecedenceAndParens(t *testing.T) {
	// (a + b) * c must keep its parens; a + b * c must not.
	grouped := &pyast.BinOp{
		Left:  &pyast.BinOp{Left: &pyast.Name{Id: "a"}, Op: pyast.Add{}, Right: &pyast.Name{Id: "b"}},
		Op:    pyast.Mult{},
		Right: &pyast.Name{Id: "c"},
	}
	ungrouped := &pyast.BinOp{
		Left:  &pyast.Name{Id: "a"},
		Op:    pyast.Add{},
		Right: &pyast.BinOp{Left: &pyast.Name{Id: "b"}, Op: pyast.Mult{}, Right: &pyast.Name{Id: "c"}},
	}
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.ExprStmt{Value: grouped},
		&pyast.ExprStmt{Value: ungrouped},
	}}
	assert.Equal(t, "(a + b) * c\na + b * c\n", Serialize(mod))
}

func TestSerializeSubSubtractionKeepsRightAssociationExplicit(t *testing.T) {
	// a - (b - c) must keep its parens since subtraction is not associative.
	expr := &pyast.BinOp{
		Left:  &pyast.Name{Id: "a"},
		Op:    pyast.Sub{},
		Right: &pyast.BinOp{Left: &pyast.Name{Id: "b"}, Op: pyast.Sub{}, Right: &pyast.Name{Id: "c"}},
	}
	mod := &pyast.Module{Body: []pyast.Stmt{&pyast.ExprStmt{Value: expr}}}
	assert.Equal(t, "a - (b - c)\n", Serialize(mod))
}

func TestSerializeStringLiteralQuoting(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.ExprStmt{Value: pyast.Str("plain")},
		&pyast.ExprStmt{Value: pyast.Str("it's")},
		&pyast.ExprStmt{Value: pyast.Str("line\nbreak")},
	}}
	want := "'plain'\n\"it's\"\n'line\\nbreak'\n"
	assert.Equal(t, want, Serialize(mod))
}

func TestSerializeDictListTuple(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.ExprStmt{Value: &pyast.Dict{Keys: []pyast.Expr{pyast.Str("a")}, Values: []pyast.Expr{pyast.Int(1)}}},
		&pyast.ExprStmt{Value: &pyast.List{Elts: []pyast.Expr{pyast.Int(1), pyast.Int(2)}}},
		&pyast.ExprStmt{Value: &pyast.Tuple{Elts: []pyast.Expr{pyast.Int(1)}}},
	}}
	want := "{'a': 1}\n[1, 2]\n(1,)\n"
	assert.Equal(t, want, Serialize(mod))
}

func TestSerializeTryExceptFinally(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.Try{
			Body: []pyast.Stmt{&pyast.ExprStmt{Value: &pyast.Call{Func: &pyast.Name{Id: "risky"}}}},
			Handlers: []*pyast.ExceptHandler{
				{Type: &pyast.Name{Id: "ValueError"}, Name: "e", Body: []pyast.Stmt{&pyast.Raise{Exc: &pyast.Name{Id: "e"}}}},
			},
			FinalBody: []pyast.Stmt{&pyast.ExprStmt{Value: &pyast.Call{Func: &pyast.Name{Id: "cleanup"}}}},
		},
	}}
	want := "try:\n" +
		"    risky()\n" +
		"except ValueError as e:\n" +
		"    raise e\n" +
		"finally:\n" +
		"    cleanup()\n"
	assert.Equal(t, want, Serialize(mod))
}

func TestSerializeEmptyBodyEmitsPass(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.FunctionDef{Name: "noop", Args: pyast.Arguments{}, Body: nil},
	}}
	assert.Equal(t, "def noop():\n    pass\n", Serialize(mod))
}
