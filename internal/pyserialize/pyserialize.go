// Package pyserialize renders a pyast.Module into Python 3 source text (spec
// section 4.8). It is a straightforward recursive renderer over the closed
// node set in internal/pyast — the design note in spec section 9 accepts
// this in place of shelling out to a reference implementation.
package pyserialize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oxhq/tspyc/internal/pyast"
)

const indentUnit = "    "

// Serialize renders mod as Python 3 source. The result is always
// syntactically valid Python given a well-formed Module; it is the
// post-processor's job (internal/postprocess) to turn it into idiomatic,
// dialect-bridging Python.
func Serialize(mod *pyast.Module) string {
	s := &serializer{}
	s.writeStmts(mod.Body, 0)
	return s.buf.String()
}

type serializer struct {
	buf strings.Builder
}

func (s *serializer) line(indent int, text string) {
	s.buf.WriteString(strings.Repeat(indentUnit, indent))
	s.buf.WriteString(text)
	s.buf.WriteByte('\n')
}

func (s *serializer) writeStmts(stmts []pyast.Stmt, indent int) {
	if len(stmts) == 0 {
		s.line(indent, "pass")
		return
	}
	for _, st := range stmts {
		s.writeStmt(st, indent)
	}
}

func (s *serializer) writeStmt(st pyast.Stmt, indent int) {
	switch n := st.(type) {
	case *pyast.Assign:
		targets := make([]string, len(n.Targets))
		for i, t := range n.Targets {
			targets[i] = expr(t, precLowest)
		}
		s.line(indent, strings.Join(targets, " = ")+" = "+expr(n.Value, precLowest))
	case *pyast.ExprStmt:
		s.line(indent, expr(n.Value, precLowest))
	case *pyast.If:
		s.line(indent, "if "+expr(n.Test, precLowest)+":")
		s.writeStmts(n.Body, indent+1)
		s.writeOrelse(n.Orelse, indent)
	case *pyast.While:
		s.line(indent, "while "+expr(n.Test, precLowest)+":")
		s.writeStmts(n.Body, indent+1)
		if len(n.Orelse) > 0 {
			s.line(indent, "else:")
			s.writeStmts(n.Orelse, indent+1)
		}
	case *pyast.For:
		s.line(indent, "for "+expr(n.Target, precLowest)+" in "+expr(n.Iter, precLowest)+":")
		s.writeStmts(n.Body, indent+1)
		if len(n.Orelse) > 0 {
			s.line(indent, "else:")
			s.writeStmts(n.Orelse, indent+1)
		}
	case *pyast.FunctionDef:
		s.writeDecorators(n.Decorator, indent)
		s.line(indent, "def "+n.Name+"("+args(n.Args)+"):")
		s.writeStmts(n.Body, indent+1)
	case *pyast.AsyncFunctionDef:
		s.writeDecorators(n.Decorator, indent)
		s.line(indent, "async def "+n.Name+"("+args(n.Args)+"):")
		s.writeStmts(n.Body, indent+1)
	case *pyast.ClassDef:
		s.writeDecorators(n.Decorator, indent)
		header := "class " + n.Name
		if len(n.Bases) > 0 {
			bases := make([]string, len(n.Bases))
			for i, b := range n.Bases {
				bases[i] = expr(b, precLowest)
			}
			header += "(" + strings.Join(bases, ", ") + ")"
		}
		s.line(indent, header+":")
		s.writeStmts(n.Body, indent+1)
	case *pyast.Return:
		if n.Value == nil {
			s.line(indent, "return")
		} else {
			s.line(indent, "return "+expr(n.Value, precLowest))
		}
	case *pyast.Raise:
		s.line(indent, "raise "+expr(n.Exc, precLowest))
	case *pyast.Try:
		s.line(indent, "try:")
		s.writeStmts(n.Body, indent+1)
		for _, h := range n.Handlers {
			header := "except"
			if h.Type != nil {
				header += " " + expr(h.Type, precLowest)
				if h.Name != "" {
					header += " as " + h.Name
				}
			}
			s.line(indent, header+":")
			s.writeStmts(h.Body, indent+1)
		}
		if len(n.Orelse) > 0 {
			s.line(indent, "else:")
			s.writeStmts(n.Orelse, indent+1)
		}
		if len(n.FinalBody) > 0 {
			s.line(indent, "finally:")
			s.writeStmts(n.FinalBody, indent+1)
		}
	case *pyast.Import:
		names := make([]string, len(n.Names))
		for i, a := range n.Names {
			names[i] = alias(a)
		}
		s.line(indent, "import "+strings.Join(names, ", "))
	case *pyast.ImportFrom:
		names := make([]string, len(n.Names))
		for i, a := range n.Names {
			names[i] = alias(a)
		}
		s.line(indent, "from "+strings.Repeat(".", n.Level)+n.Module+" import "+strings.Join(names, ", "))
	case *pyast.Delete:
		targets := make([]string, len(n.Targets))
		for i, t := range n.Targets {
			targets[i] = expr(t, precLowest)
		}
		s.line(indent, "del "+strings.Join(targets, ", "))
	case *pyast.Break:
		s.line(indent, "break")
	case *pyast.Continue:
		s.line(indent, "continue")
	case *pyast.Match:
		s.line(indent, "match "+expr(n.Subject, precLowest)+":")
		for _, c := range n.Cases {
			pattern := "_"
			if c.Value != nil {
				pattern = expr(c.Value, precLowest)
			}
			s.line(indent+1, "case "+pattern+":")
			s.writeStmts(c.Body, indent+2)
		}
	default:
		s.line(indent, fmt.Sprintf("# unrenderable statement %T", st))
	}
}

// writeDecorators renders a decorator whose Func is a bare Name and has no
// arguments without call parens (`@property`, `@x.setter`), matching real
// Python decorator syntax even though the closed AST models these
// decorators as zero-arg Call nodes (spec section 4.6).
func (s *serializer) writeDecorators(decos []pyast.Expr, indent int) {
	for _, d := range decos {
		if call, ok := d.(*pyast.Call); ok && len(call.Args) == 0 && len(call.Keywords) == 0 {
			if name, ok := call.Func.(*pyast.Name); ok {
				s.line(indent, "@"+name.Id)
				continue
			}
		}
		s.line(indent, "@"+expr(d, precLowest))
	}
}

func (s *serializer) writeOrelse(orelse []pyast.Stmt, indent int) {
	if len(orelse) == 0 {
		return
	}
	if len(orelse) == 1 {
		if nested, ok := orelse[0].(*pyast.If); ok {
			s.line(indent, "elif "+expr(nested.Test, precLowest)+":")
			s.writeStmts(nested.Body, indent+1)
			s.writeOrelse(nested.Orelse, indent)
			return
		}
	}
	s.line(indent, "else:")
	s.writeStmts(orelse, indent+1)
}

func args(a pyast.Arguments) string {
	var parts []string
	firstDefault := len(a.Positional) - len(a.Defaults)
	for i, p := range a.Positional {
		if i >= firstDefault {
			parts = append(parts, p.Name+"="+expr(a.Defaults[i-firstDefault], precLowest))
		} else {
			parts = append(parts, p.Name)
		}
	}
	if a.Vararg != nil {
		parts = append(parts, "*"+a.Vararg.Name)
	}
	return strings.Join(parts, ", ")
}

func alias(a pyast.Alias) string {
	if a.AsName == "" {
		return a.Name
	}
	return a.Name + " as " + a.AsName
}

// ---- expressions, with precedence-aware parenthesization ----

const (
	precLowest = iota
	precIfExp
	precOr
	precAnd
	precNot
	precCompare
	precAdd
	precMult
	precUnary
	precAtom
)

func opPrec(op pyast.Op) int {
	switch op.(type) {
	case pyast.Or:
		return precOr
	case pyast.And:
		return precAnd
	case pyast.Not:
		return precNot
	case pyast.Eq, pyast.NotEq, pyast.Gt, pyast.Lt, pyast.GtE, pyast.LtE, pyast.In, pyast.Is:
		return precCompare
	case pyast.Add, pyast.Sub:
		return precAdd
	case pyast.Mult, pyast.Div:
		return precMult
	default:
		return precAtom
	}
}

func opText(op pyast.Op) string {
	switch op.(type) {
	case pyast.Add:
		return "+"
	case pyast.Sub:
		return "-"
	case pyast.Mult:
		return "*"
	case pyast.Div:
		return "/"
	case pyast.Not:
		return "not"
	case pyast.Eq:
		return "=="
	case pyast.NotEq:
		return "!="
	case pyast.Gt:
		return ">"
	case pyast.Lt:
		return "<"
	case pyast.GtE:
		return ">="
	case pyast.LtE:
		return "<="
	case pyast.And:
		return "and"
	case pyast.Or:
		return "or"
	case pyast.In:
		return "in"
	case pyast.Is:
		return "is"
	default:
		return "?"
	}
}

// exprPrec reports the binding strength of e's outermost operator so a
// caller can decide whether to parenthesize it as a child of a higher-
// precedence node.
func exprPrec(e pyast.Expr) int {
	switch n := e.(type) {
	case *pyast.BoolOp:
		return opPrec(n.Op)
	case *pyast.Compare:
		return precCompare
	case *pyast.BinOp:
		return opPrec(n.Op)
	case *pyast.UnaryOp:
		if _, ok := n.Op.(pyast.Not); ok {
			return precNot
		}
		return precUnary
	case *pyast.IfExp:
		return precIfExp
	default:
		return precAtom
	}
}

func expr(e pyast.Expr, minPrec int) string {
	if e == nil {
		return "None"
	}
	prec := exprPrec(e)
	text := exprText(e)
	if prec < minPrec {
		return "(" + text + ")"
	}
	return text
}

func exprText(e pyast.Expr) string {
	switch n := e.(type) {
	case *pyast.Name:
		return n.Id
	case *pyast.Constant:
		return constantText(n)
	case *pyast.BinOp:
		p := opPrec(n.Op)
		// Sub/Div are left-associative only: the right operand needs strict
		// parenthesization at the same precedence to avoid reassociating.
		left := expr(n.Left, p)
		right := expr(n.Right, p+1)
		return left + " " + opText(n.Op) + " " + right
	case *pyast.UnaryOp:
		p := exprPrec(e)
		if _, ok := n.Op.(pyast.Not); ok {
			return "not " + expr(n.Operand, p+1)
		}
		return "-" + expr(n.Operand, p+1)
	case *pyast.Compare:
		p := precCompare
		parts := []string{expr(n.Left, p+1)}
		left := n.Left
		for i, op := range n.Ops {
			parts = append(parts, opText(op), expr(n.Comparators[i], p+1))
			left = n.Comparators[i]
		}
		_ = left
		return strings.Join(parts, " ")
	case *pyast.BoolOp:
		p := opPrec(n.Op)
		parts := make([]string, len(n.Values))
		for i, v := range n.Values {
			parts[i] = expr(v, p+1)
		}
		return strings.Join(parts, " "+opText(n.Op)+" ")
	case *pyast.Call:
		parts := make([]string, 0, len(n.Args)+len(n.Keywords))
		for _, a := range n.Args {
			parts = append(parts, expr(a, precLowest))
		}
		for _, k := range n.Keywords {
			parts = append(parts, k.Arg+"="+expr(k.Value, precLowest))
		}
		return expr(n.Func, precAtom) + "(" + strings.Join(parts, ", ") + ")"
	case *pyast.Attribute:
		return expr(n.Value, precAtom) + "." + n.Attr
	case *pyast.Subscript:
		return expr(n.Value, precAtom) + "[" + expr(n.Slice, precLowest) + "]"
	case *pyast.List:
		elts := make([]string, len(n.Elts))
		for i, el := range n.Elts {
			elts[i] = expr(el, precLowest)
		}
		return "[" + strings.Join(elts, ", ") + "]"
	case *pyast.Tuple:
		elts := make([]string, len(n.Elts))
		for i, el := range n.Elts {
			elts[i] = expr(el, precLowest)
		}
		if len(elts) == 1 {
			return "(" + elts[0] + ",)"
		}
		return strings.Join(elts, ", ")
	case *pyast.Dict:
		parts := make([]string, len(n.Keys))
		for i, k := range n.Keys {
			if k == nil {
				parts[i] = "**" + expr(n.Values[i], precAtom)
				continue
			}
			parts[i] = expr(k, precLowest) + ": " + expr(n.Values[i], precLowest)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *pyast.Starred:
		return "*" + expr(n.Value, precAtom)
	case *pyast.IfExp:
		return expr(n.Body, precIfExp+1) + " if " + expr(n.Test, precIfExp+1) + " else " + expr(n.Orelse, precIfExp)
	case *pyast.Await:
		return "await " + expr(n.Value, precUnary)
	default:
		return fmt.Sprintf("# unrenderable expr %T", e)
	}
}

func constantText(c *pyast.Constant) string {
	switch c.Kind {
	case pyast.ConstInt:
		return strconv.FormatInt(c.I, 10)
	case pyast.ConstFloat:
		return strconv.FormatFloat(c.F, 'g', -1, 64)
	case pyast.ConstBool:
		if c.B {
			return "True"
		}
		return "False"
	case pyast.ConstNone:
		return "None"
	default:
		return stringLiteral(c.S)
	}
}

// stringLiteral renders s single-quoted unless it contains a single quote,
// in which case it switches to double quotes (spec section 4.8).
func stringLiteral(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') {
		quote = '"'
	}
	var b strings.Builder
	b.WriteByte(quote)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case rune(quote):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(quote)
	return b.String()
}
