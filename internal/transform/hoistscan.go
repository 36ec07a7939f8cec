package transform

import "github.com/oxhq/tspyc/internal/pyast"

// collectNameIDs walks v (a pyast.Stmt or pyast.Expr, or a slice of either)
// and appends every *pyast.Name.Id it finds to out. It descends into nested
// statement bodies too: a hoisted definition consumed by a deeper scope's own
// transformBody/AdaptBody pass is harmless to re-discover here, since
// Registry.AdaptBody skips any handle already marked consumed (spec section
// 4.7) — this walker only needs to be complete, not scope-aware.
func collectNameIDs(v any, out *[]string) {
	switch n := v.(type) {
	case nil:
	case *pyast.Name:
		*out = append(*out, n.Id)
	case *pyast.Constant:
	case *pyast.BinOp:
		collectNameIDs(n.Left, out)
		collectNameIDs(n.Right, out)
	case *pyast.UnaryOp:
		collectNameIDs(n.Operand, out)
	case *pyast.Compare:
		collectNameIDs(n.Left, out)
		for _, c := range n.Comparators {
			collectNameIDs(c, out)
		}
	case *pyast.BoolOp:
		for _, val := range n.Values {
			collectNameIDs(val, out)
		}
	case *pyast.Call:
		collectNameIDs(n.Func, out)
		for _, a := range n.Args {
			collectNameIDs(a, out)
		}
		for _, kw := range n.Keywords {
			collectNameIDs(kw.Value, out)
		}
	case *pyast.Attribute:
		collectNameIDs(n.Value, out)
	case *pyast.Subscript:
		collectNameIDs(n.Value, out)
		collectNameIDs(n.Slice, out)
	case *pyast.List:
		for _, e := range n.Elts {
			collectNameIDs(e, out)
		}
	case *pyast.Tuple:
		for _, e := range n.Elts {
			collectNameIDs(e, out)
		}
	case *pyast.Dict:
		for _, k := range n.Keys {
			collectNameIDs(k, out)
		}
		for _, val := range n.Values {
			collectNameIDs(val, out)
		}
	case *pyast.Starred:
		collectNameIDs(n.Value, out)
	case *pyast.IfExp:
		collectNameIDs(n.Test, out)
		collectNameIDs(n.Body, out)
		collectNameIDs(n.Orelse, out)
	case *pyast.Await:
		collectNameIDs(n.Value, out)
	case *pyast.Assign:
		for _, t := range n.Targets {
			collectNameIDs(t, out)
		}
		collectNameIDs(n.Value, out)
	case *pyast.ExprStmt:
		collectNameIDs(n.Value, out)
	case *pyast.If:
		collectNameIDs(n.Test, out)
		collectStmts(n.Body, out)
		collectStmts(n.Orelse, out)
	case *pyast.While:
		collectNameIDs(n.Test, out)
		collectStmts(n.Body, out)
		collectStmts(n.Orelse, out)
	case *pyast.For:
		collectNameIDs(n.Target, out)
		collectNameIDs(n.Iter, out)
		collectStmts(n.Body, out)
		collectStmts(n.Orelse, out)
	case *pyast.FunctionDef:
		for _, d := range n.Args.Defaults {
			collectNameIDs(d, out)
		}
		for _, d := range n.Decorator {
			collectNameIDs(d, out)
		}
		collectStmts(n.Body, out)
	case *pyast.AsyncFunctionDef:
		for _, d := range n.Args.Defaults {
			collectNameIDs(d, out)
		}
		for _, d := range n.Decorator {
			collectNameIDs(d, out)
		}
		collectStmts(n.Body, out)
	case *pyast.ClassDef:
		for _, b := range n.Bases {
			collectNameIDs(b, out)
		}
		collectStmts(n.Body, out)
	case *pyast.Return:
		collectNameIDs(n.Value, out)
	case *pyast.Raise:
		collectNameIDs(n.Exc, out)
	case *pyast.Try:
		collectStmts(n.Body, out)
		for _, h := range n.Handlers {
			collectStmts(h.Body, out)
		}
		collectStmts(n.Orelse, out)
		collectStmts(n.FinalBody, out)
	case *pyast.Delete:
		for _, t := range n.Targets {
			collectNameIDs(t, out)
		}
	case *pyast.Match:
		collectNameIDs(n.Subject, out)
		for _, c := range n.Cases {
			collectNameIDs(c.Value, out)
			collectStmts(c.Body, out)
		}
	}
}

func collectStmts(stmts []pyast.Stmt, out *[]string) {
	for _, s := range stmts {
		collectNameIDs(s, out)
	}
}
