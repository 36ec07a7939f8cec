package jsparser

import "github.com/oxhq/tspyc/internal/cst"

func identNode(line, col int, name string) *cst.Node {
	return cst.NewNode("identifier", line, col, cst.Token{Kind: cst.TokIdent, Value: name, Line: line, Col: col})
}

func strTokNode(rule string, line, col int, kind cst.TokenKind, raw string) *cst.Node {
	return cst.NewNode(rule, line, col, cst.Token{Kind: kind, Value: raw, Line: line, Col: col})
}
