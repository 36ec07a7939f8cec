package jsparser

import (
	"github.com/oxhq/tspyc/internal/cst"
	"github.com/oxhq/tspyc/internal/lexer"
)

// parseFor dispatches the three for-loop shapes onto distinct rules:
// C-style `for(init;test;step)` -> "ranged_for"; `for (let x of/in expr)`
// with a single identifier binder -> "default_for"; `for (let [k,v] of expr)`
// with a destructured tuple binder -> "multi_for" (spec section 4.6).
func (p *Parser) parseFor(line, col int) (*cst.Node, error) {
	if err := p.expectKeyword("for"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}

	if p.isPunct(";") {
		return p.parseRangedForTail(line, col, cst.Absent{})
	}

	if p.isKeyword("var") || p.isKeyword("let") || p.isKeyword("const") {
		kindLine, kindCol := p.tok.Line, p.tok.Col
		if err := p.next(); err != nil {
			return nil, err
		}

		if p.isPunct("[") {
			targets, err := p.parseDestructTargetList("[", "]")
			if err != nil {
				return nil, err
			}
			return p.parseForOfInTail(line, col, targets, true)
		}

		name, err := p.expectIdentName()
		if err != nil {
			return nil, err
		}
		if err := p.skipTypeAnnotation(); err != nil {
			return nil, err
		}
		id := identNode(kindLine, kindCol, name)

		if p.isKeyword("of") || p.isKeyword("in") {
			return p.parseForOfInTail(line, col, id, false)
		}

		// C-style: finish the declaration as the init clause.
		var init *cst.Node
		if p.isPunct("=") {
			if err := p.next(); err != nil {
				return nil, err
			}
			val, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			init = cst.NewNode("declare_var", kindLine, kindCol, id, val)
		} else {
			init = cst.NewNode("declare_var_not_initialized", kindLine, kindCol, id)
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return p.parseRangedForTail(line, col, init)
	}

	// init is a bare expression (assignment to an existing variable).
	init, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.isKeyword("of") || p.isKeyword("in") {
		return p.parseForOfInTail(line, col, init, false)
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return p.parseRangedForTail(line, col, init)
}

func (p *Parser) parseForOfInTail(line, col int, target cst.Value, isTuple bool) (*cst.Node, error) {
	isOf := p.isKeyword("of")
	if err := p.next(); err != nil { // of/in
		return nil, err
	}
	iter, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.parseStatementOrBlockAsBody()
	if err != nil {
		return nil, err
	}
	kind := cst.NewNode("for_kind_of", line, col)
	if !isOf {
		kind = cst.NewNode("for_kind_in", line, col)
	}
	rule := "default_for"
	if isTuple {
		rule = "multi_for"
	}
	return cst.NewNode(rule, line, col, target, kind, iter, body), nil
}

func (p *Parser) parseRangedForTail(line, col int, init cst.Value) (*cst.Node, error) {
	if init == nil {
		init = cst.Absent{}
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	var test cst.Value = cst.Absent{}
	if !p.isPunct(";") {
		t, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		test = t
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	var step cst.Value = cst.Absent{}
	if !p.isPunct(")") {
		s, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		step = s
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.parseStatementOrBlockAsBody()
	if err != nil {
		return nil, err
	}
	return cst.NewNode("ranged_for", line, col, init, test, step, body), nil
}

func (p *Parser) parseSwitch(line, col int) (*cst.Node, error) {
	if err := p.expectKeyword("switch"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	subject, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}

	var cases []cst.Value
	for !p.isPunct("}") {
		cline, ccol := p.tok.Line, p.tok.Col
		if p.isKeyword("case") {
			if err := p.next(); err != nil {
				return nil, err
			}
			test, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(":"); err != nil {
				return nil, err
			}
			body, err := p.parseCaseBody()
			if err != nil {
				return nil, err
			}
			cases = append(cases, cst.NewNode("switch_case", cline, ccol, test, body))
			continue
		}
		if p.isKeyword("default") {
			if err := p.next(); err != nil {
				return nil, err
			}
			if err := p.expectPunct(":"); err != nil {
				return nil, err
			}
			body, err := p.parseCaseBody()
			if err != nil {
				return nil, err
			}
			cases = append(cases, cst.NewNode("switch_default", cline, ccol, body))
			continue
		}
		return nil, p.errf("expected case/default inside switch, got %q", p.tok.Value)
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return cst.NewNode("switch", line, col, subject, cst.NewNode("switch_body", line, col, cases...)), nil
}

// parseCaseBody consumes statements up to the next case/default/closing
// brace, dropping a trailing `break;` (fall-through folds to if/elif/else
// per spec section 4.6, so `break` is redundant and is not represented).
func (p *Parser) parseCaseBody() (*cst.Node, error) {
	line, col := p.tok.Line, p.tok.Col
	var stmts []cst.Value
	for !p.isKeyword("case") && !p.isKeyword("default") && !p.isPunct("}") {
		if p.isKeyword("break") {
			if err := p.next(); err != nil {
				return nil, err
			}
			if err := p.skipTerminator(); err != nil {
				return nil, err
			}
			continue
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	return cst.NewNode("body", line, col, stmts...), nil
}

func (p *Parser) parseAsyncStatement(line, col int) (*cst.Node, error) {
	if err := p.expectKeyword("async"); err != nil {
		return nil, err
	}
	if p.isKeyword("function") {
		return p.parseFunctionDecl(line, col, true)
	}
	expr, err := p.parseAsyncArrowOrExpr(line, col)
	if err != nil {
		return nil, err
	}
	if err := p.skipTerminator(); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) parseFunctionDecl(line, col int, isAsync bool) (*cst.Node, error) {
	if err := p.expectKeyword("function"); err != nil {
		return nil, err
	}
	name, err := p.expectIdentName()
	if err != nil {
		return nil, err
	}
	args, err := p.parseFuncArgs()
	if err != nil {
		return nil, err
	}
	if err := p.skipTypeAnnotation(); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	rule := "function"
	if isAsync {
		rule = "async_function"
	}
	return cst.NewNode(rule, line, col, identNode(line, col, name), args, body), nil
}

// parseFuncArgs parses `(a, b = 1, ...rest)` into rule "func_args", each
// element one of func_arg_plain/func_arg_default/func_arg_rest.
func (p *Parser) parseFuncArgs() (*cst.Node, error) {
	line, col := p.tok.Line, p.tok.Col
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []cst.Value
	for !p.isPunct(")") {
		aline, acol := p.tok.Line, p.tok.Col
		if p.isPunct("...") {
			if err := p.next(); err != nil {
				return nil, err
			}
			n, err := p.expectIdentName()
			if err != nil {
				return nil, err
			}
			if err := p.skipTypeAnnotation(); err != nil {
				return nil, err
			}
			args = append(args, cst.NewNode("func_arg_rest", aline, acol, identNode(aline, acol, n)))
		} else {
			n, err := p.expectIdentName()
			if err != nil {
				return nil, err
			}
			if p.isPunct("?") {
				if err := p.next(); err != nil {
					return nil, err
				}
			}
			if err := p.skipTypeAnnotation(); err != nil {
				return nil, err
			}
			if p.isPunct("=") {
				if err := p.next(); err != nil {
					return nil, err
				}
				val, err := p.parseAssignExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, cst.NewNode("func_arg_default", aline, acol, identNode(aline, acol, n), val))
			} else {
				args = append(args, cst.NewNode("func_arg_plain", aline, acol, identNode(aline, acol, n)))
			}
		}
		if p.isPunct(",") {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return cst.NewNode("func_args", line, col, args...), nil
}

// parseClass parses a class declaration body into "constructor"/"method"/
// "async_method"/"getter"/"setter" members, per spec section 4.6.
func (p *Parser) parseClass(line, col int) (*cst.Node, error) {
	if err := p.expectKeyword("class"); err != nil {
		return nil, err
	}
	name, err := p.expectIdentName()
	if err != nil {
		return nil, err
	}
	var base cst.Value = cst.Absent{}
	if p.isKeyword("extends") {
		if err := p.next(); err != nil {
			return nil, err
		}
		bn, err := p.expectIdentName()
		if err != nil {
			return nil, err
		}
		if p.isPunct("<") {
			if err := p.skipTypeExpr(); err != nil {
				return nil, err
			}
		}
		base = identNode(line, col, bn)
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}

	var members []cst.Value
	for !p.isPunct("}") {
		m, err := p.parseClassMember()
		if err != nil {
			return nil, err
		}
		if m != nil {
			members = append(members, m)
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return cst.NewNode("class_statement", line, col, identNode(line, col, name), base,
		cst.NewNode("class_body", line, col, members...)), nil
}

func (p *Parser) parseClassMember() (*cst.Node, error) {
	mline, mcol := p.tok.Line, p.tok.Col

	if p.isPunct(";") {
		return nil, p.next()
	}

	isStatic := false
	if p.isKeyword("static") {
		isStatic = true
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	isAsync := false
	if p.isKeyword("async") {
		isAsync = true
		if err := p.next(); err != nil {
			return nil, err
		}
	}

	if p.isKeyword("get") || p.isKeyword("set") {
		isGetter := p.isKeyword("get")
		if err := p.next(); err != nil {
			return nil, err
		}
		name, err := p.expectIdentName()
		if err != nil {
			return nil, err
		}
		args, err := p.parseFuncArgs()
		if err != nil {
			return nil, err
		}
		if err := p.skipTypeAnnotation(); err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		rule := "getter"
		if !isGetter {
			rule = "setter"
		}
		return cst.NewNode(rule, mline, mcol, identNode(mline, mcol, name), args, body), nil
	}

	// property field (skip bucket in the spec's ambient class shape — we
	// represent it minimally so the parser doesn't choke on TS class fields).
	if p.isPrivateOrFieldStart() {
		return p.parseClassField(mline, mcol, isStatic)
	}

	name, err := p.expectIdentName()
	if err != nil {
		return nil, err
	}
	if p.isPunct("?") {
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	if name == "constructor" {
		args, err := p.parseFuncArgs()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return cst.NewNode("constructor", mline, mcol, args, body), nil
	}

	args, err := p.parseFuncArgs()
	if err != nil {
		return nil, err
	}
	if err := p.skipTypeAnnotation(); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	rule := "method"
	if isAsync {
		rule = "async_method"
	}
	staticFlag := cst.NewNode("not_static", mline, mcol)
	if isStatic {
		staticFlag = cst.NewNode("is_static", mline, mcol)
	}
	return cst.NewNode(rule, mline, mcol, identNode(mline, mcol, name), args, body, staticFlag), nil
}

func (p *Parser) isPrivateOrFieldStart() bool {
	if p.tok.Kind != lexer.Ident && p.tok.Kind != lexer.Keyword {
		return false
	}
	nxt, err := p.peek2()
	if err != nil {
		return false
	}
	return nxt.Value == "=" || nxt.Value == ";" || nxt.Value == ":"
}

func (p *Parser) parseClassField(line, col int, isStatic bool) (*cst.Node, error) {
	name, err := p.expectIdentName()
	if err != nil {
		return nil, err
	}
	if p.isPunct("?") {
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	if err := p.skipTypeAnnotation(); err != nil {
		return nil, err
	}
	var val cst.Value = cst.Absent{}
	if p.isPunct("=") {
		if err := p.next(); err != nil {
			return nil, err
		}
		v, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		val = v
	}
	if err := p.skipTerminator(); err != nil {
		return nil, err
	}
	staticFlag := cst.NewNode("not_static", line, col)
	if isStatic {
		staticFlag = cst.NewNode("is_static", line, col)
	}
	return cst.NewNode("class_field", line, col, identNode(line, col, name), val, staticFlag), nil
}
