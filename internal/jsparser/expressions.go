package jsparser

import (
	"github.com/oxhq/tspyc/internal/cst"
	"github.com/oxhq/tspyc/internal/lexer"
)

// parseExpression is the single entry point used by every statement-level
// caller. It is an alias for parseAssignExpr: the comma operator isn't part
// of this dialect subset (spec section 1, Non-goals).
func (p *Parser) parseExpression() (*cst.Node, error) {
	return p.parseAssignExpr()
}

var compoundAssignRule = map[string]string{
	"+=": "assigned_add", "-=": "assigned_sub", "*=": "assigned_mult", "/=": "assigned_div",
}

func (p *Parser) parseAssignExpr() (*cst.Node, error) {
	line, col := p.tok.Line, p.tok.Col

	left, err := p.parseTernary()
	if err != nil {
		return nil, err
	}

	if p.isPunct("=") {
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		return cst.NewNode("assignment", line, col, left, right), nil
	}

	if rule, ok := compoundAssignRule[p.tok.Value]; ok && p.tok.Kind == lexer.Punct {
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		return cst.NewNode(rule, line, col, left, right), nil
	}

	return left, nil
}

func (p *Parser) parseTernary() (*cst.Node, error) {
	line, col := p.tok.Line, p.tok.Col
	test, err := p.parseNullish()
	if err != nil {
		return nil, err
	}
	if !p.isPunct("?") {
		return test, nil
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	then, err := p.parseAssignExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	els, err := p.parseAssignExpr()
	if err != nil {
		return nil, err
	}
	return cst.NewNode("inline_if", line, col, test, then, els), nil
}

func (p *Parser) parseNullish() (*cst.Node, error) {
	return p.parseBinaryLevel([]string{"??"}, p.parseLogicalOr)
}

func (p *Parser) parseLogicalOr() (*cst.Node, error) {
	return p.parseBinaryLevel([]string{"||"}, p.parseLogicalAnd)
}

func (p *Parser) parseLogicalAnd() (*cst.Node, error) {
	return p.parseBinaryLevel([]string{"&&"}, p.parseEquality)
}

func (p *Parser) parseEquality() (*cst.Node, error) {
	return p.parseBinaryLevel([]string{"===", "!==", "==", "!="}, p.parseRelational)
}

// parseRelational also recognizes the `x instanceof Y` keyword form (spec
// section 4.3 / Open Question) as rule "instanceof_expr", which lowers to
// the classic `isinstance(x, Y)` call. There is no second instanceof
// production: the alternate object-on-left comparison reading is already
// reachable unambiguously via `typeof x === y`.
func (p *Parser) parseRelational() (*cst.Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		line, col := p.tok.Line, p.tok.Col
		switch {
		case p.isPunct(">=") || p.isPunct("<=") || p.isPunct(">") || p.isPunct("<"):
			op := p.tok.Value
			if err := p.next(); err != nil {
				return nil, err
			}
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = cst.NewNode("boolean_operation", line, col, left, boolOpNode(line, col, op), right)
		case p.isKeyword("in"):
			if err := p.next(); err != nil {
				return nil, err
			}
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = cst.NewNode("boolean_operation", line, col, left, cst.NewNode("bool_op_in", line, col), right)
		case p.isKeyword("instanceof"):
			if err := p.next(); err != nil {
				return nil, err
			}
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = cst.NewNode("instanceof_expr", line, col, left, right)
		default:
			return left, nil
		}
	}
}

func boolOpNode(line, col int, op string) *cst.Node {
	switch op {
	case ">":
		return cst.NewNode("bool_op_gt", line, col)
	case "<":
		return cst.NewNode("bool_op_lt", line, col)
	case ">=":
		return cst.NewNode("bool_op_gte", line, col)
	case "<=":
		return cst.NewNode("bool_op_lte", line, col)
	case "==", "===":
		return cst.NewNode("bool_op_eq", line, col)
	case "!=", "!==":
		return cst.NewNode("bool_op_not_eq", line, col)
	case "&&":
		return cst.NewNode("bool_op_and", line, col)
	case "||", "??":
		return cst.NewNode("bool_op_or", line, col)
	}
	return cst.NewNode("bool_op_eq", line, col)
}

func (p *Parser) parseBinaryLevel(ops []string, next func() (*cst.Node, error)) (*cst.Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		matched := ""
		for _, op := range ops {
			if p.isPunct(op) {
				matched = op
				break
			}
		}
		if matched == "" {
			return left, nil
		}
		line, col := p.tok.Line, p.tok.Col
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = cst.NewNode("boolean_operation", line, col, left, boolOpNode(line, col, matched), right)
	}
}

func (p *Parser) parseAdditive() (*cst.Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.isPunct("+") || p.isPunct("-") {
		line, col := p.tok.Line, p.tok.Col
		rule := "add"
		if p.tok.Value == "-" {
			rule = "sub"
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = cst.NewNode(rule, line, col, left, right)
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (*cst.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isPunct("*") || p.isPunct("/") {
		line, col := p.tok.Line, p.tok.Col
		rule := "mult"
		if p.tok.Value == "/" {
			rule = "div"
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = cst.NewNode(rule, line, col, left, right)
	}
	return left, nil
}

func (p *Parser) parseUnary() (*cst.Node, error) {
	line, col := p.tok.Line, p.tok.Col

	switch {
	case p.isPunct("!"):
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return cst.NewNode("invert", line, col, operand), nil
	case p.isKeyword("typeof"):
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return cst.NewNode("typeof_expr", line, col, operand), nil
	case p.isKeyword("delete"):
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return cst.NewNode("delete_expr", line, col, operand), nil
	case p.isKeyword("await"):
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return cst.NewNode("await_expr", line, col, operand), nil
	case p.isPunct("-"):
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return cst.NewNode("negate", line, col, operand), nil
	case p.isPunct("++") || p.isPunct("--"):
		rule := "pre_increment"
		if p.tok.Value == "--" {
			rule = "pre_decrement"
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return cst.NewNode(rule, line, col, operand), nil
	case p.isPunct("..."):
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return cst.NewNode("rest_accessor", line, col, operand), nil
	}

	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (*cst.Node, error) {
	expr, err := p.parseCallMemberChain()
	if err != nil {
		return nil, err
	}
	if p.isPunct("++") || p.isPunct("--") {
		line, col := p.tok.Line, p.tok.Col
		rule := "increment"
		if p.tok.Value == "--" {
			rule = "decrement"
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		return cst.NewNode(rule, line, col, expr), nil
	}
	return expr, nil
}

// parseCallMemberChain handles `.member`, `[computed]`, and `(args)` postfix
// chains, recognizing `.length`/`.size` as "access_len" and `.filter(cb)`/
// `.map(cb)` with a single-argument callback as their own rules so the
// transformer can special-case them without re-deriving the shape (spec
// section 4.10).
func (p *Parser) parseCallMemberChain() (*cst.Node, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		line, col := p.tok.Line, p.tok.Col
		switch {
		case p.isPunct(".") || p.isPunct("?."):
			optional := p.tok.Value == "?."
			if err := p.next(); err != nil {
				return nil, err
			}
			member, err := p.expectIdentName()
			if err != nil {
				return nil, err
			}
			expr, err = p.parseMemberOrSpecialAccess(line, col, expr, member, optional)
			if err != nil {
				return nil, err
			}
		case p.isPunct("["):
			if err := p.next(); err != nil {
				return nil, err
			}
			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			expr = cst.NewNode("access_bracket", line, col, expr, idx)
		case p.isPunct("("):
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			expr = cst.NewNode("function_call", line, col, expr, args)
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseMemberOrSpecialAccess(line, col int, obj *cst.Node, member string, optional bool) (*cst.Node, error) {
	if (member == "length" || member == "size") && !p.isPunct("(") {
		return cst.NewNode("access_len", line, col, obj), nil
	}
	if (member == "filter" || member == "map") && p.isPunct("(") {
		start := p.snapshot()
		args, err := p.parseCallArgs()
		if err == nil && len(args.Children) == 1 {
			if cb, ok := cst.AsNode(args.Children[0]); ok &&
				(cb.Rule == "arrow_function" || cb.Rule == "arrow_function_one_arg") {
				rule := "access_filter"
				if member == "map" {
					rule = "access_map"
				}
				return cst.NewNode(rule, line, col, obj, cb), nil
			}
		}
		p.restore(start)
	}
	rule := "access_dot"
	if optional {
		rule = "access_dot_optional"
	}
	return cst.NewNode(rule, line, col, obj, identNode(line, col, member)), nil
}

func (p *Parser) parseCallArgs() (*cst.Node, error) {
	line, col := p.tok.Line, p.tok.Col
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []cst.Value
	for !p.isPunct(")") {
		if p.isPunct("...") {
			sline, scol := p.tok.Line, p.tok.Col
			if err := p.next(); err != nil {
				return nil, err
			}
			e, err := p.parseAssignExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, cst.NewNode("call_arg_spread", sline, scol, e))
		} else {
			e, err := p.parseAssignExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, e)
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
	return cst.NewNode("call_args", line, col, args...), nil
}

func (p *Parser) parsePrimary() (*cst.Node, error) {
	line, col := p.tok.Line, p.tok.Col

	switch {
	case p.isPunct("("):
		return p.parseParenOrArrow(line, col)
	case p.isPunct("["):
		return p.parseArrayLiteral(line, col)
	case p.isPunct("{"):
		return p.parseObjectLiteral(line, col)
	case p.isKeyword("new"):
		return p.parseNewExpr(line, col)
	case p.isKeyword("function"):
		return p.parseFunctionExpr(line, col, false)
	case p.isKeyword("async"):
		if err := p.next(); err != nil {
			return nil, err
		}
		return p.parseAsyncArrowOrExpr(line, col)
	case p.isKeyword("true"):
		if err := p.next(); err != nil {
			return nil, err
		}
		return cst.NewNode("bool_true", line, col), nil
	case p.isKeyword("false"):
		if err := p.next(); err != nil {
			return nil, err
		}
		return cst.NewNode("bool_false", line, col), nil
	case p.isKeyword("null"):
		if err := p.next(); err != nil {
			return nil, err
		}
		return cst.NewNode("null", line, col), nil
	case p.isKeyword("undefined"):
		if err := p.next(); err != nil {
			return nil, err
		}
		return cst.NewNode("undefined", line, col), nil
	case p.tok.Kind == lexer.Number:
		v := p.tok.Value
		if err := p.next(); err != nil {
			return nil, err
		}
		return strTokNode("num", line, col, cst.TokNumber, v), nil
	case p.tok.Kind == lexer.String:
		v := p.tok.Value
		if err := p.next(); err != nil {
			return nil, err
		}
		return strTokNode("str", line, col, cst.TokString, v), nil
	case p.tok.Kind == lexer.TemplateString:
		v := p.tok.Value
		if err := p.next(); err != nil {
			return nil, err
		}
		return strTokNode("str_multi_line", line, col, cst.TokTemplateString, v), nil
	case p.tok.Kind == lexer.Regex:
		v := p.tok.Value
		if err := p.next(); err != nil {
			return nil, err
		}
		return strTokNode("reg_ex", line, col, cst.TokRegex, v), nil
	case p.isKeyword("this"):
		if err := p.next(); err != nil {
			return nil, err
		}
		return identNode(line, col, "this"), nil
	case p.isKeyword("super"):
		if err := p.next(); err != nil {
			return nil, err
		}
		return identNode(line, col, "super"), nil
	case p.tok.Kind == lexer.Ident || p.tok.Kind == lexer.Keyword:
		return p.parseIdentOrArrow(line, col)
	default:
		return nil, p.errf("unexpected token %q", p.tok.Value)
	}
}

// parseIdentOrArrow handles both a bare identifier reference and a
// single-parameter arrow function `x => expr` (rule "arrow_function_one_arg").
func (p *Parser) parseIdentOrArrow(line, col int) (*cst.Node, error) {
	name, err := p.expectIdentName()
	if err != nil {
		return nil, err
	}
	if p.isPunct("=>") {
		if err := p.next(); err != nil {
			return nil, err
		}
		body, err := p.parseArrowBody()
		if err != nil {
			return nil, err
		}
		return cst.NewNode("arrow_function_one_arg", line, col, identNode(line, col, name), body), nil
	}
	return identNode(line, col, name), nil
}

// parseParenOrArrow disambiguates `(expr)` from `(args) => body` by
// snapshotting parser state and trying the arrow-parameter-list parse first.
func (p *Parser) parseParenOrArrow(line, col int) (*cst.Node, error) {
	snap := p.snapshot()
	if args, ok := p.tryParseArrowParams(); ok {
		if err := p.skipTypeAnnotation(); err != nil {
			return nil, err
		}
		if p.isPunct("=>") {
			if err := p.next(); err != nil {
				return nil, err
			}
			body, err := p.parseArrowBody()
			if err != nil {
				return nil, err
			}
			return cst.NewNode("arrow_function", line, col, args, body), nil
		}
	}
	p.restore(snap)

	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *Parser) tryParseArrowParams() (*cst.Node, bool) {
	args, err := p.parseFuncArgs()
	if err != nil {
		return nil, false
	}
	return args, true
}

func (p *Parser) parseArrowBody() (*cst.Node, error) {
	if p.isPunct("{") {
		return p.parseBlock()
	}
	line, col := p.tok.Line, p.tok.Col
	e, err := p.parseAssignExpr()
	if err != nil {
		return nil, err
	}
	return cst.NewNode("body", line, col, cst.NewNode("return_statement", line, col, e)), nil
}

func (p *Parser) parseAsyncArrowOrExpr(line, col int) (*cst.Node, error) {
	if p.isPunct("(") {
		snap := p.snapshot()
		if args, ok := p.tryParseArrowParams(); ok {
			if err := p.skipTypeAnnotation(); err != nil {
				return nil, err
			}
			if p.isPunct("=>") {
				if err := p.next(); err != nil {
					return nil, err
				}
				body, err := p.parseArrowBody()
				if err != nil {
					return nil, err
				}
				return cst.NewNode("async_arrow_function", line, col, args, body), nil
			}
		}
		p.restore(snap)
	}
	if p.tok.Kind == lexer.Ident {
		snap := p.snapshot()
		name, err := p.expectIdentName()
		if err == nil && p.isPunct("=>") {
			if err := p.next(); err != nil {
				return nil, err
			}
			body, err := p.parseArrowBody()
			if err != nil {
				return nil, err
			}
			return cst.NewNode("async_arrow_function", line, col,
				cst.NewNode("func_args", line, col, cst.NewNode("func_arg_plain", line, col, identNode(line, col, name))),
				body), nil
		}
		p.restore(snap)
	}
	return p.parseCallMemberChain()
}

func (p *Parser) parseFunctionExpr(line, col int, isAsync bool) (*cst.Node, error) {
	if err := p.expectKeyword("function"); err != nil {
		return nil, err
	}
	name := ""
	if p.tok.Kind == lexer.Ident {
		n, err := p.expectIdentName()
		if err != nil {
			return nil, err
		}
		name = n
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
	if name != "" {
		return cst.NewNode("function_expr_named", line, col, identNode(line, col, name), args, body), nil
	}
	return cst.NewNode("function_expr", line, col, args, body), nil
}

func (p *Parser) parseNewExpr(line, col int) (*cst.Node, error) {
	if err := p.expectKeyword("new"); err != nil {
		return nil, err
	}
	callee, err := p.parseCallMemberChainNoCall()
	if err != nil {
		return nil, err
	}
	var args *cst.Node
	if p.isPunct("(") {
		args, err = p.parseCallArgs()
		if err != nil {
			return nil, err
		}
	} else {
		args = cst.NewNode("call_args", line, col)
	}
	return cst.NewNode("new_class", line, col, callee, args), nil
}

// parseCallMemberChainNoCall parses a `new` callee: identifier plus any
// `.member` accesses, but stops before a call so the outer parseNewExpr can
// claim the first `(...)` as the constructor's argument list.
func (p *Parser) parseCallMemberChainNoCall() (*cst.Node, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.isPunct(".") {
		line, col := p.tok.Line, p.tok.Col
		if err := p.next(); err != nil {
			return nil, err
		}
		member, err := p.expectIdentName()
		if err != nil {
			return nil, err
		}
		expr = cst.NewNode("access_dot", line, col, expr, identNode(line, col, member))
	}
	return expr, nil
}

func (p *Parser) parseArrayLiteral(line, col int) (*cst.Node, error) {
	if err := p.expectPunct("["); err != nil {
		return nil, err
	}
	var items []cst.Value
	for !p.isPunct("]") {
		iline, icol := p.tok.Line, p.tok.Col
		if p.isPunct("...") {
			if err := p.next(); err != nil {
				return nil, err
			}
			e, err := p.parseAssignExpr()
			if err != nil {
				return nil, err
			}
			items = append(items, cst.NewNode("list_item_rest", iline, icol, e))
		} else {
			e, err := p.parseAssignExpr()
			if err != nil {
				return nil, err
			}
			items = append(items, e)
		}
		if p.isPunct(",") {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expectPunct("]"); err != nil {
		return nil, err
	}
	return cst.NewNode("list", line, col, cst.NewNode("list_items", line, col, items...)), nil
}

func (p *Parser) parseObjectLiteral(line, col int) (*cst.Node, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var items []cst.Value
	for !p.isPunct("}") {
		item, err := p.parseDictItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.isPunct(",") {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return cst.NewNode("dict", line, col, cst.NewNode("dict_items", line, col, items...)), nil
}

func (p *Parser) parseDictItem() (*cst.Node, error) {
	line, col := p.tok.Line, p.tok.Col

	if p.isPunct("...") {
		if err := p.next(); err != nil {
			return nil, err
		}
		e, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		return cst.NewNode("dict_item_rest", line, col, e), nil
	}

	var keyNode *cst.Node
	var key string
	if p.tok.Kind == lexer.String {
		key = p.tok.Value
		keyNode = strTokNode("str", line, col, cst.TokString, key)
		if err := p.next(); err != nil {
			return nil, err
		}
	} else if p.isPunct("[") {
		if err := p.next(); err != nil {
			return nil, err
		}
		e, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct("]"); err != nil {
			return nil, err
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		val, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		return cst.NewNode("dict_item_computed", line, col, e, val), nil
	} else {
		n, err := p.expectIdentName()
		if err != nil {
			return nil, err
		}
		key = n
		keyNode = identNode(line, col, n)
	}

	if p.isPunct("(") {
		args, err := p.parseFuncArgs()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return cst.NewNode("dict_item_func", line, col, keyNode, args, body), nil
	}

	if p.isPunct(":") {
		if err := p.next(); err != nil {
			return nil, err
		}
		val, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		return cst.NewNode("dict_item_default", line, col, keyNode, val), nil
	}

	// shorthand `{x}` === `{x: x}`
	return cst.NewNode("dict_item_short", line, col, identNode(line, col, key)), nil
}
