package jsparser

import (
	"github.com/oxhq/tspyc/internal/cst"
	"github.com/oxhq/tspyc/internal/lexer"
)

// parseStatement dispatches on the current token to one concrete statement
// rule. Unlike the lark grammar this mirrors, there is no intermediate
// "statement" first-bucket wrapper node: the parser emits the concrete rule
// directly, which is semantically equivalent and saves the transformer a
// trivial unwrap step.
func (p *Parser) parseStatement() (*cst.Node, error) {
	line, col := p.tok.Line, p.tok.Col

	if p.isKeyword("export") {
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.isKeyword("default") {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
		return p.parseStatement()
	}

	if p.isKeyword("declare") {
		if err := p.next(); err != nil {
			return nil, err
		}
		return p.parseStatement()
	}

	switch {
	case p.isKeyword("interface"):
		return nil, p.skipInterface()
	case p.isKeyword("import"):
		return p.parseImport(line, col)
	case p.isKeyword("var") || p.isKeyword("let") || p.isKeyword("const"):
		return p.parseDeclareVar(line, col)
	case p.isKeyword("function"):
		return p.parseFunctionDecl(line, col, false)
	case p.isKeyword("async"):
		return p.parseAsyncStatement(line, col)
	case p.isKeyword("class"):
		return p.parseClass(line, col)
	case p.isKeyword("if"):
		return p.parseIf(line, col)
	case p.isKeyword("while"):
		return p.parseWhile(line, col)
	case p.isKeyword("for"):
		return p.parseFor(line, col)
	case p.isKeyword("switch"):
		return p.parseSwitch(line, col)
	case p.isKeyword("try"):
		return p.parseTryCatch(line, col)
	case p.isKeyword("return"):
		return p.parseReturn(line, col)
	case p.isKeyword("throw"):
		return p.parseThrow(line, col)
	case p.isKeyword("break"):
		if err := p.next(); err != nil {
			return nil, err
		}
		return cst.NewNode("break_statement", line, col), p.skipTerminator()
	case p.isKeyword("continue"):
		if err := p.next(); err != nil {
			return nil, err
		}
		return cst.NewNode("continue_statement", line, col), p.skipTerminator()
	case p.isPunct("{"):
		return p.parseBlock()
	case p.isPunct(";"):
		return nil, p.next()
	default:
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.skipTerminator(); err != nil {
			return nil, err
		}
		return expr, nil
	}
}

// skipInterface discards a TS `interface Name { ... }` block entirely; TS
// interfaces carry no runtime behavior and have no Python equivalent.
func (p *Parser) skipInterface() error {
	if err := p.next(); err != nil {
		return err
	}
	if _, err := p.expectIdentName(); err != nil {
		return err
	}
	if p.isPunct("<") {
		if err := p.skipTypeExpr(); err != nil {
			return err
		}
	}
	if p.isKeyword("extends") {
		if err := p.next(); err != nil {
			return err
		}
		if _, err := p.expectIdentName(); err != nil {
			return err
		}
	}
	depth := 0
	for {
		if p.isPunct("{") {
			depth++
		} else if p.isPunct("}") {
			depth--
			if depth == 0 {
				return p.next()
			}
		}
		if err := p.next(); err != nil {
			return err
		}
	}
}

// parseBlock parses a `{ ... }` block into rule "body", the generic
// statement-list container used for if/while/for/function bodies.
func (p *Parser) parseBlock() (*cst.Node, error) {
	line, col := p.tok.Line, p.tok.Col
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var stmts []cst.Value
	for !p.isPunct("}") && p.tok.Kind != lexer.EOF {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return cst.NewNode("body", line, col, stmts...), nil
}

func (p *Parser) parseImport(line, col int) (*cst.Node, error) {
	if err := p.expectKeyword("import"); err != nil {
		return nil, err
	}

	if p.tok.Kind == lexer.String {
		src := p.tok.Value
		if err := p.next(); err != nil {
			return nil, err
		}
		if err := p.skipTerminator(); err != nil {
			return nil, err
		}
		return cst.NewNode("import_stmt_all", line, col, strTokNode("module_path", line, col, cst.TokString, src)), nil
	}

	var names []cst.Value
	var defaultName string
	if !p.isPunct("{") {
		n, err := p.expectIdentName()
		if err != nil {
			return nil, err
		}
		defaultName = n
		if p.isPunct(",") {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if p.isPunct("{") {
		if err := p.next(); err != nil {
			return nil, err
		}
		for !p.isPunct("}") {
			name, err := p.expectIdentName()
			if err != nil {
				return nil, err
			}
			alias := name
			if p.isKeyword("as") {
				if err := p.next(); err != nil {
					return nil, err
				}
				alias, err = p.expectIdentName()
				if err != nil {
					return nil, err
				}
			}
			names = append(names, cst.NewNode("import_name", line, col,
				identNode(line, col, name),
				identNode(line, col, alias)))
			if p.isPunct(",") {
				if err := p.next(); err != nil {
					return nil, err
				}
			}
		}
		if err := p.expectPunct("}"); err != nil {
			return nil, err
		}
	}
	if err := p.expectKeyword("from"); err != nil {
		return nil, err
	}
	src := p.tok.Value
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.skipTerminator(); err != nil {
		return nil, err
	}

	mod := strTokNode("module_path", line, col, cst.TokString, src)
	if defaultName != "" {
		return cst.NewNode("import_stmt_as", line, col,
			identNode(line, col, defaultName), mod), nil
	}
	return cst.NewNode("import_stmt_from", line, col, cst.NewNode("import_names", line, col, names...), mod), nil
}

func (p *Parser) parseDeclareVar(line, col int) (*cst.Node, error) {
	if err := p.next(); err != nil { // var/let/const
		return nil, err
	}

	if p.isPunct("[") {
		return p.parseDestructList(line, col)
	}
	if p.isPunct("{") {
		return p.parseDestructDict(line, col)
	}

	name, err := p.expectIdentName()
	if err != nil {
		return nil, err
	}
	if err := p.skipTypeAnnotation(); err != nil {
		return nil, err
	}
	id := identNode(line, col, name)

	if !p.isPunct("=") {
		if err := p.skipTerminator(); err != nil {
			return nil, err
		}
		return cst.NewNode("declare_var_not_initialized", line, col, id), nil
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	val, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.skipTerminator(); err != nil {
		return nil, err
	}
	return cst.NewNode("declare_var", line, col, id, val), nil
}

// parseDestructList parses `let [a, b, ...rest] = src;` into rule
// "declare_descruct_list_var": children are the target list (rule
// "destruct_targets") and the source expression.
func (p *Parser) parseDestructList(line, col int) (*cst.Node, error) {
	targets, err := p.parseDestructTargetList("[", "]")
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("="); err != nil {
		return nil, err
	}
	src, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.skipTerminator(); err != nil {
		return nil, err
	}
	return cst.NewNode("declare_descruct_list_var", line, col, targets, src), nil
}

// parseDestructDict parses `let {a, b: c, ...rest} = src;` into rule
// "declare_descruct_dict_var" (the misspelling matches the rest of the
// codebase's naming for this concept, carried from the original transformer).
func (p *Parser) parseDestructDict(line, col int) (*cst.Node, error) {
	targets, err := p.parseDestructDictTargetList()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("="); err != nil {
		return nil, err
	}
	src, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.skipTerminator(); err != nil {
		return nil, err
	}
	return cst.NewNode("declare_descruct_dict_var", line, col, targets, src), nil
}

func (p *Parser) parseDestructTargetList(open, close string) (*cst.Node, error) {
	line, col := p.tok.Line, p.tok.Col
	if err := p.expectPunct(open); err != nil {
		return nil, err
	}
	var items []cst.Value
	for !p.isPunct(close) {
		if p.isPunct("...") {
			if err := p.next(); err != nil {
				return nil, err
			}
			name, err := p.expectIdentName()
			if err != nil {
				return nil, err
			}
			items = append(items, cst.NewNode("destruct_target_rest", line, col,
				identNode(line, col, name)))
		} else if p.isPunct(",") {
			items = append(items, cst.NewNode("destruct_target_hole", line, col))
		} else {
			name, err := p.expectIdentName()
			if err != nil {
				return nil, err
			}
			items = append(items, cst.NewNode("destruct_target_name", line, col,
				identNode(line, col, name)))
		}
		if p.isPunct(",") {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expectPunct(close); err != nil {
		return nil, err
	}
	return cst.NewNode("destruct_targets", line, col, items...), nil
}

func (p *Parser) parseDestructDictTargetList() (*cst.Node, error) {
	line, col := p.tok.Line, p.tok.Col
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var items []cst.Value
	for !p.isPunct("}") {
		if p.isPunct("...") {
			if err := p.next(); err != nil {
				return nil, err
			}
			name, err := p.expectIdentName()
			if err != nil {
				return nil, err
			}
			items = append(items, cst.NewNode("destruct_target_rest", line, col,
				identNode(line, col, name)))
		} else {
			key, err := p.expectIdentName()
			if err != nil {
				return nil, err
			}
			alias := key
			if p.isPunct(":") {
				if err := p.next(); err != nil {
					return nil, err
				}
				alias, err = p.expectIdentName()
				if err != nil {
					return nil, err
				}
			}
			items = append(items, cst.NewNode("destruct_target_key", line, col,
				identNode(line, col, key),
				identNode(line, col, alias)))
		}
		if p.isPunct(",") {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return cst.NewNode("destruct_targets", line, col, items...), nil
}

func (p *Parser) parseIf(line, col int) (*cst.Node, error) {
	if err := p.expectKeyword("if"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	test, err := p.parseExpression()
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

	var elifs []cst.Value
	var elseBody cst.Value = cst.Absent{}

	for p.isKeyword("else") {
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.isKeyword("if") {
			eline, ecol := p.tok.Line, p.tok.Col
			if err := p.next(); err != nil {
				return nil, err
			}
			if err := p.expectPunct("("); err != nil {
				return nil, err
			}
			etest, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			ebody, err := p.parseStatementOrBlockAsBody()
			if err != nil {
				return nil, err
			}
			elifs = append(elifs, cst.NewNode("else_if_statement", eline, ecol, etest, ebody))
			continue
		}
		eb, err := p.parseStatementOrBlockAsBody()
		if err != nil {
			return nil, err
		}
		elseBody = eb
		break
	}

	return cst.NewNode("if_statement", line, col, test, body,
		cst.NewNode("else_ifs", line, col, elifs...), elseBody), nil
}

// parseStatementOrBlockAsBody accepts either `{ ... }` or a single bare
// statement (`if (x) return;`) and always yields a "body" node.
func (p *Parser) parseStatementOrBlockAsBody() (*cst.Node, error) {
	if p.isPunct("{") {
		return p.parseBlock()
	}
	line, col := p.tok.Line, p.tok.Col
	s, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if s == nil {
		return cst.NewNode("body", line, col), nil
	}
	return cst.NewNode("body", line, col, s), nil
}

func (p *Parser) parseWhile(line, col int) (*cst.Node, error) {
	if err := p.expectKeyword("while"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	test, err := p.parseExpression()
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
	return cst.NewNode("while_statement", line, col, test, body), nil
}

func (p *Parser) parseReturn(line, col int) (*cst.Node, error) {
	if err := p.expectKeyword("return"); err != nil {
		return nil, err
	}
	if p.isPunct(";") || p.isPunct("}") {
		if err := p.skipTerminator(); err != nil {
			return nil, err
		}
		return cst.NewNode("return_statement", line, col, cst.Absent{}), nil
	}
	val, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.skipTerminator(); err != nil {
		return nil, err
	}
	return cst.NewNode("return_statement", line, col, val), nil
}

func (p *Parser) parseThrow(line, col int) (*cst.Node, error) {
	if err := p.expectKeyword("throw"); err != nil {
		return nil, err
	}
	val, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.skipTerminator(); err != nil {
		return nil, err
	}
	return cst.NewNode("throw_statement", line, col, val), nil
}

func (p *Parser) parseTryCatch(line, col int) (*cst.Node, error) {
	if err := p.expectKeyword("try"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	// catchClause is Absent when the source has no `catch` at all
	// (`try { } finally { }`), distinguishing that from a present-but-
	// binding-less `catch { }`.
	var catchClause cst.Value = cst.Absent{}
	if p.isKeyword("catch") {
		cline, ccol := p.tok.Line, p.tok.Col
		if err := p.next(); err != nil {
			return nil, err
		}
		catchName := cst.Value(cst.Absent{})
		if p.isPunct("(") {
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
			catchName = identNode(cline, ccol, n)
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
		}
		catchBody, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		catchClause = cst.NewNode("catch_clause", cline, ccol, catchName, catchBody)
	}

	finallyBody := cst.Value(cst.Absent{})
	if p.isKeyword("finally") {
		if err := p.next(); err != nil {
			return nil, err
		}
		fb, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		finallyBody = fb
	}

	return cst.NewNode("try_catch", line, col, body, catchClause, finallyBody), nil
}
