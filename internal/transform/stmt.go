package transform

import (
	"github.com/oxhq/tspyc/internal/cst"
	"github.com/oxhq/tspyc/internal/pyast"
)

func init() {
	register("declare_var", handleDeclareVar)
	register("declare_var_not_initialized", handleDeclareVarNotInit)
	register("declare_descruct_list_var", handleDestructListVar)
	register("declare_descruct_dict_var", handleDestructDictVar)

	register("if_statement", handleIfStatement)
	register("while_statement", handleWhileStatement)
	register("default_for", handleSimpleFor)
	register("multi_for", handleSimpleFor)
	register("ranged_for", handleRangedFor)
	register("switch", handleSwitch)
	register("try_catch", handleTryCatch)

	register("return_statement", handleReturn)
	register("throw_statement", handleThrow)
	register("break_statement", func(t *Transformer, n *cst.Node) (any, error) { return &pyast.Break{}, nil })
	register("continue_statement", func(t *Transformer, n *cst.Node) (any, error) { return &pyast.Continue{}, nil })

	register("import_stmt_all", handleImportAll)
	register("import_stmt_as", handleImportAs)
	register("import_stmt_from", handleImportFrom)

	register("function", funcDeclHandler(false))
	register("async_function", funcDeclHandler(true))

	register("class_statement", handleClassStatement)
}

func handleDeclareVar(t *Transformer, n *cst.Node) (any, error) {
	target, err := t.transformExpr(n.Child(0))
	if err != nil {
		return nil, err
	}
	value, err := t.transformExpr(n.Child(1))
	if err != nil {
		return nil, err
	}
	return &pyast.Assign{Targets: []pyast.Expr{target}, Value: value}, nil
}

func handleDeclareVarNotInit(t *Transformer, n *cst.Node) (any, error) {
	target, err := t.transformExpr(n.Child(0))
	if err != nil {
		return nil, err
	}
	return &pyast.Assign{Targets: []pyast.Expr{target}, Value: pyast.None()}, nil
}

// handleDestructListVar lowers `let [a, , ...rest] = src;` into a deepcopy
// plus sequential front-pops (spec section 4.10): each named position pops
// index 0 off a working copy, holes pop-and-discard to keep later indices
// aligned, and a trailing rest binder takes whatever the copy holds once
// every named position has popped its share.
func handleDestructListVar(t *Transformer, n *cst.Node) (any, error) {
	src, err := t.transformExpr(n.Child(1))
	if err != nil {
		return nil, err
	}
	targetsNode, _ := cst.AsNode(n.Child(0))
	tmp := t.Names.NextTemp("tmp_cp")

	stmts := []pyast.Stmt{&pyast.Assign{
		Targets: []pyast.Expr{&pyast.Name{Id: tmp}},
		Value:   deepcopyCall(src),
	}}

	for _, c := range targetsNode.Children {
		item, ok := cst.AsNode(c)
		if !ok {
			continue
		}
		switch item.Rule {
		case "destruct_target_name":
			idNode, _ := cst.AsNode(item.Child(0))
			tok, _ := cst.AsToken(idNode.Child(0))
			stmts = append(stmts, &pyast.Assign{
				Targets: []pyast.Expr{&pyast.Name{Id: t.Names.Ident(tok.Value)}},
				Value:   popCall(tmp, pyast.Int(0)),
			})
		case "destruct_target_hole":
			stmts = append(stmts, &pyast.ExprStmt{Value: popCall(tmp, pyast.Int(0))})
		case "destruct_target_rest":
			idNode, _ := cst.AsNode(item.Child(0))
			tok, _ := cst.AsToken(idNode.Child(0))
			stmts = append(stmts, &pyast.Assign{
				Targets: []pyast.Expr{&pyast.Name{Id: t.Names.Ident(tok.Value)}},
				Value:   &pyast.Name{Id: tmp},
			})
		}
	}

	return stmts, nil
}

// handleDestructDictVar mirrors handleDestructListVar using key-pops
// instead of positional front-pops (spec section 4.10).
func handleDestructDictVar(t *Transformer, n *cst.Node) (any, error) {
	src, err := t.transformExpr(n.Child(1))
	if err != nil {
		return nil, err
	}
	targetsNode, _ := cst.AsNode(n.Child(0))
	tmp := t.Names.NextTemp("tmp_cp")

	stmts := []pyast.Stmt{&pyast.Assign{
		Targets: []pyast.Expr{&pyast.Name{Id: tmp}},
		Value:   deepcopyCall(src),
	}}

	for _, c := range targetsNode.Children {
		item, ok := cst.AsNode(c)
		if !ok {
			continue
		}
		switch item.Rule {
		case "destruct_target_key":
			keyNode, _ := cst.AsNode(item.Child(0))
			keyTok, _ := cst.AsToken(keyNode.Child(0))
			aliasNode, _ := cst.AsNode(item.Child(1))
			aliasTok, _ := cst.AsToken(aliasNode.Child(0))
			stmts = append(stmts, &pyast.Assign{
				Targets: []pyast.Expr{&pyast.Name{Id: t.Names.Ident(aliasTok.Value)}},
				Value:   popCall(tmp, pyast.Str(keyTok.Value)),
			})
		case "destruct_target_rest":
			idNode, _ := cst.AsNode(item.Child(0))
			tok, _ := cst.AsToken(idNode.Child(0))
			stmts = append(stmts, &pyast.Assign{
				Targets: []pyast.Expr{&pyast.Name{Id: t.Names.Ident(tok.Value)}},
				Value:   &pyast.Name{Id: tmp},
			})
		}
	}

	return stmts, nil
}

func deepcopyCall(v pyast.Expr) pyast.Expr {
	return &pyast.Call{Func: &pyast.Attribute{Value: &pyast.Name{Id: "copy"}, Attr: "deepcopy"}, Args: []pyast.Expr{v}}
}

func popCall(recv string, arg pyast.Expr) pyast.Expr {
	return &pyast.Call{Func: &pyast.Attribute{Value: &pyast.Name{Id: recv}, Attr: "pop"}, Args: []pyast.Expr{arg}}
}

// handleIfStatement folds `if/else if/else` into nested pyast.If nodes,
// built from the tail backward so each else-if becomes the prior branch's
// sole Orelse entry (spec section 4.6).
func handleIfStatement(t *Transformer, n *cst.Node) (any, error) {
	test, err := t.transformExpr(n.Child(0))
	if err != nil {
		return nil, err
	}
	bodyNode, _ := cst.AsNode(n.Child(1))
	body, err := t.transformBody(bodyNode)
	if err != nil {
		return nil, err
	}

	var orelse []pyast.Stmt
	elseVal := n.Child(3)
	if elseNode, ok := cst.AsNode(elseVal); ok {
		orelse, err = t.transformBody(elseNode)
		if err != nil {
			return nil, err
		}
	}

	elifsNode, _ := cst.AsNode(n.Child(2))
	for i := len(elifsNode.Children) - 1; i >= 0; i-- {
		elif, ok := cst.AsNode(elifsNode.Children[i])
		if !ok {
			continue
		}
		etest, err := t.transformExpr(elif.Child(0))
		if err != nil {
			return nil, err
		}
		ebodyNode, _ := cst.AsNode(elif.Child(1))
		ebody, err := t.transformBody(ebodyNode)
		if err != nil {
			return nil, err
		}
		orelse = []pyast.Stmt{&pyast.If{Test: etest, Body: ebody, Orelse: orelse}}
	}

	return &pyast.If{Test: test, Body: body, Orelse: orelse}, nil
}

func handleWhileStatement(t *Transformer, n *cst.Node) (any, error) {
	test, err := t.transformExpr(n.Child(0))
	if err != nil {
		return nil, err
	}
	bodyNode, _ := cst.AsNode(n.Child(1))
	body, err := t.transformBody(bodyNode)
	if err != nil {
		return nil, err
	}
	return &pyast.While{Test: test, Body: body}, nil
}

// handleSimpleFor covers both default_for (single binder) and multi_for
// (destructured tuple binder): `for...of` iterates the collection's values
// and `for...in` iterates its keys, both of which land directly on
// Python's `for x in y:` with no further conversion (spec section 4.6).
func handleSimpleFor(t *Transformer, n *cst.Node) (any, error) {
	iter, err := t.transformExpr(n.Child(2))
	if err != nil {
		return nil, err
	}
	bodyNode, _ := cst.AsNode(n.Child(3))
	body, err := t.transformBody(bodyNode)
	if err != nil {
		return nil, err
	}

	var target pyast.Expr
	if n.Rule == "multi_for" {
		targetsNode, _ := cst.AsNode(n.Child(0))
		var elts []pyast.Expr
		for _, c := range targetsNode.Children {
			item, ok := cst.AsNode(c)
			if !ok {
				continue
			}
			idNode, _ := cst.AsNode(item.Child(0))
			tok, _ := cst.AsToken(idNode.Child(0))
			elts = append(elts, &pyast.Name{Id: t.Names.Ident(tok.Value)})
		}
		target = &pyast.Tuple{Elts: elts}
	} else {
		tv, err := t.transformExpr(n.Child(0))
		if err != nil {
			return nil, err
		}
		target = tv
	}

	return &pyast.For{Target: target, Iter: iter, Body: body}, nil
}

// handleRangedFor desugars C-style `for(init;test;step)` into
// `init; while test: body; step` (spec section 4.6). step is folded into
// the same "body" transform as the loop body so the Hoist Registry sees one
// coherent statement list for splice bookkeeping; init is transformed on
// its own and returned ahead of the While, so the enclosing body's
// transform records and splices for it.
func handleRangedFor(t *Transformer, n *cst.Node) (any, error) {
	var initStmts []pyast.Stmt
	if initNode, ok := cst.AsNode(n.Child(0)); ok {
		s, err := t.transformStatement(initNode)
		if err != nil {
			return nil, err
		}
		initStmts = s
	}

	var test pyast.Expr = pyast.Bool(true)
	if testNode, ok := cst.AsNode(n.Child(1)); ok {
		tv, err := t.transformExpr(testNode)
		if err != nil {
			return nil, err
		}
		test = tv
	}

	bodyNode, _ := cst.AsNode(n.Child(3))
	bodyChildren := append([]cst.Value{}, bodyNode.Children...)
	if stepNode, ok := cst.AsNode(n.Child(2)); ok {
		bodyChildren = append(bodyChildren, stepNode)
	}
	combined := cst.NewNode("body", bodyNode.Line, bodyNode.Col, bodyChildren...)
	body, err := t.transformBody(combined)
	if err != nil {
		return nil, err
	}

	return append(initStmts, &pyast.While{Test: test, Body: body}), nil
}

// handleSwitch folds a switch statement into nested If/Elif/Else comparing
// the subject against each case's value by equality, dropping `break` (the
// parser already discards it) and mapping `default` to the final Orelse
// (spec section 4.6).
func handleSwitch(t *Transformer, n *cst.Node) (any, error) {
	subject, err := t.transformExpr(n.Child(0))
	if err != nil {
		return nil, err
	}
	bodyNode, _ := cst.AsNode(n.Child(1))

	var orelse []pyast.Stmt
	var cases []*cst.Node
	hasDefault := false
	for _, c := range bodyNode.Children {
		item, ok := cst.AsNode(c)
		if !ok {
			continue
		}
		if item.Rule == "switch_default" {
			hasDefault = true
			bn, _ := cst.AsNode(item.Child(0))
			orelse, err = t.transformBody(bn)
			if err != nil {
				return nil, err
			}
			continue
		}
		cases = append(cases, item)
	}

	if len(cases) == 0 && !hasDefault {
		return nil, &TransformError{
			Rule: n.Rule, Line: n.Line, Col: n.Col,
			Msg: "switch statement has zero cases",
		}
	}

	for i := len(cases) - 1; i >= 0; i-- {
		c := cases[i]
		test, err := t.transformExpr(c.Child(0))
		if err != nil {
			return nil, err
		}
		bn, _ := cst.AsNode(c.Child(1))
		body, err := t.transformBody(bn)
		if err != nil {
			return nil, err
		}
		cmp := &pyast.Compare{Left: subject, Ops: []pyast.Op{pyast.Eq{}}, Comparators: []pyast.Expr{test}}
		orelse = []pyast.Stmt{&pyast.If{Test: cmp, Body: body, Orelse: orelse}}
	}

	if len(orelse) == 0 {
		return nil, nil
	}
	return orelse, nil
}

func handleTryCatch(t *Transformer, n *cst.Node) (any, error) {
	bodyNode, _ := cst.AsNode(n.Child(0))
	body, err := t.transformBody(bodyNode)
	if err != nil {
		return nil, err
	}

	var handlers []*pyast.ExceptHandler
	if clause, ok := cst.AsNode(n.Child(1)); ok {
		name := ""
		if idNode, ok := cst.AsNode(clause.Child(0)); ok {
			tok, _ := cst.AsToken(idNode.Child(0))
			name = t.Names.Ident(tok.Value)
		}
		cbodyNode, _ := cst.AsNode(clause.Child(1))
		cbody, err := t.transformBody(cbodyNode)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, &pyast.ExceptHandler{Type: &pyast.Name{Id: "Exception"}, Name: name, Body: cbody})
	}

	var finalBody []pyast.Stmt
	if fn, ok := cst.AsNode(n.Child(2)); ok {
		finalBody, err = t.transformBody(fn)
		if err != nil {
			return nil, err
		}
	}

	return &pyast.Try{Body: body, Handlers: handlers, FinalBody: finalBody}, nil
}

func handleReturn(t *Transformer, n *cst.Node) (any, error) {
	if cst.IsAbsent(n.Child(0)) {
		return &pyast.Return{}, nil
	}
	v, err := t.transformExpr(n.Child(0))
	if err != nil {
		return nil, err
	}
	return &pyast.Return{Value: v}, nil
}

func handleThrow(t *Transformer, n *cst.Node) (any, error) {
	v, err := t.transformExpr(n.Child(0))
	if err != nil {
		return nil, err
	}
	return &pyast.Raise{Exc: v}, nil
}

func modulePathValue(v cst.Value) string {
	modNode, ok := cst.AsNode(v)
	if !ok {
		return ""
	}
	tok, _ := cst.AsToken(modNode.Child(0))
	return moduleFromPath(tok.Value)
}

func handleImportAll(t *Transformer, n *cst.Node) (any, error) {
	return &pyast.Import{Names: []pyast.Alias{{Name: modulePathValue(n.Child(0))}}}, nil
}

func handleImportAs(t *Transformer, n *cst.Node) (any, error) {
	idNode, _ := cst.AsNode(n.Child(0))
	tok, _ := cst.AsToken(idNode.Child(0))
	return &pyast.Import{Names: []pyast.Alias{{Name: modulePathValue(n.Child(1)), AsName: t.Names.Ident(tok.Value)}}}, nil
}

func handleImportFrom(t *Transformer, n *cst.Node) (any, error) {
	namesNode, _ := cst.AsNode(n.Child(0))
	modPath := modulePathValue(n.Child(1))

	var aliases []pyast.Alias
	for _, c := range namesNode.Children {
		item, ok := cst.AsNode(c)
		if !ok {
			continue
		}
		nameNode, _ := cst.AsNode(item.Child(0))
		aliasNode, _ := cst.AsNode(item.Child(1))
		nameTok, _ := cst.AsToken(nameNode.Child(0))
		aliasTok, _ := cst.AsToken(aliasNode.Child(0))
		a := pyast.Alias{Name: nameTok.Value}
		if aliasTok.Value != nameTok.Value {
			a.AsName = t.Names.Ident(aliasTok.Value)
		}
		aliases = append(aliases, a)
	}

	return &pyast.ImportFrom{Module: modPath, Names: aliases, Level: 0}, nil
}

// moduleFromPath strips the surrounding quote characters the lexer
// preserved verbatim on the raw string token; any remaining path-separator-
// to-dot conversion happens in post-processing (spec section 4.9).
func moduleFromPath(raw string) string {
	v := raw
	if len(v) >= 2 {
		v = v[1 : len(v)-1]
	}
	return v
}

func funcDeclHandler(isAsync bool) handler {
	return func(t *Transformer, n *cst.Node) (any, error) {
		idNode, _ := cst.AsNode(n.Child(0))
		tok, _ := cst.AsToken(idNode.Child(0))
		args, err := t.transformFuncArgs(n.Child(1))
		if err != nil {
			return nil, err
		}
		bodyNode, _ := cst.AsNode(n.Child(2))
		body, err := t.transformFunctionBody(bodyNode)
		if err != nil {
			return nil, err
		}
		name := t.Names.Ident(tok.Value)
		if isAsync {
			return &pyast.AsyncFunctionDef{Name: name, Args: args, Body: body}, nil
		}
		return &pyast.FunctionDef{Name: name, Args: args, Body: body}, nil
	}
}

// handleClassStatement builds a ClassDef from constructor/method/getter/
// setter/field members. Getters and setters are emitted as plain methods
// decorated with @property and @<name>.setter respectively, the standard
// idiom for the equivalent JS accessor pair (spec section 4.6).
func handleClassStatement(t *Transformer, n *cst.Node) (any, error) {
	idNode, _ := cst.AsNode(n.Child(0))
	tok, _ := cst.AsToken(idNode.Child(0))

	var bases []pyast.Expr
	if baseNode, ok := cst.AsNode(n.Child(1)); ok {
		baseTok, _ := cst.AsToken(baseNode.Child(0))
		bases = append(bases, &pyast.Name{Id: t.Names.Ident(baseTok.Value)})
	}

	classBody, _ := cst.AsNode(n.Child(2))
	var body []pyast.Stmt

	for _, c := range classBody.Children {
		member, ok := cst.AsNode(c)
		if !ok {
			continue
		}
		stmt, err := t.transformClassMember(member)
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			body = append(body, stmt)
		}
	}

	if len(body) == 0 {
		body = []pyast.Stmt{&pyast.ExprStmt{Value: pyast.None()}}
	}

	return &pyast.ClassDef{Name: t.Names.Ident(tok.Value), Bases: bases, Body: body}, nil
}

func (t *Transformer) transformClassMember(n *cst.Node) (pyast.Stmt, error) {
	switch n.Rule {
	case "constructor":
		args, err := t.transformFuncArgs(n.Child(0))
		if err != nil {
			return nil, err
		}
		args.Positional = append([]pyast.Arg{{Name: t.thisID}}, args.Positional...)
		bodyNode, _ := cst.AsNode(n.Child(1))
		body, err := t.transformFunctionBody(bodyNode)
		if err != nil {
			return nil, err
		}
		return &pyast.FunctionDef{Name: "__init__", Args: args, Body: body}, nil
	case "method", "async_method":
		idNode, _ := cst.AsNode(n.Child(0))
		tok, _ := cst.AsToken(idNode.Child(0))
		args, err := t.transformFuncArgs(n.Child(1))
		if err != nil {
			return nil, err
		}
		staticNode, _ := cst.AsNode(n.Child(3))
		isStatic := staticNode != nil && staticNode.Rule == "is_static"
		if !isStatic {
			args.Positional = append([]pyast.Arg{{Name: t.thisID}}, args.Positional...)
		}
		bodyNode, _ := cst.AsNode(n.Child(2))
		body, err := t.transformFunctionBody(bodyNode)
		if err != nil {
			return nil, err
		}
		var decorator []pyast.Expr
		if isStatic {
			decorator = append(decorator, &pyast.Name{Id: "staticmethod"})
		}
		name := t.Names.Ident(tok.Value)
		if n.Rule == "async_method" {
			return &pyast.AsyncFunctionDef{Name: name, Args: args, Body: body, Decorator: decorator}, nil
		}
		return &pyast.FunctionDef{Name: name, Args: args, Body: body, Decorator: decorator}, nil
	case "getter":
		idNode, _ := cst.AsNode(n.Child(0))
		tok, _ := cst.AsToken(idNode.Child(0))
		args, err := t.transformFuncArgs(n.Child(1))
		if err != nil {
			return nil, err
		}
		args.Positional = append([]pyast.Arg{{Name: t.thisID}}, args.Positional...)
		bodyNode, _ := cst.AsNode(n.Child(2))
		body, err := t.transformFunctionBody(bodyNode)
		if err != nil {
			return nil, err
		}
		return &pyast.FunctionDef{Name: t.Names.Ident(tok.Value), Args: args, Body: body,
			Decorator: []pyast.Expr{&pyast.Call{Func: &pyast.Name{Id: "property"}}}}, nil
	case "setter":
		idNode, _ := cst.AsNode(n.Child(0))
		tok, _ := cst.AsToken(idNode.Child(0))
		args, err := t.transformFuncArgs(n.Child(1))
		if err != nil {
			return nil, err
		}
		args.Positional = append([]pyast.Arg{{Name: t.thisID}}, args.Positional...)
		bodyNode, _ := cst.AsNode(n.Child(2))
		body, err := t.transformFunctionBody(bodyNode)
		if err != nil {
			return nil, err
		}
		propName := t.Names.Ident(tok.Value)
		return &pyast.FunctionDef{Name: propName, Args: args, Body: body,
			Decorator: []pyast.Expr{&pyast.Call{Func: &pyast.Name{Id: propName + ".setter"}}}}, nil
	case "class_field":
		idNode, _ := cst.AsNode(n.Child(0))
		tok, _ := cst.AsToken(idNode.Child(0))
		var value pyast.Expr = pyast.None()
		if !cst.IsAbsent(n.Child(1)) {
			v, err := t.transformExpr(n.Child(1))
			if err != nil {
				return nil, err
			}
			value = v
		}
		return &pyast.Assign{Targets: []pyast.Expr{&pyast.Name{Id: t.Names.Ident(tok.Value)}}, Value: value}, nil
	default:
		return nil, &TransformError{Rule: n.Rule, Line: n.Line, Col: n.Col, Msg: "unrecognized class member"}
	}
}
