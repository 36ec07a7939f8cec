// Package jsparser is the Parser of spec section 4.1: it consumes UTF-8
// source text in one of two dialects (JS, TS) and yields a CST whose node
// labels correspond to grammar rule names consulted by internal/grammar and
// internal/transform. It is pure — it never builds Python AST nodes itself.
package jsparser

import (
	"fmt"

	"github.com/oxhq/tspyc/internal/cst"
	"github.com/oxhq/tspyc/internal/grammar"
	"github.com/oxhq/tspyc/internal/lexer"
)

// ParseError reports a grammar rule that could not consume the input at a
// given position, carrying line/column the way the original lark-based
// parser's exceptions did.
type ParseError struct {
	Line, Col int
	Msg       string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// Parser turns a token stream into a CST for one input dialect.
type Parser struct {
	dialect grammar.Dialect
	lex     *lexer.Lexer
	tok     lexer.Token
	peeked  *lexer.Token
}

// New constructs a parser for the given dialect over src. Grammar rule
// classification for this dialect is loaded via internal/grammar at
// construction time, per spec section 4.1 ("materializes a parser object").
func New(dialect grammar.Dialect, src string) (*Parser, error) {
	if _, err := grammar.Load(dialect); err != nil {
		return nil, err
	}
	p := &Parser{dialect: dialect, lex: lexer.New(src)}
	if err := p.next(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) next() error {
	if p.peeked != nil {
		p.tok = *p.peeked
		p.peeked = nil
		return nil
	}
	t, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

// parserState is a restorable snapshot of parse position, used to back out
// of a speculative parse (arrow-parameter-list vs. parenthesized expression,
// `.filter(cb)` vs. a plain call followed by member access).
type parserState struct {
	lex    lexer.Lexer
	tok    lexer.Token
	peeked *lexer.Token
}

func (p *Parser) snapshot() parserState {
	return parserState{lex: p.lex.Snapshot(), tok: p.tok, peeked: p.peeked}
}

func (p *Parser) restore(s parserState) {
	p.lex.Restore(s.lex)
	p.tok = s.tok
	p.peeked = s.peeked
}

func (p *Parser) peek2() (lexer.Token, error) {
	if p.peeked == nil {
		t, err := p.lex.Next()
		if err != nil {
			return lexer.Token{}, err
		}
		p.peeked = &t
	}
	return *p.peeked, nil
}

func (p *Parser) errf(format string, args ...any) error {
	return &ParseError{Line: p.tok.Line, Col: p.tok.Col, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) isPunct(v string) bool {
	return p.tok.Kind == lexer.Punct && p.tok.Value == v
}

func (p *Parser) isKeyword(v string) bool {
	return p.tok.Kind == lexer.Keyword && p.tok.Value == v
}

func (p *Parser) expectPunct(v string) error {
	if !p.isPunct(v) {
		return p.errf("expected %q, got %q", v, p.tok.Value)
	}
	return p.next()
}

func (p *Parser) expectKeyword(v string) error {
	if !p.isKeyword(v) {
		return p.errf("expected keyword %q, got %q", v, p.tok.Value)
	}
	return p.next()
}

func (p *Parser) expectIdentName() (string, error) {
	if p.tok.Kind != lexer.Ident && p.tok.Kind != lexer.Keyword {
		return "", p.errf("expected identifier, got %q", p.tok.Value)
	}
	v := p.tok.Value
	return v, p.next()
}

// Parse parses the whole file into a CST rooted at rule "start".
func (p *Parser) Parse() (*cst.Node, error) {
	var stmts []cst.Value
	for p.tok.Kind != lexer.EOF {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	return cst.NewNode("start", 1, 1, stmts...), nil
}

func (p *Parser) skipTerminator() error {
	if p.isPunct(";") {
		return p.next()
	}
	return nil
}

// skipTypeAnnotation consumes a TS `: Type` annotation (including generic
// `<...>` and array/union suffixes) without representing it in the CST —
// TS type annotations are declared "skip" rules (spec section 4.2).
func (p *Parser) skipTypeAnnotation() error {
	if p.dialect != grammar.TS {
		return nil
	}
	if !p.isPunct(":") {
		return nil
	}
	if err := p.next(); err != nil {
		return err
	}
	return p.skipTypeExpr()
}

func (p *Parser) skipTypeExpr() error {
	depth := 0
	for {
		switch {
		case p.isPunct("<") || p.isPunct("(") || p.isPunct("["):
			depth++
			if err := p.next(); err != nil {
				return err
			}
		case p.isPunct(">") || p.isPunct(")") || p.isPunct("]"):
			if depth == 0 {
				return nil
			}
			depth--
			if err := p.next(); err != nil {
				return err
			}
		case depth == 0 && (p.isPunct(",") || p.isPunct(";") || p.isPunct("=") ||
			p.isPunct("{") || p.isPunct(")") || p.tok.Kind == lexer.EOF):
			return nil
		default:
			if err := p.next(); err != nil {
				return err
			}
		}
	}
}
