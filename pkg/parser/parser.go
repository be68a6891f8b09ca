// Package parser implements a recursive descent parser for PL/0 that builds
// the high-level IR tree
package parser

import (
	"fmt"
	"strconv"

	"github.com/raymyers/ralph-pl0/pkg/ir"
	"github.com/raymyers/ralph-pl0/pkg/lexer"
	"github.com/raymyers/ralph-pl0/pkg/symbols"
)

// Parser parses PL/0 source code into an IR tree
type Parser struct {
	l         *lexer.Lexer
	curToken  lexer.Token
	peekToken lexer.Token
	errors    []string

	tree    *ir.Tree
	globals *symbols.Table // program scope: variables, constants, procedures
	depth   int            // procedure nesting depth
}

// New creates a new Parser for the given lexer
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:       l,
		tree:    ir.NewTree(),
		globals: symbols.NewTable(),
	}
	// Read two tokens to initialize curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// Errors returns the list of parsing errors
func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, fmt.Sprintf("line %d, col %d: %s",
		p.curToken.Line, p.curToken.Column, msg))
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) expect(t lexer.TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf("expected %s, got %s", t, p.curToken.Type))
	return false
}

// ParseProgram parses a whole program: block "."
func (p *Parser) ParseProgram() *ir.Tree {
	root := p.parseBlock(nil, p.globals, symbols.ClassGlobal)
	p.expect(lexer.TokenPeriod)
	if !p.curTokenIs(lexer.TokenEOF) {
		p.addError(fmt.Sprintf("unexpected %s after end of program", p.curToken.Type))
	}
	p.tree.Root = root
	return p.tree
}

// Globals returns the program scope
func (p *Parser) Globals() *symbols.Table {
	return p.globals
}

func (p *Parser) parseBlock(globals, locals *symbols.Table, class symbols.StorageClass) ir.NodeID {
	for p.curTokenIs(lexer.TokenConst) || p.curTokenIs(lexer.TokenVar) {
		isConst := p.curTokenIs(lexer.TokenConst)
		p.nextToken()
		for {
			if isConst {
				p.parseConstDef(locals)
			} else {
				p.parseVarDef(locals, class)
			}
			if !p.curTokenIs(lexer.TokenComma) {
				break
			}
			p.nextToken()
		}
		p.expect(lexer.TokenSemicolon)
	}

	scope := locals
	if globals != nil {
		scope = globals.Extend(locals)
	}

	var defs []ir.NodeID
	for p.curTokenIs(lexer.TokenProcedure) {
		if p.depth > 0 {
			p.addError("nested procedure declarations are not supported")
		}
		p.nextToken()
		name := p.curToken.Literal
		if !p.expect(lexer.TokenIdent) {
			return p.tree.Add(scope, &ir.Block{Globals: globals, Locals: locals})
		}
		p.expect(lexer.TokenSemicolon)

		sym := symbols.New(name, symbols.Function, symbols.ClassGlobal)
		if err := p.globals.Append(sym); err != nil {
			p.addError(err.Error())
		}
		p.depth++
		body := p.parseBlock(p.globals, symbols.NewTable(), symbols.ClassAuto)
		p.depth--
		p.expect(lexer.TokenSemicolon)
		defs = append(defs, p.tree.Add(scope, &ir.FunctionDef{Symbol: sym, Body: body}))
	}
	if globals != nil {
		// Procedures declared above are callable from this body.
		scope = globals.Extend(locals)
	}

	defList := p.tree.Add(scope, &ir.DefinitionList{Defs: defs})
	body := p.parseStatement(scope)
	if _, ok := p.tree.Payload(body).(*ir.StatList); !ok {
		body = p.tree.Add(scope, &ir.StatList{Children: []ir.NodeID{body}})
	}
	return p.tree.Add(scope, &ir.Block{Globals: globals, Locals: locals, Defs: defList, Body: body})
}

func (p *Parser) parseConstDef(locals *symbols.Table) {
	name := p.curToken.Literal
	if !p.expect(lexer.TokenIdent) {
		return
	}
	p.expect(lexer.TokenEql)
	value, ok := p.parseNumber()
	if !ok {
		return
	}
	if err := locals.Append(symbols.NewConst(name, value)); err != nil {
		p.addError(err.Error())
	}
}

func (p *Parser) parseVarDef(locals *symbols.Table, class symbols.StorageClass) {
	name := p.curToken.Literal
	if !p.expect(lexer.TokenIdent) {
		return
	}
	var dims []int
	for p.curTokenIs(lexer.TokenLBracket) {
		p.nextToken()
		n, ok := p.parseNumber()
		if ok && n <= 0 {
			p.addError(fmt.Sprintf("array dimension of %s must be positive", name))
		}
		dims = append(dims, int(n))
		p.expect(lexer.TokenRBracket)
	}

	var typ symbols.Type = symbols.Int
	if p.curTokenIs(lexer.TokenColon) {
		p.nextToken()
		t, ok := symbols.LookupType(p.curToken.Literal)
		if !ok || t.Kind() != symbols.KindInt {
			p.addError(fmt.Sprintf("unknown type %q", p.curToken.Literal))
		} else {
			typ = t
		}
		p.expect(lexer.TokenIdent)
	}
	if len(dims) > 0 {
		typ = symbols.Tarray{Elem: typ, Dims: dims}
	}
	if err := locals.Append(symbols.New(name, typ, class)); err != nil {
		p.addError(err.Error())
	}
}

func (p *Parser) parseNumber() (int64, bool) {
	lit := p.curToken.Literal
	if !p.expect(lexer.TokenNumber) {
		return 0, false
	}
	v, err := strconv.ParseInt(lit, 10, 32)
	if err != nil {
		p.addError(fmt.Sprintf("invalid number %s", lit))
		return 0, false
	}
	return v, true
}
