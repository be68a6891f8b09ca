package parser

import (
	"fmt"

	"github.com/raymyers/ralph-pl0/pkg/ir"
	"github.com/raymyers/ralph-pl0/pkg/lexer"
	"github.com/raymyers/ralph-pl0/pkg/symbols"
)

func (p *Parser) parseStatement(scope *symbols.Table) ir.NodeID {
	switch p.curToken.Type {
	case lexer.TokenIdent:
		return p.parseAssign(scope)
	case lexer.TokenCall:
		return p.parseCall(scope)
	case lexer.TokenBegin:
		return p.parseBeginEnd(scope)
	case lexer.TokenIf:
		return p.parseIf(scope)
	case lexer.TokenWhile:
		return p.parseWhile(scope)
	case lexer.TokenFor:
		return p.parseFor(scope)
	case lexer.TokenPrint:
		p.nextToken()
		expr := p.parseExpression(scope)
		return p.tree.Add(scope, &ir.PrintStat{Expr: expr})
	case lexer.TokenRead:
		p.nextToken()
		target, indices := p.parseTarget(scope)
		if target == nil {
			return p.empty(scope)
		}
		read := p.tree.Add(scope, &ir.ReadExpr{})
		return p.tree.Add(scope, &ir.AssignStat{Target: target, Indices: indices, Expr: read})
	}
	// empty statement
	return p.empty(scope)
}

func (p *Parser) empty(scope *symbols.Table) ir.NodeID {
	return p.tree.Add(scope, &ir.EmptyStat{})
}

// parseTarget parses an assignable variable with its indices
func (p *Parser) parseTarget(scope *symbols.Table) (*symbols.Symbol, []ir.NodeID) {
	name := p.curToken.Literal
	if !p.expect(lexer.TokenIdent) {
		return nil, nil
	}
	sym := scope.Find(name)
	switch {
	case sym == nil:
		p.addError(fmt.Sprintf("undefined variable %s", name))
		return nil, nil
	case !sym.InMemory():
		p.addError(fmt.Sprintf("cannot assign to %s", name))
		return nil, nil
	}
	return sym, p.parseIndices(scope, sym)
}

func (p *Parser) parseAssign(scope *symbols.Table) ir.NodeID {
	target, indices := p.parseTarget(scope)
	p.expect(lexer.TokenBecomes)
	expr := p.parseExpression(scope)
	if target == nil {
		return p.empty(scope)
	}
	return p.tree.Add(scope, &ir.AssignStat{Target: target, Indices: indices, Expr: expr})
}

func (p *Parser) parseCall(scope *symbols.Table) ir.NodeID {
	p.nextToken() // consume 'call'
	name := p.curToken.Literal
	if !p.expect(lexer.TokenIdent) {
		return p.empty(scope)
	}
	sym := scope.Find(name)
	if sym == nil || sym.Type.Kind() != symbols.KindFunction {
		p.addError(fmt.Sprintf("%s is not a procedure", name))
	}

	var args []ir.NodeID
	if p.curTokenIs(lexer.TokenLParen) {
		p.nextToken()
		for {
			args = append(args, p.parseExpression(scope))
			if !p.curTokenIs(lexer.TokenComma) {
				break
			}
			p.nextToken()
		}
		p.expect(lexer.TokenRParen)
	}
	call := p.tree.Add(scope, &ir.CallExpr{Function: sym, Args: args})
	return p.tree.Add(scope, &ir.CallStat{Call: call})
}

func (p *Parser) parseBeginEnd(scope *symbols.Table) ir.NodeID {
	p.nextToken() // consume 'begin'
	children := []ir.NodeID{p.parseStatement(scope)}
	for p.curTokenIs(lexer.TokenSemicolon) {
		p.nextToken()
		children = append(children, p.parseStatement(scope))
	}
	p.expect(lexer.TokenEnd)
	return p.tree.Add(scope, &ir.StatList{Children: children})
}

func (p *Parser) parseIf(scope *symbols.Table) ir.NodeID {
	p.nextToken() // consume 'if'
	cond := p.parseCondition(scope)
	p.expect(lexer.TokenThen)
	then := p.parseStatement(scope)
	els := ir.NoNode
	if p.curTokenIs(lexer.TokenElse) {
		p.nextToken()
		els = p.parseStatement(scope)
	}
	return p.tree.Add(scope, &ir.IfStat{Cond: cond, Then: then, Else: els})
}

func (p *Parser) parseWhile(scope *symbols.Table) ir.NodeID {
	p.nextToken() // consume 'while'
	cond := p.parseCondition(scope)
	p.expect(lexer.TokenDo)
	body := p.parseStatement(scope)
	return p.tree.Add(scope, &ir.WhileStat{Cond: cond, Body: body})
}

// for x := a to b [by s] do body
func (p *Parser) parseFor(scope *symbols.Table) ir.NodeID {
	p.nextToken() // consume 'for'
	name := p.curToken.Literal
	target, indices := p.parseTarget(scope)
	if target != nil && len(indices) > 0 {
		p.addError(fmt.Sprintf("loop variable %s must be a scalar", name))
	}
	p.expect(lexer.TokenBecomes)
	from := p.parseExpression(scope)
	p.expect(lexer.TokenTo)
	to := p.parseExpression(scope)
	var step ir.NodeID
	if p.curTokenIs(lexer.TokenBy) {
		p.nextToken()
		step = p.parseExpression(scope)
	} else {
		step = p.tree.Add(scope, &ir.Const{Value: 1})
	}
	p.expect(lexer.TokenDo)
	body := p.parseStatement(scope)
	if target == nil || len(indices) > 0 {
		return p.empty(scope)
	}

	init := p.tree.Add(scope, &ir.AssignStat{Target: target, Expr: from})
	testVar := p.tree.Add(scope, &ir.Var{Name: name, Symbol: target})
	cond := p.tree.Add(scope, &ir.BinExpr{Op: "leq", Left: testVar, Right: to})
	stepVar := p.tree.Add(scope, &ir.Var{Name: name, Symbol: target})
	next := p.tree.Add(scope, &ir.BinExpr{Op: "plus", Left: stepVar, Right: step})
	update := p.tree.Add(scope, &ir.AssignStat{Target: target, Expr: next})
	return p.tree.Add(scope, &ir.ForStat{Init: init, Cond: cond, Step: update, Body: body})
}
