package parser

import (
	"fmt"

	"github.com/raymyers/ralph-pl0/pkg/ir"
	"github.com/raymyers/ralph-pl0/pkg/lexer"
	"github.com/raymyers/ralph-pl0/pkg/symbols"
)

// condition = "odd" expr | expr relop expr
func (p *Parser) parseCondition(scope *symbols.Table) ir.NodeID {
	if p.curTokenIs(lexer.TokenOdd) {
		p.nextToken()
		operand := p.parseExpression(scope)
		return p.tree.Add(scope, &ir.UnExpr{Op: "odd", Operand: operand})
	}
	left := p.parseExpression(scope)
	op := p.curToken.Type
	if !op.IsRelational() {
		p.addError(fmt.Sprintf("expected comparison operator, got %s", op))
		return left
	}
	p.nextToken()
	right := p.parseExpression(scope)
	return p.tree.Add(scope, &ir.BinExpr{Op: op.OperatorName(), Left: left, Right: right})
}

// expr = [ "+" | "-" ] term { ( "+" | "-" ) term }
func (p *Parser) parseExpression(scope *symbols.Table) ir.NodeID {
	var sign lexer.TokenType = lexer.TokenIllegal
	if p.curTokenIs(lexer.TokenPlus) || p.curTokenIs(lexer.TokenMinus) {
		sign = p.curToken.Type
		p.nextToken()
	}
	expr := p.parseTerm(scope)
	if sign != lexer.TokenIllegal {
		expr = p.tree.Add(scope, &ir.UnExpr{Op: sign.OperatorName(), Operand: expr})
	}
	for p.curTokenIs(lexer.TokenPlus) || p.curTokenIs(lexer.TokenMinus) {
		op := p.curToken.Type
		p.nextToken()
		right := p.parseTerm(scope)
		expr = p.tree.Add(scope, &ir.BinExpr{Op: op.OperatorName(), Left: expr, Right: right})
	}
	return expr
}

// term = factor { ( "*" | "/" ) factor }
func (p *Parser) parseTerm(scope *symbols.Table) ir.NodeID {
	expr := p.parseFactor(scope)
	for p.curTokenIs(lexer.TokenTimes) || p.curTokenIs(lexer.TokenSlash) {
		op := p.curToken.Type
		p.nextToken()
		right := p.parseFactor(scope)
		expr = p.tree.Add(scope, &ir.BinExpr{Op: op.OperatorName(), Left: expr, Right: right})
	}
	return expr
}

// factor = ident { "[" expr "]" } | number | "(" expr ")"
func (p *Parser) parseFactor(scope *symbols.Table) ir.NodeID {
	switch p.curToken.Type {
	case lexer.TokenIdent:
		name := p.curToken.Literal
		p.nextToken()
		sym := scope.Find(name)
		if sym == nil {
			// Resolution failures are reported by lowering.
			return p.tree.Add(scope, &ir.Var{Name: name})
		}
		if sym.Type.Kind() == symbols.KindFunction {
			p.addError(fmt.Sprintf("procedure %s used as a value", name))
		}
		if _, ok := sym.Type.(symbols.Tarray); ok {
			indices := p.parseIndices(scope, sym)
			return p.tree.Add(scope, &ir.ArrayElement{Symbol: sym, Indices: indices})
		}
		p.parseIndices(scope, sym)
		return p.tree.Add(scope, &ir.Var{Name: name, Symbol: sym})
	case lexer.TokenNumber:
		v, _ := p.parseNumber()
		return p.tree.Add(scope, &ir.Const{Value: v})
	case lexer.TokenLParen:
		p.nextToken()
		expr := p.parseExpression(scope)
		p.expect(lexer.TokenRParen)
		return expr
	}
	p.addError(fmt.Sprintf("unexpected %s in expression", p.curToken.Type))
	if !p.curTokenIs(lexer.TokenEOF) {
		p.nextToken()
	}
	return p.tree.Add(scope, &ir.Const{})
}

// parseIndices parses one bracketed index per dimension of sym
func (p *Parser) parseIndices(scope *symbols.Table, sym *symbols.Symbol) []ir.NodeID {
	dims := 0
	if arr, ok := sym.Type.(symbols.Tarray); ok {
		dims = len(arr.Dims)
	}
	var indices []ir.NodeID
	for p.curTokenIs(lexer.TokenLBracket) {
		p.nextToken()
		indices = append(indices, p.parseExpression(scope))
		p.expect(lexer.TokenRBracket)
	}
	if len(indices) != dims {
		p.addError(fmt.Sprintf("%s needs %d indices, got %d", sym.Name, dims, len(indices)))
	}
	return indices
}
