// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package parser

import (
	"strings"

	"github.com/tcovert2015/vlfront/pkg/ast"
	"github.com/tcovert2015/vlfront/pkg/token"
)

// binInfo associates a token kind with its binary operator and precedence
// level. Levels run from tight (12, "**") to loose (2, "||"); "**" is the
// one right-associative operator and parseBinary treats it as such. Ternary
// is handled outside this table since it is not left-associative-binary.
type binInfo struct {
	op    ast.BinOp
	level int
}

var binTable = map[token.Kind]binInfo{
	token.POW:     {ast.OpPow, 12},
	token.STAR:    {ast.OpMul, 11},
	token.SLASH:   {ast.OpDiv, 11},
	token.PERCENT: {ast.OpMod, 11},
	token.PLUS:    {ast.OpAdd, 10},
	token.MINUS:   {ast.OpSub, 10},
	token.SHL:     {ast.OpShl, 9},
	token.SHR:     {ast.OpShr, 9},
	token.SSHL:    {ast.OpSShl, 9},
	token.SSHR:    {ast.OpSShr, 9},
	token.LT:      {ast.OpLt, 8},
	token.LE:      {ast.OpLe, 8},
	token.GT:      {ast.OpGt, 8},
	token.GE:      {ast.OpGe, 8},
	token.EQ:      {ast.OpEq, 7},
	token.NE:      {ast.OpNe, 7},
	token.CEQ:     {ast.OpCaseEq, 7},
	token.CNE:     {ast.OpCaseNe, 7},
	token.AMP:     {ast.OpBAnd, 6},
	token.CARET:   {ast.OpBXor, 5},
	token.XNOR1:   {ast.OpBXnor, 5},
	token.XNOR2:   {ast.OpBXnor, 5},
	token.PIPE:    {ast.OpBOr, 4},
	token.LAND:    {ast.OpLAnd, 3},
	token.LOR:     {ast.OpLOr, 2},
}

// parseExpr parses a full expression, including the ternary operator at
// the loosest precedence level, below every binTable level
// (right-associative).
func (p *Parser) parseExpr() (ast.Expression, error) {
	cond, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}

	if tok, ok := p.accept(token.QUESTION); ok {
		t, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}

		f, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		tern := &ast.TernaryOp{Cond: cond, T: t, F: f}
		tern.SetPos(tok.Pos)

		return tern, nil
	}

	return cond, nil
}

// parseBinary implements precedence climbing starting at minLevel. All
// binary operators except ** are left-associative; ** is right-associative
// (handled by recursing into the same level on its right-hand side rather
// than level+1).
func (p *Parser) parseBinary(minLevel int) (ast.Expression, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		info, ok := binTable[p.cur().Kind]
		if !ok || info.level < minLevel {
			return lhs, nil
		}

		opTok := p.advance()

		nextMin := info.level + 1
		if info.op == ast.OpPow {
			nextMin = info.level
		}

		rhs, err := p.parseBinary(nextMin)
		if err != nil {
			return nil, err
		}

		bin := &ast.BinaryOp{Op: info.op, Lhs: lhs, Rhs: rhs}
		bin.SetPos(opTok.Pos)
		lhs = bin
	}
}

var unaryOps = map[token.Kind]ast.UnOp{
	token.MINUS: ast.OpNeg,
	token.PLUS:  ast.OpPlus,
	token.BANG:  ast.OpLNot,
	token.TILDE: ast.OpBNot,
	token.AMP:   ast.OpReduceAnd,
	token.NAND:  ast.OpReduceNand,
	token.PIPE:  ast.OpReduceOr,
	token.NOR:   ast.OpReduceNor,
	token.CARET: ast.OpReduceXor,
	token.XNOR1: ast.OpReduceXnor,
	token.XNOR2: ast.OpReduceXnor,
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	if op, ok := unaryOps[p.cur().Kind]; ok {
		tok := p.advance()

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		u := &ast.UnaryOp{Op: op, Operand: operand}
		u.SetPos(tok.Pos)

		return u, nil
	}

	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by zero or more
// bit-select/part-select suffixes.
func (p *Parser) parsePostfix() (ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.at(token.LBRACKET) {
		expr, err = p.parseSelectSuffix(expr)
		if err != nil {
			return nil, err
		}
	}

	return expr, nil
}

func (p *Parser) parseSelectSuffix(target ast.Expression) (ast.Expression, error) {
	tok := p.advance() // '['

	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	switch {
	case p.at(token.COLON):
		p.advance()

		lsb, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}

		ps := &ast.PartSelect{Target: target, MSB: first, LSB: lsb}
		ps.SetPos(tok.Pos)

		return ps, nil
	case p.at(token.PLUSCOLON), p.at(token.MINUSCOLON):
		st := ast.SelectPlus
		if p.cur().Kind == token.MINUSCOLON {
			st = ast.SelectMinus
		}

		p.advance()

		width, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}

		bs := &ast.BitSelect{Target: target, Index: first, SelectType: st, Width: width}
		bs.SetPos(tok.Pos)

		return bs, nil
	default:
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}

		bs := &ast.BitSelect{Target: target, Index: first, SelectType: ast.SelectNormal}
		bs.SetPos(tok.Pos)

		return bs, nil
	}
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.cur()

	switch tok.Kind {
	case token.NUMBER:
		p.advance()
		return ast.NewNumberLiteral(tok), nil
	case token.STRING:
		p.advance()

		s := &ast.StringLiteral{Value: tok.Text}
		s.SetPos(tok.Pos)

		return s, nil
	case token.SYSTEM_TASK:
		return p.parseSystemTaskExpr()
	case token.LPAREN:
		p.advance()

		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}

		return e, nil
	case token.LBRACE:
		return p.parseBraceExpr()
	case token.IDENT:
		return p.parseIdentOrCall()
	default:
		return nil, p.errorExpected("expression")
	}
}

func (p *Parser) parseSystemTaskExpr() (ast.Expression, error) {
	tok := p.advance()

	call := &ast.SystemTaskCall{Name: tok.Text}
	call.SetPos(tok.Pos)

	if _, ok := p.accept(token.LPAREN); ok {
		if !p.at(token.RPAREN) {
			for {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}

				call.Args = append(call.Args, arg)

				if _, ok := p.accept(token.COMMA); ok {
					continue
				}

				break
			}
		}

		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
	}

	return call, nil
}

// parseBraceExpr parses "{a, b, c}" (Concat) or "{count{value}}"
// (Replication).
func (p *Parser) parseBraceExpr() (ast.Expression, error) {
	tok := p.advance() // '{'

	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.at(token.LBRACE) {
		// Replication: {count{value}}.
		p.advance()

		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.RBRACE); err != nil {
			return nil, err
		}

		if _, err := p.expect(token.RBRACE); err != nil {
			return nil, err
		}

		rep := &ast.Replication{Count: first, Value: value}
		rep.SetPos(tok.Pos)

		return rep, nil
	}

	parts := []ast.Expression{first}

	for {
		if _, ok := p.accept(token.COMMA); ok {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			parts = append(parts, e)

			continue
		}

		break
	}

	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}

	c := &ast.Concat{Parts: parts}
	c.SetPos(tok.Pos)

	return c, nil
}

// parseIdentOrCall parses a (possibly hierarchical) identifier or a
// function call "name(args)".
func (p *Parser) parseIdentOrCall() (ast.Expression, error) {
	first := p.advance()
	path := []string{first.Text}

	for p.at(token.DOT) {
		p.advance()

		seg, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}

		path = append(path, seg.Text)
	}

	if p.at(token.LPAREN) {
		p.advance()

		var args []ast.Expression

		if !p.at(token.RPAREN) {
			for {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}

				args = append(args, arg)

				if _, ok := p.accept(token.COMMA); ok {
					continue
				}

				break
			}
		}

		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}

		call := &ast.FunctionCall{Name: path[len(path)-1], Args: args}
		call.SetPos(first.Pos)

		return call, nil
	}

	id := &ast.Identifier{Name: strings.Join(path, "."), Path: path}
	id.SetPos(first.Pos)

	return id, nil
}
