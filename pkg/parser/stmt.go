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
	"github.com/tcovert2015/vlfront/pkg/ast"
	"github.com/tcovert2015/vlfront/pkg/token"
)

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.cur().Kind {
	case token.BEGIN:
		return p.parseBegin()
	case token.IF:
		return p.parseIf()
	case token.CASE, token.CASEX, token.CASEZ:
		return p.parseCase()
	case token.FOR:
		return p.parseFor()
	case token.WHILE:
		return p.parseWhile()
	case token.REPEAT:
		return p.parseRepeat()
	case token.FOREVER:
		return p.parseForever()
	case token.TRIGGER:
		return p.parseEventTrigger()
	case token.DISABLE:
		return p.parseDisable()
	case token.SYSTEM_TASK:
		return p.parseSystemTaskStatement()
	case token.IDENT:
		// "modname instname(...)" and "modname #(...) instname(...)" are
		// module instantiations, distinguished from a task call or
		// assignment by a second identifier (or a param-override '#')
		// immediately following the first.
		if p.peekKind(1) == token.IDENT || p.peekKind(1) == token.HASH {
			return p.parseModuleInstance()
		}

		return p.parseAssignOrTaskCall()
	case token.SEMI:
		// Null statement.
		pos := p.cur().Pos
		p.advance()
		b := &ast.Begin{}
		b.SetPos(pos)

		return b, nil
	default:
		return p.parseAssignOrTaskCall()
	}
}

func (p *Parser) parseBegin() (*ast.Begin, error) {
	tok := p.advance()

	b := &ast.Begin{}
	b.SetPos(tok.Pos)

	if _, ok := p.accept(token.COLON); ok {
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}

		b.Name = name.Text
	}

	for !p.at(token.END) {
		p.collectAttributes()

		if isDeclStart(p.cur().Kind) {
			decl, err := p.parseLocalDecl()
			if err != nil {
				return nil, err
			}

			if d, ok := decl.(attrSetter); ok {
				p.finish(d)
			}

			b.Decls = append(b.Decls, decl)

			continue
		}

		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		if a, ok := s.(attrSetter); ok {
			p.finish(a)
		}

		b.Stmts = append(b.Stmts, s)
	}

	if _, err := p.expect(token.END); err != nil {
		return nil, err
	}

	return b, nil
}

func isDeclStart(k token.Kind) bool {
	switch k {
	case token.WIRE, token.REG, token.INTEGER, token.REAL, token.REALTIME, token.TIME, token.EVENT,
		token.PARAMETER, token.LOCALPARAM:
		return true
	}

	return false
}

func (p *Parser) parseLocalDecl() (ast.Node, error) {
	if p.at(token.PARAMETER) || p.at(token.LOCALPARAM) {
		return p.parseParamDecl()
	}

	return p.parseNetDecl()
}

func (p *Parser) parseIf() (*ast.If, error) {
	tok := p.advance()

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	ifStmt := &ast.If{Cond: cond, Then: then}
	ifStmt.SetPos(tok.Pos)

	if _, ok := p.accept(token.ELSE); ok {
		elseStmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		ifStmt.Else = elseStmt
	}

	return ifStmt, nil
}

func (p *Parser) parseCase() (*ast.Case, error) {
	tok := p.advance()

	kind := ast.CaseNormal
	switch tok.Kind {
	case token.CASEX:
		kind = ast.CaseX
	case token.CASEZ:
		kind = ast.CaseZ
	}

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	c := &ast.Case{Kind: kind, Expr: expr}
	c.SetPos(tok.Pos)

	for !p.at(token.ENDCASE) {
		if _, ok := p.accept(token.DEFAULT); ok {
			if _, ok := p.accept(token.COLON); ok {
				_ = ok
			}

			body, err := p.parseStatement()
			if err != nil {
				return nil, err
			}

			c.Default = body

			continue
		}

		var labels []ast.Expression

		for {
			lbl, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			labels = append(labels, lbl)

			if _, ok := p.accept(token.COMMA); ok {
				continue
			}

			break
		}

		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}

		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		c.Items = append(c.Items, ast.CaseItem{Labels: labels, Body: body})
	}

	if _, err := p.expect(token.ENDCASE); err != nil {
		return nil, err
	}

	return c, nil
}

func (p *Parser) parseFor() (*ast.For, error) {
	tok := p.advance()

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	init, err := p.parseAssignNoSemi()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	step, err := p.parseAssignNoSemi()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	f := &ast.For{Init: init, Cond: cond, Step: step, Body: body}
	f.SetPos(tok.Pos)

	return f, nil
}

func (p *Parser) parseWhile() (*ast.While, error) {
	tok := p.advance()

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	w := &ast.While{Cond: cond, Body: body}
	w.SetPos(tok.Pos)

	return w, nil
}

func (p *Parser) parseRepeat() (*ast.Repeat, error) {
	tok := p.advance()

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	count, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	r := &ast.Repeat{Count: count, Body: body}
	r.SetPos(tok.Pos)

	return r, nil
}

func (p *Parser) parseForever() (*ast.Forever, error) {
	tok := p.advance()

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	f := &ast.Forever{Body: body}
	f.SetPos(tok.Pos)

	return f, nil
}

func (p *Parser) parseEventTrigger() (*ast.EventTrigger, error) {
	tok := p.advance()

	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	e := &ast.EventTrigger{Target: name.Text}
	e.SetPos(tok.Pos)

	return e, nil
}

func (p *Parser) parseDisable() (*ast.Disable, error) {
	tok := p.advance()

	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	d := &ast.Disable{Target: name.Text}
	d.SetPos(tok.Pos)

	return d, nil
}

func (p *Parser) parseSystemTaskStatement() (*ast.SystemTaskCall, error) {
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

	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	return call, nil
}

// parseAssignOrTaskCall parses "lhs = rhs;", "lhs <= rhs;", or
// "task_name(args);" as a statement.
func (p *Parser) parseAssignOrTaskCall() (ast.Statement, error) {
	s, err := p.parseAssignNoSemi()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	return s, nil
}

func (p *Parser) parseAssignNoSemi() (ast.Statement, error) {
	pos := p.cur().Pos

	if p.at(token.IDENT) && p.peekKind(1) == token.LPAREN {
		name := p.advance()

		p.advance() // '('

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

		call := &ast.TaskCall{Name: name.Text, Args: args}
		call.SetPos(pos)

		return call, nil
	}

	lhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if tok, ok := p.accept(token.LE); ok {
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		na := &ast.NonBlockingAssign{Lhs: lhs, Rhs: rhs}
		na.SetPos(tok.Pos)

		return na, nil
	}

	if tok, ok := p.accept(token.ASSIGN); ok {
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		ba := &ast.BlockingAssign{Lhs: lhs, Rhs: rhs}
		ba.SetPos(tok.Pos)

		return ba, nil
	}

	return nil, p.errorExpected("= or <=")
}
