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

func (p *Parser) parseModule() (*ast.Module, error) {
	attrs := p.takeAttrs()

	kw, err := p.expect(token.MODULE)
	if err != nil {
		return nil, err
	}

	m := &ast.Module{}
	m.SetAttrs(attrs)
	m.SetPos(kw.Pos)

	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	m.Name = name.Text

	if _, ok := p.accept(token.HASH); ok {
		params, err := p.parseModuleParamList()
		if err != nil {
			return nil, err
		}

		m.Params = params
	}

	var ansiPorts []*ast.PortDecl
	if p.at(token.LPAREN) {
		ports, err := p.parsePortListHeader()
		if err != nil {
			return nil, err
		}

		ansiPorts = ports
	}

	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	m.Ports = ansiPorts

	if err := p.parseModuleBody(m); err != nil {
		return nil, err
	}

	if _, err := p.expect(token.ENDMODULE); err != nil {
		return nil, err
	}

	return m, nil
}

// parseModuleParamList parses "#(parameter W = 8, parameter N = 4)" module
// header formals.
func (p *Parser) parseModuleParamList() ([]ast.ModuleParam, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var params []ast.ModuleParam

	for {
		if p.at(token.PARAMETER) {
			p.advance()
		}

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

		params = append(params, ast.ModuleParam{Name: name.Text, Value: val, Range: rng})

		if _, ok := p.accept(token.COMMA); ok {
			continue
		}

		break
	}

	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	return params, nil
}

// parsePortListHeader parses the "(...)" following the module name. It
// accepts both ANSI ports ("input wire [7:0] a") and 1995-style bare names
// ("a, b, c") normalizing the latter to ANSI-shaped PortDecl nodes once the
// separate input/output declarations are seen later in the body (spec.md
// §4.2 "Port style"). For bare-name lists, placeholder PortDecls carrying
// only the name are returned and then unified with the matching body-level
// declaration by resolvePortDirections.
func (p *Parser) parsePortListHeader() ([]*ast.PortDecl, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var ports []*ast.PortDecl

	for !p.at(token.RPAREN) {
		port, err := p.parsePortHeaderEntry()
		if err != nil {
			return nil, err
		}

		ports = append(ports, port)

		if _, ok := p.accept(token.COMMA); ok {
			continue
		}

		break
	}

	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	return ports, nil
}

func (p *Parser) parsePortHeaderEntry() (*ast.PortDecl, error) {
	pos := p.cur().Pos

	if p.at(token.INPUT) || p.at(token.OUTPUT) || p.at(token.INOUT) {
		dir := directionOf(p.advance().Kind)

		netType := ast.NetWire
		if p.at(token.WIRE) || p.at(token.REG) {
			netType = netTypeOf(p.advance().Kind)
		}

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

		pd := &ast.PortDecl{Direction: dir, NetType: netType, Range: rng, Name: name.Text}
		pd.SetPos(pos)

		return pd, nil
	}

	// 1995-style bare name; direction/type resolved later from the body.
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	pd := &ast.PortDecl{Direction: ast.DirInput, NetType: ast.NetWire, Name: name.Text}
	pd.SetPos(pos)

	return pd, nil
}

func directionOf(k token.Kind) ast.Direction {
	switch k {
	case token.OUTPUT:
		return ast.DirOutput
	case token.INOUT:
		return ast.DirInout
	default:
		return ast.DirInput
	}
}

func netTypeOf(k token.Kind) ast.NetType {
	if k == token.REG {
		return ast.NetReg
	}

	return ast.NetWire
}

func (p *Parser) parseRange() (*ast.Range, error) {
	if _, err := p.expect(token.LBRACKET); err != nil {
		return nil, err
	}

	msb, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}

	lsb, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}

	return &ast.Range{MSB: msb, LSB: lsb}, nil
}

// parseModuleBody parses items until "endmodule" is seen (without
// consuming it), resolving 1995-style port declarations against the
// header's bare-name list as they are encountered.
func (p *Parser) parseModuleBody(m *ast.Module) error {
	for !p.at(token.ENDMODULE) {
		p.collectAttributes()

		item, portDecl, err := p.parseModuleItem()
		if err != nil {
			return err
		}

		if portDecl != nil {
			mergePortDecl(m, portDecl)
			continue
		}

		if s, ok := item.(attrSetter); ok {
			p.finish(s)
		}

		if item != nil {
			m.Body = append(m.Body, item)
		}
	}

	return nil
}

// mergePortDecl folds a 1995-style "input [7:0] a;" declaration into the
// matching header-list placeholder, completing the ANSI normalization.
func mergePortDecl(m *ast.Module, pd *ast.PortDecl) {
	for _, existing := range m.Ports {
		if existing.Name == pd.Name {
			existing.Direction = pd.Direction
			existing.NetType = pd.NetType
			existing.Range = pd.Range

			return
		}
	}
	// Not declared in the header list; still record it (defensive: a
	// malformed but not ambiguous source).
	m.Ports = append(m.Ports, pd)
}
