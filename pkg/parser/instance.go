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

// parseModuleInstance parses "module_name [#(overrides)] instance_name
// (connections);". Positional, named (".port(expr)"), mixed, and explicit
// disconnect (".port()") forms are all accepted, per spec.md §4.2.
func (p *Parser) parseModuleInstance() (*ast.ModuleInstance, error) {
	modName := p.advance()

	inst := &ast.ModuleInstance{ModuleName: modName.Text}
	inst.SetPos(modName.Pos)

	if _, ok := p.accept(token.HASH); ok {
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}

		overrides, err := p.parseParamOverrides()
		if err != nil {
			return nil, err
		}

		inst.ParamOverrides = overrides
	}

	instName, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	inst.InstanceName = instName.Text

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	conns, err := p.parsePortConnections()
	if err != nil {
		return nil, err
	}

	inst.PortConnections = conns

	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	return inst, nil
}

func (p *Parser) parseParamOverrides() ([]ast.ParamOverride, error) {
	var overrides []ast.ParamOverride

	for !p.at(token.RPAREN) {
		if _, ok := p.accept(token.DOT); ok {
			name, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}

			if _, err := p.expect(token.LPAREN); err != nil {
				return nil, err
			}

			val, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}

			overrides = append(overrides, ast.ParamOverride{Name: name.Text, Value: val})
		} else {
			val, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			overrides = append(overrides, ast.ParamOverride{Value: val})
		}

		if _, ok := p.accept(token.COMMA); ok {
			continue
		}

		break
	}

	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	return overrides, nil
}

func (p *Parser) parsePortConnections() ([]ast.PortConnection, error) {
	var conns []ast.PortConnection

	for !p.at(token.RPAREN) {
		if _, ok := p.accept(token.DOT); ok {
			name, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}

			if _, err := p.expect(token.LPAREN); err != nil {
				return nil, err
			}

			var expr ast.Expression

			if !p.at(token.RPAREN) {
				e, err := p.parseExpr()
				if err != nil {
					return nil, err
				}

				expr = e
			}

			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}

			conns = append(conns, ast.PortConnection{Name: name.Text, Expr: expr})
		} else {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			conns = append(conns, ast.PortConnection{Expr: e})
		}

		if _, ok := p.accept(token.COMMA); ok {
			continue
		}

		break
	}

	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	return conns, nil
}
