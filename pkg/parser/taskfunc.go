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

func (p *Parser) parseTask() (*ast.Task, error) {
	tok := p.advance()

	automatic := false
	if _, ok := p.accept(token.AUTOMATIC); ok {
		automatic = true
	}

	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	t := &ast.Task{Name: name.Text, Automatic: automatic}
	t.SetPos(tok.Pos)

	for !p.at(token.ENDTASK) {
		if p.cur().Kind == token.INPUT || p.cur().Kind == token.OUTPUT || p.cur().Kind == token.INOUT {
			port, err := p.parseTaskFunctionPort()
			if err != nil {
				return nil, err
			}

			t.Ports = append(t.Ports, port)

			continue
		}

		if isDeclStart(p.cur().Kind) {
			decl, err := p.parseLocalDecl()
			if err != nil {
				return nil, err
			}

			t.Decls = append(t.Decls, decl)

			continue
		}

		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		t.Body = body

		break
	}

	if _, err := p.expect(token.ENDTASK); err != nil {
		return nil, err
	}

	return t, nil
}

func (p *Parser) parseTaskFunctionPort() (ast.TaskOrFunctionPort, error) {
	dir := directionOf(p.advance().Kind)

	var rng *ast.Range

	if p.at(token.LBRACKET) {
		r, err := p.parseRange()
		if err != nil {
			return ast.TaskOrFunctionPort{}, err
		}

		rng = r
	}

	name, err := p.expect(token.IDENT)
	if err != nil {
		return ast.TaskOrFunctionPort{}, err
	}

	if _, err := p.expect(token.SEMI); err != nil {
		return ast.TaskOrFunctionPort{}, err
	}

	return ast.TaskOrFunctionPort{Direction: dir, Range: rng, Name: name.Text}, nil
}

func (p *Parser) parseFunction() (*ast.Function, error) {
	tok := p.advance()

	automatic := false
	if _, ok := p.accept(token.AUTOMATIC); ok {
		automatic = true
	}

	var rng *ast.Range

	if p.at(token.LBRACKET) {
		r, err := p.parseRange()
		if err != nil {
			return nil, err
		}

		rng = r
	} else if p.at(token.INTEGER) {
		p.advance()
	}

	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	f := &ast.Function{Name: name.Text, Automatic: automatic, ReturnRange: rng}
	f.SetPos(tok.Pos)

	for !p.at(token.ENDFUNCTION) {
		if p.cur().Kind == token.INPUT {
			port, err := p.parseTaskFunctionPort()
			if err != nil {
				return nil, err
			}

			f.Ports = append(f.Ports, port)

			continue
		}

		if isDeclStart(p.cur().Kind) {
			decl, err := p.parseLocalDecl()
			if err != nil {
				return nil, err
			}

			f.Decls = append(f.Decls, decl)

			continue
		}

		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		f.Body = body

		break
	}

	if _, err := p.expect(token.ENDFUNCTION); err != nil {
		return nil, err
	}

	return f, nil
}
