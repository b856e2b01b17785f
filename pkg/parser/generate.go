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

// parseGenerate parses a "generate ... endgenerate" block. Per spec.md
// §4.2 it is a transparent wrapper; if/case/for inside are parsed with
// their normal statement-grammar productions and wrapped as GenerateItems
// here, tagged in_generate implicitly by their presence in this list.
func (p *Parser) parseGenerate() (*ast.Generate, error) {
	tok := p.advance()

	gen := &ast.Generate{}
	gen.SetPos(tok.Pos)

	for !p.at(token.ENDGENERATE) {
		p.collectAttributes()

		item, err := p.parseGenerateItem()
		if err != nil {
			return nil, err
		}

		if s, ok := item.(attrSetter); ok {
			p.finish(s)
		}

		gen.Items = append(gen.Items, item)
	}

	if _, err := p.expect(token.ENDGENERATE); err != nil {
		return nil, err
	}

	return gen, nil
}

func (p *Parser) parseGenerateItem() (ast.GenerateItem, error) {
	switch p.cur().Kind {
	case token.IF:
		return p.parseIf()
	case token.CASE, token.CASEX, token.CASEZ:
		return p.parseCase()
	case token.FOR:
		return p.parseFor()
	case token.BEGIN:
		return p.parseBegin()
	case token.WIRE, token.REG:
		return p.parseNetDecl()
	case token.IDENT:
		return p.parseModuleInstance()
	default:
		return nil, p.errorExpected("generate item")
	}
}
