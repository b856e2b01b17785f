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

// Package parser implements a recursive-descent parser for the
// synthesizable subset of Verilog-2005, one function per nonterminal, with
// operator-precedence climbing for expressions (pkg/parser/expr.go). It
// does not attempt multi-error recovery: the first unrecoverable syntax
// error halts parsing (spec.md §4.2).
package parser

import (
	"fmt"
	"strings"

	"github.com/tcovert2015/vlfront/pkg/ast"
	"github.com/tcovert2015/vlfront/pkg/diag"
	"github.com/tcovert2015/vlfront/pkg/lexer"
	"github.com/tcovert2015/vlfront/pkg/token"
)

// Parser holds the token stream and cursor for a single parse.
type Parser struct {
	filename string
	src      string
	lines    []string
	tokens   []token.Token
	index    int
	// pendingAttrs accumulates ATTRIBUTE tokens seen before the next item,
	// bound to it per spec.md §4.2 "Attributes bound to the nearest
	// following item".
	pendingAttrs []ast.Attribute
}

// Parse tokenises and parses source into a SourceFile, per spec.md §6.1.
func Parse(source string, filename string) (*ast.SourceFile, error) {
	tokens, err := lexer.Lex(source, filename)
	if err != nil {
		return nil, err
	}

	p := &Parser{
		filename: filename,
		src:      source,
		lines:    strings.Split(source, "\n"),
		tokens:   tokens,
	}

	return p.parseSourceFile()
}

func (p *Parser) cur() token.Token {
	return p.tokens[p.index]
}

func (p *Parser) peekKind(offset int) token.Kind {
	idx := p.index + offset
	if idx >= len(p.tokens) {
		return token.EOF
	}

	return p.tokens[idx].Kind
}

func (p *Parser) advance() token.Token {
	t := p.tokens[p.index]
	if p.index < len(p.tokens)-1 {
		p.index++
	}

	return t
}

func (p *Parser) at(k token.Kind) bool {
	return p.cur().Kind == k
}

func (p *Parser) accept(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}

	return token.Token{}, false
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if p.at(k) {
		return p.advance(), nil
	}

	return token.Token{}, p.errorExpected(k.String())
}

func (p *Parser) errorExpected(expected string) error {
	got := p.cur()
	snippet := p.snippet(got.Pos.Line)

	return diag.NewParseError(got.Pos.Line, got.Pos.Column, expected, describe(got), snippet)
}

func describe(t token.Token) string {
	if t.Kind == token.EOF {
		return "EOF"
	}

	if t.Text != "" {
		return fmt.Sprintf("%q", t.Text)
	}

	return t.Kind.String()
}

func (p *Parser) snippet(line int) string {
	if line-1 < 0 || line-1 >= len(p.lines) {
		return ""
	}

	return p.lines[line-1]
}

// collectAttributes consumes any ATTRIBUTE tokens at the cursor, queuing
// them for the next item constructed.
func (p *Parser) collectAttributes() {
	for p.at(token.ATTRIBUTE) {
		tok := p.advance()
		p.pendingAttrs = append(p.pendingAttrs, parseAttributeList(tok.Text)...)
	}
}

func parseAttributeList(payload string) []ast.Attribute {
	var attrs []ast.Attribute

	for _, part := range strings.Split(payload, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if idx := strings.Index(part, "="); idx >= 0 {
			attrs = append(attrs, ast.Attribute{
				Name:  strings.TrimSpace(part[:idx]),
				Value: strings.TrimSpace(part[idx+1:]),
			})
		} else {
			attrs = append(attrs, ast.Attribute{Name: part})
		}
	}

	return attrs
}

// takeAttrs returns and clears the pending attribute list, to be installed
// on the node about to be constructed.
func (p *Parser) takeAttrs() []ast.Attribute {
	a := p.pendingAttrs
	p.pendingAttrs = nil

	return a
}

type attrSetter interface {
	SetAttrs([]ast.Attribute)
}

func (p *Parser) finish(n attrSetter) {
	if attrs := p.takeAttrs(); attrs != nil {
		n.SetAttrs(attrs)
	}
}

func (p *Parser) parseSourceFile() (*ast.SourceFile, error) {
	sf := &ast.SourceFile{Filename: p.filename}

	for !p.at(token.EOF) {
		p.collectAttributes()

		m, err := p.parseModule()
		if err != nil {
			return nil, err
		}

		sf.Modules = append(sf.Modules, m)
	}

	return sf, nil
}
