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

// Package lexer tokenises Verilog-2005 source text. It is restartable and
// allocation-light: Lex returns the complete token vector up front, as the
// downstream parser never needs to re-lex a prefix.
package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tcovert2015/vlfront/pkg/diag"
	"github.com/tcovert2015/vlfront/pkg/token"
)

// Lexer converts a source string into a sequence of Tokens.
type Lexer struct {
	filename string
	src      []rune
	index    int
	line     int
	col      int
}

// New constructs a Lexer over the given source text. filename is used only
// to annotate diagnostics; pass "" when the source has none.
func New(src string, filename string) *Lexer {
	return &Lexer{
		filename: filename,
		src:      []rune(src),
		index:    0,
		line:     1,
		col:      1,
	}
}

// Lex tokenises source in one pass, returning a token vector terminated by
// an EOF token, or a LexError on the first illegal construct encountered.
func Lex(src string, filename string) ([]token.Token, error) {
	l := New(src, filename)

	var tokens []token.Token

	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, tok)

		if tok.Kind == token.EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) errorf(format string, args ...any) error {
	return diag.NewLexError(l.line, l.col, fmt.Sprintf(format, args...))
}

func (l *Lexer) peek(offset int) rune {
	idx := l.index + offset
	if idx < 0 || idx >= len(l.src) {
		return 0
	}

	return l.src[idx]
}

func (l *Lexer) advance() rune {
	c := l.src[l.index]
	l.index++

	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return c
}

func (l *Lexer) atEOF() bool {
	return l.index >= len(l.src)
}

// next scans and returns the next token, skipping whitespace, comments, and
// compiler directives first.
func (l *Lexer) next() (token.Token, error) {
	if err := l.skipTrivia(); err != nil {
		return token.Token{}, err
	}

	startLine, startCol := l.line, l.col

	if l.atEOF() {
		return token.Token{Kind: token.EOF, Pos: token.Position{Line: startLine, Column: startCol}}, nil
	}

	c := l.peek(0)

	switch {
	case isIdentStart(c):
		return l.scanIdentOrKeyword(startLine, startCol)
	case isDigit(c):
		return l.scanNumber(startLine, startCol)
	case c == '.' && isDigit(l.peek(1)):
		return l.scanNumber(startLine, startCol)
	case c == '"':
		return l.scanString(startLine, startCol)
	case c == '$':
		return l.scanSystemTask(startLine, startCol)
	case c == '(' && l.peek(1) == '*' && l.peek(2) != ')':
		return l.scanAttribute(startLine, startCol)
	default:
		return l.scanOperator(startLine, startCol)
	}
}

func (l *Lexer) skipTrivia() error {
	for !l.atEOF() {
		c := l.peek(0)

		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '/' && l.peek(1) == '/':
			for !l.atEOF() && l.peek(0) != '\n' {
				l.advance()
			}
		case c == '/' && l.peek(1) == '*':
			line, col := l.line, l.col
			l.advance()
			l.advance()

			closed := false

			for !l.atEOF() {
				if l.peek(0) == '*' && l.peek(1) == '/' {
					l.advance()
					l.advance()

					closed = true

					break
				}

				l.advance()
			}

			if !closed {
				return diag.NewLexError(line, col, "unterminated block comment")
			}
		case c == '`':
			// Compiler directive: discard through end of line, preserving
			// line-number alignment with the source (we only consume to
			// EOL, never past it, so subsequent line counting is exact).
			for !l.atEOF() && l.peek(0) != '\n' {
				l.advance()
			}
		default:
			return nil
		}
	}

	return nil
}

func isIdentStart(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c rune) bool {
	return isIdentStart(c) || isDigit(c) || c == '$'
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func (l *Lexer) scanIdentOrKeyword(line, col int) (token.Token, error) {
	var sb strings.Builder

	for !l.atEOF() && isIdentCont(l.peek(0)) {
		sb.WriteRune(l.advance())
	}

	text := sb.String()

	return token.Token{Kind: token.Lookup(text), Text: text, Pos: token.Position{Line: line, Column: col}}, nil
}

func (l *Lexer) scanSystemTask(line, col int) (token.Token, error) {
	var sb strings.Builder

	sb.WriteRune(l.advance()) // '$'

	if l.atEOF() || !isIdentStart(l.peek(0)) {
		return token.Token{}, l.errorf("malformed system task name")
	}

	for !l.atEOF() && isIdentCont(l.peek(0)) {
		sb.WriteRune(l.advance())
	}

	return token.Token{Kind: token.SYSTEM_TASK, Text: sb.String(), Pos: token.Position{Line: line, Column: col}}, nil
}

func (l *Lexer) scanString(line, col int) (token.Token, error) {
	l.advance() // opening quote

	var sb strings.Builder

	for {
		if l.atEOF() {
			return token.Token{}, diag.NewLexError(line, col, "unterminated string literal")
		}

		c := l.advance()

		if c == '"' {
			break
		}

		if c == '\\' {
			if l.atEOF() {
				return token.Token{}, diag.NewLexError(line, col, "unterminated string literal")
			}

			e := l.advance()

			switch e {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '\\':
				sb.WriteRune('\\')
			case '"':
				sb.WriteRune('"')
			default:
				sb.WriteRune('\\')
				sb.WriteRune(e)
			}

			continue
		}

		if c == '\n' {
			return token.Token{}, diag.NewLexError(line, col, "unterminated string literal")
		}

		sb.WriteRune(c)
	}

	return token.Token{Kind: token.STRING, Text: sb.String(), Pos: token.Position{Line: line, Column: col}}, nil
}

func (l *Lexer) scanAttribute(line, col int) (token.Token, error) {
	l.advance() // '('
	l.advance() // '*'

	var sb strings.Builder

	for {
		if l.atEOF() {
			return token.Token{}, diag.NewLexError(line, col, "unterminated attribute")
		}

		if l.peek(0) == '*' && l.peek(1) == ')' {
			l.advance()
			l.advance()

			break
		}

		sb.WriteRune(l.advance())
	}

	return token.Token{Kind: token.ATTRIBUTE, Text: strings.TrimSpace(sb.String()), Pos: token.Position{Line: line, Column: col}}, nil
}

// scanNumber handles all three numeric forms described in spec.md §4.1:
// unsized decimal, sized "<width>'<base><digits>", and real literals.
func (l *Lexer) scanNumber(line, col int) (token.Token, error) {
	start := l.index

	// Consume leading digits (could be the width of a sized literal, an
	// unsized decimal, or the integer part of a real).
	for !l.atEOF() && (isDigit(l.peek(0)) || l.peek(0) == '_') {
		l.advance()
	}

	if !l.atEOF() && l.peek(0) == '\'' {
		return l.scanSized(line, col, string(l.src[start:l.index]))
	}

	isReal := false

	if !l.atEOF() && l.peek(0) == '.' && isDigit(l.peek(1)) {
		isReal = true

		l.advance()

		for !l.atEOF() && (isDigit(l.peek(0)) || l.peek(0) == '_') {
			l.advance()
		}
	}

	if !l.atEOF() && (l.peek(0) == 'e' || l.peek(0) == 'E') {
		save := l.index
		savedLine, savedCol := l.line, l.col
		l.advance()

		if !l.atEOF() && (l.peek(0) == '+' || l.peek(0) == '-') {
			l.advance()
		}

		if l.atEOF() || !isDigit(l.peek(0)) {
			l.index = save
			l.line, l.col = savedLine, savedCol
		} else {
			isReal = true
			for !l.atEOF() && isDigit(l.peek(0)) {
				l.advance()
			}
		}
	}

	raw := string(l.src[start:l.index])
	clean := strings.ReplaceAll(raw, "_", "")

	if isReal {
		val, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return token.Token{}, l.errorf("malformed real literal %q", raw)
		}

		return token.Token{
			Kind: token.NUMBER,
			Text: raw,
			Pos:  token.Position{Line: line, Column: col},
			Number: token.NumberValue{
				IsReal:    true,
				RealValue: val,
			},
		}, nil
	}

	val, err := strconv.ParseUint(clean, 10, 64)
	if err != nil {
		return token.Token{}, l.errorf("malformed decimal literal %q", raw)
	}

	return token.Token{
		Kind: token.NUMBER,
		Text: raw,
		Pos:  token.Position{Line: line, Column: col},
		Number: token.NumberValue{
			Value:  val,
			Width:  32,
			Signed: true,
		},
	}, nil
}

// scanSized handles the "<width>'<base><digits>" form. widthText is the
// already-consumed digit run preceding the apostrophe (may be empty, which
// IEEE 1364-2005 treats as an implementation-defined default width; this
// implementation defaults to 32).
func (l *Lexer) scanSized(line, col int, widthText string) (token.Token, error) {
	l.advance() // apostrophe

	signed := false

	if !l.atEOF() && (l.peek(0) == 's' || l.peek(0) == 'S') {
		signed = true

		l.advance()
	}

	if l.atEOF() {
		return token.Token{}, l.errorf("malformed sized literal: missing base")
	}

	baseChar := l.advance()

	var base int

	switch baseChar {
	case 'b', 'B':
		base = 2
	case 'o', 'O':
		base = 8
	case 'd', 'D':
		base = 10
	case 'h', 'H':
		base = 16
	default:
		return l.errorToken(line, col, "invalid base character %q in sized literal", baseChar)
	}

	digitStart := l.index

	for !l.atEOF() && isLiteralDigit(l.peek(0), base) {
		l.advance()
	}

	if l.index == digitStart {
		return token.Token{}, l.errorf("malformed sized literal: no digits after base")
	}

	digits := string(l.src[digitStart:l.index])
	clean := strings.ReplaceAll(digits, "_", "")

	width := uint(32)

	if widthText != "" {
		w, err := strconv.ParseUint(strings.ReplaceAll(widthText, "_", ""), 10, 32)
		if err != nil {
			return token.Token{}, l.errorf("malformed literal width %q", widthText)
		}

		width = uint(w)
	}

	value, fourState := resolveDigits(clean, base)

	raw := widthText + "'"
	if signed {
		raw += "s"
	}

	raw += string(baseChar) + digits

	return token.Token{
		Kind: token.NUMBER,
		Text: raw,
		Pos:  token.Position{Line: line, Column: col},
		Number: token.NumberValue{
			Value:       value,
			Width:       width,
			Signed:      signed,
			IsFourState: fourState,
		},
	}, nil
}

func (l *Lexer) errorToken(line, col int, format string, args ...any) (token.Token, error) {
	return token.Token{}, diag.NewLexError(line, col, fmt.Sprintf(format, args...))
}

func isLiteralDigit(c rune, base int) bool {
	switch c {
	case 'x', 'X', 'z', 'Z', '?', '_':
		return true
	}

	switch base {
	case 2:
		return c == '0' || c == '1'
	case 8:
		return c >= '0' && c <= '7'
	case 10:
		return isDigit(c)
	case 16:
		return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
	}

	return false
}

// resolveDigits folds a digit run of the given base into an unsigned value.
// x/z/? bits are folded to 0 (per spec.md §4.1: value is resolved to avoid
// re-parsing; four-state tracking beyond this is out of scope per spec.md
// §1 Non-goals). fourState reports whether any such bit was present.
func resolveDigits(digits string, base int) (uint64, bool) {
	var (
		value     uint64
		fourState bool
	)

	for _, c := range digits {
		if c == '_' {
			continue
		}

		var d uint64

		switch c {
		case 'x', 'X', 'z', 'Z', '?':
			fourState = true
			d = 0
		default:
			switch {
			case c >= '0' && c <= '9':
				d = uint64(c - '0')
			case c >= 'a' && c <= 'f':
				d = uint64(c-'a') + 10
			case c >= 'A' && c <= 'F':
				d = uint64(c-'A') + 10
			}
		}

		value = value*uint64(base) + d
	}

	return value, fourState
}

// operator table ordered so maximal-munch is achieved by trying longest
// forms first.
type opEntry struct {
	text string
	kind token.Kind
}

var threeCharOps = []opEntry{
	{"<<<", token.SSHL},
	{">>>", token.SSHR},
	{"===", token.CEQ},
	{"!==", token.CNE},
}

var twoCharOps = []opEntry{
	{"<<", token.SHL},
	{">>", token.SHR},
	{"==", token.EQ},
	{"!=", token.NE},
	{"<=", token.LE},
	{">=", token.GE},
	{"&&", token.LAND},
	{"||", token.LOR},
	{"+:", token.PLUSCOLON},
	{"-:", token.MINUSCOLON},
	{"->", token.TRIGGER},
	{"=>", token.IMPLY},
	{"~&", token.NAND},
	{"~|", token.NOR},
	{"~^", token.XNOR1},
	{"^~", token.XNOR2},
	{"**", token.POW},
}

var oneCharOps = map[rune]token.Kind{
	'(': token.LPAREN, ')': token.RPAREN,
	'{': token.LBRACE, '}': token.RBRACE,
	'[': token.LBRACKET, ']': token.RBRACKET,
	';': token.SEMI, ':': token.COLON, ',': token.COMMA, '.': token.DOT,
	'@': token.AT, '#': token.HASH, '=': token.ASSIGN,
	'+': token.PLUS, '-': token.MINUS, '*': token.STAR, '/': token.SLASH, '%': token.PERCENT,
	'&': token.AMP, '|': token.PIPE, '^': token.CARET, '~': token.TILDE, '!': token.BANG,
	'?': token.QUESTION, '<': token.LT, '>': token.GT,
}

func (l *Lexer) scanOperator(line, col int) (token.Token, error) {
	remaining := len(l.src) - l.index

	if remaining >= 3 {
		cand := string(l.src[l.index : l.index+3])
		for _, e := range threeCharOps {
			if e.text == cand {
				l.advanceN(3)
				return token.Token{Kind: e.kind, Text: e.text, Pos: token.Position{Line: line, Column: col}}, nil
			}
		}
	}

	if remaining >= 2 {
		cand := string(l.src[l.index : l.index+2])
		for _, e := range twoCharOps {
			if e.text == cand {
				l.advanceN(2)
				return token.Token{Kind: e.kind, Text: e.text, Pos: token.Position{Line: line, Column: col}}, nil
			}
		}
	}

	c := l.peek(0)

	if k, ok := oneCharOps[c]; ok {
		l.advance()
		return token.Token{Kind: k, Text: string(c), Pos: token.Position{Line: line, Column: col}}, nil
	}

	return token.Token{}, diag.NewLexError(line, col, fmt.Sprintf("illegal character %q", c))
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}
