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
package lexer

import (
	"testing"

	"github.com/tcovert2015/vlfront/pkg/token"
)

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}

	return ks
}

func checkKinds(t *testing.T, src string, want ...token.Kind) []token.Token {
	t.Helper()

	toks, err := Lex(src, "")
	if err != nil {
		t.Fatalf("Lex(%q): unexpected error: %v", src, err)
	}

	want = append(want, token.EOF)
	got := kinds(toks)

	if len(got) != len(want) {
		t.Fatalf("Lex(%q): got %d tokens %v, want %d %v", src, len(got), got, len(want), want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Lex(%q): token %d = %v, want %v", src, i, got[i], want[i])
		}
	}

	return toks
}

func TestLexKeywordsAndIdents(t *testing.T) {
	checkKinds(t, "module foo endmodule", token.MODULE, token.IDENT, token.ENDMODULE)
}

func TestLexMaximalMunchOperators(t *testing.T) {
	cases := []struct {
		src  string
		want token.Kind
	}{
		{"<<<", token.SSHL},
		{">>>", token.SSHR},
		{"===", token.CEQ},
		{"!==", token.CNE},
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
	}

	for _, c := range cases {
		checkKinds(t, c.src, c.want)
	}
}

func TestLexSingleCharFallback(t *testing.T) {
	checkKinds(t, "<", token.LT)
	checkKinds(t, "+", token.PLUS)
	checkKinds(t, "=", token.ASSIGN)
}

func TestLexSizedNumberBases(t *testing.T) {
	cases := []struct {
		src             string
		value           uint64
		width           uint
		signed          bool
	}{
		{"8'hFF", 255, 8, false},
		{"8'hff", 255, 8, false},
		{"8'b1111_1111", 255, 8, false},
		{"8'd255", 255, 8, false},
		{"3'o7", 7, 3, false},
		{"8'shFF", 255, 8, true},
	}

	for _, c := range cases {
		toks := checkKinds(t, c.src, token.NUMBER)
		n := toks[0].Number

		if n.Value != c.value || n.Width != c.width || n.Signed != c.signed {
			t.Errorf("Lex(%q).Number = %+v, want {Value:%d Width:%d Signed:%v}",
				c.src, n, c.value, c.width, c.signed)
		}
	}
}

func TestLexUnsizedDecimal(t *testing.T) {
	toks := checkKinds(t, "42", token.NUMBER)
	if toks[0].Number.Value != 42 || toks[0].Number.Width != 32 {
		t.Errorf("Number = %+v, want {Value:42 Width:32}", toks[0].Number)
	}
}

func TestLexRealLiteral(t *testing.T) {
	toks := checkKinds(t, "3.14", token.NUMBER)
	if !toks[0].Number.IsReal || toks[0].Number.RealValue != 3.14 {
		t.Errorf("Number = %+v, want real 3.14", toks[0].Number)
	}

	toks = checkKinds(t, "1e3", token.NUMBER)
	if !toks[0].Number.IsReal || toks[0].Number.RealValue != 1000 {
		t.Errorf("Number = %+v, want real 1000", toks[0].Number)
	}
}

func TestLexFourStateDigitsDoNotError(t *testing.T) {
	toks := checkKinds(t, "4'bxz01", token.NUMBER)
	if !toks[0].Number.IsFourState {
		t.Errorf("expected IsFourState for 4'bxz01, got %+v", toks[0].Number)
	}
}

func TestLexStringLiteral(t *testing.T) {
	toks := checkKinds(t, `"hello\nworld"`, token.STRING)
	if toks[0].Text != "hello\nworld" {
		t.Errorf("string literal = %q, want %q", toks[0].Text, "hello\\nworld")
	}
}

func TestLexSystemTask(t *testing.T) {
	toks := checkKinds(t, "$clog2", token.SYSTEM_TASK)
	if toks[0].Text != "$clog2" {
		t.Errorf("system task text = %q, want $clog2", toks[0].Text)
	}
}

func TestLexAttribute(t *testing.T) {
	toks := checkKinds(t, "(* full_case *)", token.ATTRIBUTE)
	if toks[0].Text != "full_case" {
		t.Errorf("attribute payload = %q, want %q", toks[0].Text, "full_case")
	}
}

func TestLexLineComment(t *testing.T) {
	checkKinds(t, "wire a; // trailing comment", token.WIRE, token.IDENT, token.SEMI)
}

func TestLexBlockComment(t *testing.T) {
	checkKinds(t, "wire /* inline */ a;", token.WIRE, token.IDENT, token.SEMI)
}

func TestLexUnterminatedBlockCommentErrors(t *testing.T) {
	if _, err := Lex("/* never closed", ""); err == nil {
		t.Fatal("expected LexError for unterminated block comment")
	}
}

func TestLexCompilerDirectiveDiscardedPreservesLineNumbers(t *testing.T) {
	src := "`timescale 1ns/1ps\nwire a;"
	toks, err := Lex(src, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if toks[0].Kind != token.WIRE || toks[0].Pos.Line != 2 {
		t.Fatalf("expected WIRE at line 2, got %v at %v", toks[0].Kind, toks[0].Pos)
	}
}

func TestLexPositionsPointAtFirstByte(t *testing.T) {
	toks, err := Lex("module\n  foo", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if toks[0].Pos != (token.Position{Line: 1, Column: 1}) {
		t.Errorf("module token pos = %v, want 1:1", toks[0].Pos)
	}

	if toks[1].Pos != (token.Position{Line: 2, Column: 3}) {
		t.Errorf("foo token pos = %v, want 2:3", toks[1].Pos)
	}
}

func TestLexCommentAtEOFWithoutNewlineIsLegal(t *testing.T) {
	if _, err := Lex("wire a; // no trailing newline", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
