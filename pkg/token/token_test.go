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
package token

import "testing"

func TestLookupKeywords(t *testing.T) {
	cases := map[string]Kind{
		"module":    MODULE,
		"endmodule": ENDMODULE,
		"wire":      WIRE,
		"reg":       REG,
		"always":    ALWAYS,
		"posedge":   POSEDGE,
		"not_a_kw":  IDENT,
		"fooBar123": IDENT,
	}

	for ident, want := range cases {
		if got := Lookup(ident); got != want {
			t.Errorf("Lookup(%q) = %v, want %v", ident, got, want)
		}
	}
}

func TestPositionString(t *testing.T) {
	p := Position{Line: 3, Column: 7}
	if got, want := p.String(), "3:7"; got != want {
		t.Errorf("Position.String() = %q, want %q", got, want)
	}
}

func TestKindStringKnownAndUnknown(t *testing.T) {
	if got, want := MODULE.String(), "MODULE"; got != want {
		t.Errorf("MODULE.String() = %q, want %q", got, want)
	}

	if got := Kind(9999).String(); got != "Kind(9999)" {
		t.Errorf("unknown Kind.String() = %q, want Kind(9999)", got)
	}
}

func TestTokenString(t *testing.T) {
	tok := Token{Kind: IDENT, Text: "foo", Pos: Position{Line: 1, Column: 1}}
	if got, want := tok.String(), `IDENT("foo")@1:1`; got != want {
		t.Errorf("Token.String() = %q, want %q", got, want)
	}
}
