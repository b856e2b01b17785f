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
package diag

import (
	"strings"
	"testing"
)

func TestLexErrorMessage(t *testing.T) {
	err := NewLexError(3, 5, "unterminated string")
	if got, want := err.Error(), "3:5: lex error: unterminated string"; got != want {
		t.Errorf("LexError.Error() = %q, want %q", got, want)
	}
}

func TestParseErrorSuggestionForMissingSemicolon(t *testing.T) {
	err := NewParseError(1, 14, ";", "WIRE", "wire a  wire b;")
	if err.Suggestion != "add a semicolon" {
		t.Errorf("Suggestion = %q, want %q", err.Suggestion, "add a semicolon")
	}

	msg := err.Error()
	if !strings.Contains(msg, "expected ;, got WIRE") {
		t.Errorf("Error() = %q, missing expected/got phrase", msg)
	}

	if !strings.Contains(msg, "^") {
		t.Errorf("Error() = %q, missing caret", msg)
	}
}

func TestParseErrorSuggestionForUnmatchedParen(t *testing.T) {
	err := NewParseError(2, 1, ")", "EOF", "")
	if err.Suggestion != "check for an unmatched parenthesis" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
}

func TestParseErrorSuggestionForEOF(t *testing.T) {
	err := NewParseError(5, 1, "endmodule", "EOF", "")
	// "endmodule" expected branch takes priority over the generic EOF hint.
	if !strings.Contains(err.Suggestion, "begin") {
		t.Errorf("Suggestion = %q, want a begin/end hint", err.Suggestion)
	}
}

func TestElabErrorWithCyclePath(t *testing.T) {
	err := NewElabError(1, 1, "m", "combinational cycle detected")
	err.CyclePath = []string{"a", "b", "c"}

	if !strings.Contains(err.Error(), "cycle:") {
		t.Errorf("Error() = %q, want cycle path rendered", err.Error())
	}
}

func TestWarningsAccumulateAndRenderAsError(t *testing.T) {
	var w Warnings

	if w.Len() != 0 {
		t.Fatalf("new Warnings.Len() = %d, want 0", w.Len())
	}

	w.Add(WarnUndrivenNet, "n1", "net n1 is never driven")
	w.Add(WarnUnintendedLatch, "q", "inferred latch for q")

	if w.Len() != 2 {
		t.Fatalf("Warnings.Len() = %d, want 2", w.Len())
	}

	items := w.Items()
	if len(items) != 2 || items[0].Entity != "n1" || items[1].Entity != "q" {
		t.Fatalf("Items() = %+v, want order preserved", items)
	}

	err := w.AsError()
	if err == nil {
		t.Fatal("AsError() = nil, want non-nil for non-empty Warnings")
	}

	if !strings.Contains(err.Error(), "n1") || !strings.Contains(err.Error(), "q") {
		t.Errorf("AsError().Error() = %q, want both warnings mentioned", err.Error())
	}
}

func TestEmptyWarningsAsErrorIsNil(t *testing.T) {
	var w Warnings
	if err := w.AsError(); err != nil {
		t.Errorf("AsError() on empty Warnings = %v, want nil", err)
	}
}
