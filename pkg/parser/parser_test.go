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
	"testing"

	"github.com/tcovert2015/vlfront/pkg/ast"
	"github.com/tcovert2015/vlfront/pkg/diag"
)

func mustParse(t *testing.T, src string) *ast.SourceFile {
	t.Helper()

	sf, err := Parse(src, "test.v")
	if err != nil {
		t.Fatalf("Parse(%q): unexpected error: %v", src, err)
	}

	return sf
}

func TestParseSimpleModule(t *testing.T) {
	sf := mustParse(t, `module m(input a, input b, output c); assign c = a & b; endmodule`)

	if len(sf.Modules) != 1 {
		t.Fatalf("got %d modules, want 1", len(sf.Modules))
	}

	m := sf.Modules[0]
	if m.Name != "m" {
		t.Errorf("module name = %q, want m", m.Name)
	}

	if len(m.Ports) != 3 {
		t.Fatalf("got %d ports, want 3", len(m.Ports))
	}

	if m.Ports[0].Direction != ast.DirInput || m.Ports[0].Name != "a" {
		t.Errorf("port 0 = %+v, want input a", m.Ports[0])
	}

	if m.Ports[2].Direction != ast.DirOutput || m.Ports[2].Name != "c" {
		t.Errorf("port 2 = %+v, want output c", m.Ports[2])
	}

	if len(m.Body) != 1 {
		t.Fatalf("got %d body items, want 1", len(m.Body))
	}

	ca, ok := m.Body[0].(*ast.ContinuousAssign)
	if !ok {
		t.Fatalf("body[0] = %T, want *ast.ContinuousAssign", m.Body[0])
	}

	if _, ok := ca.Lhs.(*ast.Identifier); !ok {
		t.Errorf("Lhs = %T, want *ast.Identifier", ca.Lhs)
	}

	bin, ok := ca.Rhs.(*ast.BinaryOp)
	if !ok {
		t.Fatalf("Rhs = %T, want *ast.BinaryOp", ca.Rhs)
	}

	if bin.Op != ast.OpBAnd {
		t.Errorf("Rhs.Op = %v, want OpBAnd", bin.Op)
	}
}

func TestParseVerilog95StylePorts(t *testing.T) {
	src := `
module m(a, b, c);
input a;
input b;
output c;
assign c = a | b;
endmodule`

	m := mustParse(t, src).Modules[0]

	if len(m.Ports) != 3 {
		t.Fatalf("got %d ports, want 3", len(m.Ports))
	}

	for i, want := range []ast.Direction{ast.DirInput, ast.DirInput, ast.DirOutput} {
		if m.Ports[i].Direction != want {
			t.Errorf("port %d direction = %v, want %v", i, m.Ports[i].Direction, want)
		}
	}
}

func TestParseParameterizedModule(t *testing.T) {
	src := `
module adder #(parameter WIDTH = 8) (
  input [WIDTH-1:0] a,
  input [WIDTH-1:0] b,
  input cin,
  output [WIDTH-1:0] sum,
  output cout
);
  assign {cout, sum} = a + b + cin;
endmodule`

	m := mustParse(t, src).Modules[0]

	if len(m.Params) != 1 || m.Params[0].Name != "WIDTH" {
		t.Fatalf("Params = %+v, want one WIDTH param", m.Params)
	}

	ca := m.Body[0].(*ast.ContinuousAssign)

	if _, ok := ca.Lhs.(*ast.Concat); !ok {
		t.Errorf("Lhs = %T, want *ast.Concat for {cout, sum}", ca.Lhs)
	}
}

func TestParseBitAndPartSelect(t *testing.T) {
	src := `module m(input [7:0] v, output o); assign o = v[3]; endmodule`
	m := mustParse(t, src).Modules[0]
	ca := m.Body[0].(*ast.ContinuousAssign)

	bs, ok := ca.Rhs.(*ast.BitSelect)
	if !ok {
		t.Fatalf("Rhs = %T, want *ast.BitSelect", ca.Rhs)
	}

	if bs.SelectType != ast.SelectNormal {
		t.Errorf("SelectType = %v, want SelectNormal", bs.SelectType)
	}
}

func TestParsePlusColonIndexedPartSelect(t *testing.T) {
	src := `module m(input [31:0] v, output [7:0] o); assign o = v[8 +: 8]; endmodule`
	m := mustParse(t, src).Modules[0]
	ca := m.Body[0].(*ast.ContinuousAssign)

	bs, ok := ca.Rhs.(*ast.BitSelect)
	if !ok {
		t.Fatalf("Rhs = %T, want *ast.BitSelect", ca.Rhs)
	}

	if bs.SelectType != ast.SelectPlus {
		t.Errorf("SelectType = %v, want SelectPlus", bs.SelectType)
	}

	if bs.Width == nil {
		t.Errorf("Width = nil, want non-nil for +: select")
	}
}

func TestParseRangePartSelect(t *testing.T) {
	src := `module m(input [7:0] v, output [3:0] o); assign o = v[3:0]; endmodule`
	m := mustParse(t, src).Modules[0]
	ca := m.Body[0].(*ast.ContinuousAssign)

	if _, ok := ca.Rhs.(*ast.PartSelect); !ok {
		t.Fatalf("Rhs = %T, want *ast.PartSelect", ca.Rhs)
	}
}

func TestParseTernaryRightAssociative(t *testing.T) {
	src := `module m(input a, input b, input c, output o); assign o = a ? b : c; endmodule`
	m := mustParse(t, src).Modules[0]
	ca := m.Body[0].(*ast.ContinuousAssign)

	if _, ok := ca.Rhs.(*ast.TernaryOp); !ok {
		t.Fatalf("Rhs = %T, want *ast.TernaryOp", ca.Rhs)
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	// a + b * c should parse as a + (b * c): top-level op is OpAdd.
	src := `module m(input a, input b, input c, output o); assign o = a + b * c; endmodule`
	m := mustParse(t, src).Modules[0]
	ca := m.Body[0].(*ast.ContinuousAssign)

	top, ok := ca.Rhs.(*ast.BinaryOp)
	if !ok {
		t.Fatalf("Rhs = %T, want *ast.BinaryOp", ca.Rhs)
	}

	if top.Op != ast.OpAdd {
		t.Fatalf("top op = %v, want OpAdd", top.Op)
	}

	rhs, ok := top.Rhs.(*ast.BinaryOp)
	if !ok || rhs.Op != ast.OpMul {
		t.Fatalf("Rhs.Rhs = %+v, want a OpMul BinaryOp", top.Rhs)
	}
}

func TestParseLeftAssociativity(t *testing.T) {
	// a - b - c should parse as (a - b) - c.
	src := `module m(input [7:0] a, input [7:0] b, input [7:0] c, output [7:0] o);
assign o = a - b - c; endmodule`
	m := mustParse(t, src).Modules[0]
	ca := m.Body[0].(*ast.ContinuousAssign)

	top := ca.Rhs.(*ast.BinaryOp)
	if top.Op != ast.OpSub {
		t.Fatalf("top op = %v, want OpSub", top.Op)
	}

	if _, ok := top.Lhs.(*ast.BinaryOp); !ok {
		t.Fatalf("Lhs = %T, want nested BinaryOp (left-associative)", top.Lhs)
	}

	if _, ok := top.Rhs.(*ast.Identifier); !ok {
		t.Fatalf("Rhs = %T, want plain Identifier c", top.Rhs)
	}
}

func TestParsePowerRightAssociative(t *testing.T) {
	// a ** b ** c should parse as a ** (b ** c).
	src := `module m(input [7:0] a, input [7:0] b, input [7:0] c, output [7:0] o);
assign o = a ** b ** c; endmodule`
	m := mustParse(t, src).Modules[0]
	ca := m.Body[0].(*ast.ContinuousAssign)

	top := ca.Rhs.(*ast.BinaryOp)
	if top.Op != ast.OpPow {
		t.Fatalf("top op = %v, want OpPow", top.Op)
	}

	if _, ok := top.Rhs.(*ast.BinaryOp); !ok {
		t.Fatalf("Rhs = %T, want nested BinaryOp (right-associative **)", top.Rhs)
	}
}

func TestParseModuleInstancePositionalAndNamed(t *testing.T) {
	src := `
module top(input a, input b, output y);
  wire w;
  sub #(8) u1(a, b, w);
  sub u2(.x(a), .z(y), .k());
endmodule`

	m := mustParse(t, src).Modules[0]

	var instances []*ast.ModuleInstance

	for _, item := range m.Body {
		if inst, ok := item.(*ast.ModuleInstance); ok {
			instances = append(instances, inst)
		}
	}

	if len(instances) != 2 {
		t.Fatalf("got %d instances, want 2", len(instances))
	}

	if instances[0].InstanceName != "u1" || len(instances[0].PortConnections) != 3 {
		t.Errorf("instance 0 = %+v", instances[0])
	}

	if len(instances[0].ParamOverrides) != 1 {
		t.Errorf("instance 0 param overrides = %+v, want 1 positional override", instances[0].ParamOverrides)
	}

	named := instances[1].PortConnections
	if len(named) != 3 || named[0].Name != "x" || named[2].Name != "k" {
		t.Fatalf("instance 1 connections = %+v", named)
	}

	if named[2].Expr != nil {
		t.Errorf("explicit disconnect .k() should have nil Expr, got %v", named[2].Expr)
	}
}

func TestParseGenerateFor(t *testing.T) {
	src := `
module m();
  genvar i;
  generate
    for (i = 0; i < 4; i = i + 1) begin : g
      wire w;
    end
  endgenerate
endmodule`

	m := mustParse(t, src).Modules[0]

	var gen *ast.Generate

	for _, item := range m.Body {
		if g, ok := item.(*ast.Generate); ok {
			gen = g
		}
	}

	if gen == nil {
		t.Fatal("no Generate item found")
	}

	if len(gen.Items) != 1 {
		t.Fatalf("got %d generate items, want 1", len(gen.Items))
	}

	if _, ok := gen.Items[0].(*ast.For); !ok {
		t.Fatalf("generate item = %T, want *ast.For", gen.Items[0])
	}
}

func TestParseAlwaysStarSensitivity(t *testing.T) {
	src := `
module m(input a, input b, output reg o);
  always @(*) begin
    o = a & b;
  end
endmodule`

	m := mustParse(t, src).Modules[0]

	var ab *ast.AlwaysBlock

	for _, item := range m.Body {
		if a, ok := item.(*ast.AlwaysBlock); ok {
			ab = a
		}
	}

	if ab == nil || !ab.IsStar {
		t.Fatalf("AlwaysBlock = %+v, want IsStar=true", ab)
	}
}

func TestParseAlwaysPosedgeSensitivity(t *testing.T) {
	src := `
module m(input clk, input d, output reg q);
  always @(posedge clk) begin
    q <= d;
  end
endmodule`

	m := mustParse(t, src).Modules[0]

	var ab *ast.AlwaysBlock

	for _, item := range m.Body {
		if a, ok := item.(*ast.AlwaysBlock); ok {
			ab = a
		}
	}

	if ab == nil || len(ab.Sensitivity) != 1 || ab.Sensitivity[0].Edge != ast.EdgePos {
		t.Fatalf("AlwaysBlock = %+v, want single posedge entry", ab)
	}
}

func TestParseAttributeBindsToNextItem(t *testing.T) {
	src := `
module m(input a, output o);
  (* full_case *)
  assign o = a;
endmodule`

	m := mustParse(t, src).Modules[0]
	ca := m.Body[0].(*ast.ContinuousAssign)

	if len(ca.Attrs()) != 1 || ca.Attrs()[0].Name != "full_case" {
		t.Fatalf("ContinuousAssign attrs = %+v, want one full_case attribute", ca.Attrs())
	}
}

func TestParseHierarchicalIdentifier(t *testing.T) {
	src := `module m(output o); assign o = a.b.c; endmodule`
	m := mustParse(t, src).Modules[0]
	ca := m.Body[0].(*ast.ContinuousAssign)

	id, ok := ca.Rhs.(*ast.Identifier)
	if !ok {
		t.Fatalf("Rhs = %T, want *ast.Identifier", ca.Rhs)
	}

	if len(id.Path) != 3 || id.Path[0] != "a" || id.Path[2] != "c" {
		t.Fatalf("Path = %v, want [a b c]", id.Path)
	}
}

func TestParseMissingSemicolonReportsParseError(t *testing.T) {
	_, err := Parse("module t; wire a  wire b; endmodule", "t.v")
	if err == nil {
		t.Fatal("expected a ParseError for the missing semicolon")
	}

	perr, ok := err.(*diag.ParseError)
	if !ok {
		t.Fatalf("err = %T, want *diag.ParseError", err)
	}

	if perr.Line != 1 {
		t.Errorf("Line = %d, want 1", perr.Line)
	}

	if perr.Suggestion != "add a semicolon" {
		t.Errorf("Suggestion = %q, want %q", perr.Suggestion, "add a semicolon")
	}
}

func TestParsePositionsAreWithinModuleRange(t *testing.T) {
	m := mustParse(t, "module m(input a, output b); assign b = a; endmodule").Modules[0]
	ca := m.Body[0]

	if ca.Pos().Line < m.Pos().Line {
		t.Errorf("item line %d precedes module line %d", ca.Pos().Line, m.Pos().Line)
	}
}
