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
package elaborate

import (
	"testing"

	"github.com/tcovert2015/vlfront/pkg/netlist"
	"github.com/tcovert2015/vlfront/pkg/parser"
)

func mustElaborate(t *testing.T, src string, cfg Config) *netlist.Netlist {
	t.Helper()

	sf, err := parser.Parse(src, "t.v")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	nl, _, err := Elaborate(sf, cfg)
	if err != nil {
		t.Fatalf("Elaborate: %v", err)
	}

	nl.ResetIDs()

	return nl
}

func countByOp(nl *netlist.Netlist, op netlist.CellOp) int {
	n := 0

	for _, c := range nl.Cells {
		if c.Op == op {
			n++
		}
	}

	return n
}

// Scenario 1 (spec.md §8): AND gate.
func TestElaborateAndGate(t *testing.T) {
	nl := mustElaborate(t, `module m(input a,b,output c); assign c=a&b; endmodule`, Config{})

	if len(nl.Cells) != 4 {
		t.Fatalf("got %d cells, want 4 (a, b, AND, c)", len(nl.Cells))
	}

	if countByOp(nl, netlist.OpModuleInput) != 2 {
		t.Errorf("MODULE_INPUT count = %d, want 2", countByOp(nl, netlist.OpModuleInput))
	}

	if countByOp(nl, netlist.OpAnd) != 1 {
		t.Errorf("AND count = %d, want 1", countByOp(nl, netlist.OpAnd))
	}

	if countByOp(nl, netlist.OpModuleOutput) != 1 {
		t.Errorf("MODULE_OUTPUT count = %d, want 1", countByOp(nl, netlist.OpModuleOutput))
	}

	var andCell *netlist.Cell

	for _, c := range nl.Cells {
		if c.Op == netlist.OpAnd {
			andCell = c
		}
	}

	y := andCell.Pins["Y"]
	if y == nil || y.Net == netlist.NoNet {
		t.Fatalf("AND cell Y pin not driving a net")
	}

	net := nl.Nets[y.Net]
	if net.Driver != y {
		t.Errorf("AND output net's driver is not the AND cell's Y pin")
	}

	foundOutputSink := false

	for _, sink := range net.Sinks {
		if nl.Cells[sink.Cell].Op == netlist.OpModuleOutput {
			foundOutputSink = true
		}
	}

	if !foundOutputSink {
		t.Error("AND output net does not drive the MODULE_OUTPUT pin")
	}
}

// Scenario 2 (spec.md §8): parametric adder with carry-out via concat.
func TestElaborateParametricAdder(t *testing.T) {
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

	nl := mustElaborate(t, src, Config{})

	if countByOp(nl, netlist.OpAdd) == 0 {
		t.Fatal("expected at least one ADD cell")
	}

	if countByOp(nl, netlist.OpSlice) == 0 {
		t.Fatal("expected SLICE cells splitting {cout, sum}")
	}

	// sum (an 8-bit arithmetic result) should have a net of width 8;
	// cout (the carry-out) a net of width 1.
	var sawWidth8, sawWidth1Carry bool

	for _, net := range nl.Nets {
		if net.Name == "sum" && net.Width == 8 {
			sawWidth8 = true
		}

		if net.Name == "cout" && net.Width == 1 {
			sawWidth1Carry = true
		}
	}

	if !sawWidth8 {
		t.Error("did not find an 8-bit sum net")
	}

	if !sawWidth1Carry {
		t.Error("did not find a 1-bit cout net")
	}

	// cout must be sliced from bit 8 of a genuinely 9-bit ADD result, not
	// bit 8 of an 8-bit net that doesn't exist.
	var coutSlice *netlist.Cell

	for _, c := range nl.Cells {
		if c.Op == netlist.OpSlice && c.Attributes["lsb"] == uint(8) {
			coutSlice = c
		}
	}

	if coutSlice == nil {
		t.Fatal("expected a SLICE cell reading bit 8 (the carry-out)")
	}

	if coutSlice.Attributes["width"] != uint(1) {
		t.Errorf("cout SLICE width = %v, want 1", coutSlice.Attributes["width"])
	}

	sourceNet := nl.Nets[coutSlice.Pins["A"].Net]
	if sourceNet.Width != 9 {
		t.Fatalf("cout SLICE reads from a net of width %d, want 9 (8-bit sum plus carry)", sourceNet.Width)
	}

	if sourceNet.Driver == nil || nl.Cells[sourceNet.Driver.Cell].Op != netlist.OpAdd {
		t.Error("the 9-bit net feeding cout's SLICE is not driven by an ADD cell")
	}
}

// TestElaborateConcatAssignRejectsMismatchedWidth locks in that slice now
// validates bounds against the source net's actual width (spec.md §4.3.3)
// instead of silently wiring a pin to a bit that doesn't exist.
func TestElaborateConcatAssignRejectsMismatchedWidth(t *testing.T) {
	src := `
module m(input [3:0] a, output [3:0] hi, output lo);
  assign {hi, lo} = a;
endmodule`

	sf, err := parser.Parse(src, "t.v")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if _, _, err := Elaborate(sf, Config{}); err == nil {
		t.Fatal("expected an ElabError: {hi,lo} wants 5 bits but a is a plain 4-bit identifier with no carry bit to grow it")
	}
}

// Scenario 3 (spec.md §8): counter with an active-low asynchronous reset
// and an enable.
func TestElaborateCounterWithResetAndEnable(t *testing.T) {
	src := `
module counter(input clk, input rst_n, input en, output reg [7:0] count);
  always @(posedge clk or negedge rst_n) begin
    if (!rst_n)
      count <= 8'd0;
    else if (en)
      count <= count + 1;
    else
      count <= count;
  end
endmodule`

	nl := mustElaborate(t, src, Config{})

	if countByOp(nl, netlist.OpDffr) == 0 {
		t.Fatal("expected at least one DFFR cell for the asynchronously-reset counter")
	}

	if countByOp(nl, netlist.OpMux) == 0 {
		t.Fatal("expected a MUX gating the enable")
	}

	if countByOp(nl, netlist.OpAdd) == 0 {
		t.Fatal("expected an ADD cell for count + 1")
	}
}

// Scenario 4 (spec.md §8): 4-to-1 mux built from nested ternaries.
func TestElaborateMux4ViaTernary(t *testing.T) {
	src := `
module mux4(input [1:0] sel, input a, input b, input c, input d, output y);
  assign y = (sel == 2'd0) ? a : (sel == 2'd1) ? b : (sel == 2'd2) ? c : d;
endmodule`

	nl := mustElaborate(t, src, Config{})

	if got := countByOp(nl, netlist.OpMux); got != 3 {
		t.Fatalf("MUX count = %d, want 3", got)
	}

	if got := countByOp(nl, netlist.OpEq); got != 3 {
		t.Fatalf("EQ count = %d, want 3 (one per ternary condition)", got)
	}

	for _, c := range nl.Cells {
		if c.Op != netlist.OpMux {
			continue
		}

		s := c.Pins["S"]
		if s == nil || s.Net == netlist.NoNet {
			t.Fatalf("MUX cell %q has no S pin driven", c.Name)
		}

		driver := nl.Nets[s.Net].Driver
		if driver == nil || nl.Cells[driver.Cell].Op != netlist.OpEq {
			t.Errorf("MUX %q's S pin is not driven by an EQ cell", c.Name)
		}
	}
}

// Scenario 5 (spec.md §8): single-port RAM with clocked write, combinational
// read.
func TestElaborateSinglePortRAM(t *testing.T) {
	src := `
module ram(input clk, input we, input [7:0] addr, input [7:0] wdata, output [7:0] rdata);
  reg [7:0] mem [0:255];

  always @(posedge clk) begin
    if (we)
      mem[addr] <= wdata;
  end

  assign rdata = mem[addr];
endmodule`

	nl := mustElaborate(t, src, Config{})

	if got := countByOp(nl, netlist.OpMemWr); got != 1 {
		t.Fatalf("MEMWR count = %d, want 1", got)
	}

	if got := countByOp(nl, netlist.OpMemRd); got != 1 {
		t.Fatalf("MEMRD count = %d, want 1", got)
	}

	var wr, rd *netlist.Cell

	for _, c := range nl.Cells {
		switch c.Op {
		case netlist.OpMemWr:
			wr = c
		case netlist.OpMemRd:
			rd = c
		}
	}

	for _, pin := range []string{"CLK", "ADDR", "DATA", "EN"} {
		if wr.Pins[pin] == nil {
			t.Errorf("MEMWR missing pin %s", pin)
		}
	}

	for _, pin := range []string{"ADDR", "DATA"} {
		if rd.Pins[pin] == nil {
			t.Errorf("MEMRD missing pin %s", pin)
		}
	}

	if wr.Attributes["memory"] != "mem" || rd.Attributes["memory"] != "mem" {
		t.Errorf("memory attribute mismatch: wr=%v rd=%v", wr.Attributes["memory"], rd.Attributes["memory"])
	}

	if wr.Attributes["depth"] != uint(256) {
		t.Errorf("depth attribute = %v (%T), want uint 256", wr.Attributes["depth"], wr.Attributes["depth"])
	}
}

// Scenario 6 (spec.md §8, adapted): a combinational feedback loop must be
// rejected.
func TestElaborateCombinationalCycleIsRejected(t *testing.T) {
	src := `
module m(input a, output o);
  wire x, y;
  assign x = y & a;
  assign y = x | a;
  assign o = y;
endmodule`

	sf, err := parser.Parse(src, "t.v")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	_, _, err = Elaborate(sf, Config{})
	if err == nil {
		t.Fatal("expected a combinational-cycle ElabError")
	}
}

func TestElaborateUnresolvedIdentifierIsElabError(t *testing.T) {
	src := `module m(output o); assign o = undeclared_signal; endmodule`

	sf, err := parser.Parse(src, "t.v")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if _, _, err := Elaborate(sf, Config{}); err == nil {
		t.Fatal("expected an ElabError for the unresolved identifier")
	}
}

func TestElaborateModuleInstanceFlattensWithPrefix(t *testing.T) {
	src := `
module sub(input x, output y);
  assign y = ~x;
endmodule

module top(input a, output b);
  sub u1(.x(a), .y(b));
endmodule`

	nl := mustElaborate(t, src, Config{})

	if countByOp(nl, netlist.OpNot) != 1 {
		t.Fatalf("NOT count = %d, want 1 (from the instantiated sub)", countByOp(nl, netlist.OpNot))
	}

	prefixed := false

	for _, net := range nl.NetsInOrder() {
		if net.Name == "u1.y" {
			prefixed = true
		}
	}

	if !prefixed {
		t.Fatal("no net named u1.y: the instance's output net is not prefixed with its instance path")
	}
}

func TestElaborateDeterministicAcrossRunsWithResetIDs(t *testing.T) {
	src := `module m(input a,b,output c); assign c=a&b; endmodule`

	sf, err := parser.Parse(src, "t.v")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	dump := func() string {
		nl, _, err := Elaborate(sf, Config{})
		if err != nil {
			t.Fatalf("Elaborate: %v", err)
		}

		nl.ResetIDs()

		s := ""
		for _, c := range nl.CellsInOrder() {
			s += c.Op.String() + ";"
		}

		return s
	}

	d1 := dump()
	d2 := dump()

	if d1 != d2 {
		t.Errorf("elaboration not deterministic: %q vs %q", d1, d2)
	}
}

func TestElaborateDefaultsToLastModuleAsTop(t *testing.T) {
	src := `
module first(input a, output b); assign b = a; endmodule
module second(input a, output b); assign b = ~a; endmodule`

	nl := mustElaborate(t, src, Config{})

	if nl.Name != "second" {
		t.Errorf("top module = %q, want second (the last declared)", nl.Name)
	}
}

func TestElaborateExplicitTopSelectsNamedModule(t *testing.T) {
	src := `
module first(input a, output b); assign b = a; endmodule
module second(input a, output b); assign b = ~a; endmodule`

	nl := mustElaborate(t, src, Config{Top: "first"})

	if nl.Name != "first" {
		t.Errorf("top module = %q, want first", nl.Name)
	}
}
