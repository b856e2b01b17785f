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
package graph

import (
	"testing"

	"github.com/tcovert2015/vlfront/pkg/netlist"
)

// chain builds a linear A -> B -> C netlist of three buffer cells wired in
// series, a minimal acyclic fixture reused across several tests.
func chain(n *netlist.Netlist) (a, b, c *netlist.Cell) {
	a = n.NewCell("a", netlist.OpBuf)
	b = n.NewCell("b", netlist.OpBuf)
	c = n.NewCell("c", netlist.OpBuf)

	ay := a.AddPin("Y", netlist.PinOut, 1)
	ba := b.AddPin("A", netlist.PinIn, 1)
	by := b.AddPin("Y", netlist.PinOut, 1)
	ca := c.AddPin("A", netlist.PinIn, 1)

	n1 := n.NewNet("n1", 1)
	n1.Connect(ay)
	n1.Connect(ba)

	n2 := n.NewNet("n2", 1)
	n2.Connect(by)
	n2.Connect(ca)

	return a, b, c
}

func TestTopoSortOrdersChainCorrectly(t *testing.T) {
	n := netlist.New("t")
	a, b, c := chain(n)

	order, err := TopoSort(n)
	if err != nil {
		t.Fatalf("TopoSort: %v", err)
	}

	pos := map[netlist.ID]int{}
	for i, id := range order {
		pos[id] = i
	}

	if pos[a.ID] >= pos[b.ID] || pos[b.ID] >= pos[c.ID] {
		t.Fatalf("order %v does not respect a->b->c dependency", order)
	}
}

func TestTopoSortDetectsCombinationalCycle(t *testing.T) {
	n := netlist.New("t")

	a := n.NewCell("a", netlist.OpBuf)
	b := n.NewCell("b", netlist.OpBuf)

	ay := a.AddPin("Y", netlist.PinOut, 1)
	aa := a.AddPin("A", netlist.PinIn, 1)
	ba := b.AddPin("A", netlist.PinIn, 1)
	by := b.AddPin("Y", netlist.PinOut, 1)

	n1 := n.NewNet("n1", 1)
	n1.Connect(ay)
	n1.Connect(ba)

	n2 := n.NewNet("n2", 1)
	n2.Connect(by)
	n2.Connect(aa)

	if _, err := TopoSort(n); err == nil {
		t.Fatal("expected a cycle error from TopoSort")
	}
}

func TestTopoSortExcludesSequentialCells(t *testing.T) {
	n := netlist.New("t")

	dff := n.NewCell("dff", netlist.OpDff)
	dff.AddPin("D", netlist.PinIn, 1)
	q := dff.AddPin("Q", netlist.PinOut, 1)

	buf := n.NewCell("buf", netlist.OpBuf)
	bufIn := buf.AddPin("A", netlist.PinIn, 1)

	net := n.NewNet("n", 1)
	net.Connect(q)
	net.Connect(bufIn)

	order, err := TopoSort(n)
	if err != nil {
		t.Fatalf("TopoSort: %v", err)
	}

	for _, id := range order {
		if id == dff.ID {
			t.Fatalf("TopoSort order %v includes sequential cell %d", order, dff.ID)
		}
	}
}

func TestFaninFanoutOneHop(t *testing.T) {
	n := netlist.New("t")
	a, b, c := chain(n)

	if fo := Fanout(n, a.ID); len(fo) != 1 || fo[0] != b.ID {
		t.Errorf("Fanout(a) = %v, want [%d]", fo, b.ID)
	}

	if fi := Fanin(n, c.ID); len(fi) != 1 || fi[0] != b.ID {
		t.Errorf("Fanin(c) = %v, want [%d]", fi, b.ID)
	}
}

func TestFaninFanoutCones(t *testing.T) {
	n := netlist.New("t")
	a, b, c := chain(n)

	cone := FanoutCone(n, a.ID)
	if len(cone) != 2 {
		t.Fatalf("FanoutCone(a) = %v, want [b, c]", cone)
	}

	found := map[netlist.ID]bool{}
	for _, id := range cone {
		found[id] = true
	}

	if !found[b.ID] || !found[c.ID] {
		t.Errorf("FanoutCone(a) = %v, want to include b and c", cone)
	}

	faninCone := FaninCone(n, c.ID)
	if len(faninCone) != 2 {
		t.Fatalf("FaninCone(c) = %v, want [b, a]", faninCone)
	}
}

func TestRemoveDeadCellsKeepsOnlyReachableFromOutputs(t *testing.T) {
	n := netlist.New("t")

	live := n.NewCell("live", netlist.OpBuf)
	liveY := live.AddPin("Y", netlist.PinOut, 1)

	out := n.NewCell("o", netlist.OpModuleOutput)
	outA := out.AddPin("A", netlist.PinIn, 1)

	dead := n.NewCell("dead", netlist.OpBuf)
	dead.AddPin("Y", netlist.PinOut, 1)

	net := n.NewNet("n", 1)
	net.Connect(liveY)
	net.Connect(outA)

	removed := RemoveDeadCells(n)
	if removed != 1 {
		t.Fatalf("RemoveDeadCells removed %d, want 1", removed)
	}

	if _, ok := n.Cells[dead.ID]; ok {
		t.Error("dead cell still present")
	}

	if _, ok := n.Cells[live.ID]; !ok {
		t.Error("live cell incorrectly removed")
	}
}

func TestRemoveDeadCellsKeepsModuleInputsEvenIfUnused(t *testing.T) {
	n := netlist.New("t")
	in := n.NewCell("unused_input", netlist.OpModuleInput)
	in.AddPin("Y", netlist.PinOut, 1)

	RemoveDeadCells(n)

	if _, ok := n.Cells[in.ID]; !ok {
		t.Error("unused MODULE_INPUT cell was removed, want kept")
	}
}

func TestDetectCyclesEmptyForAcyclicGraph(t *testing.T) {
	n := netlist.New("t")
	chain(n)

	if cycles := DetectCycles(n); len(cycles) != 0 {
		t.Fatalf("DetectCycles = %v, want none for acyclic chain", cycles)
	}
}

func TestDetectCyclesReportsSCC(t *testing.T) {
	n := netlist.New("t")

	a := n.NewCell("a", netlist.OpAnd)
	b := n.NewCell("b", netlist.OpOr)

	ay := a.AddPin("Y", netlist.PinOut, 1)
	aa := a.AddPin("A", netlist.PinIn, 1)
	ba := b.AddPin("A", netlist.PinIn, 1)
	by := b.AddPin("Y", netlist.PinOut, 1)

	n1 := n.NewNet("n1", 1)
	n1.Connect(ay)
	n1.Connect(ba)

	n2 := n.NewNet("n2", 1)
	n2.Connect(by)
	n2.Connect(aa)

	cycles := DetectCycles(n)
	if len(cycles) != 1 {
		t.Fatalf("DetectCycles = %v, want exactly one cycle", cycles)
	}

	if len(cycles[0].Cells) != 2 {
		t.Errorf("cycle cells = %v, want both a and b", cycles[0].Cells)
	}
}
