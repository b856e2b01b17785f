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

// Package graph implements the netlist graph algorithms of spec.md §4.4:
// topological sort over the non-sequential subgraph, one-hop fanin/fanout,
// transitive fanin/fanout cones via BFS, dead-cell removal by reverse
// reachability, and combinational-cycle detection via Tarjan's SCC
// algorithm. Visited-sets throughout are github.com/bits-and-blooms/bitset
// values keyed by netlist.ID, the same shape as the teacher's hand-rolled
// bit.Set promoted to a real third-party dependency.
package graph

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/tcovert2015/vlfront/pkg/netlist"
)

// adjacency builds a cell-to-cell successor map: for every output pin of a
// cell, the cells whose input pins are wired to the same net.
func adjacency(n *netlist.Netlist) map[netlist.ID][]netlist.ID {
	adj := make(map[netlist.ID][]netlist.ID)

	for _, net := range n.Nets {
		if net.Driver == nil {
			continue
		}

		for _, sink := range net.Sinks {
			adj[net.Driver.Cell] = append(adj[net.Driver.Cell], sink.Cell)
		}
	}

	return adj
}

// nonSequentialCells returns the IDs of every cell that is not one of the
// state-holding kinds (DFF*, LATCH, MEMRD, MEMWR), forming the subgraph
// spec.md §3.3/§4.3.6 requires be acyclic.
func nonSequentialCells(n *netlist.Netlist) []netlist.ID {
	var ids []netlist.ID

	for _, c := range n.CellsInOrder() {
		if !c.Op.IsSequential() {
			ids = append(ids, c.ID)
		}
	}

	return ids
}

// TopoSort returns the non-sequential cells of n in a topological order
// consistent with the net-driven dependency graph. It returns an error if
// the subgraph contains a cycle (see DetectCycles for the same check with a
// full cycle report).
func TopoSort(n *netlist.Netlist) ([]netlist.ID, error) {
	adj := adjacency(n)
	seqSet := sequentialSet(n)

	visited := bitset.New(uint(len(n.Cells)) + 1)
	onStack := bitset.New(uint(len(n.Cells)) + 1)

	var order []netlist.ID

	var visit func(id netlist.ID) error

	visit = func(id netlist.ID) error {
		if seqSet.Test(uint(id)) {
			return nil
		}

		if visited.Test(uint(id)) {
			return nil
		}

		if onStack.Test(uint(id)) {
			return fmt.Errorf("combinational cycle detected at cell %d", id)
		}

		onStack.Set(uint(id))

		for _, succ := range adj[id] {
			if err := visit(succ); err != nil {
				return err
			}
		}

		onStack.Clear(uint(id))
		visited.Set(uint(id))
		order = append(order, id)

		return nil
	}

	for _, id := range nonSequentialCells(n) {
		if err := visit(id); err != nil {
			return nil, err
		}
	}

	// visit appends in post-order; reverse for a forward topological order.
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}

	return order, nil
}

func sequentialSet(n *netlist.Netlist) *bitset.BitSet {
	bs := bitset.New(uint(len(n.Cells)) + 1)

	for _, c := range n.Cells {
		if c.Op.IsSequential() {
			bs.Set(uint(c.ID))
		}
	}

	return bs
}

// Fanout returns the cells directly driven (one hop) by the outputs of c.
func Fanout(n *netlist.Netlist, c netlist.ID) []netlist.ID {
	return adjacency(n)[c]
}

// Fanin returns the cells directly driving (one hop) the inputs of c.
func Fanin(n *netlist.Netlist, c netlist.ID) []netlist.ID {
	var result []netlist.ID

	cell, ok := n.Cells[c]
	if !ok {
		return nil
	}

	for _, pin := range cell.Pins {
		if pin.Direction != netlist.PinIn || pin.Net == netlist.NoNet {
			continue
		}

		net, ok := n.Nets[pin.Net]
		if !ok || net.Driver == nil {
			continue
		}

		result = append(result, net.Driver.Cell)
	}

	return result
}

// FaninCone returns the transitive fanin cone of c (every cell that can
// reach c), computed by BFS.
func FaninCone(n *netlist.Netlist, c netlist.ID) []netlist.ID {
	return bfsCone(n, c, Fanin)
}

// FanoutCone returns the transitive fanout cone of c (every cell reachable
// from c), computed by BFS.
func FanoutCone(n *netlist.Netlist, c netlist.ID) []netlist.ID {
	return bfsCone(n, c, Fanout)
}

func bfsCone(n *netlist.Netlist, start netlist.ID, step func(*netlist.Netlist, netlist.ID) []netlist.ID) []netlist.ID {
	visited := bitset.New(uint(len(n.Cells)) + 1)
	visited.Set(uint(start))

	queue := []netlist.ID{start}

	var result []netlist.ID

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, next := range step(n, cur) {
			if visited.Test(uint(next)) {
				continue
			}

			visited.Set(uint(next))
			result = append(result, next)
			queue = append(queue, next)
		}
	}

	return result
}

// RemoveDeadCells deletes every cell not transitively reachable backward
// (through fanin) from a MODULE_OUTPUT cell's driver pin, i.e. logic that
// can have no observable effect, per spec.md §4.4/§8 invariant 7. It
// returns the number of cells removed.
func RemoveDeadCells(n *netlist.Netlist) int {
	live := bitset.New(uint(len(n.Cells)) + 1)

	var roots []netlist.ID

	for _, c := range n.CellsInOrder() {
		if c.Op == netlist.OpModuleOutput {
			roots = append(roots, c.ID)
		}
	}

	queue := append([]netlist.ID{}, roots...)

	for _, id := range roots {
		live.Set(uint(id))
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, pred := range Fanin(n, cur) {
			if live.Test(uint(pred)) {
				continue
			}

			live.Set(uint(pred))
			queue = append(queue, pred)
		}
	}

	removed := 0

	for _, c := range n.CellsInOrder() {
		if c.Op == netlist.OpModuleInput {
			// Module inputs are kept even if unused downstream, since
			// they are part of the module's external interface.
			continue
		}

		if !live.Test(uint(c.ID)) {
			n.RemoveCell(c.ID)
			removed++
		}
	}

	return removed
}

// CycleError describes a combinational-cycle diagnostic: the cells forming
// a non-trivial strongly-connected component of the non-sequential
// subgraph.
type CycleError struct {
	Cells []netlist.ID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("combinational cycle through cells %v", e.Cells)
}

// DetectCycles runs Tarjan's strongly-connected-components algorithm over
// the subgraph induced by removing every sequential cell (DFF*, LATCH,
// MEMRD, MEMWR), per spec.md §4.3.6. Any non-trivial SCC (more than one
// cell, or a single cell with a self-loop) is reported as a CycleError.
func DetectCycles(n *netlist.Netlist) []*CycleError {
	adj := adjacency(n)
	seq := sequentialSet(n)

	var (
		index   int
		stack   []netlist.ID
		onStack = bitset.New(uint(len(n.Cells)) + 1)
		indices = map[netlist.ID]int{}
		lowlink = map[netlist.ID]int{}
		errs    []*CycleError
	)

	var strongconnect func(v netlist.ID)

	strongconnect = func(v netlist.ID) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack.Set(uint(v))

		for _, w := range adj[v] {
			if seq.Test(uint(w)) {
				continue
			}

			if _, seen := indices[w]; !seen {
				strongconnect(w)

				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack.Test(uint(w)) {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var component []netlist.ID

			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack.Clear(uint(w))
				component = append(component, w)

				if w == v {
					break
				}
			}

			if isNonTrivial(component, adj) {
				errs = append(errs, &CycleError{Cells: component})
			}
		}
	}

	for _, id := range nonSequentialCells(n) {
		if _, seen := indices[id]; !seen {
			strongconnect(id)
		}
	}

	return errs
}

func isNonTrivial(component []netlist.ID, adj map[netlist.ID][]netlist.ID) bool {
	if len(component) > 1 {
		return true
	}

	only := component[0]

	for _, succ := range adj[only] {
		if succ == only {
			return true
		}
	}

	return false
}
