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

// Package netlist defines the flattened gate-level netlist produced by
// pkg/elaborate: a directed hypergraph of primitive Cells and Nets
// connected through Pins, per spec.md §3.3. Cells and Nets live in two
// owning arenas keyed by integer ID (spec.md §5 "Memory ownership"); Pins
// hold IDs rather than direct references so deletion is a single-arena
// operation.
package netlist

import (
	"fmt"

	"go.uber.org/atomic"
)

// CellOp is the closed enum of primitive cell operations from spec.md §3.3.
type CellOp int

// The closed set of cell operations.
const (
	OpModuleInput CellOp = iota
	OpModuleOutput
	OpConst
	OpBuf
	OpNot
	OpAnd
	OpOr
	OpXor
	OpNand
	OpNor
	OpXnor
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpShl
	OpShr
	OpSar
	OpMux
	OpConcat
	OpSlice
	OpDff
	OpDffr
	OpDffe
	OpLatch
	OpMemRd
	OpMemWr
	OpSubcircuit
)

func (op CellOp) String() string {
	names := [...]string{
		"MODULE_INPUT", "MODULE_OUTPUT", "CONST", "BUF", "NOT", "AND", "OR", "XOR",
		"NAND", "NOR", "XNOR", "ADD", "SUB", "MUL", "DIV", "MOD", "EQ", "NE", "LT",
		"LE", "GT", "GE", "SHL", "SHR", "SAR", "MUX", "CONCAT", "SLICE", "DFF",
		"DFFR", "DFFE", "LATCH", "MEMRD", "MEMWR", "SUBCIRCUIT",
	}
	if int(op) >= 0 && int(op) < len(names) {
		return names[op]
	}

	return "UNKNOWN"
}

// IsSequential reports whether op is one of the state-holding cell kinds
// removed from the graph before cycle detection and topological sort
// (spec.md §3.3/§4.3.6).
func (op CellOp) IsSequential() bool {
	switch op {
	case OpDff, OpDffr, OpDffe, OpLatch, OpMemRd, OpMemWr:
		return true
	default:
		return false
	}
}

// PinDirection is the direction of a Pin relative to its owning Cell.
type PinDirection int

// The two pin directions.
const (
	PinIn PinDirection = iota
	PinOut
)

// ID is the canonical handle for a Cell or Net, unique per Netlist.
type ID uint64

// Pin is a connection point on a Cell. It belongs to exactly one cell and
// connects to at most one net, per spec.md §3.3.
type Pin struct {
	Cell      ID
	Name      string
	Direction PinDirection
	Width     uint
	Net       ID // 0 (NoNet) when unconnected
}

// NoNet is the sentinel Net ID meaning "unconnected".
const NoNet ID = 0

// Cell is a node in the netlist representing one primitive logic operation.
type Cell struct {
	ID         ID
	Name       string
	Op         CellOp
	Pins       map[string]*Pin
	Attributes map[string]any
}

// Net is a single-driver, multi-sink signal. At most one driver pin may be
// attached; Sinks may hold arbitrarily many.
type Net struct {
	ID      ID
	Name    string
	Width   uint
	Driver  *Pin
	Sinks   []*Pin
}

// Netlist is the directed hypergraph of Cells and Nets produced by
// elaboration. Cell/Net arenas are maps keyed by ID; the ID counters are
// atomic.Uint64 values scoped to the Netlist instance itself so that
// ResetIDs rewinding one Netlist's counters never affects another's
// (spec.md §5's determinism requirement).
type Netlist struct {
	Name      string
	Cells     map[ID]*Cell
	Nets      map[ID]*Net
	cellOrder []ID
	netOrder  []ID
	nextCell  atomic.Uint64
	nextNet   atomic.Uint64
}

// New constructs an empty Netlist for the named (top) module.
func New(name string) *Netlist {
	n := &Netlist{Name: name, Cells: map[ID]*Cell{}, Nets: map[ID]*Net{}}
	// ID 0 is reserved as NoNet/absent; start real allocation at 1.
	n.nextCell.Store(1)
	n.nextNet.Store(1)

	return n
}

// ResetIDs rewinds this Netlist's ID counters, the "reset_ids()" operation
// required by spec.md §5 to make elaboration tests deterministic across
// runs. Since the counters are scoped per-Netlist rather than global,
// resetting one netlist's IDs has no effect on any other.
func (n *Netlist) ResetIDs() {
	n.nextCell.Store(1)
	n.nextNet.Store(1)
}

// NewCell allocates and registers a cell with a fresh ID.
func (n *Netlist) NewCell(name string, op CellOp) *Cell {
	id := ID(n.nextCell.Add(1) - 1)
	c := &Cell{ID: id, Name: name, Op: op, Pins: map[string]*Pin{}, Attributes: map[string]any{}}
	n.Cells[id] = c
	n.cellOrder = append(n.cellOrder, id)

	return c
}

// NewNet allocates and registers a net with a fresh ID and given width.
func (n *Netlist) NewNet(name string, width uint) *Net {
	id := ID(n.nextNet.Add(1) - 1)
	net := &Net{ID: id, Name: name, Width: width}
	n.Nets[id] = net
	n.netOrder = append(n.netOrder, id)

	return net
}

// AddPin attaches a new pin to c and returns it.
func (c *Cell) AddPin(name string, dir PinDirection, width uint) *Pin {
	p := &Pin{Cell: c.ID, Name: name, Direction: dir, Width: width}
	c.Pins[name] = p

	return p
}

// Connect wires pin to net, enforcing the single-driver invariant of
// spec.md §3.3. Connecting a second driver to the same net returns an
// error describing the multi-driver conflict rather than silently
// overwriting the existing driver.
func (n *Net) Connect(p *Pin) error {
	p.Net = n.ID

	if p.Direction == PinOut {
		if n.Driver != nil && n.Driver != p {
			return fmt.Errorf("net %q already driven by pin %s.%s", n.Name, cellNameOf(n.Driver), n.Driver.Name)
		}

		n.Driver = p

		return nil
	}

	n.Sinks = append(n.Sinks, p)

	return nil
}

func cellNameOf(p *Pin) string {
	return fmt.Sprintf("cell#%d", p.Cell)
}

// CellsInOrder returns cells in creation order, matching spec.md §5's
// "output vectors... preserve source order" guarantee.
func (n *Netlist) CellsInOrder() []*Cell {
	cells := make([]*Cell, 0, len(n.cellOrder))

	for _, id := range n.cellOrder {
		if c, ok := n.Cells[id]; ok {
			cells = append(cells, c)
		}
	}

	return cells
}

// NetsInOrder returns nets in creation order.
func (n *Netlist) NetsInOrder() []*Net {
	nets := make([]*Net, 0, len(n.netOrder))

	for _, id := range n.netOrder {
		if net, ok := n.Nets[id]; ok {
			nets = append(nets, net)
		}
	}

	return nets
}

// RemoveCell deletes a cell from the arena. Pins reference cells/nets by
// ID, so this is the single-arena operation spec.md §5 describes; nets are
// untouched here and keep any pins that name the removed cell
// (graph.RemoveDeadCells does no net cleanup either).
func (n *Netlist) RemoveCell(id ID) {
	delete(n.Cells, id)
}
