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
	"github.com/tcovert2015/vlfront/pkg/ast"
	"github.com/tcovert2015/vlfront/pkg/netlist"
)

// elaborateAlways classifies an always block as combinational or sequential
// per its sensitivity list (spec.md §4.3.4): an edge-qualified entry makes
// it sequential, regardless of whether the block also declares "@(*)".
func (el *elaborator) elaborateAlways(ab *ast.AlwaysBlock, scope *Scope) error {
	if hasEdge(ab.Sensitivity) {
		return el.elaborateSequential(ab, scope)
	}

	return el.elaborateCombinational(ab, scope)
}

func hasEdge(sens []ast.SensitivityEntry) bool {
	for _, s := range sens {
		if s.Edge != ast.EdgeNone {
			return true
		}
	}

	return false
}

func edgeEntries(sens []ast.SensitivityEntry) []ast.SensitivityEntry {
	var out []ast.SensitivityEntry

	for _, s := range sens {
		if s.Edge != ast.EdgeNone {
			out = append(out, s)
		}
	}

	return out
}

// unwrapSingle strips a "begin ... end" wrapper down to its single
// statement, repeatedly, so the classification pattern-matching below sees
// through a labelled or unlabelled block holding nothing but one if.
func unwrapSingle(s ast.Statement) ast.Statement {
	b, ok := s.(*ast.Begin)
	if !ok || len(b.Decls) != 0 || len(b.Stmts) != 1 {
		return s
	}

	return unwrapSingle(b.Stmts[0])
}

// elaborateCombinational lowers an "always @(*)"/explicit-sensitivity-list
// combinational block by symbolically executing its body and driving every
// signal it assigns with the resulting MUX network.
func (el *elaborator) elaborateCombinational(ab *ast.AlwaysBlock, scope *Scope) error {
	final, err := el.evalStmt(ab.Body, scope.Child())
	if err != nil {
		return err
	}

	for name, info := range final.netsSince(scope) {
		target, ok := scope.LookupNet(name)
		if !ok {
			continue
		}

		if err := el.driveNet(target.Net, info.Net); err != nil {
			return elabErr(ab.Pos(), name, err.Error())
		}
	}

	return el.scanMemWrites(ab.Body, scope, nil, nil)
}

// elaborateSequential lowers a clocked always block to DFF/DFFR/DFFE cells,
// one per register the block assigns, per the classification heuristic of
// spec.md §4.3.4: a second edge-qualified sensitivity entry is an
// asynchronous reset (-> DFFR); absent that, a body that is a single
// "if (en) ...;" with no else is an enable-gated register (-> DFFE);
// anything else collapses to a plain DFF fed by whatever MUX network the
// body's conditionals compute for the next-state value.
func (el *elaborator) elaborateSequential(ab *ast.AlwaysBlock, scope *Scope) error {
	edges := edgeEntries(ab.Sensitivity)
	if len(edges) == 0 {
		return elabErr(ab.Pos(), "always", "clocked always block requires an edge-qualified sensitivity entry")
	}

	clkEdge := edges[0]

	clkNet, err := el.lowerExpr(clkEdge.Signal, scope, 1)
	if err != nil {
		return err
	}

	body := unwrapSingle(ab.Body)

	switch {
	case len(edges) > 1:
		if err := el.elaborateAsyncReset(ab, body, edges[1], clkEdge, clkNet, scope); err != nil {
			return err
		}

	default:
		if ifStmt, ok := body.(*ast.If); ok && ifStmt.Else == nil {
			if err := el.elaborateEnableGated(ifStmt, clkEdge, clkNet, scope); err != nil {
				return err
			}

			break
		}

		if err := el.elaboratePlainDFF(ab.Body, clkEdge, clkNet, scope); err != nil {
			return err
		}
	}

	return el.scanMemWrites(ab.Body, scope, nil, clkNet)
}

func (el *elaborator) elaborateAsyncReset(ab *ast.AlwaysBlock, body ast.Statement, rstEdge, clkEdge ast.SensitivityEntry, clkNet *netlist.Net, scope *Scope) error {
	ifStmt, ok := body.(*ast.If)
	if !ok {
		return elabErr(ab.Pos(), "always", "an asynchronous-reset always block must be a single if/else testing the reset signal")
	}

	rstNet, err := el.lowerExpr(rstEdge.Signal, scope, 1)
	if err != nil {
		return err
	}

	resetVals := el.collectConstAssigns(ifStmt.Then, scope)

	normalFinal, err := el.evalStmt(ifStmt.Else, scope.Child())
	if err != nil {
		return err
	}

	changed := normalFinal.netsSince(scope)

	for name := range resetVals {
		if _, ok := changed[name]; ok {
			continue
		}

		if info, ok := scope.LookupNet(name); ok {
			changed[name] = info
		}
	}

	for name, info := range changed {
		target, ok := scope.LookupNet(name)
		if !ok {
			continue
		}

		rval := resetVals[name]

		c := el.nl.NewCell(el.nextCellName("dffr_"+name), netlist.OpDffr)
		c.AddPin("CLK", netlist.PinIn, 1)
		c.AddPin("RST", netlist.PinIn, 1)
		c.AddPin("D", netlist.PinIn, info.Width)
		q := c.AddPin("Q", netlist.PinOut, target.Width)
		c.Attributes["rval"] = rval
		c.Attributes["clk_posedge"] = clkEdge.Edge == ast.EdgePos
		c.Attributes["rst_posedge"] = rstEdge.Edge == ast.EdgePos

		if v, ok := el.pendingInit[name]; ok {
			c.Attributes["init"] = v
		}

		if err := wireIn(c, "CLK", clkNet); err != nil {
			return err
		}

		if err := wireIn(c, "RST", rstNet); err != nil {
			return err
		}

		if err := wireIn(c, "D", info.Net); err != nil {
			return err
		}

		if err := target.Net.Connect(q); err != nil {
			return elabErr(ab.Pos(), name, err.Error())
		}
	}

	return nil
}

func (el *elaborator) elaborateEnableGated(ifStmt *ast.If, clkEdge ast.SensitivityEntry, clkNet *netlist.Net, scope *Scope) error {
	enNet, err := el.lowerExpr(ifStmt.Cond, scope, 1)
	if err != nil {
		return err
	}

	thenFinal, err := el.evalStmt(ifStmt.Then, scope.Child())
	if err != nil {
		return err
	}

	for name, info := range thenFinal.netsSince(scope) {
		target, ok := scope.LookupNet(name)
		if !ok {
			continue
		}

		c := el.nl.NewCell(el.nextCellName("dffe_"+name), netlist.OpDffe)
		c.AddPin("CLK", netlist.PinIn, 1)
		c.AddPin("EN", netlist.PinIn, 1)
		c.AddPin("D", netlist.PinIn, info.Width)
		q := c.AddPin("Q", netlist.PinOut, target.Width)
		c.Attributes["clk_posedge"] = clkEdge.Edge == ast.EdgePos

		if v, ok := el.pendingInit[name]; ok {
			c.Attributes["init"] = v
		}

		if err := wireIn(c, "CLK", clkNet); err != nil {
			return err
		}

		if err := wireIn(c, "EN", enNet); err != nil {
			return err
		}

		if err := wireIn(c, "D", info.Net); err != nil {
			return err
		}

		if err := target.Net.Connect(q); err != nil {
			return elabErr(ifStmt.Pos(), name, err.Error())
		}
	}

	return nil
}

func (el *elaborator) elaboratePlainDFF(body ast.Statement, clkEdge ast.SensitivityEntry, clkNet *netlist.Net, scope *Scope) error {
	final, err := el.evalStmt(body, scope.Child())
	if err != nil {
		return err
	}

	for name, info := range final.netsSince(scope) {
		target, ok := scope.LookupNet(name)
		if !ok {
			continue
		}

		c := el.nl.NewCell(el.nextCellName("dff_"+name), netlist.OpDff)
		c.AddPin("CLK", netlist.PinIn, 1)
		c.AddPin("D", netlist.PinIn, info.Width)
		q := c.AddPin("Q", netlist.PinOut, target.Width)
		c.Attributes["clk_posedge"] = clkEdge.Edge == ast.EdgePos

		if v, ok := el.pendingInit[name]; ok {
			c.Attributes["init"] = v
		}

		if err := wireIn(c, "CLK", clkNet); err != nil {
			return err
		}

		if err := wireIn(c, "D", info.Net); err != nil {
			return err
		}

		if err := target.Net.Connect(q); err != nil {
			return elabErr(body.Pos(), name, err.Error())
		}
	}

	return nil
}

// scanMemWrites walks a procedural body looking for non-blocking assigns
// into a known memory ("mem[addr] <= data;"), independent of the register
// D-value pass above (which skips such targets). pathCond accumulates the
// conjunction of enclosing if-conditions into the write-enable of the MEMWR
// cell it builds; nil means unconditionally true. clkNet is nil for a
// combinational always block, which produces an asynchronous/combinational
// write (spec.md's synthesizable subset has no such real hardware
// equivalent, but the elaborator doesn't forbid it either).
func (el *elaborator) scanMemWrites(s ast.Statement, scope *Scope, pathCond, clkNet *netlist.Net) error {
	switch n := s.(type) {
	case *ast.Begin:
		for _, inner := range n.Stmts {
			if err := el.scanMemWrites(inner, scope, pathCond, clkNet); err != nil {
				return err
			}
		}

	case *ast.If:
		cond, err := el.lowerExpr(n.Cond, scope, 1)
		if err != nil {
			return err
		}

		thenCond := cond
		if pathCond != nil {
			thenCond = el.binOpNets(netlist.OpAnd, pathCond, cond)
		}

		if err := el.scanMemWrites(n.Then, scope, thenCond, clkNet); err != nil {
			return err
		}

		if n.Else != nil {
			notCond := el.notNet(cond)
			elseCond := notCond

			if pathCond != nil {
				elseCond = el.binOpNets(netlist.OpAnd, pathCond, notCond)
			}

			if err := el.scanMemWrites(n.Else, scope, elseCond, clkNet); err != nil {
				return err
			}
		}

	case *ast.Case:
		caseVal, err := el.lowerExpr(n.Expr, scope, 0)
		if err != nil {
			return err
		}

		for _, item := range n.Items {
			var itemCond *netlist.Net

			for _, lbl := range item.Labels {
				lblNet, err := el.lowerExpr(lbl, scope, caseVal.Width)
				if err != nil {
					return err
				}

				eq := el.binOpNets(netlist.OpEq, caseVal, lblNet)

				if itemCond == nil {
					itemCond = eq
				} else {
					itemCond = el.binOpNets(netlist.OpOr, itemCond, eq)
				}
			}

			full := itemCond
			if pathCond != nil {
				full = el.binOpNets(netlist.OpAnd, pathCond, itemCond)
			}

			if err := el.scanMemWrites(item.Body, scope, full, clkNet); err != nil {
				return err
			}
		}

		if n.Default != nil {
			if err := el.scanMemWrites(n.Default, scope, pathCond, clkNet); err != nil {
				return err
			}
		}

	case *ast.NonBlockingAssign:
		return el.lowerMemWrite(n.Lhs, n.Rhs, scope, pathCond, clkNet)

	case *ast.BlockingAssign:
		return el.lowerMemWrite(n.Lhs, n.Rhs, scope, pathCond, clkNet)
	}

	return nil
}

func (el *elaborator) lowerMemWrite(lhs, rhs ast.Expression, scope *Scope, pathCond, clkNet *netlist.Net) error {
	bs, ok := lhs.(*ast.BitSelect)
	if !ok {
		return nil
	}

	target, ok := bs.Target.(*ast.Identifier)
	if !ok {
		return nil
	}

	mem, ok := el.memories[target.Name]
	if !ok {
		return nil
	}

	addrNet, err := el.lowerExpr(bs.Index, scope, mem.AddrWidth)
	if err != nil {
		return err
	}

	dataNet, err := el.lowerExpr(rhs, scope, mem.Width)
	if err != nil {
		return err
	}

	weNet := pathCond
	if weNet == nil {
		weNet = el.constNet(1, 1, false)
	}

	c := el.nl.NewCell(el.nextCellName("memwr_"+target.Name), netlist.OpMemWr)
	c.Attributes["memory"] = target.Name
	c.Attributes["depth"] = mem.Depth
	c.AddPin("ADDR", netlist.PinIn, mem.AddrWidth)
	c.AddPin("DATA", netlist.PinIn, mem.Width)
	c.AddPin("EN", netlist.PinIn, 1)

	if err := wireIn(c, "ADDR", addrNet); err != nil {
		return err
	}

	if err := wireIn(c, "DATA", dataNet); err != nil {
		return err
	}

	if err := wireIn(c, "EN", weNet); err != nil {
		return err
	}

	if clkNet != nil {
		c.AddPin("CLK", netlist.PinIn, 1)

		if err := wireIn(c, "CLK", clkNet); err != nil {
			return err
		}
	}

	return nil
}
