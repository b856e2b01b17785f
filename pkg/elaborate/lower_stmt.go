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

// memInfo records a memory-inference candidate (spec.md §4.3.5): a reg
// declared with an unpacked dimension, e.g. "reg [7:0] mem [0:255]".
type memInfo struct {
	Width     uint
	Depth     uint
	AddrWidth uint
}

// elaborateItems lowers one module body (or one module-instance's worth of
// local declarations reached through a generate unroll) in declaration
// order. prefix namespaces declared net and memory names.
func (el *elaborator) elaborateItems(items []ast.Item, scope *Scope, prefix string) error {
	for _, item := range items {
		if err := el.elaborateItem(item, scope, prefix); err != nil {
			return err
		}
	}

	return nil
}

// elaborateItem dispatches a single module-body item. It is also used to
// walk the Decls/Stmts of a Begin block reached through generate unrolling,
// since Item requires nothing beyond Node and every node legal in those
// positions already satisfies it structurally.
func (el *elaborator) elaborateItem(item ast.Node, scope *Scope, prefix string) error {
	switch n := item.(type) {
	case *ast.NetDecl:
		return el.declareNet(n, scope, prefix)

	case *ast.ParamDecl:
		v, err := evalConst(n.Value, scope)
		if err != nil {
			return err
		}

		scope.BindParam(n.Name, v)

		return nil

	case *ast.PortDecl, *ast.GenvarDecl, *ast.Task, *ast.Function:
		// Ports are handled by declarePorts; genvars are bound implicitly by
		// generate-for; tasks/functions fall outside the synthesizable
		// structural subset this elaborator lowers.
		return nil

	case *ast.ContinuousAssign:
		hint := uint(0)

		if cat, ok := n.Lhs.(*ast.Concat); ok {
			w, err := el.lhsPartWidth(cat, scope)
			if err != nil {
				return err
			}

			hint = w
		}

		rhs, err := el.lowerExpr(n.Rhs, scope, hint)
		if err != nil {
			return err
		}

		return el.assignToLHS(n.Lhs, rhs, scope)

	case *ast.AlwaysBlock:
		return el.elaborateAlways(n, scope)

	case *ast.InitialBlock:
		el.collectInit(n.Body, scope)
		return nil

	case *ast.ModuleInstance:
		return el.elaborateInstance(n, scope, prefix)

	case *ast.Generate:
		for _, g := range n.Items {
			if err := el.elaborateGenerateNode(g, scope, prefix); err != nil {
				return err
			}
		}

		return nil

	default:
		return nil
	}
}

// declareNet creates the Net backing a wire/reg declaration, or registers a
// memory-inference candidate when the declaration carries an unpacked
// dimension (spec.md §4.3.5).
func (el *elaborator) declareNet(n *ast.NetDecl, scope *Scope, prefix string) error {
	switch n.NetType {
	case ast.NetReal, ast.NetRealtime, ast.NetTime, ast.NetEvent:
		// Outside the synthesizable subset (spec.md Non-goals); declared
		// but carries no structural representation.
		return nil
	}

	width, err := rangeWidth(n.Range, scope)
	if err != nil {
		return err
	}

	if n.NetType == ast.NetInteger && n.Range == nil {
		width = 32
	}

	name := prefix + n.Name

	if len(n.UnpackedDims) > 0 {
		dim := n.UnpackedDims[0]

		msb, err := evalConst(dim.MSB, scope)
		if err != nil {
			return err
		}

		lsb, err := evalConst(dim.LSB, scope)
		if err != nil {
			return err
		}

		depth := uint(msb.Int-lsb.Int) + 1
		if msb.Int < lsb.Int {
			depth = uint(lsb.Int-msb.Int) + 1
		}

		el.memories[name] = &memInfo{Width: width, Depth: depth, AddrWidth: addrWidth(depth)}

		// A memory declaration has no scalar value of its own; reads and
		// writes are lowered directly against el.memories by name.
		return nil
	}

	net := el.nl.NewNet(name, width)
	scope.BindNet(n.Name, &NetInfo{Width: width, IsReg: n.NetType == ast.NetReg, Net: net})

	if n.Init != nil {
		v, err := el.lowerExpr(n.Init, scope, width)
		if err != nil {
			return err
		}

		if err := el.driveNet(net, v); err != nil {
			return elabErr(n.Pos(), n.Name, err.Error())
		}
	}

	return nil
}

func addrWidth(depth uint) uint {
	w := uint(0)
	for (uint(1) << w) < depth {
		w++
	}

	if w == 0 {
		w = 1
	}

	return w
}

// assignToLHS drives the net(s) backing lhs with value. A plain identifier
// drives its net directly; a concat target (spec.md §8 scenario 2's
// "assign {cout,sum}=a+b+cin") is decomposed into one SLICE per part, each
// driving that part's own net, MSB-first to match lowerConcat's IN0-is-MSB
// convention. Inside a procedural block, evalAssign skips memory-write
// targets (scanMemWrites lowers them) and rejects bit/part-select targets.
func (el *elaborator) assignToLHS(lhs ast.Expression, value *netlist.Net, scope *Scope) error {
	if cat, ok := lhs.(*ast.Concat); ok {
		return el.assignConcatLHS(cat, value, scope)
	}

	id, ok := lhs.(*ast.Identifier)
	if !ok {
		return elabErr(lhs.Pos(), "assignment", "assignment target must be a plain net, register name, or concat of such in this implementation")
	}

	info, ok := scope.LookupNet(id.Name)
	if !ok {
		return elabErr(lhs.Pos(), id.Name, "undeclared identifier")
	}

	return el.driveNet(info.Net, value)
}

// assignConcatLHS distributes value's bits across cat's parts, first part
// (MSB) down to last (LSB), each part sliced from value and driven through
// assignToLHS so a nested concat target is handled recursively.
func (el *elaborator) assignConcatLHS(cat *ast.Concat, value *netlist.Net, scope *Scope) error {
	widths := make([]uint, len(cat.Parts))
	total := uint(0)

	for i, part := range cat.Parts {
		w, err := el.lhsPartWidth(part, scope)
		if err != nil {
			return err
		}

		widths[i] = w
		total += w
	}

	offset := total

	for i, part := range cat.Parts {
		offset -= widths[i]

		piece, err := el.slice(part.Pos(), value, offset, widths[i])
		if err != nil {
			return err
		}

		if err := el.assignToLHS(part, piece, scope); err != nil {
			return err
		}
	}

	return nil
}

// lhsPartWidth resolves the bit width of one concat-target part, used to lay
// out the SLICE boundaries in assignConcatLHS.
func (el *elaborator) lhsPartWidth(part ast.Expression, scope *Scope) (uint, error) {
	switch p := part.(type) {
	case *ast.Identifier:
		info, ok := scope.LookupNet(p.Name)
		if !ok {
			return 0, elabErr(p.Pos(), p.Name, "undeclared identifier")
		}

		return info.Width, nil

	case *ast.Concat:
		total := uint(0)

		for _, sub := range p.Parts {
			w, err := el.lhsPartWidth(sub, scope)
			if err != nil {
				return 0, err
			}

			total += w
		}

		return total, nil

	default:
		return 0, elabErr(part.Pos(), "assignment", "concat-target parts must be plain net or register names in this implementation")
	}
}

// driveNet wires value as the driver of target through an interposed BUF
// cell. A BUF is always needed rather than reusing value's own driver pin,
// since a Pin belongs to exactly one Net.
func (el *elaborator) driveNet(target, value *netlist.Net) error {
	c := el.nl.NewCell(el.nextCellName("buf"), netlist.OpBuf)
	c.AddPin("A", netlist.PinIn, value.Width)
	y := c.AddPin("Y", netlist.PinOut, target.Width)

	if err := wireIn(c, "A", value); err != nil {
		return err
	}

	return target.Connect(y)
}

// binOpNets builds an arbitrary two-input/one-output primitive cell
// directly from already-lowered nets, bypassing lowerBinary's AST-node
// entry point. Used by case-statement label comparison and path-condition
// conjunction/disjunction, neither of which has an AST binary-operator node
// to lower.
func (el *elaborator) binOpNets(op netlist.CellOp, a, b *netlist.Net) *netlist.Net {
	width := a.Width
	if b.Width > width {
		width = b.Width
	}

	outWidth := width
	if op == netlist.OpEq || op == netlist.OpNe {
		outWidth = 1
	}

	c := el.nl.NewCell(el.nextCellName(op.String()), op)
	c.AddPin("A", netlist.PinIn, a.Width)
	c.AddPin("B", netlist.PinIn, b.Width)
	c.AddPin("Y", netlist.PinOut, outWidth)
	_ = wireIn(c, "A", a)
	_ = wireIn(c, "B", b)

	return el.newOutNet(c, "Y")
}

func (el *elaborator) notNet(a *netlist.Net) *netlist.Net {
	c := el.nl.NewCell(el.nextCellName("NOT"), netlist.OpNot)
	c.AddPin("A", netlist.PinIn, a.Width)
	c.AddPin("Y", netlist.PinOut, 1)
	_ = wireIn(c, "A", a)

	return el.newOutNet(c, "Y")
}
