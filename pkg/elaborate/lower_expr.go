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
	"fmt"

	"github.com/tcovert2015/vlfront/pkg/ast"
	"github.com/tcovert2015/vlfront/pkg/netlist"
	"github.com/tcovert2015/vlfront/pkg/token"
)

// cellOpForBinary maps an AST binary operator to its primitive cell
// operation, per spec.md §4.3.3's expression-lowering table.
var cellOpForBinary = map[ast.BinOp]netlist.CellOp{
	ast.OpAdd: netlist.OpAdd, ast.OpSub: netlist.OpSub, ast.OpMul: netlist.OpMul,
	ast.OpDiv: netlist.OpDiv, ast.OpMod: netlist.OpMod,
	ast.OpEq: netlist.OpEq, ast.OpNe: netlist.OpNe, ast.OpCaseEq: netlist.OpEq, ast.OpCaseNe: netlist.OpNe,
	ast.OpLt: netlist.OpLt, ast.OpLe: netlist.OpLe, ast.OpGt: netlist.OpGt, ast.OpGe: netlist.OpGe,
	ast.OpShl: netlist.OpShl, ast.OpSShl: netlist.OpShl,
	ast.OpShr: netlist.OpShr, ast.OpSShr: netlist.OpSar,
	ast.OpBAnd: netlist.OpAnd, ast.OpBOr: netlist.OpOr, ast.OpBXor: netlist.OpXor, ast.OpBXnor: netlist.OpXnor,
	ast.OpLAnd: netlist.OpAnd, ast.OpLOr: netlist.OpOr,
}

var cellOpForUnary = map[ast.UnOp]netlist.CellOp{
	ast.OpBNot: netlist.OpNot, ast.OpLNot: netlist.OpNot,
	ast.OpReduceAnd: netlist.OpAnd, ast.OpReduceNand: netlist.OpNand,
	ast.OpReduceOr: netlist.OpOr, ast.OpReduceNor: netlist.OpNor,
	ast.OpReduceXor: netlist.OpXor, ast.OpReduceXnor: netlist.OpXnor,
}

// lowerExpr lowers e to the Net carrying its value, allocating whatever
// primitive cells are needed. A value is represented by the net it lives
// on rather than a driving pin: reading a register that this always block
// has not yet driven (clocked feedback, e.g. "count + 1") just wires a
// consumer onto that register's net, which gets its driver later when the
// sequential cell is built — net/cell creation order need not match
// dataflow order. scope resolves identifiers and constants; widthHint
// propagates the context width (e.g. an assignment's LHS width) to unsized
// number literals, per spec.md §4.3.3.
func (el *elaborator) lowerExpr(e ast.Expression, scope *Scope, widthHint uint) (*netlist.Net, error) {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		return el.constNet(n.Value, pickWidth(n.Width, widthHint), n.Signed), nil

	case *ast.Identifier:
		info, ok := scope.LookupNet(n.Name)
		if !ok {
			if v, ok := scope.LookupParam(n.Name); ok {
				return el.constNet(uint64(v.Int), pickWidth(v.Width, widthHint), v.Signed), nil
			}

			return nil, elabErr(n.Pos(), n.Name, "undeclared identifier")
		}

		return info.Net, nil

	case *ast.UnaryOp:
		return el.lowerUnary(n, scope, widthHint)

	case *ast.BinaryOp:
		return el.lowerBinary(n, scope, widthHint)

	case *ast.TernaryOp:
		return el.lowerTernary(n, scope, widthHint)

	case *ast.BitSelect:
		return el.lowerBitSelect(n, scope)

	case *ast.PartSelect:
		return el.lowerPartSelect(n, scope)

	case *ast.Concat:
		return el.lowerConcat(n, scope)

	case *ast.Replication:
		return el.lowerReplication(n, scope)

	case *ast.SystemTaskCall:
		v, err := evalConst(n, scope)
		if err != nil {
			return nil, err
		}

		return el.constNet(uint64(v.Int), pickWidth(v.Width, widthHint), v.Signed), nil

	default:
		return nil, elabErr(e.Pos(), "expression", fmt.Sprintf("%T is not supported outside a constant context", e))
	}
}

func pickWidth(declared, hint uint) uint {
	if declared != 0 {
		return declared
	}

	if hint != 0 {
		return hint
	}

	return 32
}

// constNet allocates a CONST cell and returns the net it drives. Constant
// cells are deduplicated per elaborator instance by (value, width, signed)
// so repeated literals don't bloat the netlist.
func (el *elaborator) constNet(value uint64, width uint, signed bool) *netlist.Net {
	key := constKey{value: value, width: width, signed: signed}

	if net, ok := el.constCache[key]; ok {
		return net
	}

	c := el.nl.NewCell(el.nextCellName(fmt.Sprintf("const_%d", value)), netlist.OpConst)
	c.Attributes["value"] = value
	c.Attributes["signed"] = signed
	y := c.AddPin("Y", netlist.PinOut, width)

	net := el.nl.NewNet(c.Name+"_y", width)
	_ = net.Connect(y)

	el.constCache[key] = net

	return net
}

type constKey struct {
	value  uint64
	width  uint
	signed bool
}

// wireIn connects net as a sink feeding one of c's input pins.
func wireIn(c *netlist.Cell, pinName string, net *netlist.Net) error {
	return net.Connect(c.Pins[pinName])
}

// newOutNet allocates the net driven by an output pin just added to a
// freshly created cell.
func (el *elaborator) newOutNet(c *netlist.Cell, pinName string) *netlist.Net {
	out := c.Pins[pinName]
	net := el.nl.NewNet(c.Name+"_"+pinName, out.Width)
	_ = net.Connect(out)

	return net
}

func (el *elaborator) lowerUnary(n *ast.UnaryOp, scope *Scope, widthHint uint) (*netlist.Net, error) {
	operand, err := el.lowerExpr(n.Operand, scope, widthHint)
	if err != nil {
		return nil, err
	}

	if n.Op == ast.OpPlus {
		return operand, nil
	}

	if n.Op == ast.OpNeg {
		zero := el.constNet(0, operand.Width, false)
		c := el.nl.NewCell(el.nextCellName("sub"), netlist.OpSub)
		c.AddPin("A", netlist.PinIn, operand.Width)
		c.AddPin("B", netlist.PinIn, operand.Width)
		c.AddPin("Y", netlist.PinOut, operand.Width)

		if err := wireIn(c, "A", zero); err != nil {
			return nil, err
		}

		if err := wireIn(c, "B", operand); err != nil {
			return nil, err
		}

		return el.newOutNet(c, "Y"), nil
	}

	op, ok := cellOpForUnary[n.Op]
	if !ok {
		return nil, elabErr(n.Pos(), "unary expression", "unsupported unary operator")
	}

	outWidth := operand.Width
	if n.Op != ast.OpBNot {
		outWidth = 1
	}

	c := el.nl.NewCell(el.nextCellName(op.String()), op)
	c.AddPin("A", netlist.PinIn, operand.Width)
	c.AddPin("Y", netlist.PinOut, outWidth)

	if err := wireIn(c, "A", operand); err != nil {
		return nil, err
	}

	return el.newOutNet(c, "Y"), nil
}

func (el *elaborator) lowerBinary(n *ast.BinaryOp, scope *Scope, widthHint uint) (*netlist.Net, error) {
	lhs, err := el.lowerExpr(n.Lhs, scope, widthHint)
	if err != nil {
		return nil, err
	}

	rhs, err := el.lowerExpr(n.Rhs, scope, lhs.Width)
	if err != nil {
		return nil, err
	}

	op, ok := cellOpForBinary[n.Op]
	if !ok {
		return nil, elabErr(n.Pos(), "binary expression", "unsupported binary operator")
	}

	outWidth := lhs.Width
	if rhs.Width > outWidth {
		outWidth = rhs.Width
	}

	switch n.Op {
	case ast.OpEq, ast.OpNe, ast.OpCaseEq, ast.OpCaseNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpLAnd, ast.OpLOr:
		outWidth = 1

	case ast.OpAdd, ast.OpSub:
		// spec.md §4.3.3: an ADD/SUB captured by a wider assignment target
		// (e.g. "{cout, sum} = a + b + cin") needs its carry-out bit, so
		// widthHint (the context's total target width, computed by
		// elaborateItem for a continuous assign, from the summed part widths
		// of a concat target, or passed by evalAssign as the LHS width)
		// grows the sum beyond max(widths)
		// when that target is wider than the operands alone would produce.
		if widthHint > outWidth {
			outWidth = widthHint
		}
	}

	c := el.nl.NewCell(el.nextCellName(op.String()), op)
	c.AddPin("A", netlist.PinIn, lhs.Width)
	c.AddPin("B", netlist.PinIn, rhs.Width)
	c.AddPin("Y", netlist.PinOut, outWidth)

	if err := wireIn(c, "A", lhs); err != nil {
		return nil, err
	}

	if err := wireIn(c, "B", rhs); err != nil {
		return nil, err
	}

	return el.newOutNet(c, "Y"), nil
}

func (el *elaborator) lowerTernary(n *ast.TernaryOp, scope *Scope, widthHint uint) (*netlist.Net, error) {
	cond, err := el.lowerExpr(n.Cond, scope, 1)
	if err != nil {
		return nil, err
	}

	t, err := el.lowerExpr(n.T, scope, widthHint)
	if err != nil {
		return nil, err
	}

	f, err := el.lowerExpr(n.F, scope, t.Width)
	if err != nil {
		return nil, err
	}

	return el.mux(cond, t, f)
}

// mux builds a MUX cell selecting b when s is true, a otherwise (A is the
// false/0 input, B the true/1 input).
func (el *elaborator) mux(s, b, a *netlist.Net) (*netlist.Net, error) {
	width := a.Width
	if b.Width > width {
		width = b.Width
	}

	c := el.nl.NewCell(el.nextCellName("mux"), netlist.OpMux)
	c.AddPin("S", netlist.PinIn, s.Width)
	c.AddPin("A", netlist.PinIn, width)
	c.AddPin("B", netlist.PinIn, width)
	c.AddPin("Y", netlist.PinOut, width)

	if err := wireIn(c, "S", s); err != nil {
		return nil, err
	}

	if err := wireIn(c, "A", a); err != nil {
		return nil, err
	}

	if err := wireIn(c, "B", b); err != nil {
		return nil, err
	}

	return el.newOutNet(c, "Y"), nil
}

// lowerBitSelect lowers "target[index]" and the +:/-: indexed-part-select
// forms to a SLICE cell. Dynamic (non-constant) index expressions are
// rejected: spec.md's synthesizable subset requires select bounds to
// resolve to constants once generate/parameter substitution is complete.
func (el *elaborator) lowerBitSelect(n *ast.BitSelect, scope *Scope) (*netlist.Net, error) {
	if id, ok := n.Target.(*ast.Identifier); ok {
		if mem, ok := el.memories[id.Name]; ok {
			return el.lowerMemRead(id.Name, mem, n.Index, scope)
		}
	}

	target, err := el.lowerExpr(n.Target, scope, 0)
	if err != nil {
		return nil, err
	}

	idx, err := evalConst(n.Index, scope)
	if err != nil {
		return nil, elabErr(n.Pos(), "bit-select", "index must be a constant expression in the synthesizable subset")
	}

	width := uint(1)
	lsb := uint(idx.Int)

	if n.Width != nil {
		w, err := evalConst(n.Width, scope)
		if err != nil {
			return nil, err
		}

		width = uint(w.Int)

		if n.SelectType == ast.SelectMinus {
			lsb = uint(idx.Int) - width + 1
		}
	}

	return el.slice(n.Pos(), target, lsb, width)
}

// lowerMemRead builds an asynchronous MEMRD cell for "mem[addr]", spec.md
// §4.3.5's simplest inference outcome: the elaborator does not attempt to
// distinguish a registered read port from a combinational one, since both
// compile to the same structural primitive at this level.
func (el *elaborator) lowerMemRead(name string, mem *memInfo, indexExpr ast.Expression, scope *Scope) (*netlist.Net, error) {
	addrNet, err := el.lowerExpr(indexExpr, scope, mem.AddrWidth)
	if err != nil {
		return nil, err
	}

	c := el.nl.NewCell(el.nextCellName("memrd_"+name), netlist.OpMemRd)
	c.Attributes["memory"] = name
	c.Attributes["depth"] = mem.Depth
	c.AddPin("ADDR", netlist.PinIn, mem.AddrWidth)
	c.AddPin("DATA", netlist.PinOut, mem.Width)

	if err := wireIn(c, "ADDR", addrNet); err != nil {
		return nil, err
	}

	return el.newOutNet(c, "DATA"), nil
}

func (el *elaborator) lowerPartSelect(n *ast.PartSelect, scope *Scope) (*netlist.Net, error) {
	target, err := el.lowerExpr(n.Target, scope, 0)
	if err != nil {
		return nil, err
	}

	msb, err := evalConst(n.MSB, scope)
	if err != nil {
		return nil, elabErr(n.Pos(), "part-select", "bounds must be constant expressions in the synthesizable subset")
	}

	lsb, err := evalConst(n.LSB, scope)
	if err != nil {
		return nil, err
	}

	width := uint(msb.Int-lsb.Int) + 1

	return el.slice(n.Pos(), target, uint(lsb.Int), width)
}

// slice carves out width bits starting at lsb from target, erroring rather
// than wiring a SLICE cell whose bounds run past target's actual width:
// netlist.Net/Pin/Connect (netlist.go) perform no bounds checking of their
// own, so a miscomputed lsb/width here would otherwise silently connect a
// pin to a nonexistent bit instead of failing elaboration.
func (el *elaborator) slice(pos token.Position, target *netlist.Net, lsb, width uint) (*netlist.Net, error) {
	if lsb+width > target.Width {
		return nil, elabErr(pos, "slice", fmt.Sprintf("bit range [%d:%d] exceeds source width %d", lsb+width-1, lsb, target.Width))
	}

	c := el.nl.NewCell(el.nextCellName("slice"), netlist.OpSlice)
	c.AddPin("A", netlist.PinIn, target.Width)
	c.Attributes["lsb"] = lsb
	c.Attributes["width"] = width
	c.AddPin("Y", netlist.PinOut, width)

	if err := wireIn(c, "A", target); err != nil {
		return nil, err
	}

	return el.newOutNet(c, "Y"), nil
}

func (el *elaborator) lowerConcat(n *ast.Concat, scope *Scope) (*netlist.Net, error) {
	nets := make([]*netlist.Net, 0, len(n.Parts))
	total := uint(0)

	for _, part := range n.Parts {
		v, err := el.lowerExpr(part, scope, 0)
		if err != nil {
			return nil, err
		}

		nets = append(nets, v)
		total += v.Width
	}

	c := el.nl.NewCell(el.nextCellName("concat"), netlist.OpConcat)

	for i, v := range nets {
		name := fmt.Sprintf("IN%d", i)
		c.AddPin(name, netlist.PinIn, v.Width)

		if err := wireIn(c, name, v); err != nil {
			return nil, err
		}
	}

	c.AddPin("Y", netlist.PinOut, total)

	return el.newOutNet(c, "Y"), nil
}

func (el *elaborator) lowerReplication(n *ast.Replication, scope *Scope) (*netlist.Net, error) {
	count, err := evalConst(n.Count, scope)
	if err != nil {
		return nil, elabErr(n.Pos(), "replication", "count must be a constant expression")
	}

	value, err := el.lowerExpr(n.Value, scope, 0)
	if err != nil {
		return nil, err
	}

	c := el.nl.NewCell(el.nextCellName("concat"), netlist.OpConcat)

	for i := 0; i < int(count.Int); i++ {
		name := fmt.Sprintf("IN%d", i)
		c.AddPin(name, netlist.PinIn, value.Width)

		if err := wireIn(c, name, value); err != nil {
			return nil, err
		}
	}

	c.AddPin("Y", netlist.PinOut, value.Width*uint(count.Int))

	return el.newOutNet(c, "Y"), nil
}
