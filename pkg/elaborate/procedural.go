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
	"github.com/tcovert2015/vlfront/pkg/diag"
	"github.com/tcovert2015/vlfront/pkg/netlist"
)

// evalStmt symbolically executes a procedural statement, returning a child
// scope in which every register/variable the statement assigns is rebound
// to the net carrying its new value. The chain from sc down to the result
// (Scope.netsSince) is how a caller discovers what changed. If/Case branches
// are resolved with a runtime MUX rather than taken/not-taken, since this is
// structural synthesis, not simulation: both branches are always lowered
// and selected between with the condition, per spec.md §4.3.4.
func (el *elaborator) evalStmt(s ast.Statement, sc *Scope) (*Scope, error) {
	switch n := s.(type) {
	case nil:
		return sc, nil

	case *ast.Begin:
		cur := sc

		for _, inner := range n.Stmts {
			var err error

			cur, err = el.evalStmt(inner, cur)
			if err != nil {
				return nil, err
			}
		}

		return cur, nil

	case *ast.BlockingAssign:
		return el.evalAssign(n.Lhs, n.Rhs, sc)

	case *ast.NonBlockingAssign:
		return el.evalAssign(n.Lhs, n.Rhs, sc)

	case *ast.If:
		return el.evalIf(n, sc)

	case *ast.Case:
		return el.evalCase(n, sc)

	case *ast.TaskCall, *ast.SystemTaskCall, *ast.EventTrigger, *ast.Disable:
		// Non-structural statement kinds have no structural effect.
		return sc, nil

	default:
		return sc, nil
	}
}

// evalAssign lowers rhs and rebinds lhs to it in a fresh child scope.
// Memory-write targets ("mem[addr] <= data;") are left for scanMemWrites,
// which walks the always-block body separately to build the WE-gated
// MEMWR cell with the correct path condition; evalAssign recognizes and
// skips them here so the D-value pass doesn't also trip over them.
func (el *elaborator) evalAssign(lhs, rhs ast.Expression, sc *Scope) (*Scope, error) {
	id, ok := lhs.(*ast.Identifier)
	if !ok {
		if bs, ok := lhs.(*ast.BitSelect); ok {
			if target, ok := bs.Target.(*ast.Identifier); ok {
				if _, isMem := el.memories[target.Name]; isMem {
					return sc, nil
				}
			}
		}

		return nil, elabErr(lhs.Pos(), "assignment", "assignment target must be a plain register name in this implementation")
	}

	info, ok := sc.LookupNet(id.Name)
	if !ok {
		return nil, elabErr(id.Pos(), id.Name, "undeclared identifier")
	}

	rhsNet, err := el.lowerExpr(rhs, sc, info.Width)
	if err != nil {
		return nil, err
	}

	child := sc.Child()
	child.BindNet(id.Name, &NetInfo{Width: info.Width, Signed: info.Signed, IsReg: info.IsReg, Net: rhsNet})

	return child, nil
}

func (el *elaborator) evalIf(n *ast.If, sc *Scope) (*Scope, error) {
	cond, err := el.lowerExpr(n.Cond, sc, 1)
	if err != nil {
		return nil, err
	}

	thenSc, err := el.evalStmt(n.Then, sc.Child())
	if err != nil {
		return nil, err
	}

	var elseSc *Scope
	if n.Else != nil {
		elseSc, err = el.evalStmt(n.Else, sc.Child())
		if err != nil {
			return nil, err
		}
	} else {
		elseSc = sc.Child()
	}

	return el.mergeBranches(sc, cond, thenSc, elseSc)
}

// mergeBranches folds two branch scopes back into one, MUXing every signal
// either branch touched. A signal a branch left untouched keeps the value
// it had entering the If/Case, which models the Verilog "incomplete
// assignment holds the old value" rule; since this is combinational/
// register-next-value logic rather than a true storage element, that fallen-
// through value is flagged as a likely unintended latch (spec.md §4.3.4).
func (el *elaborator) mergeBranches(base *Scope, cond *netlist.Net, thenSc, elseSc *Scope) (*Scope, error) {
	thenChanged := thenSc.netsSince(base)
	elseChanged := elseSc.netsSince(base)

	merged := base.Child()

	seen := map[string]bool{}

	for name := range thenChanged {
		seen[name] = true
	}

	for name := range elseChanged {
		seen[name] = true
	}

	for name := range seen {
		base0, ok := base.LookupNet(name)
		if !ok {
			continue
		}

		tInfo, tOK := thenChanged[name]
		eInfo, eOK := elseChanged[name]

		if !tOK {
			el.warnings.Add(diag.WarnUnintendedLatch, name, "not assigned on every branch of a conditional inside a procedural block")

			tInfo = base0
		}

		if !eOK {
			el.warnings.Add(diag.WarnUnintendedLatch, name, "not assigned on every branch of a conditional inside a procedural block")

			eInfo = base0
		}

		muxNet, err := el.mux(cond, tInfo.Net, eInfo.Net)
		if err != nil {
			return nil, err
		}

		merged.BindNet(name, &NetInfo{Width: base0.Width, Signed: base0.Signed, IsReg: base0.IsReg, Net: muxNet})
	}

	return merged, nil
}

// evalCase lowers a case statement as a priority-mux cascade: items are
// folded from last to first so an earlier label always overrides a later
// one's contribution, matching Verilog's first-match priority.
func (el *elaborator) evalCase(n *ast.Case, sc *Scope) (*Scope, error) {
	caseVal, err := el.lowerExpr(n.Expr, sc, 0)
	if err != nil {
		return nil, err
	}

	var acc *Scope

	if n.Default != nil {
		acc, err = el.evalStmt(n.Default, sc.Child())
		if err != nil {
			return nil, err
		}
	} else {
		acc = sc.Child()
	}

	for i := len(n.Items) - 1; i >= 0; i-- {
		item := n.Items[i]

		var cond *netlist.Net

		for _, lbl := range item.Labels {
			lblNet, err := el.lowerExpr(lbl, sc, caseVal.Width)
			if err != nil {
				return nil, err
			}

			eq := el.binOpNets(netlist.OpEq, caseVal, lblNet)

			if cond == nil {
				cond = eq
			} else {
				cond = el.binOpNets(netlist.OpOr, cond, eq)
			}
		}

		itemSc, err := el.evalStmt(item.Body, sc.Child())
		if err != nil {
			return nil, err
		}

		acc, err = el.mergeBranches(sc, cond, itemSc, acc)
		if err != nil {
			return nil, err
		}
	}

	return acc, nil
}

// collectConstAssigns flattens a flat sequence of "<ident> <= <const>;"
// assignments (the shape of an asynchronous-reset branch) into a name->value
// map. Anything else nested inside is silently ignored: a register whose
// reset-branch assignment is not of this shape gets no entry in the map.
func (el *elaborator) collectConstAssigns(s ast.Statement, scope *Scope) map[string]int64 {
	out := map[string]int64{}
	el.collectConstAssignsInto(s, scope, out)

	return out
}

func (el *elaborator) collectConstAssignsInto(s ast.Statement, scope *Scope, out map[string]int64) {
	switch n := s.(type) {
	case *ast.Begin:
		for _, inner := range n.Stmts {
			el.collectConstAssignsInto(inner, scope, out)
		}

	case *ast.NonBlockingAssign:
		id, ok := n.Lhs.(*ast.Identifier)
		if !ok {
			return
		}

		v, err := evalConst(n.Rhs, scope)
		if err != nil {
			return
		}

		out[id.Name] = v.Int

	case *ast.BlockingAssign:
		id, ok := n.Lhs.(*ast.Identifier)
		if !ok {
			return
		}

		v, err := evalConst(n.Rhs, scope)
		if err != nil {
			return
		}

		out[id.Name] = v.Int
	}
}

// collectInit extracts constant register initializations out of an initial
// block ("initial count = 0;"), recorded as the reset/power-on value
// attached to whatever sequential cell ends up driving that register.
func (el *elaborator) collectInit(s ast.Statement, scope *Scope) {
	switch n := s.(type) {
	case *ast.Begin:
		for _, inner := range n.Stmts {
			el.collectInit(inner, scope)
		}

	case *ast.BlockingAssign, *ast.NonBlockingAssign:
		var lhs, rhs ast.Expression

		if ba, ok := n.(*ast.BlockingAssign); ok {
			lhs, rhs = ba.Lhs, ba.Rhs
		} else if na, ok := n.(*ast.NonBlockingAssign); ok {
			lhs, rhs = na.Lhs, na.Rhs
		}

		id, ok := lhs.(*ast.Identifier)
		if !ok {
			return
		}

		v, err := evalConst(rhs, scope)
		if err != nil {
			return
		}

		el.pendingInit[id.Name] = v.Int
	}
}
