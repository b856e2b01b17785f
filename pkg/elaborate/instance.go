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

// elaborateInstance flattens one module instantiation into the shared
// netlist (spec.md §4.3's "flattened gate-level Netlist"): rather than
// elaborating the child into a Netlist of its own and splicing cells across
// arenas, the child is elaborated directly into el.nl under a fresh
// parameter scope, with every net/memory name it declares namespaced under
// the instance path so sibling instances of the same module never collide.
// Input ports alias the parent's already-lowered net directly (no cell
// needed: reading a value is free in the net-based model). Output ports get
// a fresh net bound as the child's port net, and once the child body is
// fully elaborated (so something inside has driven it), that net is forwarded
// into the parent's target through the same BUF-based driveNet helper
// continuous assigns use.
func (el *elaborator) elaborateInstance(inst *ast.ModuleInstance, parentScope *Scope, prefix string) error {
	childMod, ok := el.modules[inst.ModuleName]
	if !ok {
		return elabErr(inst.Pos(), inst.ModuleName, "instantiated module not declared in this source file")
	}

	instPath := prefix + inst.InstanceName

	childScope := NewScope()

	if err := el.bindOverrides(childMod, inst, parentScope, childScope); err != nil {
		return err
	}

	// Resolve parameter defaults now (bindParams only fills gaps left by
	// bindOverrides above) so port widths that depend on an un-overridden
	// parameter can be computed before elaborateModuleBody runs; calling
	// bindParams again from there is a harmless no-op.
	if err := el.bindParams(childMod, childScope); err != nil {
		return err
	}

	portNets := map[string]*netlist.Net{}

	type outBinding struct {
		net  *netlist.Net
		expr ast.Expression
	}

	var outputs []outBinding

	for i, port := range childMod.Ports {
		width, err := rangeWidth(port.Range, childScope)
		if err != nil {
			return err
		}

		connExpr := findConnectionExpr(inst.PortConnections, port.Name, i)

		switch port.Direction {
		case ast.DirInput:
			if connExpr == nil {
				portNets[port.Name] = el.constNet(0, width, false)
				continue
			}

			net, err := el.lowerExpr(connExpr, parentScope, width)
			if err != nil {
				return err
			}

			portNets[port.Name] = net

		case ast.DirOutput, ast.DirInout:
			net := el.nl.NewNet(instPath+"."+port.Name, width)
			portNets[port.Name] = net

			if connExpr != nil {
				outputs = append(outputs, outBinding{net: net, expr: connExpr})
			}
		}
	}

	if err := el.elaborateModuleBody(childMod, childScope, portNets, instPath+"."); err != nil {
		return err
	}

	for _, ob := range outputs {
		if err := el.assignToLHS(ob.expr, ob.net, parentScope); err != nil {
			return err
		}
	}

	return nil
}

// bindOverrides evaluates an instance's "#(.PARAM(value), ...)" or
// positional parameter overrides in the parent's scope and pre-seeds them
// into childScope, so bindParams (which only fills gaps) leaves them as-is
// and applies the module's own defaults to everything else.
func (el *elaborator) bindOverrides(childMod *ast.Module, inst *ast.ModuleInstance, parentScope, childScope *Scope) error {
	for i, ov := range inst.ParamOverrides {
		name := ov.Name
		if name == "" {
			if i >= len(childMod.Params) {
				return elabErr(inst.Pos(), inst.InstanceName, "too many positional parameter overrides")
			}

			name = childMod.Params[i].Name
		}

		v, err := evalConst(ov.Value, parentScope)
		if err != nil {
			return err
		}

		childScope.BindParam(name, v)
	}

	return nil
}

// findConnectionExpr resolves the expression connected to the i'th
// declared port, either by name (".name(expr)") or by position, returning
// nil for an omitted or explicitly disconnected (".name()") port.
func findConnectionExpr(conns []ast.PortConnection, name string, index int) ast.Expression {
	named := false

	for _, c := range conns {
		if c.Name != "" {
			named = true

			if c.Name == name {
				return c.Expr
			}
		}
	}

	if named {
		return nil
	}

	if index < len(conns) {
		return conns[index].Expr
	}

	return nil
}
