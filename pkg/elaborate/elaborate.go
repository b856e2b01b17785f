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

// Package elaborate implements spec.md §4.3: parameter resolution, generate
// unrolling, expression/structural lowering to a flattened netlist.Netlist,
// memory inference, and the final combinational-cycle check.
package elaborate

import (
	"fmt"

	"github.com/tcovert2015/vlfront/pkg/ast"
	"github.com/tcovert2015/vlfront/pkg/diag"
	"github.com/tcovert2015/vlfront/pkg/netlist"
	"github.com/tcovert2015/vlfront/pkg/netlist/graph"
	"github.com/tcovert2015/vlfront/pkg/token"
)

// Config controls elaboration, per SPEC_FULL.md §4.5.
type Config struct {
	// Top names the module to elaborate. Empty selects the last module
	// declared in the source file, matching common single-file synthesis
	// flow convention.
	Top string
	// AllowUndrivenOutputs is set by the "elaborate" CLI subcommand's
	// --lenient flag. No elaboration step reads it: the elaborator runs no
	// undriven-output check, so it has no effect on the result.
	AllowUndrivenOutputs bool
}

// elaborator holds the mutable state threaded through one elaboration run.
// A single elaborator accumulates the whole flattened design: instantiated
// sub-modules (see instance.go) elaborate into the same nl rather than a
// netlist of their own, so module-instance "splicing" is just namespacing
// the child's declared net/cell names under the instance path instead of
// copying cells between arenas.
type elaborator struct {
	nl          *netlist.Netlist
	modules     map[string]*ast.Module
	warnings    *diag.Warnings
	constCache  map[constKey]*netlist.Net
	cellCounter map[string]int
	memories    map[string]*memInfo
	pendingInit map[string]int64
	cfg         Config
}

func newElaborator(nl *netlist.Netlist, modules map[string]*ast.Module, warnings *diag.Warnings, cfg Config) *elaborator {
	return &elaborator{
		nl:          nl,
		modules:     modules,
		warnings:    warnings,
		constCache:  map[constKey]*netlist.Net{},
		cellCounter: map[string]int{},
		memories:    map[string]*memInfo{},
		pendingInit: map[string]int64{},
		cfg:         cfg,
	}
}

func (el *elaborator) nextCellName(prefix string) string {
	el.cellCounter[prefix]++
	return fmt.Sprintf("%s$%d", prefix, el.cellCounter[prefix])
}

func elabErr(pos token.Position, entity, msg string) *diag.ElabError {
	return diag.NewElabError(pos.Line, pos.Column, entity, msg)
}

// Elaborate elaborates the named top module of sf into a flattened Netlist,
// per spec.md §4.3's pipeline: parameter/generate resolution, structural
// and expression lowering, memory inference, and finally a combinational
// cycle check (spec.md §4.3.6) before the result is returned.
func Elaborate(sf *ast.SourceFile, cfg Config) (*netlist.Netlist, *diag.Warnings, error) {
	modules := map[string]*ast.Module{}
	for _, m := range sf.Modules {
		modules[m.Name] = m
	}

	top := cfg.Top
	if top == "" {
		if len(sf.Modules) == 0 {
			return nil, nil, fmt.Errorf("source file declares no modules")
		}

		top = sf.Modules[len(sf.Modules)-1].Name
	}

	topMod, ok := modules[top]
	if !ok {
		return nil, nil, fmt.Errorf("module %q not found", top)
	}

	nl := netlist.New(top)
	warnings := &diag.Warnings{}
	el := newElaborator(nl, modules, warnings, cfg)

	scope := NewScope()
	if err := el.elaborateModuleBody(topMod, scope, nil, ""); err != nil {
		return nil, warnings, err
	}

	if cycles := graph.DetectCycles(nl); len(cycles) > 0 {
		cells := make([]string, 0, len(cycles[0].Cells))
		for _, id := range cycles[0].Cells {
			if c, ok := nl.Cells[id]; ok {
				cells = append(cells, c.Name)
			}
		}

		err := diag.NewElabError(0, 0, top, "combinational cycle detected")
		err.CyclePath = cells

		return nl, warnings, err
	}

	return nl, warnings, nil
}

// elaborateModuleBody lowers one module's declarations and items into el.nl
// under scope, which must already hold the module's resolved parameter
// bindings. portNets, when non-nil, supplies the per-instance port-net
// bindings a sub-module instantiation wires into its own I/O nets; nil
// means this is the top module, whose ports become MODULE_INPUT/
// MODULE_OUTPUT cells directly. prefix namespaces every net/memory this
// module declares (but not cell names, which are already unique via
// nextCellName's global counter) so sibling instances of the same module
// don't collide in the shared netlist.
func (el *elaborator) elaborateModuleBody(mod *ast.Module, scope *Scope, portNets map[string]*netlist.Net, prefix string) error {
	if err := el.bindParams(mod, scope); err != nil {
		return err
	}

	if err := el.declarePorts(mod, scope, portNets); err != nil {
		return err
	}

	return el.elaborateItems(mod.Body, scope, prefix)
}

// bindParams installs the module's own #(parameter...) defaults into scope.
// Instance-site overrides are applied by the caller (instance.go) before
// elaborateModuleBody is invoked, by pre-seeding scope with the override
// bindings; bindParams only fills in anything not already bound.
func (el *elaborator) bindParams(mod *ast.Module, scope *Scope) error {
	for _, p := range mod.Params {
		if _, ok := scope.LookupParam(p.Name); ok {
			continue
		}

		v, err := evalConst(p.Value, scope)
		if err != nil {
			return err
		}

		scope.BindParam(p.Name, v)
	}

	return nil
}

func (el *elaborator) declarePorts(mod *ast.Module, scope *Scope, portNets map[string]*netlist.Net) error {
	for _, p := range mod.Ports {
		width, err := rangeWidth(p.Range, scope)
		if err != nil {
			return err
		}

		if bound, ok := portNets[p.Name]; ok {
			scope.BindNet(p.Name, &NetInfo{Width: width, Net: bound})
			continue
		}

		// Top-level port: materialize as a MODULE_INPUT/MODULE_OUTPUT cell
		// directly on this module's own net.
		net := el.nl.NewNet(p.Name, width)
		scope.BindNet(p.Name, &NetInfo{Width: width, Net: net})

		switch p.Direction {
		case ast.DirInput, ast.DirInout:
			c := el.nl.NewCell(p.Name, netlist.OpModuleInput)
			y := c.AddPin("Y", netlist.PinOut, width)

			if err := net.Connect(y); err != nil {
				return elabErr(p.Pos(), p.Name, err.Error())
			}
		case ast.DirOutput:
			c := el.nl.NewCell(p.Name, netlist.OpModuleOutput)
			a := c.AddPin("A", netlist.PinIn, width)

			if err := net.Connect(a); err != nil {
				return elabErr(p.Pos(), p.Name, err.Error())
			}
		}
	}

	return nil
}

// rangeWidth resolves a declared [msb:lsb] range to a bit width, defaulting
// to 1 for a scalar (nil range) declaration.
func rangeWidth(r *ast.Range, scope *Scope) (uint, error) {
	if r == nil {
		return 1, nil
	}

	msb, err := evalConst(r.MSB, scope)
	if err != nil {
		return 0, err
	}

	lsb, err := evalConst(r.LSB, scope)
	if err != nil {
		return 0, err
	}

	diff := msb.Int - lsb.Int
	if diff < 0 {
		diff = -diff
	}

	return uint(diff) + 1, nil
}
