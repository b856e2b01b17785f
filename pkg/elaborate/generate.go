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
)

// elaborateGenerateNode unrolls one generate-block construct at elaboration
// time (spec.md §4.3.2, §4.2's "generate…endgenerate is a transparent
// wrapper"): If/Case conditions and For bounds are resolved as compile-time
// constants, unlike the runtime MUX trees procedural.go builds for an
// always block's If/Case. It operates on ast.Node rather than a narrower
// interface since GenerateItem, Item, and Statement all require nothing
// beyond Node, so the same dispatch serves a Generate's top-level Items, a
// generate-If's taken branch, and a nested begin block's contents.
func (el *elaborator) elaborateGenerateNode(n ast.Node, scope *Scope, prefix string) error {
	switch v := n.(type) {
	case nil:
		return nil

	case *ast.Begin:
		for _, d := range v.Decls {
			if err := el.elaborateGenerateNode(d, scope, prefix); err != nil {
				return err
			}
		}

		for _, s := range v.Stmts {
			if err := el.elaborateGenerateNode(s, scope, prefix); err != nil {
				return err
			}
		}

		return nil

	case *ast.If:
		cond, err := evalConst(v.Cond, scope)
		if err != nil {
			return err
		}

		if cond.Int != 0 {
			return el.elaborateGenerateNode(v.Then, scope, prefix)
		}

		if v.Else != nil {
			return el.elaborateGenerateNode(v.Else, scope, prefix)
		}

		return nil

	case *ast.Case:
		return el.elaborateGenerateCase(v, scope, prefix)

	case *ast.For:
		return el.elaborateGenerateFor(v, scope, prefix)

	case *ast.NetDecl:
		return el.declareNet(v, scope, prefix)

	case *ast.ParamDecl:
		val, err := evalConst(v.Value, scope)
		if err != nil {
			return err
		}

		scope.BindParam(v.Name, val)

		return nil

	case *ast.ModuleInstance:
		return el.elaborateInstance(v, scope, prefix)

	case *ast.ContinuousAssign:
		rhs, err := el.lowerExpr(v.Rhs, scope, 0)
		if err != nil {
			return err
		}

		return el.assignToLHS(v.Lhs, rhs, scope)

	case *ast.AlwaysBlock:
		return el.elaborateAlways(v, scope)

	case *ast.GenvarDecl:
		return nil

	default:
		return nil
	}
}

func (el *elaborator) elaborateGenerateCase(c *ast.Case, scope *Scope, prefix string) error {
	val, err := evalConst(c.Expr, scope)
	if err != nil {
		return err
	}

	for _, item := range c.Items {
		for _, lbl := range item.Labels {
			lv, err := evalConst(lbl, scope)
			if err != nil {
				return err
			}

			if lv.Int == val.Int {
				return el.elaborateGenerateNode(item.Body, scope, prefix)
			}
		}
	}

	if c.Default != nil {
		return el.elaborateGenerateNode(c.Default, scope, prefix)
	}

	return nil
}

// elaborateGenerateFor unrolls a "for (genvar_init; cond; step) body"
// generate loop. Each iteration gets a name prefix ("gen<value>_", added
// after the enclosing prefix) applied to every net and instance it declares, so ten unrolled full-adder instances
// don't all try to create an identically named "carry" net.
func (el *elaborator) elaborateGenerateFor(f *ast.For, scope *Scope, prefix string) error {
	initAssign, ok := f.Init.(*ast.BlockingAssign)
	if !ok {
		return elabErr(f.Pos(), "generate for", "loop initializer must be a plain genvar assignment")
	}

	genvar, ok := initAssign.Lhs.(*ast.Identifier)
	if !ok {
		return elabErr(f.Pos(), "generate for", "loop initializer must assign a genvar identifier")
	}

	start, err := evalConst(initAssign.Rhs, scope)
	if err != nil {
		return err
	}

	loopScope := scope.Child()
	loopScope.BindParam(genvar.Name, start)

	stepAssign, ok := f.Step.(*ast.BlockingAssign)
	if !ok {
		return elabErr(f.Pos(), "generate for", "loop step must be a plain genvar assignment")
	}

	const maxIterations = 1 << 20

	for i := 0; i < maxIterations; i++ {
		cond, err := evalConst(f.Cond, loopScope)
		if err != nil {
			return err
		}

		if cond.Int == 0 {
			break
		}

		cur, _ := loopScope.LookupParam(genvar.Name)
		suffix := fmt.Sprintf("%sgen%d_", prefix, cur.Int)

		if err := el.elaborateGenerateNode(f.Body, loopScope, suffix); err != nil {
			return err
		}

		next, err := evalConst(stepAssign.Rhs, loopScope)
		if err != nil {
			return err
		}

		loopScope.BindParam(genvar.Name, next)
	}

	return nil
}
