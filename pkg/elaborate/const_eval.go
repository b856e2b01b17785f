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
	"math/bits"
	"strings"

	"github.com/tcovert2015/vlfront/pkg/ast"
	"github.com/tcovert2015/vlfront/pkg/diag"
	"github.com/tcovert2015/vlfront/pkg/token"
)

// constErr builds an ElabError positioned at pos, tagged as arising during
// constant-expression evaluation.
func constErr(pos token.Position, msg string) *diag.ElabError {
	return diag.NewElabError(pos.Line, pos.Column, "constant expression", msg)
}

// evalConst evaluates e to a compile-time constant, per spec.md §4.3.1. It
// is used for parameter/localparam values, range bounds, generate
// conditions/bounds, and replication/bit-select counts — everywhere the
// grammar requires a constant expression.
func evalConst(e ast.Expression, scope *Scope) (ConstValue, error) {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		if n.IsReal {
			return ConstValue{IsReal: true, Real: n.Real}, nil
		}

		return ConstValue{Int: int64(n.Value), Width: n.Width}, nil

	case *ast.Identifier:
		if v, ok := scope.LookupParam(n.Name); ok {
			return v, nil
		}

		return ConstValue{}, constErr(n.Pos(), fmt.Sprintf("%q is not a constant in this scope", n.Name))

	case *ast.UnaryOp:
		return evalUnaryConst(n, scope)

	case *ast.BinaryOp:
		return evalBinaryConst(n, scope)

	case *ast.TernaryOp:
		cond, err := evalConst(n.Cond, scope)
		if err != nil {
			return ConstValue{}, err
		}

		if cond.Int != 0 {
			return evalConst(n.T, scope)
		}

		return evalConst(n.F, scope)

	case *ast.SystemTaskCall:
		return evalSystemFunc(n, scope)

	case *ast.Concat:
		return evalConcatConst(n, scope)

	default:
		return ConstValue{}, constErr(e.Pos(), "expression is not constant")
	}
}

func evalUnaryConst(n *ast.UnaryOp, scope *Scope) (ConstValue, error) {
	v, err := evalConst(n.Operand, scope)
	if err != nil {
		return ConstValue{}, err
	}

	switch n.Op {
	case ast.OpNeg:
		return ConstValue{Int: -v.Int, Width: v.Width}, nil
	case ast.OpPlus:
		return v, nil
	case ast.OpLNot:
		return boolConst(v.Int == 0), nil
	case ast.OpBNot:
		return ConstValue{Int: ^v.Int, Width: v.Width}, nil
	case ast.OpReduceAnd:
		return boolConst(allOnes(v)), nil
	case ast.OpReduceNand:
		return boolConst(!allOnes(v)), nil
	case ast.OpReduceOr:
		return boolConst(v.Int != 0), nil
	case ast.OpReduceNor:
		return boolConst(v.Int == 0), nil
	case ast.OpReduceXor:
		return boolConst(bits.OnesCount64(uint64(v.Int))%2 == 1), nil
	case ast.OpReduceXnor:
		return boolConst(bits.OnesCount64(uint64(v.Int))%2 == 0), nil
	default:
		return ConstValue{}, constErr(n.Pos(), "unsupported unary operator in constant expression")
	}
}

func allOnes(v ConstValue) bool {
	if v.Width == 0 {
		return v.Int != 0
	}

	mask := int64(1)<<v.Width - 1

	return v.Int&mask == mask
}

func boolConst(b bool) ConstValue {
	if b {
		return ConstValue{Int: 1, Width: 1}
	}

	return ConstValue{Int: 0, Width: 1}
}

func evalBinaryConst(n *ast.BinaryOp, scope *Scope) (ConstValue, error) {
	l, err := evalConst(n.Lhs, scope)
	if err != nil {
		return ConstValue{}, err
	}

	r, err := evalConst(n.Rhs, scope)
	if err != nil {
		return ConstValue{}, err
	}

	width := l.Width
	if r.Width > width {
		width = r.Width
	}

	switch n.Op {
	case ast.OpAdd:
		return ConstValue{Int: l.Int + r.Int, Width: width}, nil
	case ast.OpSub:
		return ConstValue{Int: l.Int - r.Int, Width: width}, nil
	case ast.OpMul:
		return ConstValue{Int: l.Int * r.Int, Width: width}, nil
	case ast.OpDiv:
		if r.Int == 0 {
			return ConstValue{}, constErr(n.Pos(), "division by zero in constant expression")
		}

		return ConstValue{Int: l.Int / r.Int, Width: width}, nil
	case ast.OpMod:
		if r.Int == 0 {
			return ConstValue{}, constErr(n.Pos(), "modulo by zero in constant expression")
		}

		return ConstValue{Int: l.Int % r.Int, Width: width}, nil
	case ast.OpPow:
		return ConstValue{Int: ipow(l.Int, r.Int), Width: width}, nil
	case ast.OpShl:
		return ConstValue{Int: l.Int << uint(r.Int), Width: width}, nil
	case ast.OpShr, ast.OpSShr:
		return ConstValue{Int: l.Int >> uint(r.Int), Width: width}, nil
	case ast.OpSShl:
		return ConstValue{Int: l.Int << uint(r.Int), Width: width}, nil
	case ast.OpLt:
		return boolConst(l.Int < r.Int), nil
	case ast.OpLe:
		return boolConst(l.Int <= r.Int), nil
	case ast.OpGt:
		return boolConst(l.Int > r.Int), nil
	case ast.OpGe:
		return boolConst(l.Int >= r.Int), nil
	case ast.OpEq, ast.OpCaseEq:
		return boolConst(l.Int == r.Int), nil
	case ast.OpNe, ast.OpCaseNe:
		return boolConst(l.Int != r.Int), nil
	case ast.OpBAnd:
		return ConstValue{Int: l.Int & r.Int, Width: width}, nil
	case ast.OpBOr:
		return ConstValue{Int: l.Int | r.Int, Width: width}, nil
	case ast.OpBXor:
		return ConstValue{Int: l.Int ^ r.Int, Width: width}, nil
	case ast.OpBXnor:
		return ConstValue{Int: ^(l.Int ^ r.Int), Width: width}, nil
	case ast.OpLAnd:
		return boolConst(l.Int != 0 && r.Int != 0), nil
	case ast.OpLOr:
		return boolConst(l.Int != 0 || r.Int != 0), nil
	default:
		return ConstValue{}, constErr(n.Pos(), "unsupported binary operator in constant expression")
	}
}

func ipow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}

	result := int64(1)

	for i := int64(0); i < exp; i++ {
		result *= base
	}

	return result
}

func evalConcatConst(n *ast.Concat, scope *Scope) (ConstValue, error) {
	var (
		acc int64
		w   uint
	)

	for _, part := range n.Parts {
		v, err := evalConst(part, scope)
		if err != nil {
			return ConstValue{}, err
		}

		pw := v.Width
		if pw == 0 {
			pw = 32
		}

		acc = (acc << pw) | (v.Int & (1<<pw - 1))
		w += pw
	}

	return ConstValue{Int: acc, Width: w}, nil
}

// evalSystemFunc evaluates the constant-context system functions spec.md
// §4.3.1 calls out by name: $clog2, $bits, $signed, $unsigned.
func evalSystemFunc(n *ast.SystemTaskCall, scope *Scope) (ConstValue, error) {
	name := strings.ToLower(n.Name)

	switch name {
	case "$clog2":
		if len(n.Args) != 1 {
			return ConstValue{}, constErr(n.Pos(), "$clog2 takes exactly one argument")
		}

		v, err := evalConst(n.Args[0], scope)
		if err != nil {
			return ConstValue{}, err
		}

		return ConstValue{Int: clog2(v.Int), Width: 32}, nil

	case "$signed":
		if len(n.Args) != 1 {
			return ConstValue{}, constErr(n.Pos(), "$signed takes exactly one argument")
		}

		v, err := evalConst(n.Args[0], scope)
		if err != nil {
			return ConstValue{}, err
		}

		v.Signed = true

		return v, nil

	case "$unsigned":
		if len(n.Args) != 1 {
			return ConstValue{}, constErr(n.Pos(), "$unsigned takes exactly one argument")
		}

		v, err := evalConst(n.Args[0], scope)
		if err != nil {
			return ConstValue{}, err
		}

		v.Signed = false

		return v, nil

	case "$bits":
		if len(n.Args) != 1 {
			return ConstValue{}, constErr(n.Pos(), "$bits takes exactly one argument")
		}

		w, err := widthOfConstArg(n.Args[0], scope)
		if err != nil {
			return ConstValue{}, err
		}

		return ConstValue{Int: int64(w), Width: 32}, nil

	default:
		return ConstValue{}, constErr(n.Pos(), fmt.Sprintf("%s is not supported in a constant expression", n.Name))
	}
}

// widthOfConstArg resolves the bit width of $bits' argument: either an
// identifier naming a declared net (its declared width) or a constant
// expression (evaluated for its Width field).
func widthOfConstArg(e ast.Expression, scope *Scope) (uint, error) {
	if id, ok := e.(*ast.Identifier); ok {
		if info, ok := scope.LookupNet(id.Name); ok {
			return info.Width, nil
		}
	}

	v, err := evalConst(e, scope)
	if err != nil {
		return 0, err
	}

	if v.Width == 0 {
		return 32, nil
	}

	return v.Width, nil
}

// clog2 is the ceiling of log2(n), with the IEEE 1364-2005 convention that
// clog2(0) == clog2(1) == 0.
func clog2(n int64) int64 {
	if n <= 1 {
		return 0
	}

	v := uint64(n - 1)
	count := int64(0)

	for v > 0 {
		v >>= 1
		count++
	}

	return count
}
