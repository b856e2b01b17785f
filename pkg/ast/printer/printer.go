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

// Package printer renders an ast.SourceFile back to canonical Verilog-2005
// source text, per spec.md §8's "parse -> print -> parse yields a
// structurally equivalent AST" round-trip law. Each node kind gets one
// recursive print method in the style of the teacher's pkg/sexp.String()
// methods: a switch over the concrete node, building output through a
// strings.Builder rather than accumulating intermediate strings.
package printer

import (
	"fmt"
	"strings"

	"github.com/tcovert2015/vlfront/pkg/ast"
)

// Print renders sf as a complete Verilog-2005 source file.
func Print(sf *ast.SourceFile) string {
	var b strings.Builder

	for i, m := range sf.Modules {
		if i > 0 {
			b.WriteString("\n")
		}

		printModule(&b, m)
	}

	return b.String()
}

func printModule(b *strings.Builder, m *ast.Module) {
	fmt.Fprintf(b, "module %s", m.Name)

	if len(m.Params) > 0 {
		b.WriteString(" #(\n")

		for i, p := range m.Params {
			b.WriteString("  parameter ")

			if p.Range != nil {
				printRange(b, p.Range)
				b.WriteString(" ")
			}

			fmt.Fprintf(b, "%s = %s", p.Name, printExpr(p.Value))

			if i != len(m.Params)-1 {
				b.WriteString(",")
			}

			b.WriteString("\n")
		}

		b.WriteString(")")
	}

	b.WriteString(" (\n")

	for i, p := range m.Ports {
		b.WriteString("  ")
		b.WriteString(p.Direction.String())
		b.WriteString(" ")
		b.WriteString(p.NetType.String())
		b.WriteString(" ")

		if p.Range != nil {
			printRange(b, p.Range)
			b.WriteString(" ")
		}

		b.WriteString(p.Name)

		if i != len(m.Ports)-1 {
			b.WriteString(",")
		}

		b.WriteString("\n")
	}

	b.WriteString(");\n")

	for _, item := range m.Body {
		printItem(b, item, 1)
	}

	b.WriteString("endmodule\n")
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}

func printRange(b *strings.Builder, r *ast.Range) {
	fmt.Fprintf(b, "[%s:%s]", printExpr(r.MSB), printExpr(r.LSB))
}

func printItem(b *strings.Builder, item ast.Item, depth int) {
	switch n := item.(type) {
	case *ast.NetDecl:
		printNetDecl(b, n, depth)

	case *ast.ParamDecl:
		printParamDecl(b, n, depth)

	case *ast.PortDecl:
		indent(b, depth)
		fmt.Fprintf(b, "%s %s", n.Direction.String(), n.NetType.String())

		if n.Range != nil {
			b.WriteString(" ")
			printRange(b, n.Range)
		}

		fmt.Fprintf(b, " %s;\n", n.Name)

	case *ast.GenvarDecl:
		indent(b, depth)
		fmt.Fprintf(b, "genvar %s;\n", n.Name)

	case *ast.ContinuousAssign:
		indent(b, depth)
		fmt.Fprintf(b, "assign %s = %s;\n", printExpr(n.Lhs), printExpr(n.Rhs))

	case *ast.AlwaysBlock:
		printAlwaysBlock(b, n, depth)

	case *ast.InitialBlock:
		indent(b, depth)
		b.WriteString("initial ")
		printStmt(b, n.Body, depth)

	case *ast.ModuleInstance:
		printModuleInstance(b, n, depth)

	case *ast.Generate:
		indent(b, depth)
		b.WriteString("generate\n")

		for _, g := range n.Items {
			printGenerateItem(b, g, depth+1)
		}

		indent(b, depth)
		b.WriteString("endgenerate\n")

	case *ast.Task:
		printTask(b, n, depth)

	case *ast.Function:
		printFunction(b, n, depth)

	default:
		indent(b, depth)
		fmt.Fprintf(b, "// unsupported item %T\n", item)
	}
}

func printNetDecl(b *strings.Builder, n *ast.NetDecl, depth int) {
	indent(b, depth)
	b.WriteString(n.NetType.String())

	if n.Range != nil {
		b.WriteString(" ")
		printRange(b, n.Range)
	}

	fmt.Fprintf(b, " %s", n.Name)

	for _, d := range n.UnpackedDims {
		fmt.Fprintf(b, " [%s:%s]", printExpr(d.MSB), printExpr(d.LSB))
	}

	if n.Init != nil {
		fmt.Fprintf(b, " = %s", printExpr(n.Init))
	}

	b.WriteString(";\n")
}

func printParamDecl(b *strings.Builder, n *ast.ParamDecl, depth int) {
	indent(b, depth)

	if n.IsLocalparam {
		b.WriteString("localparam ")
	} else {
		b.WriteString("parameter ")
	}

	if n.Range != nil {
		printRange(b, n.Range)
		b.WriteString(" ")
	}

	fmt.Fprintf(b, "%s = %s;\n", n.Name, printExpr(n.Value))
}

func printAlwaysBlock(b *strings.Builder, n *ast.AlwaysBlock, depth int) {
	indent(b, depth)
	b.WriteString("always ")

	if n.IsStar {
		b.WriteString("@(*) ")
	} else if len(n.Sensitivity) > 0 {
		b.WriteString("@(")

		for i, s := range n.Sensitivity {
			if i > 0 {
				b.WriteString(" or ")
			}

			switch s.Edge {
			case ast.EdgePos:
				b.WriteString("posedge ")
			case ast.EdgeNeg:
				b.WriteString("negedge ")
			}

			b.WriteString(printExpr(s.Signal))
		}

		b.WriteString(") ")
	}

	printStmt(b, n.Body, depth)
}

func printModuleInstance(b *strings.Builder, n *ast.ModuleInstance, depth int) {
	indent(b, depth)
	b.WriteString(n.ModuleName)

	if len(n.ParamOverrides) > 0 {
		b.WriteString(" #(")

		for i, o := range n.ParamOverrides {
			if i > 0 {
				b.WriteString(", ")
			}

			if o.Name != "" {
				fmt.Fprintf(b, ".%s(%s)", o.Name, printExpr(o.Value))
			} else {
				b.WriteString(printExpr(o.Value))
			}
		}

		b.WriteString(")")
	}

	fmt.Fprintf(b, " %s (", n.InstanceName)

	for i, c := range n.PortConnections {
		if i > 0 {
			b.WriteString(", ")
		}

		if c.Name != "" {
			b.WriteString(".")
			b.WriteString(c.Name)
			b.WriteString("(")

			if c.Expr != nil {
				b.WriteString(printExpr(c.Expr))
			}

			b.WriteString(")")
		} else if c.Expr != nil {
			b.WriteString(printExpr(c.Expr))
		}
	}

	b.WriteString(");\n")
}

func printGenerateItem(b *strings.Builder, g ast.GenerateItem, depth int) {
	switch n := g.(type) {
	case *ast.If:
		printStmt(b, n, depth)
	case *ast.Case:
		printStmt(b, n, depth)
	case *ast.For:
		printStmt(b, n, depth)
	case *ast.Begin:
		printStmt(b, n, depth)
	case ast.Item:
		printItem(b, n, depth)
	default:
		indent(b, depth)
		fmt.Fprintf(b, "// unsupported generate item %T\n", g)
	}
}

func printTFPort(p ast.TaskOrFunctionPort) string {
	s := p.Direction.String()
	if p.Range != nil {
		s += " " + fmt.Sprintf("[%s:%s]", printExpr(p.Range.MSB), printExpr(p.Range.LSB))
	}

	return s + " " + p.Name
}

func printTask(b *strings.Builder, n *ast.Task, depth int) {
	indent(b, depth)
	fmt.Fprintf(b, "task %s(", n.Name)

	for i, p := range n.Ports {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(printTFPort(p))
	}

	b.WriteString(");\n")

	if n.Body != nil {
		printStmt(b, n.Body, depth+1)
	}

	indent(b, depth)
	b.WriteString("endtask\n")
}

func printFunction(b *strings.Builder, n *ast.Function, depth int) {
	indent(b, depth)
	fmt.Fprintf(b, "function ")

	if n.ReturnRange != nil {
		printRange(b, n.ReturnRange)
		b.WriteString(" ")
	}

	fmt.Fprintf(b, "%s(", n.Name)

	for i, p := range n.Ports {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(printTFPort(p))
	}

	b.WriteString(");\n")

	if n.Body != nil {
		printStmt(b, n.Body, depth+1)
	}

	indent(b, depth)
	b.WriteString("endfunction\n")
}

func printStmt(b *strings.Builder, s ast.Statement, depth int) {
	switch n := s.(type) {
	case nil:
		b.WriteString(";\n")

	case *ast.BlockingAssign:
		indent(b, depth)
		fmt.Fprintf(b, "%s = %s;\n", printExpr(n.Lhs), printExpr(n.Rhs))

	case *ast.NonBlockingAssign:
		indent(b, depth)
		fmt.Fprintf(b, "%s <= %s;\n", printExpr(n.Lhs), printExpr(n.Rhs))

	case *ast.If:
		indent(b, depth)
		fmt.Fprintf(b, "if (%s)\n", printExpr(n.Cond))
		printStmt(b, n.Then, depth+1)

		if n.Else != nil {
			indent(b, depth)
			b.WriteString("else\n")
			printStmt(b, n.Else, depth+1)
		}

	case *ast.Case:
		indent(b, depth)

		switch n.Kind {
		case ast.CaseX:
			b.WriteString("casex")
		case ast.CaseZ:
			b.WriteString("casez")
		default:
			b.WriteString("case")
		}

		fmt.Fprintf(b, " (%s)\n", printExpr(n.Expr))

		for _, it := range n.Items {
			indent(b, depth+1)

			for i, lbl := range it.Labels {
				if i > 0 {
					b.WriteString(", ")
				}

				b.WriteString(printExpr(lbl))
			}

			b.WriteString(":\n")
			printStmt(b, it.Body, depth+2)
		}

		if n.Default != nil {
			indent(b, depth+1)
			b.WriteString("default:\n")
			printStmt(b, n.Default, depth+2)
		}

		indent(b, depth)
		b.WriteString("endcase\n")

	case *ast.For:
		indent(b, depth)
		b.WriteString("for (")
		printStmtInline(b, n.Init)
		b.WriteString("; ")
		b.WriteString(printExpr(n.Cond))
		b.WriteString("; ")
		printStmtInline(b, n.Step)
		b.WriteString(")\n")
		printStmt(b, n.Body, depth+1)

	case *ast.While:
		indent(b, depth)
		fmt.Fprintf(b, "while (%s)\n", printExpr(n.Cond))
		printStmt(b, n.Body, depth+1)

	case *ast.Repeat:
		indent(b, depth)
		fmt.Fprintf(b, "repeat (%s)\n", printExpr(n.Count))
		printStmt(b, n.Body, depth+1)

	case *ast.Forever:
		indent(b, depth)
		b.WriteString("forever\n")
		printStmt(b, n.Body, depth+1)

	case *ast.Begin:
		indent(b, depth)

		if n.Name != "" {
			fmt.Fprintf(b, "begin: %s\n", n.Name)
		} else {
			b.WriteString("begin\n")
		}

		for _, d := range n.Decls {
			if decl, ok := d.(ast.Item); ok {
				printItem(b, decl, depth+1)
			}
		}

		for _, st := range n.Stmts {
			printStmt(b, st, depth+1)
		}

		indent(b, depth)
		b.WriteString("end\n")

	case *ast.EventTrigger:
		indent(b, depth)
		fmt.Fprintf(b, "-> %s;\n", n.Target)

	case *ast.Disable:
		indent(b, depth)
		fmt.Fprintf(b, "disable %s;\n", n.Target)

	case *ast.TaskCall:
		indent(b, depth)
		fmt.Fprintf(b, "%s(%s);\n", n.Name, printExprList(n.Args))

	case *ast.ModuleInstance:
		printModuleInstance(b, n, depth)

	case *ast.SystemTaskCall:
		indent(b, depth)
		fmt.Fprintf(b, "%s(%s);\n", n.Name, printExprList(n.Args))

	default:
		indent(b, depth)
		fmt.Fprintf(b, "// unsupported statement %T\n", s)
	}
}

// printStmtInline renders a for-loop init/step clause without its own
// trailing semicolon/newline, since the enclosing "for (...)" supplies those.
func printStmtInline(b *strings.Builder, s ast.Statement) {
	switch n := s.(type) {
	case *ast.BlockingAssign:
		fmt.Fprintf(b, "%s = %s", printExpr(n.Lhs), printExpr(n.Rhs))
	case *ast.NonBlockingAssign:
		fmt.Fprintf(b, "%s <= %s", printExpr(n.Lhs), printExpr(n.Rhs))
	}
}

func printExprList(es []ast.Expression) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = printExpr(e)
	}

	return strings.Join(parts, ", ")
}

var binOpText = map[ast.BinOp]string{
	ast.OpAdd: "+", ast.OpSub: "-", ast.OpMul: "*", ast.OpDiv: "/", ast.OpMod: "%", ast.OpPow: "**",
	ast.OpShl: "<<", ast.OpShr: ">>", ast.OpSShl: "<<<", ast.OpSShr: ">>>",
	ast.OpLt: "<", ast.OpLe: "<=", ast.OpGt: ">", ast.OpGe: ">=",
	ast.OpEq: "==", ast.OpNe: "!=", ast.OpCaseEq: "===", ast.OpCaseNe: "!==",
	ast.OpBAnd: "&", ast.OpBOr: "|", ast.OpBXor: "^", ast.OpBXnor: "~^",
	ast.OpLAnd: "&&", ast.OpLOr: "||",
}

var unOpText = map[ast.UnOp]string{
	ast.OpNeg: "-", ast.OpPlus: "+", ast.OpLNot: "!", ast.OpBNot: "~",
	ast.OpReduceAnd: "&", ast.OpReduceNand: "~&", ast.OpReduceOr: "|", ast.OpReduceNor: "~|",
	ast.OpReduceXor: "^", ast.OpReduceXnor: "~^",
}

// printExpr renders e, fully parenthesizing every binary/ternary
// subexpression. This sacrifices minimal-parens canonical style for a
// guarantee that re-parsing never needs the original precedence context
// reconstructed, which is what the round-trip law in spec.md §8 actually
// requires.
func printExpr(e ast.Expression) string {
	switch n := e.(type) {
	case nil:
		return ""

	case *ast.NumberLiteral:
		if n.Raw != "" {
			return n.Raw
		}

		return fmt.Sprintf("%d", n.Value)

	case *ast.StringLiteral:
		return fmt.Sprintf("%q", n.Value)

	case *ast.Identifier:
		return strings.Join(n.Path, ".")

	case *ast.BinaryOp:
		return fmt.Sprintf("(%s %s %s)", printExpr(n.Lhs), binOpText[n.Op], printExpr(n.Rhs))

	case *ast.UnaryOp:
		return fmt.Sprintf("(%s%s)", unOpText[n.Op], printExpr(n.Operand))

	case *ast.TernaryOp:
		return fmt.Sprintf("(%s ? %s : %s)", printExpr(n.Cond), printExpr(n.T), printExpr(n.F))

	case *ast.BitSelect:
		switch n.SelectType {
		case ast.SelectPlus:
			return fmt.Sprintf("%s[%s +: %s]", printExpr(n.Target), printExpr(n.Index), printExpr(n.Width))
		case ast.SelectMinus:
			return fmt.Sprintf("%s[%s -: %s]", printExpr(n.Target), printExpr(n.Index), printExpr(n.Width))
		default:
			return fmt.Sprintf("%s[%s]", printExpr(n.Target), printExpr(n.Index))
		}

	case *ast.PartSelect:
		return fmt.Sprintf("%s[%s:%s]", printExpr(n.Target), printExpr(n.MSB), printExpr(n.LSB))

	case *ast.Concat:
		return fmt.Sprintf("{%s}", printExprList(n.Parts))

	case *ast.Replication:
		return fmt.Sprintf("{%s{%s}}", printExpr(n.Count), printExpr(n.Value))

	case *ast.FunctionCall:
		return fmt.Sprintf("%s(%s)", n.Name, printExprList(n.Args))

	case *ast.SystemTaskCall:
		return fmt.Sprintf("%s(%s)", n.Name, printExprList(n.Args))

	default:
		return fmt.Sprintf("/* unsupported expr %T */", e)
	}
}
