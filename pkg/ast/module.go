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
package ast

// SourceFile is the AST root, owning an ordered list of Modules, per
// spec.md §3.2.
type SourceFile struct {
	base
	Filename string
	Modules  []*Module
}

// ModuleParam is a module-level "#(parameter ...)" formal.
type ModuleParam struct {
	Name  string
	Value Expression // default value
	Range *Range
}

// Module is a single "module ... endmodule" definition.
type Module struct {
	base
	Name   string
	Params []ModuleParam
	Ports  []*PortDecl
	Body   []Item
}

// Item is implemented by every node legal directly inside a module body:
// declarations, structural constructs, and (for legacy compatibility with
// `initial`-only testbenches outside the synthesizable subset) statements
// are all represented, though only the synthesizable subset is lowered by
// the elaborator.
type Item interface {
	Node
}

// ContinuousAssign is a top-level "assign lhs = rhs;".
type ContinuousAssign struct {
	base
	Lhs, Rhs Expression
}

// Edge qualifies a sensitivity-list entry.
type Edge int

// The sensitivity-list edge qualifiers.
const (
	EdgeNone Edge = iota
	EdgePos
	EdgeNeg
)

// SensitivityEntry is one signal (with optional edge) in an always
// sensitivity list.
type SensitivityEntry struct {
	Signal Expression
	Edge   Edge
}

// AlwaysBlock is an "always @(...) body" construct. IsStar records "@(*)"
// sensitivity; each Sensitivity entry carries its own Edge qualifier, which
// elaboration classification reads (spec.md §4.3.4).
type AlwaysBlock struct {
	base
	Sensitivity []SensitivityEntry
	IsStar      bool
	Body        Statement
}

// InitialBlock is an "initial body" construct (spec.md §4.3.4: ignored for
// synthesis beyond constant reg initialization extraction).
type InitialBlock struct {
	base
	Body Statement
}

// PortConnection is one ".port(expr)" or positional connection of a
// ModuleInstance. Name is empty for a positional connection. Expr is nil
// for an explicit disconnect (".port()").
type PortConnection struct {
	Name string
	Expr Expression
}

// ParamOverride is one "#(.PARAM(value))" or positional override of a
// ModuleInstance.
type ParamOverride struct {
	Name  string // empty for positional
	Value Expression
}

// ModuleInstance instantiates a sub-module. It satisfies both Item (direct
// module-body context) and Statement (nested inside a generate-for/if body
// or a labelled begin/end block), since the grammar production is the same
// in both positions.
type ModuleInstance struct {
	base
	ModuleName      string
	InstanceName    string
	ParamOverrides  []ParamOverride
	PortConnections []PortConnection
}

func (*ModuleInstance) stmtNode() {}

// GenerateItem is implemented by the AST forms that may appear directly
// inside a "generate ... endgenerate" block: If, Case, For (tagged
// in_generate per spec.md §4.2), and nested Begin blocks.
type GenerateItem interface {
	Node
}

// Generate is a transparent "generate ... endgenerate" wrapper (spec.md
// §4.2: "generate…endgenerate is a transparent wrapper").
type Generate struct {
	base
	Items []GenerateItem
}
