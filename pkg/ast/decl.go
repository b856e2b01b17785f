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

// Dim is a single unpacked-dimension bound, e.g. the "[0:255]" of
// "reg [7:0] mem [0:255]".
type Dim struct {
	MSB, LSB Expression
}

// NetDecl declares a wire/reg/integer/real/realtime/time/event, per
// spec.md §3.2. An unpacked dimension present in UnpackedDims marks this
// declaration as a candidate for memory inference (spec.md §4.3.5).
type NetDecl struct {
	base
	NetType       NetType
	Range         *Range // nil if unpacked (scalar)
	Name          string
	UnpackedDims  []Dim
	Init          Expression // nil if undeclared
	IsPort        bool       // true when this declaration also backs a port
}

func (*NetDecl) declNode() {}

// ParamDecl declares a parameter or localparam.
type ParamDecl struct {
	base
	Name        string
	Value       Expression
	Range       *Range
	IsLocalparam bool
}

func (*ParamDecl) declNode() {}

// PortDecl declares a module port, normalized to ANSI shape by the parser
// regardless of whether the source used 1995-style or ANSI-style ports
// (spec.md §4.2 "Port style").
type PortDecl struct {
	base
	Direction Direction
	NetType   NetType
	Range     *Range
	Name      string
}

func (*PortDecl) declNode() {}

// Decl is implemented by declaration-category nodes that may appear in a
// module body list.
type Decl interface {
	Node
	declNode()
}

// TaskOrFunctionPort is a formal argument of a Task or Function.
type TaskOrFunctionPort struct {
	Direction Direction
	Range     *Range
	Name      string
}

// Task declares a "task ... endtask" block.
type Task struct {
	base
	Name      string
	Automatic bool
	Ports     []TaskOrFunctionPort
	Decls     []Node
	Body      Statement
}

func (*Task) declNode() {}

// Function declares a "function ... endfunction" block. ReturnRange is nil
// for an implicit 1-bit return.
type Function struct {
	base
	Name        string
	Automatic   bool
	ReturnRange *Range
	Ports       []TaskOrFunctionPort
	Decls       []Node
	Body        Statement
}

func (*Function) declNode() {}

// GenvarDecl declares a "genvar g;" used as the induction variable of a
// generate-for loop.
type GenvarDecl struct {
	base
	Name string
}

func (*GenvarDecl) declNode() {}
