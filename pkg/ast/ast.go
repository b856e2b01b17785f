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

// Package ast defines the typed Abstract Syntax Tree produced by pkg/parser.
// Every node category from spec.md §3.2 is its own Go type implementing
// Node; double dispatch over the concrete type (via the Visitor in
// visitor.go) replaces the isinstance chains of a dynamically typed
// implementation.
package ast

import "github.com/tcovert2015/vlfront/pkg/token"

// Attribute is the parsed payload of a "(* ... *)" block, bound to the
// nearest following item.
type Attribute struct {
	Name  string
	Value string // empty when the attribute carries no "=value"
}

// Node is implemented by every AST type. Pos reports the position of the
// node's first token; Attrs reports attributes bound to it (nil if none).
type Node interface {
	Pos() token.Position
	Attrs() []Attribute
}

// base is embedded by every concrete node to provide the common
// position/attribute bookkeeping spec.md §3.2 requires of "every node".
type base struct {
	pos   token.Position
	attrs []Attribute
}

// Pos implements Node.
func (b *base) Pos() token.Position { return b.pos }

// Attrs implements Node.
func (b *base) Attrs() []Attribute { return b.attrs }

// SetAttrs installs the attribute list the parser bound to this node.
func (b *base) SetAttrs(a []Attribute) { b.attrs = a }

// SetPos installs the position of a node's first token. Every concrete node
// embeds base unexported, so this promoted method is how pkg/parser (the
// sole constructor site for most node kinds) stamps position on a
// zero-value node after allocating it.
func (b *base) SetPos(pos token.Position) { b.pos = pos }

// NewBase constructs a base from a position, for use by parser constructors.
func NewBase(pos token.Position) base { return base{pos: pos} }

// Range describes a bit-range such as "[7:0]"; MSB/LSB may each be any
// constant Expression (resolved at elaboration, not at parse time).
type Range struct {
	MSB, LSB Expression
}

// NetType is the closed set of net/variable declaration kinds from
// spec.md §3.2.
type NetType int

// The declaration kinds a NetDecl may carry.
const (
	NetWire NetType = iota
	NetReg
	NetInteger
	NetReal
	NetRealtime
	NetTime
	NetEvent
)

func (t NetType) String() string {
	switch t {
	case NetWire:
		return "wire"
	case NetReg:
		return "reg"
	case NetInteger:
		return "integer"
	case NetReal:
		return "real"
	case NetRealtime:
		return "realtime"
	case NetTime:
		return "time"
	case NetEvent:
		return "event"
	default:
		return "wire"
	}
}

// Direction is the closed set of port directions.
type Direction int

// The three legal port directions.
const (
	DirInput Direction = iota
	DirOutput
	DirInout
)

func (d Direction) String() string {
	switch d {
	case DirInput:
		return "input"
	case DirOutput:
		return "output"
	case DirInout:
		return "inout"
	default:
		return "input"
	}
}
