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
	"github.com/tcovert2015/vlfront/pkg/netlist"
)

// ConstValue is the result of constant-expression evaluation (spec.md
// §4.3.1): either an integer or a real, with a width and signedness for the
// integer case.
type ConstValue struct {
	IsReal bool
	Int    int64
	Width  uint
	Signed bool
	Real   float64
}

// NetInfo records what the elaborator knows about a declared net/reg: its
// resolved width, signedness, and the Net carrying its value. A value is
// always represented by the net it lives on rather than a specific driving
// pin, so a register's feedback read (D = Q + 1) can be lowered before the
// cell that eventually drives its net even exists.
type NetInfo struct {
	Width  uint
	Signed bool
	IsReg  bool
	Net    *netlist.Net
}

// Scope is a persistent scope chain: each nested scope extends its parent
// by reference rather than mutating it, so specialization under different
// genvar/parameter bindings (spec.md §4.3.2, §9) is side-effect-free for
// sibling branches that share the same parent.
type Scope struct {
	parent *Scope
	params map[string]ConstValue
	nets   map[string]*NetInfo
}

// NewScope constructs a root scope with no parent.
func NewScope() *Scope {
	return &Scope{params: map[string]ConstValue{}, nets: map[string]*NetInfo{}}
}

// Child constructs a new scope extending s. Lookups that miss in the child
// fall through to the parent; writes always land in the child, so a child
// scope can never mutate its parent's bindings.
func (s *Scope) Child() *Scope {
	return &Scope{parent: s, params: map[string]ConstValue{}, nets: map[string]*NetInfo{}}
}

// BindParam installs a constant binding in this scope.
func (s *Scope) BindParam(name string, v ConstValue) {
	s.params[name] = v
}

// LookupParam resolves a constant binding, searching outward through parent
// scopes.
func (s *Scope) LookupParam(name string) (ConstValue, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.params[name]; ok {
			return v, true
		}
	}

	return ConstValue{}, false
}

// BindNet installs a net binding in this scope.
func (s *Scope) BindNet(name string, info *NetInfo) {
	s.nets[name] = info
}

// LookupNet resolves a net binding, searching outward through parent
// scopes.
func (s *Scope) LookupNet(name string) (*NetInfo, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.nets[name]; ok {
			return v, true
		}
	}

	return nil, false
}

// netsSince collects every net binding introduced strictly between base and
// s, walking upward from s and stopping at (excluding) base. Where the same
// name is rebound at more than one level in that span, the binding closest
// to s — its most recent value — wins. Used by procedural-statement
// evaluation to discover which signals a branch actually assigned.
func (s *Scope) netsSince(base *Scope) map[string]*NetInfo {
	result := map[string]*NetInfo{}

	for sc := s; sc != nil && sc != base; sc = sc.parent {
		for k, v := range sc.nets {
			if _, ok := result[k]; !ok {
				result[k] = v
			}
		}
	}

	return result
}
