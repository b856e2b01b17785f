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

import "testing"

// renameVisitor renames every Identifier named "a" to "renamed", exercising
// the transforming-Visitor contract (spec.md §6.1: "a transforming variant
// returns a (possibly new) node that replaces the original in its parent
// slot").
type renameVisitor struct{}

func (renameVisitor) Visit(n Node) Node {
	if id, ok := n.(*Identifier); ok && id.Name == "a" {
		id.Name = "renamed"
		return id
	}

	return GenericVisit(renameVisitor{}, n)
}

func TestGenericVisitRecursesIntoBinaryOp(t *testing.T) {
	bin := &BinaryOp{Op: OpAdd, Lhs: &Identifier{Name: "a", Path: []string{"a"}}, Rhs: &Identifier{Name: "b", Path: []string{"b"}}}

	renameVisitor{}.Visit(bin)

	lhs := bin.Lhs.(*Identifier)
	if lhs.Name != "renamed" {
		t.Errorf("Lhs.Name = %q, want renamed", lhs.Name)
	}

	rhs := bin.Rhs.(*Identifier)
	if rhs.Name != "b" {
		t.Errorf("Rhs.Name = %q, want unchanged b", rhs.Name)
	}
}

func TestWalkVisitsEveryNode(t *testing.T) {
	sf := &SourceFile{Modules: []*Module{{
		Name: "m",
		Body: []Item{
			&ContinuousAssign{
				Lhs: &Identifier{Name: "o", Path: []string{"o"}},
				Rhs: &BinaryOp{Op: OpBAnd,
					Lhs: &Identifier{Name: "a", Path: []string{"a"}},
					Rhs: &Identifier{Name: "b", Path: []string{"b"}},
				},
			},
		},
	}}}

	var visited []Node

	Walk(sf, func(n Node) { visited = append(visited, n) })

	if len(visited) < 7 {
		t.Fatalf("Walk visited %d nodes, want at least 7 (file, module, assign, binop, 3 idents)", len(visited))
	}

	if visited[0] != Node(sf) {
		t.Errorf("first visited node = %v, want the SourceFile itself", visited[0])
	}
}

func TestGenericVisitLeafNodeIsNoOp(t *testing.T) {
	lit := &NumberLiteral{Value: 5, Width: 8}

	result := GenericVisit(renameVisitor{}, lit)
	if result != Node(lit) {
		t.Errorf("GenericVisit on a leaf should return the same node unchanged")
	}
}
