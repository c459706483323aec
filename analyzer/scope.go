// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package analyzer

import "github.com/ankoh/dashql-sub002/ast"

// scope is the internal, pointer-linked name scope built while walking the
// AST bottom-up (§4.E). NameScope (analyzed_script.go) is the exported,
// id-keyed projection built from this tree once construction finishes,
// since §9 calls for ids rather than owning pointers in the analyzed
// script's output graph.
type scope struct {
	id  int // assigned by flattenScopes; index into the exported NameScopes slice
	ast ast.NodeID
	parent   *scope
	children []*scope

	tableRefs  []ast.NodeID
	columnRefs []ast.NodeID
	columnDefs []ast.NodeID

	// aliases maps a case-folded table alias (or bare relation name when no
	// alias was given) to the table reference node id registered under it.
	aliases map[string]ast.NodeID
}

func newScope(astRoot ast.NodeID) *scope {
	return &scope{ast: astRoot, aliases: make(map[string]ast.NodeID)}
}

// accumulator is the per-node state the bottom-up walk threads upward
// (§4.E): references and column defs not yet claimed by an enclosing scope,
// plus child scopes already carved out by a nested SELECT/CREATE.
type accumulator struct {
	childScopes []*scope
	tableRefs   []ast.NodeID
	columnRefs  []ast.NodeID
	columnDefs  []ast.NodeID
}

func (a *accumulator) absorb(o *accumulator) {
	if o == nil {
		return
	}
	a.childScopes = append(a.childScopes, o.childScopes...)
	a.tableRefs = append(a.tableRefs, o.tableRefs...)
	a.columnRefs = append(a.columnRefs, o.columnRefs...)
	a.columnDefs = append(a.columnDefs, o.columnDefs...)
}

func (a *accumulator) empty() bool {
	return len(a.childScopes) == 0 && len(a.tableRefs) == 0 && len(a.columnRefs) == 0 && len(a.columnDefs) == 0
}

// flattenScopes assigns a stable NameScope id (the index in the returned
// slice) to every scope reachable from roots, in deterministic pre-order:
// parent scopes before the children nested inside them, in construction
// order. Determinism here is what makes resolution idempotence (§8) hold.
func flattenScopes(roots []*scope) []*scope {
	var all []*scope
	var visit func(s *scope)
	visit = func(s *scope) {
		s.id = len(all)
		all = append(all, s)
		for _, c := range s.children {
			visit(c)
		}
	}
	for _, r := range roots {
		if r != nil {
			visit(r)
		}
	}
	return all
}

// exportScopes projects the internal scope tree into the id-keyed NameScope
// vector carried by AnalyzedScript.
func exportScopes(scopes []*scope) []NameScope {
	out := make([]NameScope, len(scopes))
	for i, s := range scopes {
		parentID := -1
		if s.parent != nil {
			parentID = s.parent.id
		}
		childIDs := make([]int, len(s.children))
		for j, c := range s.children {
			childIDs[j] = c.id
		}
		out[i] = NameScope{
			AstRoot:       s.ast,
			ParentScopeID: parentID,
			ChildScopeIDs: childIDs,
			TableRefs:     s.tableRefs,
			ColumnRefs:    s.columnRefs,
		}
	}
	return out
}
