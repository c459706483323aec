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

// Package analyzer implements the multi-pass semantic analysis pipeline
// over a parsed script (§4.E, §4.F): name-scope construction, table/column
// resolution against a catalog, constant-expression classification, and
// column-transform detection.
package analyzer

import (
	"sort"
	"strings"

	"github.com/ankoh/dashql-sub002/analyzererr"
	"github.com/ankoh/dashql-sub002/ast"
	"github.com/ankoh/dashql-sub002/catalog"
	"github.com/ankoh/dashql-sub002/parser"
)

// buildScopes performs the bottom-up accumulator walk described in §4.E:
// nodes are visited in array order (already children-before-parents, per
// §3's invariant), threading an accumulator upward and opening a fresh
// scope at every SELECT/CREATE/CREATE_AS object node. It returns one root
// scope per statement, indexed the same way as the statement list.
func buildScopes(nodes []ast.Node, statements []parser.Statement) []*scope {
	pending := make(map[ast.NodeID]*accumulator, len(nodes))
	take := func(id ast.NodeID) *accumulator {
		a := pending[id]
		delete(pending, id)
		return a
	}

	roots := make([]*scope, len(statements))
	stmtIdx := 0

	for id := ast.NodeID(0); int(id) < len(nodes); id++ {
		n := nodes[id]
		merged := &accumulator{}

		switch {
		case n.Type.IsObject(), n.Type.IsArray():
			begin, count := n.Children()
			for i := uint32(0); i < count; i++ {
				merged.absorb(take(begin + i))
			}
		}

		switch n.Type {
		case ast.NodeTypeObjectSQLTableRef:
			merged.tableRefs = append(merged.tableRefs, id)
		case ast.NodeTypeObjectSQLColumnRef:
			merged.columnRefs = append(merged.columnRefs, id)
		case ast.NodeTypeObjectSQLColumnDef:
			merged.columnDefs = append(merged.columnDefs, id)
		}

		if n.Type == ast.NodeTypeObjectSQLSelect || n.Type == ast.NodeTypeObjectSQLCreate || n.Type == ast.NodeTypeObjectSQLCreateAs {
			s := newScope(id)
			s.tableRefs = merged.tableRefs
			s.columnRefs = merged.columnRefs
			s.columnDefs = merged.columnDefs
			for _, child := range merged.childScopes {
				child.parent = s
				s.children = append(s.children, child)
			}
			merged = &accumulator{childScopes: []*scope{s}}
		}

		if !merged.empty() {
			pending[id] = merged
		}

		for stmtIdx < len(statements) && id == statements[stmtIdx].Root {
			if a := take(id); a != nil && len(a.childScopes) == 1 {
				roots[stmtIdx] = a.childScopes[0]
			}
			stmtIdx++
		}
	}
	return roots
}

// resolver carries the mutable state threaded through table/column
// resolution: the flat node array, interned names, the catalog, and the
// AnalyzedScript vectors being assembled.
type resolver struct {
	nodes []ast.Node
	names *parser.NameRegistry
	cat   *catalog.Catalog
	out   *AnalyzedScript

	// tableRefIndex maps a table-ref node id to its slot in
	// out.TableReferences, so column resolution can look up what table an
	// alias resolved to.
	tableRefIndex map[ast.NodeID]int
}

// registerDeclarations turns every CREATE TABLE statement's column-def
// accumulator into a catalog-backed TableDeclaration (§4.E): columns sort
// by name and receive a positional ColumnIndex.
func (r *resolver) registerDeclarations(roots []*scope, statements []parser.Statement) {
	for i, stmt := range statements {
		if stmt.Type != parser.StatementTypeCreateTable && stmt.Type != parser.StatementTypeCreateTableAs {
			continue
		}
		s := roots[i]
		if s == nil {
			continue
		}

		dbID, err := r.cat.AllocateDatabaseId(stmt.Name.Catalog)
		if err != nil {
			r.fatal(err)
			return
		}
		schemaID, err := r.cat.AllocateSchemaId(stmt.Name.Catalog, stmt.Name.Schema)
		if err != nil {
			r.fatal(err)
			return
		}
		tableID, err := r.cat.AllocateTableId(stmt.Name.Catalog, stmt.Name.Schema, stmt.Name.Relation, 0)
		if err != nil {
			r.fatal(err)
			return
		}

		type namedDef struct {
			nodeID ast.NodeID
			name   string
		}
		defs := make([]namedDef, 0, len(s.columnDefs))
		for _, defID := range s.columnDefs {
			nameID, ok := ast.LookupAttribute(r.nodes, defID, ast.AttributeKeyColumnDefName)
			if !ok {
				continue
			}
			defs = append(defs, namedDef{nodeID: defID, name: r.names.Text(r.nodes[nameID].Value())})
		}
		sort.Slice(defs, func(a, b int) bool { return defs[a].name < defs[b].name })

		columns := make([]ColumnDeclaration, len(defs))
		for idx, def := range defs {
			colID, err := r.cat.AllocateColumnId(stmt.Name.Catalog, stmt.Name.Schema, stmt.Name.Relation, def.name)
			if err != nil {
				r.fatal(err)
				return
			}
			columns[idx] = ColumnDeclaration{NodeID: def.nodeID, Name: def.name, ColumnIndex: idx, ColumnID: colID}
		}

		r.out.TableDeclarations = append(r.out.TableDeclarations, TableDeclaration{
			NodeID:     stmt.Root,
			Name:       stmt.Name,
			DatabaseID: dbID,
			SchemaID:   schemaID,
			TableID:    tableID,
			Columns:    columns,
		})
	}
}

func (r *resolver) fatal(err error) {
	r.out.Status = StatusCatalogLimitExceeded
	r.out.Errors = append(r.out.Errors, AnalysisError{Kind: "CATALOG/LIMIT_EXCEEDED", Message: err.Error()})
}

// resolveTables implements §4.D/§4.E's table-resolution stage for every
// scope: the script's own declarations are tried before the catalog, the
// first match becomes resolved_table, the rest become alternatives, and the
// reference is registered under its alias unless that alias is already
// taken in the same scope (DUPLICATE_TABLE_ALIAS).
func (r *resolver) resolveTables(scopes []*scope) {
	r.tableRefIndex = make(map[ast.NodeID]int, len(r.nodes))
	for _, s := range scopes {
		for _, refID := range s.tableRefs {
			qn := r.tableRefName(refID)
			alias := r.tableRefAlias(refID, qn)

			candidates := r.candidatesForTable(qn)
			var resolved *ResolvedTable
			var alternatives []ResolvedTable
			if len(candidates) > 0 {
				first := candidates[0]
				resolved = &first
				alternatives = candidates[1:]
			}

			r.out.TableReferences = append(r.out.TableReferences, TableReference{
				NodeID:       refID,
				Name:         qn,
				Alias:        alias,
				Resolved:     resolved,
				Alternatives: alternatives,
				ScopeID:      s.id,
			})
			r.tableRefIndex[refID] = len(r.out.TableReferences) - 1

			key := strings.ToLower(alias)
			if _, exists := s.aliases[key]; exists {
				r.addError("ANALYZER/DUPLICATE_TABLE_ALIAS", refID, analyzererr.ErrDuplicateTableAlias.New(alias))
				continue
			}
			s.aliases[key] = refID
		}
	}
}

func (r *resolver) tableRefName(refID ast.NodeID) parser.ResolvedQualifiedName {
	if qnID, ok := ast.LookupAttribute(r.nodes, refID, ast.AttributeKeyTableRefName); ok {
		return parser.ReadQualifiedNameAt(r.nodes, r.names, qnID)
	}
	return parser.ResolvedQualifiedName{}
}

func (r *resolver) tableRefAlias(refID ast.NodeID, qn parser.ResolvedQualifiedName) string {
	if aliasID, ok := ast.LookupAttribute(r.nodes, refID, ast.AttributeKeyTableRefAlias); ok {
		return r.names.Text(r.nodes[aliasID].Value())
	}
	return qn.Relation
}

// candidatesForTable searches the script's own declarations first, then the
// catalog, matching §4.E's "first against the script's own declarations,
// then against the catalog".
func (r *resolver) candidatesForTable(qn parser.ResolvedQualifiedName) []ResolvedTable {
	var out []ResolvedTable
	for i, decl := range r.out.TableDeclarations {
		if !strings.EqualFold(decl.Name.Relation, qn.Relation) {
			continue
		}
		if qn.Schema != "" && !strings.EqualFold(decl.Name.Schema, qn.Schema) {
			continue
		}
		if qn.Catalog != "" && !strings.EqualFold(decl.Name.Catalog, qn.Catalog) {
			continue
		}
		out = append(out, ResolvedTable{
			DatabaseID: decl.DatabaseID, SchemaID: decl.SchemaID, TableID: decl.TableID,
			Database: decl.Name.Catalog, Schema: decl.Name.Schema, Table: decl.Name.Relation,
			DeclarationIndex: i,
		})
	}
	if len(out) > 0 {
		return out
	}

	for _, c := range r.cat.ResolveTable(qn.Catalog, qn.Schema, qn.Relation, 0, analyzererr.MaxTableRefAmbiguity) {
		out = append(out, ResolvedTable{
			DatabaseID: c.DatabaseID, SchemaID: c.SchemaID, TableID: c.TableID,
			Database: c.Database, Schema: c.Schema, Table: c.Table,
			DeclarationIndex: -1,
		})
	}
	return out
}

// resolveColumns implements §4.E's column-resolution stage: walk from the
// reference's scope up through the parent chain, honoring an explicit
// table alias or else scanning every aliased table in scope, raising
// COLUMN_REF_AMBIGUOUS on multiple matches at the same scope level.
func (r *resolver) resolveColumns(scopes []*scope) {
	for _, s := range scopes {
		for _, refID := range s.columnRefs {
			r.resolveColumnRef(s, refID)
		}
	}
}

type columnMatch struct {
	alias      string
	tableRefID ast.NodeID
	resolved   ResolvedColumn
}

func (r *resolver) resolveColumnRef(s *scope, refID ast.NodeID) {
	path := r.columnRefPath(refID)
	if len(path) == 0 {
		return
	}
	var alias, column string
	qualified := len(path) >= 2
	if qualified {
		alias, column = path[len(path)-2], path[len(path)-1]
	} else {
		column = path[0]
	}

	for cur := s; cur != nil; cur = cur.parent {
		var matches []columnMatch
		if qualified {
			if tableRefID, ok := cur.aliases[strings.ToLower(alias)]; ok {
				if rc, ok := r.resolveColumnInTable(tableRefID, column); ok {
					matches = append(matches, columnMatch{alias: alias, tableRefID: tableRefID, resolved: rc})
				}
			}
		} else {
			keys := make([]string, 0, len(cur.aliases))
			for k := range cur.aliases {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				tableRefID := cur.aliases[k]
				if rc, ok := r.resolveColumnInTable(tableRefID, column); ok {
					matches = append(matches, columnMatch{alias: k, tableRefID: tableRefID, resolved: rc})
				}
			}
		}
		if len(matches) == 0 {
			continue
		}
		if len(matches) > 1 {
			candidates := make([]string, len(matches))
			for i, m := range matches {
				candidates[i] = m.alias + "." + column
			}
			r.addError("ANALYZER/COLUMN_REF_AMBIGUOUS", refID,
				analyzererr.ErrColumnRefAmbiguous.New(column, strings.Join(candidates, ", ")))
			return
		}
		r.setResolvedColumn(refID, matches[0].resolved)
		return
	}
}

func (r *resolver) columnRefPath(refID ast.NodeID) []string {
	pathID, ok := ast.LookupAttribute(r.nodes, refID, ast.AttributeKeyColumnRefPath)
	if !ok {
		return nil
	}
	ids := ast.Children(r.nodes, pathID)
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = r.names.Text(r.nodes[id].Value())
	}
	return out
}

func (r *resolver) resolveColumnInTable(tableRefID ast.NodeID, column string) (ResolvedColumn, bool) {
	idx, ok := r.tableRefIndex[tableRefID]
	if !ok {
		return ResolvedColumn{}, false
	}
	ref := r.out.TableReferences[idx]
	if ref.Resolved == nil {
		return ResolvedColumn{}, false
	}
	if ref.Resolved.DeclarationIndex >= 0 {
		decl := r.out.TableDeclarations[ref.Resolved.DeclarationIndex]
		for _, c := range decl.Columns {
			if strings.EqualFold(c.Name, column) {
				return ResolvedColumn{
					DatabaseID: decl.DatabaseID, SchemaID: decl.SchemaID, TableID: decl.TableID,
					ColumnID: c.ColumnID, ColumnIndex: c.ColumnIndex,
				}, true
			}
		}
		return ResolvedColumn{}, false
	}
	colID, colIndex, ok := r.cat.ResolveColumn(ref.Resolved.TableID, column)
	if !ok {
		return ResolvedColumn{}, false
	}
	return ResolvedColumn{
		DatabaseID: ref.Resolved.DatabaseID, SchemaID: ref.Resolved.SchemaID, TableID: ref.Resolved.TableID,
		ColumnID: colID, ColumnIndex: colIndex,
	}, true
}

func (r *resolver) setResolvedColumn(refID ast.NodeID, rc ResolvedColumn) {
	e, _ := r.out.getExpr(refID)
	e.NodeID = refID
	rcCopy := rc
	e.ResolvedColumn = &rcCopy
	r.out.setExpr(refID, e)
}

func (r *resolver) addError(kind string, nodeID ast.NodeID, err error) {
	loc := r.nodes[nodeID].Location
	id := nodeID
	r.out.Errors = append(r.out.Errors, AnalysisError{Kind: kind, Location: loc, NodeID: &id, Message: err.Error()})
}

// assignStatementIDs stamps every table reference with the index of the
// statement whose node range contains it. Statements are emitted in
// increasing NodesEnd order, so a binary search suffices regardless of the
// order table references were appended in (the §4.E "single forward walk"
// is an optimization the source uses for an ordered traversal; this
// reimplementation assigns the same statement_id without depending on one).
func (r *resolver) assignStatementIDs(statements []parser.Statement) {
	for i := range r.out.TableReferences {
		ref := &r.out.TableReferences[i]
		ref.StatementID = sort.Search(len(statements), func(j int) bool {
			return ref.NodeID < statements[j].NodesEnd
		})
	}
}
