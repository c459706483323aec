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

import (
	"github.com/ankoh/dashql-sub002/ast"
	"github.com/ankoh/dashql-sub002/catalog"
	"github.com/ankoh/dashql-sub002/parser"
)

// StatusCode summarizes the outcome of an Analyze call, per §7: recoverable
// errors accumulate on Errors and leave Status at StatusOk, while a fatal
// catalog condition short-circuits the remaining passes.
type StatusCode uint8

const (
	StatusOk StatusCode = iota
	StatusCatalogLimitExceeded
)

// ColumnDeclaration is one column of a CREATE TABLE / CREATE TABLE AS
// statement, positioned by name within its declaring table (§4.E).
type ColumnDeclaration struct {
	NodeID      ast.NodeID
	Name        string
	ColumnIndex int
	ColumnID    catalog.ID
}

// TableDeclaration is a table a script itself defines via CREATE, tried
// before the catalog when resolving a table reference (§4.D, §4.E).
type TableDeclaration struct {
	NodeID     ast.NodeID
	Name       parser.ResolvedQualifiedName
	DatabaseID catalog.ID
	SchemaID   catalog.ID
	TableID    catalog.ID
	Columns    []ColumnDeclaration
}

// ResolvedTable is one table-resolution candidate: either a script-local
// declaration (DeclarationIndex >= 0, indexing AnalyzedScript.
// TableDeclarations) or a catalog entry (DeclarationIndex == -1).
type ResolvedTable struct {
	DatabaseID catalog.ID
	SchemaID   catalog.ID
	TableID    catalog.ID
	Database   string
	Schema     string
	Table      string

	DeclarationIndex int
}

// TableReference is one FROM-clause occurrence, resolved against the
// script's own declarations and the catalog (§4.D, §4.E). Resolved is nil
// when resolution found no candidate; Alternatives holds every candidate
// beyond the first, in the same rank order ResolveTable returns.
type TableReference struct {
	NodeID ast.NodeID
	Name   parser.ResolvedQualifiedName
	Alias  string

	Resolved     *ResolvedTable
	Alternatives []ResolvedTable

	ScopeID     int
	StatementID int
}

// ResolvedColumn is the {database, schema, table, column} tuple a column
// reference resolved to, per §3.
type ResolvedColumn struct {
	DatabaseID  catalog.ID
	SchemaID    catalog.ID
	TableID     catalog.ID
	ColumnID    catalog.ID
	ColumnIndex int
}

// LiteralType classifies a constant expression's algebraic type, the
// idiomatic substitute for the source's node-type-offset trick (see the
// NodeTypeConst* doc comments in ast/node.go).
type LiteralType uint8

const (
	LiteralTypeUnknown LiteralType = iota
	LiteralTypeInteger
	LiteralTypeFloat
	LiteralTypeString
	LiteralTypeBool
	LiteralTypeNull
)

// Expression is the per-node analysis record threaded through all three
// passes (§4.E, §4.F), indexed by AnalyzedScript.exprIndex rather than
// embedded in the AST node itself: a column reference carries its
// ResolvedColumn, a literal carries IsConstant/LiteralType, and an operator
// application eligible for column-transform folding carries
// IsColumnTransform/TargetExpressionID pointing at the one non-constant
// operand that makes it so.
type Expression struct {
	NodeID ast.NodeID

	ResolvedColumn *ResolvedColumn

	IsConstant  bool
	LiteralType LiteralType
	// HasLiteralValue, LiteralInt, LiteralFloat hold the coerced numeric
	// value of an integer/float literal when its source text parses
	// cleanly, in addition to the scanner's own lexical validation —
	// absent (false) rather than erroring keeps a malformed literal a
	// recoverable SCANNER-kind error rather than an analyzer one.
	HasLiteralValue bool
	LiteralInt      int64
	LiteralFloat    float64

	IsColumnTransform  bool
	TargetExpressionID ast.NodeID
}

// ColumnTransform records one maximal chain of constant-folded arithmetic
// rooted above a single column reference (§4.F): RootNodeID is the
// topmost operator node, ColumnRefNodeID the terminal OBJECT_SQL_COLUMN_REF
// the chain bottoms out at, and ColumnID its resolved column, when known.
type ColumnTransform struct {
	RootNodeID      ast.NodeID
	ColumnRefNodeID ast.NodeID
	ColumnID        catalog.ID
}

// NameScope is the exported, id-keyed projection of one name scope built
// during §4.E's bottom-up walk: ParentScopeID is -1 for a script's
// outermost scopes.
type NameScope struct {
	AstRoot       ast.NodeID
	ParentScopeID int
	ChildScopeIDs []int
	TableRefs     []ast.NodeID
	ColumnRefs    []ast.NodeID
}

// AnalysisError is one recoverable ANALYZER-kind error (§7): Location and
// NodeID identify where it was raised, NodeID is nil when the error isn't
// anchored to one particular node.
type AnalysisError struct {
	Kind     string
	Location ast.Location
	NodeID   *ast.NodeID
	Message  string
}

// AnalyzedScript is Analyze's output (§3, §6): the resolved name graph, the
// classified expression vector, and any recoverable errors collected along
// the way.
type AnalyzedScript struct {
	Status StatusCode
	Errors []AnalysisError

	TableDeclarations []TableDeclaration
	TableReferences   []TableReference
	NameScopes        []NameScope

	Expressions      []Expression
	ColumnTransforms []ColumnTransform

	exprIndex map[ast.NodeID]int
}

// ensureExpr returns the Expressions index for nodeID, appending a fresh
// zero-value Expression if this is the first pass to touch the node.
func (a *AnalyzedScript) ensureExpr(nodeID ast.NodeID) int {
	if idx, ok := a.exprIndex[nodeID]; ok {
		return idx
	}
	if a.exprIndex == nil {
		a.exprIndex = make(map[ast.NodeID]int)
	}
	idx := len(a.Expressions)
	a.Expressions = append(a.Expressions, Expression{NodeID: nodeID})
	a.exprIndex[nodeID] = idx
	return idx
}

// getExpr returns the Expression recorded for nodeID, or a fresh zero value
// (not yet appended) when no pass has touched it.
func (a *AnalyzedScript) getExpr(nodeID ast.NodeID) (Expression, bool) {
	if idx, ok := a.exprIndex[nodeID]; ok {
		return a.Expressions[idx], true
	}
	return Expression{NodeID: nodeID}, false
}

// setExpr records e under nodeID, updating an existing entry in place
// rather than appending a duplicate — necessary since a node's Expression
// is built up incrementally across passes without ever holding a live
// pointer into the (possibly reallocating) Expressions slice.
func (a *AnalyzedScript) setExpr(nodeID ast.NodeID, e Expression) {
	idx := a.ensureExpr(nodeID)
	a.Expressions[idx] = e
}

// ExpressionByNode returns the analysis record for an AST node id, if one
// was produced by any pass.
func (a *AnalyzedScript) ExpressionByNode(nodeID ast.NodeID) (Expression, bool) {
	return a.getExpr(nodeID)
}
