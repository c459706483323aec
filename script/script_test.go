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

package script_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankoh/dashql-sub002/analyzer"
	"github.com/ankoh/dashql-sub002/ast"
	"github.com/ankoh/dashql-sub002/catalog"
	"github.com/ankoh/dashql-sub002/parser"
	"github.com/ankoh/dashql-sub002/script"
)

func freshCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat := catalog.New()
	_, err := cat.AllocateColumnId("main", "public", "A", "x")
	require.NoError(t, err)
	_, err = cat.AllocateColumnId("main", "public", "C", "y")
	require.NoError(t, err)
	return cat
}

// TestAnalysisIsIdempotent re-analyzes the same script text against two
// independently built but identical catalogs and asserts the resolution
// output is identical both times: name resolution must be a pure function
// of (script text, catalog contents), never of allocation-map iteration
// order or prior analysis runs.
func TestAnalysisIsIdempotent(t *testing.T) {
	text := "select * from A b, C d where b.x = d.y"

	_, _, first := analyze(t, text, freshCatalog(t))
	_, _, second := analyze(t, text, freshCatalog(t))

	if diff := cmp.Diff(first.TableReferences, second.TableReferences); diff != "" {
		t.Errorf("TableReferences differ between runs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first.Expressions, second.Expressions); diff != "" {
		t.Errorf("Expressions differ between runs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first.ColumnTransforms, second.ColumnTransforms); diff != "" {
		t.Errorf("ColumnTransforms differ between runs (-first +second):\n%s", diff)
	}
}

func analyze(t *testing.T, text string, cat *catalog.Catalog) (*parser.ScannedScript, *parser.ParsedScript, *analyzer.AnalyzedScript) {
	t.Helper()
	ctx := context.Background()
	scanned := script.Scan(ctx, text, script.Options{})
	require.Empty(t, scanned.Errors)
	parsed := script.Parse(ctx, scanned)
	require.Empty(t, parsed.Errors)
	analyzed := script.Analyze(ctx, parsed, cat)
	return scanned, parsed, analyzed
}

// TestSimpleResolvedSelect implements §8 scenario 1: both table references
// resolve, both column references resolve through their alias, no errors,
// and the `=` node is an OBJECT_SQL_NARY_EXPRESSION.
func TestSimpleResolvedSelect(t *testing.T) {
	cat := catalog.New()
	_, err := cat.AllocateColumnId("main", "public", "A", "x")
	require.NoError(t, err)
	_, err = cat.AllocateColumnId("main", "public", "C", "y")
	require.NoError(t, err)

	_, parsed, analyzed := analyze(t, "select * from A b, C d where b.x = d.y", cat)

	require.Empty(t, analyzed.Errors)
	require.Len(t, analyzed.TableReferences, 2)
	for _, ref := range analyzed.TableReferences {
		assert.NotNil(t, ref.Resolved, "table reference %q should resolve", ref.Name.Relation)
	}

	var resolvedCols []string
	for _, e := range analyzed.Expressions {
		if e.ResolvedColumn != nil {
			resolvedCols = append(resolvedCols, cat.TableName(e.ResolvedColumn.TableID)+"."+cat.ColumnName(e.ResolvedColumn.ColumnID))
		}
	}
	assert.ElementsMatch(t, []string{"A.x", "C.y"}, resolvedCols)

	var naryFound bool
	for _, n := range parsed.Nodes {
		if n.Type == ast.NodeTypeObjectSQLNaryExpression {
			naryFound = true
		}
	}
	assert.True(t, naryFound, "the `=` comparison should build an OBJECT_SQL_NARY_EXPRESSION node")
}

// TestDuplicateAlias implements §8 scenario 2: the second occurrence of
// alias `x` raises DUPLICATE_TABLE_ALIAS but both table references remain
// in TableReferences.
func TestDuplicateAlias(t *testing.T) {
	cat := catalog.New()
	_, err := cat.AllocateTableId("main", "public", "A", 0)
	require.NoError(t, err)
	_, err = cat.AllocateTableId("main", "public", "C", 0)
	require.NoError(t, err)

	_, _, analyzed := analyze(t, "select 1 from A x, C x", cat)

	require.Len(t, analyzed.Errors, 1)
	assert.Equal(t, "ANALYZER/DUPLICATE_TABLE_ALIAS", analyzed.Errors[0].Kind)
	require.Len(t, analyzed.TableReferences, 2)
}

// TestAmbiguousColumn implements §8 scenario 3: an unqualified column
// matching two in-scope tables raises COLUMN_REF_AMBIGUOUS enumerating
// both candidates, and the reference is left unresolved.
func TestAmbiguousColumn(t *testing.T) {
	cat := catalog.New()
	_, err := cat.AllocateColumnId("main", "public", "R", "k")
	require.NoError(t, err)
	_, err = cat.AllocateColumnId("main", "public", "S", "k")
	require.NoError(t, err)

	_, _, analyzed := analyze(t, "select k from R, S", cat)

	require.Len(t, analyzed.Errors, 1)
	assert.Equal(t, "ANALYZER/COLUMN_REF_AMBIGUOUS", analyzed.Errors[0].Kind)
	assert.Contains(t, analyzed.Errors[0].Message, "r.k")
	assert.Contains(t, analyzed.Errors[0].Message, "s.k")

	for _, e := range analyzed.Expressions {
		assert.Nil(t, e.ResolvedColumn)
	}
}

// TestColumnTransformRoot implements §8 scenario 4: `(a + 1) * 2` is a
// single column-transform chain rooted at the outer multiply, bottoming
// out at the reference to T.a.
func TestColumnTransformRoot(t *testing.T) {
	cat := catalog.New()
	colID, err := cat.AllocateColumnId("main", "public", "T", "a")
	require.NoError(t, err)

	_, parsed, analyzed := analyze(t, "select (a + 1) * 2 from T", cat)

	require.Empty(t, analyzed.Errors)
	require.Len(t, analyzed.ColumnTransforms, 1)
	xf := analyzed.ColumnTransforms[0]
	assert.Equal(t, colID, xf.ColumnID)

	var naryCount int
	for _, n := range parsed.Nodes {
		if n.Type == ast.NodeTypeObjectSQLNaryExpression {
			naryCount++
		}
	}
	assert.Equal(t, 2, naryCount, "both `+` and `*` should build OBJECT_SQL_NARY_EXPRESSION nodes")

	outer, ok := analyzed.ExpressionByNode(xf.RootNodeID)
	require.True(t, ok)
	assert.True(t, outer.IsColumnTransform)

	refNode := parsed.Nodes[xf.ColumnRefNodeID]
	assert.Equal(t, ast.NodeTypeObjectSQLColumnRef, refNode.Type)
}

func TestMoveCursorLocatesColumnRef(t *testing.T) {
	ctx := context.Background()
	scanned := script.Scan(ctx, "select x from A", script.Options{})
	parsed := script.Parse(ctx, scanned)

	offset := uint32(7) // inside "x"
	cur := script.MoveCursor(scanned, parsed, offset)
	require.NotNil(t, cur.ASTNodeID)
	assert.Equal(t, script.CursorContextColumnRef, cur.ContextKind)
}
