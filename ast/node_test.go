package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankoh/dashql-sub002/ast"
)

// buildSample constructs an OBJECT_SQL_EXPRESSION shaped like `a + 1` the
// way a grammar action would, bottom-up: an operator enum plus a NAME and a
// UI32 scalar standing in for the column reference and the literal. It
// returns the flat node array together with the expression's id.
func buildSample(t *testing.T) ([]ast.Node, ast.NodeID) {
	t.Helper()
	b := ast.NewBuilder(8)

	left := ast.Node{Type: ast.NodeTypeName, ChildrenBeginOrValue: 1}
	right := ast.Node{Type: ast.NodeTypeUI32, ChildrenBeginOrValue: 1}
	op := ast.Node{Type: ast.NodeTypeEnumSQLExpressionOperator, ChildrenBeginOrValue: 2}

	exprNode := b.AddObject(ast.Location{Offset: 0, Length: 5}, ast.NodeTypeObjectSQLExpression, []ast.AttributeChild{
		ast.Attr(ast.AttributeKeyExpressionOperator, op),
		ast.Attr(ast.AttributeKeyExpressionArg0, left),
		ast.Attr(ast.AttributeKeyExpressionArg1, right),
	})
	exprID := b.Finish(exprNode)
	return b.Nodes(), exprID
}

func TestNodeOrderingAndAttributeUniqueness(t *testing.T) {
	nodes, exprID := buildSample(t)
	require.Less(t, int(exprID), len(nodes))

	expr := nodes[exprID]
	require.True(t, expr.Type.IsObject())

	opID, ok := ast.LookupAttribute(nodes, exprID, ast.AttributeKeyExpressionOperator)
	require.True(t, ok)
	assert.Equal(t, ast.NodeTypeEnumSQLExpressionOperator, nodes[opID].Type)

	arg0, ok := ast.LookupAttribute(nodes, exprID, ast.AttributeKeyExpressionArg0)
	require.True(t, ok)
	assert.Equal(t, ast.NodeTypeName, nodes[arg0].Type)

	arg1, ok := ast.LookupAttribute(nodes, exprID, ast.AttributeKeyExpressionArg1)
	require.True(t, ok)
	assert.Equal(t, ast.NodeTypeUI32, nodes[arg1].Type)

	// No ARG2 was attached.
	_, ok = ast.LookupAttribute(nodes, exprID, ast.AttributeKeyExpressionArg2)
	assert.False(t, ok)

	// Every attribute child is stamped with the expression as its parent.
	begin, count := expr.Children()
	for i := uint32(0); i < count; i++ {
		assert.Equal(t, exprID, nodes[begin+i].Parent)
	}

	// The root itself remains unparented until attached by an enclosing
	// statement.
	assert.Equal(t, ast.NodeID(ast.NoParent), expr.Parent)
}

func TestNodeOrderingIsContiguousAndBottomUp(t *testing.T) {
	nodes, exprID := buildSample(t)
	expr := nodes[exprID]
	begin, count := expr.Children()

	// Children occupy a dense, contiguous run immediately before the
	// object node that owns them.
	assert.Equal(t, exprID, ast.NodeID(begin+count))
	for i := uint32(0); i < count; i++ {
		assert.Less(t, int(begin+i), int(exprID))
	}
}

// TestNestedObjectParentSurvivesInterveningAppends builds `a + 1` the way a
// binary expression actually assembles: the column-ref object is built
// first, then the operator enum is appended in between, and only then does
// the column-ref get attached as the expression's ARG0 attribute. The
// column-ref's own child (its NAME path element) must end up pointing at
// the column-ref, not at whatever node happened to land at the offset the
// column-ref would have occupied had it been appended immediately.
func TestNestedObjectParentSurvivesInterveningAppends(t *testing.T) {
	b := ast.NewBuilder(8)

	nameNode := ast.Node{Type: ast.NodeTypeName, ChildrenBeginOrValue: 1}
	colRef := b.AddObject(ast.Location{Offset: 0, Length: 1}, ast.NodeTypeObjectSQLColumnRef, []ast.AttributeChild{
		ast.Attr(ast.AttributeKeyColumnRefPath, nameNode),
	})

	// An unrelated node (standing in for the `+` operator enum) is appended
	// before colRef is attached anywhere.
	op := ast.Node{Type: ast.NodeTypeEnumSQLExpressionOperator, ChildrenBeginOrValue: 2}
	right := ast.Node{Type: ast.NodeTypeUI32, ChildrenBeginOrValue: 1}

	exprNode := b.AddObject(ast.Location{Offset: 0, Length: 5}, ast.NodeTypeObjectSQLExpression, []ast.AttributeChild{
		ast.Attr(ast.AttributeKeyExpressionOperator, op),
		ast.Attr(ast.AttributeKeyExpressionArg0, colRef),
		ast.Attr(ast.AttributeKeyExpressionArg1, right),
	})
	exprID := b.Finish(exprNode)
	nodes := b.Nodes()

	colRefID, ok := ast.LookupAttribute(nodes, exprID, ast.AttributeKeyExpressionArg0)
	require.True(t, ok)
	assert.Equal(t, ast.NodeTypeObjectSQLColumnRef, nodes[colRefID].Type)

	nameID, ok := ast.LookupAttribute(nodes, colRefID, ast.AttributeKeyColumnRefPath)
	require.True(t, ok)
	assert.Equal(t, colRefID, nodes[nameID].Parent, "the path name's parent must be the column-ref, not whichever node lands at its naively-computed offset")
	assert.Equal(t, exprID, nodes[colRefID].Parent)
}

func TestLocationMerge(t *testing.T) {
	got := ast.Merge(
		ast.Location{Offset: 10, Length: 5},
		ast.Location{Offset: 2, Length: 4},
		ast.Location{Offset: 20, Length: 1},
	)
	assert.Equal(t, ast.Location{Offset: 2, Length: 19}, got)
}

func TestLocationMergeSkipsEmpty(t *testing.T) {
	got := ast.Merge(ast.Location{}, ast.Location{Offset: 4, Length: 2}, ast.Location{})
	assert.Equal(t, ast.Location{Offset: 4, Length: 2}, got)
}

func TestLocationMergeAllEmpty(t *testing.T) {
	got := ast.Merge()
	assert.Equal(t, ast.Location{}, got)
}

func TestNodeTypeIsObjectBoundary(t *testing.T) {
	assert.False(t, ast.NodeTypeArray.IsObject())
	assert.False(t, ast.NodeTypeObjectKeys_.IsObject())
	assert.True(t, ast.NodeTypeObjectSQLSelect.IsObject())
}
