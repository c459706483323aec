package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankoh/dashql-sub002/catalog"
)

func TestAllocateIsIdempotentByNameTuple(t *testing.T) {
	c := catalog.New()

	id1, err := c.AllocateTableId("main", "public", "A", 0)
	require.NoError(t, err)
	id2, err := c.AllocateTableId("main", "public", "A", 0)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	id3, err := c.AllocateTableId("main", "public", "B", 0)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)
}

func TestAllocateColumnIdAllocatesOwningTable(t *testing.T) {
	c := catalog.New()

	colID, err := c.AllocateColumnId("main", "public", "A", "x")
	require.NoError(t, err)
	assert.Equal(t, "x", c.ColumnName(colID))

	tableID := c.ColumnTableID(colID)
	assert.Equal(t, "A", c.TableName(tableID))
}

func TestResolveTableHonorsProvidedSchema(t *testing.T) {
	c := catalog.New()
	_, err := c.AllocateTableId("main", "public", "A", 0)
	require.NoError(t, err)
	_, err = c.AllocateTableId("main", "staging", "A", 0)
	require.NoError(t, err)

	// The schema is given, so main.staging.A does not match.
	candidates := c.ResolveTable("main", "public", "A", 0, 10)
	require.Len(t, candidates, 1)
	assert.Equal(t, "public", candidates[0].Schema)
}

func TestResolveTableHonorsMaxAmbiguity(t *testing.T) {
	c := catalog.New()
	for _, schema := range []string{"a", "b", "c"} {
		_, err := c.AllocateTableId("main", schema, "T", 0)
		require.NoError(t, err)
	}
	candidates := c.ResolveTable("main", "", "T", 0, 2)
	assert.Len(t, candidates, 2)
}

func TestMergeSchemasCollapsesToOneCanonicalId(t *testing.T) {
	c := catalog.New()
	id1, err := c.AllocateSchemaId("main", "public")
	require.NoError(t, err)
	id2, err := c.AllocateSchemaId("main", "public")
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "schema allocation is already idempotent by name")

	// Simulate two ids discovered via different statements resolving to the
	// same logical schema and being unified explicitly.
	other, err := c.AllocateSchemaId("main", "reporting")
	require.NoError(t, err)
	merged := c.MergeSchemas(id1, other)
	assert.Contains(t, []uint32{id1, other}, merged)
}
