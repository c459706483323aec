package unionfind_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankoh/dashql-sub002/internal/unionfind"
)

func TestUnionFindMergeAndFind(t *testing.T) {
	uf := unionfind.New(5)
	for i := uint32(0); i < 5; i++ {
		assert.Equal(t, i, uf.Find(i))
	}

	uf.Merge(0, 1)
	uf.Merge(1, 2)
	assert.Equal(t, uf.Find(0), uf.Find(2))
	assert.NotEqual(t, uf.Find(0), uf.Find(3))

	uf.Merge(3, 4)
	uf.Merge(2, 3)
	assert.Equal(t, uf.Find(0), uf.Find(4))
}

func TestSparseUnionFindInsertFindValue(t *testing.T) {
	uf := unionfind.NewSparse[string]()
	uf.Insert(10, "a")
	uf.Insert(20, "b")

	root, ok := uf.Find(10)
	require.True(t, ok)
	assert.Equal(t, uint32(10), root)

	_, ok = uf.Find(99)
	assert.False(t, ok)

	uf.Merge(10, 20, func(a, b string) string { return a + "+" + b })
	r10, _ := uf.Find(10)
	r20, _ := uf.Find(20)
	assert.Equal(t, r10, r20)

	v, ok := uf.Value(10)
	require.True(t, ok)
	assert.Contains(t, v, "a")
	assert.Contains(t, v, "b")
}

func TestSparseUnionFindIterateValues(t *testing.T) {
	uf := unionfind.NewSparse[int]()
	uf.Insert(1, 1)
	uf.Insert(2, 2)
	uf.Insert(3, 3)
	uf.Merge(1, 2, func(a, b int) int { return a + b })

	sum := 0
	count := 0
	uf.IterateValues(func(root uint32, value int) {
		sum += value
		count++
	})
	assert.Equal(t, 2, count)
	assert.Equal(t, 6, sum)
}
