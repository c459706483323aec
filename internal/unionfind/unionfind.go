// Package unionfind implements a path-compressing, union-by-rank
// disjoint-set forest, ported from `lib/include/dashql/common/union_find.h`.
// It is retained per the analysis core's design notes as a general utility;
// the catalog's MergeSchemas uses it to collapse two schema ids that a
// caller has found to denote the same schema onto one canonical id.
package unionfind

// UnionFind is a dense disjoint-set forest over the index range [0, n).
type UnionFind struct {
	parent []uint32
	rank   []uint8
}

// New creates a UnionFind over n singleton sets, each its own root.
func New(n int) *UnionFind {
	uf := &UnionFind{
		parent: make([]uint32, n),
		rank:   make([]uint8, n),
	}
	for i := range uf.parent {
		uf.parent[i] = uint32(i)
	}
	return uf
}

// Find returns the canonical representative of x's set, compressing the
// path from x to the root as it walks up.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// Merge unions the sets containing a and b, attaching the lower-rank root
// under the higher-rank one, and returns the surviving representative.
func (uf *UnionFind) Merge(a, b uint32) uint32 {
	ra, rb := uf.Find(a), uf.Find(b)
	if ra == rb {
		return ra
	}
	switch {
	case uf.rank[ra] < uf.rank[rb]:
		ra, rb = rb, ra
	case uf.rank[ra] == uf.rank[rb]:
		uf.rank[ra]++
	}
	uf.parent[rb] = ra
	return ra
}

// entry is a SparseUnionFind node: its own parent/rank plus an attached
// value, mirroring `SparseUnionFind<T>::Entry` in union_find.h.
type entry[T any] struct {
	parent uint32
	rank   uint8
	value  T
}

// SparseUnionFind is a map-backed disjoint-set forest for domains keyed by
// an arbitrary, possibly sparse, id space (e.g. catalog schema ids
// allocated across an open-ended session) rather than a dense [0,n) range.
// Each representative carries an attached value, reconciled on merge by the
// caller-supplied combine function.
type SparseUnionFind[T any] struct {
	entries map[uint32]*entry[T]
}

// NewSparse creates an empty SparseUnionFind.
func NewSparse[T any]() *SparseUnionFind[T] {
	return &SparseUnionFind[T]{entries: make(map[uint32]*entry[T])}
}

// Insert registers id as a new singleton set with the given value if it is
// not already present; it is a no-op otherwise.
func (uf *SparseUnionFind[T]) Insert(id uint32, value T) {
	if _, ok := uf.entries[id]; ok {
		return
	}
	uf.entries[id] = &entry[T]{parent: id, value: value}
}

func (uf *SparseUnionFind[T]) findEntry(id uint32) *entry[T] {
	e, ok := uf.entries[id]
	if !ok {
		return nil
	}
	for e.parent != id {
		parentEntry := uf.entries[e.parent]
		if grandparentEntry, ok := uf.entries[parentEntry.parent]; ok {
			e.parent = grandparentEntry.parent
		}
		id = e.parent
		e = uf.entries[id]
	}
	return e
}

// Find returns the canonical id of the set containing id, or (0, false) if
// id was never inserted.
func (uf *SparseUnionFind[T]) Find(id uint32) (uint32, bool) {
	e := uf.findEntry(id)
	if e == nil {
		return 0, false
	}
	return e.parent, true
}

// Value returns the value attached to id's representative.
func (uf *SparseUnionFind[T]) Value(id uint32) (T, bool) {
	var zero T
	e := uf.findEntry(id)
	if e == nil {
		return zero, false
	}
	return e.value, true
}

// Merge unions the sets containing a and b. When both were already present,
// combine selects the surviving value (e.g. the lower-rank-origin entry, or
// whichever carries more columns); combine is not called when only one side
// is already present, the existing side's value simply survives.
func (uf *SparseUnionFind[T]) Merge(a, b uint32, combine func(a, b T) T) uint32 {
	ea, eb := uf.findEntry(a), uf.findEntry(b)
	switch {
	case ea == nil && eb == nil:
		panic("unionfind: Merge on two unregistered ids")
	case ea == nil:
		uf.entries[a] = &entry[T]{parent: eb.parent, value: eb.value}
		return eb.parent
	case eb == nil:
		uf.entries[b] = &entry[T]{parent: ea.parent, value: ea.value}
		return ea.parent
	}
	ra, rb := uf.entries[ea.parent], uf.entries[eb.parent]
	if ra == rb {
		return ea.parent
	}
	merged := combine(ra.value, rb.value)
	if ra.rank < rb.rank {
		ra, rb = rb, ra
	} else if ra.rank == rb.rank {
		ra.rank++
	}
	rb.parent = uf.keyOf(ra)
	ra.value = merged
	return uf.keyOf(ra)
}

// keyOf recovers the map key for an entry by identity scan. SparseUnionFind
// is sized for the catalog's handful of schema-dedup merges per session, so
// the linear scan this requires on Merge is not a hot path; a larger-scale
// user would thread the id alongside the pointer instead.
func (uf *SparseUnionFind[T]) keyOf(e *entry[T]) uint32 {
	for k, v := range uf.entries {
		if v == e {
			return k
		}
	}
	panic("unionfind: entry not found in map")
}

// IterateValues calls fn once per distinct representative with its
// attached value, in unspecified order.
func (uf *SparseUnionFind[T]) IterateValues(fn func(root uint32, value T)) {
	seen := make(map[uint32]bool)
	for id := range uf.entries {
		root, ok := uf.Find(id)
		if !ok || seen[root] {
			continue
		}
		seen[root] = true
		v, _ := uf.Value(id)
		fn(root, v)
	}
}
