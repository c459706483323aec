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

// Package catalog holds the process-scope registry of databases, schemas,
// tables and columns, with monotonically allocated 32-bit ids and the
// resolution primitives the name-resolution pass consults. See
// dashql/SPEC_FULL.md §4.D.
package catalog

import (
	"sort"
	"strings"

	"github.com/mitchellh/hashstructure"
	"github.com/pkg/errors"

	"github.com/ankoh/dashql-sub002/catalogerr"
	"github.com/ankoh/dashql-sub002/internal/unionfind"
)

// ID is a monotonically allocated catalog identifier. The zero value never
// denotes a real entry; allocation starts at 1.
type ID = uint32

// databaseKey, schemaKey, tableKey and columnKey are the name tuples hashed
// via hashstructure to key the allocation maps, so tuple equality does not
// depend on manual string-concatenation keys.
type databaseKey struct{ Database string }
type schemaKey struct{ Database, Schema string }
type tableKey struct{ Database, Schema, Table string }
type columnKey struct{ Database, Schema, Table, Column string }

// Rank orders catalog entries for tie-breaking during table resolution
// (§4.D): ResolveTable prefers candidates whose rank is closest to the
// originating rank it is given.
type Rank = int

// Catalog is the shared registry described in §3/§4.D. It is not safe for
// concurrent mutation; per §5 the embedder is responsible for serializing
// writes externally (e.g. holding a lock around Allocate* calls), while
// reads during a single analysis run observe a stable snapshot.
type Catalog struct {
	databases map[uint64]ID
	schemas   map[uint64]ID
	tables    map[uint64]ID
	columns   map[uint64]ID

	databaseNames map[ID]string
	schemaNames   map[ID]schemaKey
	tableNames    map[ID]tableEntry
	columnNames   map[ID]columnEntry

	nextDatabaseID ID
	nextSchemaID   ID
	nextTableID    ID
	nextColumnID   ID

	// columnsByTable lists a table's columns in allocation order, so
	// ResolveColumn can also report a column's positional index.
	columnsByTable map[ID][]ID

	// schemaDedup records the schema ids MergeSchemas has collapsed onto one
	// canonical id, per SPEC_FULL.md's union-find supplement.
	schemaDedup *unionfind.SparseUnionFind[schemaKey]
}

type tableEntry struct {
	databaseID ID
	schemaID   ID
	name       string
	rank       Rank
	insertOrd  int
}

type columnEntry struct {
	tableID ID
	name    string
}

// New returns an empty Catalog.
func New() *Catalog {
	return &Catalog{
		databases:     make(map[uint64]ID),
		schemas:       make(map[uint64]ID),
		tables:        make(map[uint64]ID),
		columns:       make(map[uint64]ID),
		databaseNames: make(map[ID]string),
		schemaNames:   make(map[ID]schemaKey),
		tableNames:    make(map[ID]tableEntry),
		columnNames:   make(map[ID]columnEntry),
		columnsByTable: make(map[ID][]ID),
		schemaDedup:   unionfind.NewSparse[schemaKey](),
	}
}

func hashOf(v interface{}) uint64 {
	h, err := hashstructure.Hash(v, nil)
	if err != nil {
		// hashstructure only errors on unsupported field kinds (channels,
		// funcs); our key structs are plain strings, so this cannot
		// happen in practice.
		panic(errors.Wrap(err, "catalog: hashing key"))
	}
	return h
}

// AllocateDatabaseId returns the id for database name, allocating a fresh
// one on first sight. Idempotent by name.
func (c *Catalog) AllocateDatabaseId(database string) (ID, error) {
	key := hashOf(databaseKey{Database: database})
	if id, ok := c.databases[key]; ok {
		return id, nil
	}
	if c.nextDatabaseID == idLimit {
		return 0, catalogerr.ErrLimitExceeded.New("database id space exhausted")
	}
	c.nextDatabaseID++
	id := c.nextDatabaseID
	c.databases[key] = id
	c.databaseNames[id] = database
	return id, nil
}

// AllocateSchemaId returns the id for (database, schema), allocating a
// fresh one on first sight.
func (c *Catalog) AllocateSchemaId(database, schema string) (ID, error) {
	key := hashOf(schemaKey{Database: database, Schema: schema})
	if id, ok := c.schemas[key]; ok {
		return id, nil
	}
	if c.nextSchemaID == idLimit {
		return 0, catalogerr.ErrLimitExceeded.New("schema id space exhausted")
	}
	c.nextSchemaID++
	id := c.nextSchemaID
	c.schemas[key] = id
	k := schemaKey{Database: database, Schema: schema}
	c.schemaNames[id] = k
	c.schemaDedup.Insert(id, k)
	return id, nil
}

// AllocateTableId returns the id for (database, schema, table), allocating
// a fresh one on first sight with the given resolution rank.
func (c *Catalog) AllocateTableId(database, schema, table string, rank Rank) (ID, error) {
	key := hashOf(tableKey{Database: database, Schema: schema, Table: table})
	if id, ok := c.tables[key]; ok {
		return id, nil
	}
	if c.nextTableID == idLimit {
		return 0, catalogerr.ErrLimitExceeded.New("table id space exhausted")
	}
	dbID, err := c.AllocateDatabaseId(database)
	if err != nil {
		return 0, err
	}
	schemaID, err := c.AllocateSchemaId(database, schema)
	if err != nil {
		return 0, err
	}
	c.nextTableID++
	id := c.nextTableID
	c.tables[key] = id
	c.tableNames[id] = tableEntry{
		databaseID: dbID,
		schemaID:   schemaID,
		name:       table,
		rank:       rank,
		insertOrd:  int(id),
	}
	return id, nil
}

// AllocateColumnId returns the id for (database, schema, table, column),
// allocating a fresh one on first sight.
func (c *Catalog) AllocateColumnId(database, schema, table, column string) (ID, error) {
	key := hashOf(columnKey{Database: database, Schema: schema, Table: table, Column: column})
	if id, ok := c.columns[key]; ok {
		return id, nil
	}
	if c.nextColumnID == idLimit {
		return 0, catalogerr.ErrLimitExceeded.New("column id space exhausted")
	}
	tableID, err := c.AllocateTableId(database, schema, table, 0)
	if err != nil {
		return 0, err
	}
	c.nextColumnID++
	id := c.nextColumnID
	c.columns[key] = id
	c.columnNames[id] = columnEntry{tableID: tableID, name: column}
	c.columnsByTable[tableID] = append(c.columnsByTable[tableID], id)
	return id, nil
}

// ResolveColumn looks up a column of tableID by name, returning its id and
// its positional index among that table's columns in allocation order.
func (c *Catalog) ResolveColumn(tableID ID, name string) (ID, int, bool) {
	for i, colID := range c.columnsByTable[tableID] {
		if strings.EqualFold(c.columnNames[colID].name, name) {
			return colID, i, true
		}
	}
	return 0, -1, false
}

// idLimit bounds each id space at the same 16-bit file-id ceiling the file
// buffer uses, so exhaustion is always surfaced the same way regardless of
// which allocator hit it.
const idLimit ID = 65535

// TableCandidate is one match returned by ResolveTable, ordered by
// resolution rank.
type TableCandidate struct {
	TableID    ID
	DatabaseID ID
	SchemaID   ID
	Database   string
	Schema     string
	Table      string
	Rank       Rank
}

// ResolveTable searches for tables matching qualifiedName, honoring
// whichever components are non-empty: (1) exact match on all provided
// components against the database/schema/table a query names explicitly,
// (2) a best partial match when schema or database is omitted. Results are
// appended up to maxAmbiguity, ranked by
// (originatingRank, schema-specificity, insertion order), per §4.D.
func (c *Catalog) ResolveTable(database, schema, table string, originatingRank Rank, maxAmbiguity int) []TableCandidate {
	var candidates []TableCandidate
	for id, entry := range c.tableNames {
		if !strings.EqualFold(entry.name, table) {
			continue
		}
		if database != "" && !strings.EqualFold(c.databaseNames[entry.databaseID], database) {
			continue
		}
		if schema != "" {
			key := c.schemaNames[entry.schemaID]
			if !strings.EqualFold(key.Schema, schema) {
				continue
			}
		}
		candidates = append(candidates, TableCandidate{
			TableID:    id,
			DatabaseID: entry.databaseID,
			SchemaID:   entry.schemaID,
			Database:   c.databaseNames[entry.databaseID],
			Schema:     c.schemaNames[entry.schemaID].Schema,
			Table:      entry.name,
			Rank:       entry.rank,
		})
	}

	schemaSpecificity := func(cand TableCandidate) int {
		if schema != "" && strings.EqualFold(cand.Schema, schema) {
			return 0
		}
		return 1
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		ri, rj := candidates[i].Rank, candidates[j].Rank
		if ri != rj {
			return rankDistance(ri, originatingRank) < rankDistance(rj, originatingRank)
		}
		si, sj := schemaSpecificity(candidates[i]), schemaSpecificity(candidates[j])
		if si != sj {
			return si < sj
		}
		return c.tableNames[candidates[i].TableID].insertOrd < c.tableNames[candidates[j].TableID].insertOrd
	})

	if len(candidates) > maxAmbiguity {
		candidates = candidates[:maxAmbiguity]
	}
	return candidates
}

func rankDistance(rank, originating Rank) int {
	d := rank - originating
	if d < 0 {
		return -d
	}
	return d
}

// DatabaseName returns the name registered for id, or "" if unknown.
func (c *Catalog) DatabaseName(id ID) string { return c.databaseNames[id] }

// SchemaName returns (database, schema) registered for id.
func (c *Catalog) SchemaName(id ID) (database, schema string) {
	k := c.schemaNames[id]
	return k.Database, k.Schema
}

// TableName returns the bare table name registered for id.
func (c *Catalog) TableName(id ID) string { return c.tableNames[id].name }

// ColumnName returns the bare column name registered for id.
func (c *Catalog) ColumnName(id ID) string { return c.columnNames[id].name }

// ColumnTableID returns the owning table id for a column id.
func (c *Catalog) ColumnTableID(id ID) ID { return c.columnNames[id].tableID }

// MergeSchemas collapses two previously allocated schema ids that the
// caller has found to denote the same logical schema onto one canonical id,
// using the retained union-find utility, and returns that id. Since
// AllocateSchemaId is idempotent by (database, schema), the two ids carry
// different name pairs. No other Catalog method consults the merge.
func (c *Catalog) MergeSchemas(a, b ID) ID {
	return c.schemaDedup.Merge(a, b, func(x, y schemaKey) schemaKey { return x })
}
