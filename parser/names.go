package parser

import "strings"

// NameTag is a coarse classification bitmap attached to an interned name
// (as a column reference, a table alias, and so on), matching the "names
// table" in §3. Tags are set only through NameRegistry.Tag; Scan and Parse
// do not call it, so every bitmap is zero unless a caller sets it.
type NameTag uint8

const (
	NameTagColumnName NameTag = 1 << iota
	NameTagTableAlias
	NameTagTableName
	NameTagSchemaName
	NameTagDatabaseName
)

// nameEntry is one interned identifier: its case-folded text and the union
// of tags set on it through Tag.
type nameEntry struct {
	text string
	tags NameTag
}

// NameRegistry interns identifier text case-insensitively (SQL identifiers
// fold to lower case unless quoted; quoting is not modeled here, matching
// the subset this driver accepts) and tracks, per name, the coarse usage
// tags observed across the script.
type NameRegistry struct {
	index   map[string]uint32
	entries []nameEntry
}

// NewNameRegistry returns an empty registry.
func NewNameRegistry() *NameRegistry {
	return &NameRegistry{index: make(map[string]uint32)}
}

// Intern returns the stable id for text, allocating a new entry on first
// sight. Subsequent Intern calls for the same case-folded text return the
// same id.
func (r *NameRegistry) Intern(text string) uint32 {
	folded := strings.ToLower(text)
	if id, ok := r.index[folded]; ok {
		return id
	}
	id := uint32(len(r.entries))
	r.entries = append(r.entries, nameEntry{text: folded})
	r.index[folded] = id
	return id
}

// Tag adds tag to the usage bitmap for id.
func (r *NameRegistry) Tag(id uint32, tag NameTag) {
	r.entries[id].tags |= tag
}

// Text returns the case-folded text for id.
func (r *NameRegistry) Text(id uint32) string {
	return r.entries[id].text
}

// Tags returns the accumulated usage bitmap for id.
func (r *NameRegistry) Tags(id uint32) NameTag {
	return r.entries[id].tags
}

// Len returns the number of distinct interned names.
func (r *NameRegistry) Len() int { return len(r.entries) }
