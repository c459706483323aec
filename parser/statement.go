package parser

import "github.com/ankoh/dashql-sub002/ast"

// StatementType tags a top-level statement, per §3.
type StatementType uint8

const (
	StatementTypeSelect StatementType = iota
	StatementTypeCreateTable
	StatementTypeCreateTableAs
)

// TableRefOccurrence records one table reference discovered while parsing a
// statement, paired with its dotted name, matching the driver's
// `std::pair<NodeID, QualifiedNameView>` entries in `Statement::table_refs`.
type TableRefOccurrence struct {
	NodeID ast.NodeID
	Name   ResolvedQualifiedName
}

// Statement is one parsed statement: its type, the root AST node, an
// optional declared name (e.g. the table name of a CREATE), and the table/
// column reference occurrences collected while building it, per §3.
type Statement struct {
	Type       StatementType
	Root       ast.NodeID
	Name       ResolvedQualifiedName
	TableRefs  []TableRefOccurrence
	ColumnRefs []ast.NodeID
	NodesBegin ast.NodeID
	NodesEnd   ast.NodeID
}

// scanStatementRefs walks the node range [begin, end) a just-finished
// statement occupies and collects every table/column reference found in it.
// Table and column refs only receive a stable id once the object/array call
// that nests them has run (Builder appends children contiguously right
// before their parent), so this runs after the whole statement is built
// rather than threading ids through the grammar actions that construct each
// ref.
func scanStatementRefs(nodes []ast.Node, names *NameRegistry, begin, end ast.NodeID) ([]TableRefOccurrence, []ast.NodeID) {
	var tableRefs []TableRefOccurrence
	var columnRefs []ast.NodeID
	for id := begin; id < end; id++ {
		switch nodes[id].Type {
		case ast.NodeTypeObjectSQLTableRef:
			name := ResolvedQualifiedName{}
			if qnID, ok := ast.LookupAttribute(nodes, id, ast.AttributeKeyTableRefName); ok {
				name = ReadQualifiedNameAt(nodes, names, qnID)
			}
			tableRefs = append(tableRefs, TableRefOccurrence{NodeID: id, Name: name})
		case ast.NodeTypeObjectSQLColumnRef:
			columnRefs = append(columnRefs, id)
		}
	}
	return tableRefs, columnRefs
}
