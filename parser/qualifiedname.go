package parser

import "github.com/ankoh/dashql-sub002/ast"

// QualifiedName is the parsed form of a dotted name path, grounded on
// grammar/nodes.h's `QualifiedName()` builder. Components of length 1/2/3
// expand to {relation}, {schema,relation}, {catalog,schema,relation}
// respectively.
//
// The original C++ implementation's length>=3 branch indexes the raw node
// vector as nodes[0], nodes[3], nodes[2] when building the catalog/schema/
// relation triple, which does not match the documented 1/2/3-component
// contract and is flagged as a likely bug (spec.md §9). This is the
// "conservative reimplementation" called for there: nodes[0]=catalog,
// nodes[1]=schema, nodes[2]=relation; any components beyond the third are
// ignored rather than indexed out of order.
func BuildQualifiedName(b *ast.Builder, loc ast.Location, components []ast.Node) ast.Node {
	var attrs []ast.AttributeChild
	switch {
	case len(components) == 1:
		attrs = []ast.AttributeChild{
			ast.Attr(ast.AttributeKeyQualifiedNameRelation, components[0]),
		}
	case len(components) == 2:
		attrs = []ast.AttributeChild{
			ast.Attr(ast.AttributeKeyQualifiedNameSchema, components[0]),
			ast.Attr(ast.AttributeKeyQualifiedNameRelation, components[1]),
		}
	default:
		attrs = []ast.AttributeChild{
			ast.Attr(ast.AttributeKeyQualifiedNameCatalog, components[0]),
			ast.Attr(ast.AttributeKeyQualifiedNameSchema, components[1]),
			ast.Attr(ast.AttributeKeyQualifiedNameRelation, components[2]),
		}
	}
	return b.AddObject(loc, ast.NodeTypeObjectSQLQualifiedName, attrs)
}

// ResolvedQualifiedName is the string-valued projection of a
// OBJECT_SQL_QUALIFIED_NAME node, used by the analyzer and the catalog
// resolution calls which operate on plain strings rather than node ids.
type ResolvedQualifiedName struct {
	Catalog  string
	Schema   string
	Relation string
}

// ReadQualifiedName extracts a ResolvedQualifiedName from a
// OBJECT_SQL_QUALIFIED_NAME node value, resolving each present attribute's
// NAME child through names. It takes the Node value directly (rather than
// an id into the array) so grammar actions can read it back immediately
// after BuildQualifiedName returns, before the qualified-name node itself
// has been nested into an enclosing table-ref or create statement.
func ReadQualifiedName(nodes []ast.Node, names *NameRegistry, qn ast.Node) ResolvedQualifiedName {
	var out ResolvedQualifiedName
	if childID, ok := ast.LookupAttributeIn(nodes, qn, ast.AttributeKeyQualifiedNameCatalog); ok {
		out.Catalog = names.Text(nodes[childID].Value())
	}
	if childID, ok := ast.LookupAttributeIn(nodes, qn, ast.AttributeKeyQualifiedNameSchema); ok {
		out.Schema = names.Text(nodes[childID].Value())
	}
	if childID, ok := ast.LookupAttributeIn(nodes, qn, ast.AttributeKeyQualifiedNameRelation); ok {
		out.Relation = names.Text(nodes[childID].Value())
	}
	return out
}

// ReadQualifiedNameAt is ReadQualifiedName for a qualified-name node already
// resident in the array, addressed by id — the analyzer's view, once
// parsing has finished and every node has a stable index.
func ReadQualifiedNameAt(nodes []ast.Node, names *NameRegistry, id ast.NodeID) ResolvedQualifiedName {
	return ReadQualifiedName(nodes, names, nodes[id])
}
