package ast

// AttributeKey identifies the role an object node's child plays in its
// parent, mirroring the `Key::SQL_*` enumerators built by
// `grammar/nodes.h`/`grammar/keys.h` in the original driver. A node whose
// Type is not an object type carries AttributeKeyNone.
type AttributeKey uint16

const (
	AttributeKeyNone AttributeKey = iota

	// OBJECT_SQL_EXPRESSION / OBJECT_SQL_NARY_EXPRESSION
	AttributeKeyExpressionOperator
	AttributeKeyExpressionArg0
	AttributeKeyExpressionArg1
	AttributeKeyExpressionArg2
	AttributeKeyExpressionArgs
	AttributeKeyExpressionPostfix

	// OBJECT_SQL_FUNCTION_EXPRESSION
	AttributeKeyFunctionName
	AttributeKeyFunctionArgs
	AttributeKeyFunctionModifiers

	// OBJECT_SQL_COLUMN_REF
	AttributeKeyColumnRefPath

	// OBJECT_SQL_COLUMN_DEF
	AttributeKeyColumnDefName
	AttributeKeyColumnDefType

	// OBJECT_SQL_TABLEREF
	AttributeKeyTableRefName
	AttributeKeyTableRefAlias

	// OBJECT_SQL_RESULT_TARGET
	AttributeKeyResultTargetName
	AttributeKeyResultTargetValue
	AttributeKeyResultTargetStar

	// OBJECT_SQL_SELECT
	AttributeKeySelectTargets
	AttributeKeySelectFrom
	AttributeKeySelectWhere
	AttributeKeySelectGroupBy
	AttributeKeySelectHaving

	// OBJECT_SQL_CREATE / OBJECT_SQL_CREATE_AS
	AttributeKeyCreateName
	AttributeKeyCreateColumns
	AttributeKeyCreateElements
	AttributeKeyCreateAsQuery

	// OBJECT_SQL_QUALIFIED_NAME
	AttributeKeyQualifiedNameCatalog
	AttributeKeyQualifiedNameSchema
	AttributeKeyQualifiedNameRelation
	AttributeKeyQualifiedNameColumn
	AttributeKeyQualifiedNameIndirection

	// OBJECT_SQL_INDIRECTION_INDEX
	AttributeKeyIndirectionIndexValue
	AttributeKeyIndirectionIndexLowerBound
	AttributeKeyIndirectionIndexUpperBound

	// OBJECT_SQL_INTO
	AttributeKeyTempType
	AttributeKeyTempName
)

// LookupAttribute scans an object node's children for key and returns the
// first match. It returns (NodeID, false) when the attribute is absent,
// matching the original driver's convention that missing attributes are
// simply not present in the children slice rather than stored as explicit
// nulls.
func LookupAttribute(nodes []Node, parent NodeID, key AttributeKey) (NodeID, bool) {
	return LookupAttributeIn(nodes, nodes[parent], key)
}

// LookupAttributeIn is LookupAttribute for an object Node value that has
// not yet been (or never will be) appended to the array itself — only its
// children need to already be resident, which AddObject guarantees the
// instant it returns. Grammar actions use this to inspect an object's
// attributes (e.g. a qualified name's components) immediately after
// building it, before it is nested into an enclosing parent.
func LookupAttributeIn(nodes []Node, parent Node, key AttributeKey) (NodeID, bool) {
	if !parent.Type.IsObject() {
		return 0, false
	}
	begin, count := parent.Children()
	for i := uint32(0); i < count; i++ {
		childID := begin + i
		if nodes[childID].AttributeKey == key {
			return childID, true
		}
	}
	return 0, false
}

// LookupAttributes returns every child of parent whose attribute key is one
// of keys, in node order, or nil when parent is not an object node.
func LookupAttributes(nodes []Node, parent NodeID, keys ...AttributeKey) []NodeID {
	p := nodes[parent]
	if !p.Type.IsObject() {
		return nil
	}
	want := make(map[AttributeKey]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	begin, count := p.Children()
	var out []NodeID
	for i := uint32(0); i < count; i++ {
		childID := begin + i
		if want[nodes[childID].AttributeKey] {
			out = append(out, childID)
		}
	}
	return out
}

// Children returns the positional children of an array node.
func Children(nodes []Node, id NodeID) []NodeID {
	n := nodes[id]
	if !n.Type.IsArray() {
		return nil
	}
	begin, count := n.Children()
	out := make([]NodeID, count)
	for i := uint32(0); i < count; i++ {
		out[i] = begin + i
	}
	return out
}
