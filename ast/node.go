package ast

// NodeType tags a Node with how to interpret ChildrenBeginOrValue/ChildrenCount.
//
// Node types partition into scalars (the value lives directly in
// ChildrenBeginOrValue), arrays (ChildrenBeginOrValue/ChildrenCount denote a
// slice of anonymous child nodes) and objects (the slice holds attribute
// children, each carrying its own AttributeKey). Every object type compares
// greater than ObjectKeys_, mirroring the source's
// `node.node_type() >= NodeType::OBJECT_KEYS_` check used by the
// column-transform pass to recognize "real" AST objects.
type NodeType uint16

const (
	NodeTypeNone NodeType = iota

	// Scalars.
	NodeTypeBool
	NodeTypeUI32
	NodeTypeUI32Bitmap
	NodeTypeStringRef
	// Literal scalars produced by the scanner's IConst/FConst/SConst
	// symbols. ChildrenBeginOrValue holds the literal's source span begin
	// offset relative to Location (i.e. Location already covers the whole
	// literal); the constant-expression pass re-reads the source text at
	// Location to classify/parse the value, rather than pre-parsing it here.
	NodeTypeConstInteger
	NodeTypeConstFloat
	NodeTypeConstString
	// NodeTypeName indexes into the scanned script's interned names table;
	// ChildrenBeginOrValue is the name id.
	NodeTypeName

	// Enum-typed scalars. ChildrenBeginOrValue holds the enum ordinal.
	NodeTypeEnumSQLExpressionOperator
	NodeTypeEnumSQLJoinType
	NodeTypeEnumSQLNumericType
	NodeTypeEnumSQLConstType

	// Arrays. ChildrenBegin/ChildrenCount denote a slice of positional
	// children with no attribute key of their own.
	NodeTypeArray

	// ObjectKeys_ is a sentinel: every NodeType ordered after it is an
	// object node whose children carry an AttributeKey.
	NodeTypeObjectKeys_

	NodeTypeObjectSQLSelect
	NodeTypeObjectSQLCreate
	NodeTypeObjectSQLCreateAs
	NodeTypeObjectSQLColumnDef
	NodeTypeObjectSQLTableRef
	NodeTypeObjectSQLColumnRef
	NodeTypeObjectSQLExpression
	NodeTypeObjectSQLNaryExpression
	NodeTypeObjectSQLFunctionExpression
	NodeTypeObjectSQLResultTarget
	NodeTypeObjectSQLQualifiedName
	NodeTypeObjectSQLIndirectionIndex
	NodeTypeObjectSQLInto
)

//go:generate stringer -type=NodeType

func (t NodeType) String() string {
	switch t {
	case NodeTypeNone:
		return "NONE"
	case NodeTypeBool:
		return "BOOL"
	case NodeTypeUI32:
		return "UI32"
	case NodeTypeUI32Bitmap:
		return "UI32_BITMAP"
	case NodeTypeStringRef:
		return "STRING_REF"
	case NodeTypeConstInteger:
		return "CONST_INTEGER"
	case NodeTypeConstFloat:
		return "CONST_FLOAT"
	case NodeTypeConstString:
		return "CONST_STRING"
	case NodeTypeName:
		return "NAME"
	case NodeTypeEnumSQLExpressionOperator:
		return "ENUM_SQL_EXPRESSION_OPERATOR"
	case NodeTypeEnumSQLJoinType:
		return "ENUM_SQL_JOIN_TYPE"
	case NodeTypeEnumSQLNumericType:
		return "ENUM_SQL_NUMERIC_TYPE"
	case NodeTypeEnumSQLConstType:
		return "ENUM_SQL_CONST_TYPE"
	case NodeTypeArray:
		return "ARRAY"
	case NodeTypeObjectKeys_:
		return "OBJECT_KEYS_"
	case NodeTypeObjectSQLSelect:
		return "OBJECT_SQL_SELECT"
	case NodeTypeObjectSQLCreate:
		return "OBJECT_SQL_CREATE"
	case NodeTypeObjectSQLCreateAs:
		return "OBJECT_SQL_CREATE_AS"
	case NodeTypeObjectSQLColumnDef:
		return "OBJECT_SQL_COLUMN_DEF"
	case NodeTypeObjectSQLTableRef:
		return "OBJECT_SQL_TABLEREF"
	case NodeTypeObjectSQLColumnRef:
		return "OBJECT_SQL_COLUMN_REF"
	case NodeTypeObjectSQLExpression:
		return "OBJECT_SQL_EXPRESSION"
	case NodeTypeObjectSQLNaryExpression:
		return "OBJECT_SQL_NARY_EXPRESSION"
	case NodeTypeObjectSQLFunctionExpression:
		return "OBJECT_SQL_FUNCTION_EXPRESSION"
	case NodeTypeObjectSQLResultTarget:
		return "OBJECT_SQL_RESULT_TARGET"
	case NodeTypeObjectSQLQualifiedName:
		return "OBJECT_SQL_QUALIFIED_NAME"
	case NodeTypeObjectSQLIndirectionIndex:
		return "OBJECT_SQL_INDIRECTION_INDEX"
	case NodeTypeObjectSQLInto:
		return "OBJECT_SQL_INTO"
	default:
		return "UNKNOWN"
	}
}

// IsObject reports whether t denotes an attribute-carrying object node.
func (t NodeType) IsObject() bool { return t > NodeTypeObjectKeys_ }

// IsArray reports whether t denotes a positional-children array node.
func (t NodeType) IsArray() bool { return t == NodeTypeArray }

// NodeID indexes into a script's flat node array.
type NodeID = uint32

// Node is the fixed-width AST atom described in SPEC_FULL.md §3: a location,
// a type tag, an optional attribute key (meaningful only when the node is a
// child of an object), a parent back-reference, and either a scalar value or
// a children slice, depending on Type.
type Node struct {
	Location             Location
	Type                 NodeType
	AttributeKey         AttributeKey
	Parent               NodeID
	ChildrenBeginOrValue uint32
	ChildrenCount        uint32
}

// Value returns ChildrenBeginOrValue for scalar node types, where the field
// holds a value rather than a child slice offset.
func (n Node) Value() uint32 { return n.ChildrenBeginOrValue }

// Children returns the [begin, begin+count) slice bounds for array/object
// node types.
func (n Node) Children() (begin, count uint32) {
	return n.ChildrenBeginOrValue, n.ChildrenCount
}
