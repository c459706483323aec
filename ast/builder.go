package ast

// NodeVector is an in-progress list of sibling nodes awaiting a parent,
// matching the driver's `std::vector<proto::Node>` staging area before a
// call to Add flattens them into the shared node array.
type NodeVector []Node

// Builder accumulates nodes into one flat, append-only array, mirroring
// ParserDriver's `nodes_` buffer (parser_driver.h). Every Add call returns a
// Node value (not yet stamped with a parent) so that callers can nest it
// into an enclosing object or array in a further Add call, exactly as the
// grammar actions in `grammar/nodes.h` chain `driver.Add(...)` calls
// bottom-up.
type Builder struct {
	nodes []Node
}

// NewBuilder returns an empty Builder. capacityHint pre-sizes the backing
// array the way the driver reserves node storage from the scanner's token
// count estimate.
func NewBuilder(capacityHint int) *Builder {
	return &Builder{nodes: make([]Node, 0, capacityHint)}
}

// Nodes returns the flat node array built so far. Valid only after every
// pending node has been attached via AddObject/AddArray; callers must not
// mutate the returned slice.
func (b *Builder) Nodes() []Node { return b.nodes }

// AttributeChild pairs a child node with the attribute key it plays under
// its parent object, mirroring `Key::SQL_* << node` in grammar/nodes.h.
type AttributeChild struct {
	key  AttributeKey
	node Node
}

// Attr constructs an AttributeChild; `Key::FOO << node` in the source reads
// left-to-right as Attr(FOO, node) here.
func Attr(key AttributeKey, node Node) AttributeChild {
	return AttributeChild{key: key, node: node}
}

// appendChild appends child to the flat array and returns the index it
// lands at. A node's own Parent field can only be stamped once *it* is
// appended somewhere — which may happen many nodes later than when it was
// built, since AddObject/AddArray return an unattached Node for the caller
// to nest further. So children are appended here with Parent left as-is,
// and this call instead backfills the Parent of child's own children (the
// contiguous run at [ChildrenBeginOrValue, +ChildrenCount)) now that
// child's final position is known — correct no matter how many unrelated
// nodes were appended between child being built and it landing here.
func (b *Builder) appendChild(child Node) NodeID {
	id := NodeID(len(b.nodes))
	if child.ChildrenCount > 0 {
		for i := child.ChildrenBeginOrValue; i < child.ChildrenBeginOrValue+child.ChildrenCount; i++ {
			b.nodes[i].Parent = id
		}
	}
	b.nodes = append(b.nodes, child)
	return id
}

// AddObject appends an object node of the given type together with its
// attribute children, returning the object's own Node value (unattached to
// any parent yet — Parent is filled in once some further Add call places
// it, via appendChild). Children are laid out contiguously immediately
// before the object node is recorded, so the object's ChildrenBeginOrValue/
// ChildrenCount describe a dense slice, matching the driver's invariant
// that every object's children occupy one contiguous run.
func (b *Builder) AddObject(loc Location, typ NodeType, attrs []AttributeChild) Node {
	begin := uint32(len(b.nodes))
	for _, a := range attrs {
		child := a.node
		child.AttributeKey = a.key
		b.appendChild(child)
	}
	return Node{
		Location:             loc,
		Type:                 typ,
		AttributeKey:         AttributeKeyNone,
		Parent:               NoParent,
		ChildrenBeginOrValue: begin,
		ChildrenCount:        uint32(len(attrs)),
	}
}

// AddArray appends an ARRAY node wrapping vec as positional children and
// returns the array's own Node value, matching `driver.Add(loc,
// std::move(nodeVector))` in the source.
func (b *Builder) AddArray(loc Location, vec NodeVector) Node {
	begin := uint32(len(b.nodes))
	for _, child := range vec {
		b.appendChild(child)
	}
	return Node{
		Location:             loc,
		Type:                 NodeTypeArray,
		AttributeKey:         AttributeKeyNone,
		Parent:               NoParent,
		ChildrenBeginOrValue: begin,
		ChildrenCount:        uint32(len(vec)),
	}
}

// Finish appends the single remaining root node (a statement's top-level
// object, typically) and returns its id. Every construction sequence ends
// with exactly one such call per statement root.
func (b *Builder) Finish(root Node) NodeID {
	return b.appendChild(root)
}
