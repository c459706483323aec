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

package script

import (
	"github.com/ankoh/dashql-sub002/ast"
	"github.com/ankoh/dashql-sub002/parser"
)

// CursorContextKind tags what an editor cursor is presently sitting on,
// per §6's `MoveCursor` contract.
type CursorContextKind uint8

const (
	CursorContextNone CursorContextKind = iota
	CursorContextTableRef
	CursorContextColumnRef
)

// Cursor is MoveCursor's result: the scanner symbol and innermost AST node
// containing the offset, the enclosing statement, and a context tag
// identifying whether the cursor sits on a table or column reference.
type Cursor struct {
	ScannerLocation *ast.Location
	StatementID     *int
	ASTNodeID       *ast.NodeID

	ContextKind CursorContextKind
	// ContextNodeID is the table-ref or column-ref node id when
	// ContextKind names one, matching the `{ref_id}`/`{expr_id}` payload
	// §6 describes for TableRefContext/ColumnRefContext.
	ContextNodeID ast.NodeID
}

// MoveCursor locates offset within a scanned+parsed script: the scanner
// symbol whose span contains it, the innermost AST node whose span
// contains it, the enclosing statement, and — if that node or one of its
// ancestors is a table or column reference — a context tag carrying the
// node id of the nearest such reference.
func MoveCursor(scanned *parser.ScannedScript, parsed *parser.ParsedScript, offset uint32) Cursor {
	var cur Cursor

	for i := range scanned.Symbols {
		loc := scanned.Symbols[i].Location
		if offset >= loc.Offset && offset < loc.End() {
			l := loc
			cur.ScannerLocation = &l
			break
		}
	}

	var bestID ast.NodeID
	bestLen := uint32(0)
	found := false
	for id := range parsed.Nodes {
		loc := parsed.Nodes[id].Location
		if loc.Length == 0 {
			continue
		}
		if offset < loc.Offset || offset >= loc.End() {
			continue
		}
		if !found || loc.Length < bestLen {
			bestID = ast.NodeID(id)
			bestLen = loc.Length
			found = true
		}
	}
	if found {
		id := bestID
		cur.ASTNodeID = &id

		for i, stmt := range parsed.Statements {
			if id >= stmt.NodesBegin && id < stmt.NodesEnd {
				stmtID := i
				cur.StatementID = &stmtID
				break
			}
		}

		// The innermost containing node is often a leaf (e.g. the NAME
		// under a column reference's path), which is never itself typed
		// TableRef/ColumnRef. Walk up the parent chain to find the
		// nearest enclosing reference object.
		for cursorID := id; ; {
			switch parsed.Nodes[cursorID].Type {
			case ast.NodeTypeObjectSQLTableRef:
				cur.ContextKind = CursorContextTableRef
				cur.ContextNodeID = cursorID
			case ast.NodeTypeObjectSQLColumnRef:
				cur.ContextKind = CursorContextColumnRef
				cur.ContextNodeID = cursorID
			}
			if cur.ContextKind != CursorContextNone {
				break
			}
			parent := parsed.Nodes[cursorID].Parent
			if parent == ast.NoParent || int(parent) >= len(parsed.Nodes) {
				break
			}
			cursorID = parent
		}
	}

	return cur
}
