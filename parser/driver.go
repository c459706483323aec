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

package parser

import (
	"github.com/sirupsen/logrus"

	"github.com/ankoh/dashql-sub002/ast"
	"github.com/ankoh/dashql-sub002/parsererr"
)

// ParserError is one recoverable PARSER-kind error (§7).
type ParserError struct {
	Location ast.Location
	Message  string
}

// ParsedScript is the output of Parse (§3, §6): the scanned script it was
// built from, the flat node array, the ordered statement list, and
// recoverable parser errors. DSON key spans stay on Scanned; dependencies
// between statements are not tracked.
type ParsedScript struct {
	Scanned    *ScannedScript
	Nodes      []ast.Node
	Statements []Statement
	Errors     []ParserError
}

// driver accumulates nodes and statements while the recursive-descent
// grammar runs, mirroring ParserDriver in parser_driver.h: its Add*
// convenience methods wrap the Builder.
type driver struct {
	scanned *ScannedScript
	builder *ast.Builder
	symbols []Symbol
	pos     int

	statements []Statement
	errors     []ParserError
	logger     logrus.FieldLogger
}

func newDriver(scanned *ScannedScript, logger logrus.FieldLogger) *driver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &driver{
		scanned: scanned,
		builder: ast.NewBuilder(len(scanned.Symbols) * 2),
		symbols: scanned.Symbols,
		logger:  logger,
	}
}

// AddError records a recoverable PARSER error at loc, matching
// ParserDriver::AddError.
func (d *driver) AddError(loc ast.Location, message string) {
	d.errors = append(d.errors, ParserError{Location: loc, Message: message})
	d.logger.Tracef("parser error at %d: %s", loc.Offset, message)
}

// AddObject delegates to the builder, recording dense attribute storage.
func (d *driver) AddObject(loc ast.Location, typ ast.NodeType, attrs []ast.AttributeChild) ast.Node {
	return d.builder.AddObject(loc, typ, attrs)
}

// AddArray delegates to the builder.
func (d *driver) AddArray(loc ast.Location, vec ast.NodeVector) ast.Node {
	return d.builder.AddArray(loc, vec)
}

// AddStatement finalizes a statement with the given type, root node, and
// optional declared name. Table/column reference occurrences are recovered
// by scanning the finished node range rather than tracked incrementally,
// since a ref node's final id isn't known until it's nested into its
// eventual parent (see scanStatementRefs).
func (d *driver) AddStatement(typ StatementType, root ast.Node, name ResolvedQualifiedName, begin ast.NodeID) {
	rootID := d.builder.Finish(root)
	end := ast.NodeID(len(d.builder.Nodes()))
	tableRefs, columnRefs := scanStatementRefs(d.builder.Nodes(), d.scanned.Names, begin, end)
	d.statements = append(d.statements, Statement{
		Type:       typ,
		Root:       rootID,
		Name:       name,
		TableRefs:  tableRefs,
		ColumnRefs: columnRefs,
		NodesBegin: begin,
		NodesEnd:   end,
	})
}

// cur returns the symbol at the current cursor position without consuming
// it.
func (d *driver) cur() Symbol {
	if d.pos >= len(d.symbols) {
		return Symbol{Kind: TokenEOF}
	}
	return d.symbols[d.pos]
}

// peekAt returns the symbol offset tokens ahead of the cursor.
func (d *driver) peekAt(offset int) Symbol {
	i := d.pos + offset
	if i >= len(d.symbols) {
		return Symbol{Kind: TokenEOF}
	}
	return d.symbols[i]
}

// advance consumes and returns the current symbol.
func (d *driver) advance() Symbol {
	s := d.cur()
	if d.pos < len(d.symbols) {
		d.pos++
	}
	return s
}

// expect consumes the current symbol if it matches kind, else records a
// grammar error and returns the symbol anyway so the caller can keep
// making forward progress (parsing degrades to a best-effort partial tree
// rather than aborting the whole statement).
func (d *driver) expect(kind TokenKind) Symbol {
	s := d.cur()
	if s.Kind != kind {
		d.AddError(s.Location, parsererr.ErrGrammar.New(d.tokenText(s)).Error())
		return s
	}
	return d.advance()
}

// atEOF reports whether the cursor has reached the end of the symbol
// stream.
func (d *driver) atEOF() bool { return d.cur().Kind == TokenEOF }

// tokenText returns the source snippet covered by a symbol, or "<eof>" at
// the end of input.
func (d *driver) tokenText(s Symbol) string {
	if s.Kind == TokenEOF || s.Location.Length == 0 {
		return "<eof>"
	}
	return d.scanned.Text[s.Location.Offset:s.Location.End()]
}
