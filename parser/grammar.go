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

// Package parser implements the hand-written recursive-descent grammar
// actions that used to be generated by bison in the original source
// (lib/src/parser/grammar, `*.yy` files under original_source/ are not
// carried since those are grammar-generator inputs, not source). The
// production shapes the grammar builds mirror grammar/nodes.h exactly:
// every Expr/ColumnRef/QualifiedName call here corresponds one-to-one to a
// driver.Add call in a bison action there. A hand-written parser is the
// idiomatic Go substitute for a bison/flex-generated one; there is no
// widely-used parser-generator dependency in the example corpus, so this is
// grounded on the driver/grammar split rather than a third-party grammar
// library (see DESIGN.md).
package parser

import "github.com/ankoh/dashql-sub002/ast"

// Parse builds a ParsedScript from a ScannedScript's symbol stream, per
// §6's `Parse(ScannedScript) → ParsedScript | Errors`.
func Parse(scanned *ScannedScript) *ParsedScript {
	d := newDriver(scanned, nil)
	for !d.atEOF() {
		for d.cur().Kind == TokenSemicolon {
			d.advance()
		}
		if d.atEOF() {
			break
		}
		parseStatement(d)
	}
	return &ParsedScript{
		Scanned:    scanned,
		Nodes:      d.builder.Nodes(),
		Statements: d.statements,
		Errors:     d.errors,
	}
}

func parseStatement(d *driver) {
	begin := ast.NodeID(len(d.builder.Nodes()))
	switch d.cur().Kind {
	case TokenCreate:
		parseCreateTable(d, begin)
	default:
		parseSelect(d, begin)
	}
}

// --- SELECT ---------------------------------------------------------------

func parseSelect(d *driver, begin ast.NodeID) {
	selectLoc := d.expect(TokenSelect).Location

	var targets ast.NodeVector
	targets = append(targets, parseResultTarget(d))
	for d.cur().Kind == TokenComma {
		d.advance()
		targets = append(targets, parseResultTarget(d))
	}
	targetsNode := d.AddArray(selectLoc, targets)

	var fromNode ast.Node
	hasFrom := false
	if d.cur().Kind == TokenFrom {
		d.advance()
		var refs ast.NodeVector
		refs = append(refs, parseTableRef(d))
		for d.cur().Kind == TokenComma {
			d.advance()
			refs = append(refs, parseTableRef(d))
		}
		fromNode = d.AddArray(selectLoc, refs)
		hasFrom = true
	}

	var whereNode ast.Node
	hasWhere := false
	if d.cur().Kind == TokenWhere {
		d.advance()
		whereNode = parseExpr(d)
		hasWhere = true
	}

	attrs := []ast.AttributeChild{
		ast.Attr(ast.AttributeKeySelectTargets, targetsNode),
	}
	if hasFrom {
		attrs = append(attrs, ast.Attr(ast.AttributeKeySelectFrom, fromNode))
	}
	if hasWhere {
		attrs = append(attrs, ast.Attr(ast.AttributeKeySelectWhere, whereNode))
	}

	selectNode := d.AddObject(selectLoc, ast.NodeTypeObjectSQLSelect, attrs)
	d.AddStatement(StatementTypeSelect, selectNode, ResolvedQualifiedName{}, begin)
}

// parseResultTarget parses `*`, `expr`, or `expr AS alias`.
func parseResultTarget(d *driver) ast.Node {
	if d.cur().Kind == TokenStar {
		loc := d.advance().Location
		return d.AddObject(loc, ast.NodeTypeObjectSQLResultTarget, []ast.AttributeChild{
			ast.Attr(ast.AttributeKeyResultTargetStar, boolNode(loc, true)),
		})
	}
	value := parseExpr(d)
	attrs := []ast.AttributeChild{ast.Attr(ast.AttributeKeyResultTargetValue, value)}
	if d.cur().Kind == TokenAs {
		d.advance()
		alias := d.expect(TokenIdent)
		attrs = append(attrs, ast.Attr(ast.AttributeKeyResultTargetName, nameNode(alias)))
	} else if d.cur().Kind == TokenIdent {
		alias := d.advance()
		attrs = append(attrs, ast.Attr(ast.AttributeKeyResultTargetName, nameNode(alias)))
	}
	return d.AddObject(value.Location, ast.NodeTypeObjectSQLResultTarget, attrs)
}

// parseTableRef parses `name [[AS] alias]`, where name may be dotted
// (`schema.table`).
func parseTableRef(d *driver) ast.Node {
	nameNodes, loc := parseQualifiedNamePath(d)
	qn := BuildQualifiedName(d.builder, loc, nameNodes)
	attrs := []ast.AttributeChild{ast.Attr(ast.AttributeKeyTableRefName, qn)}

	if d.cur().Kind == TokenAs {
		d.advance()
		alias := d.expect(TokenIdent)
		attrs = append(attrs, ast.Attr(ast.AttributeKeyTableRefAlias, nameNode(alias)))
	} else if d.cur().Kind == TokenIdent {
		alias := d.advance()
		attrs = append(attrs, ast.Attr(ast.AttributeKeyTableRefAlias, nameNode(alias)))
	}

	return d.AddObject(loc, ast.NodeTypeObjectSQLTableRef, attrs)
}

// parseQualifiedNamePath parses a dotted identifier path (`a`, `a.b`, or
// `a.b.c`) and returns the component NAME nodes plus their merged
// location.
func parseQualifiedNamePath(d *driver) ([]ast.Node, ast.Location) {
	first := d.expect(TokenIdent)
	components := []ast.Node{nameNode(first)}
	loc := first.Location
	for d.cur().Kind == TokenDot {
		d.advance()
		next := d.expect(TokenIdent)
		components = append(components, nameNode(next))
		loc = ast.Merge(loc, next.Location)
	}
	return components, loc
}

// --- CREATE TABLE ----------------------------------------------------------

func parseCreateTable(d *driver, begin ast.NodeID) {
	createLoc := d.expect(TokenCreate).Location
	d.expect(TokenTable)

	nameComponents, nameLoc := parseQualifiedNamePath(d)
	qn := BuildQualifiedName(d.builder, nameLoc, nameComponents)
	resolved := ReadQualifiedName(d.builder.Nodes(), d.scanned.Names, qn)

	d.expect(TokenLParen)
	var columns ast.NodeVector
	columns = append(columns, parseColumnDef(d))
	for d.cur().Kind == TokenComma {
		d.advance()
		columns = append(columns, parseColumnDef(d))
	}
	closeLoc := d.expect(TokenRParen).Location

	columnsNode := d.AddArray(ast.Merge(nameLoc, closeLoc), columns)

	createNode := d.AddObject(ast.Merge(createLoc, closeLoc), ast.NodeTypeObjectSQLCreate, []ast.AttributeChild{
		ast.Attr(ast.AttributeKeyCreateName, qn),
		ast.Attr(ast.AttributeKeyCreateColumns, columnsNode),
	})
	d.AddStatement(StatementTypeCreateTable, createNode, resolved, begin)
}

func parseColumnDef(d *driver) ast.Node {
	nameSym := d.expect(TokenIdent)
	typeSym := d.advance() // INT/FLOAT/etc, best-effort: any token accepted as a type name
	loc := ast.Merge(nameSym.Location, typeSym.Location)
	return d.AddObject(loc, ast.NodeTypeObjectSQLColumnDef, []ast.AttributeChild{
		ast.Attr(ast.AttributeKeyColumnDefName, nameNode(nameSym)),
		ast.Attr(ast.AttributeKeyColumnDefType, typeNode(typeSym)),
	})
}

// --- Expressions ------------------------------------------------------------

func parseExpr(d *driver) ast.Node { return parseOr(d) }

func parseOr(d *driver) ast.Node {
	left := parseAnd(d)
	for d.cur().Kind == TokenOr {
		d.advance()
		right := parseAnd(d)
		left = binaryExpr(d, OperatorOr, left, right)
	}
	return left
}

func parseAnd(d *driver) ast.Node {
	left := parseComparison(d)
	for d.cur().Kind == TokenAnd {
		d.advance()
		right := parseComparison(d)
		left = binaryExpr(d, OperatorAnd, left, right)
	}
	return left
}

var comparisonOps = map[TokenKind]ExpressionOperator{
	TokenEquals:        OperatorEquals,
	TokenNotEquals:     OperatorNotEquals,
	TokenLess:          OperatorLess,
	TokenLessEquals:    OperatorLessEquals,
	TokenGreater:       OperatorGreater,
	TokenGreaterEquals: OperatorGreaterEquals,
}

func parseComparison(d *driver) ast.Node {
	left := parseAdditive(d)
	if op, ok := comparisonOps[d.cur().Kind]; ok {
		d.advance()
		right := parseAdditive(d)
		left = binaryExpr(d, op, left, right)
	}
	return left
}

var additiveOps = map[TokenKind]ExpressionOperator{
	TokenPlus:  OperatorPlus,
	TokenMinus: OperatorMinus,
}

func parseAdditive(d *driver) ast.Node {
	left := parseMultiplicative(d)
	for {
		op, ok := additiveOps[d.cur().Kind]
		if !ok {
			return left
		}
		d.advance()
		right := parseMultiplicative(d)
		left = binaryExpr(d, op, left, right)
	}
}

var multiplicativeOps = map[TokenKind]ExpressionOperator{
	TokenStar:    OperatorMultiply,
	TokenSlash:   OperatorDivide,
	TokenPercent: OperatorModulus,
	TokenCaret:   OperatorXor,
}

func parseMultiplicative(d *driver) ast.Node {
	left := parseUnary(d)
	for {
		op, ok := multiplicativeOps[d.cur().Kind]
		if !ok {
			return left
		}
		d.advance()
		right := parseUnary(d)
		left = binaryExpr(d, op, left, right)
	}
}

func parseUnary(d *driver) ast.Node {
	switch d.cur().Kind {
	case TokenMinus:
		loc := d.advance().Location
		arg := parseUnary(d)
		return unaryExpr(d, OperatorNegate, ast.Merge(loc, arg.Location), arg)
	case TokenNot, TokenNotLA:
		loc := d.advance().Location
		arg := parseUnary(d)
		return unaryExpr(d, OperatorNot, ast.Merge(loc, arg.Location), arg)
	default:
		return parsePrimary(d)
	}
}

func parsePrimary(d *driver) ast.Node {
	switch d.cur().Kind {
	case TokenLParen:
		d.advance()
		inner := parseExpr(d)
		d.expect(TokenRParen)
		return inner
	case TokenIConst:
		sym := d.advance()
		return ast.Node{Location: sym.Location, Type: ast.NodeTypeConstInteger}
	case TokenFConst:
		sym := d.advance()
		return ast.Node{Location: sym.Location, Type: ast.NodeTypeConstFloat}
	case TokenSConst:
		sym := d.advance()
		return ast.Node{Location: sym.Location, Type: ast.NodeTypeConstString}
	case TokenParam:
		sym := d.advance()
		return ast.Node{Location: sym.Location, Type: ast.NodeTypeUI32}
	case TokenIdent:
		return parseIdentOrFunctionCall(d)
	default:
		sym := d.advance()
		d.AddError(sym.Location, "expected expression")
		return ast.Node{Location: sym.Location, Type: ast.NodeTypeNone}
	}
}

func parseIdentOrFunctionCall(d *driver) ast.Node {
	first := d.advance()
	if d.cur().Kind == TokenLParen {
		d.advance()
		var args ast.NodeVector
		if d.cur().Kind != TokenRParen {
			args = append(args, parseExpr(d))
			for d.cur().Kind == TokenComma {
				d.advance()
				args = append(args, parseExpr(d))
			}
		}
		closeLoc := d.expect(TokenRParen).Location
		argsNode := d.AddArray(ast.Merge(first.Location, closeLoc), args)
		return d.AddObject(ast.Merge(first.Location, closeLoc), ast.NodeTypeObjectSQLFunctionExpression, []ast.AttributeChild{
			ast.Attr(ast.AttributeKeyFunctionName, nameNode(first)),
			ast.Attr(ast.AttributeKeyFunctionArgs, argsNode),
		})
	}

	path := []ast.Node{nameNode(first)}
	loc := first.Location
	for d.cur().Kind == TokenDot {
		d.advance()
		next := d.expect(TokenIdent)
		path = append(path, nameNode(next))
		loc = ast.Merge(loc, next.Location)
	}
	pathNode := d.AddArray(loc, path)
	return d.AddObject(loc, ast.NodeTypeObjectSQLColumnRef, []ast.AttributeChild{
		ast.Attr(ast.AttributeKeyColumnRefPath, pathNode),
	})
}

func binaryExpr(d *driver, op ExpressionOperator, left, right ast.Node) ast.Node {
	loc := ast.Merge(left.Location, right.Location)
	opNode := ast.Node{Location: loc, Type: ast.NodeTypeEnumSQLExpressionOperator, ChildrenBeginOrValue: uint32(op)}
	return d.AddObject(loc, ast.NodeTypeObjectSQLNaryExpression, []ast.AttributeChild{
		ast.Attr(ast.AttributeKeyExpressionOperator, opNode),
		ast.Attr(ast.AttributeKeyExpressionArg0, left),
		ast.Attr(ast.AttributeKeyExpressionArg1, right),
	})
}

func unaryExpr(d *driver, op ExpressionOperator, loc ast.Location, arg ast.Node) ast.Node {
	opNode := ast.Node{Location: loc, Type: ast.NodeTypeEnumSQLExpressionOperator, ChildrenBeginOrValue: uint32(op)}
	return d.AddObject(loc, ast.NodeTypeObjectSQLExpression, []ast.AttributeChild{
		ast.Attr(ast.AttributeKeyExpressionOperator, opNode),
		ast.Attr(ast.AttributeKeyExpressionArg0, arg),
	})
}

func nameNode(sym Symbol) ast.Node {
	return ast.Node{Location: sym.Location, Type: ast.NodeTypeName, ChildrenBeginOrValue: sym.NameID}
}

func typeNode(sym Symbol) ast.Node {
	return ast.Node{Location: sym.Location, Type: ast.NodeTypeName, ChildrenBeginOrValue: sym.NameID}
}

func boolNode(loc ast.Location, v bool) ast.Node {
	val := uint32(0)
	if v {
		val = 1
	}
	return ast.Node{Location: loc, Type: ast.NodeTypeBool, ChildrenBeginOrValue: val}
}
