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

import "github.com/ankoh/dashql-sub002/ast"

// TokenKind tags one lexed symbol. The set is deliberately small: it covers
// the SELECT/CREATE TABLE subset this driver parses, plus the lookahead
// keywords the scanner rewrites (see Scanner.Produce), rather than the
// original bison grammar's full reserved-word list.
type TokenKind uint16

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenParam

	// Literals.
	TokenIConst
	TokenFConst
	TokenSConst

	// Keywords.
	TokenSelect
	TokenFrom
	TokenWhere
	TokenAs
	TokenCreate
	TokenTable
	TokenGroup
	TokenBy
	TokenHaving
	TokenAnd
	TokenOr
	TokenNot
	TokenNull
	TokenNulls
	TokenWith
	TokenBetween
	TokenIn
	TokenLike
	TokenILike
	TokenSimilar
	TokenFirst
	TokenLast
	TokenTime
	TokenOrdinality
	TokenInto
	TokenTemp
	TokenTemporary
	TokenFloat
	TokenInt

	// Lookahead-rewritten keywords, matching NOT_LA/NULLS_LA/WITH_LA in the
	// source scanner.
	TokenNotLA
	TokenNullsLA
	TokenWithLA

	// Operators and punctuation.
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenCaret
	TokenEquals
	TokenNotEquals
	TokenLess
	TokenLessEquals
	TokenGreater
	TokenGreaterEquals
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenComma
	TokenDot
	TokenDotTrailing
	TokenSemicolon
)

var keywords = map[string]TokenKind{
	"select":      TokenSelect,
	"from":        TokenFrom,
	"where":       TokenWhere,
	"as":          TokenAs,
	"create":      TokenCreate,
	"table":       TokenTable,
	"group":       TokenGroup,
	"by":          TokenBy,
	"having":      TokenHaving,
	"and":         TokenAnd,
	"or":          TokenOr,
	"not":         TokenNot,
	"null":        TokenNull,
	"nulls":       TokenNulls,
	"with":        TokenWith,
	"between":     TokenBetween,
	"in":          TokenIn,
	"like":        TokenLike,
	"ilike":       TokenILike,
	"similar":     TokenSimilar,
	"first":       TokenFirst,
	"last":        TokenLast,
	"time":        TokenTime,
	"ordinality":  TokenOrdinality,
	"into":        TokenInto,
	"temp":        TokenTemp,
	"temporary":   TokenTemporary,
	"float":       TokenFloat,
	"int":         TokenInt,
	"integer":     TokenInt,
}

// Symbol is one lexed token: its kind, source span, and (for identifiers) an
// interned Name id.
type Symbol struct {
	Kind     TokenKind
	Location ast.Location
	NameID   uint32
}

// highlightTokenType mirrors MapToken in tokens.cc: it reduces the fine
// grained TokenKind space down to the coarse categories the highlighting
// pass exposes to editors.
func (k TokenKind) highlightTokenType() HighlightType {
	switch k {
	case TokenIdent:
		return HighlightIdentifier
	case TokenIConst:
		return HighlightLiteralInteger
	case TokenFConst:
		return HighlightLiteralFloat
	case TokenSConst:
		return HighlightLiteralString
	case TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenPercent, TokenCaret,
		TokenEquals, TokenNotEquals, TokenLess, TokenLessEquals, TokenGreater, TokenGreaterEquals:
		return HighlightOperator
	case TokenDot:
		return HighlightDot
	case TokenDotTrailing:
		return HighlightDotTrailing
	case TokenEOF:
		return HighlightNone
	default:
		if isKeywordKind(k) {
			return HighlightKeyword
		}
		return HighlightNone
	}
}

func isKeywordKind(k TokenKind) bool {
	switch k {
	case TokenSelect, TokenFrom, TokenWhere, TokenAs, TokenCreate, TokenTable,
		TokenGroup, TokenBy, TokenHaving, TokenAnd, TokenOr, TokenNot, TokenNull,
		TokenNulls, TokenWith, TokenBetween, TokenIn, TokenLike, TokenILike,
		TokenSimilar, TokenFirst, TokenLast, TokenTime, TokenOrdinality, TokenInto,
		TokenTemp, TokenTemporary, TokenFloat, TokenInt,
		TokenNotLA, TokenNullsLA, TokenWithLA:
		return true
	default:
		return false
	}
}
