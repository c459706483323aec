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
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/ankoh/dashql-sub002/ast"
	"github.com/ankoh/dashql-sub002/parsererr"
)

// ScannerError is one recoverable SCANNER-kind error (§7), accumulated
// rather than raised so the scan can keep producing tokens.
type ScannerError struct {
	Location ast.Location
	Message  string
}

// Scanner lexes SQL text into a symbol stream with single-token lookahead
// rewriting, nested comment tracking, and parallel comment/line-break
// indexes, grounded on lib/src/parser/scanner.cc.
type Scanner struct {
	text   string
	pos    int
	line   int

	symbols       []Symbol
	comments      []ast.Location
	lineBreaks    []ast.Location
	dsonKeys      []ast.Location
	errors        []ScannerError
	names         *NameRegistry
	commentDepth  int
	logger        logrus.FieldLogger
}

// NewScanner returns a Scanner ready to lex text.
func NewScanner(text string, names *NameRegistry, logger logrus.FieldLogger) *Scanner {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scanner{text: text, names: names, logger: logger}
}

func (s *Scanner) eof() bool { return s.pos >= len(s.text) }

func (s *Scanner) peekByte() byte {
	if s.eof() {
		return 0
	}
	return s.text[s.pos]
}

func (s *Scanner) peekByteAt(offset int) byte {
	if s.pos+offset >= len(s.text) {
		return 0
	}
	return s.text[s.pos+offset]
}

// TextAt returns the source text covered by loc.
func (s *Scanner) TextAt(loc ast.Location) string {
	return s.text[loc.Offset:loc.End()]
}

// LocationOf builds a Location spanning [begin, s.pos).
func (s *Scanner) LocationOf(begin int) ast.Location {
	return ast.Location{Offset: uint32(begin), Length: uint32(s.pos - begin)}
}

// AddError records a recoverable SCANNER error at loc.
func (s *Scanner) AddError(loc ast.Location, message string) {
	s.errors = append(s.errors, ScannerError{Location: loc, Message: message})
	s.logger.Tracef("scanner error at %d: %s", loc.Offset, message)
}

// AddLineBreak records a line-break location and advances the line counter.
func (s *Scanner) AddLineBreak(loc ast.Location) {
	s.lineBreaks = append(s.lineBreaks, loc)
	s.line++
}

// AddComment records a comment span exactly as given; it does not trim
// trailing whitespace.
func (s *Scanner) AddComment(loc ast.Location) {
	s.comments = append(s.comments, loc)
}

// MarkAsDSONKey records loc as a DSON configuration key, surfaced later as
// a DSON_KEY highlighting token even though DSON block execution itself is
// out of scope.
func (s *Scanner) MarkAsDSONKey(loc ast.Location) {
	s.dsonKeys = append(s.dsonKeys, loc)
}

// EndLiteral trims trailing whitespace/newlines from a literal's recorded
// span when trimRight is requested, matching scanner.cc's EndLiteral.
func (s *Scanner) EndLiteral(loc ast.Location, trimRight bool) ast.Location {
	if !trimRight {
		return loc
	}
	end := loc.End()
	for end > loc.Offset {
		c := s.text[end-1]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			end--
			continue
		}
		break
	}
	return ast.Location{Offset: loc.Offset, Length: end - loc.Offset}
}

func isIdentStart(r rune) bool { return unicode.IsLetter(r) || r == '_' }
func isIdentCont(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' {
		return r
	}
	return -1
}

// next lexes exactly one symbol starting at the current position, skipping
// whitespace and comments first. It does not perform the NOT/NULLS/WITH
// lookahead rewrite; Produce does that by peeking one symbol ahead.
func (s *Scanner) next() Symbol {
	for !s.eof() {
		c := s.peekByte()
		switch {
		case c == '\n':
			begin := s.pos
			s.pos++
			s.AddLineBreak(s.LocationOf(begin))
			continue
		case c == ' ' || c == '\t' || c == '\r':
			s.pos++
			continue
		case c == '-' && s.peekByteAt(1) == '-':
			begin := s.pos
			for !s.eof() && s.peekByte() != '\n' {
				s.pos++
			}
			s.AddComment(s.LocationOf(begin))
			continue
		case c == '/' && s.peekByteAt(1) == '*':
			begin := s.pos
			s.pos += 2
			s.commentDepth = 1
			for !s.eof() && s.commentDepth > 0 {
				if s.peekByte() == '/' && s.peekByteAt(1) == '*' {
					s.commentDepth++
					s.pos += 2
					continue
				}
				if s.peekByte() == '*' && s.peekByteAt(1) == '/' {
					s.commentDepth--
					s.pos += 2
					continue
				}
				if s.peekByte() == '\n' {
					s.AddLineBreak(s.LocationOf(s.pos))
				}
				s.pos++
			}
			s.AddComment(s.LocationOf(begin))
			continue
		}
		break
	}

	if s.eof() {
		return Symbol{Kind: TokenEOF, Location: ast.Location{Offset: uint32(len(s.text))}}
	}

	begin := s.pos
	c := s.peekByte()

	switch {
	case c == '\'':
		return s.readString(begin)
	case c >= '0' && c <= '9':
		return s.readNumber(begin)
	case c == '$':
		return s.readParameter(begin)
	case isIdentStart(rune(c)):
		return s.readIdentOrKeyword(begin)
	}

	// Multi-byte operators before single-byte ones.
	two := ""
	if s.pos+1 < len(s.text) {
		two = s.text[s.pos : s.pos+2]
	}
	switch two {
	case "<=":
		s.pos += 2
		return Symbol{Kind: TokenLessEquals, Location: s.LocationOf(begin)}
	case ">=":
		s.pos += 2
		return Symbol{Kind: TokenGreaterEquals, Location: s.LocationOf(begin)}
	case "<>", "!=":
		s.pos += 2
		return Symbol{Kind: TokenNotEquals, Location: s.LocationOf(begin)}
	}

	s.pos++
	switch c {
	case '+':
		return Symbol{Kind: TokenPlus, Location: s.LocationOf(begin)}
	case '-':
		return Symbol{Kind: TokenMinus, Location: s.LocationOf(begin)}
	case '*':
		return Symbol{Kind: TokenStar, Location: s.LocationOf(begin)}
	case '/':
		return Symbol{Kind: TokenSlash, Location: s.LocationOf(begin)}
	case '%':
		return Symbol{Kind: TokenPercent, Location: s.LocationOf(begin)}
	case '^':
		return Symbol{Kind: TokenCaret, Location: s.LocationOf(begin)}
	case '=':
		return Symbol{Kind: TokenEquals, Location: s.LocationOf(begin)}
	case '<':
		return Symbol{Kind: TokenLess, Location: s.LocationOf(begin)}
	case '>':
		return Symbol{Kind: TokenGreater, Location: s.LocationOf(begin)}
	case '(':
		return Symbol{Kind: TokenLParen, Location: s.LocationOf(begin)}
	case ')':
		return Symbol{Kind: TokenRParen, Location: s.LocationOf(begin)}
	case '[':
		return Symbol{Kind: TokenLBracket, Location: s.LocationOf(begin)}
	case ']':
		return Symbol{Kind: TokenRBracket, Location: s.LocationOf(begin)}
	case ',':
		return Symbol{Kind: TokenComma, Location: s.LocationOf(begin)}
	case ';':
		return Symbol{Kind: TokenSemicolon, Location: s.LocationOf(begin)}
	case '.':
		if !s.eof() && (s.peekByte() < '0' || s.peekByte() > '9') && !isIdentStart(rune(s.peekByte())) {
			return Symbol{Kind: TokenDotTrailing, Location: s.LocationOf(begin)}
		}
		return Symbol{Kind: TokenDot, Location: s.LocationOf(begin)}
	default:
		loc := s.LocationOf(begin)
		s.AddError(loc, "unexpected character")
		return Symbol{Kind: TokenEOF, Location: loc}
	}
}

func (s *Scanner) readString(begin int) Symbol {
	s.pos++ // opening quote
	for !s.eof() {
		if s.peekByte() == '\'' {
			if s.peekByteAt(1) == '\'' {
				s.pos += 2
				continue
			}
			s.pos++
			return Symbol{Kind: TokenSConst, Location: s.LocationOf(begin)}
		}
		s.pos++
	}
	loc := s.LocationOf(begin)
	s.AddError(loc, parsererr.ErrInvalidLiteral.New("unterminated string literal").Error())
	return Symbol{Kind: TokenSConst, Location: loc}
}

func (s *Scanner) readNumber(begin int) Symbol {
	isFloat := false
	for !s.eof() && s.peekByte() >= '0' && s.peekByte() <= '9' {
		s.pos++
	}
	if !s.eof() && s.peekByte() == '.' && s.peekByteAt(1) >= '0' && s.peekByteAt(1) <= '9' {
		isFloat = true
		s.pos++
		for !s.eof() && s.peekByte() >= '0' && s.peekByte() <= '9' {
			s.pos++
		}
	}
	if !s.eof() && (s.peekByte() == 'e' || s.peekByte() == 'E') {
		isFloat = true
		s.pos++
		if !s.eof() && (s.peekByte() == '+' || s.peekByte() == '-') {
			s.pos++
		}
		for !s.eof() && s.peekByte() >= '0' && s.peekByte() <= '9' {
			s.pos++
		}
	}
	loc := s.LocationOf(begin)
	if isFloat {
		if _, err := cast.ToFloat64E(s.TextAt(loc)); err != nil {
			s.AddError(loc, parsererr.ErrInvalidLiteral.New(s.TextAt(loc)).Error())
		}
		return Symbol{Kind: TokenFConst, Location: loc}
	}
	if _, err := cast.ToInt64E(s.TextAt(loc)); err != nil {
		s.AddError(loc, parsererr.ErrInvalidLiteral.New(s.TextAt(loc)).Error())
	}
	return Symbol{Kind: TokenIConst, Location: loc}
}

// ReadParameter lexes a `$n` positional parameter, using strconv rather
// than std::from_chars (the source's equivalent for integer parsing).
func (s *Scanner) readParameter(begin int) Symbol {
	s.pos++ // '$'
	digitsBegin := s.pos
	for !s.eof() && s.peekByte() >= '0' && s.peekByte() <= '9' {
		s.pos++
	}
	loc := s.LocationOf(begin)
	if s.pos == digitsBegin {
		s.AddError(loc, parsererr.ErrInvalidParameter.New(s.TextAt(loc)).Error())
		return Symbol{Kind: TokenParam, Location: loc}
	}
	if _, err := strconv.ParseUint(s.text[digitsBegin:s.pos], 10, 32); err != nil {
		s.AddError(loc, parsererr.ErrInvalidParameter.New(s.TextAt(loc)).Error())
	}
	return Symbol{Kind: TokenParam, Location: loc}
}

func (s *Scanner) readIdentOrKeyword(begin int) Symbol {
	for !s.eof() {
		r, size := utf8.DecodeRuneInString(s.text[s.pos:])
		if isIdentCont(r) == -1 {
			break
		}
		s.pos += size
	}
	loc := s.LocationOf(begin)
	text := s.TextAt(loc)
	if kind, ok := keywords[toLowerASCII(text)]; ok {
		return Symbol{Kind: kind, Location: loc}
	}
	nameID := s.names.Intern(text)
	return Symbol{Kind: TokenIdent, Location: loc, NameID: nameID}
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// Produce lexes the entire input into s.symbols, applying the single-token
// lookahead rewrite: NOT becomes NOT_LA before BETWEEN/IN/LIKE/ILIKE/
// SIMILAR; NULLS becomes NULLS_LA before FIRST/LAST; WITH becomes WITH_LA
// before TIME/ORDINALITY. This mirrors Scanner::Produce in scanner.cc,
// which buffers one token of lookahead to make the rewrite decision.
func (s *Scanner) Produce() {
	var lookahead *Symbol
	readNext := func() Symbol {
		if lookahead != nil {
			sym := *lookahead
			lookahead = nil
			return sym
		}
		return s.next()
	}

	for {
		sym := readNext()
		if sym.Kind == TokenEOF {
			s.symbols = append(s.symbols, sym)
			break
		}

		switch sym.Kind {
		case TokenNot:
			peek := s.next()
			lookahead = &peek
			switch peek.Kind {
			case TokenBetween, TokenIn, TokenLike, TokenILike, TokenSimilar:
				sym.Kind = TokenNotLA
				s.logger.Tracef("scanner: rewrote NOT -> NOT_LA before %v", peek.Kind)
			}
		case TokenNulls:
			peek := s.next()
			lookahead = &peek
			switch peek.Kind {
			case TokenFirst, TokenLast:
				sym.Kind = TokenNullsLA
				s.logger.Tracef("scanner: rewrote NULLS -> NULLS_LA before %v", peek.Kind)
			}
		case TokenWith:
			peek := s.next()
			lookahead = &peek
			switch peek.Kind {
			case TokenTime, TokenOrdinality:
				sym.Kind = TokenWithLA
				s.logger.Tracef("scanner: rewrote WITH -> WITH_LA before %v", peek.Kind)
			}
		}

		s.symbols = append(s.symbols, sym)
	}
}

// Symbols returns the produced symbol stream; Produce must be called first.
func (s *Scanner) Symbols() []Symbol { return s.symbols }

// Errors returns the accumulated recoverable scanner errors.
func (s *Scanner) Errors() []ScannerError { return s.errors }

// Comments returns the recorded comment spans in source order.
func (s *Scanner) Comments() []ast.Location { return s.comments }

// LineBreaks returns the recorded line-break locations in source order.
func (s *Scanner) LineBreaks() []ast.Location { return s.lineBreaks }

// DSONKeys returns the recorded DSON key spans in source order.
func (s *Scanner) DSONKeys() []ast.Location { return s.dsonKeys }

// Names returns the scanner's interned name registry.
func (s *Scanner) Names() *NameRegistry { return s.names }
