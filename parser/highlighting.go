package parser

import (
	"sort"

	"github.com/ankoh/dashql-sub002/ast"
)

// HighlightType is the coarse token category exposed to editors, matching
// `buffers::parser::ScannerTokenType` in tokens.cc.
type HighlightType uint8

const (
	HighlightNone HighlightType = iota
	HighlightKeyword
	HighlightLiteralString
	HighlightLiteralInteger
	HighlightLiteralFloat
	HighlightLiteralBinary
	HighlightLiteralHex
	HighlightLiteralBoolean
	HighlightOperator
	HighlightIdentifier
	HighlightDot
	HighlightDotTrailing
	HighlightComment
	HighlightDSONKey
)

// Highlighting packs the parallel (offset, length, type) arrays plus the
// line-break index described in §6: `Breaks[i]` is the index of the first
// emitted token at or after the i-th line break, i.e. the first token on
// line i+1 (line 0 starts at index 0 and has no entry).
type Highlighting struct {
	Offsets []uint32
	Lengths []uint32
	Types   []HighlightType
	Breaks  []uint32
}

// BuildHighlighting merges the symbol stream with comment spans and DSON
// key offsets into one coalesced, offset-ordered emission stream, mirroring
// ScannedScript::PackTokens in tokens.cc. At coincident offsets a later
// emission overwrites the previous type tag so that whitespace between
// adjacent spans is attributed to whichever token actually owns it.
func BuildHighlighting(text string, symbols []Symbol, comments []ast.Location, dsonKeys []ast.Location, lineBreaks []ast.Location) Highlighting {
	type emission struct {
		offset uint32
		length uint32
		typ    HighlightType
	}
	var emissions []emission

	emit := func(offset, length uint32, typ HighlightType) {
		if n := len(emissions); n > 0 && emissions[n-1].offset == offset {
			emissions[n-1].typ = typ
			emissions[n-1].length = length
			return
		}
		emissions = append(emissions, emission{offset: offset, length: length, typ: typ})
	}

	ci := 0
	di := 0
	for _, sym := range symbols {
		for ci < len(comments) && comments[ci].Offset < sym.Location.Offset {
			emit(comments[ci].Offset, comments[ci].Length, HighlightComment)
			ci++
		}
		for di < len(dsonKeys) && dsonKeys[di].Offset < sym.Location.Offset {
			emit(dsonKeys[di].Offset, dsonKeys[di].Length, HighlightDSONKey)
			di++
		}
		emit(sym.Location.Offset, sym.Location.Length, sym.Kind.highlightTokenType())
	}
	for ; ci < len(comments); ci++ {
		emit(comments[ci].Offset, comments[ci].Length, HighlightComment)
	}
	for ; di < len(dsonKeys); di++ {
		emit(dsonKeys[di].Offset, dsonKeys[di].Length, HighlightDSONKey)
	}
	// Trailing sentinel so a cursor past the last token still resolves.
	emit(uint32(len(text)), 0, HighlightNone)

	out := Highlighting{
		Offsets: make([]uint32, len(emissions)),
		Lengths: make([]uint32, len(emissions)),
		Types:   make([]HighlightType, len(emissions)),
	}
	for i, e := range emissions {
		out.Offsets[i] = e.offset
		out.Lengths[i] = e.length
		out.Types[i] = e.typ
	}

	out.Breaks = make([]uint32, len(lineBreaks))
	oi := 0
	for i, lb := range lineBreaks {
		for oi < len(out.Offsets) && out.Offsets[oi] < lb.Offset {
			oi++
		}
		out.Breaks[i] = uint32(oi)
	}
	return out
}

// TokenAt returns the index of the symbol whose span contains offset, the
// way MoveCursor locates the scanner position for a cursor move (§6).
func TokenAt(symbols []Symbol, offset uint32) (int, bool) {
	i := sort.Search(len(symbols), func(i int) bool {
		return symbols[i].Location.End() > offset
	})
	if i < len(symbols) && symbols[i].Location.Offset <= offset {
		return i, true
	}
	return 0, false
}
