package parser

import "github.com/ankoh/dashql-sub002/ast"

// ScannedScript is the output of Scan (§3, §6): the source text, the
// produced symbol stream, parallel comment/line-break/DSON-key indexes,
// the interned names table, recoverable scanner errors, and the derived
// highlighting token stream.
type ScannedScript struct {
	Text         string
	Symbols      []Symbol
	Comments     []ast.Location
	LineBreaks   []ast.Location
	DSONKeys     []ast.Location
	Names        *NameRegistry
	Errors       []ScannerError
	Highlighting Highlighting
}

// ScanOptions configures Scan, grounded on
// lib/include/dashql/parser/script_options.h from original_source/.
type ScanOptions struct {
	// TrackDSONKeys is not consulted by Scan: no scan path calls
	// MarkAsDSONKey, so ScannedScript.DSONKeys is empty either way. DSON
	// configuration blocks are not executed by this module.
	TrackDSONKeys bool
}

// Scan lexes text into a ScannedScript, per §6's `Scan(text) → ScannedScript
// | Errors`.
func Scan(text string, opts ScanOptions) *ScannedScript {
	names := NewNameRegistry()
	scanner := NewScanner(text, names, nil)
	scanner.Produce()

	highlighting := BuildHighlighting(text, scanner.Symbols(), scanner.Comments(), scanner.DSONKeys(), scanner.LineBreaks())

	return &ScannedScript{
		Text:         text,
		Symbols:      scanner.Symbols(),
		Comments:     scanner.Comments(),
		LineBreaks:   scanner.LineBreaks(),
		DSONKeys:     scanner.DSONKeys(),
		Names:        names,
		Errors:       scanner.Errors(),
		Highlighting: highlighting,
	}
}
