// Package ast holds the flat, integer-keyed node record layout that the
// parser emits and every later pass walks: see dashql/SPEC_FULL.md §4.A.
package ast

import "math"

// Location is a byte range into the original script text.
type Location struct {
	Offset uint32
	Length uint32
}

// End returns the exclusive end offset of the location.
func (l Location) End() uint32 { return l.Offset + l.Length }

// Merge computes [min(offset), max(offset+length)) over a set of locations.
// Empty locations are skipped so that a null attribute doesn't widen the
// merged span.
func Merge(locs ...Location) Location {
	var begin, end uint32
	first := true
	for _, l := range locs {
		if l.Length == 0 && l.Offset == 0 {
			continue
		}
		if first {
			begin, end = l.Offset, l.End()
			first = false
			continue
		}
		if l.Offset < begin {
			begin = l.Offset
		}
		if l.End() > end {
			end = l.End()
		}
	}
	if first {
		return Location{}
	}
	return Location{Offset: begin, Length: end - begin}
}

// NoParent is the sentinel parent value for a node under construction that
// has not yet been attached to its parent's attribute or array slice.
const NoParent = math.MaxUint32
