package parser

import (
	"strconv"

	"github.com/ankoh/dashql-sub002/parsererr"
)

// NumericType classifies a numeric column type by storage width, the way
// CREATE TABLE column types are recorded on a COLUMN_DEF node.
type NumericType uint8

const (
	NumericTypeUnknown NumericType = iota
	NumericTypeInt
	NumericTypeFloat4
	NumericTypeFloat8
)

// ClassifyFloatPrecision classifies a `FLOAT(n)` declaration's bit
// precision into FLOAT4 (n < 24) or FLOAT8 (24 <= n <= 53), raising
// ErrInvalidFloatPrecision for precision outside [1, 53] and
// ErrInvalidLiteral for non-integer text, matching ReadFloatType in
// grammar/nodes.h.
func ClassifyFloatPrecision(bitsText string) (NumericType, error) {
	bits, err := strconv.ParseInt(bitsText, 10, 64)
	if err != nil {
		return NumericTypeFloat4, parsererr.ErrInvalidLiteral.New("precision for float type must be an integer")
	}
	switch {
	case bits < 1:
		return NumericTypeFloat4, parsererr.ErrInvalidFloatPrecision.New("precision for float type must be at least 1 bit")
	case bits < 24:
		return NumericTypeFloat4, nil
	case bits <= 53:
		return NumericTypeFloat8, nil
	default:
		return NumericTypeFloat4, parsererr.ErrInvalidFloatPrecision.New("precision for float type must be less than 54 bits")
	}
}
