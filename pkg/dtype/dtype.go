// Package dtype defines the closed set of element types understood by the
// Quasar table engine. Every source buffer and every destination column is
// tagged with exactly one DType, and all dispatch over element types is an
// exhaustive switch over this enumeration; there are no open-ended type
// checks anywhere in the engine.
package dtype

import (
	"fmt"
	"math"
)

// DType identifies the element type of a source buffer or destination column.
type DType uint8

const (
	// None is the zero value and never a valid column type.
	None DType = iota
	// Int8 through Uint64 are the eight fixed-width integer kinds.
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	// Float32 and Float64 are the IEEE-754 kinds.
	Float32
	Float64
	// Bool is a logical column; storage is one element per row, not packed.
	Bool
	// Str is UTF-8 text.
	Str
	// Date is a calendar date with no time component.
	Date
	// Time is an instant, stored as epoch milliseconds in an int64.
	Time
	// Object marks an opaque source buffer with no fixed-width layout.
	// Columns are never created with this type; inference maps it to Str.
	Object
)

// NaT is the missing-value sentinel for int64-backed time buffers, matching
// the convention of upstream array libraries. Reads that encounter it treat
// the row as absent.
const NaT int64 = math.MinInt64

var names = map[DType]string{
	None:    "none",
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Uint8:   "uint8",
	Uint16:  "uint16",
	Uint32:  "uint32",
	Uint64:  "uint64",
	Float32: "float32",
	Float64: "float64",
	Bool:    "bool",
	Str:     "string",
	Date:    "date",
	Time:    "datetime",
	Object:  "object",
}

// String returns the canonical lowercase name used in schema files.
func (t DType) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return fmt.Sprintf("dtype(%d)", uint8(t))
}

// Parse converts a schema-file name to a DType.
func Parse(s string) (DType, error) {
	for t, name := range names {
		if name == s && t != None {
			return t, nil
		}
	}
	return None, fmt.Errorf("unknown dtype %q", s)
}

// Valid reports whether t is a member of the closed enumeration.
func (t DType) Valid() bool {
	_, ok := names[t]
	return ok && t != None
}

// Width returns the fixed element width in bytes for the ten numeric kinds,
// and 0 for every other kind.
func (t DType) Width() int {
	switch t {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	default:
		return 0
	}
}

// IsNumeric reports whether t is one of the ten fixed-width numeric kinds.
func (t DType) IsNumeric() bool {
	return t.Width() != 0
}

// IsFloat reports whether t is an IEEE-754 kind.
func (t DType) IsFloat() bool {
	return t == Float32 || t == Float64
}

// IsInteger reports whether t is a fixed-width integer kind.
func (t DType) IsInteger() bool {
	return t.IsNumeric() && !t.IsFloat()
}

// Widened returns the type a column of type t is rewritten to when observed
// data cannot fit, and whether such a widening exists. The relation is
// monotonic and terminal: int32 widens to float64, int64 and float64 widen
// to string, and nothing widens further within one fill.
func (t DType) Widened() (DType, bool) {
	switch t {
	case Int32:
		return Float64, true
	case Int64, Float64:
		return Str, true
	default:
		return None, false
	}
}
