// Package buffer provides the typed, read-only view over a single column of
// source data. A Buffer is a tagged union: it carries exactly one backing
// slice and the dtype.DType describing it, so every read is kind-checked
// instead of reinterpreting raw memory.
package buffer

import (
	"math"

	"github.com/ajitpratap0/quasar/pkg/dtype"
)

// Buffer is one column of source data. The zero value is empty and has kind
// dtype.None. Buffers are views: they do not copy the slice they are built
// from, and callers must not mutate a slice after handing it to a Buffer.
type Buffer struct {
	kind dtype.DType

	i8  []int8
	i16 []int16
	i32 []int32
	i64 []int64
	u8  []uint8
	u16 []uint16
	u32 []uint32
	u64 []uint64
	f32 []float32
	f64 []float64
	bs  []bool
	ss  []string
	ds  []dtype.DateValue
	obj []any
}

func FromInt8s(v []int8) *Buffer       { return &Buffer{kind: dtype.Int8, i8: v} }
func FromInt16s(v []int16) *Buffer     { return &Buffer{kind: dtype.Int16, i16: v} }
func FromInt32s(v []int32) *Buffer     { return &Buffer{kind: dtype.Int32, i32: v} }
func FromInt64s(v []int64) *Buffer     { return &Buffer{kind: dtype.Int64, i64: v} }
func FromUint8s(v []uint8) *Buffer     { return &Buffer{kind: dtype.Uint8, u8: v} }
func FromUint16s(v []uint16) *Buffer   { return &Buffer{kind: dtype.Uint16, u16: v} }
func FromUint32s(v []uint32) *Buffer   { return &Buffer{kind: dtype.Uint32, u32: v} }
func FromUint64s(v []uint64) *Buffer   { return &Buffer{kind: dtype.Uint64, u64: v} }
func FromFloat32s(v []float32) *Buffer { return &Buffer{kind: dtype.Float32, f32: v} }
func FromFloat64s(v []float64) *Buffer { return &Buffer{kind: dtype.Float64, f64: v} }
func FromBools(v []bool) *Buffer       { return &Buffer{kind: dtype.Bool, bs: v} }
func FromStrings(v []string) *Buffer   { return &Buffer{kind: dtype.Str, ss: v} }
func FromObjects(v []any) *Buffer      { return &Buffer{kind: dtype.Object, obj: v} }

// FromEpochs builds a datetime buffer over epoch values. Elements equal to
// dtype.NaT are missing.
func FromEpochs(v []int64) *Buffer { return &Buffer{kind: dtype.Time, i64: v} }

// FromDates builds a calendar date buffer.
func FromDates(v []dtype.DateValue) *Buffer { return &Buffer{kind: dtype.Date, ds: v} }

// Kind returns the element type tag.
func (b *Buffer) Kind() dtype.DType { return b.kind }

// Len returns the number of elements.
func (b *Buffer) Len() int {
	switch b.kind {
	case dtype.Int8:
		return len(b.i8)
	case dtype.Int16:
		return len(b.i16)
	case dtype.Int32:
		return len(b.i32)
	case dtype.Int64, dtype.Time:
		return len(b.i64)
	case dtype.Uint8:
		return len(b.u8)
	case dtype.Uint16:
		return len(b.u16)
	case dtype.Uint32:
		return len(b.u32)
	case dtype.Uint64:
		return len(b.u64)
	case dtype.Float32:
		return len(b.f32)
	case dtype.Float64:
		return len(b.f64)
	case dtype.Bool:
		return len(b.bs)
	case dtype.Str:
		return len(b.ss)
	case dtype.Date:
		return len(b.ds)
	case dtype.Object:
		return len(b.obj)
	default:
		return 0
	}
}

// Kind-exact slice accessors. Each returns the backing slice only when the
// buffer holds exactly that kind; the bulk copy path refuses to run on
// anything else.

func (b *Buffer) Int8s() ([]int8, bool)       { return b.i8, b.kind == dtype.Int8 }
func (b *Buffer) Int16s() ([]int16, bool)     { return b.i16, b.kind == dtype.Int16 }
func (b *Buffer) Int32s() ([]int32, bool)     { return b.i32, b.kind == dtype.Int32 }
func (b *Buffer) Int64s() ([]int64, bool)     { return b.i64, b.kind == dtype.Int64 }
func (b *Buffer) Uint8s() ([]uint8, bool)     { return b.u8, b.kind == dtype.Uint8 }
func (b *Buffer) Uint16s() ([]uint16, bool)   { return b.u16, b.kind == dtype.Uint16 }
func (b *Buffer) Uint32s() ([]uint32, bool)   { return b.u32, b.kind == dtype.Uint32 }
func (b *Buffer) Uint64s() ([]uint64, bool)   { return b.u64, b.kind == dtype.Uint64 }
func (b *Buffer) Float32s() ([]float32, bool) { return b.f32, b.kind == dtype.Float32 }
func (b *Buffer) Float64s() ([]float64, bool) { return b.f64, b.kind == dtype.Float64 }
func (b *Buffer) Bools() ([]bool, bool)       { return b.bs, b.kind == dtype.Bool }
func (b *Buffer) Strings() ([]string, bool)   { return b.ss, b.kind == dtype.Str }
func (b *Buffer) Objects() ([]any, bool)      { return b.obj, b.kind == dtype.Object }

// Epochs returns the int64 backing of a datetime buffer.
func (b *Buffer) Epochs() ([]int64, bool) { return b.i64, b.kind == dtype.Time }

// Dates returns the packed date backing of a date buffer.
func (b *Buffer) Dates() ([]dtype.DateValue, bool) { return b.ds, b.kind == dtype.Date }

// NumericAt returns element i widened to float64. ok is false when the
// buffer is not one of the ten numeric kinds. Every integer kind except
// int64/uint64 is represented exactly; the two 64-bit kinds may round above
// 2^53, which only matters for destinations that are themselves float64.
func (b *Buffer) NumericAt(i int) (v float64, ok bool) {
	switch b.kind {
	case dtype.Int8:
		return float64(b.i8[i]), true
	case dtype.Int16:
		return float64(b.i16[i]), true
	case dtype.Int32:
		return float64(b.i32[i]), true
	case dtype.Int64:
		return float64(b.i64[i]), true
	case dtype.Uint8:
		return float64(b.u8[i]), true
	case dtype.Uint16:
		return float64(b.u16[i]), true
	case dtype.Uint32:
		return float64(b.u32[i]), true
	case dtype.Uint64:
		return float64(b.u64[i]), true
	case dtype.Float32:
		return float64(b.f32[i]), true
	case dtype.Float64:
		return b.f64[i], true
	default:
		return 0, false
	}
}

// AbsentAt reports whether element i is a missing-value sentinel: NaN for
// the float kinds, dtype.NaT for int64 and datetime. Other kinds have no
// in-band sentinel and always report false.
func (b *Buffer) AbsentAt(i int) bool {
	switch b.kind {
	case dtype.Float32:
		f := b.f32[i]
		return f != f
	case dtype.Float64:
		return math.IsNaN(b.f64[i])
	case dtype.Int64, dtype.Time:
		return b.i64[i] == dtype.NaT
	case dtype.Object:
		return b.obj[i] == nil
	default:
		return false
	}
}
