// Package table provides the fixed-size, strongly typed column store that
// ingestion fills. Columns are allocated at their final length up front;
// fills write cells in place and maintain a validity bitmap instead of
// appending. Exactly one backing slice is live per column, selected by the
// column's dtype.
package table

import (
	"github.com/ajitpratap0/quasar/pkg/dtype"
	"github.com/ajitpratap0/quasar/pkg/errors"
)

// Column is one typed destination column plus its validity bitmap. A cell
// is readable only when its validity bit is set; Clear additionally zeroes
// the storage so stale values never leak through a re-validated cell.
type Column struct {
	dt     dtype.DType
	length int

	i8    []int8
	i16   []int16
	i32   []int32
	i64   []int64
	u8    []uint8
	u16   []uint16
	u32   []uint32
	u64   []uint64
	f32   []float32
	f64   []float64
	bs    []bool
	ss    []string
	dates []dtype.DateValue
	times []int64 // epoch milliseconds

	valid []uint64 // bit-packed, 64 cells per word, 1 = valid
}

// NewColumn allocates a column of the given type and length. All cells
// start invalid.
func NewColumn(dt dtype.DType, length int) *Column {
	c := &Column{
		dt:     dt,
		length: length,
		valid:  make([]uint64, (length+63)/64),
	}

	switch dt {
	case dtype.Int8:
		c.i8 = make([]int8, length)
	case dtype.Int16:
		c.i16 = make([]int16, length)
	case dtype.Int32:
		c.i32 = make([]int32, length)
	case dtype.Int64:
		c.i64 = make([]int64, length)
	case dtype.Uint8:
		c.u8 = make([]uint8, length)
	case dtype.Uint16:
		c.u16 = make([]uint16, length)
	case dtype.Uint32:
		c.u32 = make([]uint32, length)
	case dtype.Uint64:
		c.u64 = make([]uint64, length)
	case dtype.Float32:
		c.f32 = make([]float32, length)
	case dtype.Float64:
		c.f64 = make([]float64, length)
	case dtype.Bool:
		c.bs = make([]bool, length)
	case dtype.Str:
		c.ss = make([]string, length)
	case dtype.Date:
		c.dates = make([]dtype.DateValue, length)
	case dtype.Time:
		c.times = make([]int64, length)
	}

	return c
}

// DType returns the column's element type.
func (c *Column) DType() dtype.DType { return c.dt }

// Size returns the number of cells.
func (c *Column) Size() int { return c.length }

// SetNth stores a value at cell i and marks it valid. The value's dynamic
// type must match the column's dtype exactly; there is no coercion here,
// conversions happen in the fill paths before storage.
func (c *Column) SetNth(i int, value interface{}) error {
	switch c.dt {
	case dtype.Int8:
		v, ok := value.(int8)
		if !ok {
			return typeMismatch(c.dt, value)
		}
		c.i8[i] = v
	case dtype.Int16:
		v, ok := value.(int16)
		if !ok {
			return typeMismatch(c.dt, value)
		}
		c.i16[i] = v
	case dtype.Int32:
		v, ok := value.(int32)
		if !ok {
			return typeMismatch(c.dt, value)
		}
		c.i32[i] = v
	case dtype.Int64:
		v, ok := value.(int64)
		if !ok {
			return typeMismatch(c.dt, value)
		}
		c.i64[i] = v
	case dtype.Uint8:
		v, ok := value.(uint8)
		if !ok {
			return typeMismatch(c.dt, value)
		}
		c.u8[i] = v
	case dtype.Uint16:
		v, ok := value.(uint16)
		if !ok {
			return typeMismatch(c.dt, value)
		}
		c.u16[i] = v
	case dtype.Uint32:
		v, ok := value.(uint32)
		if !ok {
			return typeMismatch(c.dt, value)
		}
		c.u32[i] = v
	case dtype.Uint64:
		v, ok := value.(uint64)
		if !ok {
			return typeMismatch(c.dt, value)
		}
		c.u64[i] = v
	case dtype.Float32:
		v, ok := value.(float32)
		if !ok {
			return typeMismatch(c.dt, value)
		}
		c.f32[i] = v
	case dtype.Float64:
		v, ok := value.(float64)
		if !ok {
			return typeMismatch(c.dt, value)
		}
		c.f64[i] = v
	case dtype.Bool:
		v, ok := value.(bool)
		if !ok {
			return typeMismatch(c.dt, value)
		}
		c.bs[i] = v
	case dtype.Str:
		v, ok := value.(string)
		if !ok {
			return typeMismatch(c.dt, value)
		}
		c.ss[i] = v
	case dtype.Date:
		v, ok := value.(dtype.DateValue)
		if !ok {
			return typeMismatch(c.dt, value)
		}
		c.dates[i] = v
	case dtype.Time:
		v, ok := value.(int64)
		if !ok {
			return typeMismatch(c.dt, value)
		}
		c.times[i] = v
	default:
		return errors.New(errors.ErrorTypeInternal, "column has no storage type")
	}

	c.setValid(i)
	return nil
}

func typeMismatch(dt dtype.DType, value interface{}) error {
	return errors.New(errors.ErrorTypeValidation, "value type does not match column").
		WithDetail("column_type", dt.String()).
		WithDetail("value", value)
}

// GetNth returns the value at cell i and whether the cell is valid. Invalid
// cells return a nil value.
func (c *Column) GetNth(i int) (interface{}, bool) {
	if !c.Valid(i) {
		return nil, false
	}

	switch c.dt {
	case dtype.Int8:
		return c.i8[i], true
	case dtype.Int16:
		return c.i16[i], true
	case dtype.Int32:
		return c.i32[i], true
	case dtype.Int64:
		return c.i64[i], true
	case dtype.Uint8:
		return c.u8[i], true
	case dtype.Uint16:
		return c.u16[i], true
	case dtype.Uint32:
		return c.u32[i], true
	case dtype.Uint64:
		return c.u64[i], true
	case dtype.Float32:
		return c.f32[i], true
	case dtype.Float64:
		return c.f64[i], true
	case dtype.Bool:
		return c.bs[i], true
	case dtype.Str:
		return c.ss[i], true
	case dtype.Date:
		return c.dates[i], true
	case dtype.Time:
		return c.times[i], true
	default:
		return nil, false
	}
}

// Valid reports whether cell i holds a readable value.
func (c *Column) Valid(i int) bool {
	wordIndex := i / 64
	bitIndex := i % 64
	return c.valid[wordIndex]&(1<<bitIndex) != 0
}

func (c *Column) setValid(i int) {
	wordIndex := i / 64
	bitIndex := i % 64
	c.valid[wordIndex] |= 1 << bitIndex
}

// Unset marks cell i invalid and leaves its storage untouched. Update
// reconciliation uses this for rows the source marked missing, so the write
// phase knows to skip rather than overwrite them.
func (c *Column) Unset(i int) {
	wordIndex := i / 64
	bitIndex := i % 64
	c.valid[wordIndex] &^= 1 << bitIndex
}

// Clear marks cell i invalid and zeroes its storage.
func (c *Column) Clear(i int) {
	c.Unset(i)

	switch c.dt {
	case dtype.Int8:
		c.i8[i] = 0
	case dtype.Int16:
		c.i16[i] = 0
	case dtype.Int32:
		c.i32[i] = 0
	case dtype.Int64:
		c.i64[i] = 0
	case dtype.Uint8:
		c.u8[i] = 0
	case dtype.Uint16:
		c.u16[i] = 0
	case dtype.Uint32:
		c.u32[i] = 0
	case dtype.Uint64:
		c.u64[i] = 0
	case dtype.Float32:
		c.f32[i] = 0
	case dtype.Float64:
		c.f64[i] = 0
	case dtype.Bool:
		c.bs[i] = false
	case dtype.Str:
		c.ss[i] = ""
	case dtype.Date:
		c.dates[i] = 0
	case dtype.Time:
		c.times[i] = 0
	}
}

// ValidAll marks every cell valid. The bulk copy path calls this once after
// a raw fill, then punches out the positions the source reported as null.
func (c *Column) ValidAll() {
	for w := range c.valid {
		c.valid[w] = ^uint64(0)
	}
	// Keep bits past the logical length zero so popcounts stay honest.
	if rem := c.length % 64; rem != 0 && len(c.valid) > 0 {
		c.valid[len(c.valid)-1] = (1 << rem) - 1
	}
}

// CountValid returns the number of valid cells.
func (c *Column) CountValid() int {
	n := 0
	for i := 0; i < c.length; i++ {
		if c.Valid(i) {
			n++
		}
	}
	return n
}

// Kind-exact destination accessors for the bulk copy path. Each returns the
// backing slice only when the column holds exactly that kind.

func (c *Column) Int8s() ([]int8, bool)       { return c.i8, c.dt == dtype.Int8 }
func (c *Column) Int16s() ([]int16, bool)     { return c.i16, c.dt == dtype.Int16 }
func (c *Column) Int32s() ([]int32, bool)     { return c.i32, c.dt == dtype.Int32 }
func (c *Column) Int64s() ([]int64, bool)     { return c.i64, c.dt == dtype.Int64 }
func (c *Column) Uint8s() ([]uint8, bool)     { return c.u8, c.dt == dtype.Uint8 }
func (c *Column) Uint16s() ([]uint16, bool)   { return c.u16, c.dt == dtype.Uint16 }
func (c *Column) Uint32s() ([]uint32, bool)   { return c.u32, c.dt == dtype.Uint32 }
func (c *Column) Uint64s() ([]uint64, bool)   { return c.u64, c.dt == dtype.Uint64 }
func (c *Column) Float32s() ([]float32, bool) { return c.f32, c.dt == dtype.Float32 }
func (c *Column) Float64s() ([]float64, bool) { return c.f64, c.dt == dtype.Float64 }
func (c *Column) Bools() ([]bool, bool)       { return c.bs, c.dt == dtype.Bool }
func (c *Column) Strings() ([]string, bool)   { return c.ss, c.dt == dtype.Str }

// Dates returns the packed date backing of a date column.
func (c *Column) Dates() ([]dtype.DateValue, bool) { return c.dates, c.dt == dtype.Date }

// Epochs returns the epoch-millisecond backing of a datetime column.
func (c *Column) Epochs() ([]int64, bool) { return c.times, c.dt == dtype.Time }

// clone returns a deep copy sharing nothing with c.
func (c *Column) clone() *Column {
	dup := &Column{dt: c.dt, length: c.length}

	dup.valid = make([]uint64, len(c.valid))
	copy(dup.valid, c.valid)

	switch c.dt {
	case dtype.Int8:
		dup.i8 = append([]int8(nil), c.i8...)
	case dtype.Int16:
		dup.i16 = append([]int16(nil), c.i16...)
	case dtype.Int32:
		dup.i32 = append([]int32(nil), c.i32...)
	case dtype.Int64:
		dup.i64 = append([]int64(nil), c.i64...)
	case dtype.Uint8:
		dup.u8 = append([]uint8(nil), c.u8...)
	case dtype.Uint16:
		dup.u16 = append([]uint16(nil), c.u16...)
	case dtype.Uint32:
		dup.u32 = append([]uint32(nil), c.u32...)
	case dtype.Uint64:
		dup.u64 = append([]uint64(nil), c.u64...)
	case dtype.Float32:
		dup.f32 = append([]float32(nil), c.f32...)
	case dtype.Float64:
		dup.f64 = append([]float64(nil), c.f64...)
	case dtype.Bool:
		dup.bs = append([]bool(nil), c.bs...)
	case dtype.Str:
		dup.ss = append([]string(nil), c.ss...)
	case dtype.Date:
		dup.dates = append([]dtype.DateValue(nil), c.dates...)
	case dtype.Time:
		dup.times = append([]int64(nil), c.times...)
	}

	return dup
}

// MemoryUsage returns the column's storage footprint in bytes.
func (c *Column) MemoryUsage() int64 {
	var total int64

	total += int64(len(c.valid) * 8)

	switch c.dt {
	case dtype.Int8, dtype.Uint8:
		total += int64(c.length)
	case dtype.Int16, dtype.Uint16:
		total += int64(c.length * 2)
	case dtype.Int32, dtype.Uint32, dtype.Float32, dtype.Date:
		total += int64(c.length * 4)
	case dtype.Int64, dtype.Uint64, dtype.Float64, dtype.Time:
		total += int64(c.length * 8)
	case dtype.Bool:
		total += int64(c.length)
	case dtype.Str:
		for _, s := range c.ss {
			total += int64(len(s)) + 16 // string header overhead
		}
	}

	return total
}
