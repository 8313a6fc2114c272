package source

import (
	"math"
	"time"

	"github.com/ajitpratap0/quasar/pkg/buffer"
	"github.com/ajitpratap0/quasar/pkg/dtype"
	"github.com/ajitpratap0/quasar/pkg/errors"
	"github.com/ajitpratap0/quasar/pkg/schema"
	stringpool "github.com/ajitpratap0/quasar/pkg/strings"
)

// SliceColumn is one column of native Go data for a SliceAccessor. Values
// must be a supported slice type; Nulls optionally lists row offsets the
// caller knows to be absent.
type SliceColumn struct {
	Name   string
	Values interface{}
	Nulls  []int
}

type sliceCol struct {
	data    ColumnData
	nullAt  map[int]struct{}
	raw     interface{}
	kind    dtype.DType
	kindErr error
}

// SliceAccessor serves fills from in-process Go slices, one per column.
// It is the zero-serialization path: fixed-width slices are wrapped, not
// copied.
type SliceAccessor struct {
	names []string
	cols  []sliceCol
	rows  int
}

// NewSliceAccessor builds an accessor over the given columns. All columns
// must have the same length.
func NewSliceAccessor(cols ...SliceColumn) (*SliceAccessor, error) {
	a := &SliceAccessor{
		names: make([]string, 0, len(cols)),
		cols:  make([]sliceCol, 0, len(cols)),
	}

	for i, c := range cols {
		sc := buildSliceCol(c)

		n := sc.data.Buffer.Len()
		if i == 0 {
			a.rows = n
		} else if sc.kindErr == nil && n != a.rows {
			return nil, errors.New(errors.ErrorTypeValidation, "source columns differ in length").
				WithDetail("column", c.Name).
				WithDetail("length", n).
				WithDetail("expected", a.rows)
		}

		a.names = append(a.names, c.Name)
		a.cols = append(a.cols, sc)
	}

	return a, nil
}

func buildSliceCol(c SliceColumn) sliceCol {
	sc := sliceCol{raw: c.Values}

	switch v := c.Values.(type) {
	case []int8:
		sc.data.Buffer = buffer.FromInt8s(v)
	case []int16:
		sc.data.Buffer = buffer.FromInt16s(v)
	case []int32:
		sc.data.Buffer = buffer.FromInt32s(v)
	case []int64:
		sc.data.Buffer = buffer.FromInt64s(v)
	case []uint8:
		sc.data.Buffer = buffer.FromUint8s(v)
	case []uint16:
		sc.data.Buffer = buffer.FromUint16s(v)
	case []uint32:
		sc.data.Buffer = buffer.FromUint32s(v)
	case []uint64:
		sc.data.Buffer = buffer.FromUint64s(v)
	case []float32:
		sc.data.Buffer = buffer.FromFloat32s(v)
	case []float64:
		sc.data.Buffer = buffer.FromFloat64s(v)
	case []bool:
		sc.data.Buffer = buffer.FromBools(v)
	case []string:
		sc.data.Buffer = buffer.FromStrings(v)
	case []dtype.DateValue:
		sc.data.Buffer = buffer.FromDates(v)
	case []time.Time:
		epochs := make([]int64, len(v))
		for i, t := range v {
			epochs[i] = t.UnixMilli()
		}
		sc.data.Buffer = buffer.FromEpochs(epochs)
	case []interface{}:
		sc.data.Buffer = buffer.FromObjects(v)
	default:
		sc.data.Buffer = &buffer.Buffer{}
		sc.kindErr = errors.MixedKinds(c.Name)
	}

	sc.kind = sc.data.Buffer.Kind()

	if len(c.Nulls) > 0 {
		sc.data.Nulls = append([]int(nil), c.Nulls...)
		sc.nullAt = make(map[int]struct{}, len(c.Nulls))
		for _, row := range c.Nulls {
			sc.nullAt[row] = struct{}{}
		}
	}

	return sc
}

// RowCount returns the shared column length.
func (a *SliceAccessor) RowCount() int { return a.rows }

// ColumnNames returns the column names in declaration order.
func (a *SliceAccessor) ColumnNames() []string {
	names := make([]string, len(a.names))
	copy(names, a.names)
	return names
}

// ColumnKinds returns each column's buffer kind. A column built from an
// unsupported carrier poisons the whole accessor, since ingestion assumes
// uniformly array-backed columns.
func (a *SliceAccessor) ColumnKinds() ([]dtype.DType, error) {
	kinds := make([]dtype.DType, len(a.cols))
	for i, c := range a.cols {
		if c.kindErr != nil {
			return nil, c.kindErr
		}
		kinds[i] = c.kind
	}
	return kinds, nil
}

// ColumnBuffer returns the buffer and null list for the named column.
func (a *SliceAccessor) ColumnBuffer(name string, _ dtype.DType) (ColumnData, error) {
	for i, n := range a.names {
		if n == name {
			return a.cols[i].data, nil
		}
	}
	return ColumnData{}, errors.UnknownColumn(name)
}

// MarshalCell converts cell (col, row) to the destination representation.
func (a *SliceAccessor) MarshalCell(col, row int, dt dtype.DType) (interface{}, bool) {
	if col < 0 || col >= len(a.cols) || row < 0 || row >= a.rows {
		return nil, false
	}
	c := &a.cols[col]

	if _, null := c.nullAt[row]; null {
		return nil, false
	}
	if c.data.Buffer.AbsentAt(row) {
		return nil, false
	}

	return marshalValue(rawCell(c, row), dt)
}

func rawCell(c *sliceCol, row int) interface{} {
	switch v := c.raw.(type) {
	case []int8:
		return v[row]
	case []int16:
		return v[row]
	case []int32:
		return v[row]
	case []int64:
		return v[row]
	case []uint8:
		return v[row]
	case []uint16:
		return v[row]
	case []uint32:
		return v[row]
	case []uint64:
		return v[row]
	case []float32:
		return v[row]
	case []float64:
		return v[row]
	case []bool:
		return v[row]
	case []string:
		return v[row]
	case []dtype.DateValue:
		return v[row]
	case []time.Time:
		return v[row]
	case []interface{}:
		return v[row]
	default:
		return nil
	}
}

// marshalValue converts a raw cell value to the representation of the
// requested destination type. Shared by the dynamic accessors. In-band
// missing sentinels carry no value for any destination, so a column
// promoted to string records them as missing instead of rendering the
// sentinel's digits.
func marshalValue(value interface{}, dt dtype.DType) (interface{}, bool) {
	if value == nil {
		return nil, false
	}
	switch f := value.(type) {
	case float64:
		if math.IsNaN(f) {
			return nil, false
		}
	case float32:
		if f != f {
			return nil, false
		}
	case int64:
		if f == dtype.NaT {
			return nil, false
		}
	}

	switch dt {
	case dtype.Str:
		return stringpool.ValueToString(value), true

	case dtype.Bool:
		switch v := value.(type) {
		case bool:
			return v, true
		case string:
			if b, ok := schema.ParseBoolString(v); ok {
				return b, true
			}
		}
		return nil, false

	case dtype.Date:
		switch v := value.(type) {
		case dtype.DateValue:
			return v, true
		case time.Time:
			return dtype.DateFromTime(v), true
		case string:
			if d, ok := schema.ParseDateString(v); ok {
				return d, true
			}
		}
		return nil, false

	case dtype.Time:
		switch v := value.(type) {
		case time.Time:
			return v.UnixMilli(), true
		case int64:
			if v == dtype.NaT {
				return nil, false
			}
			return v, true
		case string:
			if ms, ok := schema.ParseTimeString(v); ok {
				return ms, true
			}
		}
		return nil, false

	default:
		return value, true
	}
}
